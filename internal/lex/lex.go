// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lex tokenizes SystemVerilog source text.
//
// The token definitions live in a declarative rule table; the Stream
// type wraps the generated lexer into a lazy, restartable sequence with
// keyword classification and normalized numeric values.
package lex

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind classifies a token.
type Kind int

// Token kinds.
const (
	EOF Kind = iota
	Ident
	Number   // plain decimal literal
	SizedLit // sized or based literal: 4'b1010, 'hff, 8'bz
	TimeLit  // time literal: 1ns, 10ps

	// Keywords.
	Module
	EndModule
	Parameter
	Input
	Output
	Inout
	Wire
	Reg
	Logic
	Assign
	AlwaysComb
	AlwaysFF
	Always
	Begin
	End
	If
	Else
	Case
	EndCase
	Default
	Posedge
	Negedge
	Timescale

	// Punctuation.
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Comma
	Semi
	Colon
	Hash
	At
	Question
	BTick

	// Operators.
	Equals
	EqEq
	NotEq
	Lt
	Gt
	Le
	Ge
	Shl
	Shr
	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Pipe
	Caret
	Tilde
	Bang
	AmpAmp
	PipePipe
)

var kindNames = map[Kind]string{
	EOF: "end of input", Ident: "identifier", Number: "number",
	SizedLit: "sized literal", TimeLit: "time literal",
	Module: "'module'", EndModule: "'endmodule'", Parameter: "'parameter'",
	Input: "'input'", Output: "'output'", Inout: "'inout'",
	Wire: "'wire'", Reg: "'reg'", Logic: "'logic'", Assign: "'assign'",
	AlwaysComb: "'always_comb'", AlwaysFF: "'always_ff'", Always: "'always'",
	Begin: "'begin'", End: "'end'", If: "'if'", Else: "'else'",
	Case: "'case'", EndCase: "'endcase'", Default: "'default'",
	Posedge: "'posedge'", Negedge: "'negedge'", Timescale: "'timescale'",
	LParen: "'('", RParen: "')'", LBracket: "'['", RBracket: "']'",
	LBrace: "'{'", RBrace: "'}'", Comma: "','", Semi: "';'", Colon: "':'",
	Hash: "'#'", At: "'@'", Question: "'?'", BTick: "'`'",
	Equals: "'='", EqEq: "'=='", NotEq: "'!='", Lt: "'<'", Gt: "'>'",
	Le: "'<='", Ge: "'>='", Shl: "'<<'", Shr: "'>>'",
	Plus: "'+'", Minus: "'-'", Star: "'*'", Slash: "'/'", Percent: "'%'",
	Amp: "'&'", Pipe: "'|'", Caret: "'^'", Tilde: "'~'", Bang: "'!'",
	AmpAmp: "'&&'", PipePipe: "'||'",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// A Token is a single lexical element with its source position.
type Token struct {
	Kind Kind
	Text string

	// Value is the normalized numeric value for Number, SizedLit and
	// TimeLit tokens. Time literals are normalized to femtoseconds.
	Value uint64
	// Width is the explicit bit width of a sized literal, 0 when the
	// literal is unsized.
	Width int
	// HiZ is set for hi-Z literals such as 4'bz.
	HiZ bool

	Line, Col int
}

func (t Token) String() string {
	if t.Text == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

// Error is a lexical error at a source position.
type Error struct {
	Msg  string
	Line int
	Col  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

var def = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Time", Pattern: `\d[\d_]*(?:ns|ps|us|fs)\b`},
	{Name: "Sized", Pattern: `(?:\d[\d_]*)?'[bBdDhH][0-9a-fA-F_zZ]+`},
	{Name: "Number", Pattern: `\d[\d_]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_$]*`},
	{Name: "Op", Pattern: "<<|>>|<=|>=|==|!=|&&|\\|\\||[-+*/%&|^~!<>=?:;,#@(){}[\\]`]"},
})

var symbols = def.Symbols()

var keywords = map[string]Kind{
	"module": Module, "endmodule": EndModule, "parameter": Parameter,
	"input": Input, "output": Output, "inout": Inout,
	"wire": Wire, "reg": Reg, "logic": Logic, "assign": Assign,
	"always_comb": AlwaysComb, "always_ff": AlwaysFF, "always": Always,
	"begin": Begin, "end": End, "if": If, "else": Else,
	"case": Case, "endcase": EndCase, "default": Default,
	"posedge": Posedge, "negedge": Negedge, "timescale": Timescale,
}

var operators = map[string]Kind{
	"(": LParen, ")": RParen, "[": LBracket, "]": RBracket,
	"{": LBrace, "}": RBrace, ",": Comma, ";": Semi, ":": Colon,
	"#": Hash, "@": At, "?": Question, "`": BTick,
	"=": Equals, "==": EqEq, "!=": NotEq, "<": Lt, ">": Gt,
	"<=": Le, ">=": Ge, "<<": Shl, ">>": Shr,
	"+": Plus, "-": Minus, "*": Star, "/": Slash, "%": Percent,
	"&": Amp, "|": Pipe, "^": Caret, "~": Tilde, "!": Bang,
	"&&": AmpAmp, "||": PipePipe,
}

// Time literal multipliers, in femtoseconds.
var timeUnits = map[string]uint64{
	"fs": 1,
	"ps": 1000,
	"ns": 1000 * 1000,
	"us": 1000 * 1000 * 1000,
}

// A Stream is a lazy token sequence over a source buffer. Restarting
// from the beginning of the buffer is done by calling New again.
type Stream struct {
	lex  lexer.Lexer
	peek *Token
	err  error
}

// New returns a token stream over src.
func New(src string) *Stream {
	l, err := def.LexString("", src)
	return &Stream{lex: l, err: err}
}

// Peek returns the next token without consuming it.
func (s *Stream) Peek() (Token, error) {
	if s.err != nil {
		return Token{Kind: EOF}, s.err
	}
	if s.peek == nil {
		t, err := s.scan()
		if err != nil {
			s.err = err
			return Token{Kind: EOF}, err
		}
		s.peek = &t
	}
	return *s.peek, nil
}

// Next consumes and returns the next token. At the end of the buffer it
// returns an EOF token forever.
func (s *Stream) Next() (Token, error) {
	t, err := s.Peek()
	s.peek = nil
	return t, err
}

// scan pulls raw tokens, skipping whitespace and comments, until a
// significant token or EOF is found.
func (s *Stream) scan() (Token, error) {
	for {
		raw, err := s.lex.Next()
		if err != nil {
			return Token{Kind: EOF}, wrapLexErr(err)
		}
		switch raw.Type {
		case lexer.EOF:
			return Token{Kind: EOF, Line: raw.Pos.Line, Col: raw.Pos.Column}, nil
		case symbols["Comment"], symbols["Whitespace"]:
			continue
		}
		return classify(raw)
	}
}

func classify(raw lexer.Token) (Token, error) {
	t := Token{Text: raw.Value, Line: raw.Pos.Line, Col: raw.Pos.Column}
	switch raw.Type {
	case symbols["Ident"]:
		if k, ok := keywords[raw.Value]; ok {
			t.Kind = k
		} else {
			t.Kind = Ident
		}
	case symbols["Op"]:
		t.Kind = operators[raw.Value]
	case symbols["Number"]:
		v, err := strconv.ParseUint(strings.ReplaceAll(raw.Value, "_", ""), 10, 64)
		if err != nil {
			return t, &Error{Msg: "invalid integer " + raw.Value, Line: t.Line, Col: t.Col}
		}
		t.Kind = Number
		t.Value = v
	case symbols["Sized"]:
		return classifySized(t, raw.Value)
	case symbols["Time"]:
		return classifyTime(t, raw.Value)
	default:
		return t, &Error{Msg: "unexpected token " + strconv.Quote(raw.Value), Line: t.Line, Col: t.Col}
	}
	return t, nil
}

// classifySized normalizes a based literal such as 4'b1010, 'hff or
// 8'bz into its value, explicit width and hi-Z flag.
func classifySized(t Token, text string) (Token, error) {
	t.Kind = SizedLit
	tick := strings.IndexByte(text, '\'')
	if tick > 0 {
		w, err := strconv.Atoi(strings.ReplaceAll(text[:tick], "_", ""))
		if err != nil || w < 1 {
			return t, &Error{Msg: "invalid literal width in " + text, Line: t.Line, Col: t.Col}
		}
		t.Width = w
	}
	base := 0
	switch text[tick+1] {
	case 'b', 'B':
		base = 2
	case 'd', 'D':
		base = 10
	case 'h', 'H':
		base = 16
	}
	digits := strings.ReplaceAll(text[tick+2:], "_", "")
	if strings.ContainsAny(digits, "zZ") {
		if strings.Trim(digits, "zZ") != "" {
			return t, &Error{Msg: "mixed hi-Z literal " + text, Line: t.Line, Col: t.Col}
		}
		t.HiZ = true
		return t, nil
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return t, &Error{Msg: "invalid integer in " + text, Line: t.Line, Col: t.Col}
	}
	t.Value = v
	return t, nil
}

// classifyTime normalizes a time literal to femtoseconds.
func classifyTime(t Token, text string) (Token, error) {
	t.Kind = TimeLit
	unit := text[len(text)-2:]
	num := strings.ReplaceAll(text[:len(text)-2], "_", "")
	v, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return t, &Error{Msg: "invalid time literal " + text, Line: t.Line, Col: t.Col}
	}
	t.Value = v * timeUnits[unit]
	return t, nil
}

func wrapLexErr(err error) error {
	if le, ok := err.(*lexer.Error); ok {
		return &Error{Msg: le.Msg, Line: le.Pos.Line, Col: le.Pos.Column}
	}
	return &Error{Msg: err.Error()}
}
