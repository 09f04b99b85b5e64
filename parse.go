// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package svsim

import (
	"github.com/svkit/svsim/internal/lex"
)

// Parse parses a single SystemVerilog source file into its AST.
//
// Parsing is single-pass and fail-fast: the first error aborts and is
// returned as a *LexError or *ParseError carrying the source position.
func Parse(src string) (*Source, error) {
	p := &parser{s: lex.New(src)}
	if err := p.next(); err != nil {
		return nil, err
	}
	out := &Source{}
	for p.tok.Kind != lex.EOF {
		switch p.tok.Kind {
		case lex.BTick:
			ts, err := p.parseTimescale()
			if err != nil {
				return nil, err
			}
			out.Timescale = ts
		case lex.Module:
			m, err := p.parseModule()
			if err != nil {
				return nil, err
			}
			out.Modules = append(out.Modules, m)
		default:
			return nil, p.errExpected("'module' or '`' directive")
		}
	}
	logger.WithField("modules", len(out.Modules)).Debug("parsed source")
	return out, nil
}

type parser struct {
	s   *lex.Stream
	tok lex.Token
}

// next advances to the next significant token, converting lexer
// failures into *LexError.
func (p *parser) next() error {
	t, err := p.s.Next()
	if err != nil {
		if le, ok := err.(*lex.Error); ok {
			return &LexError{Msg: le.Msg, Pos: Pos{Line: le.Line, Col: le.Col}}
		}
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) pos() Pos { return Pos{Line: p.tok.Line, Col: p.tok.Col} }

func (p *parser) errExpected(what string) error {
	return &ParseError{Expected: what, Found: p.tok.String(), Pos: p.pos()}
}

// expect consumes a token of the given kind or fails.
func (p *parser) expect(k lex.Kind) (lex.Token, error) {
	if p.tok.Kind != k {
		return p.tok, p.errExpected(k.String())
	}
	t := p.tok
	return t, p.next()
}

// accept consumes the current token if it has the given kind.
func (p *parser) accept(k lex.Kind) (bool, error) {
	if p.tok.Kind != k {
		return false, nil
	}
	return true, p.next()
}

// parseTimescale parses `timescale 1ns/1ps.
func (p *parser) parseTimescale() (*Timescale, error) {
	if err := p.next(); err != nil { // consume `
		return nil, err
	}
	if _, err := p.expect(lex.Timescale); err != nil {
		return nil, err
	}
	unit, err := p.expect(lex.TimeLit)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.Slash); err != nil {
		return nil, err
	}
	prec, err := p.expect(lex.TimeLit)
	if err != nil {
		return nil, err
	}
	return &Timescale{Unit: unit.Value, Precision: prec.Value}, nil
}

func (p *parser) parseModule() (*Module, error) {
	m := &Module{Pos: p.pos()}
	if err := p.next(); err != nil { // consume 'module'
		return nil, err
	}
	name, err := p.expect(lex.Ident)
	if err != nil {
		return nil, err
	}
	m.Name = name.Text

	// #(parameter N = 4, M = 2)
	if ok, err := p.accept(lex.Hash); err != nil {
		return nil, err
	} else if ok {
		if m.Params, err = p.parseParamList(); err != nil {
			return nil, err
		}
	}

	// (input wire clk, ...)
	if ok, err := p.accept(lex.LParen); err != nil {
		return nil, err
	} else if ok {
		if m.Ports, err = p.parsePortList(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lex.Semi); err != nil {
		return nil, err
	}

	for p.tok.Kind != lex.EndModule {
		switch p.tok.Kind {
		case lex.Wire, lex.Reg, lex.Logic:
			ds, err := p.parseDecls()
			if err != nil {
				return nil, err
			}
			m.Decls = append(m.Decls, ds...)
		case lex.Assign:
			a, err := p.parseContAssign()
			if err != nil {
				return nil, err
			}
			m.Assigns = append(m.Assigns, a)
		case lex.AlwaysComb, lex.AlwaysFF, lex.Always:
			b, err := p.parseAlways()
			if err != nil {
				return nil, err
			}
			m.Blocks = append(m.Blocks, b)
		default:
			return nil, p.errExpected("declaration, assign or always block")
		}
	}
	return m, p.next() // consume 'endmodule'
}

func (p *parser) parseParamList() ([]*Param, error) {
	if _, err := p.expect(lex.LParen); err != nil {
		return nil, err
	}
	var params []*Param
	for {
		// the parameter keyword may be omitted after the first entry
		if _, err := p.accept(lex.Parameter); err != nil {
			return nil, err
		}
		name, err := p.expect(lex.Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.Equals); err != nil {
			return nil, err
		}
		def, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		params = append(params, &Param{
			Name:    name.Text,
			Default: def,
			Pos:     Pos{Line: name.Line, Col: name.Col},
		})
		if ok, err := p.accept(lex.Comma); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if _, err := p.expect(lex.RParen); err != nil {
		return nil, err
	}
	return params, nil
}

// parsePortList parses the port declarations of a module header. The
// direction, net kind and range of a port carry over to subsequent
// names until overridden: "input wire [3:0] a, b" declares two 4-bit
// input wires.
func (p *parser) parsePortList() ([]*Port, error) {
	var (
		ports []*Port
		dir   Direction
		kind  NetKind
		width *Range
		first = true
	)
	if p.tok.Kind == lex.RParen {
		return nil, p.next()
	}
	for {
		switch p.tok.Kind {
		case lex.Input, lex.Output, lex.Inout:
			switch p.tok.Kind {
			case lex.Input:
				dir = DirInput
			case lex.Output:
				dir = DirOutput
			default:
				dir = DirInout
			}
			if err := p.next(); err != nil {
				return nil, err
			}
			kind = KindWire
			if p.tok.Kind == lex.Wire || p.tok.Kind == lex.Reg || p.tok.Kind == lex.Logic {
				if p.tok.Kind != lex.Wire {
					kind = KindReg
				}
				if err := p.next(); err != nil {
					return nil, err
				}
			}
			var err error
			if width, err = p.parseOptRange(); err != nil {
				return nil, err
			}
		default:
			if first {
				return nil, p.errExpected("port direction")
			}
		}
		first = false
		name, err := p.expect(lex.Ident)
		if err != nil {
			return nil, err
		}
		ports = append(ports, &Port{
			Name:  name.Text,
			Dir:   dir,
			Kind:  kind,
			Width: width,
			Pos:   Pos{Line: name.Line, Col: name.Col},
		})
		if ok, err := p.accept(lex.Comma); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if _, err := p.expect(lex.RParen); err != nil {
		return nil, err
	}
	return ports, nil
}

// parseOptRange parses a [msb:lsb] range if one is present.
func (p *parser) parseOptRange() (*Range, error) {
	if ok, err := p.accept(lex.LBracket); err != nil || !ok {
		return nil, err
	}
	msb, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.Colon); err != nil {
		return nil, err
	}
	lsb, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.RBracket); err != nil {
		return nil, err
	}
	return &Range{MSB: msb, LSB: lsb}, nil
}

// parseDecls parses one net/variable declaration statement, which may
// declare several names: "reg [3:0] a, b = 4'd1;".
func (p *parser) parseDecls() ([]*Decl, error) {
	kind := KindWire
	if p.tok.Kind != lex.Wire {
		kind = KindReg
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	width, err := p.parseOptRange()
	if err != nil {
		return nil, err
	}
	var decls []*Decl
	for {
		name, err := p.expect(lex.Ident)
		if err != nil {
			return nil, err
		}
		d := &Decl{
			Name:  name.Text,
			Kind:  kind,
			Width: width,
			Pos:   Pos{Line: name.Line, Col: name.Col},
		}
		if ok, err := p.accept(lex.Equals); err != nil {
			return nil, err
		} else if ok {
			if d.Init, err = p.parseExpr(); err != nil {
				return nil, err
			}
		}
		decls = append(decls, d)
		if ok, err := p.accept(lex.Comma); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if _, err := p.expect(lex.Semi); err != nil {
		return nil, err
	}
	return decls, nil
}

func (p *parser) parseContAssign() (*ContAssign, error) {
	pos := p.pos()
	if err := p.next(); err != nil { // consume 'assign'
		return nil, err
	}
	lhs, err := p.expect(lex.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.Equals); err != nil {
		return nil, err
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.Semi); err != nil {
		return nil, err
	}
	return &ContAssign{LHS: lhs.Text, RHS: rhs, Pos: pos}, nil
}

func (p *parser) parseAlways() (*AlwaysBlock, error) {
	b := &AlwaysBlock{Pos: p.pos()}
	kw := p.tok.Kind
	if err := p.next(); err != nil {
		return nil, err
	}
	switch kw {
	case lex.AlwaysComb:
		b.Kind = BlockComb
	case lex.AlwaysFF, lex.Always:
		b.Kind = BlockClocked
		if _, err := p.expect(lex.At); err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.LParen); err != nil {
			return nil, err
		}
		for {
			item, err := p.parseSensItem()
			if err != nil {
				return nil, err
			}
			b.Sens = append(b.Sens, item)
			if ok, err := p.accept(lex.Comma); err != nil {
				return nil, err
			} else if !ok {
				break
			}
		}
		if _, err := p.expect(lex.RParen); err != nil {
			return nil, err
		}
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	b.Body = body
	return b, nil
}

func (p *parser) parseSensItem() (SensItem, error) {
	item := SensItem{Pos: p.pos()}
	switch p.tok.Kind {
	case lex.Posedge:
		item.Edge = Posedge
	case lex.Negedge:
		item.Edge = Negedge
	default:
		return item, p.errExpected("'posedge' or 'negedge'")
	}
	if err := p.next(); err != nil {
		return item, err
	}
	name, err := p.expect(lex.Ident)
	if err != nil {
		return item, err
	}
	item.Signal = name.Text
	return item, nil
}

func (p *parser) parseStmt() (Stmt, error) {
	switch p.tok.Kind {
	case lex.Begin:
		return p.parseBlockStmt()
	case lex.If:
		return p.parseIfStmt()
	case lex.Case:
		return p.parseCaseStmt()
	case lex.Ident:
		return p.parseAssignStmt()
	default:
		return nil, p.errExpected("statement")
	}
}

func (p *parser) parseBlockStmt() (Stmt, error) {
	blk := &BlockStmt{Pos: p.pos()}
	if err := p.next(); err != nil { // consume 'begin'
		return nil, err
	}
	for p.tok.Kind != lex.End {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, s)
	}
	return blk, p.next() // consume 'end'
}

func (p *parser) parseIfStmt() (Stmt, error) {
	s := &IfStmt{Pos: p.pos()}
	if err := p.next(); err != nil { // consume 'if'
		return nil, err
	}
	if _, err := p.expect(lex.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	s.Cond = cond
	if _, err := p.expect(lex.RParen); err != nil {
		return nil, err
	}
	if s.Then, err = p.parseStmt(); err != nil {
		return nil, err
	}
	if ok, err := p.accept(lex.Else); err != nil {
		return nil, err
	} else if ok {
		if s.Else, err = p.parseStmt(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (p *parser) parseCaseStmt() (Stmt, error) {
	s := &CaseStmt{Pos: p.pos()}
	if err := p.next(); err != nil { // consume 'case'
		return nil, err
	}
	if _, err := p.expect(lex.LParen); err != nil {
		return nil, err
	}
	subj, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	s.Subject = subj
	if _, err := p.expect(lex.RParen); err != nil {
		return nil, err
	}
	for p.tok.Kind != lex.EndCase {
		if p.tok.Kind == lex.Default {
			if s.Default != nil {
				return nil, p.errExpected("case label or 'endcase'")
			}
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.accept(lex.Colon); err != nil {
				return nil, err
			}
			if s.Default, err = p.parseStmt(); err != nil {
				return nil, err
			}
			continue
		}
		var item CaseItem
		for {
			label, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			item.Labels = append(item.Labels, label)
			if ok, err := p.accept(lex.Comma); err != nil {
				return nil, err
			} else if !ok {
				break
			}
		}
		if _, err := p.expect(lex.Colon); err != nil {
			return nil, err
		}
		if item.Body, err = p.parseStmt(); err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)
	}
	return s, p.next() // consume 'endcase'
}

// parseAssignStmt parses a procedural assignment. After the target
// identifier, '=' makes it blocking and '<=' non-blocking; in this
// position '<=' is never the relational operator.
func (p *parser) parseAssignStmt() (Stmt, error) {
	name, err := p.expect(lex.Ident)
	if err != nil {
		return nil, err
	}
	s := &AssignStmt{Target: name.Text, Pos: Pos{Line: name.Line, Col: name.Col}}
	switch p.tok.Kind {
	case lex.Equals:
		s.Blocking = true
	case lex.Le:
	default:
		return nil, p.errExpected("'=' or '<='")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if s.RHS, err = p.parseExpr(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.Semi); err != nil {
		return nil, err
	}
	return s, nil
}

// Expression parsing, one tier per precedence level.

func (p *parser) parseExpr() (Expr, error) {
	cond, err := p.parseLOr()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != lex.Question {
		return cond, nil
	}
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.Colon); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &Cond{Cond: cond, Then: then, Else: els, Pos: pos}, nil
}

// binaryTier parses a left-associative tier over the given operators.
func (p *parser) binaryTier(ops map[lex.Kind]Op, sub func() (Expr, error)) (Expr, error) {
	x, err := sub()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.tok.Kind]
		if !ok {
			return x, nil
		}
		pos := p.pos()
		if err := p.next(); err != nil {
			return nil, err
		}
		y, err := sub()
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: op, X: x, Y: y, Pos: pos}
	}
}

var (
	lorOps   = map[lex.Kind]Op{lex.PipePipe: OpLOr}
	landOps  = map[lex.Kind]Op{lex.AmpAmp: OpLAnd}
	borOps   = map[lex.Kind]Op{lex.Pipe: OpOr}
	bxorOps  = map[lex.Kind]Op{lex.Caret: OpXor}
	bandOps  = map[lex.Kind]Op{lex.Amp: OpAnd}
	eqOps    = map[lex.Kind]Op{lex.EqEq: OpEq, lex.NotEq: OpNe}
	relOps   = map[lex.Kind]Op{lex.Lt: OpLt, lex.Le: OpLe, lex.Gt: OpGt, lex.Ge: OpGe}
	shiftOps = map[lex.Kind]Op{lex.Shl: OpShl, lex.Shr: OpShr}
	addOps   = map[lex.Kind]Op{lex.Plus: OpAdd, lex.Minus: OpSub}
	mulOps   = map[lex.Kind]Op{lex.Star: OpMul, lex.Slash: OpDiv, lex.Percent: OpMod}
)

func (p *parser) parseLOr() (Expr, error)   { return p.binaryTier(lorOps, p.parseLAnd) }
func (p *parser) parseLAnd() (Expr, error)  { return p.binaryTier(landOps, p.parseBOr) }
func (p *parser) parseBOr() (Expr, error)   { return p.binaryTier(borOps, p.parseBXor) }
func (p *parser) parseBXor() (Expr, error)  { return p.binaryTier(bxorOps, p.parseBAnd) }
func (p *parser) parseBAnd() (Expr, error)  { return p.binaryTier(bandOps, p.parseEq) }
func (p *parser) parseEq() (Expr, error)    { return p.binaryTier(eqOps, p.parseRel) }
func (p *parser) parseRel() (Expr, error)   { return p.binaryTier(relOps, p.parseShift) }
func (p *parser) parseShift() (Expr, error) { return p.binaryTier(shiftOps, p.parseAdd) }
func (p *parser) parseAdd() (Expr, error)   { return p.binaryTier(addOps, p.parseMul) }
func (p *parser) parseMul() (Expr, error)   { return p.binaryTier(mulOps, p.parseUnary) }

func (p *parser) parseUnary() (Expr, error) {
	var op Op
	switch p.tok.Kind {
	case lex.Bang:
		op = OpLNot
	case lex.Tilde:
		op = OpNot
	case lex.Minus:
		op = OpNeg
	default:
		return p.parsePrimary()
	}
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &Unary{Op: op, X: x, Pos: pos}, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	pos := p.pos()
	switch p.tok.Kind {
	case lex.Number:
		e := &Literal{Value: p.tok.Value, Pos: pos}
		return e, p.next()
	case lex.SizedLit:
		e := &Literal{Value: p.tok.Value, Width: p.tok.Width, HiZ: p.tok.HiZ, Pos: pos}
		return e, p.next()
	case lex.Ident:
		e := &Ref{Name: p.tok.Text, Pos: pos}
		return e, p.next()
	case lex.LParen:
		if err := p.next(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.RParen); err != nil {
			return nil, err
		}
		return e, nil
	case lex.LBrace:
		if err := p.next(); err != nil {
			return nil, err
		}
		c := &Concat{Pos: pos}
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			c.Parts = append(c.Parts, e)
			if ok, err := p.accept(lex.Comma); err != nil {
				return nil, err
			} else if !ok {
				break
			}
		}
		if _, err := p.expect(lex.RBrace); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, p.errExpected("expression")
	}
}
