// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package svsim

import "fmt"

// Pos is a line/column position in the source text.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// A Source is the parsed representation of one SystemVerilog file.
type Source struct {
	// Timescale is nil when the file carries no `timescale directive.
	Timescale *Timescale
	Modules   []*Module
}

// Timescale holds the time unit and precision of a `timescale
// directive, both in femtoseconds.
type Timescale struct {
	Unit      uint64
	Precision uint64
}

// A Module is a parsed module declaration. It is immutable after
// parsing; elaboration never mutates the AST.
type Module struct {
	Name    string
	Params  []*Param
	Ports   []*Port
	Decls   []*Decl
	Assigns []*ContAssign
	Blocks  []*AlwaysBlock
	Pos     Pos
}

// Direction is a port direction.
type Direction int

// Port directions.
const (
	DirInput Direction = iota
	DirOutput
	DirInout
)

func (d Direction) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	default:
		return "inout"
	}
}

// NetKind distinguishes nets from variables. The logic keyword maps to
// KindReg.
type NetKind int

// Net kinds.
const (
	KindWire NetKind = iota
	KindReg
)

func (k NetKind) String() string {
	if k == KindReg {
		return "reg"
	}
	return "wire"
}

// A Range is a bit range [MSB:LSB]. Both bounds are constant
// expressions over parameters, resolved at elaboration.
type Range struct {
	MSB, LSB Expr
}

// A Param is a module parameter with its default value.
type Param struct {
	Name    string
	Default Expr
	Pos     Pos
}

// A Port is a declared module port.
type Port struct {
	Name  string
	Dir   Direction
	Kind  NetKind
	Width *Range // nil for single-bit ports
	Pos   Pos
}

// A Decl is a module-scope net or variable declaration.
type Decl struct {
	Name  string
	Kind  NetKind
	Width *Range // nil for single-bit declarations
	Init  Expr   // optional constant initializer, may be nil
	Pos   Pos
}

// A ContAssign is a continuous assignment: assign lhs = rhs;
type ContAssign struct {
	LHS string
	RHS Expr
	Pos Pos
}

// Edge is the polarity of a sensitivity-list entry.
type Edge int

// Edge polarities.
const (
	Posedge Edge = iota
	Negedge
)

func (e Edge) String() string {
	if e == Negedge {
		return "negedge"
	}
	return "posedge"
}

// A SensItem is one entry of an always_ff/always sensitivity list.
type SensItem struct {
	Signal string
	Edge   Edge
	Pos    Pos
}

// BlockKind is the kind of a procedural block.
type BlockKind int

// Procedural block kinds.
const (
	BlockComb BlockKind = iota
	BlockClocked
)

// An AlwaysBlock is a procedural block. Comb blocks have an empty
// sensitivity list (it is inferred at elaboration from the read set);
// clocked blocks carry the declared edges.
type AlwaysBlock struct {
	Kind BlockKind
	Sens []SensItem
	Body Stmt
	Pos  Pos
}

// Stmt is a statement node.
type Stmt interface {
	stmt()
	StmtPos() Pos
}

// An AssignStmt is a procedural assignment, blocking (=) or
// non-blocking (<=).
type AssignStmt struct {
	Target   string
	Blocking bool
	RHS      Expr
	Pos      Pos
}

// An IfStmt is an if/else statement. Else may be nil.
type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt
	Pos  Pos
}

// A CaseItem is one arm of a case statement.
type CaseItem struct {
	Labels []Expr
	Body   Stmt
}

// A CaseStmt is a case/endcase statement. Default may be nil.
type CaseStmt struct {
	Subject Expr
	Items   []CaseItem
	Default Stmt
	Pos     Pos
}

// A BlockStmt is a begin/end statement sequence.
type BlockStmt struct {
	Stmts []Stmt
	Pos   Pos
}

func (*AssignStmt) stmt() {}
func (*IfStmt) stmt()     {}
func (*CaseStmt) stmt()   {}
func (*BlockStmt) stmt()  {}

func (s *AssignStmt) StmtPos() Pos { return s.Pos }
func (s *IfStmt) StmtPos() Pos     { return s.Pos }
func (s *CaseStmt) StmtPos() Pos   { return s.Pos }
func (s *BlockStmt) StmtPos() Pos  { return s.Pos }

// Op is an expression operator.
type Op int

// Expression operators.
const (
	OpLNot Op = iota // !
	OpNot            // ~
	OpNeg            // - (unary)
	OpMul
	OpDiv
	OpMod
	OpAdd
	OpSub
	OpShl
	OpShr
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd // &
	OpXor // ^
	OpOr  // |
	OpLAnd
	OpLOr
)

var opNames = map[Op]string{
	OpLNot: "!", OpNot: "~", OpNeg: "-",
	OpMul: "*", OpDiv: "/", OpMod: "%", OpAdd: "+", OpSub: "-",
	OpShl: "<<", OpShr: ">>",
	OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=", OpEq: "==", OpNe: "!=",
	OpAnd: "&", OpXor: "^", OpOr: "|", OpLAnd: "&&", OpLOr: "||",
}

func (op Op) String() string { return opNames[op] }

// Expr is an expression node.
type Expr interface {
	expr()
	ExprPos() Pos
}

// A Literal is a numeric literal. Width is 0 for unsized literals.
type Literal struct {
	Value uint64
	Width int
	HiZ   bool
	Pos   Pos
}

// A Ref is an identifier reference to a signal, port or parameter.
type Ref struct {
	Name string
	Pos  Pos
}

// A Unary is a unary operation.
type Unary struct {
	Op  Op
	X   Expr
	Pos Pos
}

// A Binary is a binary operation.
type Binary struct {
	Op   Op
	X, Y Expr
	Pos  Pos
}

// A Cond is a ternary conditional expression.
type Cond struct {
	Cond, Then, Else Expr
	Pos              Pos
}

// A Concat is a bit concatenation {a, b, ...}.
type Concat struct {
	Parts []Expr
	Pos   Pos
}

func (*Literal) expr() {}
func (*Ref) expr()     {}
func (*Unary) expr()   {}
func (*Binary) expr()  {}
func (*Cond) expr()    {}
func (*Concat) expr()  {}

func (e *Literal) ExprPos() Pos { return e.Pos }
func (e *Ref) ExprPos() Pos     { return e.Pos }
func (e *Unary) ExprPos() Pos   { return e.Pos }
func (e *Binary) ExprPos() Pos  { return e.Pos }
func (e *Cond) ExprPos() Pos    { return e.Pos }
func (e *Concat) ExprPos() Pos  { return e.Pos }
