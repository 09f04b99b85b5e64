// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package svsim

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// A Signal is one entry of the elaborated signal table.
type Signal struct {
	Name   string
	Width  int
	Kind   NetKind
	Dir    Direction // meaningful only when IsPort
	IsPort bool
	Init   uint64
}

// A Design is the elaborated, simulatable form of one module: a flat
// signal table addressed by stable indices, plus the compiled
// procedural blocks and continuous assignments with their read/write
// sets and sensitivity registrations. Immutable once built; any number
// of simulation runs may share one Design.
type Design struct {
	name string
	ts   Timescale

	sigs  []Signal
	index map[string]int

	blocks []*pblock
	// driven marks signals written by a block or continuous assignment.
	driven []bool
	// combSens maps a signal index to the comb/assign blocks that must
	// re-evaluate when it changes.
	combSens [][]int
	// clockSens maps a signal index to the clocked blocks triggered by
	// an edge on it.
	clockSens [][]clockTrig
}

// Name returns the elaborated module's name.
func (d *Design) Name() string { return d.name }

// Timescale returns the design's time unit and precision. It defaults
// to 1ns/1ps when the source has no `timescale directive.
func (d *Design) Timescale() Timescale { return d.ts }

// Signals returns a copy of the signal table, in declaration order.
func (d *Design) Signals() []Signal {
	out := make([]Signal, len(d.sigs))
	copy(out, d.sigs)
	return out
}

// Signal looks a signal up by name.
func (d *Design) Signal(name string) (Signal, bool) {
	i, ok := d.index[name]
	if !ok {
		return Signal{}, false
	}
	return d.sigs[i], true
}

// Block kinds after elaboration. BlockAssign is a continuous
// assignment, scheduled like combinational logic.
const BlockAssign BlockKind = BlockClocked + 1

type clockTrig struct {
	block int
	edge  Edge
}

type sensTrig struct {
	sig  int
	edge Edge
}

// A pblock is a compiled procedural block or continuous assignment.
type pblock struct {
	id     int
	kind   BlockKind
	label  string
	sens   []sensTrig // clocked blocks only
	reads  []int
	writes []int
	body   *cstmt
}

// Compiled statements form a closed tagged variant; the scheduler and
// executor dispatch over kind exhaustively.
type cstmtKind int

const (
	stAssign cstmtKind = iota
	stIf
	stCase
	stBlock
)

type cstmt struct {
	kind cstmtKind

	// stAssign
	target   int
	blocking bool
	rhs      *cexpr

	// stIf
	cond      *cexpr
	then, els *cstmt

	// stCase
	subject *cexpr
	items   []ccaseItem
	def     *cstmt

	// stBlock
	stmts []*cstmt
}

type ccaseItem struct {
	labels []*cexpr
	body   *cstmt
}

// Elaborate resolves parameters, widths and signal bindings for one
// module of src and returns a simulatable Design.
//
// modName selects the module to elaborate; the empty string selects the
// sole (or first) module. overrides take precedence over parameter
// defaults. Structural errors (unresolved references, width problems,
// multiple drivers) are returned as *ElabError.
func Elaborate(src *Source, modName string, overrides map[string]uint64) (*Design, error) {
	m, err := findModule(src, modName)
	if err != nil {
		return nil, err
	}
	log := logger.WithField("module", m.Name)
	log.Debug("elaborating")

	d := &Design{
		name:  m.Name,
		ts:    Timescale{Unit: 1_000_000, Precision: 1_000}, // 1ns/1ps
		index: make(map[string]int),
	}
	if src.Timescale != nil {
		d.ts = *src.Timescale
	}

	e := &elaborator{d: d, params: make(map[string]uint64)}

	// 1. parameter substitution: override > default; defaults may
	// reference earlier parameters.
	for name := range overrides {
		if !hasParam(m, name) {
			return nil, errors.Errorf("override for unknown parameter %q in module %s", name, m.Name)
		}
	}
	for _, prm := range m.Params {
		if v, ok := overrides[prm.Name]; ok {
			e.params[prm.Name] = v
			continue
		}
		v, err := e.constEval(prm.Default)
		if err != nil {
			return nil, err
		}
		e.params[prm.Name] = v
	}

	// 2+3. concrete widths and the signal table: ports first, then
	// internal declarations, with stable indices.
	for _, port := range m.Ports {
		w, err := e.rangeWidth(port.Width, port.Name, port.Pos)
		if err != nil {
			return nil, err
		}
		if err := e.addSignal(Signal{
			Name: port.Name, Width: w, Kind: port.Kind,
			Dir: port.Dir, IsPort: true,
		}, port.Pos); err != nil {
			return nil, err
		}
	}
	for _, decl := range m.Decls {
		w, err := e.rangeWidth(decl.Width, decl.Name, decl.Pos)
		if err != nil {
			return nil, err
		}
		sig := Signal{Name: decl.Name, Width: w, Kind: decl.Kind}
		if decl.Init != nil {
			v, err := e.constEval(decl.Init)
			if err != nil {
				return nil, err
			}
			sig.Init = truncate(v, w)
		}
		if err := e.addSignal(sig, decl.Pos); err != nil {
			return nil, err
		}
	}

	// 4. compile blocks and continuous assigns, computing read and
	// write sets.
	for _, a := range m.Assigns {
		if err := e.compileAssign(a); err != nil {
			return nil, err
		}
	}
	for _, b := range m.Blocks {
		if err := e.compileBlock(b); err != nil {
			return nil, err
		}
	}

	// 5. sensitivity registration.
	d.combSens = make([][]int, len(d.sigs))
	d.clockSens = make([][]clockTrig, len(d.sigs))
	for _, blk := range d.blocks {
		switch blk.kind {
		case BlockComb, BlockAssign:
			for _, sig := range blk.reads {
				d.combSens[sig] = append(d.combSens[sig], blk.id)
			}
		case BlockClocked:
			for _, tr := range blk.sens {
				d.clockSens[tr.sig] = append(d.clockSens[tr.sig], clockTrig{block: blk.id, edge: tr.edge})
			}
		}
	}

	// 6. single-driver rule.
	if err := e.checkDrivers(); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"signals": len(d.sigs),
		"blocks":  len(d.blocks),
	}).Debug("elaborated")
	return d, nil
}

func findModule(src *Source, name string) (*Module, error) {
	if len(src.Modules) == 0 {
		return nil, errors.New("source contains no modules")
	}
	if name == "" {
		return src.Modules[0], nil
	}
	for _, m := range src.Modules {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, errors.Errorf("module %q not found", name)
}

func hasParam(m *Module, name string) bool {
	for _, p := range m.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

type elaborator struct {
	d      *Design
	params map[string]uint64
}

func (e *elaborator) addSignal(sig Signal, pos Pos) error {
	if _, dup := e.d.index[sig.Name]; dup {
		return errors.Errorf("duplicate declaration of %s at %s", sig.Name, pos)
	}
	if _, dup := e.params[sig.Name]; dup {
		return errors.Errorf("declaration of %s at %s shadows a parameter", sig.Name, pos)
	}
	e.d.index[sig.Name] = len(e.d.sigs)
	e.d.sigs = append(e.d.sigs, sig)
	return nil
}

// rangeWidth resolves an optional [msb:lsb] range to a concrete width.
func (e *elaborator) rangeWidth(r *Range, signal string, pos Pos) (int, error) {
	if r == nil {
		return 1, nil
	}
	msb, err := e.constEval(r.MSB)
	if err != nil {
		return 0, err
	}
	lsb, err := e.constEval(r.LSB)
	if err != nil {
		return 0, err
	}
	if lsb > msb {
		return 0, &ElabError{
			Kind: ErrWidthMismatch, Signal: signal, Pos: pos,
			Msg: fmt.Sprintf("reversed range [%d:%d]", msb, lsb),
		}
	}
	w := int(msb-lsb) + 1
	if w > 64 {
		return 0, &ElabError{
			Kind: ErrUnsupportedWidth, Signal: signal, Pos: pos,
			Msg: fmt.Sprintf("%d bits exceeds the 64-bit limit", w),
		}
	}
	return w, nil
}

// constEval evaluates an expression over parameters only. Signal
// references are not allowed here.
func (e *elaborator) constEval(expr Expr) (uint64, error) {
	cx, err := e.compileExpr(expr, nil, "constant expression")
	if err != nil {
		return 0, err
	}
	return cx.eval(nil), nil
}

func (e *elaborator) compileAssign(a *ContAssign) error {
	label := fmt.Sprintf("assign %s (line %d)", a.LHS, a.Pos.Line)
	blk := &pblock{id: len(e.d.blocks), kind: BlockAssign, label: label}
	reads := make(map[int]bool)
	target, ok := e.d.index[a.LHS]
	if !ok {
		return &ElabError{Kind: ErrUnresolvedReference, Signal: a.LHS, Blocks: []string{label}, Pos: a.Pos}
	}
	rhs, err := e.compileExpr(a.RHS, reads, label)
	if err != nil {
		return err
	}
	blk.body = &cstmt{kind: stAssign, target: target, blocking: true, rhs: rhs}
	blk.reads = sortedKeys(reads)
	blk.writes = []int{target}
	e.d.blocks = append(e.d.blocks, blk)
	return nil
}

func (e *elaborator) compileBlock(b *AlwaysBlock) error {
	var label string
	if b.Kind == BlockComb {
		label = fmt.Sprintf("always_comb (line %d)", b.Pos.Line)
	} else {
		label = fmt.Sprintf("always_ff (line %d)", b.Pos.Line)
	}
	blk := &pblock{id: len(e.d.blocks), kind: b.Kind, label: label}

	for _, s := range b.Sens {
		sig, ok := e.d.index[s.Signal]
		if !ok {
			return &ElabError{Kind: ErrUnresolvedReference, Signal: s.Signal, Blocks: []string{label}, Pos: s.Pos}
		}
		blk.sens = append(blk.sens, sensTrig{sig: sig, edge: s.Edge})
	}

	reads := make(map[int]bool)
	writes := make(map[int]bool)
	body, err := e.compileStmt(b.Body, reads, writes, label)
	if err != nil {
		return err
	}
	blk.body = body
	blk.reads = sortedKeys(reads)
	blk.writes = sortedKeys(writes)
	e.d.blocks = append(e.d.blocks, blk)
	return nil
}

func (e *elaborator) compileStmt(s Stmt, reads, writes map[int]bool, label string) (*cstmt, error) {
	switch s := s.(type) {
	case *AssignStmt:
		target, ok := e.d.index[s.Target]
		if !ok {
			return nil, &ElabError{Kind: ErrUnresolvedReference, Signal: s.Target, Blocks: []string{label}, Pos: s.Pos}
		}
		rhs, err := e.compileExpr(s.RHS, reads, label)
		if err != nil {
			return nil, err
		}
		writes[target] = true
		return &cstmt{kind: stAssign, target: target, blocking: s.Blocking, rhs: rhs}, nil
	case *IfStmt:
		cond, err := e.compileExpr(s.Cond, reads, label)
		if err != nil {
			return nil, err
		}
		then, err := e.compileStmt(s.Then, reads, writes, label)
		if err != nil {
			return nil, err
		}
		out := &cstmt{kind: stIf, cond: cond, then: then}
		if s.Else != nil {
			if out.els, err = e.compileStmt(s.Else, reads, writes, label); err != nil {
				return nil, err
			}
		}
		return out, nil
	case *CaseStmt:
		subject, err := e.compileExpr(s.Subject, reads, label)
		if err != nil {
			return nil, err
		}
		out := &cstmt{kind: stCase, subject: subject}
		for _, item := range s.Items {
			var ci ccaseItem
			for _, l := range item.Labels {
				cl, err := e.compileExpr(l, reads, label)
				if err != nil {
					return nil, err
				}
				ci.labels = append(ci.labels, cl)
			}
			if ci.body, err = e.compileStmt(item.Body, reads, writes, label); err != nil {
				return nil, err
			}
			out.items = append(out.items, ci)
		}
		if s.Default != nil {
			if out.def, err = e.compileStmt(s.Default, reads, writes, label); err != nil {
				return nil, err
			}
		}
		return out, nil
	case *BlockStmt:
		out := &cstmt{kind: stBlock}
		for _, sub := range s.Stmts {
			cs, err := e.compileStmt(sub, reads, writes, label)
			if err != nil {
				return nil, err
			}
			out.stmts = append(out.stmts, cs)
		}
		return out, nil
	default:
		return nil, errors.Errorf("unhandled statement %T", s)
	}
}

// compileExpr flattens an expression to postfix code, resolving
// identifier references to parameter values or signal indices and
// computing the resolved width of every node. reads, when non-nil,
// collects the referenced signal indices.
func (e *elaborator) compileExpr(expr Expr, reads map[int]bool, label string) (*cexpr, error) {
	switch expr := expr.(type) {
	case *Literal:
		w := expr.Width
		if w > 64 {
			return nil, &ElabError{
				Kind: ErrUnsupportedWidth, Blocks: []string{label}, Pos: expr.Pos,
				Msg: fmt.Sprintf("%d-bit literal exceeds the 64-bit limit", w),
			}
		}
		if w == 0 {
			w = unsizedWidth(expr.Value)
		}
		v := expr.Value
		if expr.HiZ {
			// hi-Z literals lex and parse but evaluate as zero;
			// four-state values are out of scope.
			v = 0
		}
		return &cexpr{
			code:  []instr{{op: evConst, val: truncate(v, w), width: w}},
			width: w,
		}, nil
	case *Ref:
		if v, ok := e.params[expr.Name]; ok {
			w := unsizedWidth(v)
			return &cexpr{code: []instr{{op: evConst, val: v, width: w}}, width: w}, nil
		}
		sig, ok := e.d.index[expr.Name]
		if !ok {
			return nil, &ElabError{
				Kind: ErrUnresolvedReference, Signal: expr.Name,
				Blocks: []string{label}, Pos: expr.Pos,
			}
		}
		if reads == nil {
			return nil, &ElabError{
				Kind: ErrUnresolvedReference, Signal: expr.Name,
				Blocks: []string{label}, Pos: expr.Pos,
				Msg:  "signals cannot appear in constant expressions",
			}
		}
		reads[sig] = true
		w := e.d.sigs[sig].Width
		return &cexpr{code: []instr{{op: evSignal, sig: sig, width: w}}, width: w}, nil
	case *Unary:
		x, err := e.compileExpr(expr.X, reads, label)
		if err != nil {
			return nil, err
		}
		w := x.width
		if expr.Op == OpLNot {
			w = 1
		}
		return &cexpr{
			code:  append(x.code, instr{op: evUnary, aop: expr.Op, width: w}),
			width: w,
		}, nil
	case *Binary:
		x, err := e.compileExpr(expr.X, reads, label)
		if err != nil {
			return nil, err
		}
		y, err := e.compileExpr(expr.Y, reads, label)
		if err != nil {
			return nil, err
		}
		w := binaryWidth(expr.Op, x.width, y.width)
		code := append(x.code, y.code...)
		return &cexpr{
			code:  append(code, instr{op: evBinary, aop: expr.Op, width: w}),
			width: w,
		}, nil
	case *Cond:
		cond, err := e.compileExpr(expr.Cond, reads, label)
		if err != nil {
			return nil, err
		}
		then, err := e.compileExpr(expr.Then, reads, label)
		if err != nil {
			return nil, err
		}
		els, err := e.compileExpr(expr.Else, reads, label)
		if err != nil {
			return nil, err
		}
		w := then.width
		if els.width > w {
			w = els.width
		}
		code := append(cond.code, then.code...)
		code = append(code, els.code...)
		return &cexpr{
			code:  append(code, instr{op: evCond, width: w}),
			width: w,
		}, nil
	case *Concat:
		var (
			code  []instr
			argw  []int
			total int
		)
		for _, part := range expr.Parts {
			if lit, ok := part.(*Literal); ok && lit.Width == 0 {
				return nil, &ElabError{
					Kind: ErrWidthMismatch, Blocks: []string{label}, Pos: lit.Pos,
					Msg: "unsized literal in concatenation",
				}
			}
			cp, err := e.compileExpr(part, reads, label)
			if err != nil {
				return nil, err
			}
			code = append(code, cp.code...)
			argw = append(argw, cp.width)
			total += cp.width
		}
		if total > 64 {
			return nil, &ElabError{
				Kind: ErrUnsupportedWidth, Blocks: []string{label}, Pos: expr.Pos,
				Msg: fmt.Sprintf("%d-bit concatenation exceeds the 64-bit limit", total),
			}
		}
		return &cexpr{
			code:  append(code, instr{op: evConcat, argw: argw, width: total}),
			width: total,
		}, nil
	default:
		return nil, errors.Errorf("unhandled expression %T", expr)
	}
}

// unsizedWidth is the width of an unsized literal: 32 bits, widened
// when the value needs more.
func unsizedWidth(v uint64) int {
	if n := bits.Len64(v); n > 32 {
		return n
	}
	return 32
}

// binaryWidth implements the width-resolution rules: comparisons and
// logical operators are single-bit, shifts keep the left operand's
// width, everything else takes the wider operand.
func binaryWidth(op Op, wx, wy int) int {
	switch op {
	case OpLt, OpLe, OpGt, OpGe, OpEq, OpNe, OpLAnd, OpLOr:
		return 1
	case OpShl, OpShr:
		return wx
	default:
		if wy > wx {
			return wy
		}
		return wx
	}
}

// checkDrivers enforces the single-driver rule: no signal may be
// written by more than one block or continuous assignment.
func (e *elaborator) checkDrivers() error {
	driver := make(map[int]*pblock)
	e.d.driven = make([]bool, len(e.d.sigs))
	for _, blk := range e.d.blocks {
		for _, sig := range blk.writes {
			e.d.driven[sig] = true
			prev, ok := driver[sig]
			if !ok {
				driver[sig] = blk
				continue
			}
			return &ElabError{
				Kind:   ErrMultipleDrivers,
				Signal: e.d.sigs[sig].Name,
				Blocks: []string{prev.label, blk.label},
			}
		}
	}
	return nil
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
