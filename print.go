// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package svsim

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes src back out as canonical SystemVerilog. The output
// reparses to a structurally identical AST: subexpressions are fully
// parenthesized so no precedence information is lost.
func Fprint(w io.Writer, src *Source) error {
	p := &printer{w: w}
	p.source(src)
	return p.err
}

// Format returns the canonical source text for src.
func Format(src *Source) string {
	var b strings.Builder
	Fprint(&b, src) // never fails on a strings.Builder
	return b.String()
}

type printer struct {
	w      io.Writer
	indent int
	err    error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) line(format string, args ...interface{}) {
	p.printf(strings.Repeat("  ", p.indent)+format+"\n", args...)
}

func (p *printer) source(src *Source) {
	if ts := src.Timescale; ts != nil {
		p.line("`timescale %s/%s", fsTime(ts.Unit), fsTime(ts.Precision))
	}
	for i, m := range src.Modules {
		if i > 0 || src.Timescale != nil {
			p.printf("\n")
		}
		p.module(m)
	}
}

// fsTime renders a femtosecond count using the largest exact unit.
func fsTime(fs uint64) string {
	type unit struct {
		name string
		mul  uint64
	}
	for _, u := range []unit{{"us", 1e9}, {"ns", 1e6}, {"ps", 1e3}} {
		if fs >= u.mul && fs%u.mul == 0 {
			return fmt.Sprintf("%d%s", fs/u.mul, u.name)
		}
	}
	return fmt.Sprintf("%dfs", fs)
}

func (p *printer) module(m *Module) {
	p.printf("module %s", m.Name)
	if len(m.Params) > 0 {
		p.printf(" #(\n")
		for i, prm := range m.Params {
			sep := ","
			if i == len(m.Params)-1 {
				sep = ""
			}
			p.printf("  parameter %s = %s%s\n", prm.Name, exprString(prm.Default), sep)
		}
		p.printf(")")
	}
	if len(m.Ports) > 0 {
		p.printf(" (\n")
		for i, port := range m.Ports {
			sep := ","
			if i == len(m.Ports)-1 {
				sep = ""
			}
			p.printf("  %s %s%s%s%s\n", port.Dir, port.Kind, rangeString(port.Width), " "+port.Name, sep)
		}
		p.printf(")")
	}
	p.printf(";\n")
	p.indent++
	for _, d := range m.Decls {
		if d.Init != nil {
			p.line("%s%s %s = %s;", d.Kind, rangeString(d.Width), d.Name, exprString(d.Init))
		} else {
			p.line("%s%s %s;", d.Kind, rangeString(d.Width), d.Name)
		}
	}
	for _, a := range m.Assigns {
		p.line("assign %s = %s;", a.LHS, exprString(a.RHS))
	}
	for _, b := range m.Blocks {
		p.block(b)
	}
	p.indent--
	p.printf("endmodule\n")
}

func (p *printer) block(b *AlwaysBlock) {
	if b.Kind == BlockComb {
		p.line("always_comb")
	} else {
		var sens []string
		for _, s := range b.Sens {
			sens = append(sens, fmt.Sprintf("%s %s", s.Edge, s.Signal))
		}
		p.line("always_ff @(%s)", strings.Join(sens, ", "))
	}
	p.indent++
	p.stmt(b.Body)
	p.indent--
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *BlockStmt:
		p.indent--
		p.line("begin")
		p.indent++
		for _, sub := range s.Stmts {
			p.stmt(sub)
		}
		p.indent--
		p.line("end")
		p.indent++
	case *AssignStmt:
		op := "<="
		if s.Blocking {
			op = "="
		}
		p.line("%s %s %s;", s.Target, op, exprString(s.RHS))
	case *IfStmt:
		p.line("if (%s)", exprString(s.Cond))
		p.indent++
		p.stmt(s.Then)
		p.indent--
		if s.Else != nil {
			p.line("else")
			p.indent++
			p.stmt(s.Else)
			p.indent--
		}
	case *CaseStmt:
		p.line("case (%s)", exprString(s.Subject))
		p.indent++
		for _, item := range s.Items {
			var labels []string
			for _, l := range item.Labels {
				labels = append(labels, exprString(l))
			}
			p.line("%s:", strings.Join(labels, ", "))
			p.indent++
			p.stmt(item.Body)
			p.indent--
		}
		if s.Default != nil {
			p.line("default:")
			p.indent++
			p.stmt(s.Default)
			p.indent--
		}
		p.indent--
		p.line("endcase")
	}
}

func rangeString(r *Range) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf(" [%s:%s]", exprString(r.MSB), exprString(r.LSB))
}

func exprString(e Expr) string {
	switch e := e.(type) {
	case *Literal:
		switch {
		case e.HiZ && e.Width > 0:
			return fmt.Sprintf("%d'bz", e.Width)
		case e.HiZ:
			return "'bz"
		case e.Width > 0:
			return fmt.Sprintf("%d'h%x", e.Width, e.Value)
		default:
			return fmt.Sprintf("%d", e.Value)
		}
	case *Ref:
		return e.Name
	case *Unary:
		return fmt.Sprintf("%s(%s)", e.Op, exprString(e.X))
	case *Binary:
		return fmt.Sprintf("(%s %s %s)", exprString(e.X), e.Op, exprString(e.Y))
	case *Cond:
		return fmt.Sprintf("(%s ? %s : %s)", exprString(e.Cond), exprString(e.Then), exprString(e.Else))
	case *Concat:
		var parts []string
		for _, part := range e.Parts {
			parts = append(parts, exprString(part))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "?"
	}
}
