// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package svsim

// Elaborated expressions are flattened to a postfix instruction slice
// and evaluated with an explicit value stack, so deeply nested sources
// cannot exhaust the call stack at simulation time. Signal references
// are pre-resolved to signal-table indices; no name lookup happens
// during evaluation.

type evalOp int

const (
	evConst evalOp = iota
	evSignal
	evUnary
	evBinary
	evCond
	evConcat
)

type instr struct {
	op    evalOp
	aop   Op     // operator for evUnary/evBinary
	val   uint64 // evConst
	sig   int    // evSignal
	width int    // result width, used for masking
	argw  []int  // evConcat part widths, most significant first
}

// A cexpr is a compiled expression: postfix code plus its resolved
// result width.
type cexpr struct {
	code  []instr
	width int
}

// mask returns the value mask for a width in bits (1..64).
func mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

// truncate applies the width-truncation rule: keep exactly the low
// width bits, zero-extending narrower values implicitly.
func truncate(v uint64, width int) uint64 {
	return v & mask(width)
}

func boolVal(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// eval runs a compiled expression against the given signal values.
// Evaluation is pure: the only observable effect is the returned value.
func (cx *cexpr) eval(vals []uint64) uint64 {
	stack := make([]uint64, 0, 16)
	for i := range cx.code {
		in := &cx.code[i]
		switch in.op {
		case evConst:
			stack = append(stack, in.val)
		case evSignal:
			stack = append(stack, vals[in.sig])
		case evUnary:
			x := stack[len(stack)-1]
			var v uint64
			switch in.aop {
			case OpLNot:
				v = boolVal(x == 0)
			case OpNot:
				v = ^x
			case OpNeg:
				v = -x
			}
			stack[len(stack)-1] = truncate(v, in.width)
		case evBinary:
			y := stack[len(stack)-1]
			x := stack[len(stack)-2]
			stack = stack[:len(stack)-1]
			stack[len(stack)-1] = truncate(binOp(in.aop, x, y), in.width)
		case evCond:
			els := stack[len(stack)-1]
			then := stack[len(stack)-2]
			cond := stack[len(stack)-3]
			stack = stack[:len(stack)-2]
			v := els
			if cond != 0 {
				v = then
			}
			stack[len(stack)-1] = truncate(v, in.width)
		case evConcat:
			n := len(in.argw)
			var v uint64
			parts := stack[len(stack)-n:]
			for i, w := range in.argw {
				v = v<<uint(w) | truncate(parts[i], w)
			}
			stack = stack[:len(stack)-n]
			stack = append(stack, truncate(v, in.width))
		}
	}
	return stack[0]
}

func binOp(op Op, x, y uint64) uint64 {
	switch op {
	case OpMul:
		return x * y
	case OpDiv:
		if y == 0 {
			logger.Warn("division by zero evaluates to 0")
			return 0
		}
		return x / y
	case OpMod:
		if y == 0 {
			logger.Warn("modulo by zero evaluates to 0")
			return 0
		}
		return x % y
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	case OpShl:
		if y >= 64 {
			return 0
		}
		return x << y
	case OpShr:
		if y >= 64 {
			return 0
		}
		return x >> y
	case OpLt:
		return boolVal(x < y)
	case OpLe:
		return boolVal(x <= y)
	case OpGt:
		return boolVal(x > y)
	case OpGe:
		return boolVal(x >= y)
	case OpEq:
		return boolVal(x == y)
	case OpNe:
		return boolVal(x != y)
	case OpAnd:
		return x & y
	case OpXor:
		return x ^ y
	case OpOr:
		return x | y
	case OpLAnd:
		return boolVal(x != 0 && y != 0)
	case OpLOr:
		return boolVal(x != 0 || y != 0)
	}
	return 0
}
