// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package svsim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimescale(t *testing.T) {
	src, err := Parse("`timescale 1ns/1ps\nmodule m(); endmodule\n")
	require.NoError(t, err)
	require.NotNil(t, src.Timescale)
	assert.Equal(t, uint64(1_000_000), src.Timescale.Unit)
	assert.Equal(t, uint64(1_000), src.Timescale.Precision)
	require.Len(t, src.Modules, 1)
	assert.Equal(t, "m", src.Modules[0].Name)
}

func TestParseModuleHeader(t *testing.T) {
	src, err := Parse(`
module adder
#(
  parameter WIDTH = 8,
  CARRY = 1
)
(
  input wire clk,
  input wire [WIDTH-1:0] a, b,
  output reg [WIDTH:0] sum
);
endmodule
`)
	require.NoError(t, err)
	m := src.Modules[0]
	assert.Equal(t, "adder", m.Name)

	require.Len(t, m.Params, 2)
	assert.Equal(t, "WIDTH", m.Params[0].Name)
	assert.Equal(t, "CARRY", m.Params[1].Name)

	require.Len(t, m.Ports, 4)
	// direction, kind and width carry over across comma-separated names
	assert.Equal(t, "a", m.Ports[1].Name)
	assert.Equal(t, "b", m.Ports[2].Name)
	assert.Equal(t, DirInput, m.Ports[2].Dir)
	assert.Equal(t, KindWire, m.Ports[2].Kind)
	require.NotNil(t, m.Ports[2].Width)

	assert.Equal(t, "sum", m.Ports[3].Name)
	assert.Equal(t, DirOutput, m.Ports[3].Dir)
	assert.Equal(t, KindReg, m.Ports[3].Kind)
}

func TestParseDeclsAndAssign(t *testing.T) {
	src, err := Parse(`
module m();
  reg [3:0] a = 4'hA, b;
  wire w;
  logic flag;
  assign w = a == b;
endmodule
`)
	require.NoError(t, err)
	m := src.Modules[0]
	require.Len(t, m.Decls, 4)

	assert.Equal(t, "a", m.Decls[0].Name)
	assert.Equal(t, KindReg, m.Decls[0].Kind)
	lit, ok := m.Decls[0].Init.(*Literal)
	require.True(t, ok)
	assert.Equal(t, uint64(0xA), lit.Value)
	assert.Equal(t, 4, lit.Width)

	assert.Equal(t, "b", m.Decls[1].Name)
	assert.Nil(t, m.Decls[1].Init)
	require.NotNil(t, m.Decls[1].Width)

	assert.Equal(t, KindWire, m.Decls[2].Kind)
	// the logic keyword maps to reg
	assert.Equal(t, KindReg, m.Decls[3].Kind)

	require.Len(t, m.Assigns, 1)
	assert.Equal(t, "w", m.Assigns[0].LHS)
	bin, ok := m.Assigns[0].RHS.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpEq, bin.Op)
}

func TestParseAlwaysBlocks(t *testing.T) {
	src, err := Parse(`
module m(input wire clk, input wire n_rst, output reg q);
  reg d;
  always_comb begin
    d = !q;
  end
  always_ff @(posedge clk, negedge n_rst) begin
    if (!n_rst)
      q <= 1'b0;
    else
      q <= d;
  end
endmodule
`)
	require.NoError(t, err)
	m := src.Modules[0]
	require.Len(t, m.Blocks, 2)

	comb := m.Blocks[0]
	assert.Equal(t, BlockComb, comb.Kind)
	assert.Empty(t, comb.Sens)

	ff := m.Blocks[1]
	assert.Equal(t, BlockClocked, ff.Kind)
	require.Len(t, ff.Sens, 2)
	assert.Equal(t, SensItem{Signal: "clk", Edge: Posedge, Pos: ff.Sens[0].Pos}, ff.Sens[0])
	assert.Equal(t, SensItem{Signal: "n_rst", Edge: Negedge, Pos: ff.Sens[1].Pos}, ff.Sens[1])

	body, ok := ff.Body.(*BlockStmt)
	require.True(t, ok)
	require.Len(t, body.Stmts, 1)
	ifs, ok := body.Stmts[0].(*IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifs.Else)
	asn, ok := ifs.Else.(*AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "q", asn.Target)
	assert.False(t, asn.Blocking)
}

func TestParsePrecedence(t *testing.T) {
	src, err := Parse(`
module m();
  wire x;
  assign x = a + b * c == d & e;
endmodule
`)
	require.NoError(t, err)
	// & binds loosest of the operators used: (((a + (b * c)) == d) & e)
	and, ok := src.Modules[0].Assigns[0].RHS.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpAnd, and.Op)
	eq, ok := and.X.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpEq, eq.Op)
	add, ok := eq.X.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpAdd, add.Op)
	mul, ok := add.Y.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpMul, mul.Op)
}

func TestParseTernaryAndConcat(t *testing.T) {
	src, err := Parse(`
module m();
  wire [7:0] x;
  assign x = sel ? {4'b1010, lo} : 8'd0;
endmodule
`)
	require.NoError(t, err)
	cond, ok := src.Modules[0].Assigns[0].RHS.(*Cond)
	require.True(t, ok)
	cat, ok := cond.Then.(*Concat)
	require.True(t, ok)
	require.Len(t, cat.Parts, 2)
	lit, ok := cat.Parts[0].(*Literal)
	require.True(t, ok)
	assert.Equal(t, uint64(0b1010), lit.Value)
	assert.Equal(t, 4, lit.Width)
}

func TestParseCase(t *testing.T) {
	src, err := Parse(`
module m(input wire [1:0] sel, output reg [3:0] y);
  always_comb begin
    case (sel)
      2'd0, 2'd1: y = 4'd1;
      2'd2: begin
        y = 4'd2;
      end
      default: y = 4'd0;
    endcase
  end
endmodule
`)
	require.NoError(t, err)
	body := src.Modules[0].Blocks[0].Body.(*BlockStmt)
	cs, ok := body.Stmts[0].(*CaseStmt)
	require.True(t, ok)
	require.Len(t, cs.Items, 2)
	assert.Len(t, cs.Items[0].Labels, 2)
	assert.Len(t, cs.Items[1].Labels, 1)
	require.NotNil(t, cs.Default)
}

func TestParseCaseDuplicateDefault(t *testing.T) {
	_, err := Parse(`
module m(input wire [1:0] sel, output reg y);
  always_comb begin
    case (sel)
      2'd0: y = 1'b1;
      default: y = 1'b0;
      default: y = 1'b1;
    endcase
  end
endmodule
`)
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "got %T: %v", err, err)
	assert.Equal(t, "case label or 'endcase'", pe.Expected)
	assert.Equal(t, 7, pe.Pos.Line)
}

// A <= after a statement-level target is a non-blocking assignment;
// inside an expression it is the relational operator.
func TestParseNonblockingVsRelational(t *testing.T) {
	src, err := Parse(`
module m(input wire clk, output reg full);
  reg [3:0] n;
  always_ff @(posedge clk) begin
    full <= n <= 4'd3;
  end
endmodule
`)
	require.NoError(t, err)
	body := src.Modules[0].Blocks[0].Body.(*BlockStmt)
	asn, ok := body.Stmts[0].(*AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "full", asn.Target)
	assert.False(t, asn.Blocking)
	rel, ok := asn.RHS.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpLe, rel.Op)
}

func TestParseHiZLiteral(t *testing.T) {
	src, err := Parse(`
module m();
  wire [3:0] bus;
  assign bus = 4'bz;
endmodule
`)
	require.NoError(t, err)
	lit, ok := src.Modules[0].Assigns[0].RHS.(*Literal)
	require.True(t, ok)
	assert.True(t, lit.HiZ)
	assert.Equal(t, 4, lit.Width)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing semicolon", "module m();\n  wire w\nendmodule\n"},
		{"missing endmodule", "module m();\n  wire w;\n"},
		{"bad port direction", "module m(between wire x);\nendmodule\n"},
		{"dangling expression", "module m();\n  assign x = ;\nendmodule\n"},
		{"top level junk", "garbage\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			require.Error(t, err)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %T: %v", err, err)
			assert.NotZero(t, pe.Pos.Line)
		})
	}
}

func TestParseLexError(t *testing.T) {
	_, err := Parse("module m();\n  wire w\x01;\nendmodule\n")
	require.Error(t, err)
	var le *LexError
	require.True(t, errors.As(err, &le), "got %T: %v", err, err)
	assert.Equal(t, 2, le.Pos.Line)
}
