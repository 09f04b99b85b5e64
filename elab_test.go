// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package svsim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Source {
	t.Helper()
	ast, err := Parse(src)
	require.NoError(t, err)
	return ast
}

func elabErr(t *testing.T, err error, kind ElabErrKind) *ElabError {
	t.Helper()
	require.Error(t, err)
	var ee *ElabError
	require.True(t, errors.As(err, &ee), "got %T: %v", err, err)
	require.Equal(t, kind, ee.Kind, "error: %v", err)
	return ee
}

func TestElaborateSignalTable(t *testing.T) {
	ast := mustParse(t, `
module regs
#(
  parameter WIDTH = 4
)
(
  input wire clk,
  output reg [WIDTH-1:0] q
);
  reg [WIDTH-1:0] next = 3;
  wire zero;
  assign zero = q == 0;
  always_ff @(posedge clk)
    q <= next;
endmodule
`)
	d, err := Elaborate(ast, "regs", nil)
	require.NoError(t, err)
	assert.Equal(t, "regs", d.Name())

	// ports first, then declarations, in source order
	sigs := d.Signals()
	require.Len(t, sigs, 4)
	assert.Equal(t, "clk", sigs[0].Name)
	assert.Equal(t, "q", sigs[1].Name)
	assert.Equal(t, "next", sigs[2].Name)
	assert.Equal(t, "zero", sigs[3].Name)

	assert.True(t, sigs[1].IsPort)
	assert.Equal(t, DirOutput, sigs[1].Dir)
	assert.Equal(t, 4, sigs[1].Width)
	assert.False(t, sigs[2].IsPort)
	assert.Equal(t, uint64(3), sigs[2].Init)
	assert.Equal(t, 1, sigs[3].Width)

	q, ok := d.Signal("q")
	require.True(t, ok)
	assert.Equal(t, sigs[1], q)
	_, ok = d.Signal("nope")
	assert.False(t, ok)
}

func TestElaborateParamOverride(t *testing.T) {
	const src = `
module par
#(
  parameter WIDTH = 4,
  parameter TOP = WIDTH - 1
)
(
  output reg [TOP:0] q
);
endmodule
`
	d, err := Elaborate(mustParse(t, src), "par", nil)
	require.NoError(t, err)
	q, _ := d.Signal("q")
	assert.Equal(t, 4, q.Width)

	// overrides win over defaults, and later defaults see them
	d, err = Elaborate(mustParse(t, src), "par", map[string]uint64{"WIDTH": 12})
	require.NoError(t, err)
	q, _ = d.Signal("q")
	assert.Equal(t, 12, q.Width)

	_, err = Elaborate(mustParse(t, src), "par", map[string]uint64{"DEPTH": 2})
	require.Error(t, err)
}

func TestElaborateModuleLookup(t *testing.T) {
	ast := mustParse(t, "module a(); endmodule\nmodule b(); endmodule\n")

	d, err := Elaborate(ast, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "a", d.Name()) // empty name picks the first module

	d, err = Elaborate(ast, "b", nil)
	require.NoError(t, err)
	assert.Equal(t, "b", d.Name())

	_, err = Elaborate(ast, "c", nil)
	require.Error(t, err)
}

func TestElaborateDefaultTimescale(t *testing.T) {
	d, err := Elaborate(mustParse(t, "module m(); endmodule\n"), "m", nil)
	require.NoError(t, err)
	assert.Equal(t, Timescale{Unit: 1_000_000, Precision: 1_000}, d.Timescale())

	d, err = Elaborate(mustParse(t, "`timescale 1us/1ns\nmodule m(); endmodule\n"), "m", nil)
	require.NoError(t, err)
	assert.Equal(t, Timescale{Unit: 1_000_000_000, Precision: 1_000_000}, d.Timescale())
}

func TestElaborateUnresolvedReference(t *testing.T) {
	ast := mustParse(t, `
module m(input wire clk, output reg led);
  always_ff @(posedge clk)
    led <= !state;
endmodule
`)
	_, err := Elaborate(ast, "m", nil)
	ee := elabErr(t, err, ErrUnresolvedReference)
	assert.Equal(t, "state", ee.Signal)
}

func TestElaborateUnresolvedTarget(t *testing.T) {
	ast := mustParse(t, `
module m(input wire a);
  assign ghost = a;
endmodule
`)
	_, err := Elaborate(ast, "m", nil)
	ee := elabErr(t, err, ErrUnresolvedReference)
	assert.Equal(t, "ghost", ee.Signal)
}

func TestElaborateMultipleDrivers(t *testing.T) {
	ast := mustParse(t, `
module m(input wire a, input wire b, output reg y);
  assign y = a;
  always_comb begin
    y = b;
  end
endmodule
`)
	_, err := Elaborate(ast, "m", nil)
	ee := elabErr(t, err, ErrMultipleDrivers)
	assert.Equal(t, "y", ee.Signal)
	// both offending drivers are named
	require.Len(t, ee.Blocks, 2)
	assert.Contains(t, ee.Blocks[0], "assign y")
	assert.Contains(t, ee.Blocks[1], "always_comb")
}

func TestElaborateRangeErrors(t *testing.T) {
	_, err := Elaborate(mustParse(t, `
module m(output reg [0:3] q);
endmodule
`), "m", nil)
	elabErr(t, err, ErrWidthMismatch)

	_, err = Elaborate(mustParse(t, `
module m(output reg [64:0] q);
endmodule
`), "m", nil)
	elabErr(t, err, ErrUnsupportedWidth)

	// exactly 64 bits is still fine
	d, err := Elaborate(mustParse(t, `
module m(output reg [63:0] q);
endmodule
`), "m", nil)
	require.NoError(t, err)
	q, _ := d.Signal("q")
	assert.Equal(t, 64, q.Width)
}

func TestElaborateInoutPort(t *testing.T) {
	d, err := Elaborate(mustParse(t, `
module pad(inout wire [7:0] bus, input wire oe);
  assign bus = oe ? 8'hAA : 8'bz;
endmodule
`), "pad", nil)
	require.NoError(t, err)
	b, ok := d.Signal("bus")
	require.True(t, ok)
	assert.Equal(t, DirInout, b.Dir)
	assert.Equal(t, KindWire, b.Kind)
	assert.Equal(t, 8, b.Width)
}

func TestElaborateSignalInConstant(t *testing.T) {
	_, err := Elaborate(mustParse(t, `
module m(input wire sel, output reg [sel:0] q);
endmodule
`), "m", nil)
	elabErr(t, err, ErrUnresolvedReference)
}
