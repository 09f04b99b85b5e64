// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package svsim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatOutput(t *testing.T) {
	ast, err := Parse("module m(input wire a, output wire y);\nassign y = !a;\nendmodule\n")
	require.NoError(t, err)
	want := `module m (
  input wire a,
  output wire y
);
  assign y = !(a);
endmodule
`
	require.Equal(t, want, Format(ast))
}

// Formatting is canonical: once printed, parse and print again and the
// text no longer changes.
func reformat(t *testing.T, src string) string {
	t.Helper()
	ast1, err := Parse(src)
	require.NoError(t, err)
	out1 := Format(ast1)
	ast2, err := Parse(out1)
	require.NoError(t, err, "formatted output failed to reparse:\n%s", out1)
	out2 := Format(ast2)
	require.Equal(t, out1, out2, "formatting is not a fixed point")
	return out1
}

func TestFormatRoundTrip(t *testing.T) {
	reformat(t, `
`+"`timescale 10ns/100ps"+`
module roundtrip
#(
  parameter WIDTH = 8
)
(
  input wire clk,
  input wire [WIDTH-1:0] a, b,
  output reg [WIDTH-1:0] y
);
  reg [WIDTH-1:0] acc = 'hff;
  wire sel;
  assign sel = a > b && b != 0;
  always_comb begin
    case (sel)
      1'b1: acc = fast ? {a, 1'bz} : a + b;
      default: begin
        acc = ~a << 2;
      end
    endcase
  end
  always_ff @(posedge clk)
    y <= acc % (b + 1);
endmodule
`)
}

func TestFormatRoundTripFixtures(t *testing.T) {
	files, err := filepath.Glob("testdata/*.sv")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			data, err := os.ReadFile(f)
			require.NoError(t, err)
			reformat(t, string(data))
		})
	}
}
