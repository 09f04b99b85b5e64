/*
Package svsim parses a subset of SystemVerilog and simulates the
resulting design against a caller-driven stimulus sequence.

The pipeline is text → Parse → AST → Elaborate → Design → Simulator →
Trace. Parsing covers modules with ports, parameters, wire/reg/logic
declarations, continuous assignments and always_comb/always_ff blocks.
Elaboration resolves parameters and widths, builds a flat signal table
and verifies the single-driver rule. The simulator is event driven:
combinational logic settles to a fixed point within delta-cycles at
each simulated time, and clocked blocks commit their non-blocking
assignments atomically on the matching signal edge.

A minimal session:

	src, err := svsim.Parse(text)
	d, err := svsim.Elaborate(src, "", map[string]uint64{"NUM_CNT_BITS": 4})
	trace, err := svsim.NewSimulator(d).Run(stim)

Stimulus construction helpers live in the svlib package; svtest has
trace-comparison helpers for tests.
*/
package svsim
