// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package svtest provides utility functions for testing simulated
// designs against expected signal sequences.
package svtest

import (
	"testing"

	"github.com/svkit/svsim"
)

// RunSource parses, elaborates and simulates src in one step, failing
// the test on any stage error. module and overrides are passed through
// to Elaborate.
func RunSource(t *testing.T, src, module string, overrides map[string]uint64, stim []svsim.Event) *svsim.Trace {
	t.Helper()
	ast, err := svsim.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	d, err := svsim.Elaborate(ast, module, overrides)
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	trace, err := svsim.NewSimulator(d).Run(stim)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return trace
}

// CheckSequence compares the ordered committed values of one signal
// against want.
func CheckSequence(t *testing.T, trace *svsim.Trace, signal string, want []uint64) {
	t.Helper()
	got := trace.Values(signal)
	if len(got) != len(want) {
		t.Fatalf("%s: got %d values %v, want %d values %v", signal, len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s[%d] = %d, want %d (full sequence %v)", signal, i, got[i], want[i], got)
		}
	}
}

// ValueAt returns the last value of signal recorded at or before time,
// falling back to def when the signal has not changed yet.
func ValueAt(trace *svsim.Trace, signal string, time, def uint64) uint64 {
	v := def
	for _, e := range trace.Events() {
		if e.Time > time {
			break
		}
		if e.Signal == signal {
			v = e.Value
		}
	}
	return v
}
