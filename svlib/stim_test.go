// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package svlib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/svkit/svsim"
)

func TestClock(t *testing.T) {
	got := Clock("clk", 0, 10, 2)
	want := []svsim.Event{
		{Time: 0, Signal: "clk", Value: 0},
		{Time: 5, Signal: "clk", Value: 1},
		{Time: 10, Signal: "clk", Value: 0},
		{Time: 15, Signal: "clk", Value: 1},
		{Time: 20, Signal: "clk", Value: 0},
	}
	assert.Equal(t, want, got)
}

func TestClockOffset(t *testing.T) {
	got := Clock("clk", 100, 20, 1)
	want := []svsim.Event{
		{Time: 100, Signal: "clk", Value: 0},
		{Time: 110, Signal: "clk", Value: 1},
		{Time: 120, Signal: "clk", Value: 0},
	}
	assert.Equal(t, want, got)
}

func TestPulseLow(t *testing.T) {
	got := PulseLow("n_rst", 0, 12)
	want := []svsim.Event{
		{Time: 0, Signal: "n_rst", Value: 0},
		{Time: 12, Signal: "n_rst", Value: 1},
	}
	assert.Equal(t, want, got)
}

func TestVector(t *testing.T) {
	got := Vector("data", 5, 10, 1, 2, 3)
	want := []svsim.Event{
		{Time: 5, Signal: "data", Value: 1},
		{Time: 15, Signal: "data", Value: 2},
		{Time: 25, Signal: "data", Value: 3},
	}
	assert.Equal(t, want, got)
}

func TestMergeStable(t *testing.T) {
	got := Merge(
		Set(10, "a", 1),
		Set(0, "b", 2),
		Set(10, "c", 3),
	)
	want := []svsim.Event{
		{Time: 0, Signal: "b", Value: 2},
		{Time: 10, Signal: "a", Value: 1},
		{Time: 10, Signal: "c", Value: 3},
	}
	assert.Equal(t, want, got)
}
