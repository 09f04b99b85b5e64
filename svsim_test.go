// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package svsim_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svkit/svsim"
	"github.com/svkit/svsim/svlib"
	"github.com/svkit/svsim/svtest"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(data)
}

func TestFlexCounter(t *testing.T) {
	src := readFixture(t, "flex_counter.sv")
	stim := svlib.Merge(
		svlib.Set(0, "rollover_val", 5),
		svlib.Set(0, "count_enable", 1),
		svlib.PulseLow("n_rst", 0, 2),
		svlib.Clock("clk", 0, 10, 8),
	)
	trace := svtest.RunSource(t, src, "flex_counter", nil, stim)

	// counts up to the rollover value, then restarts at one
	svtest.CheckSequence(t, trace, "count_out", []uint64{1, 2, 3, 4, 5, 1, 2, 3})
	svtest.CheckSequence(t, trace, "rollover_flag", []uint64{1, 0})

	// count is held at zero while reset is asserted
	assert.Equal(t, uint64(0), svtest.ValueAt(trace, "count_out", 2, 0))
	// the flag rises exactly at the edge producing count_out=5
	assert.Equal(t, uint64(0), svtest.ValueAt(trace, "rollover_flag", 44, 0))
	assert.Equal(t, uint64(1), svtest.ValueAt(trace, "rollover_flag", 45, 0))
	assert.Equal(t, uint64(5), svtest.ValueAt(trace, "count_out", 45, 0))
	assert.Equal(t, uint64(0), svtest.ValueAt(trace, "rollover_flag", 55, 0))
}

func TestFlexCounterClear(t *testing.T) {
	src := readFixture(t, "flex_counter.sv")
	stim := svlib.Merge(
		svlib.Set(0, "rollover_val", 5),
		svlib.Set(0, "count_enable", 1),
		svlib.PulseLow("n_rst", 0, 2),
		svlib.Clock("clk", 0, 10, 4),
		svlib.Set(18, "clear", 1),
		svlib.Set(28, "clear", 0),
	)
	trace := svtest.RunSource(t, src, "flex_counter", nil, stim)
	// clear takes effect synchronously at the next edge
	svtest.CheckSequence(t, trace, "count_out", []uint64{1, 2, 0, 1})
}

func TestFlexCounterOverride(t *testing.T) {
	src := readFixture(t, "flex_counter.sv")

	ast, err := svsim.Parse(src)
	require.NoError(t, err)
	d, err := svsim.Elaborate(ast, "flex_counter", map[string]uint64{"NUM_CNT_BITS": 3})
	require.NoError(t, err)
	count, ok := d.Signal("count_out")
	require.True(t, ok)
	assert.Equal(t, 3, count.Width)

	stim := svlib.Merge(
		svlib.Set(0, "rollover_val", 6),
		svlib.Set(0, "count_enable", 1),
		svlib.PulseLow("n_rst", 0, 2),
		svlib.Clock("clk", 0, 10, 8),
	)
	trace := svtest.RunSource(t, src, "flex_counter", map[string]uint64{"NUM_CNT_BITS": 3}, stim)
	svtest.CheckSequence(t, trace, "count_out", []uint64{1, 2, 3, 4, 5, 6, 1, 2})
	svtest.CheckSequence(t, trace, "rollover_flag", []uint64{1, 0})
}

func TestBlink(t *testing.T) {
	src := readFixture(t, "blink.sv")
	stim := svlib.Merge(
		svlib.PulseLow("n_rst", 0, 2),
		svlib.Clock("clk", 0, 10, 4),
	)
	trace := svtest.RunSource(t, src, "blink", nil, stim)

	// low through reset, then toggling from 1 on the first post-reset edge
	assert.Equal(t, uint64(0), svtest.ValueAt(trace, "led", 2, 0))
	svtest.CheckSequence(t, trace, "led", []uint64{1, 0, 1, 0})
}

func TestBlinkAsyncReset(t *testing.T) {
	src := readFixture(t, "blink.sv")
	stim := svlib.Merge(
		svlib.Set(0, "n_rst", 1),
		svlib.Clock("clk", 0, 10, 2),
		svlib.PulseLow("n_rst", 8, 12),
	)
	trace := svtest.RunSource(t, src, "blink", nil, stim)
	// reset clears led between edges, without waiting for a clock
	svtest.CheckSequence(t, trace, "led", []uint64{1, 0, 1})
	assert.Equal(t, uint64(0), svtest.ValueAt(trace, "led", 8, 0))
}
