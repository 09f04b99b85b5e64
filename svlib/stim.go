// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package svlib provides ready-made stimulus builders: clocks, reset
// pulses and input vectors, composed by the caller into the event
// sequence fed to a Simulator.
package svlib

import (
	"sort"

	"github.com/svkit/svsim"
)

// Set returns a single input application.
func Set(time uint64, signal string, value uint64) []svsim.Event {
	return []svsim.Event{{Time: time, Signal: signal, Value: value}}
}

// Clock generates cycles full clock cycles on signal, starting low at
// time start. Each rising edge lands at start+period/2, start+3*period/2
// and so on; each falling edge at the following half period.
func Clock(signal string, start, period uint64, cycles int) []svsim.Event {
	half := period / 2
	out := make([]svsim.Event, 0, 2*cycles+1)
	out = append(out, svsim.Event{Time: start, Signal: signal, Value: 0})
	t := start + half
	for i := 0; i < cycles; i++ {
		out = append(out, svsim.Event{Time: t, Signal: signal, Value: 1})
		out = append(out, svsim.Event{Time: t + half, Signal: signal, Value: 0})
		t += period
	}
	return out
}

// PulseLow holds signal low from time from until time until, then
// releases it high. The usual shape of an active-low reset.
func PulseLow(signal string, from, until uint64) []svsim.Event {
	return []svsim.Event{
		{Time: from, Signal: signal, Value: 0},
		{Time: until, Signal: signal, Value: 1},
	}
}

// Vector applies successive values of signal at a fixed interval
// starting at time start.
func Vector(signal string, start, interval uint64, values ...uint64) []svsim.Event {
	out := make([]svsim.Event, len(values))
	for i, v := range values {
		out[i] = svsim.Event{Time: start + uint64(i)*interval, Signal: signal, Value: v}
	}
	return out
}

// Merge combines event streams into one, stably ordered by time:
// events at equal times keep the order of their streams.
func Merge(streams ...[]svsim.Event) []svsim.Event {
	var out []svsim.Event
	for _, s := range streams {
		out = append(out, s...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}
