// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package svsim

// A TraceEvent is one recorded signal value at a simulated time.
type TraceEvent struct {
	Time   uint64
	Signal string
	Value  uint64
}

// A Trace accumulates signal values for inspection by the caller,
// ordered by time then insertion order. It is append-only; nothing in
// the simulation core reads it back.
type Trace struct {
	events []TraceEvent
}

// Record appends a signal value observation.
func (t *Trace) Record(time uint64, signal string, value uint64) {
	t.events = append(t.events, TraceEvent{Time: time, Signal: signal, Value: value})
}

// Events returns the recorded events in order.
func (t *Trace) Events() []TraceEvent {
	out := make([]TraceEvent, len(t.events))
	copy(out, t.events)
	return out
}

// Len returns the number of recorded events.
func (t *Trace) Len() int { return len(t.events) }

// Values returns the successive recorded values of one signal.
func (t *Trace) Values(signal string) []uint64 {
	var out []uint64
	for _, e := range t.events {
		if e.Signal == signal {
			out = append(out, e.Value)
		}
	}
	return out
}

// Last returns the most recently recorded value of a signal.
func (t *Trace) Last(signal string) (uint64, bool) {
	for i := len(t.events) - 1; i >= 0; i-- {
		if t.events[i].Signal == signal {
			return t.events[i].Value, true
		}
	}
	return 0, false
}
