// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package svsim

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// An Event is one externally driven signal change: the caller's clock
// toggling, reset pulses and input vectors are all expressed as
// events.
type Event struct {
	Time   uint64
	Signal string
	Value  uint64
}

// DefaultMaxDeltas is the delta-cycle iteration cap per simulated
// time. Exceeding it means the combinational logic does not settle.
const DefaultMaxDeltas = 1000

// A Simulator runs a Design against a stimulus sequence. Each Run owns
// a fresh simulation state; concurrent runs of separate Simulators
// share nothing mutable.
type Simulator struct {
	// MaxDeltas overrides DefaultMaxDeltas when positive.
	MaxDeltas int

	d *Design
}

// NewSimulator returns a Simulator for an elaborated design.
func NewSimulator(d *Design) *Simulator {
	return &Simulator{d: d}
}

// internal stimulus event with the signal name resolved to its index.
type boundEvent struct {
	time uint64
	sig  int
	val  uint64
}

// A change records one signal transition, driving both combinational
// scheduling and clock-edge detection.
type change struct {
	sig      int
	old, new uint64
}

// nbaWrite is a queued non-blocking assignment, committed at the end
// of the delta-cycle it was produced in.
type nbaWrite struct {
	sig int
	val uint64
}

// runState is the per-run simulation state.
type runState struct {
	vals    []uint64
	pending []change
	nba     []nbaWrite
	snap    []uint64 // start-of-pass values, reused across passes
	time    uint64
	delta   int
}

// inject applies an external stimulus value and queues its transition.
func (st *runState) inject(sig int, val uint64) {
	old := st.vals[sig]
	if old == val {
		return
	}
	st.vals[sig] = val
	st.pending = append(st.pending, change{sig: sig, old: old, new: val})
}

// diff queues the net transition of every signal whose current value
// differs from its start-of-pass snapshot. Intermediate blocking-write
// glitches within a pass are invisible here: only signals that actually
// changed schedule further work or count as clock edges.
func (st *runState) diff(snap []uint64) {
	for sig, old := range snap {
		if st.vals[sig] != old {
			st.pending = append(st.pending, change{sig: sig, old: old, new: st.vals[sig]})
		}
	}
}

// Run simulates the design against the given stimulus and returns the
// resulting trace. Events are processed in time order; events at equal
// times keep their given order. The returned error is a *SimError for
// runtime failures (unknown stimulus signal, non-convergent
// combinational logic); the trace is never partially valid on error.
// Stimulus aimed at a signal the design itself drives is applied as
// given but logged as a warning, once per signal.
func (s *Simulator) Run(stim []Event) (*Trace, error) {
	bound := make([]boundEvent, len(stim))
	warned := make(map[int]bool)
	for i, ev := range stim {
		sig, ok := s.d.index[ev.Signal]
		if !ok {
			return nil, &SimError{Kind: ErrUnknownSignal, Signal: ev.Signal}
		}
		// stimulus on a block-driven signal fights the design's own
		// driver; the injected value is overwritten on the next
		// evaluation of that block.
		if s.d.driven[sig] && !warned[sig] {
			warned[sig] = true
			logger.WithFields(logrus.Fields{
				"module": s.d.name,
				"signal": ev.Signal,
			}).Warn("stimulus targets a signal already driven by the design")
		}
		bound[i] = boundEvent{time: ev.Time, sig: sig, val: truncate(ev.Value, s.d.sigs[sig].Width)}
	}
	sort.SliceStable(bound, func(i, j int) bool { return bound[i].time < bound[j].time })

	st := &runState{vals: make([]uint64, len(s.d.sigs))}
	for i, sig := range s.d.sigs {
		st.vals[i] = sig.Init
	}
	trace := &Trace{}
	log := logger.WithField("module", s.d.name)

	// time-zero initialization: apply declared initializers, run every
	// combinational block once so derived signals are consistent, then
	// settle before the first event. The net transitions from the
	// all-zero pre-init state seed the first settling pass.
	for _, blk := range s.d.blocks {
		if blk.kind != BlockClocked {
			s.exec(blk.body, st)
		}
	}
	for _, w := range st.nba {
		st.vals[w.sig] = w.val
	}
	st.nba = st.nba[:0]
	st.diff(make([]uint64, len(st.vals)))
	if err := s.settle(st); err != nil {
		return nil, err
	}

	for i := 0; i < len(bound); {
		t := bound[i].time
		st.time = t
		before := make([]uint64, len(st.vals))
		copy(before, st.vals)

		// outer loop: apply each stimulus event at this time and
		// settle it before the next one, so simultaneous clock and
		// reset edges are evaluated in stimulus order.
		for ; i < len(bound) && bound[i].time == t; i++ {
			st.inject(bound[i].sig, bound[i].val)
			if err := s.settle(st); err != nil {
				return nil, err
			}
		}

		// record every signal whose settled value moved at this time
		for sig := range st.vals {
			if st.vals[sig] != before[sig] {
				trace.Record(t, s.d.sigs[sig].Name, st.vals[sig])
			}
		}
		log.WithFields(logrus.Fields{"t": t, "deltas": st.delta}).Trace("time step settled")
	}
	return trace, nil
}

// settle runs the delta-cycle loop at a fixed simulated time until no
// signal changes, or fails with a non-convergence error once the
// iteration cap is exceeded.
//
// Each pass schedules, from the pending net transitions: combinational
// blocks sensitive to a changed signal, and clocked blocks whose
// declared edge matches a transition. Clocked blocks evaluate first,
// against pre-commit values, so registers read pre-edge state; their
// non-blocking assignments commit atomically at the end of the pass.
// The next pass's transitions are the net start-of-pass to end-of-pass
// differences, so a block rewriting a signal through an intermediate
// value does not reschedule itself, and a glitch through a clock
// signal's level is not an edge.
func (s *Simulator) settle(st *runState) error {
	maxDeltas := s.MaxDeltas
	if maxDeltas <= 0 {
		maxDeltas = DefaultMaxDeltas
	}
	st.delta = 0
	for len(st.pending) > 0 {
		st.delta++
		if st.delta > maxDeltas {
			return &SimError{Kind: ErrNoConvergence, Time: st.time}
		}

		var (
			comb      []int
			clocked   []int
			scheduled = make(map[int]bool)
		)
		for _, ch := range st.pending {
			for _, id := range s.d.combSens[ch.sig] {
				if !scheduled[id] {
					scheduled[id] = true
					comb = append(comb, id)
				}
			}
			for _, tr := range s.d.clockSens[ch.sig] {
				if edgeMatch(tr.edge, ch.old, ch.new) && !scheduled[tr.block] {
					scheduled[tr.block] = true
					clocked = append(clocked, tr.block)
				}
			}
		}
		st.pending = st.pending[:0]
		st.snap = append(st.snap[:0], st.vals...)

		for _, id := range clocked {
			s.exec(s.d.blocks[id].body, st)
		}
		for _, id := range comb {
			s.exec(s.d.blocks[id].body, st)
		}

		// end-of-delta commit: non-blocking assignments become
		// visible together
		for _, w := range st.nba {
			st.vals[w.sig] = w.val
		}
		st.nba = st.nba[:0]
		st.diff(st.snap)
	}
	return nil
}

func edgeMatch(e Edge, old, new uint64) bool {
	if e == Posedge {
		return old&1 == 0 && new&1 == 1
	}
	return old&1 == 1 && new&1 == 0
}

// exec interprets a compiled statement. Blocking assignments are
// visible immediately to subsequent statements in the same evaluation;
// non-blocking assignments are queued for the end-of-delta commit.
func (s *Simulator) exec(c *cstmt, st *runState) {
	switch c.kind {
	case stAssign:
		v := truncate(c.rhs.eval(st.vals), s.d.sigs[c.target].Width)
		if c.blocking {
			st.vals[c.target] = v
		} else {
			st.nba = append(st.nba, nbaWrite{sig: c.target, val: v})
		}
	case stIf:
		if c.cond.eval(st.vals) != 0 {
			s.exec(c.then, st)
		} else if c.els != nil {
			s.exec(c.els, st)
		}
	case stCase:
		subj := c.subject.eval(st.vals)
		for i := range c.items {
			for _, l := range c.items[i].labels {
				if l.eval(st.vals) == subj {
					s.exec(c.items[i].body, st)
					return
				}
			}
		}
		if c.def != nil {
			s.exec(c.def, st)
		}
	case stBlock:
		for _, sub := range c.stmts {
			s.exec(sub, st)
		}
	}
}
