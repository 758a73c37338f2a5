// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package host

import (
	"sort"
	"time"
)

// Timer is a pending delayed or repeating callback.
type Timer struct {
	due      time.Time
	interval time.Duration // zero for one-shot timers
	fn       func()
	seq      uint64
	stopped  bool
}

// Stop cancels the timer. Stopping a fired one-shot timer is a no-op.
func (t *Timer) Stop() {
	t.stopped = true
}

// Scheduler defers callbacks to later ticks. Callbacks run on the tick
// goroutine, never inline with the code that scheduled them.
type Scheduler struct {
	now    func() time.Time
	next   []func()
	timers []*Timer
	seq    uint64
}

// NewScheduler creates a scheduler reading time from now.
func NewScheduler(now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{now: now}
}

// NextTick runs fn at the start of the next tick.
func (s *Scheduler) NextTick(fn func()) {
	s.next = append(s.next, fn)
}

// Once runs fn on the first tick at or after d from now.
func (s *Scheduler) Once(d time.Duration, fn func()) *Timer {
	return s.add(d, 0, fn)
}

// Every runs fn on the first tick after each interval elapses.
func (s *Scheduler) Every(interval time.Duration, fn func()) *Timer {
	return s.add(interval, interval, fn)
}

func (s *Scheduler) add(d, interval time.Duration, fn func()) *Timer {
	s.seq++
	t := &Timer{
		due:      s.now().Add(d),
		interval: interval,
		fn:       fn,
		seq:      s.seq,
	}
	s.timers = append(s.timers, t)
	return t
}

// Pending returns the number of queued next-tick callbacks and live timers.
func (s *Scheduler) Pending() int {
	live := 0
	for _, t := range s.timers {
		if !t.stopped {
			live++
		}
	}
	return len(s.next) + live
}

// run executes callbacks queued before this tick, then every timer due at
// now in deadline order. Work scheduled by these callbacks waits for the
// following tick.
func (s *Scheduler) run(now time.Time) {
	queued := s.next
	s.next = nil
	for _, fn := range queued {
		fn()
	}

	var due, pending []*Timer
	for _, t := range s.timers {
		switch {
		case t.stopped:
		case !t.due.After(now):
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	s.timers = pending

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})

	for _, t := range due {
		if t.stopped {
			continue
		}
		t.fn()
		if t.interval > 0 && !t.stopped {
			t.due = now.Add(t.interval)
			s.timers = append(s.timers, t)
		}
	}
}
