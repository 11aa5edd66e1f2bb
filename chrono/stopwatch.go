// Package chrono provides the interrupt-driven counters behind the
// stopwatch and countdown screens, plus the hold-to-accelerate stepper
// used while editing values.
//
// Each counter owns a timer line: starting the counter starts its
// hardware timer, and the count task is entered once per period at the
// counter's priority. Counts are published in cells so any priority
// can read them lock-free.
package chrono

import (
	"quartz/hal"
	"quartz/kernel"
)

// A stopwatch rolls over after 100 hours.
const maxTenths = 100 * 3600 * 10

// Stopwatch accumulates tenth-seconds while running.
type Stopwatch struct {
	timers hal.TimerBank
	line   hal.IRQ
	period uint32

	running kernel.Cell
	tenths  kernel.Cell
}

// NewStopwatch creates a stopped stopwatch on the given timer line.
func NewStopwatch(tb hal.TimerBank, line hal.IRQ, periodMS uint32) *Stopwatch {
	return &Stopwatch{timers: tb, line: line, period: periodMS}
}

// Run is the count task body, entered once per timer period.
func (s *Stopwatch) Run() {
	if s.running.Get() == 0 {
		// Tick already queued when Stop landed.
		return
	}
	if s.tenths.Add(1) >= maxTenths {
		s.tenths.Set(0)
	}
}

// Start resumes counting.
func (s *Stopwatch) Start() {
	if s.running.Get() != 0 {
		return
	}
	if err := s.timers.StartPeriodic(s.line, s.period); err != nil {
		kernel.Fail(kernel.FaultBadConfig, "stopwatch timer: "+err.Error())
	}
	s.running.Set(1)
}

// Stop pauses counting, keeping the elapsed count.
func (s *Stopwatch) Stop() {
	s.running.Set(0)
	s.timers.Stop(s.line)
}

// Toggle starts a stopped stopwatch and stops a running one.
func (s *Stopwatch) Toggle() {
	if s.running.Get() != 0 {
		s.Stop()
	} else {
		s.Start()
	}
}

// Reset clears a stopped stopwatch.
func (s *Stopwatch) Reset() {
	if s.running.Get() != 0 {
		return
	}
	s.tenths.Set(0)
}

// Running reports whether the stopwatch is counting.
func (s *Stopwatch) Running() bool { return s.running.Get() != 0 }

// Tenths reports the elapsed tenth-seconds.
func (s *Stopwatch) Tenths() uint32 { return s.tenths.Get() }
