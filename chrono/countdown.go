package chrono

import (
	"quartz/hal"
	"quartz/kernel"
)

const (
	// Longest loadable countdown, 99:59 on an MM:SS display.
	maxRemain = 99*60 + 59

	// Alarm length in countdown ticks once the count hits zero.
	beepTicks = 3

	beepHz = 1000
)

// Countdown counts seconds down to zero, then sounds the buzzer for a
// bounded interval and raises the expired flag.
type Countdown struct {
	timers hal.TimerBank
	line   hal.IRQ
	period uint32
	buzzer hal.Beeper

	running kernel.Cell
	remain  kernel.Cell
	expired kernel.Cell
	beep    kernel.Cell
}

// NewCountdown creates a stopped countdown on the given timer line.
func NewCountdown(tb hal.TimerBank, line hal.IRQ, periodMS uint32, buzzer hal.Beeper) *Countdown {
	return &Countdown{timers: tb, line: line, period: periodMS, buzzer: buzzer}
}

// Run is the count task body, entered once per timer period. After the
// count expires the timer keeps running just long enough to bound the
// alarm, then shuts everything down.
func (c *Countdown) Run() {
	if b := c.beep.Get(); b > 0 {
		b--
		c.beep.Set(b)
		if b == 0 {
			c.buzzer.Stop()
			c.running.Set(0)
			c.timers.Stop(c.line)
		}
		return
	}
	if c.running.Get() == 0 {
		return
	}
	r := c.remain.Get()
	if r == 0 {
		c.running.Set(0)
		c.timers.Stop(c.line)
		return
	}
	r--
	c.remain.Set(r)
	if r == 0 {
		c.expired.Set(1)
		c.beep.Set(beepTicks)
		c.buzzer.Start(beepHz)
	}
}

// Start begins counting down a loaded value. Starting an empty or
// running countdown does nothing.
func (c *Countdown) Start() {
	if c.running.Get() != 0 || c.remain.Get() == 0 {
		return
	}
	c.expired.Set(0)
	if err := c.timers.StartPeriodic(c.line, c.period); err != nil {
		kernel.Fail(kernel.FaultBadConfig, "countdown timer: "+err.Error())
	}
	c.running.Set(1)
}

// Stop pauses the count, or silences the alarm if it is sounding.
func (c *Countdown) Stop() {
	c.running.Set(0)
	c.beep.Set(0)
	c.buzzer.Stop()
	c.timers.Stop(c.line)
}

// Toggle starts a stopped countdown and stops a running one. On an
// expired countdown it acknowledges instead: the press silences the
// alarm and clears the expired flag.
func (c *Countdown) Toggle() {
	switch {
	case c.running.Get() != 0 || c.beep.Get() != 0:
		c.Stop()
		c.expired.Set(0)
	case c.expired.Get() != 0:
		c.expired.Set(0)
	default:
		c.Start()
	}
}

// Adjust edits the loaded value of a stopped countdown by delta
// seconds, clamped to 0..99:59.
func (c *Countdown) Adjust(delta int32) {
	if c.running.Get() != 0 {
		return
	}
	v := int32(c.remain.Get()) + delta
	if v < 0 {
		v = 0
	}
	if v > maxRemain {
		v = maxRemain
	}
	c.expired.Set(0)
	c.remain.Set(uint32(v))
}

// Running reports whether the countdown is live (counting or alarming).
func (c *Countdown) Running() bool { return c.running.Get() != 0 }

// Remaining reports the seconds left.
func (c *Countdown) Remaining() uint32 { return c.remain.Get() }

// Expired reports whether the count reached zero since the last edit.
func (c *Countdown) Expired() bool { return c.expired.Get() != 0 }
