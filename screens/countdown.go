package screens

import (
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"

	"quartz/chrono"
	"quartz/display"
	"quartz/render"
)

// CountdownScreen fronts the countdown counter. Up and down set the
// remaining time while stopped, press starts and stops, and a second
// press silences the expiry alarm.
type CountdownScreen struct {
	cd *chrono.Countdown

	// Owned by the compose task, drives the expiry flash.
	frame uint32
}

func NewCountdownScreen(cd *chrono.Countdown) *CountdownScreen {
	return &CountdownScreen{cd: cd}
}

func (c *CountdownScreen) Title() string { return "TIMER" }

func (c *CountdownScreen) Handle(ev Event) {
	switch ev {
	case EvPress:
		c.cd.Toggle()
	case EvUp:
		c.cd.Adjust(1)
	case EvDown:
		c.cd.Adjust(-1)
	}
}

func (c *CountdownScreen) Compose(fb *display.Framebuffer) {
	c.frame++
	expired := c.cd.Expired()
	flash := expired && c.frame&0x04 != 0

	if !flash {
		var line [5]byte
		render.MinSec(line[:], c.cd.Remaining())
		x := int16(display.Width-5*bigAdvance) / 2
		tinyfont.WriteLine(fb, &freemono.Bold12pt7b, x, bigBase, string(line[:]), render.On)
	}

	label := "STOPPED  U/D:SET OK:GO"
	switch {
	case expired:
		label = "TIME UP  OK:QUIET"
	case c.cd.Running():
		label = "RUNNING  OK:HOLD"
	}
	tinyfont.WriteLine(fb, &tinyfont.Org01, 2, 56, label, render.On)
}
