package screens

import (
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"

	"quartz/display"
	"quartz/kernel"
	"quartz/render"
	"quartz/tasks/thermo"
	"quartz/tasks/wallclock"
)

// Big line geometry for freemono.Bold12pt7b, which advances 14 px per
// glyph. "HH:MM:SS" is 8 glyphs wide and sits centered.
const (
	bigAdvance = 14
	bigBase    = 38
)

const (
	fieldHours = iota
	fieldMinutes
	fieldSeconds
	fieldDone
)

// ClockScreen shows wall time, date and temperature. Pressing the
// stick walks an edit cursor over hours, minutes and seconds; the
// final press commits the edited time to the RTC task.
type ClockScreen struct {
	clock *wallclock.Clock
	temp  *thermo.Poller

	editing kernel.Cell
	field   kernel.Cell
	eh      kernel.Cell
	em      kernel.Cell
	es      kernel.Cell
}

func NewClockScreen(clock *wallclock.Clock, temp *thermo.Poller) *ClockScreen {
	return &ClockScreen{clock: clock, temp: temp}
}

func (c *ClockScreen) Title() string { return "CLOCK" }

func (c *ClockScreen) Handle(ev Event) {
	if c.editing.Get() == 0 {
		if ev == EvPress {
			t := c.clock.Now()
			c.eh.Set(uint32(t.Hours))
			c.em.Set(uint32(t.Minutes))
			c.es.Set(uint32(t.Seconds))
			c.field.Set(fieldHours)
			c.editing.Set(1)
		}
		return
	}

	switch ev {
	case EvPress:
		f := c.field.Get() + 1
		if f >= fieldDone {
			c.commit()
			c.editing.Set(0)
			return
		}
		c.field.Set(f)
	case EvUp:
		c.adjust(1)
	case EvDown:
		c.adjust(-1)
	}
}

func (c *ClockScreen) adjust(delta int32) {
	switch c.field.Get() {
	case fieldHours:
		c.eh.Set(uint32((int32(c.eh.Get()) + delta + 24) % 24))
	case fieldMinutes:
		c.em.Set(uint32((int32(c.em.Get()) + delta + 60) % 60))
	case fieldSeconds:
		c.es.Set(uint32((int32(c.es.Get()) + delta + 60) % 60))
	}
}

func (c *ClockScreen) commit() {
	t := c.clock.Now()
	t.Hours = uint8(c.eh.Get())
	t.Minutes = uint8(c.em.Get())
	t.Seconds = uint8(c.es.Get())
	c.clock.Commit(t)
}

func (c *ClockScreen) Compose(fb *display.Framebuffer) {
	t := c.clock.Now()
	editing := c.editing.Get() != 0
	if editing {
		t.Hours = uint8(c.eh.Get())
		t.Minutes = uint8(c.em.Get())
		t.Seconds = uint8(c.es.Get())
	}

	var line [8]byte
	render.Clock(line[:], t.Hours, t.Minutes, t.Seconds)
	x := int16(display.Width-8*bigAdvance) / 2
	tinyfont.WriteLine(fb, &freemono.Bold12pt7b, x, bigBase, string(line[:]), render.On)

	if editing {
		// Underline the field under the cursor: two glyphs wide.
		fx := x + int16(c.field.Get())*3*bigAdvance
		fb.FillRectangle(fx, bigBase+4, 2*bigAdvance-1, 2, render.On)
	}

	var date [10]byte
	render.Date(date[:], t.Day, t.Month, t.Year)
	tinyfont.WriteLine(fb, &tinyfont.Org01, 2, 56, string(date[:]), render.On)
	tinyfont.WriteLine(fb, &tinyfont.Org01, 58, 56, render.Weekday(t.Weekday), render.On)

	if milli, ok := c.temp.Milli(); ok {
		var buf [8]byte
		n := render.MilliC(buf[:], milli)
		tinyfont.WriteLine(fb, &tinyfont.Org01, 92, 56, string(buf[:n]), render.On)
	}
}
