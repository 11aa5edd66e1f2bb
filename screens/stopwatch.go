package screens

import (
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"

	"quartz/chrono"
	"quartz/display"
	"quartz/render"
)

// StopwatchScreen fronts the stopwatch counter. Press toggles, up
// resets while stopped.
type StopwatchScreen struct {
	sw *chrono.Stopwatch
}

func NewStopwatchScreen(sw *chrono.Stopwatch) *StopwatchScreen {
	return &StopwatchScreen{sw: sw}
}

func (s *StopwatchScreen) Title() string { return "STOPWATCH" }

func (s *StopwatchScreen) Handle(ev Event) {
	switch ev {
	case EvPress:
		s.sw.Toggle()
	case EvUp:
		s.sw.Reset()
	}
}

func (s *StopwatchScreen) Compose(fb *display.Framebuffer) {
	var line [7]byte
	render.Tenths(line[:], s.sw.Tenths())
	x := int16(display.Width-7*bigAdvance) / 2
	tinyfont.WriteLine(fb, &freemono.Bold12pt7b, x, bigBase, string(line[:]), render.On)

	label := "STOPPED  OK:GO UP:CLR"
	if s.sw.Running() {
		label = "RUNNING  OK:HOLD"
	}
	tinyfont.WriteLine(fb, &tinyfont.Org01, 2, 56, label, render.On)
}
