// Package screens implements the user-facing screens and the joystick
// input task that drives them.
//
// Screen state is kept in cells: every value the input task writes and
// the compose task reads is a small discrete atom, so the two never
// need a shared critical section. A frame may catch a set of cells
// mid-edit, which costs at most one slightly stale frame.
package screens

import (
	"tinygo.org/x/tinyfont"

	"quartz/bus"
	"quartz/chrono"
	"quartz/display"
	"quartz/hal"
	"quartz/kernel"
	"quartz/render"
)

// Event is one digested input action.
type Event uint8

const (
	EvNone Event = iota
	EvLeft
	EvRight
	EvUp
	EvDown
	EvPress
)

// Screen is one UI mode.
type Screen interface {
	Title() string
	Handle(ev Event)
	Compose(fb *display.Framebuffer)
}

const maxScreens = 4

// Manager routes input to the active screen and composes frames.
type Manager struct {
	eng     *bus.Engine
	screens [maxScreens]Screen
	count   uint8

	active kernel.Cell
}

// NewManager creates a manager cycling through the given screens.
func NewManager(eng *bus.Engine, scrs ...Screen) *Manager {
	m := &Manager{eng: eng}
	for _, s := range scrs {
		if m.count >= maxScreens {
			kernel.Fail(kernel.FaultBadConfig, "too many screens")
		}
		m.screens[m.count] = s
		m.count++
	}
	if m.count == 0 {
		kernel.Fail(kernel.FaultBadConfig, "no screens")
	}
	return m
}

// Handle digests one input event. Left and right cycle screens; the
// rest goes to the active screen.
func (m *Manager) Handle(ev Event) {
	a := uint8(m.active.Get()) % m.count
	switch ev {
	case EvLeft:
		m.active.Set(uint32((a + m.count - 1) % m.count))
	case EvRight:
		m.active.Set(uint32((a + 1) % m.count))
	default:
		m.screens[a].Handle(ev)
	}
}

// Compose is the drawing collaborator handed to the update pipeline.
func (m *Manager) Compose(fb *display.Framebuffer) {
	fb.Clear()

	s := m.screens[uint8(m.active.Get())%m.count]
	tinyfont.WriteLine(fb, &tinyfont.Org01, 2, 6, s.Title(), render.On)
	if m.eng.Status() != bus.StatusOK {
		tinyfont.WriteLine(fb, &tinyfont.Org01, 104, 6, "BUS!", render.On)
	}
	s.Compose(fb)
}

// Input is the joystick scan task.
//
// Left, right and press act on the press edge; up and down repeat
// through the stepper while held, so edits accelerate. When both
// vertical directions are held the first one keeps the stepper.
type Input struct {
	btns hal.Buttons
	mgr  *Manager
	step *chrono.Stepper

	prev hal.ButtonMask
	held hal.ButtonMask
}

// NewInput creates the scan task.
func NewInput(btns hal.Buttons, mgr *Manager, step *chrono.Stepper) *Input {
	return &Input{btns: btns, mgr: mgr, step: step}
}

// Run is the scan task body, entered once per scan period.
func (i *Input) Run() {
	cur := i.btns.Sample()
	edges := cur &^ i.prev

	if edges&hal.ButtonLeft != 0 {
		i.mgr.Handle(EvLeft)
	}
	if edges&hal.ButtonRight != 0 {
		i.mgr.Handle(EvRight)
	}
	if edges&hal.ButtonPress != 0 {
		i.mgr.Handle(EvPress)
	}

	i.repeat(cur, hal.ButtonUp, EvUp)
	i.repeat(cur, hal.ButtonDown, EvDown)

	i.prev = cur
}

func (i *Input) repeat(cur, b hal.ButtonMask, ev Event) {
	if cur&b == 0 {
		if i.held == b {
			i.held = 0
			i.step.Release()
		}
		return
	}
	if i.held == 0 {
		i.held = b
	}
	if i.held != b {
		return
	}
	for n := i.step.Hold(); n > 0; n-- {
		i.mgr.Handle(ev)
	}
}
