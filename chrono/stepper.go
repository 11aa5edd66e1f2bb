package chrono

// Stepper turns a held joystick direction into an accelerating stream
// of edit steps: one step on the press edge, repeats at 5 per second
// after one second of hold, and a fast rate after three seconds.
//
// It is owned by the input scan task and sized in scan ticks.
type Stepper struct {
	ticks uint32

	warm uint32 // ticks of hold before repeats begin
	fast uint32 // ticks of hold before the fast rate
	div1 uint32 // scan ticks between slow repeats
	div2 uint32 // scan ticks between fast repeats
}

// NewStepper creates a stepper for the given input scan period.
func NewStepper(scanPeriodMS uint32) *Stepper {
	if scanPeriodMS == 0 {
		scanPeriodMS = 1
	}
	s := &Stepper{
		warm: 1000 / scanPeriodMS,
		fast: 3000 / scanPeriodMS,
		div1: 200 / scanPeriodMS,
		div2: 40 / scanPeriodMS,
	}
	if s.warm == 0 {
		s.warm = 1
	}
	if s.fast <= s.warm {
		s.fast = s.warm + 1
	}
	if s.div1 == 0 {
		s.div1 = 1
	}
	if s.div2 == 0 {
		s.div2 = 1
	}
	return s
}

// Hold advances the held duration by one scan tick and reports how
// many steps to apply on this tick.
func (s *Stepper) Hold() uint32 {
	s.ticks++
	switch {
	case s.ticks == 1:
		return 1
	case s.ticks < s.warm:
		return 0
	case s.ticks < s.fast:
		if (s.ticks-s.warm)%s.div1 == 0 {
			return 1
		}
		return 0
	default:
		if (s.ticks-s.fast)%s.div2 == 0 {
			return 1
		}
		return 0
	}
}

// Release ends the hold.
func (s *Stepper) Release() {
	s.ticks = 0
}

// Held reports how many scan ticks the current hold has lasted.
func (s *Stepper) Held() uint32 { return s.ticks }
