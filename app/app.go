// Package app assembles the firmware: the bus engine and its
// watchdog, the display pipeline, the clock, sensor and chrono tasks,
// the screen UI and the telemetry reporter, each bound to its
// interrupt line at a fixed priority.
package app

import (
	"quartz/bus"
	"quartz/chrono"
	"quartz/devices/ds3231"
	"quartz/display"
	"quartz/hal"
	"quartz/internal/buildinfo"
	"quartz/kernel"
	"quartz/screens"
	"quartz/tasks/thermo"
	"quartz/tasks/wallclock"
	"quartz/telemetry"
)

type system struct {
	hw    hal.HAL
	sched *kernel.Sched

	eng   *bus.Engine
	wd    *bus.Watchdog
	pipe  *display.Pipeline
	clock *wallclock.Clock
	temp  *thermo.Poller
	sw    *chrono.Stopwatch
	cd    *chrono.Countdown
	input *screens.Input
	rep   *telemetry.Reporter
}

// Run boots the firmware and parks in the idle loop. It does not
// return.
func Run(h hal.HAL) {
	s := newSystem(h)
	s.start()
	s.sched.Idle()
}

func newSystem(h hal.HAL) *system {
	ic := h.Interrupts()
	tb := h.Timers()

	eng := bus.New(h.Bus(), ic, prioBus, busAttempts)

	clock := wallclock.New(eng, ic, prioWall, rtcAddr, rtcResyncTicks)
	temp := thermo.New(eng, sensorAddr)
	sw := chrono.NewStopwatch(tb, hal.LineStopwatch, periodStopwatchMS)
	cd := chrono.NewCountdown(tb, hal.LineCountdown, periodCountdownMS, h.Beeper())

	mgr := screens.NewManager(eng,
		screens.NewClockScreen(clock, temp),
		screens.NewStopwatchScreen(sw),
		screens.NewCountdownScreen(cd),
	)
	pipe := display.NewPipeline(eng, ic, prioBus, panelAddr, mgr.Compose)

	return &system{
		hw:    h,
		sched: kernel.NewSched(ic),
		eng:   eng,
		wd:    bus.NewWatchdog(eng, wdStaleChecks),
		pipe:  pipe,
		clock: clock,
		temp:  temp,
		sw:    sw,
		cd:    cd,
		input: screens.NewInput(h.Buttons(), mgr, chrono.NewStepper(periodInputMS)),
		rep:   telemetry.NewReporter(h.Serial(), eng, pipe, clock, temp),
	}
}

func (s *system) start() {
	log := s.hw.Logger()
	log.WriteLineString(buildinfo.String())

	blk := bus.NewBlocking(s.eng)
	s.bringUp(log, blk)
	blk.Seal()
	installFaultConsole(s.hw, s.eng, s.pipe, blk)

	s.bind(hal.LineI2CEvent, prioBus, kernel.TaskFunc(s.eng.Advance))
	s.bind(hal.LineDMADone, prioBus, kernel.TaskFunc(s.eng.Advance))
	s.bind(hal.LineFrame, prioFrame, s.pipe)
	s.bind(hal.LineInput, prioInput, s.input)
	s.bind(hal.LineWallTick, prioWall, &wallTask{clock: s.clock, led: s.hw.LED()})
	s.bind(hal.LineSensor, prioSensor, s.temp)
	s.bind(hal.LineStopwatch, prioChrono, s.sw)
	s.bind(hal.LineCountdown, prioChrono, s.cd)
	s.bind(hal.LineWatchdog, prioWatchdog, s.wd)
	s.bind(hal.LineTelemetry, prioTelemetry, s.rep)
	s.sched.Start()

	tb := s.hw.Timers()
	s.startTimer(tb, hal.LineFrame, periodFrameMS)
	s.startTimer(tb, hal.LineInput, periodInputMS)
	s.startTimer(tb, hal.LineWallTick, periodWallMS)
	s.startTimer(tb, hal.LineSensor, periodSensorMS)
	s.startTimer(tb, hal.LineWatchdog, periodWatchdogMS)
	s.startTimer(tb, hal.LineTelemetry, periodTelemetryMS)

	log.WriteLineString("quartz: running")
}

// bringUp runs the blocking phase: panel init and the first clock
// read, over the polled bus, before the vector table is live. Device
// errors are logged and tolerated; the running system retries through
// its own paths.
func (s *system) bringUp(log hal.Logger, blk *bus.Blocking) {
	panel := display.NewController(blk, panelAddr)
	if err := panel.Configure(); err != nil {
		log.WriteLineString("panel: " + err.Error())
	}

	rtc := ds3231.New(blk)
	if err := rtc.Configure(); err != nil {
		log.WriteLineString("rtc: " + err.Error())
		return
	}
	if ok, err := rtc.TimeValid(); err == nil && !ok {
		log.WriteLineString("rtc: oscillator stopped, time suspect")
	}
	if t, err := rtc.ReadTime(); err == nil {
		s.clock.Seed(t)
	} else {
		log.WriteLineString("rtc: " + err.Error())
	}
}

func (s *system) bind(line hal.IRQ, prio hal.Priority, t kernel.Task) {
	if _, r := s.sched.Bind(line, prio, t); r != kernel.BindOK {
		kernel.Fail(kernel.FaultBadConfig, "bind: "+r.String())
	}
}

func (s *system) startTimer(tb hal.TimerBank, line hal.IRQ, periodMS uint32) {
	if err := tb.StartPeriodic(line, periodMS); err != nil {
		kernel.Fail(kernel.FaultBadConfig, "timer: "+err.Error())
	}
}

// wallTask couples the LED heartbeat to the second tick.
type wallTask struct {
	clock *wallclock.Clock
	led   hal.LED
	on    bool
}

func (t *wallTask) Run() {
	t.clock.Run()
	if t.on {
		t.led.Low()
	} else {
		t.led.High()
	}
	t.on = !t.on
}
