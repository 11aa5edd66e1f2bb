//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"quartz/devices/ds3231"
)

// Bus addresses of the soldered-down targets, identical to the
// hardware board so the firmware configuration is shared.
const (
	simPanelAddr  = 0x3C
	simRTCAddr    = 0x68
	simSensorAddr = 0x48
)

// Host is the simulated board: the interrupt controller, a timer
// bank, the modeled bus with its three targets, joystick, beeper and
// telemetry sink. The models are exported so the window shell and
// scenario tests can reach behind the wire.
type Host struct {
	logger *hostLogger
	led    *hostLED
	ic     *Vectors
	timers TimerBank
	bus    *SimBus
	btns   *SimButtons
	beeper Beeper
	serial Serial

	vt *VirtualTimers

	Panel  *SSD1306Model
	RTC    *DS3231Model
	Sensor *LM75BModel
}

// NewHost assembles the simulated board. With realtime set, timers
// follow the wall clock and bus transfers deliver themselves; without
// it time is virtual and the caller drives Virtual().Advance.
// Telemetry goes to w; nil discards it.
func NewHost(realtime bool, w io.Writer) *Host {
	ic := NewVectors()
	bus := NewSimBus(ic, LineI2CEvent, LineDMADone, realtime)

	panel := NewSSD1306Model()
	rtc := NewDS3231Model()
	sensor := NewLM75BModel()
	bus.AttachDevice(simPanelAddr, panel)
	bus.AttachDevice(simRTCAddr, rtc)
	bus.AttachDevice(simSensorAddr, sensor)

	seedRTC(rtc, time.Now())
	sensor.SetMilli(21500)

	h := &Host{
		logger: &hostLogger{w: os.Stdout},
		led:    &hostLED{},
		ic:     ic,
		bus:    bus,
		btns:   NewSimButtons(),
		serial: NewWriterSerial(w),
		Panel:  panel,
		RTC:    rtc,
		Sensor: sensor,
	}
	if realtime {
		h.timers = newTickerTimers(ic)
		h.beeper = newHostBeeper()
		rtc.FollowWall()
	} else {
		h.vt = NewVirtualTimers(ic)
		h.timers = h.vt
		h.beeper = nullBeeper{}
	}
	return h
}

func (h *Host) Logger() Logger                  { return h.logger }
func (h *Host) LED() LED                        { return h.led }
func (h *Host) Interrupts() InterruptController { return h.ic }
func (h *Host) Timers() TimerBank               { return h.timers }
func (h *Host) Bus() BusPort                    { return h.bus }
func (h *Host) Buttons() Buttons                { return h.btns }
func (h *Host) Beeper() Beeper                  { return h.beeper }
func (h *Host) Serial() Serial                  { return h.serial }

// SimBus exposes the bus model for fault injection.
func (h *Host) SimBus() *SimBus { return h.bus }

// SimButtons exposes the joystick levels.
func (h *Host) SimButtons() *SimButtons { return h.btns }

// Virtual returns the virtual timer bank, nil in realtime mode.
func (h *Host) Virtual() *VirtualTimers { return h.vt }

// seedRTC loads the model's calendar registers from a host instant,
// so the simulated clock powers up showing local time.
func seedRTC(m *DS3231Model, now time.Time) {
	wd := uint8(now.Weekday())
	if wd == 0 {
		wd = 7
	}
	t := ds3231.Time{
		Seconds: uint8(now.Second()),
		Minutes: uint8(now.Minute()),
		Hours:   uint8(now.Hour()),
		Weekday: wd,
		Day:     uint8(now.Day()),
		Month:   uint8(now.Month()),
		Year:    uint16(now.Year()),
	}
	var block [1 + ds3231.TimeLen]byte
	block[0] = ds3231.RegTime
	ds3231.Encode(t, block[1:])
	m.Receive(block[:])
}

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// hostLED counts transitions instead of logging them.
type hostLED struct {
	mu      sync.Mutex
	on      bool
	toggles int
}

func (l *hostLED) High() {
	l.mu.Lock()
	if !l.on {
		l.on = true
		l.toggles++
	}
	l.mu.Unlock()
}

func (l *hostLED) Low() {
	l.mu.Lock()
	if l.on {
		l.on = false
		l.toggles++
	}
	l.mu.Unlock()
}

// On reports the LED level.
func (l *hostLED) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

type nullBeeper struct{}

func (nullBeeper) Start(freqHz uint32) {}
func (nullBeeper) Stop()               {}
