//go:build tinygo && baremetal

package hal

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

type rpHAL struct {
	logger *uartLogger
	led    *pinLED
	ic     *Vectors
	timers *tickerTimers
	bus    *rpBusPort
	btns   *stickButtons
	beeper *pwmBeeper
	serial *uartSerial
}

// New returns a Pico (RP2040) HAL implementation.
//
// UART0 on GP0 (TX) / GP1 (RX) carries telemetry frames through the
// interrupt-driven uartx driver, so handler-context writes land in its
// ring rather than spinning on the FIFO. UART1 on GP8 (TX) / GP9 (RX)
// is the boot and fault log. I2C0 on GP4 (SDA) / GP5 (SCL) runs the
// shared bus at 400kHz with the panel, RTC and sensor on it. The
// five-way stick sits on GP10..GP14 against ground, and GP15 drives
// the buzzer.
func New() HAL {
	telem := uartx.UART0
	_ = telem.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	logUART := machine.UART1
	logUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP8,
		RX:       machine.GP9,
	})

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	ic := NewVectors()
	return &rpHAL{
		logger: &uartLogger{uart: logUART},
		led:    &pinLED{pin: ledPin},
		ic:     ic,
		timers: newTickerTimers(ic),
		bus:    newRPBusPort(ic, machine.I2C0, machine.GP4, machine.GP5, 400e3),
		btns:   newStickButtons(),
		beeper: newPWMBeeper(machine.GP15),
		serial: &uartSerial{uart: telem},
	}
}

func (h *rpHAL) Logger() Logger                  { return h.logger }
func (h *rpHAL) LED() LED                        { return h.led }
func (h *rpHAL) Interrupts() InterruptController { return h.ic }
func (h *rpHAL) Timers() TimerBank               { return h.timers }
func (h *rpHAL) Bus() BusPort                    { return h.bus }
func (h *rpHAL) Buttons() Buttons                { return h.btns }
func (h *rpHAL) Beeper() Beeper                  { return h.beeper }
func (h *rpHAL) Serial() Serial                  { return h.serial }

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }

type uartSerial struct {
	uart *uartx.UART
}

func (s *uartSerial) Write(p []byte) (int, error) {
	if s.uart == nil {
		return 0, ErrNotImplemented
	}
	return s.uart.Write(p)
}

// stickButtons reads the five-way joystick. The contacts short to
// ground, so the sampled level is inverted into the active-high mask.
type stickButtons struct {
	pins [5]machine.Pin
}

func newStickButtons() *stickButtons {
	b := &stickButtons{pins: [5]machine.Pin{
		machine.GP10, // up
		machine.GP11, // down
		machine.GP12, // left
		machine.GP13, // right
		machine.GP14, // press
	}}
	for _, p := range b.pins {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	return b
}

func (b *stickButtons) Sample() ButtonMask {
	var m ButtonMask
	for i, p := range b.pins {
		if !p.Get() {
			m |= 1 << uint(i)
		}
	}
	return m
}

type pwmDevice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	SetTop(top uint32)
	Top() uint32
	Set(channel uint8, value uint32)
	Enable(enable bool)
}

// pwmBeeper drives the buzzer with a 50% duty square wave from the
// pin's PWM slice.
type pwmBeeper struct {
	pin machine.Pin
	pwm pwmDevice
	ch  uint8
	on  bool
}

func newPWMBeeper(pin machine.Pin) *pwmBeeper {
	pwm := pwmForPin(pin)
	if pwm == nil {
		return nil
	}
	return &pwmBeeper{pin: pin, pwm: pwm}
}

func pwmForPin(pin machine.Pin) pwmDevice {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil
	}
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return nil
	}
}

func (b *pwmBeeper) Start(freqHz uint32) {
	if b == nil || b.pwm == nil || freqHz == 0 {
		return
	}
	if err := b.pwm.Configure(machine.PWMConfig{Period: uint64(1e9) / uint64(freqHz)}); err != nil {
		return
	}
	ch, err := b.pwm.Channel(b.pin)
	if err != nil {
		return
	}
	b.ch = ch
	b.pwm.Set(b.ch, b.pwm.Top()/2)
	b.pwm.Enable(true)
	b.on = true
}

func (b *pwmBeeper) Stop() {
	if b == nil || b.pwm == nil || !b.on {
		return
	}
	b.pwm.Set(b.ch, 0)
	b.pwm.Enable(false)
	b.on = false
}
