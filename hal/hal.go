package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// IRQ identifies one hardware interrupt line.
type IRQ uint8

// The board's vector map. The two bus lines are raised by the I2C
// controller and its DMA channel; the rest are timer lines.
const (
	LineI2CEvent IRQ = iota
	LineDMADone
	LineFrame
	LineInput
	LineWallTick
	LineSensor
	LineStopwatch
	LineCountdown
	LineWatchdog
	LineTelemetry
)

// Priority is an interrupt urgency level. Higher values preempt lower;
// zero is the base (thread) level and is not a valid task priority.
type Priority uint8

// Handler is an interrupt service routine. It runs at its line's
// priority and must be bounded: no blocking, no unbounded loops.
type Handler func()

// InterruptController is the vectored interrupt unit.
//
// Attach installs a fixed handler for a line; the set of handlers is
// closed once the scheduler starts. Pend raises a line from software,
// which is indistinguishable from the hardware raising it. A pending
// line is dispatched only while its priority is strictly above both the
// current execution level and the raised mask.
type InterruptController interface {
	Attach(irq IRQ, prio Priority, h Handler) error
	Enable(irq IRQ)
	Pend(irq IRQ)

	// RaiseMask blocks dispatch of all lines at or below level and
	// returns the previous mask. Nested raises never lower the mask.
	RaiseMask(level Priority) Priority
	// RestoreMask reinstates a mask returned by RaiseMask. Lines that
	// became eligible while masked are dispatched before it returns.
	RestoreMask(prev Priority)

	// Idle parks the processor until an interrupt has been taken.
	Idle()
}

// TimerBank provides periodic interrupt sources.
//
// Each timer drives exactly one line. Starting a running line restarts
// its period; Stop is idempotent. PeriodMS is in milliseconds so timer
// arithmetic stays integral on targets without a monotonic clock API.
type TimerBank interface {
	StartPeriodic(irq IRQ, periodMS uint32) error
	Stop(irq IRQ)
}

// BusDir selects the transfer direction of a bus operation.
type BusDir uint8

const (
	BusWrite BusDir = iota
	BusRead
)

// BusEvent is one condition reported by the I2C controller or its DMA
// channel, drained from handler context with TakeEvent.
type BusEvent uint8

const (
	BusEventNone     BusEvent = iota
	BusEventAddrACK  // address phase done, target acknowledged
	BusEventAddrNACK // no acknowledge on the address byte
	BusEventDataNACK // target rejected a payload byte
	BusEventArbLost  // arbitration lost to another initiator
	BusEventBusError // misplaced start/stop condition on the wire
	BusEventDMADone  // DMA streamed the full payload
	BusEventDMAError // DMA channel faulted mid-transfer
)

func (e BusEvent) String() string {
	switch e {
	case BusEventNone:
		return "none"
	case BusEventAddrACK:
		return "addr-ack"
	case BusEventAddrNACK:
		return "addr-nack"
	case BusEventDataNACK:
		return "data-nack"
	case BusEventArbLost:
		return "arb-lost"
	case BusEventBusError:
		return "bus-error"
	case BusEventDMADone:
		return "dma-done"
	case BusEventDMAError:
		return "dma-error"
	}
	return "invalid"
}

// BusPort is the register-level I2C controller plus DMA channel pair,
// an opaque owned handle.
//
// A transfer is programmed in two steps from the owner's critical
// section: ArmDMA stages the payload buffer for the data phase, Start
// generates the start condition and address byte. From then on the
// port raises its event/error and DMA-complete lines; the owner drains
// causes with TakeEvent and finishes with Stop. The port never touches
// the buffer outside Arm..Stop.
type BusPort interface {
	ArmDMA(buf []byte, dir BusDir)
	Start(addr uint8, dir BusDir)
	Stop()

	// Reset forces the bus back to a released state, recovering from a
	// wedged target or a lost arbitration. Staged state is discarded.
	Reset() error

	// Poll samples the controller's raw status outside interrupt
	// context, latching any raised conditions for TakeEvent. Bring-up
	// runs the bus this way before the vector table is live.
	Poll()

	// TakeEvent returns and consumes the oldest pending event, or
	// BusEventNone. Call only from the port's interrupt handlers.
	TakeEvent() BusEvent
}

// ButtonMask is a set of joystick contacts, active high.
type ButtonMask uint8

const (
	ButtonUp ButtonMask = 1 << iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonPress
)

// Buttons exposes the five-way joystick as sampled levels.
type Buttons interface {
	Sample() ButtonMask
}

// Beeper is a fixed-frequency tone output.
type Beeper interface {
	Start(freqHz uint32)
	Stop()
}

// Serial is a non-blocking byte sink for telemetry frames.
//
// Write takes what fits in the transmit buffer and reports the count;
// it never blocks in handler context.
type Serial interface {
	Write(p []byte) (int, error)
}

// HAL is the only contact point between the firmware and the board.
type HAL interface {
	Logger() Logger
	LED() LED
	Interrupts() InterruptController
	Timers() TimerBank
	Bus() BusPort
	Buttons() Buttons
	Beeper() Beeper
	Serial() Serial
}
