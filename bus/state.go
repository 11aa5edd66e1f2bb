// Package bus implements the DMA-backed I2C transaction engine.
//
// The engine drives one bus transaction at a time through an explicit
// state machine. A task submits a transaction and returns; the bus
// port's event and DMA-complete interrupts advance the machine and the
// submitter is notified through a one-shot callback. The engine is
// itself a priority-ceiling resource, so submission and advancement
// are mutually exclusive across priorities.
package bus

import (
	"errors"

	"quartz/hal"
)

// State is the engine's position in the transaction lifecycle.
//
// Complete and Error are terminal for the transaction in flight; the
// engine returns to Idle once the submitter has been notified and the
// slot released.
type State uint8

const (
	Idle State = iota
	AddressPhase
	TxInProgress
	RxInProgress
	Complete
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AddressPhase:
		return "address-phase"
	case TxInProgress:
		return "tx-in-progress"
	case RxInProgress:
		return "rx-in-progress"
	case Complete:
		return "complete"
	case Error:
		return "error"
	default:
		return "invalid"
	}
}

// Cause records the hardware condition behind a failed attempt.
type Cause uint8

const (
	CauseNone Cause = iota
	CauseNoAckAddr
	CauseNoAckData
	CauseArbLost
	CauseBusError
	CauseDMAError
	CauseStuck
)

func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseNoAckAddr:
		return "no ack on address"
	case CauseNoAckData:
		return "no ack on data"
	case CauseArbLost:
		return "arbitration lost"
	case CauseBusError:
		return "bus error"
	case CauseDMAError:
		return "dma error"
	case CauseStuck:
		return "no progress"
	default:
		return "unknown"
	}
}

// Status is the engine's published health, readable at any priority.
type Status uint8

const (
	StatusOK Status = iota
	StatusFault
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFault:
		return "fault"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// SubmitResult describes the outcome of a Submit attempt.
type SubmitResult uint8

const (
	SubmitOK SubmitResult = iota
	SubmitBusy
	SubmitErrBadAddr
	SubmitErrNoBuffer
)

func (r SubmitResult) String() string {
	switch r {
	case SubmitOK:
		return "ok"
	case SubmitBusy:
		return "busy"
	case SubmitErrBadAddr:
		return "bad address"
	case SubmitErrNoBuffer:
		return "no buffer"
	default:
		return "unknown"
	}
}

// Transaction is one bus operation to run to completion or failure.
//
// Buf is borrowed, not copied: the submitter owns it again only after
// Done runs (or Submit returns unsuccessfully). Done is invoked exactly
// once, from the engine's completion interrupt task, while the engine
// is still in the transaction's terminal state; submit follow-up work
// from a later task entry, not from inside the callback.
type Transaction struct {
	Addr uint8
	Dir  hal.BusDir
	Buf  []byte
	Done func(Result)
}

// Result is handed to a transaction's Done callback.
type Result struct {
	Err      error // nil, ErrBusFault or ErrTimeout
	Cause    Cause
	Attempts uint8
}

var (
	ErrBusy     = errors.New("bus: engine busy")
	ErrBusFault = errors.New("bus: persistent bus fault")
	ErrTimeout  = errors.New("bus: transaction timed out")
)
