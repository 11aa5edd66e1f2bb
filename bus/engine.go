package bus

import (
	"quartz/hal"
	"quartz/kernel"
)

// Engine owns the I2C controller and its DMA channel.
//
// All mutable engine state is written inside the engine's critical
// section; the state, status and counter cells are readable lock-free
// from any priority.
type Engine struct {
	port hal.BusPort
	res  *kernel.Resource

	// Guarded by res.
	cur      Transaction
	attempts uint8
	limit    uint8

	// Published cells.
	state    kernel.Cell
	status   kernel.Cell
	cause    kernel.Cell
	progress kernel.Cell

	completions kernel.Cell
	retries     kernel.Cell
	faults      kernel.Cell
	resets      kernel.Cell
}

// New creates an engine over the given port.
//
// The ceiling must be the priority of the engine's completion interrupt
// tasks, the highest priority that ever touches the engine. attemptLimit
// bounds retries: a transaction that fails that many attempts in a row
// surfaces ErrBusFault.
func New(port hal.BusPort, ic hal.InterruptController, ceiling hal.Priority, attemptLimit uint8) *Engine {
	if attemptLimit == 0 {
		attemptLimit = 1
	}
	return &Engine{port: port, res: kernel.NewResource(ic, ceiling), limit: attemptLimit}
}

// State reports the engine's current lifecycle state.
func (e *Engine) State() State { return State(e.state.Get()) }

// Status reports the engine's published health.
func (e *Engine) Status() Status { return Status(e.status.Get()) }

// LastCause reports the hardware cause of the most recent failure.
func (e *Engine) LastCause() Cause { return Cause(e.cause.Get()) }

// Progress is a monotonic event counter; the watchdog compares
// successive readings to detect a stuck transaction.
func (e *Engine) Progress() uint32 { return e.progress.Get() }

// Completions, Retries, Faults and Resets report lifetime counters for
// status publication.
func (e *Engine) Completions() uint32 { return e.completions.Get() }
func (e *Engine) Retries() uint32     { return e.retries.Get() }
func (e *Engine) Faults() uint32      { return e.faults.Get() }
func (e *Engine) Resets() uint32      { return e.resets.Get() }

// Resource exposes the engine's ceiling resource for callers that must
// couple another invariant to the engine's critical section.
func (e *Engine) Resource() *kernel.Resource { return e.res }

// Submit starts a transaction if the engine is Idle, programming the
// DMA channel and the controller before returning. It never blocks: a
// non-Idle engine answers SubmitBusy and the caller retries later or
// drops the request.
func (e *Engine) Submit(t Transaction) SubmitResult {
	if t.Addr > 0x7F {
		return SubmitErrBadAddr
	}
	if len(t.Buf) == 0 {
		return SubmitErrNoBuffer
	}
	r := SubmitOK
	e.res.With(func() {
		if State(e.state.Get()) != Idle {
			r = SubmitBusy
			return
		}
		e.cur = t
		e.attempts = 1
		e.begin()
	})
	return r
}

// Advance drains the port's pending events and steps the state machine.
// It is the body of the engine's event and DMA-complete interrupt
// tasks, and is also polled by the init-time blocking adapter.
func (e *Engine) Advance() {
	e.res.With(func() {
		for {
			ev := e.port.TakeEvent()
			if ev == hal.BusEventNone {
				return
			}
			e.step(ev)
		}
	})
}

// begin programs one attempt. Called inside the critical section.
func (e *Engine) begin() {
	e.progress.Add(1)
	e.state.Set(uint32(AddressPhase))
	e.port.ArmDMA(e.cur.Buf, e.cur.Dir)
	e.port.Start(e.cur.Addr, e.cur.Dir)
}

func (e *Engine) step(ev hal.BusEvent) {
	switch State(e.state.Get()) {
	case Idle, Complete, Error:
		// Late event from an attempt the watchdog already tore down.
		return

	case AddressPhase:
		switch ev {
		case hal.BusEventAddrACK:
			e.progress.Add(1)
			if e.cur.Dir == hal.BusRead {
				e.state.Set(uint32(RxInProgress))
			} else {
				e.state.Set(uint32(TxInProgress))
			}
		case hal.BusEventAddrNACK:
			e.fail(CauseNoAckAddr)
		case hal.BusEventDataNACK:
			e.fail(CauseNoAckData)
		case hal.BusEventArbLost:
			e.fail(CauseArbLost)
		case hal.BusEventDMAError:
			e.fail(CauseDMAError)
		default:
			e.fail(CauseBusError)
		}

	case TxInProgress, RxInProgress:
		switch ev {
		case hal.BusEventDMADone:
			e.finish()
		case hal.BusEventAddrACK:
			// Duplicate acknowledge; harmless.
		case hal.BusEventAddrNACK:
			e.fail(CauseNoAckAddr)
		case hal.BusEventDataNACK:
			e.fail(CauseNoAckData)
		case hal.BusEventArbLost:
			e.fail(CauseArbLost)
		case hal.BusEventDMAError:
			e.fail(CauseDMAError)
		default:
			e.fail(CauseBusError)
		}
	}
}

func (e *Engine) finish() {
	e.progress.Add(1)
	e.port.Stop()
	e.state.Set(uint32(Complete))
	e.status.Set(uint32(StatusOK))
	e.completions.Add(1)
	e.notify(Result{Attempts: e.attempts})
}

// fail consumes one attempt; while attempts remain the same
// transaction is re-programmed, with the bus reset first if the wire
// itself misbehaved.
func (e *Engine) fail(c Cause) {
	e.progress.Add(1)
	e.port.Stop()
	e.cause.Set(uint32(c))
	if e.attempts < e.limit {
		e.attempts++
		e.retries.Add(1)
		if c == CauseArbLost || c == CauseBusError || c == CauseDMAError {
			e.port.Reset()
			e.resets.Add(1)
		}
		e.begin()
		return
	}
	e.state.Set(uint32(Error))
	e.status.Set(uint32(StatusFault))
	e.faults.Add(1)
	e.notify(Result{Err: ErrBusFault, Cause: c, Attempts: e.attempts})
}

// timeout is the watchdog's forced teardown of a stuck transaction.
func (e *Engine) timeout() {
	e.res.With(func() {
		if State(e.state.Get()) == Idle {
			return
		}
		e.port.Reset()
		e.resets.Add(1)
		e.cause.Set(uint32(CauseStuck))
		e.state.Set(uint32(Error))
		e.status.Set(uint32(StatusTimeout))
		e.faults.Add(1)
		e.notify(Result{Err: ErrTimeout, Cause: CauseStuck, Attempts: e.attempts})
	})
}

// notify runs the one-shot callback in the terminal state, then frees
// the slot and returns the engine to Idle.
func (e *Engine) notify(r Result) {
	done := e.cur.Done
	if done != nil {
		done(r)
	}
	e.cur = Transaction{}
	e.attempts = 0
	e.state.Set(uint32(Idle))
}
