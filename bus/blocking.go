package bus

import (
	"errors"

	"tinygo.org/x/drivers"

	"quartz/hal"
	"quartz/kernel"
)

// Blocking adapts the engine to the drivers.I2C contract for system
// initialization: display bring-up and the first clock read happen
// before the scheduler starts, so the adapter polls the port itself by
// calling Advance until the transaction terminates.
//
// Once the interrupt tasks are live that polling would race them, so
// the wiring code seals the adapter right before starting the
// scheduler; a sealed adapter faults on use. After a system fault the
// scheduler is gone for good, which makes the adapter legal again:
// the fault console pushes its final frame through it.
type Blocking struct {
	eng    *Engine
	sealed bool
}

var _ drivers.I2C = (*Blocking)(nil)

// NewBlocking creates the init-time adapter.
func NewBlocking(eng *Engine) *Blocking {
	return &Blocking{eng: eng}
}

// Seal retires the adapter.
func (b *Blocking) Seal() { b.sealed = true }

// Tx writes w to addr, then reads len(r) bytes into r. Either slice may
// be empty. Each phase is one engine transaction.
func (b *Blocking) Tx(addr uint16, w, r []byte) error {
	if b.sealed && !kernel.InFault() {
		kernel.Fail(kernel.FaultBlockingAfterStart, "blocking bus adapter used after seal")
	}
	if len(w) > 0 {
		if err := b.run(uint8(addr), hal.BusWrite, w); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		return b.run(uint8(addr), hal.BusRead, r)
	}
	return nil
}

const spinLimit = 1 << 20

func (b *Blocking) run(addr uint8, dir hal.BusDir, buf []byte) error {
	var (
		done bool
		res  Result
	)
	sr := b.eng.Submit(Transaction{
		Addr: addr,
		Dir:  dir,
		Buf:  buf,
		Done: func(r Result) { done, res = true, r },
	})
	switch sr {
	case SubmitOK:
	case SubmitBusy:
		return ErrBusy
	default:
		return errors.New("bus: submit: " + sr.String())
	}
	for i := 0; i < spinLimit; i++ {
		b.eng.port.Poll()
		b.eng.Advance()
		if done {
			return res.Err
		}
	}
	b.eng.timeout()
	if done {
		return res.Err
	}
	return ErrTimeout
}
