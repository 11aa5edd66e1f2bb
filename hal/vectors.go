package hal

import (
	"errors"
	"sync"
	"time"
)

// maxLines is the depth of the vector table.
const maxLines = 32

var (
	errBadLine    = errors.New("interrupt line out of range")
	errLineInUse  = errors.New("interrupt line already attached")
	errBadPrio    = errors.New("priority must be above base level")
	errNilHandler = errors.New("nil handler")
	errBadPeriod  = errors.New("zero timer period")
)

// Vectors is the software-dispatched interrupt unit: one execution
// context with fixed-priority dispatch, fed by pends from hardware
// bridge goroutines, timer sources or the simulator.
//
// Handlers run strictly one at a time under an internal core lock, on
// whichever goroutine made them eligible. Eligibility is re-evaluated
// at every dispatch boundary: handler return, mask restore and the
// idle wait. A line pended inside a masked critical section is taken
// the moment the owning context reaches its next boundary, which is
// where single-core firmware observes preemption.
type Vectors struct {
	mu   sync.Mutex
	cond *sync.Cond

	handlers [maxLines]Handler
	prio     [maxLines]Priority
	attached uint32
	enabled  uint32
	pending  uint32
	stamp    [maxLines]uint64
	seq      uint64

	cur     Priority // level of the handler being executed
	mask    Priority
	running bool
	taken   bool
}

func NewVectors() *Vectors {
	v := &Vectors{}
	v.cond = sync.NewCond(&v.mu)
	return v
}

func (v *Vectors) Attach(irq IRQ, prio Priority, h Handler) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case int(irq) >= maxLines:
		return errBadLine
	case v.attached&lineBit(irq) != 0:
		return errLineInUse
	case prio == 0:
		return errBadPrio
	case h == nil:
		return errNilHandler
	}
	v.handlers[irq] = h
	v.prio[irq] = prio
	v.attached |= lineBit(irq)
	return nil
}

func (v *Vectors) Enable(irq IRQ) {
	v.mu.Lock()
	if int(irq) < maxLines {
		v.enabled |= lineBit(irq)
	}
	v.drain()
	v.mu.Unlock()
}

// Pend marks a line pending. When the core is free the calling
// goroutine adopts it and runs everything eligible before returning,
// so a thread-level pend of an unmasked line dispatches synchronously.
func (v *Vectors) Pend(irq IRQ) {
	v.mu.Lock()
	v.post(irq)
	v.drain()
	v.mu.Unlock()
}

// post latches a pend. Unattached lines are dropped: there is no
// vector to latch into. Attached but disabled lines stay latched and
// dispatch once enabled.
func (v *Vectors) post(irq IRQ) {
	if int(irq) >= maxLines || v.attached&lineBit(irq) == 0 {
		return
	}
	if v.pending&lineBit(irq) == 0 {
		v.pending |= lineBit(irq)
		v.seq++
		v.stamp[irq] = v.seq
	}
}

func (v *Vectors) RaiseMask(level Priority) Priority {
	v.mu.Lock()
	prev := v.mask
	if level > v.mask {
		v.mask = level
	}
	v.mu.Unlock()
	return prev
}

func (v *Vectors) RestoreMask(prev Priority) {
	v.mu.Lock()
	v.mask = prev
	v.drain()
	v.mu.Unlock()
}

// Idle parks until a handler has been taken somewhere, running any
// already-eligible work on the calling goroutine first.
func (v *Vectors) Idle() {
	v.mu.Lock()
	for {
		v.drain()
		if v.taken {
			v.taken = false
			v.mu.Unlock()
			return
		}
		v.cond.Wait()
	}
}

// Pending reports whether a line is latched and not yet dispatched.
func (v *Vectors) Pending(irq IRQ) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return int(irq) < maxLines && v.pending&lineBit(irq) != 0
}

// drain runs eligible handlers until none remain. Callers hold mu; the
// lock is dropped around each handler body. No-op while the core is
// owned: the owner re-drains at its own next boundary.
func (v *Vectors) drain() {
	if v.running {
		return
	}
	v.running = true
	for {
		irq, ok := v.eligible()
		if !ok {
			break
		}
		v.pending &^= lineBit(irq)
		prev := v.cur
		v.cur = v.prio[irq]
		h := v.handlers[irq]
		v.mu.Unlock()
		h()
		v.mu.Lock()
		v.cur = prev
		v.taken = true
	}
	v.running = false
	v.cond.Broadcast()
}

// eligible picks the pending enabled line with the highest priority
// strictly above both the execution level and the mask. Priority ties
// go to the earliest pend.
func (v *Vectors) eligible() (IRQ, bool) {
	floor := v.cur
	if v.mask > floor {
		floor = v.mask
	}
	best := -1
	for i := 0; i < maxLines; i++ {
		b := lineBit(IRQ(i))
		if v.pending&b == 0 || v.enabled&b == 0 {
			continue
		}
		if v.prio[i] <= floor {
			continue
		}
		if best < 0 || v.prio[i] > v.prio[best] ||
			(v.prio[i] == v.prio[best] && v.stamp[i] < v.stamp[best]) {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return IRQ(best), true
}

func lineBit(irq IRQ) uint32 { return 1 << uint(irq) }

// tickerTimers is the wall-clock timer bank: one goroutine per
// started line feeding pends at the line's period. Both the window
// host and the hardware target run on it.
type tickerTimers struct {
	ic InterruptController

	mu    sync.Mutex
	stops [maxLines]chan struct{}
}

func newTickerTimers(ic InterruptController) *tickerTimers {
	return &tickerTimers{ic: ic}
}

func (t *tickerTimers) StartPeriodic(irq IRQ, periodMS uint32) error {
	if int(irq) >= maxLines {
		return errBadLine
	}
	if periodMS == 0 {
		return errBadPeriod
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stops[irq] != nil {
		close(t.stops[irq])
	}
	stop := make(chan struct{})
	t.stops[irq] = stop
	go func() {
		tick := time.NewTicker(time.Duration(periodMS) * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				t.ic.Pend(irq)
			case <-stop:
				return
			}
		}
	}()
	return nil
}

func (t *tickerTimers) Stop(irq IRQ) {
	if int(irq) >= maxLines {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stops[irq] != nil {
		close(t.stops[irq])
		t.stops[irq] = nil
	}
}
