//go:build !tinygo

package hal

import "sync"

// VirtualTimers is the deterministic timer bank: time only moves when
// Advance is called, and due lines are pended in due order at their
// exact virtual instants. Lines sharing an instant dispatch in
// priority order.
type VirtualTimers struct {
	ic InterruptController

	mu    sync.Mutex
	now   uint64
	lines [maxLines]virtualLine
}

type virtualLine struct {
	period uint32
	due    uint64
	active bool
}

func NewVirtualTimers(ic InterruptController) *VirtualTimers {
	return &VirtualTimers{ic: ic}
}

func (t *VirtualTimers) StartPeriodic(irq IRQ, periodMS uint32) error {
	if int(irq) >= maxLines {
		return errBadLine
	}
	if periodMS == 0 {
		return errBadPeriod
	}
	t.mu.Lock()
	t.lines[irq] = virtualLine{period: periodMS, due: t.now + uint64(periodMS), active: true}
	t.mu.Unlock()
	return nil
}

func (t *VirtualTimers) Stop(irq IRQ) {
	if int(irq) >= maxLines {
		return
	}
	t.mu.Lock()
	t.lines[irq].active = false
	t.mu.Unlock()
}

// Now reports the virtual clock in milliseconds.
func (t *VirtualTimers) Now() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}

// Advance moves the virtual clock forward, pending each due line at
// its exact instant. Lines sharing an instant are pended under a
// raised mask and released together, so they dispatch in priority
// order, the way simultaneous hardware lines arbitrate. Pends happen
// outside the bank's lock so a dispatched handler may start or stop
// lines.
func (t *VirtualTimers) Advance(ms uint32) {
	t.mu.Lock()
	target := t.now + uint64(ms)
	for {
		due, ok := t.nextDue(target)
		if !ok {
			t.now = target
			t.mu.Unlock()
			return
		}
		t.now = due
		var batch [maxLines]IRQ
		n := 0
		for i := range t.lines {
			l := &t.lines[i]
			if l.active && l.due == due {
				l.due = due + uint64(l.period)
				batch[n] = IRQ(i)
				n++
			}
		}
		t.mu.Unlock()
		prev := t.ic.RaiseMask(^Priority(0))
		for _, irq := range batch[:n] {
			t.ic.Pend(irq)
		}
		t.ic.RestoreMask(prev)
		t.mu.Lock()
	}
}

// nextDue finds the earliest instant at or before target with a line
// due.
func (t *VirtualTimers) nextDue(target uint64) (uint64, bool) {
	found := false
	var best uint64
	for i := range t.lines {
		l := &t.lines[i]
		if !l.active || l.due > target {
			continue
		}
		if !found || l.due < best {
			best = l.due
			found = true
		}
	}
	return best, found
}
