// Package wallclock keeps the time of day.
//
// The clock ticks locally once per second and resynchronizes from the
// DS3231 on a slow cadence. All RTC traffic goes through the bus
// engine asynchronously: the tick task stages a transaction and moves
// a small phase machine forward on later ticks, so it never waits on
// the bus. Completion callbacks only touch handoff cells; the register
// buffers belong to the tick task whenever no transaction is in
// flight.
package wallclock

import (
	"quartz/bus"
	"quartz/devices/ds3231"
	"quartz/hal"
	"quartz/kernel"
)

const (
	phaseIdle = iota
	phasePtr
	phaseRead
)

// Handoff cell values for completion callbacks.
const (
	xferPending = iota
	xferOK
	xferFailed
)

// Clock is the wall-time task.
type Clock struct {
	eng  *bus.Engine
	res  *kernel.Resource
	addr uint8

	resyncEvery uint32

	// Owned by the tick task.
	ticks uint32
	phase uint8
	ptr   [1]byte
	regs  [ds3231.TimeLen]byte
	wbuf  [1 + ds3231.TimeLen]byte

	ptrCB   func(bus.Result)
	readCB  func(bus.Result)
	writeCB func(bus.Result)

	// Callback handoff.
	ptrDone   kernel.Cell
	readDone  kernel.Cell
	writeBusy kernel.Cell
	commitReq kernel.Cell

	faults kernel.Cell
	uptime kernel.Cell

	// Guarded by res.
	now ds3231.Time
}

// New creates the clock task. The ceiling covers every priority that
// reads or writes the composite time value. resyncEvery is in ticks
// (seconds); zero disables RTC resync.
func New(eng *bus.Engine, ic hal.InterruptController, ceiling hal.Priority, addr uint8, resyncEvery uint32) *Clock {
	c := &Clock{
		eng:         eng,
		res:         kernel.NewResource(ic, ceiling),
		addr:        addr,
		resyncEvery: resyncEvery,
	}
	c.ptrCB = func(r bus.Result) { c.ptrDone.Set(outcome(r)) }
	c.readCB = func(r bus.Result) { c.readDone.Set(outcome(r)) }
	c.writeCB = func(r bus.Result) {
		if r.Err != nil {
			c.faults.Add(1)
		}
		c.writeBusy.Set(0)
	}
	return c
}

func outcome(r bus.Result) uint32 {
	if r.Err != nil {
		return xferFailed
	}
	return xferOK
}

// Seed installs the bring-up time read blockingly before the
// scheduler starts.
func (c *Clock) Seed(t ds3231.Time) {
	c.res.With(func() { c.now = t })
}

// Now returns the current wall time.
func (c *Clock) Now() ds3231.Time {
	var t ds3231.Time
	c.res.With(func() { t = c.now })
	return t
}

// Uptime reports seconds since start.
func (c *Clock) Uptime() uint32 { return c.uptime.Get() }

// Faults reports failed RTC transfers.
func (c *Clock) Faults() uint32 { return c.faults.Get() }

// Commit sets the wall time immediately and schedules the matching RTC
// write for the next tick.
func (c *Clock) Commit(t ds3231.Time) {
	c.res.With(func() { c.now = t })
	c.commitReq.Set(1)
}

// Run is the once-per-second tick task body.
func (c *Clock) Run() {
	c.uptime.Add(1)
	c.res.With(func() { c.now.AddSecond() })
	c.ticks++
	c.flushCommit()
	c.advanceResync()
}

// flushCommit pushes a pending user edit out to the RTC. The write
// buffer is staged only while no transaction of ours is in flight.
func (c *Clock) flushCommit() {
	if c.commitReq.Get() == 0 || c.writeBusy.Get() != 0 || c.phase != phaseIdle {
		return
	}
	c.wbuf[0] = ds3231.RegTime
	var t ds3231.Time
	c.res.With(func() { t = c.now })
	ds3231.Encode(t, c.wbuf[1:])
	c.writeBusy.Set(1)
	sr := c.eng.Submit(bus.Transaction{Addr: c.addr, Dir: hal.BusWrite, Buf: c.wbuf[:], Done: c.writeCB})
	if sr != bus.SubmitOK {
		// Engine occupied; try again next tick.
		c.writeBusy.Set(0)
		return
	}
	c.commitReq.Set(0)
}

// advanceResync runs the RTC read phase machine: set the register
// pointer on one transaction, read the time block on the next, adopt
// the decoded value. Any failure abandons the round; the next cadence
// retries from scratch.
func (c *Clock) advanceResync() {
	switch c.phase {
	case phaseIdle:
		if c.resyncEvery == 0 || c.ticks < c.resyncEvery || c.writeBusy.Get() != 0 {
			return
		}
		c.ptr[0] = ds3231.RegTime
		c.ptrDone.Set(xferPending)
		sr := c.eng.Submit(bus.Transaction{Addr: c.addr, Dir: hal.BusWrite, Buf: c.ptr[:], Done: c.ptrCB})
		if sr != bus.SubmitOK {
			return
		}
		c.ticks = 0
		c.phase = phasePtr

	case phasePtr:
		switch c.ptrDone.Get() {
		case xferOK:
			c.readDone.Set(xferPending)
			sr := c.eng.Submit(bus.Transaction{Addr: c.addr, Dir: hal.BusRead, Buf: c.regs[:], Done: c.readCB})
			if sr != bus.SubmitOK {
				// Pointer will have drifted by the next attempt;
				// restart the round instead of reading stale state.
				c.phase = phaseIdle
				return
			}
			c.phase = phaseRead
		case xferFailed:
			c.faults.Add(1)
			c.phase = phaseIdle
		}

	case phaseRead:
		switch c.readDone.Get() {
		case xferOK:
			t := ds3231.Decode(c.regs[:])
			c.res.With(func() { c.now = t })
			c.phase = phaseIdle
		case xferFailed:
			c.faults.Add(1)
			c.phase = phaseIdle
		}
	}
}
