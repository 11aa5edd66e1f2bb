// Package thermo polls the LM75B through the bus engine.
package thermo

import (
	"quartz/bus"
	"quartz/devices/lm75b"
	"quartz/hal"
	"quartz/kernel"
)

// Poller samples the thermometer on its poll timer. A poll that finds
// the engine occupied is skipped, not queued; the next period samples
// again.
type Poller struct {
	eng  *bus.Engine
	addr uint8

	// Owned by the poll task while no read is in flight.
	raw [lm75b.SampleLen]byte
	cb  func(bus.Result)

	flight kernel.Cell
	milli  kernel.Cell
	valid  kernel.Cell
	faults kernel.Cell
}

// New creates the poller.
func New(eng *bus.Engine, addr uint8) *Poller {
	p := &Poller{eng: eng, addr: addr}
	p.cb = func(r bus.Result) {
		if r.Err == nil {
			p.milli.Set(uint32(lm75b.MilliFrom(p.raw[:])))
			p.valid.Set(1)
		} else {
			p.faults.Add(1)
		}
		p.flight.Set(0)
	}
	return p
}

// Run is the poll task body.
func (p *Poller) Run() {
	if p.flight.Get() != 0 {
		return
	}
	p.flight.Set(1)
	sr := p.eng.Submit(bus.Transaction{Addr: p.addr, Dir: hal.BusRead, Buf: p.raw[:], Done: p.cb})
	if sr != bus.SubmitOK {
		p.flight.Set(0)
	}
}

// Milli reports the last sample in milli-degrees Celsius, and whether
// any sample has arrived yet.
func (p *Poller) Milli() (int32, bool) {
	return int32(p.milli.Get()), p.valid.Get() != 0
}

// Faults reports failed sensor reads.
func (p *Poller) Faults() uint32 { return p.faults.Get() }
