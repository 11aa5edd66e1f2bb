//go:build tinygo && baremetal

package hal

import (
	"machine"
	"runtime"
	"sync/atomic"
	"time"
)

// An abort from a responding target comes back within a bit time.
// A transfer that errors after this long means the wire was held.
const busWedgeThreshold = 10 * time.Millisecond

type rpXfer struct {
	addr uint8
	dir  BusDir
	buf  []byte
}

// rpBusPort adapts the machine I2C driver to the event-driven port
// contract. Transfers run on a worker goroutine; outcomes come back
// through a lock-free ring as the same event alphabet the silicon
// raises, with the payload phase reported on the DMA line.
//
// The worker is a goroutine, not an interrupt, so it may park on the
// blocking driver call. Pend is goroutine-safe, which is all the
// reporting side needs.
type rpBusPort struct {
	ic       InterruptController
	bus      *machine.I2C
	sda, scl machine.Pin
	freq     uint32

	buf []byte
	dir BusDir

	work chan rpXfer

	ring [8]BusEvent
	head atomic.Uint32
	tail atomic.Uint32
}

func newRPBusPort(ic InterruptController, bus *machine.I2C, sda, scl machine.Pin, freq uint32) *rpBusPort {
	p := &rpBusPort{
		ic:   ic,
		bus:  bus,
		sda:  sda,
		scl:  scl,
		freq: freq,
		work: make(chan rpXfer, 1),
	}
	p.configure()
	go p.worker()
	return p
}

func (p *rpBusPort) configure() error {
	p.sda.Configure(machine.PinConfig{Mode: machine.PinI2C})
	p.scl.Configure(machine.PinConfig{Mode: machine.PinI2C})
	return p.bus.Configure(machine.I2CConfig{
		SDA:       p.sda,
		SCL:       p.scl,
		Frequency: p.freq,
	})
}

func (p *rpBusPort) ArmDMA(buf []byte, dir BusDir) {
	p.buf = buf
	p.dir = dir
}

func (p *rpBusPort) Start(addr uint8, dir BusDir) {
	select {
	case p.work <- rpXfer{addr: addr, dir: dir, buf: p.buf}:
	default:
		// The opaque handle admits one transfer at a time; a second
		// start while the worker is busy is a controller-level fault.
		p.push(BusEventBusError, LineI2CEvent)
	}
}

func (p *rpBusPort) Stop() {
	p.buf = nil
}

// Reset re-initializes the controller and pads. A transfer the worker
// is still finishing may report afterwards; the stale causes cost at
// most a spurious retry.
func (p *rpBusPort) Reset() error {
	return p.configure()
}

// Poll yields so the worker can run while the caller spins on the
// engine during blocking bring-up.
func (p *rpBusPort) Poll() {
	runtime.Gosched()
}

func (p *rpBusPort) worker() {
	for x := range p.work {
		var err error
		begin := time.Now()
		if x.dir == BusRead {
			err = p.bus.Tx(uint16(x.addr), nil, x.buf)
		} else {
			err = p.bus.Tx(uint16(x.addr), x.buf, nil)
		}
		if err != nil {
			if time.Since(begin) > busWedgeThreshold {
				p.push(BusEventBusError, LineI2CEvent)
			} else {
				p.push(BusEventAddrNACK, LineI2CEvent)
			}
			continue
		}
		p.push(BusEventAddrACK, LineI2CEvent)
		p.push(BusEventDMADone, LineDMADone)
	}
}

// push is single-producer: only the worker calls it. When the ring is
// full the event is dropped and the watchdog recovers the engine.
func (p *rpBusPort) push(ev BusEvent, line IRQ) {
	h := p.head.Load()
	if h-p.tail.Load() < uint32(len(p.ring)) {
		p.ring[h%uint32(len(p.ring))] = ev
		p.head.Store(h + 1)
	}
	p.ic.Pend(line)
}

func (p *rpBusPort) TakeEvent() BusEvent {
	t := p.tail.Load()
	if t == p.head.Load() {
		return BusEventNone
	}
	ev := p.ring[t%uint32(len(p.ring))]
	p.tail.Store(t + 1)
	return ev
}
