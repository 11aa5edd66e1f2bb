package display

import (
	"quartz/bus"
	"quartz/hal"
	"quartz/kernel"
)

// PanelState is the pipeline's published health.
type PanelState uint8

const (
	PanelLive PanelState = iota
	PanelFault
)

func (s PanelState) String() string {
	switch s {
	case PanelLive:
		return "live"
	case PanelFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Pipeline owns the two frame buffers and their role swap.
//
// Its Run is the frame timer's task: compose into the composing buffer,
// then atomically swap roles and hand the finished buffer to the bus
// engine. The engine only ever reads a buffer that finished composing
// before the swap; the composer only ever writes the other one. When a
// transfer is still in flight at the next period the frame is dropped,
// never queued: the panel shows fresh frames or none.
type Pipeline struct {
	eng  *bus.Engine
	res  *kernel.Resource
	addr uint8

	fbs       [2]Framebuffer
	composing uint8

	compose func(*Framebuffer)

	// Guarded by res.
	inFlight bool
	needSync bool
	cmdBuf   [len(windowReset)]byte

	state  kernel.Cell
	frames kernel.Cell
	drops  kernel.Cell
	swaps  kernel.Cell
}

// NewPipeline creates the pipeline. The ceiling covers the frame task
// and the engine's completion task, the two touchers of the swap state.
// compose is the drawing collaborator filling the composing buffer.
func NewPipeline(eng *bus.Engine, ic hal.InterruptController, ceiling hal.Priority, addr uint8, compose func(*Framebuffer)) *Pipeline {
	p := &Pipeline{
		eng:     eng,
		res:     kernel.NewResource(ic, ceiling),
		addr:    addr,
		compose: compose,
	}
	p.fbs[0].buf[0] = ctrlData
	p.fbs[1].buf[0] = ctrlData
	p.cmdBuf = windowReset
	return p
}

// Run presents one period: at most one swap, dropped entirely if the
// engine still owns the previous frame.
func (p *Pipeline) Run() {
	if p.busy() {
		p.drops.Add(1)
		return
	}
	if p.syncPending() {
		// A dead transfer left the panel's write pointer mid-frame;
		// spend this period re-arming the addressing window.
		p.resync()
		p.drops.Add(1)
		return
	}

	fb := &p.fbs[p.composing]
	if p.compose != nil {
		p.compose(fb)
	}
	if !p.present(fb) {
		p.drops.Add(1)
	}
}

// Panel reports the pipeline's published health.
func (p *Pipeline) Panel() PanelState { return PanelState(p.state.Get()) }

// Frames, Drops and Swaps report lifetime counters.
func (p *Pipeline) Frames() uint32 { return p.frames.Get() }
func (p *Pipeline) Drops() uint32  { return p.drops.Get() }
func (p *Pipeline) Swaps() uint32  { return p.swaps.Get() }

// Composing exposes the buffer currently in the composer role. Owned by
// the frame task; the fault console borrows it once the system is dead.
func (p *Pipeline) Composing() *Framebuffer { return &p.fbs[p.composing] }

func (p *Pipeline) busy() bool {
	b := false
	p.res.With(func() { b = p.inFlight })
	return b
}

func (p *Pipeline) syncPending() bool {
	b := false
	p.res.With(func() { b = p.needSync })
	return b
}

// present swaps roles and submits, all inside the swap critical
// section so the completion interrupt can never observe a half-swap.
func (p *Pipeline) present(fb *Framebuffer) bool {
	ok := false
	p.res.With(func() {
		if p.inFlight {
			return
		}
		sr := p.eng.Submit(bus.Transaction{
			Addr: p.addr,
			Dir:  hal.BusWrite,
			Buf:  fb.Bytes(),
			Done: p.frameDone,
		})
		if sr != bus.SubmitOK {
			return
		}
		p.composing ^= 1
		p.inFlight = true
		p.swaps.Add(1)
		ok = true
	})
	return ok
}

func (p *Pipeline) resync() {
	p.res.With(func() {
		if p.inFlight {
			return
		}
		sr := p.eng.Submit(bus.Transaction{
			Addr: p.addr,
			Dir:  hal.BusWrite,
			Buf:  p.cmdBuf[:],
			Done: p.syncDone,
		})
		if sr == bus.SubmitOK {
			p.inFlight = true
		}
	})
}

func (p *Pipeline) frameDone(r bus.Result) {
	p.res.With(func() {
		p.inFlight = false
		if r.Err != nil {
			p.needSync = true
		}
	})
	if r.Err != nil {
		p.state.Set(uint32(PanelFault))
		return
	}
	p.state.Set(uint32(PanelLive))
	p.frames.Add(1)
}

func (p *Pipeline) syncDone(r bus.Result) {
	p.res.With(func() {
		p.inFlight = false
		p.needSync = r.Err != nil
	})
}
