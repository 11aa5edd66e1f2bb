//go:build !tinygo

package hal

import (
	"sync"
	"time"
)

// BusDevice is one modeled target on the simulated bus.
type BusDevice interface {
	// Receive takes a controller-to-target payload.
	Receive(p []byte)
	// Transmit fills a target-to-controller payload.
	Transmit(p []byte)
}

// SimBus models the I2C controller and its DMA channel.
//
// Start scripts the events the transfer will raise; each delivered
// event is queued for TakeEvent and pends the matching interrupt
// line. In auto mode a pump goroutine delivers the script on a
// millisecond cadence, standing in for wire time; otherwise the test
// drives delivery one event at a time with Step.
//
// The injection knobs consume one transfer each, so a test can arrange
// an exact number of failures and watch the retry path recover.
type SimBus struct {
	ic       InterruptController
	eventIRQ IRQ
	dmaIRQ   IRQ
	auto     bool

	mu      sync.Mutex
	devices [128]BusDevice
	queue   []BusEvent
	script  []scriptedEvent
	armed   []byte
	dir     BusDir
	started bool

	nackAddr int
	nackData int
	dmaErr   int
	arbLost  int
	wedged   bool

	transfers int
	resets    int
}

type scriptedEvent struct {
	ev     BusEvent
	line   IRQ
	commit func()
}

// NewSimBus creates the bus model raising events on eventIRQ and DMA
// completions on dmaIRQ. With auto set, transfers deliver themselves.
func NewSimBus(ic InterruptController, eventIRQ, dmaIRQ IRQ, auto bool) *SimBus {
	return &SimBus{ic: ic, eventIRQ: eventIRQ, dmaIRQ: dmaIRQ, auto: auto}
}

// AttachDevice places a target model at a 7-bit address.
func (s *SimBus) AttachDevice(addr uint8, d BusDevice) {
	s.mu.Lock()
	s.devices[addr&0x7F] = d
	s.mu.Unlock()
}

func (s *SimBus) ArmDMA(buf []byte, dir BusDir) {
	s.mu.Lock()
	s.armed = buf
	s.dir = dir
	s.mu.Unlock()
}

func (s *SimBus) Start(addr uint8, dir BusDir) {
	s.mu.Lock()
	s.started = true
	s.transfers++
	s.script = s.script[:0]

	switch {
	case s.wedged:
		// Nothing will ever arrive. The watchdog's problem.
	case s.arbLost > 0:
		s.arbLost--
		s.push(BusEventArbLost, s.eventIRQ, nil)
	case s.devices[addr&0x7F] == nil || s.nackAddr > 0:
		if s.nackAddr > 0 {
			s.nackAddr--
		}
		s.push(BusEventAddrNACK, s.eventIRQ, nil)
	default:
		dev := s.devices[addr&0x7F]
		buf := s.armed
		s.push(BusEventAddrACK, s.eventIRQ, nil)
		switch {
		case dir == BusWrite && s.nackData > 0:
			s.nackData--
			s.push(BusEventDataNACK, s.eventIRQ, nil)
		case s.dmaErr > 0:
			s.dmaErr--
			s.push(BusEventDMAError, s.dmaIRQ, nil)
		case dir == BusWrite:
			s.push(BusEventDMADone, s.dmaIRQ, func() { dev.Receive(buf) })
		default:
			s.push(BusEventDMADone, s.dmaIRQ, func() { dev.Transmit(buf) })
		}
	}
	auto := s.auto && len(s.script) > 0
	s.mu.Unlock()
	if auto {
		go s.pump()
	}
}

func (s *SimBus) push(ev BusEvent, line IRQ, commit func()) {
	s.script = append(s.script, scriptedEvent{ev: ev, line: line, commit: commit})
}

func (s *SimBus) Stop() {
	s.mu.Lock()
	s.started = false
	s.armed = nil
	s.script = s.script[:0]
	s.mu.Unlock()
}

func (s *SimBus) Reset() error {
	s.mu.Lock()
	s.wedged = false
	s.started = false
	s.armed = nil
	s.script = s.script[:0]
	s.queue = s.queue[:0]
	s.resets++
	s.mu.Unlock()
	return nil
}

func (s *SimBus) TakeEvent() BusEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return BusEventNone
	}
	ev := s.queue[0]
	s.queue = s.queue[1:]
	return ev
}

// Step delivers the next scripted event: runs its payload action,
// queues it for TakeEvent and pends its line. Reports whether an
// event was delivered.
func (s *SimBus) Step() bool {
	s.mu.Lock()
	if len(s.script) == 0 {
		s.mu.Unlock()
		return false
	}
	e := s.script[0]
	s.script = s.script[1:]
	if e.commit != nil {
		e.commit()
	}
	s.queue = append(s.queue, e.ev)
	s.mu.Unlock()
	s.ic.Pend(e.line)
	return true
}

func (s *SimBus) pump() {
	for {
		time.Sleep(time.Millisecond)
		if !s.Step() {
			return
		}
	}
}

// Poll delivers the next scripted event, standing in for a raw status
// register read.
func (s *SimBus) Poll() { s.Step() }

// InjectAddrNACK makes the next n transfers fail their address phase.
func (s *SimBus) InjectAddrNACK(n int) {
	s.mu.Lock()
	s.nackAddr = n
	s.mu.Unlock()
}

// InjectDataNACK makes the next n write transfers be rejected mid-payload.
func (s *SimBus) InjectDataNACK(n int) {
	s.mu.Lock()
	s.nackData = n
	s.mu.Unlock()
}

// InjectDMAError makes the next n data phases fault in the DMA channel.
func (s *SimBus) InjectDMAError(n int) {
	s.mu.Lock()
	s.dmaErr = n
	s.mu.Unlock()
}

// InjectArbLoss makes the next n transfers lose arbitration at start.
func (s *SimBus) InjectArbLoss(n int) {
	s.mu.Lock()
	s.arbLost = n
	s.mu.Unlock()
}

// Wedge silences the bus entirely until Reset, modeling a stuck target.
func (s *SimBus) Wedge() {
	s.mu.Lock()
	s.wedged = true
	s.mu.Unlock()
}

// Transfers reports attempted transfers, retries included.
func (s *SimBus) Transfers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transfers
}

// Resets reports wire resets forced by the controller.
func (s *SimBus) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}
