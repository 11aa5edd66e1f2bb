// Package telemetry frames status and sample records for the serial
// link and decodes them back on the host side.
//
// Wire format, one frame per record:
//
//	0x7E | length | sequence | type | payload | crcH | crcL
//
// length counts everything after the length byte, CRC included. The
// CRC covers length through payload, so a corrupted length fails the
// check instead of desynchronizing the reader silently.
package telemetry

import (
	"quartz/bus"
	"quartz/display"
	"quartz/hal"
	"quartz/tasks/thermo"
	"quartz/tasks/wallclock"
)

const (
	SyncByte = 0x7E

	RecStatus = 0x01
	RecSample = 0x02

	// Frame bytes outside the length field's count: sync and length.
	headBytes = 2
	// Frame bytes after the payload: the two CRC octets.
	tailBytes = 2

	maxFrame = 64
	minFrame = headBytes + 2 + tailBytes
)

// Reporter is the emitter task. Each entry sends one record, status
// and sample frames alternating, through the non-blocking serial
// sink. Frames the sink cannot take whole are dropped and counted.
type Reporter struct {
	port  hal.Serial
	eng   *bus.Engine
	pipe  *display.Pipeline
	clock *wallclock.Clock
	temp  *thermo.Poller

	seq     uint8
	alt     bool
	dropped uint32
	buf     [maxFrame]byte
}

func NewReporter(port hal.Serial, eng *bus.Engine, pipe *display.Pipeline, clock *wallclock.Clock, temp *thermo.Poller) *Reporter {
	return &Reporter{port: port, eng: eng, pipe: pipe, clock: clock, temp: temp}
}

// Dropped reports frames the serial sink refused.
func (r *Reporter) Dropped() uint32 { return r.dropped }

// Run is the emitter task body, entered once per second.
func (r *Reporter) Run() {
	if r.alt {
		r.emitSample()
	} else {
		r.emitStatus()
	}
	r.alt = !r.alt
}

func (r *Reporter) emitStatus() {
	b := r.begin(RecStatus)
	b = append(b,
		uint8(r.eng.State()),
		uint8(r.eng.Status()),
		uint8(r.eng.LastCause()),
		uint8(r.pipe.Panel()),
	)
	b = be32(b, r.eng.Completions())
	b = be32(b, r.eng.Retries())
	b = be32(b, r.eng.Faults())
	b = be32(b, r.eng.Resets())
	b = be32(b, r.pipe.Frames())
	b = be32(b, r.pipe.Drops())
	b = be32(b, r.pipe.Swaps())
	b = be32(b, r.dropped)
	r.finish(b)
}

func (r *Reporter) emitSample() {
	b := r.begin(RecSample)
	milli, ok := r.temp.Milli()
	valid := uint8(0)
	if ok {
		valid = 1
	}
	b = append(b, valid)
	b = be32(b, uint32(milli))
	b = be32(b, r.clock.Uptime())
	b = be32(b, r.clock.Faults())
	b = be32(b, r.temp.Faults())
	r.finish(b)
}

func (r *Reporter) begin(rec uint8) []byte {
	b := r.buf[:0]
	return append(b, SyncByte, 0, r.seq, rec)
}

func (r *Reporter) finish(b []byte) {
	b[1] = uint8(len(b) - headBytes + tailBytes)
	crc := CRC16(b[1:])
	b = append(b, uint8(crc>>8), uint8(crc))
	r.seq++
	if n, err := r.port.Write(b); err != nil || n < len(b) {
		r.dropped++
	}
}

func be32(b []byte, v uint32) []byte {
	return append(b, uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v))
}
