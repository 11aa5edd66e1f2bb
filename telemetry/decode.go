package telemetry

// Record is one decoded frame. Payload aliases the decoder's buffer
// and is only good until the next call to Next.
type Record struct {
	Seq     uint8
	Type    uint8
	Payload []byte
}

// Decoder reassembles frames from a byte stream. Garbage between
// frames is skipped by hunting for the sync byte; a frame with a bad
// length or CRC is discarded from the sync byte on and the hunt
// restarts, so a corrupted stream costs frames, never a wedge.
type Decoder struct {
	buf     []byte
	crcErrs uint32
	skipped uint32
}

// CRCErrors reports frames dropped for checksum mismatches.
func (d *Decoder) CRCErrors() uint32 { return d.crcErrs }

// Skipped reports garbage bytes discarded while hunting for sync.
func (d *Decoder) Skipped() uint32 { return d.skipped }

// Feed appends raw bytes from the serial port.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next extracts the next complete frame, if one is buffered.
func (d *Decoder) Next() (Record, bool) {
	for {
		// Hunt for sync.
		start := -1
		for i, b := range d.buf {
			if b == SyncByte {
				start = i
				break
			}
		}
		if start < 0 {
			d.skipped += uint32(len(d.buf))
			d.buf = d.buf[:0]
			return Record{}, false
		}
		d.skipped += uint32(start)
		d.buf = d.buf[start:]

		if len(d.buf) < minFrame {
			return Record{}, false
		}
		length := int(d.buf[1])
		if length < minFrame-headBytes || headBytes+length > maxFrame {
			// Not a real header. Drop the sync byte and rehunt.
			d.buf = d.buf[1:]
			continue
		}
		total := headBytes + length
		if len(d.buf) < total {
			return Record{}, false
		}

		frame := d.buf[:total]
		want := uint16(frame[total-2])<<8 | uint16(frame[total-1])
		if CRC16(frame[1:total-2]) != want {
			d.crcErrs++
			d.buf = d.buf[1:]
			continue
		}

		rec := Record{
			Seq:     frame[2],
			Type:    frame[3],
			Payload: frame[4 : total-2],
		}
		d.buf = d.buf[total:]
		return rec, true
	}
}

// Status is the decoded form of a RecStatus payload.
type Status struct {
	BusState  uint8
	BusStatus uint8
	LastCause uint8
	Panel     uint8

	Completions uint32
	Retries     uint32
	Faults      uint32
	Resets      uint32
	Frames      uint32
	FrameDrops  uint32
	Swaps       uint32
	TxDrops     uint32
}

// Sample is the decoded form of a RecSample payload.
type Sample struct {
	TempValid    bool
	TempMilli    int32
	Uptime       uint32
	ClockFaults  uint32
	SensorFaults uint32
}

const (
	statusLen = 4 + 8*4
	sampleLen = 1 + 4*4
)

// ParseStatus decodes a status payload.
func ParseStatus(p []byte) (Status, bool) {
	if len(p) != statusLen {
		return Status{}, false
	}
	return Status{
		BusState:  p[0],
		BusStatus: p[1],
		LastCause: p[2],
		Panel:     p[3],

		Completions: rd32(p[4:]),
		Retries:     rd32(p[8:]),
		Faults:      rd32(p[12:]),
		Resets:      rd32(p[16:]),
		Frames:      rd32(p[20:]),
		FrameDrops:  rd32(p[24:]),
		Swaps:       rd32(p[28:]),
		TxDrops:     rd32(p[32:]),
	}, true
}

// ParseSample decodes a sample payload.
func ParseSample(p []byte) (Sample, bool) {
	if len(p) != sampleLen {
		return Sample{}, false
	}
	return Sample{
		TempValid:    p[0] != 0,
		TempMilli:    int32(rd32(p[1:])),
		Uptime:       rd32(p[5:]),
		ClockFaults:  rd32(p[9:]),
		SensorFaults: rd32(p[13:]),
	}, true
}

func rd32(p []byte) uint32 {
	return uint32(p[0])<<24 | uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3])
}
