package telemetry

import (
	"errors"
	"testing"

	"quartz/bus"
	"quartz/display"
	"quartz/hal"
	"quartz/tasks/thermo"
	"quartz/tasks/wallclock"
)

func TestCRC16Vectors(t *testing.T) {
	cases := []struct {
		in   []byte
		want uint16
	}{
		{nil, 0xFFFF},
		{[]byte{0x00}, 0x0F87},
		{[]byte{0xFF}, 0x00FF},
	}
	for _, c := range cases {
		if got := CRC16(c.in); got != c.want {
			t.Fatalf("expected crc %#04x for % x, got %#04x", c.want, c.in, got)
		}
	}
	if CRC16([]byte{1, 2, 3}) == CRC16([]byte{1, 2, 4}) {
		t.Fatal("expected different payloads to checksum differently")
	}
}

type memSink struct {
	frames [][]byte
	fail   bool
	short  bool
}

func (s *memSink) Write(p []byte) (int, error) {
	if s.fail {
		return 0, errors.New("tx buffer full")
	}
	if s.short {
		return len(p) - 1, nil
	}
	s.frames = append(s.frames, append([]byte(nil), p...))
	return len(p), nil
}

type teleRig struct {
	sb    *hal.SimBus
	eng   *bus.Engine
	pipe  *display.Pipeline
	clock *wallclock.Clock
	temp  *thermo.Poller
	sink  *memSink
	rep   *Reporter
}

func newTeleRig(t *testing.T) *teleRig {
	t.Helper()
	ic := hal.NewVectors()
	sb := hal.NewSimBus(ic, hal.LineI2CEvent, hal.LineDMADone, false)
	eng := bus.New(sb, ic, 5, 3)
	for _, line := range []hal.IRQ{hal.LineI2CEvent, hal.LineDMADone} {
		if err := ic.Attach(line, 5, eng.Advance); err != nil {
			t.Fatalf("attach line %d: %v", line, err)
		}
		ic.Enable(line)
	}
	sb.AttachDevice(display.DefaultAddr, hal.NewSSD1306Model())

	therm := hal.NewLM75BModel()
	therm.SetMilli(21500)
	sb.AttachDevice(0x48, therm)

	sink := &memSink{}
	pipe := display.NewPipeline(eng, ic, 5, display.DefaultAddr, nil)
	clock := wallclock.New(eng, ic, 5, 0x68, 0)
	temp := thermo.New(eng, 0x48)
	return &teleRig{
		sb:    sb,
		eng:   eng,
		pipe:  pipe,
		clock: clock,
		temp:  temp,
		sink:  sink,
		rep:   NewReporter(sink, eng, pipe, clock, temp),
	}
}

func (r *teleRig) finish() {
	r.sb.Step()
	r.sb.Step()
}

func TestReporterRoundTrip(t *testing.T) {
	r := newTeleRig(t)

	// Some life before the first report: one presented frame, one
	// sensor sample, two wall seconds.
	r.pipe.Run()
	r.finish()
	r.temp.Run()
	r.finish()
	r.clock.Run()
	r.clock.Run()

	r.rep.Run()
	r.rep.Run()
	if len(r.sink.frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(r.sink.frames))
	}

	var dec Decoder
	dec.Feed(r.sink.frames[0])
	dec.Feed(r.sink.frames[1])

	rec, ok := dec.Next()
	if !ok || rec.Type != RecStatus || rec.Seq != 0 {
		t.Fatalf("expected the status frame first, got %+v/%v", rec, ok)
	}
	st, ok := ParseStatus(rec.Payload)
	if !ok {
		t.Fatalf("expected a parsable status payload, got %d bytes", len(rec.Payload))
	}
	if st.BusState != uint8(bus.Idle) || st.BusStatus != uint8(bus.StatusOK) {
		t.Fatalf("expected an idle healthy bus, got %+v", st)
	}
	if st.Completions != 2 || st.Frames != 1 || st.Swaps != 1 || st.FrameDrops != 0 {
		t.Fatalf("expected the counters on the wire, got %+v", st)
	}

	rec, ok = dec.Next()
	if !ok || rec.Type != RecSample || rec.Seq != 1 {
		t.Fatalf("expected the sample frame second, got %+v/%v", rec, ok)
	}
	sm, ok := ParseSample(rec.Payload)
	if !ok {
		t.Fatalf("expected a parsable sample payload, got %d bytes", len(rec.Payload))
	}
	if !sm.TempValid || sm.TempMilli != 21500 {
		t.Fatalf("expected the 21.5C sample, got %+v", sm)
	}
	if sm.Uptime != 2 || sm.ClockFaults != 0 || sm.SensorFaults != 0 {
		t.Fatalf("expected uptime 2 and clean counters, got %+v", sm)
	}

	if _, ok := dec.Next(); ok {
		t.Fatal("expected the stream drained")
	}
}

func TestSampleInvalidBeforeFirstPoll(t *testing.T) {
	r := newTeleRig(t)

	r.rep.Run() // status
	r.rep.Run() // sample

	var dec Decoder
	dec.Feed(r.sink.frames[1])
	rec, ok := dec.Next()
	if !ok || rec.Type != RecSample {
		t.Fatalf("expected the sample frame, got %+v/%v", rec, ok)
	}
	sm, _ := ParseSample(rec.Payload)
	if sm.TempValid || sm.TempMilli != 0 {
		t.Fatalf("expected no sample marked, got %+v", sm)
	}
}

func TestDecoderHuntsForSync(t *testing.T) {
	r := newTeleRig(t)
	r.rep.Run()
	frame := r.sink.frames[0]

	var dec Decoder
	dec.Feed([]byte{0x00, 0x13, 0x7F})
	dec.Feed(frame)

	rec, ok := dec.Next()
	if !ok || rec.Type != RecStatus {
		t.Fatalf("expected the frame behind the garbage, got %+v/%v", rec, ok)
	}
	if dec.Skipped() != 3 {
		t.Fatalf("expected 3 bytes skipped, got %d", dec.Skipped())
	}
}

func TestDecoderReassemblesSplitFeeds(t *testing.T) {
	r := newTeleRig(t)
	r.rep.Run()
	frame := r.sink.frames[0]

	var dec Decoder
	dec.Feed(frame[:1])
	if _, ok := dec.Next(); ok {
		t.Fatal("expected no frame from the sync byte alone")
	}
	dec.Feed(frame[1:10])
	if _, ok := dec.Next(); ok {
		t.Fatal("expected no frame from a partial body")
	}
	dec.Feed(frame[10:])
	rec, ok := dec.Next()
	if !ok || rec.Type != RecStatus || rec.Seq != 0 {
		t.Fatalf("expected the reassembled frame, got %+v/%v", rec, ok)
	}
}

func TestDecoderDropsCorruptFrame(t *testing.T) {
	r := newTeleRig(t)
	r.rep.Run()
	r.rep.Run()

	// Overwrite the checksum field with a value that cannot match and
	// contains no sync byte, so the rehunt path is fully determined.
	bad := append([]byte(nil), r.sink.frames[0]...)
	claim := uint16(0x0001)
	if CRC16(bad[1:len(bad)-2]) == claim {
		claim = 0x0002
	}
	bad[len(bad)-2] = uint8(claim >> 8)
	bad[len(bad)-1] = uint8(claim)
	good := r.sink.frames[1]

	var dec Decoder
	dec.Feed(bad)
	dec.Feed(good)

	rec, ok := dec.Next()
	if !ok || rec.Type != RecSample {
		t.Fatalf("expected the corrupt frame dropped, got %+v/%v", rec, ok)
	}
	if dec.CRCErrors() != 1 {
		t.Fatalf("expected 1 crc error, got %d", dec.CRCErrors())
	}
	if dec.Skipped() != uint32(len(bad)-1) {
		t.Fatalf("expected the corrupt bytes skipped, got %d", dec.Skipped())
	}
}

func TestDecoderRejectsBadLength(t *testing.T) {
	r := newTeleRig(t)
	r.rep.Run()
	frame := r.sink.frames[0]

	var dec Decoder
	dec.Feed([]byte{SyncByte, 0xFF})
	dec.Feed(frame)

	rec, ok := dec.Next()
	if !ok || rec.Type != RecStatus {
		t.Fatalf("expected the false header dropped, got %+v/%v", rec, ok)
	}
	if dec.CRCErrors() != 0 {
		t.Fatalf("expected no crc errors from a length reject, got %d", dec.CRCErrors())
	}
}

func TestReporterCountsRefusedFrames(t *testing.T) {
	r := newTeleRig(t)

	r.sink.fail = true
	r.rep.Run()
	r.rep.Run()
	if r.rep.Dropped() != 2 {
		t.Fatalf("expected 2 refused frames, got %d", r.rep.Dropped())
	}

	r.sink.fail = false
	r.sink.short = true
	r.rep.Run()
	if r.rep.Dropped() != 3 {
		t.Fatalf("expected a short write counted, got %d", r.rep.Dropped())
	}

	r.sink.short = false
	r.rep.Run() // sample, seq 3
	r.rep.Run() // status, seq 4, carries the drop count

	var dec Decoder
	for _, f := range r.sink.frames {
		dec.Feed(f)
	}
	rec, ok := dec.Next()
	if !ok || rec.Type != RecSample || rec.Seq != 3 {
		t.Fatalf("expected the sequence gap visible, got %+v/%v", rec, ok)
	}
	rec, ok = dec.Next()
	if !ok || rec.Type != RecStatus || rec.Seq != 4 {
		t.Fatalf("expected the status frame, got %+v/%v", rec, ok)
	}
	st, _ := ParseStatus(rec.Payload)
	if st.TxDrops != 3 {
		t.Fatalf("expected the drop count on the wire, got %d", st.TxDrops)
	}
}
