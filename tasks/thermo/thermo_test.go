package thermo

import (
	"testing"

	"quartz/bus"
	"quartz/devices/lm75b"
	"quartz/hal"
)

type rig struct {
	sb    *hal.SimBus
	eng   *bus.Engine
	model *hal.LM75BModel
}

func newRig(t *testing.T) *rig {
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
	model := hal.NewLM75BModel()
	sb.AttachDevice(lm75b.BaseAddress, model)
	return &rig{sb: sb, eng: eng, model: model}
}

func TestPollPublishesSample(t *testing.T) {
	r := newRig(t)
	r.model.SetMilli(21500)
	p := New(r.eng, lm75b.BaseAddress)

	if _, ok := p.Milli(); ok {
		t.Fatal("expected no sample before the first poll")
	}

	p.Run()
	r.sb.Step()
	r.sb.Step()

	mc, ok := p.Milli()
	if !ok || mc != 21500 {
		t.Fatalf("expected 21500 published, got %d/%v", mc, ok)
	}
	if r.model.Reads() != 1 {
		t.Fatalf("expected 1 sensor read, got %d", r.model.Reads())
	}
}

func TestPollSkipsWhileReadInFlight(t *testing.T) {
	r := newRig(t)
	p := New(r.eng, lm75b.BaseAddress)

	p.Run()
	p.Run()
	r.sb.Step()
	r.sb.Step()

	if r.sb.Transfers() != 1 {
		t.Fatalf("expected the overlapping poll skipped, got %d transfers", r.sb.Transfers())
	}

	p.Run()
	r.sb.Step()
	r.sb.Step()
	if r.sb.Transfers() != 2 {
		t.Fatalf("expected polling to resume, got %d transfers", r.sb.Transfers())
	}
}

func TestPollFaultThenRecovery(t *testing.T) {
	r := newRig(t)
	p := New(r.eng, lm75b.BaseAddress)

	r.sb.InjectAddrNACK(3)
	p.Run()
	r.sb.Step()
	r.sb.Step()
	r.sb.Step()

	if p.Faults() != 1 {
		t.Fatalf("expected the failed read counted, got %d", p.Faults())
	}
	if _, ok := p.Milli(); ok {
		t.Fatal("expected no sample from a failed read")
	}

	r.model.SetMilli(-500)
	p.Run()
	r.sb.Step()
	r.sb.Step()

	mc, ok := p.Milli()
	if !ok || mc != -500 {
		t.Fatalf("expected -500 after recovery, got %d/%v", mc, ok)
	}
}
