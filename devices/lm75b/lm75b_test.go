package lm75b

import (
	"testing"

	"quartz/bus"
	"quartz/hal"
)

func TestMilliConversion(t *testing.T) {
	cases := []struct {
		raw  uint16
		want int32
	}{
		{0x0000, 0},
		{0x0020, 125},
		{0x1580, 21500},
		{0x7FE0, 127875},
		{0xFF80, -500},
		{0xE500, -27000},
	}
	for _, c := range cases {
		if got := Milli(c.raw); got != c.want {
			t.Fatalf("expected %#x -> %d, got %d", c.raw, c.want, got)
		}
	}
}

func TestMilliIgnoresReservedBits(t *testing.T) {
	if Milli(0x159F) != Milli(0x1580) {
		t.Fatal("expected the low 5 bits ignored")
	}
}

func TestMilliFromShortBuffer(t *testing.T) {
	if MilliFrom(nil) != 0 {
		t.Fatal("expected 0 for an empty read")
	}
	if MilliFrom([]byte{0x15}) != 0 {
		t.Fatal("expected 0 for a truncated read")
	}
}

func TestAddressSelectPins(t *testing.T) {
	if d := New(nil, 0); d.Address != 0x48 {
		t.Fatalf("expected base address 48, got %#x", d.Address)
	}
	if d := New(nil, 0b101); d.Address != 0x4D {
		t.Fatalf("expected select pins folded in, got %#x", d.Address)
	}
	if d := New(nil, 0xFF); d.Address != 0x4F {
		t.Fatalf("expected stray pin bits masked, got %#x", d.Address)
	}
}

func TestReadTemperatureOverModel(t *testing.T) {
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
	sb.AttachDevice(BaseAddress, model)
	model.SetMilli(-27000)

	dev := New(bus.NewBlocking(eng), 0)
	got, err := dev.ReadTemperature()
	if err != nil {
		t.Fatalf("read temperature: %v", err)
	}
	if got != -27000 {
		t.Fatalf("expected -27000, got %d", got)
	}
	if model.Reads() != 1 {
		t.Fatalf("expected 1 register read, got %d", model.Reads())
	}
}
