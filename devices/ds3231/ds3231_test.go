package ds3231

import (
	"testing"

	"quartz/bus"
	"quartz/hal"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	regs := []byte{0x30, 0x59, 0x23, 0x02, 0x31, 0x12, 0x99}
	got := Decode(regs)
	want := Time{Seconds: 30, Minutes: 59, Hours: 23, Weekday: 2, Day: 31, Month: 12, Year: 2099}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	var out [TimeLen]byte
	Encode(got, out[:])
	for i := range regs {
		if out[i] != regs[i] {
			t.Fatalf("expected register %d = %#x, got %#x", i, regs[i], out[i])
		}
	}
}

func TestDecodeTwelveHourMode(t *testing.T) {
	regs := []byte{0x00, 0x00, 0x00, 0x01, 0x01, 0x01, 0x00}
	cases := []struct {
		name string
		raw  byte
		want uint8
	}{
		{"midnight", 0x40 | 0x12, 0},
		{"1am", 0x40 | 0x01, 1},
		{"noon", 0x40 | 0x20 | 0x12, 12},
		{"11pm", 0x40 | 0x20 | 0x11, 23},
	}
	for _, c := range cases {
		regs[2] = c.raw
		if got := Decode(regs).Hours; got != c.want {
			t.Fatalf("%s: expected raw %#x to decode as hour %d, got %d", c.name, c.raw, c.want, got)
		}
	}
}

func TestDecodeShortBuffer(t *testing.T) {
	if got := Decode(nil); got != (Time{}) {
		t.Fatalf("expected the zero instant, got %+v", got)
	}
}

func TestEncodeNormalizesWeekday(t *testing.T) {
	var out [TimeLen]byte
	Encode(Time{Weekday: 0}, out[:])
	if out[3] != 1 {
		t.Fatalf("expected weekday clamped to 1, got %d", out[3])
	}
	Encode(Time{Weekday: 9}, out[:])
	if out[3] != 1 {
		t.Fatalf("expected weekday clamped to 1, got %d", out[3])
	}
}

func TestAddSecondRollovers(t *testing.T) {
	cases := []struct {
		name string
		in   Time
		want Time
	}{
		{
			"plain",
			Time{Seconds: 30, Minutes: 20, Hours: 10, Weekday: 1, Day: 5, Month: 6, Year: 2026},
			Time{Seconds: 31, Minutes: 20, Hours: 10, Weekday: 1, Day: 5, Month: 6, Year: 2026},
		},
		{
			"minute",
			Time{Seconds: 59, Minutes: 20, Hours: 10, Weekday: 1, Day: 5, Month: 6, Year: 2026},
			Time{Seconds: 0, Minutes: 21, Hours: 10, Weekday: 1, Day: 5, Month: 6, Year: 2026},
		},
		{
			"hour",
			Time{Seconds: 59, Minutes: 59, Hours: 10, Weekday: 1, Day: 5, Month: 6, Year: 2026},
			Time{Seconds: 0, Minutes: 0, Hours: 11, Weekday: 1, Day: 5, Month: 6, Year: 2026},
		},
		{
			"day",
			Time{Seconds: 59, Minutes: 59, Hours: 23, Weekday: 3, Day: 5, Month: 6, Year: 2026},
			Time{Seconds: 0, Minutes: 0, Hours: 0, Weekday: 4, Day: 6, Month: 6, Year: 2026},
		},
		{
			"weekday wrap",
			Time{Seconds: 59, Minutes: 59, Hours: 23, Weekday: 7, Day: 5, Month: 6, Year: 2026},
			Time{Seconds: 0, Minutes: 0, Hours: 0, Weekday: 1, Day: 6, Month: 6, Year: 2026},
		},
		{
			"month",
			Time{Seconds: 59, Minutes: 59, Hours: 23, Weekday: 1, Day: 31, Month: 1, Year: 2026},
			Time{Seconds: 0, Minutes: 0, Hours: 0, Weekday: 2, Day: 1, Month: 2, Year: 2026},
		},
		{
			"february common year",
			Time{Seconds: 59, Minutes: 59, Hours: 23, Weekday: 1, Day: 28, Month: 2, Year: 2026},
			Time{Seconds: 0, Minutes: 0, Hours: 0, Weekday: 2, Day: 1, Month: 3, Year: 2026},
		},
		{
			"february leap year",
			Time{Seconds: 59, Minutes: 59, Hours: 23, Weekday: 1, Day: 28, Month: 2, Year: 2028},
			Time{Seconds: 0, Minutes: 0, Hours: 0, Weekday: 2, Day: 29, Month: 2, Year: 2028},
		},
		{
			"leap day",
			Time{Seconds: 59, Minutes: 59, Hours: 23, Weekday: 2, Day: 29, Month: 2, Year: 2028},
			Time{Seconds: 0, Minutes: 0, Hours: 0, Weekday: 3, Day: 1, Month: 3, Year: 2028},
		},
		{
			"year",
			Time{Seconds: 59, Minutes: 59, Hours: 23, Weekday: 4, Day: 31, Month: 12, Year: 2026},
			Time{Seconds: 0, Minutes: 0, Hours: 0, Weekday: 5, Day: 1, Month: 1, Year: 2027},
		},
	}
	for _, c := range cases {
		got := c.in
		got.AddSecond()
		if got != c.want {
			t.Fatalf("%s: expected %+v, got %+v", c.name, c.want, got)
		}
	}
}

func newChip(t *testing.T) (*hal.DS3231Model, *bus.Blocking) {
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
	model := hal.NewDS3231Model()
	sb.AttachDevice(DefaultAddress, model)
	return model, bus.NewBlocking(eng)
}

func TestDeviceReadsSimulatedChip(t *testing.T) {
	model, blk := newChip(t)
	model.Poke(0, 0x45)
	model.Poke(1, 0x09)
	model.Poke(2, 0x07)
	model.Poke(3, 0x03)
	model.Poke(4, 0x22)
	model.Poke(5, 0x08)
	model.Poke(6, 0x26)

	dev := New(blk)
	got, err := dev.ReadTime()
	if err != nil {
		t.Fatalf("read time: %v", err)
	}
	want := Time{Seconds: 45, Minutes: 9, Hours: 7, Weekday: 3, Day: 22, Month: 8, Year: 2026}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestDeviceSetTimeClearsStopFlag(t *testing.T) {
	model, blk := newChip(t)
	model.Poke(0x0F, 0x80)

	dev := New(blk)
	if valid, err := dev.TimeValid(); err != nil || valid {
		t.Fatalf("expected the stored time suspect, got %v/%v", valid, err)
	}

	set := Time{Seconds: 5, Minutes: 4, Hours: 3, Weekday: 2, Day: 1, Month: 12, Year: 2026}
	if err := dev.SetTime(set); err != nil {
		t.Fatalf("set time: %v", err)
	}
	if model.Peek(0) != 0x05 || model.Peek(2) != 0x03 || model.Peek(6) != 0x26 {
		t.Fatalf("expected the encoded instant stored, got %x %x %x",
			model.Peek(0), model.Peek(2), model.Peek(6))
	}
	if model.Peek(0x0F)&0x80 != 0 {
		t.Fatal("expected the oscillator-stop flag cleared")
	}
	if valid, err := dev.TimeValid(); err != nil || !valid {
		t.Fatalf("expected the stored time valid again, got %v/%v", valid, err)
	}

	if got, err := dev.ReadTime(); err != nil || got != set {
		t.Fatalf("expected %+v back, got %+v/%v", set, got, err)
	}
}

func TestDeviceConfigureEnablesOscillator(t *testing.T) {
	model, blk := newChip(t)
	model.Poke(0x0E, 0x80)

	dev := New(blk)
	if err := dev.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if model.Peek(0x0E)&0x80 != 0 {
		t.Fatal("expected the oscillator enabled on battery")
	}
}
