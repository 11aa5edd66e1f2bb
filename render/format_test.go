package render

import "testing"

func TestClock(t *testing.T) {
	var b [8]byte
	if n := Clock(b[:], 23, 59, 7); n != 8 || string(b[:n]) != "23:59:07" {
		t.Fatalf("expected 23:59:07, got %q", b[:n])
	}
	if n := Clock(b[:], 0, 0, 0); string(b[:n]) != "00:00:00" {
		t.Fatalf("expected 00:00:00, got %q", b[:n])
	}
	if n := Clock(b[:7], 1, 2, 3); n != 0 {
		t.Fatalf("expected a short buffer refused, got %d", n)
	}
}

func TestMinSec(t *testing.T) {
	cases := []struct {
		secs uint32
		want string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{60, "01:00"},
		{5999, "99:59"},
		{6000, "00:00"},
		{6071, "01:11"},
	}
	var b [5]byte
	for _, c := range cases {
		if n := MinSec(b[:], c.secs); string(b[:n]) != c.want {
			t.Fatalf("expected %q for %d, got %q", c.want, c.secs, b[:n])
		}
	}
}

func TestTenths(t *testing.T) {
	cases := []struct {
		tenths uint32
		want   string
	}{
		{0, "00:00.0"},
		{7, "00:00.7"},
		{615, "01:01.5"},
		{59999, "99:59.9"},
		{60000, "00:00.0"},
	}
	var b [7]byte
	for _, c := range cases {
		if n := Tenths(b[:], c.tenths); string(b[:n]) != c.want {
			t.Fatalf("expected %q for %d, got %q", c.want, c.tenths, b[:n])
		}
	}
}

func TestDate(t *testing.T) {
	var b [10]byte
	if n := Date(b[:], 22, 8, 2026); string(b[:n]) != "22.08.2026" {
		t.Fatalf("expected 22.08.2026, got %q", b[:n])
	}
	if n := Date(b[:], 1, 1, 2000); string(b[:n]) != "01.01.2000" {
		t.Fatalf("expected 01.01.2000, got %q", b[:n])
	}
}

func TestWeekday(t *testing.T) {
	cases := []struct {
		wd   uint8
		want string
	}{
		{0, "???"},
		{1, "MON"},
		{7, "SUN"},
		{8, "???"},
	}
	for _, c := range cases {
		if got := Weekday(c.wd); got != c.want {
			t.Fatalf("expected %q for %d, got %q", c.want, c.wd, got)
		}
	}
}

func TestMilliC(t *testing.T) {
	cases := []struct {
		mc   int32
		want string
	}{
		{0, "0.0C"},
		{21500, "21.5C"},
		{-500, "-0.5C"},
		{-27050, "-27.0C"},
		{127875, "127.8C"},
	}
	var b [8]byte
	for _, c := range cases {
		if n := MilliC(b[:], c.mc); string(b[:n]) != c.want {
			t.Fatalf("expected %q for %d, got %q", c.want, c.mc, b[:n])
		}
	}
}

func TestUint(t *testing.T) {
	var b [10]byte
	cases := []struct {
		v    uint32
		want string
	}{
		{0, "0"},
		{7, "7"},
		{42, "42"},
		{4294967295, "4294967295"},
	}
	for _, c := range cases {
		if n := Uint(b[:], c.v); string(b[:n]) != c.want {
			t.Fatalf("expected %q for %d, got %q", c.want, c.v, b[:n])
		}
	}
	var short [3]byte
	if n := Uint(short[:], 123456); n != 3 || string(short[:]) != "123" {
		t.Fatalf("expected a truncated copy, got %q", short[:n])
	}
}

func TestPad2Clamps(t *testing.T) {
	var b [2]byte
	Pad2(b[:], 255)
	if string(b[:]) != "99" {
		t.Fatalf("expected the clamp at 99, got %q", b[:])
	}
}
