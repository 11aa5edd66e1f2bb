// Package ds3231 drives the DS3231 real-time clock.
//
// The Device type covers the blocking path used at bring-up. Callers
// that read the clock asynchronously drive the raw register block
// themselves and decode it with the pure helpers here, so both paths
// share one register map.
package ds3231

import "tinygo.org/x/drivers"

// DefaultAddress is the chip's fixed 7-bit bus address.
const DefaultAddress = 0x68

// RegTime is the address of the seconds..year register block, exported
// for callers driving reads asynchronously.
const RegTime uint8 = 0x00

// TimeLen is the size of the time register block.
const TimeLen = 7

const (
	regControl = 0x0E
	regStatus  = 0x0F

	ctlEOSC = 0x80 // oscillator disabled on battery when set
	statOSF = 0x80 // oscillator-stop flag: time is suspect

	hour12   = 0x40 // 12-hour mode flag in the hours register
	hourPM   = 0x20
	monthMask = 0x1F // month bits below the century flag
)

// Time is a calendar instant as the chip stores it, hours normalized
// to 24-hour form. Year covers 2000..2099, matching the chip's century.
type Time struct {
	Seconds uint8
	Minutes uint8
	Hours   uint8
	Weekday uint8 // 1..7, assignment is the application's choice
	Day     uint8
	Month   uint8
	Year    uint16
}

var monthDays = [12]uint8{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func daysIn(month uint8, year uint16) uint8 {
	if month == 2 && year%4 == 0 {
		return 29
	}
	if month < 1 || month > 12 {
		return 31
	}
	return monthDays[month-1]
}

// AddSecond advances the instant by one second, rolling fields as
// needed. The local clock ticks with this between resyncs.
func (t *Time) AddSecond() {
	t.Seconds++
	if t.Seconds < 60 {
		return
	}
	t.Seconds = 0
	t.Minutes++
	if t.Minutes < 60 {
		return
	}
	t.Minutes = 0
	t.Hours++
	if t.Hours < 24 {
		return
	}
	t.Hours = 0
	t.Weekday++
	if t.Weekday > 7 {
		t.Weekday = 1
	}
	t.Day++
	if t.Day <= daysIn(t.Month, t.Year) {
		return
	}
	t.Day = 1
	t.Month++
	if t.Month <= 12 {
		return
	}
	t.Month = 1
	t.Year++
}

// Decode converts a raw time register block. regs must hold TimeLen
// bytes read from RegTime.
func Decode(regs []byte) Time {
	var t Time
	if len(regs) < TimeLen {
		return t
	}
	t.Seconds = bcdToDec(regs[0] & 0x7F)
	t.Minutes = bcdToDec(regs[1] & 0x7F)
	h := regs[2]
	if h&hour12 != 0 {
		t.Hours = bcdToDec(h & 0x1F)
		if t.Hours == 12 {
			t.Hours = 0
		}
		if h&hourPM != 0 {
			t.Hours += 12
		}
	} else {
		t.Hours = bcdToDec(h & 0x3F)
	}
	t.Weekday = regs[3] & 0x07
	t.Day = bcdToDec(regs[4] & 0x3F)
	t.Month = bcdToDec(regs[5] & monthMask)
	t.Year = 2000 + uint16(bcdToDec(regs[6]))
	return t
}

// Encode fills a raw register block from t, always in 24-hour form.
// regs must hold TimeLen bytes.
func Encode(t Time, regs []byte) {
	if len(regs) < TimeLen {
		return
	}
	regs[0] = decToBcd(t.Seconds % 60)
	regs[1] = decToBcd(t.Minutes % 60)
	regs[2] = decToBcd(t.Hours % 24)
	wd := t.Weekday
	if wd < 1 || wd > 7 {
		wd = 1
	}
	regs[3] = wd
	regs[4] = decToBcd(t.Day)
	regs[5] = decToBcd(t.Month)
	regs[6] = decToBcd(uint8(t.Year % 100))
}

// Device is a blocking handle on the chip.
type Device struct {
	bus     drivers.I2C
	Address uint16
	buf     [1 + TimeLen]byte
}

// New creates a handle with the default address.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: DefaultAddress}
}

// Configure makes sure the oscillator keeps running on battery.
func (d *Device) Configure() error {
	ptr := [1]byte{regControl}
	var ctl [1]byte
	if err := d.bus.Tx(d.Address, ptr[:], ctl[:]); err != nil {
		return err
	}
	if ctl[0]&ctlEOSC == 0 {
		return nil
	}
	out := [2]byte{regControl, ctl[0] &^ ctlEOSC}
	return d.bus.Tx(d.Address, out[:], nil)
}

// ReadTime returns the chip's current instant.
func (d *Device) ReadTime() (Time, error) {
	ptr := [1]byte{RegTime}
	if err := d.bus.Tx(d.Address, ptr[:], d.buf[:TimeLen]); err != nil {
		return Time{}, err
	}
	return Decode(d.buf[:TimeLen]), nil
}

// SetTime writes a new instant and clears the oscillator-stop flag so
// the stored time counts as valid again.
func (d *Device) SetTime(t Time) error {
	d.buf[0] = RegTime
	Encode(t, d.buf[1:])
	if err := d.bus.Tx(d.Address, d.buf[:1+TimeLen], nil); err != nil {
		return err
	}
	ptr := [1]byte{regStatus}
	var st [1]byte
	if err := d.bus.Tx(d.Address, ptr[:], st[:]); err != nil {
		return err
	}
	out := [2]byte{regStatus, st[0] &^ statOSF}
	return d.bus.Tx(d.Address, out[:], nil)
}

// TimeValid reports whether the oscillator has run continuously since
// the time was last set.
func (d *Device) TimeValid() (bool, error) {
	ptr := [1]byte{regStatus}
	var st [1]byte
	if err := d.bus.Tx(d.Address, ptr[:], st[:]); err != nil {
		return false, err
	}
	return st[0]&statOSF == 0, nil
}

func bcdToDec(v uint8) uint8 { return (v>>4)*10 + v&0x0F }
func decToBcd(v uint8) uint8 { return (v/10)<<4 | v%10 }
