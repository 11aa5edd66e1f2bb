// Package lm75b drives the LM75B temperature sensor.
//
// The pointer register is left at its power-up value (the temperature
// register), so a bare two-byte read always returns a sample; the
// asynchronous polling path relies on that and decodes with Milli.
package lm75b

import "tinygo.org/x/drivers"

// BaseAddress is the 7-bit address with all three select pins low.
const BaseAddress = 0x48

// SampleLen is the size of a raw temperature read.
const SampleLen = 2

// Milli converts a raw big-endian temperature register to
// milli-degrees Celsius. The value is an 11-bit two's-complement
// number in the top bits, 0.125 degrees per LSB.
func Milli(raw uint16) int32 {
	return int32(int16(raw)>>5) * 125
}

// MilliFrom decodes a raw register image as read off the bus.
func MilliFrom(b []byte) int32 {
	if len(b) < SampleLen {
		return 0
	}
	return Milli(uint16(b[0])<<8 | uint16(b[1]))
}

// Device is a blocking handle on the sensor.
type Device struct {
	bus     drivers.I2C
	Address uint16
}

// New creates a handle. pins is the state of the A2..A0 select pins.
func New(bus drivers.I2C, pins uint8) Device {
	return Device{bus: bus, Address: BaseAddress | uint16(pins&0x07)}
}

// ReadTemperature returns the current sample in milli-degrees.
func (d *Device) ReadTemperature() (int32, error) {
	var raw [SampleLen]byte
	if err := d.bus.Tx(d.Address, nil, raw[:]); err != nil {
		return 0, err
	}
	return MilliFrom(raw[:]), nil
}
