//go:build !tinygo

package hal

import "sync/atomic"

// SimButtons holds the joystick contact levels as one atomic mask.
// The window keyboard or a test sets levels; the scan task samples.
type SimButtons struct {
	v atomic.Uint32
}

func NewSimButtons() *SimButtons { return &SimButtons{} }

func (b *SimButtons) Sample() ButtonMask { return ButtonMask(b.v.Load()) }

// SetAll replaces the whole level mask.
func (b *SimButtons) SetAll(m ButtonMask) { b.v.Store(uint32(m)) }

// SetLevel drives one contact.
func (b *SimButtons) SetLevel(m ButtonMask, down bool) {
	for {
		old := b.v.Load()
		var next uint32
		if down {
			next = old | uint32(m)
		} else {
			next = old &^ uint32(m)
		}
		if b.v.CompareAndSwap(old, next) {
			return
		}
	}
}
