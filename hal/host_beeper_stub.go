//go:build !tinygo && !cgo

package hal

// Without cgo there is no audio backend; the alarm stays silent.
func newHostBeeper() Beeper { return nullBeeper{} }
