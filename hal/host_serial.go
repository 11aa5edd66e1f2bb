//go:build !tinygo

package hal

import (
	"io"
	"sync"
)

// hostSerial forwards telemetry bytes to a writer; a nil writer
// discards them. File and pipe writes can stall briefly, which the
// host tolerates where the firmware target would not.
type hostSerial struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSerial wraps a writer as the telemetry sink.
func NewWriterSerial(w io.Writer) Serial {
	return &hostSerial{w: w}
}

func (s *hostSerial) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return len(p), nil
	}
	return s.w.Write(p)
}
