//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	// Ticks is how many virtual milliseconds to run; 0 runs until the
	// context cancels.
	Ticks uint64
	// Hz paces the run at this many virtual milliseconds per wall
	// second; 0 runs unpaced.
	Hz int
}

// RunHeadless drives a virtual-time host without a window: boot runs
// on its own goroutine while the caller's goroutine moves the clock
// one millisecond at a time, delivering at most one bus event per
// step.
func RunHeadless(ctx context.Context, h *Host, boot func(HAL), cfg HeadlessConfig) error {
	if h.vt == nil {
		return errors.New("headless needs a virtual-time host")
	}
	go boot(h)

	var pace *time.Ticker
	if cfg.Hz > 0 {
		pace = time.NewTicker(time.Second / time.Duration(cfg.Hz))
		defer pace.Stop()
	}

	for tick := uint64(0); cfg.Ticks == 0 || tick < cfg.Ticks; tick++ {
		if pace != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-pace.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		h.vt.Advance(1)
		h.RTC.AdvanceMillis(1)
		h.bus.Step()
	}
	return nil
}
