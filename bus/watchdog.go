package bus

// Watchdog tears down a stuck transaction.
//
// It runs as an independent task on its own timer line, below the
// engine's interrupt priority. The engine bumps its progress counter on
// every hardware event; a non-Idle engine whose counter holds still
// across enough consecutive checks gets a forced bus reset and the
// submitter is notified with ErrTimeout. Cancellation of a healthy
// transaction is deliberately not offered.
type Watchdog struct {
	eng   *Engine
	limit uint8

	last  uint32
	stale uint8
}

// NewWatchdog creates a watchdog that fires after staleChecks
// consecutive checks without engine progress.
func NewWatchdog(eng *Engine, staleChecks uint8) *Watchdog {
	if staleChecks == 0 {
		staleChecks = 1
	}
	return &Watchdog{eng: eng, limit: staleChecks}
}

// Run is the watchdog task body.
func (w *Watchdog) Run() {
	p := w.eng.Progress()
	if w.eng.State() == Idle || p != w.last {
		w.last = p
		w.stale = 0
		return
	}
	w.stale++
	if w.stale >= w.limit {
		w.stale = 0
		w.eng.timeout()
	}
}
