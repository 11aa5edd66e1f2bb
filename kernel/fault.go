package kernel

import (
	"sync"
	"sync/atomic"
)

// FaultCode classifies a fatal invariant violation.
type FaultCode uint8

const (
	FaultNone FaultCode = iota
	FaultReentrantDispatch
	FaultBadConfig
	FaultBlockingAfterStart
)

func (c FaultCode) String() string {
	switch c {
	case FaultNone:
		return "none"
	case FaultReentrantDispatch:
		return "re-entrant dispatch"
	case FaultBadConfig:
		return "bad configuration"
	case FaultBlockingAfterStart:
		return "blocking call after start"
	default:
		return "unknown"
	}
}

// FaultInfo describes the first fatal fault.
type FaultInfo struct {
	Code   FaultCode
	Detail string
}

var (
	faultActive atomic.Bool
	faultOnce   sync.Once

	faultHandler atomic.Value // func(FaultInfo)
)

// InFault reports whether a fatal fault has been raised.
func InFault() bool {
	return faultActive.Load()
}

// SetFaultHandler installs the system-wide fault sink.
//
// The handler is invoked at most once, on the first fault, before the
// system halts. It must not fault.
func SetFaultHandler(fn func(FaultInfo)) {
	faultHandler.Store(fn)
}

// Fail raises a fatal invariant violation: the installed handler runs
// once, then the system halts by panicking with the FaultInfo.
// Continuing after a broken construction-time assumption risks
// corrupting shared hardware state, so there is no recovery path.
func Fail(code FaultCode, detail string) {
	info := FaultInfo{Code: code, Detail: detail}
	faultOnce.Do(func() {
		faultActive.Store(true)
		if v := faultHandler.Load(); v != nil {
			if fn, ok := v.(func(FaultInfo)); ok && fn != nil {
				fn(info)
			}
		}
	})
	panic(info)
}
