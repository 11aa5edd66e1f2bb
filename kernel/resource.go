package kernel

import "quartz/hal"

// Resource guards one piece of shared state with a priority ceiling.
//
// The ceiling is the maximum priority of any task that touches the
// state. Holding the resource raises the execution mask to the ceiling,
// so no toucher can preempt into the critical section: mutual exclusion
// on a single core, with blocking bounded by one lower-priority section.
//
// Acquisitions must be statically well-nested. Ceilings are fixed at
// build time; the nesting discipline is a construction-time rule, not a
// runtime check.
type Resource struct {
	ic      hal.InterruptController
	ceiling hal.Priority
}

// NewResource creates a resource with the given ceiling.
func NewResource(ic hal.InterruptController, ceiling hal.Priority) *Resource {
	if ceiling == 0 {
		Fail(FaultBadConfig, "resource with zero ceiling")
	}
	return &Resource{ic: ic, ceiling: ceiling}
}

// With runs fn inside the critical section. The prior mask is restored
// on every exit path, including a panic unwinding through fn.
func (r *Resource) With(fn func()) {
	prev := r.ic.RaiseMask(r.ceiling)
	defer r.ic.RestoreMask(prev)
	fn()
}

// Lock enters the critical section and returns the mask to hand back to
// Unlock. Prefer With; Lock exists for sections that span a branch.
func (r *Resource) Lock() hal.Priority {
	return r.ic.RaiseMask(r.ceiling)
}

// Unlock leaves the critical section entered by the matching Lock.
func (r *Resource) Unlock(prev hal.Priority) {
	r.ic.RestoreMask(prev)
}

// Ceiling reports the resource's fixed ceiling.
func (r *Resource) Ceiling() hal.Priority { return r.ceiling }
