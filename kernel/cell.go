package kernel

import "sync/atomic"

// Cell is a lock-free discrete status variable, safe to read and write
// from any priority level, including inside another resource's critical
// section.
//
// A cell holds one value from a closed set declared by its owner (a
// small enum, or a saturating counter). Writes are totally ordered;
// readers never observe a torn value. The zero value of a Cell holds
// the owner's declared zero member.
type Cell struct {
	v atomic.Uint32
}

// Set publishes a value.
func (c *Cell) Set(v uint32) { c.v.Store(v) }

// Get returns the most recently published value.
func (c *Cell) Get() uint32 { return c.v.Load() }

// Add increments a counter cell and returns the new value.
func (c *Cell) Add(delta uint32) uint32 { return c.v.Add(delta) }
