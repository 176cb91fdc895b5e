package gff

import (
	"fmt"
	"slices"
)

// Allocation is a contiguous range of field indices handed out for one
// struct, tagged with the purpose it was requested for.
type Allocation struct {
	Start   uint32
	Count   uint32
	Purpose string
}

// End returns the first index after the range.
func (a Allocation) End() uint32 { return a.Start + a.Count }

func (a Allocation) String() string {
	return fmt.Sprintf("[%d,%d) %s", a.Start, a.End(), a.Purpose)
}

func (a Allocation) overlaps(b Allocation) bool {
	if a.Count == 0 || b.Count == 0 {
		return false
	}
	return a.Start < b.End() && b.Start < a.End()
}

// FieldIndexTracker hands out monotonically increasing field index ranges and
// records each range's purpose so the final layout can be audited.
//
// A FieldIndexTracker is not safe for concurrent use.
type FieldIndexTracker struct {
	next   uint32
	allocs []Allocation
}

// NewFieldIndexTracker returns a tracker whose first allocation starts at 0.
func NewFieldIndexTracker() *FieldIndexTracker {
	return &FieldIndexTracker{}
}

// Allocate reserves the next count field indices.
func (t *FieldIndexTracker) Allocate(count uint32, purpose string) Allocation {
	a := Allocation{Start: t.next, Count: count, Purpose: purpose}
	t.next += count
	t.allocs = append(t.allocs, a)
	return a
}

// Reserve records an explicit range, for callers that place fields at fixed
// positions. It fails with a [*ConflictError] when the range overlaps an
// earlier allocation. Later calls to Allocate continue after the highest
// index handed out so far.
func (t *FieldIndexTracker) Reserve(start, count uint32, purpose string) (Allocation, error) {
	a := Allocation{Start: start, Count: count, Purpose: purpose}
	for _, prev := range t.allocs {
		if prev.overlaps(a) {
			return Allocation{}, &ConflictError{First: prev, Second: a}
		}
	}
	t.allocs = append(t.allocs, a)
	if a.End() > t.next {
		t.next = a.End()
	}
	return a, nil
}

// Next returns the number of field indices handed out so far.
func (t *FieldIndexTracker) Next() uint32 { return t.next }

// Allocations returns a copy of every allocation in request order.
func (t *FieldIndexTracker) Allocations() []Allocation { return slices.Clone(t.allocs) }

// Audit verifies that no two allocations overlap. It returns the first
// conflict found, in start order.
func (t *FieldIndexTracker) Audit() error {
	sorted := slices.Clone(t.allocs)
	slices.SortStableFunc(sorted, func(a, b Allocation) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
	// reach is the non-empty range extending furthest so far.
	var reach *Allocation
	for i := range sorted {
		a := sorted[i]
		if a.Count == 0 {
			continue
		}
		if reach != nil && reach.overlaps(a) {
			return &ConflictError{First: *reach, Second: a}
		}
		if reach == nil || a.End() > reach.End() {
			reach = &sorted[i]
		}
	}
	return nil
}

// Usage returns the number of field indices allocated per purpose.
func (t *FieldIndexTracker) Usage() map[string]uint32 {
	m := make(map[string]uint32)
	for _, a := range t.allocs {
		m[a.Purpose] += a.Count
	}
	return m
}
