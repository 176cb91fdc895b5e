package dlg

// PointerKey identifies pointers that may share one physical struct.
type PointerKey struct {
	Index  uint32
	Target Kind
	IsLink bool
}

// KeyOf returns the sharing key of p.
func KeyOf(p Pointer) PointerKey {
	return PointerKey{Index: p.Index, Target: p.Target, IsLink: p.IsLink}
}

type compactSlot struct {
	index uint32
	first Pointer
}

// CompactPointerManager decides which logical pointers share a physical
// struct on save. Pointers with the same target and link flag map to one
// struct; the first occurrence's condition, parameters, and comment are the
// ones written. Later occurrences whose payload differs are counted as
// conflicts.
type CompactPointerManager struct {
	enabled   bool
	slots     map[PointerKey]compactSlot
	logical   int
	physical  int
	conflicts int
}

// NewCompactPointerManager returns a manager. When enabled is false every
// pointer gets its own struct.
func NewCompactPointerManager(enabled bool) *CompactPointerManager {
	return &CompactPointerManager{enabled: enabled, slots: make(map[PointerKey]compactSlot)}
}

// Acquire returns the struct index for p, calling alloc for a new one when
// no struct can be shared. fresh reports whether alloc was called; conflict
// reports that p was folded into a struct with a different payload.
func (m *CompactPointerManager) Acquire(p Pointer, alloc func() uint32) (index uint32, fresh, conflict bool) {
	m.logical++
	if !m.enabled {
		m.physical++
		return alloc(), true, false
	}
	key := KeyOf(p)
	if s, ok := m.slots[key]; ok {
		if !s.first.samePayload(p) {
			m.conflicts++
			return s.index, false, true
		}
		return s.index, false, false
	}
	index = alloc()
	m.slots[key] = compactSlot{index: index, first: p}
	m.physical++
	return index, true, false
}

// Logical returns the number of pointers acquired.
func (m *CompactPointerManager) Logical() int { return m.logical }

// Physical returns the number of structs allocated.
func (m *CompactPointerManager) Physical() int { return m.physical }

// Conflicts returns the number of payload conflicts.
func (m *CompactPointerManager) Conflicts() int { return m.conflicts }

// Ratio returns physical/logical, or 1 when nothing was acquired.
func (m *CompactPointerManager) Ratio() float64 {
	if m.logical == 0 {
		return 1
	}
	return float64(m.physical) / float64(m.logical)
}
