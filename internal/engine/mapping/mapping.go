package mapping

import "fmt"

// Mapping is an ordered sequence of step maps describing one committed edit.
// A nil Mapping is the identity.
type Mapping struct {
	maps []*StepMap
}

// New creates a mapping from step maps in application order.
func New(maps ...*StepMap) *Mapping {
	m := &Mapping{}
	for _, sm := range maps {
		m.Append(sm)
	}
	return m
}

// Identity returns a mapping that maps every position to itself.
func Identity() *Mapping {
	return &Mapping{}
}

// Insert returns a single-step mapping inserting size positions at pos.
func Insert(pos, size int) *Mapping {
	return New(mustStepMap(NewInsertChange(pos, size)))
}

// Delete returns a single-step mapping deleting [from, to).
func Delete(from, to int) *Mapping {
	return New(mustStepMap(NewDeleteChange(from, to)))
}

// Replace returns a single-step mapping replacing [from, to) by size positions.
func Replace(from, to, size int) *Mapping {
	return New(mustStepMap(NewReplaceChange(from, to, size)))
}

// Append adds a step map to the end of the mapping.
func (m *Mapping) Append(sm *StepMap) {
	if sm == nil {
		return
	}
	m.maps = append(m.maps, sm)
}

// AppendMapping adds all steps of other to the end of the mapping.
func (m *Mapping) AppendMapping(other *Mapping) {
	if other == nil {
		return
	}
	m.maps = append(m.maps, other.maps...)
}

// Maps returns the step maps in application order.
func (m *Mapping) Maps() []*StepMap {
	if m == nil {
		return nil
	}
	out := make([]*StepMap, len(m.maps))
	copy(out, m.maps)
	return out
}

// Len returns the number of steps.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.maps)
}

// IsIdentity returns true if no step changes anything.
func (m *Mapping) IsIdentity() bool {
	if m == nil {
		return true
	}
	for _, sm := range m.maps {
		for _, c := range sm.changes {
			if !c.Range.IsEmpty() || !c.NewRange.IsEmpty() {
				return false
			}
		}
	}
	return true
}

// Map maps a position through every step.
func (m *Mapping) Map(pos int, assoc Assoc) int {
	return m.MapResult(pos, assoc).Pos
}

// MapResult maps a position through every step. Deleted is set if any step
// deleted the position.
func (m *Mapping) MapResult(pos int, assoc Assoc) Result {
	res := Result{Pos: pos}
	if m == nil {
		return res
	}
	for _, sm := range m.maps {
		r := sm.MapResult(res.Pos, assoc)
		res.Pos = r.Pos
		res.Deleted = res.Deleted || r.Deleted
	}
	return res
}

// Carries reports whether the edit leaves the open interval (from, to)
// untouched in every step. If so it returns the image of from; the image of
// to is then from' + (to - from).
func (m *Mapping) Carries(from, to int) (int, bool) {
	if m == nil {
		return from, true
	}
	for _, sm := range m.maps {
		if sm.touches(from, to) {
			return 0, false
		}
		from, to = sm.Map(from, AssocAfter), sm.Map(to, AssocBefore)
	}
	return from, true
}

// Validate checks that every step lies within the document it applies to and
// that the edit turns a document of oldSize into one of newSize.
func (m *Mapping) Validate(oldSize, newSize int) error {
	size := oldSize
	if m != nil {
		for i, sm := range m.maps {
			next, err := sm.validate(size)
			if err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			size = next
		}
	}
	if size != newSize {
		return fmt.Errorf("%w: edit produces size %d, document has %d", ErrMalformed, size, newSize)
	}
	return nil
}

// Invert returns the mapping from the new document back to the old one.
func (m *Mapping) Invert() *Mapping {
	inv := &Mapping{}
	if m == nil {
		return inv
	}
	for i := len(m.maps) - 1; i >= 0; i-- {
		inv.maps = append(inv.maps, m.maps[i].invert())
	}
	return inv
}

// Changes returns every change of every step in application order.
func (m *Mapping) Changes() []Change {
	if m == nil {
		return nil
	}
	var out []Change
	for _, sm := range m.maps {
		out = append(out, sm.changes...)
	}
	return out
}

// Summary returns a human-readable summary of the edit.
func (m *Mapping) Summary() string {
	return summarize(m.Changes())
}
