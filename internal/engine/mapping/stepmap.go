package mapping

import "fmt"

// Assoc selects on which side of an insertion or replaced range a position
// ends up when it sits exactly on the affected boundary.
type Assoc int

const (
	// AssocBefore keeps the position before inserted content.
	AssocBefore Assoc = -1

	// AssocAfter moves the position past inserted content.
	AssocAfter Assoc = 1
)

// Result is the outcome of mapping a single position.
type Result struct {
	// Pos is the mapped position.
	Pos int

	// Deleted is true when the position was strictly inside a replaced range.
	Deleted bool
}

// StepMap describes one atomic step as an ordered list of non-overlapping
// changes expressed in the coordinates of the document before the step.
type StepMap struct {
	changes []Change
}

// NewStepMap creates a step map from changes ordered by their old start.
// NewRange starts are recomputed from the accumulated size delta, only the
// length of each NewRange is taken from the caller.
func NewStepMap(changes ...Change) (*StepMap, error) {
	sm := &StepMap{changes: make([]Change, 0, len(changes))}
	diff := 0
	prevEnd := 0
	for i, c := range changes {
		if c.Range.Start < 0 || c.Range.End < c.Range.Start || c.NewRange.End < c.NewRange.Start {
			return nil, fmt.Errorf("%w: invalid change %v", ErrMalformed, c)
		}
		if i > 0 && c.Range.Start < prevEnd {
			return nil, fmt.Errorf("%w: change %v overlaps or precedes %d", ErrMalformed, c, prevEnd)
		}
		size := c.NewRange.Len()
		c = NewReplaceChange(c.Range.Start, c.Range.End, size)
		c.NewRange = Range{Start: c.Range.Start + diff, End: c.Range.Start + diff + size}
		diff += c.Delta()
		prevEnd = c.Range.End
		sm.changes = append(sm.changes, c)
	}
	return sm, nil
}

// mustStepMap is used by constructors whose changes are valid by construction.
func mustStepMap(changes ...Change) *StepMap {
	sm, err := NewStepMap(changes...)
	if err != nil {
		panic(err)
	}
	return sm
}

// Changes returns a copy of the step's changes.
func (s *StepMap) Changes() []Change {
	out := make([]Change, len(s.changes))
	copy(out, s.changes)
	return out
}

// Delta returns the total size delta of the step.
func (s *StepMap) Delta() int {
	d := 0
	for _, c := range s.changes {
		d += c.Delta()
	}
	return d
}

// Map maps a position through the step.
func (s *StepMap) Map(pos int, assoc Assoc) int {
	return s.MapResult(pos, assoc).Pos
}

// MapResult maps a position through the step and reports whether it was
// inside a replaced range.
func (s *StepMap) MapResult(pos int, assoc Assoc) Result {
	diff := 0
	for _, c := range s.changes {
		start := c.Range.Start
		if start > pos {
			break
		}
		end := c.Range.End
		oldSize, newSize := end-start, c.NewRange.Len()
		if pos <= end {
			side := assoc
			if oldSize > 0 {
				if pos == start {
					side = AssocBefore
				} else if pos == end {
					side = AssocAfter
				}
			}
			res := start + diff
			if side > 0 {
				res += newSize
			}
			return Result{Pos: res, Deleted: oldSize > 0 && pos > start && pos < end}
		}
		diff += newSize - oldSize
	}
	return Result{Pos: pos + diff}
}

// touches reports whether any change intersects the open interval (from, to).
func (s *StepMap) touches(from, to int) bool {
	for _, c := range s.changes {
		if c.Range.Start >= to {
			break
		}
		if c.Range.IsEmpty() {
			if c.Range.Start > from {
				return true
			}
			continue
		}
		if c.Range.End > from {
			return true
		}
	}
	return false
}

// validate checks the step against the size of the document it applies to
// and returns the size after the step.
func (s *StepMap) validate(size int) (int, error) {
	for _, c := range s.changes {
		if c.Range.End > size {
			return 0, fmt.Errorf("%w: change %v outside [0:%d]", ErrMalformed, c, size)
		}
	}
	return size + s.Delta(), nil
}

// invert returns the step map that undoes this step.
func (s *StepMap) invert() *StepMap {
	inv := &StepMap{changes: make([]Change, len(s.changes))}
	for i, c := range s.changes {
		inv.changes[i] = c.Invert()
	}
	return inv
}
