package mapping

import (
	"fmt"
	"strings"
)

// Range represents a position range in the document.
// Start is inclusive, End is exclusive: [Start, End).
type Range struct {
	Start int // Inclusive start position
	End   int // Exclusive end position
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len returns the length of the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// ChangeType categorizes the type of a change.
type ChangeType uint8

const (
	// ChangeInsert indicates content was inserted (old range is empty).
	ChangeInsert ChangeType = iota

	// ChangeDelete indicates content was deleted (new range is empty).
	ChangeDelete

	// ChangeReplace indicates content was replaced (both ranges non-empty).
	ChangeReplace
)

// String returns a human-readable representation of the change type.
func (ct ChangeType) String() string {
	switch ct {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change represents a single rewrite of an old range into a new range.
type Change struct {
	// Type indicates whether this is an insert, delete, or replace.
	Type ChangeType

	// Range is the affected range in the OLD document (before the change).
	// For inserts, Start == End (point insertion).
	Range Range

	// NewRange is the affected range in the NEW document (after the change).
	// For deletes, Start == End.
	NewRange Range
}

// NewInsertChange creates a change representing an insertion of size positions.
func NewInsertChange(pos, size int) Change {
	return Change{
		Type:     ChangeInsert,
		Range:    Range{Start: pos, End: pos},
		NewRange: Range{Start: pos, End: pos + size},
	}
}

// NewDeleteChange creates a change representing a deletion.
func NewDeleteChange(start, end int) Change {
	return Change{
		Type:     ChangeDelete,
		Range:    Range{Start: start, End: end},
		NewRange: Range{Start: start, End: start},
	}
}

// NewReplaceChange creates a change representing a replacement of [start, end)
// by size positions.
func NewReplaceChange(start, end, size int) Change {
	c := Change{
		Type:     ChangeReplace,
		Range:    Range{Start: start, End: end},
		NewRange: Range{Start: start, End: start + size},
	}
	switch {
	case start == end:
		c.Type = ChangeInsert
	case size == 0:
		c.Type = ChangeDelete
	}
	return c
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	switch c.Type {
	case ChangeInsert:
		return fmt.Sprintf("Insert %d at %d", c.NewRange.Len(), c.Range.Start)
	case ChangeDelete:
		return fmt.Sprintf("Delete %v", c.Range)
	case ChangeReplace:
		return fmt.Sprintf("Replace %v with %d", c.Range, c.NewRange.Len())
	default:
		return "Unknown change"
	}
}

// Delta returns the size delta of this change.
// Positive means the document grew, negative means it shrank.
func (c Change) Delta() int {
	return c.NewRange.Len() - c.Range.Len()
}

// Invert returns a change that undoes this change.
func (c Change) Invert() Change {
	return Change{
		Type:     c.invertedType(),
		Range:    c.NewRange,
		NewRange: c.Range,
	}
}

func (c Change) invertedType() ChangeType {
	switch c.Type {
	case ChangeInsert:
		return ChangeDelete
	case ChangeDelete:
		return ChangeInsert
	default:
		return ChangeReplace
	}
}

// summarize returns a human-readable summary of the given changes.
func summarize(changes []Change) string {
	if len(changes) == 0 {
		return "no changes"
	}

	var inserts, deletes, replaces int
	var inserted, deleted int

	for _, c := range changes {
		switch c.Type {
		case ChangeInsert:
			inserts++
			inserted += c.NewRange.Len()
		case ChangeDelete:
			deletes++
			deleted += c.Range.Len()
		case ChangeReplace:
			replaces++
			inserted += c.NewRange.Len()
			deleted += c.Range.Len()
		}
	}

	var parts []string
	if inserts > 0 {
		parts = append(parts, fmt.Sprintf("%d inserts (+%d)", inserts, inserted))
	}
	if deletes > 0 {
		parts = append(parts, fmt.Sprintf("%d deletes (-%d)", deletes, deleted))
	}
	if replaces > 0 {
		parts = append(parts, fmt.Sprintf("%d replaces", replaces))
	}

	return strings.Join(parts, ", ")
}
