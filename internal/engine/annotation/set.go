package annotation

import (
	"fmt"
	"strings"

	"github.com/huandu/skiplist"

	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/engine/mapping"
)

// order implements skiplist.Comparable for Annotation keys.
type order struct{}

// Compare implements skiplist interface
func (order) Compare(lhs, rhs interface{}) int {
	return compare(lhs.(Annotation), rhs.(Annotation))
}

// CalcScore implements skiplist interface
func (order) CalcScore(key interface{}) float64 {
	return float64(key.(Annotation).From)
}

// index is the ordered storage shared by Set and Builder.
type index struct {
	sl *skiplist.SkipList

	// maxLen is an upper bound of the longest annotation ever stored.
	// Overlap queries start maxLen positions before the query range.
	maxLen int
}

func newIndex() index {
	return index{sl: skiplist.New(order{})}
}

func (x *index) clone() index {
	c := index{sl: skiplist.New(order{}), maxLen: x.maxLen}
	for e := x.sl.Front(); e != nil; e = e.Next() {
		c.sl.Set(e.Key(), nil)
	}
	return c
}

func (x *index) insert(a Annotation) {
	x.sl.Set(a, nil)
	if l := a.Len(); l > x.maxLen {
		x.maxLen = l
	}
}

func (x *index) remove(a Annotation) bool {
	return x.sl.Remove(a) != nil
}

func (x *index) contains(a Annotation) bool {
	return x.sl.Get(a) != nil
}

func (x *index) len() int {
	return x.sl.Len()
}

func (x *index) all() []Annotation {
	out := make([]Annotation, 0, x.sl.Len())
	for e := x.sl.Front(); e != nil; e = e.Next() {
		out = append(out, e.Key().(Annotation))
	}
	return out
}

// find returns the annotations overlapping [from, to) in order.
func (x *index) find(from, to int) []Annotation {
	var out []Annotation
	last := to
	if from == to {
		last = to + 1
	}
	for e := x.sl.Find(Annotation{From: from - x.maxLen}); e != nil; e = e.Next() {
		a := e.Key().(Annotation)
		if a.From >= last {
			break
		}
		if a.Overlaps(from, to) {
			out = append(out, a)
		}
	}
	return out
}

// within returns the annotations inside [from, to) in order.
func (x *index) within(from, to int) []Annotation {
	var out []Annotation
	for e := x.sl.Find(Annotation{From: from}); e != nil; e = e.Next() {
		a := e.Key().(Annotation)
		if a.From >= to {
			break
		}
		if a.To <= to {
			out = append(out, a)
		}
	}
	return out
}

// Set is an immutable, ordered collection of annotations. Operations that
// change the collection return a new Set. The zero value is not usable; use
// Empty or a Builder.
type Set struct {
	idx index
}

var empty = &Set{idx: newIndex()}

// Empty returns the empty set.
func Empty() *Set {
	return empty
}

// Len returns the number of annotations.
func (s *Set) Len() int {
	return s.idx.len()
}

// All returns every annotation ordered by (From, To, Kind, Tag).
func (s *Set) All() []Annotation {
	return s.idx.all()
}

// Find returns the annotations overlapping [from, to). When from == to it
// returns the annotations covering that position.
func (s *Set) Find(from, to int) []Annotation {
	return s.idx.find(from, to)
}

// Within returns the annotations that lie inside [from, to).
func (s *Set) Within(from, to int) []Annotation {
	return s.idx.within(from, to)
}

// Contains reports whether the set holds the annotation.
func (s *Set) Contains(a Annotation) bool {
	return s.idx.contains(a)
}

// Equal reports whether both sets hold the same annotations.
func (s *Set) Equal(other *Set) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil || s.Len() != other.Len() {
		return false
	}
	a, b := s.idx.sl.Front(), other.idx.sl.Front()
	for a != nil {
		if compare(a.Key().(Annotation), b.Key().(Annotation)) != 0 {
			return false
		}
		a, b = a.Next(), b.Next()
	}
	return true
}

// Builder returns a builder initialized with a copy of the set.
func (s *Set) Builder() *Builder {
	return &Builder{idx: s.idx.clone()}
}

// Remove returns a set without the given annotations.
func (s *Set) Remove(annotations ...Annotation) *Set {
	if len(annotations) == 0 {
		return s
	}
	b := s.Builder()
	b.Remove(annotations...)
	return b.Build()
}

// Add returns a set with the given annotations added. Every annotation must
// be non-empty and lie inside the content of doc.
func (s *Set) Add(doc *document.Node, annotations []Annotation) (*Set, error) {
	if len(annotations) == 0 {
		return s, nil
	}
	size := doc.ContentSize()
	for _, a := range annotations {
		if err := check(a, size); err != nil {
			return nil, err
		}
	}
	b := s.Builder()
	b.Insert(annotations...)
	return b.Build(), nil
}

// MapThrough returns the set mapped through an edit producing a document
// with content size newSize.
func (s *Set) MapThrough(m *mapping.Mapping, newSize int) (*Set, error) {
	b, _, err := s.Remap(m, newSize)
	if err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// Remap maps every annotation through m into a new builder. From maps with
// AssocAfter and To with AssocBefore; annotations that collapse are dropped.
// The returned touched list holds the mapped annotations whose interior the
// edit changed; they may no longer describe the document.
func (s *Set) Remap(m *mapping.Mapping, newSize int) (*Builder, []Annotation, error) {
	if m.IsIdentity() {
		return s.Builder(), nil, nil
	}
	b := NewBuilder()
	var touched []Annotation
	for e := s.idx.sl.Front(); e != nil; e = e.Next() {
		a := e.Key().(Annotation)
		mapped := a
		mapped.From = m.Map(a.From, mapping.AssocAfter)
		mapped.To = m.Map(a.To, mapping.AssocBefore)
		if mapped.To <= mapped.From {
			continue
		}
		if mapped.From < 0 || mapped.To > newSize {
			return nil, nil, fmt.Errorf("%w: %v maps to [%d:%d) in [0:%d]",
				ErrOutOfBounds, a, mapped.From, mapped.To, newSize)
		}
		if _, ok := m.Carries(a.From, a.To); !ok {
			touched = append(touched, mapped)
		}
		b.idx.insert(mapped)
	}
	return b, touched, nil
}

// String returns the annotations separated by spaces.
func (s *Set) String() string {
	all := s.All()
	parts := make([]string, len(all))
	for i, a := range all {
		parts[i] = a.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Builder is the mutable form of a Set with a single owner.
type Builder struct {
	idx index
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{idx: newIndex()}
}

// Len returns the number of annotations.
func (b *Builder) Len() int {
	return b.idx.len()
}

// Find returns the annotations overlapping [from, to).
func (b *Builder) Find(from, to int) []Annotation {
	return b.idx.find(from, to)
}

// Within returns the annotations inside [from, to).
func (b *Builder) Within(from, to int) []Annotation {
	return b.idx.within(from, to)
}

// Contains reports whether the builder holds the annotation.
func (b *Builder) Contains(a Annotation) bool {
	return b.idx.contains(a)
}

// Insert adds annotations. Annotations already present are kept once.
func (b *Builder) Insert(annotations ...Annotation) {
	for _, a := range annotations {
		b.idx.insert(a)
	}
}

// Remove deletes annotations and returns how many were present.
func (b *Builder) Remove(annotations ...Annotation) int {
	n := 0
	for _, a := range annotations {
		if b.idx.remove(a) {
			n++
		}
	}
	return n
}

// Build freezes the builder's content into a Set. The builder is reset and
// may be reused.
func (b *Builder) Build() *Set {
	if b.idx.len() == 0 {
		b.idx = newIndex()
		return empty
	}
	s := &Set{idx: b.idx}
	b.idx = newIndex()
	return s
}

func check(a Annotation, size int) error {
	if a.To <= a.From {
		return fmt.Errorf("%w: %v", ErrEmptyRange, a)
	}
	if a.From < 0 || a.To > size {
		return fmt.Errorf("%w: %v not in [0:%d]", ErrOutOfBounds, a, size)
	}
	return nil
}
