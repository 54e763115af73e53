package annotation

import "fmt"

// Kind distinguishes annotations on text runs from annotations on nodes.
type Kind uint8

const (
	// KindInline marks a run of characters.
	KindInline Kind = iota

	// KindNode marks a whole node because of its type.
	KindNode
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInline:
		return "inline"
	case KindNode:
		return "node"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Annotation is a tagged half-open position range [From, To).
// Annotations are values; two annotations are the same if all fields match.
type Annotation struct {
	From int
	To   int
	Tag  string
	Kind Kind
}

// Inline creates an inline annotation.
func Inline(from, to int, tag string) Annotation {
	return Annotation{From: from, To: to, Tag: tag, Kind: KindInline}
}

// Node creates a node annotation.
func Node(from, to int, tag string) Annotation {
	return Annotation{From: from, To: to, Tag: tag, Kind: KindNode}
}

// Len returns the number of positions covered.
func (a Annotation) Len() int {
	return a.To - a.From
}

// Overlaps reports whether the annotation overlaps [from, to). When
// from == to it reports whether the annotation covers that position.
func (a Annotation) Overlaps(from, to int) bool {
	if from == to {
		return a.From <= from && from < a.To
	}
	return a.From < to && from < a.To
}

// Inside reports whether the annotation lies within [from, to).
func (a Annotation) Inside(from, to int) bool {
	return from <= a.From && a.To <= to
}

// String returns a debugging representation, e.g. nbsp[11:12).
func (a Annotation) String() string {
	if a.Kind == KindNode {
		return fmt.Sprintf("%s<node>[%d:%d)", a.Tag, a.From, a.To)
	}
	return fmt.Sprintf("%s[%d:%d)", a.Tag, a.From, a.To)
}

func compare(a, b Annotation) int {
	switch {
	case a.From != b.From:
		return cmpInt(a.From, b.From)
	case a.To != b.To:
		return cmpInt(a.To, b.To)
	case a.Kind != b.Kind:
		return cmpInt(int(a.Kind), int(b.Kind))
	case a.Tag < b.Tag:
		return -1
	case a.Tag > b.Tag:
		return 1
	}
	return 0
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	return 1
}
