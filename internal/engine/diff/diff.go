package diff

import (
	"fmt"

	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/engine/mapping"
)

// DefaultWindow is the number of old siblings searched for a match.
const DefaultWindow = 3

// Options configures change detection.
type Options struct {
	// Window is the look-ahead over old siblings. Values below 1 select
	// DefaultWindow.
	Window int

	// Mapping is the edit that turned the old tree into the new one. A
	// nil mapping is the identity. An old child only matches a new child
	// if the mapping moves its span onto the new child's span without
	// touching its interior.
	Mapping *mapping.Mapping
}

// Stats counts the work done by Changed.
type Stats struct {
	// Reported is the number of nodes passed to the callback.
	Reported int

	// Matched is the number of new children found unchanged.
	Matched int

	// Descended is the number of changed elements compared child by child
	// with an old element of the same markup.
	Descended int
}

// Visitor receives changed nodes and their position in the new tree.
type Visitor func(node *document.Node, pos int)

// Changed calls fn for every node of cur that is not an unchanged copy of a
// node of old. Both roots must have the same markup. The roots themselves are
// never reported.
func Changed(old, cur *document.Node, opts Options, fn Visitor) (Stats, error) {
	if old == nil || cur == nil {
		return Stats{}, fmt.Errorf("%w: nil root", ErrIncompatibleRoots)
	}
	if old.IsLeaf() || cur.IsLeaf() {
		return Stats{}, fmt.Errorf("%w: leaf root", ErrIncompatibleRoots)
	}
	if !old.SameMarkup(cur) {
		return Stats{}, fmt.Errorf("%w: %s and %s", ErrIncompatibleRoots, old.Type(), cur.Type())
	}

	w := walker{
		window:  opts.Window,
		mapping: opts.Mapping,
		fn:      fn,
	}
	if w.window < 1 {
		w.window = DefaultWindow
	}
	w.children(old, cur, 0, 0)
	return w.stats, nil
}

type walker struct {
	window  int
	mapping *mapping.Mapping
	fn      Visitor
	stats   Stats
}

func (w *walker) report(n *document.Node, pos int) {
	w.stats.Reported++
	w.fn(n, pos)
}

// children compares the content of old (starting at oldPos) with the content
// of cur (starting at pos).
func (w *walker) children(old, cur *document.Node, oldPos, pos int) {
	oldLen := old.ChildCount()
	j := 0
	for i := 0; i < cur.ChildCount(); i++ {
		child := cur.Child(i)

		found := -1
		scanPos := oldPos
		for k := j; k < oldLen && k < j+w.window; k++ {
			if w.unchanged(old.Child(k), child, scanPos, pos) {
				found = k
				break
			}
			scanPos += old.Child(k).NodeSize()
		}

		if found >= 0 {
			w.stats.Matched++
			oldPos = scanPos + old.Child(found).NodeSize()
			j = found + 1
			pos += child.NodeSize()
			continue
		}

		w.report(child, pos)
		if !child.IsLeaf() {
			if j < oldLen && old.Child(j).SameMarkup(child) {
				w.stats.Descended++
				w.children(old.Child(j), child, oldPos+1, pos+1)
			} else {
				child.Descendants(pos+1, func(n *document.Node, p int) bool {
					w.report(n, p)
					return true
				})
			}
		}
		pos += child.NodeSize()
	}
}

func (w *walker) unchanged(old, cur *document.Node, oldPos, pos int) bool {
	if !old.Equal(cur) {
		return false
	}
	img, ok := w.mapping.Carries(oldPos, oldPos+old.NodeSize())
	return ok && img == pos
}
