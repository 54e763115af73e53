package document

import (
	"fmt"
	"unicode/utf8"
)

// Frame is one level of a resolved position.
type Frame struct {
	// Node is the element at this level.
	Node *Node

	// Index is the child the path continues into. At the deepest frame it is
	// the child containing the position (text) or the boundary index.
	Index int

	// Start is the position where Node's content begins.
	Start int
}

// ResolvedPos is a position resolved against a document tree.
type ResolvedPos struct {
	// Pos is the resolved position.
	Pos int

	// Path runs from the root to the innermost element containing Pos.
	Path []Frame

	// TextOffset is the code point offset inside the text leaf at
	// Parent().Index when Pos lies strictly inside it, and 0 otherwise.
	TextOffset int
}

// Depth returns the depth of the innermost element (0 is the root).
func (r ResolvedPos) Depth() int {
	return len(r.Path) - 1
}

// Parent returns the innermost frame.
func (r ResolvedPos) Parent() Frame {
	return r.Path[len(r.Path)-1]
}

// InText returns true if the position is strictly inside a text leaf.
func (r ResolvedPos) InText() bool {
	return r.TextOffset > 0
}

// NodeAfter returns the node starting at the position, or nil.
func (r ResolvedPos) NodeAfter() *Node {
	if r.InText() {
		return nil
	}
	p := r.Parent()
	if p.Index < p.Node.ChildCount() {
		return p.Node.Child(p.Index)
	}
	return nil
}

// Resolve resolves a position inside the content of n.
func (n *Node) Resolve(pos int) (ResolvedPos, error) {
	if n.IsLeaf() {
		return ResolvedPos{}, fmt.Errorf("%w: %s", ErrNotElement, n.typ)
	}
	if pos < 0 || pos > n.csize {
		return ResolvedPos{}, fmt.Errorf("%w: %d not in [0:%d]", ErrPositionOutOfRange, pos, n.csize)
	}

	r := ResolvedPos{Pos: pos}
	node, start := n, 0
	for {
		acc := start
		idx := len(node.content)
		var next *Node
		for i, c := range node.content {
			if pos == acc {
				idx = i
				break
			}
			end := acc + c.size
			if pos < end {
				idx = i
				if c.IsText() {
					r.TextOffset = pos - acc
				} else {
					next = c
				}
				break
			}
			acc = end
		}
		r.Path = append(r.Path, Frame{Node: node, Index: idx, Start: start})
		if next == nil {
			return r, nil
		}
		node, start = next, acc+1
	}
}

// NodeAt returns the node that starts exactly at pos, or nil.
func (n *Node) NodeAt(pos int) *Node {
	r, err := n.Resolve(pos)
	if err != nil {
		return nil
	}
	return r.NodeAfter()
}

// RuneAt returns the character at [pos, pos+1) if that position is text.
func (n *Node) RuneAt(pos int) (rune, bool) {
	r, err := n.Resolve(pos)
	if err != nil {
		return 0, false
	}
	p := r.Parent()
	if p.Index >= p.Node.ChildCount() {
		return 0, false
	}
	leaf := p.Node.Child(p.Index)
	if !leaf.IsText() {
		return 0, false
	}
	i := 0
	for _, ch := range leaf.text {
		if i == r.TextOffset {
			return ch, true
		}
		i++
	}
	return utf8.RuneError, false
}
