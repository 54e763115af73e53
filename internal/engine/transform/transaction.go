package transform

import (
	"fmt"

	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/engine/mapping"
)

// Transaction applies a sequence of edits to a document and records the
// mapping from the starting document to the result. Untouched subtrees are
// shared with the starting document.
type Transaction struct {
	before  *document.Node
	doc     *document.Node
	mapping *mapping.Mapping
}

// New starts a transaction on doc.
func New(doc *document.Node) *Transaction {
	return &Transaction{
		before:  doc,
		doc:     doc,
		mapping: mapping.New(),
	}
}

// Before returns the document the transaction started from.
func (tr *Transaction) Before() *document.Node { return tr.before }

// Doc returns the current document.
func (tr *Transaction) Doc() *document.Node { return tr.doc }

// Mapping returns the mapping from Before to Doc.
func (tr *Transaction) Mapping() *mapping.Mapping { return tr.mapping }

// Steps returns the number of applied steps.
func (tr *Transaction) Steps() int { return tr.mapping.Len() }

// Changed returns true if any step was applied.
func (tr *Transaction) Changed() bool { return tr.mapping.Len() > 0 }

// InsertText inserts text with the given marks at pos.
func (tr *Transaction) InsertText(pos int, text string, marks ...string) error {
	return tr.ReplaceText(pos, pos, text, marks...)
}

// ReplaceText replaces [from, to) with text. Both ends must share a parent.
func (tr *Transaction) ReplaceText(from, to int, text string, marks ...string) error {
	var content []*document.Node
	if text != "" {
		content = append(content, document.NewText(text, marks...))
	}
	return tr.Replace(from, to, content...)
}

// Delete removes [from, to). Both ends must share a parent.
func (tr *Transaction) Delete(from, to int) error {
	return tr.Replace(from, to)
}

// InsertNode inserts a node at pos. Inside text the text leaf is split.
func (tr *Transaction) InsertNode(pos int, n *document.Node) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrInvalidNode)
	}
	return tr.Replace(pos, pos, n)
}

// DeleteNode removes the node starting at pos.
func (tr *Transaction) DeleteNode(pos int) error {
	n := tr.doc.NodeAt(pos)
	if n == nil {
		return fmt.Errorf("%w: %d", ErrNoNode, pos)
	}
	return tr.Replace(pos, pos+n.NodeSize())
}

// Replace replaces [from, to) with content. Both ends must resolve into the
// same parent; positions inside text split the text leaf.
func (tr *Transaction) Replace(from, to int, content ...*document.Node) error {
	size := 0
	for _, c := range content {
		if c == nil {
			return fmt.Errorf("%w: nil node", ErrInvalidNode)
		}
		size += c.NodeSize()
	}
	doc, err := replace(tr.doc, from, to, content)
	if err != nil {
		return err
	}
	return tr.commit(doc, mapping.Replace(from, to, size))
}

// SetMarkup changes the type and attributes of the element or atom starting
// at pos. Positions inside the node keep their meaning.
func (tr *Transaction) SetMarkup(pos int, typ string, attrs document.Attrs) error {
	n := tr.doc.NodeAt(pos)
	if n == nil || n.IsText() {
		return fmt.Errorf("%w: %d", ErrNoNode, pos)
	}
	end := pos + n.NodeSize()
	doc, err := replace(tr.doc, pos, end, []*document.Node{n.WithMarkup(typ, attrs)})
	if err != nil {
		return err
	}

	changes := []mapping.Change{mapping.NewReplaceChange(pos, pos+1, 1)}
	if !n.IsAtom() {
		changes = append(changes, mapping.NewReplaceChange(end-1, end, 1))
	}
	sm, err := mapping.NewStepMap(changes...)
	if err != nil {
		return err
	}
	return tr.commit(doc, mapping.New(sm))
}

// Move moves the node starting at from to target. Target is a position in
// the current document outside the moved node.
func (tr *Transaction) Move(from, target int) error {
	n := tr.doc.NodeAt(from)
	if n == nil {
		return fmt.Errorf("%w: %d", ErrNoNode, from)
	}
	end := from + n.NodeSize()
	if target > from && target < end {
		return fmt.Errorf("%w: target %d inside moved node [%d:%d)", ErrInvalidRange, target, from, end)
	}
	if _, err := tr.doc.Resolve(target); err != nil {
		return err
	}

	removed, err := replace(tr.doc, from, end, nil)
	if err != nil {
		return err
	}
	del := mapping.Delete(from, end)
	at := del.Map(target, mapping.AssocBefore)
	moved, err := replace(removed, at, at, []*document.Node{n})
	if err != nil {
		return err
	}

	del.AppendMapping(mapping.Insert(at, n.NodeSize()))
	return tr.commit(moved, del)
}

func (tr *Transaction) commit(doc *document.Node, m *mapping.Mapping) error {
	if err := m.Validate(tr.doc.ContentSize(), doc.ContentSize()); err != nil {
		return fmt.Errorf("internal mapping error: %w", err)
	}
	tr.doc = doc
	tr.mapping.AppendMapping(m)
	return nil
}

// replace returns doc with [from, to) replaced by content, copying only the
// nodes on the path to the shared parent.
func replace(doc *document.Node, from, to int, content []*document.Node) (*document.Node, error) {
	if from > to {
		return nil, fmt.Errorf("%w: [%d:%d)", ErrInvalidRange, from, to)
	}
	rf, err := doc.Resolve(from)
	if err != nil {
		return nil, err
	}
	rt, err := doc.Resolve(to)
	if err != nil {
		return nil, err
	}
	parent := rf.Parent()
	if rf.Depth() != rt.Depth() || parent.Node != rt.Parent().Node {
		return nil, fmt.Errorf("%w: [%d:%d)", ErrCrossesNodes, from, to)
	}

	children := parent.Node.Children()
	fi, ti := parent.Index, rt.Parent().Index

	out := make([]*document.Node, 0, len(children)+len(content)+2)
	out = append(out, children[:fi]...)
	if rf.InText() {
		leaf := children[fi]
		out = append(out, leaf.WithText(runePrefix(leaf.Text(), rf.TextOffset)))
	}
	out = append(out, content...)
	if rt.InText() {
		leaf := children[ti]
		out = append(out, leaf.WithText(runeSuffix(leaf.Text(), rt.TextOffset)))
		ti++
	}
	out = append(out, children[ti:]...)

	node := parent.Node.WithContent(out...)
	for d := rf.Depth() - 1; d >= 0; d-- {
		frame := rf.Path[d]
		kids := frame.Node.Children()
		kids[frame.Index] = node
		node = frame.Node.WithContent(kids...)
	}
	return node, nil
}

func runePrefix(s string, n int) string {
	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}
	return s
}

func runeSuffix(s string, n int) string {
	i := 0
	for j := range s {
		if i == n {
			return s[j:]
		}
		i++
	}
	return ""
}
