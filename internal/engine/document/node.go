package document

import (
	"encoding/binary"
	"io"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash"
)

// Well-known node types.
const (
	// TypeDoc is the type of the document root.
	TypeDoc = "doc"

	// TypeText is the type of every text leaf.
	TypeText = "text"
)

// Attrs holds node attributes.
type Attrs map[string]string

// Node is an immutable document node: a text leaf, an atom leaf or an
// element with ordered children. Nodes are shared between document versions;
// an edit only allocates the nodes on the path to the change.
type Node struct {
	typ     string
	attrs   Attrs
	marks   []string
	text    string
	content []*Node
	atom    bool

	size  int
	csize int
	hash  uint64
}

// NewText creates a text leaf. Its size is the number of code points.
func NewText(text string, marks ...string) *Node {
	n := &Node{
		typ:   TypeText,
		text:  text,
		marks: normalizeMarks(marks),
	}
	n.size = utf8.RuneCountInString(text)
	n.hash = n.computeHash()
	return n
}

// NewAtom creates a non-text leaf (e.g. a hard break). Atoms have size 1.
func NewAtom(typ string, attrs Attrs) *Node {
	n := &Node{
		typ:   typ,
		attrs: cloneAttrs(attrs),
		atom:  true,
		size:  1,
	}
	n.hash = n.computeHash()
	return n
}

// NewElement creates an element node. Nil children and empty text leaves
// are dropped, adjacent text leaves with identical marks are merged.
func NewElement(typ string, attrs Attrs, children ...*Node) *Node {
	n := &Node{
		typ:     typ,
		attrs:   cloneAttrs(attrs),
		content: normalizeContent(children),
	}
	for _, c := range n.content {
		n.csize += c.size
	}
	n.size = n.csize + 2
	n.hash = n.computeHash()
	return n
}

// NewDoc creates a document root.
func NewDoc(children ...*Node) *Node {
	return NewElement(TypeDoc, nil, children...)
}

// Type returns the node type.
func (n *Node) Type() string { return n.typ }

// Text returns the text of a text leaf, or "" for other nodes.
func (n *Node) Text() string { return n.text }

// IsText returns true for text leaves.
func (n *Node) IsText() bool { return n.typ == TypeText && !n.atom }

// IsAtom returns true for non-text leaves.
func (n *Node) IsAtom() bool { return n.atom }

// IsLeaf returns true for text and atom leaves.
func (n *Node) IsLeaf() bool { return n.atom || n.IsText() }

// NodeSize returns the number of positions the node occupies in its parent.
func (n *Node) NodeSize() int { return n.size }

// ContentSize returns the number of positions occupied by the node's content.
// It is zero for leaves.
func (n *Node) ContentSize() int { return n.csize }

// Hash returns the structural content hash of the node.
func (n *Node) Hash() uint64 { return n.hash }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.content) }

// Child returns the child at index i.
func (n *Node) Child(i int) *Node { return n.content[i] }

// Children returns a copy of the children slice.
func (n *Node) Children() []*Node {
	return slices.Clone(n.content)
}

// Attr returns a single attribute.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// Attrs returns a copy of the attributes.
func (n *Node) Attrs() Attrs {
	return cloneAttrs(n.attrs)
}

// Marks returns the marks of a text leaf.
func (n *Node) Marks() []string {
	return slices.Clone(n.marks)
}

// HasMark reports whether the text leaf carries the given mark.
func (n *Node) HasMark(mark string) bool {
	return slices.Contains(n.marks, mark)
}

// SameMarkup reports whether two nodes have the same type, attributes and
// marks. Content is not compared.
func (n *Node) SameMarkup(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	return n.typ == other.typ &&
		n.atom == other.atom &&
		maps.Equal(n.attrs, other.attrs) &&
		slices.Equal(n.marks, other.marks)
}

// Equal reports whether two nodes are structurally identical.
func (n *Node) Equal(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	if n.hash != other.hash || n.size != other.size || n.text != other.text {
		return false
	}
	if !n.SameMarkup(other) || len(n.content) != len(other.content) {
		return false
	}
	for i, c := range n.content {
		if !c.Equal(other.content[i]) {
			return false
		}
	}
	return true
}

// Descendants calls fn for every descendant in document order. start is the
// position where n's content begins (0 for the document root). If fn returns
// false the children of that node are skipped.
func (n *Node) Descendants(start int, fn func(node *Node, pos int) bool) {
	pos := start
	for _, c := range n.content {
		if fn(c, pos) && len(c.content) > 0 {
			c.Descendants(pos+1, fn)
		}
		pos += c.size
	}
}

// TextContent returns the concatenated text of all text leaves.
func (n *Node) TextContent() string {
	if n.IsLeaf() {
		return n.text
	}
	var b strings.Builder
	n.Descendants(0, func(c *Node, _ int) bool {
		b.WriteString(c.text)
		return true
	})
	return b.String()
}

// WithText returns a text leaf with the same marks and new text.
func (n *Node) WithText(text string) *Node {
	return NewText(text, n.marks...)
}

// WithContent returns an element with the same markup and new children.
// Leaves are returned unchanged.
func (n *Node) WithContent(children ...*Node) *Node {
	if n.IsLeaf() {
		return n
	}
	return NewElement(n.typ, n.attrs, children...)
}

// WithMarkup returns a node with the same content and a new type and
// attributes. Text leaves are returned unchanged.
func (n *Node) WithMarkup(typ string, attrs Attrs) *Node {
	switch {
	case n.IsText():
		return n
	case n.atom:
		return NewAtom(typ, attrs)
	default:
		return NewElement(typ, attrs, n.content...)
	}
}

// String returns a compact debugging representation, e.g.
// doc(paragraph("ab", hardBreak)).
func (n *Node) String() string {
	var b strings.Builder
	n.writeTo(&b)
	return b.String()
}

func (n *Node) writeTo(b *strings.Builder) {
	if n.IsText() {
		for _, m := range n.marks {
			b.WriteString(m)
			b.WriteByte('(')
		}
		b.WriteString(strconv.QuoteToASCII(n.text))
		for range n.marks {
			b.WriteByte(')')
		}
		return
	}
	b.WriteString(n.typ)
	if len(n.attrs) > 0 {
		keys := sortedKeys(n.attrs)
		b.WriteByte('[')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(n.attrs[k])
		}
		b.WriteByte(']')
	}
	if n.atom {
		return
	}
	b.WriteByte('(')
	for i, c := range n.content {
		if i > 0 {
			b.WriteString(", ")
		}
		c.writeTo(b)
	}
	b.WriteByte(')')
}

func (n *Node) computeHash() uint64 {
	d := xxhash.New()
	var kind byte = 'e'
	switch {
	case n.IsText():
		kind = 't'
	case n.atom:
		kind = 'a'
	}
	_, _ = d.Write([]byte{kind})
	writeField(d, n.typ)
	for _, k := range sortedKeys(n.attrs) {
		writeField(d, k)
		writeField(d, n.attrs[k])
	}
	_, _ = d.Write([]byte{0xff})
	for _, m := range n.marks {
		writeField(d, m)
	}
	_, _ = d.Write([]byte{0xfe})
	writeField(d, n.text)
	var buf [8]byte
	for _, c := range n.content {
		binary.LittleEndian.PutUint64(buf[:], c.hash)
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

func writeField(w io.Writer, s string) {
	_, _ = io.WriteString(w, s)
	_, _ = w.Write([]byte{0})
}

func normalizeContent(children []*Node) []*Node {
	out := make([]*Node, 0, len(children))
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.IsText() && c.size == 0 {
			continue
		}
		if len(out) > 0 {
			prev := out[len(out)-1]
			if prev.IsText() && c.IsText() && slices.Equal(prev.marks, c.marks) {
				out[len(out)-1] = NewText(prev.text+c.text, prev.marks...)
				continue
			}
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeMarks(marks []string) []string {
	if len(marks) == 0 {
		return nil
	}
	out := slices.Clone(marks)
	sort.Strings(out)
	return slices.Compact(out)
}

func cloneAttrs(attrs Attrs) Attrs {
	if len(attrs) == 0 {
		return nil
	}
	return maps.Clone(attrs)
}

func sortedKeys(attrs Attrs) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
