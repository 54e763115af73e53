package transform

import (
	"fmt"

	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/engine/mapping"
)

type tokenKind uint8

const (
	tokenChar tokenKind = iota
	tokenAtom
	tokenOpen
	tokenClose
)

// token is the content at one position: a character, an atom or an element
// boundary.
type token struct {
	kind tokenKind
	r    rune
	node *document.Node
}

func (t token) equal(o token) bool {
	if t.kind != o.kind || t.r != o.r {
		return false
	}
	return t.node.SameMarkup(o.node)
}

// Between returns a mapping from old to cur for two snapshots related by an
// unknown edit, such as two versions of a file. The mapping replaces the
// range between the longest common prefix and suffix of their content; it is
// the identity when the content is the same.
func Between(old, cur *document.Node) (*mapping.Mapping, error) {
	if old == nil || cur == nil || old.IsLeaf() || cur.IsLeaf() {
		return nil, fmt.Errorf("%w: documents must be elements", ErrInvalidNode)
	}
	a, b := tokens(old), tokens(cur)

	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix].equal(b[prefix]) {
		prefix++
	}
	if prefix == len(a) && prefix == len(b) {
		return mapping.Identity(), nil
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		a[len(a)-1-suffix].equal(b[len(b)-1-suffix]) {
		suffix++
	}
	return mapping.Replace(prefix, len(a)-suffix, len(b)-suffix-prefix), nil
}

// tokens flattens the content of n, one token per position.
func tokens(n *document.Node) []token {
	out := make([]token, 0, n.ContentSize())
	var walk func(*document.Node)
	walk = func(parent *document.Node) {
		for _, c := range parent.Children() {
			switch {
			case c.IsText():
				for _, r := range c.Text() {
					out = append(out, token{kind: tokenChar, r: r, node: c})
				}
			case c.IsAtom():
				out = append(out, token{kind: tokenAtom, node: c})
			default:
				out = append(out, token{kind: tokenOpen, node: c})
				walk(c)
				out = append(out, token{kind: tokenClose, node: c})
			}
		}
	}
	walk(n)
	return out
}
