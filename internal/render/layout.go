package render

import (
	"github.com/rivo/uniseg"

	"github.com/dshills/typographic/internal/engine/annotation"
	"github.com/dshills/typographic/internal/engine/document"
)

// LineBreakType is the atom type that ends a line in the terminal layout.
const LineBreakType = "hardBreak"

// Cell is one grapheme cluster or substitute glyph of a laid out line.
type Cell struct {
	// Text is the cluster or glyph to draw.
	Text string

	// Width is the number of terminal columns Text occupies.
	Width int

	// Tag is the annotation tag that styles the cell, or "".
	Tag string

	// Pos is the document position of the first code point of the cell.
	Pos int
}

// Line is one row of text.
type Line struct {
	// Depth is the nesting depth of the block the line belongs to.
	Depth int

	// Tags holds the node annotation tags of the block and its ancestors,
	// outermost first.
	Tags []string

	Cells []Cell
}

// Width returns the number of columns the cells occupy.
func (l Line) Width() int {
	w := 0
	for _, c := range l.Cells {
		w += c.Width
	}
	return w
}

// Layout splits a document into lines. Every block holding only inline
// content starts a line and every hard break ends one. Characters with an inline
// annotation are replaced by the theme glyph of their tag.
func Layout(doc *document.Node, set *annotation.Set, theme *Theme) []Line {
	l := newLayouter(set, theme)
	l.block(doc, 0, 0, nil)
	return l.lines
}

type layouter struct {
	theme  *Theme
	inline map[int]string
	nodes  map[int][]annotation.Annotation
	lines  []Line
	line   *Line
}

func newLayouter(set *annotation.Set, theme *Theme) *layouter {
	l := &layouter{
		theme:  theme,
		inline: make(map[int]string),
		nodes:  make(map[int][]annotation.Annotation),
	}
	for _, a := range set.All() {
		switch a.Kind {
		case annotation.KindInline:
			if _, ok := l.inline[a.From]; !ok {
				l.inline[a.From] = a.Tag
			}
		case annotation.KindNode:
			l.nodes[a.From] = append(l.nodes[a.From], a)
		}
	}
	return l
}

// nodeTags returns the tags of the node annotations covering exactly n.
func (l *layouter) nodeTags(n *document.Node, pos int) []string {
	var tags []string
	for _, a := range l.nodes[pos] {
		if a.To == pos+n.NodeSize() {
			tags = append(tags, a.Tag)
		}
	}
	return tags
}

func (l *layouter) block(n *document.Node, start, depth int, tags []string) {
	if isTextblock(n) {
		l.textblock(n, start, depth, tags)
		return
	}
	pos := start
	for _, c := range n.Children() {
		ctags := append(append([]string(nil), tags...), l.nodeTags(c, pos)...)
		switch {
		case c.IsLeaf():
			l.leaf(c, pos, depth, ctags)
		case isTextblock(c):
			l.textblock(c, pos+1, depth, ctags)
		default:
			l.block(c, pos+1, depth+1, ctags)
		}
		pos += c.NodeSize()
	}
}

// isTextblock reports whether n holds only inline content.
func isTextblock(n *document.Node) bool {
	if n.ChildCount() == 0 {
		return n.Type() != document.TypeDoc
	}
	for _, c := range n.Children() {
		if !c.IsLeaf() {
			return false
		}
	}
	return true
}

// leaf lays out a leaf found between blocks on a line of its own.
func (l *layouter) leaf(n *document.Node, pos, depth int, tags []string) {
	l.line = &Line{Depth: depth, Tags: tags}
	if n.IsText() {
		l.text(n.Text(), pos)
	} else {
		l.atom(n, pos)
	}
	if len(l.line.Cells) > 0 {
		l.lines = append(l.lines, *l.line)
	}
	l.line = nil
}

func (l *layouter) textblock(n *document.Node, start, depth int, tags []string) {
	l.line = &Line{Depth: depth, Tags: tags}
	l.inlines(n, start)
	l.lines = append(l.lines, *l.line)
	l.line = nil
}

func (l *layouter) inlines(n *document.Node, start int) {
	pos := start
	for _, c := range n.Children() {
		if c.IsText() {
			l.text(c.Text(), pos)
		} else {
			l.atom(c, pos)
		}
		pos += c.NodeSize()
	}
}

func (l *layouter) atom(n *document.Node, pos int) {
	text, tag := "["+n.Type()+"]", ""
	if tags := l.nodeTags(n, pos); len(tags) > 0 {
		tag = tags[0]
		text = l.theme.Glyph(tag)
	}
	l.cell(Cell{Text: text, Width: uniseg.StringWidth(text), Tag: tag, Pos: pos})
	if n.Type() == LineBreakType {
		cur := l.line
		l.lines = append(l.lines, *cur)
		l.line = &Line{Depth: cur.Depth, Tags: cur.Tags}
	}
}

func (l *layouter) text(s string, pos int) {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		if !l.annotated(pos, len(runes)) {
			cluster := g.Str()
			l.cell(Cell{Text: cluster, Width: uniseg.StringWidth(cluster), Pos: pos})
			pos += len(runes)
			continue
		}
		// Split the cluster so every annotated code point gets its own cell.
		for _, r := range runes {
			if tag, ok := l.inline[pos]; ok {
				glyph := l.theme.Glyph(tag)
				l.cell(Cell{Text: glyph, Width: uniseg.StringWidth(glyph), Tag: tag, Pos: pos})
			} else {
				ch := string(r)
				l.cell(Cell{Text: ch, Width: uniseg.StringWidth(ch), Pos: pos})
			}
			pos++
		}
	}
}

func (l *layouter) annotated(pos, n int) bool {
	for i := range n {
		if _, ok := l.inline[pos+i]; ok {
			return true
		}
	}
	return false
}

func (l *layouter) cell(c Cell) {
	l.line.Cells = append(l.line.Cells, c)
}
