package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/disiqueira/gotree/v3"

	"github.com/dshills/typographic/internal/engine/annotation"
	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/session"
)

// TreeWriter prints the node structure of a document with the position
// range of every node and the annotations found on it.
type TreeWriter struct{}

// Write implements Writer.
func (TreeWriter) Write(w io.Writer, doc *Document, snap session.Snapshot) error {
	root := gotree.New(fmt.Sprintf("%s v%d (%d annotations)", doc.Name, snap.Version, snap.Set.Len()))
	addChildren(root, snap.Doc, 0, snap.Set)
	_, err := io.WriteString(w, root.Print())
	return err
}

func addChildren(parent gotree.Tree, n *document.Node, start int, set *annotation.Set) {
	pos := start
	for _, c := range n.Children() {
		item := parent.Add(treeLabel(c, pos, set))
		if !c.IsLeaf() {
			addChildren(item, c, pos+1, set)
		}
		pos += c.NodeSize()
	}
}

func treeLabel(n *document.Node, pos int, set *annotation.Set) string {
	end := pos + n.NodeSize()
	var b strings.Builder
	if n.IsText() {
		fmt.Fprintf(&b, "%+q %d..%d", n.Text(), pos, end)
		if marks := n.Marks(); len(marks) > 0 {
			fmt.Fprintf(&b, " <%s>", strings.Join(marks, ","))
		}
		for _, a := range set.Within(pos, end) {
			if a.Kind == annotation.KindInline {
				fmt.Fprintf(&b, " %s@%d", a.Tag, a.From)
			}
		}
		return b.String()
	}

	fmt.Fprintf(&b, "%s %d..%d", n.Type(), pos, end)
	for _, a := range set.Find(pos, end) {
		if a.Kind == annotation.KindNode && a.From == pos && a.To == end {
			fmt.Fprintf(&b, " [%s]", a.Tag)
		}
	}
	return b.String()
}
