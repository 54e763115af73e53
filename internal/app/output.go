package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/sjson"
	"golang.org/x/text/unicode/runenames"

	"github.com/dshills/typographic/internal/engine/annotation"
	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/render"
	"github.com/dshills/typographic/internal/session"
)

// Output formats.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatHTML   = "html"
	FormatTree   = "tree"
	FormatScreen = "screen"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON, FormatHTML, FormatTree, FormatScreen}

// Writer renders one version of a document.
type Writer interface {
	Write(w io.Writer, doc *Document, snap session.Snapshot) error
}

// TextWriter writes the laid out document followed by a legend listing
// every annotation.
type TextWriter struct {
	Theme *render.Theme
	Color bool

	// Header prints the document name before its content.
	Header bool
}

// Write implements Writer.
func (t TextWriter) Write(w io.Writer, doc *Document, snap session.Snapshot) error {
	bw := bufio.NewWriter(w)
	if t.Header {
		fmt.Fprintf(bw, "==> %s <==\n", doc.Name)
	}
	if err := render.Text(bw, render.Layout(snap.Doc, snap.Set, t.Theme), t.Theme, t.Color); err != nil {
		return err
	}
	if snap.Set.Len() > 0 {
		bw.WriteByte('\n')
	}
	for _, a := range snap.Set.All() {
		tag := a.Tag
		if t.Color {
			tag = t.Theme.ANSI(a.Tag, a.Tag)
		}
		fmt.Fprintf(bw, "%5d:%-5d %s %s\n", a.From, a.To, pad(tag, a.Tag, 6), describe(snap.Doc, a))
	}
	return bw.Flush()
}

// pad right-aligns the visible text to width while keeping escapes intact.
func pad(s, visible string, width int) string {
	if n := width - len(visible); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// describe names what an annotation covers: the code point and its Unicode
// name for inline annotations, the node type for node annotations.
func describe(doc *document.Node, a annotation.Annotation) string {
	if a.Kind == annotation.KindNode {
		if n := doc.NodeAt(a.From); n != nil {
			return n.Type()
		}
		return "?"
	}
	r, ok := doc.RuneAt(a.From)
	if !ok {
		return "?"
	}
	return fmt.Sprintf("%s %s", codePoint(r), runeName(r))
}

func codePoint(r rune) string {
	return fmt.Sprintf("U+%04X", r)
}

func runeName(r rune) string {
	if name := runenames.Name(r); name != "" {
		return name
	}
	return "UNNAMED"
}

// JSONWriter writes one JSON object per document version on its own line.
type JSONWriter struct{}

// Write implements Writer.
func (JSONWriter) Write(w io.Writer, doc *Document, snap session.Snapshot) error {
	js, err := EncodeJSON(doc.Path, snap)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, js+"\n")
	return err
}

// EncodeJSON encodes a snapshot and its annotations.
func EncodeJSON(path string, snap session.Snapshot) (string, error) {
	js := "{}"
	var err error
	set := func(key string, value any) {
		if err == nil {
			js, err = sjson.Set(js, key, value)
		}
	}
	set("path", path)
	set("version", snap.Version)
	set("size", snap.Doc.ContentSize())
	set("annotations", []any{})
	for i, a := range snap.Set.All() {
		prefix := fmt.Sprintf("annotations.%d.", i)
		set(prefix+"from", a.From)
		set(prefix+"to", a.To)
		set(prefix+"kind", a.Kind.String())
		set(prefix+"tag", a.Tag)
		if a.Kind == annotation.KindNode {
			if n := snap.Doc.NodeAt(a.From); n != nil {
				set(prefix+"type", n.Type())
			}
			continue
		}
		if r, ok := snap.Doc.RuneAt(a.From); ok {
			set(prefix+"char", codePoint(r))
			set(prefix+"name", runeName(r))
		}
	}
	if err != nil {
		return "", err
	}
	return js, nil
}

// HTMLWriter writes the document as an HTML fragment.
type HTMLWriter struct {
	ClassPrefix string
}

// Write implements Writer.
func (h HTMLWriter) Write(w io.Writer, _ *Document, snap session.Snapshot) error {
	if err := render.HTML(w, snap.Doc, snap.Set, render.HTMLOptions{ClassPrefix: h.ClassPrefix}); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
