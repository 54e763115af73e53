package render

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/typographic/internal/config"
	"github.com/dshills/typographic/internal/engine/annotation"
	"github.com/dshills/typographic/internal/engine/document"
)

// element describes the HTML element of a node type.
type element struct {
	tag   string
	attrs []string // node attributes copied to the element
}

// elements maps editor node types to HTML elements.
var elements = map[string]element{
	"paragraph":      {tag: "p"},
	"heading":        {tag: "h1"},
	"hardBreak":      {tag: "br"},
	"bulletList":     {tag: "ul"},
	"orderedList":    {tag: "ol", attrs: []string{"start", "type"}},
	"listItem":       {tag: "li"},
	"blockquote":     {tag: "blockquote"},
	"horizontalRule": {tag: "hr"},
	"table":          {tag: "table"},
	"tableRow":       {tag: "tr"},
	"tableHeader":    {tag: "th", attrs: []string{"rowspan", "colspan"}},
	"tableCell":      {tag: "td", attrs: []string{"rowspan", "colspan"}},
	"image":          {tag: "img", attrs: []string{"src", "alt", "title"}},
}

// markElements maps editor mark names to HTML elements.
var markElements = map[string]string{
	"bold":        "strong",
	"italic":      "em",
	"strike":      "s",
	"underline":   "u",
	"subscript":   "sub",
	"superscript": "sup",
	"code":        "code",
	"link":        "a",
}

// HTMLOptions configures HTML rendering.
type HTMLOptions struct {
	// ClassPrefix is prepended to annotation tags to form class names.
	// Empty means config.DefaultClassPrefix.
	ClassPrefix string
}

// HTML writes the content of doc as HTML. Characters with an inline
// annotation are wrapped in a span whose class names the tag; elements with
// a node annotation get the class themselves.
func HTML(w io.Writer, doc *document.Node, set *annotation.Set, opts HTMLOptions) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrRender)
	}
	if opts.ClassPrefix == "" {
		opts.ClassPrefix = config.DefaultClassPrefix
	}
	h := &htmlBuilder{prefix: opts.ClassPrefix, inline: make(map[int][]string), nodes: make(map[int][]annotation.Annotation)}
	for _, a := range set.All() {
		if a.Kind == annotation.KindInline {
			h.inline[a.From] = append(h.inline[a.From], a.Tag)
		} else {
			h.nodes[a.From] = append(h.nodes[a.From], a)
		}
	}

	root := &html.Node{Type: html.DocumentNode}
	h.children(root, doc, 0)
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}
	}
	return nil
}

type htmlBuilder struct {
	prefix string
	inline map[int][]string
	nodes  map[int][]annotation.Annotation
}

func (h *htmlBuilder) children(parent *html.Node, n *document.Node, start int) {
	pos := start
	for _, c := range n.Children() {
		if c.IsText() {
			h.text(parent, c, pos)
		} else {
			parent.AppendChild(h.node(c, pos))
		}
		pos += c.NodeSize()
	}
}

func (h *htmlBuilder) node(n *document.Node, pos int) *html.Node {
	tag, attrs := elementFor(n)
	el := newElement(tag, attrs...)
	var classes []string
	for _, a := range h.nodes[pos] {
		if a.To == pos+n.NodeSize() {
			classes = append(classes, h.prefix+a.Tag)
		}
	}
	if len(classes) > 0 {
		el.Attr = append(el.Attr, html.Attribute{Key: "class", Val: strings.Join(classes, " ")})
	}
	if !n.IsAtom() {
		h.children(el, n, pos+1)
	}
	return el
}

func elementFor(n *document.Node) (string, []html.Attribute) {
	e, ok := elements[n.Type()]
	if !ok {
		tag := "div"
		if n.IsAtom() {
			tag = "span"
		}
		return tag, []html.Attribute{{Key: "data-type", Val: n.Type()}}
	}
	tag := e.tag
	if n.Type() == "heading" {
		if level, err := strconv.Atoi(n.Attrs()["level"]); err == nil && level >= 1 && level <= 6 {
			tag = "h" + strconv.Itoa(level)
		}
	}
	var attrs []html.Attribute
	for _, k := range e.attrs {
		if v, ok := n.Attr(k); ok {
			attrs = append(attrs, html.Attribute{Key: k, Val: v})
		}
	}
	return tag, attrs
}

// text appends a text leaf wrapped in its marks. Runs of unannotated
// characters become text nodes; each annotated character gets a span.
func (h *htmlBuilder) text(parent *html.Node, n *document.Node, pos int) {
	target := parent
	for _, m := range n.Marks() {
		tag, ok := markElements[m]
		if !ok {
			continue
		}
		el := newElement(tag)
		target.AppendChild(el)
		target = el
	}

	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			target.AppendChild(&html.Node{Type: html.TextNode, Data: run.String()})
			run.Reset()
		}
	}
	p := pos
	for _, r := range n.Text() {
		tags := h.inline[p]
		p++
		if len(tags) == 0 {
			run.WriteRune(r)
			continue
		}
		flush()
		classes := make([]string, len(tags))
		for i, t := range tags {
			classes[i] = h.prefix + t
		}
		slices.Sort(classes)
		span := newElement("span", html.Attribute{Key: "class", Val: strings.Join(classes, " ")})
		span.AppendChild(&html.Node{Type: html.TextNode, Data: string(r)})
		target.AppendChild(span)
	}
	flush()
}

func newElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}
