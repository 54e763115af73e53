package scan

import (
	"github.com/dshills/typographic/internal/engine/annotation"
	"github.com/dshills/typographic/internal/engine/document"
)

// Scanner derives annotations from document nodes. It is stateless and safe
// for concurrent use.
type Scanner struct {
	cfg *Config
}

// New creates a scanner. A nil config selects DefaultConfig.
func New(cfg *Config) *Scanner {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Scanner{cfg: cfg}
}

// Config returns the scanner configuration.
func (s *Scanner) Config() *Config {
	return s.cfg
}

// Scan returns the annotations of a single node starting at offset. Text
// leaves yield one inline annotation per configured code point, nodes of a
// configured type one node annotation over their whole span. Descendants are
// not scanned.
func (s *Scanner) Scan(n *document.Node, offset int) []annotation.Annotation {
	if n.IsText() {
		var out []annotation.Annotation
		i := 0
		for _, r := range n.Text() {
			if tag, ok := s.cfg.charTags[r]; ok {
				out = append(out, annotation.Inline(offset+i, offset+i+1, tag))
			}
			i++
		}
		return out
	}
	if tag, ok := s.cfg.nodeTags[n.Type()]; ok {
		return []annotation.Annotation{annotation.Node(offset, offset+n.NodeSize(), tag)}
	}
	return nil
}

// Tree scans every descendant of doc.
func (s *Scanner) Tree(doc *document.Node) []annotation.Annotation {
	var out []annotation.Annotation
	doc.Descendants(0, func(n *document.Node, pos int) bool {
		out = append(out, s.Scan(n, pos)...)
		return true
	})
	return out
}

// Valid reports whether scanning doc would produce a.
func (s *Scanner) Valid(doc *document.Node, a annotation.Annotation) bool {
	switch a.Kind {
	case annotation.KindInline:
		if a.Len() != 1 {
			return false
		}
		r, ok := doc.RuneAt(a.From)
		if !ok {
			return false
		}
		tag, ok := s.cfg.charTags[r]
		return ok && tag == a.Tag
	case annotation.KindNode:
		n := doc.NodeAt(a.From)
		if n == nil || n.NodeSize() != a.Len() {
			return false
		}
		tag, ok := s.cfg.nodeTags[n.Type()]
		return ok && tag == a.Tag
	}
	return false
}
