package scan

import "fmt"

// CharRule tags every occurrence of a code point.
type CharRule struct {
	Char rune
	Tag  string
}

// NodeRule tags every node of a type.
type NodeRule struct {
	Type string
	Tag  string
}

// Config is the immutable scanner configuration.
type Config struct {
	chars []CharRule
	nodes []NodeRule

	charTags map[rune]string
	nodeTags map[string]string
}

// NewConfig creates a configuration from ordered rules. A code point or
// node type may appear only once and every tag must be non-empty.
func NewConfig(chars []CharRule, nodes []NodeRule) (*Config, error) {
	c := &Config{
		chars:    append([]CharRule(nil), chars...),
		nodes:    append([]NodeRule(nil), nodes...),
		charTags: make(map[rune]string, len(chars)),
		nodeTags: make(map[string]string, len(nodes)),
	}
	for _, r := range chars {
		if r.Tag == "" {
			return nil, fmt.Errorf("%w: U+%04X", ErrEmptyTag, r.Char)
		}
		if _, ok := c.charTags[r.Char]; ok {
			return nil, fmt.Errorf("%w: U+%04X", ErrDuplicateChar, r.Char)
		}
		c.charTags[r.Char] = r.Tag
	}
	for _, r := range nodes {
		if r.Type == "" || r.Tag == "" {
			return nil, fmt.Errorf("%w: node rule %q", ErrEmptyTag, r.Type)
		}
		if _, ok := c.nodeTags[r.Type]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateType, r.Type)
		}
		c.nodeTags[r.Type] = r.Tag
	}
	return c, nil
}

// DefaultCharacters are the invisible and space-variant characters tagged by
// default.
var DefaultCharacters = []CharRule{
	{'\u00A0', "nbsp"},
	{'\u202F', "nnbsp"},
	{'\u00AD', "shy"},
	{'\u200B', "zwsp"},
	{'\u200C', "zwnj"},
	{'\u200D', "zwj"},
	{'\u2060', "wj"},
}

// DefaultNodes are the node types tagged by default.
var DefaultNodes = []NodeRule{
	{"hardBreak", "br"},
}

// DefaultConfig returns the configuration built from DefaultCharacters and
// DefaultNodes.
func DefaultConfig() *Config {
	c, err := NewConfig(DefaultCharacters, DefaultNodes)
	if err != nil {
		panic(err)
	}
	return c
}

// Characters returns the character rules in configuration order.
func (c *Config) Characters() []CharRule {
	return append([]CharRule(nil), c.chars...)
}

// Nodes returns the node rules in configuration order.
func (c *Config) Nodes() []NodeRule {
	return append([]NodeRule(nil), c.nodes...)
}

// CharTag returns the tag for a code point.
func (c *Config) CharTag(r rune) (string, bool) {
	tag, ok := c.charTags[r]
	return tag, ok
}

// NodeTag returns the tag for a node type.
func (c *Config) NodeTag(typ string) (string, bool) {
	tag, ok := c.nodeTags[typ]
	return tag, ok
}

// Tags returns every tag in configuration order, characters first, without
// duplicates.
func (c *Config) Tags() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	for _, r := range c.chars {
		add(r.Tag)
	}
	for _, r := range c.nodes {
		add(r.Tag)
	}
	return out
}
