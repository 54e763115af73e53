package config

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"

	"github.com/dshills/typographic/internal/engine/diff"
	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/engine/scan"
	"github.com/dshills/typographic/internal/logger"
	"github.com/dshills/typographic/internal/metrics"
)

// DefaultClassPrefix is prepended to annotation tags in rendered HTML.
const DefaultClassPrefix = "prose-editor-"

// CharacterRule tags a code point. Char is either the character itself or
// its code point in U+XXXX notation.
type CharacterRule struct {
	Char string `toml:"char" yaml:"char"`
	Tag  string `toml:"tag" yaml:"tag"`
}

// NodeRule tags every node of a type.
type NodeRule struct {
	Type string `toml:"type" yaml:"type"`
	Tag  string `toml:"tag" yaml:"tag"`
}

// Style describes how an annotation tag is painted in a terminal.
type Style struct {
	Tag        string `toml:"tag" yaml:"tag"`
	Foreground string `toml:"foreground" yaml:"foreground"` // #rrggbb
	Background string `toml:"background" yaml:"background"` // #rrggbb
	Glyph      string `toml:"glyph" yaml:"glyph"`           // substitute shown instead of the character
}

// RenderConfig configures the HTML and terminal renderers.
type RenderConfig struct {
	ClassPrefix string  `toml:"class_prefix" yaml:"classPrefix"`
	Styles      []Style `toml:"styles" yaml:"styles"`
}

// MetricsConfig configures the prometheus collectors.
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled" yaml:"enabled"`
	Namespace string `toml:"namespace" yaml:"namespace"`
}

// Config is the complete typographic configuration.
type Config struct {
	Characters []CharacterRule `toml:"characters" yaml:"characters"`
	Nodes      []NodeRule      `toml:"nodes" yaml:"nodes"`
	Window     int             `toml:"window" yaml:"window"`
	Atoms      []string        `toml:"atoms" yaml:"atoms"`
	Log        logger.Config   `toml:"log" yaml:"log"`
	Render     RenderConfig    `toml:"render" yaml:"render"`
	Metrics    MetricsConfig   `toml:"metrics" yaml:"metrics"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Window: diff.DefaultWindow,
		Atoms:  append([]string(nil), document.DefaultAtoms...),
		Log:    logger.DefaultConfig(),
		Render: RenderConfig{
			ClassPrefix: DefaultClassPrefix,
			Styles:      append([]Style(nil), DefaultStyles...),
		},
		Metrics: MetricsConfig{Namespace: metrics.DefaultNamespace},
	}
	for _, r := range scan.DefaultCharacters {
		cfg.Characters = append(cfg.Characters, CharacterRule{
			Char: fmt.Sprintf("U+%04X", r.Char),
			Tag:  r.Tag,
		})
	}
	for _, r := range scan.DefaultNodes {
		cfg.Nodes = append(cfg.Nodes, NodeRule{Type: r.Type, Tag: r.Tag})
	}
	return cfg
}

// DefaultStyles are the terminal styles of the default tags.
var DefaultStyles = []Style{
	{Tag: "nbsp", Foreground: "#5f87af", Glyph: "·"},
	{Tag: "nnbsp", Foreground: "#5f87af", Glyph: "∙"},
	{Tag: "shy", Foreground: "#af875f", Glyph: "-"},
	{Tag: "zwsp", Foreground: "#af5f5f", Glyph: "|"},
	{Tag: "zwnj", Foreground: "#af5f5f", Glyph: "|"},
	{Tag: "zwj", Foreground: "#af5f5f", Glyph: "+"},
	{Tag: "wj", Foreground: "#af5f5f", Glyph: "|"},
	{Tag: "br", Foreground: "#6c6c6c", Glyph: "↵"},
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if c.Window < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWindow, c.Window)
	}
	if _, err := c.ScanConfig(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	for _, s := range c.Render.Styles {
		if err := s.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s Style) validate() error {
	if s.Tag == "" {
		return fmt.Errorf("%w: style without tag", ErrInvalidStyle)
	}
	for _, hex := range []string{s.Foreground, s.Background} {
		if hex == "" {
			continue
		}
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("%w: %s color %q", ErrInvalidStyle, s.Tag, hex)
		}
	}
	if s.Glyph != "" && uniseg.GraphemeClusterCount(s.Glyph) != 1 {
		return fmt.Errorf("%w: %s glyph %q is not a single character", ErrInvalidStyle, s.Tag, s.Glyph)
	}
	return nil
}

// ScanConfig converts the rules into a scanner configuration.
func (c *Config) ScanConfig() (*scan.Config, error) {
	chars := make([]scan.CharRule, 0, len(c.Characters))
	for _, r := range c.Characters {
		ch, err := ParseChar(r.Char)
		if err != nil {
			return nil, err
		}
		chars = append(chars, scan.CharRule{Char: ch, Tag: r.Tag})
	}
	nodes := make([]scan.NodeRule, 0, len(c.Nodes))
	for _, r := range c.Nodes {
		nodes = append(nodes, scan.NodeRule{Type: r.Type, Tag: r.Tag})
	}
	return scan.NewConfig(chars, nodes)
}

// StyleFor returns the style configured for tag.
func (c *Config) StyleFor(tag string) (Style, bool) {
	for _, s := range c.Render.Styles {
		if s.Tag == tag {
			return s, true
		}
	}
	return Style{}, false
}

// ParseChar parses a single character or a U+XXXX code point.
func ParseChar(s string) (rune, error) {
	if hex, ok := strings.CutPrefix(strings.ToUpper(s), "U+"); ok && len(hex) >= 4 {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, fmt.Errorf("%w: %q", ErrInvalidCharacter, s)
		}
		return rune(v), nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCharacter, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCharacter, s)
	}
	return r, nil
}
