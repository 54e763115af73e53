package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/typographic/internal/config"
)

// FallbackGlyph replaces an annotated character whose tag has no glyph.
const FallbackGlyph = "¤"

// TagStyle is the resolved style of an annotation tag.
type TagStyle struct {
	Foreground colorful.Color
	Background colorful.Color

	// Glyph replaces the annotated character. Empty means FallbackGlyph.
	Glyph string
}

// Theme defines colors for painting annotated documents.
type Theme struct {
	// Name is the display name of the theme.
	Name string

	// Foreground is the default text color.
	Foreground colorful.Color

	// Background is the editor background color.
	Background colorful.Color

	// Tags maps annotation tags to their styles.
	Tags map[string]TagStyle
}

// DefaultTheme returns a dark theme with the default tag styles.
func DefaultTheme() *Theme {
	t, err := NewTheme(config.DefaultStyles)
	if err != nil {
		panic(err)
	}
	return t
}

// NewTheme creates a dark theme from configured styles. A style without a
// background gets a tint of its foreground over the theme background.
func NewTheme(styles []config.Style) (*Theme, error) {
	t := &Theme{
		Name:       "Default Dark",
		Foreground: colorful.Color{R: 212.0 / 255, G: 212.0 / 255, B: 212.0 / 255},
		Background: colorful.Color{R: 30.0 / 255, G: 30.0 / 255, B: 30.0 / 255},
		Tags:       make(map[string]TagStyle, len(styles)),
	}
	for _, s := range styles {
		ts := TagStyle{Foreground: t.Foreground, Glyph: s.Glyph}
		if s.Foreground != "" {
			c, err := colorful.Hex(s.Foreground)
			if err != nil {
				return nil, fmt.Errorf("style %s: foreground: %w", s.Tag, err)
			}
			ts.Foreground = c
		}
		if s.Background != "" {
			c, err := colorful.Hex(s.Background)
			if err != nil {
				return nil, fmt.Errorf("style %s: background: %w", s.Tag, err)
			}
			ts.Background = c
		} else {
			ts.Background = t.Background.BlendLab(ts.Foreground, 0.2).Clamped()
		}
		t.Tags[s.Tag] = ts
	}
	return t, nil
}

// StyleFor returns the style of tag, falling back to the theme colors.
func (t *Theme) StyleFor(tag string) TagStyle {
	if s, ok := t.Tags[tag]; ok {
		return s
	}
	return TagStyle{Foreground: t.Foreground, Background: t.Background}
}

// Glyph returns the substitute shown for a character tagged tag.
func (t *Theme) Glyph(tag string) string {
	if g := t.StyleFor(tag).Glyph; g != "" {
		return g
	}
	return FallbackGlyph
}

// TcellStyle returns the terminal style of tag. An empty tag is plain text.
func (t *Theme) TcellStyle(tag string) tcell.Style {
	if tag == "" {
		return tcell.StyleDefault.Foreground(tcellColor(t.Foreground)).Background(tcellColor(t.Background))
	}
	s := t.StyleFor(tag)
	return tcell.StyleDefault.Foreground(tcellColor(s.Foreground)).Background(tcellColor(s.Background))
}

// ANSI wraps text in 24-bit color escape sequences for tag.
func (t *Theme) ANSI(tag, text string) string {
	s := t.StyleFor(tag)
	fr, fg, fb := s.Foreground.RGB255()
	br, bg, bb := s.Background.RGB255()
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%s\x1b[0m", fr, fg, fb, br, bg, bb, text)
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
