package render

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// IndentWidth is the number of columns per nesting level.
const IndentWidth = 2

// BlockMarker is drawn before lines of blocks carrying node annotations.
const BlockMarker = '▌'

// Painter draws laid out lines on a tcell screen.
type Painter struct {
	screen tcell.Screen
	theme  *Theme
	mu     sync.Mutex
}

// NewPainter creates a painter for an initialized screen.
func NewPainter(screen tcell.Screen, theme *Theme) *Painter {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Painter{screen: screen, theme: theme}
}

// Paint clears the screen and draws lines starting with lines[top]. Lines
// wider than the screen are cut. It returns the number of lines drawn.
func (p *Painter) Paint(lines []Line, top int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	base := p.theme.TcellStyle("")
	p.screen.SetStyle(base)
	p.screen.Clear()

	width, height := p.screen.Size()
	drawn := 0
	for y := 0; y < height && top+y < len(lines); y++ {
		if top+y < 0 {
			continue
		}
		p.line(lines[top+y], y, width, base)
		drawn++
	}
	p.screen.Show()
	return drawn
}

func (p *Painter) line(line Line, y, width int, base tcell.Style) {
	x := line.Depth * IndentWidth
	if n := len(line.Tags); n > 0 && x < width {
		p.screen.SetContent(x, y, BlockMarker, nil, p.theme.TcellStyle(line.Tags[n-1]))
		x += 2
	}
	for _, c := range line.Cells {
		if c.Width == 0 || c.Text == "" {
			continue
		}
		if x+c.Width > width {
			return
		}
		style := base
		if c.Tag != "" {
			style = p.theme.TcellStyle(c.Tag)
		}
		runes := []rune(c.Text)
		p.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += c.Width
	}
}
