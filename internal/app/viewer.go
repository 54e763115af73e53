package app

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/dshills/typographic/internal/render"
	"github.com/dshills/typographic/internal/session"
)

// Viewer shows documents on a terminal screen and repaints the visible one
// whenever its session installs a new version.
//
// Keys: q or Esc quits, Up/Down or k/j scroll by a line, PgUp/PgDn by a
// page, Home jumps to the top and Tab switches to the next document. u and r
// step the visible document back and forward through its versions.
type Viewer struct {
	screen  tcell.Screen
	painter *render.Painter
	theme   *render.Theme
	log     *zap.Logger

	docs    []*Document
	current int
	top     int
	lines   []render.Line
}

// NewViewer creates a viewer on an initialized screen.
func NewViewer(screen tcell.Screen, theme *render.Theme, docs []*Document, log *zap.Logger) *Viewer {
	if theme == nil {
		theme = render.DefaultTheme()
	}
	if log == nil {
		log = zap.NewNop()
	}
	v := &Viewer{
		screen:  screen,
		painter: render.NewPainter(screen, theme),
		theme:   theme,
		log:     log,
		docs:    docs,
	}
	v.layout()
	return v
}

// Run handles screen events until the user quits or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	if len(v.docs) == 0 {
		return ErrNoDocuments
	}

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go v.screen.ChannelEvents(events, quit)
	defer close(quit)

	for _, d := range v.docs {
		cancel := d.Session().Subscribe(func(session.Snapshot) {
			if err := v.screen.PostEvent(tcell.NewEventInterrupt(d)); err != nil {
				v.log.Debug("repaint dropped", zap.String("path", d.Path), zap.Error(err))
			}
		})
		defer cancel()
	}

	v.layout()
	v.Paint()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := v.Handle(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
		}
	}
}

// Handle processes one screen event and repaints. It returns ErrQuit when
// the user asks to leave.
func (v *Viewer) Handle(ev tcell.Event) error {
	_, height := v.screen.Size()
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return ErrQuit
		case tcell.KeyUp:
			v.scroll(-1)
		case tcell.KeyDown:
			v.scroll(1)
		case tcell.KeyPgUp:
			v.scroll(-height)
		case tcell.KeyPgDn:
			v.scroll(height)
		case tcell.KeyHome:
			v.top = 0
		case tcell.KeyTab:
			v.current = (v.current + 1) % len(v.docs)
			v.top = 0
			v.layout()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return ErrQuit
			case 'j':
				v.scroll(1)
			case 'k':
				v.scroll(-1)
			case 'u':
				v.travel(v.Current().Session().Undo, "undo")
			case 'r':
				v.travel(v.Current().Session().Redo, "redo")
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
		v.scroll(0)
	case *tcell.EventInterrupt:
		if d, ok := ev.Data().(*Document); ok && v.Current() == d {
			v.layout()
			v.scroll(0)
		}
	}
	v.Paint()
	return nil
}

// Current returns the visible document.
func (v *Viewer) Current() *Document {
	if len(v.docs) == 0 {
		return nil
	}
	return v.docs[v.current]
}

// Top returns the index of the first visible line.
func (v *Viewer) Top() int {
	return v.top
}

// Paint draws the visible lines.
func (v *Viewer) Paint() {
	v.painter.Paint(v.lines, v.top)
}

func (v *Viewer) travel(op func() (session.Snapshot, error), name string) {
	if _, err := op(); err != nil {
		if !errors.Is(err, session.ErrNothingToUndo) && !errors.Is(err, session.ErrNothingToRedo) {
			v.log.Warn(name+" failed", zap.String("path", v.Current().Path), zap.Error(err))
		}
		return
	}
	v.layout()
	v.scroll(0)
}

func (v *Viewer) layout() {
	d := v.Current()
	if d == nil {
		v.lines = nil
		return
	}
	snap := d.Snapshot()
	v.lines = render.Layout(snap.Doc, snap.Set, v.theme)
}

// scroll moves the view by delta lines and keeps the last page full.
func (v *Viewer) scroll(delta int) {
	_, height := v.screen.Size()
	limit := max(len(v.lines)-height, 0)
	v.top = min(max(v.top+delta, 0), limit)
}
