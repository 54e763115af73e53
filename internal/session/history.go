package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/engine/transform"
)

// DefaultHistory is the number of previous documents a session keeps for
// Undo.
const DefaultHistory = 100

// history holds the documents replaced by applied edits. It is guarded by
// the session's writeMu.
type history struct {
	undoStack []*document.Node
	redoStack []*document.Node

	maxEntries int
}

// push records the document an edit replaced and clears the redo stack.
func (h *history) push(doc *document.Node) {
	if h.maxEntries <= 0 {
		return
	}
	h.undoStack = append(h.undoStack, doc)
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

func (h *history) clear() {
	h.undoStack = nil
	h.redoStack = nil
}

// WithHistory sets how many previous documents Undo can return to. Zero
// disables undo.
func WithHistory(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.history.maxEntries = n
		}
	}
}

// Undo reinstalls the document replaced by the last applied edit. The
// restored version gets a new version number and its annotations are
// computed incrementally like any other edit.
func (s *Session) Undo() (Snapshot, error) {
	return s.travel(&s.history.undoStack, &s.history.redoStack, ErrNothingToUndo, "undo")
}

// Redo reapplies the document removed by the last Undo.
func (s *Session) Redo() (Snapshot, error) {
	return s.travel(&s.history.redoStack, &s.history.undoStack, ErrNothingToRedo, "redo")
}

// CanUndo returns true if undo is available.
func (s *Session) CanUndo() bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return len(s.history.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (s *Session) CanRedo() bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return len(s.history.redoStack) > 0
}

// travel moves the current document onto to and installs the top of from.
func (s *Session) travel(from, to *[]*document.Node, empty error, op string) (Snapshot, error) {
	if s.closed.Load() {
		return Snapshot{}, ErrClosed
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if len(*from) == 0 {
		return Snapshot{}, empty
	}
	target := (*from)[len(*from)-1]
	cur := s.current.Load()

	m, err := transform.Between(cur.Doc, target)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	snap, err := s.apply(Edit{Before: cur.Doc, Doc: target, Mapping: m})
	if err != nil {
		s.failed.Inc()
		s.log.Error(op+" rejected", zap.Error(err))
		return Snapshot{}, err
	}
	*from = (*from)[:len(*from)-1]
	*to = append(*to, cur.Doc)

	s.log.Debug(op, zap.Uint64("version", snap.Version), zap.String("edit", m.Summary()))
	s.notify(snap)
	return snap, nil
}
