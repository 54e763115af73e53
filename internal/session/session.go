package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cheggaaa/mb/v3"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/dshills/typographic/internal/engine"
	"github.com/dshills/typographic/internal/engine/annotation"
	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/engine/mapping"
	"github.com/dshills/typographic/internal/engine/transform"
)

// Edit moves a session from one document version to the next.
type Edit struct {
	// Before is the document the edit was made against. It must be the
	// session's current document.
	Before *document.Node

	// Doc is the edited document.
	Doc *document.Node

	// Mapping maps positions of Before to positions of Doc.
	Mapping *mapping.Mapping
}

// EditFrom returns the edit recorded by a transaction.
func EditFrom(tr *transform.Transaction) Edit {
	return Edit{Before: tr.Before(), Doc: tr.Doc(), Mapping: tr.Mapping()}
}

// Snapshot is an installed document version and its annotations.
type Snapshot struct {
	Version uint64
	Doc     *document.Node
	Set     *annotation.Set
}

// Listener receives every snapshot installed after it subscribed.
type Listener func(Snapshot)

// Session owns the current document of one editor and keeps its annotation
// set up to date. Readers call Current from any goroutine; edits are applied
// one at a time, either directly with Apply or through the Submit queue
// drained by Run.
type Session struct {
	id     string
	engine *engine.Engine
	log    *zap.Logger

	current atomic.Pointer[Snapshot]
	closed  atomic.Bool
	applied atomic.Uint64
	failed  atomic.Uint64

	writeMu sync.Mutex
	queue   *mb.MB[Edit]
	history history

	subMu     sync.Mutex
	listeners map[uint64]Listener
	nextSub   uint64
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithID sets the session identifier instead of a random one.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// Open starts a session on doc using eng for every update cycle.
func Open(eng *engine.Engine, doc *document.Node, opts ...Option) (*Session, error) {
	if eng == nil {
		return nil, ErrNoEngine
	}
	if doc == nil {
		return nil, engine.ErrNilDocument
	}
	s := &Session{
		id:        uuid.NewString(),
		engine:    eng,
		log:       zap.NewNop(),
		queue:     mb.New[Edit](0),
		history:   history{maxEntries: DefaultHistory},
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("session", s.id))

	snap := &Snapshot{Version: 1, Doc: doc, Set: eng.Seed(doc)}
	s.current.Store(snap)
	s.log.Info("session opened",
		zap.Int("size", doc.ContentSize()),
		zap.Int("annotations", snap.Set.Len()))
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Current returns the installed snapshot. The document and set of a snapshot
// always belong together.
func (s *Session) Current() Snapshot {
	return *s.current.Load()
}

// Find returns the current annotations overlapping [from, to).
func (s *Session) Find(from, to int) []annotation.Annotation {
	return s.current.Load().Set.Find(from, to)
}

// Applied returns the number of edits installed since Open.
func (s *Session) Applied() uint64 {
	return s.applied.Load()
}

// Failed returns the number of rejected edits.
func (s *Session) Failed() uint64 {
	return s.failed.Load()
}

// Apply runs an update cycle for edit and installs the result.
func (s *Session) Apply(edit Edit) (Snapshot, error) {
	if s.closed.Load() {
		return Snapshot{}, ErrClosed
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	snap, err := s.apply(edit)
	if err != nil {
		s.failed.Inc()
		s.log.Error("edit rejected", zap.Error(err))
		return Snapshot{}, err
	}
	s.history.push(edit.Before)
	s.notify(snap)
	return snap, nil
}

func (s *Session) apply(edit Edit) (Snapshot, error) {
	cur := s.current.Load()
	if edit.Before != cur.Doc {
		return Snapshot{}, fmt.Errorf("%w: version %d", ErrStaleEdit, cur.Version)
	}
	set, err := s.engine.Update(cur.Set, cur.Doc, edit.Doc, edit.Mapping)
	if err != nil {
		return Snapshot{}, err
	}
	next := &Snapshot{Version: cur.Version + 1, Doc: edit.Doc, Set: set}
	s.current.Store(next)
	s.applied.Inc()
	return *next, nil
}

// Reset replaces the document without a mapping and rescans it.
func (s *Session) Reset(doc *document.Node) (Snapshot, error) {
	if doc == nil {
		return Snapshot{}, engine.ErrNilDocument
	}
	if s.closed.Load() {
		return Snapshot{}, ErrClosed
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	cur := s.current.Load()
	next := &Snapshot{Version: cur.Version + 1, Doc: doc, Set: s.engine.Seed(doc)}
	s.current.Store(next)
	s.history.clear()

	s.log.Info("session reset", zap.Uint64("version", next.Version))
	s.notify(*next)
	return *next, nil
}

// Submit queues an edit for Run. Queued edits are applied in order; an edit
// made against a document other than the one installed when it is applied
// is rejected as stale.
func (s *Session) Submit(ctx context.Context, edit Edit) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := s.queue.Add(ctx, edit); err != nil {
		if errors.Is(err, mb.ErrClosed) {
			return ErrClosed
		}
		return err
	}
	return nil
}

// Run applies queued edits until ctx is done or the session is closed.
// Rejected edits are logged and skipped.
func (s *Session) Run(ctx context.Context) error {
	for {
		edit, err := s.queue.WaitOne(ctx)
		if err != nil {
			if errors.Is(err, mb.ErrClosed) {
				return nil
			}
			return err
		}
		_, _ = s.Apply(edit)
	}
}

// Subscribe registers fn for every snapshot installed from now on and
// returns a function removing it. Listeners run on the writing goroutine in
// version order and must not apply edits themselves.
func (s *Session) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Session) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// Close stops Run and rejects further edits.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.log.Info("session closed",
		zap.Uint64("applied", s.applied.Load()),
		zap.Uint64("failed", s.failed.Load()))
	return s.queue.Close()
}
