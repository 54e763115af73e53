package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/typographic/internal/engine/annotation"
	"github.com/dshills/typographic/internal/engine/diff"
	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/engine/mapping"
	"github.com/dshills/typographic/internal/engine/scan"
	"github.com/dshills/typographic/internal/metrics"
)

// Stats describes one update cycle.
type Stats struct {
	// Reported is the number of nodes rescanned.
	Reported int

	// Matched is the number of nodes skipped as unchanged.
	Matched int

	// Descended is the number of changed elements compared child by child.
	Descended int

	// Removed is the number of annotations cleared from rescanned nodes.
	Removed int

	// Added is the number of annotations produced by rescanning.
	Added int

	// Rejected is the number of remapped annotations the edit invalidated
	// outside of rescanned nodes.
	Rejected int

	// Unchanged is true when the previous set was returned as is.
	Unchanged bool

	// Duration is the wall time of the cycle.
	Duration time.Duration
}

// Engine maintains annotation sets across document versions. An Engine has
// no mutable state of its own and may be shared; each cycle works on private
// data and returns a complete set.
type Engine struct {
	scanner *scan.Scanner
	window  int
	log     *zap.Logger
	metrics *metrics.Metrics
}

// New creates an engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		scanner: scan.New(nil),
		window:  DefaultWindow,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scanner returns the scanner used for rescans.
func (e *Engine) Scanner() *scan.Scanner {
	return e.scanner
}

// Window returns the change detector look-ahead.
func (e *Engine) Window() int {
	return e.window
}

// Seed scans a whole document. A nil document yields the empty set.
func (e *Engine) Seed(doc *document.Node) *annotation.Set {
	if doc == nil {
		return annotation.Empty()
	}
	start := time.Now()
	b := annotation.NewBuilder()
	b.Insert(e.scanner.Tree(doc)...)
	set := b.Build()
	e.log.Debug("seed",
		zap.Int("size", doc.ContentSize()),
		zap.Int("annotations", set.Len()),
		zap.Duration("duration", time.Since(start)))
	return set
}

// Update returns the annotation set for cur, given the set prev computed for
// old and the mapping m of the edit from old to cur.
func (e *Engine) Update(prev *annotation.Set, old, cur *document.Node, m *mapping.Mapping) (*annotation.Set, error) {
	set, _, err := e.UpdateWithStats(prev, old, cur, m)
	return set, err
}

// UpdateWithStats is Update that also reports what the cycle did.
func (e *Engine) UpdateWithStats(prev *annotation.Set, old, cur *document.Node, m *mapping.Mapping) (*annotation.Set, Stats, error) {
	start := time.Now()
	set, stats, err := e.update(prev, old, cur, m)
	stats.Duration = time.Since(start)
	if err != nil {
		e.metrics.ObserveFailure()
		e.log.Warn("update rejected", zap.Error(err))
		return nil, stats, err
	}

	e.metrics.ObserveCycle(metrics.Cycle{
		Reported:    stats.Reported,
		Matched:     stats.Matched,
		Annotations: set.Len(),
		Duration:    stats.Duration,
	})
	e.log.Debug("update",
		zap.String("edit", m.Summary()),
		zap.Bool("unchanged", stats.Unchanged),
		zap.Int("reported", stats.Reported),
		zap.Int("matched", stats.Matched),
		zap.Int("removed", stats.Removed),
		zap.Int("added", stats.Added),
		zap.Int("rejected", stats.Rejected),
		zap.Int("annotations", set.Len()),
		zap.Duration("duration", stats.Duration))
	return set, stats, nil
}

func (e *Engine) update(prev *annotation.Set, old, cur *document.Node, m *mapping.Mapping) (*annotation.Set, Stats, error) {
	var stats Stats
	if old == nil || cur == nil {
		return nil, stats, ErrNilDocument
	}
	if prev == nil {
		return nil, stats, ErrNilSet
	}
	if err := m.Validate(old.ContentSize(), cur.ContentSize()); err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrMalformedMapping, err)
	}
	if m.IsIdentity() && old.Equal(cur) {
		stats.Unchanged = true
		return prev, stats, nil
	}

	b, touched, err := prev.Remap(m, cur.ContentSize())
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrMalformedMapping, err)
	}

	ds, err := diff.Changed(old, cur, diff.Options{Window: e.window, Mapping: m}, func(n *document.Node, pos int) {
		stats.Removed += clearNode(b, n, pos)
		found := e.scanner.Scan(n, pos)
		b.Insert(found...)
		stats.Added += len(found)
	})
	if err != nil {
		return nil, stats, err
	}
	stats.Reported, stats.Matched, stats.Descended = ds.Reported, ds.Matched, ds.Descended

	for _, a := range touched {
		if b.Contains(a) && !e.scanner.Valid(cur, a) {
			b.Remove(a)
			stats.Rejected++
		}
	}
	return b.Build(), stats, nil
}

// clearNode removes the annotations inside the span of n at pos that do not
// lie inside one of its children. Children are handled by their own report or
// kept because they matched.
func clearNode(b *annotation.Builder, n *document.Node, pos int) int {
	inside := b.Within(pos, pos+n.NodeSize())
	if len(inside) == 0 {
		return 0
	}
	if n.ChildCount() == 0 {
		return b.Remove(inside...)
	}

	var stale []annotation.Annotation
	i, childStart := 0, pos+1
	for _, a := range inside {
		for i < n.ChildCount() && childStart+n.Child(i).NodeSize() <= a.From {
			childStart += n.Child(i).NodeSize()
			i++
		}
		if i < n.ChildCount() && a.Inside(childStart, childStart+n.Child(i).NodeSize()) {
			continue
		}
		stale = append(stale, a)
	}
	return b.Remove(stale...)
}
