package engine

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/typographic/internal/engine/annotation"
	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/engine/mapping"
	"github.com/dshills/typographic/internal/engine/scan"
	"github.com/dshills/typographic/internal/engine/transform"
	"github.com/dshills/typographic/internal/metrics"
)

func para(children ...*document.Node) *document.Node {
	return document.NewElement("paragraph", nil, children...)
}

func text(s string) *document.Node {
	return document.NewText(s)
}

func br() *document.Node {
	return document.NewAtom("hardBreak", nil)
}

// update applies an edit and checks the result against a full rescan.
func update(t *testing.T, e *Engine, prev *annotation.Set, tr *transform.Transaction) (*annotation.Set, Stats) {
	t.Helper()
	set, stats, err := e.UpdateWithStats(prev, tr.Before(), tr.Doc(), tr.Mapping())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if want := e.Seed(tr.Doc()); !set.Equal(want) {
		t.Fatalf("after %s:\nincremental %v\nfull scan   %v\ndoc %s",
			tr.Mapping().Summary(), set, want, tr.Doc())
	}
	return set, stats
}

func TestScenarioSingleCharacter(t *testing.T) {
	e := New()
	// The text starts at 10.
	doc := document.NewDoc(para(text("1234567")), para(text("a\u00A0b")))

	set := e.Seed(doc)
	want := []annotation.Annotation{annotation.Inline(11, 12, "nbsp")}
	if !slices.Equal(set.All(), want) {
		t.Fatalf("Seed() = %v, want %v", set, want)
	}

	tr := transform.New(doc)
	if err := tr.Delete(11, 12); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	set, _ = update(t, e, set, tr)
	if set.Len() != 0 {
		t.Errorf("deleting the character should empty the set, got %v", set)
	}
}

func TestScenarioInsertHardBreak(t *testing.T) {
	e := New()
	doc := document.NewDoc(para(text("abcdefg")))
	set := e.Seed(doc)
	if set.Len() != 0 {
		t.Fatalf("Seed() = %v, want empty", set)
	}

	tr := transform.New(doc)
	if err := tr.InsertNode(5, br()); err != nil {
		t.Fatalf("InsertNode: %v", err)
	}
	set, _ = update(t, e, set, tr)
	want := []annotation.Annotation{annotation.Node(5, 6, "br")}
	if !slices.Equal(set.All(), want) {
		t.Errorf("set = %v, want %v", set, want)
	}
}

func TestScenarioAdjacentMatches(t *testing.T) {
	set := New().Seed(document.NewDoc(text("\u00A0\u00A0")))
	want := []annotation.Annotation{
		annotation.Inline(0, 1, "nbsp"),
		annotation.Inline(1, 2, "nbsp"),
	}
	if !slices.Equal(set.All(), want) {
		t.Errorf("Seed() = %v, want %v", set, want)
	}
}

func TestScenarioReorder(t *testing.T) {
	e := New()
	doc := document.NewDoc(para(text("x")), para(text("y\u00A0")), para(text("z")))
	set := e.Seed(doc)

	tr := transform.New(doc)
	if err := tr.Move(0, 7); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got := tr.Doc().String(); got != `doc(paragraph("y\u00a0"), paragraph("x"), paragraph("z"))` {
		t.Fatalf("Doc() = %s", got)
	}

	set, stats := update(t, e, set, tr)
	if stats.Matched != 2 {
		t.Errorf("Matched = %d, want 2", stats.Matched)
	}
	if stats.Reported != 2 {
		t.Errorf("Reported = %d, want 2 (the moved paragraph and its text)", stats.Reported)
	}
	if stats.Removed != 0 || stats.Added != 0 {
		t.Errorf("the nbsp annotation should be carried, not rescanned: %+v", stats)
	}
	if !set.Contains(annotation.Inline(2, 3, "nbsp")) {
		t.Errorf("set = %v, want nbsp[2:3)", set)
	}
}

func TestFullRescanEquivalence(t *testing.T) {
	e := New()
	doc := document.NewDoc(
		para(text("a\u00A0b"), br(), text("c\u200Bd")),
		document.NewElement("blockquote", nil, para(text("\u00AD"))),
	)
	empty := document.NewDoc()
	set, err := e.Update(e.Seed(empty), empty, doc, mapping.Insert(0, doc.ContentSize()))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if want := e.Seed(doc); !set.Equal(want) {
		t.Errorf("Update() = %v, want %v", set, want)
	}
	if set.Len() != 4 {
		t.Errorf("Len() = %d, want 4", set.Len())
	}
}

func TestNoOpEdit(t *testing.T) {
	e := New()
	doc := document.NewDoc(para(text("a\u00A0")))
	set := e.Seed(doc)

	got, stats, err := e.UpdateWithStats(set, doc, doc, mapping.Identity())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got != set || !stats.Unchanged {
		t.Errorf("a no-op edit should return the same set, stats %+v", stats)
	}

	// An equal copy with a nil mapping is a no-op too.
	copyDoc := document.NewDoc(para(text("a\u00A0")))
	if got, err := e.Update(set, doc, copyDoc, nil); err != nil || got != set {
		t.Errorf("Update(copy) = %v, %v", got, err)
	}
}

func TestLocality(t *testing.T) {
	e := New()
	doc := document.NewDoc(para(text("a\u00A0")), para(text("b")), para(text("c\u00A0")))
	set := e.Seed(doc)

	tr := transform.New(doc)
	if err := tr.InsertText(6, "x"); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	next, stats := update(t, e, set, tr)

	want := []annotation.Annotation{
		annotation.Inline(2, 3, "nbsp"),
		annotation.Inline(10, 11, "nbsp"),
	}
	if !slices.Equal(next.All(), want) {
		t.Errorf("set = %v, want %v", next, want)
	}
	if stats.Reported != 2 || stats.Matched != 2 {
		t.Errorf("stats = %+v, want 2 reported and 2 matched", stats)
	}
}

func TestNodeAnnotationsOnElements(t *testing.T) {
	cfg, err := scan.NewConfig(scan.DefaultCharacters, []scan.NodeRule{
		{Type: "hardBreak", Tag: "br"},
		{Type: "blockquote", Tag: "quote"},
	})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	e := New(WithConfig(cfg))
	doc := document.NewDoc(
		para(text("a")),
		document.NewElement("blockquote", nil, para(text("b")), para(text("c"))),
	)
	set := e.Seed(doc)
	if !set.Contains(annotation.Node(3, 11, "quote")) {
		t.Fatalf("Seed() = %v", set)
	}

	edits := []func(tr *transform.Transaction) error{
		func(tr *transform.Transaction) error { return tr.InsertText(5, "\u00A0") },
		func(tr *transform.Transaction) error { return tr.DeleteNode(8) },
		func(tr *transform.Transaction) error { return tr.SetMarkup(3, "section", nil) },
		func(tr *transform.Transaction) error { return tr.SetMarkup(3, "blockquote", nil) },
		func(tr *transform.Transaction) error { return tr.Delete(0, 3) },
	}
	for i, edit := range edits {
		tr := transform.New(doc)
		if err := edit(tr); err != nil {
			t.Fatalf("edit %d: %v", i, err)
		}
		set, _ = update(t, e, set, tr)
		doc = tr.Doc()
	}
	if got := set.All(); !slices.Equal(got, []annotation.Annotation{
		annotation.Node(0, 6, "quote"),
		annotation.Inline(2, 3, "nbsp"),
	}) {
		t.Errorf("final set = %v (doc %s)", got, doc)
	}
}

func TestRandomEdits(t *testing.T) {
	cfg, err := scan.NewConfig(scan.DefaultCharacters, []scan.NodeRule{
		{Type: "hardBreak", Tag: "br"},
		{Type: "blockquote", Tag: "quote"},
	})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	for _, window := range []int{1, 3, 8} {
		e := New(WithConfig(cfg), WithWindow(window))
		rng := rand.New(rand.NewSource(int64(window)))
		doc := document.NewDoc(
			para(text("a\u00A0b")),
			document.NewElement("blockquote", nil, para(text("c\u00ADd")), para(text("e"))),
			para(text("f"), br(), text("g\u200D")),
		)
		set := e.Seed(doc)

		applied := 0
		for i := 0; i < 400; i++ {
			tr := transform.New(doc)
			steps := 1 + rng.Intn(2)
			for s := 0; s < steps; s++ {
				randomEdit(rng, tr)
			}
			if !tr.Changed() {
				continue
			}
			set, _ = update(t, e, set, tr)
			doc = tr.Doc()
			applied++
		}
		if applied < 100 {
			t.Errorf("window %d: only %d edits applied", window, applied)
		}
	}
}

// TestDerivedMappings replays random edits with the mapping recomputed from
// the two snapshots, as a file reload does.
func TestDerivedMappings(t *testing.T) {
	e := New()
	rng := rand.New(rand.NewSource(7))
	doc := document.NewDoc(para(text("a\u00A0b")), para(text("c"), br(), text("d\u00ADe")))
	set := e.Seed(doc)

	for i := 0; i < 200; i++ {
		tr := transform.New(doc)
		randomEdit(rng, tr)
		if !tr.Changed() {
			continue
		}
		m, err := transform.Between(doc, tr.Doc())
		if err != nil {
			t.Fatalf("Between: %v", err)
		}
		set, err = e.Update(set, doc, tr.Doc(), m)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if want := e.Seed(tr.Doc()); !set.Equal(want) {
			t.Fatalf("after %s:\nincremental %v\nfull scan   %v", m.Summary(), set, want)
		}
		doc = tr.Doc()
	}
}

var alphabet = []string{"a", " ", "\u00A0", "\u00AD", "\u200B", "\u202F", "xy", "\u00A0\u00A0"}

func randomEdit(rng *rand.Rand, tr *transform.Transaction) {
	size := tr.Doc().ContentSize()
	pos := rng.Intn(size + 1)
	switch rng.Intn(7) {
	case 0, 1:
		_ = tr.InsertText(pos, alphabet[rng.Intn(len(alphabet))])
	case 2:
		_ = tr.Delete(pos, min(size, pos+1+rng.Intn(3)))
	case 3:
		_ = tr.InsertNode(pos, br())
	case 4:
		_ = tr.DeleteNode(pos)
	case 5:
		types := []string{"paragraph", "blockquote", "heading"}
		_ = tr.SetMarkup(pos, types[rng.Intn(len(types))], nil)
	case 6:
		if rng.Intn(2) == 0 {
			_ = tr.Move(pos, rng.Intn(size+1))
		} else {
			_ = tr.InsertNode(pos, para(text(alphabet[rng.Intn(len(alphabet))])))
		}
	}
}

func TestUpdateErrors(t *testing.T) {
	e := New()
	doc := document.NewDoc(para(text("abc")))
	set := e.Seed(doc)

	tests := []struct {
		name     string
		prev     *annotation.Set
		old, cur *document.Node
		m        *mapping.Mapping
		want     error
	}{
		{"nil old", set, nil, doc, nil, ErrNilDocument},
		{"nil new", set, doc, nil, nil, ErrNilDocument},
		{"nil set", nil, doc, doc, nil, ErrNilSet},
		{"size mismatch", set, doc, doc, mapping.Insert(0, 1), ErrMalformedMapping},
		{"change outside document", set, doc, document.NewDoc(para(text("abcdef"))), mapping.Replace(4, 9, 3), ErrMalformedMapping},
		{"incompatible roots", set, doc, document.NewElement("paragraph", nil, text("xyzab")), nil, ErrIncompatibleRoots},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Update(tt.prev, tt.old, tt.cur, tt.m)
			if !errors.Is(err, tt.want) {
				t.Errorf("Update() error = %v, want %v", err, tt.want)
			}
			if got != nil {
				t.Errorf("Update() = %v, want nil on error", got)
			}
		})
	}
}

func TestEngineLogsAndMetrics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg, "test")
	if err != nil {
		t.Fatalf("metrics.New: %v", err)
	}
	e := New(WithLogger(zap.New(core)), WithMetrics(m), WithWindow(0))
	if e.Window() != DefaultWindow {
		t.Errorf("Window() = %d, want %d", e.Window(), DefaultWindow)
	}

	doc := document.NewDoc(para(text("a")))
	set := e.Seed(doc)
	tr := transform.New(doc)
	if err := tr.InsertText(2, "\u00A0"); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	if _, err := e.Update(set, doc, tr.Doc(), tr.Mapping()); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := e.Update(set, doc, tr.Doc(), nil); err == nil {
		t.Fatal("expected a malformed mapping error")
	}

	updates := logs.FilterMessage("update").All()
	if len(updates) != 1 {
		t.Fatalf("got %d update entries, want 1", len(updates))
	}
	fields := updates[0].ContextMap()
	if fields["added"] != int64(1) || fields["annotations"] != int64(1) {
		t.Errorf("update fields = %v", fields)
	}
	if logs.FilterMessage("update rejected").Len() != 1 {
		t.Error("a rejected update should be logged")
	}

	if got := gathered(t, reg, "test_engine_cycles_total"); got != 1 {
		t.Errorf("cycles = %v, want 1", got)
	}
	if got := gathered(t, reg, "test_engine_failures_total"); got != 1 {
		t.Errorf("failures = %v, want 1", got)
	}
}

func gathered(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
