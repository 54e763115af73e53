package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/typographic/internal/engine"
	"github.com/dshills/typographic/internal/engine/annotation"
	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/engine/mapping"
	"github.com/dshills/typographic/internal/engine/transform"
	"github.com/dshills/typographic/internal/session"
)

func sessionEdit(doc *Document) session.Edit {
	cur := doc.Snapshot().Doc
	return session.Edit{Before: cur, Doc: cur, Mapping: mapping.Identity()}
}

func newTestManager() *DocumentManager {
	return NewDocumentManager(engine.New(), document.ParseOptions{}, nil)
}

func TestDocumentManagerOpen(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.json", nbspDoc)
	dm := newTestManager()
	defer dm.CloseAll()

	doc, err := dm.Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if doc.Name != "doc.json" {
		t.Errorf("Name = %q, want doc.json", doc.Name)
	}
	if !doc.Watchable() {
		t.Error("file document not watchable")
	}
	snap := doc.Snapshot()
	if snap.Version != 1 {
		t.Errorf("Version = %d, want 1", snap.Version)
	}
	if !snap.Set.Contains(annotation.Inline(2, 3, "nbsp")) {
		t.Errorf("set %v lacks the nbsp annotation", snap.Set)
	}

	again, err := dm.Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	if again != doc {
		t.Error("second Open() returned a new document")
	}
	if dm.Count() != 1 {
		t.Errorf("Count() = %d, want 1", dm.Count())
	}
	if got, ok := dm.Get(path); !ok || got != doc {
		t.Errorf("Get() = %v, %v", got, ok)
	}
}

func TestDocumentManagerOpenReader(t *testing.T) {
	dm := newTestManager()
	defer dm.CloseAll()

	doc, err := dm.OpenReader(strings.NewReader(nbspDoc))
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}
	if doc.Path != StdinName || doc.Watchable() {
		t.Errorf("Path = %q, Watchable = %v", doc.Path, doc.Watchable())
	}
	if _, err := dm.OpenReader(strings.NewReader(nbspDoc)); err == nil {
		t.Error("second OpenReader() succeeded")
	}
	if _, err := dm.Reload(StdinName); !errors.Is(err, ErrNotWatchable) {
		t.Errorf("Reload(stdin) = %v, want ErrNotWatchable", err)
	}
}

func TestDocumentManagerReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.json", nbspDoc)
	dm := newTestManager()
	defer dm.CloseAll()

	doc, err := dm.Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	writeFile(t, dir, "doc.json", twoNbspDoc)
	snap, err := dm.Reload(path)
	if err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}
	if snap.Version != 2 {
		t.Errorf("Version = %d, want 2", snap.Version)
	}
	want := engine.New().Seed(snap.Doc)
	if !snap.Set.Equal(want) {
		t.Errorf("set = %v, want %v", snap.Set, want)
	}

	// An unchanged file still installs a version with the same set.
	snap, err = dm.Reload(path)
	if err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}
	if snap.Version != 3 || !snap.Set.Equal(want) {
		t.Errorf("unchanged reload: version %d, set %v", snap.Version, snap.Set)
	}

	writeFile(t, dir, "doc.json", `{"type":"doc","content":`)
	if _, err := dm.Reload(path); err == nil {
		t.Error("Reload() of invalid JSON succeeded")
	}
	if got := doc.Snapshot().Version; got != 3 {
		t.Errorf("Version after failed reload = %d, want 3", got)
	}
}

func TestDocumentManagerErrors(t *testing.T) {
	dir := t.TempDir()
	dm := newTestManager()
	defer dm.CloseAll()

	tests := []struct {
		name string
		fn   func() error
		want error
	}{
		{"reload unknown", func() error { _, err := dm.Reload(dir + "/none.json"); return err }, ErrDocumentNotFound},
		{"close unknown", func() error { return dm.Close(dir + "/none.json") }, ErrDocumentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
			var fe *FileError
			if !errors.As(err, &fe) {
				t.Errorf("%v is not a FileError", err)
			}
		})
	}
}

func TestDocumentManagerClose(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", nbspDoc)
	b := writeFile(t, dir, "b.json", nbspDoc)
	dm := newTestManager()

	docA, err := dm.Open(a)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := dm.Open(b); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := dm.Close(a); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	all := dm.All()
	if len(all) != 1 || all[0].Name != "b.json" {
		t.Errorf("All() after Close = %v", all)
	}
	if _, err := docA.Session().Apply(sessionEdit(docA)); !errors.Is(err, session.ErrClosed) {
		t.Errorf("Apply() on closed document = %v, want ErrClosed", err)
	}
	if err := dm.CloseAll(); err != nil {
		t.Errorf("CloseAll() = %v", err)
	}
	if dm.Count() != 0 {
		t.Errorf("Count() = %d, want 0", dm.Count())
	}
}

func mustBetween(t *testing.T, old, cur *document.Node) *mapping.Mapping {
	t.Helper()
	m, err := transform.Between(old, cur)
	if err != nil {
		t.Fatalf("Between() failed: %v", err)
	}
	return m
}
