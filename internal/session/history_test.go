package session

import (
	"errors"
	"testing"

	"github.com/dshills/typographic/internal/engine"
	"github.com/dshills/typographic/internal/engine/document"
)

func TestUndoRedo(t *testing.T) {
	eng := engine.New()
	s, err := Open(eng, sample())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if _, err := s.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("Undo() on fresh session = %v, want ErrNothingToUndo", err)
	}

	v1 := s.Current().Doc
	if _, err := s.Apply(insert(t, v1, 2, "\u00A0")); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	v2 := s.Current().Doc
	if _, err := s.Apply(insert(t, v2, 1, "\u200B")); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	v3 := s.Current().Doc

	tests := []struct {
		name    string
		op      func() (Snapshot, error)
		want    *document.Node
		version uint64
	}{
		{"undo to v2", s.Undo, v2, 4},
		{"undo to v1", s.Undo, v1, 5},
		{"redo to v2", s.Redo, v2, 6},
		{"redo to v3", s.Redo, v3, 7},
	}
	for _, tt := range tests {
		snap, err := tt.op()
		if err != nil {
			t.Fatalf("%s: error = %v", tt.name, err)
		}
		if snap.Doc != tt.want {
			t.Errorf("%s: installed %v, want %v", tt.name, snap.Doc, tt.want)
		}
		if snap.Version != tt.version {
			t.Errorf("%s: Version = %d, want %d", tt.name, snap.Version, tt.version)
		}
		if want := eng.Seed(snap.Doc); !snap.Set.Equal(want) {
			t.Errorf("%s: set = %v, want %v", tt.name, snap.Set, want)
		}
	}

	if s.CanRedo() {
		t.Error("CanRedo() = true after redoing everything")
	}
	if _, err := s.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo() = %v, want ErrNothingToRedo", err)
	}
}

func TestApplyClearsRedo(t *testing.T) {
	s, err := Open(engine.New(), sample())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if _, err := s.Apply(insert(t, s.Current().Doc, 1, "x")); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if _, err := s.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if !s.CanRedo() {
		t.Fatal("CanRedo() = false after Undo")
	}
	if _, err := s.Apply(insert(t, s.Current().Doc, 1, "y")); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if s.CanRedo() {
		t.Error("CanRedo() = true after a new edit")
	}
}

func TestHistoryLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		edits int
		undos int
	}{
		{"bounded", 2, 5, 2},
		{"disabled", 0, 3, 0},
		{"roomy", 10, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(engine.New(), sample(), WithHistory(tt.limit))
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer s.Close()

			for i := 0; i < tt.edits; i++ {
				if _, err := s.Apply(insert(t, s.Current().Doc, 1, "x")); err != nil {
					t.Fatalf("Apply() error = %v", err)
				}
			}
			undos := 0
			for s.CanUndo() {
				if _, err := s.Undo(); err != nil {
					t.Fatalf("Undo() error = %v", err)
				}
				undos++
			}
			if undos != tt.undos {
				t.Errorf("undid %d edits, want %d", undos, tt.undos)
			}
		})
	}
}

func TestResetClearsHistory(t *testing.T) {
	s, err := Open(engine.New(), sample())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if _, err := s.Apply(insert(t, s.Current().Doc, 1, "x")); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if _, err := s.Reset(sample()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if s.CanUndo() {
		t.Error("CanUndo() = true after Reset")
	}
}

func TestUndoClosed(t *testing.T) {
	s, err := Open(engine.New(), sample())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	s.Close()
	if _, err := s.Undo(); !errors.Is(err, ErrClosed) {
		t.Errorf("Undo() = %v, want ErrClosed", err)
	}
}
