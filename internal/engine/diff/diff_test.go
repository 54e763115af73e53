package diff

import (
	"errors"
	"slices"
	"testing"

	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/engine/mapping"
)

type visit struct {
	node string
	pos  int
}

func collect(t *testing.T, old, cur *document.Node, opts Options) ([]visit, Stats) {
	t.Helper()
	var got []visit
	stats, err := Changed(old, cur, opts, func(n *document.Node, pos int) {
		got = append(got, visit{n.String(), pos})
	})
	if err != nil {
		t.Fatalf("Changed: %v", err)
	}
	return got, stats
}

func para(text string) *document.Node {
	return document.NewElement("paragraph", nil, document.NewText(text))
}

func TestChangedIdentical(t *testing.T) {
	doc := document.NewDoc(para("a"), para("b"))
	got, stats := collect(t, doc, doc, Options{})
	if len(got) != 0 {
		t.Errorf("identical trees reported %v", got)
	}
	if stats.Matched != 2 {
		t.Errorf("Matched = %d, want 2", stats.Matched)
	}

	// Equal content without shared pointers also matches.
	got, _ = collect(t, doc, document.NewDoc(para("a"), para("b")), Options{})
	if len(got) != 0 {
		t.Errorf("equal trees reported %v", got)
	}
}

func TestChangedTyping(t *testing.T) {
	p1, p3 := para("a"), para("c")
	old := document.NewDoc(p1, para("b"), p3)
	cur := document.NewDoc(p1, para("bx"), p3)

	got, stats := collect(t, old, cur, Options{Mapping: mapping.Insert(5, 1)})
	want := []visit{
		{`paragraph("bx")`, 3},
		{`"bx"`, 4},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Changed() visited %v, want %v", got, want)
	}
	if stats != (Stats{Reported: 2, Matched: 2, Descended: 1}) {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestChangedRequiresMapping(t *testing.T) {
	p1, p3 := para("a"), para("c")
	old := document.NewDoc(p1, para("b"), p3)
	cur := document.NewDoc(p1, para("bx"), p3)

	// Without the mapping the shifted third paragraph cannot be trusted.
	got, _ := collect(t, old, cur, Options{})
	want := []visit{
		{`paragraph("bx")`, 3},
		{`"bx"`, 4},
		{`paragraph("c")`, 7},
		{`"c"`, 8},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Changed() visited %v, want %v", got, want)
	}
}

func TestChangedReorder(t *testing.T) {
	a, b, c := para("x"), para("y\u00A0"), para("z")
	old := document.NewDoc(a, b, c)
	cur := document.NewDoc(b, a, c)

	// Move a behind b: delete [0, 3), insert 3 positions at 4.
	m := mapping.Delete(0, 3)
	m.AppendMapping(mapping.Insert(4, 3))

	got, stats := collect(t, old, cur, Options{Mapping: m})
	want := []visit{
		{`paragraph("x")`, 4},
		{`"x"`, 5},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Changed() visited %v, want %v", got, want)
	}
	if stats.Matched != 2 {
		t.Errorf("Matched = %d, want 2 (b and c skipped)", stats.Matched)
	}
}

func TestChangedWindow(t *testing.T) {
	e := para("e")
	old := document.NewDoc(para("a"), para("b"), para("c"), para("d"), e)
	cur := document.NewDoc(e)
	m := mapping.Delete(0, 12)

	got, _ := collect(t, old, cur, Options{Mapping: m})
	if len(got) != 2 || got[0] != (visit{`paragraph("e")`, 0}) {
		t.Errorf("default window visited %v, want e reported", got)
	}

	got, stats := collect(t, old, cur, Options{Mapping: m, Window: 5})
	if len(got) != 0 || stats.Matched != 1 {
		t.Errorf("window 5 visited %v (%+v), want e matched", got, stats)
	}
}

func TestChangedNewSubtree(t *testing.T) {
	p := para("a")
	old := document.NewDoc(p)
	quote := document.NewElement("blockquote", nil, para("b"))
	cur := document.NewDoc(p, quote)

	got, stats := collect(t, old, cur, Options{Mapping: mapping.Insert(3, quote.NodeSize())})
	want := []visit{
		{`blockquote(paragraph("b"))`, 3},
		{`paragraph("b")`, 4},
		{`"b"`, 5},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Changed() visited %v, want %v", got, want)
	}
	if stats.Descended != 0 {
		t.Errorf("Descended = %d, want 0", stats.Descended)
	}
}

func TestChangedIncompatibleRoots(t *testing.T) {
	doc := document.NewDoc(para("a"))
	tests := []struct {
		name     string
		old, cur *document.Node
	}{
		{"nil", doc, nil},
		{"different type", doc, para("a")},
		{"leaf", document.NewText("a"), document.NewText("a")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Changed(tt.old, tt.cur, Options{}, func(*document.Node, int) {})
			if !errors.Is(err, ErrIncompatibleRoots) {
				t.Errorf("Changed() error = %v, want ErrIncompatibleRoots", err)
			}
		})
	}
}
