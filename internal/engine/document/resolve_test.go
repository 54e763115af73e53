package document

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	doc := sample()

	tests := []struct {
		pos        int
		depth      int
		index      int
		start      int
		textOffset int
		after      string
	}{
		{0, 0, 0, 0, 0, "paragraph"},
		{1, 1, 0, 1, 0, "text"},
		{2, 1, 0, 1, 1, ""},
		{3, 1, 1, 1, 0, "hardBreak"},
		{4, 1, 2, 1, 0, ""},
		{5, 0, 1, 0, 0, "paragraph"},
		{7, 1, 1, 6, 0, ""},
		{8, 0, 2, 0, 0, ""},
	}

	for _, tt := range tests {
		r, err := doc.Resolve(tt.pos)
		if err != nil {
			t.Fatalf("Resolve(%d): %v", tt.pos, err)
		}
		if r.Depth() != tt.depth {
			t.Errorf("Resolve(%d).Depth() = %d, want %d", tt.pos, r.Depth(), tt.depth)
		}
		p := r.Parent()
		if p.Index != tt.index || p.Start != tt.start {
			t.Errorf("Resolve(%d).Parent() = {Index:%d Start:%d}, want {Index:%d Start:%d}",
				tt.pos, p.Index, p.Start, tt.index, tt.start)
		}
		if r.TextOffset != tt.textOffset {
			t.Errorf("Resolve(%d).TextOffset = %d, want %d", tt.pos, r.TextOffset, tt.textOffset)
		}
		after := ""
		if n := r.NodeAfter(); n != nil {
			after = n.Type()
		}
		if after != tt.after {
			t.Errorf("Resolve(%d).NodeAfter() = %q, want %q", tt.pos, after, tt.after)
		}
	}
}

func TestResolveErrors(t *testing.T) {
	doc := sample()
	if _, err := doc.Resolve(-1); !errors.Is(err, ErrPositionOutOfRange) {
		t.Errorf("Resolve(-1) error = %v, want ErrPositionOutOfRange", err)
	}
	if _, err := doc.Resolve(9); !errors.Is(err, ErrPositionOutOfRange) {
		t.Errorf("Resolve(9) error = %v, want ErrPositionOutOfRange", err)
	}
	if _, err := NewText("x").Resolve(0); !errors.Is(err, ErrNotElement) {
		t.Errorf("Resolve on text error = %v, want ErrNotElement", err)
	}
}

func TestRuneAtAndNodeAt(t *testing.T) {
	doc := sample()

	for pos, want := range map[int]rune{1: 'a', 2: 'b', 6: 'c'} {
		got, ok := doc.RuneAt(pos)
		if !ok || got != want {
			t.Errorf("RuneAt(%d) = %q, %v, want %q", pos, got, ok, want)
		}
	}
	for _, pos := range []int{0, 3, 4, 5, 8, 42} {
		if r, ok := doc.RuneAt(pos); ok {
			t.Errorf("RuneAt(%d) = %q, want no character", pos, r)
		}
	}

	if n := doc.NodeAt(3); n == nil || n.Type() != "hardBreak" {
		t.Errorf("NodeAt(3) = %v, want hardBreak", n)
	}
	if n := doc.NodeAt(2); n != nil {
		t.Errorf("NodeAt(2) = %v, want nil inside text", n)
	}
}
