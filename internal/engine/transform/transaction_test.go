package transform

import (
	"errors"
	"testing"

	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/engine/mapping"
)

func para(text string) *document.Node {
	return document.NewElement("paragraph", nil, document.NewText(text))
}

// sample is doc(paragraph("ab"), paragraph("cd")): "ab" spans [1, 3), the
// second paragraph [4, 8).
func sample() *document.Node {
	return document.NewDoc(para("ab"), para("cd"))
}

func TestTransactionEdits(t *testing.T) {
	tests := []struct {
		name string
		edit func(tr *Transaction) error
		want string
	}{
		{
			"insert text",
			func(tr *Transaction) error { return tr.InsertText(2, "\u00A0") },
			`doc(paragraph("a\u00a0b"), paragraph("cd"))`,
		},
		{
			"insert marked text",
			func(tr *Transaction) error { return tr.InsertText(3, "x", "bold") },
			`doc(paragraph("ab", bold("x")), paragraph("cd"))`,
		},
		{
			"delete text",
			func(tr *Transaction) error { return tr.Delete(1, 3) },
			`doc(paragraph(), paragraph("cd"))`,
		},
		{
			"replace text",
			func(tr *Transaction) error { return tr.ReplaceText(5, 6, "xy") },
			`doc(paragraph("ab"), paragraph("xyd"))`,
		},
		{
			"insert node inside text",
			func(tr *Transaction) error { return tr.InsertNode(2, document.NewAtom("hardBreak", nil)) },
			`doc(paragraph("a", hardBreak, "b"), paragraph("cd"))`,
		},
		{
			"delete node",
			func(tr *Transaction) error { return tr.DeleteNode(4) },
			`doc(paragraph("ab"))`,
		},
		{
			"set markup",
			func(tr *Transaction) error { return tr.SetMarkup(0, "heading", document.Attrs{"level": "1"}) },
			`doc(heading[level=1]("ab"), paragraph("cd"))`,
		},
		{
			"move before",
			func(tr *Transaction) error { return tr.Move(4, 0) },
			`doc(paragraph("cd"), paragraph("ab"))`,
		},
		{
			"move after",
			func(tr *Transaction) error { return tr.Move(0, 8) },
			`doc(paragraph("cd"), paragraph("ab"))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sample()
			tr := New(doc)
			if err := tt.edit(tr); err != nil {
				t.Fatalf("edit: %v", err)
			}
			if got := tr.Doc().String(); got != tt.want {
				t.Errorf("Doc() = %s, want %s", got, tt.want)
			}
			if err := tr.Mapping().Validate(doc.ContentSize(), tr.Doc().ContentSize()); err != nil {
				t.Errorf("Mapping().Validate() = %v", err)
			}
			if tr.Before() != doc {
				t.Error("Before() should return the starting document")
			}
		})
	}
}

func TestTransactionSharesUntouchedNodes(t *testing.T) {
	doc := sample()
	tr := New(doc)
	if err := tr.InsertText(2, "x"); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	if tr.Doc().Child(1) != doc.Child(1) {
		t.Error("the second paragraph should be shared")
	}
	if tr.Doc().Child(0) == doc.Child(0) {
		t.Error("the edited paragraph should be copied")
	}

	tr = New(doc)
	if err := tr.SetMarkup(0, "heading", nil); err != nil {
		t.Fatalf("SetMarkup: %v", err)
	}
	if tr.Doc().Child(0).Child(0) != doc.Child(0).Child(0) {
		t.Error("SetMarkup should keep the children")
	}
	if got := tr.Mapping().Map(2, mapping.AssocAfter); got != 2 {
		t.Errorf("SetMarkup mapping moved 2 to %d", got)
	}
}

func TestTransactionMapping(t *testing.T) {
	doc := sample()
	tr := New(doc)
	if err := tr.InsertText(1, "xx"); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	if err := tr.Move(6, 0); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if tr.Steps() != 3 || !tr.Changed() {
		t.Errorf("Steps() = %d, want 3", tr.Steps())
	}
	if got := tr.Doc().String(); got != `doc(paragraph("cd"), paragraph("xxab"))` {
		t.Errorf("Doc() = %s", got)
	}
	// "a" was at 1, after the insert at 3, after the move at 7.
	if got := tr.Mapping().Map(1, mapping.AssocAfter); got != 7 {
		t.Errorf("Map(1) = %d, want 7", got)
	}
	if r, ok := tr.Doc().RuneAt(7); !ok || r != 'a' {
		t.Errorf("RuneAt(7) = %q, %v, want 'a'", r, ok)
	}
}

func TestTransactionErrors(t *testing.T) {
	tests := []struct {
		name string
		edit func(tr *Transaction) error
		want error
	}{
		{"crosses nodes", func(tr *Transaction) error { return tr.Delete(2, 6) }, ErrCrossesNodes},
		{"inverted range", func(tr *Transaction) error { return tr.Delete(3, 1) }, ErrInvalidRange},
		{"out of range", func(tr *Transaction) error { return tr.InsertText(99, "x") }, document.ErrPositionOutOfRange},
		{"no node inside text", func(tr *Transaction) error { return tr.DeleteNode(2) }, ErrNoNode},
		{"markup of text", func(tr *Transaction) error { return tr.SetMarkup(1, "x", nil) }, ErrNoNode},
		{"move into itself", func(tr *Transaction) error { return tr.Move(0, 2) }, ErrInvalidRange},
		{"nil node", func(tr *Transaction) error { return tr.InsertNode(0, nil) }, ErrInvalidNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sample()
			tr := New(doc)
			if err := tt.edit(tr); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if tr.Doc() != doc || tr.Changed() {
				t.Error("a failed edit must not change the transaction")
			}
		})
	}
}
