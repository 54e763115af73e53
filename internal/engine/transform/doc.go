// Package transform edits immutable documents and records the position
// mapping of every step.
//
// A [Transaction] starts from a document and applies replace steps. Each step
// copies the nodes on the path from the root to the edited parent and shares
// everything else, so unchanged subtrees stay pointer-identical between the
// two versions.
//
//	tr := transform.New(doc)
//	if err := tr.InsertText(3, "\u00A0"); err != nil {
//		return err
//	}
//	set, err := eng.Update(prev, tr.Before(), tr.Doc(), tr.Mapping())
package transform
