// Package engine maintains the annotations of a rich-text document across
// edits without rescanning the whole document.
//
// The engine combines the sub-packages:
//
//   - document: immutable tree with position addressing and content hashes
//   - mapping: how positions move through an edit
//   - scan: annotations derived from a single node
//   - diff: the nodes that changed between two versions
//   - annotation: the immutable, ordered annotation set
//
// # Update Cycle
//
// [Engine.Seed] scans a document once. For every committed edit the host
// calls [Engine.Update] with the previous set, both document versions and the
// edit mapping:
//
//	set := eng.Seed(doc)
//	tr := transform.New(doc)
//	_ = tr.InsertText(4, "\u00A0")
//	set, err := eng.Update(set, doc, tr.Doc(), tr.Mapping())
//
// The cycle maps the previous annotations through the edit, dropping those
// whose range was deleted. It then runs the change detector. Every reported
// node loses the annotations in its span that none of its children own and
// is rescanned. Annotations the edit touched without any rescan reaching
// them are checked against the new document. The result equals a full scan
// of the new document.
//
// # Errors
//
// A mapping that does not turn the old document size into the new one fails
// with [ErrMalformedMapping], roots of different markup with
// [ErrIncompatibleRoots]. Both are caller bugs; the engine never guesses.
//
// # Concurrency
//
// An Engine holds configuration only. Sets are immutable, so readers may keep
// using the previous set while a cycle computes the next one.
package engine
