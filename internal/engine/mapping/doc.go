// Package mapping describes how positions move when a document is edited.
//
// An edit is a [Mapping]: an ordered list of [StepMap] values, each holding
// the non-overlapping [Change] rewrites of one atomic step. Positions are
// translated with [Mapping.Map]; [Mapping.MapResult] additionally reports
// whether a position fell strictly inside a replaced range.
//
//	m := mapping.Replace(11, 12, 0) // delete one position
//	m.Map(20, mapping.AssocAfter)   // 19
//
// # Boundaries
//
// A position exactly on an insertion point stays before the inserted content
// with [AssocBefore] and moves past it with [AssocAfter]. A position on the
// start of a replaced range always maps to the start of the replacement, one
// on its end to the end of the replacement.
//
// # Validation
//
// [Mapping.Validate] rejects edits whose changes fall outside the document or
// whose size delta does not produce the new document size. Consumers treat a
// failed validation as a broken precondition and never guess positions.
package mapping
