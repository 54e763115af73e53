// Package annotation holds position-addressed annotations and the immutable
// ordered set the engine maintains across edits.
//
// A [Set] never changes once built. Incremental work happens in a [Builder]
// owned by a single update cycle; [Builder.Build] freezes the result, so a
// reader holding a Set sees either the old or the new annotations.
//
// Sets are ordered by (From, To, Kind, Tag) in a skip list. Overlap queries
// start at From minus the longest stored annotation, which keeps them local
// for the short annotations produced by the scanner.
package annotation
