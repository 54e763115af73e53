// Package document provides the immutable rich-text tree the annotation
// engine works on.
//
// A document is a tree of [Node] values. Text leaves carry a string and
// optional marks, atoms are leaves without text (a hard break, an image) and
// elements hold ordered children. Nodes never change after construction, so
// two document versions share every subtree an edit did not touch.
//
// # Positions
//
// Positions address the gaps between tokens of the flattened document. The
// content of the root starts at 0. A text leaf occupies one position per code
// point, an atom one position, and an element its content plus an opening and
// a closing token:
//
//	doc(paragraph("ab", hardBreak))
//	    0          1 2 3          4 5
//
// [Node.Resolve] turns a position into a path of frames.
//
// # Equality
//
// Every node stores a 64-bit hash of its type, attributes, marks, text and
// child hashes. [Node.Equal] uses it to reject most unequal pairs without
// walking the subtrees.
//
// # JSON
//
// [Parse] and [Marshal] read and write the common editor document JSON:
//
//	{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"a"}]}]}
package document
