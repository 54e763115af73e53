// Package diff finds the nodes that changed between two versions of a
// document tree.
//
// [Changed] walks the children of the new tree left to right while a lagging
// cursor walks the old children. For each new child it looks at most
// [Options.Window] old siblings ahead for an identical node; the earliest
// match wins and the old cursor moves past it. A new child without a match is
// reported. If the old child under the cursor has the same markup the two are
// compared recursively, otherwise every descendant of the new child is
// reported as well.
//
// Identity is pointer equality or equal content hashes confirmed by a deep
// comparison. Because equal content alone does not mean the positions inside
// a node survived the edit, a match also requires the edit mapping to carry
// the old span onto the new one untouched.
package diff
