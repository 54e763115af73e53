// Package render presents annotated documents.
//
// HTML writes a document as HTML in which every annotation becomes a class
// name: inline annotations wrap their character in a span, node annotations
// mark the element. The node types and marks of the editor map to HTML
// elements (paragraph to p, heading to h1..h6 by its level attribute, bold to
// strong and so on); unknown types become div or span elements carrying a
// data-type attribute.
//
// Layout splits a document into terminal lines and replaces annotated
// characters by the glyphs of a Theme. The lines are drawn by a Painter on a
// tcell screen or written by Text, optionally with 24-bit colors.
package render
