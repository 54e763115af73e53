// Package scan derives annotations from single document nodes.
//
// A [Config] maps code points and node types to tags. [Scanner.Scan] looks at
// one node only: text leaves produce an inline annotation per configured code
// point and nodes of a configured type produce one annotation over their span.
// Unconfigured characters and types produce nothing.
package scan
