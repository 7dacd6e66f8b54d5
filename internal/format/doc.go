// Package format turns IR token trees into SQL text.
//
// It holds the dialect quoting rules and the two renderers: RenderFlat for
// production SQL and RenderDebug for an annotated YAML view of the tree.
package format
