// Package ir provides the intermediate token tree produced by the SQL rules.
//
// A token is atomic text or an ordered sequence of tokens. Empty marks a
// clause that renders to nothing. Labeled only appears in debug mode and
// records which alternative produced a subtree.
//
// Tokens are created fresh for each compile call and consumed by the
// renderer in internal/format. They are never retained.
package ir
