// Package ast provides the query AST that dict2sql compiles.
//
// A query is a tree of JSON-like values: maps, lists, strings, numbers,
// booleans and null. Maps keep document order. The package owns decoding
// from JSON, YAML, CUE and MessagePack, and the canonical form used to
// fingerprint a query.
//
// ast imports nothing internal. Every other package builds on it.
package ast
