// Package querysql compiles query ASTs into SQL text.
//
// Each clause and statement is a dispatch.Rule with ordered alternatives.
// The top-level Statement rule picks Select, Insert, Update or Delete by
// the key present in the map; clause rules are gated on their own key so
// absent clauses render to nothing.
//
// Literal text is only sanitized (identifier quotes removed, single quotes
// doubled). That is the whole trust boundary: it is not a general defense
// against SQL injection, and values are never bound as parameters.
package querysql
