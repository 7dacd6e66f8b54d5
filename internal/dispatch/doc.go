// Package dispatch implements ordered-alternative dispatch over query AST
// nodes.
//
// A Rule holds an ordered list of alternatives. Dispatch applies the first
// alternative whose matcher accepts the node. At most one alternative may
// be a catch-all and it must come last, so a quoted-literal check always
// runs before the bare-literal fallback.
//
// Debug mode is fixed when the rule is built. In debug mode every result
// is wrapped in ir.Labeled with the chosen alternative's name; the flat
// renderer ignores labels, so SQL output is unchanged.
package dispatch
