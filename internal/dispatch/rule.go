package dispatch

import (
	"fmt"

	"github.com/roach88/dict2sql/internal/ast"
	"github.com/roach88/dict2sql/internal/ir"
)

// snippetLen bounds the node excerpt carried by NoMatchError.
const snippetLen = 80

// Matcher reports whether an alternative applies to a node.
type Matcher func(node ast.Value) bool

// Transform turns a node into IR.
type Transform func(node ast.Value) (ir.Token, error)

// Alternative is one candidate of a Rule.
type Alternative struct {
	// Name labels the result in debug mode and appears in errors.
	Name string

	// Match decides whether the alternative applies. Ignored for a catch-all.
	Match Matcher

	// Transform produces the IR for an accepted node.
	Transform Transform

	// CatchAll marks the always-matching fallback. It must be last.
	CatchAll bool
}

// Always is a Matcher that accepts every node.
func Always(ast.Value) bool { return true }

// Spec describes a rule before it is built.
type Spec struct {
	// Name identifies the rule in errors and debug output.
	Name string

	// Key gates ApplyIfKey: the rule applies to node[Key] when present.
	Key string

	// Wrap is the keyword Apply puts in front of the result ("SELECT").
	// Empty means no wrapping.
	Wrap string

	Alternatives []Alternative
}

// Rule is an immutable, ordered set of alternatives.
// A Rule is safe for concurrent use.
type Rule struct {
	spec  Spec
	debug bool
}

// NewRule validates spec and builds a rule.
// It fails when an alternative is incomplete or when a catch-all is not
// the single last alternative.
func NewRule(spec Spec, debug bool) (*Rule, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("dispatch: rule name is required")
	}
	if len(spec.Alternatives) == 0 {
		return nil, fmt.Errorf("dispatch: rule %s has no alternatives", spec.Name)
	}

	last := len(spec.Alternatives) - 1
	seen := make(map[string]bool, len(spec.Alternatives))
	for i, alt := range spec.Alternatives {
		switch {
		case alt.Name == "":
			return nil, fmt.Errorf("dispatch: rule %s: alternative %d has no name", spec.Name, i)
		case seen[alt.Name]:
			return nil, fmt.Errorf("dispatch: rule %s: duplicate alternative %s", spec.Name, alt.Name)
		case alt.Transform == nil:
			return nil, fmt.Errorf("dispatch: rule %s: alternative %s has no transform", spec.Name, alt.Name)
		case alt.CatchAll && i != last:
			return nil, fmt.Errorf("dispatch: rule %s: catch-all %s must be the last alternative", spec.Name, alt.Name)
		case !alt.CatchAll && alt.Match == nil:
			return nil, fmt.Errorf("dispatch: rule %s: alternative %s has no matcher", spec.Name, alt.Name)
		}
		seen[alt.Name] = true
	}

	alts := make([]Alternative, len(spec.Alternatives))
	copy(alts, spec.Alternatives)
	spec.Alternatives = alts

	return &Rule{spec: spec, debug: debug}, nil
}

// MustRule is NewRule for static rule tables. It panics on an invalid spec.
func MustRule(spec Spec, debug bool) *Rule {
	r, err := NewRule(spec, debug)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the rule name.
func (r *Rule) Name() string {
	return r.spec.Name
}

// Key returns the gating key, if any.
func (r *Rule) Key() string {
	return r.spec.Key
}

// Alternatives returns the names of the alternatives in dispatch order.
func (r *Rule) Alternatives() []string {
	names := make([]string, len(r.spec.Alternatives))
	for i, alt := range r.spec.Alternatives {
		names[i] = alt.Name
	}
	return names
}

// Dispatch applies the first alternative that accepts node.
func (r *Rule) Dispatch(node ast.Value) (ir.Token, error) {
	for _, alt := range r.spec.Alternatives {
		if !alt.CatchAll && !alt.Match(node) {
			continue
		}
		tok, err := alt.Transform(node)
		if err != nil {
			return nil, err
		}
		if r.debug {
			return ir.Labeled{Name: alt.Name, Token: tok}, nil
		}
		return tok, nil
	}

	return nil, &NoMatchError{
		Rule:    r.spec.Name,
		Kind:    ast.Kind(node),
		Snippet: ast.Snippet(node, snippetLen),
	}
}

// Apply dispatches node and prefixes the result with the rule's keyword.
func (r *Rule) Apply(node ast.Value) (ir.Token, error) {
	tok, err := r.Dispatch(node)
	if err != nil {
		return nil, err
	}
	if r.spec.Wrap == "" {
		return tok, nil
	}
	return ir.Of(ir.Atom(r.spec.Wrap), tok), nil
}

// ApplyIfKey applies the rule to node[Key]. It returns ir.Empty when node
// is not a map or has no such key, which is how optional clauses vanish.
func (r *Rule) ApplyIfKey(node ast.Value) (ir.Token, error) {
	m, ok := node.(ast.Map)
	if !ok {
		return ir.Empty, nil
	}
	v, ok := m.Get(r.spec.Key)
	if !ok {
		return ir.Empty, nil
	}
	return r.Apply(v)
}
