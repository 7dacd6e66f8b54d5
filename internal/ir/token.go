package ir

// Token is a sealed interface for IR nodes.
// Only Atom, Seq, Labeled and the Empty sentinel implement it.
type Token interface {
	irToken() // Sealed - only these types implement it
}

// Atom is a piece of SQL text that is emitted as-is.
type Atom string

func (Atom) irToken() {}

// Seq is an ordered sequence of tokens. Rendering joins the non-empty
// children with a single space.
type Seq []Token

func (Seq) irToken() {}

// Labeled annotates a token with the name of the alternative that produced
// it. Flat rendering ignores the label.
type Labeled struct {
	Name  string
	Token Token
}

func (Labeled) irToken() {}

type empty struct{}

func (empty) irToken() {}

// Empty is the explicit elision token: an absent optional clause.
var Empty Token = empty{}

// Of builds a sequence from its arguments.
func Of(tokens ...Token) Seq {
	return Seq(tokens)
}

// Interpose returns items with sep inserted between each adjacent pair.
func Interpose(sep Token, items []Token) Seq {
	if len(items) == 0 {
		return Seq{}
	}
	out := make(Seq, 0, 2*len(items)-1)
	for i, item := range items {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, item)
	}
	return out
}

// IsEmpty reports whether t renders to nothing on its own: Empty, Atom("")
// or a zero-length Seq. A Seq whose children are all empty is not checked
// here; the renderer handles that after flattening.
//
// Emptiness is structural. Atom("0") is not empty.
func IsEmpty(t Token) bool {
	switch v := t.(type) {
	case empty:
		return true
	case Atom:
		return v == ""
	case Seq:
		return len(v) == 0
	case Labeled:
		return IsEmpty(v.Token)
	default:
		return false
	}
}

// Unwrap strips any Labeled wrappers.
func Unwrap(t Token) Token {
	for {
		l, ok := t.(Labeled)
		if !ok {
			return t
		}
		t = l.Token
	}
}
