// Package queryir provides a typed builder for dict2sql statements.
//
// Callers that construct queries in Go use these types instead of writing
// nested maps by hand. Encode turns a Statement into the ast.Value wire
// shape that querysql compiles, and Validate reports suspicious but legal
// constructs (an Update without Where, an unknown join keyword).
//
// Statement, From and Expression are sealed interfaces using the marker
// method pattern, so type switches over them are exhaustive:
//
//	switch s := stmt.(type) {
//	case Select, *Select:
//	case Insert, *Insert:
//	case Update, *Update:
//	case Delete, *Delete:
//	}
package queryir
