package format

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Dialect holds the quoting rules of one SQL flavour.
//
// Sanitize is a narrow escape, not an injection-safe boundary: it removes
// the identifier quote character and doubles single quotes, nothing more.
// Bare literal text from the AST is emitted after sanitizing only.
type Dialect interface {
	// Name returns the dialect's configuration name ("ansi", "mysql").
	Name() string

	// Sanitize strips identifier quotes and doubles embedded single quotes.
	Sanitize(s string) string

	// QuoteIdentifier wraps the sanitized text in identifier quotes.
	QuoteIdentifier(s string) string

	// QuoteLiteral wraps the sanitized text in single quotes.
	QuoteLiteral(s string) string

	// FormatName quotes a possibly dotted name one part at a time.
	// "Artist.Name" becomes "Artist"."Name"; a "*" part stays bare.
	FormatName(s string) string

	// FormatBare renders bare expression text. Identifier paths are
	// formatted as names; numbers, keywords and anything else pass
	// through sanitized.
	FormatBare(s string) string
}

// identPath matches a plain or dotted identifier, optionally ending in ".*".
var identPath = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.([A-Za-z_][A-Za-z0-9_$]*|\*))*$`)

// bareKeywords are emitted unquoted even though they look like identifiers.
var bareKeywords = map[string]bool{
	"TRUE":  true,
	"FALSE": true,
	"NULL":  true,
}

type quoting struct {
	name  string
	quote string
	strip []string
}

var (
	// ANSI quotes identifiers with double quotes.
	ANSI Dialect = &quoting{name: "ansi", quote: `"`, strip: []string{`"`}}

	// MySQL quotes identifiers with backticks.
	MySQL Dialect = &quoting{name: "mysql", quote: "`", strip: []string{`"`, "`"}}
)

var dialects = map[string]Dialect{
	ANSI.Name():  ANSI,
	MySQL.Name(): MySQL,
}

// DialectByName looks up a dialect by its configuration name.
// The empty name selects ANSI.
func DialectByName(name string) (Dialect, error) {
	if name == "" {
		return ANSI, nil
	}
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (want one of %s)", name, strings.Join(DialectNames(), ", "))
	}
	return d, nil
}

// DialectNames lists the registered dialect names in sorted order.
func DialectNames() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (q *quoting) Name() string {
	return q.name
}

func (q *quoting) Sanitize(s string) string {
	for _, c := range q.strip {
		s = strings.ReplaceAll(s, c, "")
	}
	return strings.ReplaceAll(s, "'", "''")
}

func (q *quoting) QuoteIdentifier(s string) string {
	return q.quote + q.Sanitize(s) + q.quote
}

func (q *quoting) QuoteLiteral(s string) string {
	return "'" + q.Sanitize(s) + "'"
}

func (q *quoting) FormatName(s string) string {
	parts := strings.Split(s, ".")
	for i, part := range parts {
		if part == "*" {
			continue
		}
		parts[i] = q.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

func (q *quoting) FormatBare(s string) string {
	if bareKeywords[strings.ToUpper(s)] || !identPath.MatchString(s) {
		return q.Sanitize(s)
	}
	return q.FormatName(s)
}
