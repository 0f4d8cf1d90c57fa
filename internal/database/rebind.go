package database

import (
	"strconv"
	"strings"
)

// Rebind rewrites ? placeholders into the $1..$n form used by
// PostgreSQL. Question marks inside single-quoted literals are left
// untouched. MySQL statements pass through unchanged.
func Rebind(d Dialect, query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inLiteral := false
	for _, r := range query {
		switch {
		case r == '\'':
			inLiteral = !inLiteral
			b.WriteRune(r)
		case r == '?' && !inLiteral:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}
