package db

import (
	"fmt"
	"strings"
)

// Dialect covers the bind-parameter differences between supported drivers.
// Queries are written with "?" and rebound before execution.
type Dialect interface {
	// Placeholder returns the placeholder for the 1-based parameter index.
	Placeholder(index int) string
}

type questionDialect struct{}

func (questionDialect) Placeholder(_ int) string { return "?" }

type dollarDialect struct{}

func (dollarDialect) Placeholder(index int) string { return fmt.Sprintf("$%d", index) }

var dialects = map[string]Dialect{
	"sqlite3":  questionDialect{},
	"mysql":    questionDialect{},
	"pgx":      dollarDialect{},
	"postgres": dollarDialect{},
}

func dialectFor(driver string) (Dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	return d, nil
}

// Rebind rewrites "?" placeholders in query for d. Quoted literals are
// left untouched.
func Rebind(d Dialect, query string) string {
	if _, ok := d.(questionDialect); ok {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	idx := 1
	inQuote := false
	for i := range len(query) {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			b.WriteString(d.Placeholder(idx))
			idx++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
