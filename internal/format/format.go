// Package format renders decoded rows for the CLI, grounded on the
// teacher's ConsoleFormatter but corrected to spec.md §6's `|`-joined
// column separator (the teacher used a tab).
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nsaritzky-labs/sqlitereader/internal/sqlite"
)

// Value renders a single typed value per spec.md §6: integer/float as
// native decimal, text raw (unquoted), blob debug-style, null as the
// literal NULL.
func Value(v sqlite.Value) string {
	switch v.Kind {
	case sqlite.KindNull:
		return "NULL"
	case sqlite.KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case sqlite.KindFloat:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	case sqlite.KindText:
		return v.Str
	case sqlite.KindBlob:
		return fmt.Sprintf("%v", v.Blob)
	default:
		return ""
	}
}

// Row joins a row's values, in column order, with `|`.
func Row(values []sqlite.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Value(v)
	}
	return strings.Join(parts, "|")
}

// Count formats a COUNT(*) result: a bare integer on its own line.
func Count(n int) string {
	return strconv.Itoa(n)
}

// TableNames formats the .tables output: space-separated names on one
// line, with the teacher's trailing-space convention preserved
// (spec.md §8 scenario 2 expects a trailing space after the last name).
func TableNames(names []string) string {
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteString(" ")
	}
	return b.String()
}

// DBInfo formats the .dbinfo output's two lines.
func DBInfo(pageSize, tableCount int) string {
	return fmt.Sprintf("database page size: %d\nnumber of tables: %d", pageSize, tableCount)
}
