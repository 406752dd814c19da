// Package sqlfront parses the small SQL subset spec.md §6 accepts —
// CREATE TABLE column definitions and SELECT ... FROM ... [WHERE ...]
// — using github.com/xwb1989/sqlparser against a MySQL-ish grammar,
// normalizing SQLite's syntax to fit it first.
package sqlfront

import (
	"strings"

	"github.com/xwb1989/sqlparser"

	"github.com/nsaritzky-labs/sqlitereader/internal/sqlite"
)

// ParseCreateTable extracts column definitions from a stored CREATE
// TABLE statement's DDL text, per spec.md §3's "Column definition" and
// §6's grammar: an INTEGER PRIMARY KEY column aliases rowid.
func ParseCreateTable(ddl string) ([]sqlite.Column, error) {
	normalized := normalizeSQLiteToMySQL(ddl)

	stmt, err := sqlparser.Parse(normalized)
	if err != nil {
		return nil, &ParseError{Operation: "parse_create_table", Input: ddl, Err: err}
	}

	ddlStmt, ok := stmt.(*sqlparser.DDL)
	if !ok || ddlStmt.Action != "create" || ddlStmt.TableSpec == nil {
		return nil, &ParseError{Operation: "parse_create_table", Input: ddl, Err: ErrNotCreateTable}
	}

	columns := make([]sqlite.Column, len(ddlStmt.TableSpec.Columns))
	for i, col := range ddlStmt.TableSpec.Columns {
		isIPK := bool(col.Type.Autoincrement) && strings.EqualFold(col.Type.Type, "INTEGER")
		columns[i] = sqlite.Column{
			Name:                col.Name.String(),
			IsIntegerPrimaryKey: isIPK,
		}
	}
	return columns, nil
}

// normalizeSQLiteToMySQL rewrites the handful of SQLite spellings that
// sqlparser's MySQL-oriented grammar rejects outright. Double-quoted
// SQLite identifiers (which, per spec.md §6, may contain spaces) become
// backtick-quoted MySQL identifiers rather than being stripped outright,
// so a quoted identifier with embedded spaces still parses.
func normalizeSQLiteToMySQL(sql string) string {
	normalized := strings.ReplaceAll(sql, `"`, "`")
	normalized = replaceFold(normalized, "primary key autoincrement", "AUTO_INCREMENT PRIMARY KEY")
	normalized = replaceFold(normalized, "integer primary key", "INTEGER AUTO_INCREMENT PRIMARY KEY")
	return strings.TrimSpace(normalized)
}

// replaceFold replaces all case-insensitive occurrences of old with new.
func replaceFold(s, old, new string) string {
	lower := strings.ToLower(s)
	oldLower := strings.ToLower(old)
	var b strings.Builder
	for {
		idx := strings.Index(lower, oldLower)
		if idx < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:idx])
		b.WriteString(new)
		s = s[idx+len(old):]
		lower = lower[idx+len(oldLower):]
	}
	return b.String()
}
