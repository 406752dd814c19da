package sqlite

import (
	"context"
	"regexp"
	"strings"
)

// SchemaRow is one row of the schema B-tree rooted at page 1: one
// table/index/view/trigger definition, per spec.md §3.
type SchemaRow struct {
	Type     string
	Name     string
	TblName  string
	RootPage int64
	SQL      string
}

// Schema gives named access to the schema B-tree (root page 1). The
// core treats page 1 as a single leaf, per spec.md §4.E's documented
// scope limitation.
type Schema struct {
	pager *Pager
	rows  []SchemaRow
}

// LoadSchema reads and decodes every row of the schema table.
func LoadSchema(ctx context.Context, pager *Pager) (*Schema, error) {
	page, err := pager.ReadDecodedPage(ctx, 1)
	if err != nil {
		return nil, wrapErr("load_schema", err, nil)
	}
	if page.Header.Type != PageLeafTable {
		return nil, wrapErr("load_schema", ErrInvalidPageType, map[string]any{
			"type": page.Header.Type,
		})
	}

	rows := make([]SchemaRow, 0, len(page.Cells))
	for _, cell := range page.Cells {
		row, err := schemaRowFromCell(cell)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return &Schema{pager: pager, rows: rows}, nil
}

// CellCount is the number of rows in the schema leaf, used verbatim by
// `.dbinfo`'s "number of tables" line (spec.md §6 — every schema object,
// not only tables, by definition of that command).
func (s *Schema) CellCount() int {
	return len(s.rows)
}

// Rows returns every decoded schema row.
func (s *Schema) Rows() []SchemaRow {
	return s.rows
}

// Tables returns the tbl_name of every row whose type is "table".
func (s *Schema) Tables() []string {
	var names []string
	for _, r := range s.rows {
		if r.Type == "table" {
			names = append(names, r.TblName)
		}
	}
	return names
}

// RootPage implements spec.md §4.E root_page: the root page number of
// the named table.
func (s *Schema) RootPage(tableName string) (int, bool) {
	for _, r := range s.rows {
		if r.Type == "table" && r.TblName == tableName {
			return int(r.RootPage), true
		}
	}
	return 0, false
}

// CreateSQL implements spec.md §4.E create_sql.
func (s *Schema) CreateSQL(tableName string) (string, bool) {
	for _, r := range s.rows {
		if r.Type == "table" && r.TblName == tableName {
			return r.SQL, true
		}
	}
	return "", false
}

// FindIndex implements spec.md §4.E find_index: locate an index on
// table(column) by pattern-matching its stored DDL text rather than
// parsing CREATE INDEX properly — a documented shortcut. Returns the
// index's root page and true on the first match in scan order.
func (s *Schema) FindIndex(table, column string) (int, bool) {
	pattern := indexOnPattern(table, column)
	for _, r := range s.rows {
		if r.Type != "index" {
			continue
		}
		if pattern.MatchString(r.SQL) {
			return int(r.RootPage), true
		}
	}
	return 0, false
}

// indexOnPattern builds a case-insensitive, whitespace-insensitive
// matcher for `on <table> ( <column> )`.
func indexOnPattern(table, column string) *regexp.Regexp {
	t := regexp.QuoteMeta(strings.ToLower(table))
	c := regexp.QuoteMeta(strings.ToLower(column))
	src := `(?i)on\s+["` + "`" + `]?` + t + `["` + "`" + `]?\s*\(\s*["` + "`" + `]?` + c + `["` + "`" + `]?\s*\)`
	return regexp.MustCompile(src)
}

func schemaRowFromCell(cell Cell) (SchemaRow, error) {
	if cell.Kind != CellLeafTable || cell.Record == nil || len(cell.Record.Values) < 5 {
		return SchemaRow{}, wrapErr("schema_row", ErrMalformedRecord, nil)
	}
	v := cell.Record.Values
	return SchemaRow{
		Type:     textOrEmpty(v[0]),
		Name:     textOrEmpty(v[1]),
		TblName:  textOrEmpty(v[2]),
		RootPage: intOrZero(v[3]),
		SQL:      textOrEmpty(v[4]),
	}, nil
}

func textOrEmpty(v Value) string {
	if v.Kind == KindText {
		return v.Str
	}
	return ""
}

func intOrZero(v Value) int64 {
	if v.Kind == KindInteger {
		return v.Int
	}
	return 0
}
