// Package engine wires the schema accessor, B-tree walkers, and SQL
// front-end together into the query dispatch spec.md §2's "Data flow"
// paragraph describes: front-end produces a parsed query, the engine
// resolves the table via the schema accessor, chooses a full scan or
// an index-assisted lookup, and materializes rows.
package engine

import (
	"context"
	"sort"

	"github.com/nsaritzky-labs/sqlitereader/internal/sqlfront"
	"github.com/nsaritzky-labs/sqlitereader/internal/sqlite"
)

// Engine answers .dbinfo, .tables, and SELECT queries against one open
// database file.
type Engine struct {
	pager  *sqlite.Pager
	schema *sqlite.Schema
}

// Open loads the schema eagerly — spec.md §4.E's accessor is read once
// and reused for every subsequent lookup in the process lifetime.
func Open(ctx context.Context, path string, opts ...sqlite.Option) (*Engine, error) {
	pager, err := sqlite.NewPager(path, opts...)
	if err != nil {
		return nil, err
	}
	schema, err := sqlite.LoadSchema(ctx, pager)
	if err != nil {
		pager.Close()
		return nil, err
	}
	return &Engine{pager: pager, schema: schema}, nil
}

func (e *Engine) Close() error {
	return e.pager.Close()
}

// PageSize returns the database's declared page size, for .dbinfo.
func (e *Engine) PageSize() int {
	return e.pager.PageSize()
}

// SchemaObjectCount is the .dbinfo "number of tables" figure: the cell
// count of the schema leaf, per spec.md §6.
func (e *Engine) SchemaObjectCount() int {
	return e.schema.CellCount()
}

// TableNames is the .tables output: tbl_name of every "table" row.
func (e *Engine) TableNames() []string {
	return e.schema.Tables()
}

// Row is one materialized result row: values in the query's requested
// column order.
type Row struct {
	Values []sqlite.Value
}

// Count runs `SELECT count(*) FROM table`.
func (e *Engine) Count(ctx context.Context, table string) (int, error) {
	rootPage, ok := e.schema.RootPage(table)
	if !ok {
		return 0, sqlite.ErrTableNotFound
	}
	tree := sqlite.NewTableBTree(e.pager, rootPage)
	return tree.Count(ctx)
}

// Select runs a parsed SELECT query: full scan when there's no usable
// index, or an index-assisted lookup (component G then component F)
// when the WHERE column has one, per spec.md §4.G's composition rule.
func (e *Engine) Select(ctx context.Context, q *sqlfront.Query) ([]Row, error) {
	rootPage, ok := e.schema.RootPage(q.Table)
	if !ok {
		return nil, sqlite.ErrTableNotFound
	}
	createSQL, _ := e.schema.CreateSQL(q.Table)

	columns, err := sqlfront.ParseCreateTable(createSQL)
	if err != nil {
		return nil, err
	}

	table := sqlite.NewTableBTree(e.pager, rootPage)

	var cells []sqlite.Cell
	if q.Where == nil {
		cells, err = table.Rows(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		plan := sqlfront.ChooseIndex(q.Table, q.Where, e.schema)
		if plan.UseIndex {
			index := sqlite.NewIndexBTree(e.pager, plan.IndexRoot)
			rowids, err := index.FindRowids(ctx, q.Where.Value)
			if err != nil {
				return nil, err
			}
			sort.Slice(rowids, func(i, j int) bool { return rowids[i] < rowids[j] })
			for _, rowid := range rowids {
				cell, found, err := table.LookupByRowid(ctx, rowid)
				if err != nil {
					return nil, err
				}
				if found {
					cells = append(cells, *cell)
				}
			}
		} else {
			all, err := table.Rows(ctx)
			if err != nil {
				return nil, err
			}
			for _, cell := range all {
				row, err := sqlite.MaterializeRow(&cell, columns)
				if err != nil {
					return nil, err
				}
				if matches(row, q.Where) {
					cells = append(cells, cell)
				}
			}
		}
	}

	projection := q.Columns
	if len(projection) == 0 {
		projection = sqlite.ColumnNames(columns)
	}

	rows := make([]Row, 0, len(cells))
	for _, cell := range cells {
		materialized, err := sqlite.MaterializeRow(&cell, columns)
		if err != nil {
			return nil, err
		}
		values := make([]sqlite.Value, len(projection))
		for i, name := range projection {
			values[i] = materialized[name]
		}
		rows = append(rows, Row{Values: values})
	}
	return rows, nil
}

func matches(row map[string]sqlite.Value, where *sqlfront.Predicate) bool {
	if where == nil {
		return true
	}
	v, ok := row[where.Column]
	if !ok {
		return false
	}
	return sqlite.Compare(v, where.Value) == 0
}
