package sqlite

// Column describes one column of a table's CREATE TABLE definition, as
// needed for row materialization: its name and whether it's the
// INTEGER PRIMARY KEY alias for rowid (spec.md §4.H).
type Column struct {
	Name                string
	IsIntegerPrimaryKey bool
}

// MaterializeRow builds a name-to-value map for a leaf-table cell,
// substituting the cell's rowid for whichever column is the INTEGER
// PRIMARY KEY alias — that column is stored as NULL on disk and its
// real value IS the rowid, per spec.md §4.H. A synthetic "rowid" column
// is always present alongside the declared columns.
func MaterializeRow(cell *Cell, columns []Column) (map[string]Value, error) {
	if cell.Kind != CellLeafTable {
		return nil, wrapErr("materialize_row", ErrWrongBTreeKind, map[string]any{"kind": cell.Kind})
	}
	if cell.Record == nil {
		return nil, wrapErr("materialize_row", ErrMalformedRecord, nil)
	}
	if len(cell.Record.Values) != len(columns) {
		return nil, wrapErr("materialize_row", ErrMalformedRecord, map[string]any{
			"want_columns": len(columns), "got_values": len(cell.Record.Values),
		})
	}

	row := make(map[string]Value, len(columns)+1)
	row["rowid"] = Integer(cell.Rowid)
	for i, col := range columns {
		v := cell.Record.Values[i]
		if col.IsIntegerPrimaryKey {
			if !v.IsNull() {
				return nil, wrapErr("materialize_row", ErrIPKNotNull, map[string]any{
					"column": col.Name, "rowid": cell.Rowid,
				})
			}
			v = Integer(cell.Rowid)
		}
		row[col.Name] = v
	}
	return row, nil
}

// ColumnNames returns columns in declaration order, for formatting rows
// that don't project by name.
func ColumnNames(columns []Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}
