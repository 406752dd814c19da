package sqlfront

import (
	"strings"

	"github.com/xwb1989/sqlparser"

	"github.com/nsaritzky-labs/sqlitereader/internal/sqlite"
)

// Predicate is the single `col = 'literal'` equality the front-end
// accepts, per spec.md §6's grammar.
type Predicate struct {
	Column string
	Value  sqlite.Value
}

// Query is the parsed shape of a SELECT statement: a table name, a
// projection (nil for COUNT(*)), and an optional equality predicate.
type Query struct {
	Table      string
	IsCount    bool
	Columns    []string // empty/nil when IsCount is true
	Where      *Predicate
}

// ParseSelect parses `SELECT (count(*) | ident (',' ident)*) FROM ident
// [WHERE ident '=' '<literal>']`.
func ParseSelect(sql string) (*Query, error) {
	normalized := normalizeSQLiteToMySQL(sql)

	stmt, err := sqlparser.Parse(normalized)
	if err != nil {
		return nil, &ParseError{Operation: "parse_select", Input: sql, Err: err}
	}

	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, &ParseError{Operation: "parse_select", Input: sql, Err: ErrNotSelect}
	}

	q := &Query{}

	if len(sel.From) == 0 {
		return nil, &ParseError{Operation: "parse_select", Input: sql, Err: ErrNoTable}
	}
	aliased, ok := sel.From[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return nil, &ParseError{Operation: "parse_select", Input: sql, Err: ErrNoTable}
	}
	tableName, ok := aliased.Expr.(sqlparser.TableName)
	if !ok {
		return nil, &ParseError{Operation: "parse_select", Input: sql, Err: ErrNoTable}
	}
	q.Table = tableName.Name.String()

	if isCountStar(sel.SelectExprs) {
		q.IsCount = true
	} else {
		cols, err := projectionColumns(sel.SelectExprs)
		if err != nil {
			return nil, &ParseError{Operation: "parse_select", Input: sql, Err: err}
		}
		q.Columns = cols
	}

	if sel.Where != nil {
		pred, err := parseEquality(sel.Where.Expr)
		if err != nil {
			return nil, &ParseError{Operation: "parse_select", Input: sql, Err: err}
		}
		q.Where = pred
	}

	return q, nil
}

func isCountStar(exprs sqlparser.SelectExprs) bool {
	if len(exprs) != 1 {
		return false
	}
	aliased, ok := exprs[0].(*sqlparser.AliasedExpr)
	if !ok {
		return false
	}
	fn, ok := aliased.Expr.(*sqlparser.FuncExpr)
	if !ok {
		return false
	}
	return strings.EqualFold(fn.Name.String(), "count") && fn.StarArg
}

func projectionColumns(exprs sqlparser.SelectExprs) ([]string, error) {
	cols := make([]string, 0, len(exprs))
	for _, e := range exprs {
		aliased, ok := e.(*sqlparser.AliasedExpr)
		if !ok {
			return nil, ErrUnsupportedExpr
		}
		colName, ok := aliased.Expr.(*sqlparser.ColName)
		if !ok {
			return nil, ErrUnsupportedExpr
		}
		cols = append(cols, colName.Name.String())
	}
	return cols, nil
}

func parseEquality(expr sqlparser.Expr) (*Predicate, error) {
	cmp, ok := expr.(*sqlparser.ComparisonExpr)
	if !ok || cmp.Operator != "=" {
		return nil, ErrUnsupportedExpr
	}
	colName, ok := cmp.Left.(*sqlparser.ColName)
	if !ok {
		return nil, ErrUnsupportedExpr
	}
	val, ok := cmp.Right.(*sqlparser.SQLVal)
	if !ok {
		return nil, ErrUnsupportedExpr
	}

	var v sqlite.Value
	switch val.Type {
	case sqlparser.StrVal:
		v = sqlite.Text(string(val.Val))
	case sqlparser.IntVal:
		v = sqlite.Text(string(val.Val))
	default:
		v = sqlite.Text(string(val.Val))
	}

	return &Predicate{Column: colName.Name.String(), Value: v}, nil
}
