package sqlite

import (
	"context"
	"sort"
)

// TableBTree walks a table B-tree rooted at RootPage: rows keyed by an
// increasing 64-bit rowid, per spec.md §4.F.
type TableBTree struct {
	pager    *Pager
	rootPage int
}

func NewTableBTree(pager *Pager, rootPage int) *TableBTree {
	return &TableBTree{pager: pager, rootPage: rootPage}
}

// EnumerateLeaves returns every leaf-table page number reachable from
// the root, in tree (ascending-rowid) order.
func (t *TableBTree) EnumerateLeaves(ctx context.Context) ([]int, error) {
	return t.enumerateLeaves(ctx, t.rootPage)
}

func (t *TableBTree) enumerateLeaves(ctx context.Context, pageNum int) ([]int, error) {
	page, err := t.pager.ReadDecodedPage(ctx, pageNum)
	if err != nil {
		return nil, wrapErr("enumerate_leaves", err, map[string]any{"page": pageNum})
	}
	if !page.Header.Type.IsTable() {
		return nil, wrapErr("enumerate_leaves", ErrWrongBTreeKind, map[string]any{"page": pageNum, "type": page.Header.Type})
	}

	if page.Header.Type == PageLeafTable {
		return []int{pageNum}, nil
	}

	var leaves []int
	for _, cell := range page.Cells {
		child, err := t.enumerateLeaves(ctx, int(cell.LeftChild))
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, child...)
	}
	child, err := t.enumerateLeaves(ctx, int(page.Header.RightmostChild))
	if err != nil {
		return nil, err
	}
	return append(leaves, child...), nil
}

// Rows enumerates every row cell across every leaf page, in ascending
// rowid order. Under ValidationStrict, the resulting rowid sequence is
// additionally checked to be strictly increasing, per spec.md §8
// property 4.
func (t *TableBTree) Rows(ctx context.Context) ([]Cell, error) {
	leaves, err := t.EnumerateLeaves(ctx)
	if err != nil {
		return nil, err
	}
	var cells []Cell
	for _, pageNum := range leaves {
		page, err := t.pager.ReadDecodedPage(ctx, pageNum)
		if err != nil {
			return nil, err
		}
		cells = append(cells, page.Cells...)
	}
	if t.pager.Validation() == ValidationStrict {
		for i := 1; i < len(cells); i++ {
			if cells[i].Rowid <= cells[i-1].Rowid {
				return nil, wrapErr("table_rows", ErrRowidNotMonotonic, map[string]any{
					"prev_rowid": cells[i-1].Rowid, "rowid": cells[i].Rowid,
				})
			}
		}
	}
	return cells, nil
}

// Count returns the total number of rows in the table — the sum of leaf
// cell counts across every descendant leaf, which is exactly what
// `COUNT(*)` must equal per spec.md §8 property 6.
func (t *TableBTree) Count(ctx context.Context) (int, error) {
	leaves, err := t.EnumerateLeaves(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, pageNum := range leaves {
		page, err := t.pager.ReadDecodedPage(ctx, pageNum)
		if err != nil {
			return 0, err
		}
		total += len(page.Cells)
	}
	return total, nil
}

// LookupByRowid implements spec.md §4.F's point lookup: binary search
// down from the root, following the interior cell whose separator rowid
// is the first one >= the search rowid, or the right-most child past
// the last separator. Returns (nil, false) — "not found" — rather than
// an error when the rowid genuinely isn't present.
func (t *TableBTree) LookupByRowid(ctx context.Context, rowid int64) (*Cell, bool, error) {
	return t.lookup(ctx, t.rootPage, rowid)
}

func (t *TableBTree) lookup(ctx context.Context, pageNum int, rowid int64) (*Cell, bool, error) {
	page, err := t.pager.ReadDecodedPage(ctx, pageNum)
	if err != nil {
		return nil, false, wrapErr("lookup_by_rowid", err, map[string]any{"page": pageNum})
	}
	if !page.Header.Type.IsTable() {
		return nil, false, wrapErr("lookup_by_rowid", ErrWrongBTreeKind, map[string]any{"page": pageNum, "type": page.Header.Type})
	}

	if page.Header.Type == PageLeafTable {
		i := sort.Search(len(page.Cells), func(i int) bool { return page.Cells[i].Rowid >= rowid })
		if i < len(page.Cells) && page.Cells[i].Rowid == rowid {
			cell := page.Cells[i]
			return &cell, true, nil
		}
		return nil, false, nil
	}

	// Interior: cells hold (left_child, separator_rowid) in ascending
	// order; rowids <= separator live in that cell's left subtree.
	i := sort.Search(len(page.Cells), func(i int) bool { return page.Cells[i].Rowid >= rowid })
	if i < len(page.Cells) {
		return t.lookup(ctx, int(page.Cells[i].LeftChild), rowid)
	}
	return t.lookup(ctx, int(page.Header.RightmostChild), rowid)
}
