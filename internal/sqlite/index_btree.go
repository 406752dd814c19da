package sqlite

import (
	"context"
	"sort"
)

// IndexBTree walks an index B-tree rooted at RootPage: records keyed by
// ascending indexed-column value, each holding the rowid of the
// matching table row, per spec.md §4.G.
//
// Unlike the table B-tree's rowid lookup, this traversal has no
// grounding in original_source/ — that source never implements index
// search at all, every query there is a full table scan plus in-memory
// filtering — so FindRowids is built directly from spec.md §4.G's
// described [L,R) partition-point recursion rather than adapted from
// an existing implementation.
type IndexBTree struct {
	pager    *Pager
	rootPage int
}

func NewIndexBTree(pager *Pager, rootPage int) *IndexBTree {
	return &IndexBTree{pager: pager, rootPage: rootPage}
}

// FindRowids returns the rowids of every index entry whose indexed
// column equals key, preserving discovery order.
func (t *IndexBTree) FindRowids(ctx context.Context, key Value) ([]int64, error) {
	return t.search(ctx, t.rootPage, key)
}

func (t *IndexBTree) search(ctx context.Context, pageNum int, key Value) ([]int64, error) {
	page, err := t.pager.ReadDecodedPage(ctx, pageNum)
	if err != nil {
		return nil, wrapErr("find_rowids", err, map[string]any{"page": pageNum})
	}
	if !page.Header.Type.IsIndex() {
		return nil, wrapErr("find_rowids", ErrWrongBTreeKind, map[string]any{"page": pageNum, "type": page.Header.Type})
	}

	n := len(page.Cells)
	keys := make([]Value, n)
	for i := range page.Cells {
		k, err := page.Cells[i].indexedColumn()
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}

	// L = count of cells whose key is strictly < target.
	// R = count of cells whose key is <= target.
	L := sort.Search(n, func(i int) bool { return Compare(keys[i], key) >= 0 })
	R := sort.Search(n, func(i int) bool { return Compare(keys[i], key) > 0 })

	isLeaf := page.Header.Type == PageLeafIndex

	var rowids []int64
	for i := L; i < R; i++ {
		rowid, err := page.Cells[i].IndexRowid()
		if err != nil {
			return nil, err
		}
		rowids = append(rowids, rowid)

		if !isLeaf {
			sub, err := t.search(ctx, int(page.Cells[i].LeftChild), key)
			if err != nil {
				return nil, err
			}
			rowids = append(rowids, sub...)
		}
	}

	if !isLeaf && R == n {
		sub, err := t.search(ctx, int(page.Header.RightmostChild), key)
		if err != nil {
			return nil, err
		}
		rowids = append(rowids, sub...)
	}

	return rowids, nil
}

// indexedColumn returns the first record value of an index cell — the
// indexed column itself, as opposed to the trailing rowid column.
func (c *Cell) indexedColumn() (Value, error) {
	if c.Record == nil || len(c.Record.Values) == 0 {
		return Value{}, wrapErr("indexed_column", ErrMalformedRecord, nil)
	}
	return c.Record.Values[0], nil
}
