package btree

import (
	"fmt"

	"myjql/internal/page"
	"myjql/internal/row"
)

// Search returns every row whose key equals b, in key order (which, for
// equal keys, is insertion order among the duplicates already on the
// leftmost leaf — see Insert).
func (t *Tree) Search(b string) ([]row.Row, error) {
	key := row.EncodeKey(b)
	cur, err := t.Find(key)
	if err != nil {
		return nil, fmt.Errorf("btree: search: %w", err)
	}
	var rows []row.Row
	for cur.Next() {
		if row.Compare(row.EncodeKey(cur.Key()), key) != 0 {
			break
		}
		rows = append(rows, row.Row{A: cur.Value(), B: cur.Key()})
	}
	if err := cur.Error(); err != nil {
		return nil, fmt.Errorf("btree: search: %w", err)
	}
	return rows, nil
}

// LeafFillRatios walks the leaf chain left to right and reports, for
// each leaf, the fraction of LeafMaxCells currently occupied. It exists
// for introspection tooling (benchmarking, `.constants`-style
// diagnostics) rather than any query the shell exposes.
func (t *Tree) LeafFillRatios() ([]float64, error) {
	pageNum := rootPageNum
	for {
		node, err := t.getPage(pageNum)
		if err != nil {
			return nil, fmt.Errorf("btree: leaf fill ratios: %w", err)
		}
		if page.GetNodeType(node) == page.TypeLeaf {
			break
		}
		pageNum = page.InternalChild(node, 0)
	}

	var ratios []float64
	for {
		node, err := t.getPage(pageNum)
		if err != nil {
			return nil, fmt.Errorf("btree: leaf fill ratios: %w", err)
		}
		ratios = append(ratios, float64(page.LeafNumCells(node))/float64(page.LeafMaxCells))
		next := page.LeafNextLeaf(node)
		if next == 0 {
			return ratios, nil
		}
		pageNum = next
	}
}

// Traverse returns every row in the table in key order.
func (t *Tree) Traverse() ([]row.Row, error) {
	cur, err := t.Start()
	if err != nil {
		return nil, fmt.Errorf("btree: traverse: %w", err)
	}
	var rows []row.Row
	for cur.Next() {
		rows = append(rows, row.Row{A: cur.Value(), B: cur.Key()})
	}
	if err := cur.Error(); err != nil {
		return nil, fmt.Errorf("btree: traverse: %w", err)
	}
	return rows, nil
}
