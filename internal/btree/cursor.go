package btree

import (
	"sort"

	"myjql/internal/page"
	"myjql/internal/pager"
	"myjql/internal/row"
)

// Cursor is a position within the table: a leaf page and a cell index
// within it. It satisfies the teacher's index.Iterator shape
// (Next/Key/Value/Error/Close), generalized to duplicate keys, for both
// point queries (the leftmost match) and range scans.
type Cursor struct {
	tree       *Tree
	pageNum    uint32
	cellNum    uint32
	endOfTable bool
	started    bool
	err        error
}

// Start returns a cursor positioned before the first cell of the table,
// found by descending the root's left spine. Call Next to read the
// first row.
func (t *Tree) Start() (*Cursor, error) {
	pageNum := rootPageNum
	for {
		node, err := t.getPage(pageNum)
		if err != nil {
			return nil, err
		}
		if page.GetNodeType(node) == page.TypeLeaf {
			break
		}
		pageNum = page.InternalChild(node, 0)
	}
	node, err := t.getPage(pageNum)
	if err != nil {
		return nil, err
	}
	return &Cursor{tree: t, pageNum: pageNum, cellNum: 0, endOfTable: page.LeafNumCells(node) == 0}, nil
}

// Find returns a cursor positioned at the leftmost cell whose key is >=
// key — the standard lower-bound position used both to locate the first
// of a run of duplicates and to find an insertion point. Insert and
// Delete read its pageNum/cellNum fields directly rather than iterating
// through Next.
func (t *Tree) Find(key row.Key) (*Cursor, error) {
	pageNum := rootPageNum
	for {
		node, err := t.getPage(pageNum)
		if err != nil {
			return nil, err
		}
		if page.GetNodeType(node) == page.TypeLeaf {
			cellNum := leafFindCell(node, key)
			return &Cursor{tree: t, pageNum: pageNum, cellNum: cellNum, endOfTable: false}, nil
		}
		pageNum = internalFindChild(node, key)
	}
}

// leafFindCell returns the index of the leftmost cell in node whose key
// is >= key, i.e. the lower bound — node.LeafNumCells() if every cell is
// smaller.
func leafFindCell(node *pager.Page, key row.Key) uint32 {
	n := int(page.LeafNumCells(node))
	i := sort.Search(n, func(i int) bool {
		return row.Compare(page.LeafKey(node, uint32(i)), key) >= 0
	})
	return uint32(i)
}

// internalFindChild returns the child page number to descend into to
// find key: the first child whose separator key is >= key, or the
// rightmost child if key exceeds every separator.
func internalFindChild(node *pager.Page, key row.Key) uint32 {
	numKeys := int(page.InternalNumKeys(node))
	i := sort.Search(numKeys, func(i int) bool {
		return row.Compare(page.InternalKey(node, uint32(i)), key) >= 0
	})
	return page.InternalChild(node, uint32(i))
}

// Next advances the cursor and reports whether a row is now available
// through Key/Value, in the style of database/sql's Rows: callers loop
// `for cur.Next() { ... }` and consult Error once the loop ends.
func (c *Cursor) Next() bool {
	if c.err != nil || c.endOfTable {
		return false
	}
	if !c.started {
		c.started = true
	} else if err := c.advance(); err != nil {
		c.err = err
		return false
	}
	if c.endOfTable {
		return false
	}
	node, err := c.tree.getPage(c.pageNum)
	if err != nil {
		c.err = err
		return false
	}
	return c.cellNum < page.LeafNumCells(node)
}

// Key returns column b at the cursor's current position.
func (c *Cursor) Key() string {
	r, err := c.row()
	if err != nil {
		c.err = err
		return ""
	}
	return r.B
}

// Value returns column a at the cursor's current position.
func (c *Cursor) Value() uint32 {
	r, err := c.row()
	if err != nil {
		c.err = err
		return 0
	}
	return r.A
}

// Error returns the first error encountered by Next or a field accessor.
func (c *Cursor) Error() error { return c.err }

// Close releases the cursor. A cursor never owns pager resources — the
// Tree's pager outlives every cursor drawn from it — so this is a no-op
// that exists only to satisfy the iterator shape.
func (c *Cursor) Close() error { return nil }

func (c *Cursor) row() (row.Row, error) {
	node, err := c.tree.getPage(c.pageNum)
	if err != nil {
		return row.Row{}, err
	}
	cell := page.LeafCell(node, c.cellNum)
	return row.Deserialize(cell), nil
}

// advance moves the cursor to the next cell, crossing into the next
// leaf via the sibling link when it runs off the end of the current one.
func (c *Cursor) advance() error {
	node, err := c.tree.getPage(c.pageNum)
	if err != nil {
		return err
	}
	c.cellNum++
	if c.cellNum >= page.LeafNumCells(node) {
		next := page.LeafNextLeaf(node)
		if next == 0 {
			c.endOfTable = true
			return nil
		}
		c.pageNum = next
		c.cellNum = 0
	}
	return nil
}
