// Package btree implements the disk-resident B+ tree: node search,
// insertion with cascading splits, deletion with cascading
// redistribute/merge, and an ordered cursor for range scans. Every node
// lives in exactly one pager.Page, addressed through internal/page's
// accessors.
package btree

import (
	"fmt"

	"myjql/internal/page"
	"myjql/internal/pager"
	"myjql/internal/row"
)

// rootPageNum is fixed: page 0 is always the tree's root, for the
// lifetime of the table.
const rootPageNum uint32 = 0

// Tree is a handle on one table file's B+ tree.
type Tree struct {
	pager *pager.Pager
}

// Open opens the table file at path, initializing a fresh empty leaf
// root if the file is brand new.
func Open(path string) (*Tree, error) {
	p, err := pager.Open(path)
	if err != nil {
		return nil, fmt.Errorf("btree: open: %w", err)
	}
	t := &Tree{pager: p}
	if p.NumPages() == 0 {
		root, err := p.GetPage(rootPageNum)
		if err != nil {
			return nil, fmt.Errorf("btree: init root: %w", err)
		}
		page.InitializeLeaf(root)
		page.SetIsRoot(root, true)
	}
	return t, nil
}

// Close flushes all dirty pages and closes the underlying file.
func (t *Tree) Close() error {
	if err := t.pager.Close(); err != nil {
		return fmt.Errorf("btree: close: %w", err)
	}
	return nil
}

func (t *Tree) getPage(n uint32) (*pager.Page, error) {
	pg, err := t.pager.GetPage(n)
	if err != nil {
		return nil, fmt.Errorf("btree: get page %d: %w", n, err)
	}
	return pg, nil
}

// maxKey returns the largest key reachable under the subtree rooted at
// pageNum.
func (t *Tree) maxKey(pageNum uint32) (row.Key, error) {
	node, err := t.getPage(pageNum)
	if err != nil {
		return row.Key{}, err
	}
	if page.GetNodeType(node) == page.TypeLeaf {
		return page.LeafMaxKey(node), nil
	}
	return t.maxKey(page.InternalRightChild(node))
}
