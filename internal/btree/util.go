package btree

import (
	"myjql/internal/page"
	"myjql/internal/pager"
	"myjql/internal/row"
)

// childrenOf extracts the full child-page-number list of an internal
// node: NumKeys()+1 entries, the rightmost child last.
func childrenOf(node *pager.Page) []uint32 {
	numKeys := page.InternalNumKeys(node)
	children := make([]uint32, numKeys+1)
	for i := uint32(0); i < numKeys; i++ {
		children[i] = page.InternalChild(node, i)
	}
	children[numKeys] = page.InternalRightChild(node)
	return children
}

// keysOf extracts the full separator-key list of an internal node.
func keysOf(node *pager.Page) []row.Key {
	numKeys := page.InternalNumKeys(node)
	keys := make([]row.Key, numKeys)
	for i := uint32(0); i < numKeys; i++ {
		keys[i] = page.InternalKey(node, i)
	}
	return keys
}

// writeInternalNode rewrites node in place from a full children/keys
// pair (len(children) == len(keys)+1), preserving node's parent and
// is-root flags.
func writeInternalNode(node *pager.Page, children []uint32, keys []row.Key) {
	isRoot := page.IsRoot(node)
	parent := page.Parent(node)
	page.InitializeInternal(node)
	page.SetIsRoot(node, isRoot)
	page.SetParent(node, parent)
	page.SetInternalNumKeys(node, uint32(len(keys)))
	for i, k := range keys {
		page.SetInternalChild(node, uint32(i), children[i])
		page.SetInternalKey(node, uint32(i), k)
	}
	page.SetInternalRightChild(node, children[len(children)-1])
}

// setParentOf rewrites the parent pointer of every child listed, used
// after relocating an internal node's contents to a new page.
func (t *Tree) setParentOf(children []uint32, parent uint32) error {
	for _, c := range children {
		node, err := t.getPage(c)
		if err != nil {
			return err
		}
		page.SetParent(node, parent)
	}
	return nil
}

// findChildPos returns the index of childPage within parent's child
// list (0..NumKeys inclusive).
func findChildPos(parent *pager.Page, childPage uint32) uint32 {
	numKeys := page.InternalNumKeys(parent)
	for i := uint32(0); i <= numKeys; i++ {
		if page.InternalChild(parent, i) == childPage {
			return i
		}
	}
	return numKeys
}
