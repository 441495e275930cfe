package btree

import (
	"fmt"
	"slices"

	"myjql/internal/page"
	"myjql/internal/pager"
	"myjql/internal/row"
)

// Insert adds a new row. Duplicate b values are permitted; a new row
// with a key equal to existing ones is placed at the leftmost position
// among its duplicates, matching Find's lower-bound semantics.
func (t *Tree) Insert(r row.Row) error {
	key := row.EncodeKey(r.B)
	cur, err := t.Find(key)
	if err != nil {
		return fmt.Errorf("btree: insert: %w", err)
	}
	if err := t.leafInsert(cur.pageNum, cur.cellNum, key, r.A); err != nil {
		return fmt.Errorf("btree: insert: %w", err)
	}
	return nil
}

// leafInsert places (key, a) at position cellNum in the leaf at
// pageNum, splitting first if the leaf is already full.
func (t *Tree) leafInsert(pageNum, cellNum uint32, key row.Key, a uint32) error {
	node, err := t.getPage(pageNum)
	if err != nil {
		return err
	}
	numCells := page.LeafNumCells(node)
	if numCells >= page.LeafMaxCells {
		return t.splitLeafAndInsert(pageNum, cellNum, key, a)
	}

	if cellNum < numCells {
		shiftLeafCellsRight(node, cellNum, numCells)
	}
	page.SetLeafCell(node, cellNum, key, a)
	page.SetLeafNumCells(node, numCells+1)

	if cellNum == numCells && !page.IsRoot(node) {
		return t.updateAncestorKeys(pageNum, key)
	}
	return nil
}

func shiftLeafCellsRight(node *pager.Page, from, numCells uint32) {
	for i := numCells; i > from; i-- {
		copy(page.LeafCell(node, i), page.LeafCell(node, i-1))
	}
}

// splitLeafAndInsert splits a full leaf into two: the original page keeps
// the first LeafLeftSplitCount cells and a newly allocated page, linked in
// as its right sibling, takes the remaining LeafRightSplitCount, with the
// new cell placed in whichever half it belongs in; the result is then
// linked into the parent.
func (t *Tree) splitLeafAndInsert(oldPageNum, cellNum uint32, key row.Key, a uint32) error {
	oldNode, err := t.getPage(oldPageNum)
	if err != nil {
		return err
	}

	newPageNum := t.pager.UnusedPageNum()
	newNode, err := t.getPage(newPageNum)
	if err != nil {
		return err
	}
	page.InitializeLeaf(newNode)
	page.SetParent(newNode, page.Parent(oldNode))

	// Gather all LeafMaxCells existing cells plus the incoming one, in
	// order, into a flat buffer of keys/values, then redistribute them
	// between the two pages.
	total := uint32(page.LeafMaxCells + 1)
	keys := make([]row.Key, total)
	vals := make([]uint32, total)
	src := uint32(0)
	for dst := uint32(0); dst < total; dst++ {
		if dst == cellNum {
			keys[dst] = key
			vals[dst] = a
			continue
		}
		keys[dst] = page.LeafKey(oldNode, src)
		vals[dst] = page.LeafValue(oldNode, src)
		src++
	}

	leftNode, rightNode := oldNode, newNode
	leftPageNum, rightPageNum := oldPageNum, newPageNum
	// The left sibling must sort before the right one; since oldNode
	// keeps its page number and newNode is freshly allocated, decide
	// placement by comparing which physical page ends up holding the
	// smaller keys is irrelevant to correctness as long as the
	// sibling chain and parent separators agree, so oldNode becomes
	// the left half and newNode the right half.
	leftCount := uint32(page.LeafLeftSplitCount)
	rightCount := uint32(page.LeafRightSplitCount)

	page.SetLeafNumCells(leftNode, leftCount)
	for i := uint32(0); i < leftCount; i++ {
		page.SetLeafCell(leftNode, i, keys[i], vals[i])
	}
	page.SetLeafNumCells(rightNode, rightCount)
	for i := uint32(0); i < rightCount; i++ {
		page.SetLeafCell(rightNode, i, keys[leftCount+i], vals[leftCount+i])
	}

	page.SetLeafNextLeaf(rightNode, page.LeafNextLeaf(leftNode))
	page.SetLeafNextLeaf(leftNode, rightPageNum)

	if page.IsRoot(leftNode) {
		return t.createNewRoot(leftPageNum, rightPageNum)
	}
	parentPageNum := page.Parent(leftNode)
	oldMax := page.LeafKey(leftNode, leftCount-1)
	return t.internalInsertChild(parentPageNum, leftPageNum, rightPageNum, oldMax)
}

// createNewRoot is called exactly when a split lands on the current
// root page. Page 0 always stays the root, so the root's pre-split
// contents are relocated to a fresh left page, the left page becomes
// the parent of its own former children (if it was internal), and root
// is rebuilt as a fresh internal node with two children: the relocated
// left page and rightPageNum.
func (t *Tree) createNewRoot(rootContentPageNum, rightPageNum uint32) error {
	root, err := t.getPage(rootContentPageNum)
	if err != nil {
		return err
	}
	rightNode, err := t.getPage(rightPageNum)
	if err != nil {
		return err
	}

	newLeftPageNum := t.pager.UnusedPageNum()
	newLeft, err := t.getPage(newLeftPageNum)
	if err != nil {
		return err
	}
	*newLeft = *root
	page.SetIsRoot(newLeft, false)
	page.SetParent(newLeft, rootPageNum)

	var leftMax row.Key
	if page.GetNodeType(newLeft) == page.TypeInternal {
		if err := t.setParentOf(childrenOf(newLeft), newLeftPageNum); err != nil {
			return err
		}
		leftMax, err = t.maxKey(newLeftPageNum)
		if err != nil {
			return err
		}
	} else {
		leftMax = page.LeafKey(newLeft, page.LeafNumCells(newLeft)-1)
	}

	page.InitializeInternal(root)
	page.SetIsRoot(root, true)
	page.SetParent(root, 0)
	page.SetInternalNumKeys(root, 1)
	page.SetInternalChild(root, 0, newLeftPageNum)
	page.SetInternalKey(root, 0, leftMax)
	page.SetInternalRightChild(root, rightPageNum)

	page.SetParent(rightNode, rootPageNum)
	return nil
}

// internalInsertChild records that oldChild (already linked into
// parent) was split, producing newChild as its new right sibling with
// separator key oldChildMaxKey, inserting a fresh separator/child pair
// into parent and splitting parent itself if it's already full.
func (t *Tree) internalInsertChild(parentPageNum, oldChild, newChild uint32, oldChildMaxKey row.Key) error {
	parent, err := t.getPage(parentPageNum)
	if err != nil {
		return err
	}

	children := childrenOf(parent)
	keys := keysOf(parent)
	pos := findChildPos(parent, oldChild)

	newChildren := slices.Insert(children, int(pos)+1, newChild)
	newKeys := slices.Insert(keys, int(pos), oldChildMaxKey)

	if uint32(len(newKeys)) <= page.InternalMaxCells {
		writeInternalNode(parent, newChildren, newKeys)
		return nil
	}
	return t.splitInternal(parentPageNum, newChildren, newKeys)
}

// splitInternal splits an overfull internal node (given its full,
// already-merged children/keys lists of length MaxCells+2 /
// MaxCells+1) into two internal nodes and links the result into its
// own parent, recursing up through internalInsertChild as needed.
// keys has length N+1, where N is the node's key count before the
// insert that overflowed it; spec.md §4.4's even "(N+1)/2" split point
// is exactly len(keys)/2.
func (t *Tree) splitInternal(pageNum uint32, children []uint32, keys []row.Key) error {
	node, err := t.getPage(pageNum)
	if err != nil {
		return err
	}

	leftCount := len(keys) / 2
	leftChildren := children[:leftCount+1]
	leftKeys := keys[:leftCount]
	rightChildren := children[leftCount+1:]
	rightKeys := keys[leftCount+1:]
	mid := keys[leftCount]

	newPageNum := t.pager.UnusedPageNum()
	newNode, err := t.getPage(newPageNum)
	if err != nil {
		return err
	}
	page.InitializeInternal(newNode)
	page.SetParent(newNode, page.Parent(node))
	writeInternalNode(newNode, rightChildren, rightKeys)
	if err := t.setParentOf(rightChildren, newPageNum); err != nil {
		return err
	}

	wasRoot := page.IsRoot(node)
	writeInternalNode(node, leftChildren, leftKeys)
	if err := t.setParentOf(leftChildren, pageNum); err != nil {
		return err
	}

	if wasRoot {
		return t.createNewRoot(pageNum, newPageNum)
	}
	parentPageNum := page.Parent(node)
	return t.internalInsertChild(parentPageNum, pageNum, newPageNum, mid)
}

// updateAncestorKeys propagates a subtree's new max key up through
// ancestor separators. It stops as soon as it finds an ancestor level
// where pageNum sits behind a stored separator (updating it there is
// enough, since that ancestor's own max is unaffected); if pageNum is
// its parent's unkeyed rightmost child, the parent's own max just
// changed too, so the walk continues one level up.
func (t *Tree) updateAncestorKeys(pageNum uint32, newMax row.Key) error {
	node, err := t.getPage(pageNum)
	if err != nil {
		return err
	}
	if page.IsRoot(node) {
		return nil
	}
	parentPageNum := page.Parent(node)
	parent, err := t.getPage(parentPageNum)
	if err != nil {
		return err
	}
	pos := findChildPos(parent, pageNum)
	if pos < page.InternalNumKeys(parent) {
		page.SetInternalKey(parent, pos, newMax)
		return nil
	}
	return t.updateAncestorKeys(parentPageNum, newMax)
}
