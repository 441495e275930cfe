package btree

import (
	"fmt"
	"slices"

	"myjql/internal/page"
	"myjql/internal/row"
)

// Delete removes every row whose key equals b, one cell at a time: find
// the leftmost match, delete it, repeat until the position no longer
// holds a match. A key with no matches is a no-op.
func (t *Tree) Delete(b string) error {
	key := row.EncodeKey(b)
	for {
		cur, err := t.Find(key)
		if err != nil {
			return fmt.Errorf("btree: delete: %w", err)
		}
		node, err := t.getPage(cur.pageNum)
		if err != nil {
			return fmt.Errorf("btree: delete: %w", err)
		}
		if cur.cellNum >= page.LeafNumCells(node) {
			// Find can stop just past a leaf whose separator still equals
			// key after that leaf's own copies were removed; the remaining
			// copies then start the next leaf.
			next := page.LeafNextLeaf(node)
			if next == 0 {
				return nil
			}
			if node, err = t.getPage(next); err != nil {
				return fmt.Errorf("btree: delete: %w", err)
			}
			cur.pageNum, cur.cellNum = next, 0
			if page.LeafNumCells(node) == 0 {
				return nil
			}
		}
		if row.Compare(page.LeafKey(node, cur.cellNum), key) != 0 {
			return nil
		}
		if err := t.leafDelete(cur.pageNum, cur.cellNum); err != nil {
			return fmt.Errorf("btree: delete: %w", err)
		}
	}
}

func (t *Tree) leafDelete(pageNum, i uint32) error {
	node, err := t.getPage(pageNum)
	if err != nil {
		return err
	}
	numCells := page.LeafNumCells(node)
	for j := i; j < numCells-1; j++ {
		copy(page.LeafCell(node, j), page.LeafCell(node, j+1))
	}
	page.SetLeafNumCells(node, numCells-1)
	return t.mergeOrRedistributeLeaf(pageNum)
}

// siblingInfo locates pageNum's position among its parent's children and
// reports the adjoining pair to operate on: leftPos/leftPos+1 name the
// two children under the same parent that either redistribute between
// each other or merge; nodeIsLeft tells the caller which one pageNum is.
func (t *Tree) siblingInfo(pageNum uint32) (parentPageNum, leftPos uint32, nodeIsLeft bool, err error) {
	node, err := t.getPage(pageNum)
	if err != nil {
		return 0, 0, false, err
	}
	parentPageNum = page.Parent(node)
	parent, err := t.getPage(parentPageNum)
	if err != nil {
		return 0, 0, false, err
	}
	pos := findChildPos(parent, pageNum)
	numKeys := page.InternalNumKeys(parent)
	if pos == numKeys {
		return parentPageNum, pos - 1, false, nil
	}
	return parentPageNum, pos, true, nil
}

func (t *Tree) mergeOrRedistributeLeaf(pageNum uint32) error {
	node, err := t.getPage(pageNum)
	if err != nil {
		return err
	}
	if page.IsRoot(node) {
		return t.adjustRoot()
	}
	if page.LeafNumCells(node) >= page.LeafMinCells {
		return nil
	}

	parentPageNum, leftPos, nodeIsLeft, err := t.siblingInfo(pageNum)
	if err != nil {
		return err
	}
	parent, err := t.getPage(parentPageNum)
	if err != nil {
		return err
	}
	leftPageNum := page.InternalChild(parent, leftPos)
	rightPageNum := page.InternalChild(parent, leftPos+1)
	siblingPageNum := leftPageNum
	if nodeIsLeft {
		siblingPageNum = rightPageNum
	}
	sibling, err := t.getPage(siblingPageNum)
	if err != nil {
		return err
	}
	if page.LeafNumCells(sibling) > page.LeafMinCells {
		return t.redistributeLeaf(parentPageNum, leftPos, nodeIsLeft)
	}
	return t.mergeLeaves(parentPageNum, leftPos)
}

// redistributeLeaf moves one cell between the leaf pair at
// leftPos/leftPos+1 under parentPageNum to bring the deficient side back
// to minimum fill. borrowFromRight is true when the left child is the
// deficient one (it pulls the right sibling's first cell); false when
// the right child is deficient (it pulls the left sibling's last cell).
func (t *Tree) redistributeLeaf(parentPageNum, leftPos uint32, borrowFromRight bool) error {
	parent, err := t.getPage(parentPageNum)
	if err != nil {
		return err
	}
	leftPageNum := page.InternalChild(parent, leftPos)
	rightPageNum := page.InternalChild(parent, leftPos+1)
	left, err := t.getPage(leftPageNum)
	if err != nil {
		return err
	}
	right, err := t.getPage(rightPageNum)
	if err != nil {
		return err
	}

	if borrowFromRight {
		leftCells := page.LeafNumCells(left)
		k, v := page.LeafKey(right, 0), page.LeafValue(right, 0)
		page.SetLeafCell(left, leftCells, k, v)
		page.SetLeafNumCells(left, leftCells+1)

		rightCells := page.LeafNumCells(right)
		for j := uint32(0); j < rightCells-1; j++ {
			copy(page.LeafCell(right, j), page.LeafCell(right, j+1))
		}
		page.SetLeafNumCells(right, rightCells-1)
		page.SetInternalKey(parent, leftPos, k)
	} else {
		leftCells := page.LeafNumCells(left)
		k, v := page.LeafKey(left, leftCells-1), page.LeafValue(left, leftCells-1)

		rightCells := page.LeafNumCells(right)
		shiftLeafCellsRight(right, 0, rightCells)
		page.SetLeafCell(right, 0, k, v)
		page.SetLeafNumCells(right, rightCells+1)

		page.SetLeafNumCells(left, leftCells-1)
		page.SetInternalKey(parent, leftPos, page.LeafKey(left, leftCells-2))
	}
	return nil
}

// mergeLeaves combines the leaf pair at leftPos/leftPos+1 into the left
// one, relinks the leaf chain, and removes the consumed separator from
// the parent.
func (t *Tree) mergeLeaves(parentPageNum, leftPos uint32) error {
	parent, err := t.getPage(parentPageNum)
	if err != nil {
		return err
	}
	leftPageNum := page.InternalChild(parent, leftPos)
	rightPageNum := page.InternalChild(parent, leftPos+1)
	left, err := t.getPage(leftPageNum)
	if err != nil {
		return err
	}
	right, err := t.getPage(rightPageNum)
	if err != nil {
		return err
	}

	leftCells := page.LeafNumCells(left)
	rightCells := page.LeafNumCells(right)
	for j := uint32(0); j < rightCells; j++ {
		page.SetLeafCell(left, leftCells+j, page.LeafKey(right, j), page.LeafValue(right, j))
	}
	page.SetLeafNumCells(left, leftCells+rightCells)
	page.SetLeafNextLeaf(left, page.LeafNextLeaf(right))

	return t.removeInternalSeparator(parentPageNum, leftPos)
}

func (t *Tree) mergeOrRedistributeInternal(pageNum uint32) error {
	node, err := t.getPage(pageNum)
	if err != nil {
		return err
	}
	if page.IsRoot(node) {
		return t.adjustRoot()
	}
	if page.InternalNumKeys(node) >= page.InternalMinCells {
		return nil
	}

	parentPageNum, leftPos, nodeIsLeft, err := t.siblingInfo(pageNum)
	if err != nil {
		return err
	}
	parent, err := t.getPage(parentPageNum)
	if err != nil {
		return err
	}
	leftPageNum := page.InternalChild(parent, leftPos)
	rightPageNum := page.InternalChild(parent, leftPos+1)
	siblingPageNum := leftPageNum
	if nodeIsLeft {
		siblingPageNum = rightPageNum
	}
	sibling, err := t.getPage(siblingPageNum)
	if err != nil {
		return err
	}
	if page.InternalNumKeys(sibling) > page.InternalMinCells {
		return t.redistributeInternal(parentPageNum, leftPos, nodeIsLeft)
	}
	return t.mergeInternal(parentPageNum, leftPos)
}

// redistributeInternal moves one key/child pair between the internal
// pair at leftPos/leftPos+1, routing it through the parent's separator
// the same way internal insertion's append case does: the separator
// comes down into the deficient side and the donated child is re-parented.
func (t *Tree) redistributeInternal(parentPageNum, leftPos uint32, borrowFromRight bool) error {
	parent, err := t.getPage(parentPageNum)
	if err != nil {
		return err
	}
	leftPageNum := page.InternalChild(parent, leftPos)
	rightPageNum := page.InternalChild(parent, leftPos+1)
	left, err := t.getPage(leftPageNum)
	if err != nil {
		return err
	}
	right, err := t.getPage(rightPageNum)
	if err != nil {
		return err
	}
	sep := page.InternalKey(parent, leftPos)

	lc, lk := childrenOf(left), keysOf(left)
	rc, rk := childrenOf(right), keysOf(right)

	var moved uint32
	var newSep row.Key
	if borrowFromRight {
		moved = rc[0]
		newSep = rk[0]
		lc = append(lc, moved)
		lk = append(lk, sep)
		rc = rc[1:]
		rk = rk[1:]
		if err := t.setParentOf([]uint32{moved}, leftPageNum); err != nil {
			return err
		}
	} else {
		moved = lc[len(lc)-1]
		newSep = lk[len(lk)-1]
		lc = lc[:len(lc)-1]
		lk = lk[:len(lk)-1]
		rc = append([]uint32{moved}, rc...)
		rk = append([]row.Key{sep}, rk...)
		if err := t.setParentOf([]uint32{moved}, rightPageNum); err != nil {
			return err
		}
	}
	writeInternalNode(left, lc, lk)
	writeInternalNode(right, rc, rk)
	page.SetInternalKey(parent, leftPos, newSep)
	return nil
}

// mergeInternal combines the internal pair at leftPos/leftPos+1 into the
// left one, pulling the parent's separator down as the new middle key,
// then removes the consumed separator from the parent.
func (t *Tree) mergeInternal(parentPageNum, leftPos uint32) error {
	parent, err := t.getPage(parentPageNum)
	if err != nil {
		return err
	}
	leftPageNum := page.InternalChild(parent, leftPos)
	rightPageNum := page.InternalChild(parent, leftPos+1)
	left, err := t.getPage(leftPageNum)
	if err != nil {
		return err
	}
	right, err := t.getPage(rightPageNum)
	if err != nil {
		return err
	}
	sep := page.InternalKey(parent, leftPos)

	lc, lk := childrenOf(left), keysOf(left)
	rc, rk := childrenOf(right), keysOf(right)

	mergedChildren := append(lc, rc...)
	mergedKeys := append(append(lk, sep), rk...)

	writeInternalNode(left, mergedChildren, mergedKeys)
	if err := t.setParentOf(rc, leftPageNum); err != nil {
		return err
	}
	return t.removeInternalSeparator(parentPageNum, leftPos)
}

// removeInternalSeparator deletes the child at leftPos+1 and the
// separator key at leftPos from parentPageNum, then checks whether the
// parent itself has fallen below minimum fill.
func (t *Tree) removeInternalSeparator(parentPageNum, leftPos uint32) error {
	parent, err := t.getPage(parentPageNum)
	if err != nil {
		return err
	}
	children := slices.Delete(childrenOf(parent), int(leftPos)+1, int(leftPos)+2)
	keys := slices.Delete(keysOf(parent), int(leftPos), int(leftPos)+1)

	writeInternalNode(parent, children, keys)
	return t.mergeOrRedistributeInternal(parentPageNum)
}

// adjustRoot handles the two ways the root can change shape after a
// deletion settles: an empty leaf root simply stays (the table is
// empty but page 0 is never deallocated); an internal root that has
// been merged down to a single child collapses by copying that child's
// contents into page 0, shrinking the tree's height by one.
func (t *Tree) adjustRoot() error {
	root, err := t.getPage(rootPageNum)
	if err != nil {
		return err
	}
	if page.GetNodeType(root) == page.TypeLeaf {
		return nil
	}
	if page.InternalNumKeys(root) > 0 {
		return nil
	}

	onlyChildPageNum := page.InternalRightChild(root)
	child, err := t.getPage(onlyChildPageNum)
	if err != nil {
		return err
	}
	*root = *child
	page.SetIsRoot(root, true)
	page.SetParent(root, 0)
	if page.GetNodeType(root) == page.TypeInternal {
		if err := t.setParentOf(childrenOf(root), rootPageNum); err != nil {
			return err
		}
	}
	return nil
}
