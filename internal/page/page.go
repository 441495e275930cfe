// Package page implements the node codec: typed accessors over a raw
// pager.Page for both leaf and internal B+ tree nodes. Every offset is a
// named constant so nothing reads or writes a magic number directly.
package page

import (
	"encoding/binary"

	"myjql/internal/pager"
	"myjql/internal/row"
)

// NodeType distinguishes a leaf page from an internal page.
type NodeType uint8

const (
	TypeInternal NodeType = 0
	TypeLeaf     NodeType = 1
)

// Common header: every node, leaf or internal, starts with these fields.
const (
	NodeTypeOffset   = 0
	NodeTypeSize     = 1
	IsRootOffset     = NodeTypeOffset + NodeTypeSize
	IsRootSize       = 1
	ParentOffset     = IsRootOffset + IsRootSize
	ParentSize       = 4
	CommonHeaderSize = ParentOffset + ParentSize // 6
)

// Leaf header extends the common header with a cell count and the
// right-sibling link used for range scans.
const (
	LeafNumCellsOffset = CommonHeaderSize
	LeafNumCellsSize   = 4
	LeafNextLeafOffset = LeafNumCellsOffset + LeafNumCellsSize
	LeafNextLeafSize   = 4
	LeafHeaderSize     = LeafNextLeafOffset + LeafNextLeafSize // 14

	LeafKeySize   = row.KeySize
	LeafValueSize = row.ValueSize
	LeafCellSize  = LeafKeySize + LeafValueSize // 16

	leafSpace = pager.PageSize - LeafHeaderSize
	// The -1 slack (spec.md §3) guarantees a cell can always be written
	// into a "full" page before the caller decides whether to split.
	LeafMaxCells = leafSpace/LeafCellSize - 1

	LeafRightSplitCount = (LeafMaxCells + 1) / 2
	LeafLeftSplitCount  = (LeafMaxCells + 1) - LeafRightSplitCount
	LeafMinCells        = LeafLeftSplitCount - 1
)

// Internal header extends the common header with a key count and the
// page number of the node's rightmost child (the child with no
// corresponding key).
const (
	InternalNumKeysOffset    = CommonHeaderSize
	InternalNumKeysSize      = 4
	InternalRightChildOffset = InternalNumKeysOffset + InternalNumKeysSize
	InternalRightChildSize   = 4
	InternalHeaderSize       = InternalRightChildOffset + InternalRightChildSize // 14

	InternalKeySize   = row.KeySize
	InternalChildSize = 4
	InternalCellSize  = InternalChildSize + InternalKeySize

	internalSpace    = pager.PageSize - InternalHeaderSize
	InternalMaxCells = internalSpace/InternalCellSize - 1
	InternalMinCells = 1
)

func u32(b []byte) uint32       { return binary.LittleEndian.Uint32(b) }
func putU32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

// GetNodeType returns the type tag of node.
func GetNodeType(node *pager.Page) NodeType { return NodeType(node[NodeTypeOffset]) }

// SetNodeType sets the type tag of node.
func SetNodeType(node *pager.Page, t NodeType) { node[NodeTypeOffset] = byte(t) }

// IsRoot reports whether node is currently the tree's root page.
func IsRoot(node *pager.Page) bool { return node[IsRootOffset] != 0 }

// SetIsRoot marks node as root or not.
func SetIsRoot(node *pager.Page, v bool) {
	if v {
		node[IsRootOffset] = 1
	} else {
		node[IsRootOffset] = 0
	}
}

// Parent returns the page number of node's parent.
func Parent(node *pager.Page) uint32 { return u32(node[ParentOffset:]) }

// SetParent sets the page number of node's parent.
func SetParent(node *pager.Page, p uint32) { putU32(node[ParentOffset:], p) }

// LeafNumCells returns the number of cells stored in a leaf node.
func LeafNumCells(node *pager.Page) uint32 { return u32(node[LeafNumCellsOffset:]) }

// SetLeafNumCells sets the number of cells stored in a leaf node.
func SetLeafNumCells(node *pager.Page, n uint32) { putU32(node[LeafNumCellsOffset:], n) }

// LeafNextLeaf returns the page number of the next leaf in key order, or
// 0 if node is the rightmost leaf.
func LeafNextLeaf(node *pager.Page) uint32 { return u32(node[LeafNextLeafOffset:]) }

// SetLeafNextLeaf sets the next-leaf link.
func SetLeafNextLeaf(node *pager.Page, p uint32) { putU32(node[LeafNextLeafOffset:], p) }

func leafCellOffset(i uint32) int { return LeafHeaderSize + int(i)*LeafCellSize }

// LeafCell returns the raw bytes of cell i (key followed by value).
func LeafCell(node *pager.Page, i uint32) []byte {
	off := leafCellOffset(i)
	return node[off : off+LeafCellSize]
}

// SetLeafCell overwrites cell i with key and value.
func SetLeafCell(node *pager.Page, i uint32, key row.Key, a uint32) {
	off := leafCellOffset(i)
	copy(node[off:off+LeafKeySize], key[:])
	putU32(node[off+LeafKeySize:], a)
}

// LeafKey returns the key of cell i.
func LeafKey(node *pager.Page, i uint32) row.Key {
	var k row.Key
	copy(k[:], LeafCell(node, i)[:LeafKeySize])
	return k
}

// LeafValue returns the value (column a) of cell i.
func LeafValue(node *pager.Page, i uint32) uint32 {
	return u32(LeafCell(node, i)[LeafKeySize:])
}

// InitializeLeaf zeroes node and marks it as an empty leaf.
func InitializeLeaf(node *pager.Page) {
	*node = pager.Page{}
	SetNodeType(node, TypeLeaf)
	SetIsRoot(node, false)
	SetLeafNumCells(node, 0)
	SetLeafNextLeaf(node, 0)
}

// InternalNumKeys returns the number of keys stored in an internal node.
// The node has InternalNumKeys()+1 children.
func InternalNumKeys(node *pager.Page) uint32 { return u32(node[InternalNumKeysOffset:]) }

// SetInternalNumKeys sets the number of keys stored in an internal node.
func SetInternalNumKeys(node *pager.Page, n uint32) { putU32(node[InternalNumKeysOffset:], n) }

// InternalRightChild returns the page number of the rightmost child.
func InternalRightChild(node *pager.Page) uint32 { return u32(node[InternalRightChildOffset:]) }

// SetInternalRightChild sets the page number of the rightmost child.
func SetInternalRightChild(node *pager.Page, p uint32) { putU32(node[InternalRightChildOffset:], p) }

func internalCellOffset(i uint32) int { return InternalHeaderSize + int(i)*InternalCellSize }

// InternalChild returns the page number of the i-th child (0-indexed,
// left to right); i == InternalNumKeys(node) returns the rightmost
// child.
func InternalChild(node *pager.Page, i uint32) uint32 {
	if i == InternalNumKeys(node) {
		return InternalRightChild(node)
	}
	off := internalCellOffset(i)
	return u32(node[off:])
}

// SetInternalChild sets the page number of the i-th child.
func SetInternalChild(node *pager.Page, i uint32, p uint32) {
	if i == InternalNumKeys(node) {
		SetInternalRightChild(node, p)
		return
	}
	off := internalCellOffset(i)
	putU32(node[off:], p)
}

// InternalKey returns the i-th separator key: every key in child i is <=
// InternalKey(i) and every key in child i+1 is >= InternalKey(i) (equal
// keys can sit on both sides, since duplicates are allowed).
func InternalKey(node *pager.Page, i uint32) row.Key {
	var k row.Key
	off := internalCellOffset(i) + InternalChildSize
	copy(k[:], node[off:off+InternalKeySize])
	return k
}

// SetInternalKey sets the i-th separator key.
func SetInternalKey(node *pager.Page, i uint32, key row.Key) {
	off := internalCellOffset(i) + InternalChildSize
	copy(node[off:off+InternalKeySize], key[:])
}

// InitializeInternal zeroes node and marks it as an empty internal node.
func InitializeInternal(node *pager.Page) {
	*node = pager.Page{}
	SetNodeType(node, TypeInternal)
	SetIsRoot(node, false)
	SetInternalNumKeys(node, 0)
}

// LeafMaxKey returns the key of a leaf's last cell. Internal nodes have
// no equivalent pure accessor: their max key is their rightmost child's
// max key, which requires descending through the pager to find.
func LeafMaxKey(node *pager.Page) row.Key {
	return LeafKey(node, LeafNumCells(node)-1)
}
