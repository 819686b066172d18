package bvh

import "github.com/giuliom95/baker2/types"

// Bvh node definition. Nodes are stored in a flat list; inner nodes reference
// their children by index while leaves reference a contiguous run of
// primitives in a list owned by the caller.
type Node struct {
	// Bounding box extents.
	Min types.Vec3
	Max types.Vec3

	// For inner nodes these are the left and right child indices. For
	// leaves they hold the index of the first primitive and the primitive
	// count.
	data [2]uint32

	leaf bool
}

// Set the left and right child node indices.
func (n *Node) SetChildNodes(left, right uint32) {
	n.data = [2]uint32{left, right}
	n.leaf = false
}

// Mark node as a leaf containing count primitives starting at offset.
func (n *Node) SetPrimitives(offset, count uint32) {
	n.data = [2]uint32{offset, count}
	n.leaf = true
}

// Returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.leaf
}

// Get the left and right child indices of an inner node.
func (n *Node) Children() (left, right uint32) {
	return n.data[0], n.data[1]
}

// Get the first primitive index and primitive count of a leaf node.
func (n *Node) Primitives() (offset, count uint32) {
	return n.data[0], n.data[1]
}
