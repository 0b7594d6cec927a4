package dualtree

import "math"

// LeafScale is the sentinel scale of a node at the finest level. Leaf nodes
// have no children and represent exactly one point.
const LeafScale = math.MinInt32

// Node is the read interface every spatial tree node exposes to the
// traversers and scoring policies. Nodes are owned by their tree and are
// never mutated during a traversal.
//
// Child 0 is by convention the self-child: it covers the same representative
// point as its parent at a finer scale. A node's scale is strictly coarser
// than the scales of all its children.
type Node interface {
	// Scale returns the coarseness level of the node (larger = coarser),
	// or LeafScale for a leaf.
	Scale() int

	// Point returns the index of the node's representative point, in the
	// tree's own (possibly permuted) index space.
	Point() int

	// Center returns the representative point's coordinates.
	Center() []float64

	// NumChildren returns the number of child nodes.
	NumChildren() int

	// Child returns the i-th child. Child 0 is the self-child.
	// Panics if i is out of range; that is a caller bug, not a runtime
	// condition.
	Child(i int) Node

	// FurthestDescendantDistance returns the exact distance from the
	// representative point to the furthest point in the subtree.
	FurthestDescendantDistance() float64

	// NumDescendants returns the number of distinct points in the subtree.
	NumDescendants() int

	// RangeDistance returns a lower and upper bound on the distance between
	// any point in this node's subtree and any point in other's subtree.
	// It is consumed by scoring policies, not by the traversers themselves.
	RangeDistance(other Node) (lo, hi float64)
}

// Tree is the read interface for the spatial trees consumed by the search
// orchestrators.
type Tree interface {
	// Root returns the root node, or nil for an empty tree.
	Root() Node

	// Data returns the flat row-major point data owned by the tree, in the
	// tree's own index space.
	Data() []float64

	// NumPoints returns the number of points in the tree.
	NumPoints() int

	// NumFeatures returns the dimensionality of each point.
	NumFeatures() int

	// OldFromNew returns the permutation mapping tree-order indices back to
	// original input indices, or nil if the build preserved input order.
	OldFromNew() []int
}

// nodeRangeDistance bounds the distance between any pair of descendants of
// a and b using the representative distance and both covering radii.
func nodeRangeDistance(metric DistanceMetric, a, b Node) (lo, hi float64) {
	d := metric.Distance(a.Center(), b.Center())
	slack := a.FurthestDescendantDistance() + b.FurthestDescendantDistance()
	lo = d - slack
	if lo < 0 {
		lo = 0
	}
	return lo, d + slack
}
