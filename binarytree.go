package dualtree

import "sort"

// BinarySplitTree is a binary space-partitioning tree organized for the
// scale-based traversers. Internal splits follow the classic KD-tree build:
// sort on the dimension with the greatest spread and split at the median.
// Scales are derived from node height (leaves carry the LeafScale sentinel),
// and subtree bounds are ball bounds around the representative point rather
// than axis-aligned boxes, so any metric satisfying the triangle inequality
// works.
//
// A range that fits in a leaf is expanded into one node per point, with the
// representative as child 0, so the node/point conventions match the cover
// tree: child 0 shares the parent's representative and every point is
// exactly one leaf.
//
// The build physically permutes its copy of the data into tree order;
// OldFromNew maps tree-order indices back to the caller's ordering.
type BinarySplitTree struct {
	data       []float64 // flat row-major point data, permuted into tree order
	n          int
	dims       int
	leafSize   int
	metric     DistanceMetric
	oldFromNew []int
	root       *BinarySplitNode
}

// BinarySplitNode is a single node of a BinarySplitTree covering the
// tree-order index range [start, end). It implements Node.
type BinarySplitNode struct {
	tree     *BinarySplitTree
	start    int
	end      int
	scale    int
	furthest float64
	children []*BinarySplitNode
}

// NewBinarySplitTree builds a tree from flat row-major data with n points of
// dimensionality dims. leafSize controls how many points a split must exceed
// before it keeps splitting; values < 1 are treated as 1.
func NewBinarySplitTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *BinarySplitTree {
	if leafSize < 1 {
		leafSize = 1
	}

	src := make([]float64, len(data))
	copy(src, data)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	t := &BinarySplitTree{
		n:        n,
		dims:     dims,
		leafSize: leafSize,
		metric:   metric,
	}

	if n > 0 {
		t.root = t.buildNode(0, n, src, idx)
	}

	// Permute the data into tree order so node index ranges address it
	// directly.
	t.data = make([]float64, len(src))
	for i := 0; i < n; i++ {
		copy(t.data[i*dims:(i+1)*dims], src[idx[i]*dims:(idx[i]+1)*dims])
	}
	t.oldFromNew = idx

	if t.root != nil {
		t.finalize(t.root)
	}

	return t
}

// buildNode recursively splits idx[start:end], reading coordinates from src.
func (t *BinarySplitTree) buildNode(start, end int, src []float64, idx []int) *BinarySplitNode {
	count := end - start
	if count <= t.leafSize {
		return t.expandLeaf(start, end)
	}

	// Find the dimension with the greatest spread.
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < t.dims; d++ {
		lo, hi := src[idx[start]*t.dims+d], src[idx[start]*t.dims+d]
		for i := start + 1; i < end; i++ {
			v := src[idx[i]*t.dims+d]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi-lo > maxSpread {
			maxSpread = hi - lo
			splitDim = d
		}
	}

	// Sort by the split dimension and split at the median.
	sub := idx[start:end]
	sort.SliceStable(sub, func(i, j int) bool {
		return src[sub[i]*t.dims+splitDim] < src[sub[j]*t.dims+splitDim]
	})
	mid := start + count/2

	node := &BinarySplitNode{tree: t, start: start, end: end}
	node.children = append(node.children,
		t.buildNode(start, mid, src, idx),
		t.buildNode(mid, end, src, idx))
	return node
}

// expandLeaf turns the range [start, end) into leaf structure: a single
// point becomes a leaf; a larger range becomes an internal node with one
// single-point leaf per point, the representative first.
func (t *BinarySplitTree) expandLeaf(start, end int) *BinarySplitNode {
	if end-start == 1 {
		return &BinarySplitNode{tree: t, start: start, end: end, scale: LeafScale}
	}
	node := &BinarySplitNode{tree: t, start: start, end: end}
	for i := start; i < end; i++ {
		node.children = append(node.children,
			&BinarySplitNode{tree: t, start: i, end: i + 1, scale: LeafScale})
	}
	return node
}

// finalize assigns height-derived scales and exact furthest-descendant
// distances once the data permutation is in place.
func (t *BinarySplitTree) finalize(n *BinarySplitNode) {
	if len(n.children) == 0 {
		n.scale = LeafScale
		n.furthest = 0
		return
	}

	maxChildScale := LeafScale
	for _, c := range n.children {
		t.finalize(c)
		if c.scale != LeafScale && c.scale > maxChildScale {
			maxChildScale = c.scale
		}
	}
	if maxChildScale == LeafScale {
		n.scale = 0
	} else {
		n.scale = maxChildScale + 1
	}

	center := t.pointAt(n.start)
	for i := n.start + 1; i < n.end; i++ {
		if d := t.metric.Distance(center, t.pointAt(i)); d > n.furthest {
			n.furthest = d
		}
	}
}

func (t *BinarySplitTree) pointAt(i int) []float64 {
	return t.data[i*t.dims : (i+1)*t.dims]
}

// --- Tree interface ---

func (t *BinarySplitTree) Root() Node {
	if t.root == nil {
		return nil
	}
	return t.root
}

func (t *BinarySplitTree) Data() []float64   { return t.data }
func (t *BinarySplitTree) NumPoints() int    { return t.n }
func (t *BinarySplitTree) NumFeatures() int  { return t.dims }
func (t *BinarySplitTree) OldFromNew() []int { return t.oldFromNew }

// --- Node interface ---

func (n *BinarySplitNode) Scale() int        { return n.scale }
func (n *BinarySplitNode) Point() int        { return n.start }
func (n *BinarySplitNode) Center() []float64 { return n.tree.pointAt(n.start) }
func (n *BinarySplitNode) NumChildren() int  { return len(n.children) }

func (n *BinarySplitNode) Child(i int) Node { return n.children[i] }

func (n *BinarySplitNode) FurthestDescendantDistance() float64 { return n.furthest }
func (n *BinarySplitNode) NumDescendants() int                 { return n.end - n.start }

func (n *BinarySplitNode) RangeDistance(other Node) (lo, hi float64) {
	return nodeRangeDistance(n.tree.metric, n, other)
}
