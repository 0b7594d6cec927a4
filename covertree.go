package dualtree

import "math"

// CoverTree is a scale-organized spatial tree. Every node sits at an integer
// scale; all descendants of a node at scale s lie within base^s of its
// representative point. Child 0 of every non-leaf node is the self-child: the
// same representative point one scale finer. Every point appears as exactly
// one leaf, so a traversal that evaluates base cases at leaves reaches every
// point exactly once.
//
// The build does not permute the input, so OldFromNew returns nil.
type CoverTree struct {
	data   []float64 // flat row-major point data (n * dims)
	n      int
	dims   int
	base   float64
	metric DistanceMetric
	root   *CoverTreeNode
}

// CoverTreeNode is a single node of a CoverTree. It implements Node.
type CoverTreeNode struct {
	tree     *CoverTree
	point    int
	scale    int
	children []*CoverTreeNode
	furthest float64 // exact furthest descendant distance
	numDesc  int     // distinct points in the subtree
}

// NewCoverTree builds a cover tree from flat row-major data with n points of
// dimensionality dims. base is the expansion constant; values <= 1 fall back
// to 1.3.
func NewCoverTree(data []float64, n, dims int, metric DistanceMetric, base float64) *CoverTree {
	if base <= 1 {
		base = 1.3
	}

	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)

	t := &CoverTree{
		data:   dataCopy,
		n:      n,
		dims:   dims,
		base:   base,
		metric: metric,
	}

	if n > 0 {
		rest := make([]int, 0, n-1)
		for i := 1; i < n; i++ {
			rest = append(rest, i)
		}
		t.root = t.build(0, rest, math.MaxInt32)
	}

	return t
}

// scaleFor returns the smallest integer s with base^s >= dist.
func (t *CoverTree) scaleFor(dist float64) int {
	return int(math.Ceil(math.Log(dist) / math.Log(t.base)))
}

// build constructs the node for point covering set, at a scale no coarser
// than maxScale. Every point in set lies within base^maxScale of point.
func (t *CoverTree) build(point int, set []int, maxScale int) *CoverTreeNode {
	if len(set) == 0 {
		return &CoverTreeNode{tree: t, point: point, scale: LeafScale, numDesc: 1}
	}

	center := t.pointAt(point)

	// Points at distance zero can never separate from the representative;
	// they become direct leaf children.
	var dups, rest []int
	maxDist := 0.0
	for _, q := range set {
		d := t.metric.Distance(center, t.pointAt(q))
		if d == 0 {
			dups = append(dups, q)
			continue
		}
		rest = append(rest, q)
		if d > maxDist {
			maxDist = d
		}
	}

	node := &CoverTreeNode{tree: t, point: point, numDesc: len(set) + 1}

	if len(rest) == 0 {
		node.scale = min(maxScale, 0)
		node.furthest = 0
		node.children = append(node.children, t.build(point, nil, node.scale-1))
		for _, q := range dups {
			node.children = append(node.children, &CoverTreeNode{tree: t, point: q, scale: LeafScale, numDesc: 1})
		}
		return node
	}

	// Clamp the scale so the furthest point falls outside the child bound;
	// this keeps self-chains short and guarantees the set shrinks.
	scale := min(maxScale, t.scaleFor(maxDist))
	childBound := math.Pow(t.base, float64(scale-1))

	var near, far []int
	for _, q := range rest {
		if t.metric.Distance(center, t.pointAt(q)) <= childBound {
			near = append(near, q)
		} else {
			far = append(far, q)
		}
	}

	node.scale = scale
	node.furthest = maxDist

	// Self-child first.
	node.children = append(node.children, t.build(point, near, scale-1))
	for _, q := range dups {
		node.children = append(node.children, &CoverTreeNode{tree: t, point: q, scale: LeafScale, numDesc: 1})
	}

	// Pick representatives from the far set until everything is assigned.
	// Remaining far points are more than childBound from every earlier pick,
	// so the picks stay separated.
	for len(far) > 0 {
		pick := far[0]
		pickCenter := t.pointAt(pick)
		var assigned, remaining []int
		for _, q := range far[1:] {
			if t.metric.Distance(pickCenter, t.pointAt(q)) <= childBound {
				assigned = append(assigned, q)
			} else {
				remaining = append(remaining, q)
			}
		}
		node.children = append(node.children, t.build(pick, assigned, scale-1))
		far = remaining
	}

	return node
}

func (t *CoverTree) pointAt(i int) []float64 {
	return t.data[i*t.dims : (i+1)*t.dims]
}

// Base returns the expansion constant of the tree.
func (t *CoverTree) Base() float64 { return t.base }

// --- Tree interface ---

func (t *CoverTree) Root() Node {
	if t.root == nil {
		return nil
	}
	return t.root
}

func (t *CoverTree) Data() []float64  { return t.data }
func (t *CoverTree) NumPoints() int   { return t.n }
func (t *CoverTree) NumFeatures() int { return t.dims }
func (t *CoverTree) OldFromNew() []int { return nil }

// --- Node interface ---

func (n *CoverTreeNode) Scale() int        { return n.scale }
func (n *CoverTreeNode) Point() int        { return n.point }
func (n *CoverTreeNode) Center() []float64 { return n.tree.pointAt(n.point) }
func (n *CoverTreeNode) NumChildren() int  { return len(n.children) }

func (n *CoverTreeNode) Child(i int) Node { return n.children[i] }

func (n *CoverTreeNode) FurthestDescendantDistance() float64 { return n.furthest }
func (n *CoverTreeNode) NumDescendants() int                 { return n.numDesc }

func (n *CoverTreeNode) RangeDistance(other Node) (lo, hi float64) {
	return nodeRangeDistance(n.tree.metric, n, other)
}
