package dualtree

import (
	"testing"
)

func TestBinarySplitTreePermutation(t *testing.T) {
	n, dims := 50, 3
	orig := randomData(10, n, dims)
	tree := NewBinarySplitTree(orig, n, dims, EuclideanMetric{}, 5)

	perm := tree.OldFromNew()
	if len(perm) != n {
		t.Fatalf("OldFromNew has %d entries, want %d", len(perm), n)
	}
	seen := make(map[int]bool, n)
	for _, old := range perm {
		if old < 0 || old >= n {
			t.Fatalf("OldFromNew entry %d out of range", old)
		}
		if seen[old] {
			t.Fatalf("OldFromNew maps two tree indices to original index %d", old)
		}
		seen[old] = true
	}

	// Permuted data must hold the original points in tree order.
	data := tree.Data()
	for i := 0; i < n; i++ {
		for d := 0; d < dims; d++ {
			if data[i*dims+d] != orig[perm[i]*dims+d] {
				t.Fatalf("tree point %d does not match original point %d", i, perm[i])
			}
		}
	}
}

func TestBinarySplitTreeInvariants(t *testing.T) {
	n, dims := 50, 3
	tree := NewBinarySplitTree(randomData(11, n, dims), n, dims, EuclideanMetric{}, 5)
	data := tree.Data()
	metric := EuclideanMetric{}

	checkLeafCoverage(t, tree.Root(), n)
	if got := tree.Root().NumDescendants(); got != n {
		t.Fatalf("root NumDescendants = %d, want %d", got, n)
	}

	walkNodes(tree.Root(), func(node Node) {
		if node.NumChildren() == 0 {
			if node.Scale() != LeafScale {
				t.Errorf("leaf has scale %d, want LeafScale", node.Scale())
			}
			return
		}
		if node.Child(0).Point() != node.Point() {
			t.Errorf("child 0 has point %d, parent has %d", node.Child(0).Point(), node.Point())
		}
		for i := 0; i < node.NumChildren(); i++ {
			child := node.Child(i)
			if child.Scale() >= node.Scale() {
				t.Errorf("child scale %d not finer than parent scale %d", child.Scale(), node.Scale())
			}
		}
		var leaves []int
		collectLeafPoints(node, &leaves)
		for _, p := range leaves {
			d := metric.Distance(node.Center(), data[p*dims:(p+1)*dims])
			if d > node.FurthestDescendantDistance()+floatTol {
				t.Errorf("descendant %d at distance %v exceeds bound %v", p, d, node.FurthestDescendantDistance())
			}
		}
	})
}

func TestBinarySplitTreeLeafExpansion(t *testing.T) {
	// Five points fit in one leaf range, which must expand into one
	// single-point leaf per point with the representative first.
	data := randomData(12, 5, 2)
	tree := NewBinarySplitTree(data, 5, 2, EuclideanMetric{}, 5)

	root := tree.Root()
	if root.NumChildren() != 5 {
		t.Fatalf("root has %d children, want 5", root.NumChildren())
	}
	if root.Scale() != 0 {
		t.Errorf("root scale = %d, want 0 above all-leaf children", root.Scale())
	}
	if root.Child(0).Point() != root.Point() {
		t.Errorf("child 0 point %d does not match root point %d", root.Child(0).Point(), root.Point())
	}
	for i := 0; i < root.NumChildren(); i++ {
		child := root.Child(i)
		if child.Scale() != LeafScale || child.NumDescendants() != 1 {
			t.Errorf("child %d: scale %d, %d descendants; want single-point leaf", i, child.Scale(), child.NumDescendants())
		}
	}
}

func TestBinarySplitTreeSinglePoint(t *testing.T) {
	tree := NewBinarySplitTree([]float64{3, 4}, 1, 2, EuclideanMetric{}, 20)
	root := tree.Root()
	if root == nil {
		t.Fatal("single-point tree has nil root")
	}
	if root.Scale() != LeafScale || root.NumChildren() != 0 {
		t.Errorf("single-point root: scale %d, %d children", root.Scale(), root.NumChildren())
	}
}

func TestBinarySplitTreeEmpty(t *testing.T) {
	tree := NewBinarySplitTree(nil, 0, 2, EuclideanMetric{}, 20)
	if tree.Root() != nil {
		t.Fatal("empty tree should have a nil root")
	}
}

func TestBinarySplitTreeLeafSizeFallback(t *testing.T) {
	n, dims := 20, 2
	tree := NewBinarySplitTree(randomData(13, n, dims), n, dims, EuclideanMetric{}, 0)
	checkLeafCoverage(t, tree.Root(), n)
}
