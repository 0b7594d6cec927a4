package dualtree

// SingleTreeTraverser visits a reference tree depth-first for one query
// point at a time, pruning whole subtrees through the scoring policy.
// Pruned subtrees are credited to the prune counter by their descendant
// count, so for any query the base cases evaluated plus the prune credits
// add up to the number of reference points.
type SingleTreeTraverser struct {
	rules     Rules
	numPrunes int
}

// NewSingleTreeTraverser returns a traverser driven by the given policy.
func NewSingleTreeTraverser(rules Rules) *SingleTreeTraverser {
	return &SingleTreeTraverser{rules: rules}
}

// NumPrunes returns the number of pruned reference points recorded so far.
func (t *SingleTreeTraverser) NumPrunes() int { return t.numPrunes }

// Traverse runs the traversal for one query point over the reference root.
func (t *SingleTreeTraverser) Traverse(queryIndex int, referenceNode Node) {
	if referenceNode == nil {
		return
	}
	score := t.rules.ScorePoint(queryIndex, referenceNode)
	if score == PruneAll {
		t.numPrunes += referenceNode.NumDescendants()
		return
	}
	t.traverse(queryIndex, referenceNode, score)
}

// traverse visits a node whose score already survived a pruning check.
func (t *SingleTreeTraverser) traverse(queryIndex int, node Node, score float64) {
	// The policy's bound may have tightened since the node was scored.
	if t.rules.RescorePoint(queryIndex, node, score) == PruneAll {
		t.numPrunes += node.NumDescendants()
		return
	}

	if node.NumChildren() == 0 {
		t.rules.BaseCase(queryIndex, node.Point())
		return
	}

	// Visit every child, self-child included. Order only affects constant
	// factors, never the result set.
	for i := 0; i < node.NumChildren(); i++ {
		child := node.Child(i)
		childScore := t.rules.ScorePoint(queryIndex, child)
		if childScore == PruneAll {
			t.numPrunes += child.NumDescendants()
			continue
		}
		t.traverse(queryIndex, child, childScore)
	}
}
