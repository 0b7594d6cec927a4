package dualtree

import "sort"

// mapEntry is one candidate frame in the reference frontier: a borrowed
// reference node, its score, and the cached base case together with the
// (reference, query) point indices it was computed for. Frames never own
// nodes and never outlive the traversal call that created them.
type mapEntry struct {
	refNode    Node
	score      float64
	refIndex   int
	queryIndex int
	baseCase   float64
}

// referenceMap is the reference frontier for one query node: the candidate
// frames still alive, bucketed by the scale of their reference node. The
// LeafScale bucket holds frames ready for direct base-case evaluation.
type referenceMap map[int][]mapEntry

// maxScale returns the coarsest scale present in the frontier. The frontier
// must be non-empty.
func (m referenceMap) maxScale() int {
	first := true
	max := 0
	for s := range m {
		if first || s > max {
			max = s
			first = false
		}
	}
	return max
}

// scalesDescending returns the non-leaf scales present, coarsest first.
// Bucket iteration must never follow raw map order: prune counts are
// expected to be reproducible run to run.
func (m referenceMap) scalesDescending() []int {
	scales := make([]int, 0, len(m))
	for s := range m {
		if s != LeafScale {
			scales = append(scales, s)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(scales)))
	return scales
}

// DualTreeTraverser recursively descends a query tree and a reference tree
// together, maintaining a per-query-node reference frontier and pruning
// whole subtree pairs through the scoring policy.
//
// A traverser is single-threaded and must not be shared across concurrent
// traversals; give each traversal its own instance and merge prune counts
// afterward.
type DualTreeTraverser struct {
	rules     Rules
	numPrunes int

	// recomputeBaseCases disables every cached-base-case reuse path,
	// forcing a fresh BaseCase wherever reuse would have applied. Results
	// must not change; only the amount of work does.
	recomputeBaseCases bool
}

// NewDualTreeTraverser returns a traverser driven by the given policy.
func NewDualTreeTraverser(rules Rules) *DualTreeTraverser {
	return &DualTreeTraverser{rules: rules}
}

// NumPrunes returns the number of prunes recorded so far.
func (t *DualTreeTraverser) NumPrunes() int { return t.numPrunes }

// Traverse runs the dual-tree traversal over the two roots.
func (t *DualTreeTraverser) Traverse(queryNode, referenceNode Node) {
	if queryNode == nil || referenceNode == nil {
		return
	}

	refMap := make(referenceMap)
	refMap[referenceNode.Scale()] = []mapEntry{{
		refNode:    referenceNode,
		score:      0, // must recurse into the root pair
		refIndex:   referenceNode.Point(),
		queryIndex: queryNode.Point(),
		baseCase:   t.rules.BaseCase(queryNode.Point(), referenceNode.Point()),
	}}

	t.traverse(queryNode, refMap)
}

func (t *DualTreeTraverser) traverse(queryNode Node, refMap referenceMap) {
	if len(refMap) == 0 {
		return // nothing to do
	}

	// Bring the coarsest frontier scale down to the query node's scale.
	t.referenceRecursion(queryNode, refMap)
	if len(refMap) == 0 {
		return
	}

	qScale := queryNode.Scale()
	if qScale != LeafScale && qScale >= refMap.maxScale() {
		// Descend the query tree. Non-self children first, each with its
		// own filtered copy of the frontier; the self-child last, reusing
		// the frontier filtered in place. Recursion order cannot affect
		// results because each child's results are independent.
		for i := 1; i < queryNode.NumChildren(); i++ {
			child := queryNode.Child(i)
			t.traverse(child, t.pruneMap(child, refMap))
		}
		self := queryNode.Child(0)
		t.pruneMapForSelfChild(self, refMap)
		t.traverse(self, refMap)
		return
	}

	if qScale != LeafScale {
		return // no base-case work at non-leaf scope
	}

	// Leaf phase: only the LeafScale bucket can remain.
	for _, frame := range refMap[LeafScale] {
		refNode := frame.refNode

		// Skip pairs whose base case was already evaluated exactly.
		if frame.refIndex == refNode.Point() && frame.queryIndex == queryNode.Point() &&
			!t.recomputeBaseCases {
			t.numPrunes++
			continue
		}

		if t.rules.Rescore(queryNode, refNode, frame.score) == PruneAll {
			t.numPrunes++
			continue
		}

		t.rules.BaseCase(queryNode.Point(), refNode.Point())
	}
}

// referenceRecursion expands frontier buckets coarser than the query node's
// scale, one coarsest bucket at a time, admitting surviving children at
// their own scales.
func (t *DualTreeTraverser) referenceRecursion(queryNode Node, refMap referenceMap) {
	qScale := queryNode.Scale()
	queryPoint := queryNode.Point()

	for len(refMap) > 0 {
		scale := refMap.maxScale()
		if scale <= qScale {
			return
		}

		// Better-scored candidates first: tighter bounds propagate sooner.
		// The stable sort keeps prune counts reproducible across runs.
		bucket := refMap[scale]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].score < bucket[j].score
		})

		for _, frame := range bucket {
			refNode := frame.refNode
			refPoint := refNode.Point()

			if t.rules.Rescore(queryNode, refNode, frame.score) == PruneAll {
				t.numPrunes++
				continue
			}

			// The cached base case is only valid if it was computed for
			// exactly this pair of points.
			baseCase := frame.baseCase
			if refPoint != frame.refIndex || queryPoint != frame.queryIndex ||
				t.recomputeBaseCases {
				baseCase = t.rules.BaseCase(queryPoint, refPoint)
			}

			// Pruning is all or nothing for the children: once the parent
			// scores as prunable after the base case, none of its children
			// are rescored individually.
			if t.rules.Score(queryNode, refNode, baseCase) == PruneAll {
				t.numPrunes += refNode.NumChildren()
				continue
			}

			if refNode.NumChildren() == 0 {
				continue
			}

			// The self-child shares the representative point, so it inherits
			// the base case without another evaluation.
			self := refNode.Child(0)
			if score := t.rules.Score(queryNode, self, baseCase); score != PruneAll {
				refMap[self.Scale()] = append(refMap[self.Scale()], mapEntry{
					refNode:    self,
					score:      score,
					refIndex:   refPoint,
					queryIndex: queryPoint,
					baseCase:   baseCase,
				})
			} else {
				t.numPrunes++
			}

			// Every other child needs its own base case and score check.
			for j := 1; j < refNode.NumChildren(); j++ {
				child := refNode.Child(j)
				childBase := t.rules.BaseCase(queryPoint, child.Point())
				score := t.rules.Score(queryNode, child, childBase)
				if score == PruneAll {
					t.numPrunes++
					continue
				}
				refMap[child.Scale()] = append(refMap[child.Scale()], mapEntry{
					refNode:    child,
					score:      score,
					refIndex:   child.Point(),
					queryIndex: queryPoint,
					baseCase:   childBase,
				})
			}
		}

		// The expanded bucket is no longer needed.
		delete(refMap, scale)
	}
}

// pruneMap filters the frontier into a fresh copy for a non-self query
// child. Surviving frames get a fresh base case and score for the child's
// representative point. The LeafScale bucket carries over untouched; it is
// re-evaluated at leaf scope.
func (t *DualTreeTraverser) pruneMap(candidate Node, refMap referenceMap) referenceMap {
	childMap := make(referenceMap, len(refMap))
	candidatePoint := candidate.Point()

	for _, scale := range refMap.scalesDescending() {
		frames := refMap[scale]
		out := make([]mapEntry, 0, len(frames))
		for _, frame := range frames {
			refNode := frame.refNode

			if t.rules.Rescore(candidate, refNode, frame.score) == PruneAll {
				t.numPrunes++
				continue
			}

			baseCase := t.rules.BaseCase(candidatePoint, refNode.Point())
			score := t.rules.Score(candidate, refNode, baseCase)
			if score == PruneAll {
				t.numPrunes++
				continue
			}

			out = append(out, mapEntry{
				refNode:    refNode,
				score:      score,
				refIndex:   refNode.Point(),
				queryIndex: candidatePoint,
				baseCase:   baseCase,
			})
		}
		if len(out) > 0 {
			childMap[scale] = out
		}
	}

	if leaf, ok := refMap[LeafScale]; ok && len(leaf) > 0 {
		childMap[LeafScale] = append([]mapEntry(nil), leaf...)
	}

	return childMap
}

// pruneMapForSelfChild filters the frontier in place for the self-child.
// The self-child shares its parent's representative point, so cached base
// cases whose indices still match are reused instead of recomputed; reusing
// the map itself is valid because no further reference expansion happens at
// this call depth.
func (t *DualTreeTraverser) pruneMapForSelfChild(candidate Node, refMap referenceMap) {
	candidatePoint := candidate.Point()

	for _, scale := range refMap.scalesDescending() {
		frames := refMap[scale]
		out := frames[:0]
		for _, frame := range frames {
			refNode := frame.refNode
			baseCase := frame.baseCase

			if frame.refIndex != refNode.Point() || frame.queryIndex != candidatePoint ||
				t.recomputeBaseCases {
				if t.rules.Rescore(candidate, refNode, frame.score) == PruneAll {
					t.numPrunes++
					continue
				}
				baseCase = t.rules.BaseCase(candidatePoint, refNode.Point())
			}

			score := t.rules.Score(candidate, refNode, baseCase)
			if score == PruneAll {
				t.numPrunes++
				continue
			}

			out = append(out, mapEntry{
				refNode:    refNode,
				score:      score,
				refIndex:   refNode.Point(),
				queryIndex: candidatePoint,
				baseCase:   baseCase,
			})
		}
		if len(out) == 0 {
			delete(refMap, scale)
		} else {
			refMap[scale] = out
		}
	}
}
