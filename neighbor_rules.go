package dualtree

import (
	"container/heap"
	"math"
)

// neighborSearchRules is the scoring policy for k-nearest-neighbor search.
// Each query point keeps a bounded max-heap of its best k candidates; a node
// pair is pruned when its distance lower bound cannot beat the query
// representative's current k-th distance, padded by the query node's
// covering radius to stay valid for every query descendant.
type neighborSearchRules struct {
	queryData []float64
	refData   []float64
	dims      int
	k         int
	metric    DistanceMetric
	sameSet   bool

	heaps []knnHeap // per query point, at most k items each
}

func newNeighborSearchRules(queryData []float64, queryRows int, refData []float64, dims, k int, metric DistanceMetric, sameSet bool) *neighborSearchRules {
	return &neighborSearchRules{
		queryData: queryData,
		refData:   refData,
		dims:      dims,
		k:         k,
		metric:    metric,
		sameSet:   sameSet,
		heaps:     make([]knnHeap, queryRows),
	}
}

func (r *neighborSearchRules) queryPoint(i int) []float64 {
	return r.queryData[i*r.dims : (i+1)*r.dims]
}

func (r *neighborSearchRules) refPoint(i int) []float64 {
	return r.refData[i*r.dims : (i+1)*r.dims]
}

// kthDistance returns the current k-th best distance for a query point, or
// +Inf while its candidate list is not full.
func (r *neighborSearchRules) kthDistance(queryIndex int) float64 {
	h := r.heaps[queryIndex]
	if len(h) < r.k {
		return math.Inf(1)
	}
	return h[0].dist
}

// BaseCase computes the exact distance for one pair and offers it to the
// query's candidate heap. A pair already present is left untouched, so
// repeated evaluations are idempotent.
func (r *neighborSearchRules) BaseCase(queryIndex, refIndex int) float64 {
	if r.sameSet && queryIndex == refIndex {
		return 0
	}

	d := r.metric.Distance(r.queryPoint(queryIndex), r.refPoint(refIndex))

	h := &r.heaps[queryIndex]
	for _, item := range *h {
		if item.index == refIndex {
			return d
		}
	}
	if h.Len() < r.k {
		heap.Push(h, knnItem{index: refIndex, dist: d})
	} else if d < (*h)[0].dist {
		(*h)[0] = knnItem{index: refIndex, dist: d}
		heap.Fix(h, 0)
	}
	return d
}

// Score prunes when even the closest possible descendant pair cannot beat
// the padded k-th distance of the query subtree.
func (r *neighborSearchRules) Score(queryNode, refNode Node, baseCase float64) float64 {
	qSlack := queryNode.FurthestDescendantDistance()
	lo := baseCase - qSlack - refNode.FurthestDescendantDistance()
	if lo < 0 {
		lo = 0
	}
	if lo > r.kthDistance(queryNode.Point())+qSlack {
		return PruneAll
	}
	return lo
}

// Rescore rechecks the old lower bound against the bound, which may have
// tightened as candidates accumulated; the old score itself stays a valid
// lower bound for any descendant pair.
func (r *neighborSearchRules) Rescore(queryNode, refNode Node, oldScore float64) float64 {
	if oldScore == PruneAll {
		return PruneAll
	}
	if oldScore > r.kthDistance(queryNode.Point())+queryNode.FurthestDescendantDistance() {
		return PruneAll
	}
	return oldScore
}

func (r *neighborSearchRules) ScorePoint(queryIndex int, refNode Node) float64 {
	d := r.metric.Distance(r.queryPoint(queryIndex), refNode.Center())
	lo := d - refNode.FurthestDescendantDistance()
	if lo < 0 {
		lo = 0
	}
	if lo > r.kthDistance(queryIndex) {
		return PruneAll
	}
	return lo
}

func (r *neighborSearchRules) RescorePoint(queryIndex int, refNode Node, oldScore float64) float64 {
	if oldScore == PruneAll || oldScore > r.kthDistance(queryIndex) {
		return PruneAll
	}
	return oldScore
}

// extract drains the heaps into per-query neighbor and distance lists sorted
// by ascending distance.
func (r *neighborSearchRules) extract() ([][]int, [][]float64) {
	neighbors := make([][]int, len(r.heaps))
	distances := make([][]float64, len(r.heaps))
	for q := range r.heaps {
		h := &r.heaps[q]
		n := h.Len()
		idx := make([]int, n)
		dist := make([]float64, n)
		for i := n - 1; i >= 0; i-- {
			item := heap.Pop(h).(knnItem)
			idx[i] = item.index
			dist[i] = item.dist
		}
		neighbors[q] = idx
		distances[q] = dist
	}
	return neighbors, distances
}

// --- bounded max-heap of candidates ---

type knnItem struct {
	index int
	dist  float64
}

// knnHeap is a max-heap of knnItem (largest distance on top) used as a
// bounded priority queue.
type knnHeap []knnItem

func (h knnHeap) Len() int            { return len(h) }
func (h knnHeap) Less(i, j int) bool  { return h[i].dist > h[j].dist } // max-heap
func (h knnHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *knnHeap) Push(x interface{}) { *h = append(*h, x.(knnItem)) }
func (h *knnHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
