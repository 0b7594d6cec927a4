package dualtree

import "sort"

// rangeSearchRules is the scoring policy for range search: BaseCase records
// every reference point whose distance to the query point falls inside
// [low, high]; Score and Rescore prune node pairs whose distance bounds
// cannot intersect the range.
//
// Results are keyed per (query, reference) pair, so repeated BaseCase calls
// for the same pair are idempotent no matter how the traversal reaches them.
type rangeSearchRules struct {
	queryData []float64
	refData   []float64
	dims      int
	low, high float64
	metric    DistanceMetric
	sameSet   bool

	found []map[int]float64 // per query: reference index -> distance
}

func newRangeSearchRules(queryData []float64, queryRows int, refData []float64, dims int, low, high float64, metric DistanceMetric, sameSet bool) *rangeSearchRules {
	return &rangeSearchRules{
		queryData: queryData,
		refData:   refData,
		dims:      dims,
		low:       low,
		high:      high,
		metric:    metric,
		sameSet:   sameSet,
		found:     make([]map[int]float64, queryRows),
	}
}

func (r *rangeSearchRules) queryPoint(i int) []float64 {
	return r.queryData[i*r.dims : (i+1)*r.dims]
}

func (r *rangeSearchRules) refPoint(i int) []float64 {
	return r.refData[i*r.dims : (i+1)*r.dims]
}

// BaseCase computes the exact distance for one pair and records it if it is
// in range. In the monochromatic case a point is never its own result.
func (r *rangeSearchRules) BaseCase(queryIndex, refIndex int) float64 {
	if r.sameSet && queryIndex == refIndex {
		return 0
	}

	d := r.metric.Distance(r.queryPoint(queryIndex), r.refPoint(refIndex))
	if d >= r.low && d <= r.high {
		if r.found[queryIndex] == nil {
			r.found[queryIndex] = make(map[int]float64)
		}
		r.found[queryIndex][refIndex] = d
	}
	return d
}

// Score prunes when no pair of descendants can land inside the range: the
// base case plus/minus both covering radii bounds every such distance.
func (r *rangeSearchRules) Score(queryNode, refNode Node, baseCase float64) float64 {
	slack := queryNode.FurthestDescendantDistance() + refNode.FurthestDescendantDistance()
	lo := baseCase - slack
	hi := baseCase + slack
	if lo > r.high || hi < r.low {
		return PruneAll
	}
	if lo < 0 {
		lo = 0
	}
	return lo
}

// Rescore: the old lower bound stays valid for any descendant pair, so
// nothing tightens without a fresh base case.
func (r *rangeSearchRules) Rescore(queryNode, refNode Node, oldScore float64) float64 {
	if oldScore == PruneAll || oldScore > r.high {
		return PruneAll
	}
	return oldScore
}

func (r *rangeSearchRules) ScorePoint(queryIndex int, refNode Node) float64 {
	d := r.metric.Distance(r.queryPoint(queryIndex), refNode.Center())
	slack := refNode.FurthestDescendantDistance()
	lo := d - slack
	hi := d + slack
	if lo > r.high || hi < r.low {
		return PruneAll
	}
	if lo < 0 {
		lo = 0
	}
	return lo
}

func (r *rangeSearchRules) RescorePoint(queryIndex int, refNode Node, oldScore float64) float64 {
	if oldScore == PruneAll || oldScore > r.high {
		return PruneAll
	}
	return oldScore
}

// extract converts the recorded results into per-query neighbor and distance
// lists ordered by ascending reference index.
func (r *rangeSearchRules) extract() ([][]int, [][]float64) {
	neighbors := make([][]int, len(r.found))
	distances := make([][]float64, len(r.found))
	for q, m := range r.found {
		refs := make([]int, 0, len(m))
		for ref := range m {
			refs = append(refs, ref)
		}
		sort.Ints(refs)
		dists := make([]float64, len(refs))
		for i, ref := range refs {
			dists[i] = m[ref]
		}
		neighbors[q] = refs
		distances[q] = dists
	}
	return neighbors, distances
}
