package dualtree

import (
	"fmt"
	"sort"
)

// RangeSearch finds, for every query point, all reference points whose
// distance falls inside a closed interval [low, high].
//
// Execution strategy is selected by the config: naive exhaustive search,
// per-query single-tree traversal, or one dual-tree traversal over a query
// tree and a reference tree.
type RangeSearch struct {
	searcher
}

// NewRangeSearch prepares a monochromatic range search: the query set is the
// reference set, and a point is never reported as its own neighbor.
func NewRangeSearch(refData []float64, n, dims int, cfg SearchConfig) (*RangeSearch, error) {
	s, err := newSearcher(refData, n, nil, 0, dims, cfg)
	if err != nil {
		return nil, err
	}
	return &RangeSearch{searcher: s}, nil
}

// NewRangeSearchWithQueries prepares a bichromatic range search with a
// separate query set.
func NewRangeSearchWithQueries(refData []float64, refRows int, queryData []float64, queryRows, dims int, cfg SearchConfig) (*RangeSearch, error) {
	if queryData == nil {
		return nil, fmt.Errorf("dualtree: query data must not be nil; use NewRangeSearch for monochromatic search")
	}
	s, err := newSearcher(refData, refRows, queryData, queryRows, dims, cfg)
	if err != nil {
		return nil, err
	}
	return &RangeSearch{searcher: s}, nil
}

// NewRangeSearchPrebuilt prepares a range search over caller-owned trees.
// The trees are borrowed: they are never destroyed and their index space is
// assumed to already be the caller's. queryTree may be nil for monochromatic
// dual-tree search over refTree.
func NewRangeSearchPrebuilt(refTree, queryTree Tree, cfg SearchConfig) (*RangeSearch, error) {
	s, err := newSearcherPrebuilt(refTree, queryTree, cfg)
	if err != nil {
		return nil, err
	}
	return &RangeSearch{searcher: s}, nil
}

// Search returns, per query point, the reference indices and distances of
// every reference point within [low, high], ordered by ascending reference
// index. Indices are in the caller's original ordering.
func (rs *RangeSearch) Search(low, high float64) ([][]int, [][]float64, error) {
	if low < 0 || high < low {
		return nil, nil, fmt.Errorf("dualtree: invalid range [%f, %f]", low, high)
	}

	rules := newRangeSearchRules(rs.searchQueryData, rs.queryRows, rs.searchRefData,
		rs.dims, low, high, rs.cfg.Metric, rs.sameSet)

	if err := rs.run(rules); err != nil {
		return nil, nil, err
	}

	neighbors, distances := rules.extract()
	neighbors, distances = rs.remap(neighbors, distances)
	sortRangeResults(neighbors, distances)
	rs.logSearch("range search complete")

	return neighbors, distances, nil
}

// sortRangeResults orders each query's results by ascending reference index,
// keeping distances aligned. Remapping can disturb the order the rules
// produced.
func sortRangeResults(neighbors [][]int, distances [][]float64) {
	for q := range neighbors {
		idx := neighbors[q]
		dist := distances[q]
		sort.Sort(&indexDistPairs{idx: idx, dist: dist})
	}
}

type indexDistPairs struct {
	idx  []int
	dist []float64
}

func (p *indexDistPairs) Len() int           { return len(p.idx) }
func (p *indexDistPairs) Less(i, j int) bool { return p.idx[i] < p.idx[j] }
func (p *indexDistPairs) Swap(i, j int) {
	p.idx[i], p.idx[j] = p.idx[j], p.idx[i]
	p.dist[i], p.dist[j] = p.dist[j], p.dist[i]
}
