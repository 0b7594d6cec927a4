package dualtree

import "fmt"

// NeighborSearch finds the k nearest reference points for every query point.
//
// Execution strategy is selected by the config the same way as RangeSearch:
// naive, single-tree, or dual-tree.
type NeighborSearch struct {
	searcher
}

// NewNeighborSearch prepares a monochromatic k-nearest-neighbor search: the
// query set is the reference set, and a point is never its own neighbor.
func NewNeighborSearch(refData []float64, n, dims int, cfg SearchConfig) (*NeighborSearch, error) {
	s, err := newSearcher(refData, n, nil, 0, dims, cfg)
	if err != nil {
		return nil, err
	}
	return &NeighborSearch{searcher: s}, nil
}

// NewNeighborSearchWithQueries prepares a bichromatic k-nearest-neighbor
// search with a separate query set.
func NewNeighborSearchWithQueries(refData []float64, refRows int, queryData []float64, queryRows, dims int, cfg SearchConfig) (*NeighborSearch, error) {
	if queryData == nil {
		return nil, fmt.Errorf("dualtree: query data must not be nil; use NewNeighborSearch for monochromatic search")
	}
	s, err := newSearcher(refData, refRows, queryData, queryRows, dims, cfg)
	if err != nil {
		return nil, err
	}
	return &NeighborSearch{searcher: s}, nil
}

// NewNeighborSearchPrebuilt prepares a k-nearest-neighbor search over
// caller-owned trees; see NewRangeSearchPrebuilt for the borrowing rules.
func NewNeighborSearchPrebuilt(refTree, queryTree Tree, cfg SearchConfig) (*NeighborSearch, error) {
	s, err := newSearcherPrebuilt(refTree, queryTree, cfg)
	if err != nil {
		return nil, err
	}
	return &NeighborSearch{searcher: s}, nil
}

// Search returns, per query point, the indices and distances of the k
// nearest reference points, ordered by ascending distance. Indices are in
// the caller's original ordering.
func (ns *NeighborSearch) Search(k int) ([][]int, [][]float64, error) {
	maxK := ns.refRows
	if ns.sameSet {
		maxK = ns.refRows - 1
	}
	if k < 1 || k > maxK {
		return nil, nil, fmt.Errorf("dualtree: k must be in [1, %d], got %d", maxK, k)
	}

	rules := newNeighborSearchRules(ns.searchQueryData, ns.queryRows, ns.searchRefData,
		ns.dims, k, ns.cfg.Metric, ns.sameSet)

	if err := ns.run(rules); err != nil {
		return nil, nil, err
	}

	neighbors, distances := rules.extract()
	neighbors, distances = ns.remap(neighbors, distances)
	ns.logSearch("neighbor search complete")

	return neighbors, distances, nil
}
