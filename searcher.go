package dualtree

import "fmt"

// searcher holds the mode selection, tree ownership, and index remapping
// shared by the search orchestrators. Mode precedence is naive > single >
// dual. When the searcher built its trees it owns them and must map results
// from the trees' internal index space back to the caller's ordering;
// borrowed trees are never remapped (or destroyed).
type searcher struct {
	cfg SearchConfig

	refTree   Tree
	queryTree Tree

	treeOwner   bool
	hasQuerySet bool
	naive       bool
	singleMode  bool
	sameSet     bool

	// Point data in the index space the traversal runs in: permuted copies
	// when trees permute, the caller's data otherwise.
	searchRefData   []float64
	searchQueryData []float64
	refRows         int
	queryRows       int
	dims            int

	numPrunes int
}

// newSearcher builds trees as the mode requires. queryData == nil means the
// query set is the reference set (monochromatic search).
func newSearcher(refData []float64, refRows int, queryData []float64, queryRows, dims int, cfg SearchConfig) (searcher, error) {
	s := searcher{cfg: cfg}

	if err := cfg.validate(); err != nil {
		return s, err
	}
	if dims < 1 {
		return s, fmt.Errorf("dualtree: dims must be >= 1, got %d", dims)
	}
	if len(refData) != refRows*dims {
		return s, fmt.Errorf("dualtree: reference data length %d does not match %d points of %d dims", len(refData), refRows, dims)
	}
	if queryData != nil && len(queryData) != queryRows*dims {
		return s, fmt.Errorf("dualtree: query data length %d does not match %d points of %d dims", len(queryData), queryRows, dims)
	}

	s.naive = cfg.Naive
	s.singleMode = !cfg.Naive && cfg.SingleMode // naive overrides single
	s.hasQuerySet = queryData != nil
	s.sameSet = !s.hasQuerySet
	s.treeOwner = !s.naive // naive mode builds no trees
	s.dims = dims
	s.refRows = refRows

	if !s.naive {
		s.refTree = cfg.buildTree(refData, refRows, dims)
		if !s.singleMode {
			if s.hasQuerySet {
				s.queryTree = cfg.buildTree(queryData, queryRows, dims)
			} else {
				// Monochromatic dual-tree search reuses the reference tree
				// as the query tree; trees are read-only during traversal,
				// so sharing is safe.
				s.queryTree = s.refTree
			}
		}
	}

	// Resolve the data the traversal actually indexes into.
	if s.naive {
		s.searchRefData = refData
	} else {
		s.searchRefData = s.refTree.Data()
	}
	switch {
	case s.naive:
		if s.hasQuerySet {
			s.searchQueryData, s.queryRows = queryData, queryRows
		} else {
			s.searchQueryData, s.queryRows = refData, refRows
		}
	case s.hasQuerySet:
		if s.singleMode {
			s.searchQueryData, s.queryRows = queryData, queryRows
		} else {
			s.searchQueryData, s.queryRows = s.queryTree.Data(), queryRows
		}
	default:
		// Monochromatic tree modes run in the reference tree's index space.
		s.searchQueryData, s.queryRows = s.refTree.Data(), refRows
	}

	return s, nil
}

// newSearcherPrebuilt borrows caller-owned trees. queryTree == nil means
// monochromatic search over refTree.
func newSearcherPrebuilt(refTree, queryTree Tree, cfg SearchConfig) (searcher, error) {
	s := searcher{cfg: cfg}

	if err := cfg.validate(); err != nil {
		return s, err
	}
	if refTree == nil {
		return s, fmt.Errorf("dualtree: reference tree must not be nil")
	}
	if cfg.Naive {
		return s, fmt.Errorf("dualtree: naive mode cannot use pre-built trees")
	}
	if cfg.SingleMode && queryTree != nil {
		return s, fmt.Errorf("dualtree: single-tree mode does not take a query tree")
	}
	if queryTree != nil && queryTree.NumFeatures() != refTree.NumFeatures() {
		return s, fmt.Errorf("dualtree: query tree has %d dims, reference tree has %d", queryTree.NumFeatures(), refTree.NumFeatures())
	}

	s.singleMode = cfg.SingleMode
	s.refTree = refTree
	s.queryTree = queryTree
	s.hasQuerySet = queryTree != nil
	s.sameSet = queryTree == nil || queryTree == refTree
	if s.queryTree == nil && !s.singleMode {
		s.queryTree = refTree
	}

	s.dims = refTree.NumFeatures()
	s.refRows = refTree.NumPoints()
	s.searchRefData = refTree.Data()
	if s.hasQuerySet {
		s.searchQueryData, s.queryRows = queryTree.Data(), queryTree.NumPoints()
	} else {
		s.searchQueryData, s.queryRows = refTree.Data(), refTree.NumPoints()
	}

	return s, nil
}

func (s *searcher) mode() string {
	switch {
	case s.naive:
		return "naive"
	case s.singleMode:
		return "single-tree"
	default:
		return "dual-tree"
	}
}

// run executes the selected mode, feeding every result into rules, and
// accumulates the prune count.
func (s *searcher) run(rules Rules) error {
	s.numPrunes = 0

	switch {
	case s.naive:
		return forEachQueryRange(s.cfg.Workers, s.queryRows, func(start, end int) error {
			for qi := start; qi < end; qi++ {
				for ri := 0; ri < s.refRows; ri++ {
					rules.BaseCase(qi, ri)
				}
			}
			return nil
		})

	case s.singleMode:
		// One traverser (and one prune counter) per worker; per-query
		// policy state is disjoint, so the rules object is shared.
		prunes := make(chan int, s.queryRows+1)
		err := forEachQueryRange(s.cfg.Workers, s.queryRows, func(start, end int) error {
			traverser := NewSingleTreeTraverser(rules)
			for qi := start; qi < end; qi++ {
				traverser.Traverse(qi, s.refTree.Root())
			}
			prunes <- traverser.NumPrunes()
			return nil
		})
		close(prunes)
		for p := range prunes {
			s.numPrunes += p
		}
		return err

	default:
		traverser := NewDualTreeTraverser(rules)
		traverser.Traverse(s.queryTree.Root(), s.refTree.Root())
		s.numPrunes = traverser.NumPrunes()
		return nil
	}
}

// remap translates results from the trees' internal index space back to the
// caller's original ordering. Per-query result order is preserved. No-op
// when the trees were supplied by the caller or never permuted.
func (s *searcher) remap(neighbors [][]int, distances [][]float64) ([][]int, [][]float64) {
	if !s.treeOwner {
		return neighbors, distances
	}

	refMap := s.refTree.OldFromNew()
	var queryMap []int
	if s.hasQuerySet {
		if !s.singleMode {
			queryMap = s.queryTree.OldFromNew()
		}
	} else {
		queryMap = refMap // monochromatic: queries share the reference permutation
	}
	if refMap == nil && queryMap == nil {
		return neighbors, distances
	}

	outN := make([][]int, len(neighbors))
	outD := make([][]float64, len(distances))
	for q := range neighbors {
		oq := q
		if queryMap != nil {
			oq = queryMap[q]
		}
		mapped := neighbors[q]
		if refMap != nil {
			mapped = make([]int, len(neighbors[q]))
			for j, r := range neighbors[q] {
				mapped[j] = refMap[r]
			}
		}
		outN[oq] = mapped
		outD[oq] = distances[q]
	}
	return outN, outD
}

// NumPrunes returns the prune count recorded by the most recent Search.
func (s *searcher) NumPrunes() int { return s.numPrunes }

// logSearch emits a structured diagnostic line when a logger is configured.
func (s *searcher) logSearch(op string) {
	if s.cfg.Logger == nil {
		return
	}
	s.cfg.Logger.Debug(op,
		"mode", s.mode(),
		"queries", s.queryRows,
		"references", s.refRows,
		"prunes", s.numPrunes,
	)
}
