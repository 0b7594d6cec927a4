// Package dualtree implements generic branch-and-bound traversal engines
// for proximity queries (range search, k-nearest-neighbor, and similar
// point-to-point distance queries) over hierarchically organized spatial
// trees.
//
// The core is a dual-tree traversal: a query tree and a reference tree are
// descended together, scale level by scale level, while a pluggable scoring
// policy decides which whole subtree pairs can be pruned without any exact
// distance computation. The same machinery drives a per-query single-tree
// traversal and an exhaustive naive mode used as a correctness oracle.
//
// Basic usage:
//
//	cfg := dualtree.DefaultSearchConfig()
//	rs, err := dualtree.NewRangeSearch(data, n, dims, cfg)
//	// neighbors[i], distances[i] list the points within [low, high] of point i
//	neighbors, distances, err := rs.Search(low, high)
//
//	ns, err := dualtree.NewNeighborSearch(data, n, dims, cfg)
//	neighbors, distances, err = ns.Search(k)
//
// # Trees
//
// Two tree variants implement the traversal's node contract: CoverTree, a
// scale-organized tree whose nodes carry explicit integer scales, and
// BinarySplitTree, a median-split binary hierarchy whose scales derive from
// node height. Both expose the self-child convention (child 0 covers the
// parent's representative point at a finer scale), so one traversal
// implementation serves both topologies. Custom policies implement the Rules
// interface; custom trees implement Node and Tree.
//
// # Modes
//
// SearchConfig selects the execution strategy with precedence
// naive > single > dual:
//
//	cfg.Naive = true      // every pair, no trees
//	cfg.SingleMode = true // one reference traversal per query point
//	// default            // one dual-tree traversal
//
// All modes produce identical result sets; only the amount of pruning
// differs. Traversals are single-threaded and allocation-light; the naive
// and single-tree modes optionally fan out across query points with
// cfg.Workers.
package dualtree
