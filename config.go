package dualtree

import (
	"fmt"
	"log/slog"
)

// TreeKind selects the spatial tree variant an orchestrator builds.
type TreeKind string

const (
	// TreeKindCover builds a CoverTree (scale-organized, no permutation).
	TreeKindCover TreeKind = "cover"
	// TreeKindBinary builds a BinarySplitTree (median splits, permuted data).
	TreeKindBinary TreeKind = "binary"
)

// SearchConfig controls search execution. Start with [DefaultSearchConfig]
// and override the fields you need.
type SearchConfig struct {
	// Naive skips tree building entirely and evaluates every
	// (query, reference) pair exhaustively. Overrides SingleMode.
	// Useful as a correctness oracle. Default: false.
	Naive bool

	// SingleMode traverses the reference tree once per query point instead
	// of running the dual-tree traversal. Default: false (dual-tree).
	SingleMode bool

	// Tree selects the tree variant for tree-based modes. Default: cover.
	Tree TreeKind

	// LeafSize is the point count below which a BinarySplitTree range stops
	// splitting. Must be >= 1. Ignored by cover trees. Default: 20.
	LeafSize int

	// Base is the cover tree expansion constant. Must be > 1. Ignored by
	// binary split trees. Default: 1.3.
	Base float64

	// Metric is the distance function. It must satisfy the triangle
	// inequality for pruning to be valid. Default: EuclideanMetric.
	Metric DistanceMetric

	// Workers controls goroutine fan-out for the naive and single-tree
	// modes, which are embarrassingly parallel per query point. The
	// dual-tree traversal is always single-threaded. 0 means one worker
	// per CPU. Default: 1.
	Workers int

	// Logger, when non-nil, receives structured diagnostics (mode selection
	// and prune counts) after each Search call.
	Logger *slog.Logger
}

// DefaultSearchConfig returns a SearchConfig with reasonable defaults.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Tree:     TreeKindCover,
		LeafSize: 20,
		Base:     1.3,
		Metric:   EuclideanMetric{},
		Workers:  1,
	}
}

func (cfg *SearchConfig) validate() error {
	switch cfg.Tree {
	case TreeKindCover, TreeKindBinary:
	default:
		return fmt.Errorf("dualtree: invalid Tree %q", cfg.Tree)
	}
	if cfg.LeafSize < 1 {
		return fmt.Errorf("dualtree: LeafSize must be >= 1, got %d", cfg.LeafSize)
	}
	if cfg.Base <= 1 {
		return fmt.Errorf("dualtree: Base must be > 1, got %f", cfg.Base)
	}
	if cfg.Metric == nil {
		return fmt.Errorf("dualtree: Metric must not be nil")
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("dualtree: Workers must be >= 0, got %d", cfg.Workers)
	}
	return nil
}

// buildTree constructs the configured tree variant over the given data.
func (cfg *SearchConfig) buildTree(data []float64, n, dims int) Tree {
	if cfg.Tree == TreeKindBinary {
		return NewBinarySplitTree(data, n, dims, cfg.Metric, cfg.LeafSize)
	}
	return NewCoverTree(data, n, dims, cfg.Metric, cfg.Base)
}
