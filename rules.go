package dualtree

import "math"

// PruneAll is the universal prune sentinel returned by Score and Rescore.
// A scoring policy returns it to discard an entire reference subtree for the
// query node (or query point) under consideration.
const PruneAll = math.MaxFloat64

// Rules is the pluggable scoring policy driving a traversal. The traversers
// are oblivious to what distance or statistic the policy computes; they only
// compare scores against PruneAll.
//
// BaseCase may be invoked zero or many times for a pair and must be
// idempotent with respect to recorded results; the traversers avoid redundant
// calls as a performance optimization, not a correctness requirement. No call
// ordering may be assumed beyond "BaseCase for a pair is computed before
// Rescore is used for cheaper rechecks of the same pair".
type Rules interface {
	// BaseCase computes and records the exact result for one query point
	// against one reference point, and returns the computed value (typically
	// the point-to-point distance).
	BaseCase(queryIndex, refIndex int) float64

	// Score judges a (query node, reference node) pair given the exact base
	// case of the two representative points. It returns PruneAll to discard
	// the reference subtree, or a finite priority (lower is better).
	Score(queryNode, refNode Node, baseCase float64) float64

	// Rescore cheaply re-evaluates a previously returned score after the
	// query node has changed to a descendant, without recomputing the base
	// case. PruneAll semantics match Score.
	Rescore(queryNode, refNode Node, oldScore float64) float64

	// ScorePoint judges a reference node against a single query point, for
	// single-tree traversals.
	ScorePoint(queryIndex int, refNode Node) float64

	// RescorePoint re-evaluates a previous ScorePoint result after the
	// policy's bounds may have tightened.
	RescorePoint(queryIndex int, refNode Node, oldScore float64) float64
}
