package dualtree

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DistanceMetric computes the distance between two points. All bounds used
// for pruning are expressed in true distance space, so implementations must
// satisfy the triangle inequality for the traversal's prunes to be valid.
type DistanceMetric interface {
	Distance(a, b []float64) float64
}

// DistanceFunc adapts a plain function into a DistanceMetric.
type DistanceFunc func(a, b []float64) float64

func (f DistanceFunc) Distance(a, b []float64) float64 { return f(a, b) }

// EuclideanMetric computes the Euclidean (L2) distance.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// ManhattanMetric computes the Manhattan (L1 / city-block) distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 1)
}

// ChebyshevMetric computes the Chebyshev (L-infinity) distance.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, math.Inf(1))
}

// MinkowskiMetric computes the Minkowski distance parameterized by P.
// P must be >= 1; smaller exponents violate the triangle inequality.
// Panics if P < 1.
type MinkowskiMetric struct {
	P float64
}

func (m MinkowskiMetric) Distance(a, b []float64) float64 {
	if m.P < 1 {
		panic("MinkowskiMetric: P must be >= 1")
	}
	return floats.Distance(a, b, m.P)
}

// ComputePairwiseDistances computes the full queryRows x refRows distance
// matrix between two flat row-major point sets. Used as the brute-force
// oracle in tests and benchmarks.
func ComputePairwiseDistances(queryData []float64, queryRows int, refData []float64, refRows, dims int, metric DistanceMetric) []float64 {
	result := make([]float64, queryRows*refRows)
	for i := 0; i < queryRows; i++ {
		q := queryData[i*dims : (i+1)*dims]
		for j := 0; j < refRows; j++ {
			result[i*refRows+j] = metric.Distance(q, refData[j*dims:(j+1)*dims])
		}
	}
	return result
}
