package dualtree

import (
	"math"
	"math/rand"
	"sort"
	"testing"
)

const floatTol = 1e-9

// randomData returns n points of dimensionality dims in [0, 10)^dims,
// deterministic for a given seed.
func randomData(seed int64, n, dims int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, n*dims)
	for i := range data {
		data[i] = rng.Float64() * 10
	}
	return data
}

// bruteRange is the exhaustive range search oracle. Results are ordered by
// ascending reference index.
func bruteRange(queryData []float64, queryRows int, refData []float64, refRows, dims int, metric DistanceMetric, low, high float64, sameSet bool) ([][]int, [][]float64) {
	neighbors := make([][]int, queryRows)
	distances := make([][]float64, queryRows)
	for qi := 0; qi < queryRows; qi++ {
		q := queryData[qi*dims : (qi+1)*dims]
		for ri := 0; ri < refRows; ri++ {
			if sameSet && qi == ri {
				continue
			}
			d := metric.Distance(q, refData[ri*dims:(ri+1)*dims])
			if d >= low && d <= high {
				neighbors[qi] = append(neighbors[qi], ri)
				distances[qi] = append(distances[qi], d)
			}
		}
	}
	return neighbors, distances
}

// bruteKNN is the exhaustive k-nearest-neighbor oracle. Results are ordered
// by ascending distance.
func bruteKNN(queryData []float64, queryRows int, refData []float64, refRows, dims int, metric DistanceMetric, k int, sameSet bool) ([][]int, [][]float64) {
	neighbors := make([][]int, queryRows)
	distances := make([][]float64, queryRows)
	for qi := 0; qi < queryRows; qi++ {
		q := queryData[qi*dims : (qi+1)*dims]
		type cand struct {
			idx  int
			dist float64
		}
		var cands []cand
		for ri := 0; ri < refRows; ri++ {
			if sameSet && qi == ri {
				continue
			}
			cands = append(cands, cand{ri, metric.Distance(q, refData[ri*dims:(ri+1)*dims])})
		}
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].dist != cands[j].dist {
				return cands[i].dist < cands[j].dist
			}
			return cands[i].idx < cands[j].idx
		})
		if len(cands) > k {
			cands = cands[:k]
		}
		for _, c := range cands {
			neighbors[qi] = append(neighbors[qi], c.idx)
			distances[qi] = append(distances[qi], c.dist)
		}
	}
	return neighbors, distances
}

// checkRangeResults compares index-sorted range results exactly on indices
// and within tolerance on distances.
func checkRangeResults(t *testing.T, label string, gotN [][]int, gotD [][]float64, wantN [][]int, wantD [][]float64) {
	t.Helper()
	if len(gotN) != len(wantN) {
		t.Fatalf("%s: got %d query results, want %d", label, len(gotN), len(wantN))
	}
	for q := range wantN {
		if len(gotN[q]) != len(wantN[q]) {
			t.Errorf("%s: query %d: got %d results %v, want %d %v",
				label, q, len(gotN[q]), gotN[q], len(wantN[q]), wantN[q])
			continue
		}
		for j := range wantN[q] {
			if gotN[q][j] != wantN[q][j] {
				t.Errorf("%s: query %d result %d: got index %d, want %d", label, q, j, gotN[q][j], wantN[q][j])
			}
			if math.Abs(gotD[q][j]-wantD[q][j]) > floatTol {
				t.Errorf("%s: query %d result %d: got distance %v, want %v", label, q, j, gotD[q][j], wantD[q][j])
			}
		}
	}
}

// checkKNNResults compares distance-sorted KNN results within tolerance on
// distances and as sets on indices (ties may legitimately reorder indices).
func checkKNNResults(t *testing.T, label string, gotN [][]int, gotD [][]float64, wantN [][]int, wantD [][]float64) {
	t.Helper()
	if len(gotN) != len(wantN) {
		t.Fatalf("%s: got %d query results, want %d", label, len(gotN), len(wantN))
	}
	for q := range wantN {
		if len(gotN[q]) != len(wantN[q]) {
			t.Errorf("%s: query %d: got %d results, want %d", label, q, len(gotN[q]), len(wantN[q]))
			continue
		}
		for j := range wantD[q] {
			if math.Abs(gotD[q][j]-wantD[q][j]) > floatTol {
				t.Errorf("%s: query %d rank %d: got distance %v, want %v", label, q, j, gotD[q][j], wantD[q][j])
			}
		}
		gotSet := make(map[int]bool, len(gotN[q]))
		for _, idx := range gotN[q] {
			gotSet[idx] = true
		}
		for _, idx := range wantN[q] {
			if !gotSet[idx] {
				t.Errorf("%s: query %d: missing neighbor %d (got %v, want %v)", label, q, idx, gotN[q], wantN[q])
			}
		}
	}
}

// recordingRules wraps a policy and counts BaseCase invocations per pair.
type recordingRules struct {
	inner Rules
	calls map[[2]int]int
}

func newRecordingRules(inner Rules) *recordingRules {
	return &recordingRules{inner: inner, calls: make(map[[2]int]int)}
}

func (r *recordingRules) totalBaseCases() int {
	total := 0
	for _, c := range r.calls {
		total += c
	}
	return total
}

func (r *recordingRules) BaseCase(queryIndex, refIndex int) float64 {
	r.calls[[2]int{queryIndex, refIndex}]++
	return r.inner.BaseCase(queryIndex, refIndex)
}

func (r *recordingRules) Score(queryNode, refNode Node, baseCase float64) float64 {
	return r.inner.Score(queryNode, refNode, baseCase)
}

func (r *recordingRules) Rescore(queryNode, refNode Node, oldScore float64) float64 {
	return r.inner.Rescore(queryNode, refNode, oldScore)
}

func (r *recordingRules) ScorePoint(queryIndex int, refNode Node) float64 {
	return r.inner.ScorePoint(queryIndex, refNode)
}

func (r *recordingRules) RescorePoint(queryIndex int, refNode Node, oldScore float64) float64 {
	return r.inner.RescorePoint(queryIndex, refNode, oldScore)
}
