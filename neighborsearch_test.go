package dualtree

import (
	"testing"
)

func TestNeighborSearchModesAgree(t *testing.T) {
	n, dims, k := 60, 3, 4
	data := randomData(60, n, dims)
	wantN, wantD := bruteKNN(data, n, data, n, dims, EuclideanMetric{}, k, true)

	for _, kind := range []TreeKind{TreeKindCover, TreeKindBinary} {
		for name, cfg := range modeConfigs(kind) {
			t.Run(string(kind)+"/"+name, func(t *testing.T) {
				ns, err := NewNeighborSearch(data, n, dims, cfg)
				if err != nil {
					t.Fatal(err)
				}
				gotN, gotD, err := ns.Search(k)
				if err != nil {
					t.Fatal(err)
				}
				checkKNNResults(t, name, gotN, gotD, wantN, wantD)
			})
		}
	}
}

func TestNeighborSearchWithQueries(t *testing.T) {
	refN, queryN, dims, k := 60, 25, 3, 3
	refData := randomData(61, refN, dims)
	queryData := randomData(62, queryN, dims)
	wantN, wantD := bruteKNN(queryData, queryN, refData, refN, dims, EuclideanMetric{}, k, false)

	for _, kind := range []TreeKind{TreeKindCover, TreeKindBinary} {
		for name, cfg := range modeConfigs(kind) {
			t.Run(string(kind)+"/"+name, func(t *testing.T) {
				ns, err := NewNeighborSearchWithQueries(refData, refN, queryData, queryN, dims, cfg)
				if err != nil {
					t.Fatal(err)
				}
				gotN, gotD, err := ns.Search(k)
				if err != nil {
					t.Fatal(err)
				}
				checkKNNResults(t, name, gotN, gotD, wantN, wantD)
			})
		}
	}
}

func TestNeighborSearchPrebuilt(t *testing.T) {
	n, dims, k := 50, 3, 3
	data := randomData(63, n, dims)
	metric := EuclideanMetric{}
	tree := NewCoverTree(data, n, dims, metric, 1.3)

	ns, err := NewNeighborSearchPrebuilt(tree, nil, DefaultSearchConfig())
	if err != nil {
		t.Fatal(err)
	}
	gotN, gotD, err := ns.Search(k)
	if err != nil {
		t.Fatal(err)
	}
	wantN, wantD := bruteKNN(data, n, data, n, dims, metric, k, true)
	checkKNNResults(t, "prebuilt", gotN, gotD, wantN, wantD)
}

func TestNeighborSearchDistancesAscending(t *testing.T) {
	n, dims, k := 40, 2, 5
	data := randomData(64, n, dims)
	ns, err := NewNeighborSearch(data, n, dims, DefaultSearchConfig())
	if err != nil {
		t.Fatal(err)
	}
	_, distances, err := ns.Search(k)
	if err != nil {
		t.Fatal(err)
	}
	for q := range distances {
		if len(distances[q]) != k {
			t.Fatalf("query %d has %d neighbors, want %d", q, len(distances[q]), k)
		}
		for j := 1; j < len(distances[q]); j++ {
			if distances[q][j] < distances[q][j-1] {
				t.Fatalf("query %d distances out of order: %v", q, distances[q])
			}
		}
	}
}

func TestNeighborSearchKValidation(t *testing.T) {
	n, dims := 10, 2
	data := randomData(65, n, dims)

	ns, err := NewNeighborSearch(data, n, dims, DefaultSearchConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ns.Search(0); err == nil {
		t.Error("k = 0 accepted")
	}
	// Monochromatic: a point is not its own neighbor, so k tops out at n-1.
	if _, _, err := ns.Search(n); err == nil {
		t.Error("k = n accepted for monochromatic search")
	}
	if _, _, err := ns.Search(n - 1); err != nil {
		t.Errorf("k = n-1 rejected: %v", err)
	}

	// Bichromatic: every reference point is eligible.
	queryData := randomData(66, 5, dims)
	bi, err := NewNeighborSearchWithQueries(data, n, queryData, 5, dims, DefaultSearchConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := bi.Search(n); err != nil {
		t.Errorf("k = refRows rejected for bichromatic search: %v", err)
	}
	if _, _, err := bi.Search(n + 1); err == nil {
		t.Error("k > refRows accepted")
	}

	if _, err := NewNeighborSearchWithQueries(data, n, nil, 0, dims, DefaultSearchConfig()); err == nil {
		t.Error("nil query data accepted")
	}
}
