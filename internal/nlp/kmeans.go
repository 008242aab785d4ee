package nlp

import (
	"fmt"
	"math/rand/v2"
)

// MaxIterations bounds the Lloyd iterations of KMeans
const MaxIterations = 100

// Clustering is the result of a k-means run
type Clustering struct {
	Assignments []int
	Centroids   [][]float64
	Iterations  int
}

// KMeans clusters L2-normalised rows of dimension dim into k groups using
// cosine similarity. The first centroid is drawn with seed, so the same
// input always yields the same clustering.
func KMeans(rows []Vector, dim, k int, seed uint64) (*Clustering, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}
	if k > len(rows) {
		return nil, fmt.Errorf("k=%d exceeds the number of documents (%d)", k, len(rows))
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	centroids := seedCentroids(rows, dim, k, rng)

	assign := make([]int, len(rows))
	for i := range assign {
		assign[i] = -1
	}

	iter := 0
	for iter < MaxIterations {
		iter++
		changed := false
		for i, row := range rows {
			best := nearest(row, centroids)
			if best != assign[i] {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		updateCentroids(rows, assign, centroids)
	}

	return &Clustering{Assignments: assign, Centroids: centroids, Iterations: iter}, nil
}

func nearest(row Vector, centroids [][]float64) int {
	best, bestSim := 0, -2.0
	for c, centroid := range centroids {
		if sim := row.Dot(centroid); sim > bestSim {
			best, bestSim = c, sim
		}
	}
	return best
}

// seedCentroids starts from a random row and then repeatedly takes the row
// farthest (by cosine distance) from every centroid chosen so far. Ties go
// to the lowest index.
func seedCentroids(rows []Vector, dim, k int, rng *rand.Rand) [][]float64 {
	chosen := make(map[int]bool, k)
	centroids := make([][]float64, 0, k)

	add := func(i int) {
		chosen[i] = true
		c := make([]float64, dim)
		rows[i].AddTo(c)
		centroids = append(centroids, c)
	}
	add(rng.IntN(len(rows)))

	for len(centroids) < k {
		next, farthest := -1, -1.0
		for i, row := range rows {
			if chosen[i] {
				continue
			}
			d := 1 - row.Dot(centroids[0])
			for _, c := range centroids[1:] {
				d = min(d, 1-row.Dot(c))
			}
			if d > farthest {
				next, farthest = i, d
			}
		}
		add(next)
	}
	return centroids
}

func updateCentroids(rows []Vector, assign []int, centroids [][]float64) {
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for c := range centroids {
		sums[c] = make([]float64, len(centroids[c]))
	}
	for i, row := range rows {
		c := assign[i]
		counts[c]++
		row.AddTo(sums[c])
	}
	for c := range centroids {
		// an empty cluster keeps its previous centroid
		if counts[c] == 0 {
			continue
		}
		normalizeDense(sums[c])
		centroids[c] = sums[c]
	}
}
