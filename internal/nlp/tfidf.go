package nlp

import (
	"math"
	"sort"
)

// Vector is a sparse vector with vocabulary indices in ascending order.
// Sums always run in index order so results are reproducible to the bit.
type Vector struct {
	Index []int
	Value []float64
}

// NewVector builds a Vector from index/weight pairs
func NewVector(weights map[int]float64) Vector {
	v := Vector{Index: make([]int, 0, len(weights))}
	for i := range weights {
		v.Index = append(v.Index, i)
	}
	sort.Ints(v.Index)
	v.Value = make([]float64, len(v.Index))
	for n, i := range v.Index {
		v.Value[n] = weights[i]
	}
	return v
}

// Len returns the number of non-zero entries
func (v Vector) Len() int {
	return len(v.Index)
}

// Dot returns the dot product of a sparse and a dense vector
func (v Vector) Dot(dense []float64) float64 {
	var sum float64
	for n, i := range v.Index {
		sum += v.Value[n] * dense[i]
	}
	return sum
}

// AddTo adds v into a dense vector
func (v Vector) AddTo(dense []float64) {
	for n, i := range v.Index {
		dense[i] += v.Value[n]
	}
}

// Matrix is a TF-IDF document-term matrix
type Matrix struct {
	Terms []string
	IDF   []float64
	Rows  []Vector
}

// TFIDF vectorises tokenised documents. Terms found in fewer than minDF
// documents are dropped. IDF is smoothed as ln((1+n)/(1+df))+1 and every
// row is L2-normalised; documents without known terms get an empty row.
func TFIDF(docs [][]string, minDF int) *Matrix {
	if minDF < 1 {
		minDF = 1
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, t := range doc {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	var terms []string
	for t, n := range df {
		if n >= minDF {
			terms = append(terms, t)
		}
	}
	sort.Strings(terms)

	index := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(docs))
	for i, t := range terms {
		index[t] = i
		idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	rows := make([]Vector, len(docs))
	for d, doc := range docs {
		counts := make(map[int]float64)
		for _, t := range doc {
			if i, ok := index[t]; ok {
				counts[i]++
			}
		}
		row := NewVector(counts)
		for n, i := range row.Index {
			row.Value[n] *= idf[i]
		}
		normalizeDense(row.Value)
		rows[d] = row
	}

	return &Matrix{Terms: terms, IDF: idf, Rows: rows}
}

func normalizeDense(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
}

// TopTerms returns the n terms with the largest weights in a dense vector
func (m *Matrix) TopTerms(weights []float64, n int) []string {
	idx := make([]int, 0, len(weights))
	for i, w := range weights {
		if w > 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if weights[idx[a]] != weights[idx[b]] {
			return weights[idx[a]] > weights[idx[b]]
		}
		return idx[a] < idx[b]
	})
	if n > 0 && len(idx) > n {
		idx = idx[:n]
	}

	terms := make([]string, len(idx))
	for i, j := range idx {
		terms[i] = m.Terms[j]
	}
	return terms
}
