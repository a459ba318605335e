package graph

import (
	"errors"
	"math"

	"github.com/poiesic/pcrank/core"
)

var (
	// ErrNotConverged is returned when power iteration exceeds its iteration cap.
	ErrNotConverged = errors.New("pagerank did not converge")

	// ErrNumerical is returned when iteration produces non-finite values.
	ErrNumerical = errors.New("pagerank produced non-finite values")
)

// normalizeEpsilon is the spread below which min-max normalization yields zeros.
const normalizeEpsilon = 1e-12

// Options controls PageRank power iteration.
type Options struct {
	Damping       float64
	Tolerance     float64
	MaxIterations int
}

// DefaultOptions returns damping 0.85, tolerance 1e-6 and 200 iterations.
func DefaultOptions() Options {
	return Options{
		Damping:       0.85,
		Tolerance:     1e-6,
		MaxIterations: 200,
	}
}

// PageRank computes weighted PageRank over g by power iteration.
//
// Each node distributes its rank to neighbours in proportion to edge weight.
// Rank held by nodes without edges is spread uniformly. Iteration stops when
// the L1 change between rounds drops below Tolerance times the node count.
func PageRank(g *Graph, opts Options) (map[core.ID]float64, error) {
	nodes := g.Nodes()
	n := len(nodes)
	if n == 0 {
		return map[core.ID]float64{}, nil
	}

	index := make(map[core.ID]int, n)
	for i, id := range nodes {
		index[id] = i
	}

	type arc struct {
		to     int
		weight float64
	}
	out := make([][]arc, n)
	var dangling []int
	for i, id := range nodes {
		total := 0.0
		for _, w := range g.adj[id] {
			total += w
		}
		if total <= 0 {
			dangling = append(dangling, i)
			continue
		}
		for nbr, w := range g.adj[id] {
			out[i] = append(out[i], arc{to: index[nbr], weight: w / total})
		}
	}

	uniform := 1.0 / float64(n)
	x := make([]float64, n)
	for i := range x {
		x[i] = uniform
	}
	next := make([]float64, n)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		danglingSum := 0.0
		for _, i := range dangling {
			danglingSum += x[i]
		}
		danglingSum *= opts.Damping

		for i := range next {
			next[i] = 0
		}
		for i, arcs := range out {
			for _, a := range arcs {
				next[a.to] += opts.Damping * x[i] * a.weight
			}
		}

		diff := 0.0
		for i := range next {
			next[i] += danglingSum*uniform + (1-opts.Damping)*uniform
			if math.IsNaN(next[i]) || math.IsInf(next[i], 0) {
				return nil, ErrNumerical
			}
			diff += math.Abs(next[i] - x[i])
		}
		x, next = next, x

		if diff < float64(n)*opts.Tolerance {
			result := make(map[core.ID]float64, n)
			for i, id := range nodes {
				result[id] = x[i]
			}
			return result, nil
		}
	}

	return nil, ErrNotConverged
}

// MinMaxNormalize rescales values into [0,1]. When all values are equal
// (within 1e-12) every node maps to 0.
func MinMaxNormalize(values map[core.ID]float64) map[core.ID]float64 {
	result := make(map[core.ID]float64, len(values))
	if len(values) == 0 {
		return result
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	spread := hi - lo
	for id, v := range values {
		if spread <= normalizeEpsilon {
			result[id] = 0
			continue
		}
		result[id] = (v - lo) / spread
	}
	return result
}

// Centrality returns min-max normalized PageRank for every node of g.
// If PageRank fails every node scores 0 and the error is returned alongside
// the zero vector so callers can report it.
func Centrality(g *Graph, opts Options) (map[core.ID]float64, error) {
	ranks, err := PageRank(g, opts)
	if err != nil {
		zeros := make(map[core.ID]float64, g.Len())
		for _, id := range g.Nodes() {
			zeros[id] = 0
		}
		return zeros, err
	}
	return MinMaxNormalize(ranks), nil
}
