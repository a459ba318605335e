package graph

import (
	"slices"

	"github.com/poiesic/pcrank/core"
)

// Graph is an undirected weighted graph keyed by candidate ID.
// Edge weights count how many editions two candidates served on together.
type Graph struct {
	nodes map[core.ID]struct{}
	adj   map[core.ID]map[core.ID]float64
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[core.ID]struct{}),
		adj:   make(map[core.ID]map[core.ID]float64),
	}
}

// AddNode adds a node with no edges. Adding an existing node is a no-op.
func (g *Graph) AddNode(id core.ID) {
	g.nodes[id] = struct{}{}
}

// AddWeight increments the weight of the edge between a and b by w, creating
// it (and both nodes) when needed. Self-loops are ignored.
func (g *Graph) AddWeight(a, b core.ID, w float64) {
	if a == b {
		return
	}
	g.AddNode(a)
	g.AddNode(b)
	if g.adj[a] == nil {
		g.adj[a] = make(map[core.ID]float64)
	}
	if g.adj[b] == nil {
		g.adj[b] = make(map[core.ID]float64)
	}
	g.adj[a][b] += w
	g.adj[b][a] += w
}

// Weight returns the weight of the edge between a and b, or 0 if absent.
func (g *Graph) Weight(a, b core.ID) float64 {
	return g.adj[a][b]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, nbrs := range g.adj {
		n += len(nbrs)
	}
	return n / 2
}

// Nodes returns node IDs in ascending order.
func (g *Graph) Nodes() []core.ID {
	ids := make([]core.ID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Builder turns committee memberships into a co-membership graph.
type Builder interface {
	Build(memberships []core.Membership) *Graph
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(memberships []core.Membership) *Graph

// Build calls f(memberships).
func (f BuilderFunc) Build(memberships []core.Membership) *Graph {
	return f(memberships)
}

// DefaultBuilder builds graphs with BuildCoMembership.
var DefaultBuilder Builder = BuilderFunc(BuildCoMembership)

// BuildCoMembership creates one node per candidate with at least one
// membership and links every pair of distinct candidates that served on the
// same edition, adding 1 to the edge weight per shared edition.
func BuildCoMembership(memberships []core.Membership) *Graph {
	g := New()

	byEdition := make(map[core.ID][]core.ID)
	var editions []core.ID
	for _, m := range memberships {
		g.AddNode(m.CandidateID)
		members, seen := byEdition[m.EditionID]
		if !seen {
			editions = append(editions, m.EditionID)
		}
		if !slices.Contains(members, m.CandidateID) {
			byEdition[m.EditionID] = append(members, m.CandidateID)
		}
	}

	for _, edition := range editions {
		members := byEdition[edition]
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				g.AddWeight(members[i], members[j], 1)
			}
		}
	}

	return g
}
