package network

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/routing"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ErrMismatch is returned by Verify when the engine and the reference solver disagree.
var ErrMismatch = errors.New("engine result differs from reference solver")

// Network is a router topology backed by a gonum weighted directed graph.
// Each undirected link is stored as two arcs; parallel links collapse to the
// cheapest one since only the minimum can lie on a shortest path.
type Network struct {
	graph  *simple.WeightedDirectedGraph
	ids    map[string]int64 // router label -> graph ID
	labels []string         // graph ID -> router label

	// Self-loops cannot live in a simple graph. Only negative ones matter.
	negativeLoops map[string]bool
}

// New creates an empty network
func New() *Network {
	return &Network{
		graph:         simple.NewWeightedDirectedGraph(0, math.Inf(1)),
		ids:           make(map[string]int64),
		negativeLoops: make(map[string]bool),
	}
}

// Build creates a network from an edge list, skipping edges with blank endpoints
func Build(edges []routing.Edge) *Network {
	n := New()
	for _, e := range edges {
		if strings.TrimSpace(e.From) == "" || strings.TrimSpace(e.To) == "" {
			continue
		}
		n.AddLink(e.From, e.To, e.Weight)
	}
	return n
}

// AddRouter adds a router if it is not already present
func (n *Network) AddRouter(label string) int64 {
	if id, exists := n.ids[label]; exists {
		return id
	}
	id := int64(len(n.labels))
	n.ids[label] = id
	n.labels = append(n.labels, label)
	n.graph.AddNode(simple.Node(id))
	return id
}

// AddLink adds an undirected link between two routers
func (n *Network) AddLink(a, b string, weight int64) {
	aID := n.AddRouter(a)
	bID := n.AddRouter(b)

	if aID == bID {
		if weight < 0 {
			n.negativeLoops[a] = true
		}
		return
	}

	n.setCheapest(aID, bID, float64(weight))
	n.setCheapest(bID, aID, float64(weight))
}

func (n *Network) setCheapest(from, to int64, w float64) {
	if existing := n.graph.WeightedEdge(from, to); existing != nil && existing.Weight() <= w {
		return
	}
	n.graph.SetWeightedEdge(n.graph.NewWeightedEdge(simple.Node(from), simple.Node(to), w))
}

// Routers returns all router labels in sorted order
func (n *Network) Routers() []string {
	routers := slices.Clone(n.labels)
	slices.Sort(routers)
	return routers
}

// Neighbours returns the sorted labels of routers directly linked to label
func (n *Network) Neighbours(label string) []string {
	id, exists := n.ids[label]
	if !exists {
		return nil
	}

	var neighbours []string
	iter := n.graph.From(id)
	for iter.Next() {
		neighbours = append(neighbours, n.labels[iter.Node().ID()])
	}
	slices.Sort(neighbours)
	return neighbours
}

// Partitions groups routers into islands that can reach each other. Each
// island is sorted and islands are ordered by their first router.
//
// Links are stored in both directions, so the strongly connected components
// of the graph are exactly its connected components.
func (n *Network) Partitions() [][]string {
	sccs := topo.TarjanSCC(n.graph)

	parts := make([][]string, 0, len(sccs))
	for _, scc := range sccs {
		part := make([]string, 0, len(scc))
		for _, node := range scc {
			part = append(part, n.labels[node.ID()])
		}
		slices.Sort(part)
		parts = append(parts, part)
	}
	slices.SortFunc(parts, func(a, b []string) int {
		return strings.Compare(a[0], b[0])
	})
	return parts
}

// Reference holds shortest distances computed by gonum's Bellman-Ford.
type Reference struct {
	Distances        map[string]routing.Distance
	HasNegativeCycle bool
}

// Reference solves shortest paths from source with gonum. The source is added
// as an isolated router if the network does not know it yet.
func (n *Network) Reference(source string) Reference {
	srcID := n.AddRouter(source)
	shortest, ok := path.BellmanFordFrom(n.graph.Node(srcID), n.graph)

	ref := Reference{
		Distances:        make(map[string]routing.Distance, len(n.labels)),
		HasNegativeCycle: !ok,
	}
	for id, label := range n.labels {
		w := shortest.WeightTo(int64(id))
		if math.IsInf(w, 1) {
			ref.Distances[label] = routing.Infinite
			continue
		}
		ref.Distances[label] = routing.Finite(int64(w))
		if n.negativeLoops[label] {
			ref.HasNegativeCycle = true
		}
	}
	return ref
}

// Verify recomputes res with the reference solver and reports the first
// disagreement. Distances are only compared when no negative cycle exists,
// since they are not well defined otherwise.
func Verify(edges []routing.Edge, res *routing.Result) error {
	ref := Build(edges).Reference(res.Source)

	if ref.HasNegativeCycle != res.HasNegativeCycle {
		return fmt.Errorf("%w: negative cycle engine=%t reference=%t",
			ErrMismatch, res.HasNegativeCycle, ref.HasNegativeCycle)
	}
	if ref.HasNegativeCycle {
		return nil
	}

	for _, node := range res.Nodes {
		got := res.Distances[node].Dist
		want, ok := ref.Distances[node]
		if !ok {
			return fmt.Errorf("%w: node %s unknown to reference", ErrMismatch, node)
		}
		if got != want {
			return fmt.Errorf("%w: node %s engine=%s reference=%s", ErrMismatch, node, got, want)
		}
	}
	return nil
}
