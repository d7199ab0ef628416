package routing

import (
	"slices"
	"strings"
)

// Compute runs synchronous Bellman-Ford relaxation from source over the
// undirected edge list and records the distance table after every pass.
//
// Edges with a blank endpoint are ignored. Every other edge becomes two arcs of
// equal weight. Each pass reads only the table from before the pass, so updates
// made during a pass never feed other updates in the same pass. The loop stops
// after V-1 passes or after the first pass that changes nothing; that quiet pass
// is still recorded. A final scan flags any arc that could still be relaxed as
// evidence of a negative cycle reachable from source.
func Compute(edges []Edge, source string) *Result {
	arcs := Expand(edges)
	nodes := collectNodes(arcs, source)

	current := make(Table, len(nodes))
	for _, n := range nodes {
		current[n] = Entry{Dist: Infinite}
	}
	current[source] = Entry{Dist: Finite(0)}

	snapshots := []Snapshot{{Iteration: 0, Dists: current.Clone()}}

	for pass := 1; pass <= len(nodes)-1; pass++ {
		next, changed := relax(current, arcs)
		current = next
		snapshots = append(snapshots, Snapshot{Iteration: pass, Dists: current.Clone()})
		if !changed {
			break
		}
	}

	return &Result{
		Source:           source,
		Distances:        current,
		HasNegativeCycle: stillRelaxes(current, arcs),
		Snapshots:        snapshots,
		Nodes:            nodes,
	}
}

// Expand turns each valid edge into its forward arc followed by its reverse arc,
// preserving edge order.
func Expand(edges []Edge) []Arc {
	arcs := make([]Arc, 0, 2*len(edges))
	for _, e := range edges {
		if isBlank(e.From) || isBlank(e.To) {
			continue
		}
		arcs = append(arcs,
			Arc{From: e.From, To: e.To, Weight: e.Weight},
			Arc{From: e.To, To: e.From, Weight: e.Weight},
		)
	}
	return arcs
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// collectNodes returns the sorted, deduplicated endpoints plus source.
func collectNodes(arcs []Arc, source string) []string {
	nodes := make([]string, 0, len(arcs)+1)
	for _, a := range arcs {
		nodes = append(nodes, a.From)
	}
	nodes = append(nodes, source)
	slices.Sort(nodes)
	return slices.Compact(nodes)
}

// relax performs one pass. pre is never written.
func relax(pre Table, arcs []Arc) (Table, bool) {
	next := pre.Clone()
	changed := false
	for _, a := range arcs {
		from := pre[a.From].Dist
		if from.IsInfinite() {
			continue
		}
		candidate, floored := from.Add(a.Weight)
		if floored || candidate.Less(next[a.To].Dist) {
			next[a.To] = Entry{Dist: candidate, Parent: a.From}
			changed = true
		}
	}
	return next, changed
}

// stillRelaxes reports whether any arc could lower t further. A floored sum
// counts, since the cost it stands for is below every representable distance.
func stillRelaxes(t Table, arcs []Arc) bool {
	for _, a := range arcs {
		from := t[a.From].Dist
		if from.IsInfinite() {
			continue
		}
		candidate, floored := from.Add(a.Weight)
		if floored || candidate.Less(t[a.To].Dist) {
			return true
		}
	}
	return false
}
