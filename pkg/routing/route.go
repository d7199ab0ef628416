package routing

import "slices"

// Route follows parent links back from node and returns the path starting at
// the source. It reports false when node is unknown or unreachable, or when the
// parent chain never reaches the source, which happens under a negative cycle.
func (r *Result) Route(node string) ([]string, bool) {
	entry, ok := r.Distances[node]
	if !ok || entry.Dist.IsInfinite() {
		return nil, false
	}

	path := []string{node}
	seen := map[string]bool{node: true}
	for cur := entry; cur.HasParent(); {
		p := cur.Parent
		if seen[p] {
			return nil, false
		}
		seen[p] = true
		path = append(path, p)
		cur = r.Distances[p]
	}
	if path[len(path)-1] != r.Source {
		return nil, false
	}

	slices.Reverse(path)
	return path, true
}

// NextHop returns the neighbour of the source that traffic for node leaves
// through. The source itself has no next hop.
func (r *Result) NextHop(node string) (string, bool) {
	path, ok := r.Route(node)
	if !ok || len(path) < 2 {
		return "", false
	}
	return path[1], true
}
