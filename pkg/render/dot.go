package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/routing"
)

// Options configures network diagram rendering.
type Options struct {
	// Distances appends the final distance to each node label.
	Distances bool

	// Snapshot selects which iteration's distances label the nodes and which
	// parent links are highlighted. Negative values mean the final table.
	Snapshot int
}

// DefaultOptions labels nodes with their final distances
func DefaultOptions() Options {
	return Options{Distances: true, Snapshot: -1}
}

// ToDOT converts a network and its computed routes to an undirected Graphviz
// graph. Each input edge is drawn once; edges carrying a parent link are bold
// and the source is drawn with a double outline.
func ToDOT(edges []routing.Edge, res *routing.Result, opts Options) string {
	table := res.Distances
	if opts.Snapshot >= 0 && opts.Snapshot < len(res.Snapshots) {
		table = res.Snapshots[opts.Snapshot].Dists
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [fontsize=12];\n")
	if res.HasNegativeCycle {
		buf.WriteString("  label=\"negative cycle detected\";\n")
		buf.WriteString("  fontcolor=red;\n")
	}
	buf.WriteString("\n")

	for _, n := range res.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n, strings.Join(nodeAttrs(n, table[n], n == res.Source, opts), ", "))
	}

	buf.WriteString("\n")
	highlighted := make(map[string]bool)
	for _, e := range edges {
		if strings.TrimSpace(e.From) == "" || strings.TrimSpace(e.To) == "" {
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", fmt.Sprint(e.Weight))}
		if child, ok := treeChild(e, table); ok && !highlighted[child] {
			highlighted[child] = true
			attrs = append(attrs, "penwidth=3", "color=\"#2563eb\"")
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(id string, entry routing.Entry, source bool, opts Options) []string {
	label := id
	if opts.Distances {
		label = id + "\nd=" + entry.Dist.String()
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if source {
		attrs = append(attrs, "peripheries=2", "fillcolor=\"#fde68a\"")
	}
	if entry.Dist.IsInfinite() {
		attrs = append(attrs, "fontcolor=grey", "color=grey")
	}
	return attrs
}

// treeChild reports which endpoint of e took its distance across e, if any.
// The parent link alone is ambiguous with parallel edges, so the weight must
// also account for the distance difference.
func treeChild(e routing.Edge, table routing.Table) (string, bool) {
	if e.From == e.To {
		return "", false
	}
	for _, pair := range [][2]string{{e.From, e.To}, {e.To, e.From}} {
		parent, child := pair[0], pair[1]
		entry := table[child]
		if entry.Parent != parent {
			continue
		}
		if sum, _ := table[parent].Dist.Add(e.Weight); sum == entry.Dist {
			return child, true
		}
	}
	return "", false
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
