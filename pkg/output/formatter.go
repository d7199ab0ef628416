package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/routing"
)

// Options controls console rendering
type Options struct {
	// Color turns ANSI escapes on. The writer is never inspected, so callers
	// decide whether it is a terminal.
	Color bool
	Links []Link // printed after the routing table when set
}

// Link lists the routers directly attached to one router
type Link struct {
	Router     string
	Neighbours []string
}

type palette struct {
	bold, red, green, yellow, cyan, faint *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		bold:   color.New(color.Bold),
		red:    color.New(color.FgRed, color.Bold),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		cyan:   color.New(color.FgCyan),
		faint:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.bold, p.red, p.green, p.yellow, p.cyan, p.faint} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// PrintResult prints the convergence table and the final routing table
func PrintResult(w io.Writer, res *routing.Result, opts Options) {
	p := newPalette(opts.Color)

	p.bold.Fprintf(w, "Distance-vector routing from %s\n", res.Source)
	p.bold.Fprintln(w, strings.Repeat("=", 32))
	fmt.Fprintf(w, "Routers: %d  Passes: %d\n\n", len(res.Nodes), res.Passes())

	printSnapshots(w, res, p)
	fmt.Fprintln(w)
	printRoutingTable(w, res, p)
	if len(opts.Links) > 0 {
		fmt.Fprintln(w)
		printLinks(w, opts.Links, p)
	}

	if res.HasNegativeCycle {
		fmt.Fprintln(w)
		p.red.Fprintln(w, "⚠ Negative cycle detected! Costs will count to infinity.")
	}
}

// printSnapshots prints one row per pass with a column per router in
// canonical order. Cells that changed since the previous pass are highlighted.
func printSnapshots(w io.Writer, res *routing.Result, p palette) {
	widths := make([]int, len(res.Nodes))
	for i, n := range res.Nodes {
		widths[i] = utf8.RuneCountInString(n)
		for _, s := range res.Snapshots {
			widths[i] = max(widths[i], utf8.RuneCountInString(s.Dists[n].Dist.String()))
		}
	}
	iterWidth := max(len("Iter"), len(fmt.Sprint(res.Passes())))

	p.cyan.Fprint(w, pad("Iter", iterWidth))
	for i, n := range res.Nodes {
		fmt.Fprint(w, " │ ")
		p.cyan.Fprint(w, pad(n, widths[i]))
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, strings.Repeat("─", iterWidth))
	for i := range res.Nodes {
		fmt.Fprint(w, "─┼─"+strings.Repeat("─", widths[i]))
	}
	fmt.Fprintln(w)

	for si, s := range res.Snapshots {
		fmt.Fprint(w, pad(fmt.Sprint(s.Iteration), iterWidth))
		for i, n := range res.Nodes {
			fmt.Fprint(w, " │ ")
			d := s.Dists[n].Dist
			cell := pad(d.String(), widths[i])
			switch {
			case si > 0 && d != res.Snapshots[si-1].Dists[n].Dist:
				p.yellow.Fprint(w, cell)
			case d.IsInfinite():
				p.faint.Fprint(w, cell)
			default:
				fmt.Fprint(w, cell)
			}
		}
		fmt.Fprintln(w)
	}
}

func printRoutingTable(w io.Writer, res *routing.Result, p palette) {
	p.bold.Fprintln(w, "Routing table:")
	for _, n := range res.Nodes {
		entry := res.Distances[n]
		parent := "-"
		if entry.HasParent() {
			parent = entry.Parent
		}

		line := fmt.Sprintf("  %-*s cost %-6s via %-*s", width(res.Nodes), n, entry.Dist, width(res.Nodes), parent)
		switch {
		case entry.Dist.IsInfinite():
			p.faint.Fprintf(w, "%s unreachable\n", line)
			continue
		case n == res.Source:
			p.green.Fprintf(w, "%s (source)\n", line)
			continue
		}

		fmt.Fprint(w, line)
		if hop, ok := res.NextHop(n); ok {
			route, _ := res.Route(n)
			fmt.Fprintf(w, " next hop %s  route %s", hop, strings.Join(route, " → "))
		}
		fmt.Fprintln(w)
	}
}

func printLinks(w io.Writer, links []Link, p palette) {
	p.bold.Fprintln(w, "Links:")
	routers := make([]string, len(links))
	for i, l := range links {
		routers[i] = l.Router
	}
	for _, l := range links {
		fmt.Fprintf(w, "  %-*s ", width(routers), l.Router)
		if len(l.Neighbours) == 0 {
			p.faint.Fprintln(w, "(none)")
			continue
		}
		fmt.Fprintln(w, strings.Join(l.Neighbours, ", "))
	}
}

func width(nodes []string) int {
	w := 1
	for _, n := range nodes {
		w = max(w, utf8.RuneCountInString(n))
	}
	return w
}

// pad right-aligns s in a field of n runes
func pad(s string, n int) string {
	if gap := n - utf8.RuneCountInString(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}
