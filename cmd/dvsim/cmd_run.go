package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/config"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/logging"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/network"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/output"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/render"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/routing"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/topology"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/watcher"
)

const (
	watchQuietPeriod = 200 * time.Millisecond
	watchMaxWait     = time.Second
)

var errNoFile = errors.New("a topology file is required (--file)")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute routes for a topology file",
	Long: `Reads a JSON, TOML or YAML topology with an edges list and a source
router, runs the simulation and prints the result. With --watch the file is
recomputed every time it is saved.`,
	Example: `  dvsim run --file net.yaml
  dvsim run --file net.json --source C --format svg > net.svg
  dvsim run --file net.toml --watch --verify`,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringP("file", "f", "", "Topology file (.json, .toml, .yaml)")
	f.StringP("source", "s", "", "Source router, overrides the file's source")
	f.String("format", "table", "Output format: table, json, dot, svg")
	f.BoolP("watch", "w", false, "Recompute when the topology file changes")
	f.Bool("verify", false, "Cross-check distances against a reference solver")
	f.Bool("color", true, "Colorize table output when stdout is a terminal")
}

func runRun(cmd *cobra.Command, _ []string) error {
	if cfg.File == "" {
		return errNoFile
	}
	switch cfg.Format {
	case "table", "json", "dot", "svg":
	default:
		return fmt.Errorf("unknown format %q (want table, json, dot or svg)", cfg.Format)
	}

	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	err := simulate(ctx, w, cfg)
	if !cfg.Watch {
		return err
	}
	if err != nil {
		logging.Error("simulation failed", "error", err)
	}
	return watch(ctx, w, cfg)
}

// watch recomputes on every debounced change until ctx is cancelled
func watch(ctx context.Context, w io.Writer, cfg *config.Config) error {
	fw, err := watcher.NewFileWatcher(cfg.File)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		fw.Stop()
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), watchQuietPeriod, watchMaxWait)
	debouncer.Start(ctx)

	for event := range debouncer.Output() {
		logging.Info("topology changed, recomputing", "path", event.Path, "events", event.Count)
		if err := simulate(ctx, w, cfg); err != nil {
			logging.Error("simulation failed", "error", err)
		}
	}
	return nil
}

func simulate(ctx context.Context, w io.Writer, cfg *config.Config) error {
	req, err := topology.Load(cfg.File)
	if err != nil {
		return err
	}
	if cfg.Source != "" {
		req.Source = cfg.Source
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%s: %w", cfg.File, err)
	}

	edges, source := req.Normalize()
	start := time.Now()
	res := routing.Compute(edges, source)
	logging.Debug("computed routes",
		"source", source,
		"nodes", len(res.Nodes),
		"passes", res.Passes(),
		"negativeCycle", res.HasNegativeCycle,
		"durationMs", time.Since(start).Milliseconds(),
	)

	net := network.Build(edges)
	net.AddRouter(source)
	if parts := net.Partitions(); len(parts) > 1 {
		logging.Warn("network is partitioned, some routers are unreachable", "partitions", len(parts))
		for _, part := range parts {
			logging.Debug("partition", "routers", strings.Join(part, ","))
		}
	}

	if cfg.Verify {
		if err := network.Verify(edges, res); err != nil {
			return err
		}
		logging.Info("reference solver agrees", "nodes", len(res.Nodes))
	}

	switch cfg.Format {
	case "json":
		return output.WriteJSON(w, res)
	case "dot":
		_, err := io.WriteString(w, render.ToDOT(edges, res, render.DefaultOptions()))
		return err
	case "svg":
		svg, err := render.RenderSVG(ctx, render.ToDOT(edges, res, render.DefaultOptions()))
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	default:
		output.PrintResult(w, res, output.Options{
			Color: useColor(cfg),
			Links: links(net),
		})
		return nil
	}
}

// useColor honours --color only where fatih/color detected a terminal and
// NO_COLOR is unset
func useColor(cfg *config.Config) bool {
	return cfg.Color && !color.NoColor
}

func links(net *network.Network) []output.Link {
	routers := net.Routers()
	out := make([]output.Link, 0, len(routers))
	for _, r := range routers {
		out = append(out, output.Link{Router: r, Neighbours: net.Neighbours(r)})
	}
	return out
}
