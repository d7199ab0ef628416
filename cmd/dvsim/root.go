package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/config"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

// cfg is populated before any subcommand runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "dvsim",
	Short: "Distance-vector routing simulator",
	Long: `dvsim computes shortest paths over an undirected router network with
synchronous Bellman-Ford relaxation and records the distance table after
every pass, so convergence can be inspected one step at a time.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		level, err := logging.ParseLevel(loaded.LogLevel)
		if err != nil {
			return err
		}
		logging.Configure(os.Stderr, level, loaded.LogJSON)
		cfg = loaded
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", config.DefaultFile, "Path to a TOML config file")
	pf.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	pf.Bool("log-json", false, "Emit logs as JSON")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.Version = version
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
