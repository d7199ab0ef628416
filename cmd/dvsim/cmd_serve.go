package main

import (
	"github.com/spf13/cobra"

	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/logging"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the routing API over HTTP",
	Long: `Starts the HTTP API. POST /api/bellman-ford computes a full result,
/api/bellman-ford/stream replays it pass by pass as server-sent events and
/api/bellman-ford/dot draws the network. Runs are announced on
/api/subscribe/routing_runs.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("host", "", "Interface to listen on (empty for all)")
	f.Int("port", 5001, "Port to listen on")
	f.String("cors-origin", "*", "Allowed CORS origin (empty disables CORS headers)")
	f.Duration("stream-delay", 0, "Pause between streamed snapshots")
}

func runServe(cmd *cobra.Command, _ []string) error {
	server := web.NewServer(web.Options{
		CORSOrigin:  cfg.CORSOrigin,
		StreamDelay: cfg.StreamDelay,
	})

	logging.Debug("server configured", "addr", cfg.Addr(), "corsOrigin", cfg.CORSOrigin, "streamDelay", cfg.StreamDelay)
	return server.Start(cmd.Context(), cfg.Addr())
}
