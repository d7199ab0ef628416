package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/api"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/logging"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/pubsub"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/render"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/routing"
)

// missingInputMessage is the error text existing browser clients match on
const missingInputMessage = "Missing edges or source node"

// topicStream names the per-request snapshot stream; it never goes through the publisher
const topicStream = "bellman_ford"

// Options configures the HTTP server
type Options struct {
	CORSOrigin  string
	StreamDelay time.Duration // pause between streamed snapshots
}

// Server represents the web server
type Server struct {
	router      *mux.Router
	handler     http.Handler
	publisher   pubsub.Publisher
	streamDelay time.Duration
}

// NewServer creates a new web server
func NewServer(opts Options) *Server {
	ssePublisher := pubsub.NewSSEPublisher()

	// routing_runs: buffer recent runs, new subscribers only see the latest
	ssePublisher.ConfigureTopic(pubsub.TopicRoutingRuns, pubsub.TopicConfig{
		BufferSize: 20,
		ReplayAll:  false,
	})

	s := &Server{
		router:      mux.NewRouter(),
		publisher:   ssePublisher,
		streamDelay: opts.StreamDelay,
	}
	s.setupRoutes()

	s.handler = logging.RequestIDMiddleware(logging.CORSMiddleware(opts.CORSOrigin)(s.router))
	return s
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Publisher exposes the run feed, mainly for tests
func (s *Server) Publisher() pubsub.Publisher {
	return s.publisher
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/"+pubsub.TopicRoutingRuns, s.handleSubscribeRoutingRuns).Methods("GET")

	// more specific routes must come first
	s.router.HandleFunc("/api/bellman-ford/stream", s.handleStream).Methods("POST")
	s.router.HandleFunc("/api/bellman-ford/dot", s.handleDOT).Methods("POST")
	s.router.HandleFunc("/api/bellman-ford", s.handleBellmanFord).Methods("POST")
	s.router.HandleFunc("/api/health", s.handleHealth).Methods("GET")
}

// decodeRequest reads and validates the body. It writes the error response
// itself and reports false when the handler should stop.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*api.Request, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	req, err := api.Decode(body)
	switch {
	case errors.Is(err, api.ErrMissingInput):
		logging.WarnContext(r.Context(), "rejected request", "reason", err)
		writeError(w, http.StatusBadRequest, missingInputMessage)
		return nil, false
	case err != nil:
		logging.WarnContext(r.Context(), "rejected request", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return req, true
}

// compute runs the engine and announces the run on the routing_runs topic
func (s *Server) compute(ctx context.Context, req *api.Request) ([]routing.Edge, *routing.Result) {
	edges, source := req.Normalize()

	start := time.Now()
	res := routing.Compute(edges, source)
	arcs := len(routing.Expand(edges))

	runID := logging.GetRequestID(ctx)
	if runID == "" {
		runID = uuid.New().String()
	}

	logging.DebugContext(ctx, "computed routes",
		"source", source,
		"nodes", len(res.Nodes),
		"arcs", arcs,
		"passes", res.Passes(),
		"negativeCycle", res.HasNegativeCycle,
		"durationMs", time.Since(start).Milliseconds(),
	)

	summary := pubsub.RunSummary{
		RunID:            runID,
		Source:           source,
		Nodes:            len(res.Nodes),
		Arcs:             arcs,
		Passes:           res.Passes(),
		HasNegativeCycle: res.HasNegativeCycle,
	}
	if err := s.publisher.Publish(pubsub.TopicRoutingRuns, "computed", summary); err != nil {
		logging.WarnContext(ctx, "failed to publish run summary", "error", err)
	}

	return edges, res
}

func (s *Server) handleBellmanFord(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	_, res := s.compute(r.Context(), req)
	writeJSON(w, http.StatusOK, res)
}

// handleStream replays the computation one pass at a time as SSE, followed by
// the complete result
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	_, res := s.compute(ctx, req)

	setSSEHeaders(w)
	flusher, _ := w.(http.Flusher)

	for i, snap := range res.Snapshots {
		if i > 0 && s.streamDelay > 0 {
			select {
			case <-ctx.Done():
				logging.DebugContext(ctx, "stream aborted by client", "iteration", i)
				return
			case <-time.After(s.streamDelay):
			}
		}
		if err := writeEvent(w, "snapshot", snap, i); err != nil {
			logging.WarnContext(ctx, "error writing SSE event", "error", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		logging.TraceContext(ctx, "sent snapshot", "iteration", i)
	}

	if err := writeEvent(w, "result", res, len(res.Snapshots)); err != nil {
		logging.WarnContext(ctx, "error writing SSE event", "error", err)
		return
	}
	if flusher != nil {
		flusher.Flush()
	}
}

// handleDOT draws the network with its shortest-path tree. ?format=svg renders
// through Graphviz, ?iteration=N draws an intermediate pass.
func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	edges, res := s.compute(r.Context(), req)

	opts := render.DefaultOptions()
	if it := r.URL.Query().Get("iteration"); it != "" {
		n, err := strconv.Atoi(it)
		if err != nil || n < 0 || n >= len(res.Snapshots) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("iteration must be between 0 and %d", len(res.Snapshots)-1))
			return
		}
		opts.Snapshot = n
	}
	dot := render.ToDOT(edges, res, opts)

	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		io.WriteString(w, dot)
	case "svg":
		svg, err := render.RenderSVG(r.Context(), dot)
		if err != nil {
			logging.ErrorContext(r.Context(), "failed to render SVG", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to render SVG")
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(svg)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
	}
}

func (s *Server) handleSubscribeRoutingRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Create subscription
	sub, err := s.publisher.Subscribe(ctx, pubsub.TopicRoutingRuns)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	defer sub.Close()

	setSSEHeaders(w)
	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.WarnContext(ctx, "error writing SSE event", "error", err)
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts end with ctx so open SSE streams don't block shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info("starting web server", "url", "http://"+displayAddr(addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("shutting down web server")
		s.publisher.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func displayAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" || host == "0.0.0.0" {
		return "localhost:" + port
	}
	return addr
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

func writeEvent(w io.Writer, eventType string, data any, version int) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", eventType, err)
	}
	return pubsub.WriteSSE(w, pubsub.Event{
		Topic:   topicStream,
		Type:    eventType,
		Data:    raw,
		Version: version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}
