package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/api"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/pubsub"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/routing"
)

const chainBody = `{"source":"a","edges":[
	{"from":"a","to":"b","weight":1},
	{"from":"b","to":"c","weight":"1"}
]}`

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestBellmanFord(t *testing.T) {
	s := NewServer(Options{CORSOrigin: "*"})
	defer s.Publisher().Close()

	rec := post(t, s, "/api/bellman-ford", chainBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}

	var res routing.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, res.Nodes); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	if got := res.Distances["C"]; got.Dist != routing.Finite(2) || got.Parent != "B" {
		t.Errorf("C = %+v, want 2 via B", got)
	}
	if len(res.Snapshots) != 3 {
		t.Errorf("got %d snapshots, want 3", len(res.Snapshots))
	}
	if got := res.Snapshots[1].Dists["C"]; !got.Dist.IsInfinite() {
		t.Errorf("C after pass 1 = %+v, want unreachable", got)
	}
}

func TestBellmanFordRejectsBadInput(t *testing.T) {
	s := NewServer(Options{})
	defer s.Publisher().Close()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing edges", `{"source":"A"}`, missingInputMessage},
		{"null edges", `{"edges":null,"source":"A"}`, missingInputMessage},
		{"missing source", `{"edges":[]}`, missingInputMessage},
		{"blank source", `{"edges":[],"source":" "}`, missingInputMessage},
		{"malformed JSON", `{"edges":`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, "/api/bellman-ford", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var resp api.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if resp.Error == "" || (tt.want != "" && resp.Error != tt.want) {
				t.Errorf("error = %q, want %q", resp.Error, tt.want)
			}
		})
	}
}

func TestBellmanFordMethodNotAllowed(t *testing.T) {
	s := NewServer(Options{})
	defer s.Publisher().Close()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bellman-ford", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestPreflight(t *testing.T) {
	s := NewServer(Options{CORSOrigin: "http://localhost:3000"})
	defer s.Publisher().Close()

	req := httptest.NewRequest(http.MethodOptions, "/api/bellman-ford", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestStream(t *testing.T) {
	s := NewServer(Options{StreamDelay: time.Millisecond})
	defer s.Publisher().Close()

	rec := post(t, s, "/api/bellman-ford/stream", chainBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	var types []string
	var events []pubsub.Event
	scanner := bufio.NewScanner(rec.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			types = append(types, name)
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			var ev pubsub.Event
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				t.Fatalf("bad event payload: %v", err)
			}
			events = append(events, ev)
		}
	}

	if diff := cmp.Diff([]string{"snapshot", "snapshot", "snapshot", "result"}, types); diff != "" {
		t.Fatalf("event types mismatch (-want +got):\n%s", diff)
	}

	var snap routing.Snapshot
	if err := json.Unmarshal(events[2].Data, &snap); err != nil {
		t.Fatalf("bad snapshot: %v", err)
	}
	if snap.Iteration != 2 || snap.Dists["C"].Dist != routing.Finite(2) {
		t.Errorf("last snapshot = %+v", snap)
	}

	var res routing.Result
	if err := json.Unmarshal(events[3].Data, &res); err != nil {
		t.Fatalf("bad result: %v", err)
	}
	if res.HasNegativeCycle || len(res.Snapshots) != 3 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestStreamStopsWhenClientLeaves(t *testing.T) {
	s := NewServer(Options{StreamDelay: time.Hour})
	defer s.Publisher().Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/bellman-ford/stream", strings.NewReader(chainBody)).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		s.Handler().ServeHTTP(rec, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler did not return after client disconnect")
	}
}

func TestDOT(t *testing.T) {
	s := NewServer(Options{})
	defer s.Publisher().Close()

	rec := post(t, s, "/api/bellman-ford/dot", chainBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"graph G {", `"A" -- "B"`, `"B" -- "C"`, "penwidth=3"} {
		if !strings.Contains(body, want) {
			t.Errorf("DOT missing %q:\n%s", want, body)
		}
	}

	rec = post(t, s, "/api/bellman-ford/dot?iteration=9", chainBody)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out of range iteration: status = %d, want 400", rec.Code)
	}
	rec = post(t, s, "/api/bellman-ford/dot?format=png", chainBody)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format: status = %d, want 400", rec.Code)
	}
}

func TestDOTSVG(t *testing.T) {
	s := NewServer(Options{})
	defer s.Publisher().Close()

	rec := post(t, s, "/api/bellman-ford/dot?format=svg&iteration=1", chainBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("response is not SVG")
	}
}

func TestHealth(t *testing.T) {
	s := NewServer(Options{})
	defer s.Publisher().Close()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"status":"ok"}` {
		t.Errorf("health = %d %s", rec.Code, rec.Body)
	}
}

func TestSubscribeRoutingRuns(t *testing.T) {
	s := NewServer(Options{})
	defer s.Publisher().Close()

	if rec := post(t, s, "/api/bellman-ford", chainBody); rec.Code != http.StatusOK {
		t.Fatalf("compute failed: %d", rec.Code)
	}

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/subscribe/routing_runs", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	// The last run is replayed to new subscribers
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		var ev pubsub.Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			t.Fatalf("bad event: %v", err)
		}
		var summary pubsub.RunSummary
		if err := json.Unmarshal(ev.Data, &summary); err != nil {
			t.Fatalf("bad summary: %v", err)
		}
		want := pubsub.RunSummary{RunID: summary.RunID, Source: "A", Nodes: 3, Arcs: 4, Passes: 2}
		if diff := cmp.Diff(want, summary); diff != "" {
			t.Errorf("summary mismatch (-want +got):\n%s", diff)
		}
		if summary.RunID == "" {
			t.Error("summary has no run ID")
		}
		return
	}
	t.Fatalf("no event received: %v", scanner.Err())
}

func TestStartShutsDownOnCancel(t *testing.T) {
	s := NewServer(Options{})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	if err := s.Publisher().Publish(pubsub.TopicRoutingRuns, "computed", nil); err == nil {
		t.Error("publisher should be closed after shutdown")
	}
}
