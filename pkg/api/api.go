package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/routing"
)

// ErrMissingInput is the umbrella error for requests the engine is never run on.
var ErrMissingInput = errors.New("missing edges or source node")

var (
	ErrMissingEdges  = fmt.Errorf("%w: edges", ErrMissingInput)
	ErrMissingSource = fmt.Errorf("%w: source", ErrMissingInput)
)

// Weight is a link cost that accepts JSON numbers, numeric strings or garbage.
// Anything that does not parse becomes 0.
type Weight int64

func (w *Weight) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			*w = 0
			return nil
		}
		*w = Weight(routing.ParseWeight(s))
		return nil
	}
	*w = Weight(routing.ParseWeight(json.Number(data)))
	return nil
}

// EdgeInput is one link as a client sends it
type EdgeInput struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight Weight `json:"weight"`
}

// Request is the body of a shortest-path computation.
// A nil Edges means the field was absent or null; an empty slice is a valid,
// edgeless network.
type Request struct {
	Edges  []EdgeInput `json:"edges"`
	Source string      `json:"source"`
}

// Validate rejects requests missing edges or source
func (r *Request) Validate() error {
	if r.Edges == nil {
		return ErrMissingEdges
	}
	if routing.NormalizeNode(r.Source) == "" {
		return ErrMissingSource
	}
	return nil
}

// Normalize converts the request to engine input with trimmed, uppercased labels
func (r *Request) Normalize() ([]routing.Edge, string) {
	edges := make([]routing.Edge, 0, len(r.Edges))
	for _, e := range r.Edges {
		edges = append(edges, routing.Edge{
			From:   routing.NormalizeNode(e.From),
			To:     routing.NormalizeNode(e.To),
			Weight: int64(e.Weight),
		})
	}
	return edges, routing.NormalizeNode(r.Source)
}

// Decode reads a request body and validates it
func Decode(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// ErrorResponse is the JSON body of every rejected request
type ErrorResponse struct {
	Error string `json:"error"`
}
