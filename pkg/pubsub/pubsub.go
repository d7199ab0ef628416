package pubsub

import (
	"context"
	"encoding/json"
)

// TopicRoutingRuns carries a RunSummary for every completed computation
const TopicRoutingRuns = "routing_runs"

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "routing_runs")
	Type    string          `json:"type"`    // Event type (e.g., "computed", "snapshot", "result")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data any) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// RunSummary describes one finished Bellman-Ford computation
type RunSummary struct {
	RunID            string `json:"runId"`
	Source           string `json:"source"`
	Nodes            int    `json:"nodes"`
	Arcs             int    `json:"arcs"`
	Passes           int    `json:"passes"`
	HasNegativeCycle bool   `json:"hasNegativeCycle"`
}
