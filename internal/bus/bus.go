// Package bus provides event bus implementations for evaluation lifecycle
// notifications.
package bus

import (
	"context"
	"time"
)

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for event bus implementations.
type Bus interface {
	// Publish publishes an event to a topic.
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe subscribes to events on a topic.
	Subscribe(ctx context.Context, topic string, handler Handler) error

	// Close closes the bus and releases resources.
	Close() error
}

// Event represents a bus event.
type Event struct {
	// ID is the unique event identifier.
	ID string `json:"id"`

	// Type is the event type (e.g., "eval.corpus.completed").
	Type string `json:"type"`

	// Source is the component that generated the event.
	Source string `json:"source"`

	// Timestamp is when the event was created.
	Timestamp int64 `json:"timestamp"`

	// Payload contains the event data.
	Payload any `json:"payload"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(id, eventType, source string, payload any) Event {
	return Event{
		ID:        id,
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	}
}

// Topics for evaluation lifecycle events.
const (
	// TopicPaperEvaluated fires once per evaluated paper.
	TopicPaperEvaluated = "eval.paper.completed"

	// TopicCorpusEvaluated fires once per evaluation run with the corpus
	// summary as payload.
	TopicCorpusEvaluated = "eval.corpus.completed"
)

// CorpusEvaluatedPayload is the payload for TopicCorpusEvaluated.
type CorpusEvaluatedPayload struct {
	RunID              string  `json:"run_id"`
	Precision          float64 `json:"precision"`
	Recall             float64 `json:"recall"`
	F1                 float64 `json:"f1"`
	NumPapersEvaluated int     `json:"num_papers_evaluated"`
	NumPapersSkipped   int     `json:"num_papers_skipped"`
}

// PaperEvaluatedPayload is the payload for TopicPaperEvaluated.
type PaperEvaluatedPayload struct {
	RunID     string  `json:"run_id"`
	PaperID   string  `json:"paper_id"`
	Status    string  `json:"status"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}
