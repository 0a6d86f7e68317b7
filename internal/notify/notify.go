// Package notify publishes run-completed events to NATS when configured.
// Downstream consumers (CI dashboards, chat hooks) subscribe to the subject;
// weave itself never reads the stream back.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// RunEvent describes the outcome of one batch run.
type RunEvent struct {
	RunID     string        `json:"run_id"`
	Outcome   string        `json:"outcome"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration_ns"`
	Timestamp time.Time     `json:"timestamp"`
}

// Publisher emits run events. The zero-value NopPublisher is used when no
// broker is configured.
type Publisher interface {
	PublishRun(event *RunEvent) error
	Close() error
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) PublishRun(*RunEvent) error { return nil }
func (NopPublisher) Close() error               { return nil }

// NATSPublisher publishes run events to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to the broker and returns a publisher for the
// given subject.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	if subject == "" {
		subject = "weave.runs"
	}

	conn, err := nats.Connect(url, nats.Name("weave"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS publisher initialized", "url", url, "subject", subject)
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// PublishRun emits one run-completed event.
func (p *NATSPublisher) PublishRun(event *RunEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish run event: %w", err)
	}

	slog.Debug("Published run event",
		"run_id", event.RunID,
		"outcome", event.Outcome,
		"succeeded", event.Succeeded,
		"failed", event.Failed)
	return nil
}

// Close flushes and closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		_ = p.conn.Flush()
		p.conn.Close()
	}
	return nil
}
