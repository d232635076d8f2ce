package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/capitalize-ai/travelers-buddy/internal/model"
)

// SubjectPrefix is the prefix for all session subjects.
const SubjectPrefix = "buddy.session"

// EventSubject returns the subject for an event.
func EventSubject(sessionID string, eventType model.EventType) string {
	if sessionID == "" {
		sessionID = "anonymous"
	}
	return fmt.Sprintf("%s.%s.event.%s", SubjectPrefix, sessionID, eventType)
}

// SessionFilter returns the wildcard subject for every event of a session.
func SessionFilter(sessionID string) string {
	return fmt.Sprintf("%s.%s.>", SubjectPrefix, sessionID)
}

// Publisher sends session events as JSON on core NATS subjects.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher creates a publisher on an established client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{conn: client.Conn()}
}

// PublishEvent publishes an event.
func (p *Publisher) PublishEvent(ctx context.Context, event *model.SessionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(EventSubject(event.SessionID, event.Type), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
