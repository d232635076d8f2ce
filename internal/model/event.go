package model

import (
	"time"
)

// EventType represents a session lifecycle event.
type EventType string

const (
	EventTypeStartedNew       EventType = "started_new"
	EventTypeResumed          EventType = "resumed"
	EventTypeArchived         EventType = "archived"
	EventTypeEnded            EventType = "ended"
	EventTypeCompletionFailed EventType = "completion_failed"
)

// SessionEvent is published whenever a session changes state in a way
// worth observing outside the process.
type SessionEvent struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	Type         EventType `json:"type"`
	ArchiveIndex *int      `json:"archive_index,omitempty"`
	TurnCount    int       `json:"turn_count"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
