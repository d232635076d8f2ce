// Package model defines data structures for the travel chat service.
package model

import (
	"github.com/huandu/go-clone"
)

// Conversation is an ordered sequence of turns, oldest first.
type Conversation []Turn

// Clone returns a copy that shares no backing storage with c.
func (c Conversation) Clone() Conversation {
	if c == nil {
		return Conversation{}
	}
	return clone.Clone(c).(Conversation)
}

// Len returns the number of turns.
func (c Conversation) Len() int {
	return len(c)
}

// FirstUserTurn returns the earliest turn authored by the user.
func (c Conversation) FirstUserTurn() (Turn, bool) {
	for _, t := range c {
		if t.Role == RoleUser {
			return t, true
		}
	}
	return Turn{}, false
}

// ArchiveEntry is one line of the archived conversation listing.
type ArchiveEntry struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}
