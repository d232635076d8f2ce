package session

import (
	"fmt"

	"github.com/capitalize-ai/travelers-buddy/internal/model"
)

const (
	titleLength = 30
	ellipsis    = "..."
)

// Store is the in-memory archive of finished conversations. Entries are
// copies, are never modified after Append and keep their index for the
// lifetime of the store.
type Store struct {
	conversations []model.Conversation
}

// NewStore creates an empty archive.
func NewStore() *Store {
	return &Store{}
}

// Append stores a copy of conv and returns its index.
func (s *Store) Append(conv model.Conversation) int {
	s.conversations = append(s.conversations, conv.Clone())
	return len(s.conversations) - 1
}

// Get returns a copy of the conversation at index.
func (s *Store) Get(index int) (model.Conversation, error) {
	if err := s.check(index); err != nil {
		return nil, err
	}
	return s.conversations[index].Clone(), nil
}

// Len returns the number of archived conversations.
func (s *Store) Len() int {
	return len(s.conversations)
}

// TitleFor returns the listing title of the conversation at index.
func (s *Store) TitleFor(index int) (string, error) {
	if err := s.check(index); err != nil {
		return "", err
	}
	return title(index, s.conversations[index]), nil
}

// Titles lists every archived conversation in index order.
func (s *Store) Titles() []model.ArchiveEntry {
	entries := make([]model.ArchiveEntry, len(s.conversations))
	for i, conv := range s.conversations {
		entries[i] = model.ArchiveEntry{Index: i, Title: title(i, conv)}
	}
	return entries
}

func (s *Store) check(index int) error {
	if index < 0 || index >= len(s.conversations) {
		return &IndexError{Index: index, Len: len(s.conversations)}
	}
	return nil
}

func title(index int, conv model.Conversation) string {
	turn, ok := conv.FirstUserTurn()
	if !ok {
		return fmt.Sprintf("Conversation %d", index+1)
	}
	runes := []rune(turn.Content)
	if len(runes) > titleLength {
		runes = runes[:titleLength]
	}
	return string(runes) + ellipsis
}
