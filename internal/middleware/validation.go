package middleware

import (
	"errors"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxInputBytes bounds a single chat input.
const MaxInputBytes = 100000

// ValidateInput validates raw chat input. Blank input is accepted here and
// ignored by the session.
func ValidateInput(content string) error {
	if len(content) > MaxInputBytes {
		return errors.New("input exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("input must be valid UTF-8")
	}
	return nil
}

// ValidateSessionID validates a session ID.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid session ID format")
	}
	return nil
}

// ParseArchiveIndex parses an archive index path parameter.
func ParseArchiveIndex(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, errors.New("invalid archive index")
	}
	return index, nil
}
