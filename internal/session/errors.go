package session

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned for input that is blank after trimming.
	ErrEmptyInput = errors.New("input is empty")

	// ErrReservedInput is returned when the exit word is passed to Submit.
	ErrReservedInput = errors.New(`"exit" ends the conversation and cannot be submitted`)

	// ErrInvalidResumeIndex reports an archive index the store never produced.
	ErrInvalidResumeIndex = errors.New("invalid resume index")

	// ErrNoCompletionClient is the cause of a CompletionError when no provider is configured.
	ErrNoCompletionClient = errors.New("completion service is not configured")
)

// IndexError is returned for an out-of-range archive index.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("archive index %d out of range [0,%d)", e.Index, e.Len)
}

// Is makes IndexError match ErrInvalidResumeIndex.
func (e *IndexError) Is(target error) bool {
	return target == ErrInvalidResumeIndex
}

// CompletionError wraps a failed completion call. It is recovered by the
// controller: the session stays active and the message is shown to the user.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed: %v", e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// Message returns the text shown to the user.
func (e *CompletionError) Message() string {
	return fmt.Sprintf("An error occurred: %v", e.Err)
}
