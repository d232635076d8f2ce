// Package llm provides the completion client contract and its providers.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/capitalize-ai/travelers-buddy/internal/model"
)

// ErrEmptyAnswer is returned when a provider answers without any text.
var ErrEmptyAnswer = errors.New("completion returned an empty answer")

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	// Turns is the whole conversation so far, oldest first.
	Turns     []model.Turn
	TokenSize int
	Model     string
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Answer     string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for completion providers.
type Client interface {
	// Complete sends the conversation and returns a single reply.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string

	// Models returns available models.
	Models() []string
}

// Provider is the type of completion provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderMock      Provider = "mock"
)

// NewClient creates a new completion client based on provider.
func NewClient(provider Provider, apiKey, defaultModel string) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey, defaultModel)
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey, defaultModel)
	case ProviderMock:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", provider)
	}
}
