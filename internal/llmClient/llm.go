package llmclient

import (
	"context"
	"errors"
	"fmt"
)

// ErrCompletionFailed wraps every provider failure: transport, non-2xx status, rate limiting
// and empty responses. Callers never receive partial text alongside it.
var ErrCompletionFailed = errors.New("completion failed")

// ErrEmptyResponse is returned when the provider answers without any text.
var ErrEmptyResponse = errors.New("empty completion")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// Failed wraps err so that errors.Is(err, ErrCompletionFailed) holds while the underlying
// cause stays reachable through errors.As.
func Failed(provider string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", provider, ErrCompletionFailed, err)
}

// Request is one completion round trip.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	// MaxTokens caps the answer length; zero leaves the provider default.
	MaxTokens int
	// JSON asks the provider for a JSON object instead of free text.
	JSON bool
}

// LLMClient defines the interface for LLM providers.
type LLMClient interface {
	Name() string
	Close() error
	// Complete returns the raw text of the model's answer.
	Complete(ctx context.Context, req Request) (string, error)
}

const (
	SystemStrictJSON = "You are a helpful AI assistant that outputs strictly valid JSON. Output JSON only, no prose."
	SystemAssistant  = "You are a helpful assistant."
)

// Factual builds a low-temperature JSON-mode request for extraction style tasks.
func Factual(prompt string) Request {
	return Request{System: SystemStrictJSON, Prompt: prompt, Temperature: 0.2, JSON: true}
}

// Conversational builds a short free-text request for chat answers.
func Conversational(prompt string) Request {
	return Request{System: SystemAssistant, Prompt: prompt, Temperature: 0.5, MaxTokens: 150}
}
