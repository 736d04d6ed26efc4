package provider

import "context"

// CompletionProvider is an opaque text completion service that is asked to answer in JSON.
// Errors are ErrLLMTimeout, ErrLLMRateLimited, ErrLLMInvalidResponse or ErrLLMUnavailable
// from the domain errors package.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}
