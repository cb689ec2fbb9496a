package domain

import "context"

// Embedder vectorizes text. An empty vector with a nil error means the
// provider returned no embedding; callers treat that as "no results", not
// as a failure.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Generator produces a single non-streaming completion.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TokenStream yields completion tokens. Recv returns io.EOF when the
// stream is exhausted. Close releases the underlying connection and must
// be called exactly once.
type TokenStream interface {
	Recv() (string, error)
	Close()
}

// ChatStreamer starts a streaming completion for a prompt.
type ChatStreamer interface {
	StreamChat(ctx context.Context, prompt string) (TokenStream, error)
}

// HealthChecker verifies upstream service availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
