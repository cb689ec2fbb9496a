package domain

import "errors"

// Sentinel errors shared across layers. The transport layer maps them to
// HTTP status codes.
var (
	// ErrUnauthenticated means the operation requires a caller identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the caller lacks a required role.
	ErrForbidden = errors.New("technician access required")
	// ErrInvalidToken means a bearer token was supplied but failed validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmbeddingProviderError wraps failures of the embedding API.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrInferenceProviderError wraps failures of the chat completion API.
	ErrInferenceProviderError = errors.New("inference provider error")
	// ErrVectorIndexError wraps failures of the vector index service.
	ErrVectorIndexError = errors.New("vector index error")
)
