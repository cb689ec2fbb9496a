package chat

import (
	"context"

	"github.com/aas-cloud/doorpilot/internal/domain"
	"github.com/aas-cloud/doorpilot/internal/domain/mode"
	"github.com/aas-cloud/doorpilot/internal/usecase/retrieval"
)

// Retriever routes retrieval for the chat path.
type Retriever interface {
	Retrieve(
		ctx context.Context, query string, m mode.Mode,
		hints retrieval.Hints, topK int,
	) ([]domain.RetrievedDocument, error)
}

// Request is a chat request after transport validation.
type Request struct {
	Message string
	Page    domain.PageContext
	Mode    mode.Mode
}
