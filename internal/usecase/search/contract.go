package search

import (
	"context"

	"github.com/aas-cloud/doorpilot/internal/domain"
	"github.com/aas-cloud/doorpilot/internal/domain/filter"
)

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index is the vector index search contract.
type Index interface {
	Search(
		ctx context.Context, collection string,
		vector []float32, f filter.Filter, topK int,
	) ([]domain.SearchHit, error)
}

// Request is a search request after transport validation.
type Request struct {
	Query      string
	Collection Collection
	Filters    filter.UserFilters
	TopK       int
}

// Response echoes the query alongside the ordered results.
type Response struct {
	Results []domain.SearchHit
	Total   int
	Query   string
}
