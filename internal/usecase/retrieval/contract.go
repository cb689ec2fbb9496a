package retrieval

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

// Collections names the fixed index collections. The names are part of
// the contract with the ingestion pipeline and must match exactly.
type Collections struct {
	Playbooks string
	Manuals   string
	Parts     string
}

// Hints are the page-context fields used to narrow retrieval. All
// optional; only manufacturer and model ever become filter conditions.
type Hints struct {
	Manufacturer string
	Model        string
	DoorType     string
}
