// Package search implements direct vector search across the parts,
// manual, and playbook collections with access filtering.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aas-cloud/doorpilot/internal/domain"
	"github.com/aas-cloud/doorpilot/internal/domain/filter"
	"github.com/aas-cloud/doorpilot/internal/logger"
)

// Collection is a searchable collection selector.
type Collection string

const (
	// Parts is open to anonymous callers under the public role filter.
	Parts Collection = "parts"
	// Manuals requires a technician caller.
	Manuals Collection = "manuals"
	// Playbooks requires a technician caller.
	Playbooks Collection = "playbooks"
)

// ParseCollection validates a collection selector.
func ParseCollection(s string) (Collection, error) {
	switch Collection(s) {
	case "":
		return Parts, nil
	case Parts, Manuals, Playbooks:
		return Collection(s), nil
	default:
		return "", fmt.Errorf("unknown collection %q", s)
	}
}

// restricted reports whether the collection requires a technician caller.
func (c Collection) restricted() bool {
	return c == Manuals || c == Playbooks
}

// Names maps collection selectors to configured index collection names.
type Names struct {
	Playbooks string
	Manuals   string
	Parts     string
}

// Service is the search usecase.
type Service struct {
	embedder Embedder
	index    Index
	names    Names
}

// New creates a search service.
func New(embedder Embedder, index Index, names Names) *Service {
	return &Service{embedder: embedder, index: index, names: names}
}

// Search runs a filtered top-k query. Manuals and playbooks require a
// technician caller; the access filter always carries a role condition,
// so anonymous parts searches only ever see public documents. An empty
// embedding degrades to zero results.
func (s *Service) Search(ctx context.Context, req Request, caller *domain.User) (Response, error) {
	if req.Collection.restricted() {
		if caller == nil {
			return Response{}, domain.ErrUnauthenticated
		}
		if !caller.IsTechnician() {
			return Response{}, domain.ErrForbidden
		}
	}

	resp := Response{Query: req.Query}

	embedding, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return Response{}, fmt.Errorf("embed query: %w", err)
	}
	if len(embedding.Embedding) == 0 {
		logger.FromContext(ctx).Warn("Empty query embedding, returning no results",
			zap.String("collection", string(req.Collection)))
		return resp, nil
	}

	f := filter.BuildAccess(req.Filters, caller)

	hits, err := s.index.Search(ctx, s.collectionName(req.Collection), embedding.Embedding, f, req.TopK)
	if err != nil {
		return Response{}, fmt.Errorf("search %s: %w", req.Collection, err)
	}

	resp.Results = hits
	resp.Total = len(hits)
	return resp, nil
}

func (s *Service) collectionName(c Collection) string {
	switch c {
	case Playbooks:
		return s.names.Playbooks
	case Manuals:
		return s.names.Manuals
	default:
		return s.names.Parts
	}
}
