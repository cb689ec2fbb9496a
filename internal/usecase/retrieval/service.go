// Package retrieval routes queries to the right index collections and
// tags the results by source.
package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aas-cloud/doorpilot/internal/domain"
	"github.com/aas-cloud/doorpilot/internal/domain/filter"
	"github.com/aas-cloud/doorpilot/internal/domain/intent"
	"github.com/aas-cloud/doorpilot/internal/domain/mode"
	"github.com/aas-cloud/doorpilot/internal/logger"
)

// Mixed-mode retrieval depths: playbooks first, then manuals.
const (
	mixedPlaybookTopK = 3
	mixedManualTopK   = 2
)

// PlaybookTopK is the default retrieval depth on the diagnose path.
const PlaybookTopK = 3

// target is the resolved retrieval branch. Unlike the caller-facing mode,
// this is a closed set with Mixed as its own branch.
type target int

const (
	targetPlaybooks target = iota
	targetManuals
	targetParts
	targetMixed
)

// Service is the retrieval router.
type Service struct {
	embedder Embedder
	index    Index
	colls    Collections
}

// New creates a retrieval router.
func New(embedder Embedder, index Index, colls Collections) *Service {
	return &Service{embedder: embedder, index: index, colls: colls}
}

// Retrieve returns documents for the query under the given mode. Auto
// mode resolves a target from the query text; a query with no intent
// signal retrieves from playbooks and manuals together. An empty
// embedding vector degrades to zero documents without error. No role
// filtering happens here: access control is applied once by the calling
// endpoint, not per retrieval branch.
func (s *Service) Retrieve(
	ctx context.Context, query string, m mode.Mode, hints Hints, topK int,
) ([]domain.RetrievedDocument, error) {
	vec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if vec == nil {
		return nil, nil
	}

	f := hintFilter(hints)

	switch resolveTarget(m, query) {
	case targetPlaybooks:
		return s.searchOne(ctx, s.colls.Playbooks, domain.DocPlaybook, vec, f, topK)
	case targetManuals:
		return s.searchOne(ctx, s.colls.Manuals, domain.DocManual, vec, f, topK)
	case targetParts:
		return s.searchOne(ctx, s.colls.Parts, domain.DocParts, vec, f, topK)
	case targetMixed:
		return s.searchMixed(ctx, vec, f)
	default:
		return nil, fmt.Errorf("unresolved retrieval target for mode %q", m)
	}
}

// RetrievePlaybooks retrieves playbook records for a symptom, enriching
// each hit with a boosted confidence. The filter carries only the
// conditions actually supplied; doorType is accepted as a hint but never
// filtered on, matching the ingestion schema.
func (s *Service) RetrievePlaybooks(
	ctx context.Context, symptom, manufacturer, model, doorType string, topK int,
) ([]domain.PlaybookMatch, error) {
	vec, err := s.embedQuery(ctx, symptom)
	if err != nil {
		return nil, err
	}
	if vec == nil {
		return nil, nil
	}

	f := hintFilter(Hints{Manufacturer: manufacturer, Model: model, DoorType: doorType})

	hits, err := s.index.Search(ctx, s.colls.Playbooks, vec, f, topK)
	if err != nil {
		return nil, fmt.Errorf("search playbooks: %w", err)
	}

	matches := make([]domain.PlaybookMatch, len(hits))
	for i, h := range hits {
		matches[i] = domain.PlaybookMatch{
			Playbook:   domain.ParsePlaybook(h.Payload),
			Score:      h.Score,
			Confidence: domain.BoostConfidence(h.Score),
		}
	}
	return matches, nil
}

// embedQuery embeds text. A nil vector with nil error means the provider
// returned nothing; callers degrade to zero results.
func (s *Service) embedQuery(ctx context.Context, text string) ([]float32, error) {
	result, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(result.Embedding) == 0 {
		logger.FromContext(ctx).Warn("Empty query embedding, returning no documents",
			zap.Int("query_len", len(text)))
		return nil, nil
	}
	return result.Embedding, nil
}

func (s *Service) searchOne(
	ctx context.Context, collection string, docType domain.DocType,
	vec []float32, f filter.Filter, topK int,
) ([]domain.RetrievedDocument, error) {
	hits, err := s.index.Search(ctx, collection, vec, f, topK)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	return tagHits(hits, docType), nil
}

// searchMixed concatenates playbook results before manual results.
func (s *Service) searchMixed(
	ctx context.Context, vec []float32, f filter.Filter,
) ([]domain.RetrievedDocument, error) {
	playbooks, err := s.searchOne(ctx, s.colls.Playbooks, domain.DocPlaybook, vec, f, mixedPlaybookTopK)
	if err != nil {
		return nil, err
	}
	manuals, err := s.searchOne(ctx, s.colls.Manuals, domain.DocManual, vec, f, mixedManualTopK)
	if err != nil {
		return nil, err
	}
	return append(playbooks, manuals...), nil
}

// resolveTarget maps a mode (classifying the query when auto) to a
// retrieval target.
func resolveTarget(m mode.Mode, query string) target {
	switch m {
	case mode.Diagnose:
		return targetPlaybooks
	case mode.Manual:
		return targetManuals
	case mode.Parts:
		return targetParts
	}

	switch intent.Classify(query) {
	case intent.Diagnose:
		return targetPlaybooks
	case intent.Manual:
		return targetManuals
	case intent.Parts:
		return targetParts
	default:
		return targetMixed
	}
}

// hintFilter builds the retrieval filter from only the hints present.
func hintFilter(h Hints) filter.Filter {
	var conditions []filter.Condition
	if h.Manufacturer != "" {
		if c, err := filter.NewMatch("manufacturer", h.Manufacturer); err == nil {
			conditions = append(conditions, c)
		}
	}
	if h.Model != "" {
		if c, err := filter.NewMatch("model", h.Model); err == nil {
			conditions = append(conditions, c)
		}
	}
	return filter.New(conditions...)
}

func tagHits(hits []domain.SearchHit, docType domain.DocType) []domain.RetrievedDocument {
	docs := make([]domain.RetrievedDocument, len(hits))
	for i, h := range hits {
		docs[i] = domain.RetrievedDocument{
			Type:    docType,
			ID:      h.ID,
			Score:   h.Score,
			Payload: h.Payload,
		}
	}
	return docs
}
