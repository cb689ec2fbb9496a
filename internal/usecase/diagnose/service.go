// Package diagnose drives the deterministic quick-diagnosis path:
// playbook retrieval, one bounded inference call, then a structured
// response assembled from the playbook record itself. The playbook is
// the source of truth for every structured field; the model only
// supplies the prose explanation.
package diagnose

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aas-cloud/doorpilot/internal/domain"
	"github.com/aas-cloud/doorpilot/internal/domain/response"
	"github.com/aas-cloud/doorpilot/internal/logger"
	"github.com/aas-cloud/doorpilot/internal/usecase/prompt"
	"github.com/aas-cloud/doorpilot/internal/usecase/retrieval"
)

// Service is the diagnose orchestrator.
type Service struct {
	playbooks PlaybookRetriever
	llm       domain.Generator
}

// New creates a diagnose orchestrator.
func New(playbooks PlaybookRetriever, llm domain.Generator) *Service {
	return &Service{playbooks: playbooks, llm: llm}
}

// Run produces a diagnosis for the symptom. Requires a technician
// caller. No playbook match is not an error: it yields a fallback
// response with no diagnosis block. Upstream failures propagate to the
// caller; this path has no in-band error channel.
func (s *Service) Run(ctx context.Context, req Request, caller *domain.User) (*response.Structured, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !caller.IsTechnician() {
		return nil, domain.ErrForbidden
	}

	log := logger.FromContext(ctx)

	manufacturer := req.contextString("manufacturer")
	model := req.contextString("model")
	doorType := req.contextString("door_type")

	matches, err := s.playbooks.RetrievePlaybooks(
		ctx, req.Symptom, manufacturer, model, doorType, retrieval.PlaybookTopK,
	)
	if err != nil {
		return nil, fmt.Errorf("retrieve playbooks: %w", err)
	}

	if len(matches) == 0 {
		log.Info("No playbook match, returning fallback",
			zap.String("door_id", req.DoorID))
		return &response.Structured{
			ResponseText: fallbackText(manufacturer, model),
		}, nil
	}

	best := matches[0]

	explanation, err := s.llm.Generate(
		ctx, prompt.BuildDiagnose(req.Symptom, manufacturer, model, doorType, best.Playbook),
	)
	if err != nil {
		return nil, fmt.Errorf("generate explanation: %w", err)
	}

	resp := &response.Structured{
		ResponseText: explanation,
		Diagnosis: &response.Diagnosis{
			LikelyCause: best.Playbook.Cause,
			Confidence:  best.Confidence,
			Category:    best.Playbook.Category,
		},
		Checklist:   response.ChecklistFromSteps(best.Playbook.Steps),
		PartsNeeded: response.PartsFromPlaybook(best.Playbook.Parts),
		Sources: []response.Source{{
			Type:      string(domain.DocPlaybook),
			ID:        best.Playbook.ID,
			Relevance: best.Score,
		}},
	}

	log.Info("Diagnosis complete",
		zap.String("door_id", req.DoorID),
		zap.Int("num_steps", len(resp.Checklist)),
	)
	return resp, nil
}

// fallbackText names the manufacturer/model when supplied, generic text
// otherwise.
func fallbackText(manufacturer, model string) string {
	if manufacturer == "" {
		manufacturer = "this"
	}
	if model == "" {
		model = "door"
	}
	return fmt.Sprintf(
		"I don't have specific diagnostic information for this symptom on %s %s. Please try the Copilot for a more detailed conversation.",
		manufacturer, model,
	)
}
