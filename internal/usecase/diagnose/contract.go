package diagnose

import (
	"context"

	"github.com/aas-cloud/doorpilot/internal/domain"
)

// PlaybookRetriever retrieves playbook matches for a symptom.
type PlaybookRetriever interface {
	RetrievePlaybooks(
		ctx context.Context, symptom, manufacturer, model, doorType string, topK int,
	) ([]domain.PlaybookMatch, error)
}

// Request is a diagnose request after transport validation. Context is
// the free-form device context sent by the portal; values may be any
// JSON type, only the string-valued hints are consumed.
type Request struct {
	DoorID  string
	Symptom string
	Context map[string]any
}

// contextString extracts a string-valued hint from the free-form
// context; non-string values are ignored.
func (r Request) contextString(key string) string {
	s, _ := r.Context[key].(string)
	return s
}
