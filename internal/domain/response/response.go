// Package response defines the externally visible answer shapes.
//
// All optional blocks are emitted as absent, never as empty placeholders:
// a checklist with zero steps is nil, not [].
package response

import "github.com/aas-cloud/doorpilot/internal/domain"

// Diagnosis is the structured diagnosis block. Its fields come from the
// matched playbook record, never from LLM free text.
type Diagnosis struct {
	LikelyCause string  `json:"likely_cause"`
	Confidence  float64 `json:"confidence"`
	Category    string  `json:"category"`
}

// ChecklistItem is a single troubleshooting step, numbered 1..N.
type ChecklistItem struct {
	Step      int               `json:"step"`
	Action    string            `json:"action"`
	ManualRef *domain.ManualRef `json:"manual_ref,omitempty"`
}

// PartNeeded is a part recommendation.
type PartNeeded struct {
	PartNumber  string `json:"part_number"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

// Source is a citation for a retrieved document.
type Source struct {
	Type      string  `json:"type"`
	ID        string  `json:"id,omitempty"`
	ManualID  string  `json:"manual_id,omitempty"`
	Page      int     `json:"page,omitempty"`
	Relevance float64 `json:"relevance"`
}

// Structured is the final answer shape shared by the chat and diagnose
// paths.
type Structured struct {
	ResponseText string          `json:"response_text"`
	Diagnosis    *Diagnosis      `json:"diagnosis,omitempty"`
	Checklist    []ChecklistItem `json:"checklist,omitempty"`
	PartsNeeded  []PartNeeded    `json:"parts_needed,omitempty"`
	Sources      []Source        `json:"sources,omitempty"`
}

// ChecklistFromSteps renumbers playbook steps 1..N in input order,
// preserving manual references. Returns nil for an empty step list.
func ChecklistFromSteps(steps []domain.Step) []ChecklistItem {
	if len(steps) == 0 {
		return nil
	}
	items := make([]ChecklistItem, len(steps))
	for i, s := range steps {
		items[i] = ChecklistItem{
			Step:      i + 1,
			Action:    s.Action,
			ManualRef: s.ManualRef,
		}
	}
	return items
}

// PartsFromPlaybook converts playbook parts. Returns nil for an empty list.
func PartsFromPlaybook(parts []domain.Part) []PartNeeded {
	if len(parts) == 0 {
		return nil
	}
	out := make([]PartNeeded, len(parts))
	for i, p := range parts {
		out[i] = PartNeeded{
			PartNumber:  p.PartNumber,
			Description: p.Description,
			Quantity:    p.Quantity,
		}
	}
	return out
}

// SourcesFromDocuments cites up to limit retrieved documents in order.
// Returns nil when there are no documents.
func SourcesFromDocuments(docs []domain.RetrievedDocument, limit int) []Source {
	if len(docs) == 0 {
		return nil
	}
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	sources := make([]Source, len(docs))
	for i, doc := range docs {
		src := Source{
			Type:      string(doc.Type),
			ID:        doc.ID,
			Relevance: doc.Score,
		}
		if doc.Type == domain.DocManual {
			if id, ok := doc.Payload["manual_id"].(string); ok {
				src.ManualID = id
			}
			if page, ok := doc.Payload["page"].(float64); ok {
				src.Page = int(page)
			}
		}
		sources[i] = src
	}
	return sources
}
