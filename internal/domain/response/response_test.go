package response

import (
	"testing"

	"github.com/aas-cloud/doorpilot/internal/domain"
)

func TestChecklistFromSteps_Renumbers(t *testing.T) {
	ref := &domain.ManualRef{ManualID: "stanley-dg2000", Page: 12}
	items := ChecklistFromSteps([]domain.Step{
		{Action: "Check the belt"},
		{Action: "Inspect the sensor", ManualRef: ref},
		{Action: "Reset the controller"},
	})

	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, item := range items {
		if item.Step != i+1 {
			t.Errorf("item %d: expected step %d, got %d", i, i+1, item.Step)
		}
	}
	if items[1].ManualRef != ref {
		t.Error("manual ref lost during renumbering")
	}
}

func TestChecklistFromSteps_EmptyIsNil(t *testing.T) {
	if items := ChecklistFromSteps(nil); items != nil {
		t.Errorf("expected nil checklist, got %v", items)
	}
}

func TestPartsFromPlaybook_EmptyIsNil(t *testing.T) {
	if parts := PartsFromPlaybook(nil); parts != nil {
		t.Errorf("expected nil parts, got %v", parts)
	}
}

func TestSourcesFromDocuments_Limit(t *testing.T) {
	docs := []domain.RetrievedDocument{
		{Type: domain.DocPlaybook, ID: "pb-1", Score: 0.9},
		{Type: domain.DocPlaybook, ID: "pb-2", Score: 0.8},
		{Type: domain.DocManual, ID: "m-1", Score: 0.7, Payload: map[string]any{
			"manual_id": "stanley-dg2000",
			"page":      float64(42),
		}},
		{Type: domain.DocParts, ID: "p-1", Score: 0.6},
	}

	sources := SourcesFromDocuments(docs, 3)
	if len(sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(sources))
	}
	if sources[0].ID != "pb-1" || sources[0].Type != "playbook" {
		t.Errorf("unexpected first source: %+v", sources[0])
	}
	if sources[2].ManualID != "stanley-dg2000" || sources[2].Page != 42 {
		t.Errorf("manual source missing payload fields: %+v", sources[2])
	}
	if sources[0].ManualID != "" || sources[0].Page != 0 {
		t.Errorf("playbook source must not carry manual fields: %+v", sources[0])
	}
}

func TestSourcesFromDocuments_EmptyIsNil(t *testing.T) {
	if sources := SourcesFromDocuments(nil, 3); sources != nil {
		t.Errorf("expected nil sources, got %v", sources)
	}
}
