package prompt

import (
	"strings"
	"testing"

	"github.com/aas-cloud/doorpilot/internal/domain"
)

func TestBuild_Deterministic(t *testing.T) {
	page := domain.PageContext{DoorID: "door-114", Manufacturer: "Stanley"}
	docs := []domain.RetrievedDocument{
		{Type: domain.DocPlaybook, ID: "pb-1", Score: 0.9, Payload: map[string]any{
			"cause": "Worn belt", "category": "mechanical",
		}},
	}

	a := Build("door won't close", page, docs)
	b := Build("door won't close", page, docs)
	if a != b {
		t.Error("identical inputs must produce byte-identical prompts")
	}
}

func TestBuild_SectionOrder(t *testing.T) {
	page := domain.PageContext{DoorID: "door-114", Manufacturer: "Stanley", Model: "Dura-Glide", DoorType: "sliding"}
	docs := []domain.RetrievedDocument{
		{Type: domain.DocPlaybook, Payload: map[string]any{"cause": "Worn belt"}},
	}

	p := Build("why is it slow", page, docs)

	idxDoor := strings.Index(p, "## Current Door")
	idxCtx := strings.Index(p, "## Retrieved Context")
	idxQ := strings.Index(p, "## User Question")
	if idxDoor < 0 || idxCtx < 0 || idxQ < 0 {
		t.Fatalf("missing sections in prompt:\n%s", p)
	}
	if !(idxDoor < idxCtx && idxCtx < idxQ) {
		t.Errorf("sections out of order: door=%d ctx=%d question=%d", idxDoor, idxCtx, idxQ)
	}
	if !strings.HasSuffix(p, "Please provide a helpful, accurate response based on the context above.") {
		t.Error("missing closing instruction")
	}
	if !strings.Contains(p, "Door ID: door-114") {
		t.Error("missing door id line")
	}
	if !strings.Contains(p, "Type: sliding") {
		t.Error("missing door type line")
	}
}

func TestBuild_OmitsEmptySections(t *testing.T) {
	p := Build("hello", domain.PageContext{}, nil)

	if strings.Contains(p, "## Current Door") {
		t.Error("empty page context must not render a door section")
	}
	if strings.Contains(p, "## Retrieved Context") {
		t.Error("no documents must not render a context section")
	}
	if !strings.Contains(p, "## User Question\nhello") {
		t.Error("user question section missing")
	}
}

func TestBuild_ManualExcerptCap(t *testing.T) {
	long := strings.Repeat("x", 800)
	docs := []domain.RetrievedDocument{
		{Type: domain.DocManual, Payload: map[string]any{
			"manual_id": "m-1",
			"page":      float64(7),
			"text":      long,
		}},
	}

	p := Build("how to adjust", domain.PageContext{}, docs)

	if strings.Contains(p, long) {
		t.Error("manual excerpt not truncated")
	}
	if !strings.Contains(p, strings.Repeat("x", manualExcerptLimit)) {
		t.Error("truncated excerpt missing")
	}
	if !strings.Contains(p, "- Manual: m-1") || !strings.Contains(p, "- Page: 7") {
		t.Error("manual reference fields missing")
	}
}

func TestBuild_PlaybookRendering(t *testing.T) {
	docs := []domain.RetrievedDocument{
		{Type: domain.DocPlaybook, Payload: map[string]any{
			"cause":    "Obstructed track",
			"category": "mechanical",
			"steps":    []any{"Clear the track", "Test the door"},
		}},
	}

	p := Build("door is stuck", domain.PageContext{}, docs)

	if !strings.Contains(p, "### Playbook Match 1") {
		t.Error("playbook section header missing")
	}
	if !strings.Contains(p, "- Cause: Obstructed track") {
		t.Error("cause line missing")
	}
	if !strings.Contains(p, "1. Clear the track") || !strings.Contains(p, "2. Test the door") {
		t.Error("numbered steps missing")
	}
}

func TestBuildDiagnose(t *testing.T) {
	pb := domain.Playbook{
		ID:       "pb-1",
		Cause:    "Worn drive belt",
		Category: "mechanical",
		Steps:    []domain.Step{{Action: "Inspect belt"}, {Action: "Replace belt"}},
		Parts:    []domain.Part{{PartNumber: "ST-4412", Description: "Drive belt", Quantity: 1}},
	}

	p := BuildDiagnose("door won't close", "Stanley", "", "sliding", pb)

	if !strings.Contains(p, "## Symptom Reported\ndoor won't close") {
		t.Error("symptom section missing")
	}
	if !strings.Contains(p, "- Manufacturer: Stanley") {
		t.Error("manufacturer line missing")
	}
	if !strings.Contains(p, "- Model: Unknown") {
		t.Error("empty model must render as Unknown")
	}
	if !strings.Contains(p, "- Likely Cause: Worn drive belt") {
		t.Error("cause line missing")
	}
	if !strings.Contains(p, "  1. Inspect belt") || !strings.Contains(p, "  2. Replace belt") {
		t.Error("steps missing")
	}
	if !strings.Contains(p, "- Drive belt (ST-4412) x1") {
		t.Error("parts line missing")
	}
	if !strings.Contains(p, "it is the source of truth") {
		t.Error("closing constraint missing")
	}
}

func TestBuildDiagnose_NoStepsNoParts(t *testing.T) {
	p := BuildDiagnose("beeping", "", "", "", domain.Playbook{Cause: "Low battery", Category: "electrical"})

	if strings.Contains(p, "- Steps:") {
		t.Error("empty steps must not render a steps header")
	}
	if strings.Contains(p, "- Parts:") {
		t.Error("empty parts must not render a parts header")
	}
}
