// Package prompt renders the grounding prompts sent to the inference
// service. All functions are pure: identical inputs produce identical
// output, byte for byte.
package prompt

import (
	"fmt"
	"strings"

	"github.com/aas-cloud/doorpilot/internal/domain"
)

// manualExcerptLimit caps manual body text per document.
const manualExcerptLimit = 500

const systemPreamble = `You are an AI assistant for automatic door technicians at AAS (Automatic Access Solutions).
Your role is to help technicians diagnose issues, find parts, and answer technical questions.

Guidelines:
- Be concise and practical
- Reference specific playbook steps or manual pages when available
- Always prioritize safety
- If uncertain, recommend checking the physical equipment or consulting a senior tech
- Use the retrieved context below as your primary source of truth`

// Build renders the chat grounding prompt. Section order is fixed:
// preamble, current door, retrieved context, user question, closing
// instruction. Sections with no content are omitted entirely, never
// rendered as empty headers.
func Build(userMessage string, page domain.PageContext, docs []domain.RetrievedDocument) string {
	var sections []string
	sections = append(sections, systemPreamble)

	if door := renderDoor(page); door != "" {
		sections = append(sections, door)
	}
	if retrieved := renderDocs(docs); retrieved != "" {
		sections = append(sections, retrieved)
	}

	sections = append(sections, "## User Question\n"+userMessage)
	sections = append(sections, "Please provide a helpful, accurate response based on the context above.")

	return strings.Join(sections, "\n\n")
}

// BuildDiagnose renders the tightly-scoped diagnose prompt. The playbook
// is the source of truth; the model only explains, it must not extend the
// step or part lists.
func BuildDiagnose(symptom, manufacturer, model, doorType string, pb domain.Playbook) string {
	var b strings.Builder

	b.WriteString("You are an expert automatic door technician assistant.\n\n")
	b.WriteString("Based on the following playbook information, explain the diagnosis to the technician.\n\n")

	b.WriteString("## Symptom Reported\n")
	b.WriteString(symptom)
	b.WriteString("\n\n## Door Context\n")
	fmt.Fprintf(&b, "- Manufacturer: %s\n", orUnknown(manufacturer))
	fmt.Fprintf(&b, "- Model: %s\n", orUnknown(model))
	fmt.Fprintf(&b, "- Door Type: %s\n", orUnknown(doorType))

	b.WriteString("\n## Playbook Match\n")
	fmt.Fprintf(&b, "- Likely Cause: %s\n", pb.Cause)
	fmt.Fprintf(&b, "- Category: %s\n", pb.Category)
	if len(pb.Steps) > 0 {
		b.WriteString("- Steps:\n")
		for i, s := range pb.Steps {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, s.Action)
		}
	}
	if len(pb.Parts) > 0 {
		b.WriteString("- Parts:\n")
		for _, p := range pb.Parts {
			fmt.Fprintf(&b, "  - %s (%s) x%d\n", p.Description, p.PartNumber, p.Quantity)
		}
	}

	b.WriteString("\nProvide a clear, concise explanation (2-3 sentences) of what's likely wrong and why the suggested steps will help.\n")
	b.WriteString("Do not add steps or parts beyond what's in the playbook - it is the source of truth.")

	return b.String()
}

// renderDoor lists only the page-context fields that are present, in
// fixed order. Returns "" when none are.
func renderDoor(page domain.PageContext) string {
	var lines []string
	if page.DoorID != "" {
		lines = append(lines, "Door ID: "+page.DoorID)
	}
	if page.Manufacturer != "" {
		lines = append(lines, "Manufacturer: "+page.Manufacturer)
	}
	if page.Model != "" {
		lines = append(lines, "Model: "+page.Model)
	}
	if page.DoorType != "" {
		lines = append(lines, "Type: "+page.DoorType)
	}
	if len(lines) == 0 {
		return ""
	}
	return "## Current Door\n" + strings.Join(lines, "\n")
}

// renderDocs enumerates the retrieved documents 1..N in input order.
func renderDocs(docs []domain.RetrievedDocument) string {
	if len(docs) == 0 {
		return ""
	}
	sections := make([]string, len(docs))
	for i, doc := range docs {
		sections[i] = renderDoc(doc, i+1)
	}
	return "## Retrieved Context\n" + strings.Join(sections, "\n\n")
}

func renderDoc(doc domain.RetrievedDocument, n int) string {
	switch doc.Type {
	case domain.DocPlaybook:
		return renderPlaybookDoc(doc, n)
	case domain.DocManual:
		return renderManualDoc(doc, n)
	default:
		return fmt.Sprintf("### Reference %d\n%v", n, doc.Payload)
	}
}

func renderPlaybookDoc(doc domain.RetrievedDocument, n int) string {
	pb := domain.ParsePlaybook(doc.Payload)

	var b strings.Builder
	fmt.Fprintf(&b, "### Playbook Match %d\n", n)
	fmt.Fprintf(&b, "- Cause: %s\n", pb.Cause)
	fmt.Fprintf(&b, "- Category: %s", pb.Category)
	if len(pb.Steps) > 0 {
		b.WriteString("\n- Steps:")
		for i, s := range pb.Steps {
			fmt.Fprintf(&b, "\n  %d. %s", i+1, s.Action)
		}
	}
	return b.String()
}

func renderManualDoc(doc domain.RetrievedDocument, n int) string {
	manualID := "Unknown"
	if id, ok := doc.Payload["manual_id"].(string); ok && id != "" {
		manualID = id
	}
	page := "Unknown"
	if p, ok := doc.Payload["page"].(float64); ok {
		page = fmt.Sprintf("%d", int(p))
	}
	text, _ := doc.Payload["text"].(string)
	if len(text) > manualExcerptLimit {
		text = text[:manualExcerptLimit]
	}

	return fmt.Sprintf("### Manual Reference %d\n- Manual: %s\n- Page: %s\n- Content: %s",
		n, manualID, page, text)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
