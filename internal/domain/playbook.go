package domain

// confidenceBoost is added to the raw similarity score of a playbook hit.
// Playbook matches are curated records and are trusted above raw cosine
// similarity.
const confidenceBoost = 0.2

// ManualRef points into a manual for a troubleshooting step.
type ManualRef struct {
	ManualID string `json:"manual_id,omitempty"`
	Page     int    `json:"page,omitempty"`
}

// Step is a single troubleshooting action. Ingested playbooks store steps
// either as plain strings or as {action, manual_ref} objects; both forms
// normalize into this type at parse time.
type Step struct {
	Action    string
	ManualRef *ManualRef
}

// Part is a part recommendation attached to a playbook.
type Part struct {
	PartNumber  string
	Description string
	Quantity    int
}

// Playbook is a structured troubleshooting record stored in the playbook
// collection payload.
type Playbook struct {
	ID       string
	Cause    string
	Category string
	Steps    []Step
	Parts    []Part
}

// PlaybookMatch is a playbook hit enriched with a derived confidence.
type PlaybookMatch struct {
	Playbook   Playbook
	Score      float64
	Confidence float64
}

// BoostConfidence derives a confidence from a raw similarity score,
// clamped to [0, 1].
func BoostConfidence(score float64) float64 {
	c := score + confidenceBoost
	if c > 1.0 {
		return 1.0
	}
	if c < 0 {
		return 0
	}
	return c
}

// ParsePlaybook extracts a Playbook from a retrieval payload. Missing
// fields fall back to the same defaults the ingestion pipeline uses.
func ParsePlaybook(payload map[string]any) Playbook {
	pb := Playbook{
		ID:       stringField(payload, "playbook_id"),
		Cause:    "Unknown cause",
		Category: "general",
	}
	if c := stringField(payload, "cause"); c != "" {
		pb.Cause = c
	}
	if c := stringField(payload, "category"); c != "" {
		pb.Category = c
	}

	if raw, ok := payload["steps"].([]any); ok {
		pb.Steps = parseSteps(raw)
	}
	if raw, ok := payload["parts"].([]any); ok {
		pb.Parts = parseParts(raw)
	}
	return pb
}

// parseSteps normalizes the string-or-object step forms.
func parseSteps(raw []any) []Step {
	steps := make([]Step, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			steps = append(steps, Step{Action: v})
		case map[string]any:
			s := Step{Action: stringField(v, "action")}
			if ref, ok := v["manual_ref"].(map[string]any); ok {
				s.ManualRef = &ManualRef{
					ManualID: stringField(ref, "manual_id"),
					Page:     intField(ref, "page"),
				}
			}
			steps = append(steps, s)
		}
	}
	return steps
}

func parseParts(raw []any) []Part {
	parts := make([]Part, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		p := Part{
			PartNumber:  stringField(m, "part_number"),
			Description: stringField(m, "description"),
			Quantity:    intField(m, "quantity"),
		}
		if p.Quantity < 1 {
			p.Quantity = 1
		}
		parts = append(parts, p)
	}
	return parts
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// intField handles both int and float64, since JSON decoding yields float64.
func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
