package domain

// DocType is the category of a retrieved document, matching the collection
// it came from.
type DocType string

const (
	// DocPlaybook is a structured troubleshooting record.
	DocPlaybook DocType = "playbook"
	// DocManual is a manual excerpt.
	DocManual DocType = "manual"
	// DocParts is a parts catalog entry.
	DocParts DocType = "parts"
)

// SearchHit is a raw vector index result before type tagging.
type SearchHit struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// RetrievedDocument is a single vector search hit tagged with its source
// collection. Produced per-request, never persisted.
type RetrievedDocument struct {
	Type    DocType
	ID      string
	Score   float64
	Payload map[string]any
}

// PageContext carries page/device hints from the caller. All fields are
// optional and used purely for retrieval, never validated for existence.
type PageContext struct {
	Page         string `json:"page,omitempty"`
	DoorID       string `json:"door_id,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	DoorType     string `json:"door_type,omitempty"`
	Controller   string `json:"controller,omitempty"`
	SiteName     string `json:"site_name,omitempty"`
}

// IsZero reports whether no hint fields are set.
func (p PageContext) IsZero() bool {
	return p == PageContext{}
}
