package doorpilot

// PageContext carries hints from the portal page the user is on.
type PageContext struct {
	Page         string `json:"page,omitempty"`
	DoorID       string `json:"door_id,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	DoorType     string `json:"door_type,omitempty"`
	Controller   string `json:"controller,omitempty"`
	SiteName     string `json:"site_name,omitempty"`
}

// ChatRequest is the body of a chat call.
type ChatRequest struct {
	Message        string       `json:"message"`
	Context        *PageContext `json:"context,omitempty"`
	ConversationID string       `json:"conversation_id,omitempty"`
	// Mode is auto, diagnose, manual or parts. Empty means auto.
	Mode string `json:"mode,omitempty"`
}

// Diagnosis is the structured diagnosis block.
type Diagnosis struct {
	LikelyCause string  `json:"likely_cause"`
	Confidence  float64 `json:"confidence"`
	Category    string  `json:"category"`
}

// ManualRef points into a manual document.
type ManualRef struct {
	ManualID string `json:"manual_id"`
	Page     int    `json:"page"`
}

// ChecklistItem is one numbered troubleshooting step.
type ChecklistItem struct {
	Step      int        `json:"step"`
	Action    string     `json:"action"`
	ManualRef *ManualRef `json:"manual_ref,omitempty"`
}

// PartNeeded is a recommended part.
type PartNeeded struct {
	PartNumber  string `json:"part_number"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

// Source is a citation backing the response.
type Source struct {
	Type      string  `json:"type"`
	ID        string  `json:"id,omitempty"`
	ManualID  string  `json:"manual_id,omitempty"`
	Page      int     `json:"page,omitempty"`
	Relevance float64 `json:"relevance"`
}

// StructuredResponse is the final structured answer of a chat stream
// and the whole body of a diagnose call.
type StructuredResponse struct {
	ResponseText string          `json:"response_text"`
	Diagnosis    *Diagnosis      `json:"diagnosis,omitempty"`
	Checklist    []ChecklistItem `json:"checklist,omitempty"`
	PartsNeeded  []PartNeeded    `json:"parts_needed,omitempty"`
	Sources      []Source        `json:"sources,omitempty"`
}

// ChatEvent is one element of a chat stream. Exactly one of Token and
// Final is set; Final arrives once, right before the stream ends.
type ChatEvent struct {
	Token string
	Final *StructuredResponse
}

// DiagnoseRequest is the body of a diagnose call. Context is free-form
// device context; any JSON-compatible values are accepted.
type DiagnoseRequest struct {
	DoorID  string         `json:"door_id"`
	Symptom string         `json:"symptom"`
	Context map[string]any `json:"context,omitempty"`
}

// SearchFilters narrows search results by document attributes.
type SearchFilters struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	Category     string `json:"category,omitempty"`
}

// SearchRequest is the body of a search call.
type SearchRequest struct {
	Query string `json:"query"`
	// Collection is parts, manuals or playbooks. Empty means parts.
	Collection string         `json:"collection,omitempty"`
	Filters    *SearchFilters `json:"filters,omitempty"`
	TopK       int            `json:"top_k,omitempty"`
}

// SearchResult is a single scored hit.
type SearchResult struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// SearchResponse is the body of a search response.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
	Query   string         `json:"query"`
}

// HealthReport is the detailed health response.
type HealthReport struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}
