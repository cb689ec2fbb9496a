package chi

import (
	"encoding/json"
	"net/http"

	"github.com/aas-cloud/doorpilot/internal/domain"
	"github.com/aas-cloud/doorpilot/internal/domain/filter"
	searchuc "github.com/aas-cloud/doorpilot/internal/usecase/search"
)

const (
	maxSearchQueryLen = 500
	defaultSearchTopK = 10
	maxSearchTopK     = 50
)

type searchRequest struct {
	Query      string             `json:"query"`
	Collection string             `json:"collection"`
	Filters    filter.UserFilters `json:"filters"`
	TopK       int                `json:"top_k"`
}

type searchResultItem struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

type searchResponse struct {
	Results []searchResultItem `json:"results"`
	Total   int                `json:"total"`
	Query   string             `json:"query"`
}

// handleSearch handles POST /v1/search: direct filtered vector search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Query) == 0 || len(req.Query) > maxSearchQueryLen {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"query must be between 1 and 500 characters")
		return
	}

	collection, err := searchuc.ParseCollection(req.Collection)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = defaultSearchTopK
	}
	if topK < 1 || topK > maxSearchTopK {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"top_k must be between 1 and 50")
		return
	}

	caller := domain.UserFromContext(r.Context())
	result, err := s.search.Search(r.Context(), searchuc.Request{
		Query:      req.Query,
		Collection: collection,
		Filters:    req.Filters,
		TopK:       topK,
	}, caller)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]searchResultItem, len(result.Results))
	for i, hit := range result.Results {
		payload := hit.Payload
		if payload == nil {
			payload = map[string]any{}
		}
		items[i] = searchResultItem{
			ID:      hit.ID,
			Score:   hit.Score,
			Payload: payload,
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results: items,
		Total:   result.Total,
		Query:   result.Query,
	})
}
