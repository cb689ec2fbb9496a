package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/aas-cloud/doorpilot/internal/domain"
	diagnoseuc "github.com/aas-cloud/doorpilot/internal/usecase/diagnose"
)

const (
	minSymptomLen = 3
	maxSymptomLen = 500
)

type diagnoseRequest struct {
	DoorID  string         `json:"door_id"`
	Symptom string         `json:"symptom"`
	Context map[string]any `json:"context"`
}

// handleDiagnose handles POST /v1/diagnose: a single structured
// diagnosis, playbook-first and non-streaming.
func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	var req diagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.DoorID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "door_id is required")
		return
	}
	if len(req.Symptom) < minSymptomLen || len(req.Symptom) > maxSymptomLen {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"symptom must be between 3 and 500 characters")
		return
	}

	caller := domain.UserFromContext(r.Context())
	result, err := s.diagnose.Run(r.Context(), diagnoseuc.Request{
		DoorID:  req.DoorID,
		Symptom: req.Symptom,
		Context: req.Context,
	}, caller)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrForbidden) {
			s.handleDomainError(w, err)
			return
		}
		s.logger.Error("diagnose failed",
			zap.String("door_id", req.DoorID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError,
			"Diagnosis failed: "+safeDomainMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}
