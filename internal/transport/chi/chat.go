package chi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aas-cloud/doorpilot/internal/domain"
	"github.com/aas-cloud/doorpilot/internal/domain/event"
	"github.com/aas-cloud/doorpilot/internal/domain/mode"
	"github.com/aas-cloud/doorpilot/internal/domain/response"
	chatuc "github.com/aas-cloud/doorpilot/internal/usecase/chat"
)

const maxChatMessageLen = 2000

type chatRequest struct {
	Message        string              `json:"message"`
	Context        *domain.PageContext `json:"context"`
	ConversationID string              `json:"conversation_id"`
	Mode           string              `json:"mode"`
}

// tokenFrame, finalFrame and errorFrame are the wire shapes of the
// stream events. The client discriminates on which key is present.
type tokenFrame struct {
	Token string `json:"token"`
}

type finalFrame struct {
	Final *response.Structured `json:"final"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// handleChat handles POST /v1/chat: a streaming SSE response ending in
// a structured final frame. Once streaming starts, failures travel as
// in-band error frames; the HTTP status is already committed.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Message) == 0 || len(req.Message) > maxChatMessageLen {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"message must be between 1 and 2000 characters")
		return
	}

	m, err := mode.Parse(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	page := domain.PageContext{}
	if req.Context != nil {
		page = *req.Context
	}

	caller := domain.UserFromContext(r.Context())
	events, err := s.chat.Run(r.Context(), chatuc.Request{
		Message: req.Message,
		Page:    page,
		Mode:    m,
	}, caller)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	w.Header().Set("X-Conversation-ID", conversationID)

	sse, err := newSSEWriter(w)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	for ev := range events {
		var werr error
		switch ev.Type {
		case event.Token:
			werr = sse.WriteJSON(tokenFrame{Token: ev.Token})
		case event.Final:
			werr = sse.WriteJSON(finalFrame{Final: ev.Final})
		case event.Error:
			werr = sse.WriteJSON(errorFrame{Error: ev.Err})
		case event.Done:
			werr = sse.WriteDone()
		}
		if werr != nil {
			// Client is gone; the context cancellation stops the producer.
			s.logger.Debug("chat stream write failed",
				zap.String("conversation_id", conversationID),
				zap.Error(werr))
			return
		}
	}
}
