// Package chat drives the streaming copilot path: retrieve, assemble the
// grounding prompt, stream tokens, finish with a structured response.
//
// Failures after the stream starts travel in-band as a single error
// event; the orchestrator never fails past its own boundary.
package chat

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/aas-cloud/doorpilot/internal/domain"
	"github.com/aas-cloud/doorpilot/internal/domain/event"
	"github.com/aas-cloud/doorpilot/internal/domain/response"
	"github.com/aas-cloud/doorpilot/internal/logger"
	"github.com/aas-cloud/doorpilot/internal/usecase/prompt"
	"github.com/aas-cloud/doorpilot/internal/usecase/retrieval"
)

// retrieveTopK is the retrieval depth for single-collection chat branches.
const retrieveTopK = 5

// finalSourceLimit caps the citations attached to the final event.
const finalSourceLimit = 3

// Service is the chat orchestrator.
type Service struct {
	retriever Retriever
	llm       domain.ChatStreamer
}

// New creates a chat orchestrator.
func New(retriever Retriever, llm domain.ChatStreamer) *Service {
	return &Service{retriever: retriever, llm: llm}
}

// Run checks authorization and starts the stream. Diagnose and manual
// modes require a caller; any caller must be a technician. The returned
// channel is closed after the terminal event; cancelling ctx stops token
// production promptly.
func (s *Service) Run(ctx context.Context, req Request, caller *domain.User) (<-chan event.Event, error) {
	if req.Mode.RequiresAuth() && caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	if caller != nil && !caller.IsTechnician() {
		return nil, domain.ErrForbidden
	}

	events := make(chan event.Event)
	go s.stream(ctx, req, events)
	return events, nil
}

func (s *Service) stream(ctx context.Context, req Request, events chan<- event.Event) {
	defer close(events)
	log := logger.FromContext(ctx)

	hints := retrieval.Hints{
		Manufacturer: req.Page.Manufacturer,
		Model:        req.Page.Model,
		DoorType:     req.Page.DoorType,
	}

	docs, err := s.retriever.Retrieve(ctx, req.Message, req.Mode, hints, retrieveTopK)
	if err != nil {
		log.Error("Chat retrieval failed", zap.Error(err))
		emit(ctx, events, event.NewError(err.Error()))
		return
	}

	grounded := prompt.Build(req.Message, req.Page, docs)

	stream, err := s.llm.StreamChat(ctx, grounded)
	if err != nil {
		log.Error("Chat stream start failed", zap.Error(err))
		emit(ctx, events, event.NewError(err.Error()))
		return
	}
	defer stream.Close()

	var full strings.Builder
	for {
		token, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Error("Chat stream failed", zap.Error(err))
			emit(ctx, events, event.NewError(err.Error()))
			return
		}

		full.WriteString(token)
		if !emit(ctx, events, event.NewToken(token)) {
			// Caller went away; stop consuming tokens.
			return
		}
	}

	final := finalResponse(full.String(), docs)
	if !emit(ctx, events, event.NewFinal(final)) {
		return
	}
	emit(ctx, events, event.NewDone())
}

// finalResponse derives the structured response from the accumulated text
// and the retrieved documents. Only sources are populated from retrieval;
// extracting diagnosis/checklist/parts from free text is an open product
// question and stays absent until answered.
func finalResponse(text string, docs []domain.RetrievedDocument) *response.Structured {
	return &response.Structured{
		ResponseText: text,
		Sources:      response.SourcesFromDocuments(docs, finalSourceLimit),
	}
}

// emit sends an event unless the context is done. Reports whether the
// event was delivered.
func emit(ctx context.Context, events chan<- event.Event, ev event.Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
