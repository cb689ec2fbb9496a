// Package openai talks to the OpenAI-compatible inference service
// (Ollama's /v1 endpoint in every current deployment): embeddings,
// streaming chat, and one-shot generation.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/aas-cloud/doorpilot/internal/domain"
	"github.com/aas-cloud/doorpilot/internal/metrics"
)

// Client is the inference service client. Constructed once in main and
// shared across requests; the underlying HTTP client is safe for
// concurrent use.
type Client struct {
	client          *openai.Client
	chatModel       string
	embedModel      openai.EmbeddingModel
	chatTemperature float32
	diagTemperature float32
	logger          *zap.Logger
}

// Config holds the inference service settings.
type Config struct {
	APIKey          string
	BaseURL         string
	ChatModel       string
	EmbedModel      string
	ChatTemperature float32
	DiagTemperature float32
	Logger          *zap.Logger
}

// NewClient creates an inference client.
func NewClient(cfg *Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Client{
		client:          openai.NewClientWithConfig(clientCfg),
		chatModel:       cfg.ChatModel,
		embedModel:      openai.EmbeddingModel(cfg.EmbedModel),
		chatTemperature: cfg.ChatTemperature,
		diagTemperature: cfg.DiagTemperature,
		logger:          cfg.Logger,
	}
}

// Embed implements domain.Embedder. An empty response yields an empty
// vector with a nil error; the retrieval layer degrades to zero results
// rather than failing the request.
func (c *Client) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          c.embedModel,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	start := time.Now()
	resp, err := c.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	model := string(c.embedModel)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(model, "error").Inc()
		return domain.EmbeddingResult{}, parseAPIError(err, domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(model).Observe(duration.Seconds())

	if len(resp.Data) == 0 {
		c.logger.Warn("Embedding response contained no data", zap.String("model", model))
		return domain.EmbeddingResult{}, nil
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// StreamChat implements domain.ChatStreamer. The returned stream must be
// closed by the caller; cancelling ctx aborts the stream.
func (c *Client) StreamChat(ctx context.Context, prompt string) (domain.TokenStream, error) {
	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.chatTemperature,
		TopP:        0.9,
		Stream:      true,
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(c.chatModel, "stream", "error").Inc()
		return nil, parseAPIError(err, domain.ErrInferenceProviderError)
	}

	metrics.InferenceRequestsTotal.WithLabelValues(c.chatModel, "stream", "success").Inc()
	return &tokenStream{stream: stream, model: c.chatModel, start: time.Now()}, nil
}

// Generate implements domain.Generator: a single non-streaming completion
// with the low diagnose temperature.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.diagTemperature,
		TopP:        0.8,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(c.chatModel, "generate", "error").Inc()
		return "", parseAPIError(err, domain.ErrInferenceProviderError)
	}

	metrics.InferenceRequestsTotal.WithLabelValues(c.chatModel, "generate", "success").Inc()
	metrics.InferenceRequestDuration.WithLabelValues(c.chatModel, "generate").Observe(duration.Seconds())

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrInferenceProviderError)
	}
	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// tokenStream adapts the go-openai stream to domain.TokenStream.
type tokenStream struct {
	stream *openai.ChatCompletionStream
	model  string
	start  time.Time
}

// Recv returns the next non-empty token. io.EOF means the stream is done.
func (t *tokenStream) Recv() (string, error) {
	for {
		resp, err := t.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				metrics.InferenceRequestDuration.
					WithLabelValues(t.model, "stream").
					Observe(time.Since(t.start).Seconds())
				return "", io.EOF
			}
			return "", parseAPIError(err, domain.ErrInferenceProviderError)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if token := resp.Choices[0].Delta.Content; token != "" {
			return token, nil
		}
	}
}

// Close releases the underlying connection.
func (t *tokenStream) Close() {
	_ = t.stream.Close()
}

// parseAPIError extracts a human-readable error from the API response and
// wraps it with the given sentinel for status mapping.
func parseAPIError(err error, wrap error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("inference API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("inference API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("inference API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("%s: %w", err.Error(), wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
