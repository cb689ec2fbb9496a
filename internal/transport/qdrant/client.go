// Package qdrant is a minimal REST client for the Qdrant vector index.
// Only the operations this service needs are implemented: top-k point
// search with an optional payload filter, and a readiness probe. Index
// schema and ingestion are owned by a separate pipeline.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aas-cloud/doorpilot/internal/domain"
	"github.com/aas-cloud/doorpilot/internal/domain/filter"
	"github.com/aas-cloud/doorpilot/internal/metrics"
)

// Client talks to a Qdrant instance over its REST API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// Config holds Qdrant connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates a Qdrant client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  cfg.Logger,
	}
}

type searchRequest struct {
	Vector      []float32      `json:"vector"`
	Filter      *filterPayload `json:"filter,omitempty"`
	Limit       int            `json:"limit"`
	WithPayload bool           `json:"with_payload"`
}

type filterPayload struct {
	Must []conditionPayload `json:"must"`
}

type conditionPayload struct {
	Key   string       `json:"key"`
	Match matchPayload `json:"match"`
}

type matchPayload struct {
	Value string   `json:"value,omitempty"`
	Any   []string `json:"any,omitempty"`
}

type searchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
	Status any `json:"status"`
}

// Search runs a top-k similarity query against the named collection.
// An empty filter is not sent at all; "no conditions" and "absent filter"
// are equivalent on the wire.
func (c *Client) Search(
	ctx context.Context, collection string,
	vector []float32, f filter.Filter, topK int,
) ([]domain.SearchHit, error) {
	req := searchRequest{
		Vector:      vector,
		Filter:      filterToPayload(f),
		Limit:       topK,
		WithPayload: true,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, collection)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues(collection, "error").Inc()
		return nil, fmt.Errorf("search %s: %s: %w", collection, err.Error(), domain.ErrVectorIndexError)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RetrievalRequestsTotal.WithLabelValues(collection, "error").Inc()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search %s: status %d: %s: %w",
			collection, resp.StatusCode, string(b), domain.ErrVectorIndexError)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues(collection, "error").Inc()
		return nil, fmt.Errorf("decode search response: %s: %w", err.Error(), domain.ErrVectorIndexError)
	}

	hits := make([]domain.SearchHit, 0, len(parsed.Result))
	for _, r := range parsed.Result {
		hits = append(hits, domain.SearchHit{
			ID:      fmt.Sprintf("%v", r.ID),
			Score:   r.Score,
			Payload: r.Payload,
		})
	}

	metrics.RetrievalRequestsTotal.WithLabelValues(collection, "success").Inc()
	metrics.RetrievalDocuments.WithLabelValues(collection).Observe(float64(len(hits)))
	return hits, nil
}

// HealthCheck probes the Qdrant readiness endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/readyz", nil)
	if err != nil {
		return fmt.Errorf("build readiness request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("vector index readiness: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vector index readiness: status %d", resp.StatusCode)
	}
	return nil
}

// filterToPayload serializes a filter, or nil when it has no conditions.
func filterToPayload(f filter.Filter) *filterPayload {
	if f.IsEmpty() {
		return nil
	}
	conditions := f.Conditions()
	must := make([]conditionPayload, len(conditions))
	for i, c := range conditions {
		cp := conditionPayload{Key: c.Key()}
		if c.IsAny() {
			cp.Match = matchPayload{Any: c.AnyOf()}
		} else {
			cp.Match = matchPayload{Value: c.Match()}
		}
		must[i] = cp
	}
	return &filterPayload{Must: must}
}
