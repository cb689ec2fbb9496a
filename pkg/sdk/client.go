package doorpilot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is the doorpilot API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	cfg := &clientConfig{
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      cfg.token,
		httpClient: hc,
		timeout:    cfg.timeout,
		logger:     cfg.logger,
	}
}

// Chat starts a streaming chat call. The returned stream yields token
// events and ends with a final event; Recv returns io.EOF after the
// server's terminal frame. The caller must Close the stream.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatStream, error) {
	httpReq, err := c.newRequest(ctx, "/v1/chat", req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("doorpilot: chat request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}

	c.log("chat stream open", slog.String("conversation_id", resp.Header.Get("X-Conversation-ID")))
	return newChatStream(resp), nil
}

// Diagnose runs a quick playbook-first diagnosis. Requires a
// technician token.
func (c *Client) Diagnose(ctx context.Context, req *DiagnoseRequest) (*StructuredResponse, error) {
	var out StructuredResponse
	if err := c.call(ctx, "/v1/diagnose", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs a filtered vector search. The manuals and playbooks
// collections require a technician token.
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	var out SearchResponse
	if err := c.call(ctx, "/v1/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches the detailed health report.
func (c *Client) Health(ctx context.Context) (*HealthReport, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return nil, fmt.Errorf("doorpilot: build request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("doorpilot: health request: %w", err)
	}
	defer resp.Body.Close()

	// A degraded service still answers with a report body.
	var out HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("doorpilot: decode health response: %w", err)
	}
	return &out, nil
}

// call runs a JSON request/response roundtrip with the client timeout.
func (c *Client) call(ctx context.Context, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := c.newRequest(ctx, path, in)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("doorpilot: %s request: %w", path, err)
	}
	defer resp.Body.Close()

	c.log("api call",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("doorpilot: decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, path string, body any) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("doorpilot: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("doorpilot: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		_ = json.Unmarshal(body, apiErr)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func (c *Client) log(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
