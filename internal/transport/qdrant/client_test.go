package qdrant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/aas-cloud/doorpilot/internal/domain"
	"github.com/aas-cloud/doorpilot/internal/domain/filter"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&Config{BaseURL: srv.URL, Logger: zap.NewNop()}), srv
}

func TestSearch_RequestShape(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"id": "doc-1", "score": 0.91, "payload": map[string]any{"cause": "Worn belt"}},
				{"id": float64(7), "score": 0.72, "payload": map[string]any{}},
			},
			"status": "ok",
		})
	})

	mustCond := func(key, value string) filter.Condition {
		c, err := filter.NewMatch(key, value)
		if err != nil {
			t.Fatalf("NewMatch: %v", err)
		}
		return c
	}
	roles, err := filter.NewMatchAny("allowed_roles", []string{"Tech"})
	if err != nil {
		t.Fatalf("NewMatchAny: %v", err)
	}
	f := filter.New(mustCond("manufacturer", "Stanley"), roles)

	hits, err := client.Search(context.Background(), "playbooks", []float32{0.1, 0.2}, f, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotPath != "/collections/playbooks/points/search" {
		t.Errorf("unexpected path: %q", gotPath)
	}
	if gotBody["limit"] != float64(3) || gotBody["with_payload"] != true {
		t.Errorf("unexpected body: %+v", gotBody)
	}

	must, ok := gotBody["filter"].(map[string]any)["must"].([]any)
	if !ok || len(must) != 2 {
		t.Fatalf("unexpected filter payload: %+v", gotBody["filter"])
	}
	first := must[0].(map[string]any)
	if first["key"] != "manufacturer" {
		t.Errorf("unexpected first condition: %+v", first)
	}
	if first["match"].(map[string]any)["value"] != "Stanley" {
		t.Errorf("unexpected match: %+v", first["match"])
	}
	second := must[1].(map[string]any)
	anyVals, _ := second["match"].(map[string]any)["any"].([]any)
	if second["key"] != "allowed_roles" || len(anyVals) != 1 || anyVals[0] != "Tech" {
		t.Errorf("unexpected roles condition: %+v", second)
	}

	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != "doc-1" || hits[0].Score != 0.91 {
		t.Errorf("unexpected hit: %+v", hits[0])
	}
	if hits[0].Payload["cause"] != "Worn belt" {
		t.Errorf("payload lost: %+v", hits[0].Payload)
	}
	// Numeric point IDs are stringified.
	if hits[1].ID != "7" {
		t.Errorf("expected stringified id, got %q", hits[1].ID)
	}
}

func TestSearch_EmptyFilterOmitted(t *testing.T) {
	var gotBody map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
	})

	if _, err := client.Search(context.Background(), "parts", []float32{0.1}, filter.New(), 5); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, present := gotBody["filter"]; present {
		t.Errorf("empty filter must be absent from the wire, got %+v", gotBody["filter"])
	}
}

func TestSearch_ErrorStatusMapsToSentinel(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":{"error":"collection not found"}}`, http.StatusNotFound)
	})

	_, err := client.Search(context.Background(), "missing", []float32{0.1}, filter.New(), 5)
	if !errors.Is(err, domain.ErrVectorIndexError) {
		t.Errorf("expected ErrVectorIndexError, got %v", err)
	}
}

func TestSearch_TransportErrorMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // force a connection error

	client := NewClient(&Config{BaseURL: srv.URL, Logger: zap.NewNop()})
	_, err := client.Search(context.Background(), "parts", []float32{0.1}, filter.New(), 5)
	if !errors.Is(err, domain.ErrVectorIndexError) {
		t.Errorf("expected ErrVectorIndexError, got %v", err)
	}
}

func TestSearch_APIKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		_ = json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
	}))
	defer srv.Close()

	client := NewClient(&Config{BaseURL: srv.URL, APIKey: "secret", Logger: zap.NewNop()})
	if _, err := client.Search(context.Background(), "parts", []float32{0.1}, filter.New(), 5); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotKey != "secret" {
		t.Errorf("expected api-key header, got %q", gotKey)
	}
}

func TestHealthCheck(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/readyz" {
			t.Errorf("unexpected path: %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}

func TestHealthCheck_NotReady(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if err := client.HealthCheck(context.Background()); err == nil {
		t.Error("expected error for unready index")
	}
}
