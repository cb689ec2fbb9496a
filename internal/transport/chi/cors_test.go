package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

const portalOrigin = "https://aas-portal.com"

func corsHandler() http.Handler {
	mw := CORSMiddleware([]string{portalOrigin, "http://localhost:5173"})
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORS_AllowedOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", http.NoBody)
	req.Header.Set("Origin", portalOrigin)
	rr := httptest.NewRecorder()
	corsHandler().ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != portalOrigin {
		t.Errorf("allow-origin: got %q, want %q", got, portalOrigin)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("allow-credentials: got %q", got)
	}
	if got := rr.Header().Get("Vary"); got != "Origin" {
		t.Errorf("vary: got %q", got)
	}
}

func TestCORS_UnknownOrigin_NoHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", http.NoBody)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()
	corsHandler().ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unknown origin must get no allow-origin, got %q", got)
	}
	if rr.Code != http.StatusOK {
		t.Errorf("request still served: got %d", rr.Code)
	}
}

func TestCORS_Preflight204(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/chat", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	corsHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight: got %d, want %d", rr.Code, http.StatusNoContent)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("allow-methods: got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); got != "Authorization, Content-Type" {
		t.Errorf("allow-headers: got %q", got)
	}
}

func TestCORS_NoConfiguredOrigins_PassThrough(t *testing.T) {
	handler := CORSMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/v1/chat", http.NoBody)
	req.Header.Set("Origin", portalOrigin)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code == http.StatusNoContent {
		t.Error("disabled CORS must not answer preflights")
	}
}
