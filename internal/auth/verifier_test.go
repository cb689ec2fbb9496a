package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aas-cloud/doorpilot/internal/config"
	"github.com/aas-cloud/doorpilot/internal/domain"
)

const (
	testKid      = "test-key-1"
	testAudience = "https://aas-portal.com/api"
	testIssuer   = "https://aas.eu.auth0.com/"
	rolesClaim   = "https://aas-portal.com/roles"
)

// --- Helpers ---

func newSigningKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func jwksFor(pub *rsa.PublicKey, kid string) []byte {
	doc := map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": kid,
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}
	data, _ := json.Marshal(doc)
	return data
}

func newTestVerifier(t *testing.T, key *rsa.PrivateKey) *Verifier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(jwksFor(&key.PublicKey, testKid))
	}))
	t.Cleanup(srv.Close)

	return &Verifier{
		keys:       NewKeySet(srv.URL),
		audience:   testAudience,
		issuer:     testIssuer,
		rolesClaim: rolesClaim,
		parser:     jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
	}
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":      "auth0|tech-1",
		"aud":      testAudience,
		"iss":      testIssuer,
		"exp":      time.Now().Add(time.Hour).Unix(),
		"email":    "tech@aas-portal.com",
		"name":     "Field Tech",
		rolesClaim: []any{"Tech"},
	}
}

// --- Tests ---

func TestVerify_ValidToken(t *testing.T) {
	key := newSigningKey(t)
	v := newTestVerifier(t, key)

	user, err := v.Verify(context.Background(), signToken(t, key, testKid, validClaims()))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if user.Sub != "auth0|tech-1" {
		t.Errorf("sub: got %q", user.Sub)
	}
	if user.Email != "tech@aas-portal.com" || user.Name != "Field Tech" {
		t.Errorf("identity: got %+v", user)
	}
	if len(user.Roles) != 1 || user.Roles[0] != "Tech" {
		t.Errorf("roles: got %v", user.Roles)
	}
	if !user.IsTechnician() {
		t.Error("Tech role must count as technician")
	}
}

func TestVerify_NoRolesClaim(t *testing.T) {
	key := newSigningKey(t)
	v := newTestVerifier(t, key)

	claims := validClaims()
	delete(claims, rolesClaim)

	user, err := v.Verify(context.Background(), signToken(t, key, testKid, claims))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(user.Roles) != 0 {
		t.Errorf("roles: got %v, want none", user.Roles)
	}
	if user.IsTechnician() {
		t.Error("role-less caller must not be a technician")
	}
}

func TestVerify_WrongAudience(t *testing.T) {
	key := newSigningKey(t)
	v := newTestVerifier(t, key)

	claims := validClaims()
	claims["aud"] = "https://other-api.example.com"

	_, err := v.Verify(context.Background(), signToken(t, key, testKid, claims))
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_WrongIssuer(t *testing.T) {
	key := newSigningKey(t)
	v := newTestVerifier(t, key)

	claims := validClaims()
	claims["iss"] = "https://rogue.example.com/"

	_, err := v.Verify(context.Background(), signToken(t, key, testKid, claims))
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	key := newSigningKey(t)
	v := newTestVerifier(t, key)

	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()

	_, err := v.Verify(context.Background(), signToken(t, key, testKid, claims))
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_WrongSigningKey(t *testing.T) {
	key := newSigningKey(t)
	v := newTestVerifier(t, key)

	rogue := newSigningKey(t)
	_, err := v.Verify(context.Background(), signToken(t, rogue, testKid, validClaims()))
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_UnknownKid(t *testing.T) {
	key := newSigningKey(t)
	v := newTestVerifier(t, key)

	_, err := v.Verify(context.Background(), signToken(t, key, "rotated-away", validClaims()))
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_HMACAlgorithmRejected(t *testing.T) {
	key := newSigningKey(t)
	v := newTestVerifier(t, key)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	token.Header["kid"] = testKid
	signed, err := token.SignedString([]byte("shared-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := v.Verify(context.Background(), signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_GarbageToken(t *testing.T) {
	key := newSigningKey(t)
	v := newTestVerifier(t, key)

	if _, err := v.Verify(context.Background(), "not-a-jwt"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewVerifier_EmptyDomainDisablesAuth(t *testing.T) {
	if v := NewVerifier(config.AuthConfig{}); v != nil {
		t.Errorf("expected nil verifier, got %+v", v)
	}
}

func TestKeySet_RefetchOnUnknownKid(t *testing.T) {
	oldKey := newSigningKey(t)
	newKey := newSigningKey(t)

	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		if fetches == 1 {
			_, _ = w.Write(jwksFor(&oldKey.PublicKey, "old-kid"))
			return
		}
		_, _ = w.Write(jwksFor(&newKey.PublicKey, "new-kid"))
	}))
	defer srv.Close()

	ks := NewKeySet(srv.URL)

	if _, err := ks.Key(context.Background(), "old-kid"); err != nil {
		t.Fatalf("first key lookup: %v", err)
	}

	// A kid missing from the cache forces a refetch and picks up the
	// rotated key set.
	if _, err := ks.Key(context.Background(), "new-kid"); err != nil {
		t.Fatalf("rotated key lookup: %v", err)
	}
	if fetches != 2 {
		t.Errorf("expected 2 JWKS fetches, got %d", fetches)
	}
}

func TestKeySet_JWKSUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ks := NewKeySet(srv.URL)
	if _, err := ks.Key(context.Background(), "any"); err == nil {
		t.Error("expected error when JWKS endpoint is down")
	}
}
