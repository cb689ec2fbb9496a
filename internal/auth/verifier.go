// Package auth validates Auth0-issued JWTs and resolves the caller
// identity used for role-gated operations.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aas-cloud/doorpilot/internal/config"
	"github.com/aas-cloud/doorpilot/internal/domain"
)

// Verifier validates bearer tokens against a JWKS key set and extracts
// the caller identity from the token claims.
type Verifier struct {
	keys       *KeySet
	audience   string
	issuer     string
	rolesClaim string
	parser     *jwt.Parser
}

// NewVerifier creates a Verifier from the auth configuration. Returns
// nil when no identity provider domain is configured; a nil Verifier
// means every request is treated as anonymous.
func NewVerifier(cfg config.AuthConfig) *Verifier {
	if cfg.Domain == "" {
		return nil
	}
	return &Verifier{
		keys:       NewKeySet(cfg.JWKSURL()),
		audience:   cfg.Audience,
		issuer:     cfg.Issuer(),
		rolesClaim: cfg.RolesClaim,
		parser:     jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
	}
}

// Verify validates the token signature, audience and issuer, and
// returns the caller it identifies. All failures wrap
// domain.ErrInvalidToken.
func (v *Verifier) Verify(ctx context.Context, token string) (*domain.User, error) {
	claims := jwt.MapClaims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token has no key ID")
		}
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("%w: token rejected", domain.ErrInvalidToken)
	}

	if err := v.checkAudience(claims); err != nil {
		return nil, err
	}
	if iss, _ := claims.GetIssuer(); iss != v.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer", domain.ErrInvalidToken)
	}

	sub, _ := claims.GetSubject()
	return &domain.User{
		Sub:   sub,
		Email: stringClaim(claims, "email"),
		Name:  stringClaim(claims, "name"),
		Roles: v.extractRoles(claims),
	}, nil
}

func (v *Verifier) checkAudience(claims jwt.MapClaims) error {
	aud, err := claims.GetAudience()
	if err != nil {
		return fmt.Errorf("%w: malformed audience", domain.ErrInvalidToken)
	}
	for _, a := range aud {
		if a == v.audience {
			return nil
		}
	}
	return fmt.Errorf("%w: audience mismatch", domain.ErrInvalidToken)
}

func (v *Verifier) extractRoles(claims jwt.MapClaims) []string {
	raw, ok := claims[v.rolesClaim].([]any)
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
