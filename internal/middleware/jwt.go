// Package middleware provides the HTTP middleware stack: bearer
// authentication, external identity-token validation, request IDs, and
// per-client rate limiting.
package middleware

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// IdentityClaims holds the parsed claims from a validated external identity
// token. Login exchanges one of these for broker-issued credentials.
type IdentityClaims struct {
	Subject  string
	Issuer   string
	Audience []string
	Email    *string
	Name     *string
	Raw      map[string]interface{}
}

// IdentityValidator validates an externally issued identity token.
type IdentityValidator interface {
	Validate(ctx context.Context, tokenString string) (*IdentityClaims, error)
}

// OIDCValidator validates identity tokens using OIDC discovery and JWKS.
type OIDCValidator struct {
	verifier       *oidc.IDTokenVerifier
	allowedIssuers map[string]bool
}

// NewOIDCValidator creates a validator from an OIDC issuer URL.
func NewOIDCValidator(ctx context.Context, issuerURL, audience string, allowedIssuers []string) (*OIDCValidator, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider discovery: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{
		ClientID: audience,
	})
	issuers := make(map[string]bool, len(allowedIssuers))
	for _, iss := range allowedIssuers {
		issuers[iss] = true
	}
	if len(issuers) == 0 {
		issuers[issuerURL] = true
	}
	return &OIDCValidator{verifier: verifier, allowedIssuers: issuers}, nil
}

// NewOIDCValidatorFromJWKS creates a validator from a JWKS URL (no OIDC discovery).
func NewOIDCValidatorFromJWKS(ctx context.Context, jwksURL, issuerURL, audience string, allowedIssuers []string) (*OIDCValidator, error) {
	keySet := oidc.NewRemoteKeySet(ctx, jwksURL)
	verifier := oidc.NewVerifier(issuerURL, keySet, &oidc.Config{
		ClientID: audience,
	})
	issuers := make(map[string]bool, len(allowedIssuers))
	for _, iss := range allowedIssuers {
		issuers[iss] = true
	}
	if len(issuers) == 0 && issuerURL != "" {
		issuers[issuerURL] = true
	}
	return &OIDCValidator{verifier: verifier, allowedIssuers: issuers}, nil
}

// Validate verifies the token using the OIDC provider's JWKS.
func (v *OIDCValidator) Validate(ctx context.Context, tokenString string) (*IdentityClaims, error) {
	idToken, err := v.verifier.Verify(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	// Check issuer against allowlist.
	if len(v.allowedIssuers) > 0 && !v.allowedIssuers[idToken.Issuer] {
		return nil, fmt.Errorf("issuer %q not in allowed list", idToken.Issuer)
	}

	var raw map[string]interface{}
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	claims := &IdentityClaims{
		Subject:  idToken.Subject,
		Issuer:   idToken.Issuer,
		Audience: idToken.Audience,
		Raw:      raw,
	}
	if email, ok := raw["email"].(string); ok {
		claims.Email = &email
	}
	if name, ok := raw["name"].(string); ok {
		claims.Name = &name
	}

	return claims, nil
}
