package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gatecheck/internal/domain"
)

// Validation failures, in the caller-facing taxonomy.
var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
	ErrRevoked          = errors.New("token has been revoked")
)

type authorityClaims struct {
	jwt.RegisteredClaims
	Kind string `json:"kind"`
}

// Authority issues and validates signed bearer credentials against the key
// ring, and revokes refresh credentials into the revocation store.
type Authority struct {
	ring        *KeyRing
	revocations domain.RevocationRepository
	issuer      string
	logger      *slog.Logger
	now         func() time.Time
}

// NewAuthority creates an Authority. The ring must hold at least one key.
func NewAuthority(ring *KeyRing, revocations domain.RevocationRepository, issuer string, logger *slog.Logger) *Authority {
	return &Authority{
		ring:        ring,
		revocations: revocations,
		issuer:      issuer,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the authority's clock. Tests only.
func (a *Authority) WithClock(now func() time.Time) *Authority {
	a.now = now
	return a
}

// Issue mints a short-lived access credential signed by the primary key.
func (a *Authority) Issue(subject string, audience []string, ttl time.Duration) (string, *domain.Claims, error) {
	return a.issue(subject, audience, ttl, domain.TokenKindAccess, "")
}

// IssueRefresh mints a refresh credential carrying a unique token identifier
// so it can be revoked individually.
func (a *Authority) IssueRefresh(subject string, audience []string, ttl time.Duration) (string, *domain.Claims, error) {
	return a.issue(subject, audience, ttl, domain.TokenKindRefresh, uuid.NewString())
}

func (a *Authority) issue(subject string, audience []string, ttl time.Duration, kind, jti string) (string, *domain.Claims, error) {
	key := a.ring.Current()
	now := a.now()
	exp := now.Add(ttl)

	claims := authorityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        jti,
		},
		Kind: kind,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = key.KID

	signed, err := tok.SignedString(key.Private)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return signed, &domain.Claims{
		Subject:  subject,
		Audience: audience,
		IssuedAt: now,
		Expiry:   exp,
		KeyID:    key.KID,
		Kind:     kind,
		TokenID:  jti,
	}, nil
}

// Validate checks signature, expiry, and (for refresh credentials)
// revocation. The signing key is resolved by the token's key identifier, so
// tokens signed by a previously-current key keep validating after rotation.
func (a *Authority) Validate(ctx context.Context, tokenString string) (*domain.Claims, error) {
	parsed, err := a.parse(tokenString)
	if err != nil {
		return nil, err
	}

	claims := parsed.Claims.(*authorityClaims)
	kid, _ := parsed.Header["kid"].(string)

	out := &domain.Claims{
		Subject:  claims.Subject,
		Audience: []string(claims.Audience),
		KeyID:    kid,
		Kind:     claims.Kind,
		TokenID:  claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.Expiry = claims.ExpiresAt.Time
	}

	if claims.Kind == domain.TokenKindRefresh && claims.ID != "" {
		revoked, err := a.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("revocation lookup: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}

	return out, nil
}

func (a *Authority) parse(tokenString string) (*jwt.Token, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &authorityClaims{}, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		key, ok := a.ring.Lookup(kid)
		if !ok {
			return nil, fmt.Errorf("unknown key identifier %q", kid)
		}
		return key.Public, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		// Expiry takes precedence so callers see a stable error once the
		// token is past its lifetime, whatever else is wrong with it.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalidSignature
	}
	return parsed, nil
}

// Revoke persists the refresh credential's token identifier. The write is
// durable before Revoke returns; re-revoking is a no-op. Revoking an
// already-expired credential is also a no-op — the expiry check rejects it
// independent of revocation state.
func (a *Authority) Revoke(ctx context.Context, tokenString string) error {
	parsed, err := a.parse(tokenString)
	if err != nil {
		if errors.Is(err, ErrExpired) {
			return nil
		}
		return err
	}

	claims := parsed.Claims.(*authorityClaims)
	if claims.Kind != domain.TokenKindRefresh || claims.ID == "" {
		return domain.ErrValidation("only refresh credentials can be revoked")
	}

	rec := &domain.RevokedToken{TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		rec.ExpiresAt = claims.ExpiresAt.Time
	}
	if err := a.revocations.Insert(ctx, rec); err != nil {
		return fmt.Errorf("persist revocation: %w", err)
	}
	a.logger.Debug("refresh token revoked", "jti", claims.ID)
	return nil
}

// GarbageCollect drops revocation records whose expiry has passed. Called
// from a scheduled job; never required for correctness.
func (a *Authority) GarbageCollect(ctx context.Context, now time.Time) (int64, error) {
	n, err := a.revocations.DeleteExpired(ctx, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("revocation gc: %w", err)
	}
	if n > 0 {
		a.logger.Debug("revocation records collected", "count", n)
	}
	return n, nil
}
