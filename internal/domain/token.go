package domain

import "time"

// Token kinds. Refresh tokens carry a unique identifier (jti) so they can be
// revoked individually; access tokens are short-lived and never revoked.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// Claims is the validated claim set of a bearer credential.
type Claims struct {
	Subject  string
	Audience []string
	IssuedAt time.Time
	Expiry   time.Time
	KeyID    string
	Kind     string
	TokenID  string // jti; empty for access tokens
}

// HasAudience reports whether aud is among the token's audiences.
func (c *Claims) HasAudience(aud string) bool {
	for _, a := range c.Audience {
		if a == aud {
			return true
		}
	}
	return false
}

// RevokedToken is a persisted revocation record. ExpiresAt is copied from
// the token so the row can be garbage-collected once the token would have
// expired anyway.
type RevokedToken struct {
	TokenID   string
	ExpiresAt time.Time
}
