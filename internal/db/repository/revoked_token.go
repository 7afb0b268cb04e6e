package repository

import (
	"context"
	"database/sql"

	"gatecheck/internal/db/dbstore"
	"gatecheck/internal/domain"
)

type RevokedTokenRepo struct {
	q *dbstore.Queries
}

func NewRevokedTokenRepo(db *sql.DB) *RevokedTokenRepo {
	return &RevokedTokenRepo{q: dbstore.New(db)}
}

// Insert records a revoked token identifier. Re-revoking is a no-op.
func (r *RevokedTokenRepo) Insert(ctx context.Context, rec *domain.RevokedToken) error {
	return r.q.InsertRevokedToken(ctx, dbstore.InsertRevokedTokenParams{
		TokenID:   rec.TokenID,
		ExpiresAt: rec.ExpiresAt.Unix(),
	})
}

func (r *RevokedTokenRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	count, err := r.q.CountRevokedToken(ctx, tokenID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteExpired drops records whose expiry has passed. Purely an
// optimization; expired tokens are rejected by the expiry check regardless.
func (r *RevokedTokenRepo) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	return r.q.DeleteExpiredRevokedTokens(ctx, now)
}
