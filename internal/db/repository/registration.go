package repository

import (
	"context"
	"database/sql"

	"gatecheck/internal/db/dbstore"
	"gatecheck/internal/domain"
)

type RegistrationRepo struct {
	q *dbstore.Queries
}

func NewRegistrationRepo(db *sql.DB) *RegistrationRepo {
	return &RegistrationRepo{q: dbstore.New(db)}
}

// Upsert records or renews a certified registration for the account.
func (r *RegistrationRepo) Upsert(ctx context.Context, reg *domain.ServiceAccountRegistration) error {
	return r.q.UpsertRegistration(ctx, dbstore.UpsertRegistrationParams{
		CloudProjectID: reg.CloudProjectID,
		AccountEmail:   reg.AccountEmail,
		ExpiresAt:      reg.ExpiresAt.Unix(),
	})
}

func (r *RegistrationRepo) GetByEmail(ctx context.Context, accountEmail string) (*domain.ServiceAccountRegistration, error) {
	row, err := r.q.GetRegistrationByEmail(ctx, accountEmail)
	if err != nil {
		return nil, mapDBError(err)
	}
	return registrationFromDB(row), nil
}

func (r *RegistrationRepo) ListForProject(ctx context.Context, cloudProjectID string) ([]domain.ServiceAccountRegistration, error) {
	rows, err := r.q.ListRegistrationsForProject(ctx, cloudProjectID)
	if err != nil {
		return nil, err
	}
	regs := make([]domain.ServiceAccountRegistration, len(rows))
	for i, row := range rows {
		regs[i] = *registrationFromDB(row)
	}
	return regs, nil
}

// DeleteExpired drops registrations past their expiry.
func (r *RegistrationRepo) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	return r.q.DeleteExpiredRegistrations(ctx, now)
}
