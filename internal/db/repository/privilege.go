package repository

import (
	"context"
	"database/sql"

	"gatecheck/internal/db/dbstore"
	"gatecheck/internal/domain"
)

type PrivilegeRepo struct {
	q *dbstore.Queries
}

func NewPrivilegeRepo(db *sql.DB) *PrivilegeRepo {
	return &PrivilegeRepo{q: dbstore.New(db)}
}

func (r *PrivilegeRepo) WithTx(tx *sql.Tx) domain.PrivilegeRepository {
	return &PrivilegeRepo{q: r.q.WithTx(tx)}
}

func (r *PrivilegeRepo) Get(ctx context.Context, userID, projectID int64) (*domain.AccessPrivilege, error) {
	row, err := r.q.GetAccessPrivilege(ctx, dbstore.GetAccessPrivilegeParams{
		UserID:    userID,
		ProjectID: projectID,
	})
	if err != nil {
		return nil, mapDBError(err)
	}
	return privilegeFromDB(row), nil
}

func (r *PrivilegeRepo) ListForUser(ctx context.Context, userID int64) ([]domain.AccessPrivilege, error) {
	rows, err := r.q.ListAccessPrivilegesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	privs := make([]domain.AccessPrivilege, len(rows))
	for i, row := range rows {
		privs[i] = *privilegeFromDB(row)
	}
	return privs, nil
}

func (r *PrivilegeRepo) Upsert(ctx context.Context, p *domain.AccessPrivilege) error {
	return r.q.UpsertAccessPrivilege(ctx, dbstore.UpsertAccessPrivilegeParams{
		UserID:          p.UserID,
		ProjectID:       p.ProjectID,
		Privilege:       p.Privilege,
		DirectPrivilege: nullString(p.DirectPrivilege),
	})
}

func (r *PrivilegeRepo) Delete(ctx context.Context, userID, projectID int64) error {
	return r.q.DeleteAccessPrivilege(ctx, dbstore.DeleteAccessPrivilegeParams{
		UserID:    userID,
		ProjectID: projectID,
	})
}

func (r *PrivilegeRepo) HasDirect(ctx context.Context, userID int64, projectAuthID string) (bool, error) {
	count, err := r.q.HasDirectAccess(ctx, dbstore.HasDirectAccessParams{
		UserID: userID,
		AuthID: projectAuthID,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
