package repository

import (
	"context"
	"database/sql"

	"gatecheck/internal/db/dbstore"
	"gatecheck/internal/domain"
)

type ProjectRepo struct {
	q *dbstore.Queries
}

func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{q: dbstore.New(db)}
}

func (r *ProjectRepo) WithTx(tx *sql.Tx) domain.ProjectRepository {
	return &ProjectRepo{q: r.q.WithTx(tx)}
}

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	row, err := r.q.CreateProject(ctx, dbstore.CreateProjectParams{
		AuthID: p.AuthID,
		Name:   p.Name,
	})
	if err != nil {
		return nil, mapDBError(err)
	}
	return projectFromDB(row), nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	row, err := r.q.GetProject(ctx, id)
	if err != nil {
		return nil, mapDBError(err)
	}
	return projectFromDB(row), nil
}

func (r *ProjectRepo) GetByAuthID(ctx context.Context, authID string) (*domain.Project, error) {
	row, err := r.q.GetProjectByAuthID(ctx, authID)
	if err != nil {
		return nil, mapDBError(err)
	}
	return projectFromDB(row), nil
}

func (r *ProjectRepo) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.q.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	projects := make([]domain.Project, len(rows))
	for i, row := range rows {
		projects[i] = *projectFromDB(row)
	}
	return projects, nil
}
