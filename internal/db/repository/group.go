package repository

import (
	"context"
	"database/sql"

	"gatecheck/internal/db/dbstore"
	"gatecheck/internal/domain"
)

type GroupRepo struct {
	q *dbstore.Queries
}

func NewGroupRepo(db *sql.DB) *GroupRepo {
	return &GroupRepo{q: dbstore.New(db)}
}

func (r *GroupRepo) WithTx(tx *sql.Tx) domain.GroupRepository {
	return &GroupRepo{q: r.q.WithTx(tx)}
}

func (r *GroupRepo) Create(ctx context.Context, g *domain.Group) (*domain.Group, error) {
	row, err := r.q.CreateGroup(ctx, g.Name)
	if err != nil {
		return nil, mapDBError(err)
	}
	return groupFromDB(row), nil
}

func (r *GroupRepo) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	row, err := r.q.GetGroupByName(ctx, name)
	if err != nil {
		return nil, mapDBError(err)
	}
	return groupFromDB(row), nil
}

func (r *GroupRepo) Delete(ctx context.Context, id int64) error {
	return r.q.DeleteGroup(ctx, id)
}

func (r *GroupRepo) AddMember(ctx context.Context, m *domain.UserToGroup) error {
	return r.q.AddGroupMember(ctx, dbstore.AddGroupMemberParams{
		UserID:  m.UserID,
		GroupID: m.GroupID,
	})
}

func (r *GroupRepo) RemoveMember(ctx context.Context, m *domain.UserToGroup) error {
	return r.q.RemoveGroupMember(ctx, dbstore.RemoveGroupMemberParams{
		UserID:  m.UserID,
		GroupID: m.GroupID,
	})
}

func (r *GroupRepo) ListMembers(ctx context.Context, groupID int64) ([]domain.User, error) {
	rows, err := r.q.ListGroupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, len(rows))
	for i, row := range rows {
		users[i] = *userFromDB(row)
	}
	return users, nil
}

func (r *GroupRepo) GetGroupsForUser(ctx context.Context, userID int64) ([]domain.Group, error) {
	rows, err := r.q.GetGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups := make([]domain.Group, len(rows))
	for i, row := range rows {
		groups[i] = *groupFromDB(row)
	}
	return groups, nil
}

func (r *GroupRepo) AddProject(ctx context.Context, gp *domain.GroupProject) error {
	return r.q.AddGroupProject(ctx, dbstore.AddGroupProjectParams{
		GroupID:   gp.GroupID,
		ProjectID: gp.ProjectID,
		Privilege: gp.Privilege,
	})
}

func (r *GroupRepo) ListProjects(ctx context.Context, groupID int64) ([]domain.GroupProject, error) {
	rows, err := r.q.ListGroupProjects(ctx, groupID)
	if err != nil {
		return nil, err
	}
	grants := make([]domain.GroupProject, len(rows))
	for i, row := range rows {
		grants[i] = domain.GroupProject{
			GroupID:   row.GroupID,
			ProjectID: row.ProjectID,
			Privilege: row.Privilege,
		}
	}
	return grants, nil
}

func (r *GroupRepo) ListProjectsForGroups(ctx context.Context, groupIDs []int64) ([]domain.GroupProject, error) {
	var grants []domain.GroupProject
	for _, gid := range groupIDs {
		gs, err := r.ListProjects(ctx, gid)
		if err != nil {
			return nil, err
		}
		grants = append(grants, gs...)
	}
	return grants, nil
}
