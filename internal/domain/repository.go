package domain

import (
	"context"
	"database/sql"
)

// UserRepository provides CRUD operations for users.
type UserRepository interface {
	WithTx(tx *sql.Tx) UserRepository
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error
}

// GroupRepository provides CRUD operations for groups, membership, and the
// group-to-project grant associations.
type GroupRepository interface {
	WithTx(tx *sql.Tx) GroupRepository
	Create(ctx context.Context, g *Group) (*Group, error)
	GetByName(ctx context.Context, name string) (*Group, error)
	Delete(ctx context.Context, id int64) error
	AddMember(ctx context.Context, m *UserToGroup) error
	RemoveMember(ctx context.Context, m *UserToGroup) error
	ListMembers(ctx context.Context, groupID int64) ([]User, error)
	GetGroupsForUser(ctx context.Context, userID int64) ([]Group, error)
	AddProject(ctx context.Context, gp *GroupProject) error
	ListProjects(ctx context.Context, groupID int64) ([]GroupProject, error)
	ListProjectsForGroups(ctx context.Context, groupIDs []int64) ([]GroupProject, error)
}

// ProjectRepository provides CRUD operations for projects.
type ProjectRepository interface {
	WithTx(tx *sql.Tx) ProjectRepository
	Create(ctx context.Context, p *Project) (*Project, error)
	GetByID(ctx context.Context, id int64) (*Project, error)
	GetByAuthID(ctx context.Context, authID string) (*Project, error)
	List(ctx context.Context) ([]Project, error)
}

// PrivilegeRepository provides operations on the materialized user-project
// access rows. Mutations are only ever issued by the privilege graph.
type PrivilegeRepository interface {
	WithTx(tx *sql.Tx) PrivilegeRepository
	Get(ctx context.Context, userID, projectID int64) (*AccessPrivilege, error)
	ListForUser(ctx context.Context, userID int64) ([]AccessPrivilege, error)
	Upsert(ctx context.Context, p *AccessPrivilege) error
	Delete(ctx context.Context, userID, projectID int64) error
	HasDirect(ctx context.Context, userID int64, projectAuthID string) (bool, error)
}

// RevocationRepository persists revoked refresh-token identifiers.
type RevocationRepository interface {
	Insert(ctx context.Context, r *RevokedToken) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	DeleteExpired(ctx context.Context, now int64) (int64, error)
}

// RegistrationRepository persists certified service-account registrations.
type RegistrationRepository interface {
	Upsert(ctx context.Context, r *ServiceAccountRegistration) error
	GetByEmail(ctx context.Context, accountEmail string) (*ServiceAccountRegistration, error)
	ListForProject(ctx context.Context, cloudProjectID string) ([]ServiceAccountRegistration, error)
	DeleteExpired(ctx context.Context, now int64) (int64, error)
}
