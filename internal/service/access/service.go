// Package access maintains the user/group/project privilege graph and the
// admin operations that manage accounts, groups, and projects.
package access

import (
	"database/sql"
	"log/slog"

	"gatecheck/internal/domain"
)

// Service owns the privilege graph. All multi-row mutations run inside a
// single transaction on the write pool; a membership change and its derived
// privilege rows commit together or not at all. Pure lookups go through a
// separate set of read repositories so they never contend with the
// single-connection write pool.
type Service struct {
	writeDB    *sql.DB
	users      domain.UserRepository
	groups     domain.GroupRepository
	projects   domain.ProjectRepository
	privileges domain.PrivilegeRepository

	// Read-side repositories, bound to the read pool by the binaries.
	// They default to the write-pool repositories so tests and callers
	// without a pool split keep working unchanged.
	readUsers      domain.UserRepository
	readGroups     domain.GroupRepository
	readProjects   domain.ProjectRepository
	readPrivileges domain.PrivilegeRepository

	logger *slog.Logger
}

func New(
	writeDB *sql.DB,
	users domain.UserRepository,
	groups domain.GroupRepository,
	projects domain.ProjectRepository,
	privileges domain.PrivilegeRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		writeDB:        writeDB,
		users:          users,
		groups:         groups,
		projects:       projects,
		privileges:     privileges,
		readUsers:      users,
		readGroups:     groups,
		readProjects:   projects,
		readPrivileges: privileges,
		logger:         logger,
	}
}

// WithReadPool routes the service's pure lookups through the given
// repositories. Mutations, and the lookups they depend on for
// read-your-writes consistency, stay on the write-pool repositories.
func (s *Service) WithReadPool(
	users domain.UserRepository,
	groups domain.GroupRepository,
	projects domain.ProjectRepository,
	privileges domain.PrivilegeRepository,
) *Service {
	s.readUsers = users
	s.readGroups = groups
	s.readProjects = projects
	s.readPrivileges = privileges
	return s
}
