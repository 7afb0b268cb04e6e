package access

import (
	"context"
	"database/sql"

	"gatecheck/internal/db"
	"gatecheck/internal/domain"
)

// CreateUser registers a new account. Duplicate usernames conflict.
func (s *Service) CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	user := &domain.User{
		Username: req.Username,
		IsAdmin:  req.Role == "admin",
	}
	if req.Email != "" {
		user.Email = &req.Email
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", "username", created.Username, "role", created.Role())
	return created, nil
}

// GetUserInfo assembles the admin-facing view: role, email, group
// memberships, and the effective project access map.
func (s *Service) GetUserInfo(ctx context.Context, username string) (*domain.UserInfo, error) {
	user, err := s.readUsers.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	groups, err := s.readGroups.GetGroupsForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	groupNames := make([]string, len(groups))
	for i, g := range groups {
		groupNames[i] = g.Name
	}

	projectAccess, err := s.EffectiveProjects(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	accessMap := make(map[string][]string, len(projectAccess))
	for authID, level := range projectAccess {
		accessMap[authID] = []string{level}
	}

	return &domain.UserInfo{
		Username:      user.Username,
		Role:          user.Role(),
		Email:         user.Email,
		Groups:        groupNames,
		ProjectAccess: accessMap,
	}, nil
}

// UpdateUser applies the non-empty fields of the request in place.
func (s *Service) UpdateUser(ctx context.Context, req *domain.UpdateUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if req.Role != "" {
		user.IsAdmin = req.Role == "admin"
	}
	if req.Email != "" {
		email := req.Email
		user.Email = &email
	}
	if req.NewUsername != "" {
		user.Username = req.NewUsername
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the account. Memberships and access rows cascade.
func (s *Service) DeleteUser(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.logger.Info("user deleted", "username", username)
	return nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.readUsers.List(ctx)
}

func (s *Service) CreateGroup(ctx context.Context, name string) (*domain.Group, error) {
	if name == "" {
		return nil, domain.ErrValidation("group name is required")
	}
	return s.groups.Create(ctx, &domain.Group{Name: name})
}

// DeleteGroup removes the group. Memberships and group grants cascade; access
// rows justified by the group are recomputed for each former member.
func (s *Service) DeleteGroup(ctx context.Context, name string) error {
	group, err := s.groups.GetByName(ctx, name)
	if err != nil {
		return err
	}
	members, err := s.groups.ListMembers(ctx, group.ID)
	if err != nil {
		return err
	}
	usernames := make([]string, len(members))
	for i, m := range members {
		usernames[i] = m.Username
	}

	for _, username := range usernames {
		if err := s.RemoveUserFromGroups(ctx, username, []string{name}); err != nil {
			return err
		}
	}
	return db.RunInTx(ctx, s.writeDB, func(tx *sql.Tx) error {
		return s.groups.WithTx(tx).Delete(ctx, group.ID)
	})
}

func (s *Service) CreateProject(ctx context.Context, name, authID string) (*domain.Project, error) {
	if name == "" || authID == "" {
		return nil, domain.ErrValidation("project name and auth id are required")
	}
	return s.projects.Create(ctx, &domain.Project{Name: name, AuthID: authID})
}

func (s *Service) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.readProjects.List(ctx)
}

// AddProjectToGroup makes the project grantable by the group at the given
// level and widens the access of every current member accordingly.
func (s *Service) AddProjectToGroup(ctx context.Context, groupName, projectAuthID, privilege string) error {
	if !domain.ValidPrivilege(privilege) {
		return domain.ErrValidation("unknown privilege level %q", privilege)
	}
	return db.RunInTx(ctx, s.writeDB, func(tx *sql.Tx) error {
		groups := s.groups.WithTx(tx)
		projects := s.projects.WithTx(tx)
		privileges := s.privileges.WithTx(tx)

		group, err := groups.GetByName(ctx, groupName)
		if err != nil {
			return err
		}
		project, err := projects.GetByAuthID(ctx, projectAuthID)
		if err != nil {
			return err
		}
		if err := groups.AddProject(ctx, &domain.GroupProject{
			GroupID:   group.ID,
			ProjectID: project.ID,
			Privilege: privilege,
		}); err != nil {
			return err
		}

		members, err := groups.ListMembers(ctx, group.ID)
		if err != nil {
			return err
		}
		for _, m := range members {
			if err := widenPrivilegeRow(ctx, privileges, m.ID, project.ID, privilege); err != nil {
				return err
			}
		}
		return nil
	})
}
