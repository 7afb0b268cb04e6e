package access

import (
	"context"
	"database/sql"
	"errors"

	"gatecheck/internal/db"
	"gatecheck/internal/domain"
)

// EffectiveProjects returns the user's effective access as a map from
// project authorization ID to the most permissive privilege level.
func (s *Service) EffectiveProjects(ctx context.Context, userID int64) (map[string]string, error) {
	privs, err := s.readPrivileges.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(privs))
	for _, p := range privs {
		project, err := s.readProjects.GetByID(ctx, p.ProjectID)
		if err != nil {
			return nil, err
		}
		out[project.AuthID] = p.Privilege
	}
	return out, nil
}

// AddUserToGroups adds the user to each named group and creates or widens the
// access rows for every project those groups grant. Existing privilege levels
// are never narrowed.
func (s *Service) AddUserToGroups(ctx context.Context, username string, groupNames []string) error {
	return db.RunInTx(ctx, s.writeDB, func(tx *sql.Tx) error {
		users := s.users.WithTx(tx)
		groups := s.groups.WithTx(tx)
		privileges := s.privileges.WithTx(tx)

		user, err := users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}

		for _, name := range groupNames {
			group, err := groups.GetByName(ctx, name)
			if err != nil {
				return err
			}
			if err := groups.AddMember(ctx, &domain.UserToGroup{UserID: user.ID, GroupID: group.ID}); err != nil {
				return err
			}

			grants, err := groups.ListProjects(ctx, group.ID)
			if err != nil {
				return err
			}
			for _, grant := range grants {
				if err := widenPrivilegeRow(ctx, privileges, user.ID, grant.ProjectID, grant.Privilege); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// RemoveUserFromGroups removes the memberships, then recomputes what access
// the remaining memberships and direct grants still justify. Rows with no
// remaining justification are deleted; surviving rows get their effective
// level recomputed, so access granted by an overlapping group is kept.
func (s *Service) RemoveUserFromGroups(ctx context.Context, username string, groupNames []string) error {
	return db.RunInTx(ctx, s.writeDB, func(tx *sql.Tx) error {
		users := s.users.WithTx(tx)
		groups := s.groups.WithTx(tx)
		privileges := s.privileges.WithTx(tx)

		user, err := users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}

		for _, name := range groupNames {
			group, err := groups.GetByName(ctx, name)
			if err != nil {
				return err
			}
			if err := groups.RemoveMember(ctx, &domain.UserToGroup{UserID: user.ID, GroupID: group.ID}); err != nil {
				return err
			}
		}

		remaining, err := groups.GetGroupsForUser(ctx, user.ID)
		if err != nil {
			return err
		}
		groupIDs := make([]int64, len(remaining))
		for i, g := range remaining {
			groupIDs[i] = g.ID
		}
		grants, err := groups.ListProjectsForGroups(ctx, groupIDs)
		if err != nil {
			return err
		}

		// Most permissive level each project is still group-justified at.
		justified := make(map[int64]string)
		for _, grant := range grants {
			if cur, ok := justified[grant.ProjectID]; ok {
				justified[grant.ProjectID] = domain.WidenPrivilege(cur, grant.Privilege)
			} else {
				justified[grant.ProjectID] = grant.Privilege
			}
		}

		rows, err := privileges.ListForUser(ctx, user.ID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			groupLevel, grouped := justified[row.ProjectID]
			switch {
			case !grouped && !row.Direct():
				if err := privileges.Delete(ctx, row.UserID, row.ProjectID); err != nil {
					return err
				}
			default:
				effective := groupLevel
				if row.Direct() {
					effective = domain.WidenPrivilege(effective, *row.DirectPrivilege)
				}
				if effective != row.Privilege {
					row.Privilege = effective
					if err := privileges.Upsert(ctx, &row); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

// AllMembers returns the usernames of every member of the named group.
func (s *Service) AllMembers(ctx context.Context, groupName string) ([]string, error) {
	group, err := s.readGroups.GetByName(ctx, groupName)
	if err != nil {
		return nil, err
	}
	members, err := s.readGroups.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Username
	}
	return names, nil
}

// UserHasAccessToAllOf reports whether every given user has an access row for
// the project. Only materialized rows count; no graph traversal happens here.
func (s *Service) UserHasAccessToAllOf(ctx context.Context, userIDs []int64, projectAuthID string) (bool, error) {
	for _, uid := range userIDs {
		ok, err := s.readPrivileges.HasDirect(ctx, uid, projectAuthID)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// GrantProjectAccess records an explicit grant for the user on the project.
// The direct level is set and the effective level widened, never narrowed.
func (s *Service) GrantProjectAccess(ctx context.Context, username, projectAuthID, privilege string) error {
	if !domain.ValidPrivilege(privilege) {
		return domain.ErrValidation("unknown privilege level %q", privilege)
	}
	return db.RunInTx(ctx, s.writeDB, func(tx *sql.Tx) error {
		users := s.users.WithTx(tx)
		projects := s.projects.WithTx(tx)
		privileges := s.privileges.WithTx(tx)

		user, err := users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		project, err := projects.GetByAuthID(ctx, projectAuthID)
		if err != nil {
			return err
		}

		row, err := privileges.Get(ctx, user.ID, project.ID)
		if err != nil {
			var nf *domain.NotFoundError
			if !errors.As(err, &nf) {
				return err
			}
			direct := privilege
			return privileges.Upsert(ctx, &domain.AccessPrivilege{
				UserID:          user.ID,
				ProjectID:       project.ID,
				Privilege:       privilege,
				DirectPrivilege: &direct,
			})
		}

		direct := privilege
		row.DirectPrivilege = &direct
		row.Privilege = domain.WidenPrivilege(row.Privilege, privilege)
		return privileges.Upsert(ctx, row)
	})
}

// widenPrivilegeRow creates the access row or raises its effective level,
// preserving any direct grant already recorded.
func widenPrivilegeRow(ctx context.Context, privileges domain.PrivilegeRepository, userID, projectID int64, level string) error {
	row, err := privileges.Get(ctx, userID, projectID)
	if err != nil {
		var nf *domain.NotFoundError
		if !errors.As(err, &nf) {
			return err
		}
		return privileges.Upsert(ctx, &domain.AccessPrivilege{
			UserID:    userID,
			ProjectID: projectID,
			Privilege: level,
		})
	}
	widened := domain.WidenPrivilege(row.Privilege, level)
	if widened == row.Privilege {
		return nil
	}
	row.Privilege = widened
	return privileges.Upsert(ctx, row)
}
