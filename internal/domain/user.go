package domain

import "time"

// Privilege levels on a project, ordered by permissiveness. Widening keeps
// the more permissive level; levels are never silently narrowed.
const (
	PrivilegeRead   = "read"
	PrivilegeUpload = "upload"
	PrivilegeAdmin  = "admin"
)

var privilegeRank = map[string]int{
	PrivilegeRead:   1,
	PrivilegeUpload: 2,
	PrivilegeAdmin:  3,
}

// ValidPrivilege reports whether level is a known privilege level.
func ValidPrivilege(level string) bool {
	_, ok := privilegeRank[level]
	return ok
}

// WidenPrivilege returns the more permissive of two privilege levels.
func WidenPrivilege(a, b string) string {
	if privilegeRank[b] > privilegeRank[a] {
		return b
	}
	return a
}

// User is an account known to the broker.
type User struct {
	ID        int64
	Username  string
	Email     *string
	IsAdmin   bool
	CreatedAt time.Time
}

// Role returns the administrative role string for the user.
func (u *User) Role() string {
	if u.IsAdmin {
		return "admin"
	}
	return "user"
}

// Group is a named collection of users with a set of grantable projects.
type Group struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Project is an access-controlled resource. AuthID is the external-facing
// authorization identifier callers use; Name is the display name.
type Project struct {
	ID        int64
	AuthID    string
	Name      string
	CreatedAt time.Time
}

// AccessPrivilege is the materialized user-project access row. There is at
// most one row per (user, project). Privilege holds the effective (most
// permissive) level over every justification; DirectPrivilege holds the
// explicitly granted level and is nil when access is group-derived only.
type AccessPrivilege struct {
	UserID          int64
	ProjectID       int64
	Privilege       string
	DirectPrivilege *string
}

// Direct reports whether the row is justified by an explicit grant.
func (p *AccessPrivilege) Direct() bool { return p.DirectPrivilege != nil }

// UserToGroup links a user to a group. Unique on the pair.
type UserToGroup struct {
	UserID  int64
	GroupID int64
}

// GroupProject is a group's grantable project and the level it grants.
type GroupProject struct {
	GroupID   int64
	ProjectID int64
	Privilege string
}

// UserInfo is the admin-facing view of a user.
type UserInfo struct {
	Username      string
	Role          string
	Email         *string
	Groups        []string
	ProjectAccess map[string][]string // project auth ID -> privilege levels
}

// CreateUserRequest holds parameters for creating a user.
type CreateUserRequest struct {
	Username string
	Role     string // "admin" or "user"; defaults to "user"
	Email    string
}

// Validate checks that the request is well-formed.
func (r *CreateUserRequest) Validate() error {
	if r.Username == "" {
		return ErrValidation("username is required")
	}
	if r.Role == "" {
		r.Role = "user"
	}
	if r.Role != "user" && r.Role != "admin" {
		return ErrValidation("role must be 'user' or 'admin'")
	}
	return nil
}

// UpdateUserRequest holds parameters for updating a user in place.
// Empty fields are left unchanged; NewUsername renames the account.
type UpdateUserRequest struct {
	Username    string
	Role        string
	Email       string
	NewUsername string
}

// Validate checks that the request is well-formed.
func (r *UpdateUserRequest) Validate() error {
	if r.Username == "" {
		return ErrValidation("username is required")
	}
	if r.Role != "" && r.Role != "user" && r.Role != "admin" {
		return ErrValidation("role must be 'user' or 'admin'")
	}
	return nil
}
