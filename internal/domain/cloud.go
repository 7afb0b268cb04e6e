package domain

import (
	"context"
	"time"
)

// Cloud-provider member types as reported on a project's IAM policy.
const (
	MemberTypeUser           = "user"
	MemberTypeServiceAccount = "serviceAccount"
	MemberTypeGroup          = "group"
	MemberTypeDomain         = "domain"
)

// Service account types eligible for registration.
const (
	ServiceAccountComputeDefault = "compute-engine-default"
	ServiceAccountUserManaged    = "user-managed"
	ServiceAccountUnknown        = "unknown"
)

// PolicyMember is one member entry of a project's IAM policy.
type PolicyMember struct {
	MemberType string
	MemberID   string // email or domain
}

// PolicyBinding associates a role with its members.
type PolicyBinding struct {
	Role    string
	Members []PolicyMember
}

// ServiceAccountResponse carries a direct account fetch. Status is the
// provider's HTTP status; callers must treat non-200 explicitly.
type ServiceAccountResponse struct {
	Status      int
	UniqueID    string
	Email       string
	DisplayName string
}

// PolicyResponse carries an account IAM policy fetch. A response without a
// bindings section means the account holds no roles.
type PolicyResponse struct {
	Status   int
	Bindings []PolicyBinding
}

// ServiceAccountKey is a user-managed key on a service account.
type ServiceAccountKey struct {
	Name       string
	ValidAfter string
	ValidUntil string
}

// ServiceAccountRegistration is a certified service account admitted for
// data access until ExpiresAt.
type ServiceAccountRegistration struct {
	ID             int64
	CloudProjectID string
	AccountEmail   string
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

// CloudManager is the external cloud-provider contract. Implementations are
// read-only against the provider; every method is a blocking network call
// bounded by the caller's context.
type CloudManager interface {
	// HasParentOrganization reports whether the project sits under an
	// organization node.
	HasParentOrganization(ctx context.Context, projectID string) (bool, error)

	// GetProjectMembership enumerates every member on the project policy.
	GetProjectMembership(ctx context.Context, projectID string) ([]PolicyMember, error)

	// GetServiceAccountType classifies the account within the project.
	GetServiceAccountType(ctx context.Context, projectID, accountID string) (string, error)

	// GetAllServiceAccounts lists account identifiers in the project.
	GetAllServiceAccounts(ctx context.Context, projectID string) ([]string, error)

	// GetServiceAccount fetches one account directly.
	GetServiceAccount(ctx context.Context, projectID, accountID string) (*ServiceAccountResponse, error)

	// GetServiceAccountPolicy fetches the account's IAM policy.
	GetServiceAccountPolicy(ctx context.Context, accountID string) (*PolicyResponse, error)

	// GetServiceAccountKeysInfo lists externally issued key material.
	GetServiceAccountKeysInfo(ctx context.Context, accountID string) ([]ServiceAccountKey, error)
}
