// Package broker composes the token authority, the privilege graph, and the
// cloud policy engine into the three questions callers actually ask: who is
// this, may they touch this project, and may this account be registered.
package broker

import (
	"context"
	"errors"

	"gatecheck/internal/domain"
	"gatecheck/internal/service/access"
	"gatecheck/internal/service/cloudpolicy"
	"gatecheck/internal/service/token"
)

// Broker holds no state of its own; it delegates to its collaborators.
type Broker struct {
	authority *token.Authority
	access    *access.Service
	policy    *cloudpolicy.Engine
	users     domain.UserRepository
}

func New(authority *token.Authority, accessSvc *access.Service, policy *cloudpolicy.Engine, users domain.UserRepository) *Broker {
	return &Broker{
		authority: authority,
		access:    accessSvc,
		policy:    policy,
		users:     users,
	}
}

// Authenticate validates the credential and resolves its subject to a known
// account. Token errors and unknown subjects both fail authentication.
func (b *Broker) Authenticate(ctx context.Context, tokenString string) (*domain.User, *domain.Claims, error) {
	claims, err := b.authority.Validate(ctx, tokenString)
	if err != nil {
		return nil, nil, err
	}
	user, err := b.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

// Authorize reports whether the named user has any effective access to the
// project. Unknown users are simply unauthorized, not an error.
func (b *Broker) Authorize(ctx context.Context, username, projectAuthID string) (bool, error) {
	user, err := b.users.GetByUsername(ctx, username)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	projects, err := b.access.EffectiveProjects(ctx, user.ID)
	if err != nil {
		return false, err
	}
	_, ok := projects[projectAuthID]
	return ok, nil
}

// CertifyForRegistration delegates to the policy engine.
func (b *Broker) CertifyForRegistration(ctx context.Context, projectID, accountID string) (bool, error) {
	return b.policy.CertifyForRegistration(ctx, projectID, accountID)
}
