// Package cloudpolicy runs the multi-step checks that decide whether a cloud
// project and service account may be certified for data-access registration.
//
// The boolean checks fail closed: any provider error makes the check false
// and the cause is logged at debug level. The external-access check is the
// exception — a non-success provider status there is a hard error, because
// guessing either way would be wrong.
package cloudpolicy

import (
	"context"
	"log/slog"
	"time"

	"gatecheck/internal/domain"
)

// Engine evaluates registration policy against a cloud provider.
type Engine struct {
	manager       domain.CloudManager
	registrations domain.RegistrationRepository
	logger        *slog.Logger
	callTimeout   time.Duration
	now           func() time.Time
}

func New(manager domain.CloudManager, registrations domain.RegistrationRepository, logger *slog.Logger, callTimeout time.Duration) *Engine {
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &Engine{
		manager:       manager,
		registrations: registrations,
		logger:        logger,
		callTimeout:   callTimeout,
		now:           time.Now,
	}
}

func (e *Engine) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.callTimeout)
}

// HasParentOrganization reports whether the project sits under an
// organization node. Fail-closed.
func (e *Engine) HasParentOrganization(ctx context.Context, projectID string) bool {
	ctx, cancel := e.bound(ctx)
	defer cancel()

	ok, err := e.manager.HasParentOrganization(ctx, projectID)
	if err != nil {
		e.logger.Debug("parent organization check failed", "project", projectID, "error", err)
		return false
	}
	return ok
}

// HasValidMembership reports whether every member on the project policy is an
// individual user or a service account. Groups and domains disqualify the
// project. Fail-closed.
func (e *Engine) HasValidMembership(ctx context.Context, projectID string) bool {
	ctx, cancel := e.bound(ctx)
	defer cancel()

	members, err := e.manager.GetProjectMembership(ctx, projectID)
	if err != nil {
		e.logger.Debug("membership check failed", "project", projectID, "error", err)
		return false
	}
	for _, m := range members {
		if m.MemberType != domain.MemberTypeUser && m.MemberType != domain.MemberTypeServiceAccount {
			e.logger.Debug("invalid member on project policy",
				"project", projectID, "member_type", m.MemberType, "member", m.MemberID)
			return false
		}
	}
	return true
}

// IsAllowedServiceAccountType reports whether the account is a compute-engine
// default or user-managed account. Fail-closed.
func (e *Engine) IsAllowedServiceAccountType(ctx context.Context, projectID, accountID string) bool {
	ctx, cancel := e.bound(ctx)
	defer cancel()

	saType, err := e.manager.GetServiceAccountType(ctx, projectID, accountID)
	if err != nil {
		e.logger.Debug("service account type check failed",
			"project", projectID, "account", accountID, "error", err)
		return false
	}
	if saType != domain.ServiceAccountComputeDefault && saType != domain.ServiceAccountUserManaged {
		e.logger.Debug("disallowed service account type",
			"project", projectID, "account", accountID, "type", saType)
		return false
	}
	return true
}

// HasExternalAccess reports whether the account holds any IAM role or any
// externally issued key. A non-success policy fetch is a hard error — this
// check must never be guessed.
func (e *Engine) HasExternalAccess(ctx context.Context, accountID string) (bool, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()

	policy, err := e.manager.GetServiceAccountPolicy(ctx, accountID)
	if err != nil {
		return false, err
	}
	if policy.Status != 200 {
		return false, domain.ErrGoogleAPI(policy.Status,
			"unable to get policy for service account %s", accountID)
	}
	// No bindings section means the account holds no roles.
	if len(policy.Bindings) > 0 {
		return true, nil
	}

	keys, err := e.manager.GetServiceAccountKeysInfo(ctx, accountID)
	if err != nil {
		return false, err
	}
	return len(keys) > 0, nil
}

// CanUserManageServiceAccount depends on provider collaborators that are not
// yet available. It surfaces that fact rather than defaulting either way.
func (e *Engine) CanUserManageServiceAccount(ctx context.Context, userID, accountID string) (bool, error) {
	return false, domain.ErrNotImplemented
}

// CertifyForRegistration aggregates the registration policy: the project must
// be organization-parented with a clean membership, the account must be an
// allowed type, and the account must hold no external access.
func (e *Engine) CertifyForRegistration(ctx context.Context, projectID, accountID string) (bool, error) {
	if !e.HasParentOrganization(ctx, projectID) {
		return false, nil
	}
	if !e.HasValidMembership(ctx, projectID) {
		return false, nil
	}
	if !e.IsAllowedServiceAccountType(ctx, projectID, accountID) {
		return false, nil
	}
	external, err := e.HasExternalAccess(ctx, accountID)
	if err != nil {
		return false, err
	}
	return !external, nil
}

// ServiceAccountsInProject enumerates the project's accounts and fetches each
// one. A non-success fetch aborts with the provider status.
func (e *Engine) ServiceAccountsInProject(ctx context.Context, projectID string) ([]domain.ServiceAccountResponse, error) {
	listCtx, cancel := e.bound(ctx)
	defer cancel()

	ids, err := e.manager.GetAllServiceAccounts(listCtx, projectID)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.ServiceAccountResponse, 0, len(ids))
	for _, id := range ids {
		getCtx, cancel := e.bound(ctx)
		resp, err := e.manager.GetServiceAccount(getCtx, projectID, id)
		cancel()
		if err != nil {
			return nil, err
		}
		if resp.Status != 200 {
			return nil, domain.ErrGoogleAPI(resp.Status,
				"unable to get service account %s in project %s", id, projectID)
		}
		accounts = append(accounts, *resp)
	}
	return accounts, nil
}

// RegisterServiceAccount certifies the account and, on success, records the
// registration until the given expiry.
func (e *Engine) RegisterServiceAccount(ctx context.Context, projectID, accountID string, ttl time.Duration) (bool, error) {
	ok, err := e.CertifyForRegistration(ctx, projectID, accountID)
	if err != nil || !ok {
		return ok, err
	}
	reg := &domain.ServiceAccountRegistration{
		CloudProjectID: projectID,
		AccountEmail:   accountID,
		ExpiresAt:      e.now().Add(ttl),
	}
	if err := e.registrations.Upsert(ctx, reg); err != nil {
		return false, err
	}
	e.logger.Info("service account registered",
		"project", projectID, "account", accountID, "expires_at", reg.ExpiresAt)
	return true, nil
}

// DeleteExpiredRegistrations drops registrations past their expiry. Cron job.
func (e *Engine) DeleteExpiredRegistrations(ctx context.Context) (int64, error) {
	n, err := e.registrations.DeleteExpired(ctx, e.now().Unix())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		e.logger.Info("expired registrations removed", "count", n)
	}
	return n, nil
}
