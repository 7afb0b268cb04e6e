// Package cloud implements the cloud-provider contract against the Google
// Cloud resource manager and IAM APIs.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	cloudresourcemanager "google.golang.org/api/cloudresourcemanager/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iam/v1"
	"google.golang.org/api/option"

	"gatecheck/internal/domain"
)

const computeDefaultSuffix = "-compute@developer.gserviceaccount.com"

// GoogleManager talks to the real Google APIs. It is read-only: nothing here
// mutates provider state.
type GoogleManager struct {
	crm    *cloudresourcemanager.Service
	iam    *iam.Service
	logger *slog.Logger
}

// NewGoogleManager builds clients from the given options (credentials file,
// scopes, or an injected HTTP client in tests).
func NewGoogleManager(ctx context.Context, logger *slog.Logger, opts ...option.ClientOption) (*GoogleManager, error) {
	crmSvc, err := cloudresourcemanager.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("resource manager client: %w", err)
	}
	iamSvc, err := iam.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("iam client: %w", err)
	}
	return &GoogleManager{crm: crmSvc, iam: iamSvc, logger: logger}, nil
}

func (g *GoogleManager) HasParentOrganization(ctx context.Context, projectID string) (bool, error) {
	ancestry, err := g.crm.Projects.GetAncestry(projectID, &cloudresourcemanager.GetAncestryRequest{}).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("get ancestry for %s: %w", projectID, err)
	}
	for _, ancestor := range ancestry.Ancestor {
		if ancestor.ResourceId != nil && ancestor.ResourceId.Type == "organization" {
			return true, nil
		}
	}
	return false, nil
}

func (g *GoogleManager) GetProjectMembership(ctx context.Context, projectID string) ([]domain.PolicyMember, error) {
	policy, err := g.crm.Projects.GetIamPolicy(projectID, &cloudresourcemanager.GetIamPolicyRequest{}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get iam policy for %s: %w", projectID, err)
	}

	seen := make(map[string]bool)
	var members []domain.PolicyMember
	for _, binding := range policy.Bindings {
		for _, raw := range binding.Members {
			if seen[raw] {
				continue
			}
			seen[raw] = true
			members = append(members, parseMember(raw))
		}
	}
	return members, nil
}

// GetServiceAccountType classifies by email shape: the project's compute
// default account or an account homed in the project count as registrable.
func (g *GoogleManager) GetServiceAccountType(ctx context.Context, projectID, accountID string) (string, error) {
	resp, err := g.GetServiceAccount(ctx, projectID, accountID)
	if err != nil {
		return "", err
	}
	if resp.Status != http.StatusOK {
		return "", domain.ErrGoogleAPI(resp.Status, "unable to get service account %s", accountID)
	}
	switch {
	case strings.HasSuffix(resp.Email, computeDefaultSuffix):
		return domain.ServiceAccountComputeDefault, nil
	case strings.HasSuffix(resp.Email, "@"+projectID+".iam.gserviceaccount.com"):
		return domain.ServiceAccountUserManaged, nil
	default:
		return domain.ServiceAccountUnknown, nil
	}
}

func (g *GoogleManager) GetAllServiceAccounts(ctx context.Context, projectID string) ([]string, error) {
	var emails []string
	call := g.iam.Projects.ServiceAccounts.List("projects/" + projectID)
	err := call.Pages(ctx, func(resp *iam.ListServiceAccountsResponse) error {
		for _, account := range resp.Accounts {
			emails = append(emails, account.Email)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list service accounts in %s: %w", projectID, err)
	}
	return emails, nil
}

func (g *GoogleManager) GetServiceAccount(ctx context.Context, projectID, accountID string) (*domain.ServiceAccountResponse, error) {
	name := fmt.Sprintf("projects/%s/serviceAccounts/%s", projectID, accountID)
	account, err := g.iam.Projects.ServiceAccounts.Get(name).Context(ctx).Do()
	if err != nil {
		if status, ok := apiStatus(err); ok {
			return &domain.ServiceAccountResponse{Status: status}, nil
		}
		return nil, fmt.Errorf("get service account %s: %w", accountID, err)
	}
	return &domain.ServiceAccountResponse{
		Status:      http.StatusOK,
		UniqueID:    account.UniqueId,
		Email:       account.Email,
		DisplayName: account.DisplayName,
	}, nil
}

func (g *GoogleManager) GetServiceAccountPolicy(ctx context.Context, accountID string) (*domain.PolicyResponse, error) {
	resource := "projects/-/serviceAccounts/" + accountID
	policy, err := g.iam.Projects.ServiceAccounts.GetIamPolicy(resource).Context(ctx).Do()
	if err != nil {
		if status, ok := apiStatus(err); ok {
			return &domain.PolicyResponse{Status: status}, nil
		}
		return nil, fmt.Errorf("get policy for service account %s: %w", accountID, err)
	}

	bindings := make([]domain.PolicyBinding, len(policy.Bindings))
	for i, b := range policy.Bindings {
		members := make([]domain.PolicyMember, len(b.Members))
		for j, raw := range b.Members {
			members[j] = parseMember(raw)
		}
		bindings[i] = domain.PolicyBinding{Role: b.Role, Members: members}
	}
	return &domain.PolicyResponse{Status: http.StatusOK, Bindings: bindings}, nil
}

// GetServiceAccountKeysInfo lists only USER_MANAGED keys; system-managed key
// material never leaves the provider and does not count as external access.
func (g *GoogleManager) GetServiceAccountKeysInfo(ctx context.Context, accountID string) ([]domain.ServiceAccountKey, error) {
	name := "projects/-/serviceAccounts/" + accountID
	resp, err := g.iam.Projects.ServiceAccounts.Keys.List(name).KeyTypes("USER_MANAGED").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list keys for service account %s: %w", accountID, err)
	}
	keys := make([]domain.ServiceAccountKey, len(resp.Keys))
	for i, k := range resp.Keys {
		keys[i] = domain.ServiceAccountKey{
			Name:       k.Name,
			ValidAfter: k.ValidAfterTime,
			ValidUntil: k.ValidBeforeTime,
		}
	}
	return keys, nil
}

// apiStatus extracts the provider HTTP status when the error carries one.
func apiStatus(err error) (int, bool) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code, true
	}
	return 0, false
}

// parseMember splits a policy member like "user:alice@example.org" into its
// type and identifier. Malformed entries keep the raw string as the ID with
// an empty type, which downstream checks treat as invalid.
func parseMember(raw string) domain.PolicyMember {
	memberType, memberID, found := strings.Cut(raw, ":")
	if !found {
		return domain.PolicyMember{MemberID: raw}
	}
	return domain.PolicyMember{MemberType: memberType, MemberID: memberID}
}
