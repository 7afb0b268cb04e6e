package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatecheck/internal/domain"
)

type userInfoResponse struct {
	Username      string              `json:"username"`
	Role          string              `json:"role"`
	Email         *string             `json:"email,omitempty"`
	Groups        []string            `json:"groups"`
	ProjectAccess map[string][]string `json:"project_access"`
}

type authorizeResponse struct {
	Username   string `json:"username"`
	Project    string `json:"project"`
	Authorized bool   `json:"authorized"`
}

func userInfoFromDomain(info *domain.UserInfo) userInfoResponse {
	groups := info.Groups
	if groups == nil {
		groups = []string{}
	}
	access := info.ProjectAccess
	if access == nil {
		access = map[string][]string{}
	}
	return userInfoResponse{
		Username:      info.Username,
		Role:          info.Role,
		Email:         info.Email,
		Groups:        groups,
		ProjectAccess: access,
	}
}

// CurrentUserInfo returns the authenticated caller's own view.
func (h *Handler) CurrentUserInfo(w http.ResponseWriter, r *http.Request) {
	identity, _ := domain.IdentityFromContext(r.Context())
	info, err := h.access.GetUserInfo(r.Context(), identity.Username)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, userInfoFromDomain(info))
}

// AuthorizeSelf reports whether the caller has effective access to the project.
func (h *Handler) AuthorizeSelf(w http.ResponseWriter, r *http.Request) {
	identity, _ := domain.IdentityFromContext(r.Context())
	h.authorize(w, r, identity.Username, chi.URLParam(r, "authID"))
}

// AuthorizeUser reports whether the named user has effective access to the
// project given by the "project" query parameter. Admin only.
func (h *Handler) AuthorizeUser(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		h.writeBadRequest(w, "project query parameter is required")
		return
	}
	h.authorize(w, r, chi.URLParam(r, "username"), project)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, username, project string) {
	ok, err := h.broker.Authorize(r.Context(), username, project)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, authorizeResponse{
		Username:   username,
		Project:    project,
		Authorized: ok,
	})
}
