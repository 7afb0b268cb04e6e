package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatecheck/internal/domain"
)

type createUserRequest struct {
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
	Email    string `json:"email,omitempty"`
}

type updateUserRequest struct {
	Role        string `json:"role,omitempty"`
	Email       string `json:"email,omitempty"`
	NewUsername string `json:"new_username,omitempty"`
}

type userResponse struct {
	Username string  `json:"username"`
	Role     string  `json:"role"`
	Email    *string `json:"email,omitempty"`
}

type groupsRequest struct {
	Groups []string `json:"groups"`
}

type grantAccessRequest struct {
	Project   string `json:"project"`
	Privilege string `json:"privilege"`
}

type createGroupRequest struct {
	Name string `json:"name"`
}

type createProjectRequest struct {
	Name   string `json:"name"`
	AuthID string `json:"auth_id"`
}

type groupProjectRequest struct {
	Project   string `json:"project"`
	Privilege string `json:"privilege"`
}

func userFromDomain(u *domain.User) userResponse {
	return userResponse{Username: u.Username, Role: u.Role(), Email: u.Email}
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}
	user, err := h.access.CreateUser(r.Context(), &domain.CreateUserRequest{
		Username: req.Username,
		Role:     req.Role,
		Email:    req.Email,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, userFromDomain(user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.access.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = userFromDomain(&users[i])
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.access.GetUserInfo(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, userInfoFromDomain(info))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}
	user, err := h.access.UpdateUser(r.Context(), &domain.UpdateUserRequest{
		Username:    chi.URLParam(r, "username"),
		Role:        req.Role,
		Email:       req.Email,
		NewUsername: req.NewUsername,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, userFromDomain(user))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.access.DeleteUser(r.Context(), chi.URLParam(r, "username")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) AddUserToGroups(w http.ResponseWriter, r *http.Request) {
	var req groupsRequest
	if err := decodeJSON(r, &req); err != nil || len(req.Groups) == 0 {
		h.writeBadRequest(w, "groups list is required")
		return
	}
	if err := h.access.AddUserToGroups(r.Context(), chi.URLParam(r, "username"), req.Groups); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) RemoveUserFromGroups(w http.ResponseWriter, r *http.Request) {
	var req groupsRequest
	if err := decodeJSON(r, &req); err != nil || len(req.Groups) == 0 {
		h.writeBadRequest(w, "groups list is required")
		return
	}
	if err := h.access.RemoveUserFromGroups(r.Context(), chi.URLParam(r, "username"), req.Groups); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) GrantProjectAccess(w http.ResponseWriter, r *http.Request) {
	var req grantAccessRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}
	if err := h.access.GrantProjectAccess(r.Context(), chi.URLParam(r, "username"), req.Project, req.Privilege); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}
	group, err := h.access.CreateGroup(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"name": group.Name})
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.access.DeleteGroup(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) ListGroupMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.access.AllMembers(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if members == nil {
		members = []string{}
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{"members": members})
}

func (h *Handler) AddProjectToGroup(w http.ResponseWriter, r *http.Request) {
	var req groupProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}
	if req.Privilege == "" {
		req.Privilege = domain.PrivilegeRead
	}
	if err := h.access.AddProjectToGroup(r.Context(), chi.URLParam(r, "name"), req.Project, req.Privilege); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}
	project, err := h.access.CreateProject(r.Context(), req.Name, req.AuthID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{
		"name":    project.Name,
		"auth_id": project.AuthID,
	})
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.access.ListProjects(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]map[string]string, len(projects))
	for i, p := range projects {
		out[i] = map[string]string{"name": p.Name, "auth_id": p.AuthID}
	}
	h.writeJSON(w, http.StatusOK, out)
}
