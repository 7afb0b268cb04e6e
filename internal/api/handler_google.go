package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type certifyRequest struct {
	ProjectID string `json:"project_id"`
	AccountID string `json:"account_id"`
}

type certifyResponse struct {
	ProjectID string `json:"project_id"`
	AccountID string `json:"account_id"`
	Certified bool   `json:"certified"`
}

// CertifyServiceAccount runs the registration policy checks without
// recording anything.
func (h *Handler) CertifyServiceAccount(w http.ResponseWriter, r *http.Request) {
	var req certifyRequest
	if err := decodeJSON(r, &req); err != nil || req.ProjectID == "" || req.AccountID == "" {
		h.writeBadRequest(w, "project_id and account_id are required")
		return
	}
	ok, err := h.broker.CertifyForRegistration(r.Context(), req.ProjectID, req.AccountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, certifyResponse{
		ProjectID: req.ProjectID,
		AccountID: req.AccountID,
		Certified: ok,
	})
}

// RegisterServiceAccount certifies the account and records the registration.
func (h *Handler) RegisterServiceAccount(w http.ResponseWriter, r *http.Request) {
	var req certifyRequest
	if err := decodeJSON(r, &req); err != nil || req.ProjectID == "" || req.AccountID == "" {
		h.writeBadRequest(w, "project_id and account_id are required")
		return
	}
	ok, err := h.policy.RegisterServiceAccount(r.Context(), req.ProjectID, req.AccountID, h.registrationTTL)
	if err != nil {
		h.writeError(w, err)
		return
	}
	status := http.StatusOK
	if !ok {
		status = http.StatusForbidden
	}
	h.writeJSON(w, status, certifyResponse{
		ProjectID: req.ProjectID,
		AccountID: req.AccountID,
		Certified: ok,
	})
}

// ListServiceAccounts enumerates the cloud project's service accounts.
func (h *Handler) ListServiceAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.policy.ServiceAccountsInProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]map[string]string, len(accounts))
	for i, a := range accounts {
		out[i] = map[string]string{
			"email":        a.Email,
			"unique_id":    a.UniqueID,
			"display_name": a.DisplayName,
		}
	}
	h.writeJSON(w, http.StatusOK, out)
}
