// Package api provides the HTTP handlers for the access broker REST API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"gatecheck/internal/middleware"
	"gatecheck/internal/service/access"
	"gatecheck/internal/service/broker"
	"gatecheck/internal/service/cloudpolicy"
	"gatecheck/internal/service/token"
)

// Handler serves the REST API on top of the broker services.
type Handler struct {
	broker          *broker.Broker
	access          *access.Service
	authority       *token.Authority
	policy          *cloudpolicy.Engine
	identity        middleware.IdentityValidator // nil when OIDC login is disabled
	accessTTL       time.Duration
	refreshTTL      time.Duration
	registrationTTL time.Duration
	logger          *slog.Logger
}

func NewHandler(
	brokerSvc *broker.Broker,
	accessSvc *access.Service,
	authority *token.Authority,
	policy *cloudpolicy.Engine,
	identity middleware.IdentityValidator,
	accessTTL, refreshTTL, registrationTTL time.Duration,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		broker:          brokerSvc,
		access:          accessSvc,
		authority:       authority,
		policy:          policy,
		identity:        identity,
		accessTTL:       accessTTL,
		refreshTTL:      refreshTTL,
		registrationTTL: registrationTTL,
		logger:          logger,
	}
}

// --- helpers ---

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			h.logger.Error("encode response", "error", err)
		}
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := httpStatusFromDomainError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
		h.writeJSON(w, status, errorResponse{Code: status, Message: "internal server error"})
		return
	}
	h.writeJSON(w, status, errorResponse{Code: status, Message: err.Error()})
}

func (h *Handler) writeBadRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, errorResponse{Code: http.StatusBadRequest, Message: msg})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close() //nolint:errcheck
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
