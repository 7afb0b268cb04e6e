package api

import (
	"net/http"

	"gatecheck/internal/domain"
)

type loginRequest struct {
	IDToken string `json:"id_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login exchanges an externally issued identity token for broker credentials.
// The identity's email (or subject) must match a registered account.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.identity == nil {
		h.writeJSON(w, http.StatusNotImplemented, errorResponse{
			Code:    http.StatusNotImplemented,
			Message: "external identity login is not configured",
		})
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil || req.IDToken == "" {
		h.writeBadRequest(w, "id_token is required")
		return
	}

	claims, err := h.identity.Validate(r.Context(), req.IDToken)
	if err != nil {
		h.logger.Debug("identity token rejected", "error", err)
		h.writeJSON(w, http.StatusUnauthorized, errorResponse{
			Code:    http.StatusUnauthorized,
			Message: "identity token rejected",
		})
		return
	}

	username := claims.Subject
	if claims.Email != nil {
		username = *claims.Email
	}
	info, err := h.access.GetUserInfo(r.Context(), username)
	if err != nil {
		h.writeError(w, err)
		return
	}

	audience := []string{"user"}
	if info.Role == "admin" {
		audience = append(audience, "admin")
	}

	accessToken, _, err := h.authority.Issue(info.Username, audience, h.accessTTL)
	if err != nil {
		h.writeError(w, err)
		return
	}
	refreshToken, _, err := h.authority.IssueRefresh(info.Username, audience, h.refreshTTL)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.accessTTL.Seconds()),
	})
}

// RefreshAccessToken exchanges a valid refresh token for a new access token.
func (h *Handler) RefreshAccessToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		h.writeBadRequest(w, "refresh_token is required")
		return
	}

	claims, err := h.authority.Validate(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if claims.Kind != domain.TokenKindRefresh {
		h.writeBadRequest(w, "not a refresh token")
		return
	}

	accessToken, _, err := h.authority.Issue(claims.Subject, claims.Audience, h.accessTTL)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.accessTTL.Seconds()),
	})
}

// RevokeToken durably revokes a refresh token. Revoking an expired or
// already-revoked token succeeds.
func (h *Handler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		h.writeBadRequest(w, "refresh_token is required")
		return
	}

	if err := h.authority.Revoke(r.Context(), req.RefreshToken); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}
