package handler

import (
	"encoding/json"
	"net/http"

	"casahogar-storefront-api/internal/auth"
	"casahogar-storefront-api/internal/model"
	"casahogar-storefront-api/pkg/apierror"
	"casahogar-storefront-api/pkg/response"
)

// AuthHandler drives the in-process identity provider. It exists so the
// identity-change feed can be exercised end to end; real credential checks
// belong to the hosted auth collaborator.
type AuthHandler struct {
	provider *auth.StaticProvider
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(provider *auth.StaticProvider) *AuthHandler {
	return &AuthHandler{provider: provider}
}

// SignIn handles POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID string `json:"uid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.UID == "" || model.Identity(req.UID).IsGuest() {
		response.Error(w, apierror.BadRequest("uid is required"))
		return
	}

	h.provider.SignIn(model.Identity(req.UID))
	response.OK(w, map[string]interface{}{"identity": h.provider.Current()})
}

// SignOut handles POST /api/v1/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.provider.SignOut()
	response.OK(w, map[string]interface{}{"identity": h.provider.Current()})
}
