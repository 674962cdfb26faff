package httpd

import (
	"net/http"

	"github.com/cumulusid/adaptive/pkg/httpx"
)

type logoutRequest struct {
	AccessToken string `json:"accessToken"`
}

// handleLogout revokes the supplied access token on the tenant.
func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	var body logoutRequest
	if err := decodeBody(req, &body); err != nil {
		writeInvalidBody(w)
		return
	}
	if body.AccessToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "accessToken is required")
		return
	}

	if err := r.sdk.Logout(req.Context(), body.AccessToken); err != nil {
		writeFlowError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
