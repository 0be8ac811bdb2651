package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
	"github.com/sindhuth/donation-ocr-app/internal/middleware"
)

type claimRequest struct {
	Role   string `json:"role"`
	Secret string `json:"secret"`
}

// SessionGet tells the browser which screen to show.
func (a *App) SessionGet(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionIDFromContext(r.Context())
	role, err := a.Roles.Resolve(r.Context(), sid)
	if err != nil {
		a.fail(w, r, err, "failed to resolve role")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"session_id":     sid,
		"role":           role,
		"login_required": !a.Roles.Policy().AutoClaim(),
	})
}

// SessionClaim lets a session log in to the admin or editor slot.
func (a *App) SessionClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "role must be admin or editor")
		return
	}
	sid := middleware.SessionIDFromContext(r.Context())
	got, err := a.Roles.Claim(r.Context(), sid, role, req.Secret)
	if err != nil {
		a.fail(w, r, err, "failed to claim role")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"session_id": sid, "role": got})
}
