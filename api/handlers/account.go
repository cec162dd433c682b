package handlers

import (
	"context"
	"net/http"

	"github.com/linesmerrill/vehicle-intake-api/api"
	"github.com/linesmerrill/vehicle-intake-api/models"
	"github.com/linesmerrill/vehicle-intake-api/vehicle"
)

// AccountBackend is the upstream account surface
type AccountBackend interface {
	UpdateProfile(ctx context.Context, token string, profile models.UserProfile) (models.UserProfile, error)
	ChangePassword(ctx context.Context, token, current, next string) error
}

// Account proxies profile changes of the signed in user
type Account struct {
	Backend AccountBackend
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateProfileHandler updates the caller's upstream profile
func (h Account) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	session := api.SessionFrom(r.Context())
	var profile models.UserProfile
	if err := decodeBody(r, &profile); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	if profile.ZipCode != "" {
		if err := vehicle.ValidateZip(profile.ZipCode); err != nil {
			writeError(w, "failed to update profile", err)
			return
		}
	}
	profile.ID = session.User.ID

	updated, err := h.Backend.UpdateProfile(r.Context(), session.UpstreamToken, profile)
	if err != nil {
		writeError(w, "failed to update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ChangePasswordHandler changes the caller's password upstream
func (h Account) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	session := api.SessionFrom(r.Context())
	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, "failed to change password", intakeInvalid(errMissingPassword))
		return
	}
	if err := h.Backend.ChangePassword(r.Context(), session.UpstreamToken, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, "failed to change password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
