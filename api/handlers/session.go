package handlers

import (
	"net/http"

	"github.com/linesmerrill/vehicle-intake-api/api"
	"github.com/linesmerrill/vehicle-intake-api/intake"
	"github.com/linesmerrill/vehicle-intake-api/models"
)

// Session handles login, registration and logout outside of an intake
type Session struct {
	Service *intake.Service
	Tokens  *api.Auth
}

// LoginHandler signs a user in and returns a session token
func (h Session) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	session, err := h.Service.SignIn(r.Context(), req)
	h.respond(w, "failed to login", session, err)
}

// RegisterHandler creates an account and returns a session token
func (h Session) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	session, err := h.Service.SignUp(r.Context(), req)
	h.respond(w, "failed to register", session, err)
}

// LogoutHandler deletes the caller's session. Their intakes are kept.
func (h Session) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session := api.SessionFrom(r.Context())
	if session == nil {
		writeError(w, "failed to logout", intake.ErrUnauthenticated)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := h.Service.SignOut(ctx, session.ID); err != nil {
		writeError(w, "failed to logout", err)
		return
	}
	h.Tokens.Revoke(r)
	w.WriteHeader(http.StatusNoContent)
}

func (h Session) respond(w http.ResponseWriter, message string, session *models.Session, err error) {
	if err != nil {
		writeError(w, message, err)
		return
	}
	resp, err := sessionResponse(h.Tokens, session)
	if err != nil {
		writeError(w, "failed to issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func sessionResponse(tokens *api.Auth, session *models.Session) (models.SessionResponse, error) {
	token, err := tokens.Issue(session)
	if err != nil {
		return models.SessionResponse{}, err
	}
	return models.SessionResponse{Token: token, User: session.User, ExpiresAt: session.ExpiresAt}, nil
}
