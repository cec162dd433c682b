package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/vehicle-intake-api/backend"
	"github.com/linesmerrill/vehicle-intake-api/workflow"
)

var (
	errFlowNotFound    = errors.New("password reset flow not found")
	errMissingPassword = errors.New("password is required")
)

// PasswordBackend is the upstream forgot-password surface
type PasswordBackend interface {
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) (string, error)
	ResetPassword(ctx context.Context, resetToken, password string) error
}

type resetEntry struct {
	flow    *workflow.PasswordReset
	created time.Time
}

// ResetFlows holds the password reset flows in progress. They live in memory only and
// are dropped by Purge.
type ResetFlows struct {
	mu    sync.Mutex
	flows map[string]*resetEntry
	now   func() time.Time
}

// NewResetFlows returns an empty store
func NewResetFlows() *ResetFlows {
	return &ResetFlows{flows: make(map[string]*resetEntry), now: time.Now}
}

// Purge drops flows created more than maxAge ago and returns how many went
func (f *ResetFlows) Purge(maxAge time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := f.now().Add(-maxAge)
	n := 0
	for id, e := range f.flows {
		if e.created.Before(cutoff) && !e.flow.InFlight {
			delete(f.flows, id)
			n++
		}
	}
	return n
}

func (f *ResetFlows) create() *workflow.PasswordReset {
	f.mu.Lock()
	defer f.mu.Unlock()
	flow := workflow.NewPasswordReset(uuid.New().String())
	f.flows[flow.ID] = &resetEntry{flow: flow, created: f.now()}
	return flow
}

// update runs fn on the flow under the store lock and returns a copy of the result
func (f *ResetFlows) update(id string, fn func(p *workflow.PasswordReset) error) (workflow.PasswordReset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.flows[id]
	if !ok {
		return workflow.PasswordReset{}, errFlowNotFound
	}
	if err := fn(e.flow); err != nil {
		return *e.flow, err
	}
	return *e.flow, nil
}

// Password runs the forgot-password flow
type Password struct {
	Backend PasswordBackend
	Flows   *ResetFlows
}

type forgotRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Code string `json:"code"`
}

type resetRequest struct {
	Password string `json:"password"`
}

// ForgotHandler starts a flow and asks upstream to send the one time code
func (h Password) ForgotHandler(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		writeError(w, "failed to start password reset", intakeInvalid(errors.New("email required")))
		return
	}

	flow := h.Flows.create()
	h.run(w, r, flow.ID, func(p *workflow.PasswordReset) error {
		return p.Begin(workflow.ResetForgot)
	}, func(ctx context.Context, _ workflow.PasswordReset) (func(p *workflow.PasswordReset) error, error) {
		err := h.Backend.ForgotPassword(ctx, email)
		return func(p *workflow.PasswordReset) error { return p.OTPSent(email) }, err
	})
}

// VerifyHandler checks the one time code
func (h Password) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		writeError(w, "failed to verify code", intakeInvalid(errors.New("code required")))
		return
	}

	h.run(w, r, mux.Vars(r)["flow_id"], func(p *workflow.PasswordReset) error {
		return p.BeginVerify(code)
	}, func(ctx context.Context, p workflow.PasswordReset) (func(p *workflow.PasswordReset) error, error) {
		token, err := h.Backend.VerifyOTP(ctx, p.Email, code)
		return func(p *workflow.PasswordReset) error { return p.OTPVerified(token) }, err
	})
}

// ResetHandler sets the new password
func (h Password) ResetHandler(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	if req.Password == "" {
		writeError(w, "failed to reset password", intakeInvalid(errMissingPassword))
		return
	}

	h.run(w, r, mux.Vars(r)["flow_id"], func(p *workflow.PasswordReset) error {
		return p.Begin(workflow.ResetPassword)
	}, func(ctx context.Context, p workflow.PasswordReset) (func(p *workflow.PasswordReset) error, error) {
		err := h.Backend.ResetPassword(ctx, p.ResetToken, req.Password)
		return func(p *workflow.PasswordReset) error { return p.PasswordChanged() }, err
	})
}

// CancelHandler returns the flow to its start
func (h Password) CancelHandler(w http.ResponseWriter, r *http.Request) {
	flow, err := h.Flows.update(mux.Vars(r)["flow_id"], func(p *workflow.PasswordReset) error {
		return p.Exit()
	})
	if err != nil {
		writeError(w, "failed to cancel password reset", err)
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

// run begins a step, makes the upstream call outside the store lock and settles the step.
// An upstream failure is reported inline on the flow and the step stays where it was.
func (h Password) run(
	w http.ResponseWriter,
	r *http.Request,
	id string,
	begin func(p *workflow.PasswordReset) error,
	call func(ctx context.Context, p workflow.PasswordReset) (func(p *workflow.PasswordReset) error, error),
) {
	snapshot, err := h.Flows.update(id, begin)
	if err != nil {
		writeError(w, "failed to continue password reset", err)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	settle, callErr := call(ctx, snapshot)

	flow, err := h.Flows.update(id, func(p *workflow.PasswordReset) error {
		if callErr != nil {
			zap.S().Infow("password reset step failed", "flow", id, "step", p.Step, "error", callErr)
			p.Fail(resetMessage(callErr))
			return nil
		}
		return settle(p)
	})
	if err != nil {
		writeError(w, "failed to continue password reset", err)
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

func resetMessage(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Something went wrong. Please try again."
}
