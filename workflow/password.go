package workflow

import (
	"fmt"
	"strings"
)

// ResetStep is a step of the forgot-password flow
type ResetStep string

// Password reset steps
const (
	ResetForgot    ResetStep = "forgot"
	ResetVerifyOTP ResetStep = "verify-otp"
	ResetPassword  ResetStep = "reset-password"
	ResetSuccess   ResetStep = "success"
)

// PasswordReset is the OTP password reset flow entered from the login form. It runs
// independently of any intake and may be exited back to login unless a call is in flight.
type PasswordReset struct {
	ID         string    `json:"id"`
	Step       ResetStep `json:"step"`
	Email      string    `json:"email"`
	Code       string    `json:"code,omitempty"`
	ResetToken string    `json:"-"`
	InFlight   bool      `json:"inFlight"`
	Error      string    `json:"error,omitempty"`
}

// NewPasswordReset returns a flow at the forgot step
func NewPasswordReset(id string) *PasswordReset {
	return &PasswordReset{ID: id, Step: ResetForgot}
}

// Begin marks a call for step as in flight
func (p *PasswordReset) Begin(step ResetStep) error {
	if p.InFlight {
		return ErrRequestInFlight
	}
	if p.Step != step {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, step, p.Step)
	}
	p.InFlight = true
	p.Error = ""
	return nil
}

// BeginVerify marks the OTP verification as in flight and keeps the entered code
func (p *PasswordReset) BeginVerify(code string) error {
	if err := p.Begin(ResetVerifyOTP); err != nil {
		return err
	}
	p.Code = code
	return nil
}

// OTPSent moves forgot -> verify-otp
func (p *PasswordReset) OTPSent(email string) error {
	if err := p.settle(ResetForgot); err != nil {
		return err
	}
	p.Email = strings.TrimSpace(strings.ToLower(email))
	p.Step = ResetVerifyOTP
	return nil
}

// OTPVerified moves verify-otp -> reset-password
func (p *PasswordReset) OTPVerified(resetToken string) error {
	if err := p.settle(ResetVerifyOTP); err != nil {
		return err
	}
	p.ResetToken = resetToken
	p.Step = ResetPassword
	return nil
}

// PasswordChanged moves reset-password -> success
func (p *PasswordReset) PasswordChanged() error {
	if err := p.settle(ResetPassword); err != nil {
		return err
	}
	p.ResetToken = ""
	p.Step = ResetSuccess
	return nil
}

// Fail ends the in-flight call with an inline error. The step and any entered OTP are kept.
func (p *PasswordReset) Fail(message string) {
	p.InFlight = false
	p.Error = message
}

// Exit returns the flow to its start so the user can go back to login
func (p *PasswordReset) Exit() error {
	if p.InFlight {
		return ErrRequestInFlight
	}
	*p = PasswordReset{ID: p.ID, Step: ResetForgot}
	return nil
}

func (p *PasswordReset) settle(step ResetStep) error {
	if !p.InFlight || p.Step != step {
		return fmt.Errorf("%w: %s result while at %s", ErrStaleResult, step, p.Step)
	}
	p.InFlight = false
	p.Error = ""
	return nil
}
