package backend

import (
	"context"
	"net/http"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

// Login calls POST /auth/login
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, "", req, &resp)
	return resp, err
}

// Register calls POST /registration/register-with-vin when the form carries a VIN and
// POST /auth/register otherwise
func (c *Client) Register(ctx context.Context, req models.RegistrationRequest) (models.AuthResponse, error) {
	path := "/auth/register"
	if req.VIN != "" {
		path = "/registration/register-with-vin"
	}
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, path, nil, "", req, &resp)
	return resp, err
}

// ForgotPassword calls POST /auth/forgot-password, which emails an OTP
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	var resp successBody
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password", nil, "", map[string]string{"email": email}, &resp); err != nil {
		return err
	}
	return resp.check()
}

// VerifyOTP calls POST /auth/verify-otp and returns the reset token
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	var resp struct {
		successBody
		ResetToken string `json:"resetToken"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/verify-otp", nil, "", map[string]string{"email": email, "otp": otp}, &resp); err != nil {
		return "", err
	}
	if err := resp.check(); err != nil {
		return "", err
	}
	if resp.ResetToken == "" {
		return "", &APIError{Status: http.StatusOK, Message: "verification returned no reset token"}
	}
	return resp.ResetToken, nil
}

// ResetPassword calls POST /auth/reset-password
func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) error {
	var resp successBody
	body := map[string]string{"resetToken": resetToken, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/reset-password", nil, "", body, &resp); err != nil {
		return err
	}
	return resp.check()
}

// ChangePassword calls POST /user/change-password
func (c *Client) ChangePassword(ctx context.Context, token, current, next string) error {
	var resp successBody
	body := map[string]string{"currentPassword": current, "newPassword": next}
	if err := c.do(ctx, http.MethodPost, "/user/change-password", nil, token, body, &resp); err != nil {
		return err
	}
	return resp.check()
}

// UpdateProfile calls PUT /user/profile
func (c *Client) UpdateProfile(ctx context.Context, token string, profile models.UserProfile) (models.UserProfile, error) {
	var resp struct {
		User models.UserProfile `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/user/profile", nil, token, profile, &resp); err != nil {
		return models.UserProfile{}, err
	}
	return resp.User, nil
}
