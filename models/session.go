package models

import "time"

// UserProfile holds the upstream user object
type UserProfile struct {
	ID        string `json:"id" bson:"id"`
	FirstName string `json:"first_name" bson:"firstName"`
	LastName  string `json:"last_name" bson:"lastName"`
	Email     string `json:"email" bson:"email"`
	Phone     string `json:"phone" bson:"phone"`
	ZipCode   string `json:"zipcode" bson:"zipCode"`
	City      string `json:"city" bson:"city"`
	State     string `json:"state" bson:"state"`
}

// Session holds the structure for the sessions collection in mongo. It is the auth
// namespace of the persisted client state and is independent of any intake.
type Session struct {
	ID            string      `json:"_id" bson:"_id"`
	UpstreamToken string      `json:"-" bson:"upstreamToken"`
	User          UserProfile `json:"user" bson:"user"`
	ExpiresAt     time.Time   `json:"expiresAt" bson:"expiresAt"`
	CreatedAt     time.Time   `json:"createdAt" bson:"createdAt"`
}

// Expired reports whether the session is past its expiry at now
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// LoginRequest is the login form
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegistrationRequest is the registration form shown during an intake
type RegistrationRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	ZipCode   string `json:"zipcode"`
	VIN       string `json:"vin,omitempty"`
}

// AuthResponse is the upstream login/register response
type AuthResponse struct {
	User      UserProfile `json:"user"`
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expires_in"`
}

// SessionResponse is what this service returns after login or registration
type SessionResponse struct {
	Token     string      `json:"token"`
	User      UserProfile `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}
