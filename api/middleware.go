package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

// SessionLoader returns a live session by id. It fails once the session expired or was
// deleted.
type SessionLoader interface {
	Session(ctx context.Context, id string) (*models.Session, error)
}

// Claims are carried by the session tokens this service issues
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Auth issues session tokens and guards routes with them
type Auth struct {
	secret        []byte
	sessions      SessionLoader
	authenticator auth.Authenticator
	strategy      auth.Strategy
}

// NewAuth sets up go-guardian with a cached bearer strategy that accepts tokens signed with
// secret
func NewAuth(secret string, sessions SessionLoader) *Auth {
	a := &Auth{secret: []byte(secret), sessions: sessions}
	cache := store.NewFIFO(context.Background(), time.Hour)
	a.strategy = bearer.New(a.validateToken, cache)
	a.authenticator = auth.New()
	a.authenticator.EnableStrategy(bearer.CachedStrategyKey, a.strategy)
	return a
}

// Issue returns a signed token for session that expires with it
func (a *Auth) Issue(session *models.Session) (string, error) {
	claims := Claims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.User.ID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its claims
func (a *Auth) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.SessionID == "" {
		return nil, errors.New("token carries no session")
	}
	return claims, nil
}

func (a *Auth) validateToken(_ context.Context, _ *http.Request, token string) (auth.Info, error) {
	claims, err := a.Parse(token)
	if err != nil {
		return nil, err
	}
	return auth.NewDefaultUser(claims.Subject, claims.SessionID, nil, nil), nil
}

// Middleware rejects requests without a live session and stores the session on the
// request context
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OptionalMiddleware lets anonymous requests through. A request that does carry a token
// must carry a valid one.
func (a *Auth) OptionalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		r, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Revoke drops the request token from the strategy cache
func (a *Auth) Revoke(r *http.Request) {
	if token := bearerToken(r); token != "" {
		auth.Revoke(a.strategy, token, r)
	}
}

func (a *Auth) authenticate(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	info, err := a.authenticator.Authenticate(r)
	if err != nil {
		unauthorized(w, r, err)
		return r, false
	}
	session, err := a.sessions.Session(r.Context(), info.ID())
	if err != nil {
		a.Revoke(r)
		unauthorized(w, r, err)
		return r, false
	}
	zap.S().Debugf("User %s Authenticated", info.UserName())
	return r.WithContext(WithSession(r.Context(), session)), true
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	zap.S().Infow("unauthorized",
		"url", r.URL,
		"requestId", RequestIDFrom(r.Context()),
		"error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "unauthorized"}`))
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
