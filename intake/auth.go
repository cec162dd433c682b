package intake

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/linesmerrill/vehicle-intake-api/models"
	"github.com/linesmerrill/vehicle-intake-api/vehicle"
)

// DefaultSessionTTL applies when upstream does not say when its token expires
const DefaultSessionTTL = 24 * time.Hour

// ErrSessionExpired is returned for a session past its expiry
var ErrSessionExpired = errors.New("session expired")

// ValidateRegistration checks the registration form
func ValidateRegistration(req models.RegistrationRequest) error {
	switch {
	case strings.TrimSpace(req.FirstName) == "":
		return invalid("first name is required")
	case strings.TrimSpace(req.LastName) == "":
		return invalid("last name is required")
	case req.Password == "":
		return invalid("password is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return invalid("email %q is not valid", req.Email)
	}
	return vehicle.ValidateZip(req.ZipCode)
}

func validateLogin(req models.LoginRequest) error {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return invalid("email and password are required")
	}
	return nil
}

// Register signs a new user up from the registration step and moves the intake on to
// condition assessment
func (s *Service) Register(ctx context.Context, caller *models.Session, id string, req models.RegistrationRequest) (*models.Intake, *models.Session, error) {
	if err := ValidateRegistration(req); err != nil {
		return nil, nil, err
	}
	return s.authenticate(ctx, caller, id, func(ctx context.Context, in *models.Intake) (models.AuthResponse, error) {
		req.VIN = in.Vehicle.VIN
		return s.backend.Register(ctx, req)
	}, &req)
}

// Login signs an existing user in from the registration step
func (s *Service) Login(ctx context.Context, caller *models.Session, id string, req models.LoginRequest) (*models.Intake, *models.Session, error) {
	if err := validateLogin(req); err != nil {
		return nil, nil, err
	}
	return s.authenticate(ctx, caller, id, func(ctx context.Context, _ *models.Intake) (models.AuthResponse, error) {
		return s.backend.Login(ctx, req)
	}, nil)
}

func (s *Service) authenticate(
	ctx context.Context,
	caller *models.Session,
	id string,
	call func(context.Context, *models.Intake) (models.AuthResponse, error),
	form *models.RegistrationRequest,
) (*models.Intake, *models.Session, error) {
	var (
		attempt  int
		snapshot models.Intake
	)
	_, err := s.update(ctx, caller, id, func(in *models.Intake) error {
		a, err := in.Workflow.BeginAuth()
		if err != nil {
			return err
		}
		attempt, snapshot = a, *in
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	resp, callErr := call(ctx, &snapshot)
	var session *models.Session
	if callErr == nil {
		session, callErr = s.createSession(context.WithoutCancel(ctx), resp)
	}

X, "intake", id, "error", callErr)
			return in.Workflow.AuthFailed(attempt, errorPayload(callErr,
				"We could not sign you in.",
				"Check your details and try again."))
		}
		if err := in.Workflow.AuthSucceeded(attempt); err != nil {
			return err
		}
		identity := models.IdentityFromProfile(session.User)
		if form != nil {
			fillIdentity(&identity, models.IdentityFromRegistration(*form))
		}
		in.OwnerID = session.User.ID
		in.Identity = &identity
		applied = true
		return nil
	})
	if session != nil && (!applied || err != nil) {
		// the intake never saw this sign-in, so nobody gets to hold it
		if _, derr := s.sessions.DeleteOne(context.WithoutCancel(ctx), bson.M{"_id": session.ID}); derr != nil {
			zap.S().Errorw("failed to drop unused session", "session", session.ID, "error", derr)
		}
		session = nil
	}
	if err != nil {
		return nil, nil, err
	}
	return in, session, nil
}

func fillIdentity(dst *models.Identity, src models.Identity) {
	fill := func(d *string, v string) {
		if *d == "" {
			*d = v
		}
	}
	fill(&dst.FirstName, src.FirstName)
	fill(&dst.LastName, src.LastName)
	fill(&dst.Email, src.Email)
	fill(&dst.Phone, src.Phone)
	fill(&dst.ZipCode, src.ZipCode)
}

// SignIn logs in outside of an intake
func (s *Service) SignIn(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	if err := validateLogin(req); err != nil {
		return nil, err
	}
	resp, err := s.backend.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.createSession(ctx, resp)
}

// SignUp registers outside of an intake
func (s *Service) SignUp(ctx context.Context, req models.RegistrationRequest) (*models.Session, error) {
	if err := ValidateRegistration(req); err != nil {
		return nil, err
	}
	resp, err := s.backend.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.createSession(ctx, resp)
}

// SignOut removes a session. Intakes are a separate namespace and are left alone.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	_, err := s.sessions.DeleteOne(ctx, bson.M{"_id": sessionID})
	return err
}

// Session returns a live session by id
func (s *Service) Session(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.sessions.FindOne(ctx, bson.M{"_id": sessionID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.Expired(s.now()) {
		return nil, ErrSessionExpired
	}
	return session, nil
}

func (s *Service) createSession(ctx context.Context, resp models.AuthResponse) (*models.Session, error) {
	if resp.Token == "" {
		return nil, errors.New("upstream returned no token")
	}
	now := s.now().UTC()
	ttl := DefaultSessionTTL
	if resp.ExpiresIn > 0 {
		ttl = time.Duration(resp.ExpiresIn) * time.Second
	}
	session := &models.Session{
		ID:            uuid.New().String(),
		UpstreamToken: resp.Token,
		User:          resp.User,
		ExpiresAt:     now.Add(ttl),
		CreatedAt:     now,
	}
	if err := s.sessions.InsertOne(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	zap.S().Infow("session created", "session", session.ID, "user", resp.User.ID)
	return session, nil
}
