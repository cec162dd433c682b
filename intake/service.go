// Package intake runs intakes end to end. It owns one lock per intake, persists the intake
// after every transition, and calls upstream outside the lock. A result is only applied
// when the modal is still loading the attempt that issued it.
package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/linesmerrill/vehicle-intake-api/backend"
	"github.com/linesmerrill/vehicle-intake-api/databases"
	"github.com/linesmerrill/vehicle-intake-api/deduction"
	"github.com/linesmerrill/vehicle-intake-api/images"
	"github.com/linesmerrill/vehicle-intake-api/models"
	"github.com/linesmerrill/vehicle-intake-api/questionnaire"
	"github.com/linesmerrill/vehicle-intake-api/vehicle"
	"github.com/linesmerrill/vehicle-intake-api/workflow"
)

var (
	// ErrNotFound is returned for unknown intake ids
	ErrNotFound = errors.New("intake not found")
	// ErrForbidden is returned when the intake belongs to another user
	ErrForbidden = errors.New("intake belongs to another user")
	// ErrUnauthenticated is returned when an operation needs a signed in user
	ErrUnauthenticated = errors.New("sign in to continue")
	// ErrInvalidInput wraps form validation failures
	ErrInvalidInput = errors.New("invalid input")
	// ErrImageNotFound is returned when removing an image the intake does not have
	ErrImageNotFound = errors.New("image not found")
	// ErrTooManyImages is returned once an intake holds MaxImages photos
	ErrTooManyImages = errors.New("too many images")
)

// MaxImages is the photo limit per intake
const MaxImages = 12

// Backend is the upstream API surface the service calls
type Backend interface {
	DecodeVIN(ctx context.Context, vin, zip string) (models.VehicleRecord, error)
	Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error)
	Register(ctx context.Context, req models.RegistrationRequest) (models.AuthResponse, error)
	InstantCash(ctx context.Context, token string, req models.OfferRequest) (models.OfferResult, error)
	StartAuction(ctx context.Context, token, productID, scope string) (models.AuctionStart, error)
}

// Notifier tells the seller their auction started
type Notifier interface {
	AuctionStarted(ctx context.Context, who models.Identity, offer models.OfferResult, auction models.AuctionStart, questions []models.ConditionQuestion, deductions models.DeductionResult) error
}

// Options holds the dependencies of a Service
type Options struct {
	Intakes  databases.IntakeDatabase
	Sessions databases.SessionDatabase
	Backend  Backend
	Images   images.Store
	Notifier Notifier
	Engine   *deduction.Engine
	// OrphanAfter is how long an intake may stay loading before it is treated as
	// interrupted. It should exceed the upstream timeout.
	OrphanAfter time.Duration
	Now         func() time.Time
}

// Service runs intakes
type Service struct {
	intakes     databases.IntakeDatabase
	sessions    databases.SessionDatabase
	backend     Backend
	images      images.Store
	notifier    Notifier
	engine      *deduction.Engine
	orphanAfter time.Duration
	now         func() time.Time

	locks *keyedMutex
	wg    sync.WaitGroup
}

// New returns a Service
func New(o Options) *Service {
	if o.Engine == nil {
		o.Engine = deduction.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.OrphanAfter == 0 {
		o.OrphanAfter = 2 * time.Minute
	}
	return &Service{
		intakes:     o.Intakes,
		sessions:    o.Sessions,
		backend:     o.Backend,
		images:      o.Images,
		notifier:    o.Notifier,
		engine:      o.Engine,
		orphanAfter: o.OrphanAfter,
		now:         o.Now,
		locks:       newKeyedMutex(),
	}
}

// Wait blocks until background notifications finish
func (s *Service) Wait() {
	s.wg.Wait()
}

// View adds completion, missing answers and deductions to an intake
func (s *Service) View(in *models.Intake) models.IntakeView {
	d := s.engine.Compute(in.Questions)
	return models.IntakeView{
		Intake:         *in,
		Completion:     vehicle.Completion(in.Vehicle),
		Missing:        questionnaire.Missing(in.Questions),
		Finished:       in.Workflow.Terminal(),
		Deductions:     d,
		DeductionTotal: d.Total(),
	}
}

// Start creates an intake at VIN entry. caller may be nil for an anonymous visitor.
func (s *Service) Start(ctx context.Context, caller *models.Session, relistID string) (*models.Intake, error) {
	now := s.now().UTC()
	in := &models.Intake{
		ID:        uuid.New().String(),
		Workflow:  workflow.New(relistID, caller != nil),
		Questions: questionnaire.Defaults(),
		Images:    []models.Image{},
		CreatedAt: now,
	}
	if caller != nil {
		adopt(in, caller)
	}
	if err := s.save(ctx, in); err != nil {
		return nil, err
	}
	zap.S().Infow("intake started", "intake", in.ID, "relist", relistID != "", "authenticated", caller != nil)
	return in, nil
}

// Get returns an intake the caller may see
func (s *Service) Get(ctx context.Context, caller *models.Session, id string) (*models.Intake, error) {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.load(ctx, caller, id)
}

// List returns the intakes owned by the signed in caller, finished or not
func (s *Service) List(ctx context.Context, caller *models.Session) ([]models.Intake, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	intakes, err := s.intakes.Find(ctx, bson.M{"ownerId": caller.User.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list intakes: %w", err)
	}
	return intakes, nil
}

// Deductions computes the current deduction result of an intake
func (s *Service) Deductions(ctx context.Context, caller *models.Session, id string) (models.DeductionResult, error) {
	in, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.engine.Compute(in.Questions), nil
}

// update runs fn on the locked intake and saves it when fn succeeds
func (s *Service) update(ctx context.Context, caller *models.Session, id string, fn func(in *models.Intake) error) (*models.Intake, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	in, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := fn(in); err != nil {
		return nil, err
	}
	if err := s.save(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

// settle applies the result of an upstream call. It runs even when the request that issued
// the call was cancelled, and drops results whose attempt is no longer loading.
func (s *Service) settle(ctx context.Context, id string, attempt int, fn func(in *models.Intake) error) (*models.Intake, error) {
	ctx = context.WithoutCancel(ctx)
	unlock := s.locks.Lock(id)
	defer unlock()

	in, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	err = fn(in)
	if errors.Is(err, workflow.ErrStaleResult) {
		zap.S().Infow("discarding stale result", "intake", id, "attempt", attempt, "current", in.Workflow.Modal.Attempt)
		return in, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *Service) find(ctx context.Context, id string) (*models.Intake, error) {
	in, err := s.intakes.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load intake: %w", err)
	}
	return in, nil
}

func (s *Service) load(ctx context.Context, caller *models.Session, id string) (*models.Intake, error) {
	in, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.OwnerID != "" && (caller == nil || caller.User.ID != in.OwnerID) {
		return nil, ErrForbidden
	}
	if caller != nil && in.OwnerID == "" {
		adopt(in, caller)
	}
	s.recoverOrphan(in)
	return in, nil
}

func (s *Service) save(ctx context.Context, in *models.Intake) error {
	in.UpdatedAt = s.now().UTC()
	if err := s.intakes.Save(ctx, in); err != nil {
		return fmt.Errorf("failed to save intake: %w", err)
	}
	return nil
}

// adopt ties an unowned intake to a signed in caller. A workflow still at VIN entry
// skips registration from then on.
func adopt(in *models.Intake, caller *models.Session) {
	in.OwnerID = caller.User.ID
	if in.Identity == nil {
		id := models.IdentityFromProfile(caller.User)
		in.Identity = &id
	}
	if in.Workflow.Phase == workflow.PhaseVINEntry || in.Workflow.Phase == workflow.PhaseFetching {
		in.Workflow.Authenticated = true
	}
}

// recoverOrphan fails a modal left loading by a request that never settled, for example
// when the process restarted mid call
func (s *Service) recoverOrphan(in *models.Intake) {
	w := &in.Workflow
	if w.Modal.Phase != workflow.ModalLoading || s.now().Sub(in.UpdatedAt) < s.orphanAfter {
		return
	}
	payload := workflow.ErrorPayload{
		Message:    "The previous request did not finish.",
		Suggestion: "Please try again.",
	}
	attempt := w.Modal.Attempt
	var err error
	switch w.Phase {
	case workflow.PhaseFetching:
		err = w.DecodeFailed(attempt, payload)
	case workflow.PhaseRegistration:
		err = w.AuthFailed(attempt, payload)
	case workflow.PhaseSubmitting:
		err = w.SubmitFailed(attempt, payload)
	}
	zap.S().Warnw("recovered interrupted request", "intake", in.ID, "phase", in.Workflow.Phase, "error", err)
}

// errorPayload turns an upstream failure into the modal error content
func errorPayload(err error, message, suggestion string) workflow.ErrorPayload {
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			message = apiErr.Message
		}
		if apiErr.Suggestion != "" {
			suggestion = apiErr.Suggestion
		}
	case errors.Is(err, context.DeadlineExceeded):
		message = "The request timed out."
	}
	return workflow.ErrorPayload{Message: message, Suggestion: suggestion}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
