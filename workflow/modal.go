package workflow

import (
	"errors"
	"fmt"
)

// ModalPhase is the sub-state of the dialog that owns the current request
type ModalPhase string

// Modal phases. Within one attempt they only move form -> loading -> success|error.
const (
	ModalForm    ModalPhase = "form"
	ModalLoading ModalPhase = "loading"
	ModalSuccess ModalPhase = "success"
	ModalError   ModalPhase = "error"
)

var (
	// ErrInvalidTransition is returned when an event does not apply to the current state
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrRequestInFlight is returned for any event other than the result while loading
	ErrRequestInFlight = errors.New("request in flight")
	// ErrStaleResult is returned when a result arrives for an attempt that is no longer loading
	ErrStaleResult = errors.New("stale result")
)

// ErrorPayload is shown by a modal in the error phase
type ErrorPayload struct {
	Message              string `json:"message" bson:"message"`
	Suggestion           string `json:"suggestion,omitempty" bson:"suggestion,omitempty"`
	RedirectAfterSeconds int    `json:"redirectAfterSeconds,omitempty" bson:"redirectAfterSeconds,omitempty"`
}

// Modal tracks one dialog. Attempt grows with every request so a late result can be matched
// against the attempt that issued it.
type Modal struct {
	Phase   ModalPhase    `json:"phase" bson:"phase"`
	Attempt int           `json:"attempt" bson:"attempt"`
	Error   *ErrorPayload `json:"error,omitempty" bson:"error,omitempty"`
}

// Closable reports whether the dialog may be dismissed. It never is while loading.
func (m Modal) Closable() bool {
	return m.Phase != ModalLoading
}

// Begin moves form -> loading and returns the attempt token of the new request
func (m *Modal) Begin() (int, error) {
	switch m.Phase {
	case ModalLoading:
		return 0, ErrRequestInFlight
	case ModalForm:
	default:
		return 0, fmt.Errorf("%w: begin from %s", ErrInvalidTransition, m.Phase)
	}
	m.Attempt++
	m.Phase = ModalLoading
	m.Error = nil
	return m.Attempt, nil
}

// Succeed moves loading -> success for the given attempt
func (m *Modal) Succeed(attempt int) error {
	if err := m.checkAttempt(attempt); err != nil {
		return err
	}
	m.Phase = ModalSuccess
	return nil
}

// Fail moves loading -> error for the given attempt
func (m *Modal) Fail(attempt int, payload ErrorPayload) error {
	if err := m.checkAttempt(attempt); err != nil {
		return err
	}
	m.Phase = ModalError
	m.Error = &payload
	return nil
}

// Retry moves error -> form
func (m *Modal) Retry() error {
	switch m.Phase {
	case ModalLoading:
		return ErrRequestInFlight
	case ModalError:
		m.Phase = ModalForm
		m.Error = nil
		return nil
	}
	return fmt.Errorf("%w: retry from %s", ErrInvalidTransition, m.Phase)
}

func (m Modal) checkAttempt(attempt int) error {
	if m.Phase != ModalLoading || m.Attempt != attempt {
		return fmt.Errorf("%w: attempt %d, modal %s at attempt %d", ErrStaleResult, attempt, m.Phase, m.Attempt)
	}
	return nil
}
