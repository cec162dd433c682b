package workflow

import (
	"errors"
	"fmt"
)

// Phase is a step of the intake flow
type Phase string

// Intake phases
const (
	PhaseVINEntry            Phase = "vin-entry"
	PhaseFetching            Phase = "fetching"
	PhaseRegistration        Phase = "registration"
	PhaseConditionAssessment Phase = "condition-assessment"
	PhaseAuctionSelection    Phase = "auction-selection"
	PhaseSubmitting          Phase = "submitting"
	PhaseSuccess             Phase = "success"
	PhaseError               Phase = "error"
)

// SubmissionRedirectSeconds is how long a failed submission stays on screen before the
// client sends the user somewhere safe.
const SubmissionRedirectSeconds = 10

var (
	// ErrCancelNotAllowed is returned when the flow cannot be abandoned from its current phase
	ErrCancelNotAllowed = errors.New("cancel not allowed")
	// ErrIncomplete is returned when a step guard is not satisfied
	ErrIncomplete = errors.New("step incomplete")
)

// Workflow is the state of one intake. Methods are the only way to change it; each returns
// an error when the event does not apply and leaves the state untouched in that case.
type Workflow struct {
	Phase         Phase  `json:"phase" bson:"phase"`
	RetryPhase    Phase  `json:"retryPhase,omitempty" bson:"retryPhase,omitempty"`
	Modal         Modal  `json:"modal" bson:"modal"`
	Authenticated bool   `json:"authenticated" bson:"authenticated"`
	RelistID      string `json:"relistId,omitempty" bson:"relistId,omitempty"`
}

// New returns a workflow at VIN entry. relistID is empty for a new listing.
func New(relistID string, authenticated bool) Workflow {
	return Workflow{
		Phase:         PhaseVINEntry,
		Modal:         Modal{Phase: ModalForm},
		Authenticated: authenticated,
		RelistID:      relistID,
	}
}

// Terminal reports whether the workflow finished successfully
func (w Workflow) Terminal() bool {
	return w.Phase == PhaseSuccess
}

// SubmitVIN starts the decode request: vin-entry -> fetching
func (w *Workflow) SubmitVIN() (int, error) {
	if err := w.expect(PhaseVINEntry, "submit vin"); err != nil {
		return 0, err
	}
	attempt, err := w.Modal.Begin()
	if err != nil {
		return 0, err
	}
	w.Phase = PhaseFetching
	return attempt, nil
}

// DecodeSucceeded moves fetching -> registration, or straight to condition-assessment for
// an authenticated user
func (w *Workflow) DecodeSucceeded(attempt int) error {
	if err := w.result(PhaseFetching, "decode success"); err != nil {
		return err
	}
	if err := w.Modal.Succeed(attempt); err != nil {
		return err
	}
	if w.Authenticated {
		w.enter(PhaseConditionAssessment)
	} else {
		w.enter(PhaseRegistration)
	}
	return nil
}

// DecodeFailed moves fetching -> error; retry returns to vin-entry
func (w *Workflow) DecodeFailed(attempt int, payload ErrorPayload) error {
	if err := w.result(PhaseFetching, "decode failure"); err != nil {
		return err
	}
	return w.fail(attempt, payload, PhaseVINEntry)
}

// BeginAuth starts a register or login request from the registration step
func (w *Workflow) BeginAuth() (int, error) {
	if err := w.expect(PhaseRegistration, "authenticate"); err != nil {
		return 0, err
	}
	return w.Modal.Begin()
}

// AuthSucceeded moves registration -> condition-assessment
func (w *Workflow) AuthSucceeded(attempt int) error {
	if err := w.result(PhaseRegistration, "auth success"); err != nil {
		return err
	}
	if err := w.Modal.Succeed(attempt); err != nil {
		return err
	}
	w.Authenticated = true
	w.enter(PhaseConditionAssessment)
	return nil
}

// AuthFailed moves registration -> error; retry returns to registration
func (w *Workflow) AuthFailed(attempt int, payload ErrorPayload) error {
	if err := w.result(PhaseRegistration, "auth failure"); err != nil {
		return err
	}
	return w.fail(attempt, payload, PhaseRegistration)
}

// CompleteAssessment moves condition-assessment -> auction-selection when ready is true
func (w *Workflow) CompleteAssessment(ready bool) error {
	if err := w.expect(PhaseConditionAssessment, "complete assessment"); err != nil {
		return err
	}
	if !ready {
		return fmt.Errorf("%w: condition assessment", ErrIncomplete)
	}
	w.enter(PhaseAuctionSelection)
	return nil
}

// BeginSubmit starts the offer submission: auction-selection -> submitting
func (w *Workflow) BeginSubmit() (int, error) {
	if err := w.expect(PhaseAuctionSelection, "submit"); err != nil {
		return 0, err
	}
	attempt, err := w.Modal.Begin()
	if err != nil {
		return 0, err
	}
	w.Phase = PhaseSubmitting
	return attempt, nil
}

// SubmitSucceeded moves submitting -> success, which is terminal
func (w *Workflow) SubmitSucceeded(attempt int) error {
	if err := w.result(PhaseSubmitting, "submit success"); err != nil {
		return err
	}
	if err := w.Modal.Succeed(attempt); err != nil {
		return err
	}
	w.Phase = PhaseSuccess
	return nil
}

// SubmitFailed moves submitting -> error; retry returns to auction-selection
func (w *Workflow) SubmitFailed(attempt int, payload ErrorPayload) error {
	if err := w.result(PhaseSubmitting, "submit failure"); err != nil {
		return err
	}
	if payload.RedirectAfterSeconds == 0 {
		payload.RedirectAfterSeconds = SubmissionRedirectSeconds
	}
	return w.fail(attempt, payload, PhaseAuctionSelection)
}

// Retry leaves the error phase for the phase that failed, with the modal back at form
func (w *Workflow) Retry() error {
	if err := w.expect(PhaseError, "retry"); err != nil {
		return err
	}
	if err := w.Modal.Retry(); err != nil {
		return err
	}
	w.Phase = w.RetryPhase
	w.RetryPhase = ""
	return nil
}

// Cancel abandons the flow. It is only allowed at vin-entry, registration or error and
// never while a request is in flight.
func (w *Workflow) Cancel() error {
	if !w.Modal.Closable() {
		return ErrRequestInFlight
	}
	switch w.Phase {
	case PhaseVINEntry, PhaseRegistration, PhaseError:
	default:
		return fmt.Errorf("%w: %s", ErrCancelNotAllowed, w.Phase)
	}
	*w = New(w.RelistID, w.Authenticated)
	return nil
}

func (w *Workflow) expect(phase Phase, event string) error {
	if w.Phase != phase {
		if w.Modal.Phase == ModalLoading {
			return fmt.Errorf("%w: %s during %s", ErrRequestInFlight, event, w.Phase)
		}
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, w.Phase)
	}
	return nil
}

// result checks that a request result arrives while its phase is still current. Anything
// else is a late result of an interrupted request.
func (w *Workflow) result(phase Phase, event string) error {
	if w.Phase != phase {
		return fmt.Errorf("%w: %s during %s", ErrStaleResult, event, w.Phase)
	}
	return nil
}

func (w *Workflow) enter(next Phase) {
	w.Phase = next
	w.Modal = Modal{Phase: ModalForm, Attempt: w.Modal.Attempt}
}

func (w *Workflow) fail(attempt int, payload ErrorPayload, retry Phase) error {
	if err := w.Modal.Fail(attempt, payload); err != nil {
		return err
	}
	w.Phase = PhaseError
	w.RetryPhase = retry
	return nil
}
