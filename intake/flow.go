package intake

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/linesmerrill/vehicle-intake-api/models"
	"github.com/linesmerrill/vehicle-intake-api/questionnaire"
	"github.com/linesmerrill/vehicle-intake-api/submission"
	"github.com/linesmerrill/vehicle-intake-api/vehicle"
	"github.com/linesmerrill/vehicle-intake-api/workflow"
)

// SubmitVIN decodes the VIN upstream and merges the result into the vehicle record.
// Invalid input is rejected before the workflow moves.
func (s *Service) SubmitVIN(ctx context.Context, caller *models.Session, id, vin, zip string) (*models.Intake, error) {
	vin = vehicle.NormalizeVIN(vin)
	if err := vehicle.ValidateVIN(vin); err != nil {
		return nil, err
	}
	if err := vehicle.ValidateZip(zip); err != nil {
		return nil, err
	}

	var attempt int
	_, err := s.update(ctx, caller, id, func(in *models.Intake) error {
		if err := vehicle.CheckVIN(in.Vehicle, models.VehicleRecord{VIN: vin}); err != nil {
			return err
		}
		a, err := in.Workflow.SubmitVIN()
		if err != nil {
			return err
		}
		attempt = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	rec, callErr := s.backend.DecodeVIN(ctx, vin, zip)

	return s.settle(ctx, id, attempt, func(in *models.Intake) error {
		if callErr != nil {
			zap.S().Warnw("vin decode failed", "intake", id, "error", callErr)
			return in.Workflow.DecodeFailed(attempt, errorPayload(callErr,
				"We could not decode that VIN.",
				"Check the VIN on your registration or driver side door and try again."))
		}
		rec.VIN = vin
		rec.ZipCode = zip
		merged := vehicle.Merge(in.Vehicle, rec)
		if err := in.Workflow.DecodeSucceeded(attempt); err != nil {
			return err
		}
		in.Vehicle = merged
		in.Questions = questionnaire.Reset()
		return nil
	})
}

// UpdateVehicle merges user edits into the vehicle record. Edits are refused while a
// request is loading and after success.
func (s *Service) UpdateVehicle(ctx context.Context, caller *models.Session, id string, edits models.VehicleRecord) (*models.Intake, error) {
	return s.update(ctx, caller, id, func(in *models.Intake) error {
		if err := editable(in.Workflow); err != nil {
			return err
		}
		if err := vehicle.CheckVIN(in.Vehicle, edits); err != nil {
			return err
		}
		if edits.ZipCode != "" {
			if err := vehicle.ValidateZip(edits.ZipCode); err != nil {
				return err
			}
		}
		in.Vehicle = vehicle.Merge(in.Vehicle, edits)
		return nil
	})
}

// ConfirmVehicle validates the detail step. It returns the completion report and the
// field errors; it does not move the workflow.
func (s *Service) ConfirmVehicle(ctx context.Context, caller *models.Session, id string) (models.Completion, error) {
	in, err := s.Get(ctx, caller, id)
	if err != nil {
		return models.Completion{}, err
	}
	return vehicle.Completion(in.Vehicle), nil
}

// AnswerQuestion sets or toggles an answer during condition assessment
func (s *Service) AnswerQuestion(ctx context.Context, caller *models.Session, id, key, answer string) (*models.Intake, error) {
	return s.update(ctx, caller, id, func(in *models.Intake) error {
		if err := assessing(in.Workflow); err != nil {
			return err
		}
		qs, err := questionnaire.UpdateAnswer(in.Questions, key, answer)
		if err != nil {
			return err
		}
		in.Questions = qs
		return nil
	})
}

// UpdateDetails sets the free text details of a question during condition assessment
func (s *Service) UpdateDetails(ctx context.Context, caller *models.Session, id, key, text string) (*models.Intake, error) {
	return s.update(ctx, caller, id, func(in *models.Intake) error {
		if err := assessing(in.Workflow); err != nil {
			return err
		}
		qs, err := questionnaire.UpdateDetails(in.Questions, key, text)
		if err != nil {
			return err
		}
		in.Questions = qs
		return nil
	})
}

// ResetQuestions restores every question to its default
func (s *Service) ResetQuestions(ctx context.Context, caller *models.Session, id string) (*models.Intake, error) {
	return s.update(ctx, caller, id, func(in *models.Intake) error {
		if err := editable(in.Workflow); err != nil {
			return err
		}
		in.Questions = questionnaire.Reset()
		return nil
	})
}

// CompleteAssessment moves to auction selection once every question is answered and the
// vehicle details are valid
func (s *Service) CompleteAssessment(ctx context.Context, caller *models.Session, id string) (*models.Intake, error) {
	return s.update(ctx, caller, id, func(in *models.Intake) error {
		completion := vehicle.Completion(in.Vehicle)
		ready := completion.AllValid && questionnaire.AllAnswered(in.Questions)
		if err := in.Workflow.CompleteAssessment(ready); err != nil {
			if !ready {
				return fmt.Errorf("%w: %d of %d vehicle fields valid, unanswered: %s",
					err, completion.CompletedCount, completion.TotalFields, strings.Join(questionnaire.Missing(in.Questions), ", "))
			}
			return err
		}
		if unmapped := s.engine.Unmapped(in.Questions); len(unmapped) > 0 {
			zap.S().Warnw("answers without a deduction entry", "intake", in.ID, "answers", unmapped)
		}
		return nil
	})
}

// SelectAuction records the sharing scope and terms consent. An empty option clears the
// choice.
func (s *Service) SelectAuction(ctx context.Context, caller *models.Session, id string, selection models.AuctionSelection) (*models.Intake, error) {
	if selection.Option != "" && !submission.ValidOption(selection.Option) {
		return nil, invalid("unknown auction option %q", selection.Option)
	}
	return s.update(ctx, caller, id, func(in *models.Intake) error {
		if in.Workflow.Phase != workflow.PhaseAuctionSelection {
			return fmt.Errorf("%w: select auction from %s", workflow.ErrInvalidTransition, in.Workflow.Phase)
		}
		in.Selection = selection
		return nil
	})
}

// Submit requests the instant cash offer and, when the vehicle is auctionable, starts the
// auction. The submission gate runs before the workflow moves, so a rejected selection
// never reaches upstream.
func (s *Service) Submit(ctx context.Context, caller *models.Session, id string) (*models.Intake, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}

	var (
		attempt    int
		req        models.OfferRequest
		identity   models.Identity
		questions  []models.ConditionQuestion
		deductions models.DeductionResult
		prior      *models.OfferResult
	)
	_, err := s.update(ctx, caller, id, func(in *models.Intake) error {
		if in.Workflow.Phase != workflow.PhaseAuctionSelection {
			if in.Workflow.Modal.Phase == workflow.ModalLoading {
				return workflow.ErrRequestInFlight
			}
			return fmt.Errorf("%w: submit from %s", workflow.ErrInvalidTransition, in.Workflow.Phase)
		}
		identity = models.IdentityFromProfile(caller.User)
		if in.Identity != nil {
			identity = *in.Identity
		}
		deductions = s.engine.Compute(in.Questions)
		r, err := submission.Build(in.Vehicle, in.Questions, deductions, identity, in.Selection, in.Workflow.RelistID)
		if err != nil {
			return err
		}
		for _, img := range in.Images {
			r.Images = append(r.Images, img.URL)
		}
		a, err := in.Workflow.BeginSubmit()
		if err != nil {
			return err
		}
		attempt, req, questions = a, r, in.Questions
		if in.Offer != nil && in.Offer.ProductID != "" && in.Auction == nil {
			o := *in.Offer
			prior = &o
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	offer, auction, callErr := s.offerAndAuction(ctx, caller.UpstreamToken, req, prior)

	in, err := s.settle(ctx, id, attempt, func(in *models.Intake) error {
		if callErr != nil {
			zap.S().Errorw("submission failed", "intake", id, "error", callErr)
			// the listing already exists upstream; a retry only restarts the auction
			if offer.ProductID != "" {
				in.Offer = &offer
			}
			return in.Workflow.SubmitFailed(attempt, errorPayload(callErr,
				"We could not submit your vehicle.",
				"You will be returned to the auction options shortly."))
		}
		if err := in.Workflow.SubmitSucceeded(attempt); err != nil {
			return err
		}
		in.Offer = &offer
		in.Auction = auction
		return nil
	})
	if err != nil {
		return nil, err
	}

	if callErr == nil && auction != nil && in.Workflow.Phase == workflow.PhaseSuccess {
		s.notify(ctx, id, identity, offer, *auction, questions, deductions)
	}
	zap.S().Infow("intake submitted", "intake", id, "phase", in.Workflow.Phase, "auctionable", offer.IsAuctionable)
	return in, nil
}

// offerAndAuction asks for the instant cash offer unless prior already holds one, then
// starts the auction. A failed auction start still returns the offer it was started for.
func (s *Service) offerAndAuction(ctx context.Context, token string, req models.OfferRequest, prior *models.OfferResult) (models.OfferResult, *models.AuctionStart, error) {
	var offer models.OfferResult
	if prior != nil {
		offer = *prior
	} else {
		o, err := s.backend.InstantCash(ctx, token, req)
		if err != nil {
			return models.OfferResult{}, nil, fmt.Errorf("instant cash offer: %w", err)
		}
		offer = o
	}
	if !offer.IsAuctionable || offer.ProductID == "" {
		return offer, nil, nil
	}
	auction, err := s.backend.StartAuction(ctx, token, offer.ProductID, req.AuctionScope)
	if err != nil {
		return offer, nil, fmt.Errorf("start auction: %w", err)
	}
	if auction.ProductID == "" {
		auction.ProductID = offer.ProductID
	}
	return offer, &auction, nil
}

// notify sends the confirmation email without holding up the response
func (s *Service) notify(ctx context.Context, id string, who models.Identity, offer models.OfferResult, auction models.AuctionStart, questions []models.ConditionQuestion, deductions models.DeductionResult) {
	if s.notifier == nil || offer.EmailSent {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.notifier.AuctionStarted(ctx, who, offer, auction, questions, deductions); err != nil {
			zap.S().Errorw("failed to send auction email", "intake", id, "error", err)
		}
	}()
}

// Retry leaves the error phase for the step that failed
func (s *Service) Retry(ctx context.Context, caller *models.Session, id string) (*models.Intake, error) {
	return s.update(ctx, caller, id, func(in *models.Intake) error {
		return in.Workflow.Retry()
	})
}

// Cancel abandons the intake and returns every form to its defaults. The owner and
// identity stay.
func (s *Service) Cancel(ctx context.Context, caller *models.Session, id string) (*models.Intake, error) {
	return s.update(ctx, caller, id, func(in *models.Intake) error {
		if err := in.Workflow.Cancel(); err != nil {
			return err
		}
		in.Vehicle = models.VehicleRecord{}
		in.Questions = questionnaire.Reset()
		in.Selection = models.AuctionSelection{}
		in.Images = []models.Image{}
		in.Offer = nil
		in.Auction = nil
		return nil
	})
}

// ApplyLocation writes the city and state of a resolved ZIP onto the vehicle and the
// identity whose ZIP matches. A resolved location wins over typed values.
func (s *Service) ApplyLocation(ctx context.Context, caller *models.Session, id string, loc models.Location) (*models.Intake, error) {
	if loc.Empty() || loc.ZipCode == "" {
		return s.Get(ctx, caller, id)
	}
	return s.update(ctx, caller, id, func(in *models.Intake) error {
		if in.Vehicle.ZipCode == loc.ZipCode {
			in.Vehicle = vehicle.Merge(in.Vehicle, models.VehicleRecord{City: loc.City, State: loc.State})
		}
		if in.Identity != nil && in.Identity.ZipCode == loc.ZipCode {
			in.Identity.City = loc.City
			in.Identity.State = loc.State
		}
		return nil
	})
}

func editable(w workflow.Workflow) error {
	if w.Modal.Phase == workflow.ModalLoading {
		return workflow.ErrRequestInFlight
	}
	if w.Phase == workflow.PhaseSuccess {
		return fmt.Errorf("%w: edit during %s", workflow.ErrInvalidTransition, w.Phase)
	}
	return nil
}

func assessing(w workflow.Workflow) error {
	if w.Phase != workflow.PhaseConditionAssessment {
		return fmt.Errorf("%w: answer during %s", workflow.ErrInvalidTransition, w.Phase)
	}
	return nil
}
