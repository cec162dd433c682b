// Package submission assembles the offer payload sent when an intake is submitted.
package submission

import (
	"errors"

	"github.com/linesmerrill/vehicle-intake-api/models"
	"github.com/linesmerrill/vehicle-intake-api/questionnaire"
)

// Offer terms values
const (
	TermsAccepted    = "accepted"
	TermsNotAccepted = "not_accepted"
)

var (
	// ErrAuctionNotSelected is returned when no sharing scope was chosen
	ErrAuctionNotSelected = errors.New("select local or all dealers before submitting")
	// ErrTermsNotAccepted is returned when the terms consent is not checked
	ErrTermsNotAccepted = errors.New("accept the terms before submitting")
)

// Gate returns an error unless the selection may be submitted. Nothing is sent upstream
// when it fails.
func Gate(selection models.AuctionSelection) error {
	if !ValidOption(selection.Option) {
		return ErrAuctionNotSelected
	}
	if !selection.TermsConsent {
		return ErrTermsNotAccepted
	}
	return nil
}

// ValidOption reports whether option is a sharing scope
func ValidOption(option string) bool {
	return option == models.AuctionLocal || option == models.AuctionAll
}

// Build returns the offer payload. relistID is only included when the intake relists a
// previously listed vehicle.
func Build(
	vehicle models.VehicleRecord,
	questions []models.ConditionQuestion,
	deductions models.DeductionResult,
	identity models.Identity,
	selection models.AuctionSelection,
	relistID string,
) (models.OfferRequest, error) {
	if err := Gate(selection); err != nil {
		return models.OfferRequest{}, err
	}

	answers := make([]models.QuestionAnswer, 0, len(questions))
	for _, q := range questions {
		answers = append(answers, models.QuestionAnswer{
			QuestionKey:  q.Key,
			QuestionText: q.Label,
			Answer:       questionnaire.AnswerText(q),
			Details:      q.Details,
		})
	}

	if identity.City == "" && identity.ZipCode == vehicle.ZipCode {
		identity.City = vehicle.City
		identity.State = vehicle.State
	}

	req := models.OfferRequest{
		Vehicle: models.OfferVehicle{
			VIN:            vehicle.VIN,
			ZipCode:        vehicle.ZipCode,
			Make:           vehicle.Make,
			Model:          vehicle.Model,
			Year:           vehicle.Year,
			Mileage:        vehicle.Mileage,
			ExteriorColor:  vehicle.ExteriorColor,
			InteriorColor:  vehicle.InteriorColor,
			BodyType:       vehicle.BodyType,
			Transmission:   vehicle.Transmission,
			FuelType:       vehicle.FuelType,
			EngineType:     vehicle.EngineType,
			BodyEngineType: vehicle.BodyEngineType,
			City:           vehicle.City,
			State:          vehicle.State,
		},
		Questions:    answers,
		Deductions:   deductions,
		User:         identity,
		AuctionScope: scope(selection),
		OfferTerms:   terms(selection),
		RelistID:     relistID,
	}
	return req, nil
}

func scope(selection models.AuctionSelection) string {
	if ValidOption(selection.Option) {
		return selection.Option
	}
	return ""
}

func terms(selection models.AuctionSelection) string {
	if ValidOption(selection.Option) {
		return TermsAccepted
	}
	return TermsNotAccepted
}
