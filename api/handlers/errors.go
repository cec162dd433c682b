package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/linesmerrill/vehicle-intake-api/backend"
	"github.com/linesmerrill/vehicle-intake-api/config"
	"github.com/linesmerrill/vehicle-intake-api/images"
	"github.com/linesmerrill/vehicle-intake-api/intake"
	"github.com/linesmerrill/vehicle-intake-api/questionnaire"
	"github.com/linesmerrill/vehicle-intake-api/submission"
	"github.com/linesmerrill/vehicle-intake-api/vehicle"
	"github.com/linesmerrill/vehicle-intake-api/workflow"
)

// errBadBody is returned for request bodies that are not the expected JSON
var errBadBody = errors.New("request body is not valid json")

// statusFor maps a service error to the HTTP status it is answered with
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadBody),
		errors.Is(err, intake.ErrInvalidInput),
		errors.Is(err, vehicle.ErrInvalidVIN),
		errors.Is(err, vehicle.ErrInvalidZip),
		errors.Is(err, vehicle.ErrVINChanged),
		errors.Is(err, questionnaire.ErrUnknownQuestion),
		errors.Is(err, questionnaire.ErrUnknownOption),
		errors.Is(err, submission.ErrAuctionNotSelected),
		errors.Is(err, submission.ErrTermsNotAccepted),
		errors.Is(err, workflow.ErrIncomplete),
		errors.Is(err, images.ErrUnsupportedType),
		errors.Is(err, intake.ErrTooManyImages):
		return http.StatusBadRequest
	case errors.Is(err, intake.ErrUnauthenticated),
		errors.Is(err, intake.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, intake.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, intake.ErrNotFound),
		errors.Is(err, intake.ErrImageNotFound),
		errors.Is(err, errFlowNotFound),
		errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrRequestInFlight),
		errors.Is(err, workflow.ErrCancelNotAllowed):
		return http.StatusConflict
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError answers with the status statusFor picks
func writeError(w http.ResponseWriter, message string, err error) {
	config.ErrorStatus(message, statusFor(err), w, err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}
