package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/vehicle-intake-api/api"
	"github.com/linesmerrill/vehicle-intake-api/images"
	"github.com/linesmerrill/vehicle-intake-api/intake"
	"github.com/linesmerrill/vehicle-intake-api/models"
)

// maxUploadSize bounds a multipart image upload
const maxUploadSize = 10 << 20

// Intake exported for testing purposes
type Intake struct {
	Service *intake.Service
	Tokens  *api.Auth
}

type startRequest struct {
	RelistID string `json:"relistId"`
}

type vinRequest struct {
	VIN     string `json:"vin"`
	ZipCode string `json:"zipcode"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type detailsRequest struct {
	Details string `json:"details"`
}

type deductionsResponse struct {
	Deductions models.DeductionResult `json:"deductions"`
	Total      int                    `json:"total"`
}

type intakeAuthResponse struct {
	Intake  models.IntakeView       `json:"intake"`
	Session *models.SessionResponse `json:"session,omitempty"`
}

// StartIntakeHandler creates an intake at VIN entry
func (h Intake) StartIntakeHandler(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, "failed to decode request", err)
			return
		}
	}
	in, err := h.Service.Start(r.Context(), api.SessionFrom(r.Context()), req.RelistID)
	if err != nil {
		writeError(w, "failed to start intake", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Service.View(in))
}

// IntakeHandler returns an intake with its completion and deductions
func (h Intake) IntakeHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["intake_id"]
	zap.S().Debugf("intake_id: %v", id)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	in, err := h.Service.Get(ctx, api.SessionFrom(r.Context()), id)
	h.respond(w, "failed to get intake", in, err)
}

// ListIntakesHandler returns every intake the signed in user owns
func (h Intake) ListIntakesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	intakes, err := h.Service.List(ctx, api.SessionFrom(r.Context()))
	if err != nil {
		writeError(w, "failed to list intakes", err)
		return
	}
	views := make([]models.IntakeView, 0, len(intakes))
	for i := range intakes {
		views = append(views, h.Service.View(&intakes[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

// SubmitVINHandler decodes the VIN and moves the intake on
func (h Intake) SubmitVINHandler(w http.ResponseWriter, r *http.Request) {
	var req vinRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	in, err := h.Service.SubmitVIN(r.Context(), api.SessionFrom(r.Context()), mux.Vars(r)["intake_id"], req.VIN, req.ZipCode)
	h.respond(w, "failed to submit vin", in, err)
}

// RegisterHandler signs a new user up from the registration step
func (h Intake) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	in, session, err := h.Service.Register(r.Context(), api.SessionFrom(r.Context()), mux.Vars(r)["intake_id"], req)
	h.respondAuth(w, "failed to register", in, session, err)
}

// LoginHandler signs an existing user in from the registration step
func (h Intake) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	in, session, err := h.Service.Login(r.Context(), api.SessionFrom(r.Context()), mux.Vars(r)["intake_id"], req)
	h.respondAuth(w, "failed to login", in, session, err)
}

// UpdateVehicleHandler merges the given vehicle fields into the record
func (h Intake) UpdateVehicleHandler(w http.ResponseWriter, r *http.Request) {
	var edits models.VehicleRecord
	if err := decodeBody(r, &edits); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	in, err := h.Service.UpdateVehicle(r.Context(), api.SessionFrom(r.Context()), mux.Vars(r)["intake_id"], edits)
	h.respond(w, "failed to update vehicle", in, err)
}

// ConfirmVehicleHandler validates the detail step
func (h Intake) ConfirmVehicleHandler(w http.ResponseWriter, r *http.Request) {
	completion, err := h.Service.ConfirmVehicle(r.Context(), api.SessionFrom(r.Context()), mux.Vars(r)["intake_id"])
	if err != nil {
		writeError(w, "failed to confirm vehicle", err)
		return
	}
	writeJSON(w, http.StatusOK, completion)
}

// AnswerQuestionHandler sets or toggles an answer
func (h Intake) AnswerQuestionHandler(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	vars := mux.Vars(r)
	in, err := h.Service.AnswerQuestion(r.Context(), api.SessionFrom(r.Context()), vars["intake_id"], vars["question_key"], req.Answer)
	h.respond(w, "failed to answer question", in, err)
}

// UpdateDetailsHandler sets the free text details of a question
func (h Intake) UpdateDetailsHandler(w http.ResponseWriter, r *http.Request) {
	var req detailsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	vars := mux.Vars(r)
	in, err := h.Service.UpdateDetails(r.Context(), api.SessionFrom(r.Context()), vars["intake_id"], vars["question_key"], req.Details)
	h.respond(w, "failed to update details", in, err)
}

// ResetQuestionsHandler restores the questionnaire defaults
func (h Intake) ResetQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	in, err := h.Service.ResetQuestions(r.Context(), api.SessionFrom(r.Context()), mux.Vars(r)["intake_id"])
	h.respond(w, "failed to reset questions", in, err)
}

// CompleteAssessmentHandler moves on to auction selection
func (h Intake) CompleteAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	in, err := h.Service.CompleteAssessment(r.Context(), api.SessionFrom(r.Context()), mux.Vars(r)["intake_id"])
	h.respond(w, "failed to complete assessment", in, err)
}

// DeductionsHandler returns the deduction of every question and their total
func (h Intake) DeductionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	d, err := h.Service.Deductions(ctx, api.SessionFrom(r.Context()), mux.Vars(r)["intake_id"])
	if err != nil {
		writeError(w, "failed to get deductions", err)
		return
	}
	writeJSON(w, http.StatusOK, deductionsResponse{Deductions: d, Total: d.Total()})
}

// SelectAuctionHandler records the sharing scope and terms consent
func (h Intake) SelectAuctionHandler(w http.ResponseWriter, r *http.Request) {
	var selection models.AuctionSelection
	if err := decodeBody(r, &selection); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	in, err := h.Service.SelectAuction(r.Context(), api.SessionFrom(r.Context()), mux.Vars(r)["intake_id"], selection)
	h.respond(w, "failed to select auction", in, err)
}

// SubmitHandler requests the offer and starts the auction
func (h Intake) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	in, err := h.Service.Submit(r.Context(), api.SessionFrom(r.Context()), mux.Vars(r)["intake_id"])
	h.respond(w, "failed to submit intake", in, err)
}

// RetryHandler leaves the error phase
func (h Intake) RetryHandler(w http.ResponseWriter, r *http.Request) {
	in, err := h.Service.Retry(r.Context(), api.SessionFrom(r.Context()), mux.Vars(r)["intake_id"])
	h.respond(w, "failed to retry", in, err)
}

// CancelHandler abandons the intake
func (h Intake) CancelHandler(w http.ResponseWriter, r *http.Request) {
	in, err := h.Service.Cancel(r.Context(), api.SessionFrom(r.Context()), mux.Vars(r)["intake_id"])
	h.respond(w, "failed to cancel intake", in, err)
}

// AddImageHandler uploads the "image" part of a multipart form
func (h Intake) AddImageHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, "failed to parse upload", intakeInvalid(err))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, "failed to read image", intakeInvalid(err))
		return
	}
	defer file.Close()

	if err := images.CheckFilename(header.Filename); err != nil {
		writeError(w, "failed to add image", err)
		return
	}
	in, err := h.Service.AddImage(r.Context(), api.SessionFrom(r.Context()), mux.Vars(r)["intake_id"], header.Filename, file)
	h.respond(w, "failed to add image", in, err)
}

// RemoveImageHandler deletes an image
func (h Intake) RemoveImageHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	in, err := h.Service.RemoveImage(r.Context(), api.SessionFrom(r.Context()), vars["intake_id"], vars["image_id"])
	h.respond(w, "failed to remove image", in, err)
}

func (h Intake) respond(w http.ResponseWriter, message string, in *models.Intake, err error) {
	if err != nil {
		writeError(w, message, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Service.View(in))
}

func (h Intake) respondAuth(w http.ResponseWriter, message string, in *models.Intake, session *models.Session, err error) {
	if err != nil {
		writeError(w, message, err)
		return
	}
	resp := intakeAuthResponse{Intake: h.Service.View(in)}
	if session != nil {
		s, err := sessionResponse(h.Tokens, session)
		if err != nil {
			writeError(w, "failed to issue token", err)
			return
		}
		resp.Session = &s
	}
	writeJSON(w, http.StatusOK, resp)
}

func intakeInvalid(err error) error {
	return errors.Join(intake.ErrInvalidInput, err)
}
