package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/vehicle-intake-api/models"
	"github.com/linesmerrill/vehicle-intake-api/workflow"
)

var registration = models.RegistrationRequest{
	FirstName: "Sam",
	LastName:  "Lee",
	Email:     "sam@example.com",
	Phone:     "5555550100",
	Password:  "hunter22",
	ZipCode:   "94107",
}

var details = models.VehicleRecord{
	Mileage:       "84000",
	ExteriorColor: "Silver",
	InteriorColor: "Black",
	Transmission:  "Automatic",
}

// startIntake creates an intake and decodes the test VIN on it
func startIntake(t *testing.T, a *App, token string) models.IntakeView {
	t.Helper()
	rr := call(t, a, "POST", "/api/v1/intake", nil, token)
	checkResponseCode(t, http.StatusCreated, rr.Code)
	view := decode[models.IntakeView](t, rr)
	require.Equal(t, workflow.PhaseVINEntry, view.Workflow.Phase)

	rr = call(t, a, "POST", "/api/v1/intake/"+view.ID+"/vin", vinRequest{VIN: strings.ToLower(testVIN), ZipCode: "94107"}, token)
	checkResponseCode(t, http.StatusOK, rr.Code)
	return decode[models.IntakeView](t, rr)
}

func TestIntake_FullFlow(t *testing.T) {
	a, upstream := newTestApp(t)

	view := startIntake(t, a, "")
	id := view.ID
	assert.Equal(t, workflow.PhaseRegistration, view.Workflow.Phase)
	assert.Equal(t, testVIN, view.Vehicle.VIN)

	rr := call(t, a, "POST", "/api/v1/intake/"+id+"/register", registration, "")
	checkResponseCode(t, http.StatusOK, rr.Code)
	authResp := decode[intakeAuthResponse](t, rr)
	require.NotNil(t, authResp.Session)
	token := authResp.Session.Token
	require.NotEmpty(t, token)
	assert.Equal(t, workflow.PhaseConditionAssessment, authResp.Intake.Workflow.Phase)

	rr = call(t, a, "PATCH", "/api/v1/intake/"+id+"/vehicle", details, token)
	checkResponseCode(t, http.StatusOK, rr.Code)

	rr = call(t, a, "POST", "/api/v1/intake/"+id+"/vehicle/confirm", nil, token)
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.True(t, decode[models.Completion](t, rr).AllValid)

	rr = call(t, a, "PUT", "/api/v1/intake/"+id+"/questions/cosmetic_condition", answerRequest{Answer: "Good"}, token)
	checkResponseCode(t, http.StatusOK, rr.Code)

	rr = call(t, a, "POST", "/api/v1/intake/"+id+"/assessment", nil, token)
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Equal(t, workflow.PhaseAuctionSelection, decode[models.IntakeView](t, rr).Workflow.Phase)

	rr = call(t, a, "GET", "/api/v1/intake/"+id+"/deductions", nil, token)
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Equal(t, 850, decode[deductionsResponse](t, rr).Total)

	// the submission gate answers before anything reaches upstream
	rr = call(t, a, "POST", "/api/v1/intake/"+id+"/submit", nil, token)
	checkResponseCode(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, int32(0), upstream.offerCalls.Load())

	rr = call(t, a, "POST", "/api/v1/intake/"+id+"/auction", models.AuctionSelection{Option: models.AuctionAll, TermsConsent: true}, token)
	checkResponseCode(t, http.StatusOK, rr.Code)

	rr = call(t, a, "POST", "/api/v1/intake/"+id+"/submit", nil, "")
	checkResponseCode(t, http.StatusUnauthorized, rr.Code)

	rr = call(t, a, "POST", "/api/v1/intake/"+id+"/submit", nil, token)
	checkResponseCode(t, http.StatusOK, rr.Code)
	done := decode[models.IntakeView](t, rr)
	assert.Equal(t, workflow.PhaseSuccess, done.Workflow.Phase)
	require.NotNil(t, done.Offer)
	assert.Equal(t, 12500.0, done.Offer.OfferAmount)
	require.NotNil(t, done.Auction)
	assert.Equal(t, "p-1", done.Auction.ProductID)

	rr = call(t, a, "POST", "/api/v1/intake/"+id+"/cancel", nil, token)
	checkResponseCode(t, http.StatusConflict, rr.Code)

	rr = call(t, a, "GET", "/api/v1/intakes", nil, token)
	checkResponseCode(t, http.StatusOK, rr.Code)
	owned := decode[[]models.IntakeView](t, rr)
	require.Len(t, owned, 1)
	assert.Equal(t, id, owned[0].ID)
	assert.True(t, owned[0].Finished)

	rr = call(t, a, "GET", "/api/v1/intakes", nil, "")
	checkResponseCode(t, http.StatusUnauthorized, rr.Code)
}

func TestIntake_SignedInVisitorSkipsRegistration(t *testing.T) {
	a, _ := newTestApp(t)
	rr := call(t, a, "POST", "/api/v1/auth/login", models.LoginRequest{Email: "sam@example.com", Password: "hunter22"}, "")
	checkResponseCode(t, http.StatusOK, rr.Code)
	token := decode[models.SessionResponse](t, rr).Token

	view := startIntake(t, a, token)
	assert.Equal(t, workflow.PhaseConditionAssessment, view.Workflow.Phase)
	assert.Equal(t, "user-sam@example.com", view.OwnerID)
}

func TestIntake_OwnedByAnotherUser(t *testing.T) {
	a, _ := newTestApp(t)
	login := func(email string) string {
		rr := call(t, a, "POST", "/api/v1/auth/login", models.LoginRequest{Email: email, Password: "hunter22"}, "")
		checkResponseCode(t, http.StatusOK, rr.Code)
		return decode[models.SessionResponse](t, rr).Token
	}
	owner, other := login("sam@example.com"), login("alex@example.com")
	view := startIntake(t, a, owner)

	rr := call(t, a, "GET", "/api/v1/intake/"+view.ID, nil, other)
	checkResponseCode(t, http.StatusForbidden, rr.Code)

	rr = call(t, a, "GET", "/api/v1/intake/"+view.ID, nil, "")
	checkResponseCode(t, http.StatusForbidden, rr.Code)

	rr = call(t, a, "GET", "/api/v1/intake/"+view.ID, nil, owner)
	checkResponseCode(t, http.StatusOK, rr.Code)
}

func TestIntake_Errors(t *testing.T) {
	a, _ := newTestApp(t)

	rr := call(t, a, "GET", "/api/v1/intake/does-not-exist", nil, "")
	checkResponseCode(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "response")

	rr = call(t, a, "GET", "/api/v1/intake/does-not-exist", nil, "not-a-token")
	checkResponseCode(t, http.StatusUnauthorized, rr.Code)

	rr = call(t, a, "POST", "/api/v1/intake", nil, "")
	id := decode[models.IntakeView](t, rr).ID

	rr = call(t, a, "POST", "/api/v1/intake/"+id+"/vin", vinRequest{VIN: "1HGCM82633A00435I", ZipCode: "94107"}, "")
	checkResponseCode(t, http.StatusBadRequest, rr.Code)

	req, _ := http.NewRequest("POST", "/api/v1/intake/"+id+"/vin", strings.NewReader("{"))
	checkResponseCode(t, http.StatusBadRequest, executeRequest(a, req).Code)

	// answers belong to the assessment phase
	rr = call(t, a, "PUT", "/api/v1/intake/"+id+"/questions/cosmetic_condition", answerRequest{Answer: "Good"}, "")
	checkResponseCode(t, http.StatusConflict, rr.Code)

	rr = call(t, a, "POST", "/api/v1/intake/"+id+"/cancel", nil, "")
	checkResponseCode(t, http.StatusOK, rr.Code)
}

func TestIntake_QuestionValidation(t *testing.T) {
	a, _ := newTestApp(t)
	view := startIntake(t, a, "")
	rr := call(t, a, "POST", "/api/v1/intake/"+view.ID+"/register", registration, "")
	token := decode[intakeAuthResponse](t, rr).Session.Token

	rr = call(t, a, "PUT", "/api/v1/intake/"+view.ID+"/questions/engine_noise", answerRequest{Answer: "Yes"}, token)
	checkResponseCode(t, http.StatusBadRequest, rr.Code)

	rr = call(t, a, "PUT", "/api/v1/intake/"+view.ID+"/questions/title_status", answerRequest{Answer: "Stolen"}, token)
	checkResponseCode(t, http.StatusBadRequest, rr.Code)

	rr = call(t, a, "PUT", "/api/v1/intake/"+view.ID+"/questions/title_status", answerRequest{Answer: "Salvage"}, token)
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Contains(t, decode[models.IntakeView](t, rr).Missing, "title_status")

	rr = call(t, a, "PUT", "/api/v1/intake/"+view.ID+"/questions/title_status/details", detailsRequest{Details: "flood"}, token)
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.NotContains(t, decode[models.IntakeView](t, rr).Missing, "title_status")

	// vehicle details are still missing
	rr = call(t, a, "POST", "/api/v1/intake/"+view.ID+"/assessment", nil, token)
	checkResponseCode(t, http.StatusBadRequest, rr.Code)

	rr = call(t, a, "POST", "/api/v1/intake/"+view.ID+"/questions/reset", nil, token)
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[models.IntakeView](t, rr).DeductionTotal)
}

func TestIntake_Images(t *testing.T) {
	a, upstream := newTestApp(t)
	view := startIntake(t, a, "")

	upload := func(filename string) int {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg bytes"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req, _ := http.NewRequest("POST", "/api/v1/intake/"+view.ID+"/images", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return executeRequest(a, req).Code
	}

	checkResponseCode(t, http.StatusBadRequest, upload("notes.txt"))
	checkResponseCode(t, http.StatusOK, upload("front.jpg"))

	rr := call(t, a, "GET", "/api/v1/intake/"+view.ID, nil, "")
	imgs := decode[models.IntakeView](t, rr).Images
	require.Len(t, imgs, 1)
	assert.Equal(t, "img-front.jpg", imgs[0].ID)

	rr = call(t, a, "DELETE", "/api/v1/intake/"+view.ID+"/images/img-front.jpg", nil, "")
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[models.IntakeView](t, rr).Images)
	assert.Equal(t, []string{"img-front.jpg"}, upstream.deleted)

	rr = call(t, a, "DELETE", "/api/v1/intake/"+view.ID+"/images/img-front.jpg", nil, "")
	checkResponseCode(t, http.StatusNotFound, rr.Code)
}

func TestIntake_HandlerWithURLVars(t *testing.T) {
	a, _ := newTestApp(t)
	view := startIntake(t, a, "")

	req, _ := http.NewRequest("GET", "/api/v1/intake/"+view.ID, nil)
	req = mux.SetURLVars(req, map[string]string{"intake_id": view.ID})
	rr := httptest.NewRecorder()
	Intake{Service: a.Intakes, Tokens: a.Tokens}.IntakeHandler(rr, req)

	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Equal(t, view.ID, decode[models.IntakeView](t, rr).ID)
}
