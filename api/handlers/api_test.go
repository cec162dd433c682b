package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/vehicle-intake-api/api"
	"github.com/linesmerrill/vehicle-intake-api/config"
	"github.com/linesmerrill/vehicle-intake-api/deduction"
	"github.com/linesmerrill/vehicle-intake-api/images"
	"github.com/linesmerrill/vehicle-intake-api/intake"
	"github.com/linesmerrill/vehicle-intake-api/location"
	"github.com/linesmerrill/vehicle-intake-api/mailer"
	"github.com/linesmerrill/vehicle-intake-api/models"
)

const testVIN = "1HGCM82633A004352"

// newTestApp builds an App over in-memory stores and a fake upstream
func newTestApp(t *testing.T) (*App, *fakeUpstream) {
	t.Helper()
	upstream := &fakeUpstream{}
	svc := intake.New(intake.Options{
		Intakes:     &memIntakes{docs: make(map[string][]byte)},
		Sessions:    &memSessions{docs: make(map[string]models.Session)},
		Backend:     upstream,
		Images:      images.BackendStore{Client: upstream},
		Notifier:    mailer.New(mailer.Discard{}),
		Engine:      deduction.Default(),
		OrphanAfter: time.Minute,
	})
	t.Cleanup(svc.Wait)

	a := &App{
		Config:   config.Config{ZipDebounce: 10 * time.Millisecond},
		Intakes:  svc,
		Tokens:   api.NewAuth("test-secret", svc),
		Upstream: upstream,
		Resolver: location.NewResolver(upstream),
		Resets:   NewResetFlows(),
		Metrics:  api.NewMetrics(),
	}
	a.initializeRoutes()
	return a, upstream
}

func executeRequest(a *App, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	return rr
}

func checkResponseCode(t *testing.T, expected, actual int) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected response code %d. Got %d\n", expected, actual)
	}
}

// call sends body as JSON with an optional bearer token
func call(t *testing.T, a *App, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return executeRequest(a, req)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestUnknownRoute(t *testing.T) {
	a, _ := newTestApp(t)
	req, _ := http.NewRequest("GET", "/asdf", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusNotFound, response.Code)
}

func TestHealthCheckRoute(t *testing.T) {
	a, _ := newTestApp(t)
	req, _ := http.NewRequest("GET", "/health", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusOK, response.Code)

	if !strings.Contains(response.Body.String(), "alive") {
		t.Errorf("Expected 'alive' in the reponse. Got '%s'", response.Body.String())
	}
}

func TestApp_IntakeHandlerInvalidRoute(t *testing.T) {
	a, _ := newTestApp(t)
	req, _ := http.NewRequest("GET", "api/v1/intake/1234", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusMovedPermanently, response.Code)
}

func TestApp_MethodNotAllowed(t *testing.T) {
	a, _ := newTestApp(t)
	response := call(t, a, "GET", "/api/v1/auth/login", nil, "")

	checkResponseCode(t, http.StatusMethodNotAllowed, response.Code)
}

func TestApp_MetricsRoute(t *testing.T) {
	a, _ := newTestApp(t)
	call(t, a, "GET", "/health", nil, "")
	call(t, a, "GET", "/api/v1/intake/missing", nil, "")

	response := call(t, a, "GET", "/metrics", nil, "")
	checkResponseCode(t, http.StatusOK, response.Code)

	summary := decode[api.Summary](t, response)
	paths := map[string]int64{}
	for _, r := range summary.Routes {
		paths[r.Path] += r.Count
	}
	require.Equal(t, int64(1), paths["/api/v1/intake/{intake_id}"])
	require.Equal(t, int64(1), summary.TotalErrors)
}

func TestApp_CloseWithoutDatabase(t *testing.T) {
	a, _ := newTestApp(t)
	require.NoError(t, a.Close(t.Context()))
}

func TestJWTSecret(t *testing.T) {
	s, err := jwtSecret(config.Config{JWTSecret: "abc"})
	require.NoError(t, err)
	require.Equal(t, "abc", s)

	_, err = jwtSecret(config.Config{Env: "production"})
	require.Error(t, err)

	s, err = jwtSecret(config.Config{Env: "local"})
	require.NoError(t, err)
	require.NotEmpty(t, s)
}

func TestNewImageStore(t *testing.T) {
	store, err := newImageStore(config.Config{ImageStore: "backend"}, &fakeUpstream{})
	require.NoError(t, err)
	require.IsType(t, images.BackendStore{}, store)

	_, err = newImageStore(config.Config{ImageStore: "s3"}, &fakeUpstream{})
	require.Error(t, err)
}
