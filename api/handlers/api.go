package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/vehicle-intake-api/api"
	"github.com/linesmerrill/vehicle-intake-api/api/scheduler"
	"github.com/linesmerrill/vehicle-intake-api/backend"
	"github.com/linesmerrill/vehicle-intake-api/config"
	"github.com/linesmerrill/vehicle-intake-api/databases"
	"github.com/linesmerrill/vehicle-intake-api/deduction"
	"github.com/linesmerrill/vehicle-intake-api/images"
	"github.com/linesmerrill/vehicle-intake-api/intake"
	"github.com/linesmerrill/vehicle-intake-api/location"
	"github.com/linesmerrill/vehicle-intake-api/mailer"
)

// Upstream is everything the handlers need from the upstream API
type Upstream interface {
	intake.Backend
	location.Geocoder
	AccountBackend
	PasswordBackend
	images.Uploader
}

// App stores the router and its dependencies, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Intakes   *intake.Service
	Tokens    *api.Auth
	Upstream  Upstream
	Resolver  *location.Resolver
	Resets    *ResetFlows
	Metrics   *api.MetricsCollector
	Scheduler *scheduler.Scheduler

	client databases.ClientHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()
	r.Use(a.Metrics.Middleware)

	in := Intake{Service: a.Intakes, Tokens: a.Tokens}
	loc := Location{Resolver: a.Resolver, Intakes: a.Intakes, Debounce: a.Config.ZipDebounce}
	s := Session{Service: a.Intakes, Tokens: a.Tokens}
	acct := Account{Backend: a.Upstream}
	pw := Password{Backend: a.Upstream, Flows: a.Resets}

	timeout := api.TimeoutMiddleware(a.Config.RequestTimeout)
	guarded := func(h http.HandlerFunc) http.Handler { return timeout(a.Tokens.Middleware(h)) }
	optional := func(h http.HandlerFunc) http.Handler { return timeout(a.Tokens.OptionalMiddleware(h)) }
	open := func(h http.HandlerFunc) http.Handler { return timeout(h) }

	// healthchex
	r.HandleFunc("/health", api.HealthCheckHandler)
	r.HandleFunc("/metrics", a.Metrics.MetricsHandler).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/intake", optional(in.StartIntakeHandler)).Methods("POST")
	apiCreate.Handle("/intakes", guarded(in.ListIntakesHandler)).Methods("GET")
	apiCreate.Handle("/intake/{intake_id}", optional(in.IntakeHandler)).Methods("GET")
	apiCreate.Handle("/intake/{intake_id}/vin", optional(in.SubmitVINHandler)).Methods("POST")
	apiCreate.Handle("/intake/{intake_id}/register", optional(in.RegisterHandler)).Methods("POST")
	apiCreate.Handle("/intake/{intake_id}/login", optional(in.LoginHandler)).Methods("POST")
	apiCreate.Handle("/intake/{intake_id}/vehicle", optional(in.UpdateVehicleHandler)).Methods("PATCH")
	apiCreate.Handle("/intake/{intake_id}/vehicle/confirm", optional(in.ConfirmVehicleHandler)).Methods("POST")
	apiCreate.Handle("/intake/{intake_id}/questions/reset", optional(in.ResetQuestionsHandler)).Methods("POST")
	apiCreate.Handle("/intake/{intake_id}/questions/{question_key}", optional(in.AnswerQuestionHandler)).Methods("PUT")
	apiCreate.Handle("/intake/{intake_id}/questions/{question_key}/details", optional(in.UpdateDetailsHandler)).Methods("PUT")
	apiCreate.Handle("/intake/{intake_id}/assessment", optional(in.CompleteAssessmentHandler)).Methods("POST")
	apiCreate.Handle("/intake/{intake_id}/deductions", optional(in.DeductionsHandler)).Methods("GET")
	apiCreate.Handle("/intake/{intake_id}/auction", optional(in.SelectAuctionHandler)).Methods("POST")
	apiCreate.Handle("/intake/{intake_id}/submit", guarded(in.SubmitHandler)).Methods("POST")
	apiCreate.Handle("/intake/{intake_id}/retry", optional(in.RetryHandler)).Methods("POST")
	apiCreate.Handle("/intake/{intake_id}/cancel", optional(in.CancelHandler)).Methods("POST")
	apiCreate.Handle("/intake/{intake_id}/images", optional(in.AddImageHandler)).Methods("POST")
	apiCreate.Handle("/intake/{intake_id}/images/{image_id}", optional(in.RemoveImageHandler)).Methods("DELETE")

	apiCreate.Handle("/location", open(loc.LocationHandler)).Methods("GET")
	apiCreate.Handle("/ws/intake/{intake_id}/zip", a.Tokens.OptionalMiddleware(http.HandlerFunc(loc.ZipStreamHandler))).Methods("GET")

	apiCreate.Handle("/auth/login", open(s.LoginHandler)).Methods("POST")
	apiCreate.Handle("/auth/register", open(s.RegisterHandler)).Methods("POST")
	apiCreate.Handle("/auth/logout", guarded(s.LogoutHandler)).Methods("DELETE")

	apiCreate.Handle("/user/profile", guarded(acct.UpdateProfileHandler)).Methods("PUT")
	apiCreate.Handle("/user/change-password", guarded(acct.ChangePasswordHandler)).Methods("POST")

	apiCreate.Handle("/password/forgot", open(pw.ForgotHandler)).Methods("POST")
	apiCreate.Handle("/password/{flow_id}/verify", open(pw.VerifyHandler)).Methods("POST")
	apiCreate.Handle("/password/{flow_id}/reset", open(pw.ResetHandler)).Methods("POST")
	apiCreate.Handle("/password/{flow_id}/cancel", open(pw.CancelHandler)).Methods("POST")

	return r
}

// Initialize is invoked by serve to connect with the database, build the services and
// create a router
func (a *App) Initialize(ctx context.Context) error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}
	if err := client.Connect(ctx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	a.client = client
	dbHelper := databases.NewDatabase(&a.Config, client)
	zap.S().Info("vehicle-intake-api has connected to the database")

	api.QueryTimeout = a.Config.QueryTimeout

	upstream := backend.New(backend.Options{
		BaseURL:           a.Config.BackendURL,
		Timeout:           a.Config.BackendTimeout,
		RequestsPerSecond: a.Config.BackendRateLimit,
		Burst:             a.Config.BackendBurst,
	})
	store, err := newImageStore(a.Config, upstream)
	if err != nil {
		return err
	}
	table, err := deduction.LoadTable(a.Config.PricingTablePath)
	if err != nil {
		return err
	}

	intakeDB := databases.NewIntakeDatabase(dbHelper)
	sessionDB := databases.NewSessionDatabase(dbHelper)

	a.Upstream = upstream
	a.Intakes = intake.New(intake.Options{
		Intakes:  intakeDB,
		Sessions: sessionDB,
		Backend:  upstream,
		Images:   store,
		Notifier: mailer.New(newSender(a.Config)),
		Engine:   deduction.New(table),
		// a request may wait on the limiter before its upstream call starts
		OrphanAfter: 2*a.Config.BackendTimeout + a.Config.RequestTimeout,
	})
	secret, err := jwtSecret(a.Config)
	if err != nil {
		return err
	}
	a.Tokens = api.NewAuth(secret, a.Intakes)
	a.Resolver = location.NewResolver(upstream)
	a.Resets = NewResetFlows()
	a.Metrics = api.NewMetrics()
	a.Scheduler = scheduler.NewScheduler(intakeDB, sessionDB, a.Resets, a.Config.PurgeSchedule, a.Config.IntakeMaxAge)

	// initialize api router
	a.initializeRoutes()
	return nil
}

// Close waits for pending notifications and disconnects from the database
func (a *App) Close(ctx context.Context) error {
	if a.Intakes != nil {
		a.Intakes.Wait()
	}
	if a.client == nil {
		return nil
	}
	return a.client.Disconnect(ctx)
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func newImageStore(conf config.Config, upstream images.Uploader) (images.Store, error) {
	switch conf.ImageStore {
	case "cloudinary":
		return images.NewCloudinaryStore(conf.CloudinaryCloudName, conf.CloudinaryAPIKey, conf.CloudinaryAPISecret, conf.CloudinaryFolder)
	case "backend", "":
		return images.BackendStore{Client: upstream}, nil
	}
	return nil, fmt.Errorf("unknown image store %q", conf.ImageStore)
}

func newSender(conf config.Config) mailer.Sender {
	if conf.SendGridAPIKey == "" {
		zap.S().Warn("SENDGRID_API_KEY is not set, auction emails are logged only")
		return mailer.Discard{}
	}
	return mailer.NewSendGrid(conf.SendGridAPIKey, conf.MailFromName, conf.MailFromEmail)
}

func jwtSecret(conf config.Config) (string, error) {
	if conf.JWTSecret != "" {
		return conf.JWTSecret, nil
	}
	if conf.IsProduction() {
		return "", fmt.Errorf("JWT_SECRET is not set")
	}
	zap.S().Warn("JWT_SECRET is not set, sessions will not survive a restart")
	return uuid.New().String(), nil
}
