package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/linesmerrill/vehicle-intake-api/logging"
)

// Config holds the project config values
type Config struct {
	Env          string `env:"ENV" envDefault:"local"`
	Port         string `env:"PORT" envDefault:"8080"`
	BaseURL      string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	URL          string `env:"DB_URI" envDefault:"mongodb://127.0.0.1:27017"`
	DatabaseName string `env:"DB_NAME" envDefault:"vehicle-intake"`
	JWTSecret    string `env:"JWT_SECRET"`

	BackendURL       string        `env:"BACKEND_URL" envDefault:"http://localhost:5000/api"`
	BackendTimeout   time.Duration `env:"BACKEND_TIMEOUT" envDefault:"30s"`
	BackendRateLimit float64       `env:"BACKEND_RATE_LIMIT" envDefault:"5"`
	BackendBurst     int           `env:"BACKEND_BURST" envDefault:"5"`
	QueryTimeout     time.Duration `env:"QUERY_TIMEOUT" envDefault:"10s"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" envDefault:"45s"`

	PricingTablePath string        `env:"PRICING_TABLE_PATH"`
	ZipDebounce      time.Duration `env:"ZIP_DEBOUNCE" envDefault:"500ms"`

	// ImageStore selects where photos go: "backend" or "cloudinary"
	ImageStore          string `env:"IMAGE_STORE" envDefault:"backend"`
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `env:"CLOUDINARY_FOLDER" envDefault:"vehicle-intake"`

	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	MailFromName   string `env:"MAIL_FROM_NAME" envDefault:"Vehicle Intake"`
	MailFromEmail  string `env:"MAIL_FROM_EMAIL" envDefault:"no-reply@example.com"`

	PurgeSchedule string        `env:"PURGE_SCHEDULE" envDefault:"0 * * * *"`
	IntakeMaxAge  time.Duration `env:"INTAKE_MAX_AGE" envDefault:"72h"`
}

// New sets up all config related services. A .env file in the working directory is loaded
// first when one exists.
func New() (*Config, error) {
	_ = godotenv.Load()

	conf, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	//setup zap logger and replace default logger
	logger, err := logging.New(conf.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	_ = zap.ReplaceGlobals(logger)

	return &conf, nil
}

// IsProduction reports whether ENV is production
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With("error", err).Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"response": "%s, %v"}`, message, err)))
}
