package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new zap logger for the given environment. Unknown environments get the
// production logger.
func New(env string) (*zap.Logger, error) {
	switch env {
	case "local":
		return zap.NewExample(), nil
	case "development":
		return zap.NewDevelopment()
	default:
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg.Build()
	}
}
