package logger

import (
	"fmt"

	"github.com/gdugdh24/mpit2026-pools/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON logger in production and a console logger otherwise.
func New(server *config.ServerConfig, logging *config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(logging.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var cfg zap.Config
	if server.IsProduction() {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log.With(zap.String("service", "pool-builder")), nil
}
