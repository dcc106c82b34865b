package setup

import (
	"fmt"

	"github.com/crowdsift/crowdsift/internal/setup/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLoggers builds the main and database loggers. The database logger
// carries its own name so query logs are filterable from engine logs.
func newLoggers(cfg *config.Debug) (*zap.Logger, *zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, logger.Named("database"), nil
}
