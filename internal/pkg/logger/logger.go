package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"photoshare/internal/config"
)

// New builds the production zap logger described by cfg.
// An unparsable level falls back to info.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level := zap.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level = zap.InfoLevel
		}
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "json"
	zc.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}
	if len(cfg.ErrorPaths) > 0 {
		zc.ErrorOutputPaths = cfg.ErrorPaths
	}

	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return log, nil
}

// Sync flushes buffered entries. Errors from syncing stdout/stderr are not interesting.
func Sync(log *zap.Logger) {
	if log != nil {
		_ = log.Sync()
	}
}
