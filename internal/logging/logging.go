package logging

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Production emits JSON, development a
// human-readable console encoding.
func New(level string, production bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// StdLogger adapts l for libraries that only accept a *log.Logger (gorm).
func StdLogger(l *zap.Logger, name string) *log.Logger {
	return zap.NewStdLog(l.Named(name))
}
