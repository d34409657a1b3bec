// Package logging constructs the zap logger threaded through the server,
// the dispatcher, and the engine, mirroring the *zap.SugaredLogger
// plumbing used across the engine/storage layers of the retrieval corpus
// rather than a package-level global logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
)

// New builds a production (JSON, info level) logger, or a development
// (human-readable, debug level) one when verbose is true.
func New(verbose bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, dberr.Wrap(dberr.ConfigurationError, "build logger", err)
	}
	return logger.Sugar(), nil
}

// LevelFor maps a dberr.Kind to the log level the dispatcher should use
// when reporting a failed request (§10.4): malformed input is a warning,
// I/O trouble is an error, and a configuration error is fatal at startup.
func LevelFor(kind dberr.Kind) zapcore.Level {
	switch kind {
	case dberr.MalformedRequest, dberr.MalformedRecord:
		return zapcore.WarnLevel
	case dberr.IoFailure:
		return zapcore.ErrorLevel
	case dberr.ConfigurationError:
		return zapcore.FatalLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Log reports err on logger at the level LevelFor selects for its kind
// (or ErrorLevel for an error that isn't a *dberr.Error), tagged with op.
// A kind that LevelFor maps to FatalLevel is logged at ErrorLevel; Log
// never calls Fatalw.
func Log(logger *zap.SugaredLogger, op string, err error) {
	kind := dberr.IoFailure
	if de, ok := err.(*dberr.Error); ok {
		kind = de.Kind
	}
	switch LevelFor(kind) {
	case zapcore.WarnLevel:
		logger.Warnw(op, "error", err)
	case zapcore.FatalLevel:
		logger.Errorw(op, "error", err)
	default:
		logger.Errorw(op, "error", err)
	}
}
