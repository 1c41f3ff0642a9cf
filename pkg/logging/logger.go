// Package logging constructs the zap logger used across goal-engine.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a logger appropriate for the runtime environment.
// Production environments get JSON output at info level; everything else
// gets the human-readable development config at debug level.
func New(env string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	switch env {
	case "production", "staging":
		logger, err = zap.NewProduction()
	default:
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}
