// SPDX-License-Identifier: MIT

// Package logging builds the zap loggers used by the deprisk binaries.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Modes accepted by New.
const (
	ModeDevelopment = "dev"
	ModeProduction  = "prod"
)

// New returns a zap logger for mode: "dev"/"development" gives a console
// logger at debug level, "prod"/"production" a JSON logger at info level.
// An empty mode means development.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeDevelopment, "development":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case ModeProduction, "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	default:
		return nil, fmt.Errorf("logging: unknown mode %q", mode)
	}
	cfg.DisableStacktrace = true

	return cfg.Build()
}
