package main

import (
	"fmt"

	"go.uber.org/zap"
)

//
// Mode is the running mode of the command, which decides how its logger is built.
//
type Mode string

const (
	Development Mode = "development"
	Production  Mode = "production"
)

//
// newLogger creates a sugared logger for the given mode and a flush function that should be called
// before exiting.
//
func newLogger(mode Mode) (*zap.SugaredLogger, func(), error) {
	var zapConfig zap.Config

	switch mode {
	case Production:
		zapConfig = zap.NewProductionConfig()
	case Development:
		zapConfig = zap.NewDevelopmentConfig()
	default:
		return nil, nil, fmt.Errorf("invalid running mode: %q", mode)
	}

	// Results go to stdout, so logs stay out of the way.
	zapConfig.OutputPaths = []string{"stderr"}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, nil, err
	}

	flush := func() {
		// Sync always fails on some terminals; there is nothing useful to do about it.
		_ = logger.Sync()
	}

	return logger.Sugar(), flush, nil
}
