// Package main is the entry point for the grammar corrector Lambda function.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/vitormoschetta/go-grammar/internal/config"
	"github.com/vitormoschetta/go-grammar/internal/engine"
	"github.com/vitormoschetta/go-grammar/internal/logging"
	"github.com/vitormoschetta/go-grammar/internal/model"
	"github.com/vitormoschetta/go-grammar/internal/service"
)

const failureHint = "Please try a different sentence or refresh the page."

type corrector interface {
	Correct(ctx context.Context, text string) (string, error)
}

// loadConfig reads the environment once per Lambda instance.
var loadConfig = sync.OnceValues(func() (*config.Config, error) {
	return config.Load("")
})

// loadCorrector builds the correction service once per Lambda instance.
var loadCorrector = sync.OnceValues(func() (corrector, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	e, err := engine.New(context.Background(), cfg.Engine)
	if err != nil {
		return nil, err
	}
	return service.NewCorrectionService(e), nil
})

var logger = newLogger(loadConfig())

// newLogger honours LOG_LEVEL and LOG_DEVELOPMENT. A config that failed to
// load falls back to the default logging settings; the load error is
// reported again on the first correction.
func newLogger(cfg *config.Config, err error) *zap.Logger {
	logCfg := config.DefaultConfig().Logging
	if err == nil {
		logCfg = cfg.Logging
	}

	l, err := logging.New(logCfg, false)
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func main() {
	lambda.Start(handleRequest)
}

func handleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// Warmup detection (MUST be first - before any other processing)
	if warmup, ok := IsWarmupEvent(event); ok {
		return HandleWarmup(ctx, warmup, newSelfInvoker)
	}

	var req model.CorrectionRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}

	c, err := loadCorrector()
	if err != nil {
		logger.Error("failed to load correction engine", zap.Error(err))
		return &model.CorrectionResponse{
			Original: req.Text,
			Error:    "An error occurred during correction: " + err.Error(),
			Hint:     failureHint,
		}, nil
	}

	return handle(ctx, c, req), nil
}

// handle runs one correction. Failures are reported in the response body,
// not as Lambda errors, so callers always get a CorrectionResponse.
func handle(ctx context.Context, c corrector, req model.CorrectionRequest) *model.CorrectionResponse {
	if _, err := service.Validate(req.Text); err != nil {
		return &model.CorrectionResponse{
			Original: req.Text,
			Error:    "Please enter a sentence to be corrected.",
		}
	}

	corrected, err := c.Correct(ctx, req.Text)
	if err != nil {
		var failure *service.EngineFailure
		if errors.As(err, &failure) {
			logger.Warn("correction failed", zap.Error(failure.Err))
		}
		return &model.CorrectionResponse{
			Original: req.Text,
			Error:    "An error occurred during correction: " + err.Error(),
			Hint:     failureHint,
		}
	}

	return &model.CorrectionResponse{
		Original:  req.Text,
		Corrected: corrected,
	}
}
