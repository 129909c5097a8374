// Package engine provides the text-generation backends used to correct
// sentences. An Engine is an opaque capability: it receives a prompt and
// generation controls and returns the generated candidates, best first.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitormoschetta/go-grammar/internal/config"
)

// Params are the generation controls passed with every prompt.
type Params struct {
	// MaxLength caps the generated output, in tokens.
	MaxLength int
	// NumBeams is the beam-search width (or the number of candidates for
	// backends that sample instead of beam searching).
	NumBeams int
}

// Engine generates text for a prompt.
type Engine interface {
	Generate(ctx context.Context, prompt string, p Params) ([]string, error)
}

// ErrNoCandidates is returned by backends that answered without any text.
var ErrNoCandidates = errors.New("engine returned no candidates")

// New builds the engine selected by cfg.Provider, wrapped with the
// configured concurrency limit.
func New(ctx context.Context, cfg config.EngineConfig) (Engine, error) {
	timeout := cfg.GetTimeout()

	var (
		e   Engine
		err error
	)
	switch cfg.Provider {
	case config.ProviderHuggingFace:
		e = NewHuggingFaceEngine(cfg.BaseURL, cfg.Model, cfg.APIKey, timeout)
	case config.ProviderGemini:
		e, err = NewGeminiEngine(ctx, cfg.Model, cfg.APIKey, timeout)
	case config.ProviderOpenAI:
		e = NewOpenAIEngine(cfg.Model, cfg.APIKey, cfg.BaseURL, timeout)
	case config.ProviderAnthropic:
		e = NewAnthropicEngine(cfg.Model, cfg.APIKey, cfg.BaseURL, timeout)
	case config.ProviderLambda:
		e, err = NewLambdaEngine(ctx, cfg.FunctionName, timeout)
	default:
		return nil, fmt.Errorf("unknown engine provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s engine: %w", cfg.Provider, err)
	}

	return Limit(e, int64(cfg.MaxConcurrent)), nil
}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
