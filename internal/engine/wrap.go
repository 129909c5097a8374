package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Lazy returns an Engine that runs load on first use and reuses its outcome
// for the lifetime of the process. load runs at most once even under
// concurrent first calls; a load error is returned to every caller.
func Lazy(load func() (Engine, error)) *LazyEngine {
	return &LazyEngine{load: sync.OnceValues(load)}
}

// LazyEngine is an engine loaded on first use.
type LazyEngine struct {
	load func() (Engine, error)
}

// Get returns the loaded engine, loading it if needed.
func (l *LazyEngine) Get() (Engine, error) {
	return l.load()
}

func (l *LazyEngine) Generate(ctx context.Context, prompt string, p Params) ([]string, error) {
	e, err := l.load()
	if err != nil {
		return nil, fmt.Errorf("failed to load engine: %w", err)
	}
	return e.Generate(ctx, prompt, p)
}

// Limit serializes access to engines that are not safe for concurrent use:
// at most n Generate calls run at once. n <= 0 returns e unchanged.
func Limit(e Engine, n int64) Engine {
	if n <= 0 {
		return e
	}
	return &limitedEngine{
		next: e,
		sem:  semaphore.NewWeighted(n),
	}
}

type limitedEngine struct {
	next Engine
	sem  *semaphore.Weighted
}

func (l *limitedEngine) Generate(ctx context.Context, prompt string, p Params) ([]string, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for engine: %w", err)
	}
	defer l.sem.Release(1)

	return l.next.Generate(ctx, prompt, p)
}
