// Package service implements grammar correction on top of a text-generation
// engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vitormoschetta/go-grammar/internal/engine"
)

const (
	// TaskPrefix tells the model which task to perform.
	TaskPrefix = "grammar: "
	// MaxLength caps the generated correction, in tokens.
	MaxLength = 200
	// NumBeams is the beam-search width used for every correction.
	NumBeams = 5
)

// ErrEmptyInput is reported when the text is empty after trimming.
var ErrEmptyInput = errors.New("please enter a sentence to be corrected")

// EngineFailure is any failure raised by the engine while correcting.
type EngineFailure struct {
	Description string
	Err         error
}

func (e *EngineFailure) Error() string {
	return e.Description
}

func (e *EngineFailure) Unwrap() error {
	return e.Err
}

// Validate trims text and reports ErrEmptyInput when nothing is left.
// Callers check it before calling Correct.
func Validate(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptyInput
	}
	return trimmed, nil
}

// CorrectionService turns raw user text into a corrected sentence. It holds
// no state besides the shared engine: every call is one engine invocation.
type CorrectionService struct {
	engine engine.Engine
}

func NewCorrectionService(e engine.Engine) *CorrectionService {
	return &CorrectionService{engine: e}
}

// Correct returns the model's first candidate for the trimmed text, verbatim.
func (s *CorrectionService) Correct(ctx context.Context, text string) (result string, err error) {
	trimmed, err := Validate(text)
	if err != nil {
		return "", err
	}

	defer func() {
		if r := recover(); r != nil {
			result = ""
			err = &EngineFailure{
				Description: fmt.Sprintf("engine panic: %v", r),
				Err:         fmt.Errorf("panic: %v", r),
			}
		}
	}()

	candidates, err := s.engine.Generate(ctx, TaskPrefix+trimmed, engine.Params{
		MaxLength: MaxLength,
		NumBeams:  NumBeams,
	})
	if err != nil {
		return "", &EngineFailure{Description: describe(err), Err: err}
	}
	if len(candidates) == 0 {
		return "", &EngineFailure{Description: engine.ErrNoCandidates.Error(), Err: engine.ErrNoCandidates}
	}

	return candidates[0], nil
}

func describe(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fmt.Sprintf("%T", err)
}
