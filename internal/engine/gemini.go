package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// LLMEngine generates text through an ADK model such as Gemini.
type LLMEngine struct {
	llm      model.LLM
	timeout  time.Duration
	thinking *genai.ThinkingConfig
}

// NewGeminiEngine creates the Gemini model client.
func NewGeminiEngine(ctx context.Context, modelName, apiKey string, timeout time.Duration) (*LLMEngine, error) {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	llmModel, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	e := NewLLMEngine(llmModel, timeout)
	// Thinking tokens count against MaxOutputTokens. Flash models can turn
	// it off; Pro models reject a zero budget.
	if strings.Contains(modelName, "flash") {
		e.thinking = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)}
	}
	return e, nil
}

// NewLLMEngine wraps any ADK model.
func NewLLMEngine(llm model.LLM, timeout time.Duration) *LLMEngine {
	return &LLMEngine{llm: llm, timeout: timeout}
}

func (e *LLMEngine) Generate(ctx context.Context, prompt string, p Params) ([]string, error) {
	ctx, cancel := withTimeout(ctx, e.timeout)
	defer cancel()

	llmRequest := model.LLMRequest{
		Model: e.llm.Name(),
		Contents: []*genai.Content{
			{
				Role: "user",
				Parts: []*genai.Part{
					{Text: prompt},
				},
			},
		},
		// The ADK only converts the first candidate, so asking for
		// p.NumBeams would pay for candidates that are dropped.
		Config: &genai.GenerateContentConfig{
			MaxOutputTokens: int32(p.MaxLength),
			CandidateCount:  1,
			ThinkingConfig:  e.thinking,
		},
	}

	// Without streaming the model yields one complete response
	var candidates []string
	for response, err := range e.llm.GenerateContent(ctx, &llmRequest, false) {
		if err != nil {
			return nil, fmt.Errorf("gemini generation failed: %w", err)
		}
		if response == nil || response.Content == nil {
			continue
		}

		var text strings.Builder
		for _, part := range response.Content.Parts {
			if part != nil && part.Text != "" {
				text.WriteString(part.Text)
			}
		}
		candidates = append(candidates, text.String())
	}

	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	return candidates, nil
}
