package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model name is configured.
const DefaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicEngine generates corrections with the Messages API. The API has
// no notion of multiple candidates, so NumBeams is not forwarded and a
// single candidate is returned.
type AnthropicEngine struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewAnthropicEngine(modelName, apiKey, baseURL string, timeout time.Duration) *AnthropicEngine {
	if modelName == "" {
		modelName = DefaultAnthropicModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicEngine{
		client: &client,
		model:  anthropic.Model(modelName),
	}
}

func (e *AnthropicEngine) Generate(ctx context.Context, prompt string, p Params) ([]string, error) {
	resp, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     e.model,
		MaxTokens: int64(p.MaxLength),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	var text strings.Builder
	found := false
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
			found = true
		}
	}
	if !found {
		return nil, ErrNoCandidates
	}

	return []string{text.String()}, nil
}
