package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIModel is used when no model name is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIEngine generates corrections with the Chat Completions API. It asks
// for NumBeams choices and returns them in the order the API lists them.
type OpenAIEngine struct {
	client *openai.Client
	model  openai.ChatModel
}

func NewOpenAIEngine(modelName, apiKey, baseURL string, timeout time.Duration) *OpenAIEngine {
	if modelName == "" {
		modelName = DefaultOpenAIModel
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

	client := openai.NewClient(opts...)
	return &OpenAIEngine{
		client: &client,
		model:  openai.ChatModel(modelName),
	}
}

func (e *OpenAIEngine) Generate(ctx context.Context, prompt string, p Params) ([]string, error) {
	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(int64(p.MaxLength)),
		N:                   openai.Int(int64(p.NumBeams)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoCandidates
	}

	candidates := make([]string, len(resp.Choices))
	for i, choice := range resp.Choices {
		candidates[i] = choice.Message.Content
	}
	return candidates, nil
}
