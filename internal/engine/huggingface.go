package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultHuggingFaceURL is the HF Inference provider behind the
	// Inference Providers router.
	DefaultHuggingFaceURL = "https://router.huggingface.co/hf-inference"
	// DefaultHuggingFaceModel is a T5 model fine-tuned for grammar correction
	// on JFLEG. It expects the "grammar: " task prefix.
	DefaultHuggingFaceModel = "vennify/t5-base-grammar-correction"
)

// maxErrorBody bounds how much of a failed response ends up in an error.
const maxErrorBody = 1024

// Text2TextRequest is the text2text-generation payload understood by the
// Hugging Face Inference API and by model-hosting Lambdas.
type Text2TextRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters Text2TextParameters `json:"parameters"`
	Options    *Text2TextOptions   `json:"options,omitempty"`
}

// Text2TextParameters are the generation controls of a text2text request.
type Text2TextParameters struct {
	MaxLength int `json:"max_length"`
	NumBeams  int `json:"num_beams"`
}

// Text2TextOptions are Inference API request options.
type Text2TextOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// Text2TextOutput is one generated sequence.
type Text2TextOutput struct {
	GeneratedText string `json:"generated_text"`
}

type text2TextError struct {
	Error string `json:"error"`
}

// HuggingFaceEngine calls a text2text-generation model over HTTP.
type HuggingFaceEngine struct {
	client   *http.Client
	endpoint string
}

// NewHuggingFaceEngine creates an engine for model served under baseURL.
// An empty baseURL selects the HF Inference provider.
func NewHuggingFaceEngine(baseURL, model, token string, timeout time.Duration) *HuggingFaceEngine {
	if baseURL == "" {
		baseURL = DefaultHuggingFaceURL
	}
	if model == "" {
		model = DefaultHuggingFaceModel
	}

	return &HuggingFaceEngine{
		client: &http.Client{
			Transport: &AuthenticatedTransport{
				Base:  http.DefaultTransport,
				Token: token,
			},
			Timeout: timeout,
		},
		endpoint: strings.TrimSuffix(baseURL, "/") + "/models/" + model,
	}
}

func (e *HuggingFaceEngine) Generate(ctx context.Context, prompt string, p Params) ([]string, error) {
	body, err := json.Marshal(newText2TextRequest(prompt, p, true))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read huggingface response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr text2TextError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("huggingface API error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("huggingface API returned status %d: %s", resp.StatusCode, truncate(string(respBody), maxErrorBody))
	}

	return decodeText2TextOutputs(respBody)
}

func newText2TextRequest(prompt string, p Params, wait bool) Text2TextRequest {
	req := Text2TextRequest{
		Inputs: prompt,
		Parameters: Text2TextParameters{
			MaxLength: p.MaxLength,
			NumBeams:  p.NumBeams,
		},
	}
	if wait {
		req.Options = &Text2TextOptions{WaitForModel: true}
	}
	return req
}

// decodeText2TextOutputs parses a list of generated sequences, keeping the
// backend's order.
func decodeText2TextOutputs(data []byte) ([]string, error) {
	var outputs []Text2TextOutput
	if err := json.Unmarshal(data, &outputs); err != nil {
		var apiErr text2TextError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("model error: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("failed to parse response: %w, content: %s", err, truncate(string(data), maxErrorBody))
	}

	if len(outputs) == 0 {
		return nil, ErrNoCandidates
	}

	candidates := make([]string, len(outputs))
	for i, o := range outputs {
		candidates[i] = o.GeneratedText
	}
	return candidates, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
