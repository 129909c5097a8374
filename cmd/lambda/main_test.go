package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitormoschetta/go-grammar/internal/config"
	"github.com/vitormoschetta/go-grammar/internal/model"
	"github.com/vitormoschetta/go-grammar/internal/service"
)

type stubCorrector struct {
	result string
	err    error
	calls  int
}

func (s *stubCorrector) Correct(context.Context, string) (string, error) {
	s.calls++
	return s.result, s.err
}

func TestHandle(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := &stubCorrector{result: "She doesn't like apples."}

		res := handle(context.Background(), c, model.CorrectionRequest{Text: "She dont like apples."})

		assert.Equal(t, "She doesn't like apples.", res.Corrected)
		assert.Equal(t, "She dont like apples.", res.Original)
		assert.Empty(t, res.Error)
	})

	t.Run("empty input", func(t *testing.T) {
		c := &stubCorrector{}

		res := handle(context.Background(), c, model.CorrectionRequest{Text: " \n"})

		assert.Equal(t, "Please enter a sentence to be corrected.", res.Error)
		assert.Zero(t, c.calls)
	})

	t.Run("engine failure", func(t *testing.T) {
		c := &stubCorrector{err: &service.EngineFailure{Description: "model unavailable", Err: errors.New("model unavailable")}}

		res := handle(context.Background(), c, model.CorrectionRequest{Text: "She dont like apples."})

		assert.Contains(t, res.Error, "model unavailable")
		assert.Equal(t, failureHint, res.Hint)
		assert.Empty(t, res.Corrected)
		assert.Equal(t, 1, c.calls)
	})
}

func TestIsWarmupEvent(t *testing.T) {
	tests := []struct {
		name            string
		event           string
		wantOK          bool
		wantConcurrency int
	}{
		{"warmup", `{"source":"warmup"}`, true, 0},
		{"warmup with concurrency", `{"source":"warmup","concurrency":3}`, true, 3},
		{"other source", `{"source":"aws.events"}`, false, 0},
		{"correction request", `{"text":"hello"}`, false, 0},
		{"not json", `hello`, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warmup, ok := IsWarmupEvent(json.RawMessage(tt.event))

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantConcurrency, warmup.Concurrency)
			}
		})
	}
}

type recordingInvoker struct {
	mu     sync.Mutex
	inputs []*lambdasdk.InvokeInput
	err    error
}

func (r *recordingInvoker) Invoke(_ context.Context, params *lambdasdk.InvokeInput, _ ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, params)
	return &lambdasdk.InvokeOutput{}, r.err
}

func TestSelfInvoke(t *testing.T) {
	client := &recordingInvoker{}

	require.NoError(t, selfInvoke(context.Background(), client, "grammar-corrector", 3))

	require.Len(t, client.inputs, 3)
	for _, in := range client.inputs {
		assert.Equal(t, "grammar-corrector", *in.FunctionName)
		assert.Equal(t, types.InvocationTypeEvent, in.InvocationType)

		var child WarmupEvent
		require.NoError(t, json.Unmarshal(in.Payload, &child))
		assert.Equal(t, WarmupSource, child.Source)
		assert.Zero(t, child.Concurrency, "children must not fan out again")
	}
}

func TestHandleWarmup_SelfInvokeFailure(t *testing.T) {
	t.Setenv("ENGINE_PROVIDER", "")
	client := &recordingInvoker{err: errors.New("access denied")}
	newInvoker := func(context.Context) (invoker, error) { return client, nil }

	res, err := HandleWarmup(context.Background(), &WarmupEvent{Source: WarmupSource, Concurrency: 2}, newInvoker)
	require.NoError(t, err)

	body := res.(map[string]interface{})["body"].(WarmupResponse)
	assert.Equal(t, "warm", body.Status)
	assert.Equal(t, 1, body.InstancesWarmed)
}

func TestNewLogger(t *testing.T) {
	t.Run("uses the configured level", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Logging.Level = "debug"

		l := newLogger(cfg, nil)

		assert.True(t, l.Core().Enabled(zap.DebugLevel))
	})

	t.Run("falls back to defaults when the config failed", func(t *testing.T) {
		l := newLogger(nil, errors.New("invalid ENGINE_MAX_CONCURRENT"))

		assert.False(t, l.Core().Enabled(zap.DebugLevel))
		assert.True(t, l.Core().Enabled(zap.InfoLevel))
	})
}
