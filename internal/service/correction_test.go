package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vitormoschetta/go-grammar/internal/engine"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type generateCall struct {
	prompt string
	params engine.Params
}

type fakeEngine struct {
	mu         sync.Mutex
	calls      []generateCall
	candidates []string
	err        error
	panicWith  any
}

func (f *fakeEngine) Generate(_ context.Context, prompt string, p engine.Params) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, generateCall{prompt: prompt, params: p})
	f.mu.Unlock()

	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.candidates, f.err
}

func TestCorrect_PromptIsPrefixedTrimmedInput(t *testing.T) {
	tests := []struct {
		input      string
		wantPrompt string
	}{
		{"She dont like apples.", "grammar: She dont like apples."},
		{"  padded input \n", "grammar: padded input"},
		{"\tinner   spacing kept ", "grammar: inner   spacing kept"},
		{"ünïcödé text", "grammar: ünïcödé text"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			fake := &fakeEngine{candidates: []string{"ok"}}
			svc := NewCorrectionService(fake)

			_, err := svc.Correct(context.Background(), tt.input)
			require.NoError(t, err)

			require.Len(t, fake.calls, 1)
			assert.Equal(t, tt.wantPrompt, fake.calls[0].prompt)
		})
	}
}

func TestCorrect_FixedGenerationParams(t *testing.T) {
	fake := &fakeEngine{candidates: []string{"ok"}}
	svc := NewCorrectionService(fake)

	inputs := []string{"a", "A much longer sentence that goes on and on for a while.", "42"}
	for _, in := range inputs {
		_, err := svc.Correct(context.Background(), in)
		require.NoError(t, err)
	}

	require.Len(t, fake.calls, len(inputs))
	for _, call := range fake.calls {
		assert.Equal(t, engine.Params{MaxLength: 200, NumBeams: 5}, call.params)
	}
}

func TestCorrect_EmptyInputNeverReachesEngine(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t "} {
		fake := &fakeEngine{candidates: []string{"unused"}}
		svc := NewCorrectionService(fake)

		_, err := svc.Correct(context.Background(), input)

		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Empty(t, fake.calls)
	}
}

func TestValidate(t *testing.T) {
	got, err := Validate("  fine  ")
	require.NoError(t, err)
	assert.Equal(t, "fine", got)

	_, err = Validate(" ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestCorrect_FirstCandidateVerbatim(t *testing.T) {
	fake := &fakeEngine{candidates: []string{"  She doesn't like apples. ", "She does not like apples.", "She dislikes apples."}}
	svc := NewCorrectionService(fake)

	got, err := svc.Correct(context.Background(), "She dont like apples.")
	require.NoError(t, err)

	assert.Equal(t, "  She doesn't like apples. ", got)
}

func TestCorrect_EngineFailure(t *testing.T) {
	fake := &fakeEngine{err: errors.New("model unavailable")}
	svc := NewCorrectionService(fake)

	_, err := svc.Correct(context.Background(), "She dont like apples.")

	var failure *EngineFailure
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Description, "model unavailable")
	assert.ErrorIs(t, err, fake.err)
	assert.Len(t, fake.calls, 1, "no retry")
}

func TestCorrect_NoCandidatesIsFailure(t *testing.T) {
	fake := &fakeEngine{candidates: nil}
	svc := NewCorrectionService(fake)

	_, err := svc.Correct(context.Background(), "hello")

	var failure *EngineFailure
	require.ErrorAs(t, err, &failure)
	assert.NotEmpty(t, failure.Description)
	assert.ErrorIs(t, err, engine.ErrNoCandidates)
}

func TestCorrect_EnginePanicIsFailure(t *testing.T) {
	fake := &fakeEngine{panicWith: "out of memory"}
	svc := NewCorrectionService(fake)

	got, err := svc.Correct(context.Background(), "hello")

	assert.Empty(t, got)
	var failure *EngineFailure
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Description, "out of memory")
	assert.Len(t, fake.calls, 1)
}

func TestCorrect_NoMemoization(t *testing.T) {
	fake := &fakeEngine{candidates: []string{"Hello."}}
	svc := NewCorrectionService(fake)

	for i := 0; i < 2; i++ {
		_, err := svc.Correct(context.Background(), "hello")
		require.NoError(t, err)
	}

	assert.Len(t, fake.calls, 2)
}

func TestCorrect_ConcurrentCalls(t *testing.T) {
	fake := &fakeEngine{candidates: []string{"ok"}}
	svc := NewCorrectionService(fake)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Correct(context.Background(), "concurrent")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, fake.calls, 20)
}
