package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestReadSentence(t *testing.T) {
	got, err := readSentence(strings.NewReader("ignored"), []string{"She", "dont", "like", "apples."})
	require.NoError(t, err)
	assert.Equal(t, "She dont like apples.", got)

	got, err = readSentence(strings.NewReader("from stdin\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin\n", got)
}

func TestRunCorrect(t *testing.T) {
	t.Run("prints the correction", func(t *testing.T) {
		c := &stubCorrector{result: "She doesn't like apples."}
		var out bytes.Buffer

		require.NoError(t, runCorrect(context.Background(), c, "She dont like apples.", &out))
		assert.Equal(t, "She doesn't like apples.\n", out.String())
	})

	t.Run("empty input", func(t *testing.T) {
		c := &stubCorrector{}
		var out bytes.Buffer

		err := runCorrect(context.Background(), c, "  ", &out)
		assert.ErrorIs(t, err, service.ErrEmptyInput)
		assert.Zero(t, c.calls)
		assert.Empty(t, out.String())
	})

	t.Run("engine failure", func(t *testing.T) {
		c := &stubCorrector{err: &service.EngineFailure{Description: "model unavailable", Err: errors.New("model unavailable")}}
		var out bytes.Buffer

		err := runCorrect(context.Background(), c, "She dont like apples.", &out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model unavailable")
		assert.Equal(t, 1, c.calls)
	})
}
