package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitormoschetta/go-grammar/internal/engine"
	"github.com/vitormoschetta/go-grammar/internal/service"
)

var correctCmd = &cobra.Command{
	Use:   "correct [sentence]",
	Short: "Correct a single sentence",
	Long: `Corrects the sentence given as arguments, or read from stdin when no
arguments are given, and prints the correction.

Example:
  grammar correct "She dont like apples."
  echo "She dont like apples." | grammar correct`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSentence(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		e, err := engine.New(cmd.Context(), cfg.Engine)
		if err != nil {
			return err
		}

		return runCorrect(cmd.Context(), service.NewCorrectionService(e), text, cmd.OutOrStdout())
	},
}

type corrector interface {
	Correct(ctx context.Context, text string) (string, error)
}

func readSentence(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func runCorrect(ctx context.Context, c corrector, text string, out io.Writer) error {
	if _, err := service.Validate(text); err != nil {
		return err
	}

	corrected, err := c.Correct(ctx, text)
	if err != nil {
		var failure *service.EngineFailure
		if errors.As(err, &failure) && logger != nil {
			logger.Debug("engine failure", zap.Error(failure.Err))
		}
		return fmt.Errorf("an error occurred during correction: %w", err)
	}

	_, err = fmt.Fprintln(out, corrected)
	return err
}
