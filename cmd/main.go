package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitormoschetta/go-grammar/internal/config"
	"github.com/vitormoschetta/go-grammar/internal/logging"
)

var (
	// Flags globais
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "grammar",
	Short: "Grammar Corrector - fix the grammar and spelling of English sentences",
	Long: `Grammar Corrector forwards a sentence, prefixed with "grammar: ", to a
sequence-to-sequence correction model and returns the model's correction.

Run "grammar serve" for the web page and JSON/MCP APIs, or
"grammar correct <sentence>" for a single correction.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintln(os.Stderr, "Warning: .env file not found or could not be loaded")
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "grammar.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, correctCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
