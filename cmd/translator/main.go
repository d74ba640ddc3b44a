// Package main provides the translator command line tool: one-shot translation, speech
// playback and an interactive session driven by local speech engines.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Prachi290-pr/language-translator/cmd/translator/commands"
	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	"github.com/Prachi290-pr/language-translator/internal/services"
	"github.com/Prachi290-pr/language-translator/internal/speech"

	"github.com/spf13/cobra"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Keep diagnostics out of the terminal unless asked for
	if os.Getenv("SERVER_LOG_LEVEL") == "" {
		cfg.Server.LogLevel = "error"
	}

	// Disable all OpenTelemetry features for the CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	tp, mp, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "translator-cli", cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if provider, ok := tp.(interface{ Shutdown(context.Context) error }); ok {
			if err := provider.Shutdown(context.TODO()); err != nil {
				logger.Warn(ctx, "Error shutting down tracer provider", map[string]interface{}{"error": err.Error(), "provider": "tracer"})
			}
		}
		if mp != nil {
			if err := mp.Shutdown(context.TODO()); err != nil {
				logger.Warn(ctx, "Error shutting down meter provider", map[string]interface{}{"error": err.Error(), "provider": "meter"})
			}
		}
		_ = logger.Sync()
	}()

	runtime := &commands.Runtime{
		Config:     cfg,
		Logger:     logger,
		Translator: services.NewTranslationService(cfg, logger),
		Out:        os.Stdout,
	}
	if synth := speech.NewExecSynthesizer(&cfg.Speech, logger); synth.Available() {
		runtime.Synthesizer = synth
	}
	var recognizer serviceinterfaces.Recognizer = speech.NewExecRecognizer(&cfg.Speech, logger)
	runtime.Recognizer = recognizer

	// Create the root command
	rootCmd := &cobra.Command{
		Use:   "translator",
		Short: "Translate text and speak the result",
		Long: `Translate text and speak the result

Translates text through the configured translation service and speaks
translations with the configured speech engine. Run "translator repl"
for an interactive session with voice input.`,
		SilenceUsage: true,

		Run: func(cmd *cobra.Command, _ []string) {
			// Show help if no subcommand provided
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&runtime.Locale, "locale", "", "Language for messages, e.g. de or fr-CA")

	rootCmd.AddCommand(commands.LanguagesCommand(runtime))
	rootCmd.AddCommand(commands.TranslateCommand(runtime))
	rootCmd.AddCommand(commands.SpeakCommand(runtime))
	rootCmd.AddCommand(commands.ReplCommand(runtime))
	rootCmd.AddCommand(commands.VersionCommand(runtime))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
