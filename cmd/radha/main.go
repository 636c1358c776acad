// Package main is the entry point for the radha CLI: an AI learning
// assistant that answers from a local quantized model or a cloud completion
// API, preferring the local one.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"

	cfgPath   string
	modelFlag string
	verbose   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "radha",
		Short: "RADHA - AI-powered interactive learning assistant",
		Long: `RADHA is an interactive learning assistant for students and teachers.
It generates notes, quizzes, and study plans, solves doubts, grades code,
and runs practice sessions, answering from a local quantized model when one
is installed and falling back to a cloud completion API otherwise.

Run the API server:   radha serve
Interactive chat:     radha chat
One-shot question:    radha ask doubt "Why is the sky blue?"`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default: environment only)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "model backend: local, cloud, or auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newAskCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. Human-readable output on a terminal,
// debug level with --verbose.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
