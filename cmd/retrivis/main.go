// Command retrivis is a terminal client for the retrivis backend. It
// exposes projects, chats, document ingestion, and retrieval settings
// as subcommands, sharing the same API layer as the console daemon.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/backend"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/config"
	"github.com/jawahar-singamsetty/retrivis.ai-client/pkg/tokensource"
)

const version = "0.3.0"

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	BackendURL string
	Token      string
	Profile    string
	LogLevel   string
}

var rootOpts rootOptions

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:     "retrivis",
		Short:   "Retrivis RAG workspace client",
		Long:    "Manage retrivis projects, chats, knowledge-base documents, and retrieval settings from the terminal.",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&rootOpts.BackendURL, "backend", "", "Backend base URL (overrides RETRIVIS_BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&rootOpts.Token, "token", "", "Bearer token (overrides RETRIVIS_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&rootOpts.Profile, "profile", "", "Path to a YAML profile file")
	rootCmd.PersistentFlags().StringVar(&rootOpts.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newProjectsCmd())
	rootCmd.AddCommand(newChatsCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newDocsCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newFeedbackCmd())

	return rootCmd.Execute()
}

// newClient builds a backend client from the environment, the profile,
// and any persistent flag overrides.
func newClient() (*backend.Client, error) {
	if rootOpts.Profile != "" {
		os.Setenv("RETRIVIS_PROFILE", rootOpts.Profile)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if rootOpts.BackendURL != "" {
		cfg.BackendURL = rootOpts.BackendURL
	}
	if rootOpts.Token != "" {
		cfg.Token = rootOpts.Token
	}
	if rootOpts.LogLevel != "" {
		cfg.LogLevel = rootOpts.LogLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	var tokens tokensource.Source
	if rootOpts.Token != "" {
		tokens = tokensource.Static(rootOpts.Token)
	} else {
		tokens = cfg.TokenSource()
	}

	return backend.NewClient(cfg.BackendURL, tokens, logger), nil
}

// printJSON renders any API result as indented JSON on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
