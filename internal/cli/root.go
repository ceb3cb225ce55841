// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/FuriousFire05/secure-ai-chat/internal/backend"
	"github.com/FuriousFire05/secure-ai-chat/internal/config"
	"github.com/FuriousFire05/secure-ai-chat/internal/logging"
	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/orchestrator"
	"github.com/FuriousFire05/secure-ai-chat/internal/upload"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// APPLICATION CONTEXT
// =============================================================================

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	backendURL string
	logLevel   string
	theme      string
}

// app carries what PersistentPreRunE resolved to the command handlers.
type app struct {
	flags globalFlags
	cfg   *config.Config
	log   *logrus.Logger
}

// load resolves the effective configuration. Precedence: defaults, config
// file, .env and environment, then flags.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}
	if a.flags.backendURL != "" {
		cfg.Backend.URL = a.flags.backendURL
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.theme != "" {
		cfg.UI.Theme = a.flags.theme
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	config.SetGlobal(cfg)
	return nil
}

func (a *app) client(log logrus.FieldLogger) *backend.Client {
	return backend.NewClient(&backend.ClientConfig{
		BaseURL:           a.cfg.Backend.URL,
		Timeout:           a.cfg.Timeout(),
		RequestsPerSecond: a.cfg.Backend.RequestsPerSecond,
		UserAgent:         "secure-ai-chat/" + Version,
		Logger:            log,
	})
}

func (a *app) orchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(orchestrator.Config{
		Policy:          model.PolicyFor(a.cfg.Redaction.RedactByDefault),
		DiscardStale:    a.cfg.Redaction.DiscardStaleResponses,
		MaxBytes:        a.cfg.Upload.MaxBytes,
		TimestampLayout: a.cfg.UI.TimestampFormat,
	})
}

func (a *app) uploads() *upload.Control {
	return upload.NewControl(a.cfg.Upload.MaxBytes, a.cfg.Upload.AllowedExtensions)
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "secure-ai-chat",
		Short: "Chat with an AI about images after redacting their PII",
		Long: `secure-ai-chat sends images to a PII detection service, lets you choose
which detected items to redact, and chats with the AI about the redacted image.

Without a subcommand the full-screen client starts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, a)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "config file (default ~/.secure-ai-chat/config.toml)")
	pf.StringVar(&a.flags.backendURL, "backend", "", "PII service base URL, e.g. http://localhost:8000/api")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&a.flags.theme, "theme", "", "color theme (auto, dark, light)")

	root.AddCommand(
		newTUICmd(a),
		newChatCmd(a),
		newAskCmd(a),
		newDetectCmd(a),
		newRedactCmd(a),
		newHealthCmd(a),
		newMockBackendCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), failMark()+" "+err.Error())
		os.Exit(1)
	}
}
