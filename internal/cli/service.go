// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/FuriousFire05/secure-ai-chat/internal/backend"
	"github.com/FuriousFire05/secure-ai-chat/internal/fakebackend"
)

// =============================================================================
// HEALTH
// =============================================================================

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the PII service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := a.client(a.log)
			started := time.Now()
			if err := client.Health(cmd.Context()); err != nil {
				switch {
				case backend.IsUnreachable(err):
					return fmt.Errorf("%s is unreachable: %w", client.BaseURL(), err)
				case backend.IsTimeout(err):
					return fmt.Errorf("%s did not answer in time: %w", client.BaseURL(), err)
				}
				return fmt.Errorf("health check: %w", err)
			}
			a.printer(cmd).ok("%s is healthy (%s)", client.BaseURL(), time.Since(started).Round(time.Millisecond))
			return nil
		},
	}
}

// =============================================================================
// MOCK BACKEND
// =============================================================================

func newMockBackendCmd(a *app) *cobra.Command {
	var (
		addr string
		opts fakebackend.Options
	)
	cmd := &cobra.Command{
		Use:   "mock-backend",
		Short: "Serve a fake PII service for local testing",
		Long: `Serve a fake PII service under /api for local testing.

The fake answers every contract of the real service: chat replies echo the
message, detection reports three canned items (ids 3, 7 and 12), and
redact-and-chat echoes the uploaded image as the redacted one.

Examples:
  secure-ai-chat mock-backend
  secure-ai-chat mock-backend --addr 127.0.0.1:9000 --delay 2s
  secure-ai-chat mock-backend --fail-detect`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts.Logger = a.log
			srv := fakebackend.New(opts)
			a.printer(cmd).ok("mock backend on http://%s%s (ctrl+c to stop)", addr, fakebackend.APIPrefix)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", fakebackend.DefaultAddr, "listen address")
	f.StringVar(&opts.ChatReply, "reply", "", "fixed chat reply (default echoes the message)")
	f.DurationVar(&opts.Delay, "delay", 0, "delay before every response")
	f.BoolVar(&opts.FailChat, "fail-chat", false, "answer /chat with 500")
	f.BoolVar(&opts.FailDetect, "fail-detect", false, "answer /pii/detect with 500")
	f.BoolVar(&opts.FailRedact, "fail-redact", false, "answer /pii/redact-and-chat with 500")
	return cmd
}
