// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/FuriousFire05/secure-ai-chat/internal/logging"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/chat"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/components"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/styles"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the full-screen client",
		Long: `Start the full-screen client.

Keys:
  enter      send the typed message
  ctrl+o     upload an image (detection starts immediately)
  tab        switch between the input and the PII list
  space      toggle the item under the cursor (a: all, n: none)
  ctrl+r     send the redacted image with the typed message
  ctrl+s     save the redacted image as redacted.png
  ctrl+y     copy the last reply
  ctrl+l     clear the conversation
  ctrl+c     quit

Logs go to ~/.secure-ai-chat/secure-ai-chat.log unless log.file is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, a)
		},
	}
}

func runTUI(cmd *cobra.Command, a *app) error {
	if !isTerminal(cmd.OutOrStdout()) {
		return fmt.Errorf("the full-screen client needs a terminal; use \"chat\" for line mode")
	}

	path, err := a.cfg.LogPath()
	if err != nil {
		return err
	}
	log, closer, err := logging.NewFile(path, a.cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close()

	log.WithField("backend", a.cfg.Backend.URL).Info("starting tui")
	p := tea.NewProgram(newChatModel(a, log), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// newChatModel wires the chat screen to the configured service.
func newChatModel(a *app, log logrus.FieldLogger) chat.Model {
	theme := styles.NewTheme(a.cfg.UI.Theme)
	md := components.NewMarkdown(theme.GlamourStyle())
	md.MaxWidth = a.cfg.UI.WordWrap

	client := a.client(log)
	return chat.New(chat.Options{
		Orchestrator: a.orchestrator(),
		Backend:      client,
		Health:       client.Health,
		Upload:       a.uploads(),
		Theme:        theme,
		Markdown:     md,
		StartDir:     a.cfg.Upload.StartDir,
		Timeout:      a.cfg.Timeout(),
		Logger:       log,
	})
}
