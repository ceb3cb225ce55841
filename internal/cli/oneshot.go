// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/orchestrator"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/styles"
	"github.com/FuriousFire05/secure-ai-chat/internal/util"
)

func (a *app) printer(cmd *cobra.Command) *printer {
	theme := styles.NewTheme(a.cfg.UI.Theme)
	return newPrinter(cmd.OutOrStdout(), theme.GlamourStyle(), a.cfg.UI.WordWrap)
}

// =============================================================================
// ASK
// =============================================================================

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one text-only message and print the reply",
		Long: `Send one text-only message and print the reply.

The words are joined with single spaces and passed through verbatim.

Examples:
  secure-ai-chat ask "What does GDPR say about names?"
  secure-ai-chat ask --backend http://10.0.0.5:8000/api hello`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("message is empty")
			}
			resp, err := a.client(a.log).Chat(cmd.Context(), message)
			if err != nil {
				return fmt.Errorf("chat: %w", err)
			}
			reply := resp.Reply
			if reply == "" {
				reply = orchestrator.NoReplyText
			}
			a.printer(cmd).reply(reply)
			return nil
		},
	}
}

// =============================================================================
// DETECT
// =============================================================================

func newDetectCmd(a *app) *cobra.Command {
	var (
		asJSON   bool
		showText bool
	)
	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "List the PII the service detects in an image",
		Long: `List the PII the service detects in an image.

Item ids are what "redact --select" expects.

Examples:
  secure-ai-chat detect receipt.png
  secure-ai-chat detect receipt.png --json | jq '.items[].type'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.uploads().Open(expandHome(args[0]))
			if err != nil {
				return err
			}
			resp, err := a.client(a.log).Detect(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("detect: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			p := a.printer(cmd)
			sel := model.Selection{}.ReplaceAll(resp.Items, model.PolicyFor(a.cfg.Redaction.RedactByDefault))
			p.items(sel.Items())
			if showText {
				p.detectedText(resp.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw service response")
	cmd.Flags().BoolVar(&showText, "text", false, "also print the detected text")
	return cmd
}

// =============================================================================
// REDACT
// =============================================================================

type redactOptions struct {
	selectIDs []string
	all       bool
	none      bool
	message   string
	output    string
}

func newRedactCmd(a *app) *cobra.Command {
	var opts redactOptions
	cmd := &cobra.Command{
		Use:   "redact <image>",
		Short: "Detect PII, redact the chosen items and ask the AI about the image",
		Long: `Detect PII in an image, redact the chosen items and send the redacted
image to the AI with a message.

Without --select the redact_by_default setting decides (every item by default).

Examples:
  secure-ai-chat redact id-card.png -o redacted.png
  secure-ai-chat redact id-card.png --select 3,12 -m "Is this card expired?"
  secure-ai-chat redact id-card.png --none -m "Describe the layout"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRedact(cmd, a, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&opts.selectIDs, "select", nil, "comma-separated item ids to redact")
	f.BoolVar(&opts.all, "all", false, "redact every detected item")
	f.BoolVar(&opts.none, "none", false, "redact nothing")
	f.StringVarP(&opts.message, "message", "m", "", fmt.Sprintf("message sent with the image (default %q)", orchestrator.ImagePlaceholder))
	f.StringVarP(&opts.output, "output", "o", "", "write the redacted image to this file")
	cmd.MarkFlagsMutuallyExclusive("select", "all", "none")
	return cmd
}

func runRedact(cmd *cobra.Command, a *app, path string, opts redactOptions) error {
	ctx := cmd.Context()
	client := a.client(a.log)

	f, err := a.uploads().Open(expandHome(path))
	if err != nil {
		return err
	}
	detected, err := client.Detect(ctx, f)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	sel, err := chooseItems(detected.Items, opts, model.PolicyFor(a.cfg.Redaction.RedactByDefault))
	if err != nil {
		return err
	}

	p := a.printer(cmd)
	p.items(sel.Items())
	p.printf("\n")

	message := opts.message
	if strings.TrimSpace(message) == "" {
		message = orchestrator.ImagePlaceholder
	}
	resp, err := client.RedactAndChat(ctx, f, message, sel.SelectedIDs())
	if err != nil {
		return fmt.Errorf("redact-and-chat: %w", err)
	}

	reply := resp.Reply
	if reply == "" {
		reply = orchestrator.NoReplyText
	}
	p.reply(reply)

	if opts.output == "" {
		return nil
	}
	if resp.RedactedImageBase64 == "" {
		p.warn("the service returned no redacted image; %s not written", opts.output)
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(resp.RedactedImageBase64)
	if err != nil {
		return fmt.Errorf("decode redacted image: %w", err)
	}
	if err := util.WriteFileAtomic(expandHome(opts.output), data, 0o644, 0o755); err != nil {
		return err
	}
	p.ok("wrote %s", opts.output)
	return nil
}

// chooseItems builds the selection the flags ask for.
func chooseItems(items []model.PiiItem, opts redactOptions, policy model.SelectionPolicy) (model.Selection, error) {
	sel := model.Selection{}.ReplaceAll(items, policy)
	switch {
	case opts.all:
		return sel.SetAllSelected(true), nil
	case opts.none:
		return sel.SetAllSelected(false), nil
	case len(opts.selectIDs) == 0:
		return sel, nil
	}

	sel = sel.SetAllSelected(false)
	for _, raw := range opts.selectIDs {
		id := model.ParseItemID(strings.TrimSpace(raw))
		item, ok := sel.Lookup(id)
		if !ok {
			return model.Selection{}, fmt.Errorf("no detected item with id %s", raw)
		}
		if !item.Selected {
			sel = sel.Toggle(id)
		}
	}
	return sel, nil
}
