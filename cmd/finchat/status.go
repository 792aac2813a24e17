package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/finchat/internal/cli"
	"github.com/seenimoa/finchat/internal/config"
	"github.com/seenimoa/finchat/internal/llm"
	"github.com/seenimoa/finchat/pkg/utils"
)

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, credentials and backend reachability",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  finchat System Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:        %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Time:           %s\n", utils.FormatTimestamp(nowFunc()))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Chat backend:   %s (chat: %s, analysis: %s)\n", backendFor(cmd), cfg.LLM.ChatModel, cfg.LLM.AnalysisModel)
		fmt.Fprintf(out, "    Local model:    %s at %s\n", cfg.LLM.LocalModel, cfg.LLM.OllamaURL)
		fmt.Fprintf(out, "    SimFin:         %s\n", cfg.SimFin.BaseURL)
		fmt.Fprintf(out, "    News:           %v (limit %d)\n", cfg.Analysis.NewsEnabled, cfg.Analysis.NewsLimit)
		fmt.Fprintln(out)

		cli.PrintKeyStatus(out, config.CheckAPIKeys(cfg))
		fmt.Fprintln(out)

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		fmt.Fprintln(out, "  Reachability:")
		if cfg.SimFin.Token != "" {
			_, reg, err := newStatementClient(cfg)
			if err == nil {
				p, getErr := reg.Get("simfin")
				if getErr != nil {
					err = getErr
				} else {
					err = p.Ping(ctx)
				}
			}
			cli.PrintCheck(out, "simfin", err)
		}
		if router, err := llm.NewRouterFromConfig(cfg, config.BackendOllama); err == nil {
			for name, err := range router.HealthCheck(ctx) {
				cli.PrintCheck(out, name, err)
			}
		} else {
			cli.PrintCheck(out, "llm", err)
		}

		if err := cfg.Validate(backendFor(cmd)); err != nil {
			fmt.Fprintln(out)
			fmt.Fprintln(out, cli.Error(err))
		}
		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}
