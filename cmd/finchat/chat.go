package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/seenimoa/finchat/internal/agent"
	"github.com/seenimoa/finchat/internal/agent/prompts"
	"github.com/seenimoa/finchat/internal/cli"
	"github.com/seenimoa/finchat/internal/llm"
)

var nowFunc = time.Now

// --- Chat Command ---

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive analysis chat (default)",
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	backend := backendFor(cmd)
	if err := cfg.Validate(backend); err != nil {
		return err
	}

	router, err := llm.NewRouterFromConfig(cfg, backend)
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer(cmd, cfg, router)
	if err != nil {
		return err
	}

	d := agent.NewDialogue(router, analyzer, newConsole(cmd), agent.DialogueOptions{
		Model:           cfg.LLM.ChatModel,
		Temperature:     cfg.LLM.Temperature,
		HistoryWindow:   cfg.Chat.HistoryWindow,
		MaxFailedParses: cfg.Chat.MaxFailedParses,
		Repair:          cfg.Chat.RepairJSON,
		UseFunction:     cfg.LLM.FunctionCall,
		Now:             nowFunc,
	})
	return d.Run(cmd.Context())
}

// newConsole picks the styled terminal for interactive sessions and the
// plain console for --plain or piped input.
func newConsole(cmd *cobra.Command) agent.Console {
	plain, _ := cmd.Flags().GetBool("plain")
	if plain || !isatty.IsTerminal(os.Stdin.Fd()) {
		return cli.NewPlain(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	return cli.NewTerminal(cmd.OutOrStdout())
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze TICKER YEAR PERIOD",
	Short: "Analyze one company and period without the chat",
	Example: `  finchat analyze AAPL 2023 q1
  finchat analyze msft 2022 fy --report reports/`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := parseRequest(args)
		if err != nil {
			return err
		}
		backend := backendFor(cmd)
		if err := cfg.Validate(backend); err != nil {
			return err
		}

		router, err := llm.NewRouterFromConfig(cfg, backend)
		if err != nil {
			return err
		}
		analyzer, err := newAnalyzer(cmd, cfg, router)
		if err != nil {
			return err
		}

		a, err := analyzer.Analyze(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("analyze %s: %w", req, err)
		}

		out := cmd.OutOrStdout()
		if show, _ := cmd.Flags().GetBool("show-data"); show {
			fmt.Fprintln(out, "User")
			fmt.Fprintln(out, agent.AnalysisInput(a.Report, a.Sources))
		}
		fmt.Fprintln(out, prompts.AssistantPrefix+a.Narrative)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Bool("show-data", false, "print the statement data sent to the model")
}
