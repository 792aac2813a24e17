// finchat is a conversational financial-analysis assistant: it collects a
// ticker, fiscal year and period in a chat, fetches the company's
// statements from SimFin and asks a language model to explain them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/finchat/internal/cli"
	"github.com/seenimoa/finchat/internal/config"
	"github.com/seenimoa/finchat/internal/infra"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cli.Error(err))
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "finchat",
	Short: "Chat with an AI financial analyst about a company's statements",
	Long: `finchat asks which company, fiscal year and period you want to look at,
fetches the balance sheet, cash flow, profit & loss and derived metrics
from SimFin, and has a language model explain them in plain English.

Running finchat without a command starts the chat.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		return infra.SetupLogging(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	},
	RunE: runChat,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file path (default: ./config/config.yaml)")
	pf.String("log-level", "", "log level override (debug, info, warn, error)")
	pf.Bool("local", false, "use the local Ollama backend instead of OpenAI")
	pf.Bool("plain", false, "plain line input/output (no interactive prompts)")
	pf.String("report", "", "write each analysis to this file or directory (.md, .html, .txt)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statementsCmd)
	rootCmd.AddCommand(embedCmd)
	rootCmd.AddCommand(describeImageCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "finchat %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}
