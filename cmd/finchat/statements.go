package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/finchat/internal/cli"
	"github.com/seenimoa/finchat/pkg/models"
)

// --- Statements Command ---

var statementsCmd = &cobra.Command{
	Use:   "statements TICKER YEAR PERIOD",
	Short: "Print formatted SimFin statements without a model",
	Example: `  finchat statements AAPL 2023 q1
  finchat statements AAPL 2023 q1 --type bs --json`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := parseRequest(args)
		if err != nil {
			return err
		}
		if cfg.SimFin.Token == "" {
			return fmt.Errorf("SIMFIN_TOKEN is not set (simfin.token)")
		}
		client, _, err := newStatementClient(cfg)
		if err != nil {
			return err
		}

		var summaries []*models.Summary
		if typ, _ := cmd.Flags().GetString("type"); typ != "" {
			st, err := models.ParseStatementType(typ)
			if err != nil {
				return err
			}
			s, err := client.Statement(cmd.Context(), req.Ticker, req.Year, req.Period, st)
			if err != nil {
				return err
			}
			summaries = []*models.Summary{s}
		} else {
			report, err := client.Financials(cmd.Context(), req.Ticker, req.Year, req.Period)
			if err != nil {
				return err
			}
			summaries = report.Statements
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			for _, s := range summaries {
				fmt.Fprintf(out, "%s\n%s\n\n", s.Statement.Title(), s.Indented())
			}
			return nil
		}
		cli.PrintReport(out, &models.FinancialReport{
			Ticker:     req.Ticker,
			Year:       req.Year,
			Period:     req.Period,
			Statements: summaries,
		})
		return nil
	},
}

func init() {
	statementsCmd.Flags().String("type", "", "single statement: bs, cf, pl or derived (default: all)")
	statementsCmd.Flags().Bool("json", false, "print indented JSON")
}
