package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/seenimoa/finchat/internal/agent"
	"github.com/seenimoa/finchat/internal/config"
	"github.com/seenimoa/finchat/internal/datasource"
	"github.com/seenimoa/finchat/internal/llm"
	"github.com/seenimoa/finchat/internal/provider"
	"github.com/seenimoa/finchat/internal/providers"
	"github.com/seenimoa/finchat/internal/providers/simfin"
	"github.com/seenimoa/finchat/internal/report"
	"github.com/seenimoa/finchat/pkg/models"
	"github.com/seenimoa/finchat/pkg/utils"
)

// backendFor returns the chat backend selected by --local.
func backendFor(cmd *cobra.Command) string {
	if local, _ := cmd.Flags().GetBool("local"); local {
		return config.BackendOllama
	}
	return cfg.LLM.Primary
}

// newStatementClient registers SimFin and returns a client over it.
func newStatementClient(cfg *config.Config) (*simfin.Client, *provider.Registry, error) {
	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg, cfg.SimFin); err != nil {
		return nil, nil, fmt.Errorf("simfin: %w", err)
	}
	return simfin.NewClient(reg, cfg.Analysis.ConcurrentFetches), reg, nil
}

// newAnalyzer wires the statement client, chat router and optional news
// source into an analysis runner, wrapped to write reports when asked.
func newAnalyzer(cmd *cobra.Command, cfg *config.Config, chat llm.Chatter) (agent.Analyzer, error) {
	statements, _, err := newStatementClient(cfg)
	if err != nil {
		return nil, err
	}

	var news agent.HeadlineSource
	if cfg.Analysis.NewsEnabled {
		news = datasource.NewNews(cfg.Analysis.NewsFeedURL, cfg.SimFin.Timeout())
	}

	runner := agent.NewRunner(statements, chat, news, agent.RunnerOptions{
		Model:         cfg.LLM.AnalysisModel,
		Temperature:   cfg.LLM.Temperature,
		MaxTokens:     cfg.LLM.MaxTokens,
		HistoryWindow: cfg.LLM.HistoryWindow,
		NewsLimit:     cfg.Analysis.NewsLimit,
	})

	path, _ := cmd.Flags().GetString("report")
	if path == "" {
		return runner, nil
	}
	return &reportingAnalyzer{runner: runner, path: path}, nil
}

// reportingAnalyzer writes a report file after every successful analysis.
type reportingAnalyzer struct {
	runner agent.Analyzer
	path   string
}

func (r *reportingAnalyzer) Analyze(ctx context.Context, req models.Request) (*agent.Analysis, error) {
	a, err := r.runner.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	path := reportPath(r.path, req)
	if err := report.Write(path, a, report.DefaultReportConfig()); err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Str("ticker", req.Ticker).Msg("report written")
	return a, nil
}

// reportPath places one file per request inside path when path is a
// directory (or ends with a separator).
func reportPath(path string, req models.Request) string {
	isDir := strings.HasSuffix(path, string(os.PathSeparator)) || strings.HasSuffix(path, "/")
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		isDir = true
	}
	if !isDir {
		return path
	}
	name := fmt.Sprintf("%s_%d_%s.md", req.Ticker, req.Year, req.Period)
	return filepath.Join(path, name)
}

// parseRequest validates the TICKER YEAR PERIOD arguments.
func parseRequest(args []string) (models.Request, error) {
	ticker := utils.NormalizeTicker(args[0])
	if !utils.ValidTicker(ticker) {
		return models.Request{}, fmt.Errorf("invalid ticker %q", args[0])
	}
	year, err := strconv.Atoi(strings.TrimSpace(args[1]))
	if err != nil {
		return models.Request{}, fmt.Errorf("invalid year %q", args[1])
	}
	if err := utils.ValidateFiscalYear(year, nowFunc()); err != nil {
		return models.Request{}, err
	}
	period, err := models.ParsePeriod(args[2])
	if err != nil {
		return models.Request{}, err
	}
	return models.Request{Ticker: ticker, Year: year, Period: period}, nil
}
