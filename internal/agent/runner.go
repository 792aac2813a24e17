package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/seenimoa/finchat/internal/agent/prompts"
	"github.com/seenimoa/finchat/internal/llm"
	"github.com/seenimoa/finchat/pkg/models"
	"github.com/seenimoa/finchat/pkg/utils"
)

// StatementSource returns all four statement summaries for a request.
type StatementSource interface {
	Financials(ctx context.Context, ticker string, year int, period models.Period) (*models.FinancialReport, error)
}

// HeadlineSource returns recent headlines for a ticker.
type HeadlineSource interface {
	GetStockNews(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error)
}

// RunnerOptions configures the analysis request.
type RunnerOptions struct {
	Model         string
	Temperature   float64
	MaxTokens     int
	HistoryWindow int
	NewsLimit     int
}

// Analysis is the outcome of one analysis run.
type Analysis struct {
	Request   models.Request
	Report    *models.FinancialReport
	Narrative string
	Sources   []models.NewsArticle
	Model     string
	Usage     llm.Usage
	Duration  time.Duration
}

// Runner fetches the statements for a request and asks the model for a
// plain-language narrative.
type Runner struct {
	statements StatementSource
	chat       llm.Chatter
	news       HeadlineSource
	opts       RunnerOptions
}

// NewRunner creates an analysis runner. news may be nil.
func NewRunner(statements StatementSource, chat llm.Chatter, news HeadlineSource, opts RunnerOptions) *Runner {
	return &Runner{statements: statements, chat: chat, news: news, opts: opts}
}

// Analyze fetches the report and issues exactly one chat request. Statement
// and model errors are returned unchanged; headline failures only log.
func (r *Runner) Analyze(ctx context.Context, req models.Request) (*Analysis, error) {
	start := time.Now()

	report, err := r.statements.Financials(ctx, req.Ticker, req.Year, req.Period)
	if err != nil {
		return nil, err
	}

	sources := r.headlines(ctx, req.Ticker)
	messages := []llm.Message{
		llm.SystemMessage(prompts.AnalystSystemPrompt),
		llm.UserMessage(AnalysisInput(report, sources)),
	}

	resp, err := r.chat.Chat(ctx, messages, &llm.ChatOptions{
		Model:         r.opts.Model,
		Temperature:   r.opts.Temperature,
		MaxTokens:     r.opts.MaxTokens,
		HistoryWindow: r.opts.HistoryWindow,
	})
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Request:   req,
		Report:    report,
		Narrative: resp.Content,
		Sources:   sources,
		Model:     resp.Model,
		Usage:     resp.Usage,
		Duration:  time.Since(start),
	}
	log.Info().
		Str("ticker", req.Ticker).
		Int("year", req.Year).
		Str("period", string(req.Period)).
		Str("model", resp.Model).
		Int("tokens", resp.Usage.TotalTokens).
		Dur("duration", a.Duration).
		Msg("analysis complete")
	return a, nil
}

func (r *Runner) headlines(ctx context.Context, ticker string) []models.NewsArticle {
	if r.news == nil {
		return nil
	}
	articles, err := r.news.GetStockNews(ctx, ticker, r.opts.NewsLimit)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("headlines unavailable, continuing without sources")
		return nil
	}
	return articles
}

// AnalysisInput renders the user message handed to the analyst model: the
// statement JSON followed by an optional list of headline sources.
func AnalysisInput(report *models.FinancialReport, sources []models.NewsArticle) string {
	text := report.Text()
	if len(sources) == 0 {
		return text
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(prompts.SourcesHeader)
	b.WriteString("\n")
	for _, a := range sources {
		fmt.Fprintf(&b, "- %s (%s)", a.Title, a.URL)
		if !a.PublishedAt.IsZero() {
			fmt.Fprintf(&b, " %s", utils.FormatTimestamp(a.PublishedAt))
		}
		b.WriteString("\n")
	}
	return b.String()
}
