package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/finchat/internal/agent/prompts"
	"github.com/seenimoa/finchat/internal/llm"
	"github.com/seenimoa/finchat/pkg/models"
)

type fakeStatements struct {
	calls int
	err   error
	got   models.Request
}

func (f *fakeStatements) Financials(_ context.Context, ticker string, year int, period models.Period) (*models.FinancialReport, error) {
	f.calls++
	f.got = models.Request{Ticker: ticker, Year: year, Period: period}
	if f.err != nil {
		return nil, f.err
	}
	bs := models.NewSummary(models.StatementBalanceSheet)
	bs.Add("Assets", "Total Assets", "352,583,000,000")
	return &models.FinancialReport{
		Ticker:     ticker,
		Year:       year,
		Period:     period,
		Statements: []*models.Summary{bs},
	}, nil
}

type fakeNews struct {
	articles []models.NewsArticle
	err      error
	limit    int
}

func (f *fakeNews) GetStockNews(_ context.Context, _ string, limit int) ([]models.NewsArticle, error) {
	f.limit = limit
	return f.articles, f.err
}

var aaplQ1 = models.Request{Ticker: "AAPL", Year: 2023, Period: models.PeriodQ1}

func TestRunnerAnalyze(t *testing.T) {
	st := &fakeStatements{}
	chat := &mockChatter{replies: []string{"Apple looks solid. Do your own research."}}
	r := NewRunner(st, chat, nil, RunnerOptions{Model: "gpt-3.5-turbo", HistoryWindow: 6})

	a, err := r.Analyze(context.Background(), aaplQ1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if st.calls != 1 || st.got != aaplQ1 {
		t.Errorf("statements: %d calls, got %+v", st.calls, st.got)
	}
	if chat.calls != 1 {
		t.Fatalf("expected exactly one chat request, got %d", chat.calls)
	}
	msgs := chat.history[0]
	if len(msgs) != 2 {
		t.Fatalf("expected system + user, got %d messages", len(msgs))
	}
	if msgs[0].Role != llm.RoleSystem || msgs[0].Content != prompts.AnalystSystemPrompt {
		t.Errorf("first message should be the analyst prompt, got %+v", msgs[0])
	}
	if msgs[1].Role != llm.RoleUser || msgs[1].Content != a.Report.Text() {
		t.Errorf("user message should be the report text, got %q", msgs[1].Content)
	}
	if !strings.Contains(msgs[1].Content, `"Total Assets": "352,583,000,000"`) {
		t.Errorf("report text missing values: %s", msgs[1].Content)
	}
	if opts := chat.opts[0]; opts.Model != "gpt-3.5-turbo" || opts.HistoryWindow != 6 {
		t.Errorf("unexpected options: %+v", opts)
	}
	if a.Narrative != "Apple looks solid. Do your own research." || a.Request != aaplQ1 || a.Model != "mock-model" {
		t.Errorf("unexpected analysis: %+v", a)
	}
}

func TestRunnerStatementErrorPropagates(t *testing.T) {
	errNotFound := errors.New("simfin: 404")
	st := &fakeStatements{err: errNotFound}
	chat := &mockChatter{replies: []string{"unused"}}

	_, err := NewRunner(st, chat, nil, RunnerOptions{}).Analyze(context.Background(), aaplQ1)
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected statement error unchanged, got %v", err)
	}
	if chat.calls != 0 {
		t.Errorf("model must not be called, got %d calls", chat.calls)
	}
}

func TestRunnerChatErrorPropagates(t *testing.T) {
	chat := &mockChatter{err: llm.ErrRateLimit}
	_, err := NewRunner(&fakeStatements{}, chat, nil, RunnerOptions{}).Analyze(context.Background(), aaplQ1)
	if !errors.Is(err, llm.ErrRateLimit) {
		t.Fatalf("expected ErrRateLimit, got %v", err)
	}
}

func TestRunnerWithHeadlines(t *testing.T) {
	news := &fakeNews{articles: []models.NewsArticle{
		{Title: "Apple beats estimates", URL: "https://example.com/a", PublishedAt: time.Date(2023, 8, 1, 20, 0, 0, 0, time.UTC)},
		{Title: "Supplier update", URL: "https://example.com/b"},
	}}
	chat := &mockChatter{replies: []string{"ok"}}
	r := NewRunner(&fakeStatements{}, chat, news, RunnerOptions{NewsLimit: 3})

	a, err := r.Analyze(context.Background(), aaplQ1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if news.limit != 3 {
		t.Errorf("news limit: got %d", news.limit)
	}
	if len(a.Sources) != 2 {
		t.Errorf("sources: got %d", len(a.Sources))
	}
	content := chat.history[0][1].Content
	for _, want := range []string{
		prompts.SourcesHeader,
		"- Apple beats estimates (https://example.com/a) 2023-08-01 20:00:00",
		"- Supplier update (https://example.com/b)\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("analysis input missing %q:\n%s", want, content)
		}
	}
}

func TestRunnerHeadlineFailureIsNonFatal(t *testing.T) {
	news := &fakeNews{err: errors.New("feed down")}
	chat := &mockChatter{replies: []string{"ok"}}

	a, err := NewRunner(&fakeStatements{}, chat, news, RunnerOptions{}).Analyze(context.Background(), aaplQ1)
	if err != nil {
		t.Fatalf("headline failure should not fail the analysis: %v", err)
	}
	if len(a.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(a.Sources))
	}
	if strings.Contains(chat.history[0][1].Content, prompts.SourcesHeader) {
		t.Error("no sources block expected")
	}
}
