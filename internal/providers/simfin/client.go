package simfin

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finchat/internal/provider"
	"github.com/seenimoa/finchat/pkg/models"
)

// Client fetches statements through the registry, pinned to the SimFin provider.
type Client struct {
	reg         *provider.Registry
	concurrency int
}

// NewClient returns a client. concurrency bounds parallel requests in
// Financials; values below 1 fetch sequentially.
func NewClient(reg *provider.Registry, concurrency int) *Client {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Client{reg: reg, concurrency: concurrency}
}

func (c *Client) fetch(ctx context.Context, ticker string, year int, period models.Period, st models.StatementType) (*provider.FetchResult, error) {
	params := provider.StatementParams(ticker, year, period)
	params[provider.ParamProvider] = providerName
	return c.reg.Fetch(ctx, provider.ModelFor(st), params)
}

// Statement fetches and summarizes one statement.
func (c *Client) Statement(ctx context.Context, ticker string, year int, period models.Period, st models.StatementType) (*models.Summary, error) {
	res, err := c.fetch(ctx, ticker, year, period, st)
	if err != nil {
		return nil, err
	}
	return res.Summary, nil
}

// RawStatement returns every column of the first row, unsummarized.
func (c *Client) RawStatement(ctx context.Context, ticker string, year int, period models.Period, st models.StatementType) (models.StatementRecord, error) {
	res, err := c.fetch(ctx, ticker, year, period, st)
	if err != nil {
		return nil, err
	}
	return res.Record, nil
}

// Financials fetches all four statements concurrently. Summaries are kept
// in models.AllStatements order; the first failure cancels the rest.
func (c *Client) Financials(ctx context.Context, ticker string, year int, period models.Period) (*models.FinancialReport, error) {
	statements := models.AllStatements()
	summaries := make([]*models.Summary, len(statements))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, st := range statements {
		g.Go(func() error {
			s, err := c.Statement(gctx, ticker, year, period, st)
			if err != nil {
				return fmt.Errorf("%s: %w", st.Title(), err)
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.FinancialReport{
		Ticker:     ticker,
		Year:       year,
		Period:     period,
		Statements: summaries,
	}, nil
}
