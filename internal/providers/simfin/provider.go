// Package simfin implements the SimFin statements provider. It fetches the
// v3 compact statements endpoint and reduces each statement to a fixed set
// of categorized, display-formatted fields.
//
// Docs: https://simfin.readme.io/reference
package simfin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/finchat/internal/provider"
	"github.com/seenimoa/finchat/pkg/models"
)

const (
	providerName   = "simfin"
	DefaultBaseURL = "https://backend.simfin.com/api/v3"
	credAPIKey     = "api_key"

	statementsPath = "/companies/statements/compact"
	generalPath    = "/companies/general/compact"
)

// Options configures the HTTP side of the provider.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RatePerSec int // 0 disables client-side rate limiting

	// CurrencySymbols prefixes monetary summary values with the symbol of
	// the currency the company reports in.
	CurrencySymbols bool
}

// Provider implements provider.Provider for SimFin.
type Provider struct {
	provider.BaseProvider
	http   *resty.Client
	apiKey string

	currencySymbols bool
}

// New creates a SimFin provider and registers one fetcher per statement.
func New(opts Options) *Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(retryable)

	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"SimFin - fundamental statements for listed companies",
			"https://www.simfin.com",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "SimFin API key from app.simfin.com",
					Required:    true,
					EnvVar:      "SIMFIN_TOKEN",
				},
			},
		),
		http:            client,
		currencySymbols: opts.CurrencySymbols,
	}

	for _, st := range models.AllStatements() {
		p.RegisterFetcher(newStatementFetcher(p, st, opts.RatePerSec))
	}
	return p
}

// currencyPrefix returns the prefix for monetary values, or "" when currency
// symbols are disabled or the company reports no currency.
func (p *Provider) currencyPrefix(code string) string {
	if !p.currencySymbols {
		return ""
	}
	return currencySymbol(code)
}

// retryable retries transport failures, throttling and server errors. Other
// 4xx answers are final.
func retryable(r *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	code := r.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// Init stores the API key and sets the Authorization header.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	p.http.SetHeader("Authorization", "api-key "+p.apiKey)
	return nil
}

// Ping checks connectivity and the API key with a company lookup.
func (p *Provider) Ping(ctx context.Context) error {
	resp, err := p.http.R().
		SetContext(ctx).
		SetQueryParam("ticker", "AAPL").
		Get(generalPath)
	if err != nil {
		return fmt.Errorf("simfin ping: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return &provider.DataUnavailableError{
			Provider:   providerName,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}
	return nil
}

// fetchStatement issues one compact-statement request and returns the raw
// record plus its summary. Any non-200 answer or empty payload is a
// DataUnavailableError.
func (p *Provider) fetchStatement(ctx context.Context, st models.StatementType, params provider.QueryParams) (*provider.FetchResult, error) {
	start := time.Now()
	resp, err := p.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ticker":     params[provider.ParamSymbol],
			"statements": string(st),
			"fyear":      params[provider.ParamFiscalYear],
			"period":     params[provider.ParamPeriod],
		}).
		Get(statementsPath)
	if err != nil {
		return nil, fmt.Errorf("simfin request: %w", err)
	}

	log.Debug().
		Str("ticker", params[provider.ParamSymbol]).
		Str("statement", string(st)).
		Int("status", resp.StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("simfin statement request")

	if resp.StatusCode() != http.StatusOK {
		return nil, &provider.DataUnavailableError{
			Provider:   providerName,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	// An empty body or an error object in place of the array means the
	// company or period is unknown to SimFin.
	if body := bytes.TrimSpace(resp.Body()); len(body) == 0 || body[0] != '[' {
		return nil, &provider.DataUnavailableError{
			Provider:   providerName,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	companies, err := decodeCompact(resp.Body())
	if err != nil {
		return nil, err
	}
	record, ok, err := firstRecord(companies)
	if err != nil {
		return nil, fmt.Errorf("simfin %s: %w", st, err)
	}
	if !ok {
		return nil, &provider.DataUnavailableError{
			Provider:   providerName,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	return &provider.FetchResult{
		Summary:   buildSummary(st, record, p.currencyPrefix(companies[0].Currency)),
		Record:    record,
		FetchedAt: time.Now(),
	}, nil
}
