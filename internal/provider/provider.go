// Package provider defines the financial-data provider abstraction: a
// Provider registers one Fetcher per statement model, and a Registry routes
// requests to the provider configured for a model.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seenimoa/finchat/pkg/models"
)

// ProviderCredential describes a credential a provider needs.
type ProviderCredential struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"`
}

// ProviderInfo holds metadata about a registered provider.
type ProviderInfo struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Website     string               `json:"website"`
	Credentials []ProviderCredential `json:"credentials"`
	Models      []ModelType          `json:"models"`
}

// Provider is the interface that all data providers implement.
type Provider interface {
	// Info returns metadata about this provider.
	Info() ProviderInfo

	// Init stores credentials. Returns ErrInvalidCredentials when a
	// required credential is missing.
	Init(credentials map[string]string) error

	// Fetcher returns the fetcher for the given model type, or nil if unsupported.
	Fetcher(model ModelType) Fetcher

	// SupportedModels returns all model types this provider can fetch.
	SupportedModels() []ModelType

	// Ping verifies connectivity and credentials.
	Ping(ctx context.Context) error
}

// QueryParams is the generic query parameter map passed to fetchers.
type QueryParams map[string]string

const (
	ParamSymbol     = "symbol"
	ParamFiscalYear = "fyear"
	ParamPeriod     = "period"
	ParamProvider   = "provider"
)

// StatementParams builds the query for one company/period.
func StatementParams(ticker string, year int, period models.Period) QueryParams {
	return QueryParams{
		ParamSymbol:     ticker,
		ParamFiscalYear: fmt.Sprint(year),
		ParamPeriod:     string(period),
	}
}

// FetchResult wraps a fetched statement with metadata.
type FetchResult struct {
	Provider  string                 `json:"provider"`
	Model     ModelType              `json:"model"`
	Summary   *models.Summary        `json:"summary"`
	Record    models.StatementRecord `json:"-"`
	FetchedAt time.Time              `json:"fetched_at"`
}

// Fetcher fetches a single statement model.
type Fetcher interface {
	ModelType() ModelType
	Description() string
	RequiredParams() []string
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

// ErrDataUnavailable is matched by errors.Is for every DataUnavailableError.
var ErrDataUnavailable = errors.New("financial data unavailable")

// DataUnavailableError is returned when the provider answers with a non-200
// status or with an empty / "not found" payload.
type DataUnavailableError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s: request failed with status code: %d, response: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *DataUnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrModelNotSupported is returned when a provider doesn't support a model type.
type ErrModelNotSupported struct {
	Provider string
	Model    ModelType
}

func (e *ErrModelNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support model %q", e.Provider, e.Model)
}

// ErrMissingParam is returned when a required query parameter is missing.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidCredentials is returned when provider credentials are invalid.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}

// ValidateParams checks that all required parameters are present in params.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if v, ok := params[key]; !ok || v == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
