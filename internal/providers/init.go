// Package providers initializes and registers all concrete data providers
// with a provider registry.
package providers

import (
	"github.com/seenimoa/finchat/internal/config"
	"github.com/seenimoa/finchat/internal/provider"
	"github.com/seenimoa/finchat/internal/providers/simfin"
)

// RegisterAllTo creates the configured providers and registers them with reg.
// SimFin requires a token; Init reports it as invalid credentials when empty.
func RegisterAllTo(reg *provider.Registry, cfg config.SimFinConfig) error {
	sf := simfin.New(simfin.Options{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout(),
		MaxRetries: cfg.MaxRetries,
		RatePerSec: cfg.RatePerSec,

		CurrencySymbols: cfg.CurrencySymbols,
	})
	if err := sf.Init(map[string]string{"api_key": cfg.Token}); err != nil {
		return err
	}
	return reg.Register(sf)
}
