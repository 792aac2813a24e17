package simfin

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/finchat/internal/provider"
	"github.com/seenimoa/finchat/pkg/models"
)

// statementFetcher serves one statement type through the shared HTTP client.
type statementFetcher struct {
	provider.BaseFetcher
	p         *Provider
	statement models.StatementType
}

func newStatementFetcher(p *Provider, st models.StatementType, ratePerSec int) *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelFor(st),
			fmt.Sprintf("%s statement from SimFin", st.Title()),
			[]string{provider.ParamSymbol, provider.ParamFiscalYear, provider.ParamPeriod},
			ratePerSec, time.Second,
		),
		p:         p,
		statement: st,
	}
}

func (f *statementFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	return f.p.fetchStatement(ctx, f.statement, params)
}
