package recommend

import (
	"context"
	"sync"

	"matjip/apps/backend/internal/logging"
	"matjip/apps/backend/internal/metrics"
)

// Provider loads a table from its Source on first use and hands the same
// instance to every later caller for the life of the process.
//
// A failed load is not retried: the error is logged once and the provider
// serves an empty table from then on.
type Provider struct {
	source Source

	once  sync.Once
	table Table
	err   error
}

func NewProvider(source Source) *Provider {
	return &Provider{source: source}
}

// Table returns the shared table, loading it on the first call.
func (p *Provider) Table(ctx context.Context) Table {
	p.load(ctx)
	return p.table
}

// Err reports the error of the single load attempt, loading first if needed.
func (p *Provider) Err(ctx context.Context) error {
	p.load(ctx)
	return p.err
}

func (p *Provider) load(ctx context.Context) {
	p.once.Do(func() {
		table, err := p.source.Load(ctx)
		if err != nil {
			logging.Error().Err(err).Msg("preference table load failed; scoring with empty table")
			table = Table{}
		}
		if table == nil {
			table = Table{}
		}
		p.table = table
		p.err = err
		metrics.PreferenceKeys.Set(float64(table.Len()))
		logging.Info().Int("keys", table.Len()).Msg("preference table ready")
	})
}
