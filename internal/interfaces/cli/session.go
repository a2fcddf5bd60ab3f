package cli

import (
	"context"

	portfolioapp "github.com/ben-daghir/hercap/internal/application/portfolio"
	"github.com/ben-daghir/hercap/internal/platform"
)

// portfolioSession is the loaded portfolio plus the connections used to
// fetch it.
type portfolioSession struct {
	infra   *platform.Infrastructure
	service portfolioapp.Service
}

// openPortfolio connects the configured backends and loads the feed.  Close
// must be called even when loading failed.
func (c *CLIContext) openPortfolio(ctx context.Context) (*portfolioSession, error) {
	infra, err := platform.Open(c.Config, c.Logger, false)
	if err != nil {
		return nil, err
	}
	loader, err := platform.NewFeedLoader(c.Config.Feed, infra, c.Logger, nil)
	if err != nil {
		infra.Close()
		return nil, err
	}
	store := portfolioapp.NewStore(loader, c.Logger)
	ps := &portfolioSession{infra: infra, service: portfolioapp.NewService(store, nil, c.Logger)}
	if _, err := store.Load(ctx); err != nil {
		return ps, err
	}
	return ps, nil
}

func (p *portfolioSession) Close() {
	if p != nil {
		p.infra.Close()
	}
}

//Personal.AI order the ending
