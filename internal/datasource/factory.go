package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/invest-tracker/internal/config"
	"github.com/yourusername/invest-tracker/internal/feed"
)

// SourceType represents where price series come from
type SourceType string

const (
	// StaticSourceType reads bundled JSON files
	StaticSourceType SourceType = "static"
	// SimulatedSourceType generates seeded random walks
	SimulatedSourceType SourceType = "simulated"
	// RemoteSourceType fetches series over HTTP
	RemoteSourceType SourceType = "remote"
)

// Factory creates providers and clients based on configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.New()
	}
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// NewSeriesProvider builds the configured price provider, wrapped in a cache
// when a cache TTL is set
func (f *Factory) NewSeriesProvider() (feed.Provider, error) {
	market := f.config.Market

	var provider feed.Provider
	switch SourceType(market.Source) {
	case StaticSourceType:
		static, err := feed.LoadStaticProvider(market.DataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load bundled series: %w", err)
		}
		provider = static
	case SimulatedSourceType:
		provider = feed.NewSimulatedProvider(feed.SimulatedConfig{
			Symbols:    market.Symbols,
			Length:     market.SimulationLength,
			Seed:       market.SimulationSeed,
			Volatility: market.SimulationVolatility,
		})
	case RemoteSourceType:
		httpCfg := DefaultHTTPClientConfig()
		if market.RateLimit > 0 {
			httpCfg.RateLimit = market.RateLimit
		}
		client := NewRateLimitedHTTPClient(httpCfg, f.logger)
		provider = NewRemoteSeriesProvider(client, market.RemoteURL, market.APIKey, market.Symbols, f.logger)
	default:
		return nil, fmt.Errorf("unknown market source: %s", market.Source)
	}

	f.logger.WithFields(logrus.Fields{
		"source":  market.Source,
		"symbols": len(provider.Symbols()),
	}).Info("Price provider ready")

	if market.CacheTTLSeconds > 0 {
		return feed.NewCachedProvider(provider, time.Duration(market.CacheTTLSeconds)*time.Second), nil
	}
	return provider, nil
}

// NewNewsClient builds the headline client, or nil when news is disabled
func (f *Factory) NewNewsClient() *NewsClient {
	news := f.config.News
	if !news.Enabled {
		return nil
	}
	httpCfg := DefaultHTTPClientConfig()
	if news.RateLimit > 0 {
		httpCfg.RateLimit = news.RateLimit
	}
	return NewNewsClient(NewRateLimitedHTTPClient(httpCfg, f.logger), news.URL, news.APIKey, news.MaxArticles)
}
