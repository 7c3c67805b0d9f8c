package feed

import (
	"context"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/invest-tracker/internal/models"
)

// CachedProvider memoises another provider's series for a TTL
type CachedProvider struct {
	next  Provider
	cache *cache.Cache
	ttl   time.Duration
}

// NewCachedProvider wraps next with an in-memory cache
func NewCachedProvider(next Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:  next,
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Series implements Provider. Errors are not cached.
func (p *CachedProvider) Series(ctx context.Context, symbol string) (models.PriceSeries, error) {
	key := strings.ToUpper(symbol)
	if cached, found := p.cache.Get(key); found {
		if series, ok := cached.(models.PriceSeries); ok {
			return series, nil
		}
	}

	series, err := p.next.Series(ctx, symbol)
	if err != nil {
		return models.PriceSeries{}, err
	}
	p.cache.Set(key, series, p.ttl)
	return series, nil
}

// Symbols implements Provider
func (p *CachedProvider) Symbols() []string {
	return p.next.Symbols()
}

// Invalidate drops a cached series
func (p *CachedProvider) Invalidate(symbol string) {
	p.cache.Delete(strings.ToUpper(symbol))
}

// Flush drops every cached series
func (p *CachedProvider) Flush() {
	p.cache.Flush()
}
