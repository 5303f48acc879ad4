package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/logger"
	"github.com/wonny/propopol/pkg/redis"
)

// ErrEmptyListing is returned when no market yields any entity
var ErrEmptyListing = errors.New("listing returned no entities")

// SeriesCache is the read-through cache of fetched quote series
type SeriesCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Collector acquires the dataset from a listing plus a per-entity quote provider
// ⭐ SSOT: 시세 기반 데이터셋 수집은 이 패키지에서만
type Collector struct {
	lister   contracts.EntityLister
	provider contracts.QuoteProvider
	cache    SeriesCache
	cfg      Config
	logger   *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Markets  []contracts.Market
	Workers  int           // Number of concurrent fetch workers
	CacheTTL time.Duration // 0 disables caching
}

// NewCollector creates a new Collector instance; cache may be nil
func NewCollector(
	lister contracts.EntityLister,
	provider contracts.QuoteProvider,
	cache SeriesCache,
	cfg Config,
	log *logger.Logger,
) *Collector {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Collector{
		lister:   lister,
		provider: provider,
		cache:    cache,
		cfg:      cfg,
		logger:   log.WithField("module", "collector"),
	}
}

// Acquire implements contracts.DatasetAcquirer.
// Any listing or fetch error aborts the whole acquisition.
func (c *Collector) Acquire(ctx context.Context, from, to time.Time) (*contracts.Dataset, error) {
	// 1. 종목 목록
	entities, err := c.listEntities(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_count": len(entities),
		"provider":    c.provider.Name(),
		"from":        from.Format("2006-01-02"),
		"to":          to.Format("2006-01-02"),
		"workers":     c.cfg.Workers,
	}).Info("Starting price collection")

	// 2. 종목별 시세 (worker pool, 첫 에러에서 중단)
	series := make([][]contracts.PriceObservation, len(entities))
	cacheHits := 0
	hitCh := make(chan struct{}, len(entities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)

	for i, entity := range entities {
		g.Go(func() error {
			prices, hit, err := c.fetchSeries(gctx, entity, from, to)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", entity.Label(), err)
			}
			if hit {
				hitCh <- struct{}{}
			}
			series[i] = prices
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(hitCh)
	for range hitCh {
		cacheHits++
	}

	// 3. 목록 순서대로 데이터셋 구성
	ds := contracts.NewDataset(from, to)
	observations := 0
	for i, entity := range entities {
		ds.Put(&contracts.Series{Entity: entity, Observations: series[i]})
		observations += len(series[i])
	}

	c.logger.WithFields(map[string]interface{}{
		"entities":     ds.Len(),
		"observations": observations,
		"cache_hits":   cacheHits,
	}).Info("Price collection completed")

	return ds, nil
}

// listEntities lists every configured market, dropping duplicate codes
func (c *Collector) listEntities(ctx context.Context) ([]contracts.Entity, error) {
	var entities []contracts.Entity
	seen := make(map[string]bool)

	for _, market := range c.cfg.Markets {
		listed, err := c.lister.List(ctx, market)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", market, err)
		}
		for _, e := range listed {
			if seen[e.Code] {
				continue
			}
			seen[e.Code] = true
			entities = append(entities, e)
		}
	}

	if len(entities) == 0 {
		return nil, ErrEmptyListing
	}
	return entities, nil
}

// fetchSeries reads through the cache; cache failures only cost a refetch
func (c *Collector) fetchSeries(ctx context.Context, entity contracts.Entity, from, to time.Time) ([]contracts.PriceObservation, bool, error) {
	key := redis.SeriesKey(c.provider.Name(), entity.Code, from, to)

	if c.cacheEnabled() {
		var cached []contracts.PriceObservation
		hit, err := c.cache.Get(ctx, key, &cached)
		if err != nil {
			c.logger.WithError(err).WithField("stock_code", entity.Code).Warn("Series cache read failed")
		}
		if hit {
			return cached, true, nil
		}
	}

	prices, err := c.provider.Fetch(ctx, entity, from, to)
	if err != nil {
		return nil, false, err
	}

	if c.cacheEnabled() {
		if err := c.cache.Set(ctx, key, prices, c.cfg.CacheTTL); err != nil {
			c.logger.WithError(err).WithField("stock_code", entity.Code).Warn("Series cache write failed")
		}
	}

	return prices, false, nil
}

func (c *Collector) cacheEnabled() bool {
	return c.cache != nil && c.cfg.CacheTTL > 0
}
