package commands

import (
	"context"
	"fmt"

	"github.com/wonny/propopol/internal/brain"
	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/internal/external/github"
	"github.com/wonny/propopol/internal/external/krx"
	"github.com/wonny/propopol/internal/external/naver"
	"github.com/wonny/propopol/internal/external/slack"
	"github.com/wonny/propopol/internal/external/telegram"
	"github.com/wonny/propopol/internal/external/yahoo"
	"github.com/wonny/propopol/internal/forecast"
	"github.com/wonny/propopol/internal/modelconfig"
	"github.com/wonny/propopol/internal/report"
	"github.com/wonny/propopol/internal/s0_data"
	"github.com/wonny/propopol/internal/s0_data/cache"
	"github.com/wonny/propopol/internal/s0_data/collector"
	"github.com/wonny/propopol/internal/s0_data/quality"
	"github.com/wonny/propopol/internal/s1_universe"
	"github.com/wonny/propopol/internal/scheduler"
	"github.com/wonny/propopol/internal/scheduler/jobs"
	"github.com/wonny/propopol/internal/selection"
	"github.com/wonny/propopol/pkg/config"
	"github.com/wonny/propopol/pkg/database"
	"github.com/wonny/propopol/pkg/httputil"
	"github.com/wonny/propopol/pkg/logger"
	"github.com/wonny/propopol/pkg/redis"
)

// app holds the wired pipeline shared by every command
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	acquirer     contracts.DatasetAcquirer
	qualityGate  *quality.QualityGate
	filter       *s1_universe.Filter
	orchestrator *brain.Orchestrator
	latest       *report.Latest
	memCache     *cache.MemoryCache // Redis 미사용 시
	closers      []func()
}

// newApp connects sources and channels and builds the orchestrator
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, latest: report.NewLatest()}

	markets, err := parseMarkets(cfg.Predict.Markets)
	if err != nil {
		return nil, err
	}

	// 1. S0: Dataset source
	a.acquirer, err = a.newAcquirer(ctx, markets)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init acquirer: %w", err)
	}
	a.qualityGate = quality.NewQualityGate(quality.DefaultConfig())

	// 2. S1: Filter
	a.filter = s1_universe.NewFilter(s1_universe.Config{
		MinObservations: cfg.Predict.MinPeriod,
		Horizon:         cfg.Predict.Periods,
		Markets:         markets,
	})

	// 3. S2: Forecaster
	modelConfig, err := loadModelConfig(cfg.Predict.ModelConfigPath, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	forecaster := forecast.NewAdditiveForecaster(modelConfig, cfg.Predict.Periods, log.Zerolog())

	// 4. S4: Channels
	publisher, err := a.newPublisher()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init publisher: %w", err)
	}

	a.orchestrator = brain.NewOrchestrator(
		a.acquirer,
		a.qualityGate,
		a.filter,
		forecaster,
		selection.NewRanker(log),
		publisher,
		log,
	)

	return a, nil
}

func (a *app) newAcquirer(ctx context.Context, markets []contracts.Market) (contracts.DatasetAcquirer, error) {
	if a.cfg.Predict.DataSource == "snapshot" {
		db, err := database.New(ctx, a.cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.log.Info("Connected to snapshot database")
		return s0_data.NewSnapshotRepository(db.Pool, a.log), nil
	}

	lister := krx.NewClient(httputil.New(a.log), a.cfg.KRX.ListingURL, a.log)

	quoteHTTP := httputil.New(a.log).WithRateLimit(a.cfg.Predict.RateLimit, 1)
	var provider contracts.QuoteProvider
	switch a.cfg.Predict.QuoteProvider {
	case "yahoo":
		provider = yahoo.NewClient(quoteHTTP, a.cfg.Yahoo.ChartURL, a.log)
	default:
		provider = naver.NewClient(quoteHTTP, a.cfg.Naver.ChartURL, a.log)
	}

	var seriesCache collector.SeriesCache
	if a.cfg.Redis.Enabled {
		rc, err := redis.New(ctx, a.cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rc.Close() })
		seriesCache = redis.NewCache(rc, "propopol")
	} else {
		a.memCache = cache.NewMemoryCache(a.log)
		seriesCache = a.memCache
	}

	return collector.NewCollector(lister, provider, seriesCache, collector.Config{
		Markets:  markets,
		Workers:  a.cfg.Predict.FetchWorkers,
		CacheTTL: a.cfg.Redis.TTL,
	}, a.log), nil
}

// newPublisher builds the channels in publish order; POSTs are never retried
func (a *app) newPublisher() (*report.Publisher, error) {
	postHTTP := httputil.New(a.log).DisableRetry()

	channels := []contracts.Channel{
		github.NewClient(postHTTP, a.cfg.GitHub.BaseURL, a.cfg.GitHub.Token, a.cfg.GitHub.Repository, a.log),
		report.NewFileChannel(a.cfg.Predict.ReportPath),
		slack.NewWebhook(postHTTP, a.cfg.Slack.WebhookURL, a.cfg.Slack.Text, a.log),
	}

	if a.cfg.Telegram.Enabled() {
		notifier, err := telegram.NewNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		channels = append(channels, telegram.NewChannel(notifier, a.log))
	}

	channels = append(channels, a.latest)

	return report.NewPublisher(a.log, channels...), nil
}

// runTemplate is the run configuration without Date and RunID
func (a *app) runTemplate() brain.RunConfig {
	return brain.RunConfig{
		HistoryStart: a.cfg.Predict.HistoryStart,
		TopK:         a.cfg.Predict.TopK,
		Budget:       a.cfg.Predict.Budget,
		Workers:      a.cfg.Predict.Workers,
	}
}

// newScheduler registers the prediction job
func (a *app) newScheduler() (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log)

	job := jobs.NewPredictionJob(a.orchestrator, a.runTemplate(), a.cfg.Predict.Schedule, a.log)
	if err := sched.AddJob(job); err != nil {
		return nil, fmt.Errorf("register %s: %w", job.Name(), err)
	}

	if a.memCache != nil {
		prune := jobs.NewCachePruneJob(a.memCache, a.log)
		if err := sched.AddJob(prune); err != nil {
			return nil, fmt.Errorf("register %s: %w", prune.Name(), err)
		}
	}

	return sched, nil
}

// Close releases connections in reverse order
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// loadModelConfig reads the optional model YAML, falling back to the defaults
func loadModelConfig(path string, log *logger.Logger) (forecast.ModelConfig, error) {
	if path == "" {
		return forecast.DefaultModelConfig(), nil
	}

	mc, _, err := modelconfig.Load(path)
	if err != nil {
		return forecast.ModelConfig{}, fmt.Errorf("load model config %s: %w", path, err)
	}

	hash, err := modelconfig.Hash(mc)
	if err != nil {
		return forecast.ModelConfig{}, fmt.Errorf("hash model config: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"config_id": mc.Meta.ConfigID,
		"version":   mc.Meta.Version,
		"hash":      hash[:12],
	}).Info("Loaded model config")

	for _, w := range modelconfig.Warnings(mc) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	return mc.ModelConfig(), nil
}

func parseMarkets(names []string) ([]contracts.Market, error) {
	markets := make([]contracts.Market, 0, len(names))
	for _, name := range names {
		m := contracts.Market(name)
		if m.Suffix() == "" {
			return nil, fmt.Errorf("unknown market %q (KOSPI, KOSDAQ, KONEX)", name)
		}
		markets = append(markets, m)
	}
	return markets, nil
}
