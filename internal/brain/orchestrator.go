package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/internal/forecast"
	"github.com/wonny/propopol/internal/report"
	"github.com/wonny/propopol/internal/s0_data/quality"
	"github.com/wonny/propopol/internal/s1_universe"
	"github.com/wonny/propopol/internal/selection"
	"github.com/wonny/propopol/pkg/logger"
)

// Orchestrator coordinates one prediction run
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	// Stage components
	acquirer    contracts.DatasetAcquirer
	qualityGate *quality.QualityGate
	filter      *s1_universe.Filter
	forecaster  *forecast.Forecaster
	ranker      *selection.Ranker
	publisher   *report.Publisher

	now    func() time.Time
	logger *logger.Logger
}

// RunConfig holds configuration for a prediction run
type RunConfig struct {
	Date         time.Time
	RunID        string
	HistoryStart time.Time
	TopK         int
	Budget       time.Duration // 예측 단계 시간 한도 (0 = 무제한)
	Workers      int           // 1 = 순차
	DryRun       bool          // If true, skip publishing
}

// RunResult holds the results of a complete run
type RunResult struct {
	RunID           string
	Date            time.Time
	Success         bool
	Error           error
	CompletedStages []string
	QualitySnapshot *quality.Snapshot
	Universe        *s1_universe.Universe
	Outcomes        []contracts.EntityOutcome
	Report          *contracts.Report
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	acquirer contracts.DatasetAcquirer,
	qualityGate *quality.QualityGate,
	filter *s1_universe.Filter,
	forecaster *forecast.Forecaster,
	ranker *selection.Ranker,
	publisher *report.Publisher,
	logger *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		acquirer:    acquirer,
		qualityGate: qualityGate,
		filter:      filter,
		forecaster:  forecaster,
		ranker:      ranker,
		publisher:   publisher,
		now:         time.Now,
		logger:      logger,
	}
}

// WithClock replaces the wall clock used for the time budget
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Run executes the pipeline
// S0 (data) → S1 (filter) → S2 (forecast) → S3 (rank) → S4 (publish)
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := o.now()

	if config.RunID == "" {
		config.RunID = GenerateRunID()
	}
	if config.Date.IsZero() {
		config.Date = startTime
	}

	result := &RunResult{
		RunID:           config.RunID,
		Date:            config.Date,
		CompletedStages: make([]string, 0),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":  config.RunID,
		"date":    config.Date.Format("2006-01-02"),
		"top_k":   config.TopK,
		"budget":  config.Budget.String(),
		"workers": config.Workers,
		"dry_run": config.DryRun,
	}).Info("Starting prediction run")

	// S0: Dataset
	ds, err := o.runS0(ctx, config, result)
	if err != nil {
		return o.fail(result, startTime, fmt.Errorf("S0 failed: %w", err))
	}
	result.CompletedStages = append(result.CompletedStages, "S0:Data")

	// S1: Filter
	result.Universe = o.filter.Build(ds, config.Date)
	result.CompletedStages = append(result.CompletedStages, "S1:Filter")
	o.logger.WithFields(map[string]interface{}{
		"eligible": len(result.Universe.Series),
		"skipped":  len(result.Universe.Excluded),
	}).Info("S1 completed")

	// S2: Forecast
	outcomes, aborted := o.runS2(ctx, config, result.Universe.Series)
	result.Outcomes = outcomes
	result.CompletedStages = append(result.CompletedStages, "S2:Forecast")

	// S3: Ranking
	entries, failed := o.ranker.Rank(outcomes, config.TopK)
	result.Report = &contracts.Report{
		RunID:     config.RunID,
		Date:      config.Date,
		Horizon:   o.forecaster.Periods(),
		Entries:   entries,
		Failed:    failed,
		Eligible:  len(result.Universe.Series),
		Processed: len(outcomes),
		Skipped:   len(result.Universe.Excluded),
		Aborted:   aborted,
	}
	result.CompletedStages = append(result.CompletedStages, "S3:Ranker")

	// S4: Publish (skip if dry run)
	if config.DryRun {
		o.logger.Info("Skipping S4:Publish (dry run mode)")
	} else {
		if err := o.publisher.Publish(ctx, result.Report); err != nil {
			return o.fail(result, startTime, fmt.Errorf("S4 failed: %w", err))
		}
		result.CompletedStages = append(result.CompletedStages, "S4:Publish")
	}

	result.Success = true
	result.Duration = o.now().Sub(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":    config.RunID,
		"duration":  result.Duration.Seconds(),
		"ranked":    len(entries),
		"failed":    len(failed),
		"processed": len(outcomes),
		"aborted":   aborted,
	}).Info("Prediction run completed")

	return result, nil
}

func (o *Orchestrator) fail(result *RunResult, startTime time.Time, err error) (*RunResult, error) {
	result.Error = err
	result.Duration = o.now().Sub(startTime)
	o.logger.WithError(err).WithField("run_id", result.RunID).Error("Prediction run failed")
	return result, err
}

// runS0 acquires the dataset and cleans it; acquisition failure is fatal
func (o *Orchestrator) runS0(ctx context.Context, config RunConfig, result *RunResult) (*contracts.Dataset, error) {
	o.logger.Info("Running S0: Dataset acquisition")

	ds, err := o.acquirer.Acquire(ctx, config.HistoryStart, config.Date)
	if err != nil {
		return nil, fmt.Errorf("acquire dataset: %w", err)
	}

	snapshot := o.qualityGate.Check(ds, config.Date)
	result.QualitySnapshot = snapshot

	o.logger.WithFields(map[string]interface{}{
		"entities":      snapshot.TotalEntities,
		"observations":  snapshot.Observations,
		"dropped":       snapshot.Dropped,
		"quality_score": snapshot.QualityScore,
	}).Info("S0 completed")

	return ds, nil
}

// runS2 forecasts every eligible series until the budget runs out.
// Outcomes are in series order and cover only entities that were started.
func (o *Orchestrator) runS2(ctx context.Context, config RunConfig, series []*contracts.Series) ([]contracts.EntityOutcome, bool) {
	o.logger.WithField("entities", len(series)).Info("Running S2: Forecast")

	var deadline time.Time
	if config.Budget > 0 {
		deadline = o.now().Add(config.Budget)
	}
	expired := func() bool {
		if ctx.Err() != nil {
			return true
		}
		return !deadline.IsZero() && !o.now().Before(deadline)
	}

	workers := config.Workers
	if workers <= 1 {
		outcomes := make([]contracts.EntityOutcome, 0, len(series))
		for i, s := range series {
			if expired() {
				o.logAbort(i, len(series))
				return outcomes, true
			}
			outcomes = append(outcomes, o.forecaster.Forecast(ctx, s))
		}
		return outcomes, false
	}

	results := make([]contracts.EntityOutcome, len(series))
	started := make([]bool, len(series))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, s := range series {
		g.Go(func() error {
			if expired() {
				return nil
			}
			started[i] = true
			results[i] = o.forecaster.Forecast(ctx, s)
			return nil
		})
	}
	_ = g.Wait()

	// 결정적 병합: 시작된 종목만 입력 순서대로
	outcomes := make([]contracts.EntityOutcome, 0, len(series))
	aborted := false
	for i := range series {
		if !started[i] {
			aborted = true
			continue
		}
		outcomes = append(outcomes, results[i])
	}
	if aborted {
		o.logAbort(len(outcomes), len(series))
	}
	return outcomes, aborted
}

func (o *Orchestrator) logAbort(done, total int) {
	o.logger.WithFields(map[string]interface{}{
		"processed": done,
		"remaining": total - done,
	}).Warn("Time budget exceeded, stopping forecasts")
}

// GenerateRunID generates a unique run ID
func GenerateRunID() string {
	return fmt.Sprintf("run_%s_%s", time.Now().Format("20060102_150405"), uuid.NewString()[:8])
}
