package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/propopol/internal/brain"
	"github.com/wonny/propopol/pkg/logger"
)

// Runner executes one prediction run
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// PredictionJob runs the full prediction pipeline
// Schedule: weekdays 6:30 PM (after market close data is available)
type PredictionJob struct {
	runner   Runner
	template brain.RunConfig
	schedule string
	now      func() time.Time
	logger   *logger.Logger
}

// NewPredictionJob creates a new prediction job; template supplies everything but Date and RunID
func NewPredictionJob(runner Runner, template brain.RunConfig, schedule string, log *logger.Logger) *PredictionJob {
	return &PredictionJob{
		runner:   runner,
		template: template,
		schedule: schedule,
		now:      time.Now,
		logger:   log,
	}
}

// Name returns the job name
func (j *PredictionJob) Name() string {
	return "stock_prediction"
}

// Schedule returns the cron schedule (with seconds)
func (j *PredictionJob) Schedule() string {
	return j.schedule
}

// Run executes one prediction run dated today
func (j *PredictionJob) Run(ctx context.Context) error {
	config := j.template
	config.Date = j.now()
	config.RunID = brain.GenerateRunID()

	j.logger.WithField("run_id", config.RunID).Info("Starting scheduled prediction")

	result, err := j.runner.Run(ctx, config)
	if err != nil {
		return fmt.Errorf("prediction run %s: %w", config.RunID, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"ranked":   len(result.Report.Entries),
		"aborted":  result.Report.Aborted,
		"duration": result.Duration.String(),
	}).Info("Scheduled prediction finished")

	return nil
}
