package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/propopol/internal/brain"
	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/logger"
)

type fakeRunner struct {
	got brain.RunConfig
	err error
}

func (f *fakeRunner) Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error) {
	f.got = config
	if f.err != nil {
		return nil, f.err
	}
	return &brain.RunResult{RunID: config.RunID, Report: &contracts.Report{}}, nil
}

func TestPredictionJob_Run(t *testing.T) {
	runner := &fakeRunner{}
	template := brain.RunConfig{TopK: 10, Budget: 5 * time.Hour, Workers: 2}

	job := NewPredictionJob(runner, template, "0 30 18 * * 1-5", logger.Nop())
	fixed := time.Date(2026, 10, 19, 18, 30, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, fixed, runner.got.Date)
	assert.Equal(t, 10, runner.got.TopK)
	assert.Equal(t, 2, runner.got.Workers)
	assert.NotEmpty(t, runner.got.RunID)
	assert.Equal(t, "stock_prediction", job.Name())
	assert.Equal(t, "0 30 18 * * 1-5", job.Schedule())
}

func TestPredictionJob_RunError(t *testing.T) {
	job := NewPredictionJob(&fakeRunner{err: errors.New("S0 failed")}, brain.RunConfig{}, "@daily", logger.Nop())

	err := job.Run(context.Background())
	assert.ErrorContains(t, err, "S0 failed")
}

type fakePruner struct {
	calls int
}

func (f *fakePruner) Prune() int {
	f.calls++
	return 3
}

func (f *fakePruner) Len() int { return 1 }

func TestCachePruneJob(t *testing.T) {
	p := &fakePruner{}
	job := NewCachePruneJob(p, logger.Nop())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "cache_prune", job.Name())
	assert.Equal(t, "0 0 * * * *", job.Schedule())
}
