package jobs

import (
	"context"

	"github.com/wonny/propopol/pkg/logger"
)

// Pruner drops expired cache entries
type Pruner interface {
	Prune() int
	Len() int
}

// CachePruneJob clears expired series from the in-memory cache
// Schedule: every hour
type CachePruneJob struct {
	cache  Pruner
	logger *logger.Logger
}

// NewCachePruneJob creates a new cache prune job
func NewCachePruneJob(cache Pruner, log *logger.Logger) *CachePruneJob {
	return &CachePruneJob{
		cache:  cache,
		logger: log,
	}
}

// Name returns the job name
func (j *CachePruneJob) Name() string {
	return "cache_prune"
}

// Schedule returns the cron schedule (with seconds)
func (j *CachePruneJob) Schedule() string {
	return "0 0 * * * *"
}

// Run removes expired entries
func (j *CachePruneJob) Run(ctx context.Context) error {
	removed := j.cache.Prune()

	j.logger.WithFields(map[string]interface{}{
		"removed":   removed,
		"remaining": j.cache.Len(),
	}).Info("Cache pruned")

	return nil
}
