package selection

import (
	"sort"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/logger"
)

// Ranker orders forecast outcomes by expected profit
// ⭐ SSOT: 랭킹 로직은 여기서만
type Ranker struct {
	screener *Screener
	logger   *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(logger *logger.Logger) *Ranker {
	return &Ranker{
		screener: NewScreener(logger),
		logger:   logger,
	}
}

// Rank drops failed outcomes, sorts by score descending (ties keep input
// order) and returns at most topK entries with 1-based ranks
func (r *Ranker) Rank(outcomes []contracts.EntityOutcome, topK int) ([]contracts.RankedEntry, []contracts.FailedEntity) {
	passed, failed := r.screener.Screen(outcomes)

	sort.SliceStable(passed, func(i, j int) bool {
		return passed[i].Score() > passed[j].Score()
	})

	if topK >= 0 && len(passed) > topK {
		passed = passed[:topK]
	}

	ranked := make([]contracts.RankedEntry, 0, len(passed))
	for i, o := range passed {
		ranked = append(ranked, contracts.RankedEntry{
			Rank:           i + 1,
			Code:           o.Entity.Code,
			Label:          o.Entity.Label(),
			CurrentPrice:   o.CurrentPrice,
			PredictedPrice: o.Forecast.Lower,
			ExpectedProfit: o.Score(),
		})
	}

	if len(ranked) > 0 {
		r.logger.WithFields(map[string]interface{}{
			"ranked":    len(ranked),
			"top_score": ranked[0].ExpectedProfit,
			"top_code":  ranked[0].Code,
		}).Info("Ranking completed")
	}

	return ranked, failed
}
