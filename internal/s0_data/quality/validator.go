package quality

import (
	"time"

	"github.com/wonny/propopol/internal/contracts"
)

// QualityGate cleans an acquired dataset and scores its coverage
type QualityGate struct {
	config Config
}

// Config holds quality gate thresholds
type Config struct {
	FreshWithin time.Duration // 최신 관측이 이 기간 안에 있어야 fresh
}

// DefaultConfig returns the default thresholds
func DefaultConfig() Config {
	return Config{FreshWithin: 14 * 24 * time.Hour}
}

// Snapshot summarises dataset quality after cleaning
type Snapshot struct {
	Date          time.Time          `json:"date"`
	TotalEntities int                `json:"total_entities"`
	ValidEntities int                `json:"valid_entities"` // 관측이 하나 이상 남은 종목
	Observations  int                `json:"observations"`
	Dropped       int                `json:"dropped"` // 제거된 비정상 관측 수
	Coverage      map[string]float64 `json:"coverage"`
	QualityScore  float64            `json:"quality_score"`
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config) *QualityGate {
	return &QualityGate{config: config}
}

// Check sorts and de-duplicates every series in place, drops rows with a
// non-positive close, and reports coverage as of date
// ⭐ SSOT: S0 → S1 품질 검증
func (g *QualityGate) Check(ds *contracts.Dataset, date time.Time) *Snapshot {
	snapshot := &Snapshot{
		Date:          date,
		TotalEntities: ds.Len(),
		Coverage:      make(map[string]float64),
	}

	var withVolume, fresh int
	ds.Each(func(s *contracts.Series) {
		snapshot.Dropped += sanitize(s)
		snapshot.Observations += s.Len()

		latest, ok := s.Latest()
		if !ok {
			return
		}
		snapshot.ValidEntities++
		if latest.Volume > 0 {
			withVolume++
		}
		if date.Sub(latest.Date) <= g.config.FreshWithin {
			fresh++
		}
	})

	if snapshot.TotalEntities > 0 {
		total := float64(snapshot.TotalEntities)
		snapshot.Coverage["price"] = float64(snapshot.ValidEntities) / total
		snapshot.Coverage["volume"] = float64(withVolume) / total
		snapshot.Coverage["fresh"] = float64(fresh) / total
	}
	snapshot.QualityScore = calculateScore(snapshot.Coverage)

	return snapshot
}

// sanitize returns the number of dropped observations
func sanitize(s *contracts.Series) int {
	before := len(s.Observations)

	kept := s.Observations[:0]
	for _, obs := range s.Observations {
		if obs.Close <= 0 || obs.Date.IsZero() {
			continue
		}
		kept = append(kept, obs)
	}
	s.Observations = kept
	s.SortByDate()

	return before - len(s.Observations)
}

// calculateScore calculates overall quality score using weighted average
func calculateScore(coverage map[string]float64) float64 {
	// 가중치 (합계 = 1.0)
	weights := map[string]float64{
		"price":  0.50,
		"volume": 0.20,
		"fresh":  0.30,
	}

	score := 0.0
	for key, weight := range weights {
		if cov, exists := coverage[key]; exists {
			score += cov * weight
		}
	}

	return score
}
