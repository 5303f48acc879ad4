package contracts

import (
	"fmt"
	"time"
)

// RankedEntry is one published row
// ⭐ SSOT: 랭킹 → 리포트 전달
type RankedEntry struct {
	Rank           int     `json:"rank"` // 1-based
	Code           string  `json:"code"`
	Label          string  `json:"label"`
	CurrentPrice   float64 `json:"current_price"`
	PredictedPrice float64 `json:"predicted_price"`
	ExpectedProfit float64 `json:"expected_profit"`
}

// FailedEntity records an entity whose forecast failed
type FailedEntity struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// Report is the published artifact of one run
type Report struct {
	RunID     string         `json:"run_id"`
	Date      time.Time      `json:"date"`
	Horizon   int            `json:"horizon"`
	Entries   []RankedEntry  `json:"entries"`
	Failed    []FailedEntity `json:"failed,omitempty"`
	Eligible  int            `json:"eligible"`  // 필터 통과 종목 수
	Processed int            `json:"processed"` // 예측 시도 종목 수
	Skipped   int            `json:"skipped"`   // 필터 제외 종목 수
	Aborted   bool           `json:"aborted"`   // 시간 한도 초과 여부
}

// Pending is the number of eligible entities never forecast
func (r *Report) Pending() int {
	if r.Eligible < r.Processed {
		return 0
	}
	return r.Eligible - r.Processed
}

// Title is the issue title, e.g. "2026-10-19 stock_prediction(after 14 days)"
func (r *Report) Title() string {
	return fmt.Sprintf("%s stock_prediction(after %d days)", r.Date.Format("2006-01-02"), r.Horizon)
}
