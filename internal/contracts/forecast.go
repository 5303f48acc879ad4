package contracts

import (
	"errors"
	"time"
)

var (
	// ErrInsufficientData is returned when a series is too short to fit
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNoVariance is returned when a series is constant
	ErrNoVariance = errors.New("insufficient variance")
	// ErrIllConditioned is returned when the fit's normal equations cannot be solved reliably
	ErrIllConditioned = errors.New("ill-conditioned fit")
	// ErrDeadlineExceeded marks entities not started before the run deadline
	ErrDeadlineExceeded = errors.New("run deadline exceeded")
)

// ForecastResult is the final-period forecast of one entity
type ForecastResult struct {
	Code       string    `json:"code"`
	HorizonEnd time.Time `json:"horizon_end"`
	Point      float64   `json:"point"` // yhat
	Lower      float64   `json:"lower"` // yhat_lower
	Upper      float64   `json:"upper"` // yhat_upper
}

// EntityOutcome is the per-entity forecasting result: a forecast or a failure reason
// ⭐ SSOT: 종목별 예측 성공/실패는 이 타입으로만 전달
type EntityOutcome struct {
	Entity       Entity          `json:"entity"`
	CurrentPrice float64         `json:"current_price"`
	Forecast     *ForecastResult `json:"forecast,omitempty"`
	Err          error           `json:"-"`
}

// OK reports whether forecasting succeeded
func (o EntityOutcome) OK() bool {
	return o.Err == nil && o.Forecast != nil
}

// Score is the expected profit: forecast lower bound minus latest close
func (o EntityOutcome) Score() float64 {
	if o.Forecast == nil {
		return 0
	}
	return ExpectedProfit(o.CurrentPrice, o.Forecast.Lower)
}

// ExpectedProfit computes lower − current
func ExpectedProfit(current, lower float64) float64 {
	return lower - current
}
