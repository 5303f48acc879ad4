package forecast

import "time"

// Point is one observed value of a series
type Point struct {
	Date  time.Time
	Value float64
}

// ForecastPoint is one predicted value with its uncertainty interval
type ForecastPoint struct {
	Date  time.Time
	Yhat  float64
	Lower float64
	Upper float64
}

// Model fits a univariate series and extrapolates it
type Model interface {
	Fit(points []Point) error
	Predict(periods int) ([]ForecastPoint, error)
}

// ModelConfig holds additive model hyperparameters
type ModelConfig struct {
	ChangepointCount      int     // 추세 변곡점 후보 수
	ChangepointRange      float64 // 변곡점을 둘 이력 비율
	ChangepointPriorScale float64 // 추세 유연성
	SeasonalityPriorScale float64
	YearlyOrder           int // 연간 Fourier 차수 (0 = off)
	WeeklyOrder           int // 주간 Fourier 차수 (0 = off)
	DailySeasonality      bool
	DailyOrder            int
	IntervalWidth         float64 // 예측 구간 폭
}

// DefaultModelConfig mirrors the common additive-model defaults
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		ChangepointCount:      25,
		ChangepointRange:      0.8,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		YearlyOrder:           10,
		WeeklyOrder:           3,
		DailySeasonality:      true,
		DailyOrder:            4,
		IntervalWidth:         0.80,
	}
}
