package modelconfig

import "github.com/wonny/propopol/internal/forecast"

// Config는 예측 모델의 전체 설정 (YAML)
type Config struct {
	Meta  Meta  `yaml:"meta" json:"meta"`
	Model Model `yaml:"model" json:"model"`
}

// Meta 메타 정보
type Meta struct {
	ConfigID string `yaml:"config_id" json:"config_id"`
	Version  string `yaml:"version" json:"version"`
}

// Model 가법 모델 하이퍼파라미터
type Model struct {
	Changepoints  Changepoints `yaml:"changepoints" json:"changepoints"`
	Seasonality   Seasonality  `yaml:"seasonality" json:"seasonality"`
	IntervalWidth float64      `yaml:"interval_width" json:"interval_width"`
}

// Changepoints 추세 변곡점
type Changepoints struct {
	Count      int     `yaml:"count" json:"count"`
	Range      float64 `yaml:"range" json:"range"`
	PriorScale float64 `yaml:"prior_scale" json:"prior_scale"`
}

// Seasonality Fourier 계절성
type Seasonality struct {
	PriorScale  float64 `yaml:"prior_scale" json:"prior_scale"`
	YearlyOrder int     `yaml:"yearly_order" json:"yearly_order"`
	WeeklyOrder int     `yaml:"weekly_order" json:"weekly_order"`
	Daily       bool    `yaml:"daily" json:"daily"`
	DailyOrder  int     `yaml:"daily_order" json:"daily_order"`
}

// Default returns the built-in configuration; a YAML file overlays it
func Default() *Config {
	d := forecast.DefaultModelConfig()
	return &Config{
		Meta: Meta{ConfigID: "default", Version: "1"},
		Model: Model{
			Changepoints: Changepoints{
				Count:      d.ChangepointCount,
				Range:      d.ChangepointRange,
				PriorScale: d.ChangepointPriorScale,
			},
			Seasonality: Seasonality{
				PriorScale:  d.SeasonalityPriorScale,
				YearlyOrder: d.YearlyOrder,
				WeeklyOrder: d.WeeklyOrder,
				Daily:       d.DailySeasonality,
				DailyOrder:  d.DailyOrder,
			},
			IntervalWidth: d.IntervalWidth,
		},
	}
}

// ModelConfig converts to the forecaster's hyperparameters
func (c *Config) ModelConfig() forecast.ModelConfig {
	return forecast.ModelConfig{
		ChangepointCount:      c.Model.Changepoints.Count,
		ChangepointRange:      c.Model.Changepoints.Range,
		ChangepointPriorScale: c.Model.Changepoints.PriorScale,
		SeasonalityPriorScale: c.Model.Seasonality.PriorScale,
		YearlyOrder:           c.Model.Seasonality.YearlyOrder,
		WeeklyOrder:           c.Model.Seasonality.WeeklyOrder,
		DailySeasonality:      c.Model.Seasonality.Daily,
		DailyOrder:            c.Model.Seasonality.DailyOrder,
		IntervalWidth:         c.Model.IntervalWidth,
	}
}
