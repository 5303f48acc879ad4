package forecast

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/propopol/internal/contracts"
)

// ModelFactory returns a fresh, unfitted model per entity
type ModelFactory func() Model

// Forecaster fits one model per entity and turns every failure into an outcome
// ⭐ SSOT: 종목별 예측은 여기서만
type Forecaster struct {
	newModel ModelFactory
	periods  int
	log      zerolog.Logger
}

// NewForecaster creates a forecaster predicting periods calendar days ahead
func NewForecaster(newModel ModelFactory, periods int, log zerolog.Logger) *Forecaster {
	return &Forecaster{
		newModel: newModel,
		periods:  periods,
		log:      log.With().Str("component", "forecast.forecaster").Logger(),
	}
}

// NewAdditiveForecaster creates a forecaster backed by AdditiveModel
func NewAdditiveForecaster(config ModelConfig, periods int, log zerolog.Logger) *Forecaster {
	return NewForecaster(func() Model { return NewAdditiveModel(config) }, periods, log)
}

// Periods returns the forecast horizon in days
func (f *Forecaster) Periods() int {
	return f.periods
}

// Forecast fits the entity's close series and reads the final horizon point.
// Errors and panics are returned inside the outcome, never raised.
func (f *Forecaster) Forecast(ctx context.Context, s *contracts.Series) (outcome contracts.EntityOutcome) {
	outcome.Entity = s.Entity

	defer func() {
		if r := recover(); r != nil {
			outcome.Forecast = nil
			outcome.Err = fmt.Errorf("forecast panic: %v", r)
		}
		if outcome.Err != nil {
			f.log.Warn().
				Err(outcome.Err).
				Str("code", s.Entity.Code).
				Str("name", s.Entity.Name).
				Msg("forecast failed")
		}
	}()

	if err := ctx.Err(); err != nil {
		outcome.Err = fmt.Errorf("%w: %v", contracts.ErrDeadlineExceeded, err)
		return outcome
	}

	latest, ok := s.Latest()
	if !ok {
		outcome.Err = fmt.Errorf("%w: empty series", contracts.ErrInsufficientData)
		return outcome
	}
	outcome.CurrentPrice = latest.Close

	points := make([]Point, 0, s.Len())
	for _, obs := range s.Observations {
		points = append(points, Point{Date: obs.Date, Value: obs.Close})
	}

	model := f.newModel()
	if err := model.Fit(points); err != nil {
		outcome.Err = fmt.Errorf("fit: %w", err)
		return outcome
	}
	if d, ok := model.(interface{ DailyDegenerate() bool }); ok && d.DailyDegenerate() {
		f.log.Debug().
			Str("code", s.Entity.Code).
			Msg("daily seasonality skipped: no intra-day timestamps")
	}

	predicted, err := model.Predict(f.periods)
	if err != nil {
		outcome.Err = fmt.Errorf("predict: %w", err)
		return outcome
	}
	if len(predicted) == 0 {
		outcome.Err = fmt.Errorf("predict: empty forecast")
		return outcome
	}

	final := predicted[len(predicted)-1]
	outcome.Forecast = &contracts.ForecastResult{
		Code:       s.Entity.Code,
		HorizonEnd: final.Date,
		Point:      final.Yhat,
		Lower:      final.Lower,
		Upper:      final.Upper,
	}

	f.log.Debug().
		Str("code", s.Entity.Code).
		Float64("current", outcome.CurrentPrice).
		Float64("lower", final.Lower).
		Float64("expected_profit", outcome.Score()).
		Msg("forecast finished")

	return outcome
}
