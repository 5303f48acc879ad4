package forecast

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/propopol/internal/contracts"
)

type stubModel struct {
	fitErr   error
	panicMsg string
	lower    float64
}

func (s *stubModel) Fit(points []Point) error {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.fitErr
}

func (s *stubModel) Predict(periods int) ([]ForecastPoint, error) {
	out := make([]ForecastPoint, periods)
	for i := range out {
		out[i] = ForecastPoint{Date: start.AddDate(0, 0, i+1), Yhat: s.lower + 5, Lower: s.lower, Upper: s.lower + 10}
	}
	return out, nil
}

func series(n int, close float64) *contracts.Series {
	s := &contracts.Series{Entity: contracts.NewEntity("SampleCorp", "000001", contracts.MarketKOSPI)}
	for i := 0; i < n; i++ {
		s.Observations = append(s.Observations, contracts.PriceObservation{
			Code:  "000001",
			Date:  start.AddDate(0, 0, i),
			Close: close,
		})
	}
	return s
}

func TestForecaster_Success(t *testing.T) {
	f := NewForecaster(func() Model { return &stubModel{lower: 110} }, 14, zerolog.Nop())

	outcome := f.Forecast(context.Background(), series(10, 100))
	require.True(t, outcome.OK())
	assert.Equal(t, 100.0, outcome.CurrentPrice)
	assert.Equal(t, 110.0, outcome.Forecast.Lower)
	assert.Equal(t, 10.0, outcome.Score())
	assert.Equal(t, start.AddDate(0, 0, 14), outcome.Forecast.HorizonEnd)
}

func TestForecaster_NegativeScore(t *testing.T) {
	f := NewForecaster(func() Model { return &stubModel{lower: 90} }, 14, zerolog.Nop())

	outcome := f.Forecast(context.Background(), series(10, 100))
	require.True(t, outcome.OK())
	assert.Equal(t, -10.0, outcome.Score())
}

func TestForecaster_FitErrorBecomesOutcome(t *testing.T) {
	f := NewForecaster(func() Model { return &stubModel{fitErr: contracts.ErrNoVariance} }, 14, zerolog.Nop())

	outcome := f.Forecast(context.Background(), series(10, 100))
	assert.False(t, outcome.OK())
	assert.ErrorIs(t, outcome.Err, contracts.ErrNoVariance)
	assert.Equal(t, "000001", outcome.Entity.Code)
}

func TestForecaster_PanicBecomesOutcome(t *testing.T) {
	f := NewForecaster(func() Model { return &stubModel{panicMsg: "boom"} }, 14, zerolog.Nop())

	outcome := f.Forecast(context.Background(), series(10, 100))
	require.Error(t, outcome.Err)
	assert.Contains(t, outcome.Err.Error(), "boom")
	assert.Nil(t, outcome.Forecast)
}

func TestForecaster_CancelledContext(t *testing.T) {
	f := NewForecaster(func() Model { return &stubModel{lower: 110} }, 14, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := f.Forecast(ctx, series(10, 100))
	assert.ErrorIs(t, outcome.Err, contracts.ErrDeadlineExceeded)
}

func TestForecaster_EmptySeries(t *testing.T) {
	f := NewForecaster(func() Model { return &stubModel{} }, 14, zerolog.Nop())

	outcome := f.Forecast(context.Background(), series(0, 100))
	assert.True(t, errors.Is(outcome.Err, contracts.ErrInsufficientData))
}

func TestForecaster_AdditiveEndToEnd(t *testing.T) {
	f := NewAdditiveForecaster(DefaultModelConfig(), 14, zerolog.Nop())

	s := &contracts.Series{Entity: contracts.NewEntity("Trend", "000002", contracts.MarketKOSPI)}
	for _, p := range linearPoints(200, 1000, 2) {
		s.Observations = append(s.Observations, contracts.PriceObservation{Date: p.Date, Close: p.Value})
	}

	outcome := f.Forecast(context.Background(), s)
	require.NoError(t, outcome.Err)
	assert.Equal(t, 1398.0, outcome.CurrentPrice)
	assert.Greater(t, outcome.Forecast.Point, outcome.CurrentPrice)
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 213), outcome.Forecast.HorizonEnd)
}

func TestForecaster_AdditiveMinimumHistory(t *testing.T) {
	f := NewAdditiveForecaster(DefaultModelConfig(), 14, zerolog.Nop())

	// 필터 최소 관측 수(128)와 같은 길이
	s := &contracts.Series{Entity: contracts.NewEntity("Trend", "000002", contracts.MarketKOSPI)}
	for _, p := range linearPoints(128, 1000, 2) {
		s.Observations = append(s.Observations, contracts.PriceObservation{Date: p.Date, Close: p.Value})
	}

	outcome := f.Forecast(context.Background(), s)
	require.NoError(t, outcome.Err)
	assert.Equal(t, 1254.0, outcome.CurrentPrice)
	assert.InDelta(t, 1282, outcome.Forecast.Point, 2.0)
	assert.LessOrEqual(t, outcome.Forecast.Lower, outcome.Forecast.Point)
	assert.Greater(t, outcome.Forecast.Lower, outcome.CurrentPrice)
	assert.InDelta(t, 28, outcome.Score(), 5.0)
}

func TestForecaster_LogsSkippedDailySeasonality(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	f := NewAdditiveForecaster(DefaultModelConfig(), 14, log)

	s := &contracts.Series{Entity: contracts.NewEntity("Trend", "000002", contracts.MarketKOSPI)}
	for _, p := range linearPoints(128, 1000, 2) {
		s.Observations = append(s.Observations, contracts.PriceObservation{Date: p.Date, Close: p.Value})
	}

	outcome := f.Forecast(context.Background(), s)
	require.NoError(t, outcome.Err)
	assert.Contains(t, buf.String(), "daily seasonality skipped")
	assert.Contains(t, buf.String(), `"code":"000002"`)

	// 일간 계절성이 꺼져 있으면 기록하지 않음
	buf.Reset()
	cfg := DefaultModelConfig()
	cfg.DailySeasonality = false
	outcome = NewAdditiveForecaster(cfg, 14, log).Forecast(context.Background(), s)
	require.NoError(t, outcome.Err)
	assert.NotContains(t, buf.String(), "daily seasonality skipped")
}
