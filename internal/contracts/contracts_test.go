package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestNewEntity_Symbol(t *testing.T) {
	tests := []struct {
		market Market
		want   string
	}{
		{MarketKOSPI, "005930.KS"},
		{MarketKOSDAQ, "005930.KQ"},
		{MarketKONEX, "005930.KN"},
		{Market("NYSE"), "005930"},
	}

	for _, tt := range tests {
		t.Run(string(tt.market), func(t *testing.T) {
			e := NewEntity("삼성전자", "005930", tt.market)
			assert.Equal(t, tt.want, e.Symbol)
		})
	}
}

func TestEntity_Label(t *testing.T) {
	e := NewEntity("SampleCorp", "000001", MarketKOSPI)
	assert.Equal(t, "SampleCorp(000001)", e.Label())
}

func TestSeries_SortByDate(t *testing.T) {
	s := &Series{Observations: []PriceObservation{
		{Date: day("2024-01-03"), Close: 3},
		{Date: day("2024-01-01"), Close: 1},
		{Date: day("2024-01-02"), Close: 2},
		{Date: day("2024-01-02"), Close: 22},
	}}

	s.SortByDate()

	require.Equal(t, 3, s.Len())
	assert.Equal(t, 1.0, s.Observations[0].Close)
	assert.Equal(t, 22.0, s.Observations[1].Close)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, 3.0, latest.Close)
}

func TestSeries_LatestEmpty(t *testing.T) {
	s := &Series{}
	_, ok := s.Latest()
	assert.False(t, ok)
}

func TestDataset_PreservesOrder(t *testing.T) {
	ds := NewDataset(day("2024-01-01"), day("2024-02-01"))
	b := NewEntity("B", "000002", MarketKOSPI)
	a := NewEntity("A", "000001", MarketKOSPI)

	ds.Add(b, PriceObservation{Code: b.Code, Date: day("2024-01-02"), Close: 10})
	ds.Add(a, PriceObservation{Code: a.Code, Date: day("2024-01-02"), Close: 20})
	ds.Add(b, PriceObservation{Code: b.Code, Date: day("2024-01-03"), Close: 11})

	assert.Equal(t, []string{"000002", "000001"}, ds.Order)
	assert.Equal(t, 2, ds.Series["000002"].Len())

	var seen []string
	ds.Each(func(s *Series) { seen = append(seen, s.Entity.Code) })
	assert.Equal(t, []string{"000002", "000001"}, seen)
}

func TestEntityOutcome_Score(t *testing.T) {
	ok := EntityOutcome{CurrentPrice: 100, Forecast: &ForecastResult{Lower: 110}}
	assert.True(t, ok.OK())
	assert.Equal(t, 10.0, ok.Score())

	down := EntityOutcome{CurrentPrice: 100, Forecast: &ForecastResult{Lower: 90}}
	assert.Equal(t, -10.0, down.Score())

	failed := EntityOutcome{Err: ErrInsufficientData}
	assert.False(t, failed.OK())
	assert.Equal(t, 0.0, failed.Score())
}

func TestReport_Title(t *testing.T) {
	r := &Report{Date: day("2026-10-19"), Horizon: 14}
	assert.Equal(t, "2026-10-19 stock_prediction(after 14 days)", r.Title())
}
