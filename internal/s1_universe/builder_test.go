package s1_universe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/propopol/internal/contracts"
)

var now = time.Date(2024, 6, 14, 18, 30, 0, 0, time.UTC)

func makeSeries(name, code string, market contracts.Market, n int, last time.Time) *contracts.Series {
	s := &contracts.Series{Entity: contracts.NewEntity(name, code, market)}
	for i := n - 1; i >= 0; i-- {
		s.Observations = append(s.Observations, contracts.PriceObservation{
			Code:  code,
			Date:  last.AddDate(0, 0, -i),
			Close: 1000,
		})
	}
	return s
}

func defaultFilter() *Filter {
	return NewFilter(Config{
		MinObservations: 128,
		Horizon:         14,
		Markets:         []contracts.Market{contracts.MarketKOSPI},
	})
}

func TestFilter_Check(t *testing.T) {
	tests := []struct {
		name    string
		series  *contracts.Series
		include bool
	}{
		{"common stock", makeSeries("SampleCorp", "000001", contracts.MarketKOSPI, 200, now), true},
		{"preferred 1우", makeSeries("SampleCorp1우", "000002", contracts.MarketKOSPI, 200, now), false},
		{"preferred suffix 우", makeSeries("SampleCorp우", "000003", contracts.MarketKOSPI, 200, now), false},
		{"preferred suffix 우B", makeSeries("SampleCorp2우B", "000004", contracts.MarketKOSPI, 200, now), false},
		{"rights 1신", makeSeries("SampleCorp1신", "000005", contracts.MarketKOSPI, 200, now), false},
		{"rights 2신", makeSeries("Sample2신Corp", "000006", contracts.MarketKOSPI, 200, now), false},
		{"too short", makeSeries("ShortCorp", "000007", contracts.MarketKOSPI, 50, now), false},
		{"exactly minimum", makeSeries("MinCorp", "000008", contracts.MarketKOSPI, 128, now), true},
		{"stale", makeSeries("StaleCorp", "000009", contracts.MarketKOSPI, 200, now.AddDate(0, 0, -30)), false},
		{"at cutoff", makeSeries("EdgeCorp", "000010", contracts.MarketKOSPI, 200, now.AddDate(0, 0, -14)), true},
		{"other market", makeSeries("DaqCorp", "100001", contracts.MarketKOSDAQ, 200, now), false},
		{"우 inside name", makeSeries("우리금융지주", "316140", contracts.MarketKOSPI, 200, now), true},
	}

	f := defaultFilter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := f.Check(tt.series, now)
			if tt.include {
				assert.Empty(t, reason)
			} else {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestFilter_Build(t *testing.T) {
	ds := contracts.NewDataset(now.AddDate(-1, 0, 0), now)
	ds.Put(makeSeries("B", "000002", contracts.MarketKOSPI, 200, now))
	ds.Put(makeSeries("SampleCorp1우", "000009", contracts.MarketKOSPI, 200, now))
	ds.Put(makeSeries("A", "000001", contracts.MarketKOSPI, 200, now))
	ds.Put(makeSeries("Tiny", "000003", contracts.MarketKOSPI, 50, now))

	universe := defaultFilter().Build(ds, now)

	require.Equal(t, []string{"000002", "000001"}, universe.Codes())
	assert.Len(t, universe.Excluded, 2)
	assert.Contains(t, universe.Excluded["000003"], "관측 수 미달")
	assert.Equal(t, "보통주 아님", universe.Excluded["000009"])
}

func TestFilter_AllMarketsWhenUnset(t *testing.T) {
	f := NewFilter(Config{MinObservations: 1, Horizon: 14})
	assert.Empty(t, f.Check(makeSeries("DaqCorp", "100001", contracts.MarketKOSDAQ, 5, now), now))
}

func TestStaleCutoff(t *testing.T) {
	cutoff := StaleCutoff(now, 14)
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), cutoff)
}

func TestStaleCutoff_HostWestOfUTC(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	runAt := time.Date(2024, 6, 14, 18, 30, 0, 0, ny)
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), StaleCutoff(runAt, 14))

	// 컷오프 당일의 마지막 시세는 통과, 하루 전은 제외
	onCutoff := makeSeries("EdgeCorp", "000010", contracts.MarketKOSPI, 200, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, defaultFilter().Check(onCutoff, runAt))

	dayBefore := makeSeries("EdgeCorp", "000010", contracts.MarketKOSPI, 200, time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC))
	assert.NotEmpty(t, defaultFilter().Check(dayBefore, runAt))
}

func TestStaleCutoff_HostEastOfUTC(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)

	// 서울 01:00은 UTC 전날이지만 실행일은 서울 달력 기준
	runAt := time.Date(2024, 6, 15, 1, 0, 0, 0, seoul)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), StaleCutoff(runAt, 14))
}
