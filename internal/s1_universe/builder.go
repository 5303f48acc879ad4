package s1_universe

import (
	"fmt"
	"strings"
	"time"

	"github.com/wonny/propopol/internal/contracts"
)

// 보통주만 대상: 신주인수권/우선주 표식
var (
	excludedNameMarks    = []string{"1신", "1우", "2신"}
	excludedNameSuffixes = []string{"우", "우B", "우C"}
)

// Filter decides which entities are forecast
// ⭐ SSOT: S1 종목 필터 규칙은 여기서만
type Filter struct {
	config Config
}

// Config holds filter criteria
type Config struct {
	MinObservations int                // 최소 관측 수 (기본 128)
	Horizon         int                // 최신 관측 허용 지연 (일)
	Markets         []contracts.Market // 허용 시장
}

// Universe is the filter result in dataset order
type Universe struct {
	Date     time.Time           `json:"date"`
	Series   []*contracts.Series `json:"-"`
	Excluded map[string]string   `json:"excluded"` // code → reason
}

// Codes returns the included entity codes in order
func (u *Universe) Codes() []string {
	codes := make([]string, 0, len(u.Series))
	for _, s := range u.Series {
		codes = append(codes, s.Entity.Code)
	}
	return codes
}

// NewFilter creates a new entity filter
func NewFilter(config Config) *Filter {
	return &Filter{config: config}
}

// Build applies Check to every series of the dataset, keeping dataset order
// ⭐ SSOT: S1 → 예측 대상 생성
func (f *Filter) Build(ds *contracts.Dataset, now time.Time) *Universe {
	universe := &Universe{
		Date:     now,
		Series:   make([]*contracts.Series, 0, ds.Len()),
		Excluded: make(map[string]string),
	}

	ds.Each(func(s *contracts.Series) {
		if reason := f.Check(s, now); reason != "" {
			universe.Excluded[s.Entity.Code] = reason
			return
		}
		universe.Series = append(universe.Series, s)
	})

	return universe
}

// Check returns the exclusion reason, or "" when the entity passes
func (f *Filter) Check(s *contracts.Series, now time.Time) string {
	// 1. 시장
	if !f.allowsMarket(s.Entity.Market) {
		return fmt.Sprintf("대상 시장 아님 (%s)", s.Entity.Market)
	}

	// 2. 관측 수
	if s.Len() < f.config.MinObservations {
		return fmt.Sprintf("관측 수 미달 (%d)", s.Len())
	}

	// 3. 최신성
	latest, _ := s.Latest()
	if latest.Date.Before(StaleCutoff(now, f.config.Horizon)) {
		return fmt.Sprintf("최근 시세 없음 (%s)", latest.Date.Format("2006-01-02"))
	}

	// 4. 보통주만
	if IsExcludedName(s.Entity.Name) {
		return "보통주 아님"
	}

	return "" // 통과
}

func (f *Filter) allowsMarket(market contracts.Market) bool {
	if len(f.config.Markets) == 0 {
		return true
	}
	for _, m := range f.config.Markets {
		if m == market {
			return true
		}
	}
	return false
}

// StaleCutoff is the earliest latest-observation date an entity may have.
// 관측 날짜는 UTC 자정이므로 실행일의 달력 날짜를 UTC 자정으로 고정
func StaleCutoff(now time.Time, horizonDays int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -horizonDays)
}

// IsExcludedName reports preferred shares and rights (우선주, 신주인수권)
func IsExcludedName(name string) bool {
	for _, mark := range excludedNameMarks {
		if strings.Contains(name, mark) {
			return true
		}
	}
	for _, suffix := range excludedNameSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
