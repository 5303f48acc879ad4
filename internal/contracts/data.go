package contracts

import (
	"sort"
	"time"
)

// PriceObservation is one daily OHLC row of an entity
type PriceObservation struct {
	Code   string    `json:"code"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is one entity's observations in chronological order
type Series struct {
	Entity       Entity             `json:"entity"`
	Observations []PriceObservation `json:"observations"`
}

// Len returns the number of observations
func (s *Series) Len() int {
	return len(s.Observations)
}

// Latest returns the most recent observation
func (s *Series) Latest() (PriceObservation, bool) {
	if len(s.Observations) == 0 {
		return PriceObservation{}, false
	}
	return s.Observations[len(s.Observations)-1], true
}

// SortByDate orders observations chronologically and drops duplicate dates
func (s *Series) SortByDate() {
	sort.SliceStable(s.Observations, func(i, j int) bool {
		return s.Observations[i].Date.Before(s.Observations[j].Date)
	})

	deduped := s.Observations[:0]
	for i, obs := range s.Observations {
		if i > 0 && obs.Date.Equal(deduped[len(deduped)-1].Date) {
			deduped[len(deduped)-1] = obs
			continue
		}
		deduped = append(deduped, obs)
	}
	s.Observations = deduped
}

// Dataset is the acquired price table keyed by entity code
// ⭐ SSOT: S0 → S1 데이터셋 전달
type Dataset struct {
	From   time.Time          `json:"from"`
	To     time.Time          `json:"to"`
	Series map[string]*Series `json:"series"`
	Order  []string           `json:"order"` // 수집 순서 (결정적 순회용)
}

// NewDataset creates an empty dataset for a window
func NewDataset(from, to time.Time) *Dataset {
	return &Dataset{
		From:   from,
		To:     to,
		Series: make(map[string]*Series),
		Order:  make([]string, 0),
	}
}

// Add appends an observation, creating the entity's series on first sight
func (d *Dataset) Add(entity Entity, obs PriceObservation) {
	s, ok := d.Series[entity.Code]
	if !ok {
		s = &Series{Entity: entity}
		d.Series[entity.Code] = s
		d.Order = append(d.Order, entity.Code)
	}
	s.Observations = append(s.Observations, obs)
}

// Put stores a whole series, replacing any existing one for the entity
func (d *Dataset) Put(series *Series) {
	if _, ok := d.Series[series.Entity.Code]; !ok {
		d.Order = append(d.Order, series.Entity.Code)
	}
	d.Series[series.Entity.Code] = series
}

// Each visits the series in insertion order
func (d *Dataset) Each(fn func(*Series)) {
	for _, code := range d.Order {
		fn(d.Series[code])
	}
}

// Len returns the number of entities
func (d *Dataset) Len() int {
	return len(d.Order)
}
