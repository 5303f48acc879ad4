package contracts

import (
	"context"
	"time"
)

// DatasetAcquirer loads the price table for a date window (S0)
// ⭐ SSOT: S0 데이터 수집 인터페이스
type DatasetAcquirer interface {
	Acquire(ctx context.Context, from, to time.Time) (*Dataset, error)
}

// EntityLister lists listed companies of a market segment
type EntityLister interface {
	List(ctx context.Context, market Market) ([]Entity, error)
}

// QuoteProvider fetches daily quotes of one entity
type QuoteProvider interface {
	Name() string
	Fetch(ctx context.Context, entity Entity, from, to time.Time) ([]PriceObservation, error)
}

// Channel publishes a rendered report (GitHub issue, file, webhook...)
// ⭐ SSOT: 리포트 게시 인터페이스
type Channel interface {
	Name() string
	Publish(ctx context.Context, report *Report, markdown string) error
}
