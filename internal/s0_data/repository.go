package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/logger"
)

// Querier is the subset of pgxpool.Pool used by the snapshot source
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SnapshotRepository reads a maintained market-data snapshot table
// ⭐ SSOT: 스냅샷 DB 조회는 여기서만 (읽기 전용)
type SnapshotRepository struct {
	db     Querier
	logger *logger.Logger
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db Querier, log *logger.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:     db,
		logger: log.WithField("module", "snapshot"),
	}
}

const snapshotQuery = `
	SELECT name, code, market, trade_date, open, high, low, close, volume
	FROM data.market_snapshot
	WHERE trade_date BETWEEN $1 AND $2
	ORDER BY code, trade_date ASC
`

// Acquire implements contracts.DatasetAcquirer with one query over [from, to]
func (r *SnapshotRepository) Acquire(ctx context.Context, from, to time.Time) (*contracts.Dataset, error) {
	rows, err := r.db.Query(ctx, snapshotQuery, from, to)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	ds := contracts.NewDataset(from, to)
	count := 0

	for rows.Next() {
		var (
			name, code, market string
			obs                contracts.PriceObservation
		)
		if err := rows.Scan(&name, &code, &market, &obs.Date, &obs.Open, &obs.High, &obs.Low, &obs.Close, &obs.Volume); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		obs.Code = code

		ds.Add(contracts.NewEntity(name, code, contracts.Market(market)), obs)
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}

	if ds.Len() == 0 {
		return nil, fmt.Errorf("snapshot has no rows between %s and %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	r.logger.WithFields(map[string]interface{}{
		"entities":     ds.Len(),
		"observations": count,
	}).Info("Snapshot loaded")

	return ds, nil
}
