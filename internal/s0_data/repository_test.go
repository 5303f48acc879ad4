package s0_data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/propopol/pkg/logger"
)

type snapshotRow struct {
	name, code, market string
	date               time.Time
	close              float64
}

type fakeRows struct {
	rows []snapshotRow
	pos  int
	err  error
}

func (f *fakeRows) Close()                                       {}
func (f *fakeRows) Err() error                                   { return f.err }
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }

func (f *fakeRows) Next() bool {
	if f.pos >= len(f.rows) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	row := f.rows[f.pos-1]
	*dest[0].(*string) = row.name
	*dest[1].(*string) = row.code
	*dest[2].(*string) = row.market
	*dest[3].(*time.Time) = row.date
	*dest[4].(*float64) = row.close
	*dest[5].(*float64) = row.close
	*dest[6].(*float64) = row.close
	*dest[7].(*float64) = row.close
	*dest[8].(*int64) = 1000
	return nil
}

type fakeQuerier struct {
	rows *fakeRows
	err  error
	args []any
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.args = args
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func TestSnapshotRepository_Acquire(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	q := &fakeQuerier{rows: &fakeRows{rows: []snapshotRow{
		{"삼성전자", "005930", "KOSPI", d(2), 70000},
		{"삼성전자", "005930", "KOSPI", d(3), 71000},
		{"셀트리온제약", "068760", "KOSDAQ", d(2), 90000},
	}}}

	repo := NewSnapshotRepository(q, logger.Nop())
	ds, err := repo.Acquire(context.Background(), d(1), d(31))
	require.NoError(t, err)

	assert.Equal(t, []any{d(1), d(31)}, q.args)
	assert.Equal(t, []string{"005930", "068760"}, ds.Order)
	assert.Equal(t, 2, ds.Series["005930"].Len())
	assert.Equal(t, "068760.KQ", ds.Series["068760"].Entity.Symbol)
}

func TestSnapshotRepository_AcquireErrors(t *testing.T) {
	repo := NewSnapshotRepository(&fakeQuerier{err: errors.New("connection refused")}, logger.Nop())
	_, err := repo.Acquire(context.Background(), time.Now().AddDate(-1, 0, 0), time.Now())
	assert.ErrorContains(t, err, "connection refused")

	repo = NewSnapshotRepository(&fakeQuerier{rows: &fakeRows{}}, logger.Nop())
	_, err = repo.Acquire(context.Background(), time.Now().AddDate(-1, 0, 0), time.Now())
	assert.ErrorContains(t, err, "no rows")

	repo = NewSnapshotRepository(&fakeQuerier{rows: &fakeRows{err: errors.New("broken pipe")}}, logger.Nop())
	_, err = repo.Acquire(context.Background(), time.Now().AddDate(-1, 0, 0), time.Now())
	assert.ErrorContains(t, err, "broken pipe")
}
