package seeder

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"kindred/internal/database"
	"kindred/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	cols []string
	i    int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Next() bool {
	r.i++
	return r.i <= len(r.cols)
}
func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.cols[r.i-1]
	return nil
}

type fakeTx struct {
	db *fakeDB
}

func (t fakeTx) Exec(_ context.Context, query string, args ...any) (int64, error) {
	t.db.execs = append(t.db.execs, args[0].(string))
	return 1, nil
}
func (t fakeTx) Query(context.Context, string, ...any) (database.Rows, error) { return nil, nil }
func (t fakeTx) QueryRow(context.Context, string, ...any) database.Row        { return nil }
func (t fakeTx) Commit(context.Context) error {
	t.db.committed = true
	return nil
}
func (t fakeTx) Rollback(context.Context) error { return nil }

type fakeDB struct {
	cols      []string
	execs     []string
	committed bool
}

func (d *fakeDB) Ping(context.Context) error { return nil }
func (d *fakeDB) Close() error               { return nil }
func (d *fakeDB) Exec(context.Context, string, ...any) (int64, error) {
	return 0, nil
}
func (d *fakeDB) Query(_ context.Context, query string, _ ...any) (database.Rows, error) {
	return &fakeRows{cols: d.cols}, nil
}
func (d *fakeDB) QueryRow(context.Context, string, ...any) database.Row { return nil }
func (d *fakeDB) Begin(context.Context) (database.Tx, error)            { return fakeTx{db: d}, nil }
func (d *fakeDB) SQLDB() *sql.DB                                        { return nil }

var candidateColumns = []string{
	"id", "name", "age", "gender", "location", "distance_km", "bio",
	"photos", "interests", "attributes", "assessment_results", "last_active", "active",
}

func TestCandidatesSeeder_UpsertsDemoCorpus(t *testing.T) {
	db := &fakeDB{cols: candidateColumns}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	err := Runner{Seeders: []Seeder{CandidatesSeeder{Now: func() time.Time { return now }}}, Logger: logger.NewNop()}.Run(context.Background(), db)
	require.NoError(t, err)
	assert.True(t, db.committed)
	require.NotEmpty(t, db.execs)
	assert.Equal(t, "match-1", db.execs[0])
}

func TestCandidatesSeeder_SchemaMismatch(t *testing.T) {
	db := &fakeDB{cols: []string{"id", "name"}}

	err := Runner{Seeders: Defaults()}.Run(context.Background(), db)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "seed candidates: schema mismatch"))
	assert.Empty(t, db.execs)
}
