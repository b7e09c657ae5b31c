package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"kindred/internal/database"
	"kindred/internal/domain/assessment"
	"kindred/internal/domain/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assign(dest []any, vals []any) error {
	if len(dest) != len(vals) {
		return fmt.Errorf("scan: want %d values, got %d", len(dest), len(vals))
	}
	for i, v := range vals {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case *bool:
			*d = v.(bool)
		case *[]byte:
			if v != nil {
				*d = v.([]byte)
			}
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("scan: unsupported dest %T", dest[i])
		}
	}
	return nil
}

type stubRow struct {
	vals []any
	err  error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.vals)
}

type stubRows struct {
	rows [][]any
	i    int
}

func (r *stubRows) Close()     {}
func (r *stubRows) Err() error { return nil }
func (r *stubRows) Next() bool {
	r.i++
	return r.i <= len(r.rows)
}
func (r *stubRows) Scan(dest ...any) error { return assign(dest, r.rows[r.i-1]) }

type stubDB struct {
	row      stubRow
	rows     [][]any
	queries  []string
	execArgs [][]any
}

func (d *stubDB) Ping(context.Context) error { return nil }
func (d *stubDB) Close() error               { return nil }
func (d *stubDB) Exec(_ context.Context, query string, args ...any) (int64, error) {
	d.queries = append(d.queries, query)
	d.execArgs = append(d.execArgs, args)
	return 1, nil
}
func (d *stubDB) Query(context.Context, string, ...any) (database.Rows, error) {
	return &stubRows{rows: d.rows}, nil
}
func (d *stubDB) QueryRow(context.Context, string, ...any) database.Row { return d.row }
func (d *stubDB) Begin(context.Context) (database.Tx, error) {
	return nil, fmt.Errorf("no transactions")
}
func (d *stubDB) SQLDB() *sql.DB { return nil }

func TestProfileRepository_UpsertEncodesColumns(t *testing.T) {
	db := &stubDB{}
	repo := NewPostgresProfileRepository(db)

	err := repo.Upsert(context.Background(), profile.RemoteRecord{
		ID:          "s1",
		CurrentStep: profile.Step{Phase: 2, Step: 3},
	})
	require.NoError(t, err)
	require.Len(t, db.execArgs, 1)

	args := db.execArgs[0]
	assert.Equal(t, "s1", args[0])
	assert.Nil(t, args[2], "missing readiness score is stored as NULL")
	assert.JSONEq(t, `{"phase":2,"step":3}`, string(args[4].([]byte)))
	assert.False(t, args[5].(time.Time).IsZero())
	assert.Contains(t, db.queries[0], "WHERE user_profiles.last_updated < EXCLUDED.last_updated",
		"an older write must not replace a newer row")
}

func TestProfileRepository_LatestNotFound(t *testing.T) {
	repo := NewPostgresProfileRepository(&stubDB{row: stubRow{err: sql.ErrNoRows}})

	_, found, err := repo.Latest(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProfileRepository_LatestDecodes(t *testing.T) {
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := NewPostgresProfileRepository(&stubDB{row: stubRow{vals: []any{
		"s1",
		[]byte(`{"attachmentStyle":{"style":"secure"}}`),
		[]byte(`72`),
		true,
		[]byte(`{"phase":4,"step":1}`),
		updated,
	}}})

	rec, found, err := repo.Latest(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, rec.ReadinessScore)
	assert.Equal(t, 72, *rec.ReadinessScore)
	assert.True(t, rec.OnboardingCompleted)
	assert.Equal(t, profile.Step{Phase: 4, Step: 1}, rec.CurrentStep)
	assert.Equal(t, updated, rec.LastUpdated)
	assert.Equal(t, 1, rec.AssessmentResults.Completed())
}

func TestCandidateRepository_ListDecodesJSONColumns(t *testing.T) {
	seen := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := NewPostgresCandidateRepository(&stubDB{rows: [][]any{
		{"c1", "Ana", 29, "women", "Oakland, CA", 12, "hi",
			[]byte(`["a.jpg"]`), []byte(`["hiking"]`), []byte(`{"smoking":"no"}`), []byte(`null`), seen},
		{"c2", "Ben", 33, "men", "Berkeley, CA", 5, "",
			nil, nil, nil, []byte(`{"attachmentStyle":{"style":"secure"}}`), seen},
	}})

	got, err := repo.ListCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, assessment.GenderWomen, got[0].Gender)
	assert.Equal(t, []string{"a.jpg"}, got[0].Photos)
	assert.Equal(t, "no", got[0].Attributes["smoking"])
	assert.Nil(t, got[0].Assessment)

	assert.Empty(t, got[1].Photos)
	require.NotNil(t, got[1].Assessment)
	assert.NotNil(t, got[1].Assessment.AttachmentStyle)
}
