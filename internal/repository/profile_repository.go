package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kindred/internal/database"
	"kindred/internal/domain/profile"

	"github.com/jackc/pgx/v5"
)

// PostgresProfileRepository is the remote store: one user_profiles row per
// profile id.
type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// Upsert inserts the row or replaces it when rec is strictly newer, so a
// late-arriving older write never overwrites a newer one.
func (r *PostgresProfileRepository) Upsert(ctx context.Context, rec profile.RemoteRecord) error {
	results, err := json.Marshal(rec.AssessmentResults)
	if err != nil {
		return fmt.Errorf("marshal assessment_results: %w", err)
	}
	var readiness []byte
	if rec.ReadinessScore != nil {
		readiness, err = json.Marshal(*rec.ReadinessScore)
		if err != nil {
			return fmt.Errorf("marshal readiness_score: %w", err)
		}
	}
	step, err := json.Marshal(rec.CurrentStep)
	if err != nil {
		return fmt.Errorf("marshal current_step: %w", err)
	}
	if rec.LastUpdated.IsZero() {
		rec.LastUpdated = time.Now().UTC()
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO user_profiles (id, assessment_results, readiness_score, onboarding_completed, current_step, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			assessment_results = EXCLUDED.assessment_results,
			readiness_score = EXCLUDED.readiness_score,
			onboarding_completed = EXCLUDED.onboarding_completed,
			current_step = EXCLUDED.current_step,
			last_updated = EXCLUDED.last_updated
		 WHERE user_profiles.last_updated < EXCLUDED.last_updated`,
		rec.ID,
		results,
		readiness,
		rec.OnboardingCompleted,
		step,
		rec.LastUpdated.UTC(),
	)
	return err
}

// Latest returns found=false when no row exists.
func (r *PostgresProfileRepository) Latest(ctx context.Context, id string) (profile.RemoteRecord, bool, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, assessment_results, readiness_score, onboarding_completed, current_step, last_updated
		 FROM user_profiles
		 WHERE id = $1
		 ORDER BY last_updated DESC
		 LIMIT 1`,
		id,
	)

	var (
		rec       profile.RemoteRecord
		results   []byte
		readiness []byte
		step      []byte
	)
	if err := row.Scan(&rec.ID, &results, &readiness, &rec.OnboardingCompleted, &step, &rec.LastUpdated); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return profile.RemoteRecord{}, false, nil
		}
		return profile.RemoteRecord{}, false, err
	}

	if len(results) > 0 {
		if err := json.Unmarshal(results, &rec.AssessmentResults); err != nil {
			return profile.RemoteRecord{}, false, fmt.Errorf("decode assessment_results: %w", err)
		}
	}
	if len(readiness) > 0 && string(readiness) != "null" {
		var score int
		if err := json.Unmarshal(readiness, &score); err != nil {
			return profile.RemoteRecord{}, false, fmt.Errorf("decode readiness_score: %w", err)
		}
		rec.ReadinessScore = &score
	}
	if len(step) > 0 {
		if err := json.Unmarshal(step, &rec.CurrentStep); err != nil {
			return profile.RemoteRecord{}, false, fmt.Errorf("decode current_step: %w", err)
		}
	}
	rec.LastUpdated = rec.LastUpdated.UTC()
	return rec, true, nil
}

func (r *PostgresProfileRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_profiles WHERE id = $1`, id)
	return err
}
