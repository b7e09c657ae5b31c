package seeder

import (
	"context"
	"time"

	"kindred/internal/database"
	"kindred/internal/repository"
	"kindred/internal/usecase/pool"
)

// CandidatesSeeder loads the demo corpus into the candidates table. Rows are
// upserted by id, so re-running refreshes them in place.
type CandidatesSeeder struct {
	Now func() time.Time
}

func (CandidatesSeeder) Name() string { return "candidates" }

func (s CandidatesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "candidates",
		"id", "name", "age", "gender", "location", "distance_km", "bio",
		"photos", "interests", "attributes", "assessment_results", "last_active", "active",
	); err != nil {
		return err
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}
	return repository.NewPostgresCandidateRepository(db).UpsertCandidates(ctx, pool.DemoCandidates(now))
}
