package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"kindred/internal/database"
	"kindred/internal/domain/assessment"
	"kindred/internal/domain/match"
)

// PostgresCandidateRepository reads the candidate corpus.
type PostgresCandidateRepository struct {
	db database.DB
}

func NewPostgresCandidateRepository(db database.DB) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{db: db}
}

func (r *PostgresCandidateRepository) ListCandidates(ctx context.Context) ([]match.Candidate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, age, gender, location, distance_km, bio, photos, interests, attributes, assessment_results, last_active
		 FROM candidates
		 WHERE active = TRUE
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]match.Candidate, 0)
	for rows.Next() {
		var (
			c          match.Candidate
			gender     string
			photos     []byte
			interests  []byte
			attributes []byte
			results    []byte
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Age, &gender, &c.Location, &c.DistanceKm, &c.Bio,
			&photos, &interests, &attributes, &results, &c.LastActive); err != nil {
			return nil, err
		}
		c.Gender = assessment.Gender(gender)
		if err := unmarshalOptional(photos, &c.Photos); err != nil {
			return nil, fmt.Errorf("candidate %s photos: %w", c.ID, err)
		}
		if err := unmarshalOptional(interests, &c.Interests); err != nil {
			return nil, fmt.Errorf("candidate %s interests: %w", c.ID, err)
		}
		if err := unmarshalOptional(attributes, &c.Attributes); err != nil {
			return nil, fmt.Errorf("candidate %s attributes: %w", c.ID, err)
		}
		if len(results) > 0 && string(results) != "null" {
			var res assessment.Results
			if err := json.Unmarshal(results, &res); err != nil {
				return nil, fmt.Errorf("candidate %s assessment_results: %w", c.ID, err)
			}
			c.Assessment = &res
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertCandidates writes corpus entries inside one transaction.
func (r *PostgresCandidateRepository) UpsertCandidates(ctx context.Context, items []match.Candidate) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, c := range items {
		photos, _ := json.Marshal(c.Photos)
		interests, _ := json.Marshal(c.Interests)
		attributes, _ := json.Marshal(c.Attributes)
		var results []byte
		if c.Assessment != nil {
			results, err = json.Marshal(c.Assessment)
			if err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO candidates (id, name, age, gender, location, distance_km, bio, photos, interests, attributes, assessment_results, last_active, active)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,TRUE)
			 ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				age = EXCLUDED.age,
				gender = EXCLUDED.gender,
				location = EXCLUDED.location,
				distance_km = EXCLUDED.distance_km,
				bio = EXCLUDED.bio,
				photos = EXCLUDED.photos,
				interests = EXCLUDED.interests,
				attributes = EXCLUDED.attributes,
				assessment_results = EXCLUDED.assessment_results,
				last_active = EXCLUDED.last_active,
				active = TRUE`,
			c.ID, c.Name, c.Age, string(c.Gender), c.Location, c.DistanceKm, c.Bio,
			photos, interests, attributes, results, c.LastActive.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upsert candidate %s: %w", c.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func unmarshalOptional(raw []byte, out any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, out)
}
