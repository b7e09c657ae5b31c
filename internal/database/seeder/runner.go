package seeder

import (
	"context"
	"fmt"

	"kindred/internal/database"
	"kindred/internal/platform/logger"
)

type Runner struct {
	Seeders []Seeder
	Logger  *logger.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		r.Logger.Info("[Seeder] done", "seeder", s.Name())
	}
	return nil
}
