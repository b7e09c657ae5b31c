package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"kindred/internal/config"
	"kindred/internal/database"
	"kindred/internal/database/migration"
	dbpostgres "kindred/internal/database/postgres"
	"kindred/internal/domain/match"
	"kindred/internal/domain/profile"
	"kindred/internal/infrastructure/cache"
	"kindred/internal/infrastructure/durable"
	"kindred/internal/metrics"
	"kindred/internal/pkg/lock"
	"kindred/internal/platform/logger"
	"kindred/internal/repository"
	"kindred/internal/usecase/matchpool"
	"kindred/internal/usecase/pool"
	profileuc "kindred/internal/usecase/profile"
	"kindred/internal/ws"
	"kindred/migrations"
)

// Container owns every long-lived dependency of the service.
type Container struct {
	Config  config.Config
	Logger  *logger.Logger
	Metrics *metrics.Metrics

	Redis     *cache.Redis
	DurableDB *sql.DB
	Durable   *durable.Store
	// DB is nil when no remote store is configured or it was unreachable at
	// startup.
	DB database.DB

	Locks     *lock.Registry
	Profiles  *profileuc.Manager
	Decisions *repository.DurableDecisionRepository
	Generator *pool.Generator
	Hub       *ws.Hub
	Matches   *matchpool.Manager
}

func NewContainer(ctx context.Context, cfg config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: log, Metrics: metrics.New()}

	c.Redis = cache.NewRedis(cfg.Redis, log)

	durableDB, err := durable.Open(ctx, cfg.Durable.Path)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.DurableDB = durableDB
	c.Durable = durable.NewStore(durableDB)

	c.DB = connectRemote(ctx, cfg, log)

	var remote profile.RemoteStore
	var source match.CandidateSource = pool.NewStaticCandidateSource(pool.DemoCandidates(time.Now()))
	if c.DB != nil {
		remote = repository.NewPostgresProfileRepository(c.DB)
		source = pool.NewFallbackCandidateSource(repository.NewPostgresCandidateRepository(c.DB), source, log)
	}

	c.Locks = lock.NewRegistry(cfg.Profile.NavigationRelease)
	c.Profiles = profileuc.NewManager(c.Redis, c.Durable, remote, c.Locks, c.Metrics, log, profileuc.Options{
		SessionTTL:    cfg.Redis.TTL,
		RemoteTimeout: cfg.Profile.RemoteTimeout,
		WriteRetries:  cfg.Profile.WriteRetries,
	})

	c.Decisions = repository.NewDurableDecisionRepository(c.Durable, log)
	c.Generator = pool.NewGenerator(source, nil, log)
	c.Hub = ws.NewHub(log)

	c.Matches, err = matchpool.NewManager(
		c.Decisions,
		c.Generator,
		c.Profiles,
		newDecider(cfg.Matching),
		c.Hub,
		c.Metrics,
		log,
		matchpool.Options{
			TargetSize:   cfg.Matching.PoolTargetSize,
			RefreshBelow: cfg.Matching.RefreshBelow,
			CacheSize:    cfg.Matching.PoolCacheSize,
		},
	)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

// connectRemote returns nil when the remote store is not configured or not
// reachable; the service then runs on the local tiers alone.
func connectRemote(ctx context.Context, cfg config.Config, log *logger.Logger) database.DB {
	if !cfg.Database.Enabled() {
		log.Info("[App] remote store not configured, running on local tiers")
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database, log)
	if err != nil {
		log.Warn("[App] remote store unreachable, running on local tiers", "err", err)
		return nil
	}

	if err := Migrate(connectCtx, cfg, db, log); err != nil {
		log.Error("[App] migrations failed, remote store disabled", "err", err)
		_ = db.Close()
		return nil
	}
	return db
}

// Migrate applies pending schema migrations to db.
func Migrate(ctx context.Context, cfg config.Config, db database.DB, log *logger.Logger) error {
	if db == nil || db.SQLDB() == nil {
		return errors.New("nil db")
	}
	runner := migration.Runner{Dir: cfg.Database.MigrationsDir, FS: migrations.FS, Logger: log}
	if err := runner.Run(ctx, db.SQLDB()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func newDecider(cfg config.MatchingConfig) matchpool.CounterpartDecider {
	if strings.EqualFold(cfg.MutualMode, "demo") {
		seeds := cfg.SeedMatchIDs
		if len(seeds) == 0 {
			seeds = pool.DemoSeedIDs
		}
		return matchpool.NewRandomDecider(seeds, nil)
	}
	return matchpool.NewReciprocalDecider(cfg.MutualMinScore)
}

// Close waits for background profile work, stops the event hub and closes
// every store.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Profiles != nil {
		c.Profiles.Wait()
	}
	c.Hub.Stop()

	var errs []error
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	if c.DurableDB != nil {
		errs = append(errs, c.DurableDB.Close())
	}
	errs = append(errs, c.Redis.Close())
	c.Logger.Sync()
	return errors.Join(errs...)
}
