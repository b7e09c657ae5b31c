package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DefaultSessionTTL     = 24 * time.Hour
	DefaultRemoteTimeout  = 5 * time.Second
	DefaultPoolTargetSize = 10
	DefaultRefreshBelow   = 3
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Durable  DurableConfig
	Profile  ProfileConfig
	Matching MatchingConfig
}

type AppConfig struct {
	AppName     string `env:"APP_NAME" envDefault:"kindred"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	HTTPPort    string `env:"HTTP_PORT,required,notEmpty"`
}

type DatabaseConfig struct {
	DBHost     string `env:"DB_HOST"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`

	ConnectTimeout        time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	PoolMaxConns          int32         `env:"DB_POOL_MAX_CONNS"`
	PoolMinConns          int32         `env:"DB_POOL_MIN_CONNS"`
	PoolMaxConnLifetime   time.Duration `env:"DB_POOL_MAX_CONN_LIFETIME"`
	PoolMaxConnIdleTime   time.Duration `env:"DB_POOL_MAX_CONN_IDLE_TIME"`
	PoolHealthCheckPeriod time.Duration `env:"DB_POOL_HEALTH_CHECK_PERIOD"`

	MigrationsDir string `env:"DB_MIGRATIONS_DIR" envDefault:"migrations"`
}

// Enabled reports whether a remote store is configured at all. Without one
// the service runs on the local tiers only.
func (c DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(c.DBHost) != "" && strings.TrimSpace(c.DBName) != ""
}

type RedisConfig struct {
	Host     string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string        `env:"REDIS_PORT" envDefault:"6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

func (c RedisConfig) Addr() string {
	return net.JoinHostPort(strings.TrimSpace(c.Host), strings.TrimSpace(c.Port))
}

type DurableConfig struct {
	Path string `env:"DURABLE_CACHE_PATH" envDefault:"kindred-cache.db"`
}

type ProfileConfig struct {
	RemoteTimeout     time.Duration `env:"REMOTE_TIMEOUT" envDefault:"5s"`
	WriteRetries      int           `env:"DURABLE_WRITE_RETRIES" envDefault:"3"`
	NavigationRelease time.Duration `env:"NAVIGATION_LOCK_RELEASE" envDefault:"50ms"`
}

type MatchingConfig struct {
	PoolTargetSize int      `env:"POOL_TARGET_SIZE" envDefault:"10"`
	RefreshBelow   int      `env:"POOL_REFRESH_BELOW" envDefault:"3"`
	PoolCacheSize  int      `env:"POOL_CACHE_SIZE" envDefault:"1024"`
	MutualMode     string   `env:"MATCH_MUTUAL_MODE" envDefault:"reciprocal"`
	MutualMinScore int      `env:"MATCH_MUTUAL_MIN_SCORE" envDefault:"70"`
	SeedMatchIDs   []string `env:"MATCH_SEED_IDS" envSeparator:","`
}

var errInvalidConfig = errors.New("invalid configuration")

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDatabase reads only the remote store settings, for tools that do not
// run the HTTP service.
func LoadDatabase() (DatabaseConfig, error) {
	cfg, err := env.ParseAs[DatabaseConfig]()
	if err != nil {
		return DatabaseConfig{}, err
	}
	if !cfg.Enabled() {
		return DatabaseConfig{}, fmt.Errorf("%w: DB_HOST and DB_NAME are required", errInvalidConfig)
	}
	return cfg, nil
}

func (c Config) validate() error {
	var problems []string
	if c.Matching.PoolTargetSize <= 0 {
		problems = append(problems, "POOL_TARGET_SIZE must be positive")
	}
	if c.Matching.RefreshBelow < 0 {
		problems = append(problems, "POOL_REFRESH_BELOW must not be negative")
	}
	switch strings.ToLower(c.Matching.MutualMode) {
	case "reciprocal", "demo":
	default:
		problems = append(problems, "MATCH_MUTUAL_MODE must be reciprocal or demo")
	}
	if c.Profile.WriteRetries <= 0 {
		problems = append(problems, "DURABLE_WRITE_RETRIES must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errInvalidConfig, strings.Join(problems, ", "))
	}
	return nil
}
