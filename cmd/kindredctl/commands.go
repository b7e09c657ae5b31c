package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"kindred/internal/app"
	"kindred/internal/config"
	"kindred/internal/database"
	"kindred/internal/database/migration"
	dbpostgres "kindred/internal/database/postgres"
	"kindred/internal/database/seeder"
	"kindred/internal/domain/assessment"
	"kindred/internal/domain/matching"
	"kindred/internal/platform/logger"
	"kindred/internal/usecase/pool"
	"kindred/migrations"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	env     string
	timeout time.Duration
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "kindredctl",
		Short:         "Operator tooling for the kindred matching service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.env, "env", "production", "Logger environment (production or development)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Timeout for database commands")

	rootCmd.AddCommand(newScoreCommand())
	rootCmd.AddCommand(newPoolCommand())
	rootCmd.AddCommand(newMigrateCommand(opts))
	rootCmd.AddCommand(newSeedCommand(opts))
	return rootCmd
}

func newScoreCommand() *cobra.Command {
	var userPath, candidatePath string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score two assessment result files against each other",
		Long: `Reads two JSON files holding assessment results and prints the
compatibility score of the candidate as seen by the user.

Examples:
  kindredctl score --user me.json --candidate them.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := readResults(userPath)
			if err != nil {
				return err
			}
			candidate, err := readResults(candidatePath)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), matching.Calculate(user, candidate))
		},
	}
	cmd.Flags().StringVar(&userPath, "user", "", "Path to the user's assessment results (JSON)")
	cmd.Flags().StringVar(&candidatePath, "candidate", "", "Path to the candidate's assessment results (JSON)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("candidate")
	return cmd
}

func newPoolCommand() *cobra.Command {
	var (
		profilePath string
		limit       int
		exclude     []string
	)

	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Generate a ranked candidate pool from the demo corpus",
		Long: `Filters the built-in demo corpus by the profile's preferences, scores every
candidate and prints them best first.

Examples:
  kindredctl pool --profile me.json --limit 5
  kindredctl pool --profile me.json --exclude match-1,match-4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			user := assessment.Results{}
			if profilePath != "" {
				var err error
				if user, err = readResults(profilePath); err != nil {
					return err
				}
			}

			skip := make(map[string]struct{}, len(exclude))
			for _, id := range exclude {
				if id = strings.TrimSpace(id); id != "" {
					skip[id] = struct{}{}
				}
			}

			g := pool.NewGenerator(pool.NewStaticCandidateSource(pool.DemoCandidates(time.Now())), nil, logger.NewNop())
			items, err := g.Generate(cmd.Context(), user, skip, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tID\tNAME\tAGE\tDISTANCE\tOVERALL")
			for i, it := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%dkm\t%d\n", i+1, it.ID, it.Name, it.Age, it.DistanceKm, it.CompatibilityScore.Overall)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&profilePath, "profile", "", "Path to the user's assessment results (JSON)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum pool size")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Candidate ids to leave out")
	return cmd
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Postgres migrations",
		Long: `Connects with the DB_* environment variables and applies every pending
migration. Files in DB_MIGRATIONS_DIR take precedence over the embedded set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), opts, func(ctx context.Context, cfg config.DatabaseConfig, db database.DB, log *logger.Logger) error {
				if !status {
					return app.Migrate(ctx, config.Config{Database: cfg}, db, log)
				}

				runner := migration.Runner{Dir: cfg.MigrationsDir, FS: migrations.FS, Logger: log}
				items, err := runner.Status(ctx, db.SQLDB())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
				for _, it := range items {
					fmt.Fprintf(w, "%d\t%s\t%t\n", it.Version, it.Name, it.Applied)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "List migrations and whether each is applied")
	return cmd
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo candidate corpus into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), opts, func(ctx context.Context, cfg config.DatabaseConfig, db database.DB, log *logger.Logger) error {
				if err := app.Migrate(ctx, config.Config{Database: cfg}, db, log); err != nil {
					return err
				}
				return seeder.Runner{Seeders: seeder.Defaults(), Logger: log}.Run(ctx, db)
			})
		},
	}
}

func withDatabase(parent context.Context, opts *rootOptions, fn func(ctx context.Context, cfg config.DatabaseConfig, db database.DB, log *logger.Logger) error) error {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	log, err := logger.New(opts.env)
	if err != nil {
		return err
	}
	defer log.Sync()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, opts.timeout)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, cfg, db, log)
}

func readResults(path string) (assessment.Results, error) {
	var out assessment.Results
	b, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
