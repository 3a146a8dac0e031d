package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/scg/portal/internal/infrastructure/config"
	"github.com/scg/portal/internal/infrastructure/logger"
	"github.com/scg/portal/internal/infrastructure/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

// defaultCreateDir is where new migration pairs land; they are embedded on the next build
const defaultCreateDir = "internal/infrastructure/migration/sql"

var (
	migrationsPath string
	logLevel       string
	log            *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "SCG Portal database migration tool",
	Long: `Applies the portal schema to PostgreSQL.

Migrations are embedded in the binary. --path points at a directory
on disk instead. Connection settings come from config.toml or the
SCG_DATABASE_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := logger.DefaultConfig()
		cfg.Level = logLevel
		cfg.TimeFormat = "2006-01-02 15:04:05"
		log = logger.New(cfg)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "migrations directory (default: embedded schema)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(m *migration.Migrator, _ []string) error {
				return m.Up()
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(m *migration.Migrator, _ []string) error {
				return m.Down()
			}),
		},
		&cobra.Command{
			Use:   "step <n>",
			Short: "Apply n migrations (negative rolls back)",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(m *migration.Migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return m.Steps(n)
			}),
		},
		&cobra.Command{
			Use:   "goto <version>",
			Short: "Migrate to a specific version",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(m *migration.Migrator, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(version))
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show the current schema version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(m *migration.Migrator, _ []string) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					log.Info("No migrations applied")
					return nil
				}
				log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations",
			Long:  "Clears the dirty flag after a failed migration was repaired by hand.",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(m *migration.Migrator, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				log.Warn("Forcing migration version", zap.Int("version", version))
				return m.Force(version)
			}),
		},
		createCmd(),
		listCmd(),
	)
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Create a new up/down migration pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := migrationsPath
			if dir == "" {
				dir = defaultCreateDir
			}
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			mf, err := migration.Create(dir, args[0], description)
			if err != nil {
				return err
			}
			log.Info("Migration created",
				zap.Uint("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys := migration.Schema()
			if migrationsPath != "" {
				fsys = os.DirFS(migrationsPath)
			}
			entries, err := migration.List(fsys)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				log.Info("No migrations found")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), " -", e)
			}
			return nil
		},
	}
}

// withMigrator opens the database and a Migrator around fn
func withMigrator(fn func(m *migration.Migrator, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(cmd.Context()); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}

		m, err := migration.New(db, migrationsPath, log)
		if err != nil {
			return err
		}
		defer m.Close()

		log.Info("Running migration command",
			zap.String("command", cmd.Name()),
			zap.String("source", sourceName()),
		)
		return fn(m, args)
	}
}

func sourceName() string {
	if migrationsPath == "" {
		return "embedded"
	}
	return migrationsPath
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
