// Command migration manages the dotmatchlens schema. Migrations are embedded
// in the binary; MIGRATIONS_DIR points at a directory to use instead.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	crerr "github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/riskibarqy/dotmatchlens/db"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/platform/pgdsn"
	"github.com/spf13/cobra"
)

type migrationConfig struct {
	DBURL            string        `env:"DB_URL,required,notEmpty"`
	Dir              string        `env:"MIGRATIONS_DIR"`
	BinaryParameters bool          `env:"DB_BINARY_PARAMETERS" envDefault:"true"`
	LogLevel         logging.Level `env:"APP_LOG_LEVEL" envDefault:"info"`
}

func (c migrationConfig) dsn() string {
	if c.BinaryParameters {
		return pgdsn.WithBinaryParameters(c.DBURL)
	}
	return c.DBURL
}

// session is opened once per invocation, before any subcommand runs.
type session struct {
	logger *logging.Logger
	m      *migrate.Migrate
	source string
	target string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	s := &session{logger: logging.NewNop()}
	root := &cobra.Command{
		Use:           "migration",
		Short:         "Apply or roll back the dotmatchlens schema",
		Long:          "Reads DB_URL (required), MIGRATIONS_DIR and DB_BINARY_PARAMETERS from the environment.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// help and completion need no database.
			if cmd.RunE == nil {
				return nil
			}
			if err := s.open(); err != nil {
				cmd.PrintErrln(err)
				return err
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) { s.close() },
	}

	root.AddCommand(
		s.command("up", "Apply every pending migration", cobra.NoArgs, func(m *migrate.Migrate, _ []string) (string, error) {
			return "schema is up to date", ignoreNoChange(m.Up())
		}),
		s.command("down [steps]", "Roll back steps migrations (default 1)", cobra.MaximumNArgs(1), runDown),
		s.command("force <version>", "Mark version as applied and clean", cobra.ExactArgs(1), runForce),
		s.command("goto <version>", "Migrate up or down to version", cobra.ExactArgs(1), runGoto),
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				current, note, err := readVersion(s.m)
				if err != nil {
					return s.fail("version", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), current)
				s.logger.Info(note, "source", s.source, "target", s.target)
				return nil
			},
		},
	)
	return root
}

func (s *session) open() error {
	var cfg migrationConfig
	if err := env.Parse(&cfg); err != nil {
		return err
	}
	s.logger = logging.NewJSONWriter(cfg.LogLevel, os.Stderr).Named("migration")

	dsn := cfg.dsn()
	s.target = pgdsn.Target(dsn)
	m, source, err := newMigrator(cfg.Dir, dsn)
	if err != nil {
		s.logger.Error("open migrator", "target", s.target, "error", err)
		return err
	}
	s.m, s.source = m, source
	return nil
}

func (s *session) close() {
	if s.m != nil {
		srcErr, dbErr := s.m.Close()
		if err := crerr.CombineErrors(srcErr, dbErr); err != nil {
			s.logger.Warn("close migrator", "error", err)
		}
	}
	_ = s.logger.Sync()
}

func (s *session) fail(command string, err error) error {
	s.logger.Error("migration failed", "command", command, "source", s.source, "target", s.target, "error", err)
	return err
}

func (s *session) command(use, short string, args cobra.PositionalArgs, run func(*migrate.Migrate, []string) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := run(s.m, args)
			if err != nil {
				return s.fail(cmd.Name(), err)
			}
			s.logger.Info(result, "source", s.source, "target", s.target)
			return nil
		},
	}
}

func runDown(m *migrate.Migrate, args []string) (string, error) {
	steps, err := parseSteps(args)
	if err != nil {
		return "", err
	}
	if err := ignoreNoChange(m.Steps(-steps)); err != nil {
		return "", err
	}
	return fmt.Sprintf("rolled back %d migration(s)", steps), nil
}

func runForce(m *migrate.Migrate, args []string) (string, error) {
	version, err := parseVersion(args[0])
	if err != nil {
		return "", err
	}
	if err := m.Force(version); err != nil {
		return "", crerr.Wrapf(err, "force version %d", version)
	}
	return fmt.Sprintf("forced version %d", version), nil
}

func runGoto(m *migrate.Migrate, args []string) (string, error) {
	version, err := parseVersion(args[0])
	if err != nil {
		return "", err
	}
	if err := ignoreNoChange(m.Migrate(uint(version))); err != nil {
		return "", err
	}
	return fmt.Sprintf("migrated to version %d", version), nil
}

// readVersion returns the version for stdout ("none" before the first
// migration) and a note for the log.
func readVersion(m *migrate.Migrate) (string, string, error) {
	version, dirty, err := m.Version()
	switch {
	case crerr.Is(err, migrate.ErrNilVersion):
		return "none", "no migrations applied", nil
	case err != nil:
		return "", "", crerr.Wrap(err, "read version")
	case dirty:
		return strconv.FormatUint(uint64(version), 10), fmt.Sprintf("version %d is dirty; fix it and run force %d", version, version), nil
	}
	return strconv.FormatUint(uint64(version), 10), fmt.Sprintf("at version %d", version), nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || steps <= 0 {
		return 0, crerr.Newf("down steps must be a positive integer, got %q", args[0])
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	version, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || version < 0 {
		return 0, crerr.Newf("version must be a non-negative integer, got %q", raw)
	}
	return version, nil
}

func ignoreNoChange(err error) error {
	if crerr.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func newMigrator(dir, dsn string) (*migrate.Migrate, string, error) {
	if dir = strings.TrimSpace(dir); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, "", crerr.Wrap(err, "resolve MIGRATIONS_DIR")
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			return nil, "", crerr.Newf("MIGRATIONS_DIR %q is not a directory", abs)
		}
		source := "file://" + filepath.ToSlash(abs)
		m, err := migrate.New(source, dsn)
		return m, source, err
	}

	files, err := iofs.New(db.Migrations, db.MigrationsDir)
	if err != nil {
		return nil, "", crerr.Wrap(err, "open embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", files, dsn)
	return m, "embedded", err
}
