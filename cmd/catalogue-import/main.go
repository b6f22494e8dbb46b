package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/JonMunkholm/catalogue-import/internal/catalogue"
	"github.com/JonMunkholm/catalogue-import/internal/config"
	"github.com/JonMunkholm/catalogue-import/internal/database"
	"github.com/JonMunkholm/catalogue-import/internal/importer"
	"github.com/JonMunkholm/catalogue-import/internal/logging"
	"github.com/JonMunkholm/catalogue-import/internal/memstore"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// cliFlags holds flag values; a flag overrides its environment variable only
// when given on the command line.
type cliFlags struct {
	flush           bool
	delimiter       string
	dryRun          bool
	scopeAttributes bool
	separator       string
	logLevel        string
}

func newRootCmd() *cobra.Command {
	var flags cliFlags

	cmd := &cobra.Command{
		Use:   "catalogue-import <file>",
		Short: "Import a product catalogue CSV into the store",
		Long: `Import products, attributes, categories and stock from a delimited file.

Columns: product_class, category breadcrumb, upc, title, description, then one
column per attribute named in the header. Rows with 55 fields end with
partner name, partner SKU, price and quantity. The whole file is imported in
one transaction; nothing is saved if any row fails.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return run(cmd, flags, path)
		},
	}

	cmd.Flags().BoolVar(&flags.flush, "flush", false, "Delete existing products, classes, partners and stock before importing")
	cmd.Flags().StringVar(&flags.delimiter, "delimiter", ",", "Single-character field delimiter")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Import into memory only; the database is not touched")
	cmd.Flags().BoolVar(&flags.scopeAttributes, "scope-attributes", false, "Look attributes up by product class and name instead of name alone")
	cmd.Flags().StringVar(&flags.separator, "breadcrumb-separator", ">", "Separator between category names")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	return cmd
}

// applyFlags copies explicitly set flags over the environment configuration.
func applyFlags(cmd *cobra.Command, flags cliFlags, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("flush") {
		cfg.Import.Flush = flags.flush
	}
	if changed("delimiter") {
		cfg.Import.Delimiter = flags.delimiter
	}
	if changed("dry-run") {
		cfg.Import.DryRun = flags.dryRun
	}
	if changed("scope-attributes") {
		cfg.Import.ScopeAttributesByClass = flags.scopeAttributes
	}
	if changed("breadcrumb-separator") {
		cfg.Import.BreadcrumbSeparator = flags.separator
	}
	if changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
}

// loadConfig reads the environment, applies flags and validates the result,
// so --dry-run lifts the DATABASE_URL requirement.
func loadConfig(cmd *cobra.Command, flags cliFlags) (*config.Config, error) {
	cfg, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, flags, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, flags cliFlags, path string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}

	logger := logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	ctx = logging.NewContext(ctx, logger)
	logger.Debug("configuration loaded", "config", cfg.String())

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		reportError(cmd.ErrOrStderr(), err)
		return err
	}
	defer closeStore()

	im := importer.New(store, importer.Options{
		Delimiter:              cfg.Import.DelimiterRune(),
		Flush:                  cfg.Import.Flush,
		ScopeAttributesByClass: cfg.Import.ScopeAttributesByClass,
		BreadcrumbSeparator:    cfg.Import.BreadcrumbSeparator,
	})

	summary, err := im.Run(ctx, path)
	if err != nil {
		reportError(cmd.ErrOrStderr(), err)
		return err
	}

	mode := "database"
	if cfg.Import.DryRun {
		mode = "dry run (nothing saved)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), `
=== Import Report ===
Run:            %s
New items:      %d
Updated items:  %d
Skipped rows:   %d
Mode:           %s
Total time:     %s
=====================
`, summary.RunID, summary.NewItems, summary.UpdatedItems, summary.Skipped, mode, summary.Duration.Round(time.Millisecond))
	return nil
}

// openStore returns the in-memory store for dry runs and a PostgreSQL store
// otherwise.
func openStore(ctx context.Context, cfg *config.Config) (catalogue.Store, func(), error) {
	if cfg.Import.DryRun {
		return memstore.New(), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		logging.FromContext(ctx).Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return database.NewStore(pool), pool.Close, nil
}

func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "import failed: %s\n", importer.FormatUserError(err))
}
