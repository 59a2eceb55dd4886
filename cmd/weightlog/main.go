package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"weightlog/internal/adapter/memory"
	"weightlog/internal/adapter/postgres"
	"weightlog/internal/adapter/redislock"
	"weightlog/internal/adapter/sqlite"
	"weightlog/internal/app"
	"weightlog/internal/config"
	"weightlog/internal/domain"
	"weightlog/internal/logging"
	"weightlog/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "weightlog",
		Short:        "Personal weight tracker",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(rmCmd())
	rootCmd.AddCommand(profileCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(chartCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(seedCmd())
	return rootCmd
}

// runtime is everything a command needs once the store is open.
type runtime struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   domain.RecordStore
	tracker *app.Tracker
	metrics *metrics.Metrics
	loc     *time.Location
	out     *message.Printer
	closers []func() error
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.log.Warn().Err(err).Msg("close")
		}
	}
}

// setup loads config, opens the store and the optional Redis lock, and
// loads the tracker projection.
func setup(ctx context.Context, logOut io.Writer) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg: cfg,
		log: log,
		loc: loc,
		out: message.NewPrinter(language.Make(cfg.Locale)),
	}
	if cfg.MetricsEnabled {
		rt.metrics = metrics.New()
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	rt.store = store
	rt.closers = append(rt.closers, closeStore)
	log.Debug().Str("driver", cfg.StoreDriver).Msg("store opened")

	var locker app.Locker
	if cfg.RedisURL != "" {
		client, err := redislock.Dial(ctx, cfg.RedisURL)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, client.Close)
		locker = redislock.New(client, "", cfg.LockTTL)
		log.Debug().Msg("using redis mutation lock")
	}

	rt.tracker = app.NewTracker(store, app.Options{
		Locker:   locker,
		Timeout:  cfg.StoreTimeout,
		Location: loc,
		Logger:   &rt.log,
		Metrics:  rt.metrics,
	})
	rt.tracker.Load(ctx)
	return rt, nil
}

func openStore(cfg *config.Config) (domain.RecordStore, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.DriverMemory:
		return memory.New(), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// withRuntime adapts a command body that needs an open runtime.
func withRuntime(fn func(cmd *cobra.Command, args []string, rt *runtime) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()
		return fn(cmd, args, rt)
	}
}
