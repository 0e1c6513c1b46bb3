// Command jobly serves the companies, jobs and users API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skryldev/jobly/api"
	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/config"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/logger"
	"github.com/Skryldev/jobly/repo"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting jobly",
		zap.String("log_level", cfg.LogLevel),
		zap.String("db_driver", cfg.DBDriver),
		zap.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := &db.QueryStats{}
	database, err := openDB(ctx, cfg, log, stats)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()
	log.Info("database connected")

	app := api.New(api.Deps{
		Companies:    repo.NewCompanyRepo(database),
		Jobs:         repo.NewJobRepo(database),
		Users:        repo.NewUserRepo(database, cfg.BcryptWorkFactor),
		Signer:       auth.NewSigner(cfg.SecretKey, cfg.TokenTTL),
		DB:           database,
		Stats:        stats,
		Logger:       log,
		QueryTimeout: cfg.DBQueryTimeout,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr()))
		errCh <- app.Listen(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped with error", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("received shutdown signal")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}

	snap := stats.Snapshot()
	log.Info("server stopped",
		zap.Int64("queries", snap.Total),
		zap.Int64("failed_queries", snap.Failed),
		zap.Duration("query_time", snap.TotalTime),
	)
}

// openDB connects with retries, from DATABASE_URL when set and from the
// DB_* parts otherwise.
func openDB(ctx context.Context, cfg *config.Config, log *zap.Logger, stats *db.QueryStats) (*db.DB, error) {
	dbCfg := db.Config{
		DriverName:      cfg.DBDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		DefaultTimeout:  cfg.DBQueryTimeout,
		Logger:          log,
		Hooks: []db.Hook{
			db.CompositeHook(
				db.NewLogHook(db.LogHookConfig{
					Logger:             log,
					SlowQueryThreshold: cfg.SlowQueryThreshold,
				}),
				db.NewMetricsHook(stats),
			),
		},
	}

	var database *db.DB
	err := db.WithRetry(ctx, db.RetryConfig{
		MaxAttempts: cfg.DBConnectAttempts,
		Delay:       2 * time.Second,
	}, func() error {
		var err error
		if cfg.DatabaseURL != "" {
			database, err = db.Open(dbCfg)
		} else {
			database, err = db.OpenWithDriver(cfg.DBDriver, db.DriverOptions{
				Host:     cfg.DBHost,
				Port:     cfg.DBPort,
				User:     cfg.DBUser,
				Password: cfg.DBPassword,
				Database: cfg.DBName,
				SSLMode:  cfg.DBSSLMode,
			}, dbCfg)
		}
		if err != nil {
			log.Warn("database not ready", zap.Error(err))
		}
		return err
	})
	return database, err
}
