package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/marketplace-backend/internal/cron"
	product "github.com/angelmondragon/marketplace-backend/internal/products"
	"github.com/angelmondragon/marketplace-backend/internal/shops"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/instance"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/metrics"
	"github.com/angelmondragon/marketplace-backend/pkg/redis"
)

const (
	serviceName = "cron-worker"
	lockName    = "cron-worker:reconcile"
)

func main() {
	once := flag.Bool("once", false, "run one reconcile cycle and exit")
	flag.Parse()

	boot := logger.New(logger.Options{ServiceName: serviceName})
	if err := godotenv.Load(); err != nil {
		boot.Warn(context.Background(), ".env file not found, relying on environment")
	}
	cfg, err := config.Load()
	if err != nil {
		boot.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})

	if err := run(ctx, cfg, logg, *once); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker stopped")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, once bool) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	service, err := newService(cfg, logg, dbClient, redisClient)
	if err != nil {
		return err
	}

	if once {
		return service.RunOnce(ctx)
	}

	if cfg.Cron.MetricsAddr != "" {
		stopMetrics := serveMetrics(ctx, cfg.Cron.MetricsAddr, logg)
		defer stopMetrics()
	}

	logg.Info(logg.WithField(ctx, "interval", cfg.Cron.Interval.String()), "starting cron worker")
	return service.Run(ctx)
}

func newService(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*cron.Service, error) {
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName), cfg.Cron.LockTTL)
	if err != nil {
		return nil, err
	}
	jobs, err := cron.NewReconcileJobs(cron.ReconcileJobsParams{
		Logger:   logg,
		Shops:    shops.NewRepository(dbClient.DB()),
		Products: product.NewRepository(dbClient.DB()),
	})
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   cron.NewRegistry(jobs...),
		Lock:       lock,
		Metrics:    metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval:   cfg.Cron.Interval,
		JobTimeout: cfg.Cron.JobTimeout,
	})
}

// serveMetrics exposes the default registry on addr until the returned stop
// func is called.
func serveMetrics(ctx context.Context, addr string, logg *logger.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics listener failed", err)
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
