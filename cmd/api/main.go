package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/marketplace-backend/api/routes"
	"github.com/angelmondragon/marketplace-backend/internal/admin"
	"github.com/angelmondragon/marketplace-backend/internal/auth"
	"github.com/angelmondragon/marketplace-backend/internal/cart"
	"github.com/angelmondragon/marketplace-backend/internal/contact"
	"github.com/angelmondragon/marketplace-backend/internal/disputes"
	"github.com/angelmondragon/marketplace-backend/internal/orders"
	product "github.com/angelmondragon/marketplace-backend/internal/products"
	"github.com/angelmondragon/marketplace-backend/internal/ratings"
	"github.com/angelmondragon/marketplace-backend/internal/shops"
	"github.com/angelmondragon/marketplace-backend/internal/users"
	"github.com/angelmondragon/marketplace-backend/pkg/auth/session"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/events"
	"github.com/angelmondragon/marketplace-backend/pkg/instance"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/metrics"
	"github.com/angelmondragon/marketplace-backend/pkg/migrate"
	"github.com/angelmondragon/marketplace-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	busOpts := events.Options{
		Buffer:  cfg.Realtime.ClientBuffer,
		Logger:  logg,
		Metrics: metrics.NewEventMetrics(prometheus.DefaultRegisterer),
	}
	var relay *events.RedisRelay
	if cfg.Realtime.RelayEnabled {
		relay = events.NewRedisRelay(redisClient, cfg.Realtime.RelayChannel, logg)
		busOpts.Relay = relay
	}
	bus := events.NewBus(busOpts)
	defer bus.Close()

	if relay != nil {
		go func() {
			if err := relay.Run(ctx, bus); err != nil {
				logg.Error(ctx, "event relay stopped", err)
			}
		}()
	}

	services, err := buildServices(cfg, logg, dbClient, sessionManager, bus)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Infra{
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Idempotency: redisClient,
			RateLimiter: redisClient,
			Events:      bus,
		}, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	bus.Close()
	return server.Shutdown(shutdownCtx)
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessions *session.Manager, bus *events.Bus) (routes.Services, error) {
	var out routes.Services
	conn := dbClient.DB()

	userRepo := users.NewRepository(conn)
	shopRepo := shops.NewRepository(conn)
	productRepo := product.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)

	var err error
	if out.Auth, err = auth.NewService(auth.ServiceParams{
		Tx:             dbClient,
		Users:          userRepo,
		Shops:          shopRepo,
		Sessions:       sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	}); err != nil {
		return out, err
	}
	if out.AdminRegister, err = auth.NewAdminRegisterService(auth.AdminRegisterServiceParams{
		Tx:             dbClient,
		Users:          userRepo,
		PasswordConfig: cfg.Password,
	}); err != nil {
		return out, err
	}
	if out.Shops, err = shops.NewService(shopRepo, productRepo, logg); err != nil {
		return out, err
	}
	if out.Products, err = product.NewService(productRepo, shopRepo, logg); err != nil {
		return out, err
	}
	if out.Cart, err = cart.NewService(cartRepo, productRepo, logg); err != nil {
		return out, err
	}
	if out.Orders, err = orders.NewService(orders.ServiceParams{
		Tx:        dbClient,
		Repo:      orderRepo,
		Products:  productRepo,
		Shops:     shopRepo,
		Cart:      cartRepo,
		Publisher: bus,
		Rate:      cfg.Commission.DecimalRate(),
		Logger:    logg,
	}); err != nil {
		return out, err
	}
	if out.Ratings, err = ratings.NewService(dbClient, ratings.NewRepository(conn), orderRepo, productRepo, userRepo, logg); err != nil {
		return out, err
	}
	if out.Disputes, err = disputes.NewService(disputes.ServiceParams{
		Tx:        dbClient,
		Repo:      disputes.NewRepository(conn),
		Orders:    orderRepo,
		Shops:     shopRepo,
		Publisher: bus,
		Logger:    logg,
	}); err != nil {
		return out, err
	}
	if out.Contact, err = contact.NewService(contact.NewRepository(conn), logg); err != nil {
		return out, err
	}
	if out.Admin, err = admin.NewService(admin.ServiceParams{
		Users:    userRepo,
		Shops:    shopRepo,
		Products: productRepo,
		Orders:   orderRepo,
		Logger:   logg,
	}); err != nil {
		return out, err
	}
	return out, nil
}
