package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/marketplace-backend/api/responses"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

const envHeader = "X-Marketplace-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when postgres and redis both answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{"database": "ok", "redis": "ok"}
		var failed error
		if err := ping(ctx, dbP); err != nil {
			checks["database"] = "unavailable"
			failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not ready")
		}
		if err := ping(ctx, redisP); err != nil {
			checks["redis"] = "unavailable"
			if failed == nil {
				failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis not ready")
			}
		}
		if failed != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.As(failed).WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func ping(ctx context.Context, p db.Pinger) error {
	if p == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "not configured")
	}
	return p.Ping(ctx)
}
