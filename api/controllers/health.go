package controllers

import (
	"net/http"
	"time"

	"github.com/cramsheets/cramsheets-backend/api/responses"
	"github.com/cramsheets/cramsheets-backend/pkg/config"
	"github.com/cramsheets/cramsheets-backend/pkg/db"
	"github.com/cramsheets/cramsheets-backend/pkg/logger"
	pkgredis "github.com/cramsheets/cramsheets-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CramSheets-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CramSheets-Env", cfg.App.Env)

		ctx, cancel := contextWithTimeout(r, readinessTimeout)
		defer cancel()

		checks := map[string]string{
			"database": "ok",
			"redis":    "ok",
		}
		healthy := true

		if dbP == nil {
			checks["database"] = "not configured"
			healthy = false
		} else if err := dbP.Ping(ctx); err != nil {
			checks["database"] = err.Error()
			healthy = false
		}

		if redisP == nil {
			checks["redis"] = "not configured"
			healthy = false
		} else if err := redisP.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		}

		status := http.StatusOK
		state := "ready"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "checks", checks), "readiness check failed")
			}
		}

		responses.WriteSuccessStatus(w, status, map[string]any{
			"status": state,
			"checks": checks,
		})
	}
}
