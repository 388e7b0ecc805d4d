package controllers

import (
	"net/http"

	"github.com/omerfarooq187/pizza-pos-backend/api/responses"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/config"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/db"
	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PizzaPOS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the database file is reachable before reporting
// readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PizzaPOS-Env", cfg.App.Env)
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
