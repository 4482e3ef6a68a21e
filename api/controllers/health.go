package controllers

import (
	"context"
	"net/http"

	"github.com/crossbeg/crossbeg-backend/api/responses"
	"github.com/crossbeg/crossbeg-backend/pkg/config"
	pkgerrors "github.com/crossbeg/crossbeg-backend/pkg/errors"
	"github.com/crossbeg/crossbeg-backend/pkg/logger"
)

const envHeader = "X-CrossBeg-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness of the service's two hard dependencies: the
// in-flight guard store and the ledger RPC endpoint.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisClient, ledgerRPC pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := map[string]string{}
		healthy := true

		probe := func(name string, p pinger) {
			if p == nil {
				checks[name] = "not configured"
				healthy = false
				return
			}
			if err := p.Ping(r.Context()); err != nil {
				checks[name] = err.Error()
				healthy = false
				return
			}
			checks[name] = "ok"
		}

		probe("redis", redisClient)
		probe("ledger_rpc", ledgerRPC)

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies not ready").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
