package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crossbeg/crossbeg-backend/api/controllers"
	"github.com/crossbeg/crossbeg-backend/api/middleware"
	"github.com/crossbeg/crossbeg-backend/internal/ledger"
	"github.com/crossbeg/crossbeg-backend/internal/lifecycle"
	"github.com/crossbeg/crossbeg-backend/internal/processor"
	"github.com/crossbeg/crossbeg-backend/pkg/config"
	"github.com/crossbeg/crossbeg-backend/pkg/ethrpc"
	"github.com/crossbeg/crossbeg-backend/pkg/logger"
	"github.com/crossbeg/crossbeg-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	rpcClient *ethrpc.Client,
	repo *ledger.Repository,
	signerFor controllers.SignerFactory,
	lifecycleSvc *lifecycle.Service,
	engine *processor.Engine,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisClient, rpcClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", controllers.CreateRequest(repo, signerFor, logg))
			r.Get("/{requestId}", controllers.GetRequest(repo, logg))
			r.Post("/{requestId}/pay", controllers.PayRequest(lifecycleSvc, logg))
		})
		r.Get("/users/{address}/requests", controllers.ListUserRequests(lifecycleSvc, logg))
		r.Post("/payments/quote", controllers.GoodsQuote(engine, logg))
	})

	return r
}
