package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/crossbeg/crossbeg-backend/internal/ledger"
	"github.com/crossbeg/crossbeg-backend/internal/lifecycle"
	"github.com/crossbeg/crossbeg-backend/internal/processor"
	"github.com/crossbeg/crossbeg-backend/pkg/config"
	"github.com/crossbeg/crossbeg-backend/pkg/ethrpc"
	"github.com/crossbeg/crossbeg-backend/pkg/redis"
)

const testContract = "0x3333333333333333333333333333333333333333"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		Ledger: config.LedgerConfig{
			RPCURL:          "http://127.0.0.1:0",
			ChainID:         84532,
			ContractAddress: testContract,
			ReadTimeout:     time.Second,
		},
		Processor: config.ProcessorConfig{
			BaseURL:        "http://127.0.0.1:0",
			GoodsRecipient: "0xeD6c9f2573343043DD443bc633f9071ABDF688Fd",
			PollInterval:   time.Millisecond,
			PollTimeout:    10 * time.Millisecond,
			RequestTimeout: time.Second,
		},
	}

	rpcClient := ethrpc.New(cfg.Ledger, nil, nil)
	repo, err := ledger.NewRepository(rpcClient, cfg.Ledger.ContractAddress, nil)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	engine, err := processor.NewEngine(processor.NewClient(cfg.Processor, nil), cfg.Processor, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}
	svc, err := lifecycle.NewService(repo, engine, nil, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	signerFor := func(address string) (ledger.Signer, error) {
		return ledger.NewRPCSigner(rpcClient, address)
	}

	return NewRouter(cfg, nil, &redis.Client{}, rpcClient, repo, signerFor, svc, engine, prometheus.NewRegistry())
}

func TestRouterServesLiveness(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}
}

func TestRouterServesMetrics(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouterValidatesRequestID(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/requests/abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
