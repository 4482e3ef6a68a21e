package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/crossbeg/crossbeg-backend/api/routes"
	"github.com/crossbeg/crossbeg-backend/internal/ledger"
	"github.com/crossbeg/crossbeg-backend/internal/lifecycle"
	"github.com/crossbeg/crossbeg-backend/internal/processor"
	"github.com/crossbeg/crossbeg-backend/pkg/config"
	"github.com/crossbeg/crossbeg-backend/pkg/ethrpc"
	"github.com/crossbeg/crossbeg-backend/pkg/logger"
	"github.com/crossbeg/crossbeg-backend/pkg/metrics"
	"github.com/crossbeg/crossbeg-backend/pkg/redis"
)

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
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	paymentMetrics := metrics.NewPaymentMetrics(registry)

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	rpcClient := ethrpc.New(cfg.Ledger, logg, paymentMetrics)
	if err := rpcClient.Ping(context.Background()); err != nil {
		logg.Warn(context.Background(), "ledger rpc not reachable at startup: "+err.Error())
	}

	repo, err := ledger.NewRepository(rpcClient, cfg.Ledger.ContractAddress, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger repository", err)
		os.Exit(1)
	}

	processorClient := processor.NewClient(cfg.Processor, logg)
	engine, err := processor.NewEngine(processorClient, cfg.Processor, logg, paymentMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment engine", err)
		os.Exit(1)
	}

	guard, err := lifecycle.NewGuard(redisClient, cfg.Processor.PollTimeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create in-flight guard", err)
		os.Exit(1)
	}

	lifecycleSvc, err := lifecycle.NewService(repo, engine, guard, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create lifecycle service", err)
		os.Exit(1)
	}

	signerFor := func(address string) (ledger.Signer, error) {
		return ledger.NewRPCSigner(rpcClient, address)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"chain_id": cfg.Ledger.ChainID,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg,
			redisClient, rpcClient,
			repo, signerFor,
			lifecycleSvc, engine,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
