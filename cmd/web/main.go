package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/go-mint-studio/config"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/availability"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/bootstrap"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/directory"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/logging"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/session"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/views"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet/contract"
)

const serviceName = "go-mint-studio"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.Init(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	bootstrap.SetGinMode(cfg.App.Environment)

	rdb, err := bootstrap.OpenRedis(context.Background(), bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	mintABI, err := contract.ParseMintABI()
	if err != nil {
		logger.Fatal("failed to parse mint ABI", zap.Error(err))
	}
	chains := wallet.NewPool(cfg.Chain.RPCURLs, nil)
	defer chains.Close()

	dir := directory.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	limiter := rate.NewLimiter(rate.Limit(cfg.Backend.AvailabilityRPS), cfg.Backend.AvailabilityBurst)

	galleries := views.NewRegistry[*views.Gallery](cfg.Mint.ViewIdleTTL)
	dashboards := views.NewRegistry[*views.Dashboard](cfg.Mint.ViewIdleTTL)
	defer galleries.CloseAll()
	defer dashboards.CloseAll()

	janitor := bootstrap.NewJanitor(map[string]bootstrap.Sweeper{
		"gallery":   galleries,
		"dashboard": dashboards,
	})
	if err := janitor.Start(cfg.Mint.JanitorSpec); err != nil {
		logger.Fatal("failed to start janitor", zap.Error(err))
	}
	defer janitor.Stop()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SecureCookie:   cfg.App.Environment == "production",
		Redis:          rdb,
		Sessions:       session.NewRedisStore(rdb, cfg.Redis.SessionTTL),
		Directory:      dir,
		Checker:        availability.NewChecker(dir, limiter),
		Chains:         chains,
		MintABI:        mintABI,
		Bus:            EventBus.New(),
		Galleries:      galleries,
		Dashboards:     dashboards,
		Mint: bootstrap.MintSettings{
			TargetChainID:      cfg.Chain.TargetChainID,
			TargetChainName:    cfg.Chain.TargetChainName,
			ConfirmTimeout:     cfg.Mint.ConfirmTimeout,
			WalletReplyTimeout: cfg.Mint.WalletReplyTimeout,
		},
	})

	// no WriteTimeout: view event streams stay open
	server := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.App.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
