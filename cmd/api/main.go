// Command api is the ledger service process: loads configuration, connects
// to Postgres, mounts the HTTP surface, and serves until signaled to stop.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/llk-ledger/ledger/internal/config"
	"github.com/llk-ledger/ledger/internal/httpapi"
	"github.com/llk-ledger/ledger/internal/logging"
	"github.com/llk-ledger/ledger/internal/service/apikey"
	"github.com/llk-ledger/ledger/internal/service/ledger"
	"github.com/llk-ledger/ledger/internal/service/posting"
	"github.com/llk-ledger/ledger/internal/service/read"
	"github.com/llk-ledger/ledger/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)

	pool, err := newPool(cfg.Database)
	if err != nil {
		logger.Error("database connect failed", err, nil)
		os.Exit(1)
	}
	defer pool.Close()

	st := store.New(pool, logger)

	postingSvc := posting.New(st, logger)
	readSvc := read.New(st)
	ledgerSvc := ledger.New(st)
	apiKeySvc := apikey.New(st)

	if cfg.Bootstrap.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		res, err := apiKeySvc.BootstrapInitialAdmin(ctx, apikey.BootstrapInput{
			TenantName: cfg.Bootstrap.TenantName,
			KeyName:    cfg.Bootstrap.KeyName,
			RawApiKey:  cfg.Bootstrap.RawAPIKey,
		})
		cancel()
		if err != nil {
			logger.Error("bootstrap failed", err, nil)
			os.Exit(1)
		}
		if res.Created {
			logger.Info("bootstrapped initial tenant and admin key", logging.Fields{
				"tenant_id":  res.TenantID.String(),
				"api_key_id": res.ApiKeyID.String(),
			})
		}
	}

	readyFunc := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(ctx) == nil
	}

	server := httpapi.NewServer(postingSvc, readSvc, ledgerSvc, apiKeySvc, logger, readyFunc)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server,
	}

	go func() {
		logger.Info("listening", logging.Fields{"port": cfg.Server.Port})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", err, nil)
			os.Exit(1)
		}
	}()

	waitForShutdown(httpServer, cfg.Server.ShutdownTimeout, logger)
}

func newPool(cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func waitForShutdown(srv *http.Server, timeout time.Duration, logger *logging.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down", nil)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", err, nil)
	}
}
