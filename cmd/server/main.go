package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	app "github.com/YekSoft-Technology/pikselliyo/internal/app"
	httpx "github.com/YekSoft-Technology/pikselliyo/internal/http"
	store "github.com/YekSoft-Technology/pikselliyo/internal/store"
	ws "github.com/YekSoft-Technology/pikselliyo/internal/ws"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.Env)

	// Cancel on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Snapshot store (file by default; postgres/redis via STORE_DRIVER)
	db, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("store open", "err", err)
		log.Fatal(err)
	}
	defer db.Close()

	// Hub: restore persisted rooms, then start the reactor loop
	hub := ws.NewHub(logger, cfg, db)
	if err := hub.Restore(ctx); err != nil {
		logger.Error("snapshot load", "err", err)
		log.Fatal(err)
	}
	go hub.Run(ctx)

	// HTTP + WS router
	router := httpx.NewRouter(cfg, hub)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server.listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server.crash", "err", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("server.shutdown.start")

	// shutdown
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)

	// The hub writes its final snapshot on the way out; don't exit under it.
	<-hub.Done()

	logger.Info("server.shutdown.complete")
	_ = os.Stdout.Sync()
}
