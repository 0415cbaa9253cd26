package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wanderquiz/beacon/internal/api"
	"github.com/wanderquiz/beacon/internal/config"
	"github.com/wanderquiz/beacon/internal/ingest"
	"github.com/wanderquiz/beacon/internal/kv"
	"github.com/wanderquiz/beacon/internal/telemetry"
)

func main() {
	cfgPath := flag.String("config", "configs/beacon.yaml", "Path to YAML config")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}
	if *addr == "" {
		*addr = cfg.Server.Addr
	}

	// ── Remote tier (optional) ────────────────────────────────────────────────
	var (
		remote telemetry.RemoteKV
		pinger kv.Pinger
	)
	if cfg.Redis.Addr != "" {
		r := kv.NewRedis(kv.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  time.Duration(cfg.Redis.TimeoutMs) * time.Millisecond,
		})
		defer r.Close()
		remote = r
		pinger = r
		slog.Info("remote tier configured", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	} else {
		slog.Info("remote tier not configured, running on local and memory tiers")
	}
	prober := telemetry.NewPingProber(cfg.Redis.Addr != "", pinger,
		time.Duration(cfg.Telemetry.ProbeTimeoutMs)*time.Millisecond)

	// ── Local fallback tier ───────────────────────────────────────────────────
	local := telemetry.NewLocalStore(cfg.Telemetry.LocalPath)
	if err := local.EnsureInitialized(); err != nil {
		slog.Warn("local event store init failed, writes will fall through to memory", "err", err)
	}

	store := telemetry.NewStore(prober, remote, local, logger)

	// ── Ingest engine ─────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := ingest.New(ctx, store, cfg.Ingest)

	// ── Config hot reload ─────────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.Config) {
		if err := config.Validate(newCfg); err != nil {
			slog.Warn("hot-reload skipped: config invalid", "err", err)
			return
		}
		slog.Info("config hot-reloaded", "read_limit", newCfg.Telemetry.ReadLimit)
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.New(eng, store, loader)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutMs) * time.Millisecond,
	}

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	eng.Shutdown() // drain queued writes before stopping the workers
	cancel()
	slog.Info("goodbye")
}
