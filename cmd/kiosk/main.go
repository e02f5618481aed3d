package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/barber-kiosk/internal/config"
	"github.com/Spok95/barber-kiosk/internal/domain/orders"
	"github.com/Spok95/barber-kiosk/internal/domain/selection"
	"github.com/Spok95/barber-kiosk/internal/domain/styles"
	"github.com/Spok95/barber-kiosk/internal/infra/db"
	httpx "github.com/Spok95/barber-kiosk/internal/infra/http"
	"github.com/Spok95/barber-kiosk/internal/infra/logger"
	"github.com/Spok95/barber-kiosk/internal/infra/snapshot"
	"github.com/Spok95/barber-kiosk/internal/infra/storage"
	"github.com/Spok95/barber-kiosk/internal/notify"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	snapStore, err := snapshot.Open(cfg.Snapshot.Path)
	if err != nil {
		log.Error("snapshot store open failed", "err", err)
		return
	}
	defer func() { _ = snapStore.Close() }()

	sessions := selection.NewSessions(snapStore, log)
	defer sessions.Close()

	overrideStore := storage.New(pool, cfg.Storage.Dir, cfg.HTTP.BaseURL+"/files")
	merger := styles.NewMerger(overrideStore, log)
	ordersRepo := orders.NewRepo(pool)

	var notifier httpx.Notifier
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.BarberChatID, log)
		if err != nil {
			log.Error("telegram init failed", "err", err)
			return
		}
		notifier = tg
		log.Info("barber notifications enabled", "chat", cfg.Telegram.BarberChatID)
	}

	api := httpx.NewAPI(log, sessions, merger, ordersRepo, ordersRepo, notifier, cfg.Wizard.MinHaircutSelections)
	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, cfg.Storage.Dir, api)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
