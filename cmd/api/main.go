package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"

	"github.com/ocordel/chantier-api/internal/config"
	"github.com/ocordel/chantier-api/internal/domain/alert"
	"github.com/ocordel/chantier-api/internal/domain/allocation"
	"github.com/ocordel/chantier-api/internal/domain/budget"
	"github.com/ocordel/chantier-api/internal/domain/directory"
	"github.com/ocordel/chantier-api/internal/domain/predict"
	"github.com/ocordel/chantier-api/internal/domain/purchase"
	"github.com/ocordel/chantier-api/internal/infra/aiprovider"
	"github.com/ocordel/chantier-api/internal/infra/db"
	"github.com/ocordel/chantier-api/internal/infra/httpapi"
	"github.com/ocordel/chantier-api/internal/infra/logger"
	"github.com/ocordel/chantier-api/internal/infra/notify"
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

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/example.yaml"
	}
	cfg, err := config.Load(cfgPath)
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

	dirRepo := directory.NewRepo(pool)
	budgetRepo := budget.NewRepo(pool)
	allocRepo := allocation.NewRepo(pool)
	purchaseRepo := purchase.NewRepo(pool)
	alertRepo := alert.NewRepo(pool)

	budgetSvc := budget.NewService(budgetRepo, dirRepo, allocRepo, log)
	allocSvc := allocation.NewService(allocRepo, budgetRepo, dirRepo, log)

	var notifier alert.Notifier
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.AdminChatID)
		if err != nil {
			log.Error("telegram init failed", "err", err)
			return
		}
		notifier = tg
		log.Info("telegram notifier enabled", "chat_id", cfg.Telegram.AdminChatID)
	}

	alertEngine := alert.NewEngine(alertRepo, budgetSvc, alert.Thresholds{
		EngagementPct:  cfg.Alerts.EngagementThresholdPct,
		RealizationPct: cfg.Alerts.RealizationThresholdPct,
	}, notifier, log)

	purchaseSvc := purchase.NewService(purchaseRepo, budgetRepo, dirRepo, alertEngine, log)

	var provider predict.Provider
	if cfg.AI.Enabled {
		provider = aiprovider.New(cfg.AI.URL, cfg.AI.Timeout)
		log.Info("ai suggestion provider enabled", "url", cfg.AI.URL)
	}
	predictEngine := predict.NewEngine(budgetSvc, purchaseRepo, provider, cfg.AI.Timeout, predict.Rules{
		LargeBudgetThreshold: cfg.Predict.LargeBudgetThreshold,
		OverrunPct:           cfg.Predict.OverrunRulePct,
		MarginFloorPct:       cfg.Predict.MarginFloorPct,
	}, log)

	handler := httpapi.NewHandler(budgetSvc, purchaseSvc, allocSvc, alertEngine, predictEngine, log)
	srv := httpapi.New(cfg.HTTP.Addr, handler, cfg.App.Env, cfg.Metrics.Enabled)

	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
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
