package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asauntung/bumdes/internal/api"
	"github.com/asauntung/bumdes/internal/auth"
	"github.com/asauntung/bumdes/internal/config"
	"github.com/asauntung/bumdes/internal/db"
	"github.com/asauntung/bumdes/internal/ledger"
	"github.com/asauntung/bumdes/internal/logger"
	"github.com/asauntung/bumdes/internal/metrics"
	"github.com/asauntung/bumdes/internal/models"
	"github.com/asauntung/bumdes/internal/notify"
	"github.com/asauntung/bumdes/internal/repository"
	"github.com/asauntung/bumdes/internal/repository/memory"
	"github.com/asauntung/bumdes/internal/repository/postgres"
	"github.com/asauntung/bumdes/internal/services"
	"github.com/asauntung/bumdes/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	metrics.Init()

	// persistence + change sources
	var (
		trx     repository.Transactions
		ready   func(context.Context) error
		sources []notify.Subscriber
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if cfg.Migrate {
			if err := db.RunMigrations(ctx, pool); err != nil {
				return err
			}
		}
		repos := postgres.NewRepositories(pool)
		trx, ready = repos.Transactions, repos.Ping
		sources = append(sources, notify.NewPostgres(pool))
	} else {
		log.Warn("LEDGER_DATABASE_URL empty, using in-memory ledger")
		mem := memory.New()
		if cfg.SeedOpeningBalance > 0 {
			seedOpening(ctx, mem, cfg.SeedOpeningBalance)
		}
		trx = mem
	}

	var feed notify.Feed
	if cfg.RedisURL != "" {
		rf, err := notify.NewRedis(ctx, cfg.RedisURL, cfg.RedisChannel, log)
		if err != nil {
			return err
		}
		defer rf.Close()
		feed = rf
	} else {
		feed = notify.NewBus(16)
	}
	sources = append(sources, feed)

	users, err := directory(cfg)
	if err != nil {
		return err
	}

	store := ledger.NewStore(trx, log)
	if err := store.Reload(ctx); err != nil {
		return err
	}
	for _, src := range sources {
		go func(src notify.Subscriber) {
			if err := store.Watch(ctx, src); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("change feed stopped", "err", err)
			}
		}(src)
	}

	wp := worker.NewPool(cfg.Workers)
	defer wp.Stop()

	approvalSvc := services.NewApprovalService(trx, store, feed, wp, log)
	reportSvc := services.NewReportService(store, cfg.RecentLimit, cfg.PublicHistoryLimit)
	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)

	r := api.NewRouter(api.RouterDeps{
		TM:      tm,
		Users:   users,
		WF:      approvalSvc,
		Reports: reportSvc,
		OrgName: cfg.OrgName,
		RateRPS: cfg.RateRPS,
		Ready:   ready,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// directory builds the credential lookup; dev mode falls back to one user per role.
func directory(cfg config.Config) (*auth.Directory, error) {
	creds, err := auth.ParseCredentials(cfg.Users)
	if err != nil {
		return nil, err
	}
	if len(creds) == 0 && cfg.IsDev() {
		hash, err := auth.HashPassword(cfg.DevPassword)
		if err != nil {
			return nil, err
		}
		creds = []auth.Credential{
			{Username: "direktur", Role: models.RoleDirector, PasswordHash: hash, Name: "Direktur"},
			{Username: "bendahara", Role: models.RoleTreasurer, PasswordHash: hash, Name: "Bendahara"},
		}
		slog.Warn("LEDGER_USERS empty, seeded dev users", "users", "direktur,bendahara")
	}
	return auth.NewDirectory(creds...)
}

func seedOpening(ctx context.Context, mem *memory.Transactions, amount int64) {
	by := "direktur"
	now := time.Now().UTC()
	_, _ = mem.Insert(ctx, models.Transaction{
		Date:        models.DateOf(now),
		Description: "Penerimaan Modal Desa",
		Amount:      amount,
		Type:        models.TxnIncome,
		Category:    models.CatOpeningCapital,
		Status:      models.TxnApproved,
		CreatedBy:   by,
		ApprovedBy:  &by,
		ApprovedAt:  &now,
	}, "seed-opening")
}
