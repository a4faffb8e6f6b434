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

	"tenant-platform/internal/audit"
	"tenant-platform/internal/auth"
	"tenant-platform/internal/config"
	"tenant-platform/internal/httpapi"
	"tenant-platform/internal/ratelimit"
	"tenant-platform/internal/rbac"
	"tenant-platform/internal/session"
	"tenant-platform/internal/users"
	"tenant-platform/pkg/logger"
	"tenant-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := auth.NewManager(cfg.Auth, log)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	limiter, err := ratelimit.NewRedisLimiter(rdb, "auth:login:", cfg.Login.MaxAttempts, cfg.Login.Window)
	if err != nil {
		log.Error("login limiter init failed", "err", err)
		os.Exit(1)
	}

	userRepo := users.NewPostgresRepository(db)
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))
	identity := auth.NewIdentity(tokens, userRepo)
	authz := rbac.NewInterceptor(identity).OnDeny(audit.DenialAdapter{Audit: auditSvc, Actor: identity}.RecordDenied)

	h := httpapi.Handlers{
		Tokens:       tokens,
		Identity:     identity,
		Users:        userRepo,
		Sessions:     session.NewRedisStore(rdb),
		Audit:        auditSvc,
		Limiter:      limiter,
		RefreshTTL:   cfg.Auth.RefreshTokenTTL,
		RefreshPath:  cfg.Auth.RefreshPath,
		CookieSecure: cfg.IsProduction(),
		Checks: map[string]utils.Check{
			"postgres": utils.PostgresCheck(db, 2*time.Second),
			"redis":    utils.RedisCheck(rdb, 2*time.Second),
		},
	}

	r := newRouter(log, tokens, h, authz)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
