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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"go-repair-pos/internal/ai"
	"go-repair-pos/internal/app"
	"go-repair-pos/internal/auth"
	"go-repair-pos/internal/config"
	"go-repair-pos/internal/handlers"
	"go-repair-pos/internal/jobs"
	"go-repair-pos/internal/logging"
	"go-repair-pos/internal/metrics"
	"go-repair-pos/internal/middleware"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(slog.Default())
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(cfg.LogFormat)

	st, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", slog.Any("error", err))
		os.Exit(1)
	}
	m := metrics.New()
	a, err := app.New(ctx, st, m, logger)
	if err != nil {
		logger.Error("init app", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close store", slog.Any("error", err))
		}
	}()

	h := &handlers.Handler{
		Issuer:      auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Users:       a.Users,
		Products:    a.Products,
		Sales:       a.Sales,
		Repairs:     a.Repairs,
		Dues:        a.Dues,
		Settings:    a.Settings,
		Reports:     a.Reports,
		Backup:      jobs.NewBackupJob(a.Settings, cfg.BackupDir, logger, nil),
		Log:         logger,
		StoreDriver: cfg.StoreDriver,
	}
	if cfg.StoreDriver == "redis" {
		// The worker shares this Redis; let it write the files.
		queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer queue.Close()
		h.BackupQueue = queue
	}
	if cfg.AssistantEnabled() {
		h.Agent = ai.NewAgent(cfg.GeminiAPIKey, cfg.GeminiModel, &ai.Tools{
			Products: a.Products,
			Dues:     a.Dues,
			Reports:  a.Reports,
		}, logger)
	} else {
		logger.Info("GEMINI_API_KEY not set, /api/ask is disabled")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), m.Middleware(), middleware.SecureHeaders(cfg.IsProduction()))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.GET("/metrics", gin.WrapH(m.Handler()))

	if cfg.AllowRegistration {
		logger.Warn("registration route is OPEN, disable this in production")
	} else {
		logger.Info("registration route is disabled")
	}
	h.Routes(r, cfg.AllowRegistration)

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      r,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", slog.String("addr", cfg.AppAddr), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
