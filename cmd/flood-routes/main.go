package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/riverwatch/go-flood-routes/internal/api"
	"github.com/riverwatch/go-flood-routes/internal/config"
	"github.com/riverwatch/go-flood-routes/internal/ingestion"
	"github.com/riverwatch/go-flood-routes/internal/logging"
	"github.com/riverwatch/go-flood-routes/internal/notify"
	"github.com/riverwatch/go-flood-routes/internal/repository"
	"github.com/riverwatch/go-flood-routes/internal/risk"
	"github.com/riverwatch/go-flood-routes/internal/routing"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assessor := risk.NewAssessor(
		risk.NewRiverLookup(db),
		risk.Classifier{DistanceOverrideKm: cfg.Risk.DistanceOverrideKm},
		cfg.Risk.SearchRadiusKm,
	)
	statusSvc := routing.NewStatusService(db, db)
	composer := routing.NewComposer(db, statusSvc)

	// Broadcaster links ingestion to the alert watcher
	broadcaster := notify.NewBroadcaster()

	// Start ingestion manager
	mgr := ingestion.NewManager(cfg, db, broadcaster)
	mgr.Start(ctx)

	// Email alerts are optional; without SMTP the service still answers
	// risk and route queries.
	var watcher *notify.Watcher
	if cfg.SMTP.Enabled {
		mailer := notify.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		watcher = notify.NewWatcher(db, assessor, mailer)
		watcher.Start(ctx, broadcaster)
		if cfg.SMTP.DigestSchedule != "" {
			if err := watcher.StartDigest(ctx, cfg.SMTP.DigestSchedule); err != nil {
				logging.Fatalf("Invalid digest schedule %q: %v", cfg.SMTP.DigestSchedule, err)
			}
		}
	}

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(5)) // 5 req/s global limit

	handler := api.NewHandler(assessor, statusSvc, composer, db, db, db)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	mgr.Stop()
	broadcaster.Close() // Close all subscriber channels gracefully
	if watcher != nil {
		watcher.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
