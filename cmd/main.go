package main

import (
	"bufio"
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"tasker/internal/cache"
	"tasker/internal/config"
	"tasker/internal/controller"
	"tasker/internal/database"
	"tasker/internal/mailer"
	"tasker/internal/repository"
	"tasker/internal/routes"
	"tasker/pkg/logger"
)

func main() {
	loadEnvFile(".env")

	ctx := context.Background()
	cfg := config.Get()

	db, err := database.Open(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error(ctx, "Database not available; exiting", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.MigrateOrCreateSchema(ctx, db); err != nil {
		logger.Error(ctx, "Schema migration failed", "error", err)
		os.Exit(1)
	}

	taskRepo := repository.NewTaskRepository(db)
	mail := mailer.New(ctx, cfg.HistoryPath)
	listCache := cache.New(ctx, cfg.RedisURL, cfg.RedisPoolSize, time.Duration(cfg.CacheTTL)*time.Second)
	defer listCache.Close()

	ctrl := controller.New(db, taskRepo, mail, listCache, cfg.ReminderFrom)

	// Optional scheduled bulk reminders
	if cfg.ReminderInterval > 0 {
		scheduler := cron.New()
		spec := "@every " + cfg.ReminderInterval.String()
		_, err := scheduler.AddFunc(spec, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			tasks, err := taskRepo.ListEmailReminder(jobCtx)
			if err != nil {
				logger.Error(jobCtx, "Scheduled bulk reminders list failed", "error", err)
				return
			}
			sent := mail.BulkSend(jobCtx, tasks, cfg.ReminderFrom)
			logger.Info(jobCtx, "Scheduled bulk reminders complete", "sent", sent)
		})
		if err != nil {
			logger.Error(ctx, "Schedule bulk reminders failed", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		logger.Info(ctx, "Bulk reminder schedule active", "interval", cfg.ReminderInterval.String())
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      routes.Router(ctrl),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}
	logger.Info(ctx, "Server stopped")
}

// loadEnvFile reads a .env file and sets env vars (only if not already set).
func loadEnvFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if strings.HasPrefix(val, `"`) && strings.HasSuffix(val, `"`) {
			val = strings.Trim(val, `"`)
		} else if strings.HasPrefix(val, "'") && strings.HasSuffix(val, "'") {
			val = strings.Trim(val, "'")
		}
		if key != "" && os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
}
