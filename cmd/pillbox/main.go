package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukerupert/pillbox/internal/backup"
	"github.com/dukerupert/pillbox/internal/cabinet"
	"github.com/dukerupert/pillbox/internal/config"
	"github.com/dukerupert/pillbox/internal/database"
	"github.com/dukerupert/pillbox/internal/logging"
	"github.com/dukerupert/pillbox/internal/middleware"
	"github.com/dukerupert/pillbox/internal/notify"
	"github.com/dukerupert/pillbox/internal/scheduler"
	"github.com/dukerupert/pillbox/internal/server"
	"github.com/dukerupert/pillbox/internal/store"
)

const usage = `usage: pillbox [command]

commands:
  serve          run the HTTP API and background jobs (default)
  backup         take an encrypted backup now and exit
  restore <id>   replace the database with backup <id>
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		err = serve(cfg, logger)
	case "backup":
		err = runBackup(cfg, logger)
	case "restore":
		if len(os.Args) < 3 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		err = restore(cfg, logger, os.Args[2])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("fatal", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func backupConfig(cfg *config.Config) backup.Config {
	return backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.Backup.Endpoint,
			Bucket:    cfg.Backup.Bucket,
			Region:    cfg.Backup.Region,
			AccessKey: cfg.Backup.AccessKey,
			SecretKey: cfg.Backup.SecretKey,
			Prefix:    cfg.Backup.Prefix,
		},
		Passphrase:    cfg.Backup.Passphrase,
		RetentionDays: cfg.Backup.RetentionDays,
	}
}

func newBackupManager(cfg *config.Config, db *sql.DB, logger *slog.Logger) *backup.Manager {
	return backup.NewManager(backupConfig(cfg), db, store.NewBackupStore(db), logger, func(s backup.Status) {
		logger.Info("backup status", "state", s.State, "in_progress", s.InProgress, "error", s.Error)
	})
}

func newNotifier(cfg *config.Config, logger *slog.Logger) notify.Notifier {
	notifiers := notify.Multi{notify.NewLog(logger)}
	if tw := cfg.Notify.Twilio; tw.Enabled() {
		notifiers = append(notifiers, notify.NewSMS(tw.AccountSID, tw.AuthToken, tw.From, tw.To))
		logger.Info("sms notifications enabled", "to", tw.To)
	}
	if pm := cfg.Notify.Postmark; pm.Enabled() {
		notifiers = append(notifiers, notify.NewEmail(pm.ServerToken, pm.From, pm.To))
		logger.Info("email notifications enabled", "to", pm.To)
	}
	return notifiers
}

func serve(cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	svc := cabinet.New(db, cabinet.Options{
		CategoryLimit: cfg.Cabinet.CategoryLimit,
		HistoryLimit:  cfg.Cabinet.HistoryLimit,
	}, logger)
	backups := newBackupManager(cfg, db, logger)

	var sched *scheduler.Scheduler
	if cfg.Schedule.Enabled {
		sched = scheduler.New(scheduler.Config{
			Location:     cfg.Schedule.Location(),
			RefillSpec:   cfg.Schedule.Refill,
			DueSpec:      cfg.Schedule.Due,
			LowStockSpec: cfg.Schedule.LowStock,
			BackupSpec:   cfg.Schedule.Backup,
		}, svc, store.NewNotificationStore(db), newNotifier(cfg, logger), backups, logger)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	proxies, err := middleware.NewIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}
	srv := server.New(db, svc, backups, cfg.RateLimit.PerMinute, proxies, logger)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Expired rate limit windows.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("pillbox listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	return nil
}

func runBackup(cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	b, err := newBackupManager(cfg, db, logger).RunNow(context.Background())
	if err != nil {
		return err
	}
	logger.Info("backup complete", "id", b.ID, "key", b.S3Key, "size", b.SizeBytes)
	return nil
}

func restore(cfg *config.Config, logger *slog.Logger, rawID string) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid backup id %q", rawID)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	restored := cfg.Database.Path + ".restore"
	if err := newBackupManager(cfg, db, logger).Restore(context.Background(), id, restored); err != nil {
		db.Close()
		return fmt.Errorf("restore backup %d: %w", id, err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	if err := backup.Install(restored, cfg.Database.Path); err != nil {
		return err
	}
	logger.Info("database restored", "backup_id", id, "path", cfg.Database.Path)
	return nil
}
