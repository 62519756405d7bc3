package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"absensi-server-go/attendance"
	"absensi-server-go/config"
	"absensi-server-go/db"
	"absensi-server-go/handlers"
	"absensi-server-go/notify"
	"absensi-server-go/report"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "absensi"})

	loaded, err := config.LoadDotEnv()
	if err != nil {
		logger.Fatal("failed to read .env", "err", err)
	}
	if !loaded {
		logger.Info("no .env file found, using environment")
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET is not set, sessions will not survive a restart")
		cfg.SessionSecret = randomSecret()
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// Initialize the attendance database
	conn, err := db.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open database", "err", err)
	}
	store := db.NewStore(conn, logger)
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		logger.Fatal("failed to migrate database", "err", err)
	}

	notifier := attendance.NewNotifier(store, newChannel(cfg, logger),
		attendance.NotifierConfig{
			Threshold:   cfg.AbsenceThreshold,
			Destination: cfg.TelegramChatID,
			Ledger:      newLedger(ctx, cfg, logger),
		}, logger)

	var renderer report.Renderer = report.GoFPDF{}
	if cfg.PDFEngine == config.PDFEngineChrome {
		renderer = report.Chrome{Bin: cfg.ChromeBin}
	}

	apiHandler := handlers.NewAPIHandler(store, notifier, renderer, logger, cfg.Timezone)
	router := handlers.NewRouter(apiHandler, []byte(cfg.SessionSecret), cfg.GinMode == gin.ReleaseMode)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}
	go func() {
		logger.Info("starting server", "port", cfg.Port, "db", cfg.DatabasePath, "pdf", cfg.PDFEngine)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to run server", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

func newChannel(cfg *config.Config, logger *log.Logger) notify.Channel {
	if cfg.TelegramToken == "" {
		logger.Info("TELEGRAM_TOKEN not set, notifications are only logged")
		return notify.LogChannel{Logger: logger}
	}
	tg, err := notify.NewTelegram(cfg.TelegramToken, "", nil)
	if err != nil {
		logger.Error("telegram disabled, notifications are only logged", "err", err)
		return notify.LogChannel{Logger: logger}
	}
	return tg
}

// newLedger returns the redis ledger when de-duplication is on. A redis
// outage at startup falls back to notifying on every write.
func newLedger(ctx context.Context, cfg *config.Config, logger *log.Logger) attendance.Ledger {
	if !cfg.NotifyDedupe {
		return nil
	}
	client, err := db.InitializeRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("notification de-duplication disabled", "err", err)
		return nil
	}
	logger.Info("connected to redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return db.NewRedisService(client, logger)
}

// randomSecret is a throwaway per-process session key.
func randomSecret() string {
	return uuid.NewString() + uuid.NewString()
}
