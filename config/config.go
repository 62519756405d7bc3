// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
)

// Config holds every runtime setting
type Config struct {
	Port          string
	DatabasePath  string
	SessionSecret string

	RedisAddr     string // empty disables the notification ledger
	RedisPassword string
	RedisDB       int

	AbsenceThreshold int
	NotifyDedupe     bool
	TelegramToken    string // empty logs notifications instead
	TelegramChatID   string

	PDFEngine string // "gofpdf" or "chrome"
	ChromeBin string

	LogLevel string
	Timezone *time.Location
	GinMode  string
}

const (
	PDFEngineGoFPDF = "gofpdf"
	PDFEngineChrome = "chrome"
)

// LoadDotEnv loads .env into the process environment. A missing file is not
// an error; it reports whether a file was loaded.
func LoadDotEnv(files ...string) (bool, error) {
	err := godotenv.Load(files...)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to load .env: %w", err)
}

// GetEnv returns the variable or the first default when unset.
func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           GetEnv("PORT", "8080"),
		DatabasePath:   GetEnv("DATABASE_PATH", "attendance.db"),
		SessionSecret:  GetEnv("SESSION_SECRET"),
		RedisAddr:      GetEnv("REDIS_ADDR"),
		RedisPassword:  GetEnv("REDIS_PASSWORD"),
		TelegramToken:  GetEnv("TELEGRAM_TOKEN"),
		TelegramChatID: GetEnv("TELEGRAM_CHAT_ID"),
		PDFEngine:      strings.ToLower(GetEnv("PDF_ENGINE", PDFEngineGoFPDF)),
		ChromeBin:      GetEnv("CHROME_BIN"),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		GinMode:        GetEnv("GIN_MODE", "release"),
	}

	var errs []error
	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.AbsenceThreshold, err = intEnv("ABSENCE_THRESHOLD", 3); err != nil {
		errs = append(errs, err)
	} else if cfg.AbsenceThreshold < 1 {
		errs = append(errs, fmt.Errorf("ABSENCE_THRESHOLD must be at least 1, got %d", cfg.AbsenceThreshold))
	}
	if cfg.NotifyDedupe, err = boolEnv("NOTIFY_DEDUPE", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.Timezone, err = time.LoadLocation(GetEnv("TIMEZONE", "Asia/Jakarta")); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}
	switch cfg.PDFEngine {
	case PDFEngineGoFPDF, PDFEngineChrome:
	default:
		errs = append(errs, fmt.Errorf("PDF_ENGINE must be %q or %q, got %q", PDFEngineGoFPDF, PDFEngineChrome, cfg.PDFEngine))
	}
	if cfg.NotifyDedupe && cfg.RedisAddr == "" {
		errs = append(errs, errors.New("NOTIFY_DEDUPE requires REDIS_ADDR"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	raw := GetEnv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return v, nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := GetEnv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, raw)
	}
	return v, nil
}
