package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BotToken       string // пустой — бот не запускается, работает только HTTP
	DatabaseURL    string
	AdminIDs       []int64
	Location       *time.Location
	HTTPAddr       string
	LogLevel       string
	Env            string // dev|prod
	SentryDSN      string
	Release        string
	ReconcileEvery time.Duration
	ReconcileCron  string
	SeedDemo       bool
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Moscow")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	adminIDs, err := parseIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}
	every, err := time.ParseDuration(getenv("RECONCILE_EVERY", "1h"))
	if err != nil {
		return nil, fmt.Errorf("RECONCILE_EVERY: %w", err)
	}
	seed, err := parseBool(os.Getenv("SEED_DEMO"))
	if err != nil {
		return nil, fmt.Errorf("SEED_DEMO: %w", err)
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("required env DATABASE_URL is empty")
	}

	return &Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		DatabaseURL:    dsn,
		AdminIDs:       adminIDs,
		Location:       loc,
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		Env:            getenv("ENV", "dev"),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		Release:        getenv("RELEASE", "dev"),
		ReconcileEvery: every,
		ReconcileCron:  getenv("RECONCILE_CRON", "0 3 * * *"),
		SeedDemo:       seed,
	}, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseBool(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
