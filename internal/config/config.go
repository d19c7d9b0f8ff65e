// Package config загружает конфигурацию сервиса из окружения и файла .env
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"teo-dashboard/internal/i18n"
	"teo-dashboard/internal/retry"
)

// Config содержит конфигурацию сервиса
type Config struct {
	ServerAddr   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SecretID    string
	SecretKey   string
	KeyFilePath string

	Endpoint    string
	Region      string
	PagesRegion []string

	SiteName string
	SiteIcon string

	CacheMaxEntries int
	UpstreamTimeout time.Duration
	UpstreamRetries int
	UpstreamQPS     float64

	Location   *time.Location
	Locale     i18n.Locale
	SessionTTL time.Duration
}

const (
	minWriteTimeout    = 60 * time.Second
	writeTimeoutMargin = 15 * time.Second
)

// DefaultPagesRegions регионы для API Pages, если не заданы явно
var DefaultPagesRegions = []string{"ap-guangzhou", "ap-singapore"}

// Load читает .env (если есть) и переменные окружения
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	cfg := Config{
		ServerAddr:      getEnv("SERVER_ADDR", ":8080"),
		ReadTimeout:     getEnvDuration("READ_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		SecretID:        strings.TrimSpace(os.Getenv("SECRET_ID")),
		SecretKey:       strings.TrimSpace(os.Getenv("SECRET_KEY")),
		KeyFilePath:     getEnv("KEY_FILE", "key.txt"),
		Endpoint:        getEnv("TEO_ENDPOINT", "teo.tencentcloudapi.com"),
		Region:          getEnv("TEO_REGION", "ap-guangzhou"),
		PagesRegion:     PagesRegions(os.Getenv("TEO_PAGES_REGION"), os.Getenv("TEO_PAGES_REGIONS")),
		SiteName:        getEnv("SITE_NAME", "arelux"),
		SiteIcon:        getEnv("SITE_ICON", ""),
		CacheMaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 300),
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		UpstreamRetries: getEnvInt("UPSTREAM_RETRIES", 2),
		UpstreamQPS:     getEnvFloat("UPSTREAM_QPS", 20),
		Locale:          i18n.Normalize(getEnv("DASHBOARD_LOCALE", string(i18n.Default))),
		SessionTTL:      getEnvDuration("SESSION_TTL", 30*time.Minute),
	}

	// Pages: поиск сайта и перебор регионов идут друг за другом
	chains := 1 + len(cfg.PagesRegion)
	cfg.WriteTimeout = getEnvDuration("WRITE_TIMEOUT", WriteTimeoutFor(cfg.UpstreamTimeout, cfg.UpstreamRetries, chains))

	loc, err := loadLocation(getEnv("DASHBOARD_TZ", "Local"))
	if err != nil {
		return Config{}, err
	}
	cfg.Location = loc

	if cfg.CacheMaxEntries <= 0 {
		return Config{}, fmt.Errorf("CACHE_MAX_ENTRIES must be positive, got %d", cfg.CacheMaxEntries)
	}
	if cfg.UpstreamQPS <= 0 {
		return Config{}, fmt.Errorf("UPSTREAM_QPS must be positive, got %v", cfg.UpstreamQPS)
	}
	return cfg, nil
}

// WriteTimeoutFor время записи ответа, покрывающее самую долгую цепочку из chains
// последовательных вызовов провайдера с повторами и задержками между ними.
// 0 (без ограничения), если таймаут вызова не задан.
func WriteTimeoutFor(upstream time.Duration, retries, chains int) time.Duration {
	if upstream <= 0 {
		return 0
	}
	retries = max(retries, 0)
	chains = max(chains, 1)

	perCall := upstream*time.Duration(retries+1) + retry.DefaultPolicy().MaxDelay*3/2*time.Duration(retries)
	return max(perCall*time.Duration(chains)+writeTimeoutMargin, minWriteTimeout)
}

// PagesRegions разбирает TEO_PAGES_REGION и TEO_PAGES_REGIONS (через запятую)
// в упорядоченный список без повторов
func PagesRegions(single, list string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(r string) {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			return
		}
		seen[r] = true
		out = append(out, r)
	}

	add(single)
	for _, r := range strings.Split(list, ",") {
		add(r)
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultPagesRegions...)
	}
	return out
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_TZ %q: %w", name, err)
	}
	return loc, nil
}

// getEnv получает переменную окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленную переменную окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			log.Printf("Warning: invalid %s=%q, using %d", key, value, defaultValue)
			return defaultValue
		}
		return n
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			log.Printf("Warning: invalid %s=%q, using %v", key, value, defaultValue)
			return defaultValue
		}
		return f
	}
	return defaultValue
}

// getEnvDuration принимает "30s", "5m" или число секунд
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: invalid %s=%q, using %s", key, value, defaultValue)
	return defaultValue
}
