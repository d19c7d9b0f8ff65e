// Package main запускает сервис мониторинга CDN EdgeOne
// Сервис реализует:
// - HTTP шлюз к API метрик провайдера с кэшированием и объединением запросов
// - Дашборд: KPI, сравнение с прошлым периодом, графики ECharts
// - Ленивую загрузку топ-анализа
// - Экспорт метрик в Prometheus
package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"teo-dashboard/internal/cache"
	"teo-dashboard/internal/config"
	"teo-dashboard/internal/dashboard"
	"teo-dashboard/internal/gateway"
	"teo-dashboard/internal/handlers"
	"teo-dashboard/internal/models"
	"teo-dashboard/internal/teo"
)

// maxSessions предел одновременно хранимых сессий дашборда
const maxSessions = 1000

func main() {
	log.Println("Starting EdgeOne Dashboard...")
	log.Printf("Go version: %s", runtime.Version())
	log.Printf("NumCPU: %d", runtime.NumCPU())

	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	creds := teo.LoadCredentials(cfg.SecretID, cfg.SecretKey, cfg.KeyFilePath)
	if !creds.Valid() {
		log.Printf("Warning: provider credentials are not configured, API calls will fail")
	}

	client, err := teo.NewClient(creds, teo.Options{
		Endpoint: cfg.Endpoint,
		Region:   cfg.Region,
		Timeout:  cfg.UpstreamTimeout,
		Retries:  cfg.UpstreamRetries,
		QPS:      cfg.UpstreamQPS,
	})
	if err != nil {
		log.Fatalf("Failed to create provider client: %v", err)
	}

	// Кэш ответов: L1 в памяти, L2 в Redis при наличии REDIS_ADDR
	var store cache.Store = cache.NewMemoryStore(cfg.CacheMaxEntries)
	redisCache := connectRedis(cfg)
	var pinger handlers.Pinger
	if redisCache != nil {
		store = cache.NewTiered(store, redisCache)
		pinger = redisCache
	}

	site := models.SiteConfig{SiteName: cfg.SiteName, SiteIcon: cfg.SiteIcon}
	gw := gateway.NewService(client, store, gateway.Options{
		PagesRegions: cfg.PagesRegion,
		Site:         site,
	})

	dash := dashboard.New(gw, dashboard.Options{
		Location: cfg.Location,
		Locale:   cfg.Locale,
		Site:     site,
	})
	sessions := dashboard.NewRegistry(dash, maxSessions, cfg.SessionTTL)

	// Создаем обработчики
	handler := handlers.NewHandler(gw, sessions, pinger)

	// Настраиваем маршруты
	router := mux.NewRouter()
	handler.Register(router)

	// Prometheus метрики
	router.Handle("/prometheus", promhttp.Handler())

	// pprof для профилирования
	router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	// Middleware для логирования и метрик
	router.Use(handlers.LoggingMiddleware)
	router.Use(handlers.MetricsMiddleware)

	// Создаем HTTP сервер с настройками таймаутов
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Server listening on %s", cfg.ServerAddr)
		log.Printf("Endpoints:")
		log.Printf("  GET  /api/traffic                             - Metrics of one API family")
		log.Printf("  GET  /api/zones                               - Zone list")
		log.Printf("  GET  /api/config                              - Site name and icon")
		log.Printf("  GET  /api/pages/build-count                   - Pages build counts")
		log.Printf("  GET  /api/pages/cloud-function-requests       - Pages cloud function requests")
		log.Printf("  GET  /api/pages/cloud-function-monthly-stats  - Pages cloud function monthly stats")
		log.Printf("  GET  /api/dashboard                           - Dashboard sections")
		log.Printf("  POST /api/dashboard/top/activate              - Start top analysis")
		log.Printf("  GET  /api/dashboard/top                       - Top analysis state")
		log.Printf("  PUT  /api/dashboard/preferences               - Locale and theme")
		log.Printf("  GET  /dashboard                               - Dashboard page")
		log.Printf("  GET  /health                                  - Health check")
		log.Printf("  GET  /prometheus                              - Prometheus metrics")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	<-stop
	log.Println("Shutting down server...")

	// Контекст с таймаутом для завершения
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Завершаем HTTP сервер
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Закрываем Redis
	if redisCache != nil {
		redisCache.Close()
	}

	log.Println("Server stopped")
}

// connectRedis подключается к Redis с повторами; nil, если Redis не настроен или недоступен
func connectRedis(cfg config.Config) *cache.RedisCache {
	if cfg.RedisAddr == "" {
		log.Printf("REDIS_ADDR is not set, using in-memory cache only")
		return nil
	}

	var redisCache *cache.RedisCache
	var err error
	for i := 0; i < 5; i++ {
		redisCache, err = cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err == nil {
			log.Printf("Connected to Redis at %s", cfg.RedisAddr)
			return redisCache
		}
		log.Printf("Redis connection attempt %d failed: %v", i+1, err)
		if i < 4 {
			time.Sleep(time.Duration(i+1) * time.Second)
		}
	}

	log.Printf("Warning: Failed to connect to Redis, running without shared cache: %v", err)
	return nil
}
