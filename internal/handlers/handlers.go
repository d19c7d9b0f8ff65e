// Package handlers содержит HTTP обработчики для API
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"teo-dashboard/internal/dashboard"
	"teo-dashboard/internal/gateway"
	"teo-dashboard/internal/models"
	"teo-dashboard/internal/teo"
)

// Gateway операции шлюза метрик, доступные через HTTP
type Gateway interface {
	Traffic(ctx context.Context, q gateway.TrafficQuery) (json.RawMessage, error)
	Zones(ctx context.Context, noCache bool) (json.RawMessage, error)
	Config() models.SiteConfig
	HasCredentials() bool
	PagesBuildCount(ctx context.Context, zoneID string, noCache bool) (json.RawMessage, error)
	PagesCloudFunctionRequests(ctx context.Context, zoneID, startTime, endTime string, noCache bool) (json.RawMessage, error)
	PagesCloudFunctionMonthly(ctx context.Context, zoneID string, noCache bool) (json.RawMessage, error)
}

// Pinger проверка доступности внешнего кэша
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler содержит зависимости для HTTP обработчиков
type Handler struct {
	gateway   Gateway
	sessions  *dashboard.Registry
	redis     Pinger
	startTime time.Time
}

// NewHandler создает новый обработчик. redis может быть nil, если L2 кэш не настроен.
func NewHandler(gw Gateway, sessions *dashboard.Registry, redis Pinger) *Handler {
	return &Handler{
		gateway:   gw,
		sessions:  sessions,
		redis:     redis,
		startTime: time.Now(),
	}
}

// Register подключает маршруты API и дашборда
func (h *Handler) Register(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/traffic", h.TrafficHandler).Methods(http.MethodGet)
	api.HandleFunc("/zones", h.ZonesHandler).Methods(http.MethodGet)
	api.HandleFunc("/config", h.ConfigHandler).Methods(http.MethodGet)
	api.HandleFunc("/pages/build-count", h.PagesBuildCountHandler).Methods(http.MethodGet)
	api.HandleFunc("/pages/cloud-function-requests", h.PagesCloudFunctionRequestsHandler).Methods(http.MethodGet)
	api.HandleFunc("/pages/cloud-function-monthly-stats", h.PagesCloudFunctionMonthlyHandler).Methods(http.MethodGet)

	api.HandleFunc("/dashboard", h.DashboardHandler).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/top", h.TopHandler).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/top/activate", h.ActivateTopHandler).Methods(http.MethodPost)
	api.HandleFunc("/dashboard/preferences", h.PreferencesHandler).Methods(http.MethodPut)

	router.HandleFunc("/dashboard", h.DashboardPageHandler).Methods(http.MethodGet)
	router.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
}

// HealthHandler обрабатывает GET /health - проверка здоровья
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	redisStatus := "disabled"
	if h.redis != nil {
		redisStatus = "disconnected"
		if h.redis.Ping(r.Context()) == nil {
			redisStatus = "connected"
		}
	}

	status := models.HealthStatus{
		Status:      "healthy",
		Timestamp:   time.Now(),
		Redis:       redisStatus,
		Credentials: h.gateway.HasCredentials(),
		Uptime:      time.Since(h.startTime).String(),
	}

	h.respondJSON(w, status, http.StatusOK)
}

// errorResponse тело ответа с ошибкой; code и requestId заполняются для ошибок провайдера
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Тексты ошибок валидации, которые видит клиент
const (
	msgMixedFamilies      = "Mixed metric families are not supported in one request. Please group metrics by API family."
	msgTopBatch           = "Top analysis metrics do not support batching. Please request one metric per call."
	msgZoneNotFound       = "Missing ZoneId and could not auto-discover one."
	msgMissingCredentials = "Missing credentials"
)

// respondUpstreamError переводит ошибку шлюза в HTTP ответ
func (h *Handler) respondUpstreamError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, gateway.ErrMixedFamilies):
		h.respondError(w, msgMixedFamilies, http.StatusBadRequest)
		return
	case errors.Is(err, gateway.ErrTopBatch):
		h.respondError(w, msgTopBatch, http.StatusBadRequest)
		return
	case errors.Is(err, gateway.ErrZoneNotFound):
		h.respondError(w, msgZoneNotFound, http.StatusBadRequest)
		return
	case errors.Is(err, teo.ErrMissingCredentials):
		h.respondError(w, msgMissingCredentials, http.StatusInternalServerError)
		return
	}

	log.Printf("Error calling %s: %v", action, err)
	code, requestID := teo.ErrorDetails(err)
	h.respondJSON(w, errorResponse{Error: err.Error(), Code: code, RequestID: requestID}, http.StatusInternalServerError)
}

// respondRaw отправляет ответ провайдера без изменений
func (h *Handler) respondRaw(w http.ResponseWriter, data json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// respondJSON отправляет JSON ответ
func (h *Handler) respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError отправляет ошибку в JSON формате
func (h *Handler) respondError(w http.ResponseWriter, message string, status int) {
	h.respondJSON(w, errorResponse{Error: message}, status)
}

func cacheFor(w http.ResponseWriter, ttl time.Duration) {
	w.Header().Set("Cache-Control", "private, max-age="+strconv.Itoa(int(ttl.Seconds())))
}
