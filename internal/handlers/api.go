package handlers

import (
	"net/http"
	"net/url"

	"teo-dashboard/internal/gateway"
	"teo-dashboard/internal/models"
	"teo-dashboard/internal/teo"
)

func noCache(q url.Values) bool {
	return q.Get("noCache") == "1"
}

// TrafficHandler обрабатывает GET /api/traffic - пачка метрик одного семейства.
// metrics принимает список через запятую или повторяющийся параметр, metric одну метрику.
func (h *Handler) TrafficHandler(w http.ResponseWriter, r *http.Request) {
	cacheFor(w, gateway.TrafficTTL)
	q := r.URL.Query()

	names := gateway.ParseMetrics(q["metrics"]...)
	if len(names) == 0 {
		names = gateway.ParseMetrics(q.Get("metric"))
	}

	data, err := h.gateway.Traffic(r.Context(), gateway.TrafficQuery{
		Metrics:   names,
		StartTime: q.Get("startTime"),
		EndTime:   q.Get("endTime"),
		Interval:  models.Interval(q.Get("interval")),
		ZoneID:    q.Get("zoneId"),
		NoCache:   noCache(q),
	})
	if err != nil {
		action := teo.FamilyTiming.Action()
		if len(names) > 0 {
			action = teo.ClassifyMetric(names[0]).Action()
		}
		h.respondUpstreamError(w, action, err)
		return
	}
	h.respondRaw(w, data)
}

// ZonesHandler обрабатывает GET /api/zones
func (h *Handler) ZonesHandler(w http.ResponseWriter, r *http.Request) {
	cacheFor(w, gateway.ZonesTTL)

	data, err := h.gateway.Zones(r.Context(), noCache(r.URL.Query()))
	if err != nil {
		h.respondUpstreamError(w, teo.ActionDescribeZones, err)
		return
	}
	h.respondRaw(w, data)
}

// ConfigHandler обрабатывает GET /api/config - название и иконка сайта
func (h *Handler) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	cacheFor(w, gateway.ConfigTTL)
	h.respondJSON(w, h.gateway.Config(), http.StatusOK)
}

// PagesBuildCountHandler обрабатывает GET /api/pages/build-count
func (h *Handler) PagesBuildCountHandler(w http.ResponseWriter, r *http.Request) {
	cacheFor(w, gateway.PagesTTL)
	q := r.URL.Query()

	data, err := h.gateway.PagesBuildCount(r.Context(), q.Get("zoneId"), noCache(q))
	if err != nil {
		h.respondUpstreamError(w, teo.ActionPagesResources, err)
		return
	}
	h.respondRaw(w, data)
}

// PagesCloudFunctionRequestsHandler обрабатывает GET /api/pages/cloud-function-requests
func (h *Handler) PagesCloudFunctionRequestsHandler(w http.ResponseWriter, r *http.Request) {
	cacheFor(w, gateway.PagesTTL)
	q := r.URL.Query()

	data, err := h.gateway.PagesCloudFunctionRequests(r.Context(), q.Get("zoneId"), q.Get("startTime"), q.Get("endTime"), noCache(q))
	if err != nil {
		h.respondUpstreamError(w, teo.ActionPagesResources, err)
		return
	}
	h.respondRaw(w, data)
}

// PagesCloudFunctionMonthlyHandler обрабатывает GET /api/pages/cloud-function-monthly-stats
func (h *Handler) PagesCloudFunctionMonthlyHandler(w http.ResponseWriter, r *http.Request) {
	cacheFor(w, gateway.PagesMonthlyTTL)
	q := r.URL.Query()

	data, err := h.gateway.PagesCloudFunctionMonthly(r.Context(), q.Get("zoneId"), noCache(q))
	if err != nil {
		h.respondUpstreamError(w, teo.ActionPagesResources, err)
		return
	}
	h.respondRaw(w, data)
}
