package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"teo-dashboard/internal/dashboard"
	"teo-dashboard/internal/models"
)

// session находит сессию зрителя по cookie или создает новую
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *dashboard.Session {
	var id string
	if c, err := r.Cookie(dashboard.CookieName); err == nil {
		id = c.Value
	}

	s, created := h.sessions.Session(id)
	if created {
		if lang := r.Header.Get("Accept-Language"); lang != "" {
			s.UpdatePreferences(lang, "")
		}
		http.SetCookie(w, &http.Cookie{
			Name:     dashboard.CookieName,
			Value:    s.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

// controlsFromQuery разбирает range, interval, zoneId и для custom days/hours/minutes/seconds.
// Без этих параметров используются текущие значения панели.
func controlsFromQuery(q url.Values, current dashboard.Controls) dashboard.Controls {
	if !q.Has("range") && !q.Has("interval") && !q.Has("zoneId") {
		return current
	}

	ctl := dashboard.Controls{
		RangeKey: models.RangeKey(q.Get("range")),
		Interval: models.Interval(q.Get("interval")),
		ZoneID:   q.Get("zoneId"),
	}
	if ctl.RangeKey == models.RangeCustom {
		ctl.Custom = models.CustomDuration{
			Days:    queryInt(q, "days"),
			Hours:   queryInt(q, "hours"),
			Minutes: queryInt(q, "minutes"),
			Seconds: queryInt(q, "seconds"),
		}
	}
	return ctl.Normalize()
}

func queryInt(q url.Values, key string) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// load обновляет данные сессии, если их нет для запрошенной панели или запрошен refresh=1
func (h *Handler) load(r *http.Request, s *dashboard.Session) (*dashboard.View, error) {
	q := r.URL.Query()
	current := s.Controls()
	ctl := controlsFromQuery(q, current)

	if q.Get("refresh") != "1" && ctl.Equal(current) && s.Cached(ctl) {
		return s.View(), nil
	}
	return s.Refresh(r.Context(), ctl, noCache(q))
}

// DashboardHandler обрабатывает GET /api/dashboard - разделы, KPI и конфигурации графиков
func (h *Handler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	view, err := h.load(r, s)
	if err != nil {
		log.Printf("Dashboard refresh for session %s aborted: %v", s.ID(), err)
		h.respondError(w, "Dashboard refresh aborted: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	h.respondJSON(w, view, http.StatusOK)
}

// DashboardPageHandler обрабатывает GET /dashboard - HTML страница с графиками
func (h *Handler) DashboardPageHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	if _, err := h.load(r, s); err != nil {
		log.Printf("Dashboard refresh for session %s aborted: %v", s.ID(), err)
		http.Error(w, "Dashboard refresh aborted", http.StatusServiceUnavailable)
		return
	}

	page, err := s.Page()
	if err != nil {
		log.Printf("Error rendering dashboard page: %v", err)
		http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// ActivateTopHandler обрабатывает POST /api/dashboard/top/activate - раздел топ-анализа стал видимым
func (h *Handler) ActivateTopHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	h.respondJSON(w, s.ActivateTop(), http.StatusAccepted)
}

// TopHandler обрабатывает GET /api/dashboard/top - состояние и графики топ-анализа
func (h *Handler) TopHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	w.Header().Set("Cache-Control", "no-store")
	h.respondJSON(w, s.TopView(), http.StatusOK)
}

type preferencesRequest struct {
	Locale string `json:"locale"`
	Theme  string `json:"theme"`
}

type preferencesResponse struct {
	Preferences      dashboard.Preferences `json:"preferences"`
	RebuildScheduled bool                  `json:"rebuildScheduled"`
}

// PreferencesHandler обрабатывает PUT /api/dashboard/preferences - язык и тема без повторной загрузки данных
func (h *Handler) PreferencesHandler(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	s := h.session(w, r)
	prefs, scheduled := s.UpdatePreferences(req.Locale, req.Theme)
	h.respondJSON(w, preferencesResponse{Preferences: prefs, RebuildScheduled: scheduled}, http.StatusOK)
}
