package dashboard

import (
	"context"
	"log"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"teo-dashboard/internal/gateway"
	"teo-dashboard/internal/i18n"
	"teo-dashboard/internal/metrics"
	"teo-dashboard/internal/models"
)

// Session состояние дашборда одного зрителя: панель управления, настройки
// отображения, кэш разделов и топ-анализ
type Session struct {
	id string
	d  *Dashboard

	mu          sync.Mutex
	controls    Controls
	prefs       Preferences
	cache       Cache
	top         topTracker
	refreshSeq  uint64
	version     uint64
	page        []byte
	pageVersion uint64

	rebuild *rebuilder
	bg      sync.WaitGroup
}

func (d *Dashboard) newSession(id string) *Session {
	s := &Session{
		id:       id,
		d:        d,
		controls: Controls{}.Normalize(),
		prefs:    Preferences{Locale: d.locale, Theme: ThemeLight},
		top:      newTopTracker(),
	}
	s.rebuild = newRebuilder(&s.bg, s.rebuildPage)
	return s
}

// ID идентификатор сессии
func (s *Session) ID() string {
	return s.id
}

// Controls текущее состояние панели
func (s *Session) Controls() Controls {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controls
}

// Preferences текущие настройки отображения
func (s *Session) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Cached сообщает, есть ли основные метрики, полученные для ctl
func (s *Session) Cached(ctl Controls) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cache.CoreFor(ctl)
	return ok
}

// Refresh выполняет цикл обновления: вычисляет диапазоны, параллельно
// запрашивает все пачки метрик и сводки Pages, нормализует ответы
// и целиком заменяет кэш основных метрик.
func (s *Session) Refresh(ctx context.Context, ctl Controls, noCache bool) (*View, error) {
	ctl = ctl.Normalize()
	timer := prometheus.NewTimer(metrics.RefreshDuration)
	defer timer.ObserveDuration()

	s.mu.Lock()
	s.refreshSeq++
	seq := s.refreshSeq
	s.controls = ctl
	needZones := !s.cache.zonesLoaded
	s.mu.Unlock()

	res := s.d.resolver.Resolve(ctl.RangeKey, ctl.Custom)

	var (
		core     *CoreEntry
		pages    pagesResult
		zones    []models.Zone
		zonesErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		core = s.d.fetchCore(ctx, ctl, res, noCache)
		return nil
	})
	g.Go(func() error {
		pages = s.d.fetchPages(ctx, ctl, res.TimeRange, noCache)
		return nil
	})
	if needZones {
		g.Go(func() error {
			zones, zonesErr = s.d.source.ListZones(ctx)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.refreshSeq {
		log.Printf("Skipping superseded refresh for session %s", s.id)
		return s.viewLocked(), nil
	}

	s.cache.Core = core
	s.cache.PagesBuild = pages.build
	s.cache.PagesTrend = pages.trend
	s.cache.PagesMonthly = pages.monthly
	if needZones {
		if zonesErr != nil {
			log.Printf("Error fetching zones: %v", zonesErr)
			s.cache.ZonesFailed = true
		} else {
			s.cache.Zones = zones
			s.cache.ZonesFailed = false
			s.cache.zonesLoaded = true
		}
	}
	s.version++

	s.startTopLoadLocked()
	return s.viewLocked(), nil
}

// View отрисовывает дашборд из кэша без обращения к провайдеру
func (s *Session) View() *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) rendererLocked() *renderer {
	return &renderer{
		locale: s.prefs.Locale,
		charts: chartBuilder{theme: s.prefs.Theme},
		loc:    s.d.resolver.Location(),
	}
}

func (s *Session) viewLocked() *View {
	r := s.rendererLocked()
	v := &View{
		SessionID:   s.id,
		Controls:    s.controls,
		Preferences: s.prefs,
		Site:        s.d.site,
		Zones:       s.zoneOptionsLocked(r),
		Top:         s.topViewLocked(r),
	}

	if core, ok := s.cache.CoreFor(s.controls); ok {
		r.core = core
		rng := core.Range
		v.Range = &rng
		v.Previous = core.Previous
		if core.Clamped {
			v.Warnings = append(v.Warnings, r.t(i18n.KeyCustomRangeTooLarge))
		}
		v.Sections = r.sections()
	}
	v.Sections = append(v.Sections, r.pages(&s.cache, s.controls.ZoneID))
	return v
}

func (s *Session) zoneOptionsLocked(r *renderer) []ZoneOption {
	if s.cache.ZonesFailed {
		return []ZoneOption{{Value: allZones, Label: r.t(i18n.KeyZonesLoadFailed)}}
	}
	opts := []ZoneOption{{Value: allZones, Label: r.t(i18n.KeyZonesAll)}}
	for _, z := range s.cache.Zones {
		label := z.ZoneName
		if label == gateway.DefaultPagesZoneName {
			label += r.t(i18n.KeyZonesPagesSuffix)
		}
		opts = append(opts, ZoneOption{Value: z.ZoneId, Label: label})
	}
	return opts
}

// TopView состояние топ-анализа; графики есть только для результатов текущей панели
func (s *Session) TopView() TopView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topViewLocked(s.rendererLocked())
}

func (s *Session) topViewLocked(r *renderer) TopView {
	tv := TopView{State: s.top.state, Generation: s.top.generation}
	if s.top.state == TopDormant {
		return tv
	}
	if entry, ok := s.cache.TopFor(s.controls); ok {
		tv.Charts = r.topCharts(entry)
	}
	return tv
}

// ActivateTop вызывается, когда раздел топ-анализа становится видимым.
// Первая активация запускает фоновую загрузку, повторные ничего не делают.
func (s *Session) ActivateTop() TopView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.top.activate() {
		s.startTopLoadLocked()
	}
	return s.topViewLocked(s.rendererLocked())
}

func (s *Session) startTopLoadLocked() {
	gen, ok := s.top.begin()
	if !ok {
		return
	}
	ctl := s.controls
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		s.loadTop(gen, ctl)
	}()
}

func (s *Session) loadTop(gen uint64, ctl Controls) {
	ctx, cancel := context.WithTimeout(context.Background(), s.d.topTimeout)
	defer cancel()

	entry := s.d.fetchTop(ctx, ctl)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.top.finish(gen) {
		metrics.StaleTopDiscards.Inc()
		log.Printf("Discarding stale top analysis for session %s: generation %d, current %d", s.id, gen, s.top.generation)
		return
	}
	s.cache.Top = entry
	s.version++
}

// UpdatePreferences меняет язык и тему; пустые значения оставляют текущие.
// Смена темы планирует перестроение графиков, второй флаг true, если оно запланировано.
func (s *Session) UpdatePreferences(locale, theme string) (Preferences, bool) {
	s.mu.Lock()
	p := s.prefs
	if locale != "" {
		p.Locale = i18n.Normalize(locale)
	}
	if theme != "" {
		p.Theme = ParseTheme(theme)
	}
	themeChanged := p.Theme != s.prefs.Theme
	if p != s.prefs {
		s.prefs = p
		s.version++
	}
	s.mu.Unlock()

	if !themeChanged {
		return p, false
	}
	return p, s.rebuild.schedule()
}

// Page HTML-страница с графиками. Отрисовывается заново только после
// изменения данных или настроек.
func (s *Session) Page() ([]byte, error) {
	s.mu.Lock()
	if s.page != nil && s.pageVersion == s.version {
		page := s.page
		s.mu.Unlock()
		return page, nil
	}
	view := s.viewLocked()
	version := s.version
	s.mu.Unlock()

	page, err := renderPage(s.d.site, view)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if version == s.version {
		s.page = page
		s.pageVersion = version
	}
	s.mu.Unlock()
	return page, nil
}

func (s *Session) rebuildPage() {
	if _, err := s.Page(); err != nil {
		log.Printf("Error rebuilding charts for session %s: %v", s.id, err)
	}
}

// Wait ждет завершения фоновых загрузок и перестроений
func (s *Session) Wait() {
	s.bg.Wait()
}
