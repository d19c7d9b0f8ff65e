// Package gateway транслирует запросы панели в вызовы API провайдера:
// группировка метрик по семействам, кэширование и объединение одинаковых запросов.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"teo-dashboard/internal/cache"
	"teo-dashboard/internal/metrics"
	"teo-dashboard/internal/models"
	"teo-dashboard/internal/teo"
)

// TTL ответов по типу запроса
const (
	TrafficTTL      = 30 * time.Second
	ZonesTTL        = 300 * time.Second
	PagesTTL        = 60 * time.Second
	PagesMonthlyTTL = 300 * time.Second
	ConfigTTL       = 600 * time.Second
)

const (
	// DefaultMetric метрика, если в запросе не указана ни одна
	DefaultMetric = "l7Flow_flux"
	// AllZones значение ZoneIds для всех сайтов
	AllZones = "*"
	// DefaultWindow окно по умолчанию, если не заданы границы
	DefaultWindow = 24 * time.Hour
)

var (
	// ErrMixedFamilies метрики из разных семейств в одном запросе
	ErrMixedFamilies = errors.New("mixed metric families in one request")
	// ErrTopBatch несколько top-метрик в одном запросе
	ErrTopBatch = errors.New("top analysis metrics do not support batching")
	// ErrZoneNotFound не удалось определить ZoneId
	ErrZoneNotFound = errors.New("zone id not found")
)

// Caller вызывает действия API провайдера
type Caller interface {
	Call(ctx context.Context, action, region string, params interface{}) (json.RawMessage, error)
	CallWithRegionFallback(ctx context.Context, action string, params interface{}, regions []string) (json.RawMessage, string, error)
	HasCredentials() bool
}

// Options параметры сервиса
type Options struct {
	PagesRegions []string
	Site         models.SiteConfig
	Now          func() time.Time
}

// Service реализует операции шлюза метрик
type Service struct {
	client       Caller
	cache        cache.Store
	group        singleflight.Group
	pagesRegions []string
	site         models.SiteConfig
	now          func() time.Time
}

// NewService создает шлюз
func NewService(client Caller, store cache.Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.PagesRegions) == 0 {
		opts.PagesRegions = []string{teo.DefaultRegion}
	}
	return &Service{
		client:       client,
		cache:        store,
		pagesRegions: opts.PagesRegions,
		site:         opts.Site,
		now:          opts.Now,
	}
}

// TrafficQuery запрос данных по метрикам одного семейства
type TrafficQuery struct {
	Metrics   []string
	StartTime string
	EndTime   string
	Interval  models.Interval
	ZoneID    string
	NoCache   bool
}

type trafficParams struct {
	StartTime   string   `json:"StartTime"`
	EndTime     string   `json:"EndTime"`
	MetricName  string   `json:"MetricName,omitempty"`
	MetricNames []string `json:"MetricNames,omitempty"`
	ZoneIds     []string `json:"ZoneIds"`
	Interval    string   `json:"Interval,omitempty"`
}

// ParseMetrics разбирает значения параметров metrics (через запятую) в список
func ParseMetrics(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				out = append(out, m)
			}
		}
	}
	return out
}

// Traffic возвращает ответ провайдера для пачки метрик одного семейства без изменений
func (s *Service) Traffic(ctx context.Context, q TrafficQuery) (json.RawMessage, error) {
	names := q.Metrics
	if len(names) == 0 {
		names = []string{DefaultMetric}
	}

	family := teo.ClassifyMetric(names[0])
	for _, m := range names[1:] {
		if teo.ClassifyMetric(m) != family {
			return nil, ErrMixedFamilies
		}
	}
	if family == teo.FamilyTop && len(names) != 1 {
		return nil, ErrTopBatch
	}

	now := s.now().UTC()
	start, end := q.StartTime, q.EndTime
	if start == "" {
		start = now.Add(-DefaultWindow).Format(models.TimeLayout)
	}
	if end == "" {
		end = now.Format(models.TimeLayout)
	}
	zone := q.ZoneID
	if zone == "" {
		zone = AllZones
	}

	params := buildTrafficParams(family, names, start, end, q.Interval, zone)
	key := fmt.Sprintf("traffic:%s:%s:%s:%s:%s:%s", family, strings.Join(names, ","), start, end, q.Interval, zone)

	return s.cached(ctx, key, TrafficTTL, q.NoCache, func(ctx context.Context) (json.RawMessage, error) {
		log.Printf("Calling %s: metrics=%s start=%s end=%s interval=%s zone=%s",
			family.Action(), strings.Join(names, ","), start, end, q.Interval, zone)
		return s.client.Call(ctx, family.Action(), "", params)
	})
}

// Fetch выполняет запрос дашборда; нулевой диапазон означает окно по умолчанию
func (s *Service) Fetch(ctx context.Context, req models.MetricRequest) (json.RawMessage, error) {
	q := TrafficQuery{
		Metrics:  req.MetricNames,
		Interval: req.Interval,
		ZoneID:   req.ZoneID,
		NoCache:  req.NoCache,
	}
	if !req.Range.Start.IsZero() && !req.Range.End.IsZero() {
		q.StartTime = req.Range.StartTime()
		q.EndTime = req.Range.EndTime()
	}
	return s.Traffic(ctx, q)
}

func buildTrafficParams(family teo.Family, names []string, start, end string, interval models.Interval, zone string) trafficParams {
	p := trafficParams{
		StartTime: start,
		EndTime:   end,
		ZoneIds:   []string{zone},
	}

	if family == teo.FamilyTop {
		p.MetricName = names[0]
		return p
	}

	metricNames := append([]string(nil), names...)
	if family == teo.FamilyFunction && slices.Contains(metricNames, "function_cpuCostTime") && !slices.Contains(metricNames, "function_requestCount") {
		metricNames = append([]string{"function_requestCount"}, metricNames...)
	}
	p.MetricNames = metricNames

	if interval != "" && interval != models.IntervalAuto {
		p.Interval = string(interval)
	}
	return p
}

// Zones возвращает ответ DescribeZones
func (s *Service) Zones(ctx context.Context, noCache bool) (json.RawMessage, error) {
	return s.cached(ctx, "zones", ZonesTTL, noCache, func(ctx context.Context) (json.RawMessage, error) {
		log.Printf("Calling %s", teo.ActionDescribeZones)
		return s.client.Call(ctx, teo.ActionDescribeZones, "", struct{}{})
	})
}

// ListZones возвращает список сайтов
func (s *Service) ListZones(ctx context.Context) ([]models.Zone, error) {
	raw, err := s.Zones(ctx, false)
	if err != nil {
		return nil, err
	}
	var resp models.ZonesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode zones: %w", err)
	}
	return resp.Zones, nil
}

// Config возвращает настройки сайта
func (s *Service) Config() models.SiteConfig {
	return s.site
}

// HasCredentials true, если клиент провайдера может выполнять вызовы
func (s *Service) HasCredentials() bool {
	return s.client.HasCredentials()
}

// cached отдает значение из кэша или выполняет fetch один раз для всех одновременных запросов.
// Ошибки не кэшируются.
func (s *Service) cached(ctx context.Context, key string, ttl time.Duration, noCache bool, fetch func(context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	if !noCache {
		if v, _, ok := s.cache.Get(ctx, key); ok {
			return v, nil
		}
	}

	flightKey := key
	if noCache {
		flightKey = "nocache:" + key
	}

	// общий вызов не отменяется уходом первого из ожидающих
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(flightKey, func() (interface{}, error) {
		data, err := fetch(flightCtx)
		if err != nil {
			return nil, err
		}
		if !noCache {
			s.cache.Set(flightCtx, key, data, ttl)
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.SharedCalls.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(json.RawMessage), nil
	}
}
