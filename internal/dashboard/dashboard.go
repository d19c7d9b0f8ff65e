// Package dashboard содержит состояние дашборда на стороне сервера:
// сессии зрителей, цикл обновления данных, кэш разделов, отрисовку графиков
// и ленивую загрузку топ-анализа.
package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"teo-dashboard/internal/analytics"
	"teo-dashboard/internal/i18n"
	"teo-dashboard/internal/models"
)

const (
	// DefaultTopTimeout предел фоновой загрузки топ-анализа
	DefaultTopTimeout = 2 * time.Minute
	// DefaultFetchLimit число одновременных запросов к шлюзу в одном цикле
	DefaultFetchLimit = 8
)

// MetricsSource источник сырых ответов провайдера. Реализуется шлюзом.
type MetricsSource interface {
	Fetch(ctx context.Context, req models.MetricRequest) (json.RawMessage, error)
	ListZones(ctx context.Context) ([]models.Zone, error)
	PagesBuildCount(ctx context.Context, zoneID string, noCache bool) (json.RawMessage, error)
	PagesCloudFunctionRequests(ctx context.Context, zoneID, startTime, endTime string, noCache bool) (json.RawMessage, error)
	PagesCloudFunctionMonthly(ctx context.Context, zoneID string, noCache bool) (json.RawMessage, error)
}

// Options параметры дашборда
type Options struct {
	Location   *time.Location
	Now        func() time.Time
	Locale     i18n.Locale
	Site       models.SiteConfig
	TopTimeout time.Duration
	FetchLimit int
}

// Dashboard общий для всех сессий контекст: источник данных, часовой пояс, оформление
type Dashboard struct {
	source     MetricsSource
	resolver   *analytics.Resolver
	locale     i18n.Locale
	site       models.SiteConfig
	topTimeout time.Duration
	fetchLimit int
}

// New создает дашборд поверх источника метрик
func New(source MetricsSource, opts Options) *Dashboard {
	if opts.Locale == "" {
		opts.Locale = i18n.Default
	}
	if opts.TopTimeout <= 0 {
		opts.TopTimeout = DefaultTopTimeout
	}
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = DefaultFetchLimit
	}
	return &Dashboard{
		source:     source,
		resolver:   analytics.NewResolver(opts.Location, opts.Now),
		locale:     opts.Locale,
		site:       opts.Site,
		topTimeout: opts.TopTimeout,
		fetchLimit: opts.FetchLimit,
	}
}

func (d *Dashboard) labelContext(ctl Controls, span time.Duration) analytics.LabelContext {
	return analytics.LabelContext{
		Interval:   ctl.Interval,
		RangeKey:   ctl.RangeKey,
		CustomSpan: span,
		Location:   d.resolver.Location(),
	}
}
