package dashboard

import (
	"math"
	"strconv"
	"strings"
	"time"

	"teo-dashboard/internal/analytics"
	"teo-dashboard/internal/i18n"
	"teo-dashboard/internal/models"
	"teo-dashboard/internal/units"
)

const (
	noValue              = "-"
	edgeResponseMetric   = "l7Flow_outFlux"
	originResponseMetric = "l7Flow_inFlux_hy"
)

// renderer строит разделы из закэшированных результатов для одного языка и темы
type renderer struct {
	locale i18n.Locale
	charts chartBuilder
	loc    *time.Location
	core   *CoreEntry
}

func (r *renderer) t(k i18n.Key) string {
	return i18n.T(r.locale, k)
}

func (r *renderer) label(metric string) string {
	return i18n.MetricLabel(metric, r.locale)
}

func (r *renderer) series(metric string) (models.TimeSeries, bool) {
	if r.core == nil {
		return models.TimeSeries{}, false
	}
	s, ok := r.core.Results[metric].(models.TimeSeries)
	return s, ok
}

// compare сравнивает агрегат с прошлым периодом; без данных прошлого периода сравнение скрывается
func (r *renderer) compare(metric string, agg analytics.Aggregate, current float64) models.Comparison {
	if r.core == nil || !r.core.CompareEnabled {
		return analytics.Unavailable()
	}
	prev, ok := r.core.Compare[metric]
	if !ok {
		return analytics.Unavailable()
	}
	return analytics.Compare(current, analytics.Scalar(prev, agg))
}

func (r *renderer) absentKPI(id, label string) KPI {
	return newKPI(id, label, noValue, analytics.Unavailable(), r.locale)
}

// peak максимум значений по всем присутствующим рядам
func (r *renderer) peak(metrics []string) float64 {
	peak := 0.0
	for _, m := range metrics {
		if s, ok := r.series(m); ok {
			for _, v := range s.ValueData {
				peak = math.Max(peak, v)
			}
		}
	}
	return peak
}

// trend собирает присутствующие ряды в один график
func (r *renderer) trend(id string, title i18n.Key, metrics []string, unit units.Unit, kpis []KPI, stacked bool) Chart {
	var labels []string
	var series []lineSeries
	for _, m := range metrics {
		s, ok := r.series(m)
		if !ok {
			continue
		}
		if len(labels) == 0 {
			labels = s.TimeData
		}
		series = append(series, lineSeries{name: r.label(m), color: colorOf(m), values: s.ValueData})
	}
	return r.charts.line(id, r.t(title), summary(kpis), unit, labels, series, stacked)
}

type kpiFormat struct {
	agg    analytics.Aggregate
	format func(float64) string
}

func (r *renderer) metricKPIs(metrics []string, format func(metric string) kpiFormat) []KPI {
	kpis := make([]KPI, 0, len(metrics))
	for _, m := range metrics {
		s, ok := r.series(m)
		if !ok {
			kpis = append(kpis, r.absentKPI("kpi_"+m, r.label(m)))
			continue
		}
		f := format(m)
		v := analytics.Scalar(s, f.agg)
		kpis = append(kpis, newKPI("kpi_"+m, r.label(m), f.format(v), r.compare(m, f.agg, v), r.locale))
	}
	return kpis
}

func (r *renderer) sections() []Section {
	return []Section{
		r.traffic(),
		r.bandwidth(),
		r.originPull(),
		r.requests(),
		r.performance(),
		r.edgeFunctions(),
		r.security(),
	}
}

func (r *renderer) traffic() Section {
	kpis := r.metricKPIs(trafficMetrics, func(string) kpiFormat {
		return kpiFormat{analytics.AggregateSum, units.FormatBytes}
	})
	unit := units.BestUnit(r.peak(trafficMetrics), units.KindBytes)
	return Section{
		ID:     "traffic",
		Title:  r.t(i18n.KeySectionTraffic),
		KPIs:   kpis,
		Charts: []Chart{r.trend("chart_traffic", i18n.KeyTrafficTrend, trafficMetrics, unit, kpis, false)},
	}
}

func (r *renderer) bandwidth() Section {
	kpis := r.metricKPIs(bandwidthMetrics, func(string) kpiFormat {
		return kpiFormat{analytics.AggregateMax, units.FormatBps}
	})
	unit := units.BestUnit(r.peak(bandwidthMetrics), units.KindBandwidth)
	return Section{
		ID:     "bandwidth",
		Title:  r.t(i18n.KeySectionBandwidth),
		KPIs:   kpis,
		Charts: []Chart{r.trend("chart_bandwidth", i18n.KeyBandwidthTrend, bandwidthMetrics, unit, kpis, false)},
	}
}

func (r *renderer) originPull() Section {
	var flux, bandwidth, requests []string
	for _, m := range originPullMetrics {
		switch {
		case strings.Contains(m, "Flux"):
			flux = append(flux, m)
		case strings.Contains(m, "Bandwidth"):
			bandwidth = append(bandwidth, m)
		default:
			requests = append(requests, m)
		}
	}

	kpis := r.metricKPIs(originPullMetrics, func(m string) kpiFormat {
		switch {
		case strings.Contains(m, "Flux"):
			return kpiFormat{analytics.AggregateSum, units.FormatBytes}
		case strings.Contains(m, "Bandwidth"):
			return kpiFormat{analytics.AggregateMax, units.FormatBps}
		default:
			return kpiFormat{analytics.AggregateSum, r.formatCount}
		}
	})
	kpis = append(kpis, r.cacheHitRate())

	return Section{
		ID:    "originPull",
		Title: r.t(i18n.KeySectionOriginPull),
		KPIs:  kpis,
		Charts: []Chart{
			r.trend("chart_originPull_flux", i18n.KeyOriginPullTrend, flux,
				units.BestUnit(r.peak(flux), units.KindBytes), kpis, false),
			r.trend("chart_originPull_bandwidth", i18n.KeyOriginPullTrend, bandwidth,
				units.BestUnit(r.peak(bandwidth), units.KindBandwidth), nil, false),
			r.trend("chart_originPull_requests", i18n.KeyOriginPullTrend, requests,
				units.BestCountUnit(r.peak(requests), r.locale), nil, false),
		},
	}
}

// cacheHitRate доля ответов edge, обслуженных без обращения к источнику
func (r *renderer) cacheHitRate() KPI {
	label := r.t(i18n.KeyCacheHitRate)
	if r.core == nil {
		return r.absentKPI("kpi_cache_hit_rate", label)
	}
	rate := analytics.CacheHitRateOf(r.core.Results[edgeResponseMetric], r.core.Results[originResponseMetric], 0)
	prev := analytics.CacheHitRateOf(r.core.Compare[edgeResponseMetric], r.core.Compare[originResponseMetric], math.NaN())

	c := analytics.Unavailable()
	if r.core.CompareEnabled {
		c = analytics.Compare(rate, prev)
	}
	return newKPI("kpi_cache_hit_rate", label, units.FormatRate(rate), c, r.locale)
}

func (r *renderer) requests() Section {
	kpis := r.metricKPIs(requestMetrics, func(string) kpiFormat {
		return kpiFormat{analytics.AggregateSum, r.formatCount}
	})
	unit := units.BestCountUnit(r.peak(requestMetrics), r.locale)
	return Section{
		ID:     "requests",
		Title:  r.t(i18n.KeySectionRequests),
		KPIs:   kpis,
		Charts: []Chart{r.trend("chart_requests", i18n.KeyRequestsTrend, requestMetrics, unit, kpis, false)},
	}
}

func (r *renderer) performance() Section {
	kpis := r.metricKPIs(performanceMetrics, func(string) kpiFormat {
		return kpiFormat{analytics.AggregateAvg, units.FormatMillis}
	})
	unit := units.Unit{Label: "ms", Divisor: 1}
	return Section{
		ID:     "performance",
		Title:  r.t(i18n.KeySectionRequests),
		KPIs:   kpis,
		Charts: []Chart{r.trend("chart_performance", i18n.KeyLatencyTrend, performanceMetrics, unit, kpis, false)},
	}
}

func (r *renderer) edgeFunctions() Section {
	const requestMetric, cpuMetric = "function_requestCount", "function_cpuCostTime"

	kpis := r.metricKPIs([]string{requestMetric, cpuMetric}, func(m string) kpiFormat {
		if m == cpuMetric {
			return kpiFormat{analytics.AggregateSum, func(v float64) string {
				return units.FormatNumber(v, r.locale) + " ms"
			}}
		}
		return kpiFormat{analytics.AggregateSum, r.formatCount}
	})

	return Section{
		ID:    "edgeFunctions",
		Title: r.t(i18n.KeySectionEdgeFunctions),
		KPIs:  kpis,
		Charts: []Chart{
			r.trend("chart_function_requests", i18n.KeyFunctionsReqTrend, []string{requestMetric},
				units.BestCountUnit(r.peak([]string{requestMetric}), r.locale), kpis[:1], false),
			r.trend("chart_function_cpu", i18n.KeyFunctionsCPUTrend, []string{cpuMetric},
				units.Unit{Label: "ms", Divisor: 1}, kpis[1:], false),
		},
	}
}

// security суммарные срабатывания защиты. Диапазон длиннее окна API защиты
// показывается сообщением вместо графика.
func (r *renderer) security() Section {
	sec := Section{ID: "security", Title: r.t(i18n.KeySectionSecurity)}
	label := r.t(i18n.KeySecurityHits)

	if r.core != nil && !r.core.SecuritySupported {
		kpi := newKPI("kpi_security_total", label, r.t(i18n.KeyRangeTooLarge), analytics.Unavailable(), r.locale)
		kpi.Description = r.t(i18n.KeySecurityOnly14d)
		sec.KPIs = []KPI{kpi}
		sec.Charts = []Chart{r.charts.message("chart_security", r.t(i18n.KeySecurityTrend), r.t(i18n.KeySecurityOnly14dTitle))}
		return sec
	}

	total, present := 0.0, false
	var stacked []float64
	for _, m := range securityMetrics() {
		s, ok := r.series(m)
		if !ok {
			continue
		}
		present = true
		total += s.Sum
		for i, v := range s.ValueData {
			if i >= len(stacked) {
				stacked = append(stacked, 0)
			}
			stacked[i] += v
		}
	}

	kpi := r.absentKPI("kpi_security_total", label)
	if present {
		c := analytics.Unavailable()
		if r.core.CompareEnabled && r.core.SecurityCompare {
			c = analytics.Compare(total, r.previousTotal(securityMetrics()))
		}
		kpi = newKPI("kpi_security_total", label, r.formatCount(total), c, r.locale)
	}
	kpi.Description = r.t(i18n.KeySecurityHitsDesc)
	sec.KPIs = []KPI{kpi}

	peak := 0.0
	for _, v := range stacked {
		peak = math.Max(peak, v)
	}
	unit := units.BestCountUnit(peak, r.locale)
	sec.Charts = []Chart{r.trend("chart_security", i18n.KeySecurityTrend, securityMetrics(), unit, sec.KPIs, true)}
	return sec
}

// previousTotal сумма прошлого периода; NaN, если ни одной метрики нет
func (r *renderer) previousTotal(metrics []string) float64 {
	total, present := 0.0, false
	for _, m := range metrics {
		if s, ok := r.core.Compare[m].(models.TimeSeries); ok {
			total += s.Sum
			present = true
		}
	}
	if !present {
		return math.NaN()
	}
	return total
}

func (r *renderer) formatCount(v float64) string {
	return units.FormatCount(v, r.locale)
}

// pages плитки Pages; записи другого сайта не показываются
func (r *renderer) pages(c *Cache, zoneID string) Section {
	sec := Section{ID: "pages", Title: r.t(i18n.KeySectionPages)}
	errText := r.t(i18n.KeyCommonError)

	daily, monthly := noValue, noValue
	if b := c.PagesBuild; b != nil && b.ZoneID == zoneID {
		if b.Failed {
			daily, monthly = errText, errText
		} else {
			daily, monthly = r.optional(b.Daily, r.formatNumber), r.optional(b.Monthly, r.formatNumber)
		}
	}

	cfTotal := noValue
	var trend Chart
	if tr := c.PagesTrend; tr != nil && tr.ZoneID == zoneID {
		if tr.Failed {
			cfTotal = errText
		} else {
			cfTotal = r.optional(tr.Total, r.formatCount)
		}
		trend = r.pagesTrend(tr)
	} else {
		trend = r.pagesTrend(&PagesTrendEntry{})
	}

	cfRequests, cfGbs := noValue, noValue
	if m := c.PagesMonthly; m != nil && m.ZoneID == zoneID {
		if m.Failed {
			cfRequests, cfGbs = errText, errText
		} else {
			cfRequests = r.optional(m.Invocations, r.formatCount)
			cfGbs = r.optional(m.MemDuration, func(v float64) string {
				return strconv.FormatFloat(v/1024, 'f', 2, 64)
			})
		}
	}

	none := analytics.Unavailable()
	sec.KPIs = []KPI{
		newKPI("kpi_pages_daily_build", r.t(i18n.KeyPagesDailyBuild), daily, none, r.locale),
		newKPI("kpi_pages_monthly_build", r.t(i18n.KeyPagesMonthlyBuild), monthly, none, r.locale),
		newKPI("kpi_pages_cloud_function_total", r.t(i18n.KeyPagesCF24h), cfTotal, none, r.locale),
		newKPI("kpi_pages_monthly_cf_requests", r.t(i18n.KeyPagesCFMonthlyReq), cfRequests, none, r.locale),
		newKPI("kpi_pages_monthly_cf_gbs", r.t(i18n.KeyPagesCFMonthlyGbs), cfGbs, none, r.locale),
	}
	sec.Charts = []Chart{trend}
	return sec
}

func (r *renderer) pagesTrend(tr *PagesTrendEntry) Chart {
	labels := make([]string, len(tr.Timestamps))
	for i, ts := range tr.Timestamps {
		labels[i] = time.Unix(ts, 0).In(r.loc).Format("1/2 15:04")
	}
	var series []lineSeries
	if len(tr.Values) > 0 {
		series = []lineSeries{{name: r.t(i18n.KeyChartRequests), color: "#3b82f6", values: tr.Values}}
	}
	return r.charts.line("chart_pages_cloud_function_requests", r.t(i18n.KeyPagesCFTrend), "",
		units.Unit{Divisor: 1}, labels, series, false)
}

func (r *renderer) formatNumber(v float64) string {
	return units.FormatNumber(v, r.locale)
}

func (r *renderer) optional(v *float64, format func(float64) string) string {
	if v == nil {
		return noValue
	}
	return format(*v)
}

// summary строка показателей раздела для подзаголовка графика
func summary(kpis []KPI) string {
	parts := make([]string, 0, len(kpis))
	for _, k := range kpis {
		part := k.Label + ": " + k.Value
		if k.Compare != "" {
			part += " " + k.Compare
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "  ·  ")
}
