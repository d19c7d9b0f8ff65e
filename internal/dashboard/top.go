package dashboard

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"teo-dashboard/internal/i18n"
	"teo-dashboard/internal/models"
	"teo-dashboard/internal/units"
)

// TopState состояние ленивой загрузки топ-анализа
type TopState string

const (
	TopDormant   TopState = "dormant"
	TopActivated TopState = "activated"
	TopLoading   TopState = "loading"
	TopLoaded    TopState = "loaded"
)

const (
	topLimit       = 10
	topLabelLength = 20
	topMapMetric   = "l7Flow_request_country"
)

// topTracker конечный автомат dormant -> activated -> loading -> loaded.
// Каждая загрузка получает новое поколение; результат принимается,
// только если его поколение все еще последнее.
type topTracker struct {
	state      TopState
	generation uint64
}

func newTopTracker() topTracker {
	return topTracker{state: TopDormant}
}

// activate переводит dormant в activated; повторная активация ничего не меняет
func (t *topTracker) activate() bool {
	if t.state != TopDormant {
		return false
	}
	t.state = TopActivated
	return true
}

// begin начинает новую загрузку. До активации загрузка не начинается.
func (t *topTracker) begin() (uint64, bool) {
	if t.state == TopDormant {
		return 0, false
	}
	t.generation++
	t.state = TopLoading
	return t.generation, true
}

// finish принимает результат поколения gen; false для устаревших загрузок
func (t *topTracker) finish(gen uint64) bool {
	if gen != t.generation {
		return false
	}
	t.state = TopLoaded
	return true
}

// topCharts карта мира по запросам и столбчатые диаграммы по каждой top-метрике
func (r *renderer) topCharts(entry *TopEntry) []Chart {
	var out []Chart

	if list, ok := entry.Results[topMapMetric].(models.TopList); ok {
		points := make([]mapPoint, 0, len(list.Data))
		for _, e := range list.Data {
			if i18n.IsMissingKey(e.Key) {
				continue
			}
			points = append(points, mapPoint{name: i18n.MapRegionName(e.Key), value: e.Value})
		}
		out = append(out, r.charts.worldMap("chart_top_map", r.t(i18n.KeyWorldMap), r.t(i18n.KeyChartRequests), points))
	}

	for _, m := range topMetrics() {
		list, ok := entry.Results[m].(models.TopList)
		if !ok {
			continue
		}
		top := topEntries(list)

		var unit units.Unit
		peak := 0.0
		if len(top) > 0 {
			peak = top[0].Value
		}
		if strings.Contains(m, "outFlux") {
			unit = units.BestUnit(peak, units.KindBytes)
		} else {
			unit = units.BestCountUnit(peak, r.locale)
		}

		labels := make([]string, len(top))
		values := make([]float64, len(top))
		for i, e := range top {
			// по возрастанию снизу вверх: самое большое значение у верхнего края
			j := len(top) - 1 - i
			labels[j] = truncateLabel(r.topKeyName(m, e.Key))
			values[j] = e.Value
		}

		label := r.label(m)
		out = append(out, r.charts.hbar("chart_top_"+m, label, label, topColor(m), unit, labels, values))
	}
	return out
}

// topEntries первые topLimit записей по убыванию значения
func topEntries(list models.TopList) []models.TopEntry {
	sorted := slices.Clone(list.Data)
	slices.SortStableFunc(sorted, func(a, b models.TopEntry) int {
		return cmp.Compare(b.Value, a.Value)
	})
	if len(sorted) > topLimit {
		sorted = sorted[:topLimit]
	}
	return sorted
}

// topKeyName подпись ключа: отсутствующее поле, страна или провинция по коду
func (r *renderer) topKeyName(metric, key string) string {
	if i18n.IsMissingKey(key) {
		return r.t(i18n.KeyMissingField)
	}
	switch {
	case strings.HasSuffix(metric, "_country"):
		return i18n.CountryName(key, r.locale)
	case strings.HasSuffix(metric, "_province"):
		return i18n.ProvinceName(key, r.locale)
	}
	return key
}

func truncateLabel(s string) string {
	if utf8.RuneCountInString(s) <= topLabelLength {
		return s
	}
	return string([]rune(s)[:topLabelLength]) + "..."
}
