package analytics

import (
	"math"

	"teo-dashboard/internal/models"
)

// Aggregate агрегат временного ряда, используемый в KPI
type Aggregate int

const (
	AggregateSum Aggregate = iota
	AggregateMax
	AggregateAvg
)

// Scalar возвращает агрегат ряда или NaN, если результата нет
// или он не является временным рядом.
func Scalar(n models.Normalized, agg Aggregate) float64 {
	s, ok := n.(models.TimeSeries)
	if !ok {
		return math.NaN()
	}
	switch agg {
	case AggregateMax:
		return s.Max
	case AggregateAvg:
		return s.Avg
	default:
		return s.Sum
	}
}

// CacheHitRate считает 1 - origin/edge. При edge <= 0 результат 0.
// Значение не ограничивается диапазоном [0, 1]: отрицательный результат
// (ответ источника больше ответа edge) сигнализирует об аномалии.
func CacheHitRate(edgeResponseFluxSum, originResponseFluxSum float64) float64 {
	if edgeResponseFluxSum <= 0 {
		return 0
	}
	return 1 - originResponseFluxSum/edgeResponseFluxSum
}

// CacheHitRateOf считает долю попаданий по двум нормализованным результатам.
// Если какого-то из рядов нет, возвращается fallback.
func CacheHitRateOf(edge, origin models.Normalized, fallback float64) float64 {
	e, okEdge := edge.(models.TimeSeries)
	o, okOrigin := origin.(models.TimeSeries)
	if !okEdge || !okOrigin || e.Sum <= 0 {
		return fallback
	}
	return CacheHitRate(e.Sum, o.Sum)
}
