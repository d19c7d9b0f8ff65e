package analytics

import "teo-dashboard/internal/models"

// Granularity размер корзины для подписей оси времени
type Granularity int

const (
	GranularitySubDay Granularity = iota
	GranularityDay
)

func (g Granularity) String() string {
	if g == GranularityDay {
		return "day"
	}
	return "subday"
}

const (
	// DayGapSeconds минимальный шаг между первыми двумя точками для дневных корзин (23 часа)
	DayGapSeconds = 82800
	// CoarseSampleLimit максимум точек, при котором 14d/31d считаются дневными
	CoarseSampleLimit = 32
)

// InferGranularity восстанавливает размер корзины провайдера, если он не задан явно.
// Пороги откалиброваны под реальные размеры корзин API и должны сохраняться.
func InferGranularity(interval models.Interval, timestamps []float64, rangeKey models.RangeKey) Granularity {
	if interval == models.IntervalDay {
		return GranularityDay
	}
	if interval != models.IntervalAuto && interval != "" {
		return GranularitySubDay
	}
	if len(timestamps) >= 2 && timestamps[1]-timestamps[0] >= DayGapSeconds {
		return GranularityDay
	}
	if (rangeKey == models.Range14D || rangeKey == models.Range31D) && len(timestamps) <= CoarseSampleLimit {
		return GranularityDay
	}
	return GranularitySubDay
}
