package analytics

import (
	"math"

	"teo-dashboard/internal/models"
)

// Compare вычисляет изменение current относительно previous.
// Определена для любой пары входов и не паникует.
func Compare(current, previous float64) models.Comparison {
	if !isFinite(current) || !isFinite(previous) {
		return models.Comparison{Direction: models.DirectionUnavailable, Percent: math.NaN()}
	}

	if previous == 0 {
		if current == 0 {
			return models.Comparison{Direction: models.DirectionFlat, Percent: 0}
		}
		return models.Comparison{Direction: models.DirectionUp, Percent: math.Inf(1)}
	}

	pct := (current - previous) / previous
	switch {
	case pct > 0:
		return models.Comparison{Direction: models.DirectionUp, Percent: pct}
	case pct < 0:
		return models.Comparison{Direction: models.DirectionDown, Percent: pct}
	default:
		return models.Comparison{Direction: models.DirectionFlat, Percent: 0}
	}
}

// Unavailable сравнение, которое нужно скрыть
func Unavailable() models.Comparison {
	return models.Comparison{Direction: models.DirectionUnavailable, Percent: math.NaN()}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
