package analytics

import (
	"fmt"
	"time"

	"teo-dashboard/internal/models"
)

const (
	// MaxCustomDuration предел произвольного диапазона
	MaxCustomDuration = 31 * 24 * time.Hour
	// DefaultCustomDuration используется, если произвольная длительность не положительна
	DefaultCustomDuration = time.Hour
	// FallbackDuration окно для неизвестного ключа диапазона
	FallbackDuration = 24 * time.Hour
	// SecurityWindow глубина истории, которую принимает API защиты
	SecurityWindow = 14 * 24 * time.Hour
	// SecuritySlack допуск к SecurityWindow
	SecuritySlack = 60 * time.Second
)

var fixedRanges = map[models.RangeKey]time.Duration{
	models.Range30Min: 30 * time.Minute,
	models.Range1H:    time.Hour,
	models.Range6H:    6 * time.Hour,
	models.Range3D:    3 * 24 * time.Hour,
	models.Range7D:    7 * 24 * time.Hour,
	models.Range14D:   14 * 24 * time.Hour,
	models.Range31D:   31 * 24 * time.Hour,
}

// Resolution вычисленный диапазон. Clamped выставляется, когда произвольная
// длительность была урезана до MaxCustomDuration; предупреждение показывает вызывающий.
type Resolution struct {
	models.TimeRange
	Clamped bool
}

// Resolver вычисляет диапазоны в часовом поясе зрителя
type Resolver struct {
	now func() time.Time
	loc *time.Location
}

// NewResolver создает резолвер; now == nil означает time.Now
func NewResolver(loc *time.Location, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{now: now, loc: loc}
}

// Now текущее время в часовом поясе резолвера
func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

// Location часовой пояс зрителя
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Resolve возвращает {start, end} для именованного диапазона
func (r *Resolver) Resolve(key models.RangeKey, custom models.CustomDuration) Resolution {
	now := r.Now()

	if d, ok := fixedRanges[key]; ok {
		return Resolution{TimeRange: models.TimeRange{Start: now.Add(-d), End: now}}
	}

	switch key {
	case models.RangeToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.loc)
		return Resolution{TimeRange: models.TimeRange{Start: start, End: now}}

	case models.RangeYesterday:
		y, m, d := now.Date()
		start := time.Date(y, m, d-1, 0, 0, 0, 0, r.loc)
		end := time.Date(y, m, d-1, 23, 59, 59, int(999*time.Millisecond), r.loc)
		return Resolution{TimeRange: models.TimeRange{Start: start, End: end}}

	case models.RangeCustom:
		total := custom.Duration()
		clamped := false
		if total > MaxCustomDuration {
			total = MaxCustomDuration
			clamped = true
		}
		if total <= 0 {
			total = DefaultCustomDuration
		}
		return Resolution{TimeRange: models.TimeRange{Start: now.Add(-total), End: now}, Clamped: clamped}
	}

	return Resolution{TimeRange: models.TimeRange{Start: now.Add(-FallbackDuration), End: now}}
}

// PreviousPeriod возвращает окно для сравнения. Для today/yesterday окно
// сдвигается ровно на сутки, для остальных ключей на собственную длину.
func PreviousPeriod(current models.TimeRange, key models.RangeKey) (models.TimeRange, bool) {
	if current.Start.IsZero() || current.End.IsZero() {
		return models.TimeRange{}, false
	}
	d := current.Duration()
	if d <= 0 {
		return models.TimeRange{}, false
	}

	shift := d
	if key == models.RangeToday || key == models.RangeYesterday {
		shift = 24 * time.Hour
	}
	return models.TimeRange{
		Start: current.Start.Add(-shift),
		End:   current.End.Add(-shift),
	}, true
}

// IsCompareEligible сообщает, примет ли API защиты окно сравнения с началом compareStart
func IsCompareEligible(compareStart, now time.Time) bool {
	if compareStart.IsZero() {
		return false
	}
	threshold := now.Add(-(SecurityWindow + SecuritySlack))
	return !compareStart.Before(threshold)
}

// SecuritySupported false, если текущий диапазон длиннее окна API защиты
func SecuritySupported(r models.TimeRange) bool {
	return r.Duration() <= SecurityWindow+SecuritySlack
}

// ParseTimeRange разбирает границы в формате RFC 3339
func ParseTimeRange(start, end string) (models.TimeRange, error) {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return models.TimeRange{}, fmt.Errorf("invalid startTime %q: %w", start, err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return models.TimeRange{}, fmt.Errorf("invalid endTime %q: %w", end, err)
	}
	return models.TimeRange{Start: s, End: e}, nil
}
