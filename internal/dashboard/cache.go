package dashboard

import (
	"teo-dashboard/internal/models"
)

// Cache последние полученные данные по разделам. Каждая запись помнит
// состояние панели, для которого была получена, и отрисовывается
// повторно только при совпадении с текущим.
type Cache struct {
	Core         *CoreEntry
	Zones        []models.Zone
	ZonesFailed  bool
	zonesLoaded  bool
	PagesBuild   *PagesBuildEntry
	PagesTrend   *PagesTrendEntry
	PagesMonthly *PagesMonthlyEntry
	Top          *TopEntry
}

// CoreEntry основные метрики за текущий и прошлый период
type CoreEntry struct {
	Controls          Controls
	Range             models.TimeRange
	Previous          *models.TimeRange
	Clamped           bool
	SecuritySupported bool
	SecurityCompare   bool
	CompareEnabled    bool
	Results           map[string]models.Normalized
	Compare           map[string]models.Normalized
}

// TopEntry результаты топ-анализа
type TopEntry struct {
	Controls Controls
	Range    models.TimeRange
	Results  map[string]models.Normalized
}

// CoreFor возвращает запись, если она получена для тех же настроек панели
func (c *Cache) CoreFor(ctl Controls) (*CoreEntry, bool) {
	if c.Core == nil || !c.Core.Controls.Equal(ctl) {
		return nil, false
	}
	return c.Core, true
}

// TopFor возвращает топ-анализ для тех же настроек панели
func (c *Cache) TopFor(ctl Controls) (*TopEntry, bool) {
	if c.Top == nil || !c.Top.Controls.Equal(ctl) {
		return nil, false
	}
	return c.Top, true
}
