package dashboard

import (
	"github.com/go-echarts/go-echarts/v2/components"

	"teo-dashboard/internal/i18n"
	"teo-dashboard/internal/models"
	"teo-dashboard/internal/units"
)

// View отрисованное состояние дашборда для одной сессии
type View struct {
	SessionID   string            `json:"sessionId"`
	Controls    Controls          `json:"controls"`
	Preferences Preferences       `json:"preferences"`
	Site        models.SiteConfig `json:"site"`
	Range       *models.TimeRange `json:"range,omitempty"`
	Previous    *models.TimeRange `json:"previousRange,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
	Zones       []ZoneOption      `json:"zones"`
	Sections    []Section         `json:"sections"`
	Top         TopView           `json:"top"`
}

// ZoneOption пункт выбора сайта
type ZoneOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Section раздел дашборда: плитки KPI и графики
type Section struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	KPIs   []KPI   `json:"kpis"`
	Charts []Chart `json:"charts"`
}

// KPI плитка с показателем и сравнением с прошлым периодом.
// Compare пустая, если сравнение недоступно.
type KPI struct {
	ID          string            `json:"id"`
	Label       string            `json:"label"`
	Value       string            `json:"value"`
	Description string            `json:"description,omitempty"`
	Comparison  models.Comparison `json:"comparison"`
	Compare     string            `json:"compare,omitempty"`
}

func newKPI(id, label, value string, c models.Comparison, l i18n.Locale) KPI {
	return KPI{
		ID:         id,
		Label:      label,
		Value:      value,
		Comparison: c,
		Compare:    units.FormatComparison(c, l),
	}
}

// Chart конфигурация графика ECharts. Message заменяет график,
// когда данные не могут быть показаны.
type Chart struct {
	ID      string                 `json:"id"`
	Title   string                 `json:"title"`
	Message string                 `json:"message,omitempty"`
	Option  map[string]interface{} `json:"option,omitempty"`

	charter components.Charter
}

// TopView состояние и графики топ-анализа
type TopView struct {
	State      TopState `json:"state"`
	Generation uint64   `json:"generation"`
	Charts     []Chart  `json:"charts,omitempty"`
}
