package dashboard

import (
	"strings"

	"teo-dashboard/internal/i18n"
	"teo-dashboard/internal/models"
)

// DefaultRange диапазон, выбранный в панели по умолчанию
const DefaultRange = models.Range30Min

// Controls состояние панели управления, от которого зависят данные
type Controls struct {
	RangeKey models.RangeKey       `json:"rangeKey"`
	Interval models.Interval       `json:"interval"`
	ZoneID   string                `json:"zoneId"`
	Custom   models.CustomDuration `json:"custom"`
}

// Normalize подставляет значения по умолчанию; "*" и пустой сайт равнозначны
func (c Controls) Normalize() Controls {
	if c.RangeKey == "" {
		c.RangeKey = DefaultRange
	}
	c.Interval = models.ParseInterval(string(c.Interval))
	c.ZoneID = strings.TrimSpace(c.ZoneID)
	if c.ZoneID == "" {
		c.ZoneID = allZones
	}
	if c.RangeKey != models.RangeCustom {
		c.Custom = models.CustomDuration{}
	}
	return c
}

// Equal сообщает, можно ли переиспользовать данные, полученные для other
func (c Controls) Equal(other Controls) bool {
	a, b := c.Normalize(), other.Normalize()
	return a == b
}

// zone значение ZoneId для запросов; "" означает все сайты
func (c Controls) zone() string {
	if c.ZoneID == allZones {
		return ""
	}
	return c.ZoneID
}

const allZones = "*"

// Theme цветовая схема графиков
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme возвращает light для неизвестных значений
func ParseTheme(s string) Theme {
	if Theme(strings.ToLower(strings.TrimSpace(s))) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// Preferences настройки отображения. Их смена не инвалидирует данные.
type Preferences struct {
	Locale i18n.Locale `json:"locale"`
	Theme  Theme       `json:"theme"`
}
