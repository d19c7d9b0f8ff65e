// Package models содержит структуры данных дашборда и шлюза метрик
package models

import (
	"encoding/json"
	"math"
	"time"
)

// TimeLayout формат границ диапазона: UTC ISO-8601 с точностью до секунды
const TimeLayout = "2006-01-02T15:04:05Z"

// Interval шаг агрегации, запрошенный у провайдера
type Interval string

const (
	IntervalAuto Interval = "auto"
	IntervalMin  Interval = "min"
	Interval5Min Interval = "5min"
	IntervalHour Interval = "hour"
	IntervalDay  Interval = "day"
)

// ParseInterval возвращает auto для пустых и неизвестных значений
func ParseInterval(s string) Interval {
	switch i := Interval(s); i {
	case IntervalMin, Interval5Min, IntervalHour, IntervalDay:
		return i
	default:
		return IntervalAuto
	}
}

// RangeKey именованный диапазон времени из панели управления
type RangeKey string

const (
	Range30Min     RangeKey = "30min"
	Range1H        RangeKey = "1h"
	Range6H        RangeKey = "6h"
	RangeToday     RangeKey = "today"
	RangeYesterday RangeKey = "yesterday"
	Range3D        RangeKey = "3d"
	Range7D        RangeKey = "7d"
	Range14D       RangeKey = "14d"
	Range31D       RangeKey = "31d"
	RangeCustom    RangeKey = "custom"
)

// IsLong сообщает, относится ли диапазон к многодневным
func (k RangeKey) IsLong() bool {
	switch k {
	case Range3D, Range7D, Range14D, Range31D:
		return true
	}
	return false
}

// CustomDuration произвольная длительность, введенная пользователем
type CustomDuration struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Duration суммарная длительность; при переполнении насыщается до
// math.MaxInt64 или math.MinInt64 наносекунд, знак сохраняется
func (c CustomDuration) Duration() time.Duration {
	total := int64(0)
	total = addSat(total, mulSat(int64(c.Days), 86400))
	total = addSat(total, mulSat(int64(c.Hours), 3600))
	total = addSat(total, mulSat(int64(c.Minutes), 60))
	total = addSat(total, int64(c.Seconds))

	const maxSeconds = math.MaxInt64 / int64(time.Second)
	switch {
	case total > maxSeconds:
		return time.Duration(math.MaxInt64)
	case total < -maxSeconds:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(total) * time.Second
}

func mulSat(n, unit int64) int64 {
	switch {
	case n > math.MaxInt64/unit:
		return math.MaxInt64
	case n < math.MinInt64/unit:
		return math.MinInt64
	}
	return n * unit
}

func addSat(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}

// TimeRange интервал запроса метрик
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// StartTime начало в формате TimeLayout
func (r TimeRange) StartTime() string { return r.Start.UTC().Format(TimeLayout) }

// EndTime конец в формате TimeLayout
func (r TimeRange) EndTime() string { return r.End.UTC().Format(TimeLayout) }

// Duration длина интервала
func (r TimeRange) Duration() time.Duration { return r.End.Sub(r.Start) }

// MarshalJSON сериализует границы как строки провайдера
func (r TimeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"startTime": r.StartTime(),
		"endTime":   r.EndTime(),
	})
}

// MetricRequest запрос одной или нескольких метрик одного семейства
type MetricRequest struct {
	MetricNames []string  `json:"metricNames"`
	Range       TimeRange `json:"range"`
	Interval    Interval  `json:"interval"`
	ZoneID      string    `json:"zoneId"`
	NoCache     bool      `json:"-"`
}

// Zone сайт клиента на платформе
type Zone struct {
	ZoneId   string `json:"ZoneId"`
	ZoneName string `json:"ZoneName"`
}

// ZonesResponse ответ DescribeZones
type ZonesResponse struct {
	TotalCount int    `json:"TotalCount"`
	Zones      []Zone `json:"Zones"`
	RequestId  string `json:"RequestId,omitempty"`
}

// SiteConfig параметры оформления дашборда
type SiteConfig struct {
	SiteName string `json:"siteName"`
	SiteIcon string `json:"siteIcon"`
}

// HealthStatus представляет статус здоровья сервиса
type HealthStatus struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Redis       string    `json:"redis"`
	Credentials bool      `json:"credentials"`
	Uptime      string    `json:"uptime"`
}
