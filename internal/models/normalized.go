package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// ResultType тег нормализованного результата
type ResultType string

const (
	ResultTime ResultType = "time"
	ResultTop  ResultType = "top"
)

// Normalized результат нормализации ответа провайдера: TimeSeries или TopList
type Normalized interface {
	Type() ResultType
	isNormalized()
}

// TimeSeries временной ряд с агрегатами.
// Длины TimeData и ValueData всегда совпадают.
type TimeSeries struct {
	TimeData  []string  `json:"timeData"`
	ValueData []float64 `json:"valueData"`
	Sum       float64   `json:"sum"`
	Max       float64   `json:"max"`
	Avg       float64   `json:"avg"`
}

// EmptyTimeSeries пустой ряд с нулевыми агрегатами
func EmptyTimeSeries() TimeSeries {
	return TimeSeries{TimeData: []string{}, ValueData: []float64{}}
}

func (TimeSeries) Type() ResultType { return ResultTime }
func (TimeSeries) isNormalized()    {}

// Len количество точек
func (s TimeSeries) Len() int { return len(s.ValueData) }

func (s TimeSeries) MarshalJSON() ([]byte, error) {
	type alias TimeSeries
	return json.Marshal(struct {
		Type ResultType `json:"type"`
		alias
	}{ResultTime, alias(s)})
}

// TopEntry значение измерения в топ-срезе.
// Key "-" или пустой означает отсутствующее поле.
type TopEntry struct {
	Key   string  `json:"Key"`
	Value float64 `json:"Value"`
}

// TopList топ-срез в порядке получения от провайдера
type TopList struct {
	Data []TopEntry `json:"data"`
}

func (TopList) Type() ResultType { return ResultTop }
func (TopList) isNormalized()    {}

func (l TopList) MarshalJSON() ([]byte, error) {
	data := l.Data
	if data == nil {
		data = []TopEntry{}
	}
	return json.Marshal(struct {
		Type ResultType `json:"type"`
		Data []TopEntry `json:"data"`
	}{ResultTop, data})
}

// Direction направление изменения относительно прошлого периода
type Direction string

const (
	DirectionUp          Direction = "up"
	DirectionDown        Direction = "down"
	DirectionFlat        Direction = "flat"
	DirectionUnavailable Direction = "unavailable"
)

// Comparison результат сравнения периодов. Percent хранится долей (0.5 = 50%),
// может быть +Inf или NaN.
type Comparison struct {
	Direction Direction
	Percent   float64
}

// Available false, если строку сравнения нужно скрыть
func (c Comparison) Available() bool {
	return c.Direction != DirectionUnavailable && c.Direction != ""
}

// Arrow символ направления
func (c Comparison) Arrow() string {
	switch c.Direction {
	case DirectionUp:
		return "↑"
	case DirectionDown:
		return "↓"
	case DirectionFlat:
		return "→"
	}
	return ""
}

// String возвращает "↑ 50.00%", "↑ ∞%" или пустую строку для недоступного сравнения
func (c Comparison) String() string {
	if !c.Available() {
		return ""
	}
	if math.IsInf(c.Percent, 1) {
		return c.Arrow() + " ∞%"
	}
	return c.Arrow() + " " + strconv.FormatFloat(math.Abs(c.Percent*100), 'f', 2, 64) + "%"
}

func (c Comparison) MarshalJSON() ([]byte, error) {
	var percent interface{}
	switch {
	case math.IsNaN(c.Percent):
		percent = nil
	case math.IsInf(c.Percent, 1):
		percent = "Infinity"
	case math.IsInf(c.Percent, -1):
		percent = "-Infinity"
	default:
		percent = c.Percent
	}
	return json.Marshal(map[string]interface{}{
		"direction": c.Direction,
		"percent":   percent,
		"display":   c.String(),
	})
}
