// Package analytics реализует ядро дашборда: нормализацию ответов провайдера,
// определение гранулярности, расчет диапазонов времени, сравнение периодов
// и производные показатели.
package analytics

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"teo-dashboard/internal/models"
)

// LabelContext параметры панели управления, влияющие на подписи корзин
type LabelContext struct {
	Interval   models.Interval
	RangeKey   models.RangeKey
	CustomSpan time.Duration
	Location   *time.Location
}

// Normalizer приводит ответы всех семейств API к TimeSeries или TopList.
// Normalize никогда не возвращает ошибку: некорректные поля заменяются нулями.
type Normalizer struct {
	ctx LabelContext
}

// NewNormalizer создает нормализатор для текущего состояния панели
func NewNormalizer(lc LabelContext) *Normalizer {
	if lc.Location == nil {
		lc.Location = time.Local
	}
	if lc.Interval == "" {
		lc.Interval = models.IntervalAuto
	}
	return &Normalizer{ctx: lc}
}

// Normalize классифицирует ответ в фиксированном порядке:
// Data[0].DetailData -> топ-срез; затем Data, иначе TimingDataRecords -> временной ряд.
func (n *Normalizer) Normalize(raw json.RawMessage, target string) models.Normalized {
	root := asObject(raw)
	if inner, ok := root.field("Response"); ok && !root.has("Data") && !root.has("TimingDataRecords") {
		root = asObject(inner)
	}

	var records []json.RawMessage
	if data, ok := root.field("Data"); ok {
		records = asArray(data)
		if len(records) > 0 {
			if detail, ok := asObject(records[0]).field("DetailData"); ok {
				return decodeTopList(detail)
			}
		}
	} else if timing, ok := root.field("TimingDataRecords"); ok {
		records = asArray(timing)
	}

	if len(records) == 0 {
		return models.EmptyTimeSeries()
	}

	entry := pickEntry(asObject(records[0]), target)
	return n.buildSeries(entry)
}

type rawEntry struct {
	MetricName lenientString   `json:"MetricName"`
	Detail     json.RawMessage `json:"Detail"`
	Sum        lenientNumber   `json:"Sum"`
	Max        lenientNumber   `json:"Max"`
	Avg        lenientNumber   `json:"Avg"`
}

type rawSample struct {
	Timestamp lenientNumber `json:"Timestamp"`
	Value     lenientNumber `json:"Value"`
}

type rawTopEntry struct {
	Key   lenientString `json:"Key"`
	Value lenientNumber `json:"Value"`
}

// pickEntry ищет метрику в TypeValue (или в Value, если TypeValue нет),
// иначе берет первый элемент TypeValue, затем Value.
func pickEntry(first object, target string) rawEntry {
	typeValues, hasTypeValue := first.field("TypeValue")
	values, hasValue := first.field("Value")
	tv := asArray(typeValues)
	v := asArray(values)

	if target != "" {
		var candidates []json.RawMessage
		if hasTypeValue {
			candidates = tv
		} else if hasValue {
			candidates = v
		}
		for _, c := range candidates {
			e, ok := decodeEntry(c)
			if ok && string(e.MetricName) == target {
				return e
			}
		}
	}

	if len(tv) > 0 {
		if e, ok := decodeEntry(tv[0]); ok {
			return e
		}
	}
	if len(v) > 0 {
		if e, ok := decodeEntry(v[0]); ok {
			return e
		}
	}
	return rawEntry{}
}

func decodeEntry(raw json.RawMessage) (rawEntry, bool) {
	var e rawEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return rawEntry{}, false
	}
	return e, true
}

func decodeTopList(raw json.RawMessage) models.TopList {
	items := asArray(raw)
	list := models.TopList{Data: make([]models.TopEntry, 0, len(items))}
	for _, item := range items {
		var e rawTopEntry
		_ = json.Unmarshal(item, &e)
		list.Data = append(list.Data, models.TopEntry{Key: string(e.Key), Value: float64(e.Value)})
	}
	return list
}

func (n *Normalizer) buildSeries(e rawEntry) models.TimeSeries {
	items := asArray(e.Detail)
	samples := make([]rawSample, len(items))
	stamps := make([]float64, len(items))
	for i, item := range items {
		_ = json.Unmarshal(item, &samples[i])
		stamps[i] = float64(samples[i].Timestamp)
	}

	granularity := InferGranularity(n.ctx.Interval, stamps, n.ctx.RangeKey)

	var span float64
	if len(stamps) > 0 {
		span = stamps[len(stamps)-1] - stamps[0]
	}
	wide := span > 86400 || n.ctx.RangeKey.IsLong() ||
		(n.ctx.RangeKey == models.RangeCustom && n.ctx.CustomSpan > 24*time.Hour)

	series := models.TimeSeries{
		TimeData:  make([]string, len(samples)),
		ValueData: make([]float64, len(samples)),
		Sum:       float64(e.Sum),
		Max:       float64(e.Max),
		Avg:       float64(e.Avg),
	}
	for i, s := range samples {
		series.TimeData[i] = n.label(float64(s.Timestamp), granularity, wide)
		series.ValueData[i] = float64(s.Value)
	}
	return series
}

func (n *Normalizer) label(epochSeconds float64, g Granularity, wide bool) string {
	t := time.UnixMilli(int64(epochSeconds * 1000)).In(n.ctx.Location)
	switch {
	case g == GranularityDay:
		return t.Format("2006-01-02")
	case wide:
		return t.Format("01-02 15:04")
	default:
		return t.Format("15:04")
	}
}

// object JSON-объект с отложенным разбором полей
type object map[string]json.RawMessage

func asObject(raw json.RawMessage) object {
	var o object
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil
	}
	return o
}

// field возвращает поле, если оно присутствует и не равно null
func (o object) field(name string) (json.RawMessage, bool) {
	v, ok := o[name]
	if !ok || isNull(v) {
		return nil, false
	}
	return v, true
}

func (o object) has(name string) bool {
	_, ok := o.field(name)
	return ok
}

func asArray(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || string(t) == "null"
}

// lenientNumber принимает число, числовую строку или null
type lenientNumber float64

func (n *lenientNumber) UnmarshalJSON(b []byte) error {
	*n = lenientNumber(parseLenientNumber(b))
	return nil
}

func parseLenientNumber(b []byte) float64 {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return 0
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return 0
		}
		s = strings.TrimSpace(s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// lenientString принимает строку или любое скалярное значение в виде текста
type lenientString string

func (s *lenientString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err == nil {
			*s = lenientString(v)
			return nil
		}
	}
	*s = lenientString(b)
	return nil
}
