// Package units переводит байты, биты и счетчики в читаемые строки
// с автоматическим выбором единицы.
package units

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"teo-dashboard/internal/i18n"
	"teo-dashboard/internal/models"
)

// Kind тип величины для выбора единицы оси
type Kind int

const (
	KindBytes Kind = iota
	KindBandwidth
)

const base = 1024

var (
	byteSizes = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}
	bpsSizes  = []string{"bps", "Kbps", "Mbps", "Gbps", "Tbps", "Pbps", "Ebps", "Zbps", "Ybps"}
)

// Unit единица оси и делитель для значений
type Unit struct {
	Label   string  `json:"label"`
	Divisor float64 `json:"divisor"`
}

// Scale делит значение на делитель единицы
func (u Unit) Scale(v float64) float64 {
	if u.Divisor == 0 {
		return v
	}
	return v / u.Divisor
}

// FormatBytes форматирует объем: 1536 -> "1.5 KB"
func FormatBytes(v float64) string {
	return formatBinary(v, byteSizes)
}

// FormatBps форматирует полосу: 1048576 -> "1 Mbps"
func FormatBps(v float64) string {
	return formatBinary(v, bpsSizes)
}

func formatBinary(v float64, sizes []string) string {
	if v == 0 {
		return "0 " + sizes[0]
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v < 1 {
		return sign + strconv.FormatFloat(v, 'f', -1, 64) + " " + sizes[0]
	}

	i := 0
	for v >= base && i < len(sizes)-1 {
		v /= base
		i++
	}
	if v >= base {
		return sign + strconv.FormatFloat(v, 'f', 2, 64) + " " + sizes[i]
	}
	return sign + humanize.FtoaWithDigits(v, 2) + " " + sizes[i]
}

type compactStep struct {
	threshold float64
	suffix    string
}

var compactSteps = map[i18n.Locale][]compactStep{
	i18n.EnUS: {
		{1e12, "T"},
		{1e9, "B"},
		{1e6, "M"},
		{1e3, "K"},
	},
	i18n.ZhHans: {
		{1e12, "万亿"},
		{1e8, "亿"},
		{1e4, "万"},
	},
}

// FormatCount компактная запись счетчика: en "1.23K", zh "1.23万"
func FormatCount(v float64, l i18n.Locale) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	if v == 0 {
		return "0"
	}
	if v < 1000 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	steps, ok := compactSteps[l]
	if !ok {
		steps = compactSteps[i18n.Default]
	}
	for _, s := range steps {
		if v >= s.threshold {
			return humanize.FtoaWithDigits(v/s.threshold, 2) + s.suffix
		}
	}
	return humanize.FtoaWithDigits(v, 2)
}

// FormatNumber число с группировкой разрядов по локали
func FormatNumber(v float64, l i18n.Locale) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	p := message.NewPrinter(l.Tag())
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// FormatMillis значение в миллисекундах с двумя знаками: "12.50 ms"
func FormatMillis(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + " ms"
}

// FormatPercentAbs модуль доли в процентах с двумя знаками: -0.125 -> "12.50%"
func FormatPercentAbs(pct float64, l i18n.Locale) string {
	p := message.NewPrinter(l.Tag())
	abs := math.Abs(pct * 100)
	return p.Sprint(number.Decimal(abs, number.MinFractionDigits(2), number.MaxFractionDigits(2))) + "%"
}

// FormatRate доля в процентах со знаком: 0.8 -> "80.00%"
func FormatRate(rate float64) string {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return "-"
	}
	return strconv.FormatFloat(rate*100, 'f', 2, 64) + "%"
}

// FormatComparison строка сравнения в локали зрителя; пустая для недоступного сравнения
func FormatComparison(c models.Comparison, l i18n.Locale) string {
	if !c.Available() {
		return ""
	}
	if math.IsInf(c.Percent, 1) {
		return c.Arrow() + " ∞%"
	}
	return c.Arrow() + " " + FormatPercentAbs(c.Percent, l)
}

// BestUnit единица оси для максимума ряда, не выше PB/Pbps
func BestUnit(max float64, kind Kind) Unit {
	sizes := byteSizes[:6]
	if kind == KindBandwidth {
		sizes = bpsSizes[:6]
	}
	if max <= 0 || math.IsNaN(max) {
		return Unit{Label: sizes[0], Divisor: 1}
	}

	i := int(math.Floor(math.Log(max) / math.Log(base)))
	if i < 0 {
		i = 0
	}
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	return Unit{Label: sizes[i], Divisor: math.Pow(base, float64(i))}
}

// BestCountUnit единица оси счетчиков: en requests/K/M/B, zh 次/千次/万次/亿次
func BestCountUnit(max float64, l i18n.Locale) Unit {
	if l == i18n.EnUS {
		req := i18n.T(l, i18n.KeyUnitRequests)
		switch {
		case max < 1e3:
			return Unit{Label: req, Divisor: 1}
		case max < 1e6:
			return Unit{Label: "K " + req, Divisor: 1e3}
		case max < 1e9:
			return Unit{Label: "M " + req, Divisor: 1e6}
		default:
			return Unit{Label: "B " + req, Divisor: 1e9}
		}
	}
	switch {
	case max < 1000:
		return Unit{Label: "次", Divisor: 1}
	case max < 10000:
		return Unit{Label: "千次", Divisor: 1000}
	case max < 1e8:
		return Unit{Label: "万次", Divisor: 10000}
	default:
		return Unit{Label: "亿次", Divisor: 1e8}
	}
}
