package dashboard

import (
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"teo-dashboard/internal/units"
)

const (
	chartHeight = "320px"
	areaOpacity = 0.1

	// lightTheme встроенная светлая тема ECharts
	lightTheme = "white"
)

type lineSeries struct {
	name   string
	color  string
	values []float64
}

type chartBuilder struct {
	theme Theme
}

func (b chartBuilder) echartsTheme() string {
	if b.theme == ThemeDark {
		return types.ThemeChalk
	}
	return lightTheme
}

func (b chartBuilder) base(id, title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: id,
			Theme:   b.echartsTheme(),
			Width:   "100%",
			Height:  chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
	}
}

// line линейный график с общей осью времени; unit задает подпись оси Y и делитель
func (b chartBuilder) line(id, title, subtitle string, unit units.Unit, labels []string, series []lineSeries, stacked bool) Chart {
	line := charts.NewLine()
	line.SetGlobalOptions(b.base(id, title, subtitle)...)
	line.SetGlobalOptions(
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithGridOpts(opts.Grid{Left: "3%", Right: "4%", Bottom: "10%", Top: "15%"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: unit.Label, Type: "value"}),
	)

	line.SetXAxis(labels)
	for _, s := range series {
		data := make([]opts.LineData, len(s.values))
		for i, v := range s.values {
			data[i] = opts.LineData{Value: scaled(unit, v)}
		}
		lineOpts := opts.LineChart{Smooth: opts.Bool(true)}
		if stacked {
			lineOpts.Stack = "total"
		}
		line.AddSeries(s.name, data,
			charts.WithLineChartOpts(lineOpts),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.color}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: areaOpacity}),
		)
	}

	line.Validate()
	return Chart{ID: id, Title: title, Option: line.JSON(), charter: line}
}

// hbar горизонтальная столбчатая диаграмма топ-среза
func (b chartBuilder) hbar(id, title, seriesName, color string, unit units.Unit, labels []string, values []float64) Chart {
	bar := charts.NewBar()
	bar.SetGlobalOptions(b.base(id, title, "")...)
	bar.SetGlobalOptions(
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithGridOpts(opts.Grid{Left: "3%", Right: "10%", Bottom: "3%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: unit.Label, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category"}),
	)

	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Value: scaled(unit, v)}
	}
	bar.SetXAxis(labels).AddSeries(seriesName, data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}),
	)
	bar.XYReversal()

	bar.Validate()
	return Chart{ID: id, Title: title, Option: bar.JSON(), charter: bar}
}

type mapPoint struct {
	name  string
	value float64
}

// worldMap карта мира с градиентом по значению
func (b chartBuilder) worldMap(id, title, seriesName string, points []mapPoint) Chart {
	m := charts.NewMap()
	m.RegisterMapType("world")

	peak := 0.0
	data := make([]opts.MapData, len(points))
	for i, p := range points {
		data[i] = opts.MapData{Name: p.name, Value: p.value}
		peak = math.Max(peak, p.value)
	}

	m.SetGlobalOptions(b.base(id, title, "")...)
	m.SetGlobalOptions(
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(peak),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#e0f2fe", "#0284c7"},
			},
		}),
	)
	m.AddSeries(seriesName, data)

	m.Validate()
	return Chart{ID: id, Title: title, Option: m.JSON(), charter: m}
}

// message график без данных, заголовок которого объясняет причину
func (b chartBuilder) message(id, title, text string) Chart {
	line := charts.NewLine()
	line.SetGlobalOptions(b.base(id, title, text)...)
	line.Validate()
	return Chart{ID: id, Title: title, Message: text, charter: line}
}

// scaled делит значение на делитель единицы и округляет до сотых
func scaled(unit units.Unit, v float64) float64 {
	if unit.Divisor == 0 || unit.Divisor == 1 {
		return v
	}
	return math.Round(unit.Scale(v)*100) / 100
}
