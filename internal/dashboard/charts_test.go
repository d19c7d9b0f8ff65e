package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teo-dashboard/internal/units"
)

func TestChartBuilder_Theme(t *testing.T) {
	assert.Equal(t, "white", chartBuilder{theme: ThemeLight}.echartsTheme())
	assert.Equal(t, types.ThemeChalk, chartBuilder{theme: ThemeDark}.echartsTheme())
}

func TestChartBuilder_LineAreaStyle(t *testing.T) {
	b := chartBuilder{theme: ThemeLight}
	c := b.line("chart_traffic", "Traffic", "", units.Unit{Label: "MB", Divisor: 1e6},
		[]string{"10:00", "11:00"},
		[]lineSeries{{name: "Edge", color: "#3b82f6", values: []float64{1e6, 2.5e6}}},
		false)

	raw, err := json.Marshal(c.Option)
	require.NoError(t, err)

	type areaStyle struct {
		Opacity float64 `json:"opacity"`
	}
	var option struct {
		Series []struct {
			Name      string    `json:"name"`
			Data      []any     `json:"data"`
			AreaStyle areaStyle `json:"areaStyle"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal(raw, &option))
	require.Len(t, option.Series, 1)
	assert.Equal(t, "Edge", option.Series[0].Name)
	assert.Len(t, option.Series[0].Data, 2)
	assert.InDelta(t, areaOpacity, option.Series[0].AreaStyle.Opacity, 1e-6)
}
