package dashboard

import (
	"strings"

	"teo-dashboard/internal/teo"
)

// Группы метрик по разделам панели
var (
	trafficMetrics     = []string{"l7Flow_flux", "l7Flow_inFlux", "l7Flow_outFlux"}
	bandwidthMetrics   = []string{"l7Flow_bandwidth", "l7Flow_inBandwidth", "l7Flow_outBandwidth"}
	requestMetrics     = []string{"l7Flow_request"}
	performanceMetrics = []string{"l7Flow_avgResponseTime", "l7Flow_avgFirstByteResponseTime"}
	originPullMetrics  = []string{
		"l7Flow_outFlux_hy",
		"l7Flow_inFlux_hy",
		"l7Flow_outBandwidth_hy",
		"l7Flow_inBandwidth_hy",
		"l7Flow_request_hy",
	}
)

// timingMetrics одна пачка DescribeTimingL7AnalysisData на все timing-разделы
func timingMetrics() []string {
	var out []string
	out = append(out, trafficMetrics...)
	out = append(out, bandwidthMetrics...)
	out = append(out, requestMetrics...)
	return append(out, performanceMetrics...)
}

var metricColors = map[string]string{
	"l7Flow_flux":                     "#3b82f6",
	"l7Flow_inFlux":                   "#f59e0b",
	"l7Flow_outFlux":                  "#10b981",
	"l7Flow_bandwidth":                "#8b5cf6",
	"l7Flow_inBandwidth":              "#ec4899",
	"l7Flow_outBandwidth":             "#06b6d4",
	"l7Flow_outFlux_hy":               "#3b82f6",
	"l7Flow_inFlux_hy":                "#10b981",
	"l7Flow_outBandwidth_hy":          "#8b5cf6",
	"l7Flow_inBandwidth_hy":           "#ec4899",
	"l7Flow_request_hy":               "#f43f5e",
	"l7Flow_request":                  "#f43f5e",
	"l7Flow_avgResponseTime":          "#ef4444",
	"l7Flow_avgFirstByteResponseTime": "#f97316",
	"function_requestCount":           "#8b5cf6",
	"function_cpuCostTime":            "#06b6d4",
	"ccAcl_interceptNum":              "#ef4444",
	"ccManage_interceptNum":           "#f59e0b",
	"ccRate_interceptNum":             "#3b82f6",
}

const defaultColor = "#3b82f6"

func colorOf(metric string) string {
	if c, ok := metricColors[metric]; ok {
		return c
	}
	return defaultColor
}

// topColor цвет столбцов топ-среза по измерению
func topColor(metric string) string {
	name := strings.ToLower(metric)
	switch {
	case strings.Contains(name, "country"):
		return "#3b82f6"
	case strings.Contains(name, "province"), strings.Contains(name, "resourcetype"), strings.Contains(name, "browser"):
		return "#f59e0b"
	case strings.Contains(name, "statuscode"), strings.Contains(name, "referer"), strings.HasSuffix(name, "_ua"):
		return "#8b5cf6"
	case strings.Contains(name, "domain"), strings.Contains(name, "device"):
		return "#06b6d4"
	case strings.Contains(name, "url"), strings.Contains(name, "os"):
		return "#10b981"
	case strings.Contains(name, "sip"):
		return "#ef4444"
	}
	return defaultColor
}

// topMetrics копия каталога top-метрик
func topMetrics() []string {
	return append([]string(nil), teo.TopMetrics...)
}

func securityMetrics() []string {
	return teo.SecurityMetrics
}
