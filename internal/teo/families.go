package teo

// Family семейство API провайдера, к которому относится метрика
type Family string

const (
	FamilyTiming     Family = "timing"
	FamilyOriginPull Family = "originPull"
	FamilyTop        Family = "top"
	FamilySecurity   Family = "security"
	FamilyFunction   Family = "function"
)

// Действия API
const (
	ActionTimingAnalysis   = "DescribeTimingL7AnalysisData"
	ActionOriginPull       = "DescribeTimingL7OriginPullData"
	ActionTopAnalysis      = "DescribeTopL7AnalysisData"
	ActionWebProtection    = "DescribeWebProtectionData"
	ActionFunctionAnalysis = "DescribeTimingFunctionAnalysisData"
	ActionDescribeZones    = "DescribeZones"
	ActionPagesResources   = "DescribePagesResources"
)

// OriginPullMetrics метрики DescribeTimingL7OriginPullData
var OriginPullMetrics = []string{
	"l7Flow_outFlux_hy",
	"l7Flow_outBandwidth_hy",
	"l7Flow_request_hy",
	"l7Flow_inFlux_hy",
	"l7Flow_inBandwidth_hy",
}

// TopMetrics метрики DescribeTopL7AnalysisData
var TopMetrics = []string{
	"l7Flow_outFlux_country",
	"l7Flow_outFlux_province",
	"l7Flow_outFlux_statusCode",
	"l7Flow_outFlux_domain",
	"l7Flow_outFlux_url",
	"l7Flow_outFlux_resourceType",
	"l7Flow_outFlux_sip",
	"l7Flow_outFlux_referers",
	"l7Flow_outFlux_ua_device",
	"l7Flow_outFlux_ua_browser",
	"l7Flow_outFlux_ua_os",
	"l7Flow_outFlux_ua",
	"l7Flow_request_country",
	"l7Flow_request_province",
	"l7Flow_request_statusCode",
	"l7Flow_request_domain",
	"l7Flow_request_url",
	"l7Flow_request_resourceType",
	"l7Flow_request_sip",
	"l7Flow_request_referers",
	"l7Flow_request_ua_device",
	"l7Flow_request_ua_browser",
	"l7Flow_request_ua_os",
	"l7Flow_request_ua",
}

// SecurityMetrics метрики DescribeWebProtectionData
var SecurityMetrics = []string{
	"ccAcl_interceptNum",
	"ccManage_interceptNum",
	"ccRate_interceptNum",
}

// FunctionMetrics метрики DescribeTimingFunctionAnalysisData
var FunctionMetrics = []string{"function_requestCount", "function_cpuCostTime"}

var familyIndex = func() map[string]Family {
	idx := make(map[string]Family)
	for _, m := range OriginPullMetrics {
		idx[m] = FamilyOriginPull
	}
	for _, m := range FunctionMetrics {
		idx[m] = FamilyFunction
	}
	for _, m := range SecurityMetrics {
		idx[m] = FamilySecurity
	}
	for _, m := range TopMetrics {
		idx[m] = FamilyTop
	}
	return idx
}()

// ClassifyMetric определяет семейство по имени метрики.
// Неизвестные имена относятся к timing.
func ClassifyMetric(name string) Family {
	if f, ok := familyIndex[name]; ok {
		return f
	}
	return FamilyTiming
}

// Action возвращает действие API для семейства
func (f Family) Action() string {
	switch f {
	case FamilyOriginPull:
		return ActionOriginPull
	case FamilyTop:
		return ActionTopAnalysis
	case FamilySecurity:
		return ActionWebProtection
	case FamilyFunction:
		return ActionFunctionAnalysis
	default:
		return ActionTimingAnalysis
	}
}
