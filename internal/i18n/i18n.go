// Package i18n содержит таблицы подписей дашборда для zh-Hans и en-US
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale язык интерфейса
type Locale string

const (
	ZhHans Locale = "zh-Hans"
	EnUS   Locale = "en-US"
	// Default язык по умолчанию
	Default = ZhHans
)

// Normalize приводит произвольный тег (zh, zh-CN, en-GB, ...) к поддерживаемой локали
func Normalize(input string) Locale {
	raw := strings.TrimSpace(input)
	lower := strings.ToLower(raw)
	switch {
	case raw == "":
		return Default
	case lower == "zh" || lower == "zh-cn" || strings.HasPrefix(lower, "zh-hans"):
		return ZhHans
	case strings.HasPrefix(lower, "en"):
		return EnUS
	}
	return Default
}

// Tag языковой тег x/text для форматирования чисел и названий регионов
func (l Locale) Tag() language.Tag {
	if l == EnUS {
		return language.AmericanEnglish
	}
	return language.SimplifiedChinese
}

// Key ключ сообщения
type Key string

const (
	KeyMissingField         Key = "errors.missingField"
	KeyRangeTooLarge        Key = "errors.rangeTooLarge"
	KeyCustomRangeTooLarge  Key = "errors.customRangeTooLarge"
	KeySecurityOnly14d      Key = "errors.securityOnly14d"
	KeySecurityOnly14dTitle Key = "errors.securityOnly14dTitle"
	KeyUnitRequests         Key = "units.requests"
	KeyCompareVsPrev        Key = "compare.vsPrev"

	KeySectionTraffic       Key = "sections.traffic"
	KeySectionBandwidth     Key = "sections.bandwidth"
	KeySectionOriginPull    Key = "sections.originPull"
	KeySectionEdgeFunctions Key = "sections.edgeFunctions"
	KeySectionPages         Key = "sections.pages"
	KeySectionRequests      Key = "sections.requestsPerformance"
	KeySectionSecurity      Key = "sections.security"
	KeySectionTop           Key = "sections.topAnalysis"

	KeyCacheHitRate      Key = "originPull.cacheHitRate"
	KeySecurityHits      Key = "security.hits"
	KeySecurityHitsDesc  Key = "charts.securityHitsDescription"
	KeyPagesDailyBuild   Key = "pages.dailyBuild"
	KeyPagesMonthlyBuild Key = "pages.monthlyBuild"
	KeyPagesCF24h        Key = "pages.cf24h"
	KeyPagesCFMonthlyReq Key = "pages.cfMonthlyRequests"
	KeyPagesCFMonthlyGbs Key = "pages.cfMonthlyGbs"
	KeyPagesCFTrend      Key = "pages.cfTrend"
	KeyTrafficTrend      Key = "traffic.trend"
	KeyBandwidthTrend    Key = "bandwidth.trend"
	KeyOriginPullTrend   Key = "originPull.trend"
	KeyRequestsTrend     Key = "reqPerf.requestsTrend"
	KeyLatencyTrend      Key = "reqPerf.latencyTrend"
	KeySecurityTrend     Key = "security.trend"
	KeyFunctionsReqTrend Key = "edgeFunctions.requests.trend"
	KeyFunctionsCPUTrend Key = "edgeFunctions.cpu.trend"
	KeyWorldMap          Key = "top.worldMap"
	KeyChartRequests     Key = "charts.requests"
	KeyCommonError       Key = "common.error"
	KeyZonesAll          Key = "zones.all"
	KeyZonesLoadFailed   Key = "zones.loadFailed"
	KeyZonesPagesSuffix  Key = "zones.pagesSuffix"
)

var messages = map[Locale]map[Key]string{
	ZhHans: {
		KeyMissingField:         "字段不存在",
		KeyRangeTooLarge:        "范围过大",
		KeyCustomRangeTooLarge:  "自定义时间范围不能超过 31 天，已自动为您调整为 31 天。",
		KeySecurityOnly14d:      "仅支持查询14天内的数据",
		KeySecurityOnly14dTitle: "该指标仅支持查询14天内的数据",
		KeyUnitRequests:         "次",
		KeyCompareVsPrev:        "较上一周期",

		KeySectionTraffic:       "流量分析 (Traffic)",
		KeySectionBandwidth:     "带宽分析 (Bandwidth)",
		KeySectionOriginPull:    "回源分析 (Origin Pull Analysis)",
		KeySectionEdgeFunctions: "边缘函数 (Edge Functions)",
		KeySectionPages:         "Pages 统计 (Pages Stats)",
		KeySectionRequests:      "请求与性能 (Requests & Performance)",
		KeySectionSecurity:      "安全分析 (Security Analysis)",
		KeySectionTop:           "TOP 分析 (Top Analysis)",

		KeyCacheHitRate:      "缓存命中率",
		KeySecurityHits:      "总防护命中次数",
		KeySecurityHitsDesc:  "DDoS/CC 防护总拦截次数",
		KeyPagesDailyBuild:   "当日构建次数",
		KeyPagesMonthlyBuild: "当月构建次数",
		KeyPagesCF24h:        "Cloud Functions 24h 请求数",
		KeyPagesCFMonthlyReq: "当月 Cloud Functions 请求数",
		KeyPagesCFMonthlyGbs: "当月 Cloud Functions GBs",
		KeyPagesCFTrend:      "Cloud Functions 请求数趋势",
		KeyTrafficTrend:      "流量趋势",
		KeyBandwidthTrend:    "带宽趋势",
		KeyOriginPullTrend:   "回源趋势",
		KeyRequestsTrend:     "请求数趋势",
		KeyLatencyTrend:      "响应耗时趋势",
		KeySecurityTrend:     "安全防护趋势",
		KeyFunctionsReqTrend: "函数请求数趋势",
		KeyFunctionsCPUTrend: "函数 CPU 耗时趋势",
		KeyWorldMap:          "全球请求分布",
		KeyChartRequests:     "请求数",
		KeyCommonError:       "错误",
		KeyZonesAll:          "全部站点",
		KeyZonesLoadFailed:   "站点加载失败",
		KeyZonesPagesSuffix:  " (Pages)",
	},
	EnUS: {
		KeyMissingField:         "Missing field",
		KeyRangeTooLarge:        "Range too large",
		KeyCustomRangeTooLarge:  "Custom time range cannot exceed 31 days; adjusted to 31 days.",
		KeySecurityOnly14d:      "Only supports the last 14 days",
		KeySecurityOnly14dTitle: "This metric only supports the last 14 days",
		KeyUnitRequests:         "requests",
		KeyCompareVsPrev:        "vs previous",

		KeySectionTraffic:       "Traffic",
		KeySectionBandwidth:     "Bandwidth",
		KeySectionOriginPull:    "Origin Pull",
		KeySectionEdgeFunctions: "Edge Functions",
		KeySectionPages:         "Pages Stats",
		KeySectionRequests:      "Requests & Performance",
		KeySectionSecurity:      "Security",
		KeySectionTop:           "Top Analysis",

		KeyCacheHitRate:      "Cache hit rate",
		KeySecurityHits:      "Protection hits",
		KeySecurityHitsDesc:  "Total DDoS/CC protection hits",
		KeyPagesDailyBuild:   "Builds today",
		KeyPagesMonthlyBuild: "Builds this month",
		KeyPagesCF24h:        "Cloud Functions requests (24h)",
		KeyPagesCFMonthlyReq: "Cloud Functions requests (month)",
		KeyPagesCFMonthlyGbs: "Cloud Functions GBs (month)",
		KeyPagesCFTrend:      "Cloud Functions request trend",
		KeyTrafficTrend:      "Traffic trend",
		KeyBandwidthTrend:    "Bandwidth trend",
		KeyOriginPullTrend:   "Origin pull trend",
		KeyRequestsTrend:     "Request trend",
		KeyLatencyTrend:      "Latency trend",
		KeySecurityTrend:     "Protection trend",
		KeyFunctionsReqTrend: "Request trend",
		KeyFunctionsCPUTrend: "CPU time trend",
		KeyWorldMap:          "Global request distribution",
		KeyChartRequests:     "Requests",
		KeyCommonError:       "Error",
		KeyZonesAll:          "All zones",
		KeyZonesLoadFailed:   "Failed to load zones",
		KeyZonesPagesSuffix:  " (Pages)",
	},
}

// T возвращает сообщение; при отсутствии перевода используется Default, затем сам ключ
func T(l Locale, k Key) string {
	if m, ok := messages[l][k]; ok {
		return m
	}
	if m, ok := messages[Default][k]; ok {
		return m
	}
	return string(k)
}
