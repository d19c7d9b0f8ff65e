package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var metricLabels = map[Locale]map[string]string{
	ZhHans: {
		"l7Flow_flux":                     "总流量",
		"l7Flow_inFlux":                   "客户端请求流量",
		"l7Flow_outFlux":                  "响应流量",
		"l7Flow_bandwidth":                "总带宽",
		"l7Flow_inBandwidth":              "请求带宽",
		"l7Flow_outBandwidth":             "响应带宽",
		"l7Flow_outFlux_hy":               "回源请求流量",
		"l7Flow_inFlux_hy":                "回源响应流量",
		"l7Flow_outBandwidth_hy":          "回源请求带宽",
		"l7Flow_inBandwidth_hy":           "回源响应带宽",
		"l7Flow_request_hy":               "回源请求数",
		"l7Flow_request":                  "请求数",
		"l7Flow_avgResponseTime":          "平均响应耗时",
		"l7Flow_avgFirstByteResponseTime": "平均首字节耗时",
		"function_requestCount":           "Edge Functions 请求数",
		"function_cpuCostTime":            "Edge Functions CPU 时间",
		"ccAcl_interceptNum":              "精确防护拦截",
		"ccManage_interceptNum":           "托管规则拦截",
		"ccRate_interceptNum":             "速率限制拦截",
		"l7Flow_outFlux_country":          "国家/地区流量",
		"l7Flow_outFlux_province":         "国内省份流量",
		"l7Flow_outFlux_statusCode":       "状态码流量",
		"l7Flow_outFlux_domain":           "域名流量",
		"l7Flow_outFlux_url":              "URL 流量",
		"l7Flow_outFlux_resourceType":     "资源类型流量",
		"l7Flow_outFlux_sip":              "客户端IP流量",
		"l7Flow_outFlux_referers":         "Referer 流量",
		"l7Flow_outFlux_ua_device":        "设备类型流量",
		"l7Flow_outFlux_ua_browser":       "浏览器流量",
		"l7Flow_outFlux_ua_os":            "操作系统流量",
		"l7Flow_outFlux_ua":               "User Agent 流量",
		"l7Flow_request_country":          "国家/地区请求数",
		"l7Flow_request_province":         "国内省份请求数",
		"l7Flow_request_statusCode":       "状态码请求数",
		"l7Flow_request_domain":           "域名请求数",
		"l7Flow_request_url":              "URL 请求数",
		"l7Flow_request_resourceType":     "资源类型请求数",
		"l7Flow_request_sip":              "客户端IP请求数",
		"l7Flow_request_referers":         "Referer 请求数",
		"l7Flow_request_ua_device":        "设备类型请求数",
		"l7Flow_request_ua_browser":       "浏览器请求数",
		"l7Flow_request_ua_os":            "操作系统请求数",
		"l7Flow_request_ua":               "User Agent 请求数",
	},
	EnUS: {
		"l7Flow_flux":                     "Total traffic",
		"l7Flow_inFlux":                   "Client request traffic",
		"l7Flow_outFlux":                  "Response traffic",
		"l7Flow_bandwidth":                "Total bandwidth",
		"l7Flow_inBandwidth":              "Request bandwidth",
		"l7Flow_outBandwidth":             "Response bandwidth",
		"l7Flow_outFlux_hy":               "Origin request traffic",
		"l7Flow_inFlux_hy":                "Origin response traffic",
		"l7Flow_outBandwidth_hy":          "Origin request bandwidth",
		"l7Flow_inBandwidth_hy":           "Origin response bandwidth",
		"l7Flow_request_hy":               "Origin requests",
		"l7Flow_request":                  "Requests",
		"l7Flow_avgResponseTime":          "Avg response time",
		"l7Flow_avgFirstByteResponseTime": "Avg TTFB",
		"function_requestCount":           "Edge Functions requests",
		"function_cpuCostTime":            "Edge Functions CPU time",
		"ccAcl_interceptNum":              "Precise protection hits",
		"ccManage_interceptNum":           "Managed rules hits",
		"ccRate_interceptNum":             "Rate limiting hits",
		"l7Flow_outFlux_country":          "Traffic by country/region",
		"l7Flow_outFlux_province":         "Traffic by province",
		"l7Flow_outFlux_statusCode":       "Traffic by status code",
		"l7Flow_outFlux_domain":           "Traffic by domain",
		"l7Flow_outFlux_url":              "Traffic by URL",
		"l7Flow_outFlux_resourceType":     "Traffic by resource type",
		"l7Flow_outFlux_sip":              "Traffic by client IP",
		"l7Flow_outFlux_referers":         "Traffic by referer",
		"l7Flow_outFlux_ua_device":        "Traffic by device type",
		"l7Flow_outFlux_ua_browser":       "Traffic by browser",
		"l7Flow_outFlux_ua_os":            "Traffic by OS",
		"l7Flow_outFlux_ua":               "Traffic by User Agent",
		"l7Flow_request_country":          "Requests by country/region",
		"l7Flow_request_province":         "Requests by province",
		"l7Flow_request_statusCode":       "Requests by status code",
		"l7Flow_request_domain":           "Requests by domain",
		"l7Flow_request_url":              "Requests by URL",
		"l7Flow_request_resourceType":     "Requests by resource type",
		"l7Flow_request_sip":              "Requests by client IP",
		"l7Flow_request_referers":         "Requests by referer",
		"l7Flow_request_ua_device":        "Requests by device type",
		"l7Flow_request_ua_browser":       "Requests by browser",
		"l7Flow_request_ua_os":            "Requests by OS",
		"l7Flow_request_ua":               "Requests by User Agent",
	},
}

// MetricLabel подпись метрики; неизвестные метрики возвращаются как есть
func MetricLabel(metric string, l Locale) string {
	if label, ok := metricLabels[l][metric]; ok {
		return label
	}
	return metric
}

// коды провинций провайдера
var provinces = map[string][2]string{
	"22":   {"北京", "Beijing"},
	"86":   {"内蒙古", "Inner Mongolia"},
	"146":  {"山西", "Shanxi"},
	"1069": {"河北", "Hebei"},
	"1177": {"天津", "Tianjin"},
	"119":  {"宁夏", "Ningxia"},
	"152":  {"陕西", "Shaanxi"},
	"1208": {"甘肃", "Gansu"},
	"1467": {"青海", "Qinghai"},
	"1468": {"新疆", "Xinjiang"},
	"145":  {"黑龙江", "Heilongjiang"},
	"1445": {"吉林", "Jilin"},
	"1464": {"辽宁", "Liaoning"},
	"2":    {"福建", "Fujian"},
	"120":  {"江苏", "Jiangsu"},
	"121":  {"安徽", "Anhui"},
	"122":  {"山东", "Shandong"},
	"1050": {"上海", "Shanghai"},
	"1442": {"浙江", "Zhejiang"},
	"182":  {"河南", "Henan"},
	"1135": {"湖北", "Hubei"},
	"1465": {"江西", "Jiangxi"},
	"1466": {"湖南", "Hunan"},
	"118":  {"贵州", "Guizhou"},
	"153":  {"云南", "Yunnan"},
	"1051": {"重庆", "Chongqing"},
	"1068": {"四川", "Sichuan"},
	"1155": {"西藏", "Tibet"},
	"4":    {"广东", "Guangdong"},
	"173":  {"广西", "Guangxi"},
	"1441": {"海南", "Hainan"},
	"0":    {"其他", "Other"},
	"1":    {"港澳台", "HK/MO/TW"},
	"-1":   {"境外", "Overseas"},
}

// ProvinceName название провинции по коду провайдера
func ProvinceName(code string, l Locale) string {
	names, ok := provinces[code]
	if !ok {
		return code
	}
	if l == EnUS {
		return names[1]
	}
	return names[0]
}

// региональные названия, которые отличаются от CLDR
var countryOverrides = map[string][2]string{
	"CN": {"中国大陆", "Chinese mainland"},
	"HK": {"中国香港", "Hong Kong, China"},
	"MO": {"中国澳门", "Macao, China"},
	"TW": {"中国台湾", "Taiwan, China"},
}

// CountryName название страны или региона по коду ISO 3166-1
func CountryName(code string, l Locale) string {
	if names, ok := countryOverrides[strings.ToUpper(code)]; ok {
		if l == EnUS {
			return names[1]
		}
		return names[0]
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	if name := display.Regions(l.Tag()).Name(region); name != "" {
		return name
	}
	return code
}

// IsMissingKey сообщает, что ключ топ-среза обозначает отсутствующее поле
func IsMissingKey(key string) bool {
	k := strings.TrimSpace(strings.Trim(key, "`"))
	return k == "" || k == "-"
}

// DisplayKey подпись ключа топ-среза; отсутствующее поле заменяется на KeyMissingField
func DisplayKey(key string, l Locale) string {
	if IsMissingKey(key) {
		return T(l, KeyMissingField)
	}
	return key
}

// MapRegionName английское название региона, как оно записано в карте мира
func MapRegionName(code string) string {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if upper == "CN" {
		return "China"
	}
	region, err := language.ParseRegion(upper)
	if err != nil {
		return code
	}
	if name := display.Regions(language.English).Name(region); name != "" {
		return name
	}
	return code
}
