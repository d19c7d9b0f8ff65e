package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"teo-dashboard/internal/teo"
)

// DefaultPagesZoneName сайт, который создается для Pages автоматически
const DefaultPagesZoneName = "default-pages-zone"

// Интерфейсы DescribePagesResources
const (
	pagesDeploymentUsage    = "pages:DescribePagesDeploymentUsage"
	pagesFunctionRequests   = "pages:DescribePagesFunctionsRequestDataByZone"
	pagesHistoryFunctionUse = "pages:DescribeHistoryCloudFunctionStats"
)

type pagesParams struct {
	ZoneId    string `json:"ZoneId"`
	Interface string `json:"Interface"`
	Payload   string `json:"Payload"`
}

type functionRequestsPayload struct {
	ZoneId    string `json:"ZoneId"`
	Interval  string `json:"Interval"`
	StartTime string `json:"StartTime,omitempty"`
	EndTime   string `json:"EndTime,omitempty"`
}

type zonePayload struct {
	ZoneId string `json:"ZoneId"`
}

// ResolveZoneID возвращает явно заданный сайт, иначе default-pages-zone, иначе первый сайт
func (s *Service) ResolveZoneID(ctx context.Context, requested string) (string, error) {
	if requested != "" && requested != AllZones {
		return requested, nil
	}

	zones, err := s.ListZones(ctx)
	if err != nil {
		log.Printf("Error fetching zones for Pages: %v", err)
		return "", ErrZoneNotFound
	}
	for _, z := range zones {
		if z.ZoneName == DefaultPagesZoneName {
			log.Printf("Found %s: %s", DefaultPagesZoneName, z.ZoneId)
			return z.ZoneId, nil
		}
	}
	if len(zones) > 0 {
		log.Printf("%s not found, using first zone: %s", DefaultPagesZoneName, zones[0].ZoneId)
		return zones[0].ZoneId, nil
	}
	return "", ErrZoneNotFound
}

// PagesBuildCount число сборок Pages за день и месяц
func (s *Service) PagesBuildCount(ctx context.Context, zoneID string, noCache bool) (json.RawMessage, error) {
	key := "pages:build-count:" + zoneKey(zoneID)
	return s.cached(ctx, key, PagesTTL, noCache, func(ctx context.Context) (json.RawMessage, error) {
		return s.pagesCall(ctx, zoneID, pagesDeploymentUsage, func(string) interface{} { return nil })
	})
}

// PagesCloudFunctionRequests почасовой ряд запросов к облачным функциям
func (s *Service) PagesCloudFunctionRequests(ctx context.Context, zoneID, startTime, endTime string, noCache bool) (json.RawMessage, error) {
	key := fmt.Sprintf("pages:cf-requests:%s:%s:%s", zoneKey(zoneID), startTime, endTime)
	return s.cached(ctx, key, PagesTTL, noCache, func(ctx context.Context) (json.RawMessage, error) {
		return s.pagesCall(ctx, zoneID, pagesFunctionRequests, func(zone string) interface{} {
			return functionRequestsPayload{ZoneId: zone, Interval: "hour", StartTime: startTime, EndTime: endTime}
		})
	})
}

// PagesCloudFunctionMonthly месячная статистика облачных функций
func (s *Service) PagesCloudFunctionMonthly(ctx context.Context, zoneID string, noCache bool) (json.RawMessage, error) {
	key := "pages:cf-monthly:" + zoneKey(zoneID)
	return s.cached(ctx, key, PagesMonthlyTTL, noCache, func(ctx context.Context) (json.RawMessage, error) {
		return s.pagesCall(ctx, zoneID, pagesHistoryFunctionUse, func(zone string) interface{} {
			return zonePayload{ZoneId: zone}
		})
	})
}

func (s *Service) pagesCall(ctx context.Context, requestedZone, iface string, payload func(zone string) interface{}) (json.RawMessage, error) {
	if !s.client.HasCredentials() {
		return nil, teo.ErrMissingCredentials
	}

	zone, err := s.ResolveZoneID(ctx, requestedZone)
	if err != nil {
		return nil, err
	}

	body := []byte("{}")
	if p := payload(zone); p != nil {
		if body, err = json.Marshal(p); err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", iface, err)
		}
	}

	params := pagesParams{ZoneId: zone, Interface: iface, Payload: string(body)}
	log.Printf("Calling %s: interface=%s zone=%s", teo.ActionPagesResources, iface, zone)

	data, region, err := s.client.CallWithRegionFallback(ctx, teo.ActionPagesResources, params, s.pagesRegions)
	if err != nil {
		return nil, err
	}
	return decoratePagesResponse(data, region)
}

// decoratePagesResponse добавляет usedRegion и разобранный Result (строка JSON) как parsedResult
func decoratePagesResponse(data json.RawMessage, region string) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("%s: %w", teo.ActionPagesResources, teo.ErrMalformedResponse)
	}

	usedRegion, _ := json.Marshal(region)
	obj["usedRegion"] = usedRegion

	var result string
	if raw, ok := obj["Result"]; ok && json.Unmarshal(raw, &result) == nil && result != "" {
		if json.Valid([]byte(result)) {
			obj["parsedResult"] = json.RawMessage(result)
		} else {
			log.Printf("Error parsing Result JSON from %s", teo.ActionPagesResources)
		}
	}

	return json.Marshal(obj)
}

func zoneKey(zoneID string) string {
	if zoneID == "" {
		return AllZones
	}
	return zoneID
}
