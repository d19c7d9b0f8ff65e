package teo

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"teo-dashboard/internal/metrics"
)

// CallWithRegionFallback перебирает регионы по порядку, пока действие не выполнится.
// Ошибки региона (IsRegionError) ведут к следующему региону, остальные прерывают перебор.
// Возвращает ответ и регион, в котором он получен.
func (c *Client) CallWithRegionFallback(ctx context.Context, action string, params interface{}, regions []string) (json.RawMessage, string, error) {
	if len(regions) == 0 {
		return nil, "", ErrNoRegions
	}

	var last *APIError
	for _, region := range regions {
		data, err := c.Call(ctx, action, region, params)
		if err == nil {
			return data, region, nil
		}
		if !IsRegionError(err) {
			return nil, "", err
		}

		errors.As(err, &last)
		metrics.RegionFallbacks.WithLabelValues(region, last.Code).Inc()
		log.Printf("Warning: %s unsupported in region %s (code=%s, requestId=%s), trying next region",
			action, region, last.Code, last.RequestID)
	}

	return nil, "", &RegionFallbackError{
		Action:  action,
		Regions: append([]string(nil), regions...),
		Last:    last,
	}
}
