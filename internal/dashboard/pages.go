package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"teo-dashboard/internal/models"
)

// PagesBuildEntry число сборок Pages
type PagesBuildEntry struct {
	ZoneID  string
	Daily   *float64
	Monthly *float64
	Failed  bool
}

// PagesTrendEntry почасовой ряд запросов к облачным функциям
type PagesTrendEntry struct {
	ZoneID     string
	Range      models.TimeRange
	Total      *float64
	Timestamps []int64
	Values     []float64
	Failed     bool
}

// PagesMonthlyEntry месячная статистика облачных функций
type PagesMonthlyEntry struct {
	ZoneID      string
	MemDuration *float64
	Invocations *float64
	Failed      bool
}

type pagesResult struct {
	build   *PagesBuildEntry
	trend   *PagesTrendEntry
	monthly *PagesMonthlyEntry
}

// fetchPages запрашивает три независимые сводки Pages; ошибка одной не влияет на остальные
func (d *Dashboard) fetchPages(ctx context.Context, ctl Controls, rng models.TimeRange, noCache bool) pagesResult {
	zone := ctl.zone()
	res := pagesResult{
		build:   &PagesBuildEntry{ZoneID: ctl.ZoneID},
		trend:   &PagesTrendEntry{ZoneID: ctl.ZoneID, Range: rng},
		monthly: &PagesMonthlyEntry{ZoneID: ctl.ZoneID},
	}

	var g errgroup.Group
	g.Go(func() error {
		raw, err := d.source.PagesBuildCount(ctx, zone, noCache)
		if err != nil {
			log.Printf("Error fetching pages build stats: %v", err)
			res.build.Failed = true
			return nil
		}
		if obj, ok := parsedResult(raw); ok {
			res.build.Daily = numberField(obj, "dplDailyCount")
			res.build.Monthly = numberField(obj, "dplMonthCount")
		}
		return nil
	})
	g.Go(func() error {
		raw, err := d.source.PagesCloudFunctionRequests(ctx, zone, rng.StartTime(), rng.EndTime(), noCache)
		if err != nil {
			log.Printf("Error fetching pages cloud function stats: %v", err)
			res.trend.Failed = true
			return nil
		}
		if obj, ok := parsedResult(raw); ok {
			res.trend.Total = numberField(obj, "TotalValue")
			res.trend.Timestamps, res.trend.Values = trendPoints(obj)
		}
		return nil
	})
	g.Go(func() error {
		raw, err := d.source.PagesCloudFunctionMonthly(ctx, zone, noCache)
		if err != nil {
			log.Printf("Error fetching pages cloud function monthly stats: %v", err)
			res.monthly.Failed = true
			return nil
		}
		if obj, ok := parsedResult(raw); ok {
			res.monthly.MemDuration = numberField(obj, "TotalMemDuration")
			res.monthly.Invocations = numberField(obj, "TotalInvocation")
		}
		return nil
	})
	_ = g.Wait()
	return res
}

func parsedResult(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var resp struct {
		ParsedResult map[string]json.RawMessage `json:"parsedResult"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.ParsedResult == nil {
		return nil, false
	}
	return resp.ParsedResult, true
}

// numberField возвращает nil, если поля нет или оно не число
func numberField(obj map[string]json.RawMessage, name string) *float64 {
	raw, ok := obj[name]
	if !ok {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &v
		}
	}
	return nil
}

func trendPoints(obj map[string]json.RawMessage) ([]int64, []float64) {
	var stamps []int64
	var values []float64
	if raw, ok := obj["Timestamps"]; ok {
		_ = json.Unmarshal(raw, &stamps)
	}
	if raw, ok := obj["Values"]; ok {
		_ = json.Unmarshal(raw, &values)
	}
	n := min(len(stamps), len(values))
	return stamps[:n], values[:n]
}
