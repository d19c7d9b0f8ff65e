package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"teo-dashboard/internal/analytics"
	"teo-dashboard/internal/metrics"
	"teo-dashboard/internal/models"
	"teo-dashboard/internal/teo"
)

// fetchJob одна пачка метрик одного семейства за один период
type fetchJob struct {
	metrics  []string
	rng      models.TimeRange
	previous bool
}

// fetchCore выполняет все пачки текущего и прошлого периода параллельно.
// Ошибка пачки делает ее метрики отсутствующими и не прерывает остальные.
func (d *Dashboard) fetchCore(ctx context.Context, ctl Controls, res analytics.Resolution, noCache bool) *CoreEntry {
	prev, hasPrev := analytics.PreviousPeriod(res.TimeRange, ctl.RangeKey)
	secSupported := analytics.SecuritySupported(res.TimeRange)

	entry := &CoreEntry{
		Controls:          ctl,
		Range:             res.TimeRange,
		Clamped:           res.Clamped,
		SecuritySupported: secSupported,
		SecurityCompare:   hasPrev && analytics.IsCompareEligible(prev.Start, d.resolver.Now()),
		CompareEnabled:    true,
		Results:           make(map[string]models.Normalized),
		Compare:           make(map[string]models.Normalized),
	}
	if hasPrev {
		entry.Previous = &prev
	}
	if res.Clamped {
		log.Printf("Custom range clamped to %s", analytics.MaxCustomDuration)
	}

	var jobs []fetchJob
	for _, batch := range [][]string{timingMetrics(), originPullMetrics, teo.FunctionMetrics} {
		jobs = append(jobs, fetchJob{metrics: batch, rng: res.TimeRange})
		if hasPrev {
			jobs = append(jobs, fetchJob{metrics: batch, rng: prev, previous: true})
		}
	}
	if secSupported {
		jobs = append(jobs, fetchJob{metrics: teo.SecurityMetrics, rng: res.TimeRange})
		if entry.SecurityCompare {
			jobs = append(jobs, fetchJob{metrics: teo.SecurityMetrics, rng: prev, previous: true})
		}
	}

	raws := d.fetchAll(ctx, ctl, jobs, noCache)

	norm := analytics.NewNormalizer(d.labelContext(ctl, res.Duration()))
	for i, job := range jobs {
		if raws[i] == nil {
			continue
		}
		dst := entry.Results
		if job.previous {
			dst = entry.Compare
		}
		for _, m := range job.metrics {
			n := norm.Normalize(raws[i], m)
			metrics.NormalizedResults.WithLabelValues(string(n.Type())).Inc()
			dst[m] = n
		}
	}
	return entry
}

// fetchAll возвращает сырые ответы в порядке jobs; nil означает неудачный запрос
func (d *Dashboard) fetchAll(ctx context.Context, ctl Controls, jobs []fetchJob, noCache bool) []json.RawMessage {
	raws := make([]json.RawMessage, len(jobs))

	var g errgroup.Group
	g.SetLimit(d.fetchLimit)
	for i, job := range jobs {
		g.Go(func() error {
			raw, err := d.source.Fetch(ctx, models.MetricRequest{
				MetricNames: job.metrics,
				Range:       job.rng,
				Interval:    ctl.Interval,
				ZoneID:      ctl.zone(),
				NoCache:     noCache,
			})
			if err != nil {
				family := teo.ClassifyMetric(job.metrics[0])
				log.Printf("Error fetching %s (%s): %v", family, strings.Join(job.metrics, ","), err)
				metrics.AbsentMetrics.WithLabelValues(string(family)).Add(float64(len(job.metrics)))
				return nil
			}
			raws[i] = raw
			return nil
		})
	}
	_ = g.Wait()
	return raws
}

// fetchTop запрашивает каждую top-метрику отдельным вызовом
func (d *Dashboard) fetchTop(ctx context.Context, ctl Controls) *TopEntry {
	res := d.resolver.Resolve(ctl.RangeKey, ctl.Custom)

	names := topMetrics()
	jobs := make([]fetchJob, len(names))
	for i, m := range names {
		jobs[i] = fetchJob{metrics: []string{m}, rng: res.TimeRange}
	}
	raws := d.fetchAll(ctx, ctl, jobs, false)

	entry := &TopEntry{
		Controls: ctl,
		Range:    res.TimeRange,
		Results:  make(map[string]models.Normalized),
	}
	norm := analytics.NewNormalizer(d.labelContext(ctl, res.Duration()))
	for i, m := range names {
		if raws[i] == nil {
			continue
		}
		n := norm.Normalize(raws[i], m)
		metrics.NormalizedResults.WithLabelValues(string(n.Type())).Inc()
		entry.Results[m] = n
	}
	return entry
}
