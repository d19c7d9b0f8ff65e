package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teo-dashboard/internal/i18n"
	"teo-dashboard/internal/metrics"
	"teo-dashboard/internal/models"
	"teo-dashboard/internal/teo"
	"teo-dashboard/internal/units"
)

var testNow = time.Date(2024, 3, 9, 16, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu        sync.Mutex
	requests  []models.MetricRequest
	failing   map[teo.Family]bool
	sums      map[string]float64
	zones     []models.Zone
	zonesErr  error
	zoneCalls int
	pagesErr  error
	topGate   chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		failing: make(map[teo.Family]bool),
		sums:    make(map[string]float64),
		zones: []models.Zone{
			{ZoneId: "zone-1", ZoneName: "example.com"},
			{ZoneId: "zone-2", ZoneName: "default-pages-zone"},
		},
	}
}

func (f *fakeSource) Fetch(ctx context.Context, req models.MetricRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	family := teo.ClassifyMetric(req.MetricNames[0])
	fail := f.failing[family]
	gate := f.topGate
	f.mu.Unlock()

	if family == teo.FamilyTop && gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, errors.New("upstream unavailable")
	}
	if family == teo.FamilyTop {
		return json.RawMessage(`{"Data":[{"DetailData":[
			{"Key":"US","Value":50},
			{"Key":"CN","Value":80},
			{"Key":"DE","Value":10}]}]}`), nil
	}
	previous := req.Range.End.Before(testNow.Add(-time.Minute))
	return f.timingResponse(req.MetricNames, previous), nil
}

func (f *fakeSource) sum(metric string, previous bool) float64 {
	f.mu.Lock()
	v, ok := f.sums[metric]
	f.mu.Unlock()
	if !ok {
		v = 200
	}
	if previous {
		return v / 2
	}
	return v
}

func (f *fakeSource) timingResponse(names []string, previous bool) json.RawMessage {
	type sample struct {
		Timestamp int64
		Value     float64
	}
	type entry struct {
		MetricName string
		Detail     []sample
		Sum        float64
		Max        float64
		Avg        float64
	}
	ts := testNow.Unix()
	entries := make([]entry, 0, len(names))
	for _, m := range names {
		s := f.sum(m, previous)
		entries = append(entries, entry{
			MetricName: m,
			Detail:     []sample{{ts - 300, s / 2}, {ts, s / 2}},
			Sum:        s,
			Max:        s / 2,
			Avg:        s / 2,
		})
	}
	b, _ := json.Marshal(map[string]interface{}{
		"Data": []map[string]interface{}{{"TypeValue": entries}},
	})
	return b
}

func (f *fakeSource) ListZones(context.Context) ([]models.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zoneCalls++
	if f.zonesErr != nil {
		return nil, f.zonesErr
	}
	return f.zones, nil
}

func (f *fakeSource) PagesBuildCount(context.Context, string, bool) (json.RawMessage, error) {
	if f.pagesErr != nil {
		return nil, f.pagesErr
	}
	return json.RawMessage(`{"parsedResult":{"dplDailyCount":3,"dplMonthCount":"42"}}`), nil
}

func (f *fakeSource) PagesCloudFunctionRequests(_ context.Context, _, _, _ string, _ bool) (json.RawMessage, error) {
	if f.pagesErr != nil {
		return nil, f.pagesErr
	}
	return json.RawMessage(`{"parsedResult":{"TotalValue":10,"Timestamps":[1710000000,1710003600,1710007200],"Values":[4,6]}}`), nil
}

func (f *fakeSource) PagesCloudFunctionMonthly(context.Context, string, bool) (json.RawMessage, error) {
	if f.pagesErr != nil {
		return nil, f.pagesErr
	}
	return json.RawMessage(`{"parsedResult":{"TotalMemDuration":2048,"TotalInvocation":7}}`), nil
}

func (f *fakeSource) requestsFor(family teo.Family) []models.MetricRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MetricRequest
	for _, r := range f.requests {
		if teo.ClassifyMetric(r.MetricNames[0]) == family {
			out = append(out, r)
		}
	}
	return out
}

func newTestDashboard(src MetricsSource) *Dashboard {
	return New(src, Options{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
		Locale:   i18n.EnUS,
		Site:     models.SiteConfig{SiteName: "Edge Stats"},
	})
}

func findSection(t *testing.T, v *View, id string) Section {
	t.Helper()
	for _, s := range v.Sections {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("Section %s not found", id)
	return Section{}
}

func findKPI(t *testing.T, s Section, id string) KPI {
	t.Helper()
	for _, k := range s.KPIs {
		if k.ID == id {
			return k
		}
	}
	t.Fatalf("KPI %s not found in section %s", id, s.ID)
	return KPI{}
}

func TestRefresh_OneBatchPerFamilyAndPeriod(t *testing.T) {
	src := newFakeSource()
	s := newTestDashboard(src).newSession("s1")

	ctl := Controls{RangeKey: models.Range1H, ZoneID: "zone-1"}
	view, err := s.Refresh(context.Background(), ctl, false)
	require.NoError(t, err)

	for _, r := range src.requests {
		family := teo.ClassifyMetric(r.MetricNames[0])
		for _, m := range r.MetricNames {
			assert.Equal(t, family, teo.ClassifyMetric(m), "batch mixes families: %v", r.MetricNames)
		}
		assert.Equal(t, "zone-1", r.ZoneID)
	}
	assert.Len(t, src.requestsFor(teo.FamilyTiming), 2)
	assert.Len(t, src.requestsFor(teo.FamilyOriginPull), 2)
	assert.Len(t, src.requestsFor(teo.FamilyFunction), 2)
	assert.Len(t, src.requestsFor(teo.FamilySecurity), 2)
	assert.Empty(t, src.requestsFor(teo.FamilyTop), "top analysis must stay dormant until activated")

	require.NotNil(t, view.Range)
	require.NotNil(t, view.Previous)
	assert.Equal(t, testNow.Add(-2*time.Hour), view.Previous.Start)
	assert.True(t, s.Cached(ctl))

	// 7 основных разделов и Pages
	assert.Len(t, view.Sections, 8)

	flux := findKPI(t, findSection(t, view, "traffic"), "kpi_l7Flow_flux")
	assert.Equal(t, units.FormatBytes(200), flux.Value)
	assert.Equal(t, models.DirectionUp, flux.Comparison.Direction)
	assert.InDelta(t, 1.0, flux.Comparison.Percent, 1e-9)
	assert.NotEmpty(t, flux.Compare)

	sec := findKPI(t, findSection(t, view, "security"), "kpi_security_total")
	assert.Equal(t, "600", sec.Value)
	assert.Equal(t, models.DirectionUp, sec.Comparison.Direction)
}

func TestRefresh_FailedBatchLeavesOnlyItsMetricsAbsent(t *testing.T) {
	src := newFakeSource()
	src.failing[teo.FamilyOriginPull] = true
	s := newTestDashboard(src).newSession("s1")

	before := testutil.ToFloat64(metrics.AbsentMetrics.WithLabelValues(string(teo.FamilyOriginPull)))
	view, err := s.Refresh(context.Background(), Controls{RangeKey: models.Range1H}, false)
	require.NoError(t, err)

	after := testutil.ToFloat64(metrics.AbsentMetrics.WithLabelValues(string(teo.FamilyOriginPull)))
	assert.Equal(t, float64(2*len(originPullMetrics)), after-before)

	origin := findSection(t, view, "originPull")
	for _, m := range originPullMetrics {
		k := findKPI(t, origin, "kpi_"+m)
		assert.Equal(t, noValue, k.Value, m)
		assert.False(t, k.Comparison.Available())
	}
	rate := findKPI(t, origin, "kpi_cache_hit_rate")
	assert.Equal(t, "0.00%", rate.Value)

	traffic := findSection(t, view, "traffic")
	assert.Equal(t, units.FormatBytes(200), findKPI(t, traffic, "kpi_l7Flow_flux").Value)
}

func TestRefresh_CacheHitRate(t *testing.T) {
	src := newFakeSource()
	src.sums[edgeResponseMetric] = 1000
	src.sums[originResponseMetric] = 250
	s := newTestDashboard(src).newSession("s1")

	view, err := s.Refresh(context.Background(), Controls{RangeKey: models.Range1H}, false)
	require.NoError(t, err)

	rate := findKPI(t, findSection(t, view, "originPull"), "kpi_cache_hit_rate")
	assert.Equal(t, "75.00%", rate.Value)
	// Прошлый период дает ту же долю
	assert.Equal(t, models.DirectionFlat, rate.Comparison.Direction)
}

func TestRefresh_SecurityOutsideWindow(t *testing.T) {
	src := newFakeSource()
	s := newTestDashboard(src).newSession("s1")

	view, err := s.Refresh(context.Background(), Controls{RangeKey: models.Range31D}, false)
	require.NoError(t, err)

	assert.Empty(t, src.requestsFor(teo.FamilySecurity))

	sec := findSection(t, view, "security")
	kpi := findKPI(t, sec, "kpi_security_total")
	assert.Equal(t, i18n.T(i18n.EnUS, i18n.KeyRangeTooLarge), kpi.Value)
	assert.Equal(t, i18n.T(i18n.EnUS, i18n.KeySecurityOnly14d), kpi.Description)
	require.Len(t, sec.Charts, 1)
	assert.Equal(t, i18n.T(i18n.EnUS, i18n.KeySecurityOnly14dTitle), sec.Charts[0].Message)
}

func TestRefresh_SecurityCompareSkippedForOldPreviousPeriod(t *testing.T) {
	src := newFakeSource()
	s := newTestDashboard(src).newSession("s1")

	view, err := s.Refresh(context.Background(), Controls{RangeKey: models.Range14D}, false)
	require.NoError(t, err)

	reqs := src.requestsFor(teo.FamilySecurity)
	require.Len(t, reqs, 1)
	assert.Equal(t, testNow, reqs[0].Range.End)

	kpi := findKPI(t, findSection(t, view, "security"), "kpi_security_total")
	assert.Equal(t, "600", kpi.Value)
	assert.False(t, kpi.Comparison.Available())
}

func TestRefresh_ClampedCustomRange(t *testing.T) {
	src := newFakeSource()
	s := newTestDashboard(src).newSession("s1")

	ctl := Controls{RangeKey: models.RangeCustom, Custom: models.CustomDuration{Days: 40}}
	view, err := s.Refresh(context.Background(), ctl, false)
	require.NoError(t, err)

	require.Len(t, view.Warnings, 1)
	assert.Equal(t, i18n.T(i18n.EnUS, i18n.KeyCustomRangeTooLarge), view.Warnings[0])
	require.NotNil(t, view.Range)
	assert.Equal(t, 31*24*time.Hour, view.Range.Duration())
}

func TestRefresh_CanceledContext(t *testing.T) {
	src := newFakeSource()
	s := newTestDashboard(src).newSession("s1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Refresh(ctx, Controls{}, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.Cached(Controls{}))
}

func TestView_WithoutMatchingCoreShowsOnlyPages(t *testing.T) {
	src := newFakeSource()
	s := newTestDashboard(src).newSession("s1")

	_, err := s.Refresh(context.Background(), Controls{RangeKey: models.Range1H}, false)
	require.NoError(t, err)

	s.mu.Lock()
	s.controls = Controls{RangeKey: models.Range6H}.Normalize()
	s.mu.Unlock()

	view := s.View()
	require.Len(t, view.Sections, 1)
	assert.Equal(t, "pages", view.Sections[0].ID)
	assert.Nil(t, view.Range)
}

func TestZones_LoadedOnceWithPagesSuffix(t *testing.T) {
	src := newFakeSource()
	s := newTestDashboard(src).newSession("s1")

	_, err := s.Refresh(context.Background(), Controls{}, false)
	require.NoError(t, err)
	view, err := s.Refresh(context.Background(), Controls{RangeKey: models.Range6H}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, src.zoneCalls)
	assert.Equal(t, []ZoneOption{
		{Value: allZones, Label: "All zones"},
		{Value: "zone-1", Label: "example.com"},
		{Value: "zone-2", Label: "default-pages-zone (Pages)"},
	}, view.Zones)
}

func TestZones_FailureIsRetriedOnNextRefresh(t *testing.T) {
	src := newFakeSource()
	src.zonesErr = errors.New("denied")
	s := newTestDashboard(src).newSession("s1")

	view, err := s.Refresh(context.Background(), Controls{}, false)
	require.NoError(t, err)
	assert.Equal(t, []ZoneOption{{Value: allZones, Label: "Failed to load zones"}}, view.Zones)

	src.mu.Lock()
	src.zonesErr = nil
	src.mu.Unlock()

	view, err = s.Refresh(context.Background(), Controls{}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, src.zoneCalls)
	assert.Len(t, view.Zones, 3)
}

func TestPagesSection(t *testing.T) {
	src := newFakeSource()
	s := newTestDashboard(src).newSession("s1")

	view, err := s.Refresh(context.Background(), Controls{ZoneID: "zone-2"}, false)
	require.NoError(t, err)

	pages := findSection(t, view, "pages")
	assert.Equal(t, units.FormatNumber(3, i18n.EnUS), findKPI(t, pages, "kpi_pages_daily_build").Value)
	assert.Equal(t, units.FormatNumber(42, i18n.EnUS), findKPI(t, pages, "kpi_pages_monthly_build").Value)
	assert.Equal(t, "10", findKPI(t, pages, "kpi_pages_cloud_function_total").Value)
	assert.Equal(t, "7", findKPI(t, pages, "kpi_pages_monthly_cf_requests").Value)
	assert.Equal(t, "2.00", findKPI(t, pages, "kpi_pages_monthly_cf_gbs").Value)

	require.Len(t, pages.Charts, 1)
	assert.Equal(t, "chart_pages_cloud_function_requests", pages.Charts[0].ID)

	s.mu.Lock()
	trend := s.cache.PagesTrend
	s.mu.Unlock()
	assert.Equal(t, []int64{1710000000, 1710003600}, trend.Timestamps)
	assert.Equal(t, []float64{4, 6}, trend.Values)
}

func TestPagesSection_Failures(t *testing.T) {
	src := newFakeSource()
	src.pagesErr = errors.New("boom")
	s := newTestDashboard(src).newSession("s1")

	view, err := s.Refresh(context.Background(), Controls{}, false)
	require.NoError(t, err)

	pages := findSection(t, view, "pages")
	for _, k := range pages.KPIs {
		assert.Equal(t, "Error", k.Value, k.ID)
	}
	// Остальные разделы не затронуты
	assert.Len(t, view.Sections, 8)
}

func TestPagesSection_OtherZoneHidden(t *testing.T) {
	c := &Cache{PagesBuild: &PagesBuildEntry{ZoneID: "zone-1", Daily: ptr(5.0)}}
	r := &renderer{locale: i18n.EnUS, loc: time.UTC}

	sec := r.pages(c, "zone-2")
	assert.Equal(t, noValue, findKPI(t, sec, "kpi_pages_daily_build").Value)
}

func TestNumberField(t *testing.T) {
	obj := map[string]json.RawMessage{
		"num":   json.RawMessage(`12.5`),
		"str":   json.RawMessage(`" 7 "`),
		"bad":   json.RawMessage(`"abc"`),
		"array": json.RawMessage(`[1]`),
	}
	assert.Equal(t, 12.5, *numberField(obj, "num"))
	assert.Equal(t, 7.0, *numberField(obj, "str"))
	assert.Nil(t, numberField(obj, "bad"))
	assert.Nil(t, numberField(obj, "array"))
	assert.Nil(t, numberField(obj, "missing"))
}

func ptr(v float64) *float64 {
	return &v
}
