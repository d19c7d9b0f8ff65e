package analytics

import (
	"math"
	"testing"
	"time"

	"teo-dashboard/internal/models"
)

var shanghai = time.FixedZone("CST", 8*3600)

func fixedResolver(now time.Time) *Resolver {
	return NewResolver(shanghai, func() time.Time { return now })
}

func TestResolve_FixedRanges(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 45, 123e6, shanghai)
	r := fixedResolver(now)

	tests := []struct {
		key  models.RangeKey
		want time.Duration
	}{
		{models.Range30Min, 30 * time.Minute},
		{models.Range1H, time.Hour},
		{models.Range6H, 6 * time.Hour},
		{models.Range3D, 72 * time.Hour},
		{models.Range7D, 7 * 24 * time.Hour},
		{models.Range14D, 14 * 24 * time.Hour},
		{models.Range31D, 31 * 24 * time.Hour},
		{models.RangeKey("bogus"), 24 * time.Hour},
	}

	for _, tt := range tests {
		res := r.Resolve(tt.key, models.CustomDuration{})
		if !res.End.Equal(now) {
			t.Errorf("%s: Expected end %v, got %v", tt.key, now, res.End)
		}
		if res.Duration() != tt.want {
			t.Errorf("%s: Expected duration %v, got %v", tt.key, tt.want, res.Duration())
		}
		if res.Clamped {
			t.Errorf("%s: Expected no clamp", tt.key)
		}
	}
}

func TestResolve_Today(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, shanghai)
	res := fixedResolver(now).Resolve(models.RangeToday, models.CustomDuration{})

	wantStart := time.Date(2024, 3, 10, 0, 0, 0, 0, shanghai)
	if !res.Start.Equal(wantStart) {
		t.Errorf("Expected start %v, got %v", wantStart, res.Start)
	}
	if res.StartTime() != "2024-03-09T16:00:00Z" {
		t.Errorf("Expected UTC start 2024-03-09T16:00:00Z, got %s", res.StartTime())
	}
}

func TestResolve_Yesterday(t *testing.T) {
	nows := []time.Time{
		time.Date(2024, 3, 10, 0, 0, 1, 0, shanghai),
		time.Date(2024, 3, 10, 23, 59, 59, 0, shanghai),
		time.Date(2024, 3, 1, 12, 0, 0, 0, shanghai),
		time.Date(2024, 1, 1, 8, 0, 0, 0, shanghai),
	}

	for _, now := range nows {
		res := fixedResolver(now).Resolve(models.RangeYesterday, models.CustomDuration{})
		prev := now.AddDate(0, 0, -1)
		y, m, d := prev.Date()

		wantStart := time.Date(y, m, d, 0, 0, 0, 0, shanghai)
		wantEnd := time.Date(y, m, d, 23, 59, 59, 999e6, shanghai)
		if !res.Start.Equal(wantStart) {
			t.Errorf("now=%v: Expected start %v, got %v", now, wantStart, res.Start)
		}
		if !res.End.Equal(wantEnd) {
			t.Errorf("now=%v: Expected end %v, got %v", now, wantEnd, res.End)
		}
	}
}

func TestResolve_CustomClamp(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, shanghai)
	r := fixedResolver(now)

	res := r.Resolve(models.RangeCustom, models.CustomDuration{Days: 40, Hours: 3})
	if !res.Clamped {
		t.Error("Expected clamp flag for 40 days")
	}
	if res.Duration() != 31*86400*time.Second {
		t.Errorf("Expected duration %v, got %v", 31*86400*time.Second, res.Duration())
	}

	res = r.Resolve(models.RangeCustom, models.CustomDuration{Days: 31})
	if res.Clamped {
		t.Error("Expected no clamp at exactly 31 days")
	}

	for _, c := range []models.CustomDuration{
		{Days: 106752},
		{Days: 200000},
		{Days: math.MaxInt},
		{Days: math.MaxInt, Hours: math.MaxInt, Minutes: math.MaxInt, Seconds: math.MaxInt},
	} {
		res = r.Resolve(models.RangeCustom, c)
		if !res.Clamped {
			t.Errorf("Expected clamp flag for %+v", c)
		}
		if res.Duration() != 31*86400*time.Second {
			t.Errorf("Expected duration %v for %+v, got %v", 31*86400*time.Second, c, res.Duration())
		}
	}

	res = r.Resolve(models.RangeCustom, models.CustomDuration{Hours: 2, Minutes: 30, Seconds: 15})
	if res.Duration() != 2*time.Hour+30*time.Minute+15*time.Second {
		t.Errorf("Expected 2h30m15s, got %v", res.Duration())
	}
}

func TestResolve_CustomNonPositive(t *testing.T) {
	r := fixedResolver(time.Date(2024, 3, 10, 15, 0, 0, 0, shanghai))

	for _, c := range []models.CustomDuration{{}, {Hours: -5}} {
		res := r.Resolve(models.RangeCustom, c)
		if res.Duration() != time.Hour {
			t.Errorf("Expected default 1h for %+v, got %v", c, res.Duration())
		}
	}
}

func TestTimeRange_Format(t *testing.T) {
	tr := models.TimeRange{
		Start: time.Date(2024, 3, 10, 8, 5, 9, 987e6, time.UTC),
		End:   time.Date(2024, 3, 10, 23, 59, 59, 999e6, shanghai),
	}
	if tr.StartTime() != "2024-03-10T08:05:09Z" {
		t.Errorf("Expected 2024-03-10T08:05:09Z, got %s", tr.StartTime())
	}
	if tr.EndTime() != "2024-03-10T15:59:59Z" {
		t.Errorf("Expected 2024-03-10T15:59:59Z, got %s", tr.EndTime())
	}
}

func TestPreviousPeriod_Today(t *testing.T) {
	current := models.TimeRange{
		Start: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC),
	}

	prev, ok := PreviousPeriod(current, models.RangeToday)
	if !ok {
		t.Fatal("Expected previous period")
	}
	if prev.StartTime() != "2024-03-09T00:00:00Z" || prev.EndTime() != "2024-03-09T15:00:00Z" {
		t.Errorf("Expected 2024-03-09T00:00:00Z..2024-03-09T15:00:00Z, got %s..%s", prev.StartTime(), prev.EndTime())
	}
}

func TestPreviousPeriod_DurationShift(t *testing.T) {
	current := models.TimeRange{
		Start: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC),
	}

	prev, ok := PreviousPeriod(current, models.Range6H)
	if !ok {
		t.Fatal("Expected previous period")
	}
	if !prev.End.Equal(current.Start) {
		t.Errorf("Expected previous end %v, got %v", current.Start, prev.End)
	}
	if prev.Duration() != current.Duration() {
		t.Errorf("Expected equal durations, got %v and %v", prev.Duration(), current.Duration())
	}
}

func TestPreviousPeriod_Invalid(t *testing.T) {
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []models.TimeRange{
		{},
		{Start: at, End: at},
		{Start: at, End: at.Add(-time.Hour)},
	}
	for _, c := range cases {
		if _, ok := PreviousPeriod(c, models.Range1H); ok {
			t.Errorf("Expected no previous period for %v..%v", c.Start, c.End)
		}
	}
}

func TestIsCompareEligible(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

	if !IsCompareEligible(now.Add(-14*24*time.Hour), now) {
		t.Error("Expected 14d old start to be eligible")
	}
	if !IsCompareEligible(now.Add(-14*24*time.Hour-59*time.Second), now) {
		t.Error("Expected start within slack to be eligible")
	}
	if IsCompareEligible(now.Add(-14*24*time.Hour-61*time.Second), now) {
		t.Error("Expected start beyond slack to be ineligible")
	}
	if IsCompareEligible(time.Time{}, now) {
		t.Error("Expected zero start to be ineligible")
	}
}

func TestSecuritySupported(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	r := fixedResolver(now)

	if !SecuritySupported(r.Resolve(models.Range14D, models.CustomDuration{}).TimeRange) {
		t.Error("Expected 14d to be supported")
	}
	if SecuritySupported(r.Resolve(models.Range31D, models.CustomDuration{}).TimeRange) {
		t.Error("Expected 31d to be unsupported")
	}
}

func TestParseTimeRange(t *testing.T) {
	tr, err := ParseTimeRange("2024-03-10T00:00:00Z", "2024-03-10T01:00:00Z")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tr.Duration() != time.Hour {
		t.Errorf("Expected 1h, got %v", tr.Duration())
	}

	if _, err := ParseTimeRange("yesterday", "2024-03-10T01:00:00Z"); err == nil {
		t.Error("Expected error for invalid start")
	}
}

func TestInferGranularity(t *testing.T) {
	hourly := func(n int) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = float64(baseTS + i*3600)
		}
		return out
	}

	tests := []struct {
		name     string
		interval models.Interval
		samples  []float64
		key      models.RangeKey
		want     Granularity
	}{
		{"explicit day", models.IntervalDay, hourly(3), models.Range1H, GranularityDay},
		{"gap 90000s", models.IntervalAuto, []float64{baseTS, baseTS + 90000}, models.Range7D, GranularityDay},
		{"gap exactly 82800s", models.IntervalAuto, []float64{baseTS, baseTS + 82800}, models.Range7D, GranularityDay},
		{"gap 3600s on 7d", models.IntervalAuto, []float64{baseTS, baseTS + 3600}, models.Range7D, GranularitySubDay},
		{"14d few samples", models.IntervalAuto, hourly(32), models.Range14D, GranularityDay},
		{"31d many samples", models.IntervalAuto, hourly(33), models.Range31D, GranularitySubDay},
		{"explicit hour ignores gap", models.IntervalHour, []float64{baseTS, baseTS + 90000}, models.Range14D, GranularitySubDay},
		{"single sample", models.IntervalAuto, []float64{baseTS}, models.Range1H, GranularitySubDay},
	}

	for _, tt := range tests {
		if got := InferGranularity(tt.interval, tt.samples, tt.key); got != tt.want {
			t.Errorf("%s: Expected %s, got %s", tt.name, tt.want, got)
		}
	}
}
