package analytics

import (
	"math"
	"testing"

	"teo-dashboard/internal/models"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name      string
		current   float64
		previous  float64
		direction models.Direction
		percent   float64
		display   string
	}{
		{"growth", 150, 100, models.DirectionUp, 0.5, "↑ 50.00%"},
		{"decline", 50, 200, models.DirectionDown, -0.75, "↓ 75.00%"},
		{"unchanged", 10, 10, models.DirectionFlat, 0, "→ 0.00%"},
		{"both zero", 0, 0, models.DirectionFlat, 0, "→ 0.00%"},
		{"from zero", 5, 0, models.DirectionUp, math.Inf(1), "↑ ∞%"},
		{"negative previous", -5, -10, models.DirectionDown, -0.5, "↓ 50.00%"},
	}

	for _, tt := range tests {
		got := Compare(tt.current, tt.previous)
		if got.Direction != tt.direction {
			t.Errorf("%s: Expected direction %s, got %s", tt.name, tt.direction, got.Direction)
		}
		if got.Percent != tt.percent {
			t.Errorf("%s: Expected percent %v, got %v", tt.name, tt.percent, got.Percent)
		}
		if got.String() != tt.display {
			t.Errorf("%s: Expected display %q, got %q", tt.name, tt.display, got.String())
		}
	}
}

func TestCompare_Unavailable(t *testing.T) {
	inputs := [][2]float64{
		{math.NaN(), 10},
		{10, math.NaN()},
		{math.Inf(1), 10},
		{10, math.Inf(-1)},
	}

	for _, in := range inputs {
		got := Compare(in[0], in[1])
		if got.Direction != models.DirectionUnavailable {
			t.Errorf("Compare(%v, %v): Expected unavailable, got %s", in[0], in[1], got.Direction)
		}
		if !math.IsNaN(got.Percent) {
			t.Errorf("Compare(%v, %v): Expected NaN percent, got %v", in[0], in[1], got.Percent)
		}
		if got.Available() || got.String() != "" {
			t.Errorf("Compare(%v, %v): Expected hidden comparison, got %q", in[0], in[1], got.String())
		}
	}
}

func TestComparison_MarshalJSON(t *testing.T) {
	tests := []struct {
		in   models.Comparison
		want string
	}{
		{Compare(150, 100), `{"direction":"up","display":"↑ 50.00%","percent":0.5}`},
		{Compare(5, 0), `{"direction":"up","display":"↑ ∞%","percent":"Infinity"}`},
		{Unavailable(), `{"direction":"unavailable","display":"","percent":null}`},
	}

	for _, tt := range tests {
		data, err := tt.in.MarshalJSON()
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if string(data) != tt.want {
			t.Errorf("Expected %s, got %s", tt.want, data)
		}
	}
}

func TestCacheHitRate(t *testing.T) {
	tests := []struct {
		edge, origin, want float64
	}{
		{1000, 200, 0.8},
		{0, 50, 0},
		{-10, 50, 0},
		{100, 150, -0.5},
		{100, 0, 1},
	}

	for _, tt := range tests {
		if got := CacheHitRate(tt.edge, tt.origin); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CacheHitRate(%v, %v): Expected %v, got %v", tt.edge, tt.origin, tt.want, got)
		}
	}
}

func TestCacheHitRateOf(t *testing.T) {
	edge := models.TimeSeries{Sum: 1000}
	origin := models.TimeSeries{Sum: 250}

	if got := CacheHitRateOf(edge, origin, 0); got != 0.75 {
		t.Errorf("Expected 0.75, got %v", got)
	}
	if got := CacheHitRateOf(nil, origin, 0); got != 0 {
		t.Errorf("Expected fallback 0, got %v", got)
	}
	if got := CacheHitRateOf(edge, nil, math.NaN()); !math.IsNaN(got) {
		t.Errorf("Expected NaN fallback, got %v", got)
	}
	if got := CacheHitRateOf(edge, models.TopList{}, 0); got != 0 {
		t.Errorf("Expected fallback for top list, got %v", got)
	}
}

func TestScalar(t *testing.T) {
	s := models.TimeSeries{Sum: 10, Max: 7, Avg: 2}

	if Scalar(s, AggregateSum) != 10 || Scalar(s, AggregateMax) != 7 || Scalar(s, AggregateAvg) != 2 {
		t.Errorf("Unexpected aggregates for %+v", s)
	}
	if !math.IsNaN(Scalar(nil, AggregateSum)) {
		t.Error("Expected NaN for missing result")
	}
}

func BenchmarkCompare(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Compare(float64(i), 100)
	}
}
