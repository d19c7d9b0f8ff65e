package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"teo-dashboard/internal/i18n"
)

func TestPagesRegions(t *testing.T) {
	tests := []struct {
		single, list string
		want         []string
	}{
		{"", "", []string{"ap-guangzhou", "ap-singapore"}},
		{"ap-singapore", "", []string{"ap-singapore"}},
		{"", " ap-hongkong , ap-guangzhou,,", []string{"ap-hongkong", "ap-guangzhou"}},
		{"ap-guangzhou", "ap-guangzhou,ap-tokyo", []string{"ap-guangzhou", "ap-tokyo"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, PagesRegions(tt.single, tt.list)); diff != "" {
			t.Errorf("PagesRegions(%q, %q) mismatch (-want +got):\n%s", tt.single, tt.list, diff)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("UPSTREAM_TIMEOUT", "")
	t.Setenv("SITE_NAME", "")
	t.Setenv("DASHBOARD_LOCALE", "")
	t.Setenv("DASHBOARD_TZ", "")
	t.Setenv("CACHE_MAX_ENTRIES", "")
	t.Setenv("UPSTREAM_QPS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerAddr != ":8080" {
		t.Errorf("Expected :8080, got %s", cfg.ServerAddr)
	}
	if cfg.UpstreamTimeout != 30*time.Second {
		t.Errorf("Expected 30s upstream timeout, got %v", cfg.UpstreamTimeout)
	}
	if cfg.SiteName != "arelux" {
		t.Errorf("Expected site name arelux, got %s", cfg.SiteName)
	}
	if cfg.Locale != i18n.ZhHans {
		t.Errorf("Expected zh-Hans, got %s", cfg.Locale)
	}
	if cfg.CacheMaxEntries != 300 {
		t.Errorf("Expected 300 cache entries, got %d", cfg.CacheMaxEntries)
	}
}

func TestWriteTimeoutFor(t *testing.T) {
	tests := []struct {
		name            string
		upstream        time.Duration
		retries, chains int
		want            time.Duration
	}{
		{"unbounded upstream", 0, 2, 3, 0},
		{"defaults", 30 * time.Second, 2, 3, 3*(90*time.Second+9*time.Second) + 15*time.Second},
		{"single short call", time.Second, 0, 1, 60 * time.Second},
		{"negative counts", 50 * time.Second, -1, 0, 65 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WriteTimeoutFor(tt.upstream, tt.retries, tt.chains); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLoad_WriteTimeoutCoversRetries(t *testing.T) {
	t.Setenv("WRITE_TIMEOUT", "")
	t.Setenv("UPSTREAM_TIMEOUT", "30s")
	t.Setenv("UPSTREAM_RETRIES", "2")
	t.Setenv("TEO_PAGES_REGION", "")
	t.Setenv("TEO_PAGES_REGIONS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	worst := time.Duration(cfg.UpstreamRetries+1) * cfg.UpstreamTimeout * time.Duration(1+len(cfg.PagesRegion))
	if cfg.WriteTimeout <= worst {
		t.Errorf("Expected write timeout above %v, got %v", worst, cfg.WriteTimeout)
	}

	t.Setenv("WRITE_TIMEOUT", "2m")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WriteTimeout != 2*time.Minute {
		t.Errorf("Expected explicit 2m, got %v", cfg.WriteTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("UPSTREAM_TIMEOUT", "45")
	t.Setenv("SESSION_TTL", "10m")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DASHBOARD_TZ", "UTC")
	t.Setenv("DASHBOARD_LOCALE", "en")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.UpstreamTimeout != 45*time.Second {
		t.Errorf("Expected 45s, got %v", cfg.UpstreamTimeout)
	}
	if cfg.SessionTTL != 10*time.Minute {
		t.Errorf("Expected 10m, got %v", cfg.SessionTTL)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("Expected redis db 3, got %d", cfg.RedisDB)
	}
	if cfg.Location != time.UTC {
		t.Errorf("Expected UTC location, got %v", cfg.Location)
	}
	if cfg.Locale != i18n.EnUS {
		t.Errorf("Expected en-US, got %s", cfg.Locale)
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("DASHBOARD_TZ", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid timezone")
	}
}
