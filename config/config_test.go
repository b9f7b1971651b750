package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.APIBaseURL != "http://localhost:5000" {
		t.Errorf("Unexpected API base URL %q", cfg.APIBaseURL)
	}
	if cfg.WSBaseURL != "ws://localhost:5000" {
		t.Errorf("Unexpected WS base URL %q", cfg.WSBaseURL)
	}
	if cfg.HTTPTimeout != 15 || cfg.PageSize != 100 {
		t.Errorf("Unexpected defaults: timeout %d, page size %d", cfg.HTTPTimeout, cfg.PageSize)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DEVCONNECT_API_URL", "https://api.devconnect.dev")
	t.Setenv("DEVCONNECT_WS_URL", "wss://api.devconnect.dev")
	t.Setenv("DEVCONNECT_HTTP_TIMEOUT", "30")
	t.Setenv("DEVCONNECT_PAGE_SIZE", "50")

	cfg := Load()
	if cfg.APIBaseURL != "https://api.devconnect.dev" {
		t.Errorf("Unexpected API base URL %q", cfg.APIBaseURL)
	}
	if cfg.WSBaseURL != "wss://api.devconnect.dev" {
		t.Errorf("Unexpected WS base URL %q", cfg.WSBaseURL)
	}
	if cfg.HTTPTimeout != 30 || cfg.PageSize != 50 {
		t.Errorf("Overrides not applied: timeout %d, page size %d", cfg.HTTPTimeout, cfg.PageSize)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("DEVCONNECT_HTTP_TIMEOUT", "soon")
	t.Setenv("DEVCONNECT_PAGE_SIZE", "-5")

	cfg := Load()
	if cfg.HTTPTimeout != 15 {
		t.Errorf("Expected the default timeout for a bad value, got %d", cfg.HTTPTimeout)
	}
	if cfg.PageSize != 100 {
		t.Errorf("Expected the default page size for a bad value, got %d", cfg.PageSize)
	}
}
