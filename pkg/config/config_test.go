package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Port != "5001" {
		t.Fatalf("expected default port 5001, got %s", cfg.App.Port)
	}
	if !cfg.App.IsDev() {
		t.Fatalf("expected dev env by default, got %s", cfg.App.Env)
	}
	if cfg.DB.DSN == "" {
		t.Fatal("expected in-memory DSN default")
	}
	if cfg.JWT.ExpirationMinutes != 1440 {
		t.Fatalf("expected 24h token expiry, got %d minutes", cfg.JWT.ExpirationMinutes)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COEX_APP_PORT", "9000")
	t.Setenv("COEX_APP_ENV", "prod")
	t.Setenv("COEX_MAX_UPLOAD_MB", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Port != "9000" {
		t.Fatalf("expected port override, got %s", cfg.App.Port)
	}
	if !cfg.App.IsProd() {
		t.Fatal("expected prod env")
	}
	if cfg.Uploads.MaxUploadBytes() != 2<<20 {
		t.Fatalf("expected 2MB cap, got %d", cfg.Uploads.MaxUploadBytes())
	}
}

func TestMaxUploadBytesFallback(t *testing.T) {
	u := UploadsConfig{MaxUploadMB: 0}
	if u.MaxUploadBytes() != 5<<20 {
		t.Fatalf("expected 5MB fallback, got %d", u.MaxUploadBytes())
	}
}
