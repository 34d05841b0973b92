package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Storefront.DataDir != "data" {
		t.Fatalf("data dir = %q, want data", cfg.Storefront.DataDir)
	}
	if cfg.Coupons.ResolveDelay != 1200*time.Millisecond {
		t.Fatalf("coupon delay = %v", cfg.Coupons.ResolveDelay)
	}
	if !cfg.Features.EnableGame || !cfg.Features.EnableSupport {
		t.Fatal("features should default on")
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"PORT":                 "9090",
		"STORE_DEFAULT_REGION": "IN",
		"STORE_IN_MEMORY":      "true",
		"COUPON_RESOLVE_DELAY": "10ms",
		"FEATURE_GAME":         "off",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
	if cfg.Storefront.DefaultRegion != "IN" {
		t.Fatalf("region = %q", cfg.Storefront.DefaultRegion)
	}
	if !cfg.Storefront.InMemory {
		t.Fatal("expected in-memory store")
	}
	if cfg.Coupons.ResolveDelay != 10*time.Millisecond {
		t.Fatalf("coupon delay = %v", cfg.Coupons.ResolveDelay)
	}
	if cfg.Features.EnableGame {
		t.Fatal("game feature should be off")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# storefront\nexport PORT=7070\nSTORE_DATA_DIR=\"/var/lib/cardghar\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
	if cfg.Storefront.DataDir != "/var/lib/cardghar" {
		t.Fatalf("data dir = %q", cfg.Storefront.DataDir)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"PORT":                 "not-a-port",
		"STORE_DEFAULT_REGION": "US",
	}))
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := validationErr.Fields()
	if len(fields) != 2 || fields[0] != "PORT" || fields[1] != "STORE_DEFAULT_REGION" {
		t.Fatalf("fields = %v", fields)
	}
}
