package config_test

import (
	"strings"
	"testing"

	"github.com/sbekbolat/maglink/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/maglink")
	t.Setenv("LINK_SECRET", strings.Repeat("s", 32))
	t.Setenv("SESSION_SECRET", strings.Repeat("k", 32))
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Env != "local" {
		t.Errorf("Env = %q, want local", cfg.Env)
	}
	if !cfg.NeutralValidation {
		t.Error("NeutralValidation should default to true")
	}
	if cfg.LinkTTL().Seconds() != 3600 {
		t.Errorf("LinkTTL = %v, want 1h", cfg.LinkTTL())
	}
	if cfg.SecureCookies() {
		t.Error("local env must not require secure cookies")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("LINK_SECRET", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("want error for missing LINK_SECRET, got nil")
	}
}

func TestLoad_ShortSecretRejected(t *testing.T) {
	setRequired(t)
	t.Setenv("LINK_SECRET", "too-short")

	if _, err := config.Load(); err == nil {
		t.Fatal("want error for short LINK_SECRET, got nil")
	}
}

func TestLoad_ProductionRequiresResendKey(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")

	if _, err := config.Load(); err == nil {
		t.Fatal("want error for production without RESEND_API_KEY, got nil")
	}

	t.Setenv("RESEND_API_KEY", "re_test_key")
	if _, err := config.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
