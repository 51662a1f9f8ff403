package config

import "testing"

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SALES_TAX_RATE", "ACCESS_TOKEN_TTL_MINUTES", "CATALOG_CACHE_TTL_SECONDS", "STORE_TIMEOUT_SECONDS", "DATABASE_AUTO_MIGRATE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Address() != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.Address())
	}
	if cfg.SalesTaxRate.String() != "0.06" {
		t.Fatalf("expected tax rate 0.06, got %s", cfg.SalesTaxRate)
	}
	if cfg.AccessTokenTTLMinutes != 480 || cfg.CatalogCacheTTLSeconds != 30 || cfg.StoreTimeoutSeconds != 5 {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.DatabaseAutoMigrate {
		t.Fatalf("expected auto migrate to be off by default")
	}
}

func TestLoadFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("SALES_TAX_RATE", "abc")
	t.Setenv("STORE_TIMEOUT_SECONDS", "-3")
	t.Setenv("DATABASE_AUTO_MIGRATE", "true")

	cfg := Load()
	if cfg.SalesTaxRate.String() != "0.06" {
		t.Fatalf("expected fallback tax rate, got %s", cfg.SalesTaxRate)
	}
	if cfg.StoreTimeoutSeconds != 5 {
		t.Fatalf("expected fallback store timeout, got %d", cfg.StoreTimeoutSeconds)
	}
	if !cfg.DatabaseAutoMigrate {
		t.Fatalf("expected auto migrate to be on")
	}
}

func TestLoadReadsTaxRate(t *testing.T) {
	t.Setenv("SALES_TAX_RATE", "0.08")

	if got := Load().SalesTaxRate.String(); got != "0.08" {
		t.Fatalf("expected 0.08, got %s", got)
	}
}

func TestLoadKeepsZeroTaxRate(t *testing.T) {
	t.Setenv("SALES_TAX_RATE", "0")

	if got := Load().SalesTaxRate; !got.IsZero() {
		t.Fatalf("expected zero tax rate, got %s", got)
	}
}
