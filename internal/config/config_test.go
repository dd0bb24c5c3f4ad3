package config

import "testing"

// TestLoadDefaults verifies development defaults apply when the
// environment is empty.
func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("SPACES_ENDPOINT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.Port != "8788" {
		t.Errorf("Port = %q, want 8788", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("IsDev() = false, want true")
	}
	if cfg.HasS3() {
		t.Error("HasS3() = true with empty storage env")
	}
}

// TestLoadProductionRequiresPassword ensures the default password is
// rejected in production mode.
func TestLoadProductionRequiresPassword(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("POSTGRES_PASSWORD", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded in production with default password")
	}

	t.Setenv("POSTGRES_PASSWORD", "s3cret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.DBPassword != "s3cret" {
		t.Errorf("DBPassword = %q, want s3cret", cfg.DBPassword)
	}
}

// TestDSN checks the connection string format.
func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "catalog",
	}
	want := "postgres://u:p@db:5433/catalog?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
