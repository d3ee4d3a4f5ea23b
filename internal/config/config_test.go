package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Physics.Iterations != 1000 {
		t.Errorf("Iterations = %d, want 1000", cfg.Physics.Iterations)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "springbox.toml")
	content := `
[server]
addr = ":9090"

[physics]
iterations = 250
charge = 2.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Physics.Iterations != 250 || cfg.Physics.Charge != 2.5 {
		t.Errorf("physics = %+v", cfg.Physics)
	}
	// Untouched sections keep their defaults.
	if cfg.Mongo.Database != "springbox" {
		t.Errorf("Database = %q, want springbox", cfg.Mongo.Database)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[server\naddr ="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error, got nil")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SPRINGBOX_MONGO_URI", "mongodb://db.internal:27017")
	t.Setenv("SPRINGBOX_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("SPRINGBOX_REDIS_DB", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mongo.URI != "mongodb://db.internal:27017" {
		t.Errorf("Mongo.URI = %q", cfg.Mongo.URI)
	}
	if cfg.Redis.Addr != "redis.internal:6379" || cfg.Redis.DB != 3 {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := Default()
	cfg.Physics.Iterations = 42
	opts := cfg.PipelineOptions()
	if opts.Iterations != 42 {
		t.Errorf("Iterations = %d, want 42", opts.Iterations)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}
