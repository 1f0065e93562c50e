package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_EmbeddingNeedsModel(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding = EmbeddingConfig{APIKey: "test-key"}
	cfg.Index.VectorDim = 1536

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for embedding provider without a model")
	}
}

func TestValidate_EmbeddingNeedsVectorDim(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding = EmbeddingConfig{APIKey: "test-key", Model: "text-embedding-3-small"}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for embedding provider without a vector dimension")
	}
}

func TestValidate_EmbeddingDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding = EmbeddingConfig{Model: "text-embedding-3-small"}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with disabled embedding provider: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Catalog.Path != "data/cards.db" {
		t.Errorf("expected Catalog.Path='data/cards.db', got %q", cfg.Catalog.Path)
	}
	if cfg.Index.Name != "idx:cards" {
		t.Errorf("expected Index.Name='idx:cards', got %q", cfg.Index.Name)
	}
	if cfg.Sync.PageSize != 500 {
		t.Errorf("expected Sync.PageSize=500, got %d", cfg.Sync.PageSize)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Catalog:  CatalogConfig{Path: "/var/lib/decky/cards.db"},
		Index:    IndexConfig{Name: "idx:custom"},
		Sync:     SyncConfig{PageSize: 100},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Catalog.Path != "/var/lib/decky/cards.db" {
		t.Errorf("expected Catalog.Path preserved, got %q", cfg.Catalog.Path)
	}
	if cfg.Index.Name != "idx:custom" {
		t.Errorf("expected Index.Name preserved, got %q", cfg.Index.Name)
	}
	if cfg.Sync.PageSize != 100 {
		t.Errorf("expected Sync.PageSize=100, got %d", cfg.Sync.PageSize)
	}
}
