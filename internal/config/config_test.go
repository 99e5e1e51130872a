package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DOCUMENT_STORE_BACKEND", "")
	t.Setenv("CONTAINER_TIMEOUT", "")

	cfg := Load()
	if cfg.DocumentBackend != DocumentBackendJSON {
		t.Errorf("DocumentBackend = %q, want %q", cfg.DocumentBackend, DocumentBackendJSON)
	}
	if cfg.ContainerTimeout != 0 {
		t.Errorf("ContainerTimeout = %v, want 0", cfg.ContainerTimeout)
	}
	if cfg.ListenAddr != ServerListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ServerListenAddr)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DOCUMENT_STORE_BACKEND", "SQLite")
	t.Setenv("CONTAINER_TIMEOUT", "45s")
	t.Setenv("USAGE_TOUCH_STRICT", "true")
	t.Setenv("ENABLE_KEEPALIVE", "not-a-bool")

	cfg := Load()
	if cfg.DocumentBackend != DocumentBackendSQLite {
		t.Errorf("DocumentBackend = %q, want sqlite", cfg.DocumentBackend)
	}
	if cfg.ContainerTimeout != 45*time.Second {
		t.Errorf("ContainerTimeout = %v, want 45s", cfg.ContainerTimeout)
	}
	if !cfg.UsageTouchStrict {
		t.Error("UsageTouchStrict should be true")
	}
	if cfg.EnableKeepAlive {
		t.Error("invalid bool should fall back to false")
	}
}

func TestSeededKeys(t *testing.T) {
	cfg := Config{SeedAPIKeys: "k1=container-a, k2=container-b,broken,=x,k3="}
	keys := cfg.SeededKeys()

	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d: %v", len(keys), keys)
	}
	if keys["k1"] != "container-a" || keys["k2"] != "container-b" {
		t.Errorf("unexpected keys: %v", keys)
	}
}
