package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	// No config file in the temp dir; defaults must carry the load.
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Errorf("server address: got %q, want :8080", cfg.Server.Address)
	}
	if cfg.Database.URI != "mongodb://localhost:27017" {
		t.Errorf("database uri: got %q", cfg.Database.URI)
	}
	if cfg.S3.BucketName != "videos" {
		t.Errorf("bucket name: got %q, want videos", cfg.S3.BucketName)
	}
	if cfg.JWT.Expiration != time.Hour {
		t.Errorf("jwt expiration: got %v, want 1h", cfg.JWT.Expiration)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9999")
	t.Setenv("JWT_EXPIRATION", "30m")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Address != ":9999" {
		t.Errorf("env override ignored: got %q, want :9999", cfg.Server.Address)
	}
	if cfg.JWT.Expiration != 30*time.Minute {
		t.Errorf("jwt expiration override: got %v, want 30m", cfg.JWT.Expiration)
	}
}
