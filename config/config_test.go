package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"MUSEFM_PORT", "MUSEFM_BACKEND_URL", "MUSEFM_BACKEND_KEY",
		"MUSEFM_MODEL", "MUSEFM_DEVICE", "MUSEFM_MUSIC_DIR",
		"MUSEFM_WEBAPP_DIR", "FFMPEG_PATH",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY",
		"MINIO_BUCKET", "MINIO_USE_SSL", "MINIO_REGION",
		"LOG_LEVEL", "LOG_PATH",
	} {
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.BackendURL != "http://127.0.0.1:8000" {
		t.Errorf("BackendURL = %q, want default", cfg.BackendURL)
	}
	if cfg.DefaultModel != "small" {
		t.Errorf("DefaultModel = %q, want small", cfg.DefaultModel)
	}
	if cfg.Device != "auto" {
		t.Errorf("Device = %q, want auto", cfg.Device)
	}
	if cfg.MusicDir != "generated_music" {
		t.Errorf("MusicDir = %q, want generated_music", cfg.MusicDir)
	}
	if cfg.FFmpegPath != "ffmpeg" {
		t.Errorf("FFmpegPath = %q, want ffmpeg", cfg.FFmpegPath)
	}
	if cfg.RedisEnabled() {
		t.Error("RedisEnabled() = true with no REDIS_ADDR")
	}
	if cfg.MinioEnabled() {
		t.Error("MinioEnabled() = true with no MINIO_ENDPOINT")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MUSEFM_PORT", "9090")
	t.Setenv("MUSEFM_MUSIC_DIR", "/tmp/music")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("MINIO_ENDPOINT", "127.0.0.1:9000")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.MusicDir != "/tmp/music" {
		t.Errorf("MusicDir = %q", cfg.MusicDir)
	}
	if !cfg.RedisEnabled() || cfg.RedisDB != 3 {
		t.Errorf("redis config not applied: %+v", cfg)
	}
	if !cfg.MinioEnabled() || !cfg.MinioUseSSL {
		t.Errorf("minio config not applied: %+v", cfg)
	}
}

func TestMetadataPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("MUSEFM_MUSIC_DIR", "some_dir")
	cfg := Load()
	if got := cfg.MetadataPath(); got != filepath.Join("some_dir", "music_metadata.json") {
		t.Errorf("MetadataPath = %q", got)
	}
}

func TestInvalidIntFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_DB", "not-a-number")
	cfg := Load()
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want fallback 0", cfg.RedisDB)
	}
}
