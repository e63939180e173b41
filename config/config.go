package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Values come from environment variables (optionally via a .env file)
// with simple defaults for local development.
type Config struct {
	// HTTP server
	Port string

	// Generation backend (MusicGen inference server)
	BackendURL   string
	BackendKey   string
	DefaultModel string // small, medium, large
	Device       string // cuda, cpu, or auto

	// Music library
	MusicDir   string // directory holding generated WAV files and the metadata sidecar
	WebAppDir  string // path to the web UI files, served at /
	FFmpegPath string

	// Redis配置（可选，用于音乐库列表缓存）
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// MinIO配置（可选，用于归档生成的音频）
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioRegion    string

	// Logging
	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() does not override variables already set in the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		Port: getEnv("MUSEFM_PORT", "8080"),

		BackendURL:   getEnv("MUSEFM_BACKEND_URL", "http://127.0.0.1:8000"),
		BackendKey:   os.Getenv("MUSEFM_BACKEND_KEY"),
		DefaultModel: getEnv("MUSEFM_MODEL", "small"),
		Device:       getEnv("MUSEFM_DEVICE", "auto"),

		MusicDir:   getEnv("MUSEFM_MUSIC_DIR", "generated_music"),
		WebAppDir:  getEnv("MUSEFM_WEBAPP_DIR", filepath.Join("web", "ui")),
		FFmpegPath: getEnv("FFMPEG_PATH", "ffmpeg"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "musefm"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MinioRegion:    getEnv("MINIO_REGION", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}

// MetadataPath returns the path of the library metadata sidecar file.
func (c *Config) MetadataPath() string {
	return filepath.Join(c.MusicDir, "music_metadata.json")
}

// RedisEnabled reports whether a Redis cache is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// MinioEnabled reports whether MinIO archiving is configured.
func (c *Config) MinioEnabled() bool {
	return c.MinioEndpoint != ""
}
