package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port int
	Host string
	Env  string // "development" or "production"

	// Data directory (projects live under DataDir/projects/<id>)
	DataDir string

	// Staging pool directory watched for new captures
	StagingDir string

	// Database
	DatabasePath string

	// Staging importer poll interval
	PollInterval time.Duration

	// Destructive operations affecting more screens than this
	// require an explicit confirm flag
	ConfirmThreshold int

	// Thumbnails
	ThumbnailMaxWidth int

	// Debug settings
	DBLogQueries bool
}

var (
	cfg  *Config
	once sync.Once
)

// Get returns the global configuration (singleton)
func Get() *Config {
	once.Do(func() {
		cfg = load()
	})
	return cfg
}

// load reads configuration from environment variables
func load() *Config {
	dataDir := getEnv("FLOWDECK_DATA_DIR", "./data")
	appDir := filepath.Join(dataDir, "app", "flowdeck")

	return &Config{
		// Server
		Port: getEnvInt("PORT", 12380),
		Host: getEnv("HOST", "0.0.0.0"),
		Env:  getEnv("ENV", "development"),

		// Data
		DataDir:      dataDir,
		StagingDir:   getEnv("FLOWDECK_STAGING_DIR", filepath.Join(dataDir, "staging")),
		DatabasePath: filepath.Join(appDir, "flowdeck.sqlite"),

		// Importer
		PollInterval: time.Duration(getEnvInt("FLOWDECK_POLL_SECONDS", 5)) * time.Second,

		// Safety
		ConfirmThreshold: getEnvInt("FLOWDECK_CONFIRM_THRESHOLD", 3),

		// Thumbnails
		ThumbnailMaxWidth: getEnvInt("FLOWDECK_THUMB_WIDTH", 400),

		// Debug
		DBLogQueries: getEnv("DB_LOG_QUERIES", "") == "1",
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// ProjectDir returns the directory holding a project's screen files
func (c *Config) ProjectDir(projectID string) string {
	return filepath.Join(c.DataDir, "projects", projectID)
}

// ThumbnailDir returns the cache directory for generated thumbnails
func (c *Config) ThumbnailDir() string {
	return filepath.Join(c.DataDir, "app", "flowdeck", "thumbnails")
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
