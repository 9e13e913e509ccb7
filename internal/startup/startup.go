package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"photo-cull/internal/logging"
	"photo-cull/internal/thumbs"

	"gopkg.in/yaml.v2"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// Config holds all application configuration.
type Config struct {
	// PhotoDir is the directory tree to scan.
	PhotoDir string
	// DataDir holds the attribute database.
	DataDir string
	// Port for the HTTP surface.
	Port string

	WatchEnabled   bool
	PrewarmEnabled bool
	MetricsEnabled bool

	ThumbnailDimension int
	CacheMaxEntries    int
	CacheMaxBytes      int64

	// Derived
	DatabasePath string
}

// fileConfig is the optional YAML config file shape. Environment
// variables override anything set here.
type fileConfig struct {
	PhotoDir           string `yaml:"photo_dir"`
	DataDir            string `yaml:"data_dir"`
	Port               string `yaml:"port"`
	Watch              *bool  `yaml:"watch"`
	Prewarm            *bool  `yaml:"prewarm"`
	Metrics            *bool  `yaml:"metrics"`
	ThumbnailDimension int    `yaml:"thumbnail_dimension"`
	CacheMaxEntries    int    `yaml:"cache_max_entries"`
	CacheMaxBytes      int64  `yaml:"cache_max_bytes"`
}

// LoadConfig builds the configuration: built-in defaults, then the
// YAML file named by PHOTO_CULL_CONFIG (if any), then environment
// variables. It also resolves and validates the data directory.
func LoadConfig() (*Config, error) {
	config := &Config{
		PhotoDir:           ".",
		DataDir:            defaultDataDir(),
		Port:               "8080",
		WatchEnabled:       true,
		PrewarmEnabled:     true,
		MetricsEnabled:     true,
		ThumbnailDimension: thumbs.DefaultThumbnailDimension,
		CacheMaxEntries:    thumbs.DefaultMaxEntries,
		CacheMaxBytes:      thumbs.DefaultMaxBytes,
	}

	if path := os.Getenv("PHOTO_CULL_CONFIG"); path != "" {
		if err := applyConfigFile(config, path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	config.PhotoDir = getEnv("PHOTO_DIR", config.PhotoDir)
	config.DataDir = getEnv("DATA_DIR", config.DataDir)
	config.Port = getEnv("PORT", config.Port)
	config.WatchEnabled = getEnvBool("WATCH", config.WatchEnabled)
	config.PrewarmEnabled = getEnvBool("PREWARM", config.PrewarmEnabled)
	config.MetricsEnabled = getEnvBool("METRICS_ENABLED", config.MetricsEnabled)
	config.ThumbnailDimension = getEnvInt("THUMBNAIL_DIMENSION", config.ThumbnailDimension)
	config.CacheMaxEntries = getEnvInt("CACHE_MAX_ENTRIES", config.CacheMaxEntries)
	config.CacheMaxBytes = getEnvInt64("CACHE_MAX_BYTES", config.CacheMaxBytes)

	var err error
	config.PhotoDir, err = filepath.Abs(config.PhotoDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve photo directory: %w", err)
	}
	config.DataDir, err = filepath.Abs(config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}

	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := testWriteAccess(config.DataDir); err != nil {
		return nil, fmt.Errorf("data directory is not writable: %w", err)
	}

	config.DatabasePath = filepath.Join(config.DataDir, "attributes.db")

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  PHOTO_DIR:            %s", config.PhotoDir)
	logging.Info("  DATA_DIR:             %s", config.DataDir)
	logging.Info("  PORT:                 %s", config.Port)
	logging.Info("  WATCH:                %v", config.WatchEnabled)
	logging.Info("  PREWARM:              %v", config.PrewarmEnabled)
	logging.Info("  METRICS_ENABLED:      %v", config.MetricsEnabled)
	logging.Info("  THUMBNAIL_DIMENSION:  %d", config.ThumbnailDimension)
	logging.Info("  CACHE_MAX_ENTRIES:    %d", config.CacheMaxEntries)
	logging.Info("  CACHE_MAX_BYTES:      %d", config.CacheMaxBytes)
	logging.Info("  LOG_LEVEL:            %s", logging.GetLevel())

	return config, nil
}

func applyConfigFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.PhotoDir != "" {
		config.PhotoDir = fc.PhotoDir
	}
	if fc.DataDir != "" {
		config.DataDir = fc.DataDir
	}
	if fc.Port != "" {
		config.Port = fc.Port
	}
	if fc.Watch != nil {
		config.WatchEnabled = *fc.Watch
	}
	if fc.Prewarm != nil {
		config.PrewarmEnabled = *fc.Prewarm
	}
	if fc.Metrics != nil {
		config.MetricsEnabled = *fc.Metrics
	}
	if fc.ThumbnailDimension > 0 {
		config.ThumbnailDimension = fc.ThumbnailDimension
	}
	if fc.CacheMaxEntries > 0 {
		config.CacheMaxEntries = fc.CacheMaxEntries
	}
	if fc.CacheMaxBytes > 0 {
		config.CacheMaxBytes = fc.CacheMaxBytes
	}
	return nil
}

// defaultDataDir resolves the per-application local data directory.
func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "photo-cull")
	}
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".photo-cull")
	}
	return ".photo-cull"
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return err
	}
	_ = os.Remove(testFile)
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean for %s: %q, using %v", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid integer for %s: %q, using %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid integer for %s: %q, using %d", key, value, fallback)
		return fallback
	}
	return parsed
}

// LogStartupComplete logs the final startup summary.
func LogStartupComplete(port string, elapsed time.Duration) {
	logging.Info("photo-cull %s (commit %s) listening on :%s (startup took %v)",
		Version, Commit, port, elapsed)
}
