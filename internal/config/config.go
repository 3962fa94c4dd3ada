package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/cesargomez89/strume/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port              string   `toml:"port"`
	DBPath            string   `toml:"db_path"`
	WorkDir           string   `toml:"work_dir"`
	StoredDir         string   `toml:"stored_dir"`
	MetadataPath      string   `toml:"metadata_path"`
	LogLevel          string   `toml:"log_level"`
	LogFormat         string   `toml:"log_format"`
	FFmpegPath        string   `toml:"ffmpeg_path"`
	FpcalcPath        string   `toml:"fpcalc_path"`
	DemucsPath        string   `toml:"demucs_path"`
	DemucsModel       string   `toml:"demucs_model"`
	DemucsDevice      string   `toml:"demucs_device"`
	ModelSampleRate   int      `toml:"model_sample_rate"`
	ModelChannels     int      `toml:"model_channels"`
	MaxConcurrentJobs int      `toml:"max_concurrent_jobs"`
	PollIntervalMS    int      `toml:"progress_poll_ms"`
	RetentionSeconds  int      `toml:"progress_retention_seconds"`
	MaxUploadMB       int      `toml:"max_upload_mb"`
	StoredFormat      string   `toml:"stored_format"`
	AcoustIDURL       string   `toml:"acoustid_url"`
	AcoustIDAPIKey    string   `toml:"acoustid_api_key"`
	MusicBrainzURL    string   `toml:"musicbrainz_url"`
	LookupCacheHours  int      `toml:"lookup_cache_hours"`
	CORSOrigins       []string `toml:"cors_origins"`
	PublicBaseURL     string   `toml:"public_base_url"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Port:              constants.DefaultPort,
		DBPath:            constants.DefaultDBPath,
		WorkDir:           constants.DefaultWorkDir,
		StoredDir:         constants.DefaultStoredDir,
		MetadataPath:      filepath.Join(constants.DefaultStoredDir, constants.DefaultMetadataFile),
		LogLevel:          "info",
		LogFormat:         "text",
		FFmpegPath:        constants.DefaultFFmpegPath,
		FpcalcPath:        constants.DefaultFpcalcPath,
		DemucsPath:        constants.DefaultDemucsPath,
		DemucsModel:       constants.DefaultDemucsModel,
		DemucsDevice:      constants.DefaultDemucsDevice,
		ModelSampleRate:   constants.DefaultModelSampleRate,
		ModelChannels:     constants.DefaultModelChannels,
		MaxConcurrentJobs: constants.DefaultConcurrency,
		PollIntervalMS:    int(constants.DefaultPollInterval / time.Millisecond),
		RetentionSeconds:  int(constants.DefaultProgressRetention / time.Second),
		MaxUploadMB:       constants.DefaultMaxUploadMB,
		StoredFormat:      constants.DefaultStoredFormat,
		AcoustIDURL:       constants.DefaultAcoustIDURL,
		MusicBrainzURL:    constants.DefaultMusicBrainzURL,
		LookupCacheHours:  int(constants.DefaultLookupCacheTTL / time.Hour),
		CORSOrigins:       []string{constants.DefaultCORSOrigin},
	}
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// LoadFile decodes a TOML file on top of the defaults, then applies
// environment overrides. An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		if err := toml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.WorkDir = getEnv("WORK_DIR", c.WorkDir)
	c.StoredDir = getEnv("STORED_DIR", c.StoredDir)
	c.MetadataPath = getEnv("METADATA_PATH", c.MetadataPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.FFmpegPath = getEnv("FFMPEG_PATH", c.FFmpegPath)
	c.FpcalcPath = getEnv("FPCALC_PATH", c.FpcalcPath)
	c.DemucsPath = getEnv("DEMUCS_PATH", c.DemucsPath)
	c.DemucsModel = getEnv("DEMUCS_MODEL", c.DemucsModel)
	c.DemucsDevice = getEnv("DEMUCS_DEVICE", c.DemucsDevice)
	c.ModelSampleRate = getEnvInt("MODEL_SAMPLE_RATE", c.ModelSampleRate)
	c.ModelChannels = getEnvInt("MODEL_CHANNELS", c.ModelChannels)
	c.MaxConcurrentJobs = getEnvInt("MAX_CONCURRENT_JOBS", c.MaxConcurrentJobs)
	c.PollIntervalMS = getEnvInt("PROGRESS_POLL_MS", c.PollIntervalMS)
	c.RetentionSeconds = getEnvInt("PROGRESS_RETENTION_SECONDS", c.RetentionSeconds)
	c.MaxUploadMB = getEnvInt("MAX_UPLOAD_MB", c.MaxUploadMB)
	c.StoredFormat = strings.ToLower(getEnv("STORED_FORMAT", c.StoredFormat))
	c.AcoustIDURL = getEnv("ACOUSTID_URL", c.AcoustIDURL)
	c.AcoustIDAPIKey = getEnv("ACOUSTID_API_KEY", c.AcoustIDAPIKey)
	c.MusicBrainzURL = getEnv("MUSICBRAINZ_URL", c.MusicBrainzURL)
	c.LookupCacheHours = getEnvInt("LOOKUP_CACHE_HOURS", c.LookupCacheHours)
	c.PublicBaseURL = getEnv("PUBLIC_BASE_URL", c.PublicBaseURL)

	if origins, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		c.CORSOrigins = splitList(origins)
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	// Validate Port
	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}
	if c.WorkDir == "" {
		errors = append(errors, "WORK_DIR cannot be empty")
	}
	if c.StoredDir == "" {
		errors = append(errors, "STORED_DIR cannot be empty")
	}
	if c.MetadataPath == "" {
		errors = append(errors, "METADATA_PATH cannot be empty")
	}

	if c.ModelSampleRate <= 0 {
		errors = append(errors, fmt.Sprintf("MODEL_SAMPLE_RATE must be positive, got: %d", c.ModelSampleRate))
	}
	if c.ModelChannels < 1 || c.ModelChannels > 2 {
		errors = append(errors, fmt.Sprintf("MODEL_CHANNELS must be 1 or 2, got: %d", c.ModelChannels))
	}
	if c.MaxConcurrentJobs < 1 {
		errors = append(errors, fmt.Sprintf("MAX_CONCURRENT_JOBS must be at least 1, got: %d", c.MaxConcurrentJobs))
	}
	if c.PollIntervalMS < 1 {
		errors = append(errors, fmt.Sprintf("PROGRESS_POLL_MS must be at least 1, got: %d", c.PollIntervalMS))
	}
	if c.RetentionSeconds < 0 {
		errors = append(errors, fmt.Sprintf("PROGRESS_RETENTION_SECONDS cannot be negative, got: %d", c.RetentionSeconds))
	}
	if c.MaxUploadMB < 1 {
		errors = append(errors, fmt.Sprintf("MAX_UPLOAD_MB must be at least 1, got: %d", c.MaxUploadMB))
	}

	validFormats := map[string]bool{
		constants.FormatWAV:  true,
		constants.FormatFLAC: true,
		constants.FormatMP3:  true,
	}
	if !validFormats[c.StoredFormat] {
		errors = append(errors, fmt.Sprintf("STORED_FORMAT must be one of: wav, flac, mp3, got: %s", c.StoredFormat))
	}

	if c.AcoustIDURL == "" {
		errors = append(errors, "ACOUSTID_URL cannot be empty")
	} else if _, err := url.Parse(c.AcoustIDURL); err != nil {
		errors = append(errors, fmt.Sprintf("ACOUSTID_URL is not a valid URL: %s", c.AcoustIDURL))
	}

	// MusicBrainz enrichment is disabled when empty
	if c.MusicBrainzURL != "" {
		if _, err := url.Parse(c.MusicBrainzURL); err != nil {
			errors = append(errors, fmt.Sprintf("MUSICBRAINZ_URL is not a valid URL: %s", c.MusicBrainzURL))
		}
	}

	if c.PublicBaseURL != "" {
		if u, err := url.Parse(c.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("PUBLIC_BASE_URL must be an absolute URL, got: %s", c.PublicBaseURL))
		}
	}

	// Validate LogLevel
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	// Validate LogFormat
	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// EnsureDirectories creates the working and storage directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.WorkDir, c.StoredDir, filepath.Dir(c.MetadataPath)}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PollInterval is the progress stream poll period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// ProgressRetention is how long terminal progress entries are kept.
func (c *Config) ProgressRetention() time.Duration {
	return time.Duration(c.RetentionSeconds) * time.Second
}

// LookupCacheTTL is the lifetime of cached AcoustID/MusicBrainz answers.
func (c *Config) LookupCacheTTL() time.Duration {
	return time.Duration(c.LookupCacheHours) * time.Hour
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
