package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// ConfigFileName is looked up in every XDG config directory
const ConfigFileName = "config.json"

// Environment variables consulted by ApplyEnvironmentOverrides
const (
	EnvVolume       = "AUDIOTEST_VOLUME"
	EnvStream       = "AUDIOTEST_STREAM"
	EnvAudioBackend = "AUDIOTEST_AUDIO_BACKEND"
	EnvLogLevel     = "AUDIOTEST_LOG_LEVEL"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

var validLogLevels = []string{"debug", "info", "warn", "error"}

// supportedAudioBackends mirrors the backend names understood by the audio factory
var supportedAudioBackends = []string{"auto", "malgo", "oto", "system_command", "null"}

// FileLoggingConfig represents file-based logging configuration
type FileLoggingConfig struct {
	Enabled    bool   `json:"enabled"`
	Filename   string `json:"filename"` // empty = XDG cache path
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

// Config is the player configuration. Volume is a pointer so that an
// explicit 0 survives merging.
type Config struct {
	Volume         *float64           `json:"volume,omitempty"` // 0.0 to 1.0
	StreamFromFile bool               `json:"stream_from_file"`
	AudioBackend   string             `json:"audio_backend"`
	LogLevel       string             `json:"log_level"`
	FileLogging    *FileLoggingConfig `json:"file_logging,omitempty"`
}

// VolumeOrDefault returns the configured volume, or full volume when unset
func (c *Config) VolumeOrDefault() float64 {
	if c.Volume == nil {
		return 1.0
	}
	return *c.Volume
}

// XDGInterface defines the interface for XDG directory operations
type XDGInterface interface {
	GetConfigPaths(filename string) []string
	GetCachePath(purpose string) string
}

// ConfigManager handles loading, saving, and validating configuration
type ConfigManager struct {
	xdg XDGInterface
	fs  afero.Fs
}

// NewConfigManager creates a configuration manager on the real filesystem
func NewConfigManager() *ConfigManager {
	return NewConfigManagerWithFilesystem(afero.NewOsFs())
}

// NewConfigManagerWithFilesystem creates a configuration manager reading and
// writing through fs
func NewConfigManagerWithFilesystem(fs afero.Fs) *ConfigManager {
	slog.Debug("creating new config manager")
	return &ConfigManager{
		xdg: NewXDGDirs(),
		fs:  fs,
	}
}

// WithXDG replaces the directory lookup, mostly for tests
func (cm *ConfigManager) WithXDG(xdg XDGInterface) *ConfigManager {
	cm.xdg = xdg
	return cm
}

// GetDefaultConfig returns the default configuration
func (cm *ConfigManager) GetDefaultConfig() *Config {
	volume := 1.0
	defaultConfig := &Config{
		Volume:         &volume,
		StreamFromFile: false,
		AudioBackend:   "auto",
		LogLevel:       "warn",
		FileLogging: &FileLoggingConfig{
			Enabled:    false,
			Filename:   "",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}

	slog.Debug("generated default config",
		"volume", volume,
		"stream_from_file", defaultConfig.StreamFromFile,
		"log_level", defaultConfig.LogLevel,
		"audio_backend", defaultConfig.AudioBackend)

	return defaultConfig
}

// LoadFromFile loads and validates configuration from a specific file. Fields
// missing from the file keep their defaults.
func (cm *ConfigManager) LoadFromFile(filePath string) (*Config, error) {
	slog.Debug("loading config from file", "file_path", filePath)

	data, err := afero.ReadFile(cm.fs, filePath)
	if err != nil {
		slog.Error("failed to read config file", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := cm.GetDefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		slog.Error("failed to parse config JSON", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cm.ValidateConfig(config); err != nil {
		return nil, err
	}

	slog.Debug("config loaded successfully",
		"file_path", filePath,
		"volume", config.VolumeOrDefault(),
		"audio_backend", config.AudioBackend)

	return config, nil
}

// SaveToFile saves configuration to a specific file
func (cm *ConfigManager) SaveToFile(config *Config, filePath string) error {
	slog.Debug("saving config to file", "file_path", filePath)

	if err := cm.ValidateConfig(config); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	dir := filepath.Dir(filePath)
	if err := cm.fs.MkdirAll(dir, 0755); err != nil {
		slog.Error("failed to create config directory", "directory", dir, "error", err)
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(cm.fs, filePath, data, 0644); err != nil {
		slog.Error("failed to write config file", "file_path", filePath, "error", err)
		return fmt.Errorf("failed to write config file: %w", err)
	}

	slog.Info("config saved successfully", "file_path", filePath)
	return nil
}

// UserConfigPath is the per-user config file, the first place LoadConfig looks
func (cm *ConfigManager) UserConfigPath() string {
	return cm.xdg.GetConfigPaths(ConfigFileName)[0]
}

// LoadConfig loads configuration using XDG path discovery, falling back to
// the defaults when no file exists
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	configPaths := cm.xdg.GetConfigPaths(ConfigFileName)
	slog.Debug("searching for config file", "paths", configPaths)

	for i, configPath := range configPaths {
		if _, err := cm.fs.Stat(configPath); err == nil {
			slog.Debug("found config file", "path_index", i, "path", configPath)
			return cm.LoadFromFile(configPath)
		}
	}

	slog.Debug("no config file found, using defaults")
	return cm.GetDefaultConfig(), nil
}

// ValidateConfig reports every invalid value in one error
func (cm *ConfigManager) ValidateConfig(config *Config) error {
	var problems []string

	if v := config.VolumeOrDefault(); v < 0.0 || v > 1.0 {
		problems = append(problems, fmt.Sprintf("volume must be between 0.0 and 1.0, got %g", v))
	}

	if config.LogLevel != "" && !slices.Contains(validLogLevels, config.LogLevel) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s', must be one of: %s",
			config.LogLevel, strings.Join(validLogLevels, ", ")))
	}

	if !cm.IsValidAudioBackend(config.AudioBackend) {
		problems = append(problems, fmt.Sprintf("invalid audio backend '%s', must be one of: %s",
			config.AudioBackend, strings.Join(supportedAudioBackends, ", ")))
	}

	if fl := config.FileLogging; fl != nil {
		if fl.MaxSizeMB < 0 {
			problems = append(problems, fmt.Sprintf("file logging max_size_mb must be >= 0, got %d", fl.MaxSizeMB))
		}
		if fl.MaxBackups < 0 {
			problems = append(problems, fmt.Sprintf("file logging max_backups must be >= 0, got %d", fl.MaxBackups))
		}
		if fl.MaxAgeDays < 0 {
			problems = append(problems, fmt.Sprintf("file logging max_age_days must be >= 0, got %d", fl.MaxAgeDays))
		}
	}

	if len(problems) > 0 {
		errMsg := strings.Join(problems, "; ")
		slog.Error("config validation failed", "errors", errMsg)
		return fmt.Errorf("%w: %s", ErrInvalidConfig, errMsg)
	}

	slog.Debug("config validation passed")
	return nil
}

// MergeConfigs merges two configurations, with set fields of override taking precedence
func (cm *ConfigManager) MergeConfigs(base, override *Config) *Config {
	merged := *base

	if override.Volume != nil {
		v := *override.Volume
		merged.Volume = &v
		slog.Debug("merged volume override", "value", v)
	}
	if override.StreamFromFile {
		merged.StreamFromFile = true
	}
	if override.LogLevel != "" {
		merged.LogLevel = override.LogLevel
		slog.Debug("merged log level override", "value", override.LogLevel)
	}
	if override.AudioBackend != "" {
		merged.AudioBackend = override.AudioBackend
		slog.Debug("merged audio backend override", "value", override.AudioBackend)
	}
	if override.FileLogging != nil {
		fl := *override.FileLogging
		merged.FileLogging = &fl
	}

	return &merged
}

// ApplyEnvironmentOverrides returns a copy of config with the AUDIOTEST_*
// variables applied. Unparseable values are logged and ignored.
func (cm *ConfigManager) ApplyEnvironmentOverrides(config *Config) *Config {
	result := *config

	if volStr := os.Getenv(EnvVolume); volStr != "" {
		if vol, err := strconv.ParseFloat(volStr, 64); err == nil {
			result.Volume = &vol
			slog.Debug("applied volume override from environment", "value", vol)
		} else {
			slog.Warn("invalid "+EnvVolume+" environment variable", "value", volStr, "error", err)
		}
	}

	if streamStr := os.Getenv(EnvStream); streamStr != "" {
		if stream, err := strconv.ParseBool(streamStr); err == nil {
			result.StreamFromFile = stream
			slog.Debug("applied stream override from environment", "value", stream)
		} else {
			slog.Warn("invalid "+EnvStream+" environment variable", "value", streamStr, "error", err)
		}
	}

	if logLevel := os.Getenv(EnvLogLevel); logLevel != "" {
		result.LogLevel = logLevel
		slog.Debug("applied log level override from environment", "value", logLevel)
	}

	if audioBackend := os.Getenv(EnvAudioBackend); audioBackend != "" {
		if cm.IsValidAudioBackend(audioBackend) {
			result.AudioBackend = audioBackend
			slog.Debug("applied audio backend override from environment", "value", audioBackend)
		} else {
			slog.Warn("invalid "+EnvAudioBackend+" environment variable", "value", audioBackend)
		}
	}

	return &result
}

// ParseLogLevel maps a configured level name to a slog.Level
func ParseLogLevel(logLevel string) (slog.Level, error) {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level '%s', must be one of: %s", logLevel, strings.Join(validLogLevels, ", "))
	}
}

// ApplyLogLevelWithWriter configures slog with the specified log level and writer
func (cm *ConfigManager) ApplyLogLevelWithWriter(logLevel string, writer io.Writer) error {
	if logLevel == "" {
		slog.Debug("no log level specified, keeping current slog configuration")
		return nil
	}

	level, err := ParseLogLevel(logLevel)
	if err != nil {
		slog.Error("invalid log level for slog configuration", "log_level", logLevel, "error", err)
		return err
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	slog.Debug("slog configured successfully", "log_level", logLevel)
	return nil
}

// ResolveLogFilePath resolves the log file path using XDG cache directory when filename is empty
func (cm *ConfigManager) ResolveLogFilePath(filename string) string {
	if filename != "" {
		return filename
	}
	return filepath.Join(cm.xdg.GetCachePath("logs"), "audiotest.log")
}

// GetSupportedAudioBackends returns a list of all supported audio backend types
func (cm *ConfigManager) GetSupportedAudioBackends() []string {
	return slices.Clone(supportedAudioBackends)
}

// IsValidAudioBackend checks if an audio backend type is supported. The empty
// string means auto.
func (cm *ConfigManager) IsValidAudioBackend(backend string) bool {
	return backend == "" || slices.Contains(supportedAudioBackends, backend)
}
