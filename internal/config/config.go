package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything the gallery client needs at startup.
type Config struct {
	APIBind        string
	UploadEndpoint string
	UploadKey      string
	LogFile        string
	LogLevel       string
	Limits         Limits
}

// Limits are the upload form validation thresholds.
type Limits struct {
	MaxImageBytes  int64
	TitleMin       int
	TitleMax       int
	DescriptionMax int
}

const (
	defaultConfigPath     = "~/.config/gallery/config.toml"
	defaultAPIBind        = "127.0.0.1:3000"
	defaultUploadEndpoint = "http://127.0.0.1:3000/api/upload"
	defaultLogFile        = "~/.local/state/gallery/gallery.log"
	defaultLogLevel       = "info"

	defaultMaxImageBytes  = 100000
	defaultTitleMin       = 3
	defaultTitleMax       = 10
	defaultDescriptionMax = 10
)

type rawLimits struct {
	MaxImageBytes  int64 `toml:"max_image_bytes"`
	TitleMin       int   `toml:"title_min"`
	TitleMax       int   `toml:"title_max"`
	DescriptionMax int   `toml:"description_max"`
}

type rawConfig struct {
	APIBind        string    `toml:"api_bind" env:"GALLERY_API_BIND"`
	UploadEndpoint string    `toml:"upload_endpoint" env:"GALLERY_UPLOAD_ENDPOINT"`
	UploadKey      string    `toml:"upload_key" env:"GALLERY_UPLOAD_KEY"`
	LogFile        string    `toml:"log_file" env:"GALLERY_LOG_FILE"`
	LogLevel       string    `toml:"log_level" env:"GALLERY_LOG_LEVEL"`
	Limits         rawLimits `toml:"limits"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBind:        defaultAPIBind,
		UploadEndpoint: defaultUploadEndpoint,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
		Limits: Limits{
			MaxImageBytes:  defaultMaxImageBytes,
			TitleMin:       defaultTitleMin,
			TitleMax:       defaultTitleMax,
			DescriptionMax: defaultDescriptionMax,
		},
	}
}

// Load reads the gallery config, falling back to defaults when the file is
// missing, then applies GALLERY_* environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := cleanenv.ReadEnv(&raw); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	return normalize(raw)
}

func normalize(raw rawConfig) (Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(raw.APIBind); v != "" {
		cfg.APIBind = v
	}
	if v := strings.TrimSpace(raw.UploadEndpoint); v != "" {
		cfg.UploadEndpoint = v
	}
	cfg.UploadKey = strings.TrimSpace(raw.UploadKey)
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}

	if raw.Limits.MaxImageBytes > 0 {
		cfg.Limits.MaxImageBytes = raw.Limits.MaxImageBytes
	}
	if raw.Limits.TitleMin > 0 {
		cfg.Limits.TitleMin = raw.Limits.TitleMin
	}
	if raw.Limits.TitleMax > 0 {
		cfg.Limits.TitleMax = raw.Limits.TitleMax
	}
	if raw.Limits.DescriptionMax > 0 {
		cfg.Limits.DescriptionMax = raw.Limits.DescriptionMax
	}
	if cfg.Limits.TitleMin > cfg.Limits.TitleMax {
		return Config{}, fmt.Errorf("limits: title_min %d exceeds title_max %d", cfg.Limits.TitleMin, cfg.Limits.TitleMax)
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
