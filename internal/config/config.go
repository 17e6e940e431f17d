package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds configuration for the covweb server.
type ServerConfig struct {
	Addr       string `yaml:"addr"`        // Listen address (default ":8500")
	LogLevel   string `yaml:"log_level"`   // Log level: debug, info, warn, error
	LogFormat  string `yaml:"log_format"`  // Log format: text, json
	DBPath     string `yaml:"db_path"`     // SQLite database path (default ~/.covweb/covweb.db, ":memory:" for testing)
	VideoDir   string `yaml:"video_dir"`   // Directory holding uploaded inspection videos
	ThumbDir   string `yaml:"thumb_dir"`   // Directory holding generated video thumbnails
	BackendURL string `yaml:"backend_url"` // Listing backend used by the web UI (empty: this server)
	Fixtures   string `yaml:"fixtures"`    // Optional YAML fixtures loaded at startup
	Secure     bool   `yaml:"secure"`      // Use secure cookies (HTTPS)
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8500",
		LogLevel:  "info",
		LogFormat: "text",
		VideoDir:  "uploads",
		ThumbDir:  "thumbnails",
	}
}

// ResolvedBackendURL returns BackendURL, or this server's own address when
// BackendURL is empty.
func (c ServerConfig) ResolvedBackendURL() string {
	if c.BackendURL != "" {
		return strings.TrimRight(c.BackendURL, "/")
	}
	host, port, ok := strings.Cut(c.Addr, ":")
	if !ok {
		return "http://" + c.Addr
	}
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return "http://" + host + ":" + port
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the file
// keep their current values.
func LoadFile(path string, cfg *ServerConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays COV_* environment variables onto cfg.
// COV_HOST and COV_PORT together override COV_ADDR.
func ApplyEnv(cfg *ServerConfig) error {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *ServerConfig, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"COV_ADDR":        &cfg.Addr,
		"COV_LOG_LEVEL":   &cfg.LogLevel,
		"COV_LOG_FORMAT":  &cfg.LogFormat,
		"COV_DB_PATH":     &cfg.DBPath,
		"COV_VIDEO_DIR":   &cfg.VideoDir,
		"COV_THUMB_DIR":   &cfg.ThumbDir,
		"COV_BACKEND_URL": &cfg.BackendURL,
		"COV_FIXTURES":    &cfg.Fixtures,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("COV_SECURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COV_SECURE: %w", err)
		}
		cfg.Secure = b
	}

	host, hasHost := lookup("COV_HOST")
	port, hasPort := lookup("COV_PORT")
	if hasPort && port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("COV_PORT: %w", err)
		}
		if !hasHost {
			host = ""
		}
		cfg.Addr = host + ":" + port
	}
	return nil
}
