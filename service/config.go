package service

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all docproc service configuration.
type Config struct {
	Port     string       `yaml:"port"`
	LogLevel string       `yaml:"log_level"`
	TempDir  string       `yaml:"temp_dir"`
	Chunk    ChunkConfig  `yaml:"chunk"`
	Loader   LoaderConfig `yaml:"loader"`
}

// ChunkConfig controls the plain-text chunker.
type ChunkConfig struct {
	Limit int `yaml:"limit"`
}

// LoaderConfig selects the conversion backend.
type LoaderConfig struct {
	// Mode is "local" (in-process pipeline) or "remote" (conversion service).
	Mode string `yaml:"mode"`
	// URL is the remote conversion service base URL (remote mode only).
	URL string `yaml:"url"`
	// Timeout bounds remote conversion requests.
	Timeout time.Duration `yaml:"timeout"`
	// MaxFileSize is the largest file the local pipeline will process.
	MaxFileSize int64 `yaml:"max_file_size"`
}

// Defaults fills unset fields with production defaults.
func (c *Config) Defaults() {
	if c.Port == "" {
		c.Port = "8001"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Chunk.Limit <= 0 {
		c.Chunk.Limit = 500
	}
	if c.Loader.Mode == "" {
		c.Loader.Mode = "local"
	}
	if c.Loader.Timeout <= 0 {
		c.Loader.Timeout = 120 * time.Second
	}
	if c.Loader.MaxFileSize <= 0 {
		c.Loader.MaxFileSize = 100 * 1024 * 1024
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
