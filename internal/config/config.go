// Package config loads the YAML configuration file. The loaded Config is
// plain data; the entrypoint loads it once and shares it by value through
// the registry so every tool sees the same settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration tree.
type Config struct {
	LogLevel  string    `yaml:"log_level"`
	LogDir    string    `yaml:"log_dir"`
	OutputDir string    `yaml:"output_dir"`
	OCR       OCRConfig `yaml:"ocr"`
}

// OCRConfig configures the vision-language OCR engine.
type OCRConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	Region         string `yaml:"region"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout"`
	MaxRetries     uint   `yaml:"max_retries"`
	DPI            int    `yaml:"dpi"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		LogLevel: "info",
		LogDir:   filepath.Join(home, ".pdfkit", "logs"),
		OCR: OCRConfig{
			Model:          "flash",
			Region:         "beijing",
			TimeoutSeconds: 60,
			MaxRetries:     3,
			DPI:            300,
		},
	}
}

// DefaultPath returns ~/.pdfkit/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".pdfkit", "config.yaml")
}

// Load reads the config file at path, or DefaultPath when path is empty.
// A missing file yields the defaults; a malformed file is an error.
// ${VAR} references in string values are expanded from the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
