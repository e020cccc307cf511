// Package config loads process configuration from the environment.
//
// A .env file, when present, is loaded first; variables already set in the
// environment win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "SIMTRAN"

type Config struct {
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	DataDir      string `envconfig:"DATA_DIR" default:"./data"`
	DBPath       string `envconfig:"DB_PATH"`
	SettingsPath string `envconfig:"SETTINGS_PATH"`

	// Engines are registered in this order; the settings engine index
	// points into it.
	Engines []string `envconfig:"ENGINES" default:"google,mymemory,systran,ollama,openrouter"`

	GoogleCredentials string   `envconfig:"GOOGLE_CREDENTIALS"`
	MyMemoryEmail     string   `envconfig:"MYMEMORY_EMAIL"`
	SystranAPIKey     string   `envconfig:"SYSTRAN_API_KEY"`
	OllamaURL         string   `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	OllamaModels      []string `envconfig:"OLLAMA_MODELS"`
	OpenRouterAPIKey  string   `envconfig:"OPENROUTER_API_KEY"`
	OpenRouterModels  []string `envconfig:"OPENROUTER_MODELS"`

	TesseractPath    string   `envconfig:"TESSERACT_PATH" default:"tesseract"`
	TesseractDataDir string   `envconfig:"TESSDATA_DIR"`
	OCRLanguages     []string `envconfig:"OCR_LANGUAGES" default:"eng"`
}

// Load reads envFile (ignored when missing) and then the SIMTRAN_*
// environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.EngineNames()) == 0 {
		return fmt.Errorf("%s_ENGINES must name at least one engine", envPrefix)
	}
	if strings.TrimSpace(c.DataDir) == "" && (c.DBPath == "" || c.SettingsPath == "") {
		return fmt.Errorf("%s_DATA_DIR is required unless both DB_PATH and SETTINGS_PATH are set", envPrefix)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "simtran.db")
	}
	if c.SettingsPath == "" {
		c.SettingsPath = filepath.Join(c.DataDir, "settings.yaml")
	}
	if c.GoogleCredentials == "" {
		c.GoogleCredentials = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
}

// EngineNames returns the configured engine names, normalized and without
// duplicates.
func (c *Config) EngineNames() []string {
	seen := make(map[string]struct{}, len(c.Engines))
	names := make([]string, 0, len(c.Engines))
	for _, raw := range c.Engines {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
