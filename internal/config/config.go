package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	DataDir  string `json:"data_dir"`
	LogLevel string `json:"log_level"`
	HTTP     struct {
		Listen string `json:"listen"`
	} `json:"http"`
	Health struct {
		IntervalSeconds     int `json:"interval_seconds"`
		MaxConcurrentProbes int `json:"max_concurrent_probes"`
	} `json:"health"`
	Genesis struct {
		URL   string `json:"url"`
		Token string `json:"token"`
	} `json:"genesis"`
	Proxy struct {
		URL string `json:"url"`
	} `json:"proxy"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:  filepath.Join(os.Getenv("HOME"), ".famille"),
		LogLevel: "info",
	}
	cfg.HTTP.Listen = ":8090"
	cfg.Health.IntervalSeconds = 30
	cfg.Health.MaxConcurrentProbes = 4
	cfg.Genesis.URL = "http://localhost:3200"

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if url := os.Getenv("FAMILLE_GENESIS_URL"); url != "" {
		cfg.Genesis.URL = url
	}
	if token := os.Getenv("FAMILLE_GENESIS_TOKEN"); token != "" {
		cfg.Genesis.Token = token
	}
	if url := os.Getenv("FAMILLE_PROXY_URL"); url != "" {
		cfg.Proxy.URL = url
	}

	return cfg, nil
}

func writeDefaults(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename default config: %w", err)
	}
	return nil
}
