package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Paths lists every storage location the pipeline touches. Components take
// the paths they need at construction; nothing reads ambient global state.
type Paths struct {
	EventsFile     string `yaml:"events_file"`
	ClassifierFile string `yaml:"classifier_file"`
	RegressorFile  string `yaml:"regressor_file"`
	LedgerFile     string `yaml:"ledger_file"`
}

type Config struct {
	Data  Paths `yaml:"data"`
	DONKI struct {
		APIKey       string `yaml:"api_key"`
		HistoryYears int    `yaml:"history_years"`
	} `yaml:"donki"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Stream   string `yaml:"stream"`
	} `yaml:"redis"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Data.EventsFile == "" {
		return fmt.Errorf("data.events_file cannot be empty")
	}
	if c.Data.ClassifierFile == "" || c.Data.RegressorFile == "" {
		return fmt.Errorf("data.classifier_file and data.regressor_file cannot be empty")
	}
	if c.Data.LedgerFile == "" {
		return fmt.Errorf("data.ledger_file cannot be empty")
	}
	if c.DONKI.HistoryYears <= 0 {
		c.DONKI.HistoryYears = 10
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	return nil
}
