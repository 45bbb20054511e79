package bankfeed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FeedConfig describes one bank feed endpoint.
type FeedConfig struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Cron   string `yaml:"cron"`
}

// Config holds the feed poller configuration.
type Config struct {
	Feeds []FeedConfig `yaml:"feeds"`
	Proxy string       `yaml:"proxy"`
	// Lookback is how many days before today each poll asks for.
	LookbackDays int `yaml:"lookback_days"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read feed config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse feed config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("FEED_LOOKBACK_DAYS"); v != "" {
		var days int
		if _, err := fmt.Sscanf(v, "%d", &days); err == nil {
			cfg.LookbackDays = days
		}
	}

	// Defaults
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 30
	}
	for i := range cfg.Feeds {
		if cfg.Feeds[i].Cron == "" {
			// Every day at 06:00.
			cfg.Feeds[i].Cron = "0 0 6 * * *"
		}
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if len(c.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	seen := make(map[string]bool, len(c.Feeds))
	for _, feed := range c.Feeds {
		if feed.Name == "" {
			return fmt.Errorf("feed name is required")
		}
		if seen[feed.Name] {
			return fmt.Errorf("duplicate feed name: %s", feed.Name)
		}
		seen[feed.Name] = true
		if feed.URL == "" {
			return fmt.Errorf("feed %s: url is required", feed.Name)
		}
	}
	return nil
}
