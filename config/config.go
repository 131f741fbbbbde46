package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds the process configuration for the simulator.
type Config struct {
	ListenAddr   string
	FeedURL      string
	PollInterval time.Duration
	StateDir     string
	TokenSupply  decimal.Decimal
	TLSDomains   []string
	CertCacheDir string
}

// ConfigTmp is the yaml representation of Config. The setup wizard
// marshals it when generating a config file.
type ConfigTmp struct {
	ListenAddr     string        `yaml:"listen_addr"`
	FeedURL        string        `yaml:"feed_url"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	StateDir       string        `yaml:"state_dir"`
	TokenSupplyStr string        `yaml:"token_supply,omitempty"`
	TLSDomains     []string      `yaml:"tls_domains,omitempty"`
	CertCacheDir   string        `yaml:"cert_cache_dir,omitempty"`
}

// Get reads configuration from the yaml file given with --config, or falls
// back to individual CLI flags.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	listenAddr := flag.String("listen", ":8080", "dashboard listen address")
	feedURL := flag.String("feed", "", "websocket quote feed url (empty disables the feed)")
	pollInterval := flag.Duration("pollinterval", time.Second, "quote poll interval")
	stateDir := flag.String("statedir", "simstate", "directory for the persistent trading state")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	cfg := Config{
		ListenAddr:   *listenAddr,
		FeedURL:      *feedURL,
		PollInterval: *pollInterval,
		StateDir:     *stateDir,
	}
	return withDefaults(cfg)
}

// FromFile loads configuration from a yaml file, bypassing CLI flags.
func FromFile(path string) (Config, error) {
	return getYaml(path)
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:   tmp.ListenAddr,
		FeedURL:      tmp.FeedURL,
		PollInterval: tmp.PollInterval,
		StateDir:     tmp.StateDir,
		TLSDomains:   tmp.TLSDomains,
		CertCacheDir: tmp.CertCacheDir,
	}

	if tmp.TokenSupplyStr != "" {
		supply, err := decimal.NewFromString(tmp.TokenSupplyStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'token_supply' param in yaml config (must be a decimal): %w", err)
		}
		if !supply.IsPositive() {
			return Config{}, fmt.Errorf("incorrect 'token_supply' param in yaml config: must be positive, got %s", supply)
		}
		cfg.TokenSupply = supply
	}

	return withDefaults(cfg)
}

func withDefaults(cfg Config) (Config, error) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.StateDir == "" {
		cfg.StateDir = "simstate"
	}
	if len(cfg.TLSDomains) > 0 && cfg.CertCacheDir == "" {
		cfg.CertCacheDir = "cert-cache"
	}
	return cfg, nil
}
