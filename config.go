package moneyhero

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// Config is the content of the configuration file.
type Config struct {
	Currency     string        `toml:"currency"`
	Achievements string        `toml:"achievements"` // optional YAML catalog path
	Rules        RulesConfig   `toml:"rules"`
	Storage      StorageConfig `toml:"storage"`
	Server       ServerConfig  `toml:"server"`
}

// RulesConfig mirrors Rules with plain numbers.
type RulesConfig struct {
	BaseExp       int64   `toml:"base_exp"`
	GrowthRate    float64 `toml:"growth_rate"`
	ExpGainRate   float64 `toml:"exp_gain_rate"`
	ExpLossRate   float64 `toml:"exp_loss_rate"`
	StartingMoney float64 `toml:"starting_money"`
}

// StorageConfig selects where the player state is kept.
type StorageConfig struct {
	Backend string `toml:"backend"` // file, sqlite or memory
	Path    string `toml:"path"`
	Key     string `toml:"key"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr    string `toml:"addr"`
	Metrics bool   `toml:"metrics"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Currency: "USD",
		Rules: RulesConfig{
			BaseExp:     100,
			GrowthRate:  1.1,
			ExpGainRate: 0.1,
			ExpLossRate: 0.07,
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    ".moneyhero",
			Key:     DefaultKey,
		},
		Server: ServerConfig{
			Addr:    "127.0.0.1:8080",
			Metrics: true,
		},
	}
}

// LoadConfig reads a TOML configuration file over DefaultConfig.
// A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return cfg, fmt.Errorf("could not read config %q: %w", path, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return cfg, fmt.Errorf("config %q: unknown keys %v", path, keys)
	}
	return cfg, nil
}

// RulesValue converts the rules section into Rules.
func (c Config) RulesValue() (Rules, error) {
	r := Rules{
		BaseExp:       c.Rules.BaseExp,
		GrowthRate:    decimal.NewFromFloat(c.Rules.GrowthRate),
		ExpGainRate:   decimal.NewFromFloat(c.Rules.ExpGainRate),
		ExpLossRate:   decimal.NewFromFloat(c.Rules.ExpLossRate),
		StartingMoney: decimal.NewFromFloat(c.Rules.StartingMoney),
	}
	return r, r.Validate()
}

// Catalog returns the configured achievements catalog.
func (c Config) Catalog() (*Catalog, error) {
	if c.Achievements == "" {
		return DefaultCatalog(), nil
	}
	return LoadCatalog(c.Achievements)
}
