package config

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all gridplan configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Ledger     LedgerConfig     `toml:"ledger"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	PlayerName   string `toml:"player_name,omitempty"`
	DefaultLevel int    `toml:"default_level"`
	LevelsFile   string `toml:"levels_file,omitempty"`
}

// LedgerConfig selects the investment/discount policy.
type LedgerConfig struct {
	Policy         string   `toml:"policy"`
	DiscountFactor *float64 `toml:"discount_factor,omitempty"`
	Budget         *float64 `toml:"budget,omitempty"`
}

// ServerConfig holds settings for `gridplan serve`.
type ServerConfig struct {
	Addr         string  `toml:"addr"`
	TickSeconds  int     `toml:"tick_seconds"`
	RateLimit    float64 `toml:"rate_limit"`
	RateBurst    int     `toml:"rate_burst"`
	EventsBuffer int     `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultLevel: 1,
		},
		Ledger: LedgerConfig{
			Policy: DefaultPolicyName,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8787",
			TickSeconds:  1,
			RateLimit:    10,
			RateBurst:    20,
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir is the config directory, $XDG_CONFIG_HOME/gridplan or ~/.config/gridplan.
func Dir() string { return xdgDir("XDG_CONFIG_HOME", ".config") }

// DataDir is where the results database lives, $XDG_DATA_HOME/gridplan or
// ~/.local/share/gridplan.
func DataDir() string { return xdgDir("XDG_DATA_HOME", ".local", "share") }

func xdgDir(env string, fallback ...string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, "gridplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(append(append([]string{home}, fallback...), "gridplan")...)
}

// Path is the config file location.
func Path() string { return filepath.Join(Dir(), "config.toml") }

// Exists reports whether the config file is present.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Load reads the config file. A missing file yields the defaults.
func Load() (Config, error) { return LoadFrom(Path()) }

// LoadFrom decodes the TOML file at path over the defaults, so keys the file
// leaves out keep their default values. A missing file is not an error.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	_, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return DefaultConfig(), nil
	case err != nil:
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to the config file.
func Save(cfg Config) error { return SaveTo(Path(), cfg) }

// SaveTo encodes cfg as TOML at path, creating the directory if needed.
func SaveTo(path string, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// PlayerName is $GRIDPLAN_PLAYER, or the configured name when unset.
func PlayerName(cfg Config) string {
	return cmp.Or(os.Getenv("GRIDPLAN_PLAYER"), cfg.General.PlayerName)
}

// PolicyName is $GRIDPLAN_POLICY, or the configured policy when unset.
func PolicyName(cfg Config) string {
	return cmp.Or(os.Getenv("GRIDPLAN_POLICY"), cfg.Ledger.Policy)
}

// ResolvePolicy looks up the configured policy and applies the optional
// discount factor override. Unknown policy names fall back to the default.
func ResolvePolicy(cfg Config) Policy {
	p, _ := LookupPolicy(PolicyName(cfg))
	if cfg.Ledger.DiscountFactor != nil {
		p.DiscountFactor = *cfg.Ledger.DiscountFactor
	}
	return p
}
