package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type rawBattle struct {
	ActiveCount         int    `yaml:"active_count"`
	TickInterval        string `yaml:"tick_interval"`
	SelectionTimeout    string `yaml:"selection_timeout"`
	ScriptTimeout       string `yaml:"script_timeout"`
	ForfeitOnDisconnect *bool  `yaml:"forfeit_on_disconnect"`
	DebugExperience     bool   `yaml:"debug_experience"`
}

type rawConfig struct {
	Server *struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database   string     `yaml:"database"`
	DataDir    string     `yaml:"data_dir"`
	ScriptsDir string     `yaml:"scripts_dir"`
	Battle     *rawBattle `yaml:"battle"`
	LogLevel   string     `yaml:"log_level"`
}

// Battle holds the session manager settings. A zero SelectionTimeout
// disables selection timeouts.
type Battle struct {
	ActiveCount         int
	TickInterval        time.Duration
	SelectionTimeout    time.Duration
	ScriptTimeout       time.Duration
	ForfeitOnDisconnect bool
	DebugExperience     bool
}

// LoadedConfig is the validated configuration with defaults applied.
type LoadedConfig struct {
	ServerAddress string
	DatabasePath  string
	DataDir       string
	ScriptsDir    string
	Battle        Battle
	LogLevel      string
}

const (
	defaultAddress          = ":8080"
	defaultDatabase         = "./data/arena.db"
	defaultTickInterval     = 100 * time.Millisecond
	defaultSelectionTimeout = 2 * time.Minute
	defaultScriptTimeout    = 200 * time.Millisecond
	maxActiveCount          = 3
)

// LoadConfig reads the YAML configuration at path. data_dir is required;
// every other key has a default.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(path, b)
}

// Parse validates raw YAML. name only labels errors.
func Parse(name string, b []byte) (*LoadedConfig, error) {
	var rc rawConfig
	if err := yaml.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", name, err)
	}
	if strings.TrimSpace(rc.DataDir) == "" {
		return nil, fmt.Errorf("config file %s: data_dir is required (directory holding species.yaml and moves.yaml)", name)
	}

	cfg := &LoadedConfig{
		ServerAddress: defaultAddress,
		DatabasePath:  defaultDatabase,
		DataDir:       strings.TrimSpace(rc.DataDir),
		ScriptsDir:    strings.TrimSpace(rc.ScriptsDir),
		LogLevel:      "info",
		Battle: Battle{
			ActiveCount:         1,
			TickInterval:        defaultTickInterval,
			SelectionTimeout:    defaultSelectionTimeout,
			ScriptTimeout:       defaultScriptTimeout,
			ForfeitOnDisconnect: true,
		},
	}
	if rc.Server != nil && rc.Server.Address != "" {
		cfg.ServerAddress = rc.Server.Address
	}
	if rc.Database != "" {
		cfg.DatabasePath = rc.Database
	}
	if rc.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(rc.LogLevel)
	}

	if bt := rc.Battle; bt != nil {
		if bt.ActiveCount != 0 {
			if bt.ActiveCount < 1 || bt.ActiveCount > maxActiveCount {
				return nil, fmt.Errorf("config file %s: battle.active_count must be between 1 and %d", name, maxActiveCount)
			}
			cfg.Battle.ActiveCount = bt.ActiveCount
		}
		for _, d := range []struct {
			key string
			raw string
			dst *time.Duration
		}{
			{"tick_interval", bt.TickInterval, &cfg.Battle.TickInterval},
			{"selection_timeout", bt.SelectionTimeout, &cfg.Battle.SelectionTimeout},
			{"script_timeout", bt.ScriptTimeout, &cfg.Battle.ScriptTimeout},
		} {
			if d.raw == "" {
				continue
			}
			v, err := time.ParseDuration(d.raw)
			if err != nil || v < 0 {
				return nil, fmt.Errorf("config file %s: battle.%s is not a valid duration: %q", name, d.key, d.raw)
			}
			*d.dst = v
		}
		if cfg.Battle.TickInterval == 0 {
			return nil, fmt.Errorf("config file %s: battle.tick_interval must be positive", name)
		}
		if bt.ForfeitOnDisconnect != nil {
			cfg.Battle.ForfeitOnDisconnect = *bt.ForfeitOnDisconnect
		}
		cfg.Battle.DebugExperience = bt.DebugExperience
	}
	return cfg, nil
}
