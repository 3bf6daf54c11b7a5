package main

import (
	"github.com/ericogr/monster-arena/internal/config"
	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/logging"
	"github.com/ericogr/monster-arena/internal/script"
)

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid monster arena configuration", err, logging.Fields{"config_path": path, "hint": "create a monster_arena.yaml with at least data_dir pointing at species.yaml and moves.yaml"})
	}
	return cfg
}

func loadDexOrExit(dir string) *dex.Memory {
	d, err := dex.LoadDir(dir)
	if err != nil {
		logging.Fatal("Failed to load dex data", err, logging.Fields{"data_dir": dir})
	}
	return d
}

// loadScriptsOrExit compiles every script-marked move and item up front so
// a broken script stops startup instead of failing mid-battle.
func loadScriptsOrExit(cfg *config.LoadedConfig, d *dex.Memory) *script.Runner {
	var src script.Source = script.MapSource{}
	if cfg.ScriptsDir != "" {
		src = script.DirSource(cfg.ScriptsDir)
	}
	runner := script.NewRunner(src, cfg.Battle.ScriptTimeout)
	ids := d.ScriptIDs()
	if err := runner.Precompile(ids); err != nil {
		logging.Fatal("Failed to compile scripts", err, logging.Fields{"scripts_dir": cfg.ScriptsDir})
	}
	logging.Info("scripts compiled", logging.Fields{"count": len(ids)})
	return runner
}
