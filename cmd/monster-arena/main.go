package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ericogr/monster-arena/internal/api"
	"github.com/ericogr/monster-arena/internal/constants"
	"github.com/ericogr/monster-arena/internal/logging"
	"github.com/ericogr/monster-arena/internal/service"
	"github.com/ericogr/monster-arena/internal/storage"
	"github.com/ericogr/monster-arena/internal/version"
)

func main() {
	// Path may be provided via MONSTER_ARENA_CONFIG or defaults to
	// ./monster_arena.yaml in the current working directory.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = constants.DefaultConfigPath
	}
	cfg := loadConfigOrExit(configPath)
	logging.SetLevel(cfg.LogLevel)
	logging.Info("starting", logging.Fields{"version": version.Version, "commit": version.Commit})

	d := loadDexOrExit(cfg.DataDir)
	runner := loadScriptsOrExit(cfg, d)

	if dbPath := os.Getenv(constants.EnvDatabasePath); dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	db, err := storage.OpenAndMigrate(cfg.DatabasePath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{"path": cfg.DatabasePath})
	}
	repo := storage.NewSQLiteRepository(db)

	manager := service.NewManager(d, runner, repo, service.Options{
		ActiveCount:         cfg.Battle.ActiveCount,
		TickInterval:        cfg.Battle.TickInterval,
		SelectionTimeout:    cfg.Battle.SelectionTimeout,
		ForfeitOnDisconnect: cfg.Battle.ForfeitOnDisconnect,
		DebugExperience:     cfg.Battle.DebugExperience,
	})
	if n, err := manager.Resume(); err != nil {
		logging.Error("failed to resume battles", err, nil)
	} else if n > 0 {
		logging.Info("battles resumed", logging.Fields{"count": n})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go manager.Run(ctx)

	router := api.NewRouter(api.NewBattleHandler(manager, repo))
	runServer(ctx, cfg.ServerAddress, router)
}
