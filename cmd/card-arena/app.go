package main

import (
	"github.com/cardforge/card-arena/internal/config"
	"github.com/cardforge/card-arena/internal/logging"
	"github.com/cardforge/card-arena/internal/storage"
)

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid arena configuration", err, logging.Fields{"config_path": path, "hint": "create an arena_config.json with an optional 'class_list' array of class overrides (name,strength,defense,agility,vitality,intelligence,magic_power,...) and optional keys: server.address, battle_timeout_seconds, turn_timeout_seconds, operator_id, db_path"})
	}
	return cfg
}

func createRepositoryOrExit(dbPath string) storage.Repository {
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}
	return storage.NewSQLiteRepository(db)
}
