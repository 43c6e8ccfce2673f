package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cardforge/card-arena/internal/game"
)

type classEntry struct {
	Name                string `json:"name"`
	Strength            int    `json:"strength"`
	Defense             int    `json:"defense"`
	Agility             int    `json:"agility"`
	Vitality            int    `json:"vitality"`
	Intelligence        int    `json:"intelligence"`
	MagicPower          int    `json:"magic_power"`
	PhysicalWeight      int    `json:"physical_weight"`
	MagicalWeight       int    `json:"magical_weight"`
	Balanced            bool   `json:"balanced"`
	HealthBonusPercent  int    `json:"health_bonus_percent"`
	DefenseBonusPercent int    `json:"defense_bonus_percent"`
	DodgeBonusPercent   int    `json:"dodge_bonus_percent"`
	CritBonus           int    `json:"crit_bonus"`
}

type rawConfig struct {
	ClassList []classEntry `json:"class_list"`
	Server    *struct {
		Address string `json:"address"`
	} `json:"server"`
	BattleTimeoutSeconds int    `json:"battle_timeout_seconds"`
	TurnTimeoutSeconds   int    `json:"turn_timeout_seconds"`
	OperatorID           string `json:"operator_id"`
	DBPath               string `json:"db_path"`
}

// LoadedConfig is the validated runtime configuration.
type LoadedConfig struct {
	Classes       game.ClassTable
	ServerAddress string
	BattleTimeout time.Duration
	TurnTimeout   time.Duration
	OperatorID    string
	DBPath        string
}

// LoadConfig reads the configuration file at path. The class table starts
// from the built-in defaults; entries in `class_list` override individual
// rows. Timeouts default to one day (battle) and ten minutes (turn).
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	table := game.DefaultClassTable()
	seen := make(map[string]struct{}, len(rc.ClassList))
	for _, e := range rc.ClassList {
		name := strings.ToLower(strings.TrimSpace(e.Name))
		if name == "" {
			return nil, fmt.Errorf("config file %s: class entry missing 'name'", path)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("config file %s: duplicate class '%s'", path, e.Name)
		}
		seen[name] = struct{}{}
		if _, known := table[game.Class(name)]; !known {
			return nil, fmt.Errorf("config file %s: unknown class '%s'", path, e.Name)
		}
		for _, m := range []int{e.Strength, e.Defense, e.Agility, e.Vitality, e.Intelligence, e.MagicPower} {
			if m < 0 || m > 300 {
				return nil, fmt.Errorf("config file %s: class '%s' multiplier out of range [0,300]", path, e.Name)
			}
		}
		table[game.Class(name)] = game.ClassParams{
			Name:                game.Class(name),
			Strength:            e.Strength,
			Defense:             e.Defense,
			Agility:             e.Agility,
			Vitality:            e.Vitality,
			Intelligence:        e.Intelligence,
			MagicPower:          e.MagicPower,
			PhysicalWeight:      e.PhysicalWeight,
			MagicalWeight:       e.MagicalWeight,
			Balanced:            e.Balanced,
			HealthBonusPercent:  e.HealthBonusPercent,
			DefenseBonusPercent: e.DefenseBonusPercent,
			DodgeBonusPercent:   e.DodgeBonusPercent,
			CritBonus:           e.CritBonus,
		}
	}

	battleTimeout := 24 * time.Hour
	if rc.BattleTimeoutSeconds > 0 {
		battleTimeout = time.Duration(rc.BattleTimeoutSeconds) * time.Second
	}
	turnTimeout := 10 * time.Minute
	if rc.TurnTimeoutSeconds > 0 {
		turnTimeout = time.Duration(rc.TurnTimeoutSeconds) * time.Second
	}

	addr := ":8080"
	if rc.Server != nil && rc.Server.Address != "" {
		addr = rc.Server.Address
	}
	dbPath := "./data/arena.db"
	if rc.DBPath != "" {
		dbPath = rc.DBPath
	}

	return &LoadedConfig{
		Classes:       table,
		ServerAddress: addr,
		BattleTimeout: battleTimeout,
		TurnTimeout:   turnTimeout,
		OperatorID:    strings.TrimSpace(rc.OperatorID),
		DBPath:        dbPath,
	}, nil
}
