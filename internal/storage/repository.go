package storage

import (
	"time"

	"github.com/cardforge/card-arena/internal/game"
)

// DamageTotal aggregates action-log damage for one player in one battle.
type DamageTotal struct {
	PlayerID string `json:"player_id"`
	Total    int    `json:"total"`
}

type Repository interface {
	// Characters (registry records)
	GetCharacterByID(id uint) (*game.Character, error)
	SaveCharacter(c *game.Character) error
	GetTopCharacters(limit int) ([]game.Character, error)

	// Battles
	CreateBattle(b *game.Battle) error
	GetBattleByID(id uint) (*game.Battle, error)
	UpdateBattle(b *game.Battle) error
	// FindInProgressBattles returns every battle still running; used at
	// startup to rebuild the per-player active-battle pointers.
	FindInProgressBattles() ([]game.Battle, error)
	// ClaimStaleBattles marks up to limit in-progress battles idle since
	// cutoff as claimed by workerID, skipping battles freshly claimed by
	// another worker, and returns their ids.
	ClaimStaleBattles(cutoff time.Time, limit int, claimTTL time.Duration, workerID string) ([]uint, error)

	// Action log
	GetBattleActions(battleID uint) ([]game.BattleAction, error)
	GetDamageTotals(battleID uint) ([]DamageTotal, error)

	// Challenges
	UpsertChallenge(ch *game.Challenge) error
	GetChallenge(challengerID, challengedID string) (*game.Challenge, error)
	DeleteChallenge(challengerID, challengedID string) error
	DeleteChallengePair(a, b string) error
}
