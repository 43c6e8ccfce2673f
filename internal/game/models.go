package game

import (
	"time"

	"gorm.io/gorm"
)

// StatMax bounds every raw stat. Values above it are clamped on write.
const StatMax = 255

// VeteranWins is the cumulative win count that flips the veteran flag.
const VeteranWins = 10

// Character is the registry-owned record for one playable character. Raw
// stats stay within [0, StatMax]; derived combat numbers are never stored,
// they are recomputed from these fields on demand.
type Character struct {
	gorm.Model
	OwnerID      string `json:"owner_id" gorm:"index"`
	Name         string `json:"name" gorm:"size:32"`
	Class        Class  `json:"class"`
	Strength     int    `json:"strength"`
	Defense      int    `json:"defense"`
	Agility      int    `json:"agility"`
	Vitality     int    `json:"vitality"`
	Intelligence int    `json:"intelligence"`
	MagicPower   int    `json:"magic_power"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	Veteran      bool   `json:"veteran"`
	Experience   int    `json:"experience"`
	StatPoints   int    `json:"stat_points"`

	WeaponID *uint   `json:"weapon_id"`
	Weapon   *Weapon `json:"weapon"`
	ArmorID  *uint   `json:"armor_id"`
	Armor    *Armor  `json:"armor"`
}

// Weapon contributes flat offensive bonuses. Which bonus applies to damage
// depends on the wielder's class (casters draw on MagicBonus).
type Weapon struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:32"`
	AttackBonus int    `json:"attack_bonus"`
	MagicBonus  int    `json:"magic_bonus"`
}

// Armor contributes flat defensive bonuses.
type Armor struct {
	gorm.Model
	Name         string `json:"name" gorm:"size:32"`
	DefenseBonus int    `json:"defense_bonus"`
	HealthBonus  int    `json:"health_bonus"`
	AgilityBonus int    `json:"agility_bonus"`
}

type BattleState string

const (
	BattleInactive           BattleState = "inactive"
	BattleWaitingForOpponent BattleState = "waiting_for_opponent"
	BattleInProgress         BattleState = "in_progress"
	BattleCompleted          BattleState = "completed"
	BattleCanceled           BattleState = "canceled"
)

type TurnState string

const (
	TurnNotStarted TurnState = "not_started"
	TurnPlayer1    TurnState = "player1_turn"
	TurnPlayer2    TurnState = "player2_turn"
	TurnCompleted  TurnState = "turn_completed"
)

// ActionKind identifies one entry in a battle's action log.
type ActionKind string

const (
	ActionNormal   ActionKind = "normal"
	ActionSpecial1 ActionKind = "special1"
	ActionSpecial2 ActionKind = "special2"
	ActionEndTurn  ActionKind = "end_turn"
	ActionForfeit  ActionKind = "forfeit"
	ActionTimeout  ActionKind = "timeout"
)

// End reasons reported with battle termination events.
const (
	ReasonKnockout      = "knockout"
	ReasonForfeit       = "forfeit"
	ReasonTurnTimeout   = "turn_timeout"
	ReasonBattleTimeout = "battle_timeout"
	ReasonAdminCancel   = "admin_cancel"
)

// Battle is the persisted state machine for one fight. Snapshots always
// holds exactly two rows (slot 0 for player 1, slot 1 for player 2) and is
// frozen at creation except for health, attack points and the round flags.
type Battle struct {
	gorm.Model
	Player1ID    string `json:"player1_id" gorm:"index"`
	Player2ID    string `json:"player2_id" gorm:"index"`
	Character1ID uint   `json:"character1_id"`
	Character2ID uint   `json:"character2_id"`

	State       BattleState `json:"state" gorm:"index"`
	TurnState   TurnState   `json:"turn_state"`
	CurrentTurn string      `json:"current_turn"`
	TurnCount   int         `json:"turn_count"`

	Snapshots []BattleSnapshot `json:"snapshots"`
	Actions   []BattleAction   `json:"actions"`

	StartedAt    time.Time `json:"started_at"`
	LastActionAt time.Time `json:"last_action_at"`

	Winner         string `json:"winner"`
	EndReason      string `json:"end_reason"`
	ResultRecorded bool   `json:"-"`

	// Claim fields let a single scanner worker own timeout handling for a
	// battle without racing other workers.
	ClaimedBy string    `json:"-"`
	ClaimedAt time.Time `json:"-"`
}

// IsParticipant reports whether the given player fights in this battle.
func (b *Battle) IsParticipant(playerID string) bool {
	return playerID == b.Player1ID || playerID == b.Player2ID
}

// OpponentOf returns the other participant's id. Empty for non-participants.
func (b *Battle) OpponentOf(playerID string) string {
	switch playerID {
	case b.Player1ID:
		return b.Player2ID
	case b.Player2ID:
		return b.Player1ID
	}
	return ""
}

// SnapshotFor returns the snapshot belonging to the given player, or nil.
func (b *Battle) SnapshotFor(playerID string) *BattleSnapshot {
	for i := range b.Snapshots {
		if b.Snapshots[i].PlayerID == playerID {
			return &b.Snapshots[i]
		}
	}
	return nil
}

// Terminal reports whether the battle reached a final state. Terminal
// battles accept no further mutation.
func (b *Battle) Terminal() bool {
	return b.State == BattleCompleted || b.State == BattleCanceled
}

// BattleSnapshot freezes one combatant's derived numbers at battle start.
// Only CurrentHealth, AttackPoints, TurnEnded and Forfeited change during
// the fight; everything else stays as computed at creation so concurrent
// character edits cannot destabilize an in-progress battle.
type BattleSnapshot struct {
	gorm.Model
	BattleID    uint   `json:"-" gorm:"index"`
	Slot        int    `json:"slot"`
	PlayerID    string `json:"player_id"`
	CharacterID uint   `json:"character_id"`

	MaxHealth     int `json:"max_health"`
	CurrentHealth int `json:"current_health"`
	AttackPower   int `json:"attack_power"`
	DefensePower  int `json:"defense_power"`
	DodgeChance   int `json:"dodge_chance"`
	Intelligence  int `json:"intelligence"`

	AttackPoints int  `json:"attack_points"`
	TurnEnded    bool `json:"turn_ended"`
	Forfeited    bool `json:"forfeited"`
}

// BattleAction is one immutable action-log record.
type BattleAction struct {
	gorm.Model
	BattleID   uint       `json:"-" gorm:"index"`
	RecordID   string     `json:"record_id" gorm:"size:36"`
	ActorID    string     `json:"actor_id"`
	Kind       ActionKind `json:"kind"`
	Damage     int        `json:"damage"`
	Critical   bool       `json:"critical"`
	Dodged     bool       `json:"dodged"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Challenge is a pending direct invitation. At most one row exists per
// ordered (challenger, challenged) pair; re-issuing overwrites it.
type Challenge struct {
	gorm.Model
	ChallengerID string `json:"challenger_id" gorm:"uniqueIndex:idx_challenge_pair"`
	ChallengedID string `json:"challenged_id" gorm:"uniqueIndex:idx_challenge_pair"`
	CharacterID  uint   `json:"character_id"`
}
