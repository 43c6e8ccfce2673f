// Package engine owns the battle state machine: snapshot creation, turn
// order, attack resolution, round progression, timeouts and termination.
// Functions mutate the battle in memory only; persistence and progression
// payout belong to the caller.
package engine

import (
	"fmt"
	"time"

	"github.com/cardforge/card-arena/internal/game"
	"github.com/cardforge/card-arena/internal/rng"
	"github.com/cardforge/card-arena/internal/stats"
)

// MaxAttackPoints caps the per-round attack point pool.
const MaxAttackPoints = 13

var (
	ErrNotInProgress   = fmt.Errorf("%w: battle is not in progress", game.ErrState)
	ErrNotParticipant  = fmt.Errorf("%w: caller is not a participant", game.ErrAuthorization)
	ErrNotYourTurn     = fmt.Errorf("%w: caller is not the current-turn player", game.ErrAuthorization)
	ErrTurnAlreadyOver = fmt.Errorf("%w: turn already ended this round", game.ErrState)
	ErrUnknownAttack   = fmt.Errorf("%w: unknown attack kind", game.ErrValidation)
	ErrNoAttackPoints  = fmt.Errorf("%w: insufficient attack points", game.ErrValidation)
)

// NewBattle snapshots both combatants and starts the fight. The first turn
// goes to the higher-intelligence snapshot; ties favor player 1. Initial
// attack points come from a seeded draw per side.
func NewBattle(p1, p2 string, c1, c2 *game.Character, table game.ClassTable, r rng.Source, now time.Time) *game.Battle {
	s1 := buildSnapshot(0, p1, c1, table)
	s2 := buildSnapshot(1, p2, c2, table)
	s1.AttackPoints = rollAttackPoints(r, s1.Intelligence)
	s2.AttackPoints = rollAttackPoints(r, s2.Intelligence)

	b := &game.Battle{
		Player1ID:    p1,
		Player2ID:    p2,
		Character1ID: c1.ID,
		Character2ID: c2.ID,
		State:        game.BattleInProgress,
		TurnCount:    1,
		Snapshots:    []game.BattleSnapshot{s1, s2},
		StartedAt:    now,
		LastActionAt: now,
	}
	if s2.Intelligence > s1.Intelligence {
		b.CurrentTurn = p2
		b.TurnState = game.TurnPlayer2
	} else {
		b.CurrentTurn = p1
		b.TurnState = game.TurnPlayer1
	}
	return b
}

func buildSnapshot(slot int, playerID string, c *game.Character, table game.ClassTable) game.BattleSnapshot {
	p := table.Params(c.Class)
	d := stats.Compute(c, p)
	return game.BattleSnapshot{
		Slot:          slot,
		PlayerID:      playerID,
		CharacterID:   c.ID,
		MaxHealth:     d.MaxHealth,
		CurrentHealth: d.MaxHealth,
		AttackPower:   d.Damage,
		DefensePower:  d.Defense,
		DodgeChance:   d.DodgeChance,
		Intelligence:  d.Intelligence,
	}
}

// rollAttackPoints draws a fresh per-round pool: base 4 plus a seeded draw
// over 15, plus an intelligence-proportional bonus, capped at the maximum.
func rollAttackPoints(r rng.Source, intelligence int) int {
	p := 4 + r.Draw(15)
	p += intelligence * 4 / 255
	if p > MaxAttackPoints {
		p = MaxAttackPoints
	}
	return p
}

// turnStateFor maps a player to the matching turn sub-state.
func turnStateFor(b *game.Battle, playerID string) game.TurnState {
	if playerID == b.Player1ID {
		return game.TurnPlayer1
	}
	return game.TurnPlayer2
}

// finish moves the battle to a terminal state. winner may be empty for
// cancellations. Callers must not mutate the battle afterwards.
func finish(b *game.Battle, state game.BattleState, winner, reason string, now time.Time) {
	b.State = state
	b.Winner = winner
	b.EndReason = reason
	b.TurnState = game.TurnCompleted
	b.LastActionAt = now
}
