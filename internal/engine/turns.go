package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardforge/card-arena/internal/game"
	"github.com/cardforge/card-arena/internal/rng"
)

// EndTurn marks the caller's side done for the round. If the opponent is
// still playing the turn passes to them; once both sides have ended, a new
// round begins: the counter increments, both pools regenerate from fresh
// draws (leftover points are discarded) and the turn goes to the opponent
// of whoever ended last.
func EndTurn(b *game.Battle, actor string, r rng.Source, now time.Time) (*game.BattleAction, error) {
	if b.State != game.BattleInProgress {
		return nil, ErrNotInProgress
	}
	if !b.IsParticipant(actor) {
		return nil, ErrNotParticipant
	}
	snap := b.SnapshotFor(actor)
	if snap.TurnEnded {
		return nil, ErrTurnAlreadyOver
	}

	snap.TurnEnded = true
	action := game.BattleAction{
		BattleID:   b.ID,
		RecordID:   uuid.NewString(),
		ActorID:    actor,
		Kind:       game.ActionEndTurn,
		OccurredAt: now,
	}
	b.Actions = append(b.Actions, action)
	b.LastActionAt = now

	opp := b.SnapshotFor(b.OpponentOf(actor))
	if !opp.TurnEnded {
		b.CurrentTurn = opp.PlayerID
		b.TurnState = turnStateFor(b, opp.PlayerID)
		return &b.Actions[len(b.Actions)-1], nil
	}

	// Both sides ended: begin the next round.
	b.TurnState = game.TurnCompleted
	beginRound(b, b.OpponentOf(actor), r)
	return &b.Actions[len(b.Actions)-1], nil
}

// beginRound regenerates both point pools and hands the turn to first.
func beginRound(b *game.Battle, first string, r rng.Source) {
	b.TurnCount++
	for i := range b.Snapshots {
		b.Snapshots[i].TurnEnded = false
		b.Snapshots[i].AttackPoints = rollAttackPoints(r, b.Snapshots[i].Intelligence)
	}
	b.CurrentTurn = first
	b.TurnState = turnStateFor(b, first)
}

// Forfeit concedes the battle. The caller's snapshot is flagged and the
// opponent wins immediately.
func Forfeit(b *game.Battle, actor string, now time.Time) (*game.BattleAction, error) {
	if b.State != game.BattleInProgress {
		return nil, ErrNotInProgress
	}
	if !b.IsParticipant(actor) {
		return nil, ErrNotParticipant
	}

	b.SnapshotFor(actor).Forfeited = true
	action := game.BattleAction{
		BattleID:   b.ID,
		RecordID:   uuid.NewString(),
		ActorID:    actor,
		Kind:       game.ActionForfeit,
		OccurredAt: now,
	}
	b.Actions = append(b.Actions, action)
	finish(b, game.BattleCompleted, b.OpponentOf(actor), game.ReasonForfeit, now)
	return &b.Actions[len(b.Actions)-1], nil
}

// CheckBattleTimeout cancels the whole battle when nothing happened within
// the battle-wide window. Timeouts are enacted only when checked; there is
// no internal clock.
func CheckBattleTimeout(b *game.Battle, window time.Duration, now time.Time) (bool, error) {
	if b.State != game.BattleInProgress {
		return false, ErrNotInProgress
	}
	if now.Sub(b.LastActionAt) < window {
		return false, nil
	}
	b.Actions = append(b.Actions, game.BattleAction{
		BattleID:   b.ID,
		RecordID:   uuid.NewString(),
		Kind:       game.ActionTimeout,
		OccurredAt: now,
	})
	finish(b, game.BattleCanceled, "", game.ReasonBattleTimeout, now)
	return true, nil
}

// CheckTurnTimeout ends the battle in favor of the player NOT on turn when
// the current player sat idle past the per-turn window. The idle player's
// snapshot is flagged forfeited so the payout treats it as a forfeit.
func CheckTurnTimeout(b *game.Battle, window time.Duration, now time.Time) (bool, error) {
	if b.State != game.BattleInProgress {
		return false, ErrNotInProgress
	}
	if now.Sub(b.LastActionAt) < window {
		return false, nil
	}
	idle := b.CurrentTurn
	b.SnapshotFor(idle).Forfeited = true
	b.Actions = append(b.Actions, game.BattleAction{
		BattleID:   b.ID,
		RecordID:   uuid.NewString(),
		ActorID:    idle,
		Kind:       game.ActionTimeout,
		OccurredAt: now,
	})
	finish(b, game.BattleCompleted, b.OpponentOf(idle), game.ReasonTurnTimeout, now)
	return true, nil
}

// Cancel terminates an in-progress battle administratively.
func Cancel(b *game.Battle, reason string, now time.Time) error {
	if b.State != game.BattleInProgress {
		return ErrNotInProgress
	}
	finish(b, game.BattleCanceled, "", reason, now)
	return nil
}
