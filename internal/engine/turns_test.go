package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/cardforge/card-arena/internal/game"
	"github.com/cardforge/card-arena/internal/rng"
)

func TestEndTurn_PassesToOpponent(t *testing.T) {
	b := testBattle()
	r := &rng.Fixed{Values: []int{5}}
	a, err := EndTurn(b, "p1", r, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Kind != game.ActionEndTurn {
		t.Fatalf("expected an end_turn log entry, got %s", a.Kind)
	}
	if !b.SnapshotFor("p1").TurnEnded {
		t.Fatalf("expected p1 marked done for the round")
	}
	if b.CurrentTurn != "p2" || b.TurnState != game.TurnPlayer2 {
		t.Fatalf("expected turn to pass to p2, got %s/%s", b.CurrentTurn, b.TurnState)
	}
	if b.TurnCount != 1 {
		t.Fatalf("round must not advance until both sides end, got %d", b.TurnCount)
	}
}

func TestEndTurn_BothEndedBeginsNewRound(t *testing.T) {
	b := testBattle()
	b.SnapshotFor("p1").AttackPoints = 1
	b.SnapshotFor("p2").AttackPoints = 0
	r := &rng.Fixed{Values: []int{5, 3}}
	if _, err := EndTurn(b, "p1", r, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := EndTurn(b, "p2", r, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.TurnCount != 2 {
		t.Fatalf("expected round 2, got %d", b.TurnCount)
	}
	// Leftover points are discarded; both pools regenerate from fresh draws.
	if got := b.SnapshotFor("p1").AttackPoints; got != 9 {
		t.Fatalf("expected p1 pool 9, got %d", got)
	}
	if got := b.SnapshotFor("p2").AttackPoints; got != 7 {
		t.Fatalf("expected p2 pool 7, got %d", got)
	}
	if b.SnapshotFor("p1").TurnEnded || b.SnapshotFor("p2").TurnEnded {
		t.Fatalf("round flags must reset")
	}
	// p2 ended last, so p1 opens the new round.
	if b.CurrentTurn != "p1" {
		t.Fatalf("expected p1 to open round 2, got %s", b.CurrentTurn)
	}
}

func TestEndTurn_TwiceSameRoundRejected(t *testing.T) {
	b := testBattle()
	r := &rng.Fixed{Values: []int{5}}
	if _, err := EndTurn(b, "p1", r, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := EndTurn(b, "p1", r, time.Now()); !errors.Is(err, game.ErrState) {
		t.Fatalf("expected double end-turn rejection, got %v", err)
	}
}

func TestForfeit(t *testing.T) {
	b := testBattle()
	a, err := Forfeit(b, "p2", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Kind != game.ActionForfeit {
		t.Fatalf("expected a forfeit log entry, got %s", a.Kind)
	}
	if b.State != game.BattleCompleted || b.Winner != "p1" || b.EndReason != game.ReasonForfeit {
		t.Fatalf("expected p1 to win by forfeit, got state=%s winner=%s reason=%s", b.State, b.Winner, b.EndReason)
	}
	if !b.SnapshotFor("p2").Forfeited {
		t.Fatalf("expected the quitter's snapshot flagged")
	}
	if _, err := Forfeit(b, "p1", time.Now()); !errors.Is(err, game.ErrState) {
		t.Fatalf("terminal battle must reject forfeits, got %v", err)
	}
}

func TestCheckBattleTimeout(t *testing.T) {
	now := time.Now()
	b := testBattle()
	b.LastActionAt = now.Add(-30 * time.Minute)

	enacted, err := CheckBattleTimeout(b, time.Hour, now)
	if err != nil || enacted {
		t.Fatalf("expected no timeout inside the window, got enacted=%v err=%v", enacted, err)
	}
	if b.State != game.BattleInProgress {
		t.Fatalf("a negative check must not mutate the battle")
	}

	b.LastActionAt = now.Add(-2 * time.Hour)
	enacted, err = CheckBattleTimeout(b, time.Hour, now)
	if err != nil || !enacted {
		t.Fatalf("expected timeout past the window, got enacted=%v err=%v", enacted, err)
	}
	if b.State != game.BattleCanceled || b.Winner != "" || b.EndReason != game.ReasonBattleTimeout {
		t.Fatalf("expected cancellation with no winner, got state=%s winner=%q reason=%s", b.State, b.Winner, b.EndReason)
	}
}

func TestCheckTurnTimeout_IdlePlayerLoses(t *testing.T) {
	now := time.Now()
	b := testBattle()
	b.CurrentTurn = "p2"
	b.TurnState = game.TurnPlayer2
	b.LastActionAt = now.Add(-20 * time.Minute)

	enacted, err := CheckTurnTimeout(b, 10*time.Minute, now)
	if err != nil || !enacted {
		t.Fatalf("expected turn timeout, got enacted=%v err=%v", enacted, err)
	}
	if b.State != game.BattleCompleted || b.Winner != "p1" || b.EndReason != game.ReasonTurnTimeout {
		t.Fatalf("expected the waiting player to win, got state=%s winner=%s reason=%s", b.State, b.Winner, b.EndReason)
	}
	if !b.SnapshotFor("p2").Forfeited {
		t.Fatalf("expected the idle player's snapshot flagged forfeited")
	}
}

func TestCancel(t *testing.T) {
	b := testBattle()
	if err := Cancel(b, game.ReasonAdminCancel, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.State != game.BattleCanceled || b.EndReason != game.ReasonAdminCancel {
		t.Fatalf("expected admin cancellation, got state=%s reason=%s", b.State, b.EndReason)
	}
	if err := Cancel(b, game.ReasonAdminCancel, time.Now()); !errors.Is(err, game.ErrState) {
		t.Fatalf("terminal battle must reject cancellation, got %v", err)
	}
}
