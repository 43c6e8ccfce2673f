package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardforge/card-arena/internal/game"
	"github.com/cardforge/card-arena/internal/rng"
)

// attackParams maps each attack kind to its point cost and damage
// multiplier percentage.
var attackParams = map[game.ActionKind]struct {
	Cost       int
	Multiplier int
}{
	game.ActionNormal:   {Cost: 2, Multiplier: 150},
	game.ActionSpecial1: {Cost: 3, Multiplier: 200},
	game.ActionSpecial2: {Cost: 4, Multiplier: 250},
}

// engine-level crit roll: 5% base scaled by snapshot intelligence, capped
// at 30%. Distinct from the StatEngine crit rate, which feeds character
// sheets rather than in-battle rolls.
func battleCritChance(intelligence int) int {
	c := 5 + intelligence/4
	if c > 30 {
		c = 30
	}
	return c
}

// PerformAttack resolves one attack by the given actor. All checks run
// before any state change; on success the battle is mutated, the produced
// action is appended to the log and returned. A knockout terminates the
// battle on the same call, skipping any turn switch.
func PerformAttack(b *game.Battle, actor string, kind game.ActionKind, r rng.Source, now time.Time) (*game.BattleAction, error) {
	if b.State != game.BattleInProgress {
		return nil, ErrNotInProgress
	}
	if !b.IsParticipant(actor) {
		return nil, ErrNotParticipant
	}
	if b.CurrentTurn != actor {
		return nil, ErrNotYourTurn
	}
	att := b.SnapshotFor(actor)
	if att.TurnEnded {
		return nil, ErrTurnAlreadyOver
	}
	params, ok := attackParams[kind]
	if !ok {
		return nil, ErrUnknownAttack
	}
	if att.AttackPoints < params.Cost {
		return nil, ErrNoAttackPoints
	}

	def := b.SnapshotFor(b.OpponentOf(actor))

	// Dodge fully negates: no damage rolls are consumed on a dodge.
	dodged := r.Draw(100) < def.DodgeChance
	damage := 0
	crit := false
	if !dodged {
		damage, crit = resolveDamage(att, def, params.Multiplier, r)
	}

	att.AttackPoints -= params.Cost
	action := game.BattleAction{
		BattleID:   b.ID,
		RecordID:   uuid.NewString(),
		ActorID:    actor,
		Kind:       kind,
		Damage:     damage,
		Critical:   crit,
		Dodged:     dodged,
		OccurredAt: now,
	}
	b.Actions = append(b.Actions, action)
	b.LastActionAt = now

	def.CurrentHealth -= damage
	if def.CurrentHealth <= 0 {
		def.CurrentHealth = 0
		finish(b, game.BattleCompleted, actor, game.ReasonKnockout, now)
		return &b.Actions[len(b.Actions)-1], nil
	}

	// Turn passes to the opponent unless they already ended their round;
	// then the attacker keeps acting until they end too.
	if !def.TurnEnded {
		b.CurrentTurn = def.PlayerID
		b.TurnState = turnStateFor(b, def.PlayerID)
	}
	return &b.Actions[len(b.Actions)-1], nil
}

// resolveDamage runs the damage chain: defense-ratio reduction capped at
// 80%, the attack-kind multiplier, a flat 150% scale-up, an intelligence
// scaled crit roll, then an arena variance factor in [85%, 120%]. Final
// damage is never below 1.
func resolveDamage(att, def *game.BattleSnapshot, multiplier int, r rng.Source) (int, bool) {
	reduction := def.DefensePower * 100 / (att.AttackPower + 1)
	if reduction > 80 {
		reduction = 80
	}
	dmg := att.AttackPower * (100 - reduction) / 100
	dmg = dmg * multiplier / 100
	dmg = dmg * 150 / 100

	crit := r.Draw(100) < battleCritChance(att.Intelligence)
	if crit {
		dmg = dmg * 150 / 100
	}

	variance := 85 + r.Draw(36)
	dmg = dmg * variance / 100

	if dmg < 1 {
		dmg = 1
	}
	return dmg, crit
}
