// Package events surfaces engine notifications to external consumers (UI
// pollers, log shippers). Publishing never blocks battle processing.
package events

import (
	"github.com/cardforge/card-arena/internal/constants"
	"github.com/cardforge/card-arena/internal/logging"
)

// Event types surfaced by the arena.
const (
	BattleCreated     = "battle_created"
	TurnStarted       = "turn_started"
	AttackPerformed   = "attack_performed"
	TurnEnded         = "turn_ended"
	BattleCompleted   = "battle_completed"
	BattleCanceled    = "battle_canceled"
	ChallengeIssued   = "challenge_issued"
	ChallengeAccepted = "challenge_accepted"
	ChallengeRejected = "challenge_rejected"
)

// Event is one observable notification.
type Event struct {
	Type     string
	BattleID uint
	Fields   map[string]interface{}
}

// Publisher receives every event the arena emits.
type Publisher interface {
	Publish(e Event)
}

// LogPublisher writes events as structured log lines.
type LogPublisher struct{}

func (LogPublisher) Publish(e Event) {
	fields := logging.Fields{constants.LogFieldEvent: e.Type}
	if e.BattleID != 0 {
		fields[constants.LogFieldBattleID] = e.BattleID
	}
	for k, v := range e.Fields {
		fields[k] = v
	}
	logging.Info("arena event", fields)
}

// Noop discards events; handy in tests that don't assert on them.
type Noop struct{}

func (Noop) Publish(Event) {}
