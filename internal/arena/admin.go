package arena

import (
	"time"

	"github.com/cardforge/card-arena/internal/engine"
	"github.com/cardforge/card-arena/internal/game"
	"github.com/cardforge/card-arena/internal/registry"
)

// BattleTimeout returns the configured battle-wide idle window.
func (s *Service) BattleTimeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battleTimeout
}

// TurnTimeout returns the configured per-turn idle window.
func (s *Service) TurnTimeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnTimeout
}

func (s *Service) requireOperator(callerID string) error {
	s.mu.Lock()
	op := s.operatorID
	s.mu.Unlock()
	if op == "" || callerID != op {
		return ErrNotOperator
	}
	return nil
}

// SetTimeouts updates the timeout windows. Zero values keep the current
// setting. Operator only.
func (s *Service) SetTimeouts(callerID string, battle, turn time.Duration) error {
	if err := s.requireOperator(callerID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if battle > 0 {
		s.battleTimeout = battle
	}
	if turn > 0 {
		s.turnTimeout = turn
	}
	return nil
}

// SwapRegistry replaces the character-registry collaborator. Operator only.
func (s *Service) SwapRegistry(callerID string, reg registry.Registry) error {
	if err := s.requireOperator(callerID); err != nil {
		return err
	}
	s.regMu.Lock()
	defer s.regMu.Unlock()
	s.reg = reg
	return nil
}

// EmergencyCancel terminates an in-progress battle with no winner and no
// progression payout. Operator only.
func (s *Service) EmergencyCancel(callerID string, battleID uint) error {
	if err := s.requireOperator(callerID); err != nil {
		return err
	}
	_, err := s.withBattle(battleID, func(b *game.Battle) error {
		return engine.Cancel(b, game.ReasonAdminCancel, s.now())
	})
	return err
}
