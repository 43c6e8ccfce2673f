package arena

import (
	"fmt"

	"github.com/cardforge/card-arena/internal/game"
)

// JoinQueue adds a player to the matchmaking pool. Re-joining replaces the
// player's previous entry. When the pool holds two or more entries the two
// most recently inserted are paired into a battle.
//
// Pairing the two NEWEST entries (rather than the two oldest) means an
// early joiner can wait while later arrivals match each other. This is a
// deliberate behavioral choice kept for parity with the live matchmaking
// rules; do not "fix" it to FIFO without a product decision.
//
// Returns the created battle when the join completed a pair, nil when the
// player is left waiting.
func (s *Service) JoinQueue(playerID string, characterID uint) (*game.Battle, error) {
	if err := s.verifyOwnership(playerID, characterID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.active[playerID]; busy {
		return nil, ErrAlreadyInBattle
	}

	// Replace any prior entry for this identity.
	s.dropQueuedLocked(playerID)
	s.queue = append(s.queue, queueEntry{PlayerID: playerID, CharacterID: characterID})

	if len(s.queue) < 2 {
		return nil, nil
	}

	// Pair the two most recently inserted entries. The earlier of the two
	// becomes player 1.
	n := len(s.queue)
	e1, e2 := s.queue[n-2], s.queue[n-1]
	s.queue = s.queue[:n-2]

	b, err := s.createBattleLocked(e1.PlayerID, e1.CharacterID, e2.PlayerID, e2.CharacterID)
	if err != nil {
		// put both entries back so neither player silently vanishes
		s.queue = append(s.queue, e1, e2)
		return nil, err
	}
	return b, nil
}

// LeaveQueue removes a player's entry. Absence is not an error, but a
// player whose slot already became a battle cannot withdraw.
func (s *Service) LeaveQueue(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.active[playerID]; busy {
		return fmt.Errorf("%w: cannot leave the queue while battling", game.ErrState)
	}
	s.dropQueuedLocked(playerID)
	return nil
}

// dropQueuedLocked removes a player's queue entry, if any. Caller must
// hold s.mu.
func (s *Service) dropQueuedLocked(playerID string) {
	for i := range s.queue {
		if s.queue[i].PlayerID == playerID {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

// QueueLength reports how many players are waiting. Used by tests and the
// health surface.
func (s *Service) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
