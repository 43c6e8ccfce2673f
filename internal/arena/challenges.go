package arena

import (
	"github.com/cardforge/card-arena/internal/events"
	"github.com/cardforge/card-arena/internal/game"
)

// IssueChallenge records a direct invitation from challenger to
// challenged, proposing a specific character. One pending entry exists per
// ordered pair; re-issuing overwrites it.
func (s *Service) IssueChallenge(challengerID, challengedID string, characterID uint) error {
	if challengerID == challengedID {
		return ErrSelfChallenge
	}
	if err := s.verifyOwnership(challengerID, characterID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.active[challengerID]; busy {
		return ErrAlreadyInBattle
	}
	if _, busy := s.active[challengedID]; busy {
		return ErrAlreadyInBattle
	}

	if err := s.repo.UpsertChallenge(&game.Challenge{
		ChallengerID: challengerID,
		ChallengedID: challengedID,
		CharacterID:  characterID,
	}); err != nil {
		return err
	}
	s.events.Publish(events.Event{Type: events.ChallengeIssued, Fields: map[string]interface{}{
		"challenger": challengerID,
		"challenged": challengedID,
	}})
	return nil
}

// AcceptChallenge turns a pending invitation into a battle. The entry is
// cleared in both directions; a second accept fails cleanly because the
// lookup no longer finds it.
func (s *Service) AcceptChallenge(challengerID, accepterID string, accepterCharacterID uint) (*game.Battle, error) {
	if err := s.verifyOwnership(accepterID, accepterCharacterID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.repo.GetChallenge(challengerID, accepterID)
	if err != nil {
		return nil, err
	}
	if _, busy := s.active[challengerID]; busy {
		return nil, ErrAlreadyInBattle
	}
	if _, busy := s.active[accepterID]; busy {
		return nil, ErrAlreadyInBattle
	}
	// The challenger must still own the character they proposed.
	owner, err := s.registry().OwnerOf(ch.CharacterID)
	if err != nil {
		return nil, err
	}
	if owner != challengerID {
		return nil, ErrNotOwner
	}

	b, err := s.createBattleLocked(challengerID, ch.CharacterID, accepterID, accepterCharacterID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteChallengePair(challengerID, accepterID); err != nil {
		return nil, err
	}
	s.events.Publish(events.Event{Type: events.ChallengeAccepted, BattleID: b.ID, Fields: map[string]interface{}{
		"challenger": challengerID,
		"accepter":   accepterID,
	}})
	return b, nil
}

// RejectChallenge clears a pending invitation without creating a battle.
func (s *Service) RejectChallenge(challengerID, challengedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.GetChallenge(challengerID, challengedID); err != nil {
		return err
	}
	if err := s.repo.DeleteChallenge(challengerID, challengedID); err != nil {
		return err
	}
	s.events.Publish(events.Event{Type: events.ChallengeRejected, Fields: map[string]interface{}{
		"challenger": challengerID,
		"challenged": challengedID,
	}})
	return nil
}
