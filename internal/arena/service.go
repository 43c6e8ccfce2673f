// Package arena orchestrates matchmaking, challenges and battle
// operations on top of the engine. Every battle mutates under its own
// lock; the queue, challenge flow and active-battle pointers serialize
// under the service mutex.
package arena

import (
	"fmt"
	"sync"
	"time"

	"github.com/cardforge/card-arena/internal/constants"
	"github.com/cardforge/card-arena/internal/engine"
	"github.com/cardforge/card-arena/internal/events"
	"github.com/cardforge/card-arena/internal/game"
	"github.com/cardforge/card-arena/internal/logging"
	"github.com/cardforge/card-arena/internal/registry"
	"github.com/cardforge/card-arena/internal/rng"
	"github.com/cardforge/card-arena/internal/storage"
)

var (
	ErrAlreadyInBattle = fmt.Errorf("%w: player already in an active battle", game.ErrState)
	ErrNotOwner        = fmt.Errorf("%w: caller does not own this character", game.ErrAuthorization)
	ErrSelfChallenge   = fmt.Errorf("%w: cannot challenge yourself", game.ErrValidation)
	ErrNotOperator     = fmt.Errorf("%w: operator access required", game.ErrAuthorization)
)

type queueEntry struct {
	PlayerID    string
	CharacterID uint
}

// Service wires the battle engine to storage, the character registry and
// the event publisher.
type Service struct {
	repo   storage.Repository
	rng    rng.Source
	table  game.ClassTable
	events events.Publisher

	regMu sync.RWMutex
	reg   registry.Registry

	mu            sync.Mutex
	queue         []queueEntry
	active        map[string]uint // player id -> battle id
	locks         map[uint]*sync.Mutex
	battleTimeout time.Duration
	turnTimeout   time.Duration
	operatorID    string

	now func() time.Time
}

// Options carries the tunables the service needs at construction.
type Options struct {
	BattleTimeout time.Duration
	TurnTimeout   time.Duration
	OperatorID    string
}

func NewService(repo storage.Repository, reg registry.Registry, table game.ClassTable, r rng.Source, pub events.Publisher, opts Options) *Service {
	if opts.BattleTimeout == 0 {
		opts.BattleTimeout = 24 * time.Hour
	}
	if opts.TurnTimeout == 0 {
		opts.TurnTimeout = 10 * time.Minute
	}
	return &Service{
		repo:          repo,
		reg:           reg,
		table:         table,
		rng:           r,
		events:        pub,
		active:        make(map[string]uint),
		locks:         make(map[uint]*sync.Mutex),
		battleTimeout: opts.BattleTimeout,
		turnTimeout:   opts.TurnTimeout,
		operatorID:    opts.OperatorID,
		now:           time.Now,
	}
}

func (s *Service) registry() registry.Registry {
	s.regMu.RLock()
	defer s.regMu.RUnlock()
	return s.reg
}

// Rebuild restores the per-player active-battle pointers from persisted
// in-progress battles. Called once at startup.
func (s *Service) Rebuild() error {
	battles, err := s.repo.FindInProgressBattles()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range battles {
		s.active[battles[i].Player1ID] = battles[i].ID
		s.active[battles[i].Player2ID] = battles[i].ID
	}
	return nil
}

// ActiveBattleID returns the battle a player currently fights in, if any.
func (s *Service) ActiveBattleID(playerID string) (uint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.active[playerID]
	return id, ok
}

func (s *Service) battleLock(id uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// withBattle loads a battle, runs fn under the battle's lock and persists
// the result. Terminal transitions settle progression exactly once.
func (s *Service) withBattle(id uint, fn func(b *game.Battle) error) (*game.Battle, error) {
	lock := s.battleLock(id)
	lock.Lock()
	defer lock.Unlock()

	b, err := s.repo.GetBattleByID(id)
	if err != nil {
		return nil, err
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	s.settle(b)
	if err := s.repo.UpdateBattle(b); err != nil {
		return nil, err
	}
	return b, nil
}

// settle applies one-time termination effects: progression payout, pointer
// cleanup and the completion/cancellation event.
func (s *Service) settle(b *game.Battle) {
	if !b.Terminal() || b.ResultRecorded {
		return
	}
	b.ResultRecorded = true

	s.mu.Lock()
	delete(s.active, b.Player1ID)
	delete(s.active, b.Player2ID)
	s.mu.Unlock()

	if b.State == game.BattleCompleted && b.Winner != "" {
		loser := b.OpponentOf(b.Winner)
		loserExp := registry.WinExperience / 2
		if snap := b.SnapshotFor(loser); snap != nil && snap.Forfeited {
			loserExp = registry.WinExperience
		}
		// The battle outcome stands even when a payout write fails, but the
		// failure must stay visible: it is logged per character and carried
		// on the completion event for external consumers.
		reg := s.registry()
		var payoutErr error
		for _, p := range []struct {
			characterID uint
			won         bool
			experience  int
		}{
			{s.characterOf(b, b.Winner), true, registry.WinExperience},
			{s.characterOf(b, loser), false, loserExp},
		} {
			if err := reg.RecordBattleResult(p.characterID, p.won, p.experience); err != nil {
				logging.Error("failed to record battle result", err, logging.Fields{
					constants.LogFieldBattleID: b.ID,
					constants.LogFieldCharID:   p.characterID,
				})
				payoutErr = err
			}
		}

		fields := map[string]interface{}{
			constants.LogFieldWinner: b.Winner,
			constants.LogFieldReason: b.EndReason,
			"experience":             registry.WinExperience,
		}
		if payoutErr != nil {
			fields["payout_error"] = payoutErr.Error()
		}
		s.events.Publish(events.Event{Type: events.BattleCompleted, BattleID: b.ID, Fields: fields})
		return
	}
	s.events.Publish(events.Event{Type: events.BattleCanceled, BattleID: b.ID, Fields: map[string]interface{}{
		constants.LogFieldReason: b.EndReason,
	}})
}

func (s *Service) characterOf(b *game.Battle, playerID string) uint {
	if playerID == b.Player1ID {
		return b.Character1ID
	}
	return b.Character2ID
}

// GetBattle returns the battle with snapshots and action log preloaded.
func (s *Service) GetBattle(id uint) (*game.Battle, error) {
	return s.repo.GetBattleByID(id)
}

// Actions returns the ordered action log for a battle.
func (s *Service) Actions(battleID uint) ([]game.BattleAction, error) {
	if _, err := s.repo.GetBattleByID(battleID); err != nil {
		return nil, err
	}
	return s.repo.GetBattleActions(battleID)
}

// DamageTotals returns per-player damage sums from the action log.
func (s *Service) DamageTotals(battleID uint) ([]storage.DamageTotal, error) {
	if _, err := s.repo.GetBattleByID(battleID); err != nil {
		return nil, err
	}
	return s.repo.GetDamageTotals(battleID)
}

// PerformAttack resolves one attack by the caller in their active battle.
func (s *Service) PerformAttack(battleID uint, actor string, kind game.ActionKind) (*game.Battle, *game.BattleAction, error) {
	var action *game.BattleAction
	b, err := s.withBattle(battleID, func(b *game.Battle) error {
		a, err := engine.PerformAttack(b, actor, kind, s.rng, s.now())
		if err != nil {
			return err
		}
		action = a
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.events.Publish(events.Event{Type: events.AttackPerformed, BattleID: b.ID, Fields: map[string]interface{}{
		"actor":    actor,
		"kind":     string(kind),
		"damage":   action.Damage,
		"critical": action.Critical,
		"dodged":   action.Dodged,
	}})
	s.publishTurnStarted(b)
	return b, action, nil
}

// EndTurn marks the caller's side done for the round.
func (s *Service) EndTurn(battleID uint, actor string) (*game.Battle, error) {
	b, err := s.withBattle(battleID, func(b *game.Battle) error {
		_, err := engine.EndTurn(b, actor, s.rng, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(events.Event{Type: events.TurnEnded, BattleID: b.ID, Fields: map[string]interface{}{
		"actor": actor,
		"round": b.TurnCount,
	}})
	s.publishTurnStarted(b)
	return b, nil
}

// Forfeit concedes the caller's battle.
func (s *Service) Forfeit(battleID uint, actor string) (*game.Battle, error) {
	return s.withBattle(battleID, func(b *game.Battle) error {
		_, err := engine.Forfeit(b, actor, s.now())
		return err
	})
}

// CheckBattleTimeout cancels a battle idle past the battle-wide window.
// Any caller may invoke it; the timeout is enacted only when checked.
func (s *Service) CheckBattleTimeout(battleID uint) (bool, error) {
	enacted := false
	_, err := s.withBattle(battleID, func(b *game.Battle) error {
		ok, err := engine.CheckBattleTimeout(b, s.BattleTimeout(), s.now())
		enacted = ok
		return err
	})
	return enacted, err
}

// CheckTurnTimeout ends a battle whose current player idled past the
// per-turn window, in favor of the waiting player.
func (s *Service) CheckTurnTimeout(battleID uint) (bool, error) {
	enacted := false
	_, err := s.withBattle(battleID, func(b *game.Battle) error {
		ok, err := engine.CheckTurnTimeout(b, s.TurnTimeout(), s.now())
		enacted = ok
		return err
	})
	return enacted, err
}

func (s *Service) publishTurnStarted(b *game.Battle) {
	if b.State != game.BattleInProgress {
		return
	}
	points := 0
	if snap := b.SnapshotFor(b.CurrentTurn); snap != nil {
		points = snap.AttackPoints
	}
	s.events.Publish(events.Event{Type: events.TurnStarted, BattleID: b.ID, Fields: map[string]interface{}{
		"player": b.CurrentTurn,
		"points": points,
		"round":  b.TurnCount,
	}})
}

// createBattle snapshots both characters and persists the new battle.
// Caller must hold s.mu and have verified neither player is active.
func (s *Service) createBattleLocked(p1 string, char1 uint, p2 string, char2 uint) (*game.Battle, error) {
	reg := s.registry()
	c1, err := reg.GetCharacter(char1)
	if err != nil {
		return nil, err
	}
	c2, err := reg.GetCharacter(char2)
	if err != nil {
		return nil, err
	}
	b := engine.NewBattle(p1, p2, c1, c2, s.table, s.rng, s.now())
	if err := s.repo.CreateBattle(b); err != nil {
		return nil, err
	}
	// A player entering a battle by any path (pairing or challenge accept)
	// must not keep a stale matchmaking entry, or the next join would pair
	// them into a second concurrent battle.
	s.dropQueuedLocked(p1)
	s.dropQueuedLocked(p2)
	s.active[p1] = b.ID
	s.active[p2] = b.ID

	s.events.Publish(events.Event{Type: events.BattleCreated, BattleID: b.ID, Fields: map[string]interface{}{
		"player1": p1,
		"player2": p2,
	}})
	s.publishTurnStarted(b)
	return b, nil
}

// verifyOwnership confirms the player controls the character.
func (s *Service) verifyOwnership(playerID string, characterID uint) error {
	owner, err := s.registry().OwnerOf(characterID)
	if err != nil {
		return err
	}
	if owner != playerID {
		return ErrNotOwner
	}
	return nil
}
