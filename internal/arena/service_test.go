package arena

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cardforge/card-arena/internal/events"
	"github.com/cardforge/card-arena/internal/game"
	"github.com/cardforge/card-arena/internal/registry"
	"github.com/cardforge/card-arena/internal/rng"
	"github.com/cardforge/card-arena/internal/storage"
)

type mockRepo struct {
	characters map[uint]*game.Character
	battles    map[uint]*game.Battle
	challenges map[string]*game.Challenge
	nextChar   uint
	nextBattle uint
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		characters: make(map[uint]*game.Character),
		battles:    make(map[uint]*game.Battle),
		challenges: make(map[string]*game.Challenge),
	}
}

func challengeKey(challengerID, challengedID string) string {
	return challengerID + "|" + challengedID
}

func (m *mockRepo) addCharacter(owner string, strength, vitality int) uint {
	m.nextChar++
	c := &game.Character{
		OwnerID:  owner,
		Class:    game.ClassWarrior,
		Strength: strength,
		Vitality: vitality,
	}
	c.ID = m.nextChar
	m.characters[c.ID] = c
	return c.ID
}

func (m *mockRepo) GetCharacterByID(id uint) (*game.Character, error) {
	c, ok := m.characters[id]
	if !ok {
		return nil, fmt.Errorf("%w: character %d", game.ErrNotFound, id)
	}
	return c, nil
}

func (m *mockRepo) SaveCharacter(c *game.Character) error {
	m.characters[c.ID] = c
	return nil
}

func (m *mockRepo) GetTopCharacters(limit int) ([]game.Character, error) { return nil, nil }

func (m *mockRepo) CreateBattle(b *game.Battle) error {
	m.nextBattle++
	b.ID = m.nextBattle
	m.battles[b.ID] = b
	return nil
}

func (m *mockRepo) GetBattleByID(id uint) (*game.Battle, error) {
	b, ok := m.battles[id]
	if !ok {
		return nil, fmt.Errorf("%w: battle %d", game.ErrNotFound, id)
	}
	return b, nil
}

func (m *mockRepo) UpdateBattle(b *game.Battle) error {
	m.battles[b.ID] = b
	return nil
}

func (m *mockRepo) FindInProgressBattles() ([]game.Battle, error) {
	var out []game.Battle
	for _, b := range m.battles {
		if b.State == game.BattleInProgress {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockRepo) ClaimStaleBattles(cutoff time.Time, limit int, claimTTL time.Duration, workerID string) ([]uint, error) {
	var ids []uint
	for id, b := range m.battles {
		if b.State == game.BattleInProgress && b.LastActionAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockRepo) GetBattleActions(battleID uint) ([]game.BattleAction, error) {
	b, err := m.GetBattleByID(battleID)
	if err != nil {
		return nil, err
	}
	return b.Actions, nil
}

func (m *mockRepo) GetDamageTotals(battleID uint) ([]storage.DamageTotal, error) {
	b, err := m.GetBattleByID(battleID)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int)
	for _, a := range b.Actions {
		if a.Damage > 0 {
			totals[a.ActorID] += a.Damage
		}
	}
	var out []storage.DamageTotal
	for player, total := range totals {
		out = append(out, storage.DamageTotal{PlayerID: player, Total: total})
	}
	return out, nil
}

func (m *mockRepo) UpsertChallenge(ch *game.Challenge) error {
	m.challenges[challengeKey(ch.ChallengerID, ch.ChallengedID)] = ch
	return nil
}

func (m *mockRepo) GetChallenge(challengerID, challengedID string) (*game.Challenge, error) {
	ch, ok := m.challenges[challengeKey(challengerID, challengedID)]
	if !ok {
		return nil, fmt.Errorf("%w: no pending challenge", game.ErrNotFound)
	}
	return ch, nil
}

func (m *mockRepo) DeleteChallenge(challengerID, challengedID string) error {
	delete(m.challenges, challengeKey(challengerID, challengedID))
	return nil
}

func (m *mockRepo) DeleteChallengePair(a, b string) error {
	delete(m.challenges, challengeKey(a, b))
	delete(m.challenges, challengeKey(b, a))
	return nil
}

func newTestService(repo *mockRepo, opts Options) *Service {
	table := game.DefaultClassTable()
	reg := registry.New(repo, table)
	// High dodge/crit draws miss, low variance; wraps for as long as needed.
	r := &rng.Fixed{Values: []int{5, 5, 99, 99, 0}}
	return NewService(repo, reg, table, r, events.Noop{}, opts)
}

func TestJoinQueue_PairsTwoPlayers(t *testing.T) {
	repo := newMockRepo()
	alice := repo.addCharacter("alice", 50, 50)
	bob := repo.addCharacter("bob", 50, 50)
	svc := newTestService(repo, Options{})

	b, err := svc.JoinQueue("alice", alice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b != nil {
		t.Fatalf("single player must wait, got battle %d", b.ID)
	}
	if svc.QueueLength() != 1 {
		t.Fatalf("expected one waiting entry, got %d", svc.QueueLength())
	}

	b, err = svc.JoinQueue("bob", bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b == nil {
		t.Fatalf("second join must complete a pair")
	}
	if b.Player1ID != "alice" || b.Player2ID != "bob" {
		t.Fatalf("earlier entry should be player 1: %s vs %s", b.Player1ID, b.Player2ID)
	}
	if svc.QueueLength() != 0 {
		t.Fatalf("queue should drain after pairing, got %d", svc.QueueLength())
	}
	if id, ok := svc.ActiveBattleID("alice"); !ok || id != b.ID {
		t.Fatalf("expected alice's active pointer at %d, got %d/%v", b.ID, id, ok)
	}
	if _, err := repo.GetBattleByID(b.ID); err != nil {
		t.Fatalf("battle must be persisted: %v", err)
	}
}

func TestJoinQueue_RejoinReplacesEntry(t *testing.T) {
	repo := newMockRepo()
	first := repo.addCharacter("alice", 50, 50)
	second := repo.addCharacter("alice", 60, 60)
	bob := repo.addCharacter("bob", 50, 50)
	svc := newTestService(repo, Options{})

	if _, err := svc.JoinQueue("alice", first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.JoinQueue("alice", second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.QueueLength() != 1 {
		t.Fatalf("rejoin must replace, not stack: %d entries", svc.QueueLength())
	}

	b, err := svc.JoinQueue("bob", bob)
	if err != nil || b == nil {
		t.Fatalf("expected a battle, got %v/%v", b, err)
	}
	if b.Character1ID != second {
		t.Fatalf("expected the replacement character %d, got %d", second, b.Character1ID)
	}
}

func TestJoinQueue_WhileBattlingRejected(t *testing.T) {
	repo := newMockRepo()
	alice := repo.addCharacter("alice", 50, 50)
	bob := repo.addCharacter("bob", 50, 50)
	svc := newTestService(repo, Options{})

	if _, err := svc.JoinQueue("alice", alice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.JoinQueue("bob", bob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.JoinQueue("alice", alice); !errors.Is(err, game.ErrState) {
		t.Fatalf("expected busy rejection, got %v", err)
	}
}

func TestJoinQueue_OwnershipEnforced(t *testing.T) {
	repo := newMockRepo()
	bob := repo.addCharacter("bob", 50, 50)
	svc := newTestService(repo, Options{})

	if _, err := svc.JoinQueue("alice", bob); !errors.Is(err, game.ErrAuthorization) {
		t.Fatalf("expected ownership rejection, got %v", err)
	}
}

func TestLeaveQueue(t *testing.T) {
	repo := newMockRepo()
	alice := repo.addCharacter("alice", 50, 50)
	bob := repo.addCharacter("bob", 50, 50)
	svc := newTestService(repo, Options{})

	if err := svc.LeaveQueue("alice"); err != nil {
		t.Fatalf("leaving while absent must be a no-op, got %v", err)
	}
	if _, err := svc.JoinQueue("alice", alice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.LeaveQueue("alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.QueueLength() != 0 {
		t.Fatalf("expected empty queue, got %d", svc.QueueLength())
	}

	if _, err := svc.JoinQueue("alice", alice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.JoinQueue("bob", bob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.LeaveQueue("alice"); !errors.Is(err, game.ErrState) {
		t.Fatalf("expected busy rejection, got %v", err)
	}
}

func TestChallengeFlow(t *testing.T) {
	repo := newMockRepo()
	carol := repo.addCharacter("carol", 50, 50)
	dave := repo.addCharacter("dave", 50, 50)
	svc := newTestService(repo, Options{})

	if err := svc.IssueChallenge("carol", "dave", carol); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.AcceptChallenge("carol", "dave", dave)
	if err != nil || b == nil {
		t.Fatalf("expected a battle, got %v/%v", b, err)
	}
	if b.Player1ID != "carol" || b.Player2ID != "dave" {
		t.Fatalf("challenger should be player 1: %s vs %s", b.Player1ID, b.Player2ID)
	}
	if _, err := svc.AcceptChallenge("carol", "dave", dave); !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("second accept must fail cleanly, got %v", err)
	}
}

func TestAcceptChallenge_PurgesStaleQueueEntries(t *testing.T) {
	repo := newMockRepo()
	alice := repo.addCharacter("alice", 50, 50)
	bob := repo.addCharacter("bob", 50, 50)
	carol := repo.addCharacter("carol", 50, 50)
	svc := newTestService(repo, Options{})

	// Alice waits in the queue, then enters a battle through a challenge.
	if _, err := svc.JoinQueue("alice", alice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.IssueChallenge("bob", "alice", bob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.AcceptChallenge("bob", "alice", alice)
	if err != nil || b == nil {
		t.Fatalf("expected a battle, got %v/%v", b, err)
	}
	if svc.QueueLength() != 0 {
		t.Fatalf("alice's queue entry must be purged on battle creation, got %d waiting", svc.QueueLength())
	}

	// The next join must wait instead of pairing against a busy player.
	waiting, err := svc.JoinQueue("carol", carol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if waiting != nil {
		t.Fatalf("carol got paired into battle %d against a player already fighting", waiting.ID)
	}
	if id, ok := svc.ActiveBattleID("alice"); !ok || id != b.ID {
		t.Fatalf("expected alice still in battle %d, got %d/%v", b.ID, id, ok)
	}
}

func TestChallenge_SelfRejected(t *testing.T) {
	repo := newMockRepo()
	carol := repo.addCharacter("carol", 50, 50)
	svc := newTestService(repo, Options{})

	if err := svc.IssueChallenge("carol", "carol", carol); !errors.Is(err, game.ErrValidation) {
		t.Fatalf("expected self-challenge rejection, got %v", err)
	}
}

func TestChallenge_Reject(t *testing.T) {
	repo := newMockRepo()
	carol := repo.addCharacter("carol", 50, 50)
	svc := newTestService(repo, Options{})

	if err := svc.RejectChallenge("carol", "dave"); !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("rejecting a missing challenge must fail, got %v", err)
	}
	if err := svc.IssueChallenge("carol", "dave", carol); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RejectChallenge("carol", "dave"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.GetChallenge("carol", "dave"); !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("challenge should be cleared, got %v", err)
	}
}

func TestForfeitPayout(t *testing.T) {
	repo := newMockRepo()
	alice := repo.addCharacter("alice", 50, 50)
	bob := repo.addCharacter("bob", 50, 50)
	svc := newTestService(repo, Options{})

	if _, err := svc.JoinQueue("alice", alice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.JoinQueue("bob", bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Forfeit(b.ID, "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	winner := repo.characters[alice]
	loser := repo.characters[bob]
	if winner.Wins != 1 || winner.Experience != registry.WinExperience {
		t.Fatalf("expected winner payout 1 win / %d exp, got %d/%d", registry.WinExperience, winner.Wins, winner.Experience)
	}
	// A forfeiting loser still collects the full experience grant.
	if loser.Losses != 1 || loser.Experience != registry.WinExperience {
		t.Fatalf("expected loser payout 1 loss / %d exp, got %d/%d", registry.WinExperience, loser.Losses, loser.Experience)
	}
	if _, ok := svc.ActiveBattleID("alice"); ok {
		t.Fatalf("active pointer must clear after settlement")
	}
}

func TestKnockoutPayout_LoserHalfExperience(t *testing.T) {
	repo := newMockRepo()
	// Zero-stat defenders start at zero health, so the first hit knocks out.
	alice := repo.addCharacter("alice", 0, 0)
	bob := repo.addCharacter("bob", 0, 0)
	svc := newTestService(repo, Options{})

	if _, err := svc.JoinQueue("alice", alice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.JoinQueue("bob", bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, action, err := svc.PerformAttack(b.ID, b.CurrentTurn, game.ActionNormal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.State != game.BattleCompleted || updated.EndReason != game.ReasonKnockout {
		t.Fatalf("expected knockout, got state=%s reason=%s", updated.State, updated.EndReason)
	}
	if action.Damage < 1 {
		t.Fatalf("damage floors at 1, got %d", action.Damage)
	}

	var winner, loser *game.Character
	if updated.Winner == "alice" {
		winner, loser = repo.characters[alice], repo.characters[bob]
	} else {
		winner, loser = repo.characters[bob], repo.characters[alice]
	}
	if winner.Experience != registry.WinExperience {
		t.Fatalf("expected winner exp %d, got %d", registry.WinExperience, winner.Experience)
	}
	if loser.Experience != registry.WinExperience/2 {
		t.Fatalf("expected loser exp %d, got %d", registry.WinExperience/2, loser.Experience)
	}
}

func TestBattleTimeout_NoPayout(t *testing.T) {
	repo := newMockRepo()
	alice := repo.addCharacter("alice", 50, 50)
	bob := repo.addCharacter("bob", 50, 50)
	svc := newTestService(repo, Options{BattleTimeout: time.Hour})

	if _, err := svc.JoinQueue("alice", alice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.JoinQueue("bob", bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	enacted, err := svc.CheckBattleTimeout(b.ID)
	if err != nil || !enacted {
		t.Fatalf("expected the timeout to enact, got %v/%v", enacted, err)
	}
	if got := repo.battles[b.ID].State; got != game.BattleCanceled {
		t.Fatalf("expected cancellation, got %s", got)
	}
	if repo.characters[alice].Experience != 0 || repo.characters[bob].Experience != 0 {
		t.Fatalf("cancelled battles must not pay out")
	}
	if _, ok := svc.ActiveBattleID("bob"); ok {
		t.Fatalf("active pointer must clear after cancellation")
	}
}

func TestTurnTimeout_IdlePlayerForfeits(t *testing.T) {
	repo := newMockRepo()
	alice := repo.addCharacter("alice", 50, 50)
	bob := repo.addCharacter("bob", 50, 50)
	svc := newTestService(repo, Options{TurnTimeout: 10 * time.Minute})

	if _, err := svc.JoinQueue("alice", alice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.JoinQueue("bob", bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idle := b.CurrentTurn
	waiting := b.OpponentOf(idle)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	enacted, err := svc.CheckTurnTimeout(b.ID)
	if err != nil || !enacted {
		t.Fatalf("expected the timeout to enact, got %v/%v", enacted, err)
	}
	final := repo.battles[b.ID]
	if final.Winner != waiting || final.EndReason != game.ReasonTurnTimeout {
		t.Fatalf("expected %s to win by turn timeout, got %s/%s", waiting, final.Winner, final.EndReason)
	}
}

func TestRebuild_RestoresActivePointers(t *testing.T) {
	repo := newMockRepo()
	alice := repo.addCharacter("alice", 50, 50)
	bob := repo.addCharacter("bob", 50, 50)
	svc := newTestService(repo, Options{})

	if _, err := svc.JoinQueue("alice", alice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.JoinQueue("bob", bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restarted := newTestService(repo, Options{})
	if err := restarted.Rebuild(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id, ok := restarted.ActiveBattleID("alice"); !ok || id != b.ID {
		t.Fatalf("expected rebuilt pointer at %d, got %d/%v", b.ID, id, ok)
	}
}

func TestEmergencyCancel_OperatorOnly(t *testing.T) {
	repo := newMockRepo()
	alice := repo.addCharacter("alice", 50, 50)
	bob := repo.addCharacter("bob", 50, 50)
	svc := newTestService(repo, Options{OperatorID: "op"})

	if _, err := svc.JoinQueue("alice", alice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.JoinQueue("bob", bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.EmergencyCancel("alice", b.ID); !errors.Is(err, game.ErrAuthorization) {
		t.Fatalf("expected operator rejection, got %v", err)
	}
	if err := svc.EmergencyCancel("op", b.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.battles[b.ID].EndReason; got != game.ReasonAdminCancel {
		t.Fatalf("expected admin cancel reason, got %s", got)
	}
}

type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) { p.published = append(p.published, e) }

type failingPayoutRegistry struct {
	registry.Registry
}

func (failingPayoutRegistry) RecordBattleResult(uint, bool, int) error {
	return fmt.Errorf("registry unavailable")
}

func TestSettle_PayoutFailureIsObservable(t *testing.T) {
	repo := newMockRepo()
	alice := repo.addCharacter("alice", 50, 50)
	bob := repo.addCharacter("bob", 50, 50)
	table := game.DefaultClassTable()
	reg := failingPayoutRegistry{Registry: registry.New(repo, table)}
	pub := &recordingPublisher{}
	svc := NewService(repo, reg, table, &rng.Fixed{Values: []int{5, 5, 99, 99, 0}}, pub, Options{})

	if _, err := svc.JoinQueue("alice", alice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.JoinQueue("bob", bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Forfeit(b.ID, "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var completed *events.Event
	for i := range pub.published {
		if pub.published[i].Type == events.BattleCompleted {
			completed = &pub.published[i]
		}
	}
	if completed == nil {
		t.Fatalf("expected a completion event")
	}
	if _, ok := completed.Fields["payout_error"]; !ok {
		t.Fatalf("expected the payout failure surfaced on the event, got %+v", completed.Fields)
	}
	// The battle outcome stands even though the payout never landed.
	if got := repo.battles[b.ID].Winner; got != "alice" {
		t.Fatalf("expected alice to win, got %s", got)
	}
	if repo.characters[alice].Wins != 0 || repo.characters[alice].Experience != 0 {
		t.Fatalf("failed payout must not half-apply: wins=%d exp=%d", repo.characters[alice].Wins, repo.characters[alice].Experience)
	}
}

type stubRegistry struct {
	registry.Registry
	owner string
}

func (s *stubRegistry) OwnerOf(id uint) (string, error) { return s.owner, nil }

func TestSwapRegistry_OperatorOnly(t *testing.T) {
	repo := newMockRepo()
	repo.addCharacter("alice", 50, 50)
	svc := newTestService(repo, Options{OperatorID: "op"})

	replacement := &stubRegistry{owner: "mallory"}
	if err := svc.SwapRegistry("alice", replacement); !errors.Is(err, game.ErrAuthorization) {
		t.Fatalf("expected operator rejection, got %v", err)
	}
	if err := svc.SwapRegistry("op", replacement); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Ownership checks now flow through the swapped collaborator.
	if _, err := svc.JoinQueue("alice", 1); !errors.Is(err, game.ErrAuthorization) {
		t.Fatalf("expected the swapped registry to deny ownership, got %v", err)
	}
}

func TestSetTimeouts(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, Options{OperatorID: "op", BattleTimeout: time.Hour, TurnTimeout: time.Minute})

	if err := svc.SetTimeouts("intruder", time.Hour, time.Hour); !errors.Is(err, game.ErrAuthorization) {
		t.Fatalf("expected operator rejection, got %v", err)
	}
	if err := svc.SetTimeouts("op", 2*time.Hour, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.BattleTimeout() != 2*time.Hour {
		t.Fatalf("expected battle timeout updated, got %v", svc.BattleTimeout())
	}
	if svc.TurnTimeout() != time.Minute {
		t.Fatalf("zero must keep the current turn timeout, got %v", svc.TurnTimeout())
	}
}
