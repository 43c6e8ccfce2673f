package registry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cardforge/card-arena/internal/game"
	"github.com/cardforge/card-arena/internal/stats"
	"github.com/cardforge/card-arena/internal/storage"
)

// mockCharRepo satisfies only the character slice of the repository; battle
// and challenge methods are never reached from the registry.
type mockCharRepo struct {
	storage.Repository
	chars map[uint]*game.Character
}

func (m *mockCharRepo) GetCharacterByID(id uint) (*game.Character, error) {
	c, ok := m.chars[id]
	if !ok {
		return nil, fmt.Errorf("%w: character %d", game.ErrNotFound, id)
	}
	return c, nil
}

func (m *mockCharRepo) SaveCharacter(c *game.Character) error {
	m.chars[c.ID] = c
	return nil
}

func newCharRepo(c *game.Character) *mockCharRepo {
	return &mockCharRepo{chars: map[uint]*game.Character{c.ID: c}}
}

func testChar() *game.Character {
	c := &game.Character{
		OwnerID:      "alice",
		Class:        game.ClassWarrior,
		Strength:     40,
		Defense:      30,
		Agility:      25,
		Vitality:     35,
		Intelligence: 20,
		MagicPower:   10,
		StatPoints:   10,
	}
	c.ID = 1
	return c
}

func TestOwnerOf(t *testing.T) {
	reg := New(newCharRepo(testChar()), game.DefaultClassTable())
	owner, err := reg.OwnerOf(1)
	if err != nil || owner != "alice" {
		t.Fatalf("expected alice, got %q/%v", owner, err)
	}
	if _, err := reg.OwnerOf(99); !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestCombatStats_MatchesDirectCompute(t *testing.T) {
	c := testChar()
	table := game.DefaultClassTable()
	reg := New(newCharRepo(c), table)
	d, err := reg.CombatStats(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := stats.Compute(c, table.Params(c.Class))
	if *d != want {
		t.Fatalf("expected %+v, got %+v", want, *d)
	}
}

func TestRecordBattleResult(t *testing.T) {
	c := testChar()
	reg := New(newCharRepo(c), game.DefaultClassTable())

	if err := reg.RecordBattleResult(1, true, WinExperience); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Wins != 1 || c.Experience != WinExperience || c.Veteran {
		t.Fatalf("unexpected payout: wins=%d exp=%d veteran=%v", c.Wins, c.Experience, c.Veteran)
	}
	if err := reg.RecordBattleResult(1, false, WinExperience/2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Losses != 1 || c.Experience != WinExperience+WinExperience/2 {
		t.Fatalf("unexpected loss payout: losses=%d exp=%d", c.Losses, c.Experience)
	}
}

func TestRecordBattleResult_VeteranThreshold(t *testing.T) {
	c := testChar()
	c.Wins = game.VeteranWins - 1
	reg := New(newCharRepo(c), game.DefaultClassTable())

	if err := reg.RecordBattleResult(1, true, WinExperience); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Veteran {
		t.Fatalf("expected the veteran flag at %d wins", game.VeteranWins)
	}
}

func TestSpendStatPoints(t *testing.T) {
	c := testChar()
	reg := New(newCharRepo(c), game.DefaultClassTable())

	if err := reg.SpendStatPoints(1, StatAllocation{Strength: 4, Vitality: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Strength != 44 || c.Vitality != 38 || c.StatPoints != 3 {
		t.Fatalf("unexpected allocation: str=%d vit=%d remaining=%d", c.Strength, c.Vitality, c.StatPoints)
	}
}

func TestSpendStatPoints_Validation(t *testing.T) {
	c := testChar()
	reg := New(newCharRepo(c), game.DefaultClassTable())

	if err := reg.SpendStatPoints(1, StatAllocation{Strength: -1, Defense: 2}); !errors.Is(err, game.ErrValidation) {
		t.Fatalf("expected negative rejection, got %v", err)
	}
	if err := reg.SpendStatPoints(1, StatAllocation{}); !errors.Is(err, game.ErrValidation) {
		t.Fatalf("expected empty rejection, got %v", err)
	}
	if err := reg.SpendStatPoints(1, StatAllocation{Strength: 11}); !errors.Is(err, game.ErrValidation) {
		t.Fatalf("expected over-balance rejection, got %v", err)
	}
	if c.Strength != 40 || c.StatPoints != 10 {
		t.Fatalf("rejected spends must not mutate the character")
	}
}

func TestSpendStatPoints_StatCapIsAtomic(t *testing.T) {
	c := testChar()
	c.Strength = game.StatMax - 1
	c.StatPoints = 10
	reg := New(newCharRepo(c), game.DefaultClassTable())

	// Strength would cross the cap, so the defense point must not land
	// either.
	if err := reg.SpendStatPoints(1, StatAllocation{Strength: 2, Defense: 1}); !errors.Is(err, game.ErrValidation) {
		t.Fatalf("expected cap rejection, got %v", err)
	}
	if c.Defense != 30 || c.StatPoints != 10 {
		t.Fatalf("allocation must be all-or-nothing: def=%d remaining=%d", c.Defense, c.StatPoints)
	}
}
