// Package registry is the character-record collaborator: stat reads,
// derived combat numbers, ownership checks and the post-battle progression
// mutator. The battle engine only ever talks to the interface so the
// backing store can be swapped at runtime.
package registry

import (
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/cardforge/card-arena/internal/game"
	"github.com/cardforge/card-arena/internal/stats"
	"github.com/cardforge/card-arena/internal/storage"
)

// WinExperience is the full payout granted to a battle winner. Losers get
// half, or the full amount when the winner won by forfeit.
const WinExperience = 100

// StatAllocation distributes spendable stat points over the six raw stats.
type StatAllocation struct {
	Strength     int `json:"strength"`
	Defense      int `json:"defense"`
	Agility      int `json:"agility"`
	Vitality     int `json:"vitality"`
	Intelligence int `json:"intelligence"`
	MagicPower   int `json:"magic_power"`
}

func (a StatAllocation) total() int {
	return a.Strength + a.Defense + a.Agility + a.Vitality + a.Intelligence + a.MagicPower
}

type Registry interface {
	GetCharacter(id uint) (*game.Character, error)
	OwnerOf(id uint) (string, error)
	CombatStats(id uint) (*stats.Derived, error)
	RecordBattleResult(id uint, isWinner bool, experience int) error
	SpendStatPoints(id uint, alloc StatAllocation) error
}

type storeRegistry struct {
	repo   storage.Repository
	table  game.ClassTable
	flight singleflight.Group
}

// New returns a registry backed by the local repository.
func New(repo storage.Repository, table game.ClassTable) Registry {
	return &storeRegistry{repo: repo, table: table}
}

func (r *storeRegistry) GetCharacter(id uint) (*game.Character, error) {
	return r.repo.GetCharacterByID(id)
}

func (r *storeRegistry) OwnerOf(id uint) (string, error) {
	c, err := r.repo.GetCharacterByID(id)
	if err != nil {
		return "", err
	}
	return c.OwnerID, nil
}

// CombatStats computes the derived numbers for a character. Concurrent
// identical reads collapse into a single computation via singleflight.
func (r *storeRegistry) CombatStats(id uint) (*stats.Derived, error) {
	v, err, _ := r.flight.Do(strconv.FormatUint(uint64(id), 10), func() (interface{}, error) {
		c, err := r.repo.GetCharacterByID(id)
		if err != nil {
			return nil, err
		}
		d := stats.Compute(c, r.table.Params(c.Class))
		return &d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*stats.Derived), nil
}

// RecordBattleResult applies the progression payout: counters, experience
// and the veteran flag at the win threshold.
func (r *storeRegistry) RecordBattleResult(id uint, isWinner bool, experience int) error {
	c, err := r.repo.GetCharacterByID(id)
	if err != nil {
		return err
	}
	if isWinner {
		c.Wins++
	} else {
		c.Losses++
	}
	c.Experience += experience
	if c.Wins >= game.VeteranWins {
		c.Veteran = true
	}
	return r.repo.SaveCharacter(c)
}

// SpendStatPoints applies a bounded allocation: the spend may not exceed
// the available balance, no component may be negative and no raw stat may
// cross the stat cap. The whole allocation applies or none of it does.
func (r *storeRegistry) SpendStatPoints(id uint, alloc StatAllocation) error {
	if alloc.Strength < 0 || alloc.Defense < 0 || alloc.Agility < 0 ||
		alloc.Vitality < 0 || alloc.Intelligence < 0 || alloc.MagicPower < 0 {
		return fmt.Errorf("%w: negative stat allocation", game.ErrValidation)
	}
	total := alloc.total()
	if total == 0 {
		return fmt.Errorf("%w: empty stat allocation", game.ErrValidation)
	}
	c, err := r.repo.GetCharacterByID(id)
	if err != nil {
		return err
	}
	if total > c.StatPoints {
		return fmt.Errorf("%w: allocation exceeds available stat points", game.ErrValidation)
	}
	next := []struct {
		cur *int
		add int
	}{
		{&c.Strength, alloc.Strength},
		{&c.Defense, alloc.Defense},
		{&c.Agility, alloc.Agility},
		{&c.Vitality, alloc.Vitality},
		{&c.Intelligence, alloc.Intelligence},
		{&c.MagicPower, alloc.MagicPower},
	}
	for _, n := range next {
		if *n.cur+n.add > game.StatMax {
			return fmt.Errorf("%w: stat would exceed maximum of %d", game.ErrValidation, game.StatMax)
		}
	}
	for _, n := range next {
		*n.cur += n.add
	}
	c.StatPoints -= total
	return r.repo.SaveCharacter(c)
}
