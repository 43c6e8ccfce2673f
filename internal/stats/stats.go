// Package stats computes effective stats and derived combat numbers from a
// character's raw stats, class and equipment. Every function here is pure
// integer math: identical inputs always produce identical outputs, so the
// results can be audited and replayed. All divisions are floor divisions
// and the order of operations is part of the contract.
package stats

import "github.com/cardforge/card-arena/internal/game"

const (
	critBase       = 150 // percent
	critCap        = 350
	critRateBase   = 500 // basis points (5%)
	critRateCap    = 4000
	dodgeBaseCap   = 40
	veteranDamage  = 110 // percent
	veteranHealth  = 105
	veteranDefense = 105
)

// EffectiveStat applies the class multiplier and the three-tier
// diminishing-returns curve to one raw stat:
//   - value <= 30: no diminishing
//   - 31..100: factor interpolated from 100% at 31 down to 95% at 100
//   - 101..255: factor interpolated from 95% at 101 down to 70% at 255
func EffectiveStat(value, multiplier int) int {
	if value < 0 {
		value = 0
	}
	if value > game.StatMax {
		value = game.StatMax
	}
	base := value * multiplier / 100
	switch {
	case value <= 30:
		return base
	case value <= 100:
		factor := 100 - (value-31)*5/69
		return base * factor / 100
	default:
		factor := 95 - (value-101)*25/154
		return base * factor / 100
	}
}

// Effective holds the six class-weighted, curve-adjusted stats.
type Effective struct {
	Strength     int
	Defense      int
	Agility      int
	Vitality     int
	Intelligence int
	MagicPower   int
}

// EffectiveStats computes all six effective stats for a character.
func EffectiveStats(c *game.Character, p game.ClassParams) Effective {
	return Effective{
		Strength:     EffectiveStat(c.Strength, p.Strength),
		Defense:      EffectiveStat(c.Defense, p.Defense),
		Agility:      EffectiveStat(c.Agility, p.Agility),
		Vitality:     EffectiveStat(c.Vitality, p.Vitality),
		Intelligence: EffectiveStat(c.Intelligence, p.Intelligence),
		MagicPower:   EffectiveStat(c.MagicPower, p.MagicPower),
	}
}

// Damage returns the character's attack power before any critical roll.
// Physical and magical components are weighted per class; balanced classes
// take the higher component plus 10% of the lesser. Casters draw the
// weapon's magic bonus, everyone else its attack bonus.
func Damage(c *game.Character, p game.ClassParams) int {
	e := EffectiveStats(c, p)
	phys := e.Strength * 2
	mag := e.MagicPower * 2

	var dmg int
	if p.Balanced {
		hi, lo := phys, mag
		if mag > phys {
			hi, lo = mag, phys
		}
		dmg = hi + lo*10/100
	} else {
		dmg = phys*p.PhysicalWeight/100 + mag*p.MagicalWeight/100
	}

	dmg += e.Intelligence / 5
	dmg += e.Agility / 6

	if c.Weapon != nil {
		if p.MagicalWeight > p.PhysicalWeight {
			dmg += c.Weapon.MagicBonus
		} else {
			dmg += c.Weapon.AttackBonus
		}
	}
	if c.Veteran {
		dmg = dmg * veteranDamage / 100
	}
	return dmg
}

// CritRate returns the critical-hit chance in basis points: 5% base plus
// 0.25% per effective intelligence point, capped at 40%.
func CritRate(c *game.Character, p game.ClassParams) int {
	e := EffectiveStats(c, p)
	rate := critRateBase + e.Intelligence*25
	if rate > critRateCap {
		rate = critRateCap
	}
	return rate
}

// CritMultiplier returns the damage multiplier percentage applied on a
// critical hit: 150% base plus the class bonus, capped at 350%.
func CritMultiplier(p game.ClassParams) int {
	m := critBase + p.CritBonus
	if m > critCap {
		m = critCap
	}
	return m
}

// Health returns the character's maximum health.
func Health(c *game.Character, p game.ClassParams) int {
	e := EffectiveStats(c, p)
	hp := e.Vitality * 20
	hp += e.Strength * 4
	hp += (e.MagicPower + e.Intelligence) * 2
	hp += hp * p.HealthBonusPercent / 100
	if c.Armor != nil {
		hp += c.Armor.HealthBonus
	}
	if c.Veteran {
		hp = hp * veteranHealth / 100
	}
	return hp
}

// Defense returns the character's defense power. Agility contributes at
// half weight; intelligence and magic contribute through the class's
// magical weighting so casters keep respectable defenses.
func Defense(c *game.Character, p game.ClassParams) int {
	e := EffectiveStats(c, p)
	def := e.Defense * 4
	def += e.Agility / 2
	def += (e.Intelligence + e.MagicPower) * p.MagicalWeight / 400
	def += def * p.DefenseBonusPercent / 100
	if c.Armor != nil {
		def += c.Armor.DefenseBonus
	}
	if c.Veteran {
		def = def * veteranDefense / 100
	}
	return def
}

// Dodge returns the dodge chance percentage: effective agility / 5 capped
// at 40, a relative class bonus on top, plus an armor agility contribution.
func Dodge(c *game.Character, p game.ClassParams) int {
	e := EffectiveStats(c, p)
	d := e.Agility / 5
	if d > dodgeBaseCap {
		d = dodgeBaseCap
	}
	d += d * p.DodgeBonusPercent / 100
	if c.Armor != nil {
		d += c.Armor.AgilityBonus / 4
	}
	return d
}

// Derived bundles every derived combat number for one character.
type Derived struct {
	Damage         int `json:"damage"`
	MaxHealth      int `json:"max_health"`
	Defense        int `json:"defense"`
	DodgeChance    int `json:"dodge_chance"`
	CritRate       int `json:"crit_rate_bp"`
	CritMultiplier int `json:"crit_multiplier"`
	Intelligence   int `json:"intelligence"`
}

// Compute evaluates all derived outputs at once.
func Compute(c *game.Character, p game.ClassParams) Derived {
	e := EffectiveStats(c, p)
	return Derived{
		Damage:         Damage(c, p),
		MaxHealth:      Health(c, p),
		Defense:        Defense(c, p),
		DodgeChance:    Dodge(c, p),
		CritRate:       CritRate(c, p),
		CritMultiplier: CritMultiplier(p),
		Intelligence:   e.Intelligence,
	}
}
