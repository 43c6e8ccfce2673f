package game

// Class tags one of the seven playable archetypes.
type Class string

const (
	ClassWarrior  Class = "warrior"
	ClassKnight   Class = "knight"
	ClassRanger   Class = "ranger"
	ClassMage     Class = "mage"
	ClassGuardian Class = "guardian"
	ClassKing     Class = "king"
	ClassAvatar   Class = "avatar"
)

// ClassParams carries the fixed percentage weights for one class. The
// per-stat multipliers feed the diminishing-returns curve; the remaining
// fields adjust the derived outputs. The table is data, not behavior: all
// combat formulas take it as a parameter.
type ClassParams struct {
	Name Class `json:"name"`

	// Per-stat multiplier percentages (0-100+).
	Strength     int `json:"strength"`
	Defense      int `json:"defense"`
	Agility      int `json:"agility"`
	Vitality     int `json:"vitality"`
	Intelligence int `json:"intelligence"`
	MagicPower   int `json:"magic_power"`

	// Damage weighting. Balanced classes ignore the weights and take the
	// higher of physical/magical plus 10% of the lesser.
	PhysicalWeight int  `json:"physical_weight"`
	MagicalWeight  int  `json:"magical_weight"`
	Balanced       bool `json:"balanced"`

	// Flat percentage bonuses on derived outputs.
	HealthBonusPercent  int `json:"health_bonus_percent"`
	DefenseBonusPercent int `json:"defense_bonus_percent"`
	DodgeBonusPercent   int `json:"dodge_bonus_percent"`

	// Added to the 150% base critical multiplier (total capped at 350%).
	CritBonus int `json:"crit_bonus"`
}

// ClassTable maps class tags to their parameters. Built once at startup
// and treated as immutable afterwards.
type ClassTable map[Class]ClassParams

// Params returns the parameters for the given class, falling back to the
// warrior row so an unknown tag never produces zeroed combat stats.
func (t ClassTable) Params(c Class) ClassParams {
	if p, ok := t[c]; ok {
		return p
	}
	return t[ClassWarrior]
}

// DefaultClassTable returns the built-in seven-class table. A config file
// may override individual rows.
func DefaultClassTable() ClassTable {
	list := []ClassParams{
		{Name: ClassWarrior, Strength: 120, Defense: 80, Agility: 90, Vitality: 100, Intelligence: 60, MagicPower: 50,
			PhysicalWeight: 90, MagicalWeight: 10},
		{Name: ClassKnight, Strength: 90, Defense: 120, Agility: 70, Vitality: 110, Intelligence: 60, MagicPower: 50,
			PhysicalWeight: 85, MagicalWeight: 15, HealthBonusPercent: 15},
		{Name: ClassRanger, Strength: 90, Defense: 80, Agility: 130, Vitality: 90, Intelligence: 80, MagicPower: 60,
			PhysicalWeight: 80, MagicalWeight: 20, DodgeBonusPercent: 30, CritBonus: 50},
		{Name: ClassMage, Strength: 50, Defense: 60, Agility: 80, Vitality: 80, Intelligence: 120, MagicPower: 130,
			PhysicalWeight: 20, MagicalWeight: 80, CritBonus: 100},
		{Name: ClassGuardian, Strength: 70, Defense: 130, Agility: 60, Vitality: 120, Intelligence: 70, MagicPower: 80,
			PhysicalWeight: 70, MagicalWeight: 30, DefenseBonusPercent: 20},
		{Name: ClassKing, Strength: 110, Defense: 110, Agility: 90, Vitality: 110, Intelligence: 90, MagicPower: 90,
			PhysicalWeight: 60, MagicalWeight: 40, HealthBonusPercent: 20, CritBonus: 50},
		{Name: ClassAvatar, Strength: 115, Defense: 115, Agility: 115, Vitality: 115, Intelligence: 115, MagicPower: 115,
			Balanced: true, HealthBonusPercent: 10, CritBonus: 75},
	}
	t := make(ClassTable, len(list))
	for _, p := range list {
		t[p.Name] = p
	}
	return t
}
