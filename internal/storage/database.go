package storage

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cardforge/card-arena/internal/game"
	"github.com/cardforge/card-arena/internal/logging"
)

// OpenAndMigrate opens the SQLite database, keeps the schema current via
// AutoMigrate and seeds the default equipment catalogue on first run.
func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&game.Weapon{},
		&game.Armor{},
		&game.Character{},
		&game.Battle{},
		&game.BattleSnapshot{},
		&game.BattleAction{},
		&game.Challenge{},
	); err != nil {
		return nil, err
	}
	seedDefaultEquipment(db)
	return db, nil
}

// seedDefaultEquipment inserts the starter weapon/armor catalogue when the
// tables are empty. Stats are flat bonuses; see the stats package for how
// each bonus feeds the derived outputs.
func seedDefaultEquipment(db *gorm.DB) {
	var count int64
	db.Model(&game.Weapon{}).Count(&count)
	if count == 0 {
		weapons := []game.Weapon{
			{Name: "Training Sword", AttackBonus: 5},
			{Name: "Steel Blade", AttackBonus: 15},
			{Name: "Apprentice Staff", MagicBonus: 5},
			{Name: "Runed Staff", MagicBonus: 15},
			{Name: "Royal Saber", AttackBonus: 12, MagicBonus: 8},
		}
		if err := db.Create(&weapons).Error; err != nil {
			logging.Error("failed to seed weapons", err, nil)
		}
	}
	db.Model(&game.Armor{}).Count(&count)
	if count == 0 {
		armors := []game.Armor{
			{Name: "Padded Vest", DefenseBonus: 5, HealthBonus: 20},
			{Name: "Chainmail", DefenseBonus: 15, HealthBonus: 40},
			{Name: "Silk Robe", DefenseBonus: 5, HealthBonus: 10, AgilityBonus: 8},
			{Name: "Scout Leathers", DefenseBonus: 8, AgilityBonus: 16},
		}
		if err := db.Create(&armors).Error; err != nil {
			logging.Error("failed to seed armor", err, nil)
		}
	}
}
