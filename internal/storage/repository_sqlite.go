package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cardforge/card-arena/internal/game"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) GetCharacterByID(id uint) (*game.Character, error) {
	var c game.Character
	if err := r.db.Preload("Weapon").Preload("Armor").First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: character %d", game.ErrNotFound, id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *sqliteRepository) SaveCharacter(c *game.Character) error {
	return r.db.Save(c).Error
}

// GetTopCharacters returns the top N characters ordered by wins, then by
// accumulated experience.
func (r *sqliteRepository) GetTopCharacters(limit int) ([]game.Character, error) {
	if limit <= 0 {
		limit = 10
	}
	var chars []game.Character
	if err := r.db.Model(&game.Character{}).
		Order("wins DESC").
		Order("experience DESC").
		Limit(limit).
		Find(&chars).Error; err != nil {
		return nil, err
	}
	return chars, nil
}

func (r *sqliteRepository) CreateBattle(b *game.Battle) error {
	return r.db.Create(b).Error
}

func (r *sqliteRepository) GetBattleByID(id uint) (*game.Battle, error) {
	var b game.Battle
	err := r.db.Preload("Snapshots", func(db *gorm.DB) *gorm.DB {
		return db.Order("slot ASC")
	}).Preload("Actions", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: battle %d", game.ErrNotFound, id)
		}
		return nil, err
	}
	return &b, nil
}

func (r *sqliteRepository) UpdateBattle(b *game.Battle) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(b).Error
}

func (r *sqliteRepository) FindInProgressBattles() ([]game.Battle, error) {
	var battles []game.Battle
	if err := r.db.Preload("Snapshots").
		Where("state = ?", game.BattleInProgress).
		Find(&battles).Error; err != nil {
		return nil, err
	}
	return battles, nil
}

func (r *sqliteRepository) ClaimStaleBattles(cutoff time.Time, limit int, claimTTL time.Duration, workerID string) ([]uint, error) {
	if limit <= 0 {
		limit = 20
	}
	now := time.Now()
	staleClaim := now.Add(-claimTTL)

	var ids []uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&game.Battle{}).
			Where("state = ? AND last_action_at <= ?", game.BattleInProgress, cutoff).
			Where("claimed_by = '' OR claimed_by IS NULL OR claimed_at <= ?", staleClaim).
			Order("last_action_at ASC").
			Limit(limit).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&game.Battle{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{"claimed_by": workerID, "claimed_at": now}).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *sqliteRepository) GetBattleActions(battleID uint) ([]game.BattleAction, error) {
	var actions []game.BattleAction
	if err := r.db.Where("battle_id = ?", battleID).
		Order("id ASC").
		Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *sqliteRepository) GetDamageTotals(battleID uint) ([]DamageTotal, error) {
	var totals []DamageTotal
	if err := r.db.Model(&game.BattleAction{}).
		Select("actor_id AS player_id, COALESCE(SUM(damage), 0) AS total").
		Where("battle_id = ? AND actor_id != ''", battleID).
		Group("actor_id").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	return totals, nil
}

// UpsertChallenge keeps at most one row per ordered (challenger,
// challenged) pair; re-issuing replaces the proposed character. The
// conflict branch also clears deleted_at so a pair that previously
// rejected or completed a challenge can be challenged again.
func (r *sqliteRepository) UpsertChallenge(ch *game.Challenge) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "challenger_id"}, {Name: "challenged_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"character_id", "updated_at", "deleted_at"}),
	}).Create(ch).Error
}

func (r *sqliteRepository) GetChallenge(challengerID, challengedID string) (*game.Challenge, error) {
	var ch game.Challenge
	err := r.db.Where("challenger_id = ? AND challenged_id = ?", challengerID, challengedID).
		First(&ch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no pending challenge", game.ErrNotFound)
		}
		return nil, err
	}
	return &ch, nil
}

// Challenges are ephemeral bookkeeping, so deletes are hard deletes: a
// soft-deleted row would keep occupying the unique pair index and shadow
// any later re-issue.
func (r *sqliteRepository) DeleteChallenge(challengerID, challengedID string) error {
	return r.db.Unscoped().
		Where("challenger_id = ? AND challenged_id = ?", challengerID, challengedID).
		Delete(&game.Challenge{}).Error
}

// DeleteChallengePair clears both directions of the pair's bookkeeping.
func (r *sqliteRepository) DeleteChallengePair(a, b string) error {
	return r.db.Unscoped().
		Where("(challenger_id = ? AND challenged_id = ?) OR (challenger_id = ? AND challenged_id = ?)", a, b, b, a).
		Delete(&game.Challenge{}).Error
}
