package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateBattle(b *BattleRecord) error {
	return r.db.Create(b).Error
}

func (r *sqliteRepository) GetBattle(id string) (*BattleRecord, error) {
	var b BattleRecord
	if err := r.db.First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBattleNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *sqliteRepository) SaveSnapshot(id, phase string, turn int, snapshot []byte) error {
	res := r.db.Model(&BattleRecord{}).
		Where("id = ? AND finished = ?", id, false).
		Updates(map[string]interface{}{"phase": phase, "turn": turn, "snapshot": snapshot})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBattleNotFound
	}
	return nil
}

func (r *sqliteRepository) FinishBattle(id string, result BattleResult) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var b BattleRecord
		if err := tx.First(&b, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBattleNotFound
			}
			return err
		}
		// stats are counted only the first time
		if b.Finished {
			return nil
		}
		now := time.Now()
		if err := tx.Model(&b).Updates(map[string]interface{}{
			"finished": true, "winner": result.Winner, "reason": result.Reason, "finished_at": &now,
		}).Error; err != nil {
			return err
		}
		for _, p := range result.Participants {
			wins, forfeits := 0, 0
			if p.ID == result.Winner {
				wins = 1
			}
			if p.Forfeited {
				forfeits = 1
			}
			if err := upsertStats(tx, p, wins, forfeits); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertStats(tx *gorm.DB, p ResultEntry, wins, forfeits int) error {
	s := ParticipantStats{
		ParticipantID: p.ID,
		Name:          p.Name,
		BattlesPlayed: 1,
		Wins:          wins,
		Forfeits:      forfeits,
	}
	updates := map[string]interface{}{
		"battles_played": gorm.Expr("battles_played + 1"),
		"wins":           gorm.Expr("wins + ?", wins),
		"forfeits":       gorm.Expr("forfeits + ?", forfeits),
		"updated_at":     time.Now(),
	}
	if p.Name != "" {
		updates["name"] = p.Name
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "participant_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&s).Error
}

func (r *sqliteRepository) GetUnfinished() ([]BattleRecord, error) {
	var out []BattleRecord
	if err := r.db.Where("finished = ?", false).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sqliteRepository) GetStats(participantID string) (*ParticipantStats, error) {
	var s ParticipantStats
	if err := r.db.First(&s, "participant_id = ?", participantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ParticipantStats{ParticipantID: participantID}, nil
		}
		return nil, err
	}
	return &s, nil
}

// GetTopParticipants orders by wins, then battles played.
func (r *sqliteRepository) GetTopParticipants(limit int) ([]ParticipantStats, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []ParticipantStats
	if err := r.db.Model(&ParticipantStats{}).
		Order("wins DESC").
		Order("battles_played DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
