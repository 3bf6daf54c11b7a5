package storage

import (
	"errors"
	"time"
)

var ErrBattleNotFound = errors.New("battle not found")

// BattleRecord is the persisted image of one battle. Snapshot holds the
// host snapshot taken after the last resolved turn.
type BattleRecord struct {
	ID         string `gorm:"primaryKey"`
	Wild       bool
	Phase      string
	Turn       int
	Snapshot   []byte
	Finished   bool `gorm:"index"`
	Winner     string
	Reason     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt *time.Time
}

// ParticipantStats accumulates finished battles per participant id.
type ParticipantStats struct {
	ParticipantID string `gorm:"primaryKey" json:"participant_id"`
	Name          string `json:"name"`
	BattlesPlayed int    `json:"battles_played"`
	Wins          int    `json:"wins"`
	Forfeits      int    `json:"forfeits"`
	UpdatedAt     time.Time
}

// BattleResult summarises a finished battle for stats keeping.
type BattleResult struct {
	Winner       string
	Reason       string
	Participants []ResultEntry
}

type ResultEntry struct {
	ID        string
	Name      string
	Forfeited bool
}

type Repository interface {
	CreateBattle(b *BattleRecord) error
	GetBattle(id string) (*BattleRecord, error)
	// SaveSnapshot stores the latest snapshot of an unfinished battle.
	SaveSnapshot(id, phase string, turn int, snapshot []byte) error
	// FinishBattle records the result and updates participant stats once.
	FinishBattle(id string, result BattleResult) error
	// GetUnfinished returns battles that were running when the process stopped.
	GetUnfinished() ([]BattleRecord, error)
	GetStats(participantID string) (*ParticipantStats, error)
	GetTopParticipants(limit int) ([]ParticipantStats, error)
}
