package api

import (
	"github.com/ericogr/monster-arena/internal/host"
	"github.com/ericogr/monster-arena/internal/protocol"
	"github.com/ericogr/monster-arena/internal/service"
	"github.com/ericogr/monster-arena/internal/storage"
)

// Battles is the part of the session manager the handlers use.
type Battles interface {
	CreateBattle(req service.CreateRequest) (host.Summary, error)
	Summary(id string) (host.Summary, error)
	Attach(battleID, participantID string, conn protocol.Endpoint) error
}

// Stats reads finished-battle statistics.
type Stats interface {
	GetStats(participantID string) (*storage.ParticipantStats, error)
	GetTopParticipants(limit int) ([]storage.ParticipantStats, error)
}

// BattleHandler groups all battle-related HTTP handlers.
type BattleHandler struct {
	battles Battles
	stats   Stats
}

func NewBattleHandler(battles Battles, stats Stats) *BattleHandler {
	return &BattleHandler{battles: battles, stats: stats}
}
