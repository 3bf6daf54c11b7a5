package service

import (
	"math/rand"

	"github.com/ericogr/monster-arena/internal/constants"
	"github.com/ericogr/monster-arena/internal/logging"
	"github.com/ericogr/monster-arena/internal/mirror"
	"github.com/ericogr/monster-arena/internal/protocol"
)

// bot plays the wild side of a wild battle. It sees the battle only
// through its own mirror, like any remote participant.
type bot struct {
	id   string
	pipe *protocol.Pipe
	view *mirror.Mirror
	rand *rand.Rand
}

func newBot(id string, seed int64) *bot {
	return &bot{id: id, pipe: protocol.NewPipe(), view: mirror.New(), rand: rand.New(rand.NewSource(seed))}
}

// step answers everything the host sent since the last call.
func (b *bot) step() {
	for _, msg := range b.pipe.Messages() {
		if err := b.view.Apply(msg); err != nil {
			logging.Debug("bot ignored message", logging.Fields{constants.LogFieldParticipantID: b.id, constants.LogFieldReason: err.Error()})
			continue
		}
		switch msg.Type {
		case protocol.OutStartSelecting:
			b.choose(msg.Slots)
		case protocol.OutTurnResult:
			b.pipe.Submit(protocol.TurnAcknowledged())
			b.replace()
		}
	}
}

func (b *bot) choose(slots []int) {
	for _, slot := range slots {
		moves := b.view.UsableMoves(slot)
		if len(moves) == 0 {
			// nothing left to use: run away
			b.pipe.Submit(protocol.Forfeit())
			return
		}
		b.pipe.Submit(protocol.SelectMove(slot, moves[b.rand.Intn(len(moves))], nil))
	}
}

func (b *bot) replace() {
	reserves := b.view.Reserves()
	for i, slot := range b.view.EmptySlots() {
		if i >= len(reserves) {
			return
		}
		b.pipe.Submit(protocol.ReplaceFainted(slot, reserves[i]))
	}
}
