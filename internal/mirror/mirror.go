// Package mirror keeps a participant's local picture of a battle, built
// only from the messages the host sends to that participant.
package mirror

import (
	"errors"
	"fmt"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/protocol"
)

var ErrNotStarted = errors.New("battle view not started")

type Learnable struct {
	PartyIndex int
	Move       dex.ID
}

// Mirror is the participant-side state. Own creatures are known exactly;
// other teams only through RemoteParty.
type Mirror struct {
	ID     string
	Team   int
	Wild   bool
	Party  []protocol.OwnCreature
	Active []int
	Bag    map[dex.ID]int
	Others map[int]*game.RemoteParty

	Turn int
	// Prompted lists the slots the host asked selections for.
	Prompted   []int
	Learnable  []Learnable
	Log        []protocol.ActionResult
	Rejections []protocol.Outbound
	Ended      bool
	Winner     string

	started bool
}

func New() *Mirror {
	return &Mirror{Others: map[int]*game.RemoteParty{}, Bag: map[dex.ID]int{}}
}

// Apply folds one host message into the mirror.
func (m *Mirror) Apply(msg protocol.Outbound) error {
	if msg.Type != protocol.OutBegin && !m.started {
		return fmt.Errorf("%w: got %s", ErrNotStarted, msg.Type)
	}
	switch msg.Type {
	case protocol.OutBegin:
		if msg.Begin == nil {
			return errors.New("begin without view")
		}
		m.begin(msg.Begin)
	case protocol.OutStartSelecting:
		m.Turn = msg.Turn
		m.Prompted = append([]int(nil), msg.Slots...)
	case protocol.OutTurnResult:
		m.Prompted = nil
		if msg.Replay {
			return nil
		}
		for _, r := range msg.Results {
			m.applyResult(r)
		}
		m.Log = append(m.Log, msg.Results...)
	case protocol.OutRevealCreature:
		if msg.Team == m.Team || msg.Creature == nil {
			return nil
		}
		return m.other(msg.Team).Reveal(*msg.Creature)
	case protocol.OutFaintReplace:
		if msg.Team != m.Team {
			m.other(msg.Team).Place(msg.Slot, msg.PartyIndex)
		}
	case protocol.OutConfirmReplace:
		if msg.OK && msg.Slot >= 0 && msg.Slot < len(m.Active) {
			m.Active[msg.Slot] = msg.PartyIndex
		}
	case protocol.OutCaptured:
		if msg.Captured != nil {
			m.Party = append(m.Party, *msg.Captured)
		}
	case protocol.OutMoveLearnable:
		m.Learnable = append(m.Learnable, Learnable{PartyIndex: msg.PartyIndex, Move: msg.Move})
	case protocol.OutAck:
		if !msg.OK {
			m.Rejections = append(m.Rejections, msg)
		}
	case protocol.OutEnd:
		m.Ended = true
		m.Winner = msg.Winner
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (m *Mirror) begin(v *protocol.BeginView) {
	m.started = true
	m.ID = v.ID
	m.Team = v.Team
	m.Wild = v.Wild
	m.Party = append([]protocol.OwnCreature(nil), v.Party...)
	m.Active = append([]int(nil), v.Active...)
	m.Bag = map[dex.ID]int{}
	for id, n := range v.Bag {
		m.Bag[id] = n
	}
	m.Others = map[int]*game.RemoteParty{}
	for _, rp := range v.Others {
		cp := rp
		cp.Creatures = append([]game.UnknownCreature(nil), rp.Creatures...)
		cp.Active = append([]int(nil), rp.Active...)
		m.Others[rp.Team] = &cp
	}
}

func (m *Mirror) other(team int) *game.RemoteParty {
	rp, ok := m.Others[team]
	if !ok {
		rp = &game.RemoteParty{Team: team}
		m.Others[team] = rp
	}
	return rp
}

// At returns the own creature holding slot.
func (m *Mirror) At(slot int) (*protocol.OwnCreature, bool) {
	if slot < 0 || slot >= len(m.Active) {
		return nil, false
	}
	idx := m.Active[slot]
	if idx == game.EmptySlot || idx >= len(m.Party) {
		return nil, false
	}
	return &m.Party[idx], true
}

func (m *Mirror) applyResult(r protocol.ActionResult) {
	if r.Actor.Team == m.Team {
		m.spend(r)
	}
	for _, o := range r.Outcomes {
		if o.Target.Team != m.Team {
			m.other(o.Target.Team).Apply(o)
			continue
		}
		m.applyOwn(o)
	}
}

// spend mirrors the PP or bag use of an own action. Blocked and failed
// actions use nothing; an item with no target is not used up.
func (m *Mirror) spend(r protocol.ActionResult) {
	for _, o := range r.Outcomes {
		switch o.Kind {
		case game.OutcomeBlocked, game.OutcomeFail:
			return
		case game.OutcomeMiss:
			if r.Kind == protocol.ActionItem && o.Target == r.Actor {
				return
			}
		}
	}
	switch r.Kind {
	case protocol.ActionMove:
		c, ok := m.At(r.Actor.Slot)
		if !ok {
			return
		}
		for i := range c.Creature.Moves {
			if c.Creature.Moves[i].Move == r.Move && c.Creature.Moves[i].PP > 0 {
				c.Creature.Moves[i].PP--
				return
			}
		}
	case protocol.ActionItem:
		if m.Bag[r.Item] > 0 {
			m.Bag[r.Item]--
		}
	}
}

func (m *Mirror) applyOwn(o game.PublicOutcome) {
	if o.Kind == game.OutcomeSwitch {
		if o.Target.Slot >= 0 && o.Target.Slot < len(m.Active) {
			m.Active[o.Target.Slot] = o.PartyIndex
		}
		return
	}
	c, ok := m.At(o.Target.Slot)
	if !ok {
		return
	}
	switch o.Kind {
	case game.OutcomeDamage, game.OutcomeHeal:
		if o.HP != nil {
			c.HP = *o.HP
		}
	case game.OutcomeAilment:
		c.Ailment = o.Ailment
	case game.OutcomeCure:
		c.Ailment = dex.AilmentNone
	case game.OutcomeFaint:
		c.HP = 0
		m.Active[o.Target.Slot] = game.EmptySlot
	case game.OutcomeCapture:
		if o.Success {
			m.Active[o.Target.Slot] = game.EmptySlot
		}
	case game.OutcomeExperience:
		c.Creature.Experience += o.Experience
		c.Creature.Level = o.Level
	}
}

// UsableMoves lists the move slots of the creature in slot with PP left.
func (m *Mirror) UsableMoves(slot int) []int {
	c, ok := m.At(slot)
	if !ok {
		return nil
	}
	var out []int
	for i, ms := range c.Creature.Moves {
		if ms.PP > 0 {
			out = append(out, i)
		}
	}
	return out
}

// Reserves lists own party indices able to fill an empty slot.
func (m *Mirror) Reserves() []int {
	active := map[int]bool{}
	for _, idx := range m.Active {
		active[idx] = true
	}
	var out []int
	for i, c := range m.Party {
		if c.HP > 0 && !active[i] {
			out = append(out, i)
		}
	}
	return out
}

// EmptySlots lists own slots without a creature.
func (m *Mirror) EmptySlots() []int {
	var out []int
	for slot, idx := range m.Active {
		if idx == game.EmptySlot {
			out = append(out, slot)
		}
	}
	return out
}
