package host

import (
	"github.com/ericogr/monster-arena/internal/constants"
	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/logging"
	"github.com/ericogr/monster-arena/internal/protocol"
)

// handle applies one participant request. Illegal or mistimed requests are
// answered with a negative acknowledgement or dropped; none stop the host.
func (h *Host) handle(p *participant, msg protocol.Inbound) {
	if p.Forfeited {
		return
	}
	switch msg.Type {
	case protocol.InForfeit:
		p.Forfeited = true
		logging.Info("participant forfeited", h.fields(p))
	case protocol.InTurnAcknowledged:
		if h.phase == game.PhaseWaitMoving {
			p.Acked = true
		}
	case protocol.InSelectMove:
		h.selectMove(p, msg)
	case protocol.InSelectItem:
		h.selectItem(p, msg)
	case protocol.InSwitch:
		h.selectSwitch(p, msg)
	case protocol.InReplaceFainted:
		h.replaceFainted(p, msg)
	case protocol.InLearnMove:
		h.learnMove(p, msg)
	default:
		h.reject(p, msg, constants.ReasonUnknownRequest)
	}
}

func (h *Host) ack(p *participant, msg protocol.Inbound) {
	p.send(protocol.Outbound{Type: protocol.OutAck, OK: true, Request: msg.Type, Slot: msg.Slot})
}

func (h *Host) reject(p *participant, msg protocol.Inbound, reason string) {
	f := h.fields(p)
	f[constants.LogFieldRequest] = msg.Type
	f[constants.LogFieldReason] = reason
	logging.Debug("request rejected", f)
	p.send(protocol.Outbound{Type: protocol.OutAck, OK: false, Request: msg.Type, Slot: msg.Slot, Reason: reason})
}

// selectable returns the creature a selection for msg.Slot binds to.
func (h *Host) selectable(p *participant, msg protocol.Inbound) (*game.BattleCreature, bool) {
	if h.phase != game.PhaseStartSelecting && h.phase != game.PhaseWaitSelecting {
		h.reject(p, msg, constants.ReasonNotSelecting)
		return nil, false
	}
	c, ok := p.Party.At(msg.Slot)
	if !ok || c.Out() {
		h.reject(p, msg, constants.ReasonEmptySlot)
		return nil, false
	}
	if msg.Target != nil && !h.onField(*msg.Target) {
		h.reject(p, msg, constants.ReasonBadTarget)
		return nil, false
	}
	return c, true
}

func (h *Host) onField(ti game.TeamIndex) bool {
	return ti.Team >= 0 && ti.Team < h.field.TeamCount() && ti.Slot >= 0 && ti.Slot < h.field.SlotCount(ti.Team)
}

func (h *Host) selectMove(p *participant, msg protocol.Inbound) {
	c, ok := h.selectable(p, msg)
	if !ok {
		return
	}
	if msg.MoveSlot < 0 || msg.MoveSlot >= len(c.Base.Moves) {
		h.reject(p, msg, constants.ReasonBadMoveSlot)
		return
	}
	if !c.MoveUsable(msg.MoveSlot) {
		h.reject(p, msg, constants.ReasonNoPP)
		return
	}
	c.Pending = &game.Selection{Kind: game.SelectMove, MoveSlot: msg.MoveSlot, Target: copyTarget(msg.Target)}
	h.ack(p, msg)
}

func (h *Host) selectItem(p *participant, msg protocol.Inbound) {
	c, ok := h.selectable(p, msg)
	if !ok {
		return
	}
	it, ok := h.dex.Item(msg.Item)
	if !ok {
		h.reject(p, msg, constants.ReasonUnknownItem)
		return
	}
	if p.Bag[it.ID] <= 0 {
		h.reject(p, msg, constants.ReasonItemNotHeld)
		return
	}
	if it.Kind == dex.ItemBall && !h.capturable(msg.Target) {
		h.reject(p, msg, constants.ReasonNotWild)
		return
	}
	c.Pending = &game.Selection{Kind: game.SelectItem, Item: it.ID, Target: copyTarget(msg.Target)}
	h.ack(p, msg)
}

// capturable reports whether a ball may be thrown at target. Without an
// explicit target any wild team qualifies.
func (h *Host) capturable(target *game.TeamIndex) bool {
	if !h.wild {
		return false
	}
	if target != nil {
		return h.table[target.Team].WildSide
	}
	for _, p := range h.table {
		if p.WildSide {
			return true
		}
	}
	return false
}

func (h *Host) selectSwitch(p *participant, msg protocol.Inbound) {
	c, ok := h.selectable(p, msg)
	if !ok {
		return
	}
	if err := p.Party.CanEnter(msg.PartyIndex); err != nil {
		h.reject(p, msg, constants.ReasonCannotEnter)
		return
	}
	c.Pending = &game.Selection{Kind: game.SelectSwitch, PartyIndex: msg.PartyIndex}
	h.ack(p, msg)
}

// replaceFainted fills an emptied slot. Opponents learn the newcomer and the
// requester gets a confirmation either way.
func (h *Host) replaceFainted(p *participant, msg protocol.Inbound) {
	confirm := protocol.Outbound{Type: protocol.OutConfirmReplace, Team: p.Team, Slot: msg.Slot, PartyIndex: msg.PartyIndex}
	if h.phase == game.PhaseStart {
		confirm.Reason = constants.ReasonNotSelecting
		p.send(confirm)
		return
	}
	if err := p.Party.Place(msg.Slot, msg.PartyIndex); err != nil {
		confirm.Reason = err.Error()
		f := h.fields(p)
		f[constants.LogFieldRequest] = msg.Type
		f[constants.LogFieldReason] = confirm.Reason
		logging.Debug("request rejected", f)
		p.send(confirm)
		return
	}
	c := p.Party.Creatures[msg.PartyIndex]
	c.Known = true
	info := c.Public(msg.PartyIndex)
	for _, o := range h.active() {
		if o.Team == p.Team {
			continue
		}
		pub := info
		o.send(protocol.Outbound{Type: protocol.OutRevealCreature, Team: p.Team, PartyIndex: msg.PartyIndex, Creature: &pub})
		o.send(protocol.Outbound{Type: protocol.OutFaintReplace, Team: p.Team, Slot: msg.Slot, PartyIndex: msg.PartyIndex})
	}
	confirm.OK = true
	p.send(confirm)
}

// learnMove consumes a pending grant.
func (h *Host) learnMove(p *participant, msg protocol.Inbound) {
	move := dex.Canonical(msg.Move)
	grant := -1
	for i, l := range p.Learnable {
		if l.PartyIndex == msg.PartyIndex && l.Move == move {
			grant = i
			break
		}
	}
	mv, ok := h.dex.Move(move)
	if grant < 0 || !ok {
		h.reject(p, msg, constants.ReasonNoGrant)
		return
	}
	c := p.Party.Creatures[msg.PartyIndex]
	slot := game.MoveSlot{Move: mv.ID, PP: mv.PP, MaxPP: mv.PP}
	switch {
	case len(c.Base.Moves) < game.MaxMoves:
		c.Base.Moves = append(c.Base.Moves, slot)
	case msg.ForgetSlot >= 0 && msg.ForgetSlot < len(c.Base.Moves):
		c.Base.Moves[msg.ForgetSlot] = slot
	default:
		h.reject(p, msg, constants.ReasonBadForgetSlot)
		return
	}
	p.Learnable = append(p.Learnable[:grant], p.Learnable[grant+1:]...)
	h.ack(p, msg)
}

func copyTarget(t *game.TeamIndex) *game.TeamIndex {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
