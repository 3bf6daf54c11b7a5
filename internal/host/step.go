package host

import (
	"context"

	"github.com/ericogr/monster-arena/internal/constants"
	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/logging"
	"github.com/ericogr/monster-arena/internal/protocol"
)

// maxMessagesPerStep bounds how many requests one participant can have
// handled in a single step.
const maxMessagesPerStep = 64

// StepResult reports what happened during one Step.
type StepResult struct {
	Phase game.Phase
	// Disconnected lists participants whose endpoint reported a disconnect.
	// The caller is expected to Deactivate them.
	Disconnected []string
	// Errors holds the resolution errors of actions resolved this step.
	Errors []error
	// Resolved is true when a turn was resolved this step.
	Resolved bool
	Ended    bool
	Winner   string
}

// Step drains every active participant's inbound messages, applies
// forfeits, then advances the phase machine by at most one transition.
// It never blocks.
func (h *Host) Step(ctx context.Context) StepResult {
	var res StepResult
	if h.phase != game.PhaseEnd {
		for _, p := range h.active() {
			h.drain(p, &res)
		}
		h.settleForfeits()
	}
	if h.phase != game.PhaseEnd {
		h.advance(ctx, &res)
	}
	res.Phase = h.phase
	res.Ended = h.phase == game.PhaseEnd
	res.Winner = h.winner
	return res
}

func (h *Host) drain(p *participant, res *StepResult) {
	for i := 0; i < maxMessagesPerStep; i++ {
		if p.endpoint == nil {
			return
		}
		msg, st := p.endpoint.Receive()
		switch st {
		case protocol.Empty:
			return
		case protocol.Disconnected:
			res.Disconnected = append(res.Disconnected, p.ID)
			return
		}
		h.handle(p, msg)
	}
}

func (h *Host) advance(ctx context.Context, res *StepResult) {
	from := h.phase
	switch h.phase {
	case game.PhaseStart:
		h.begin()
		h.phase = game.PhaseStartSelecting
	case game.PhaseStartSelecting:
		h.turn++
		for _, p := range h.table {
			p.Acked = false
		}
		for _, p := range h.active() {
			if !p.Forfeited {
				p.send(h.selectPrompt(p))
			}
		}
		h.phase = game.PhaseWaitSelecting
	case game.PhaseWaitSelecting:
		if h.selectionsComplete() {
			h.phase = game.PhaseStartMoving
		}
	case game.PhaseStartMoving:
		h.resolveTurn(ctx, res)
		res.Resolved = true
		h.phase = game.PhaseWaitMoving
	case game.PhaseWaitMoving:
		if !h.allAcked() {
			return
		}
		if winner, decided := h.decided(); decided {
			h.end(winner)
			return
		}
		if !h.replacementsPending() {
			h.phase = game.PhaseStartSelecting
		}
	}
	if from != h.phase {
		f := h.fields(nil)
		f["from"] = from
		logging.Debug("phase transition", f)
	}
}

// begin reveals every team's opening creatures and sends each participant
// its initial view.
func (h *Host) begin() {
	for _, p := range h.table {
		for _, idx := range p.Party.Active {
			if idx != game.EmptySlot {
				p.Party.Creatures[idx].Known = true
			}
		}
	}
	for _, p := range h.active() {
		p.send(protocol.Outbound{Type: protocol.OutBegin, Begin: h.beginView(p)})
	}
	logging.Info("battle started", h.fields(nil))
}

func (h *Host) beginView(p *participant) *protocol.BeginView {
	v := &protocol.BeginView{
		ID:     p.ID,
		Name:   p.Name,
		Team:   p.Team,
		Wild:   h.wild,
		Party:  ownParty(p.Party),
		Active: append([]int(nil), p.Party.Active...),
	}
	if len(p.Bag) > 0 {
		v.Bag = make(map[dex.ID]int, len(p.Bag))
		for id, n := range p.Bag {
			v.Bag[id] = n
		}
	}
	for _, o := range h.table {
		if o.Team != p.Team {
			v.Others = append(v.Others, game.PublicParty(o.Team, o.ID, o.Name, o.Party))
		}
	}
	return v
}

func (h *Host) selectPrompt(p *participant) protocol.Outbound {
	return protocol.Outbound{Type: protocol.OutStartSelecting, Turn: h.turn, Slots: h.unselected(p)}
}

// unselected lists the occupied slots of p still lacking a selection.
func (h *Host) unselected(p *participant) []int {
	var out []int
	for slot := range p.Party.Active {
		if c, ok := p.Party.At(slot); ok && !c.Out() && c.Pending == nil {
			out = append(out, slot)
		}
	}
	return out
}

// selectionsComplete reports whether every active participant has a
// selection for each of its occupied slots.
func (h *Host) selectionsComplete() bool {
	for _, p := range h.active() {
		if !p.Forfeited && len(h.unselected(p)) > 0 {
			return false
		}
	}
	return true
}

func (h *Host) allAcked() bool {
	for _, p := range h.active() {
		if !p.Forfeited && !p.Acked {
			return false
		}
	}
	return true
}

// replacementsPending includes inactive teams: a disconnected team with
// benched creatures holds the turn until it reconnects or is forfeited.
func (h *Host) replacementsPending() bool {
	for _, p := range h.table {
		if !p.Forfeited && p.Party.NeedsReplacement() {
			return true
		}
	}
	return false
}

// decided reports whether at most one participant can still win.
func (h *Host) decided() (string, bool) {
	var alive []*participant
	for _, p := range h.table {
		if p.alive() {
			alive = append(alive, p)
		}
	}
	switch len(alive) {
	case 0:
		return "", true
	case 1:
		return alive[0].ID, true
	}
	return "", false
}

// settleForfeits pulls forfeited teams off the field and ends the battle
// when only one participant is left.
func (h *Host) settleForfeits() {
	forfeits := false
	for _, p := range h.table {
		if !p.Forfeited {
			continue
		}
		forfeits = true
		for slot := range p.Party.Active {
			if c, ok := p.Party.At(slot); ok {
				c.Pending = nil
				p.Party.Vacate(slot)
			}
		}
	}
	if !forfeits {
		return
	}
	if winner, decided := h.decided(); decided {
		h.end(winner)
	}
}

// end moves to the terminal phase and notifies each participant once.
func (h *Host) end(winner string) {
	h.phase = game.PhaseEnd
	h.winner = winner
	for _, p := range h.active() {
		if !p.EndSent {
			p.EndSent = true
			p.send(protocol.Outbound{Type: protocol.OutEnd, Winner: winner})
		}
	}
	f := h.fields(nil)
	f[constants.LogFieldWinner] = winner
	logging.Info("battle ended", f)
}
