package host

import (
	"context"

	"github.com/ericogr/monster-arena/internal/constants"
	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/engine"
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/logging"
	"github.com/ericogr/monster-arena/internal/mechanics"
	"github.com/ericogr/monster-arena/internal/protocol"
)

// resolved is one entry of a turn with its exact outcomes.
type resolved struct {
	actor    game.TeamIndex
	kind     protocol.ActionKind
	move     dex.ID
	item     dex.ID
	outcomes []game.Outcome
}

type reveal struct {
	team int
	msg  protocol.Outbound
}

// turnLog collects everything a turn produces before it is broadcast.
type turnLog struct {
	results []resolved
	// reveals go to every other team ahead of the turn result.
	reveals []reveal
	// after holds per-team notices sent after the turn result.
	after map[int][]protocol.Outbound
}

func (h *Host) resolveTurn(ctx context.Context, res *StepResult) {
	t := &turnLog{after: map[int][]protocol.Outbound{}}
	for _, qa := range engine.BuildTurnQueue(h.rand, h.dex, h.field) {
		p := h.table[qa.Actor.Team]
		c, ok := h.field.At(qa.Actor)
		if !ok || c.Out() || p.Party.PartyIndexAt(qa.Actor.Slot) != qa.PartyIndex {
			continue
		}
		switch qa.Selection.Kind {
		case game.SelectSwitch:
			h.doSwitch(t, p, qa)
		case game.SelectItem:
			h.doItem(ctx, t, p, qa, res)
		case game.SelectMove:
			h.doMove(ctx, t, p, c, qa, res)
		}
	}
	h.residual(t)
	h.broadcast(t)
}

func fail(at game.TeamIndex, reason string) game.Outcome {
	return game.Outcome{Kind: game.OutcomeFail, Target: at, Reason: reason}
}

func (h *Host) doSwitch(t *turnLog, p *participant, qa engine.QueuedAction) {
	r := resolved{actor: qa.Actor, kind: protocol.ActionSwitch}
	idx := qa.Selection.PartyIndex
	if err := p.Party.Swap(qa.Actor.Slot, idx); err != nil {
		r.outcomes = append(r.outcomes, fail(qa.Actor, constants.ReasonCannotEnter))
	} else {
		in := p.Party.Creatures[idx]
		h.reveal(t, p.Team, idx, in)
		r.outcomes = append(r.outcomes, game.Outcome{Kind: game.OutcomeSwitch, Target: qa.Actor, PartyIndex: idx, HP: in.HP, HPPercent: in.HPPercent()})
	}
	t.results = append(t.results, r)
}

func (h *Host) reveal(t *turnLog, team, idx int, c *game.BattleCreature) {
	c.Known = true
	info := c.Public(idx)
	t.reveals = append(t.reveals, reveal{team: team, msg: protocol.Outbound{Type: protocol.OutRevealCreature, Team: team, PartyIndex: idx, Creature: &info}})
}

func (h *Host) doMove(ctx context.Context, t *turnLog, p *participant, c *game.BattleCreature, qa engine.QueuedAction, res *StepResult) {
	r := resolved{actor: qa.Actor, kind: protocol.ActionMove}
	defer func() { t.results = append(t.results, r) }()

	ms := qa.Selection.MoveSlot
	if !c.MoveUsable(ms) {
		r.outcomes = append(r.outcomes, fail(qa.Actor, constants.ReasonNoPP))
		return
	}
	r.move = c.Base.Moves[ms].Move
	cp := h.field.Checkpoint()

	pre, proceed := h.checkBlocked(c, qa.Actor)
	r.outcomes = append(r.outcomes, pre...)
	if !proceed {
		return
	}

	mode, status := dex.TargetOpponent, false
	if mv, ok := h.dex.Move(r.move); ok {
		mode, status = mv.Target, mv.Category == dex.Status
	}
	targets := engine.ResolveTargets(h.rand, h.field, qa.Actor, mode, qa.Selection.Target, status)
	if len(targets) == 0 && mode != dex.TargetNone {
		c.Base.Moves[ms].PP--
		r.outcomes = append(r.outcomes, game.Outcome{Kind: game.OutcomeMiss, Target: qa.Actor, Reason: constants.ReasonNoTarget})
		return
	}

	out, err := h.engine.UseMove(ctx, r.move, engine.Request{Actor: qa.Actor, Targets: targets, Field: h.field, Rand: h.rand})
	if err != nil {
		h.field.Restore(cp)
		h.resolutionFailed(p, &r, err, res)
		return
	}
	c.Base.Moves[ms].PP--
	r.outcomes = append(r.outcomes, out...)
	h.settle(t, p, qa, &r)
}

func (h *Host) resolutionFailed(p *participant, r *resolved, err error, res *StepResult) {
	res.Errors = append(res.Errors, err)
	f := h.fields(p)
	f[constants.LogFieldAction] = r.kind
	f[constants.LogFieldSlot] = r.actor.Slot
	logging.Error("action resolution failed", err, f)
	r.outcomes = []game.Outcome{fail(r.actor, constants.ReasonResolutionError)}
}

// checkBlocked applies flinch and ailments that act before a move.
func (h *Host) checkBlocked(c *game.BattleCreature, at game.TeamIndex) ([]game.Outcome, bool) {
	blocked := func(reason string) ([]game.Outcome, bool) {
		return []game.Outcome{{Kind: game.OutcomeBlocked, Target: at, Ailment: c.Ailment, Reason: reason}}, false
	}
	if c.Flinch {
		c.Flinch = false
		return blocked(constants.ReasonFlinched)
	}
	switch c.Ailment {
	case dex.AilmentSleep:
		if c.AilmentTurns > 0 {
			c.AilmentTurns--
			return blocked(constants.ReasonAsleep)
		}
		c.Ailment = dex.AilmentNone
		return []game.Outcome{{Kind: game.OutcomeCure, Target: at, Ailment: dex.AilmentSleep}}, true
	case dex.AilmentFreeze:
		if mechanics.Percent(h.rand, 20) {
			c.Ailment = dex.AilmentNone
			return []game.Outcome{{Kind: game.OutcomeCure, Target: at, Ailment: dex.AilmentFreeze}}, true
		}
		return blocked(constants.ReasonFrozen)
	case dex.AilmentParalysis:
		if mechanics.Percent(h.rand, 25) {
			return blocked(constants.ReasonParalyzed)
		}
	}
	return nil, true
}

func (h *Host) doItem(ctx context.Context, t *turnLog, p *participant, qa engine.QueuedAction, res *StepResult) {
	r := resolved{actor: qa.Actor, kind: protocol.ActionItem, item: qa.Selection.Item}
	defer func() { t.results = append(t.results, r) }()

	it, ok := h.dex.Item(qa.Selection.Item)
	if !ok || p.Bag[it.ID] <= 0 {
		r.outcomes = append(r.outcomes, fail(qa.Actor, constants.ReasonItemNotHeld))
		return
	}
	if it.Kind == dex.ItemBall {
		h.capture(t, p, qa, it, &r)
		return
	}
	targets := engine.ResolveTargets(h.rand, h.field, qa.Actor, it.Target, qa.Selection.Target, true)
	if len(targets) == 0 && it.Target != dex.TargetNone {
		r.outcomes = append(r.outcomes, game.Outcome{Kind: game.OutcomeMiss, Target: qa.Actor, Reason: constants.ReasonNoTarget})
		return
	}
	out, err := h.engine.UseItem(ctx, it.ID, engine.Request{Actor: qa.Actor, Targets: targets, Field: h.field, Rand: h.rand})
	if err != nil {
		h.resolutionFailed(p, &r, err, res)
		return
	}
	p.Bag[it.ID]--
	r.outcomes = append(r.outcomes, out...)
	h.settle(t, p, qa, &r)
}

// capture throws a ball. Outside a wild battle, or at a creature that is
// not wild, nothing changes.
func (h *Host) capture(t *turnLog, p *participant, qa engine.QueuedAction, it *dex.Item, r *resolved) {
	targets := engine.ResolveTargets(h.rand, h.field, qa.Actor, dex.TargetOpponent, qa.Selection.Target, false)
	if len(targets) == 0 {
		r.outcomes = append(r.outcomes, game.Outcome{Kind: game.OutcomeMiss, Target: qa.Actor, Reason: constants.ReasonNoTarget})
		return
	}
	at := targets[0]
	owner := h.table[at.Team]
	if !h.wild || !owner.WildSide {
		r.outcomes = append(r.outcomes, fail(qa.Actor, constants.ReasonNotWild))
		return
	}
	c, _ := h.field.At(at)
	p.Bag[it.ID]--
	caught := mechanics.RollCapture(h.rand, c.Species.CatchRate, it.CatchBonus, c.HP, c.MaxHP())
	o := game.Outcome{Kind: game.OutcomeCapture, Target: at, Success: caught, HPPercent: c.HPPercent()}
	if !caught {
		r.outcomes = append(r.outcomes, o)
		return
	}

	owner.Party.Vacate(at.Slot)
	c.Captured = true
	c.ResetVolatile()

	base := *c.Base
	base.Moves = append([]game.MoveSlot(nil), c.Base.Moves...)
	base.HP = c.HP
	base.FreshHP = false
	base.Ailment = c.Ailment
	joined, err := game.NewBattleCreature(h.dex, &base)
	if err == nil {
		idx := p.Party.Add(joined)
		o.PartyIndex = idx
		h.reveal(t, p.Team, idx, joined)
		own := protocol.NewOwnCreature(idx, joined)
		t.after[p.Team] = append(t.after[p.Team], protocol.Outbound{Type: protocol.OutCaptured, Team: p.Team, PartyIndex: idx, Captured: &own})
	}
	r.outcomes = append(r.outcomes, o)
}

// settle removes creatures whose HP reached zero from their slots and
// grants experience for opponents knocked out by the actor.
func (h *Host) settle(t *turnLog, p *participant, qa engine.QueuedAction, r *resolved) {
	for team, tp := range h.table {
		for slot, idx := range tp.Party.Active {
			if idx == game.EmptySlot {
				continue
			}
			c := tp.Party.Creatures[idx]
			if !c.Fainted() {
				continue
			}
			at := game.TeamIndex{Team: team, Slot: slot}
			r.outcomes = append(r.outcomes, game.Outcome{Kind: game.OutcomeFaint, Target: at, PartyIndex: idx})
			tp.Party.Vacate(slot)
			c.ResetVolatile()
			if team != qa.Actor.Team && p.ExperienceGain {
				h.grantExperience(t, p, qa, c, r)
			}
		}
	}
}

func (h *Host) grantExperience(t *turnLog, p *participant, qa engine.QueuedAction, defeated *game.BattleCreature, r *resolved) {
	winner := p.Party.Creatures[qa.PartyIndex]
	if winner.Out() {
		return
	}
	exp := mechanics.ExperienceYield(defeated.Species.BaseExperience, h.wild, h.debugExp)
	if exp <= 0 {
		return
	}
	before := winner.Base.Level
	winner.Base.Experience += exp
	level := mechanics.LevelForExperience(winner.Base.Experience)
	if level > before {
		old := winner.Base.Stats
		winner.Base.Level = level
		winner.Base.Stats = mechanics.StatsAt(winner.Species.BaseStats, level)
		winner.HP += winner.Base.Stats.HP - old.HP
		if winner.HP > winner.MaxHP() {
			winner.HP = winner.MaxHP()
		}
		for l := before + 1; l <= level; l++ {
			for _, id := range winner.Species.MovesAt(l) {
				if h.grantMove(p, qa.PartyIndex, winner, id) {
					t.after[p.Team] = append(t.after[p.Team], protocol.Outbound{Type: protocol.OutMoveLearnable, Team: p.Team, PartyIndex: qa.PartyIndex, Move: id})
				}
			}
		}
	}
	r.outcomes = append(r.outcomes, game.Outcome{Kind: game.OutcomeExperience, Target: qa.Actor, Amount: exp, Level: winner.Base.Level, PartyIndex: qa.PartyIndex})
}

// grantMove records a learnable move unless it is known or already granted.
func (h *Host) grantMove(p *participant, idx int, c *game.BattleCreature, id dex.ID) bool {
	for _, ms := range c.Base.Moves {
		if ms.Move == id {
			return false
		}
	}
	for _, l := range p.Learnable {
		if l.PartyIndex == idx && l.Move == id {
			return false
		}
	}
	p.Learnable = append(p.Learnable, Learnable{PartyIndex: idx, Move: id})
	return true
}

// residual deals end-of-turn burn and poison damage and clears flinches.
func (h *Host) residual(t *turnLog) {
	for team, p := range h.table {
		for slot := range p.Party.Active {
			c, ok := p.Party.At(slot)
			if !ok || c.Out() {
				continue
			}
			c.Flinch = false
			var frac int
			var reason string
			switch c.Ailment {
			case dex.AilmentBurn:
				frac, reason = 16, constants.ReasonBurn
			case dex.AilmentPoison:
				frac, reason = 8, constants.ReasonPoison
			default:
				continue
			}
			at := game.TeamIndex{Team: team, Slot: slot}
			dealt := c.Damage(max(1, c.MaxHP()/frac))
			r := resolved{actor: at, kind: protocol.ActionResidual}
			r.outcomes = append(r.outcomes, game.Outcome{
				Kind: game.OutcomeDamage, Target: at, Amount: dealt, HP: c.HP, HPPercent: c.HPPercent(), Ailment: c.Ailment, Reason: reason,
			})
			if c.Fainted() {
				r.outcomes = append(r.outcomes, game.Outcome{Kind: game.OutcomeFaint, Target: at, PartyIndex: p.Party.Active[slot]})
				p.Party.Vacate(slot)
				c.ResetVolatile()
			}
			t.results = append(t.results, r)
		}
	}
}

// broadcast sends reveals, then the turn result filtered per recipient,
// then per-team notices. Every recipient gets the same result order.
func (h *Host) broadcast(t *turnLog) {
	recipients := h.active()
	for _, rv := range t.reveals {
		for _, p := range recipients {
			if p.Team != rv.team {
				p.send(rv.msg)
			}
		}
	}
	for _, p := range h.table {
		results := make([]protocol.ActionResult, len(t.results))
		for i, r := range t.results {
			pub := make([]game.PublicOutcome, len(r.outcomes))
			for j, o := range r.outcomes {
				pub[j] = o.Public(o.Target.Team == p.Team)
			}
			results[i] = protocol.ActionResult{Actor: r.actor, Kind: r.kind, Move: r.move, Item: r.item, Outcomes: pub}
		}
		p.LastResult = results
		if !p.Active {
			continue
		}
		p.send(protocol.Outbound{Type: protocol.OutTurnResult, Turn: h.turn, Results: results})
		for _, msg := range t.after[p.Team] {
			p.send(msg)
		}
	}
}
