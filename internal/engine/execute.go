package engine

import (
	"fmt"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/mechanics"
)

// runDeclarative interprets the action list once per target. The accuracy
// check gates each target separately; a miss yields only a Miss outcome.
func (ac *actionContext) runDeclarative(targets []game.TeamIndex, actions []dex.Action, accuracy bool) error {
	for _, t := range targets {
		c, ok := ac.field.At(t)
		if !ok || c.Out() {
			continue
		}
		if accuracy && !mechanics.Hits(ac.src, ac.info.Accuracy) {
			ac.add(game.Outcome{Kind: game.OutcomeMiss, Target: t})
			continue
		}
		if err := ac.execActions(t, c, actions); err != nil {
			return err
		}
	}
	return nil
}

func (ac *actionContext) execActions(at game.TeamIndex, target *game.BattleCreature, actions []dex.Action) error {
	for _, a := range actions {
		if target.Out() {
			return nil
		}
		switch {
		case a.Damage != nil:
			ac.damage(at, target, *a.Damage)
		case a.Drain != nil:
			dealt := ac.damage(at, target, a.Drain.Damage)
			if dealt > 0 {
				heal := dealt * a.Drain.HealPercent / 100
				if heal < 1 {
					heal = 1
				}
				if got := ac.user.Heal(heal); got > 0 {
					ac.add(ac.hpOutcome(game.Outcome{Kind: game.OutcomeHeal, Target: ac.actor, Amount: got}, ac.user))
				}
			}
		case a.Ailment != nil:
			if mechanics.Percent(ac.src, a.Ailment.Chance) {
				ac.inflict(at, target, a.Ailment.Ailment)
			}
		case a.StatStage != nil:
			who, c := at, target
			if a.StatStage.Self {
				who, c = ac.actor, ac.user
			}
			applied, err := c.Stages.Change(a.StatStage.Stat, a.StatStage.Delta)
			if err != nil {
				return &ResolutionError{Kind: KindNoBehavior, ID: ac.info.ID, Err: err}
			}
			ac.add(game.Outcome{Kind: game.OutcomeStatStage, Target: who, Stat: a.StatStage.Stat, Delta: a.StatStage.Delta, Applied: applied})
		case a.Flinch != nil:
			target.Flinch = true
			ac.add(game.Outcome{Kind: game.OutcomeFlinch, Target: at})
		case a.Chance != nil:
			if mechanics.Percent(ac.src, a.Chance.Percent) {
				if err := ac.execActions(at, target, a.Chance.Actions); err != nil {
					return err
				}
			}
		case a.Heal != nil:
			if got := target.Heal(target.MaxHP() * a.Heal.Percent / 100); got > 0 {
				ac.add(ac.hpOutcome(game.Outcome{Kind: game.OutcomeHeal, Target: at, Amount: got}, target))
			}
		case a.Cure != nil:
			if target.Ailment != dex.AilmentNone && (a.Cure.Ailment == dex.AilmentNone || a.Cure.Ailment == target.Ailment) {
				ac.add(game.Outcome{Kind: game.OutcomeCure, Target: at, Ailment: target.Ailment})
				target.Ailment = dex.AilmentNone
				target.AilmentTurns = 0
			}
		default:
			return &ResolutionError{Kind: KindNoBehavior, ID: ac.info.ID, Err: fmt.Errorf("%w: empty action", ErrNoBehavior)}
		}
	}
	return nil
}

// damage applies one damage primitive and returns the HP removed.
func (ac *actionContext) damage(at game.TeamIndex, target *game.BattleCreature, kind dex.Damage) int {
	var h Hit
	switch kind.Kind {
	case dex.DamageMove, dex.DamagePower:
		power := ac.info.Power
		if kind.Kind == dex.DamagePower {
			power = kind.Value
		}
		h = RollHit(ac.src, ac.info, power,
			ac.e.combatant(ac.user, ac.actor, ac.info.Type),
			ac.e.combatant(target, at, ac.info.Type))
	case dex.DamageConstant:
		h = Hit{Damage: kind.Value, Effectiveness: 1}
	case dex.DamagePercentMax:
		h = Hit{Damage: max(1, target.MaxHP()*kind.Value/100), Effectiveness: 1}
	case dex.DamagePercentCurrent:
		h = Hit{Damage: max(1, target.HP*kind.Value/100), Effectiveness: 1}
	}
	dealt := target.Damage(h.Damage)
	ac.add(ac.hpOutcome(game.Outcome{
		Kind:          game.OutcomeDamage,
		Target:        at,
		Amount:        dealt,
		Critical:      h.Critical,
		Effectiveness: h.Effectiveness,
	}, target))
	return dealt
}

// inflict sets an ailment on a creature without one. Sleep lasts 1-3 turns.
func (ac *actionContext) inflict(at game.TeamIndex, target *game.BattleCreature, ailment dex.Ailment) {
	if target.Ailment != dex.AilmentNone {
		return
	}
	target.Ailment = ailment
	target.AilmentTurns = 0
	if ailment == dex.AilmentSleep {
		target.AilmentTurns = 1 + ac.src.Intn(3)
	}
	ac.add(game.Outcome{Kind: game.OutcomeAilment, Target: at, Ailment: ailment})
}

// applyScripted applies an outcome returned by a script. Scripts describe
// intent; HP and stage limits are enforced here.
func (ac *actionContext) applyScripted(o game.Outcome) error {
	c, ok := ac.field.At(o.Target)
	if !ok {
		return fmt.Errorf("no creature at %s", o.Target)
	}
	switch o.Kind {
	case game.OutcomeDamage:
		if c.Out() {
			return nil
		}
		o.Amount = c.Damage(o.Amount)
		if o.Effectiveness == 0 && o.Amount > 0 {
			o.Effectiveness = 1
		}
		ac.add(ac.hpOutcome(o, c))
	case game.OutcomeHeal:
		o.Amount = c.Heal(o.Amount)
		if o.Amount > 0 {
			ac.add(ac.hpOutcome(o, c))
		}
	case game.OutcomeAilment:
		if !o.Ailment.Valid() {
			return fmt.Errorf("unknown ailment %q", o.Ailment)
		}
		ac.inflict(o.Target, c, o.Ailment)
	case game.OutcomeStatStage:
		applied, err := c.Stages.Change(o.Stat, o.Delta)
		if err != nil {
			return err
		}
		o.Applied = applied
		ac.add(o)
	case game.OutcomeFlinch:
		c.Flinch = true
		ac.add(o)
	case game.OutcomeMiss:
		ac.add(o)
	default:
		return fmt.Errorf("scripts cannot produce %q outcomes", o.Kind)
	}
	return nil
}
