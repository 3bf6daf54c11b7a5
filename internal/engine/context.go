package engine

import (
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/mechanics"
)

// actionContext carries the state of one action resolution.
type actionContext struct {
	e        *Engine
	field    *game.Field
	src      mechanics.Source
	actor    game.TeamIndex
	user     *game.BattleCreature
	info     MoveInfo
	outcomes []game.Outcome
}

func (ac *actionContext) add(o game.Outcome) { ac.outcomes = append(ac.outcomes, o) }

// hpOutcome fills the HP fields of o from the creature at o.Target.
func (ac *actionContext) hpOutcome(o game.Outcome, c *game.BattleCreature) game.Outcome {
	o.HP = c.HP
	o.HPPercent = c.HPPercent()
	return o
}
