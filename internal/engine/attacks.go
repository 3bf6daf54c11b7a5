package engine

import (
	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/mechanics"
)

// MoveInfo is the part of a move or item definition the damage path reads.
type MoveInfo struct {
	ID       dex.ID       `json:"id"`
	Type     dex.Type     `json:"type"`
	Category dex.Category `json:"category"`
	Power    int          `json:"power"`
	Accuracy *int         `json:"accuracy,omitempty"`
	CritTier int          `json:"crit_tier"`
}

func moveInfo(mv *dex.Move) MoveInfo {
	return MoveInfo{ID: mv.ID, Type: mv.Type, Category: mv.Category, Power: mv.Power, Accuracy: mv.Accuracy, CritTier: mv.CritTier}
}

func itemInfo(it *dex.Item) MoveInfo {
	return MoveInfo{ID: it.ID, Category: dex.Status}
}

// Combatant is a copied snapshot of one creature: effective stats after
// stages, and the effectiveness of the current move against it.
type Combatant struct {
	Position      game.TeamIndex `json:"position"`
	Level         int            `json:"level"`
	HP            int            `json:"hp"`
	MaxHP         int            `json:"max_hp"`
	Types         []dex.Type     `json:"types"`
	Attack        int            `json:"attack"`
	Defense       int            `json:"defense"`
	SpAttack      int            `json:"sp_attack"`
	SpDefense     int            `json:"sp_defense"`
	Speed         int            `json:"speed"`
	Effectiveness float64        `json:"effectiveness"`
}

func (e *Engine) combatant(c *game.BattleCreature, at game.TeamIndex, moveType dex.Type) Combatant {
	eff := 1.0
	if moveType != "" {
		eff = e.dex.Effectiveness(moveType, c.Types())
	}
	return Combatant{
		Position:      at,
		Level:         c.Base.Level,
		HP:            c.HP,
		MaxHP:         c.MaxHP(),
		Types:         append([]dex.Type(nil), c.Types()...),
		Attack:        c.Stat(dex.Attack),
		Defense:       c.Stat(dex.Defense),
		SpAttack:      c.Stat(dex.SpAttack),
		SpDefense:     c.Stat(dex.SpDefense),
		Speed:         c.Stat(dex.Speed),
		Effectiveness: eff,
	}
}

// Hit is the result of one damage roll.
type Hit struct {
	Damage        int
	Critical      bool
	Effectiveness float64
}

// RollHit rolls critical and damage roll, in that order, and applies the
// damage formula. Both effect strategies go through it so identical random
// draws give identical damage. An ineffective hit draws nothing.
func RollHit(src mechanics.Source, info MoveInfo, power int, attacker, defender Combatant) Hit {
	h := Hit{Effectiveness: defender.Effectiveness}
	if defender.Effectiveness == 0 || power <= 0 {
		return h
	}
	atk, def := attacker.Attack, defender.Defense
	if info.Category == dex.Special {
		atk, def = attacker.SpAttack, defender.SpDefense
	}
	h.Critical = mechanics.RollCritical(src, info.CritTier)
	roll := mechanics.RollDamage(src)
	sameType := len(attacker.Types) > 0 && info.Type != "" && attacker.Types[0] == info.Type
	h.Damage = mechanics.Damage(mechanics.DamageInput{
		Level:         attacker.Level,
		Attack:        atk,
		Defense:       def,
		Power:         power,
		Effectiveness: defender.Effectiveness,
		SameType:      sameType,
		Critical:      h.Critical,
		Roll:          roll,
	})
	return h
}
