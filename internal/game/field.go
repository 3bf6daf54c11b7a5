package game

import "github.com/ericogr/monster-arena/internal/dex"

// Field is the mutable view over every team taking part in a battle,
// indexed by team. It is only touched by the host goroutine.
type Field struct {
	Teams []*Party
}

func (f *Field) TeamCount() int { return len(f.Teams) }

func (f *Field) SlotCount(team int) int {
	if team < 0 || team >= len(f.Teams) {
		return 0
	}
	return f.Teams[team].SlotCount()
}

// At returns the creature in an active slot.
func (f *Field) At(ti TeamIndex) (*BattleCreature, bool) {
	if ti.Team < 0 || ti.Team >= len(f.Teams) {
		return nil, false
	}
	return f.Teams[ti.Team].At(ti.Slot)
}

// Occupied reports whether ti holds a creature still able to battle.
func (f *Field) Occupied(ti TeamIndex) bool {
	c, ok := f.At(ti)
	return ok && !c.Out()
}

// Checkpoint captures the battle state of every creature and slot.
type Checkpoint struct {
	creatures [][]creatureState
	active    [][]int
}

type creatureState struct {
	hp           int
	ailment      dex.Ailment
	ailmentTurns int
	stages       StatStages
	flinch       bool
	known        bool
	captured     bool
}

func (f *Field) Checkpoint() Checkpoint {
	cp := Checkpoint{
		creatures: make([][]creatureState, len(f.Teams)),
		active:    make([][]int, len(f.Teams)),
	}
	for t, p := range f.Teams {
		cp.active[t] = append([]int(nil), p.Active...)
		states := make([]creatureState, len(p.Creatures))
		for i, c := range p.Creatures {
			states[i] = creatureState{
				hp:           c.HP,
				ailment:      c.Ailment,
				ailmentTurns: c.AilmentTurns,
				stages:       c.Stages,
				flinch:       c.Flinch,
				known:        c.Known,
				captured:     c.Captured,
			}
		}
		cp.creatures[t] = states
	}
	return cp
}

// Restore rolls every creature and slot back to cp. Creatures appended to a
// party after the checkpoint are dropped.
func (f *Field) Restore(cp Checkpoint) {
	for t, p := range f.Teams {
		if t >= len(cp.creatures) {
			break
		}
		states := cp.creatures[t]
		if len(p.Creatures) > len(states) {
			p.Creatures = p.Creatures[:len(states)]
		}
		for i, c := range p.Creatures {
			s := states[i]
			c.HP = s.hp
			c.Ailment = s.ailment
			c.AilmentTurns = s.ailmentTurns
			c.Stages = s.stages
			c.Flinch = s.flinch
			c.Known = s.known
			c.Captured = s.captured
		}
		copy(p.Active, cp.active[t])
	}
}
