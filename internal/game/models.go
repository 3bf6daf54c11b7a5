package game

import (
	"errors"
	"fmt"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/mechanics"
)

// MaxMoves is the number of move slots a creature can hold.
const MaxMoves = 4

var (
	ErrUnknownSpecies = errors.New("unknown species")
	ErrUnknownMove    = errors.New("unknown move")
	ErrTooManyMoves   = errors.New("too many moves")
)

// TeamIndex addresses one active battle slot.
type TeamIndex struct {
	Team int `json:"team"`
	Slot int `json:"slot"`
}

func (t TeamIndex) String() string { return fmt.Sprintf("%d:%d", t.Team, t.Slot) }

type MoveSlot struct {
	Move  dex.ID `json:"move"`
	PP    int    `json:"pp"`
	MaxPP int    `json:"max_pp"`
}

// Creature is a caller-supplied roster member. Its definition fields stay
// fixed during a battle; only Experience, Level, Stats and Moves change through
// experience gain and move learning.
type Creature struct {
	Species    dex.ID     `json:"species"`
	Nickname   string     `json:"nickname"`
	Level      int        `json:"level"`
	Experience int        `json:"experience"`
	Stats      dex.Stats  `json:"stats"`
	Moves      []MoveSlot `json:"moves"`
	// HP and Ailment carry over from outside the battle. A zero HP with
	// FreshHP set means full health.
	HP      int         `json:"hp"`
	FreshHP bool        `json:"fresh_hp"`
	Ailment dex.Ailment `json:"ailment,omitempty"`
}

// NewCreature builds a creature of species at level. When moves is empty the
// latest learnset moves up to level are used.
func NewCreature(d dex.Dex, species dex.ID, level int, nickname string, moves []dex.ID) (*Creature, error) {
	s, ok := d.Species(species)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSpecies, species)
	}
	if level < 1 {
		level = 1
	}
	if level > mechanics.MaxLevel {
		level = mechanics.MaxLevel
	}
	if len(moves) == 0 {
		for _, e := range s.Learnset {
			if e.Level <= level {
				moves = append(moves, e.Move)
			}
		}
		if len(moves) > MaxMoves {
			moves = moves[len(moves)-MaxMoves:]
		}
	}
	if len(moves) > MaxMoves {
		return nil, fmt.Errorf("%w: %d", ErrTooManyMoves, len(moves))
	}
	slots := make([]MoveSlot, 0, len(moves))
	for _, id := range moves {
		mv, ok := d.Move(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMove, id)
		}
		slots = append(slots, MoveSlot{Move: mv.ID, PP: mv.PP, MaxPP: mv.PP})
	}
	if nickname == "" {
		nickname = s.Name
	}
	return &Creature{
		Species:    s.ID,
		Nickname:   nickname,
		Level:      level,
		Experience: mechanics.ExperienceForLevel(level),
		Stats:      mechanics.StatsAt(s.BaseStats, level),
		Moves:      slots,
		FreshHP:    true,
	}, nil
}

// BattleCreature wraps a Creature with transient battle-only state.
type BattleCreature struct {
	Base    *Creature    `json:"base"`
	Species *dex.Species `json:"-"`

	HP           int         `json:"hp"`
	Ailment      dex.Ailment `json:"ailment,omitempty"`
	AilmentTurns int         `json:"ailment_turns,omitempty"`
	Stages       StatStages  `json:"stages"`
	Flinch       bool        `json:"flinch,omitempty"`
	// Known is set once the creature has been revealed to opponents.
	Known    bool       `json:"known"`
	Captured bool       `json:"captured,omitempty"`
	Pending  *Selection `json:"pending,omitempty"`
}

// NewBattleCreature resolves the species of c and seeds battle state.
func NewBattleCreature(d dex.Dex, c *Creature) (*BattleCreature, error) {
	s, ok := d.Species(c.Species)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSpecies, c.Species)
	}
	hp := c.HP
	if c.FreshHP || hp > c.Stats.HP {
		hp = c.Stats.HP
	}
	if hp < 0 {
		hp = 0
	}
	return &BattleCreature{Base: c, Species: s, HP: hp, Ailment: c.Ailment}, nil
}

func (c *BattleCreature) MaxHP() int { return c.Base.Stats.HP }

func (c *BattleCreature) Fainted() bool { return c.HP <= 0 }

// Out reports whether the creature can no longer take part in the battle.
func (c *BattleCreature) Out() bool { return c.HP <= 0 || c.Captured }

func (c *BattleCreature) Types() []dex.Type { return c.Species.Types }

// HPPercent is the public hit point ratio in [0,100].
func (c *BattleCreature) HPPercent() float64 {
	if c.MaxHP() <= 0 {
		return 0
	}
	return float64(c.HP) * 100 / float64(c.MaxHP())
}

// Stat returns the effective value of stat after stage modification and,
// for attack, the burn penalty.
func (c *BattleCreature) Stat(stat dex.Stat) int {
	v := c.Base.Stats.Get(stat)
	if stat == dex.HP {
		return v
	}
	v = mechanics.StageMultiply(v, c.Stages.Get(stat))
	if stat == dex.Attack && c.Ailment == dex.AilmentBurn {
		v /= 2
	}
	return v
}

// Damage lowers HP by amount, never below zero, and returns the HP lost.
func (c *BattleCreature) Damage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > c.HP {
		amount = c.HP
	}
	c.HP -= amount
	return amount
}

// Heal raises HP by amount, never above max, and returns the HP gained.
func (c *BattleCreature) Heal(amount int) int {
	if amount <= 0 || c.Fainted() {
		return 0
	}
	if c.HP+amount > c.MaxHP() {
		amount = c.MaxHP() - c.HP
	}
	c.HP += amount
	return amount
}

// MoveUsable reports whether move slot i exists and has uses left.
func (c *BattleCreature) MoveUsable(i int) bool {
	return i >= 0 && i < len(c.Base.Moves) && c.Base.Moves[i].PP > 0
}

// Public returns the information an opponent may see once revealed.
func (c *BattleCreature) Public(partyIndex int) PublicCreature {
	return PublicCreature{
		PartyIndex: partyIndex,
		Species:    c.Base.Species,
		Nickname:   c.Base.Nickname,
		Level:      c.Base.Level,
		Types:      append([]dex.Type(nil), c.Species.Types...),
		HPPercent:  c.HPPercent(),
		Ailment:    c.Ailment,
		Fainted:    c.Fainted(),
	}
}

// ResetVolatile clears state that does not survive leaving the field.
func (c *BattleCreature) ResetVolatile() {
	c.Stages = StatStages{}
	c.Flinch = false
	c.Pending = nil
}
