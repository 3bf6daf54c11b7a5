package dex

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ericogr/monster-arena/internal/keys"
)

var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrInvalidDef  = errors.New("invalid definition")
)

// Dex is the read-only definition lookup used by the battle core.
type Dex interface {
	Species(id ID) (*Species, bool)
	Move(id ID) (*Move, bool)
	Item(id ID) (*Item, bool)
	// Effectiveness returns the multiplier of an attack of type attack
	// against a defender with the given types. 0 means ineffective.
	Effectiveness(attack Type, defender []Type) float64
}

// Memory is an in-process Dex. It is safe for concurrent reads once loaded.
type Memory struct {
	species map[ID]*Species
	moves   map[ID]*Move
	items   map[ID]*Item
	chart   map[Type]map[Type]float64
}

func NewMemory() *Memory {
	return &Memory{
		species: map[ID]*Species{},
		moves:   map[ID]*Move{},
		items:   map[ID]*Item{},
		chart:   map[Type]map[Type]float64{},
	}
}

// Canonical normalises an id for lookups.
func Canonical(id ID) ID { return ID(keys.Canonical(string(id))) }

func (m *Memory) AddSpecies(s Species) error {
	s.ID = Canonical(s.ID)
	if s.ID == "" {
		return fmt.Errorf("%w: species without id", ErrInvalidDef)
	}
	if _, exists := m.species[s.ID]; exists {
		return fmt.Errorf("%w: species %s", ErrDuplicateID, s.ID)
	}
	if s.BaseStats.HP <= 0 {
		return fmt.Errorf("%w: species %s has no base hp", ErrInvalidDef, s.ID)
	}
	for i := range s.Learnset {
		s.Learnset[i].Move = Canonical(s.Learnset[i].Move)
	}
	if s.Name == "" {
		s.Name = string(s.ID)
	}
	m.species[s.ID] = &s
	return nil
}

func (m *Memory) AddMove(mv Move) error {
	mv.ID = Canonical(mv.ID)
	if mv.ID == "" {
		return fmt.Errorf("%w: move without id", ErrInvalidDef)
	}
	if _, exists := m.moves[mv.ID]; exists {
		return fmt.Errorf("%w: move %s", ErrDuplicateID, mv.ID)
	}
	switch mv.Category {
	case Physical, Special, Status:
	default:
		return fmt.Errorf("%w: move %s has unknown category %q", ErrInvalidDef, mv.ID, mv.Category)
	}
	if mv.Target == "" {
		mv.Target = TargetOpponent
	}
	if !mv.Target.Valid() {
		return fmt.Errorf("%w: move %s has unknown target %q", ErrInvalidDef, mv.ID, mv.Target)
	}
	if err := validateBehavior(string(mv.ID), mv.Script, mv.Actions); err != nil {
		return err
	}
	if mv.Name == "" {
		mv.Name = string(mv.ID)
	}
	m.moves[mv.ID] = &mv
	return nil
}

func (m *Memory) AddItem(it Item) error {
	it.ID = Canonical(it.ID)
	if it.ID == "" {
		return fmt.Errorf("%w: item without id", ErrInvalidDef)
	}
	if _, exists := m.items[it.ID]; exists {
		return fmt.Errorf("%w: item %s", ErrDuplicateID, it.ID)
	}
	switch it.Kind {
	case ItemHeal, ItemBattle:
		if err := validateBehavior(string(it.ID), it.Script, it.Actions); err != nil {
			return err
		}
	case ItemBall:
		if it.CatchBonus <= 0 {
			it.CatchBonus = 1
		}
	default:
		return fmt.Errorf("%w: item %s has unknown kind %q", ErrInvalidDef, it.ID, it.Kind)
	}
	if it.Target == "" {
		it.Target = TargetUser
		if it.Kind == ItemBall {
			it.Target = TargetOpponent
		}
	}
	if !it.Target.Valid() {
		return fmt.Errorf("%w: item %s has unknown target %q", ErrInvalidDef, it.ID, it.Target)
	}
	if it.Name == "" {
		it.Name = string(it.ID)
	}
	m.items[it.ID] = &it
	return nil
}

// validateBehavior rejects definitions that mix the two strategies. A
// definition with neither is allowed here and fails at resolution time.
func validateBehavior(id string, script bool, actions []Action) error {
	if script && len(actions) > 0 {
		return fmt.Errorf("%w: %s is script-driven but declares actions", ErrInvalidDef, id)
	}
	for _, a := range actions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
	}
	return nil
}

// SetEffectiveness records the multiplier of attack against a single defending type.
func (m *Memory) SetEffectiveness(attack, defend Type, multiplier float64) {
	row, ok := m.chart[attack]
	if !ok {
		row = map[Type]float64{}
		m.chart[attack] = row
	}
	row[defend] = multiplier
}

func (m *Memory) Species(id ID) (*Species, bool) {
	s, ok := m.species[Canonical(id)]
	return s, ok
}

func (m *Memory) Move(id ID) (*Move, bool) {
	mv, ok := m.moves[Canonical(id)]
	return mv, ok
}

func (m *Memory) Item(id ID) (*Item, bool) {
	it, ok := m.items[Canonical(id)]
	return it, ok
}

// Effectiveness multiplies the chart entries for every defending type.
// Missing entries count as neutral.
func (m *Memory) Effectiveness(attack Type, defender []Type) float64 {
	mult := 1.0
	row := m.chart[attack]
	for _, t := range defender {
		if v, ok := row[t]; ok {
			mult *= v
		}
	}
	return mult
}

// ScriptIDs lists every script-driven move and item id, sorted.
func (m *Memory) ScriptIDs() []ID {
	var ids []ID
	for id, mv := range m.moves {
		if mv.Script {
			ids = append(ids, id)
		}
	}
	for id, it := range m.items {
		if it.Script {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
