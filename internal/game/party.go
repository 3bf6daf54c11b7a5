package game

import (
	"errors"
	"fmt"
)

// EmptySlot marks an active slot without a creature.
const EmptySlot = -1

var (
	ErrBadSlot       = errors.New("active slot out of range")
	ErrBadPartyIndex = errors.New("party index out of range")
	ErrAlreadyActive = errors.New("creature is already active")
	ErrCreatureOut   = errors.New("creature has fainted or left the battle")
	ErrSlotOccupied  = errors.New("active slot is occupied")
	ErrEmptyParty    = errors.New("party has no creature able to battle")
)

// Party is a team roster: ordered creatures plus the party index held by
// each active slot. A creature never occupies two slots and an out creature
// never stays active.
type Party struct {
	Creatures []*BattleCreature `json:"creatures"`
	Active    []int             `json:"active"`
}

// NewParty fills activeCount slots with the first creatures able to battle.
func NewParty(creatures []*BattleCreature, activeCount int) (*Party, error) {
	if activeCount < 1 {
		activeCount = 1
	}
	p := &Party{Creatures: creatures, Active: make([]int, activeCount)}
	for i := range p.Active {
		p.Active[i] = EmptySlot
	}
	slot := 0
	for i, c := range creatures {
		if slot >= activeCount {
			break
		}
		if c.Out() {
			continue
		}
		p.Active[slot] = i
		slot++
	}
	if slot == 0 {
		return nil, ErrEmptyParty
	}
	return p, nil
}

// SlotCount is the configured number of active slots.
func (p *Party) SlotCount() int { return len(p.Active) }

// At returns the creature in active slot, if any.
func (p *Party) At(slot int) (*BattleCreature, bool) {
	if slot < 0 || slot >= len(p.Active) || p.Active[slot] == EmptySlot {
		return nil, false
	}
	return p.Creatures[p.Active[slot]], true
}

// PartyIndexAt returns the party index held by slot or EmptySlot.
func (p *Party) PartyIndexAt(slot int) int {
	if slot < 0 || slot >= len(p.Active) {
		return EmptySlot
	}
	return p.Active[slot]
}

// SlotOf returns the active slot of a party index or EmptySlot.
func (p *Party) SlotOf(partyIndex int) int {
	for slot, idx := range p.Active {
		if idx == partyIndex {
			return slot
		}
	}
	return EmptySlot
}

// CanEnter validates that partyIndex may be sent into battle.
func (p *Party) CanEnter(partyIndex int) error {
	if partyIndex < 0 || partyIndex >= len(p.Creatures) {
		return fmt.Errorf("%w: %d", ErrBadPartyIndex, partyIndex)
	}
	if p.SlotOf(partyIndex) != EmptySlot {
		return fmt.Errorf("%w: %d", ErrAlreadyActive, partyIndex)
	}
	if p.Creatures[partyIndex].Out() {
		return fmt.Errorf("%w: %d", ErrCreatureOut, partyIndex)
	}
	return nil
}

// Place puts partyIndex into an empty slot.
func (p *Party) Place(slot, partyIndex int) error {
	if slot < 0 || slot >= len(p.Active) {
		return fmt.Errorf("%w: %d", ErrBadSlot, slot)
	}
	if p.Active[slot] != EmptySlot {
		return fmt.Errorf("%w: %d", ErrSlotOccupied, slot)
	}
	if err := p.CanEnter(partyIndex); err != nil {
		return err
	}
	p.Active[slot] = partyIndex
	return nil
}

// Swap replaces the creature in an occupied slot with partyIndex. The
// outgoing creature loses its volatile state.
func (p *Party) Swap(slot, partyIndex int) error {
	if slot < 0 || slot >= len(p.Active) {
		return fmt.Errorf("%w: %d", ErrBadSlot, slot)
	}
	if err := p.CanEnter(partyIndex); err != nil {
		return err
	}
	if old := p.Active[slot]; old != EmptySlot {
		p.Creatures[old].ResetVolatile()
	}
	p.Active[slot] = partyIndex
	return nil
}

// Vacate empties slot.
func (p *Party) Vacate(slot int) {
	if slot >= 0 && slot < len(p.Active) {
		p.Active[slot] = EmptySlot
	}
}

// Defeated reports whether no creature of the party can battle.
func (p *Party) Defeated() bool {
	for _, c := range p.Creatures {
		if !c.Out() {
			return false
		}
	}
	return true
}

// Reserves lists party indices able to enter battle.
func (p *Party) Reserves() []int {
	var out []int
	for i, c := range p.Creatures {
		if !c.Out() && p.SlotOf(i) == EmptySlot {
			out = append(out, i)
		}
	}
	return out
}

// EmptySlots lists active slots without a creature.
func (p *Party) EmptySlots() []int {
	var out []int
	for slot, idx := range p.Active {
		if idx == EmptySlot {
			out = append(out, slot)
		}
	}
	return out
}

// NeedsReplacement reports whether an empty slot could be filled.
func (p *Party) NeedsReplacement() bool {
	return len(p.EmptySlots()) > 0 && len(p.Reserves()) > 0
}

// Add appends a creature to the roster and returns its party index.
func (p *Party) Add(c *BattleCreature) int {
	p.Creatures = append(p.Creatures, c)
	return len(p.Creatures) - 1
}
