package game

import (
	"errors"
	"fmt"

	"github.com/ericogr/monster-arena/internal/dex"
)

var ErrRevealOutOfRange = errors.New("reveal outside remote party")

// PublicCreature is what a participant may learn about a revealed opponent.
type PublicCreature struct {
	PartyIndex int         `json:"party_index"`
	Species    dex.ID      `json:"species"`
	Nickname   string      `json:"nickname"`
	Level      int         `json:"level"`
	Types      []dex.Type  `json:"types"`
	HPPercent  float64     `json:"hp_percent"`
	Ailment    dex.Ailment `json:"ailment,omitempty"`
	Fainted    bool        `json:"fainted,omitempty"`
}

// UnknownCreature is one entry of a RemoteParty. Info stays nil until an
// explicit reveal.
type UnknownCreature struct {
	Info *PublicCreature `json:"info,omitempty"`
}

func (u UnknownCreature) Revealed() bool { return u.Info != nil }

// RemoteParty is a participant's degraded mirror of another team.
type RemoteParty struct {
	Team      int               `json:"team"`
	Owner     string            `json:"owner"`
	Name      string            `json:"name"`
	Creatures []UnknownCreature `json:"creatures"`
	// Active holds the party index per slot, EmptySlot when vacant or unknown.
	Active []int `json:"active"`
}

// PublicParty builds the view opponents have of p: only creatures marked
// Known carry information.
func PublicParty(team int, owner, name string, p *Party) RemoteParty {
	rp := RemoteParty{
		Team:      team,
		Owner:     owner,
		Name:      name,
		Creatures: make([]UnknownCreature, len(p.Creatures)),
		Active:    make([]int, len(p.Active)),
	}
	for i, c := range p.Creatures {
		if c.Known {
			info := c.Public(i)
			rp.Creatures[i].Info = &info
		}
	}
	for slot, idx := range p.Active {
		rp.Active[slot] = EmptySlot
		if idx != EmptySlot && p.Creatures[idx].Known {
			rp.Active[slot] = idx
		}
	}
	return rp
}

// Reveal records the public information of one creature, growing the party
// when a capture or similar event added members.
func (r *RemoteParty) Reveal(info PublicCreature) error {
	if info.PartyIndex < 0 {
		return fmt.Errorf("%w: %d", ErrRevealOutOfRange, info.PartyIndex)
	}
	for len(r.Creatures) <= info.PartyIndex {
		r.Creatures = append(r.Creatures, UnknownCreature{})
	}
	c := info
	r.Creatures[info.PartyIndex].Info = &c
	return nil
}

// Place records that partyIndex now holds slot.
func (r *RemoteParty) Place(slot, partyIndex int) {
	for len(r.Active) <= slot {
		r.Active = append(r.Active, EmptySlot)
	}
	r.Active[slot] = partyIndex
}

// At returns the revealed creature holding slot.
func (r *RemoteParty) At(slot int) (*PublicCreature, bool) {
	if slot < 0 || slot >= len(r.Active) || r.Active[slot] == EmptySlot {
		return nil, false
	}
	idx := r.Active[slot]
	if idx >= len(r.Creatures) || r.Creatures[idx].Info == nil {
		return nil, false
	}
	return r.Creatures[idx].Info, true
}

// Apply folds a public outcome targeting this team into the mirror.
func (r *RemoteParty) Apply(o PublicOutcome) {
	if o.Target.Team != r.Team {
		return
	}
	if o.Kind == OutcomeSwitch {
		r.Place(o.Target.Slot, o.PartyIndex)
		return
	}
	c, ok := r.At(o.Target.Slot)
	if !ok {
		return
	}
	switch o.Kind {
	case OutcomeDamage, OutcomeHeal:
		c.HPPercent = o.HPPercent
	case OutcomeAilment:
		c.Ailment = o.Ailment
	case OutcomeCure:
		c.Ailment = dex.AilmentNone
	case OutcomeFaint:
		c.HPPercent = 0
		c.Fainted = true
		r.Active[o.Target.Slot] = EmptySlot
	case OutcomeCapture:
		if o.Success {
			r.Active[o.Target.Slot] = EmptySlot
		}
	}
}
