package host

import (
	"encoding/json"
	"fmt"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/game"
)

// snapshot is the serialised image of a host. Its layout is internal to
// this package and may change between versions.
type snapshot struct {
	ID              string         `json:"id"`
	Phase           game.Phase     `json:"phase"`
	Turn            int            `json:"turn"`
	Wild            bool           `json:"wild"`
	DebugExperience bool           `json:"debug_experience"`
	Winner          string         `json:"winner,omitempty"`
	Participants    []*participant `json:"participants"`
}

// Snapshot encodes the ownership table and phase. Endpoints are not part of
// it; a restored host starts with every participant inactive.
func (h *Host) Snapshot() ([]byte, error) {
	return json.Marshal(snapshot{
		ID:              h.id,
		Phase:           h.phase,
		Turn:            h.turn,
		Wild:            h.wild,
		DebugExperience: h.debugExp,
		Winner:          h.winner,
		Participants:    h.table,
	})
}

// Restore rebuilds a host from Snapshot output. Species are resolved again
// through d. Options other than Rand and Scripts come from the snapshot.
func Restore(d dex.Dex, opts Options, data []byte) (*Host, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(snap.Participants) < 2 {
		return nil, ErrTooFewParticipants
	}
	opts.BattleID = snap.ID
	opts.Wild = snap.Wild
	opts.DebugExperience = snap.DebugExperience
	h := newHost(d, opts)
	h.phase = snap.Phase
	h.turn = snap.Turn
	h.winner = snap.Winner
	for team, p := range snap.Participants {
		if p == nil || p.Party == nil {
			return nil, fmt.Errorf("snapshot participant %d is empty", team)
		}
		if _, dup := h.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateParticipant, p.ID)
		}
		for i, c := range p.Party.Creatures {
			if c == nil || c.Base == nil {
				return nil, fmt.Errorf("snapshot participant %s creature %d is empty", p.ID, i)
			}
			s, ok := d.Species(c.Base.Species)
			if !ok {
				return nil, fmt.Errorf("%w: %s", game.ErrUnknownSpecies, c.Base.Species)
			}
			c.Species = s
		}
		if p.Bag == nil {
			p.Bag = map[dex.ID]int{}
		}
		p.Team = team
		p.Active = false
		h.table = append(h.table, p)
		h.byID[p.ID] = p
		h.field.Teams = append(h.field.Teams, p.Party)
	}
	return h, nil
}
