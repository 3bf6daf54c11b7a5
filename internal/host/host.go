// Package host runs one battle: it owns every participant's roster, drives
// the phase state machine one transition per Step and broadcasts filtered
// turn results. A Host is not safe for concurrent use; callers serialise
// access to it.
package host

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ericogr/monster-arena/internal/constants"
	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/engine"
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/logging"
	"github.com/ericogr/monster-arena/internal/mechanics"
	"github.com/ericogr/monster-arena/internal/protocol"
)

var (
	ErrTooFewParticipants   = errors.New("a battle needs at least two participants")
	ErrDuplicateParticipant = errors.New("duplicate participant id")
	ErrUnknownParticipant   = errors.New("unknown participant")
	ErrBattleEnded          = errors.New("battle has ended")
)

// Options configure a battle.
type Options struct {
	BattleID        string
	ActiveCount     int
	Wild            bool
	DebugExperience bool
	// Rand defaults to a time-seeded source.
	Rand    mechanics.Source
	Scripts engine.ScriptRunner
}

// Entrant is one participant joining a battle with its roster.
type Entrant struct {
	ID             string
	Name           string
	Endpoint       protocol.Endpoint
	Creatures      []*game.Creature
	Bag            map[dex.ID]int
	ExperienceGain bool
	// WildSide marks the wild team of a wild battle. Only its creatures
	// can be captured.
	WildSide bool
}

// Learnable is a pending grant to learn a move.
type Learnable struct {
	PartyIndex int    `json:"party_index"`
	Move       dex.ID `json:"move"`
}

// participant is one entry of the ownership table. A deactivated entry is
// skipped by every iteration but keeps its data for inspection.
type participant struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Team           int            `json:"team"`
	Party          *game.Party    `json:"party"`
	Bag            map[dex.ID]int `json:"bag"`
	ExperienceGain bool           `json:"experience_gain"`
	WildSide       bool           `json:"wild_side"`
	Active         bool           `json:"active"`
	Forfeited      bool           `json:"forfeited"`
	Acked          bool           `json:"acked"`
	EndSent        bool           `json:"end_sent"`
	Learnable      []Learnable    `json:"learnable,omitempty"`
	// LastResult is the latest turn result as this participant saw it.
	LastResult []protocol.ActionResult `json:"last_result,omitempty"`

	endpoint protocol.Endpoint
}

func (p *participant) send(msg protocol.Outbound) {
	if p.endpoint != nil {
		p.endpoint.Send(msg)
	}
}

// alive reports whether the participant can still win.
func (p *participant) alive() bool {
	return !p.Forfeited && !p.Party.Defeated()
}

type Host struct {
	id       string
	dex      dex.Dex
	engine   *engine.Engine
	rand     mechanics.Source
	wild     bool
	debugExp bool

	phase  game.Phase
	turn   int
	winner string

	field *game.Field
	// table is indexed by team; byID is the ownership lookup.
	table []*participant
	byID  map[string]*participant
}

// New builds a battle host. Every entrant becomes one team, in order.
func New(d dex.Dex, opts Options, entrants ...Entrant) (*Host, error) {
	if len(entrants) < 2 {
		return nil, ErrTooFewParticipants
	}
	h := newHost(d, opts)
	for team, en := range entrants {
		if _, dup := h.byID[en.ID]; dup || en.ID == "" {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateParticipant, en.ID)
		}
		creatures := make([]*game.BattleCreature, 0, len(en.Creatures))
		for _, c := range en.Creatures {
			bc, err := game.NewBattleCreature(d, c)
			if err != nil {
				return nil, fmt.Errorf("participant %s: %w", en.ID, err)
			}
			creatures = append(creatures, bc)
		}
		party, err := game.NewParty(creatures, opts.ActiveCount)
		if err != nil {
			return nil, fmt.Errorf("participant %s: %w", en.ID, err)
		}
		bag := map[dex.ID]int{}
		for id, n := range en.Bag {
			if n > 0 {
				bag[dex.Canonical(id)] += n
			}
		}
		p := &participant{
			ID:             en.ID,
			Name:           en.Name,
			Team:           team,
			Party:          party,
			Bag:            bag,
			ExperienceGain: en.ExperienceGain,
			WildSide:       en.WildSide,
			Active:         true,
			endpoint:       en.Endpoint,
		}
		h.table = append(h.table, p)
		h.byID[p.ID] = p
		h.field.Teams = append(h.field.Teams, party)
	}
	return h, nil
}

func newHost(d dex.Dex, opts Options) *Host {
	src := opts.Rand
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Host{
		id:       opts.BattleID,
		dex:      d,
		engine:   engine.New(d, opts.Scripts),
		rand:     src,
		wild:     opts.Wild,
		debugExp: opts.DebugExperience,
		phase:    game.PhaseStart,
		field:    &game.Field{},
		byID:     map[string]*participant{},
	}
}

func (h *Host) ID() string        { return h.id }
func (h *Host) Phase() game.Phase { return h.phase }
func (h *Host) Turn() int         { return h.turn }

// Winner returns the winning participant id once the battle has ended. The
// id is empty when nobody won.
func (h *Host) Winner() (string, bool) {
	return h.winner, h.phase == game.PhaseEnd
}

// active lists the participants iteration may touch.
func (h *Host) active() []*participant {
	out := make([]*participant, 0, len(h.table))
	for _, p := range h.table {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// Deactivate stops the host from talking to a participant. Its roster stays
// in the battle and remains inspectable.
func (h *Host) Deactivate(id string) error {
	p, ok := h.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParticipant, id)
	}
	p.Active = false
	p.endpoint = nil
	logging.Info("participant deactivated", h.fields(p))
	return nil
}

// Reconnect attaches a new endpoint to a participant and resends the
// current view.
func (h *Host) Reconnect(id string, ep protocol.Endpoint) error {
	p, ok := h.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParticipant, id)
	}
	p.endpoint = ep
	p.Active = true
	if h.phase == game.PhaseStart {
		return nil
	}
	p.send(protocol.Outbound{Type: protocol.OutBegin, Begin: h.beginView(p)})
	switch h.phase {
	case game.PhaseWaitSelecting:
		p.send(h.selectPrompt(p))
	case game.PhaseWaitMoving:
		// the view above already holds the result; resend it so the
		// participant acknowledges and replaces fainted creatures
		if !p.Forfeited && (!p.Acked || p.Party.NeedsReplacement()) {
			p.send(protocol.Outbound{Type: protocol.OutTurnResult, Turn: h.turn, Results: p.LastResult, Replay: true})
		}
	case game.PhaseEnd:
		if !p.EndSent {
			p.EndSent = true
			p.send(protocol.Outbound{Type: protocol.OutEnd, Winner: h.winner})
		}
	}
	for _, l := range p.Learnable {
		p.send(protocol.Outbound{Type: protocol.OutMoveLearnable, Team: p.Team, PartyIndex: l.PartyIndex, Move: l.Move})
	}
	return nil
}

// Forfeit marks a participant as giving up. It takes effect on the next Step.
func (h *Host) Forfeit(id string) error {
	p, ok := h.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParticipant, id)
	}
	if h.phase == game.PhaseEnd {
		return ErrBattleEnded
	}
	p.Forfeited = true
	return nil
}

// Waiting lists participants whose input the current phase awaits. An
// inactive participant is listed only while it owes a replacement.
func (h *Host) Waiting() []string {
	var out []string
	for _, p := range h.table {
		if p.Forfeited {
			continue
		}
		if !p.Active {
			if h.phase == game.PhaseWaitMoving && p.Party.NeedsReplacement() {
				out = append(out, p.ID)
			}
			continue
		}
		switch h.phase {
		case game.PhaseWaitSelecting:
			if len(h.unselected(p)) > 0 {
				out = append(out, p.ID)
			}
		case game.PhaseWaitMoving:
			if !p.Acked || p.Party.NeedsReplacement() {
				out = append(out, p.ID)
			}
		}
	}
	return out
}

// ParticipantSummary is the inspectable state of one participant.
type ParticipantSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Team      int    `json:"team"`
	Active    bool   `json:"active"`
	Forfeited bool   `json:"forfeited"`
	Remaining int    `json:"remaining"`
	WildSide  bool   `json:"wild_side,omitempty"`
}

type Summary struct {
	ID           string               `json:"id"`
	Phase        game.Phase           `json:"phase"`
	Turn         int                  `json:"turn"`
	Wild         bool                 `json:"wild"`
	Ended        bool                 `json:"ended"`
	Winner       string               `json:"winner,omitempty"`
	Waiting      []string             `json:"waiting,omitempty"`
	Participants []ParticipantSummary `json:"participants"`
}

func (h *Host) Summary() Summary {
	s := Summary{ID: h.id, Phase: h.phase, Turn: h.turn, Wild: h.wild, Ended: h.phase == game.PhaseEnd, Winner: h.winner, Waiting: h.Waiting()}
	for _, p := range h.table {
		remaining := 0
		for _, c := range p.Party.Creatures {
			if !c.Out() {
				remaining++
			}
		}
		s.Participants = append(s.Participants, ParticipantSummary{
			ID: p.ID, Name: p.Name, Team: p.Team, Active: p.Active, Forfeited: p.Forfeited, Remaining: remaining, WildSide: p.WildSide,
		})
	}
	return s
}

// Party returns a copy of the own-view of a participant's roster.
func (h *Host) Party(id string) ([]protocol.OwnCreature, error) {
	p, ok := h.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, id)
	}
	return ownParty(p.Party), nil
}

func ownParty(p *game.Party) []protocol.OwnCreature {
	out := make([]protocol.OwnCreature, len(p.Creatures))
	for i, c := range p.Creatures {
		out[i] = protocol.NewOwnCreature(i, c)
	}
	return out
}

func (h *Host) fields(p *participant) logging.Fields {
	f := logging.Fields{constants.LogFieldBattleID: h.id, constants.LogFieldPhase: h.phase, constants.LogFieldTurn: h.turn}
	if p != nil {
		f[constants.LogFieldParticipantID] = p.ID
		f[constants.LogFieldTeam] = p.Team
	}
	return f
}
