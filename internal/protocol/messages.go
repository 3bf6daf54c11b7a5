// Package protocol defines the messages exchanged between the battle host
// and its participants and the endpoint contract that carries them.
package protocol

import (
	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/game"
)

// --- Participant → Host ---

type InboundType string

const (
	InSelectMove       InboundType = "select_move"
	InSelectItem       InboundType = "select_item"
	InSwitch           InboundType = "switch"
	InReplaceFainted   InboundType = "replace_fainted"
	InLearnMove        InboundType = "learn_move"
	InForfeit          InboundType = "forfeit"
	InTurnAcknowledged InboundType = "turn_acknowledged"
)

// Inbound is the envelope for every participant request.
type Inbound struct {
	Type InboundType `json:"type"`

	// Active slot the request applies to (select_*, switch, replace_fainted).
	Slot int `json:"slot,omitempty"`

	// For "select_move"
	MoveSlot int             `json:"move_slot,omitempty"`
	Target   *game.TeamIndex `json:"target,omitempty"`

	// For "select_item"
	Item dex.ID `json:"item,omitempty"`

	// For "switch", "replace_fainted" and "learn_move"
	PartyIndex int `json:"party_index,omitempty"`

	// For "learn_move". ForgetSlot is ignored while the creature knows
	// fewer than four moves.
	Move       dex.ID `json:"move,omitempty"`
	ForgetSlot int    `json:"forget_slot,omitempty"`
}

func SelectMove(slot, moveSlot int, target *game.TeamIndex) Inbound {
	return Inbound{Type: InSelectMove, Slot: slot, MoveSlot: moveSlot, Target: target}
}

func SelectItem(slot int, item dex.ID, target *game.TeamIndex) Inbound {
	return Inbound{Type: InSelectItem, Slot: slot, Item: item, Target: target}
}

func Switch(slot, partyIndex int) Inbound {
	return Inbound{Type: InSwitch, Slot: slot, PartyIndex: partyIndex}
}

func ReplaceFainted(slot, partyIndex int) Inbound {
	return Inbound{Type: InReplaceFainted, Slot: slot, PartyIndex: partyIndex}
}

func LearnMove(partyIndex int, move dex.ID, forgetSlot int) Inbound {
	return Inbound{Type: InLearnMove, PartyIndex: partyIndex, Move: move, ForgetSlot: forgetSlot}
}

func Forfeit() Inbound { return Inbound{Type: InForfeit} }

func TurnAcknowledged() Inbound { return Inbound{Type: InTurnAcknowledged} }

// --- Host → Participant ---

type OutboundType string

const (
	OutBegin          OutboundType = "begin"
	OutStartSelecting OutboundType = "start_selecting"
	OutTurnResult     OutboundType = "turn_result"
	OutConfirmReplace OutboundType = "confirm_replace"
	OutFaintReplace   OutboundType = "faint_replace"
	OutRevealCreature OutboundType = "reveal_creature"
	OutCaptured       OutboundType = "captured"
	OutEnd            OutboundType = "end"
	OutAck            OutboundType = "ack"
	OutMoveLearnable  OutboundType = "move_learnable"
)

// Outbound is the envelope for every host message.
type Outbound struct {
	Type OutboundType `json:"type"`

	// For "begin"
	Begin *BeginView `json:"begin,omitempty"`

	// For "start_selecting" and "turn_result"
	Turn int `json:"turn,omitempty"`

	// For "start_selecting": active slots of the recipient that need a selection.
	Slots []int `json:"slots,omitempty"`

	// For "turn_result", in resolution order.
	Results []ActionResult `json:"results,omitempty"`
	// For "turn_result": set when the result was already folded into a
	// resent begin view and must not be applied again.
	Replay bool `json:"replay,omitempty"`

	// For "confirm_replace" and "ack"
	OK bool `json:"ok,omitempty"`

	// For "faint_replace", "reveal_creature", "confirm_replace" and "move_learnable"
	Team       int `json:"team,omitempty"`
	Slot       int `json:"slot,omitempty"`
	PartyIndex int `json:"party_index,omitempty"`

	// For "reveal_creature"
	Creature *game.PublicCreature `json:"creature,omitempty"`

	// For "captured": the creature as it joins the capturer's party.
	Captured *OwnCreature `json:"captured,omitempty"`

	// For "end": winning participant id, empty when nobody won.
	Winner string `json:"winner,omitempty"`

	// For "ack"
	Request InboundType `json:"request,omitempty"`
	Reason  string      `json:"reason,omitempty"`

	// For "move_learnable"
	Move dex.ID `json:"move,omitempty"`
}

// BeginView is the initial view a participant gets of the battle.
type BeginView struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Team   int                `json:"team"`
	Wild   bool               `json:"wild,omitempty"`
	Party  []OwnCreature      `json:"party"`
	Active []int              `json:"active"`
	Bag    map[dex.ID]int     `json:"bag,omitempty"`
	Others []game.RemoteParty `json:"others"`
}

// OwnCreature is the full view a participant has of its own creature.
type OwnCreature struct {
	PartyIndex int           `json:"party_index"`
	Creature   game.Creature `json:"creature"`
	HP         int           `json:"hp"`
	MaxHP      int           `json:"max_hp"`
	Ailment    dex.Ailment   `json:"ailment,omitempty"`
}

// NewOwnCreature copies the current state of c.
func NewOwnCreature(partyIndex int, c *game.BattleCreature) OwnCreature {
	base := *c.Base
	base.Moves = append([]game.MoveSlot(nil), c.Base.Moves...)
	return OwnCreature{PartyIndex: partyIndex, Creature: base, HP: c.HP, MaxHP: c.MaxHP(), Ailment: c.Ailment}
}

type ActionKind string

const (
	ActionMove     ActionKind = "move"
	ActionItem     ActionKind = "item"
	ActionSwitch   ActionKind = "switch"
	ActionResidual ActionKind = "residual"
	ActionForfeit  ActionKind = "forfeit"
)

// ActionResult is one resolved entry of a turn with its public outcomes.
type ActionResult struct {
	Actor    game.TeamIndex       `json:"actor"`
	Kind     ActionKind           `json:"kind"`
	Move     dex.ID               `json:"move,omitempty"`
	Item     dex.ID               `json:"item,omitempty"`
	Outcomes []game.PublicOutcome `json:"outcomes"`
}
