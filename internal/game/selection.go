package game

import "github.com/ericogr/monster-arena/internal/dex"

type SelectionKind string

const (
	SelectMove   SelectionKind = "move"
	SelectItem   SelectionKind = "item"
	SelectSwitch SelectionKind = "switch"
)

// Selection is the action chosen for one active slot. It is consumed
// exactly once when drained into the turn queue.
type Selection struct {
	Kind       SelectionKind `json:"kind"`
	MoveSlot   int           `json:"move_slot,omitempty"`
	Target     *TeamIndex    `json:"target,omitempty"`
	Item       dex.ID        `json:"item,omitempty"`
	PartyIndex int           `json:"party_index,omitempty"`
}

// Phase is the battle state machine position.
type Phase string

const (
	PhaseStart          Phase = "start"
	PhaseStartSelecting Phase = "start_selecting"
	PhaseWaitSelecting  Phase = "wait_selecting"
	PhaseStartMoving    Phase = "start_moving"
	PhaseWaitMoving     Phase = "wait_moving"
	PhaseEnd            Phase = "end"
)
