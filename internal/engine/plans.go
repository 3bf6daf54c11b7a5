package engine

import (
	"sort"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/mechanics"
)

const (
	// BucketFirst holds switches and items, which always precede moves.
	BucketFirst = 0
	BucketMove  = 1

	tieRetries = 8
	tieSpan    = 1 << 8
)

// PriorityKey orders queued actions: bucket ascending, then declared
// priority and effective speed descending, then the random tiebreak.
type PriorityKey struct {
	Bucket   int `json:"bucket"`
	Priority int `json:"priority"`
	Speed    int `json:"speed"`
	Tiebreak int `json:"tiebreak"`
}

// Less reports whether k resolves before o.
func (k PriorityKey) Less(o PriorityKey) bool {
	if k.Bucket != o.Bucket {
		return k.Bucket < o.Bucket
	}
	if k.Priority != o.Priority {
		return k.Priority > o.Priority
	}
	if k.Speed != o.Speed {
		return k.Speed > o.Speed
	}
	return k.Tiebreak < o.Tiebreak
}

// QueuedAction is one drained selection with the creature it belongs to.
type QueuedAction struct {
	Actor      game.TeamIndex
	PartyIndex int
	Selection  game.Selection
	Key        PriorityKey
}

// TurnQueue is rebuilt every moving phase and discarded after resolution.
type TurnQueue []QueuedAction

// BuildTurnQueue drains the pending selection of every occupied slot into
// one ordered queue. A selection is cleared from its creature as soon as
// it is queued.
func BuildTurnQueue(src mechanics.Source, d dex.Dex, f *game.Field) TurnQueue {
	q := make(TurnQueue, 0, 4)
	for team, p := range f.Teams {
		for slot := range p.Active {
			c, ok := p.At(slot)
			if !ok || c.Out() || c.Pending == nil {
				continue
			}
			sel := *c.Pending
			c.Pending = nil
			key := PriorityKey{Bucket: BucketFirst, Speed: c.Stat(dex.Speed)}
			if sel.Kind == game.SelectMove {
				key.Bucket = BucketMove
				if sel.MoveSlot >= 0 && sel.MoveSlot < len(c.Base.Moves) {
					if mv, ok := d.Move(c.Base.Moves[sel.MoveSlot].Move); ok {
						key.Priority = mv.Priority
					}
				}
			}
			q.insert(src, QueuedAction{
				Actor:      game.TeamIndex{Team: team, Slot: slot},
				PartyIndex: p.Active[slot],
				Selection:  sel,
				Key:        key,
			})
		}
	}
	return q
}

// insert places a with a fresh random tiebreak, redrawing while the full
// key collides with one already queued. After tieRetries collisions the
// draw range widens.
func (q *TurnQueue) insert(src mechanics.Source, a QueuedAction) {
	span := tieSpan
	for tries := 1; ; tries++ {
		a.Key.Tiebreak = src.Intn(span)
		pos := sort.Search(len(*q), func(i int) bool { return !(*q)[i].Key.Less(a.Key) })
		if pos < len(*q) && (*q)[pos].Key == a.Key {
			if tries%tieRetries == 0 && span < 1<<30 {
				span <<= 8
			}
			continue
		}
		*q = append(*q, QueuedAction{})
		copy((*q)[pos+1:], (*q)[pos:])
		(*q)[pos] = a
		return
	}
}
