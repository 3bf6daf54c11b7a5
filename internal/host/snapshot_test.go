package host

import (
	"math/rand"
	"testing"

	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/protocol"
)

func TestSnapshotRestore(t *testing.T) {
	d := testDex(t)
	hs := newBattle(t, d, Options{BattleID: "b7", ActiveCount: 1})
	hs.stepUntil(game.PhaseWaitSelecting)
	hs.submit("ash", protocol.SelectMove(0, 0, nil))
	hs.step()
	hs.h.table[1].Party.Creatures[0].HP = 3

	data, err := hs.h.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	restored, err := Restore(d, Options{Rand: rand.New(rand.NewSource(3))}, data)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.ID() != "b7" || restored.Phase() != game.PhaseWaitSelecting || restored.Turn() != 1 {
		t.Fatalf("unexpected restored state %+v", restored.Summary())
	}
	for _, p := range restored.Summary().Participants {
		if p.Active {
			t.Fatalf("restored participants start inactive")
		}
	}
	sprout := restored.table[1].Party.Creatures[0]
	if sprout.HP != 3 || sprout.Species == nil || !sprout.Known {
		t.Fatalf("creature state lost: %+v", sprout)
	}
	if restored.table[0].Party.Creatures[0].Pending == nil {
		t.Fatalf("pending selection lost")
	}

	pipe := protocol.NewPipe()
	if err := restored.Reconnect("gary", pipe); err != nil {
		t.Fatalf("Reconnect: %v", err)
	}
	msgs := pipe.Messages()
	if len(find(msgs, protocol.OutBegin)) != 1 || len(find(msgs, protocol.OutStartSelecting)) != 1 {
		t.Fatalf("reconnect must resend the view: %+v", msgs)
	}
	if err := restored.Reconnect("misty", pipe); err == nil {
		t.Fatalf("unknown participant must be rejected")
	}
}
