package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ericogr/monster-arena/internal/game"
)

func TestPipeReceiveNeverBlocks(t *testing.T) {
	p := NewPipe()
	if _, st := p.Receive(); st != Empty {
		t.Fatalf("expected empty, got %s", st)
	}
	p.Submit(SelectMove(0, 1, nil))
	p.Submit(Forfeit())
	p.Close()

	msg, st := p.Receive()
	if st != Received || msg.Type != InSelectMove || msg.MoveSlot != 1 {
		t.Fatalf("unexpected first message %+v (%s)", msg, st)
	}
	if msg, st = p.Receive(); st != Received || msg.Type != InForfeit {
		t.Fatalf("unexpected second message %+v (%s)", msg, st)
	}
	if _, st = p.Receive(); st != Disconnected {
		t.Fatalf("expected disconnected, got %s", st)
	}
	if p.Submit(TurnAcknowledged()) {
		t.Fatalf("submit after close must fail")
	}
}

func TestPipeMessagesDrains(t *testing.T) {
	p := NewPipe()
	p.Send(Outbound{Type: OutStartSelecting, Turn: 1})
	p.Send(Outbound{Type: OutEnd})
	if got := p.Messages(); len(got) != 2 || got[0].Type != OutStartSelecting {
		t.Fatalf("unexpected messages %+v", got)
	}
	if got := p.Messages(); len(got) != 0 {
		t.Fatalf("expected drained queue, got %+v", got)
	}
}

func TestOutboundEnvelopeOmitsUnusedFields(t *testing.T) {
	b, err := json.Marshal(Outbound{Type: OutFaintReplace, Team: 1, Slot: 0, PartyIndex: 2})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"type":"faint_replace"`) || !strings.Contains(s, `"party_index":2`) {
		t.Fatalf("unexpected json %s", s)
	}
	for _, field := range []string{"begin", "results", "creature", "captured", "winner"} {
		if strings.Contains(s, `"`+field+`"`) {
			t.Fatalf("%s should be omitted: %s", field, s)
		}
	}
}

func TestInboundDecodesTarget(t *testing.T) {
	var in Inbound
	if err := json.Unmarshal([]byte(`{"type":"select_move","slot":1,"move_slot":2,"target":{"team":0,"slot":1}}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := game.TeamIndex{Team: 0, Slot: 1}
	if in.Type != InSelectMove || in.Slot != 1 || in.MoveSlot != 2 || in.Target == nil || *in.Target != want {
		t.Fatalf("unexpected inbound %+v", in)
	}
}
