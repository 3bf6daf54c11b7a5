package host

import (
	"context"
	"math/rand"
	"testing"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/protocol"
)

// alwaysLow keeps integer draws random but makes every probability roll
// succeed.
type alwaysLow struct{ *rand.Rand }

func (alwaysLow) Float64() float64 { return 0 }

func testDex(t *testing.T) *dex.Memory {
	t.Helper()
	d := dex.NewMemory()
	for _, mv := range []dex.Move{
		{ID: "smash", Type: "normal", Category: dex.Physical, Power: 250, PP: 5,
			Actions: []dex.Action{{Damage: &dex.Damage{Kind: dex.DamageMove}}}},
		{ID: "tap", Type: "normal", Category: dex.Physical, Power: 10, PP: 30,
			Actions: []dex.Action{{Damage: &dex.Damage{Kind: dex.DamageConstant, Value: 1}}}},
		{ID: "roar", Type: "normal", Category: dex.Status, PP: 20,
			Actions: []dex.Action{{StatStage: &dex.StatStage{Stat: dex.Attack, Delta: -1}}}},
		{ID: "ghost-touch", Type: "ghost", Category: dex.Special, Power: 40, PP: 10, Script: true},
	} {
		if err := d.AddMove(mv); err != nil {
			t.Fatalf("AddMove(%s): %v", mv.ID, err)
		}
	}
	for _, it := range []dex.Item{
		{ID: "potion", Kind: dex.ItemHeal, Actions: []dex.Action{{Heal: &dex.Heal{Percent: 50}}}},
		{ID: "poke-ball", Kind: dex.ItemBall, CatchBonus: 1},
	} {
		if err := d.AddItem(it); err != nil {
			t.Fatalf("AddItem(%s): %v", it.ID, err)
		}
	}
	for _, s := range []dex.Species{
		{ID: "brute", Types: []dex.Type{"normal"}, BaseExperience: 50, CatchRate: 45,
			BaseStats: dex.Stats{HP: 50, Attack: 200, Defense: 50, SpAttack: 50, SpDefense: 50, Speed: 100},
			Learnset:  []dex.LearnEntry{{Level: 1, Move: "smash"}, {Level: 7, Move: "roar"}}},
		{ID: "sprout", Types: []dex.Type{"grass"}, BaseExperience: 100, CatchRate: 255,
			BaseStats: dex.Stats{HP: 20, Attack: 10, Defense: 10, SpAttack: 10, SpDefense: 10, Speed: 10},
			Learnset:  []dex.LearnEntry{{Level: 1, Move: "tap"}}},
	} {
		if err := d.AddSpecies(s); err != nil {
			t.Fatalf("AddSpecies: %v", err)
		}
	}
	return d
}

func creatures(t *testing.T, d dex.Dex, species dex.ID, n int, moves ...dex.ID) []*game.Creature {
	t.Helper()
	var out []*game.Creature
	for i := 0; i < n; i++ {
		c, err := game.NewCreature(d, species, 5, "", moves)
		if err != nil {
			t.Fatalf("NewCreature: %v", err)
		}
		out = append(out, c)
	}
	return out
}

type harness struct {
	t     *testing.T
	h     *Host
	pipes map[string]*protocol.Pipe
}

// newBattle pits ash (one brute) against gary (sprouts) unless entrants
// are given.
func newBattle(t *testing.T, d dex.Dex, opts Options, entrants ...Entrant) *harness {
	t.Helper()
	if len(entrants) == 0 {
		entrants = []Entrant{
			{ID: "ash", Name: "Ash", Creatures: creatures(t, d, "brute", 1)},
			{ID: "gary", Name: "Gary", Creatures: creatures(t, d, "sprout", 1)},
		}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	hs := &harness{t: t, pipes: map[string]*protocol.Pipe{}}
	for i := range entrants {
		p := protocol.NewPipe()
		entrants[i].Endpoint = p
		hs.pipes[entrants[i].ID] = p
	}
	h, err := New(d, opts, entrants...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	hs.h = h
	return hs
}

func (hs *harness) step() StepResult { return hs.h.Step(context.Background()) }

// stepUntil steps until phase is reached.
func (hs *harness) stepUntil(phase game.Phase) StepResult {
	hs.t.Helper()
	for i := 0; i < 20; i++ {
		if res := hs.step(); res.Phase == phase {
			return res
		}
	}
	hs.t.Fatalf("phase %s not reached, stuck in %s", phase, hs.h.Phase())
	return StepResult{}
}

func (hs *harness) submit(id string, msg protocol.Inbound) {
	hs.pipes[id].Submit(msg)
}

func (hs *harness) messages(id string) []protocol.Outbound {
	return hs.pipes[id].Messages()
}

func find(msgs []protocol.Outbound, typ protocol.OutboundType) []protocol.Outbound {
	var out []protocol.Outbound
	for _, m := range msgs {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func hasOutcome(r protocol.ActionResult, kind game.OutcomeKind) (game.PublicOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			return o, true
		}
	}
	return game.PublicOutcome{}, false
}
