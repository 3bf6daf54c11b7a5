package engine

import (
	"math/rand"
	"testing"

	"github.com/ericogr/monster-arena/internal/game"
)

func TestPriorityKeyOrdering(t *testing.T) {
	cases := []struct {
		name string
		a, b PriorityKey
	}{
		{"bucket", PriorityKey{Bucket: BucketFirst}, PriorityKey{Bucket: BucketMove, Priority: 5, Speed: 999}},
		{"priority", PriorityKey{Bucket: BucketMove, Priority: 1}, PriorityKey{Bucket: BucketMove, Speed: 999}},
		{"speed", PriorityKey{Bucket: BucketMove, Speed: 100}, PriorityKey{Bucket: BucketMove, Speed: 80}},
		{"tiebreak", PriorityKey{Bucket: BucketMove, Tiebreak: 1}, PriorityKey{Bucket: BucketMove, Tiebreak: 2}},
	}
	for _, tc := range cases {
		if !tc.a.Less(tc.b) || tc.b.Less(tc.a) {
			t.Fatalf("%s: %+v should precede %+v", tc.name, tc.a, tc.b)
		}
	}
}

func selectMove(c *game.BattleCreature, slot int) {
	c.Pending = &game.Selection{Kind: game.SelectMove, MoveSlot: slot}
}

func TestFasterMoveResolvesFirst(t *testing.T) {
	d := testDex(t)
	src := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		fast := creature(t, d, "embercub", 10)
		slow := creature(t, d, "embercub", 10)
		fast.Base.Stats.Speed = 100
		slow.Base.Stats.Speed = 80
		f := field(t, 1, []*game.BattleCreature{slow}, []*game.BattleCreature{fast})
		selectMove(fast, 0)
		selectMove(slow, 0)

		q := BuildTurnQueue(src, d, f)
		if len(q) != 2 || q[0].Actor != at(1, 0) {
			t.Fatalf("speed 100 must act first: %+v", q)
		}
		if fast.Pending != nil || slow.Pending != nil {
			t.Fatalf("selections must be drained")
		}
	}
}

func TestSwitchesPrecedeMoves(t *testing.T) {
	d := testDex(t)
	a := creature(t, d, "embercub", 10, "quick-jab")
	b := creature(t, d, "pebblet", 10)
	f := field(t, 1, []*game.BattleCreature{a}, []*game.BattleCreature{b})
	selectMove(a, 0)
	b.Pending = &game.Selection{Kind: game.SelectSwitch, PartyIndex: 1}

	q := BuildTurnQueue(rand.New(rand.NewSource(3)), d, f)
	if q[0].Selection.Kind != game.SelectSwitch || q[1].Key.Priority != 1 {
		t.Fatalf("unexpected order: %+v", q)
	}
}

func TestTiesAreBrokenUniformly(t *testing.T) {
	d := testDex(t)
	src := rand.New(rand.NewSource(7))
	first := 0
	const trials = 4000
	for i := 0; i < trials; i++ {
		a := creature(t, d, "embercub", 10)
		b := creature(t, d, "embercub", 10)
		f := field(t, 1, []*game.BattleCreature{a}, []*game.BattleCreature{b})
		selectMove(a, 0)
		selectMove(b, 0)
		q := BuildTurnQueue(src, d, f)
		if q[0].Key.Tiebreak == q[1].Key.Tiebreak {
			t.Fatalf("tiebreaks must differ")
		}
		if q[0].Actor.Team == 0 {
			first++
		}
	}
	if first < trials*45/100 || first > trials*55/100 {
		t.Fatalf("team 0 first %d of %d times", first, trials)
	}
}

func TestFaintedCreaturesAreNotQueued(t *testing.T) {
	d := testDex(t)
	a := creature(t, d, "embercub", 10)
	b := creature(t, d, "pebblet", 10)
	f := field(t, 1, []*game.BattleCreature{a}, []*game.BattleCreature{b})
	selectMove(a, 0)
	selectMove(b, 0)
	b.HP = 0

	if q := BuildTurnQueue(rand.New(rand.NewSource(1)), d, f); len(q) != 1 || q[0].Actor != at(0, 0) {
		t.Fatalf("unexpected queue: %+v", q)
	}
}
