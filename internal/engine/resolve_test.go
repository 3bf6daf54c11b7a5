package engine

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/game"
)

// rollingScripts recomputes the move through RollHit, as a script would
// through its damage helper.
type rollingScripts struct{}

func (rollingScripts) Run(_ context.Context, call ScriptCall) ([]game.Outcome, error) {
	var out []game.Outcome
	for _, tgt := range call.Targets {
		h := RollHit(call.Rand, call.Move, call.Move.Power, call.User, tgt)
		out = append(out, game.Outcome{Kind: game.OutcomeDamage, Target: tgt.Position, Amount: h.Damage, Critical: h.Critical, Effectiveness: h.Effectiveness})
	}
	return out, nil
}

type failingScripts struct{ err error }

func (f failingScripts) Run(context.Context, ScriptCall) ([]game.Outcome, error) { return nil, f.err }

// halfwayScripts damages its target, then asks for an outcome scripts may
// not produce.
type halfwayScripts struct{}

func (halfwayScripts) Run(_ context.Context, call ScriptCall) ([]game.Outcome, error) {
	return []game.Outcome{
		{Kind: game.OutcomeDamage, Target: call.Targets[0].Position, Amount: 5},
		{Kind: game.OutcomeCapture, Target: call.Targets[0].Position, Success: true},
	}, nil
}

type strayScripts struct{}

func (strayScripts) Run(context.Context, ScriptCall) ([]game.Outcome, error) {
	return []game.Outcome{
		{Kind: game.OutcomeDamage, Target: at(1, 0), Amount: 3},
		{Kind: game.OutcomeDamage, Target: at(5, 0), Amount: 3},
	}, nil
}

// duelAtLevel10 sets up attack 35 against defense 30 at level 10.
func duelAtLevel10(t *testing.T, d dex.Dex) *game.Field {
	user := creature(t, d, "embercub", 10)
	foe := creature(t, d, "pebblet", 10)
	if user.Stat(dex.Attack) != 35 || foe.Stat(dex.Defense) != 30 {
		t.Fatalf("unexpected stats: attack %d defense %d", user.Stat(dex.Attack), foe.Stat(dex.Defense))
	}
	foe.Base.Stats.HP = 100
	foe.HP = 100
	return field(t, 1, []*game.BattleCreature{user}, []*game.BattleCreature{foe})
}

func TestDamageIsIdenticalForBothStrategies(t *testing.T) {
	d := testDex(t)
	e := New(d, rollingScripts{})

	for _, id := range []dex.ID{"flame-jab", "scripted-jab"} {
		f := duelAtLevel10(t, d)
		out, err := e.UseMove(context.Background(), id, Request{Actor: at(0, 0), Targets: []game.TeamIndex{at(1, 0)}, Field: f, Rand: fixedSource{}})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", id, err)
		}
		if len(out) != 1 || out[0].Kind != game.OutcomeDamage {
			t.Fatalf("%s: unexpected outcomes: %+v", id, out)
		}
		if out[0].Amount != 13 || out[0].Critical {
			t.Fatalf("%s: damage = %d crit=%v, want 13 without crit", id, out[0].Amount, out[0].Critical)
		}
		foe, _ := f.At(at(1, 0))
		if foe.HP != 87 {
			t.Fatalf("%s: foe hp = %d, want 87", id, foe.HP)
		}
		if out[0].HP != 87 {
			t.Fatalf("%s: outcome hp = %d, want 87", id, out[0].HP)
		}
	}
}

func TestAccuracyFiftyHitsHalfTheTime(t *testing.T) {
	d := testDex(t)
	e := New(d, nil)
	src := rand.New(rand.NewSource(42))
	hits := 0
	for i := 0; i < 10000; i++ {
		f := duelAtLevel10(t, d)
		out, err := e.UseMove(context.Background(), "coin-flip", Request{Actor: at(0, 0), Targets: []game.TeamIndex{at(1, 0)}, Field: f, Rand: src})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out[0].Kind != game.OutcomeMiss {
			hits++
		}
	}
	if hits < 4800 || hits > 5200 {
		t.Fatalf("hits = %d, want about 5000", hits)
	}
}

func TestMissProducesOnlyMiss(t *testing.T) {
	d := testDex(t)
	f := duelAtLevel10(t, d)
	out, err := New(d, nil).UseMove(context.Background(), "coin-flip", Request{Actor: at(0, 0), Targets: []game.TeamIndex{at(1, 0)}, Field: f, Rand: fixedSource{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Kind != game.OutcomeMiss {
		t.Fatalf("expected a single miss, got %+v", out)
	}
	foe, _ := f.At(at(1, 0))
	if foe.HP != foe.MaxHP() {
		t.Fatalf("a miss must not change hp")
	}
}

func TestStatStageOnEveryOpponent(t *testing.T) {
	d := testDex(t)
	f := field(t, 2,
		[]*game.BattleCreature{creature(t, d, "embercub", 10), creature(t, d, "embercub", 10)},
		[]*game.BattleCreature{creature(t, d, "pebblet", 10), creature(t, d, "pebblet", 10)})
	targets := ResolveTargets(fixedSource{}, f, at(0, 0), dex.TargetAllOpponents, nil, true)
	out, err := New(d, nil).UseMove(context.Background(), "growl", Request{Actor: at(0, 0), Targets: targets, Field: f, Rand: fixedSource{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 outcomes, got %+v", out)
	}
	for _, ti := range []game.TeamIndex{at(1, 0), at(1, 1)} {
		c, _ := f.At(ti)
		if c.Stages.Get(dex.Attack) != -1 {
			t.Fatalf("%s attack stage = %d, want -1", ti, c.Stages.Get(dex.Attack))
		}
	}
}

func TestDrainHealsUser(t *testing.T) {
	d := testDex(t)
	f := duelAtLevel10(t, d)
	user, _ := f.At(at(0, 0))
	user.HP = 1
	out, err := New(d, nil).UseMove(context.Background(), "leech", Request{Actor: at(0, 0), Targets: []game.TeamIndex{at(1, 0)}, Field: f, Rand: fixedSource{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[1].Kind != game.OutcomeHeal || out[1].Amount != 5 {
		t.Fatalf("unexpected outcomes: %+v", out)
	}
	if user.HP != 6 {
		t.Fatalf("user hp = %d, want 6", user.HP)
	}
}

func TestSleepLastsOneToThreeTurns(t *testing.T) {
	d := testDex(t)
	f := duelAtLevel10(t, d)
	if _, err := New(d, nil).UseMove(context.Background(), "spore", Request{Actor: at(0, 0), Targets: []game.TeamIndex{at(1, 0)}, Field: f, Rand: fixedSource{}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	foe, _ := f.At(at(1, 0))
	if foe.Ailment != dex.AilmentSleep || foe.AilmentTurns != 3 {
		t.Fatalf("ailment = %q turns=%d", foe.Ailment, foe.AilmentTurns)
	}
}

func TestUseItemHeals(t *testing.T) {
	d := testDex(t)
	f := duelAtLevel10(t, d)
	user, _ := f.At(at(0, 0))
	user.HP = 1
	out, err := New(d, nil).UseItem(context.Background(), "potion", Request{Actor: at(0, 0), Targets: []game.TeamIndex{at(0, 0)}, Field: f, Rand: fixedSource{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Kind != game.OutcomeHeal {
		t.Fatalf("unexpected outcomes: %+v", out)
	}
	if user.HP != 1+user.MaxHP()/2 {
		t.Fatalf("user hp = %d", user.HP)
	}
}

func TestFailedActionLeavesFieldUntouched(t *testing.T) {
	d := testDex(t)
	f := duelAtLevel10(t, d)
	foe, _ := f.At(at(1, 0))
	before := foe.HP

	_, err := New(d, halfwayScripts{}).UseMove(context.Background(), "scripted-jab", Request{Actor: at(0, 0), Targets: []game.TeamIndex{at(1, 0)}, Field: f, Rand: fixedSource{}})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if foe.HP != before {
		t.Fatalf("hp changed from %d to %d", before, foe.HP)
	}
}

func TestScriptErrorsAreClassified(t *testing.T) {
	d := testDex(t)
	cases := []struct {
		name    string
		scripts ScriptRunner
		kind    ErrorKind
	}{
		{"no runner", nil, KindScriptMissing},
		{"missing", failingScripts{err: ErrScriptMissing}, KindScriptMissing},
		{"compile", failingScripts{err: errors.Join(ErrScriptCompile, errors.New("line 1"))}, KindScriptCompile},
		{"runtime", failingScripts{err: errors.New("boom")}, KindScriptRuntime},
		{"out of scope", strayScripts{}, KindScriptRuntime},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := duelAtLevel10(t, d)
			foe, _ := f.At(at(1, 0))
			_, err := New(d, tc.scripts).UseMove(context.Background(), "scripted-jab", Request{Actor: at(0, 0), Targets: []game.TeamIndex{at(1, 0)}, Field: f, Rand: fixedSource{}})
			var re *ResolutionError
			if !errors.As(err, &re) {
				t.Fatalf("expected ResolutionError, got %v", err)
			}
			if re.Kind != tc.kind {
				t.Fatalf("kind = %s, want %s", re.Kind, tc.kind)
			}
			if foe.HP != foe.MaxHP() {
				t.Fatalf("field changed on failure")
			}
		})
	}
}

func TestUnknownMove(t *testing.T) {
	d := testDex(t)
	f := duelAtLevel10(t, d)
	_, err := New(d, nil).UseMove(context.Background(), "nope", Request{Actor: at(0, 0), Field: f, Rand: fixedSource{}})
	if !errors.Is(err, ErrUnknownID) {
		t.Fatalf("expected ErrUnknownID, got %v", err)
	}
}
