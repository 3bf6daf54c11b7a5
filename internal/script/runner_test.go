package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/engine"
	"github.com/ericogr/monster-arena/internal/game"
)

type fixedSource struct{}

func (fixedSource) Intn(n int) int   { return n - 1 }
func (fixedSource) Float64() float64 { return 0.99 }

type countingSource struct {
	mu    sync.Mutex
	calls int
	src   MapSource
}

func (c *countingSource) Script(id dex.ID) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.src.Script(id)
}

const jab = `
local out = {}
for _, t in ipairs(targets) do
  local amount, crit, eff = user:damage(t)
  table.insert(out, outcome.damage(t, amount, crit, eff))
end
return out
`

func testDex(t *testing.T) *dex.Memory {
	t.Helper()
	d := dex.NewMemory()
	for _, mv := range []dex.Move{
		{ID: "flame-jab", Type: "fire", Category: dex.Physical, Power: 50, PP: 20,
			Actions: []dex.Action{{Damage: &dex.Damage{Kind: dex.DamageMove}}}},
		{ID: "scripted-jab", Type: "fire", Category: dex.Physical, Power: 50, PP: 20, Script: true},
		{ID: "hex", Type: "ghost", Category: dex.Status, PP: 20, Script: true},
	} {
		if err := d.AddMove(mv); err != nil {
			t.Fatalf("AddMove: %v", err)
		}
	}
	for _, s := range []dex.Species{
		{ID: "embercub", Types: []dex.Type{"fire"}, BaseStats: dex.Stats{HP: 40, Attack: 150, Defense: 50, SpAttack: 50, SpDefense: 50, Speed: 50}},
		{ID: "pebblet", Types: []dex.Type{"rock"}, BaseStats: dex.Stats{HP: 40, Attack: 50, Defense: 125, SpAttack: 50, SpDefense: 50, Speed: 50}},
	} {
		if err := d.AddSpecies(s); err != nil {
			t.Fatalf("AddSpecies: %v", err)
		}
	}
	return d
}

func duel(t *testing.T, d dex.Dex) *game.Field {
	t.Helper()
	f := &game.Field{}
	for _, id := range []dex.ID{"embercub", "pebblet"} {
		c, err := game.NewCreature(d, id, 10, "", []dex.ID{"flame-jab"})
		if err != nil {
			t.Fatalf("NewCreature: %v", err)
		}
		bc, err := game.NewBattleCreature(d, c)
		if err != nil {
			t.Fatalf("NewBattleCreature: %v", err)
		}
		bc.Base.Stats.HP = 100
		bc.HP = 100
		p, err := game.NewParty([]*game.BattleCreature{bc}, 1)
		if err != nil {
			t.Fatalf("NewParty: %v", err)
		}
		f.Teams = append(f.Teams, p)
	}
	return f
}

var (
	user = game.TeamIndex{Team: 0, Slot: 0}
	foe  = game.TeamIndex{Team: 1, Slot: 0}
)

func TestScriptMatchesDeclarativeDamage(t *testing.T) {
	d := testDex(t)
	e := engine.New(d, NewRunner(MapSource{"scripted-jab": jab}, time.Second))

	var got []int
	for _, id := range []dex.ID{"flame-jab", "scripted-jab"} {
		f := duel(t, d)
		out, err := e.UseMove(context.Background(), id, engine.Request{Actor: user, Targets: []game.TeamIndex{foe}, Field: f, Rand: fixedSource{}})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", id, err)
		}
		if len(out) != 1 {
			t.Fatalf("%s: unexpected outcomes %+v", id, out)
		}
		got = append(got, out[0].Amount)
	}
	if got[0] != 13 || got[1] != 13 {
		t.Fatalf("damage = %v, want 13 for both strategies", got)
	}
}

func TestOutcomeConstructors(t *testing.T) {
	d := testDex(t)
	code := `
local t = targets[1]
return {
  outcome.stat(t, "defense", -2),
  outcome.ailment(t, "poison"),
  outcome.heal(user, 5),
  outcome.flinch(t),
}`
	r := NewRunner(MapSource{"hex": code}, time.Second)
	f := duel(t, d)
	out, err := engine.New(d, r).UseMove(context.Background(), "hex", engine.Request{Actor: user, Targets: []game.TeamIndex{foe}, Field: f, Rand: fixedSource{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// heal on a full creature produces nothing
	if len(out) != 3 {
		t.Fatalf("unexpected outcomes: %+v", out)
	}
	c, _ := f.At(foe)
	if c.Stages.Get(dex.Defense) != -2 || c.Ailment != dex.AilmentPoison || !c.Flinch {
		t.Fatalf("script effects not applied: %+v", c)
	}
}

func TestRandomQuery(t *testing.T) {
	r := NewRunner(MapSource{"hex": `if battle.random() then return { outcome.miss(targets[1]) } end return nil`}, 0)
	call := engine.ScriptCall{ID: "hex", Targets: []engine.Combatant{{Position: foe}}, Rand: fixedSource{}}
	out, err := r.Run(context.Background(), call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// fixedSource draws 1 of 2, which is false
	if len(out) != 0 {
		t.Fatalf("unexpected outcomes: %+v", out)
	}
}

func TestSandboxHidesHost(t *testing.T) {
	for _, code := range []string{
		`return require("os")`,
		`return os.exit(1)`,
		`return io.open("/etc/passwd")`,
		`return dofile("/etc/passwd")`,
		`return load("return 1")()`,
		`return math.random()`,
		`return _printregs()`,
		`return string.rep("x", 1000000000)`,
		`return ("ab"):rep(1000000000)`,
	} {
		r := NewRunner(MapSource{"hex": code}, time.Second)
		_, err := r.Run(context.Background(), engine.ScriptCall{ID: "hex", Rand: fixedSource{}})
		if !errors.Is(err, engine.ErrScriptRuntime) {
			t.Fatalf("%q: expected runtime error, got %v", code, err)
		}
	}
}

func TestStringRepStillWorks(t *testing.T) {
	r := NewRunner(MapSource{"hex": `
		if string.rep("ab", 3) ~= "ababab" or ("x"):rep(0) ~= "" then
			error("rep broken")
		end
		return {}
	`}, time.Second)
	if _, err := r.Run(context.Background(), engine.ScriptCall{ID: "hex", Rand: fixedSource{}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestErrorsAreTyped(t *testing.T) {
	cases := []struct {
		name string
		src  MapSource
		want error
	}{
		{"missing", MapSource{}, engine.ErrScriptMissing},
		{"compile", MapSource{"hex": "return {"}, engine.ErrScriptCompile},
		{"runtime", MapSource{"hex": `error("boom")`}, engine.ErrScriptRuntime},
		{"bad return", MapSource{"hex": `return 42`}, engine.ErrScriptRuntime},
		{"bad entry", MapSource{"hex": `return {1}`}, engine.ErrScriptRuntime},
		{"foreign handle", MapSource{"hex": `return { outcome.miss({}) }`}, engine.ErrScriptRuntime},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRunner(tc.src, time.Second).Run(context.Background(), engine.ScriptCall{ID: "hex", Rand: fixedSource{}})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTimeoutStopsRunawayScript(t *testing.T) {
	r := NewRunner(MapSource{"hex": `while true do end`}, 50*time.Millisecond)
	_, err := r.Run(context.Background(), engine.ScriptCall{ID: "hex", Rand: fixedSource{}})
	if !errors.Is(err, engine.ErrScriptRuntime) {
		t.Fatalf("expected runtime error, got %v", err)
	}
}

func TestCompileOnce(t *testing.T) {
	src := &countingSource{src: MapSource{"hex": `return nil`}}
	r := NewRunner(src, time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Run(context.Background(), engine.ScriptCall{ID: "hex", Rand: fixedSource{}}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if _, err := r.Run(context.Background(), engine.ScriptCall{ID: "HEX", Rand: fixedSource{}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls > 8 || src.calls < 1 {
		t.Fatalf("source read %d times", src.calls)
	}
	r.mu.Lock()
	n := len(r.cache)
	r.mu.Unlock()
	if n != 1 {
		t.Fatalf("cache holds %d entries, want 1", n)
	}
}

func TestDirSourceAndPrecompile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hex.lua"), []byte(`return nil`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.lua"), []byte(`return (`), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewRunner(DirSource(dir), time.Second)
	if err := r.Precompile([]dex.ID{"hex"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.Precompile([]dex.ID{"hex", "broken", "absent"})
	if !errors.Is(err, engine.ErrScriptCompile) || !errors.Is(err, engine.ErrScriptMissing) {
		t.Fatalf("expected compile and missing errors, got %v", err)
	}
}

func TestShippedScriptsCompile(t *testing.T) {
	r := NewRunner(DirSource(filepath.Join("..", "..", "data", "scripts")), 0)
	if err := r.Precompile([]dex.ID{"hex"}); err != nil {
		t.Fatalf("Precompile: %v", err)
	}
}
