package engine

import (
	"testing"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/game"
)

// fixedSource always draws the top of every range and never crits.
type fixedSource struct{}

func (fixedSource) Intn(n int) int   { return n - 1 }
func (fixedSource) Float64() float64 { return 0.99 }

// zeroSource always draws the bottom of every range.
type zeroSource struct{}

func (zeroSource) Intn(int) int     { return 0 }
func (zeroSource) Float64() float64 { return 0 }

func intp(v int) *int { return &v }

func testDex(t *testing.T) *dex.Memory {
	t.Helper()
	d := dex.NewMemory()
	moves := []dex.Move{
		{ID: "tackle", Type: "normal", Category: dex.Physical, Power: 40, Accuracy: intp(100), PP: 35,
			Actions: []dex.Action{{Damage: &dex.Damage{Kind: dex.DamageMove}}}},
		{ID: "flame-jab", Type: "fire", Category: dex.Physical, Power: 50, PP: 20,
			Actions: []dex.Action{{Damage: &dex.Damage{Kind: dex.DamageMove}}}},
		{ID: "scripted-jab", Type: "fire", Category: dex.Physical, Power: 50, PP: 20, Script: true},
		{ID: "quick-jab", Type: "normal", Category: dex.Physical, Power: 40, PP: 30, Priority: 1,
			Actions: []dex.Action{{Damage: &dex.Damage{Kind: dex.DamageMove}}}},
		{ID: "coin-flip", Type: "normal", Category: dex.Physical, Power: 40, Accuracy: intp(50), PP: 10,
			Actions: []dex.Action{{Damage: &dex.Damage{Kind: dex.DamageConstant, Value: 1}}}},
		{ID: "growl", Type: "normal", Category: dex.Status, PP: 40, Target: dex.TargetAllOpponents,
			Actions: []dex.Action{{StatStage: &dex.StatStage{Stat: dex.Attack, Delta: -1}}}},
		{ID: "leech", Type: "grass", Category: dex.Special, PP: 10,
			Actions: []dex.Action{{Drain: &dex.Drain{Damage: dex.Damage{Kind: dex.DamageConstant, Value: 10}, HealPercent: 50}}}},
		{ID: "spore", Type: "grass", Category: dex.Status, PP: 15,
			Actions: []dex.Action{{Ailment: &dex.AilmentEffect{Ailment: dex.AilmentSleep}}}},
	}
	for _, mv := range moves {
		if err := d.AddMove(mv); err != nil {
			t.Fatalf("AddMove(%s): %v", mv.ID, err)
		}
	}
	if err := d.AddItem(dex.Item{ID: "potion", Kind: dex.ItemHeal,
		Actions: []dex.Action{{Heal: &dex.Heal{Percent: 50}}}}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	for _, s := range []dex.Species{
		{ID: "embercub", Types: []dex.Type{"fire"},
			BaseStats: dex.Stats{HP: 40, Attack: 150, Defense: 125, SpAttack: 60, SpDefense: 50, Speed: 65},
			Learnset:  []dex.LearnEntry{{Level: 1, Move: "tackle"}}},
		{ID: "pebblet", Types: []dex.Type{"rock"},
			BaseStats: dex.Stats{HP: 40, Attack: 50, Defense: 125, SpAttack: 30, SpDefense: 50, Speed: 20},
			Learnset:  []dex.LearnEntry{{Level: 1, Move: "tackle"}}},
	} {
		if err := d.AddSpecies(s); err != nil {
			t.Fatalf("AddSpecies: %v", err)
		}
	}
	return d
}

func creature(t *testing.T, d dex.Dex, species dex.ID, level int, moves ...dex.ID) *game.BattleCreature {
	t.Helper()
	c, err := game.NewCreature(d, species, level, "", moves)
	if err != nil {
		t.Fatalf("NewCreature: %v", err)
	}
	bc, err := game.NewBattleCreature(d, c)
	if err != nil {
		t.Fatalf("NewBattleCreature: %v", err)
	}
	return bc
}

// field builds teams of the given creatures with activeCount slots each.
func field(t *testing.T, activeCount int, teams ...[]*game.BattleCreature) *game.Field {
	t.Helper()
	f := &game.Field{}
	for _, cs := range teams {
		p, err := game.NewParty(cs, activeCount)
		if err != nil {
			t.Fatalf("NewParty: %v", err)
		}
		f.Teams = append(f.Teams, p)
	}
	return f
}

func at(team, slot int) game.TeamIndex { return game.TeamIndex{Team: team, Slot: slot} }
