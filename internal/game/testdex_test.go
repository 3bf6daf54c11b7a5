package game

import (
	"testing"

	"github.com/ericogr/monster-arena/internal/dex"
)

func testDex(t *testing.T) *dex.Memory {
	t.Helper()
	d := dex.NewMemory()
	for _, mv := range []dex.Move{
		{ID: "tackle", Type: "normal", Category: dex.Physical, Power: 40, PP: 35, Actions: []dex.Action{{Damage: &dex.Damage{Kind: dex.DamageMove}}}},
		{ID: "ember", Type: "fire", Category: dex.Special, Power: 40, PP: 25, Actions: []dex.Action{{Damage: &dex.Damage{Kind: dex.DamageMove}}}},
	} {
		if err := d.AddMove(mv); err != nil {
			t.Fatalf("AddMove: %v", err)
		}
	}
	if err := d.AddSpecies(dex.Species{
		ID: "embercub", Types: []dex.Type{"fire"},
		BaseStats: dex.Stats{HP: 39, Attack: 52, Defense: 43, SpAttack: 60, SpDefense: 50, Speed: 65},
		Learnset:  []dex.LearnEntry{{Level: 1, Move: "tackle"}, {Level: 7, Move: "ember"}},
	}); err != nil {
		t.Fatalf("AddSpecies: %v", err)
	}
	return d
}

func newBattleCreature(t *testing.T, d dex.Dex, level int) *BattleCreature {
	t.Helper()
	c, err := NewCreature(d, "embercub", level, "", nil)
	if err != nil {
		t.Fatalf("NewCreature: %v", err)
	}
	bc, err := NewBattleCreature(d, c)
	if err != nil {
		t.Fatalf("NewBattleCreature: %v", err)
	}
	return bc
}
