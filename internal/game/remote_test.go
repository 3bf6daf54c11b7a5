package game

import "testing"

func TestPublicPartyHidesUnrevealed(t *testing.T) {
	d := testDex(t)
	a, b, c := newBattleCreature(t, d, 5), newBattleCreature(t, d, 6), newBattleCreature(t, d, 7)
	p, _ := NewParty([]*BattleCreature{a, b, c}, 1)
	a.Known = true

	rp := PublicParty(1, "p2", "Bea", p)
	if len(rp.Creatures) != 3 {
		t.Fatalf("party size should be visible, got %d", len(rp.Creatures))
	}
	if !rp.Creatures[0].Revealed() || rp.Creatures[0].Info.Level != 5 {
		t.Fatalf("active known creature should be revealed")
	}
	for i := 1; i < 3; i++ {
		if rp.Creatures[i].Revealed() {
			t.Fatalf("creature %d leaked before reveal", i)
		}
	}

	if err := rp.Reveal(b.Public(1)); err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	rp.Place(0, 1)
	rp.Apply(PublicOutcome{Kind: OutcomeDamage, Target: TeamIndex{Team: 1, Slot: 0}, HPPercent: 40})
	if got, _ := rp.At(0); got.HPPercent != 40 {
		t.Fatalf("expected hp percent to update, got %+v", got)
	}
	rp.Apply(PublicOutcome{Kind: OutcomeFaint, Target: TeamIndex{Team: 1, Slot: 0}})
	if _, ok := rp.At(0); ok {
		t.Fatalf("fainted creature should leave the slot")
	}
	if !rp.Creatures[1].Info.Fainted {
		t.Fatalf("fainted flag not recorded")
	}
}

func TestOutcomePublicStripsExactHP(t *testing.T) {
	o := Outcome{Kind: OutcomeDamage, Target: TeamIndex{Team: 0}, Amount: 12, HP: 30, HPPercent: 50}
	if p := o.Public(false); p.HP != nil {
		t.Fatalf("non owner must not receive exact hp")
	}
	if p := o.Public(true); p.HP == nil || *p.HP != 30 {
		t.Fatalf("owner should receive exact hp")
	}
}
