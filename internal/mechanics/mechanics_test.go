package mechanics

import (
	"math/rand"
	"testing"
)

func TestDamageScenario(t *testing.T) {
	in := DamageInput{Level: 10, Attack: 35, Defense: 30, Power: 50, Effectiveness: 1, SameType: true, Roll: 100}
	// (2*10/5+2)=6; 6*35*50/30=350; /50=7; +2=9; *1.5=13.5
	if got := Damage(in); got != 13 {
		t.Fatalf("Damage() = %d, want 13", got)
	}
	for i := 0; i < 5; i++ {
		if got := Damage(in); got != 13 {
			t.Fatalf("Damage() is not deterministic: %d", got)
		}
	}
}

func TestDamageIneffective(t *testing.T) {
	in := DamageInput{Level: 50, Attack: 100, Defense: 50, Power: 90, Effectiveness: 0, Roll: 100}
	if got := Damage(in); got != 0 {
		t.Fatalf("expected 0 damage for ineffective hit, got %d", got)
	}
}

func TestDamageModifiers(t *testing.T) {
	base := DamageInput{Level: 50, Attack: 100, Defense: 100, Power: 80, Effectiveness: 1, Roll: 100}
	plain := Damage(base)
	crit := base
	crit.Critical = true
	if Damage(crit) <= plain {
		t.Fatalf("critical should increase damage: %d <= %d", Damage(crit), plain)
	}
	low := base
	low.Roll = 85
	if Damage(low) >= plain {
		t.Fatalf("low roll should decrease damage")
	}
	super := base
	super.Effectiveness = 2
	if Damage(super) <= plain {
		t.Fatalf("effectiveness should scale damage")
	}
}

func TestStageMultiply(t *testing.T) {
	tests := []struct{ base, stage, want int }{
		{100, 0, 100},
		{100, 1, 150},
		{100, 6, 400},
		{100, -1, 66},
		{100, -6, 25},
	}
	for _, tt := range tests {
		if got := StageMultiply(tt.base, tt.stage); got != tt.want {
			t.Errorf("StageMultiply(%d,%d) = %d, want %d", tt.base, tt.stage, got, tt.want)
		}
	}
}

func TestCritChanceClamps(t *testing.T) {
	if CritChance(-3) != 1.0/16 || CritChance(9) != 0.5 || CritChance(3) != 1.0/3 {
		t.Fatalf("unexpected crit chance table")
	}
}

func TestHitsAccuracy50(t *testing.T) {
	src := rand.New(rand.NewSource(42))
	acc := 50
	hits := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if Hits(src, &acc) {
			hits++
		}
	}
	if hits < 4800 || hits > 5200 {
		t.Fatalf("expected ~50%% hits, got %d/%d", hits, n)
	}
	if !Hits(src, nil) {
		t.Fatalf("nil accuracy must always hit")
	}
}

func TestRollDamageRange(t *testing.T) {
	src := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		r := RollDamage(src)
		if r < MinDamageRoll || r > MaxDamageRoll {
			t.Fatalf("roll out of range: %d", r)
		}
	}
}

func TestLevelCurve(t *testing.T) {
	if LevelForExperience(ExperienceForLevel(12)) != 12 {
		t.Fatalf("level curve round trip failed")
	}
	if LevelForExperience(ExperienceForLevel(12)-1) != 11 {
		t.Fatalf("expected level 11 just below the threshold")
	}
	if LevelForExperience(1<<30) != MaxLevel {
		t.Fatalf("expected level cap")
	}
}

func TestExperienceYield(t *testing.T) {
	if got := ExperienceYield(100, false, false); got != 100 {
		t.Fatalf("got %d", got)
	}
	if got := ExperienceYield(100, true, false); got != 150 {
		t.Fatalf("got %d", got)
	}
	if got := ExperienceYield(100, true, true); got != 1050 {
		t.Fatalf("got %d", got)
	}
}

func TestCaptureChance(t *testing.T) {
	full := CaptureChance(255, 1, 100, 100)
	low := CaptureChance(255, 1, 1, 100)
	if low <= full {
		t.Fatalf("lower hp should be easier to catch: %v <= %v", low, full)
	}
	if CaptureChance(255, 10, 1, 100) != 1 {
		t.Fatalf("chance must clamp at 1")
	}
}
