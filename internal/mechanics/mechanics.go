// Package mechanics holds the pure battle formulas shared by every effect
// strategy. Nothing here touches battle state; callers pass plain numbers.
package mechanics

import (
	"math"

	"github.com/ericogr/monster-arena/internal/dex"
)

// Source is the random source used by the battle core. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Float64() float64
}

const (
	MinStage = -6
	MaxStage = 6

	MinDamageRoll = 85
	MaxDamageRoll = 100

	MaxLevel = 100
)

// StageMultiply applies a stat stage to a base stat value.
func StageMultiply(base, stage int) int {
	if stage >= 0 {
		return base * (2 + stage) / 2
	}
	return base * 2 / (2 - stage)
}

// DamageInput collects everything the damage formula depends on.
type DamageInput struct {
	Level         int
	Attack        int
	Defense       int
	Power         int
	Effectiveness float64
	SameType      bool
	Critical      bool
	// Roll is the uniform damage roll in [85,100].
	Roll int
}

// Damage computes the hit point loss of one hit. Identical input always
// produces identical output.
func Damage(in DamageInput) int {
	if in.Effectiveness == 0 || in.Power <= 0 {
		return 0
	}
	def := in.Defense
	if def < 1 {
		def = 1
	}
	lvl := 2*in.Level/5 + 2
	raw := lvl * in.Attack * in.Power / def
	raw = raw / 50
	base := int(math.Floor(float64(raw)*in.Effectiveness)) + 2

	final := float64(base) * float64(in.Roll) / 100
	if in.SameType {
		final *= 1.5
	}
	if in.Critical {
		final *= 1.5
	}
	return int(math.Floor(final))
}

var critChances = [...]float64{1.0 / 16, 1.0 / 8, 1.0 / 4, 1.0 / 3, 1.0 / 2}

// CritChance returns the critical probability of a 0-4 tier. Out of range
// tiers are clamped.
func CritChance(tier int) float64 {
	if tier < 0 {
		tier = 0
	}
	if tier >= len(critChances) {
		tier = len(critChances) - 1
	}
	return critChances[tier]
}

func RollCritical(src Source, tier int) bool {
	return src.Float64() < CritChance(tier)
}

// RollDamage draws the uniform damage roll in [85,100].
func RollDamage(src Source) int {
	return MinDamageRoll + src.Intn(MaxDamageRoll-MinDamageRoll+1)
}

// Hits rolls an accuracy check. A nil accuracy always hits.
func Hits(src Source, accuracy *int) bool {
	if accuracy == nil {
		return true
	}
	return src.Intn(100) < *accuracy
}

// Percent rolls a chance in percent. 0 or >=100 always succeeds.
func Percent(src Source, chance int) bool {
	if chance <= 0 || chance >= 100 {
		return true
	}
	return src.Intn(100) < chance
}

// StatsAt derives the battle statistics of a creature at level.
func StatsAt(base dex.Stats, level int) dex.Stats {
	other := func(b int) int { return 2*b*level/100 + 5 }
	return dex.Stats{
		HP:        2*base.HP*level/100 + level + 10,
		Attack:    other(base.Attack),
		Defense:   other(base.Defense),
		SpAttack:  other(base.SpAttack),
		SpDefense: other(base.SpDefense),
		Speed:     other(base.Speed),
	}
}

// ExperienceForLevel is the total experience needed to reach level.
func ExperienceForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return level * level * level
}

// LevelForExperience returns the level reached with exp total experience.
func LevelForExperience(exp int) int {
	level := 1
	for level < MaxLevel && ExperienceForLevel(level+1) <= exp {
		level++
	}
	return level
}

// ExperienceYield is the experience granted for knocking out a creature
// with the given species base experience.
func ExperienceYield(baseExperience int, wild, debug bool) int {
	exp := float64(baseExperience)
	if wild {
		exp *= 1.5
	}
	if debug {
		exp *= 7
	}
	return int(exp)
}

// CaptureChance returns the probability of catching a creature.
func CaptureChance(catchRate int, bonus float64, hp, maxHP int) float64 {
	if maxHP <= 0 {
		return 0
	}
	if bonus <= 0 {
		bonus = 1
	}
	p := float64(catchRate) * bonus * float64(3*maxHP-2*hp) / float64(3*maxHP) / 255
	return math.Max(0, math.Min(1, p))
}

func RollCapture(src Source, catchRate int, bonus float64, hp, maxHP int) bool {
	return src.Float64() < CaptureChance(catchRate, bonus, hp, maxHP)
}
