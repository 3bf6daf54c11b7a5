package dex

import (
	"errors"
	"fmt"
)

// DamageKind selects how a Damage or Drain primitive computes its amount.
type DamageKind string

const (
	// DamageMove uses the full damage formula with the move's power.
	DamageMove DamageKind = "move"
	// DamagePower uses the full damage formula with Value as power.
	DamagePower DamageKind = "power"
	// DamageConstant deals exactly Value hit points.
	DamageConstant DamageKind = "constant"
	// DamagePercentMax deals Value percent of the target's max HP.
	DamagePercentMax DamageKind = "percent_max"
	// DamagePercentCurrent deals Value percent of the target's current HP.
	DamagePercentCurrent DamageKind = "percent_current"
)

type Damage struct {
	Kind  DamageKind `yaml:"kind" json:"kind"`
	Value int        `yaml:"value" json:"value,omitempty"`
}

type AilmentEffect struct {
	Ailment Ailment `yaml:"ailment" json:"ailment"`
	// Chance in percent; 0 means always.
	Chance int `yaml:"chance" json:"chance,omitempty"`
}

// Drain deals damage and heals the user by HealPercent of the damage dealt.
type Drain struct {
	Damage      Damage `yaml:"damage" json:"damage"`
	HealPercent int    `yaml:"heal_percent" json:"heal_percent"`
}

type StatStage struct {
	Stat  Stat `yaml:"stat" json:"stat"`
	Delta int  `yaml:"delta" json:"delta"`
	// Self applies the change to the user instead of the target.
	Self bool `yaml:"self" json:"self,omitempty"`
}

type Flinch struct{}

type Chance struct {
	Percent int      `yaml:"percent" json:"percent"`
	Actions []Action `yaml:"actions" json:"actions"`
}

// Heal restores Percent of the max HP of the target.
type Heal struct {
	Percent int `yaml:"percent" json:"percent"`
}

// Cure removes Ailment from the target, or any ailment when empty.
type Cure struct {
	Ailment Ailment `yaml:"ailment" json:"ailment,omitempty"`
}

// Action is one declarative effect primitive. Exactly one field is set.
type Action struct {
	Damage    *Damage        `yaml:"damage,omitempty" json:"damage,omitempty"`
	Ailment   *AilmentEffect `yaml:"ailment,omitempty" json:"ailment,omitempty"`
	Drain     *Drain         `yaml:"drain,omitempty" json:"drain,omitempty"`
	StatStage *StatStage     `yaml:"stat_stage,omitempty" json:"stat_stage,omitempty"`
	Flinch    *Flinch        `yaml:"flinch,omitempty" json:"flinch,omitempty"`
	Chance    *Chance        `yaml:"chance,omitempty" json:"chance,omitempty"`
	Heal      *Heal          `yaml:"heal,omitempty" json:"heal,omitempty"`
	Cure      *Cure          `yaml:"cure,omitempty" json:"cure,omitempty"`
}

var ErrInvalidAction = errors.New("invalid action")

// Validate checks that exactly one primitive is set and that its parameters
// are in range. Chance sub-lists are validated recursively.
func (a Action) Validate() error {
	set := 0
	for _, present := range []bool{a.Damage != nil, a.Ailment != nil, a.Drain != nil, a.StatStage != nil,
		a.Flinch != nil, a.Chance != nil, a.Heal != nil, a.Cure != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("%w: expected exactly one primitive, got %d", ErrInvalidAction, set)
	}
	switch {
	case a.Damage != nil:
		return a.Damage.validate()
	case a.Drain != nil:
		if a.Drain.HealPercent <= 0 || a.Drain.HealPercent > 100 {
			return fmt.Errorf("%w: drain heal_percent %d", ErrInvalidAction, a.Drain.HealPercent)
		}
		return a.Drain.Damage.validate()
	case a.Ailment != nil:
		if !a.Ailment.Ailment.Valid() {
			return fmt.Errorf("%w: unknown ailment %q", ErrInvalidAction, a.Ailment.Ailment)
		}
		if a.Ailment.Chance < 0 || a.Ailment.Chance > 100 {
			return fmt.Errorf("%w: ailment chance %d", ErrInvalidAction, a.Ailment.Chance)
		}
	case a.StatStage != nil:
		switch a.StatStage.Stat {
		case Attack, Defense, SpAttack, SpDefense, Speed, Accuracy, Evasion:
		default:
			return fmt.Errorf("%w: stat %q has no stage", ErrInvalidAction, a.StatStage.Stat)
		}
		if a.StatStage.Delta == 0 {
			return fmt.Errorf("%w: stat_stage delta is zero", ErrInvalidAction)
		}
	case a.Chance != nil:
		if a.Chance.Percent <= 0 || a.Chance.Percent > 100 {
			return fmt.Errorf("%w: chance percent %d", ErrInvalidAction, a.Chance.Percent)
		}
		for _, sub := range a.Chance.Actions {
			if err := sub.Validate(); err != nil {
				return err
			}
		}
	case a.Heal != nil:
		if a.Heal.Percent <= 0 {
			return fmt.Errorf("%w: heal percent %d", ErrInvalidAction, a.Heal.Percent)
		}
	case a.Cure != nil:
		if a.Cure.Ailment != AilmentNone && !a.Cure.Ailment.Valid() {
			return fmt.Errorf("%w: unknown ailment %q", ErrInvalidAction, a.Cure.Ailment)
		}
	}
	return nil
}

func (d Damage) validate() error {
	switch d.Kind {
	case DamageMove:
		return nil
	case DamagePower, DamageConstant:
		if d.Value <= 0 {
			return fmt.Errorf("%w: damage %s needs a positive value", ErrInvalidAction, d.Kind)
		}
		return nil
	case DamagePercentMax, DamagePercentCurrent:
		if d.Value <= 0 || d.Value > 100 {
			return fmt.Errorf("%w: damage %s value %d", ErrInvalidAction, d.Kind, d.Value)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown damage kind %q", ErrInvalidAction, d.Kind)
}
