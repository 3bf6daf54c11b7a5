package game

import "github.com/ericogr/monster-arena/internal/dex"

type OutcomeKind string

const (
	OutcomeDamage     OutcomeKind = "damage"
	OutcomeHeal       OutcomeKind = "heal"
	OutcomeAilment    OutcomeKind = "ailment"
	OutcomeCure       OutcomeKind = "cure"
	OutcomeStatStage  OutcomeKind = "stat_stage"
	OutcomeFlinch     OutcomeKind = "flinch"
	OutcomeMiss       OutcomeKind = "miss"
	OutcomeFaint      OutcomeKind = "faint"
	OutcomeCapture    OutcomeKind = "capture"
	OutcomeExperience OutcomeKind = "experience"
	OutcomeSwitch     OutcomeKind = "switch"
	// OutcomeBlocked means the actor could not act (asleep, frozen, flinched...).
	OutcomeBlocked OutcomeKind = "blocked"
	OutcomeFail    OutcomeKind = "fail"
)

// Outcome is one consequence of an action on one target. Amount and HP are
// exact and stay on the server; Public strips them.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Target TeamIndex   `json:"target"`

	// Amount is the exact HP change for damage/heal, experience for
	// experience outcomes.
	Amount        int         `json:"amount,omitempty"`
	HP            int         `json:"hp,omitempty"`
	HPPercent     float64     `json:"hp_percent,omitempty"`
	Critical      bool        `json:"critical,omitempty"`
	Effectiveness float64     `json:"effectiveness,omitempty"`
	Ailment       dex.Ailment `json:"ailment,omitempty"`
	Stat          dex.Stat    `json:"stat,omitempty"`
	Delta         int         `json:"delta,omitempty"`
	// Applied is false for a stat change rejected at the stage limit.
	Applied    bool   `json:"applied,omitempty"`
	Success    bool   `json:"success,omitempty"`
	Level      int    `json:"level,omitempty"`
	PartyIndex int    `json:"party_index,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// PublicOutcome is the broadcastable subset of an Outcome. HP is only
// filled for the participant owning the target.
type PublicOutcome struct {
	Kind          OutcomeKind `json:"kind"`
	Target        TeamIndex   `json:"target"`
	HPPercent     float64     `json:"hp_percent,omitempty"`
	HP            *int        `json:"hp,omitempty"`
	Critical      bool        `json:"critical,omitempty"`
	Effectiveness float64     `json:"effectiveness,omitempty"`
	Ailment       dex.Ailment `json:"ailment,omitempty"`
	Stat          dex.Stat    `json:"stat,omitempty"`
	Delta         int         `json:"delta,omitempty"`
	Applied       bool        `json:"applied,omitempty"`
	Success       bool        `json:"success,omitempty"`
	Experience    int         `json:"experience,omitempty"`
	Level         int         `json:"level,omitempty"`
	PartyIndex    int         `json:"party_index,omitempty"`
	Reason        string      `json:"reason,omitempty"`
}

// Public converts o for a recipient. owner reports whether the recipient
// owns the target's team.
func (o Outcome) Public(owner bool) PublicOutcome {
	p := PublicOutcome{
		Kind:          o.Kind,
		Target:        o.Target,
		HPPercent:     o.HPPercent,
		Critical:      o.Critical,
		Effectiveness: o.Effectiveness,
		Ailment:       o.Ailment,
		Stat:          o.Stat,
		Delta:         o.Delta,
		Applied:       o.Applied,
		Success:       o.Success,
		Level:         o.Level,
		PartyIndex:    o.PartyIndex,
		Reason:        o.Reason,
	}
	switch o.Kind {
	case OutcomeDamage, OutcomeHeal, OutcomeFaint:
		if owner {
			hp := o.HP
			p.HP = &hp
		}
	case OutcomeExperience:
		if owner {
			p.Experience = o.Amount
		}
	}
	return p
}
