package dex

// ID identifies a species, move or item. Ids are canonical (see keys.Canonical)
// and only mean something through a Dex lookup.
type ID string

// Type is an elemental type such as "fire" or "water".
type Type string

type Category string

const (
	Physical Category = "physical"
	Special  Category = "special"
	Status   Category = "status"
)

// Stat names a creature statistic. Accuracy and Evasion only exist as stages.
type Stat string

const (
	HP        Stat = "hp"
	Attack    Stat = "attack"
	Defense   Stat = "defense"
	SpAttack  Stat = "sp_attack"
	SpDefense Stat = "sp_defense"
	Speed     Stat = "speed"
	Accuracy  Stat = "accuracy"
	Evasion   Stat = "evasion"
)

// Stats holds the six base statistics.
type Stats struct {
	HP        int `yaml:"hp" json:"hp"`
	Attack    int `yaml:"attack" json:"attack"`
	Defense   int `yaml:"defense" json:"defense"`
	SpAttack  int `yaml:"sp_attack" json:"sp_attack"`
	SpDefense int `yaml:"sp_defense" json:"sp_defense"`
	Speed     int `yaml:"speed" json:"speed"`
}

// Get returns the value for s, or 0 for Accuracy/Evasion and unknown names.
func (s Stats) Get(stat Stat) int {
	switch stat {
	case HP:
		return s.HP
	case Attack:
		return s.Attack
	case Defense:
		return s.Defense
	case SpAttack:
		return s.SpAttack
	case SpDefense:
		return s.SpDefense
	case Speed:
		return s.Speed
	}
	return 0
}

// TargetMode is the declared targeting policy of a move or item.
type TargetMode string

const (
	TargetAny             TargetMode = "any"
	TargetAlly            TargetMode = "ally"
	TargetAllies          TargetMode = "allies"
	TargetUserAndAllies   TargetMode = "user_and_allies"
	TargetUserOrAlly      TargetMode = "user_or_ally"
	TargetUser            TargetMode = "user"
	TargetOpponent        TargetMode = "opponent"
	TargetRandomOpponent  TargetMode = "random_opponent"
	TargetAllOpponents    TargetMode = "all_opponents"
	TargetAllOtherPokemon TargetMode = "all_other_pokemon"
	TargetAllPokemon      TargetMode = "all_pokemon"
	TargetNone            TargetMode = "none"
)

var targetModes = map[TargetMode]struct{}{
	TargetAny: {}, TargetAlly: {}, TargetAllies: {}, TargetUserAndAllies: {},
	TargetUserOrAlly: {}, TargetUser: {}, TargetOpponent: {}, TargetRandomOpponent: {},
	TargetAllOpponents: {}, TargetAllOtherPokemon: {}, TargetAllPokemon: {}, TargetNone: {},
}

// Valid reports whether m is a known target mode.
func (m TargetMode) Valid() bool {
	_, ok := targetModes[m]
	return ok
}

// Ailment is a persistent status condition.
type Ailment string

const (
	AilmentNone      Ailment = ""
	AilmentBurn      Ailment = "burn"
	AilmentFreeze    Ailment = "freeze"
	AilmentParalysis Ailment = "paralysis"
	AilmentPoison    Ailment = "poison"
	AilmentSleep     Ailment = "sleep"
)

func (a Ailment) Valid() bool {
	switch a {
	case AilmentBurn, AilmentFreeze, AilmentParalysis, AilmentPoison, AilmentSleep:
		return true
	}
	return false
}

type ItemKind string

const (
	ItemHeal   ItemKind = "heal"
	ItemBall   ItemKind = "ball"
	ItemBattle ItemKind = "battle"
)

// LearnEntry grants Move once a creature reaches Level.
type LearnEntry struct {
	Level int `yaml:"level" json:"level"`
	Move  ID  `yaml:"move" json:"move"`
}

type Species struct {
	ID             ID           `yaml:"id" json:"id"`
	Name           string       `yaml:"name" json:"name"`
	Types          []Type       `yaml:"types" json:"types"`
	BaseStats      Stats        `yaml:"base_stats" json:"base_stats"`
	BaseExperience int          `yaml:"base_experience" json:"base_experience"`
	CatchRate      int          `yaml:"catch_rate" json:"catch_rate"`
	Learnset       []LearnEntry `yaml:"learnset" json:"learnset"`
}

// PrimaryType returns the first declared type or "" when none is declared.
func (s *Species) PrimaryType() Type {
	if s == nil || len(s.Types) == 0 {
		return ""
	}
	return s.Types[0]
}

// MovesAt returns the learnset moves granted exactly at level.
func (s *Species) MovesAt(level int) []ID {
	var out []ID
	for _, e := range s.Learnset {
		if e.Level == level {
			out = append(out, e.Move)
		}
	}
	return out
}

type Move struct {
	ID       ID       `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Type     Type     `yaml:"type" json:"type"`
	Category Category `yaml:"category" json:"category"`
	Power    int      `yaml:"power" json:"power"`
	// Accuracy is a percentage; nil means the move never misses.
	Accuracy *int       `yaml:"accuracy" json:"accuracy,omitempty"`
	PP       int        `yaml:"pp" json:"pp"`
	Priority int        `yaml:"priority" json:"priority"`
	CritTier int        `yaml:"crit_tier" json:"crit_tier"`
	Target   TargetMode `yaml:"target" json:"target"`
	Actions  []Action   `yaml:"actions" json:"actions,omitempty"`
	Script   bool       `yaml:"script" json:"script"`
}

type Item struct {
	ID   ID       `yaml:"id" json:"id"`
	Name string   `yaml:"name" json:"name"`
	Kind ItemKind `yaml:"kind" json:"kind"`
	// CatchBonus multiplies the species catch rate for ball items.
	CatchBonus float64    `yaml:"catch_bonus" json:"catch_bonus"`
	Target     TargetMode `yaml:"target" json:"target"`
	Actions    []Action   `yaml:"actions" json:"actions,omitempty"`
	Script     bool       `yaml:"script" json:"script"`
}
