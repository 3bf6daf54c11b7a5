package game

import (
	"fmt"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/mechanics"
)

var stageOrder = [...]dex.Stat{dex.Attack, dex.Defense, dex.SpAttack, dex.SpDefense, dex.Speed, dex.Accuracy, dex.Evasion}

// StatStages holds the -6..+6 modifiers for the five battle stats plus
// accuracy and evasion. HP has no stage.
type StatStages [len(stageOrder)]int

func stageIndex(stat dex.Stat) int {
	for i, s := range stageOrder {
		if s == stat {
			return i
		}
	}
	return -1
}

// Get returns the stage of stat, 0 for stats without stages.
func (s *StatStages) Get(stat dex.Stat) int {
	i := stageIndex(stat)
	if i < 0 {
		return 0
	}
	return s[i]
}

// Change applies delta to stat. A change that would leave [-6,+6] is
// rejected as a whole and reported with applied=false; the stage is left
// untouched. Only an unknown stat is an error.
func (s *StatStages) Change(stat dex.Stat, delta int) (applied bool, err error) {
	i := stageIndex(stat)
	if i < 0 {
		return false, fmt.Errorf("stat %q has no stage", stat)
	}
	next := s[i] + delta
	if next < mechanics.MinStage || next > mechanics.MaxStage {
		return false, nil
	}
	s[i] = next
	return delta != 0, nil
}
