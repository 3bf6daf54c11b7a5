package engine

import (
	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/mechanics"
)

// Roster is the read-only view the targeting resolver needs.
type Roster interface {
	TeamCount() int
	SlotCount(team int) int
	Occupied(ti game.TeamIndex) bool
}

// ResolveTargets turns a declared target mode and an optional explicit
// target into concrete slots. It never returns an unoccupied slot and
// returns nil when nothing is eligible. status marks status-category
// moves, which never pick the user's own team at random under TargetAny.
func ResolveTargets(src mechanics.Source, r Roster, actor game.TeamIndex, mode dex.TargetMode, explicit *game.TeamIndex, status bool) []game.TeamIndex {
	legal := func(pred func(game.TeamIndex) bool) bool {
		return explicit != nil && r.Occupied(*explicit) && pred(*explicit)
	}
	sameTeam := func(t game.TeamIndex) bool { return t.Team == actor.Team }
	otherTeam := func(t game.TeamIndex) bool { return t.Team != actor.Team }
	notActor := func(t game.TeamIndex) bool { return t != actor }

	switch mode {
	case dex.TargetNone:
		return nil
	case dex.TargetUser:
		if r.Occupied(actor) {
			return []game.TeamIndex{actor}
		}
		return nil
	case dex.TargetAny:
		if legal(notActor) {
			return []game.TeamIndex{*explicit}
		}
		pool := collect(r, func(t game.TeamIndex) bool {
			if t == actor {
				return false
			}
			return !status || otherTeam(t)
		})
		return pick(src, pool)
	case dex.TargetAlly:
		if legal(func(t game.TeamIndex) bool { return sameTeam(t) && notActor(t) }) {
			return []game.TeamIndex{*explicit}
		}
		return pick(src, allies(r, actor))
	case dex.TargetAllies:
		return allies(r, actor)
	case dex.TargetUserAndAllies:
		return collect(r, sameTeam)
	case dex.TargetUserOrAlly:
		if legal(sameTeam) {
			return []game.TeamIndex{*explicit}
		}
		ally := pick(src, allies(r, actor))
		self := r.Occupied(actor)
		switch {
		case len(ally) == 0 && !self:
			return nil
		case len(ally) == 0:
			return []game.TeamIndex{actor}
		case !self:
			return ally
		}
		if src.Intn(2) == 0 {
			return []game.TeamIndex{actor}
		}
		return ally
	case dex.TargetOpponent, dex.TargetRandomOpponent:
		if legal(otherTeam) {
			return []game.TeamIndex{*explicit}
		}
		return randomOpponent(src, r, actor)
	case dex.TargetAllOpponents:
		return collect(r, otherTeam)
	case dex.TargetAllOtherPokemon:
		return collect(r, notActor)
	case dex.TargetAllPokemon:
		return collect(r, func(game.TeamIndex) bool { return true })
	}
	return nil
}

// collect lists occupied slots matching keep, ordered by team then slot.
func collect(r Roster, keep func(game.TeamIndex) bool) []game.TeamIndex {
	var out []game.TeamIndex
	for team := 0; team < r.TeamCount(); team++ {
		for slot := 0; slot < r.SlotCount(team); slot++ {
			ti := game.TeamIndex{Team: team, Slot: slot}
			if r.Occupied(ti) && keep(ti) {
				out = append(out, ti)
			}
		}
	}
	return out
}

func allies(r Roster, actor game.TeamIndex) []game.TeamIndex {
	return collect(r, func(t game.TeamIndex) bool { return t.Team == actor.Team && t != actor })
}

func pick(src mechanics.Source, pool []game.TeamIndex) []game.TeamIndex {
	if len(pool) == 0 {
		return nil
	}
	return []game.TeamIndex{pool[src.Intn(len(pool))]}
}

// randomOpponent draws an opposing team with at least one occupied slot,
// then a slot within it.
func randomOpponent(src mechanics.Source, r Roster, actor game.TeamIndex) []game.TeamIndex {
	var teams [][]game.TeamIndex
	for team := 0; team < r.TeamCount(); team++ {
		if team == actor.Team {
			continue
		}
		slots := collect(r, func(t game.TeamIndex) bool { return t.Team == team })
		if len(slots) > 0 {
			teams = append(teams, slots)
		}
	}
	if len(teams) == 0 {
		return nil
	}
	return pick(src, teams[src.Intn(len(teams))])
}
