package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/engine"
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/mechanics"
)

// session is the state of one script call.
type session struct {
	L       *lua.LState
	call    engine.ScriptCall
	handles map[*lua.LTable]engine.Combatant
}

func newSession(L *lua.LState, call engine.ScriptCall) *session {
	return &session{L: L, call: call, handles: map[*lua.LTable]engine.Combatant{}}
}

func (s *session) install() {
	L := s.L

	battle := L.NewTable()
	battle.RawSetString("random", L.NewFunction(s.random))
	L.SetGlobal("battle", battle)

	mv := L.NewTable()
	mv.RawSetString("id", lua.LString(s.call.Move.ID))
	mv.RawSetString("type", lua.LString(s.call.Move.Type))
	mv.RawSetString("category", lua.LString(s.call.Move.Category))
	mv.RawSetString("power", lua.LNumber(s.call.Move.Power))
	mv.RawSetString("crit_rate", lua.LNumber(s.call.Move.CritTier))
	if s.call.Move.Accuracy != nil {
		mv.RawSetString("accuracy", lua.LNumber(*s.call.Move.Accuracy))
	}
	L.SetGlobal("move", mv)

	L.SetGlobal("user", s.handle(s.call.User))
	targets := L.NewTable()
	for _, t := range s.call.Targets {
		targets.Append(s.handle(t))
	}
	L.SetGlobal("targets", targets)

	out := L.NewTable()
	for name, fn := range map[string]lua.LGFunction{
		"damage":  s.newDamage,
		"heal":    s.newHeal,
		"ailment": s.newAilment,
		"stat":    s.newStat,
		"flinch":  s.newFlinch,
		"miss":    s.newMiss,
	} {
		out.RawSetString(name, L.NewFunction(fn))
	}
	L.SetGlobal("outcome", out)
}

// handle builds the script view of one combatant. Field values are copies;
// writing them has no effect on the battle.
func (s *session) handle(c engine.Combatant) *lua.LTable {
	L := s.L
	t := L.NewTable()
	pos := L.NewTable()
	pos.RawSetString("team", lua.LNumber(c.Position.Team))
	pos.RawSetString("slot", lua.LNumber(c.Position.Slot))
	t.RawSetString("position", pos)
	t.RawSetString("level", lua.LNumber(c.Level))
	t.RawSetString("hp", lua.LNumber(c.HP))
	t.RawSetString("max_hp", lua.LNumber(c.MaxHP))
	t.RawSetString("effectiveness", lua.LNumber(c.Effectiveness))
	types := L.NewTable()
	for _, ty := range c.Types {
		types.Append(lua.LString(ty))
	}
	t.RawSetString("types", types)
	t.RawSetString("damage", L.NewFunction(s.damage))
	t.RawSetString("hits", L.NewFunction(s.hits))
	s.handles[t] = c
	return t
}

func (s *session) combatant(n int) engine.Combatant {
	t := s.L.CheckTable(n)
	c, ok := s.handles[t]
	if !ok {
		s.L.ArgError(n, "combatant expected")
	}
	return c
}

// battle.random([percent]) -> bool
func (s *session) random(L *lua.LState) int {
	if L.GetTop() == 0 {
		L.Push(lua.LBool(s.call.Rand.Intn(2) == 0))
		return 1
	}
	L.Push(lua.LBool(mechanics.Percent(s.call.Rand, L.CheckInt(1))))
	return 1
}

// attacker:damage(defender [, power]) -> amount, critical, effectiveness
func (s *session) damage(L *lua.LState) int {
	attacker := s.combatant(1)
	defender := s.combatant(2)
	power := L.OptInt(3, s.call.Move.Power)
	h := engine.RollHit(s.call.Rand, s.call.Move, power, attacker, defender)
	L.Push(lua.LNumber(h.Damage))
	L.Push(lua.LBool(h.Critical))
	L.Push(lua.LNumber(h.Effectiveness))
	return 3
}

// target:hits() -> bool
func (s *session) hits(L *lua.LState) int {
	s.combatant(1)
	L.Push(lua.LBool(mechanics.Hits(s.call.Rand, s.call.Move.Accuracy)))
	return 1
}

func (s *session) push(o game.Outcome) int {
	ud := s.L.NewUserData()
	ud.Value = o
	s.L.Push(ud)
	return 1
}

func (s *session) newDamage(L *lua.LState) int {
	c := s.combatant(1)
	return s.push(game.Outcome{
		Kind:          game.OutcomeDamage,
		Target:        c.Position,
		Amount:        L.CheckInt(2),
		Critical:      L.OptBool(3, false),
		Effectiveness: float64(L.OptNumber(4, lua.LNumber(c.Effectiveness))),
	})
}

func (s *session) newHeal(L *lua.LState) int {
	c := s.combatant(1)
	return s.push(game.Outcome{Kind: game.OutcomeHeal, Target: c.Position, Amount: L.CheckInt(2)})
}

func (s *session) newAilment(L *lua.LState) int {
	c := s.combatant(1)
	return s.push(game.Outcome{Kind: game.OutcomeAilment, Target: c.Position, Ailment: dex.Ailment(L.CheckString(2))})
}

func (s *session) newStat(L *lua.LState) int {
	c := s.combatant(1)
	return s.push(game.Outcome{Kind: game.OutcomeStatStage, Target: c.Position, Stat: dex.Stat(L.CheckString(2)), Delta: L.CheckInt(3)})
}

func (s *session) newFlinch(L *lua.LState) int {
	c := s.combatant(1)
	return s.push(game.Outcome{Kind: game.OutcomeFlinch, Target: c.Position})
}

func (s *session) newMiss(L *lua.LState) int {
	c := s.combatant(1)
	return s.push(game.Outcome{Kind: game.OutcomeMiss, Target: c.Position})
}

// collect maps the chunk's return value to outcomes. nil means none.
func (s *session) collect(v lua.LValue) ([]game.Outcome, error) {
	if v == lua.LNil {
		return nil, nil
	}
	list, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script returned %s, want a list of outcomes", v.Type())
	}
	var out []game.Outcome
	for i := 1; i <= list.Len(); i++ {
		ud, ok := list.RawGetInt(i).(*lua.LUserData)
		if !ok {
			return nil, fmt.Errorf("entry %d is not an outcome", i)
		}
		o, ok := ud.Value.(game.Outcome)
		if !ok {
			return nil, fmt.Errorf("entry %d is not an outcome", i)
		}
		out = append(out, o)
	}
	return out, nil
}
