package engine

import (
	"context"
	"fmt"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/mechanics"
)

// ScriptCall is the copied input handed to a script runner. Scripts never
// see the field itself; they return outcomes that the engine validates and
// applies.
type ScriptCall struct {
	ID      dex.ID
	Move    MoveInfo
	User    Combatant
	Targets []Combatant
	Rand    mechanics.Source
}

// ScriptRunner executes script-driven moves and items.
type ScriptRunner interface {
	Run(ctx context.Context, call ScriptCall) ([]game.Outcome, error)
}

// Engine resolves the consequences of moves and items.
type Engine struct {
	dex     dex.Dex
	scripts ScriptRunner
}

// New returns an Engine. scripts may be nil when no definition is script-driven.
func New(d dex.Dex, scripts ScriptRunner) *Engine {
	return &Engine{dex: d, scripts: scripts}
}

func (e *Engine) Dex() dex.Dex { return e.dex }

// Request describes one action to resolve.
type Request struct {
	Actor   game.TeamIndex
	Targets []game.TeamIndex
	Field   *game.Field
	Rand    mechanics.Source
}

// UseMove resolves move id used by the creature at req.Actor. On error the
// field is restored to its state before the call.
func (e *Engine) UseMove(ctx context.Context, id dex.ID, req Request) ([]game.Outcome, error) {
	mv, ok := e.dex.Move(id)
	if !ok {
		return nil, &ResolutionError{Kind: KindUnknownID, ID: id, Err: ErrUnknownID}
	}
	return e.run(ctx, req, moveInfo(mv), mv.Script, mv.Actions, true)
}

// UseItem resolves a non-ball item. Items never miss.
func (e *Engine) UseItem(ctx context.Context, id dex.ID, req Request) ([]game.Outcome, error) {
	it, ok := e.dex.Item(id)
	if !ok {
		return nil, &ResolutionError{Kind: KindUnknownID, ID: id, Err: ErrUnknownID}
	}
	return e.run(ctx, req, itemInfo(it), it.Script, it.Actions, false)
}

func (e *Engine) run(ctx context.Context, req Request, info MoveInfo, script bool, actions []dex.Action, accuracy bool) ([]game.Outcome, error) {
	user, ok := req.Field.At(req.Actor)
	if !ok || user.Out() {
		return nil, &ResolutionError{Kind: KindNoTarget, ID: info.ID, Err: fmt.Errorf("actor %s is not on the field", req.Actor)}
	}
	if !script && len(actions) == 0 {
		return nil, &ResolutionError{Kind: KindNoBehavior, ID: info.ID, Err: ErrNoBehavior}
	}
	ac := &actionContext{e: e, field: req.Field, src: req.Rand, actor: req.Actor, user: user, info: info}
	cp := req.Field.Checkpoint()

	var err error
	if script {
		err = ac.runScript(ctx, req.Targets, accuracy)
	} else {
		err = ac.runDeclarative(req.Targets, actions, accuracy)
	}
	if err != nil {
		req.Field.Restore(cp)
		return nil, err
	}
	return ac.outcomes, nil
}

func (ac *actionContext) runScript(ctx context.Context, targets []game.TeamIndex, accuracy bool) error {
	if ac.e.scripts == nil {
		return &ResolutionError{Kind: KindScriptMissing, ID: ac.info.ID, Err: ErrScriptMissing}
	}
	info := ac.info
	if !accuracy {
		info.Accuracy = nil
	}
	call := ScriptCall{
		ID:   info.ID,
		Move: info,
		User: ac.e.combatant(ac.user, ac.actor, info.Type),
		Rand: ac.src,
	}
	for _, t := range targets {
		if c, ok := ac.field.At(t); ok && !c.Out() {
			call.Targets = append(call.Targets, ac.e.combatant(c, t, info.Type))
		}
	}
	outcomes, err := ac.e.scripts.Run(ctx, call)
	if err != nil {
		return classifyScriptError(info.ID, err)
	}
	allowed := map[game.TeamIndex]bool{ac.actor: true}
	for _, t := range call.Targets {
		allowed[t.Position] = true
	}
	for _, o := range outcomes {
		if !allowed[o.Target] {
			return &ResolutionError{Kind: KindScriptRuntime, ID: info.ID, Err: fmt.Errorf("%w: outcome targets %s outside the call", ErrScriptRuntime, o.Target)}
		}
		if err := ac.applyScripted(o); err != nil {
			return &ResolutionError{Kind: KindScriptRuntime, ID: info.ID, Err: fmt.Errorf("%w: %v", ErrScriptRuntime, err)}
		}
	}
	return nil
}
