package engine

import (
	"errors"
	"fmt"

	"github.com/ericogr/monster-arena/internal/dex"
)

type ErrorKind string

const (
	KindUnknownID     ErrorKind = "unknown_id"
	KindNoBehavior    ErrorKind = "no_behavior"
	KindScriptMissing ErrorKind = "script_missing"
	KindScriptCompile ErrorKind = "script_compile"
	KindScriptRuntime ErrorKind = "script_runtime"
	KindNoTarget      ErrorKind = "no_target"
)

// Script runners wrap their failures with these so the engine can classify them.
var (
	ErrScriptMissing = errors.New("no script registered")
	ErrScriptCompile = errors.New("script compile failed")
	ErrScriptRuntime = errors.New("script runtime failed")
	ErrNoBehavior    = errors.New("definition declares no behavior")
	ErrUnknownID     = errors.New("unknown id")
)

// ResolutionError is a failure scoped to a single action. The field is left
// as it was before the action began.
type ResolutionError struct {
	Kind ErrorKind
	ID   dex.ID
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s (%s): %v", e.ID, e.Kind, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func classifyScriptError(id dex.ID, err error) *ResolutionError {
	kind := KindScriptRuntime
	switch {
	case errors.Is(err, ErrScriptMissing):
		kind = KindScriptMissing
	case errors.Is(err, ErrScriptCompile):
		kind = KindScriptCompile
	}
	return &ResolutionError{Kind: kind, ID: id, Err: err}
}
