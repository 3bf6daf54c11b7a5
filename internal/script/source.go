package script

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/engine"
)

// Source returns the Lua code of a script-driven move or item.
// A missing script is reported with engine.ErrScriptMissing.
type Source interface {
	Script(id dex.ID) (string, error)
}

// MapSource serves scripts from memory, keyed by canonical id.
type MapSource map[dex.ID]string

func (m MapSource) Script(id dex.ID) (string, error) {
	code, ok := m[dex.Canonical(id)]
	if !ok {
		return "", fmt.Errorf("%w: %s", engine.ErrScriptMissing, id)
	}
	return code, nil
}

// DirSource reads <dir>/<id>.lua.
type DirSource string

func (d DirSource) Script(id dex.ID) (string, error) {
	path := filepath.Join(string(d), string(dex.Canonical(id))+".lua")
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", engine.ErrScriptMissing, id)
	}
	if err != nil {
		return "", fmt.Errorf("read script %s: %w", path, err)
	}
	return string(b), nil
}
