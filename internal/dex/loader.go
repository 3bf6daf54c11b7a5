package dex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type speciesFile struct {
	Species []Species `yaml:"species"`
}

type movesFile struct {
	Moves []Move `yaml:"moves"`
}

type itemsFile struct {
	Items []Item `yaml:"items"`
}

// typesFile maps attacking type -> defending type -> multiplier.
type typesFile struct {
	Chart map[Type]map[Type]float64 `yaml:"chart"`
}

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// LoadDir builds a Memory dex from species.yaml, moves.yaml, items.yaml and
// types.yaml inside dir. items.yaml and types.yaml are optional. Learnset
// entries must reference moves that exist.
func LoadDir(dir string) (*Memory, error) {
	var sf speciesFile
	var mf movesFile
	var itf itemsFile
	var tf typesFile
	if err := loadYAML(filepath.Join(dir, "species.yaml"), &sf); err != nil {
		return nil, err
	}
	if err := loadYAML(filepath.Join(dir, "moves.yaml"), &mf); err != nil {
		return nil, err
	}
	if err := loadYAML(filepath.Join(dir, "items.yaml"), &itf); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err := loadYAML(filepath.Join(dir, "types.yaml"), &tf); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if len(sf.Species) == 0 {
		return nil, fmt.Errorf("%s: species list is empty", dir)
	}

	m := NewMemory()
	for _, mv := range mf.Moves {
		if err := m.AddMove(mv); err != nil {
			return nil, fmt.Errorf("moves.yaml: %w", err)
		}
	}
	for _, s := range sf.Species {
		if err := m.AddSpecies(s); err != nil {
			return nil, fmt.Errorf("species.yaml: %w", err)
		}
	}
	for _, s := range m.species {
		for _, e := range s.Learnset {
			if _, ok := m.moves[e.Move]; !ok {
				return nil, fmt.Errorf("species.yaml: %s learns unknown move %s", s.ID, e.Move)
			}
		}
	}
	for _, it := range itf.Items {
		if err := m.AddItem(it); err != nil {
			return nil, fmt.Errorf("items.yaml: %w", err)
		}
	}
	for atk, row := range tf.Chart {
		for def, mult := range row {
			if mult < 0 {
				return nil, fmt.Errorf("types.yaml: negative multiplier %s->%s", atk, def)
			}
			m.SetEffectiveness(atk, def, mult)
		}
	}
	return m, nil
}
