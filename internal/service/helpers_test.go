package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/protocol"
	"github.com/ericogr/monster-arena/internal/storage"
)

type mockRepo struct {
	mu        sync.Mutex
	battles   map[string]*storage.BattleRecord
	results   map[string]storage.BattleResult
	snapshots int
}

func newMockRepo() *mockRepo {
	return &mockRepo{battles: map[string]*storage.BattleRecord{}, results: map[string]storage.BattleResult{}}
}

func (m *mockRepo) CreateBattle(b *storage.BattleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.battles[b.ID] = &cp
	return nil
}

func (m *mockRepo) GetBattle(id string) (*storage.BattleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[id]
	if !ok {
		return nil, storage.ErrBattleNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockRepo) SaveSnapshot(id, phase string, turn int, snapshot []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[id]
	if !ok || b.Finished {
		return storage.ErrBattleNotFound
	}
	b.Phase, b.Turn, b.Snapshot = phase, turn, snapshot
	m.snapshots++
	return nil
}

func (m *mockRepo) FinishBattle(id string, result storage.BattleResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[id]
	if !ok {
		return storage.ErrBattleNotFound
	}
	b.Finished = true
	b.Winner = result.Winner
	b.Reason = result.Reason
	m.results[id] = result
	return nil
}

func (m *mockRepo) GetUnfinished() ([]storage.BattleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.BattleRecord
	for _, b := range m.battles {
		if !b.Finished {
			out = append(out, *b)
		}
	}
	return out, nil
}

func testDex(t *testing.T) *dex.Memory {
	t.Helper()
	d := dex.NewMemory()
	for _, mv := range []dex.Move{
		{ID: "smash", Type: "normal", Category: dex.Physical, Power: 250, PP: 5,
			Actions: []dex.Action{{Damage: &dex.Damage{Kind: dex.DamageMove}}}},
		{ID: "tap", Type: "normal", Category: dex.Physical, Power: 10, PP: 30,
			Actions: []dex.Action{{Damage: &dex.Damage{Kind: dex.DamageConstant, Value: 1}}}},
	} {
		if err := d.AddMove(mv); err != nil {
			t.Fatalf("AddMove(%s): %v", mv.ID, err)
		}
	}
	for _, s := range []dex.Species{
		{ID: "brute", Types: []dex.Type{"normal"}, BaseExperience: 50, CatchRate: 45,
			BaseStats: dex.Stats{HP: 50, Attack: 200, Defense: 50, SpAttack: 50, SpDefense: 50, Speed: 100},
			Learnset:  []dex.LearnEntry{{Level: 1, Move: "smash"}}},
		{ID: "sprout", Types: []dex.Type{"grass"}, BaseExperience: 100, CatchRate: 255,
			BaseStats: dex.Stats{HP: 20, Attack: 10, Defense: 10, SpAttack: 10, SpDefense: 10, Speed: 10},
			Learnset:  []dex.LearnEntry{{Level: 1, Move: "tap"}}},
	} {
		if err := d.AddSpecies(s); err != nil {
			t.Fatalf("AddSpecies: %v", err)
		}
	}
	return d
}

// clock is a manually advanced time source.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newManager(t *testing.T, repo *mockRepo, c *clock) *Manager {
	t.Helper()
	return NewManager(testDex(t), nil, repo, Options{
		ActiveCount:         1,
		SelectionTimeout:    time.Minute,
		ForfeitOnDisconnect: true,
		RetainFinished:      time.Hour,
		Now:                 c.Now,
		Seed:                7,
	})
}

func duel(species string) CreateRequest {
	return CreateRequest{Participants: []EntrantSpec{
		{ID: "ash", Name: "Ash", Creatures: []CreatureSpec{{Species: dex.ID(species), Level: 5}}},
		{ID: "gary", Name: "Gary", Creatures: []CreatureSpec{{Species: "sprout", Level: 5}}},
	}}
}

// autoplay answers every prompt with the first move and acknowledges every
// turn result.
func autoplay(p *protocol.Pipe) {
	for _, msg := range p.Messages() {
		switch msg.Type {
		case protocol.OutStartSelecting:
			for _, slot := range msg.Slots {
				p.Submit(protocol.SelectMove(slot, 0, nil))
			}
		case protocol.OutTurnResult:
			p.Submit(protocol.TurnAcknowledged())
		}
	}
}

func tick(m *Manager, n int) {
	for i := 0; i < n; i++ {
		m.Tick(context.Background())
	}
}
