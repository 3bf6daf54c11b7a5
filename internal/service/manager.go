package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/ericogr/monster-arena/internal/constants"
	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/engine"
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/host"
	"github.com/ericogr/monster-arena/internal/logging"
	"github.com/ericogr/monster-arena/internal/protocol"
	"github.com/ericogr/monster-arena/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrBattleNotFound         = errors.New("battle not found")
	ErrBattleFinished         = errors.New("battle already finished")
	ErrParticipantNotInBattle = errors.New("participant not in battle")
	ErrParticipantConnected   = errors.New("participant already connected")
	ErrInvalidRequest         = errors.New("invalid battle request")
)

// Result reasons stored with finished battles.
const (
	ReasonDefeat  = "defeat"
	ReasonForfeit = "forfeit"
	ReasonTimeout = "timeout"
)

// BattleRepo is the persistence the manager needs.
type BattleRepo interface {
	CreateBattle(b *storage.BattleRecord) error
	GetBattle(id string) (*storage.BattleRecord, error)
	SaveSnapshot(id, phase string, turn int, snapshot []byte) error
	FinishBattle(id string, result storage.BattleResult) error
	GetUnfinished() ([]storage.BattleRecord, error)
}

type Options struct {
	ActiveCount  int
	TickInterval time.Duration
	// SelectionTimeout bounds how long the host waits for a participant's
	// input. Zero disables it.
	SelectionTimeout    time.Duration
	ForfeitOnDisconnect bool
	DebugExperience     bool
	// RetainFinished keeps ended battles in memory for late inspection.
	RetainFinished time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	// Seed, when non-zero, makes every battle's randomness reproducible.
	Seed int64
}

type session struct {
	mu     sync.Mutex
	host   *host.Host
	seats  map[string]*seat
	bots   []*bot
	wait   waitMark
	reason string
	ended  time.Time
}

// waitMark identifies the input wait a deadline belongs to.
type waitMark struct {
	phase    game.Phase
	turn     int
	deadline time.Time
}

// Manager owns every running battle and steps them on a ticker.
type Manager struct {
	dex     dex.Dex
	scripts engine.ScriptRunner
	repo    BattleRepo
	opts    Options

	mu       sync.Mutex
	sessions map[string]*session
	seq      int64
}

func NewManager(d dex.Dex, scripts engine.ScriptRunner, repo BattleRepo, opts Options) *Manager {
	if opts.ActiveCount <= 0 {
		opts.ActiveCount = 1
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 100 * time.Millisecond
	}
	if opts.RetainFinished <= 0 {
		opts.RetainFinished = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{dex: d, scripts: scripts, repo: repo, opts: opts, sessions: map[string]*session{}}
}

// CreatureSpec describes one creature of an entrant's roster.
type CreatureSpec struct {
	Species  dex.ID   `json:"species" binding:"required"`
	Level    int      `json:"level" binding:"required"`
	Nickname string   `json:"nickname"`
	Moves    []dex.ID `json:"moves"`
}

type EntrantSpec struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Creatures      []CreatureSpec `json:"creatures" binding:"required,dive"`
	Bag            map[dex.ID]int `json:"bag"`
	ExperienceGain bool           `json:"experience_gain"`
}

// CreateRequest starts a battle. With Wild set, a bot-driven wild team
// holding that creature joins as the last team.
type CreateRequest struct {
	Participants []EntrantSpec `json:"participants" binding:"required,dive"`
	Wild         *CreatureSpec `json:"wild"`
	ActiveCount  int           `json:"active_count"`
}

func newSource(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }

func (m *Manager) nextSeed() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if m.opts.Seed != 0 {
		return m.opts.Seed + m.seq
	}
	return time.Now().UnixNano() + m.seq
}

func (m *Manager) hostOptions(id string, wild bool, activeCount int) host.Options {
	if activeCount <= 0 {
		activeCount = m.opts.ActiveCount
	}
	return host.Options{
		BattleID:        id,
		ActiveCount:     activeCount,
		Wild:            wild,
		DebugExperience: m.opts.DebugExperience,
		Rand:            newSource(m.nextSeed()),
		Scripts:         m.scripts,
	}
}

func (m *Manager) roster(specs []CreatureSpec) ([]*game.Creature, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: empty roster", ErrInvalidRequest)
	}
	out := make([]*game.Creature, 0, len(specs))
	for _, cs := range specs {
		c, err := game.NewCreature(m.dex, dex.Canonical(cs.Species), cs.Level, cs.Nickname, cs.Moves)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// CreateBattle registers a new battle. Participants join later through
// Attach; until then their seats are empty.
func (m *Manager) CreateBattle(req CreateRequest) (host.Summary, error) {
	if len(req.Participants) == 0 || (req.Wild == nil && len(req.Participants) < 2) {
		return host.Summary{}, fmt.Errorf("%w: %v", ErrInvalidRequest, host.ErrTooFewParticipants)
	}
	id := uuid.NewString()
	s := &session{seats: map[string]*seat{}}
	var entrants []host.Entrant
	for _, es := range req.Participants {
		creatures, err := m.roster(es.Creatures)
		if err != nil {
			return host.Summary{}, err
		}
		pid := es.ID
		if pid == "" {
			pid = uuid.NewString()
		}
		st := &seat{}
		s.seats[pid] = st
		entrants = append(entrants, host.Entrant{
			ID: pid, Name: es.Name, Endpoint: st, Creatures: creatures, Bag: es.Bag, ExperienceGain: es.ExperienceGain,
		})
	}
	if req.Wild != nil {
		creatures, err := m.roster([]CreatureSpec{*req.Wild})
		if err != nil {
			return host.Summary{}, err
		}
		b := newBot("wild-"+uuid.NewString(), m.nextSeed())
		s.bots = append(s.bots, b)
		entrants = append(entrants, host.Entrant{ID: b.id, Name: "wild", Endpoint: b.pipe, Creatures: creatures, WildSide: true})
	}

	h, err := host.New(m.dex, m.hostOptions(id, req.Wild != nil, req.ActiveCount), entrants...)
	if err != nil {
		return host.Summary{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	s.host = h
	if err := m.repo.CreateBattle(&storage.BattleRecord{ID: id, Wild: req.Wild != nil, Phase: string(h.Phase())}); err != nil {
		return host.Summary{}, err
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	logging.Info("battle created", logging.Fields{constants.LogFieldBattleID: id, "participants": len(entrants)})
	return h.Summary(), nil
}

func (m *Manager) session(id string) (*session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Summary returns the inspectable state of a battle. Battles no longer in
// memory are answered from storage.
func (m *Manager) Summary(id string) (host.Summary, error) {
	if s, ok := m.session(id); ok {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.host.Summary(), nil
	}
	rec, err := m.repo.GetBattle(id)
	if err != nil {
		if errors.Is(err, storage.ErrBattleNotFound) {
			return host.Summary{}, ErrBattleNotFound
		}
		return host.Summary{}, err
	}
	return host.Summary{ID: rec.ID, Phase: game.Phase(rec.Phase), Turn: rec.Turn, Wild: rec.Wild, Ended: rec.Finished, Winner: rec.Winner}, nil
}

// Attach connects conn to a participant's seat and resends the current
// view to it.
func (m *Manager) Attach(battleID, participantID string, conn protocol.Endpoint) error {
	s, ok := m.session(battleID)
	if !ok {
		return ErrBattleNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.host.Phase() == game.PhaseEnd {
		return ErrBattleFinished
	}
	st, ok := s.seats[participantID]
	if !ok {
		return ErrParticipantNotInBattle
	}
	if !st.attach(conn) {
		return ErrParticipantConnected
	}
	if err := s.host.Reconnect(participantID, st); err != nil {
		st.detach()
		return err
	}
	logging.Info("participant attached", logging.Fields{constants.LogFieldBattleID: battleID, constants.LogFieldParticipantID: participantID})
	return nil
}

// Run steps every battle each tick until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.opts.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Tick steps every battle once and evicts battles that ended long enough ago.
func (m *Manager) Tick(ctx context.Context) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	sort.Strings(ids)

	now := m.opts.Now()
	for _, id := range ids {
		s, ok := m.session(id)
		if !ok {
			continue
		}
		if m.stepSession(ctx, s, now) {
			m.mu.Lock()
			delete(m.sessions, id)
			m.mu.Unlock()
			for _, st := range s.seats {
				if c, ok := st.detach().(interface{ Close() }); ok {
					c.Close()
				}
			}
			logging.Debug("battle evicted", logging.Fields{constants.LogFieldBattleID: id})
		}
	}
}

// stepSession advances one battle and reports whether it can be evicted.
func (m *Manager) stepSession(ctx context.Context, s *session, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.host
	if h.Phase() == game.PhaseEnd {
		return now.Sub(s.ended) >= m.opts.RetainFinished
	}

	for _, b := range s.bots {
		b.step()
	}
	res := h.Step(ctx)
	for _, pid := range res.Disconnected {
		m.disconnected(s, pid)
	}
	m.applyTimeout(s, now)
	for _, err := range res.Errors {
		logging.Warn("action failed to resolve", logging.Fields{constants.LogFieldBattleID: h.ID(), constants.LogFieldReason: err.Error()})
	}
	if res.Resolved {
		m.persistSnapshot(h)
	}
	if h.Phase() == game.PhaseEnd {
		m.finish(s)
		s.ended = now
	}
	return false
}

func (m *Manager) disconnected(s *session, pid string) {
	h := s.host
	if err := h.Deactivate(pid); err != nil {
		logging.Error("deactivate failed", err, logging.Fields{constants.LogFieldBattleID: h.ID(), constants.LogFieldParticipantID: pid})
		return
	}
	if m.opts.ForfeitOnDisconnect && h.Phase() != game.PhaseEnd {
		if err := h.Forfeit(pid); err == nil {
			s.reason = ReasonForfeit
			logging.Info("participant forfeited on disconnect", logging.Fields{constants.LogFieldBattleID: h.ID(), constants.LogFieldParticipantID: pid})
		}
	}
}

// applyTimeout forfeits every participant the host is still waiting for
// once the wait outlived SelectionTimeout. When nobody answered, all of
// them forfeit and the battle ends without a winner.
func (m *Manager) applyTimeout(s *session, now time.Time) {
	h := s.host
	phase := h.Phase()
	if m.opts.SelectionTimeout <= 0 || (phase != game.PhaseWaitSelecting && phase != game.PhaseWaitMoving) {
		return
	}
	if s.wait.phase != phase || s.wait.turn != h.Turn() {
		s.wait = waitMark{phase: phase, turn: h.Turn(), deadline: now.Add(m.opts.SelectionTimeout)}
		return
	}
	if now.Before(s.wait.deadline) {
		return
	}
	waiting := h.Waiting()
	for _, pid := range waiting {
		if err := h.Forfeit(pid); err != nil {
			continue
		}
		logging.Info("participant timed out", logging.Fields{constants.LogFieldBattleID: h.ID(), constants.LogFieldParticipantID: pid, constants.LogFieldPhase: phase})
	}
	if len(waiting) > 0 {
		s.reason = ReasonTimeout
	}
	s.wait = waitMark{}
}

func (m *Manager) persistSnapshot(h *host.Host) {
	data, err := h.Snapshot()
	if err != nil {
		logging.Error("snapshot failed", err, logging.Fields{constants.LogFieldBattleID: h.ID()})
		return
	}
	if err := m.repo.SaveSnapshot(h.ID(), string(h.Phase()), h.Turn(), data); err != nil {
		logging.Error("failed to save snapshot", err, logging.Fields{constants.LogFieldBattleID: h.ID()})
	}
}

func (m *Manager) finish(s *session) {
	h := s.host
	m.persistSnapshot(h)
	sum := h.Summary()
	result := storage.BattleResult{Winner: sum.Winner, Reason: s.reason}
	if result.Reason == "" {
		result.Reason = ReasonDefeat
	}
	for _, p := range sum.Participants {
		if p.WildSide {
			continue
		}
		result.Participants = append(result.Participants, storage.ResultEntry{ID: p.ID, Name: p.Name, Forfeited: p.Forfeited})
	}
	if err := m.repo.FinishBattle(h.ID(), result); err != nil {
		logging.Error("failed to store battle result", err, logging.Fields{constants.LogFieldBattleID: h.ID()})
	}
}

// Resume restores every unfinished battle from its last snapshot. Human
// participants come back with empty seats; wild teams get a fresh bot.
func (m *Manager) Resume() (int, error) {
	records, err := m.repo.GetUnfinished()
	if err != nil {
		return 0, err
	}
	restored := 0
	for _, rec := range records {
		if len(rec.Snapshot) == 0 {
			continue
		}
		h, err := host.Restore(m.dex, m.hostOptions(rec.ID, rec.Wild, 0), rec.Snapshot)
		if err != nil {
			logging.Error("failed to restore battle", err, logging.Fields{constants.LogFieldBattleID: rec.ID})
			continue
		}
		s := &session{host: h, seats: map[string]*seat{}}
		for _, p := range h.Summary().Participants {
			if p.Forfeited {
				continue
			}
			var ep protocol.Endpoint
			if p.WildSide {
				b := newBot(p.ID, m.nextSeed())
				s.bots = append(s.bots, b)
				ep = b.pipe
			} else {
				st := &seat{}
				s.seats[p.ID] = st
				ep = st
			}
			if err := h.Reconnect(p.ID, ep); err != nil {
				logging.Error("failed to reattach participant", err, logging.Fields{constants.LogFieldBattleID: rec.ID, constants.LogFieldParticipantID: p.ID})
			}
		}
		m.mu.Lock()
		m.sessions[rec.ID] = s
		m.mu.Unlock()
		restored++
		logging.Info("battle restored", logging.Fields{constants.LogFieldBattleID: rec.ID, constants.LogFieldTurn: h.Turn()})
	}
	return restored, nil
}
