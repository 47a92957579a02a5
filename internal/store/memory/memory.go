// Package memory provides an in-memory implementation of the app store
// ports. It backs tests and single-instance local development; production
// uses the Redis store.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"sjavs/internal/app"
	"sjavs/internal/domain"
)

// Store implements app.Store on process memory. Values are copied on read
// so handler mutations do not leak into stored state, matching the
// serialization boundary of the real store.
type Store struct {
	mu        sync.Mutex
	matches   map[string]domain.Match
	pins      map[string]string
	players   map[string]map[string]string
	joinOrder map[string][]string
	hosts     map[string]string
	userMatch map[string]string
	usernames map[string]string
	positions map[string]map[string]int
	hands     map[string]map[int][]string
	tricks    map[string][]byte
	history   map[string]map[int][]byte
	crosses   map[string][]byte
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		matches:   make(map[string]domain.Match),
		pins:      make(map[string]string),
		players:   make(map[string]map[string]string),
		joinOrder: make(map[string][]string),
		hosts:     make(map[string]string),
		userMatch: make(map[string]string),
		usernames: make(map[string]string),
		positions: make(map[string]map[string]int),
		hands:     make(map[string]map[int][]string),
		tricks:    make(map[string][]byte),
		history:   make(map[string]map[int][]byte),
		crosses:   make(map[string][]byte),
	}
}

func (s *Store) CreateMatch(_ context.Context, m *domain.Match, hostID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.ID] = *m
	s.players[m.ID] = map[string]string{hostID: app.RoleHost}
	s.joinOrder[m.ID] = []string{hostID}
	s.hosts[m.ID] = hostID
	s.userMatch[hostID] = m.ID
	s.pins[m.PIN] = m.ID
	return nil
}

func (s *Store) GetMatch(_ context.Context, id string) (*domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, app.ErrNoRecord
	}
	copied := m
	return &copied, nil
}

func (s *Store) SaveMatch(_ context.Context, m *domain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.ID] = *m
	return nil
}

func (s *Store) DeleteMatch(_ context.Context, m *domain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pins, m.PIN)
	delete(s.matches, m.ID)
	delete(s.players, m.ID)
	delete(s.joinOrder, m.ID)
	delete(s.hosts, m.ID)
	delete(s.positions, m.ID)
	delete(s.hands, m.ID)
	return nil
}

func (s *Store) MatchIDByPIN(_ context.Context, pin string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.pins[pin]
	if !ok {
		return "", app.ErrNoRecord
	}
	return id, nil
}

func (s *Store) PINInUse(_ context.Context, pin string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pins[pin]
	return ok, nil
}

func (s *Store) MatchIDForUser(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.userMatch[userID]
	if !ok {
		return "", app.ErrNoRecord
	}
	return id, nil
}

func (s *Store) PlayersInMatch(_ context.Context, matchID string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.players[matchID]))
	for id, role := range s.players[matchID] {
		out[id] = role
	}
	return out, nil
}

func (s *Store) HostOf(_ context.Context, matchID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	host, ok := s.hosts[matchID]
	if !ok {
		return "", app.ErrNoRecord
	}
	return host, nil
}

func (s *Store) AddPlayer(_ context.Context, matchID, userID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.players[matchID] == nil {
		s.players[matchID] = make(map[string]string)
	}
	if _, ok := s.players[matchID][userID]; !ok {
		s.joinOrder[matchID] = append(s.joinOrder[matchID], userID)
	}
	s.players[matchID][userID] = role
	s.userMatch[userID] = matchID
	return nil
}

func (s *Store) RemovePlayer(_ context.Context, matchID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players[matchID], userID)
	delete(s.userMatch, userID)
	order := s.joinOrder[matchID]
	for i, id := range order {
		if id == userID {
			s.joinOrder[matchID] = append(order[:i], order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) JoinOrder(_ context.Context, matchID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.joinOrder[matchID]...), nil
}

func (s *Store) ClearUserMatch(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.userMatch, userID)
	return nil
}

func (s *Store) SetPositions(_ context.Context, matchID string, positions map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[string]int, len(positions))
	for id, pos := range positions {
		copied[id] = pos
	}
	s.positions[matchID] = copied
	return nil
}

func (s *Store) Positions(_ context.Context, matchID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.positions[matchID]))
	for id, pos := range s.positions[matchID] {
		out[id] = pos
	}
	return out, nil
}

func (s *Store) SetUsername(_ context.Context, userID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usernames[userID] = username
	return nil
}

func (s *Store) Username(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.usernames[userID]
	if !ok {
		return "", app.ErrNoRecord
	}
	return name, nil
}

func (s *Store) StoreHands(_ context.Context, matchID string, hands [4][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make(map[int][]string, 4)
	for position, codes := range hands {
		stored[position] = append([]string(nil), codes...)
	}
	s.hands[matchID] = stored
	return nil
}

func (s *Store) GetHand(_ context.Context, matchID string, position int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes, ok := s.hands[matchID][position]
	if !ok {
		return nil, app.ErrNoRecord
	}
	return append([]string(nil), codes...), nil
}

func (s *Store) UpdateHand(_ context.Context, matchID string, position int, codes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hands[matchID] == nil {
		s.hands[matchID] = make(map[int][]string)
	}
	s.hands[matchID][position] = append([]string(nil), codes...)
	return nil
}

func (s *Store) ClearHands(_ context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hands, matchID)
	return nil
}

func (s *Store) SaveTrickState(_ context.Context, matchID string, ts *domain.TrickState) error {
	data, err := json.Marshal(ts)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tricks[matchID] = data
	return nil
}

func (s *Store) GetTrickState(_ context.Context, matchID string) (*domain.TrickState, error) {
	s.mu.Lock()
	data, ok := s.tricks[matchID]
	s.mu.Unlock()
	if !ok {
		return nil, app.ErrNoRecord
	}
	var ts domain.TrickState
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, err
	}
	return &ts, nil
}

func (s *Store) StoreCompletedTrick(_ context.Context, matchID string, number int, trick *domain.Trick) error {
	data, err := json.Marshal(trick)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.history[matchID] == nil {
		s.history[matchID] = make(map[int][]byte)
	}
	s.history[matchID][number] = data
	return nil
}

func (s *Store) ClearTrickState(_ context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tricks, matchID)
	delete(s.history, matchID)
	return nil
}

func (s *Store) SaveCrossState(_ context.Context, matchID string, cs *domain.CrossState) error {
	data, err := json.Marshal(cs)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crosses[matchID] = data
	return nil
}

func (s *Store) GetCrossState(_ context.Context, matchID string) (*domain.CrossState, error) {
	s.mu.Lock()
	data, ok := s.crosses[matchID]
	s.mu.Unlock()
	if !ok {
		return nil, app.ErrNoRecord
	}
	var cs domain.CrossState
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

func (s *Store) ClearCrossState(_ context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.crosses, matchID)
	return nil
}

// Publisher records events and optionally forwards them to a delivery
// function, standing in for the pub/sub fabric.
type Publisher struct {
	mu      sync.Mutex
	events  []app.Event
	Forward func(app.Event)
}

func (p *Publisher) Publish(_ context.Context, event app.Event) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	forward := p.Forward
	p.mu.Unlock()
	if forward != nil {
		forward(event)
	}
	return nil
}

// Events returns a copy of everything published so far.
func (p *Publisher) Events() []app.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]app.Event(nil), p.events...)
}

// Last returns the most recent event of the given kind.
func (p *Publisher) Last(kind string) (app.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].Kind == kind {
			return p.events[i], true
		}
	}
	return app.Event{}, false
}

// Reset drops recorded events.
func (p *Publisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// Locker is a per-match mutex table satisfying app.MatchLocker.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocker returns an empty lock table.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*sync.Mutex)}
}

func (l *Locker) Lock(_ context.Context, matchID string) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[matchID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[matchID] = lock
	}
	l.mu.Unlock()
	lock.Lock()
	return lock.Unlock, nil
}
