package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"sjavs/internal/domain"
)

// PlayersPerMatch is the fixed Sjavs table size.
const PlayersPerMatch = 4

// Options tunes rubber behavior.
type Options struct {
	// NumberOfCrosses is the rubber target for new matches.
	NumberOfCrosses int
	// RubberReset restarts the cross countdown after a finished rubber
	// instead of ending the match.
	RubberReset bool
}

// DefaultOptions returns the standard rubber configuration.
func DefaultOptions() Options {
	return Options{NumberOfCrosses: 3}
}

// Service implements the match lifecycle commands. All state-mutating
// commands take the per-match lock, mutate through the domain state machine
// and publish resulting events inside the critical section so fan-out
// ordering matches commit ordering.
type Service struct {
	store Store
	pub   EventPublisher
	locks MatchLocker
	log   *zap.Logger
	opts  Options

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(store Store, pub EventPublisher, locks MatchLocker, log *zap.Logger, opts Options, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.NumberOfCrosses <= 0 {
		opts.NumberOfCrosses = DefaultOptions().NumberOfCrosses
	}
	return &Service{
		store: store,
		pub:   pub,
		locks: locks,
		log:   log,
		opts:  opts,
		rng:   rng,
		now:   time.Now,
	}
}

// timestamp returns the current wall clock in milliseconds.
func (s *Service) timestamp() int64 {
	return s.now().UnixMilli()
}

// snapshotTimestamp is a tick ahead of the wall clock so concurrent live
// events with earlier timestamps read as superseded on the client.
func (s *Service) snapshotTimestamp() int64 {
	return s.timestamp() + 1
}

// randomDealer picks a dealer seat.
func (s *Service) randomDealer() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(PlayersPerMatch)
}

// dealHands runs the bounded deal-until-valid loop.
func (s *Service) dealHands() ([4][]domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.DealUntilValid(s.rng)
}

// publish fans an event out; failures are logged and swallowed because the
// state is already committed and clients recover via the snapshot.
func (s *Service) publish(ctx context.Context, event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = s.timestamp()
	}
	if err := s.pub.Publish(ctx, event); err != nil {
		s.log.Warn("event publish failed",
			zap.String("event", event.Kind),
			zap.String("game_id", event.GameID),
			zap.Error(err))
	}
}

// lockMatch serializes handlers for one match.
func (s *Service) lockMatch(ctx context.Context, matchID string) (func(), error) {
	unlock, err := s.locks.Lock(ctx, matchID)
	if err != nil {
		return nil, Transient("match is busy", err)
	}
	return unlock, nil
}

// matchIDForUser resolves the caller's current match via the back-reference.
func (s *Service) matchIDForUser(ctx context.Context, userID string) (string, error) {
	matchID, err := s.store.MatchIDForUser(ctx, userID)
	if errors.Is(err, ErrNoRecord) {
		return "", Conflict("you are not in a game")
	}
	if err != nil {
		return "", Transient("failed to resolve player game", err)
	}
	return matchID, nil
}

// getMatch loads a match record or classifies its absence.
func (s *Service) getMatch(ctx context.Context, matchID string) (*domain.Match, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if errors.Is(err, ErrNoRecord) {
		return nil, NotFound("game %s not found", matchID)
	}
	if err != nil {
		return nil, Transient("failed to load game", err)
	}
	return m, nil
}

// positionOf resolves the caller's seat in the match.
func (s *Service) positionOf(ctx context.Context, matchID, userID string) (int, error) {
	positions, err := s.store.Positions(ctx, matchID)
	if err != nil {
		return 0, Transient("failed to load positions", err)
	}
	pos, ok := positions[userID]
	if !ok {
		return 0, NotFound("no seat for player in game %s", matchID)
	}
	return pos, nil
}

// memberIDs returns the user ids of every player in the match, sorted for
// stable affected_players lists.
func (s *Service) memberIDs(ctx context.Context, matchID string) ([]string, error) {
	players, err := s.store.PlayersInMatch(ctx, matchID)
	if err != nil {
		return nil, Transient("failed to load players", err)
	}
	ids := make([]string, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// loadHand fetches and parses one seat's hand.
func (s *Service) loadHand(ctx context.Context, matchID string, position int) (*domain.Hand, error) {
	codes, err := s.store.GetHand(ctx, matchID, position)
	if errors.Is(err, ErrNoRecord) {
		return nil, NotFound("no hand for seat %d", position)
	}
	if err != nil {
		return nil, Transient("failed to load hand", err)
	}
	hand, err := domain.HandFromCodes(codes, position)
	if err != nil {
		return nil, Fatal("stored hand for seat %d is corrupt: %v", position, err)
	}
	return hand, nil
}

// loadAllHands fetches all four hands as raw cards.
func (s *Service) loadAllHands(ctx context.Context, matchID string) ([4][]domain.Card, error) {
	var hands [4][]domain.Card
	for position := 0; position < PlayersPerMatch; position++ {
		hand, err := s.loadHand(ctx, matchID, position)
		if err != nil {
			return hands, err
		}
		hands[position] = hand.Cards
	}
	return hands, nil
}

// storeHands persists the four dealt hands as card codes.
func (s *Service) storeHands(ctx context.Context, matchID string, hands [4][]domain.Card) error {
	var codes [4][]string
	for position := range hands {
		codes[position] = domain.NewHand(hands[position], position).Codes()
	}
	if err := s.store.StoreHands(ctx, matchID, codes); err != nil {
		return Transient("failed to store hands", err)
	}
	return nil
}

// publishHandsDealt sends each seat its private hand on the user channel.
func (s *Service) publishHandsDealt(ctx context.Context, m *domain.Match, positions map[string]int, hands [4][]domain.Card) {
	for userID, position := range positions {
		hand := domain.NewHand(hands[position], position)
		counts := hand.TrumpCounts()
		countNames := make(map[string]int, len(counts))
		for suit, n := range counts {
			countNames[string(suit)] = n
		}
		s.publish(ctx, Event{
			Kind:            EventHandDealt,
			GameID:          m.ID,
			AffectedPlayers: []string{userID},
			Message:         "cards dealt",
			UserOnly:        true,
			Payload: HandDealtPayload{
				Position:      position,
				Cards:         hand.Codes(),
				TrumpCounts:   countNames,
				AvailableBids: hand.AvailableBids(m.HighestBidLength, m.HighestBidSuit),
			},
		})
	}
}

// abortMatch cancels a match after an invariant violation and tells every
// member.
func (s *Service) abortMatch(ctx context.Context, m *domain.Match, reason string) {
	s.log.Error("aborting match on invariant violation",
		zap.String("game_id", m.ID), zap.String("reason", reason))
	if err := m.Cancel(); err == nil {
		if err := s.store.SaveMatch(ctx, m); err != nil {
			s.log.Error("failed to persist aborted match", zap.Error(err))
		}
	}
	members, err := s.memberIDs(ctx, m.ID)
	if err != nil {
		s.log.Error("failed to list members for abort", zap.Error(err))
		return
	}
	s.publish(ctx, Event{
		Kind:            EventGameAborted,
		GameID:          m.ID,
		AffectedPlayers: members,
		Message:         "game aborted",
		Payload:         GameAbortedPayload{Reason: reason},
	})
}

// generatePIN draws 4-digit PINs until one is unused.
func (s *Service) generatePIN(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		s.mu.Lock()
		n := s.rng.Intn(10000)
		s.mu.Unlock()
		pin := fmt.Sprintf("%04d", n)
		inUse, err := s.store.PINInUse(ctx, pin)
		if err != nil {
			return "", Transient("failed to check pin", err)
		}
		if !inUse {
			return pin, nil
		}
	}
	return "", Transient("no free pin available", nil)
}
