package app

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sjavs/internal/domain"
)

// CreateMatch creates a new match with the caller as host. No events are
// published: nobody else can be subscribed yet.
func (s *Service) CreateMatch(ctx context.Context, userID, username string) (*domain.Match, error) {
	existing, err := s.store.MatchIDForUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrNoRecord) {
		return nil, Transient("failed to check player game", err)
	}
	if err == nil && existing != "" {
		return nil, Conflict("you are already in a game")
	}

	pin, err := s.generatePIN(ctx)
	if err != nil {
		return nil, err
	}

	m := domain.NewMatch(uuid.NewString(), pin, s.opts.NumberOfCrosses, s.timestamp())
	if err := s.store.CreateMatch(ctx, m, userID); err != nil {
		return nil, Transient("failed to create game", err)
	}
	if err := s.store.SetUsername(ctx, userID, username); err != nil {
		s.log.Warn("failed to store username", zap.String("user_id", userID), zap.Error(err))
	}

	s.log.Info("match created",
		zap.String("game_id", m.ID), zap.String("host", userID))
	return m, nil
}

// JoinMatch adds the caller to the match with the given PIN. Re-joining a
// match the caller already belongs to is a no-op.
func (s *Service) JoinMatch(ctx context.Context, userID, username, pin string) (*domain.Match, error) {
	matchID, err := s.store.MatchIDByPIN(ctx, pin)
	if errors.Is(err, ErrNoRecord) {
		return nil, NotFound("no game with that pin")
	}
	if err != nil {
		return nil, Transient("failed to resolve pin", err)
	}

	existing, err := s.store.MatchIDForUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrNoRecord) {
		return nil, Transient("failed to check player game", err)
	}
	if err == nil && existing != "" {
		if existing == matchID {
			// Idempotent re-join.
			return s.getMatch(ctx, matchID)
		}
		return nil, Conflict("you are already in a game")
	}

	unlock, err := s.lockMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	m, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != domain.StatusWaiting {
		return nil, Conflict("game is not joinable")
	}
	players, err := s.store.PlayersInMatch(ctx, matchID)
	if err != nil {
		return nil, Transient("failed to load players", err)
	}
	if len(players) >= PlayersPerMatch {
		return nil, Conflict("game is full")
	}

	// Membership first, back-reference second: a crash in between leaves a
	// joinable record that a retry converges on.
	if err := s.store.AddPlayer(ctx, matchID, userID, RolePlayer); err != nil {
		return nil, Transient("failed to join game", err)
	}
	if err := s.store.SetUsername(ctx, userID, username); err != nil {
		s.log.Warn("failed to store username", zap.String("user_id", userID), zap.Error(err))
	}

	members, err := s.memberIDs(ctx, matchID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, Event{
		Kind:            EventPlayerJoined,
		GameID:          matchID,
		AffectedPlayers: members,
		Message:         username + " joined the game",
		Payload:         PlayerJoinedPayload{PlayerID: userID, Username: username, Role: RolePlayer},
	})

	s.log.Info("player joined",
		zap.String("game_id", matchID), zap.String("user_id", userID))
	return m, nil
}

// LeaveMatch removes the caller from their match. A departing host cancels
// the match for everyone.
func (s *Service) LeaveMatch(ctx context.Context, userID string) error {
	matchID, err := s.matchIDForUser(ctx, userID)
	if err != nil {
		return err
	}

	unlock, err := s.lockMatch(ctx, matchID)
	if err != nil {
		return err
	}
	defer unlock()

	m, err := s.getMatch(ctx, matchID)
	if err != nil {
		return err
	}
	host, err := s.store.HostOf(ctx, matchID)
	if err != nil && !errors.Is(err, ErrNoRecord) {
		return Transient("failed to resolve host", err)
	}
	members, err := s.memberIDs(ctx, matchID)
	if err != nil {
		return err
	}

	if userID == host {
		return s.terminateMatch(ctx, m, members, "host left the game")
	}

	if err := s.store.RemovePlayer(ctx, matchID, userID); err != nil {
		return Transient("failed to leave game", err)
	}
	username, _ := s.store.Username(ctx, userID)

	remaining, err := s.memberIDs(ctx, matchID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return s.terminateMatch(ctx, m, nil, "last player left")
	}

	s.publish(ctx, Event{
		Kind:            EventPlayerLeft,
		GameID:          matchID,
		AffectedPlayers: remaining,
		Message:         username + " left the game",
		Payload:         PlayerLeftPayload{PlayerID: userID, Username: username},
	})
	s.log.Info("player left",
		zap.String("game_id", matchID), zap.String("user_id", userID))
	return nil
}

// terminateMatch cancels a match and deletes every match-scoped key. The
// event goes out before deletion so members still resolve as subscribers.
func (s *Service) terminateMatch(ctx context.Context, m *domain.Match, members []string, reason string) error {
	if len(members) > 0 {
		s.publish(ctx, Event{
			Kind:            EventGameTerminated,
			GameID:          m.ID,
			AffectedPlayers: members,
			Message:         "game terminated",
			Payload:         GameTerminatedPayload{Reason: reason},
		})
	}

	if err := m.Cancel(); err == nil {
		if err := s.store.SaveMatch(ctx, m); err != nil {
			s.log.Warn("failed to persist cancelled match", zap.Error(err))
		}
	}

	for _, member := range members {
		if err := s.store.ClearUserMatch(ctx, member); err != nil {
			s.log.Warn("failed to clear back-reference",
				zap.String("user_id", member), zap.Error(err))
		}
	}
	if err := s.store.ClearTrickState(ctx, m.ID); err != nil {
		s.log.Warn("failed to clear trick state", zap.Error(err))
	}
	if err := s.store.ClearHands(ctx, m.ID); err != nil {
		s.log.Warn("failed to clear hands", zap.Error(err))
	}
	if err := s.store.ClearCrossState(ctx, m.ID); err != nil {
		s.log.Warn("failed to clear cross state", zap.Error(err))
	}
	if err := s.store.DeleteMatch(ctx, m); err != nil {
		return Transient("failed to delete game", err)
	}

	s.log.Info("match terminated",
		zap.String("game_id", m.ID), zap.String("reason", reason))
	return nil
}
