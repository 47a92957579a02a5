package app

import (
	"context"
	"errors"

	"sjavs/internal/domain"
)

// ErrNoRecord is returned by stores when a key does not exist. Handlers
// translate it into the caller-facing NotFound class.
var ErrNoRecord = errors.New("record not found")

// RoleHost and RolePlayer are the membership roles in a match.
const (
	RoleHost   = "host"
	RolePlayer = "player"
)

// MatchStore persists match records and the PIN index.
type MatchStore interface {
	// CreateMatch writes the match record, registers the host membership and
	// finally the PIN index entry (the index becomes authoritative last).
	CreateMatch(ctx context.Context, m *domain.Match, hostID string) error
	GetMatch(ctx context.Context, id string) (*domain.Match, error)
	SaveMatch(ctx context.Context, m *domain.Match) error
	// DeleteMatch removes the PIN index first, then every match-scoped key.
	DeleteMatch(ctx context.Context, m *domain.Match) error
	MatchIDByPIN(ctx context.Context, pin string) (string, error)
	PINInUse(ctx context.Context, pin string) (bool, error)
}

// PlayerStore persists membership, the user->match back-reference, seat
// positions and display names.
type PlayerStore interface {
	MatchIDForUser(ctx context.Context, userID string) (string, error)
	PlayersInMatch(ctx context.Context, matchID string) (map[string]string, error)
	HostOf(ctx context.Context, matchID string) (string, error)
	AddPlayer(ctx context.Context, matchID, userID, role string) error
	RemovePlayer(ctx context.Context, matchID, userID string) error
	JoinOrder(ctx context.Context, matchID string) ([]string, error)
	ClearUserMatch(ctx context.Context, userID string) error
	SetPositions(ctx context.Context, matchID string, positions map[string]int) error
	Positions(ctx context.Context, matchID string) (map[string]int, error)
	SetUsername(ctx context.Context, userID, username string) error
	Username(ctx context.Context, userID string) (string, error)
}

// HandStore persists dealt hands per (match, position) as card codes.
type HandStore interface {
	StoreHands(ctx context.Context, matchID string, hands [4][]string) error
	GetHand(ctx context.Context, matchID string, position int) ([]string, error)
	UpdateHand(ctx context.Context, matchID string, position int, codes []string) error
	ClearHands(ctx context.Context, matchID string) error
}

// TrickStore persists the live trick state and the completed-trick history.
type TrickStore interface {
	SaveTrickState(ctx context.Context, matchID string, ts *domain.TrickState) error
	GetTrickState(ctx context.Context, matchID string) (*domain.TrickState, error)
	StoreCompletedTrick(ctx context.Context, matchID string, number int, trick *domain.Trick) error
	ClearTrickState(ctx context.Context, matchID string) error
}

// CrossStore persists cross/rubber bookkeeping.
type CrossStore interface {
	SaveCrossState(ctx context.Context, matchID string, cs *domain.CrossState) error
	GetCrossState(ctx context.Context, matchID string) (*domain.CrossState, error)
	ClearCrossState(ctx context.Context, matchID string) error
}

// Store aggregates the repositories a command handler needs.
type Store interface {
	MatchStore
	PlayerStore
	HandStore
	TrickStore
	CrossStore
}

// EventPublisher fans an event out to the match channel and the per-user
// channels of the affected players.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// MatchLocker serializes state-mutating handlers per match.
type MatchLocker interface {
	// Lock blocks until the match lock is held and returns its release
	// function. The implementation enforces a hold-time ceiling.
	Lock(ctx context.Context, matchID string) (func(), error)
}
