package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sjavs/internal/app"
	"sjavs/internal/domain"
)

// trickHistoryTTL bounds the lifetime of archived tricks.
const trickHistoryTTL = time.Hour

// hostField is the sentinel field in the players hash naming the host.
const hostField = "host"

// Store implements app.Store on Redis. Connections come from the client's
// pool per operation; nothing is held across calls.
type Store struct {
	rdb *redis.Client
	log *zap.Logger
}

// New wraps a Redis client.
func New(rdb *redis.Client, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{rdb: rdb, log: log}
}

// NewClient dials Redis with a pool sized for per-operation checkout.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 30,
	})
}

// --- MatchStore ---

// CreateMatch writes the record, the host membership and the back-reference,
// and registers the PIN last so the index only ever points at a complete
// match.
func (s *Store) CreateMatch(ctx context.Context, m *domain.Match, hostID string) error {
	if err := s.rdb.HSet(ctx, matchKey(m.ID), toAnyMap(matchToHash(m))).Err(); err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	if err := s.rdb.HSet(ctx, playersKey(m.ID), hostID, app.RoleHost, hostField, hostID).Err(); err != nil {
		return fmt.Errorf("set host: %w", err)
	}
	if err := s.rdb.RPush(ctx, joinOrderKey(m.ID), hostID).Err(); err != nil {
		return fmt.Errorf("record join order: %w", err)
	}
	if err := s.rdb.HSet(ctx, keyUserToMatch, hostID, m.ID).Err(); err != nil {
		return fmt.Errorf("set back-reference: %w", err)
	}
	if err := s.rdb.HSet(ctx, keyPINIndex, m.PIN, m.ID).Err(); err != nil {
		return fmt.Errorf("register pin: %w", err)
	}
	return nil
}

func (s *Store) GetMatch(ctx context.Context, id string) (*domain.Match, error) {
	hash, err := s.rdb.HGetAll(ctx, matchKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	if len(hash) == 0 {
		return nil, app.ErrNoRecord
	}
	return matchFromHash(id, hash)
}

func (s *Store) SaveMatch(ctx context.Context, m *domain.Match) error {
	// Full rewrite: stale optional fields from the previous phase must not
	// survive, so the delete and write travel in one pipeline.
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, matchKey(m.ID))
	pipe.HSet(ctx, matchKey(m.ID), toAnyMap(matchToHash(m)))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save match: %w", err)
	}
	return nil
}

// DeleteMatch removes the PIN index entry first so no new joins resolve to a
// half-deleted match, then the match-scoped keys.
func (s *Store) DeleteMatch(ctx context.Context, m *domain.Match) error {
	if err := s.rdb.HDel(ctx, keyPINIndex, m.PIN).Err(); err != nil {
		return fmt.Errorf("unregister pin: %w", err)
	}
	keys := []string{
		matchKey(m.ID),
		playersKey(m.ID),
		joinOrderKey(m.ID),
		positionsKey(m.ID),
		trickStateKey(m.ID),
		crossStateKey(m.ID),
	}
	for position := 0; position < 4; position++ {
		keys = append(keys, handKey(m.ID, position))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete match keys: %w", err)
	}
	return nil
}

func (s *Store) MatchIDByPIN(ctx context.Context, pin string) (string, error) {
	id, err := s.rdb.HGet(ctx, keyPINIndex, pin).Result()
	if errors.Is(err, redis.Nil) {
		return "", app.ErrNoRecord
	}
	if err != nil {
		return "", fmt.Errorf("resolve pin: %w", err)
	}
	return id, nil
}

func (s *Store) PINInUse(ctx context.Context, pin string) (bool, error) {
	exists, err := s.rdb.HExists(ctx, keyPINIndex, pin).Result()
	if err != nil {
		return false, fmt.Errorf("check pin: %w", err)
	}
	return exists, nil
}

// --- PlayerStore ---

func (s *Store) MatchIDForUser(ctx context.Context, userID string) (string, error) {
	id, err := s.rdb.HGet(ctx, keyUserToMatch, userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", app.ErrNoRecord
	}
	if err != nil {
		return "", fmt.Errorf("resolve user match: %w", err)
	}
	return id, nil
}

func (s *Store) PlayersInMatch(ctx context.Context, matchID string) (map[string]string, error) {
	hash, err := s.rdb.HGetAll(ctx, playersKey(matchID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get players: %w", err)
	}
	delete(hash, hostField)
	return hash, nil
}

func (s *Store) HostOf(ctx context.Context, matchID string) (string, error) {
	host, err := s.rdb.HGet(ctx, playersKey(matchID), hostField).Result()
	if errors.Is(err, redis.Nil) {
		return "", app.ErrNoRecord
	}
	if err != nil {
		return "", fmt.Errorf("resolve host: %w", err)
	}
	return host, nil
}

// AddPlayer writes the membership before the back-reference so a crash in
// between leaves a record a retried join converges on.
func (s *Store) AddPlayer(ctx context.Context, matchID, userID, role string) error {
	added, err := s.rdb.HSetNX(ctx, playersKey(matchID), userID, role).Result()
	if err != nil {
		return fmt.Errorf("add player: %w", err)
	}
	if added {
		if err := s.rdb.RPush(ctx, joinOrderKey(matchID), userID).Err(); err != nil {
			return fmt.Errorf("record join order: %w", err)
		}
	}
	if err := s.rdb.HSet(ctx, keyUserToMatch, userID, matchID).Err(); err != nil {
		return fmt.Errorf("set back-reference: %w", err)
	}
	return nil
}

func (s *Store) RemovePlayer(ctx context.Context, matchID, userID string) error {
	if err := s.rdb.HDel(ctx, playersKey(matchID), userID).Err(); err != nil {
		return fmt.Errorf("remove player: %w", err)
	}
	if err := s.rdb.LRem(ctx, joinOrderKey(matchID), 0, userID).Err(); err != nil {
		return fmt.Errorf("trim join order: %w", err)
	}
	if err := s.rdb.HDel(ctx, keyUserToMatch, userID).Err(); err != nil {
		return fmt.Errorf("clear back-reference: %w", err)
	}
	return nil
}

func (s *Store) JoinOrder(ctx context.Context, matchID string) ([]string, error) {
	order, err := s.rdb.LRange(ctx, joinOrderKey(matchID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("get join order: %w", err)
	}
	return order, nil
}

func (s *Store) ClearUserMatch(ctx context.Context, userID string) error {
	if err := s.rdb.HDel(ctx, keyUserToMatch, userID).Err(); err != nil {
		return fmt.Errorf("clear back-reference: %w", err)
	}
	return nil
}

func (s *Store) SetPositions(ctx context.Context, matchID string, positions map[string]int) error {
	fields := make(map[string]any, len(positions))
	for userID, position := range positions {
		fields[userID] = position
	}
	if err := s.rdb.HSet(ctx, positionsKey(matchID), fields).Err(); err != nil {
		return fmt.Errorf("set positions: %w", err)
	}
	return nil
}

func (s *Store) Positions(ctx context.Context, matchID string) (map[string]int, error) {
	hash, err := s.rdb.HGetAll(ctx, positionsKey(matchID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}
	positions := make(map[string]int, len(hash))
	for userID, value := range hash {
		var position int
		if _, err := fmt.Sscanf(value, "%d", &position); err != nil {
			return nil, fmt.Errorf("corrupt position for %s: %w", userID, err)
		}
		positions[userID] = position
	}
	return positions, nil
}

func (s *Store) SetUsername(ctx context.Context, userID, username string) error {
	if err := s.rdb.HSet(ctx, keyUsernames, userID, username).Err(); err != nil {
		return fmt.Errorf("set username: %w", err)
	}
	return nil
}

func (s *Store) Username(ctx context.Context, userID string) (string, error) {
	name, err := s.rdb.HGet(ctx, keyUsernames, userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", app.ErrNoRecord
	}
	if err != nil {
		return "", fmt.Errorf("get username: %w", err)
	}
	return name, nil
}

// --- HandStore ---

func (s *Store) StoreHands(ctx context.Context, matchID string, hands [4][]string) error {
	pipe := s.rdb.TxPipeline()
	for position, codes := range hands {
		data, err := json.Marshal(codes)
		if err != nil {
			return fmt.Errorf("encode hand %d: %w", position, err)
		}
		pipe.Set(ctx, handKey(matchID, position), data, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store hands: %w", err)
	}
	return nil
}

func (s *Store) GetHand(ctx context.Context, matchID string, position int) ([]string, error) {
	data, err := s.rdb.Get(ctx, handKey(matchID, position)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, app.ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("get hand: %w", err)
	}
	var codes []string
	if err := json.Unmarshal([]byte(data), &codes); err != nil {
		return nil, fmt.Errorf("decode hand: %w", err)
	}
	return codes, nil
}

func (s *Store) UpdateHand(ctx context.Context, matchID string, position int, codes []string) error {
	data, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("encode hand: %w", err)
	}
	if err := s.rdb.Set(ctx, handKey(matchID, position), data, 0).Err(); err != nil {
		return fmt.Errorf("update hand: %w", err)
	}
	return nil
}

func (s *Store) ClearHands(ctx context.Context, matchID string) error {
	keys := make([]string, 0, 4)
	for position := 0; position < 4; position++ {
		keys = append(keys, handKey(matchID, position))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear hands: %w", err)
	}
	return nil
}

// --- TrickStore ---

func (s *Store) SaveTrickState(ctx context.Context, matchID string, ts *domain.TrickState) error {
	data, err := json.Marshal(ts)
	if err != nil {
		return fmt.Errorf("encode trick state: %w", err)
	}
	if err := s.rdb.Set(ctx, trickStateKey(matchID), data, 0).Err(); err != nil {
		return fmt.Errorf("save trick state: %w", err)
	}
	return nil
}

func (s *Store) GetTrickState(ctx context.Context, matchID string) (*domain.TrickState, error) {
	data, err := s.rdb.Get(ctx, trickStateKey(matchID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, app.ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("get trick state: %w", err)
	}
	var ts domain.TrickState
	if err := json.Unmarshal([]byte(data), &ts); err != nil {
		return nil, fmt.Errorf("decode trick state: %w", err)
	}
	return &ts, nil
}

func (s *Store) StoreCompletedTrick(ctx context.Context, matchID string, number int, trick *domain.Trick) error {
	data, err := json.Marshal(trick)
	if err != nil {
		return fmt.Errorf("encode trick: %w", err)
	}
	if err := s.rdb.Set(ctx, trickHistoryKey(matchID, number), data, trickHistoryTTL).Err(); err != nil {
		return fmt.Errorf("store trick history: %w", err)
	}
	return nil
}

func (s *Store) ClearTrickState(ctx context.Context, matchID string) error {
	if err := s.rdb.Del(ctx, trickStateKey(matchID)).Err(); err != nil {
		return fmt.Errorf("clear trick state: %w", err)
	}
	return nil
}

// --- CrossStore ---

func (s *Store) SaveCrossState(ctx context.Context, matchID string, cs *domain.CrossState) error {
	data, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("encode cross state: %w", err)
	}
	if err := s.rdb.Set(ctx, crossStateKey(matchID), data, 0).Err(); err != nil {
		return fmt.Errorf("save cross state: %w", err)
	}
	return nil
}

func (s *Store) GetCrossState(ctx context.Context, matchID string) (*domain.CrossState, error) {
	data, err := s.rdb.Get(ctx, crossStateKey(matchID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, app.ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("get cross state: %w", err)
	}
	var cs domain.CrossState
	if err := json.Unmarshal([]byte(data), &cs); err != nil {
		return nil, fmt.Errorf("decode cross state: %w", err)
	}
	return &cs, nil
}

func (s *Store) ClearCrossState(ctx context.Context, matchID string) error {
	if err := s.rdb.Del(ctx, crossStateKey(matchID)).Err(); err != nil {
		return fmt.Errorf("clear cross state: %w", err)
	}
	return nil
}

func toAnyMap(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
