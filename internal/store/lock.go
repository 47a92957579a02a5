package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultLockTTL is the ceiling on how long one handler may hold a match
// lock before it is forcibly released.
const DefaultLockTTL = 5 * time.Second

const lockRetryInterval = 25 * time.Millisecond

// Locker serializes command handlers per match: a local advisory mutex keeps
// in-process handlers apart cheaply, and a store-backed SET NX with TTL
// extends the exclusion across instances.
type Locker struct {
	rdb *redis.Client
	log *zap.Logger
	ttl time.Duration

	mu    sync.Mutex
	local map[string]*sync.Mutex
}

// NewLocker builds a Locker with the given hold ceiling (DefaultLockTTL when
// zero).
func NewLocker(rdb *redis.Client, log *zap.Logger, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Locker{
		rdb:   rdb,
		log:   log,
		ttl:   ttl,
		local: make(map[string]*sync.Mutex),
	}
}

// Lock blocks until both the local and the store lock are held, or the
// context expires. The returned function releases both.
func (l *Locker) Lock(ctx context.Context, matchID string) (func(), error) {
	local := l.localMutex(matchID)
	local.Lock()

	token := uuid.NewString()
	key := lockKey(matchID)
	for {
		acquired, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			local.Unlock()
			return nil, err
		}
		if acquired {
			break
		}
		select {
		case <-ctx.Done():
			local.Unlock()
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	return func() {
		// Only delete our own token: a lock that expired and was re-taken
		// by another handler must not be released from here.
		if err := releaseScript.Run(context.Background(), l.rdb, []string{key}, token).Err(); err != nil {
			l.log.Warn("lock release failed", zap.String("match_id", matchID), zap.Error(err))
		}
		local.Unlock()
	}, nil
}

func (l *Locker) localMutex(matchID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	mu, ok := l.local[matchID]
	if !ok {
		mu = &sync.Mutex{}
		l.local[matchID] = mu
	}
	return mu
}

// releaseScript deletes the lock only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)
