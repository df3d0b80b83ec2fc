// Package joblock keeps two runs of the same scheduled job from
// overlapping. The Redis locker extends that guarantee across replicas.
package joblock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned by Acquire when another holder owns the lock.
var ErrLocked = errors.New("job is already running")

type Locker interface {
	// Acquire takes the named lock for at most ttl. The returned release
	// function is safe to call once the job is done.
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), err error)
}

type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]time.Time), now: time.Now}
}

func (l *LocalLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expires, ok := l.held[name]; ok && l.now().Before(expires) {
		return nil, ErrLocked
	}
	expires := l.now().Add(ttl)
	l.held[name] = expires

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		// Only drop our own hold; an expired lock may have been re-taken.
		if l.held[name].Equal(expires) {
			delete(l.held, name)
		}
	}, nil
}

const keyPrefix = "joblock:"

// Deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(ctx context.Context, addr string) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolSize:        5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisLocker{client: client}, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	key := keyPrefix + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}, nil
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}
