// Package redislock implements app.Locker as a Redis advisory lock so that
// several weightlog processes sharing one store still write one at a time.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the lock key shared by all writers.
const DefaultKey = "weightlog:lock:mutations"

const retryInterval = 50 * time.Millisecond

// release deletes the key only while it still holds our token.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extend resets the TTL only while the key still holds our token.
var extend = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Locker is a SET NX PX lock. The TTL is extended every ttl/3 while the
// lock is held, so a holder that dies releases it within one TTL.
type Locker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// New creates a Locker on key. An empty key means DefaultKey.
func New(client *redis.Client, key string, ttl time.Duration) *Locker {
	if key == "" {
		key = DefaultKey
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Locker{client: client, key: key, ttl: ttl}
}

// Lock retries until the key is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", l.key, err)
		}
		if ok {
			stop := l.keepAlive(token)
			var once sync.Once
			return func() {
				once.Do(func() {
					stop()
					// The caller's ctx may be gone by now.
					ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = release.Run(ctx, l.client, []string{l.key}, token).Err()
				})
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// keepAlive extends the TTL until the returned stop func is called or the
// key is lost to another holder.
func (l *Locker) keepAlive(token string) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(l.ttl / 3)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			n, err := extend.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int()
			if err == nil && n == 0 {
				return
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// Dial connects to url, which may be a redis:// URL or a bare host:port,
// and verifies the connection.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("redis url is empty")
	}
	var opts *redis.Options
	if strings.Contains(url, "://") {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: url}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
