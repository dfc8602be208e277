package resetcode

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps codes as expiring keys.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: "helpdesk:reset:"}
}

// DialRedis connects and pings within five seconds.
func DialRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (s *RedisStore) key(email string) string {
	return s.prefix + normalizeEmail(email)
}

func (s *RedisStore) attemptsKey(email string) string {
	return s.key(email) + ":attempts"
}

func (s *RedisStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(email), code, ttl)
		pipe.Del(ctx, s.attemptsKey(email))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set reset code: %w", err)
	}
	return nil
}

// consumeScript runs the compare, the attempt count and the delete as one step.
// KEYS[1] holds the code and KEYS[2] the failed attempts, which expire with it.
// Returns 1 on a match and 0 otherwise.
var consumeScript = redis.NewScript(`
local stored = redis.call('GET', KEYS[1])
if not stored then
  return 0
end
if stored == ARGV[1] then
  redis.call('DEL', KEYS[1], KEYS[2])
  return 1
end
local n = redis.call('INCR', KEYS[2])
if n == 1 then
  local ttl = redis.call('PTTL', KEYS[1])
  if ttl > 0 then
    redis.call('PEXPIRE', KEYS[2], ttl)
  end
end
if n >= tonumber(ARGV[2]) then
  redis.call('DEL', KEYS[1], KEYS[2])
end
return 0
`)

func (s *RedisStore) Consume(ctx context.Context, email, code string) (bool, error) {
	n, err := consumeScript.Run(ctx, s.client, []string{s.key(email), s.attemptsKey(email)}, code, MaxAttempts).Int()
	if err != nil {
		return false, fmt.Errorf("redis consume reset code: %w", err)
	}
	return n == 1, nil
}
