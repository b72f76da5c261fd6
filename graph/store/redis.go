package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces session checkpoints in a shared Redis keyspace.
const keyPrefix = "graphflow:session:"

// putScript performs the step check and the write as one atomic server-side
// operation, so concurrent writers for the same session cannot interleave.
var putScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local prev = cjson.decode(cur)
	if tonumber(ARGV[2]) ~= tonumber(prev.step) + 1 then
		return 'stale'
	end
end
redis.call('SET', KEYS[1], ARGV[1])
return 'ok'
`)

// RedisStore persists checkpoints in Redis, one JSON value per session.
//
// Suited to multi-process deployments that already run Redis and accept its
// durability configuration (AOF/RDB) for session state. Atomicity of Put
// comes from a Lua script, which Redis executes without interleaving.
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	st := store.NewRedisStore(client)
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing Redis client. The caller owns the client's
// lifecycle.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (Checkpoint, error) {
	raw, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return Checkpoint{}, ErrNotFound
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("redis get: %w", err)
	}
	var cp Checkpoint
	if err := json.Unmarshal([]byte(raw), &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	if cp.State == nil {
		cp.State = map[string]any{}
	}
	return cp, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, cp Checkpoint) error {
	if err := cp.validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	res, err := putScript.Run(ctx, s.client, []string{keyPrefix + cp.SessionID}, string(raw), cp.Step).Text()
	if err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	if res == "stale" {
		return fmt.Errorf("session %q: got step %d: %w", cp.SessionID, cp.Step, ErrStaleStep)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}
