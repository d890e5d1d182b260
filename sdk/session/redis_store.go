package session

import (
	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

// RedisStore is a Store backed by a Redis database. It permits several
// clients on different hosts to share one session.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a RedisStore that namespaces all of its keys with the
// specified prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisStore) Get(key string) (string, bool, error) {
	val, err := r.client.Get(r.prefix + key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "error reading %q from redis", key)
	}
	return val, true, nil
}

func (r *RedisStore) Set(entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	if _, err := r.client.TxPipelined(func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(r.prefix+k, v, 0)
		}
		return nil
	}); err != nil {
		return errors.Wrap(err, "error writing session state to redis")
	}
	return nil
}

func (r *RedisStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.prefix + k
	}
	if err := r.client.Del(prefixed...).Err(); err != nil {
		return errors.Wrap(err, "error deleting session state from redis")
	}
	return nil
}
