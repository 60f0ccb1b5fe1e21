package uniqueness

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the per-field sets.
const DefaultRedisPrefix = "liveform:unique:"

// Redis keeps one set per field holding normalized values.
type Redis struct {
	client redis.Cmdable
	prefix string
	fields map[string]struct{}
}

var (
	_ Store = (*Redis)(nil)
	_ Adder = (*Redis)(nil)
)

// NewRedis returns a store over client tracking fields. An empty prefix selects
// DefaultRedisPrefix.
func NewRedis(client redis.Cmdable, prefix string, fields ...string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return &Redis{client: client, prefix: prefix, fields: set}
}

func (s *Redis) Exists(ctx context.Context, field, value string) (bool, error) {
	key, err := s.key(field)
	if err != nil {
		return false, err
	}
	ok, err := s.client.SIsMember(ctx, key, Normalize(value)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return ok, nil
}

func (s *Redis) Add(ctx context.Context, field, value string) error {
	key, err := s.key(field)
	if err != nil {
		return err
	}
	if err := s.client.SAdd(ctx, key, Normalize(value)).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return nil
}

func (s *Redis) key(field string) (string, error) {
	if _, ok := s.fields[field]; !ok {
		return "", ErrUnknownField
	}
	return s.prefix + field, nil
}
