package modelstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"gopkg.in/redis.v5"
)

// RedisStore keeps each blob under prefix:model:name and every name in a sorted set at
// prefix:index. Names cannot contain a colon, so no blob key can collide with the index. All
// members of the index share one score so redis orders them by name.
type RedisStore struct {
	rc     *redis.Client
	prefix string
	codec  CodecType
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rc *redis.Client, prefix string, codec CodecType) (*RedisStore, error) {
	if _, err := CreateCodec(codec); err != nil {
		return nil, err
	}
	return &RedisStore{rc: rc, prefix: prefix, codec: codec}, nil
}

func (s *RedisStore) keyFor(name string) string {
	return fmt.Sprintf("%s:model:%s", s.prefix, name)
}

func (s *RedisStore) indexKey() string {
	return fmt.Sprintf("%s:index", s.prefix)
}

func (s *RedisStore) Save(ctx context.Context, name string, b *Bundle) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	blob, err := Encode(b, s.codec)
	if err != nil {
		return err
	}
	key := s.keyFor(name)
	if err := s.rc.Set(key, blob, 0).Err(); err != nil {
		return fmt.Errorf("storing model %q in redis, %w", key, err)
	}
	if err := s.rc.ZAdd(s.indexKey(), redis.Z{Score: 0, Member: name}).Err(); err != nil {
		return fmt.Errorf("indexing model %q in redis, %w", key, err)
	}
	slog.Info("saved model", "name", name, "key", key, "codec", s.codec, "bytes", len(blob))
	return nil
}

func (s *RedisStore) Load(ctx context.Context, name string) (*Bundle, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := s.keyFor(name)
	blob, err := s.rc.Get(key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%s, %w", key, ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving model %q from redis, %w", key, err)
	}
	b, err := Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("unable to decode model %q, %w", key, err)
	}
	return b, nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names, err := s.rc.ZRange(s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing models in redis, %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisStore) Latest(ctx context.Context) (string, *Bundle, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	names, err := s.rc.ZRevRange(s.indexKey(), 0, 0).Result()
	if err != nil {
		return "", nil, fmt.Errorf("finding latest model in redis, %w", err)
	}
	if len(names) == 0 {
		return "", nil, fmt.Errorf("no models under %s, %w", s.prefix, ErrModelNotFound)
	}
	b, err := s.Load(ctx, names[0])
	if err != nil {
		return "", nil, err
	}
	return names[0], b, nil
}
