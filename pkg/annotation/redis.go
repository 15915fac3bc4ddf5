package annotation

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/platekit/pkg/plate"
)

// DefaultRedisPrefix namespaces platekit keys in a shared Redis.
const DefaultRedisPrefix = "platekit:"

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // Key prefix (default DefaultRedisPrefix)
}

// RedisStore keeps one hash per (plate, key); hash fields are "row:column".
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, unavailable(BackendRedis, "ping", err)
	}
	return NewRedisStoreFromClient(client, cfg.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Name() string { return BackendRedis }

// hashKey names the hash of one (plate, key) scope. Plate IDs and keys may
// both contain ':', so the plate ID is length-prefixed to keep names unique.
func (s *RedisStore) hashKey(plateID, key string) string {
	return s.prefix + strconv.Itoa(len(plateID)) + ":" + plateID + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, plateID string, c plate.Coordinate, key string) (string, bool, error) {
	if err := validateScope(plateID, key); err != nil {
		return "", false, err
	}
	v, err := s.client.HGet(ctx, s.hashKey(plateID, key), cellField(c)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable(BackendRedis, "get", err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, plateID string, c plate.Coordinate, key, value string) error {
	return s.SetMany(ctx, plateID, []plate.Coordinate{c}, key, value)
}

// SetMany writes all cells with a single HSET, which Redis applies atomically.
func (s *RedisStore) SetMany(ctx context.Context, plateID string, cells []plate.Coordinate, key, value string) error {
	if err := validateScope(plateID, key); err != nil {
		return err
	}
	if len(cells) == 0 {
		return nil
	}
	fields := make(map[string]any, len(cells))
	for _, c := range cells {
		fields[cellField(c)] = value
	}
	if err := s.client.HSet(ctx, s.hashKey(plateID, key), fields).Err(); err != nil {
		return unavailable(BackendRedis, "set", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, plateID, key string) (map[plate.Coordinate]string, error) {
	if err := validateScope(plateID, key); err != nil {
		return nil, err
	}
	fields, err := s.client.HGetAll(ctx, s.hashKey(plateID, key)).Result()
	if err != nil {
		return nil, unavailable(BackendRedis, "list", err)
	}
	out := make(map[plate.Coordinate]string, len(fields))
	for field, v := range fields {
		c, err := parseCellField(field)
		if err != nil {
			return nil, unavailable(BackendRedis, "list", err)
		}
		out[c] = v
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, plateID, key string) error {
	if err := validateScope(plateID, key); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.hashKey(plateID, key)).Err(); err != nil {
		return unavailable(BackendRedis, "delete", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
