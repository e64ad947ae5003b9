package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/crypto"
	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/metrics"
)

// Key schema:
//   {prefix}:session — string: structured session record (sealed when encryption is on)
//   {prefix}:token   — string: bare legacy token mirror
//   {prefix}:tenant  — string: selected merchant/tenant id
//   {prefix}:user    — string: cached user blob

// RedisStore persists the session in Redis. Used for service-to-service
// deployments where several workers share one credential.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	crypt  crypto.Service
}

// NewRedisStore creates a RedisStore. The prefix namespaces all keys so
// multiple profiles can share one Redis instance.
func NewRedisStore(rdb *redis.Client, prefix string, crypt crypto.Service) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, crypt: crypt}
}

// NewRedisClient creates a go-redis client from a URL (e.g., "redis://localhost:6379")
// and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (s *RedisStore) key(suffix string) string {
	return s.prefix + ":" + suffix
}

func (s *RedisStore) Save(ctx context.Context, sess Session) error {
	data, err := encodeRecord(sess)
	if err != nil {
		return err
	}
	sealed, err := s.crypt.Seal(data)
	if err != nil {
		return err
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, s.key("session"), sealed, 0)
	pipe.Set(ctx, s.key("token"), sess.Token, 0)
	if sess.User != nil {
		if blob, err := json.Marshal(sess.User); err == nil {
			pipe.Set(ctx, s.key("user"), blob, 0)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.SessionStoreErrorsTotal.WithLabelValues("save").Inc()
		return err
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (*Session, error) {
	data, err := s.rdb.Get(ctx, s.key("session")).Bytes()
	if errors.Is(err, redis.Nil) {
		return s.loadLegacy(ctx)
	}
	if err != nil {
		metrics.SessionStoreErrorsTotal.WithLabelValues("load").Inc()
		return nil, err
	}

	plain, err := s.crypt.Open(data)
	if err != nil {
		slog.Warn("Session record undecryptable, treating as logged out", "error", err)
		return nil, nil
	}

	sess, err := decodeRecord(plain)
	if err != nil {
		slog.Warn("Session record corrupted, treating as logged out", "error", err)
		return nil, nil
	}
	return sess, nil
}

func (s *RedisStore) loadLegacy(ctx context.Context) (*Session, error) {
	token, err := s.rdb.Get(ctx, s.key("token")).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	return upgradeLegacyToken(token), nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	err := s.rdb.Del(ctx, s.key("session"), s.key("token"), s.key("tenant"), s.key("user")).Err()
	if err != nil {
		metrics.SessionStoreErrorsTotal.WithLabelValues("clear").Inc()
	}
	return err
}

func (s *RedisStore) SaveTenant(ctx context.Context, tenantID string) error {
	return s.rdb.Set(ctx, s.key("tenant"), tenantID, 0).Err()
}

func (s *RedisStore) LoadTenant(ctx context.Context) (string, error) {
	tenant, err := s.rdb.Get(ctx, s.key("tenant")).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return tenant, err
}
