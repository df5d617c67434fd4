package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/rueidis"

	apperrors "github.com/copyleftdev/tundr-problems/internal/errors"
	"github.com/copyleftdev/tundr-problems/internal/optimization"
)

const redisComponent = "redis_store"

var _ Store = (*RedisStore)(nil)

// RedisConfig holds connection parameters for a RedisStore.
type RedisConfig struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// KeyPrefix is prepended to every problem id.
	KeyPrefix string
}

// RedisStore keeps problems in Redis as protobuf wire bytes.
type RedisStore struct {
	client rueidis.Client
	prefix string
	codec  optimization.SpaceCodec
}

// NewRedisStore connects to Redis via rueidis.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return newRedisStore(client, cfg.KeyPrefix), nil
}

func newRedisStore(client rueidis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Put(ctx context.Context, id string, p *optimization.Problem) error {
	data, err := p.MarshalWire(s.codec)
	if err != nil {
		return apperrors.E("Put", redisComponent, err)
	}
	cmd := s.client.B().Set().Key(s.key(id)).Value(rueidis.BinaryString(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return apperrors.E("Put", redisComponent, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*optimization.Problem, error) {
	cmd := s.client.B().Get().Key(s.key(id)).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrNotFound
		}
		return nil, apperrors.E("Get", redisComponent, err)
	}
	p, err := optimization.UnmarshalWire(data, s.codec)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.E("Get", redisComponent, err), "stored problem %q is unreadable", id)
	}
	return p, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	cmd := s.client.B().Del().Key(s.key(id)).Build()
	n, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return apperrors.E("Delete", redisComponent, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List scans the key prefix. SCAN may report a key twice; ids are deduplicated.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var cursor uint64

	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(s.prefix + "*").Count(100).Build()
		res, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, apperrors.E("List", redisComponent, err)
		}
		for _, k := range res.Elements {
			seen[strings.TrimPrefix(k, s.prefix)] = struct{}{}
		}
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return apperrors.E("Ping", redisComponent, err)
	}
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *RedisStore) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return apperrors.Wrap(apperrors.E("WaitForReady", redisComponent, ctx.Err()), "timeout waiting for redis")
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close shuts down the client.
func (s *RedisStore) Close() {
	s.client.Close()
}
