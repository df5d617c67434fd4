package store

import "github.com/redis/rueidis"

// NewRedisStoreForTest wraps an existing client, typically a rueidis mock.
func NewRedisStoreForTest(c rueidis.Client, prefix string) *RedisStore {
	return newRedisStore(c, prefix)
}
