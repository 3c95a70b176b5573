package service

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"studyhub/internal/tokenstore"
)

func newRedisTokenStoreForTest(t *testing.T) (*miniredis.Miniredis, *tokenstore.RedisStore) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})
	return server, tokenstore.NewRedisStore(client, "test")
}
