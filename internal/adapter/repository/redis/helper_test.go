package redis

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// newTestRedisClient backs a go-redis client with an in-process
// miniredis, so the repository tests need no running server.
func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	return redislib.NewClient(&redislib.Options{Addr: mr.Addr()}), mr
}
