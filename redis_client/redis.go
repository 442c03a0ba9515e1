package redis_client

import (
	"context"
	"time"

	"github.com/Strum355/log"
	"github.com/redis/go-redis/v9"
)

var (
	RDB *redis.Client
)

// Init creates the shared Redis client and checks that the server answers.
// The client is kept even when the ping fails so the cache recovers once Redis is up.
func Init(ctx context.Context, address string) *redis.Client {
	RDB = redis.NewClient(&redis.Options{
		Addr: address,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := RDB.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).WithFields(log.Fields{"address": address}).Warn("Redis is not reachable, caching will fail until it is")
	}
	return RDB
}
