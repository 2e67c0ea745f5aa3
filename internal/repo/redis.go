package repo

import (
	"context"

	"teenpatti-service/internal/config"
	"teenpatti-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var RDB *redis.Client

// InitRedis connects when an address is configured; otherwise RDB stays nil
// and sessions are kept in memory.
func InitRedis() {
	conf := config.GlobalConfig.Redis
	if conf.Addr == "" {
		return
	}
	RDB = redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	_, err := RDB.Ping(context.Background()).Result()
	if err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
}

// NewSessionStore picks the Redis store when a client is available.
func NewSessionStore(rdb *redis.Client) SessionStore {
	if rdb == nil {
		return NewMemorySessionStore()
	}
	return NewRedisSessionStore(rdb, config.GlobalConfig.Redis.SessionTTL)
}
