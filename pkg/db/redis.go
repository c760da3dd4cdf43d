package db

import (
	"time"

	"github.com/redis/go-redis/v9"

	"example.com/sales-console/pkg/config"
)

// ConnectRedis создаёт клиент Redis для кэша закупочных цен и rate limiting.
// Подключение ленивое: доступность проверяется пингом на старте сервиса.
func ConnectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  connectTimeout,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}
