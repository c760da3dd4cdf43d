// Package service содержит бизнес-логику Sales Service:
// реестр сессий корзины и оркестрацию обращений к коллаборатором.
package service

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"example.com/sales-console/pkg/logger"
	"example.com/sales-console/services/sales/internal/domain"
)

// costKeyPrefix — префикс ключей кеша закупочных цен в Redis.
const costKeyPrefix = "sales:cost:"

// costAbsentMarker — маркер известного отсутствия закупочной цены.
// Отсутствие данных тоже кешируется, чтобы не ходить в историю повторно.
const costAbsentMarker = "absent"

// CostCache — read-through кеш последних закупочных цен поверх Redis.
// Ошибки Redis деградируют до промаха: история закупок остаётся
// источником истины.
type CostCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCostCache создаёт кеш закупочных цен.
// rdb == nil отключает кеширование (каждый запрос — промах).
func NewCostCache(rdb *redis.Client, ttl time.Duration) *CostCache {
	return &CostCache{rdb: rdb, ttl: ttl}
}

// Get возвращает кешированную закупочную цену товара.
// Второе значение false — промах кеша, нужен запрос к истории закупок.
func (c *CostCache) Get(ctx context.Context, baseProductID, currency string) (*domain.Money, bool) {
	if c.rdb == nil {
		return nil, false
	}

	value, err := c.rdb.Get(ctx, costKeyPrefix+baseProductID).Result()
	if err != nil {
		if err != redis.Nil {
			log := logger.FromContext(ctx)
			log.Warn().
				Err(err).
				Str("product_id", baseProductID).
				Msg("Ошибка чтения кеша закупочных цен")
		}
		return nil, false
	}

	if value == costAbsentMarker {
		return nil, true
	}

	amount, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().
			Err(err).
			Str("product_id", baseProductID).
			Msg("Повреждённое значение в кеше закупочных цен")
		return nil, false
	}

	return &domain.Money{Currency: currency, Amount: amount}, true
}

// Set сохраняет закупочную цену товара с TTL.
// price == nil кешируется как известное отсутствие данных.
func (c *CostCache) Set(ctx context.Context, baseProductID string, price *domain.Money) {
	if c.rdb == nil {
		return
	}

	value := costAbsentMarker
	if price != nil {
		value = strconv.FormatInt(price.Amount, 10)
	}

	if err := c.rdb.Set(ctx, costKeyPrefix+baseProductID, value, c.ttl).Err(); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().
			Err(err).
			Str("product_id", baseProductID).
			Msg("Ошибка записи кеша закупочных цен")
	}
}
