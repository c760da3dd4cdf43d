package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"example.com/sales-console/services/sales/internal/domain"
)

// PriceHistoryRepository определяет интерфейс истории закупочных цен.
type PriceHistoryRepository interface {
	// LastPurchasePrice возвращает закупочную цену последней принятой
	// закупки базового товара. (nil, nil) — закупок не было:
	// известное отсутствие данных, не ошибка.
	LastPurchasePrice(ctx context.Context, baseProductID string) (*domain.Money, error)
}

// PurchaseOrderLineModel — GORM модель для таблицы purchase_order_lines.
// Хранит строки принятых закупок; используется только для чтения.
type PurchaseOrderLineModel struct {
	ID         string    `gorm:"column:id;type:varchar(36);primaryKey"`
	ProductID  string    `gorm:"column:product_id;type:varchar(36);not null;index"`
	UnitPrice  int64     `gorm:"column:unit_price;not null"`
	Currency   string    `gorm:"column:currency;type:varchar(3);not null"`
	ReceivedAt time.Time `gorm:"column:received_at;not null;index"`
}

// TableName возвращает имя таблицы в БД.
func (PurchaseOrderLineModel) TableName() string {
	return "purchase_order_lines"
}

// priceHistoryRepository — GORM реализация PriceHistoryRepository.
type priceHistoryRepository struct {
	db *gorm.DB
}

// NewPriceHistoryRepository создаёт новый репозиторий истории закупок.
func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

// LastPurchasePrice возвращает цену последней принятой закупки товара.
func (r *priceHistoryRepository) LastPurchasePrice(ctx context.Context, baseProductID string) (*domain.Money, error) {
	var line PurchaseOrderLineModel

	err := r.db.WithContext(ctx).
		Where("product_id = ?", baseProductID).
		Order("received_at DESC").
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения последней закупочной цены: %w", err)
	}

	return &domain.Money{Currency: line.Currency, Amount: line.UnitPrice}, nil
}
