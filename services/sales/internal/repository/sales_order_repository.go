package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"example.com/sales-console/services/sales/internal/domain"
)

// SalesOrderRepository определяет интерфейс хранилища заказов.
type SalesOrderRepository interface {
	// Create сохраняет заказ с позициями. Выполняется в транзакции.
	// Возвращает ID созданного заказа.
	Create(ctx context.Context, cart *domain.Cart, totals domain.Totals) (string, error)

	// Update перезаписывает существующий заказ содержимым корзины.
	// ErrOrderNotFound — заказ с таким ID отсутствует.
	Update(ctx context.Context, orderID string, cart *domain.Cart, totals domain.Totals) error

	// LastOrderPrices возвращает цены позиций последнего заказа клиента.
	// ErrNoPriorOrder — у клиента нет заказов.
	LastOrderPrices(ctx context.Context, customerID string) (domain.LastOrderPrices, error)
}

// SalesOrderModel — GORM модель для таблицы sales_orders.
// Отделена от доменного агрегата для гибкости.
type SalesOrderModel struct {
	ID            string                `gorm:"column:id;type:varchar(36);primaryKey"`
	OrderNumber   string                `gorm:"column:order_number;type:varchar(64);not null;uniqueIndex"`
	OrderType     string                `gorm:"column:order_type;type:varchar(20);not null"`
	CustomerID    *string               `gorm:"column:customer_id;type:varchar(36);index"`
	CustomerName  string                `gorm:"column:customer_name;type:varchar(255)"`
	PriceTier     string                `gorm:"column:price_tier;type:varchar(20);not null"`
	TaxExempt     bool                  `gorm:"column:tax_exempt;not null"`
	Subtotal      int64                 `gorm:"column:subtotal;not null"`
	TotalDiscount int64                 `gorm:"column:total_discount;not null"`
	TotalTax      int64                 `gorm:"column:total_tax;not null"`
	Total         int64                 `gorm:"column:total;not null"`
	Currency      string                `gorm:"column:currency;type:varchar(3);not null"`
	Notes         string                `gorm:"column:notes;type:text"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
	Lines         []SalesOrderLineModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName возвращает имя таблицы в БД.
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// SalesOrderLineModel — GORM модель для таблицы sales_order_lines.
type SalesOrderLineModel struct {
	ID             string    `gorm:"column:id;type:varchar(36);primaryKey"`
	OrderID        string    `gorm:"column:order_id;type:varchar(36);not null;index"`
	CatalogItemID  string    `gorm:"column:catalog_item_id;type:varchar(36);not null;index"`
	ItemName       string    `gorm:"column:item_name;type:varchar(255);not null"`
	Quantity       int32     `gorm:"column:quantity;not null"`
	UnitPrice      int64     `gorm:"column:unit_price;not null"`
	DiscountAmount int64     `gorm:"column:discount_amount;not null"`
	TaxAmount      int64     `gorm:"column:tax_amount;not null"`
	Total          int64     `gorm:"column:total;not null"`
	Currency       string    `gorm:"column:currency;type:varchar(3);not null"`
	ManuallyEdited bool      `gorm:"column:manually_edited;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName возвращает имя таблицы в БД.
func (SalesOrderLineModel) TableName() string {
	return "sales_order_lines"
}

// orderModelFromCart собирает GORM модель заказа из агрегата корзины.
func orderModelFromCart(cart *domain.Cart, totals domain.Totals) *SalesOrderModel {
	model := &SalesOrderModel{
		ID:            uuid.New().String(),
		OrderNumber:   cart.OrderNumber,
		OrderType:     cart.OrderType,
		CustomerName:  cart.CustomerName,
		PriceTier:     string(cart.PriceTier),
		TaxExempt:     cart.TaxExempt,
		Subtotal:      totals.Subtotal.Amount,
		TotalDiscount: totals.TotalDiscount.Amount,
		TotalTax:      totals.TotalTax.Amount,
		Total:         totals.Total.Amount,
		Currency:      totals.Total.Currency,
		Notes:         cart.Notes,
		Lines:         make([]SalesOrderLineModel, len(cart.Lines)),
	}

	// Заказ без клиента допустим: customer_id -> NULL
	if cart.CustomerID != "" {
		model.CustomerID = &cart.CustomerID
	}

	for i := range cart.Lines {
		line := &cart.Lines[i]
		model.Lines[i] = SalesOrderLineModel{
			ID:             uuid.New().String(),
			OrderID:        model.ID,
			CatalogItemID:  line.CatalogItemID,
			ItemName:       line.Item.DisplayName,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice.Amount,
			DiscountAmount: line.DiscountAmount.Amount,
			TaxAmount:      line.TaxAmount.Amount,
			Total:          line.Total.Amount,
			Currency:       line.UnitPrice.Currency,
			ManuallyEdited: line.ManuallyEdited,
		}
	}

	return model
}

// salesOrderRepository — GORM реализация SalesOrderRepository.
type salesOrderRepository struct {
	db *gorm.DB
}

// NewSalesOrderRepository создаёт новый репозиторий заказов.
func NewSalesOrderRepository(db *gorm.DB) SalesOrderRepository {
	return &salesOrderRepository{db: db}
}

// Create сохраняет заказ с позициями в одной транзакции.
func (r *salesOrderRepository) Create(ctx context.Context, cart *domain.Cart, totals domain.Totals) (string, error) {
	model := orderModelFromCart(cart, totals)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Позиции создаются автоматически через ассоциацию
		return tx.Create(model).Error
	})
	if err != nil {
		// Дубликат order_number (MySQL error 1062)
		if isDuplicateKeyError(err) {
			return "", domain.ErrDuplicateOrderNumber
		}
		return "", fmt.Errorf("ошибка сохранения заказа: %w", err)
	}

	return model.ID, nil
}

// Update перезаписывает шапку заказа и пересоздаёт позиции в одной транзакции.
func (r *salesOrderRepository) Update(ctx context.Context, orderID string, cart *domain.Cart, totals domain.Totals) error {
	model := orderModelFromCart(cart, totals)
	model.ID = orderID
	for i := range model.Lines {
		model.Lines[i].OrderID = orderID
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing SalesOrderModel
		if err := tx.Select("id").First(&existing, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}

		// RowsAffected здесь не показателен: MySQL возвращает 0
		// при обновлении теми же значениями.
		err := tx.Model(&SalesOrderModel{}).Where("id = ?", orderID).Updates(map[string]any{
			"order_number":   model.OrderNumber,
			"order_type":     model.OrderType,
			"customer_id":    model.CustomerID,
			"customer_name":  model.CustomerName,
			"price_tier":     model.PriceTier,
			"tax_exempt":     model.TaxExempt,
			"subtotal":       model.Subtotal,
			"total_discount": model.TotalDiscount,
			"total_tax":      model.TotalTax,
			"total":          model.Total,
			"currency":       model.Currency,
			"notes":          model.Notes,
		}).Error
		if err != nil {
			return err
		}

		// Позиции пересоздаются целиком: diff по индексам хрупок
		if err := tx.Where("order_id = ?", orderID).Delete(&SalesOrderLineModel{}).Error; err != nil {
			return err
		}
		if len(model.Lines) == 0 {
			return nil
		}
		return tx.Create(&model.Lines).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return err
		}
		if isDuplicateKeyError(err) {
			return domain.ErrDuplicateOrderNumber
		}
		return fmt.Errorf("ошибка обновления заказа: %w", err)
	}

	return nil
}

// LastOrderPrices возвращает цены позиций последнего заказа клиента.
func (r *salesOrderRepository) LastOrderPrices(ctx context.Context, customerID string) (domain.LastOrderPrices, error) {
	var order SalesOrderModel

	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LastOrderPrices{}, domain.ErrNoPriorOrder
		}
		return domain.LastOrderPrices{}, fmt.Errorf("ошибка получения последнего заказа: %w", err)
	}

	prices := make(map[string]domain.Money, len(order.Lines))
	for i := range order.Lines {
		line := &order.Lines[i]
		prices[line.CatalogItemID] = domain.Money{
			Currency: line.Currency,
			Amount:   line.UnitPrice,
		}
	}

	return domain.LastOrderPrices{
		Prices:      prices,
		OrderNumber: order.OrderNumber,
		OrderDate:   order.CreatedAt,
	}, nil
}

// isDuplicateKeyError проверяет, является ли ошибка дубликатом ключа.
// MySQL возвращает ошибку с кодом 1062 при попытке вставить дубликат.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(errMsg, "Duplicate entry") ||
		strings.Contains(errMsg, "1062")
}
