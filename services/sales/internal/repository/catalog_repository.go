// Package repository содержит реализацию доступа к данным Sales Service.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"example.com/sales-console/services/sales/internal/domain"
)

// CatalogRepository определяет интерфейс каталога товаров.
type CatalogRepository interface {
	// Search ищет товары и их варианты по подстроке названия.
	// Варианты возвращаются как самостоятельные единицы каталога
	// с пометкой IsVariant.
	Search(ctx context.Context, query string, limit int) ([]domain.CatalogItem, error)

	// GetByID возвращает единицу каталога по ID.
	// Сначала ищет среди товаров, затем среди вариантов.
	GetByID(ctx context.Context, id string) (domain.CatalogItem, error)
}

// ProductModel — GORM модель для таблицы products.
// Отделена от доменной сущности для гибкости.
type ProductModel struct {
	ID               string    `gorm:"column:id;type:varchar(36);primaryKey"`
	Name             string    `gorm:"column:name;type:varchar(255);not null;index"`
	Currency         string    `gorm:"column:currency;type:varchar(3);not null"`
	RetailPrice      *int64    `gorm:"column:retail_price"`
	WholesalePrice   *int64    `gorm:"column:wholesale_price"`
	DistributorPrice *int64    `gorm:"column:distributor_price"`
	CostPrice        *int64    `gorm:"column:cost_price"`
	PurchasePrice    *int64    `gorm:"column:purchase_price"`
	WholesaleCost    *int64    `gorm:"column:wholesale_cost"`
	CurrentStock     int32     `gorm:"column:current_stock;not null"`
	ReorderPoint     int32     `gorm:"column:reorder_point;not null"`
	TaxRatePercent   *float64  `gorm:"column:tax_rate_percent"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName возвращает имя таблицы в БД.
func (ProductModel) TableName() string {
	return "products"
}

// ProductVariantModel — GORM модель для таблицы product_variants.
// Вариант несёт собственные цены и остатки.
type ProductVariantModel struct {
	ID               string    `gorm:"column:id;type:varchar(36);primaryKey"`
	ProductID        string    `gorm:"column:product_id;type:varchar(36);not null;index"`
	ProductName      string    `gorm:"column:product_name;type:varchar(255);not null"`
	VariantType      string    `gorm:"column:variant_type;type:varchar(50);not null"`
	VariantValue     string    `gorm:"column:variant_value;type:varchar(100);not null"`
	Currency         string    `gorm:"column:currency;type:varchar(3);not null"`
	RetailPrice      *int64    `gorm:"column:retail_price"`
	WholesalePrice   *int64    `gorm:"column:wholesale_price"`
	DistributorPrice *int64    `gorm:"column:distributor_price"`
	CostPrice        *int64    `gorm:"column:cost_price"`
	PurchasePrice    *int64    `gorm:"column:purchase_price"`
	WholesaleCost    *int64    `gorm:"column:wholesale_cost"`
	CurrentStock     int32     `gorm:"column:current_stock;not null"`
	ReorderPoint     int32     `gorm:"column:reorder_point;not null"`
	TaxRatePercent   *float64  `gorm:"column:tax_rate_percent"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName возвращает имя таблицы в БД.
func (ProductVariantModel) TableName() string {
	return "product_variants"
}

// toDomain конвертирует GORM модель товара в единицу каталога.
func (m *ProductModel) toDomain() domain.CatalogItem {
	return domain.CatalogItem{
		ID:            m.ID,
		BaseProductID: m.ID,
		IsVariant:     false,
		Name:          m.Name,
		DisplayName:   m.Name,
		Currency:      m.Currency,
		Pricing: domain.TierPricing{
			Retail:        moneyFromCents(m.RetailPrice, m.Currency),
			Wholesale:     moneyFromCents(m.WholesalePrice, m.Currency),
			Distributor:   moneyFromCents(m.DistributorPrice, m.Currency),
			Cost:          moneyFromCents(m.CostPrice, m.Currency),
			PurchasePrice: moneyFromCents(m.PurchasePrice, m.Currency),
			WholesaleCost: moneyFromCents(m.WholesaleCost, m.Currency),
		},
		Inventory: domain.Inventory{
			CurrentStock: m.CurrentStock,
			ReorderPoint: m.ReorderPoint,
		},
		TaxRatePercent: m.TaxRatePercent,
	}
}

// toDomain конвертирует GORM модель варианта в единицу каталога.
// Отображаемое название собирается из названия товара и значения варианта.
func (m *ProductVariantModel) toDomain() domain.CatalogItem {
	return domain.CatalogItem{
		ID:            m.ID,
		BaseProductID: m.ProductID,
		IsVariant:     true,
		Name:          m.ProductName,
		DisplayName:   fmt.Sprintf("%s (%s)", m.ProductName, m.VariantValue),
		VariantType:   m.VariantType,
		VariantValue:  m.VariantValue,
		Currency:      m.Currency,
		Pricing: domain.TierPricing{
			Retail:        moneyFromCents(m.RetailPrice, m.Currency),
			Wholesale:     moneyFromCents(m.WholesalePrice, m.Currency),
			Distributor:   moneyFromCents(m.DistributorPrice, m.Currency),
			Cost:          moneyFromCents(m.CostPrice, m.Currency),
			PurchasePrice: moneyFromCents(m.PurchasePrice, m.Currency),
			WholesaleCost: moneyFromCents(m.WholesaleCost, m.Currency),
		},
		Inventory: domain.Inventory{
			CurrentStock: m.CurrentStock,
			ReorderPoint: m.ReorderPoint,
		},
		TaxRatePercent: m.TaxRatePercent,
	}
}

// moneyFromCents конвертирует nullable сумму из БД в *Money.
func moneyFromCents(amount *int64, currency string) *domain.Money {
	if amount == nil {
		return nil
	}
	return &domain.Money{Currency: currency, Amount: *amount}
}

// catalogRepository — GORM реализация CatalogRepository.
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository создаёт новый репозиторий каталога.
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// Search ищет товары и варианты по подстроке названия.
func (r *catalogRepository) Search(ctx context.Context, query string, limit int) ([]domain.CatalogItem, error) {
	pattern := "%" + query + "%"

	var products []ProductModel
	if err := r.db.WithContext(ctx).
		Where("name LIKE ?", pattern).
		Order("name ASC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("ошибка поиска товаров: %w", err)
	}

	var variants []ProductVariantModel
	if err := r.db.WithContext(ctx).
		Where("product_name LIKE ? OR variant_value LIKE ?", pattern, pattern).
		Order("product_name ASC, variant_value ASC").
		Limit(limit).
		Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("ошибка поиска вариантов: %w", err)
	}

	items := make([]domain.CatalogItem, 0, len(products)+len(variants))
	for i := range products {
		items = append(items, products[i].toDomain())
	}
	for i := range variants {
		items = append(items, variants[i].toDomain())
	}

	return items, nil
}

// GetByID возвращает единицу каталога по ID: товар, затем вариант.
func (r *catalogRepository) GetByID(ctx context.Context, id string) (domain.CatalogItem, error) {
	var product ProductModel
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error
	if err == nil {
		return product.toDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.CatalogItem{}, fmt.Errorf("ошибка получения товара: %w", err)
	}

	var variant ProductVariantModel
	err = r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CatalogItem{}, domain.ErrItemNotFound
		}
		return domain.CatalogItem{}, fmt.Errorf("ошибка получения варианта: %w", err)
	}

	return variant.toDomain(), nil
}
