// Package repository содержит unit тесты репозиториев Sales Service.
package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/sales-console/services/sales/internal/domain"
)

// =====================================
// Вспомогательные функции
// =====================================

// setupMockDB создаёт мок базы данных с GORM.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Ошибка создания sqlmock")

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Ошибка инициализации GORM")

	return gormDB, mock, func() { _ = db.Close() }
}

// productColumns — колонки таблицы products для sqlmock.
func productColumns() []string {
	return []string{
		"id", "name", "currency",
		"retail_price", "wholesale_price", "distributor_price",
		"cost_price", "purchase_price", "wholesale_cost",
		"current_stock", "reorder_point", "tax_rate_percent",
		"created_at", "updated_at",
	}
}

// variantColumns — колонки таблицы product_variants для sqlmock.
func variantColumns() []string {
	return []string{
		"id", "product_id", "product_name", "variant_type", "variant_value", "currency",
		"retail_price", "wholesale_price", "distributor_price",
		"cost_price", "purchase_price", "wholesale_cost",
		"current_stock", "reorder_point", "tax_rate_percent",
		"created_at", "updated_at",
	}
}

// =====================================
// Тесты GetByID
// =====================================

func TestCatalogGetByID(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	t.Run("товар найден", func(t *testing.T) {
		gormDB, mock, cleanup := setupMockDB(t)
		defer cleanup()

		rows := sqlmock.NewRows(productColumns()).
			AddRow("prod-1", "Болт М8", "RUB",
				int64(5000), int64(4000), nil,
				int64(3000), nil, nil,
				int32(10), int32(3), nil,
				now, now)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `products` WHERE id = ?")).
			WithArgs("prod-1", 1).
			WillReturnRows(rows)

		repo := NewCatalogRepository(gormDB)
		item, err := repo.GetByID(context.Background(), "prod-1")

		require.NoError(t, err)
		assert.Equal(t, "prod-1", item.ID)
		assert.Equal(t, "prod-1", item.BaseProductID)
		assert.False(t, item.IsVariant)
		assert.Equal(t, "Болт М8", item.DisplayName)
		require.NotNil(t, item.Pricing.Retail)
		assert.Equal(t, int64(5000), item.Pricing.Retail.Amount)
		assert.Nil(t, item.Pricing.Distributor, "отсутствующий уровень даёт nil")
		assert.Equal(t, int32(10), item.Inventory.CurrentStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("найден вариант после промаха по товарам", func(t *testing.T) {
		gormDB, mock, cleanup := setupMockDB(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `products` WHERE id = ?")).
			WithArgs("var-1", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		rows := sqlmock.NewRows(variantColumns()).
			AddRow("var-1", "prod-1", "Болт М8", "size", "120мм", "RUB",
				int64(5500), nil, nil,
				nil, nil, nil,
				int32(4), int32(1), nil,
				now, now)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `product_variants` WHERE id = ?")).
			WithArgs("var-1", 1).
			WillReturnRows(rows)

		repo := NewCatalogRepository(gormDB)
		item, err := repo.GetByID(context.Background(), "var-1")

		require.NoError(t, err)
		assert.True(t, item.IsVariant)
		assert.Equal(t, "prod-1", item.BaseProductID)
		assert.Equal(t, "Болт М8 (120мм)", item.DisplayName)
		assert.Equal(t, "size", item.VariantType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("единица каталога не найдена", func(t *testing.T) {
		gormDB, mock, cleanup := setupMockDB(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `products` WHERE id = ?")).
			WithArgs("missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `product_variants` WHERE id = ?")).
			WithArgs("missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		repo := NewCatalogRepository(gormDB)
		_, err := repo.GetByID(context.Background(), "missing")

		assert.ErrorIs(t, err, domain.ErrItemNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ошибка БД", func(t *testing.T) {
		gormDB, mock, cleanup := setupMockDB(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `products` WHERE id = ?")).
			WithArgs("prod-1", 1).
			WillReturnError(sql.ErrConnDone)

		repo := NewCatalogRepository(gormDB)
		_, err := repo.GetByID(context.Background(), "prod-1")

		require.Error(t, err)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// =====================================
// Тесты Search
// =====================================

func TestCatalogSearch(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	t.Run("товары и варианты в одном списке", func(t *testing.T) {
		gormDB, mock, cleanup := setupMockDB(t)
		defer cleanup()

		productRows := sqlmock.NewRows(productColumns()).
			AddRow("prod-1", "Болт М8", "RUB",
				int64(5000), nil, nil, nil, nil, nil,
				int32(10), int32(3), nil, now, now)
		mock.ExpectQuery("SELECT \\* FROM `products` WHERE name LIKE \\?").
			WithArgs("%болт%", 20).
			WillReturnRows(productRows)

		variantRows := sqlmock.NewRows(variantColumns()).
			AddRow("var-1", "prod-1", "Болт М8", "size", "120мм", "RUB",
				int64(5500), nil, nil, nil, nil, nil,
				int32(4), int32(1), nil, now, now)
		mock.ExpectQuery("SELECT \\* FROM `product_variants` WHERE product_name LIKE \\? OR variant_value LIKE \\?").
			WithArgs("%болт%", "%болт%", 20).
			WillReturnRows(variantRows)

		repo := NewCatalogRepository(gormDB)
		items, err := repo.Search(context.Background(), "болт", 20)

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.False(t, items[0].IsVariant)
		assert.True(t, items[1].IsVariant)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("пустой результат", func(t *testing.T) {
		gormDB, mock, cleanup := setupMockDB(t)
		defer cleanup()

		mock.ExpectQuery("SELECT \\* FROM `products` WHERE name LIKE \\?").
			WithArgs("%xyz%", 20).
			WillReturnRows(sqlmock.NewRows(productColumns()))
		mock.ExpectQuery("SELECT \\* FROM `product_variants` WHERE product_name LIKE \\? OR variant_value LIKE \\?").
			WithArgs("%xyz%", "%xyz%", 20).
			WillReturnRows(sqlmock.NewRows(variantColumns()))

		repo := NewCatalogRepository(gormDB)
		items, err := repo.Search(context.Background(), "xyz", 20)

		require.NoError(t, err)
		assert.Empty(t, items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
