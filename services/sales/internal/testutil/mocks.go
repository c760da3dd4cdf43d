// Package testutil содержит моки зависимостей для unit тестов Sales Service.
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"example.com/sales-console/services/sales/internal/domain"
)

// MockCatalogRepository - мок для CatalogRepository.
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) Search(ctx context.Context, query string, limit int) ([]domain.CatalogItem, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogItem), args.Error(1)
}

func (m *MockCatalogRepository) GetByID(ctx context.Context, id string) (domain.CatalogItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.CatalogItem), args.Error(1)
}

// MockPriceHistoryRepository - мок для PriceHistoryRepository.
type MockPriceHistoryRepository struct {
	mock.Mock
}

func (m *MockPriceHistoryRepository) LastPurchasePrice(ctx context.Context, baseProductID string) (*domain.Money, error) {
	args := m.Called(ctx, baseProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Money), args.Error(1)
}

// MockCustomerRepository - мок для CustomerRepository.
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Customer), args.Error(1)
}

// MockSalesOrderRepository - мок для SalesOrderRepository.
type MockSalesOrderRepository struct {
	mock.Mock
}

func (m *MockSalesOrderRepository) Create(ctx context.Context, cart *domain.Cart, totals domain.Totals) (string, error) {
	args := m.Called(ctx, cart, totals)
	return args.String(0), args.Error(1)
}

func (m *MockSalesOrderRepository) Update(ctx context.Context, orderID string, cart *domain.Cart, totals domain.Totals) error {
	args := m.Called(ctx, orderID, cart, totals)
	return args.Error(0)
}

func (m *MockSalesOrderRepository) LastOrderPrices(ctx context.Context, customerID string) (domain.LastOrderPrices, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(domain.LastOrderPrices), args.Error(1)
}

// MockEventPublisher - мок для EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Send(ctx context.Context, topic string, key []byte, value []byte) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}
