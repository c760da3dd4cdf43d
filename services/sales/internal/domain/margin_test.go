package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =====================================
// Тесты EvaluateLine
// =====================================

// TestEvaluateLine тестирует классификацию позиции по марже.
func TestEvaluateLine(t *testing.T) {
	tests := []struct {
		name            string
		salePrice       int64
		costPrice       *Money
		expectedStatus  MarginStatus
		expectedLoss    int64
		expectedPercent float64
	}{
		{
			name:           "себестоимость неизвестна",
			salePrice:      9000,
			costPrice:      nil,
			expectedStatus: MarginNoCostData,
		},
		{
			name:           "продажа выше себестоимости",
			salePrice:      12000,
			costPrice:      moneyPtr(10000),
			expectedStatus: MarginAtOrAboveCost,
		},
		{
			name:           "продажа ровно по себестоимости",
			salePrice:      10000,
			costPrice:      moneyPtr(10000),
			expectedStatus: MarginAtOrAboveCost,
		},
		{
			name:            "продажа ниже себестоимости",
			salePrice:       8000,
			costPrice:       moneyPtr(10000),
			expectedStatus:  MarginBelowCost,
			expectedLoss:    2000,
			expectedPercent: 20.0,
		},
		{
			name:            "продажа в ноль при известной себестоимости",
			salePrice:       0,
			costPrice:       moneyPtr(500),
			expectedStatus:  MarginBelowCost,
			expectedLoss:    500,
			expectedPercent: 100.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := EvaluateLine(money(tt.salePrice), tt.costPrice)

			assert.Equal(t, tt.expectedStatus, report.Status)
			if tt.expectedStatus == MarginBelowCost {
				assert.Equal(t, tt.expectedLoss, report.LossPerUnit.Amount)
				assert.InDelta(t, tt.expectedPercent, report.LossPercent, 0.0001)
			}
		})
	}
}

// =====================================
// Тесты SnapshotCost
// =====================================

// TestTierPricing_SnapshotCost тестирует приоритет источников себестоимости снимка.
func TestTierPricing_SnapshotCost(t *testing.T) {
	tests := []struct {
		name     string
		pricing  TierPricing
		expected *int64
	}{
		{
			name:     "себестоимость имеет высший приоритет",
			pricing:  TierPricing{Cost: moneyPtr(100), PurchasePrice: moneyPtr(200), WholesaleCost: moneyPtr(300)},
			expected: int64Ptr(100),
		},
		{
			name:     "закупочная цена при отсутствии себестоимости",
			pricing:  TierPricing{PurchasePrice: moneyPtr(200), WholesaleCost: moneyPtr(300)},
			expected: int64Ptr(200),
		},
		{
			name:     "оптовая себестоимость как последний источник",
			pricing:  TierPricing{WholesaleCost: moneyPtr(300)},
			expected: int64Ptr(300),
		},
		{
			name:     "данных о себестоимости нет",
			pricing:  TierPricing{Retail: moneyPtr(400)},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost := tt.pricing.SnapshotCost()

			if tt.expected == nil {
				assert.Nil(t, cost)
			} else {
				assert.NotNil(t, cost)
				assert.Equal(t, *tt.expected, cost.Amount)
			}
		})
	}
}

// int64Ptr возвращает указатель на значение.
func int64Ptr(v int64) *int64 {
	return &v
}
