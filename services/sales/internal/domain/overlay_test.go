package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// overlayCart собирает корзину с клиентом и тремя позициями для тестов наложения.
func overlayCart(t *testing.T) *Cart {
	t.Helper()

	cart := NewCart(testSettings())
	cart.SetCustomer("cust-1", "Acme")

	for _, it := range []struct {
		id     string
		name   string
		retail int64
	}{
		{"item-1", "Болт М8", 5000},
		{"item-2", "Гайка М8", 1000},
		{"item-3", "Шайба", 2000},
	} {
		item := testItem(it.id, it.name, 10, it.retail)
		_, err := cart.AddLine(item, 1, nil, nil, AddOptions{})
		require.NoError(t, err)
	}
	return cart
}

// testHistory — цены предыдущего заказа: item-1 дешевле, item-2 совпадает,
// item-3 в истории отсутствует.
func testHistory() LastOrderPrices {
	return LastOrderPrices{
		Prices: map[string]Money{
			"item-1": money(4500),
			"item-2": money(1000),
		},
		OrderNumber: "SO-A-20260801-0001",
		OrderDate:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

// =====================================
// Тесты ApplyLastPrices
// =====================================

// TestCart_ApplyLastPrices тестирует классификацию позиций при наложении.
func TestCart_ApplyLastPrices(t *testing.T) {
	cart := overlayCart(t)

	result, err := cart.ApplyLastPrices(testHistory())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Unchanged)
	assert.Equal(t, 1, result.NotFound)
	assert.Equal(t, "SO-A-20260801-0001", result.OrderNumber)

	assert.Equal(t, int64(4500), cart.Lines[0].UnitPrice.Amount, "применена историческая цена")
	assert.Equal(t, int64(1000), cart.Lines[1].UnitPrice.Amount)
	assert.Equal(t, int64(2000), cart.Lines[2].UnitPrice.Amount, "без истории цена не тронута")
	assertLineInvariant(t, cart.Lines[0])

	status := cart.GetOverlayStatus()
	assert.True(t, status.Applied)
	assert.Equal(t, OverlayLineUpdated, status.Lines["item-1"])
	assert.Equal(t, OverlayLineUnchanged, status.Lines["item-2"])
	assert.Equal(t, OverlayLineNotFound, status.Lines["item-3"])
}

// TestCart_ApplyLastPrices_Errors тестирует предусловия наложения.
func TestCart_ApplyLastPrices_Errors(t *testing.T) {
	t.Run("без клиента", func(t *testing.T) {
		cart := NewCart(testSettings())
		_, err := cart.AddLine(testItem("item-1", "Болт М8", 10, 5000), 1, nil, nil, AddOptions{})
		require.NoError(t, err)

		_, err = cart.ApplyLastPrices(testHistory())
		assert.ErrorIs(t, err, ErrNoCustomer)
	})

	t.Run("пустая корзина", func(t *testing.T) {
		cart := NewCart(testSettings())
		cart.SetCustomer("cust-1", "Acme")

		_, err := cart.ApplyLastPrices(testHistory())
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("у клиента нет предыдущих заказов", func(t *testing.T) {
		cart := overlayCart(t)

		_, err := cart.ApplyLastPrices(LastOrderPrices{})
		assert.ErrorIs(t, err, ErrNoPriorOrder)
		assert.False(t, cart.GetOverlayStatus().Applied)
	})
}

// TestCart_ApplyLastPrices_Reapply тестирует повторное применение:
// прежний захват перезаписывается целиком, состояние не «наслаивается».
func TestCart_ApplyLastPrices_Reapply(t *testing.T) {
	cart := overlayCart(t)

	_, err := cart.ApplyLastPrices(testHistory())
	require.NoError(t, err)

	// Второе применение: цена item-1 уже 4500 и совпадает с историей.
	result, err := cart.ApplyLastPrices(testHistory())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 2, result.Unchanged)
	assert.Equal(t, 1, result.NotFound)

	// Захват перезаписан текущими ценами, поэтому восстановление
	// возвращает 4500, а не исходные 5000.
	require.NoError(t, cart.RestoreOriginalPrices())
	assert.Equal(t, int64(4500), cart.Lines[0].UnitPrice.Amount)
}

// =====================================
// Тесты RestoreOriginalPrices
// =====================================

// TestCart_RestoreOriginalPrices тестирует полный цикл наложения и восстановления.
func TestCart_RestoreOriginalPrices(t *testing.T) {
	cart := overlayCart(t)
	totalsBefore := cart.ComputeTotals()

	_, err := cart.ApplyLastPrices(testHistory())
	require.NoError(t, err)
	require.NotEqual(t, totalsBefore, cart.ComputeTotals())

	require.NoError(t, cart.RestoreOriginalPrices())

	assert.Equal(t, int64(5000), cart.Lines[0].UnitPrice.Amount)
	assert.Equal(t, totalsBefore, cart.ComputeTotals(), "итоги вернулись к исходным")

	status := cart.GetOverlayStatus()
	assert.False(t, status.Applied)
	assert.Empty(t, status.Lines)

	// Повторное восстановление невозможно — захват уже отброшен.
	assert.ErrorIs(t, cart.RestoreOriginalPrices(), ErrNothingToRestore)
}

// TestCart_RestoreOriginalPrices_Empty тестирует восстановление без наложения.
func TestCart_RestoreOriginalPrices_Empty(t *testing.T) {
	cart := overlayCart(t)
	assert.ErrorIs(t, cart.RestoreOriginalPrices(), ErrNothingToRestore)
}

// =====================================
// Тесты взаимодействия наложения с операциями корзины
// =====================================

// TestCart_Overlay_RemoveLine тестирует выборочную очистку захвата при удалении.
func TestCart_Overlay_RemoveLine(t *testing.T) {
	cart := overlayCart(t)
	_, err := cart.ApplyLastPrices(testHistory())
	require.NoError(t, err)

	// Удаляем item-1 — его записи вычищаются, остальные живут.
	require.NoError(t, cart.RemoveLine(0))

	status := cart.GetOverlayStatus()
	assert.True(t, status.Applied, "состояние машины не меняется")
	assert.NotContains(t, status.Lines, "item-1")
	assert.Contains(t, status.Lines, "item-2")

	// Восстановление затрагивает только оставшиеся позиции.
	require.NoError(t, cart.RestoreOriginalPrices())
	assert.Equal(t, int64(1000), cart.Lines[0].UnitPrice.Amount)
}

// TestCart_Overlay_SetCustomer тестирует безусловный сброс при смене клиента.
func TestCart_Overlay_SetCustomer(t *testing.T) {
	cart := overlayCart(t)
	_, err := cart.ApplyLastPrices(testHistory())
	require.NoError(t, err)

	cart.SetCustomer("cust-2", "Другой Клиент")

	assert.False(t, cart.GetOverlayStatus().Applied)
	assert.ErrorIs(t, cart.RestoreOriginalPrices(), ErrNothingToRestore)
	// Применённые исторические цены остаются как есть.
	assert.Equal(t, int64(4500), cart.Lines[0].UnitPrice.Amount)
}

// TestCart_Overlay_SetPriceTier тестирует закрепление позиций с исторической
// ценой при смене ценового уровня.
func TestCart_Overlay_SetPriceTier(t *testing.T) {
	cart := overlayCart(t)
	for i := range cart.Lines {
		cart.Lines[i].Item.Pricing.Wholesale = moneyPtr(cart.Lines[i].UnitPrice.Amount / 2)
	}

	_, err := cart.ApplyLastPrices(testHistory())
	require.NoError(t, err)

	require.NoError(t, cart.SetPriceTier(TierWholesale))

	// item-1 со статусом updated закреплён на исторической цене.
	assert.Equal(t, int64(4500), cart.Lines[0].UnitPrice.Amount)
	// item-2 (unchanged) и item-3 (not_found) заново разрешены по уровню.
	assert.Equal(t, int64(500), cart.Lines[1].UnitPrice.Amount)
	assert.Equal(t, int64(1000), cart.Lines[2].UnitPrice.Amount)

	// Захват пересчитанных позиций обновлён: восстановление возвращает
	// цены, согласованные с новым уровнем.
	require.NoError(t, cart.RestoreOriginalPrices())
	assert.Equal(t, int64(5000), cart.Lines[0].UnitPrice.Amount, "восстановлена цена до наложения")
	assert.Equal(t, int64(500), cart.Lines[1].UnitPrice.Amount)
	assert.Equal(t, int64(1000), cart.Lines[2].UnitPrice.Amount)
}
