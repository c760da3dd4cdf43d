package domain

// StockReason — причина отказа проверки остатков.
type StockReason string

const (
	// StockReasonOutOfStock — товара нет на складе.
	StockReasonOutOfStock StockReason = "OUT_OF_STOCK"

	// StockReasonExceedsStock — запрошено больше, чем есть на складе.
	StockReasonExceedsStock StockReason = "EXCEEDS_STOCK"
)

// StockCheck — результат проверки запрошенного количества против остатков.
type StockCheck struct {
	OK     bool        // true, если количество можно продать
	Reason StockReason // Причина отказа (заполнена при OK == false)
}

// Err возвращает доменную ошибку, соответствующую причине отказа.
// nil для успешной проверки.
func (c StockCheck) Err() error {
	if c.OK {
		return nil
	}
	if c.Reason == StockReasonOutOfStock {
		return ErrOutOfStock
	}
	return ErrExceedsStock
}

// CheckQuantity проверяет запрошенное количество против остатков снимка товара.
// Проверка носит рекомендательный характер: вызывающая сторона решает,
// блокировать операцию (рекомендуется для OUT_OF_STOCK) или
// запросить подтверждение оператора.
func CheckQuantity(item CatalogItem, requestedQty int32) StockCheck {
	if item.Inventory.CurrentStock == 0 {
		return StockCheck{Reason: StockReasonOutOfStock}
	}
	if requestedQty > item.Inventory.CurrentStock {
		return StockCheck{Reason: StockReasonExceedsStock}
	}
	return StockCheck{OK: true}
}
