package domain

import "time"

// OverlayLineStatus — статус позиции после наложения исторических цен.
type OverlayLineStatus string

const (
	// OverlayLineUpdated — применена историческая цена, отличавшаяся от текущей.
	OverlayLineUpdated OverlayLineStatus = "updated"

	// OverlayLineUnchanged — историческая цена совпала с текущей.
	OverlayLineUnchanged OverlayLineStatus = "unchanged"

	// OverlayLineNotFound — товара не было в предыдущем заказе, цена не тронута.
	OverlayLineNotFound OverlayLineStatus = "not_found"
)

// LastOrderPrices — цены последнего заказа клиента, полученные
// от внешнего коллаборатора истории заказов.
type LastOrderPrices struct {
	Prices      map[string]Money // Цена за единицу по ID единицы каталога
	OrderNumber string           // Номер предыдущего заказа
	OrderDate   time.Time        // Дата предыдущего заказа
}

// OverlayResult — итог применения исторических цен, для сообщений оператору.
type OverlayResult struct {
	Updated     int       // Позиций с применённой исторической ценой
	Unchanged   int       // Позиций с совпавшей ценой
	NotFound    int       // Позиций без истории
	OrderNumber string    // Номер заказа-источника
	OrderDate   time.Time // Дата заказа-источника
}

// OverlayStatus — проекция состояния наложения только для чтения.
type OverlayStatus struct {
	Applied bool                         // true в состоянии «наложено»
	Lines   map[string]OverlayLineStatus // Статусы по ID единицы каталога
}

// priceOverlay — состояние машины наложения цен с двумя состояниями:
// «исходное» (applied == false) и «наложено» (applied == true).
// Принадлежит сессии корзины и сбрасывается вместе с ней.
type priceOverlay struct {
	original map[string]Money             // Цены позиций, захваченные при применении
	status   map[string]OverlayLineStatus // Классификация позиций
	applied  bool
}

// reset возвращает машину в состояние «исходное».
func (o *priceOverlay) reset() {
	o.original = make(map[string]Money)
	o.status = make(map[string]OverlayLineStatus)
	o.applied = false
}

// purge удаляет записи одного товара, не меняя состояние машины.
// Вызывается при удалении позиции из корзины.
func (o *priceOverlay) purge(itemID string) {
	delete(o.original, itemID)
	delete(o.status, itemID)
}

// ApplyLastPrices накладывает цены последнего заказа клиента на текущие позиции.
//
// Текущие цены всех позиций захватываются заново (повторное применение
// идемпотентно с точки зрения оператора). Для каждой позиции: историческая
// цена отличается — позиция пересчитывается и помечается updated; совпадает —
// unchanged; отсутствует в истории — цена не тронута, not_found.
// Переводит машину в состояние «наложено».
func (c *Cart) ApplyLastPrices(history LastOrderPrices) (OverlayResult, error) {
	if c.CustomerID == "" {
		return OverlayResult{}, ErrNoCustomer
	}
	if len(c.Lines) == 0 {
		return OverlayResult{}, ErrEmptyCart
	}
	if len(history.Prices) == 0 {
		return OverlayResult{}, ErrNoPriorOrder
	}

	// Перезаписываем прежний захват целиком.
	c.overlay.reset()

	result := OverlayResult{
		OrderNumber: history.OrderNumber,
		OrderDate:   history.OrderDate,
	}

	for i := range c.Lines {
		line := &c.Lines[i]
		c.overlay.original[line.CatalogItemID] = line.UnitPrice

		historical, ok := history.Prices[line.CatalogItemID]
		switch {
		case !ok:
			c.overlay.status[line.CatalogItemID] = OverlayLineNotFound
			result.NotFound++
		case historical.Amount == line.UnitPrice.Amount:
			c.overlay.status[line.CatalogItemID] = OverlayLineUnchanged
			result.Unchanged++
		default:
			line.UnitPrice = historical
			c.recomputeLine(line)
			c.overlay.status[line.CatalogItemID] = OverlayLineUpdated
			result.Updated++
		}
	}

	c.overlay.applied = true
	return result, nil
}

// RestoreOriginalPrices восстанавливает захваченные цены и возвращает машину
// в состояние «исходное». Без сохранённых цен — ErrNothingToRestore.
func (c *Cart) RestoreOriginalPrices() error {
	if len(c.overlay.original) == 0 {
		return ErrNothingToRestore
	}

	for i := range c.Lines {
		line := &c.Lines[i]
		if original, ok := c.overlay.original[line.CatalogItemID]; ok {
			line.UnitPrice = original
			c.recomputeLine(line)
		}
	}

	c.overlay.reset()
	return nil
}

// GetOverlayStatus возвращает проекцию состояния наложения только для чтения.
func (c *Cart) GetOverlayStatus() OverlayStatus {
	lines := make(map[string]OverlayLineStatus, len(c.overlay.status))
	for id, st := range c.overlay.status {
		lines[id] = st
	}
	return OverlayStatus{
		Applied: c.overlay.applied,
		Lines:   lines,
	}
}
