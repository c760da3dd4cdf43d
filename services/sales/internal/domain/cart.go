package domain

import (
	"sort"
	"strings"
	"time"
)

// CartLine — позиция корзины.
// Идентичность позиционная: позиция определяется индексом в корзине
// и не сохраняет идентичность после удалений.
type CartLine struct {
	CatalogItemID  string      // ID единицы каталога
	Item           CatalogItem // Снимок товара на момент добавления
	Quantity       int32       // Количество, всегда > 0
	UnitPrice      Money       // Цена за единицу, >= 0
	ManuallyEdited bool        // true, если цена явно изменена оператором
	DiscountAmount Money       // Скидка на позицию
	TaxRatePercent float64     // Налоговая ставка позиции (собственная ставка товара или общая)
	Subtotal       Money       // Производное: количество * цена
	TaxAmount      Money       // Производное: налог с учётом освобождения заказа
	Total          Money       // Производное: Subtotal - DiscountAmount + TaxAmount
}

// Settings — параметры движка, общие для всех корзин сервиса.
type Settings struct {
	Currency           string  // Валюта заказов
	FlatTaxRatePercent float64 // Общая налоговая ставка для товаров без собственной
	OrderType          string  // Тип заказа по умолчанию
}

// Cart — агрегат черновика заказа: упорядоченный набор позиций,
// флаги уровня заказа и принадлежащие сессии состояние наложения цен
// и кеш последних закупочных цен. Все операции синхронны, параллельных
// писателей у одной корзины нет.
type Cart struct {
	OrderType    string    // Тип заказа
	PriceTier    PriceTier // Текущий ценовой уровень
	TaxExempt    bool      // Освобождение заказа от налога
	OrderNumber  string    // Номер заказа (автогенерация или ручной ввод)
	AutoNumber   bool      // true — номер генерируется автоматически
	Notes        string    // Примечания оператора
	CustomerID   string    // Выбранный клиент (опционально)
	CustomerName string    // Название клиента для генерации номера
	Lines        []CartLine

	settings Settings
	overlay  priceOverlay
	lastCost map[string]*Money // Кеш последних закупочных цен; nil — цена неизвестна
}

// AddOptions — переопределения мягких барьеров при добавлении и изменении позиций.
type AddOptions struct {
	OverrideStock   bool // Продолжить несмотря на отказ проверки остатков
	AcceptBelowCost bool // Оператор подтвердил продажу ниже себестоимости
}

// Totals — итоги заказа.
type Totals struct {
	Subtotal      Money // Сумма позиций без скидок и налогов
	TotalDiscount Money // Сумма скидок
	TotalTax      Money // Сумма налогов
	Total         Money // Subtotal - TotalDiscount + TotalTax
}

// BalanceSummary — сверка итога заказа с балансом клиента.
type BalanceSummary struct {
	NetBalance Money // Дебиторская задолженность минус аванс
	IsPayable  bool  // true, если баланс в пользу клиента (net < 0)
	GrandTotal Money // Итог заказа + чистый баланс
}

// NewCart создаёт пустую корзину с настройками сервиса.
func NewCart(s Settings) *Cart {
	c := &Cart{
		OrderType:  s.OrderType,
		PriceTier:  TierRetail,
		AutoNumber: true,
		settings:   s,
		lastCost:   make(map[string]*Money),
	}
	c.overlay.reset()
	c.OrderNumber = GenerateOrderNumber("", time.Now())
	return c
}

// AddLine добавляет позицию в корзину.
//
// Последовательность: проверка остатков (жёсткий отказ без OverrideStock) →
// анализ маржи по кешированной закупочной цене (ErrBelowCost без
// AcceptBelowCost) → расчёт производных сумм → добавление позиции.
// lastPurchase — закупочная цена, полученная вызывающей стороной; кешируется
// при первом добавлении товара, включая известное отсутствие данных (nil).
// unitPrice == nil означает разрешение цены по текущему уровню.
// Отчёт анализа маржи возвращается и при успехе — для сообщений оператору.
func (c *Cart) AddLine(item CatalogItem, qty int32, unitPrice *Money, lastPurchase *Money, opts AddOptions) (MarginReport, error) {
	if qty <= 0 {
		return MarginReport{}, ErrInvalidQuantity
	}

	resolved := ResolveUnitPrice(item, c.PriceTier)
	price := resolved
	if unitPrice != nil {
		if unitPrice.Amount < 0 {
			return MarginReport{}, ErrInvalidPrice
		}
		price = *unitPrice
	}

	if check := CheckQuantity(item, qty); !check.OK && !opts.OverrideStock {
		return MarginReport{}, check.Err()
	}

	// Кешируем закупочную цену при первом появлении товара в корзине.
	if _, cached := c.lastCost[item.ID]; !cached {
		c.lastCost[item.ID] = lastPurchase
	}

	report := EvaluateLine(price, c.lastCost[item.ID])
	if report.Status == MarginBelowCost && !opts.AcceptBelowCost {
		return report, ErrBelowCost
	}

	line := CartLine{
		CatalogItemID:  item.ID,
		Item:           item,
		Quantity:       qty,
		UnitPrice:      price,
		ManuallyEdited: unitPrice != nil && unitPrice.Amount != resolved.Amount,
		DiscountAmount: Money{Currency: c.settings.Currency},
		TaxRatePercent: c.lineTaxRate(item),
	}
	c.recomputeLine(&line)
	c.Lines = append(c.Lines, line)

	return report, nil
}

// UpdateQuantity изменяет количество позиции.
// Количество <= 0 трактуется как удаление позиции, не как ошибка.
// Новое количество заново проверяется против остатков снимка.
func (c *Cart) UpdateQuantity(index int, qty int32, opts AddOptions) error {
	if index < 0 || index >= len(c.Lines) {
		return ErrLineNotFound
	}

	if qty <= 0 {
		return c.RemoveLine(index)
	}

	line := &c.Lines[index]
	if check := CheckQuantity(line.Item, qty); !check.OK && !opts.OverrideStock {
		return check.Err()
	}

	line.Quantity = qty
	c.recomputeLine(line)
	return nil
}

// UpdateUnitPrice изменяет цену за единицу.
// Повторно запускает анализ маржи: переход ниже себестоимости требует
// подтверждения (AcceptBelowCost). Помечает позицию как изменённую вручную —
// последующие смены ценового уровня её не трогают.
func (c *Cart) UpdateUnitPrice(index int, price Money, opts AddOptions) (MarginReport, error) {
	if index < 0 || index >= len(c.Lines) {
		return MarginReport{}, ErrLineNotFound
	}
	if price.Amount < 0 {
		return MarginReport{}, ErrInvalidPrice
	}

	line := &c.Lines[index]

	report := EvaluateLine(price, c.lastCost[line.CatalogItemID])
	if report.Status == MarginBelowCost && !opts.AcceptBelowCost {
		return report, ErrBelowCost
	}

	line.UnitPrice = price
	line.ManuallyEdited = true
	c.recomputeLine(line)

	return report, nil
}

// RemoveLine удаляет позицию по индексу и вычищает записи наложения цен
// и кеша себестоимости, если других позиций с этим товаром не осталось.
func (c *Cart) RemoveLine(index int) error {
	if index < 0 || index >= len(c.Lines) {
		return ErrLineNotFound
	}

	itemID := c.Lines[index].CatalogItemID
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)

	for i := range c.Lines {
		if c.Lines[i].CatalogItemID == itemID {
			return nil
		}
	}
	c.overlay.purge(itemID)
	delete(c.lastCost, itemID)
	return nil
}

// SortLinesByName устойчиво сортирует позиции по отображаемому названию
// без учёта регистра. Чистая перестановка, суммы не пересчитываются.
func (c *Cart) SortLinesByName() {
	sort.SliceStable(c.Lines, func(i, j int) bool {
		return strings.ToLower(c.Lines[i].displayName()) < strings.ToLower(c.Lines[j].displayName())
	})
}

// SetPriceTier переключает ценовой уровень заказа и заново разрешает цены
// всех позиций, не изменённых вручную. Позиции с применённой исторической
// ценой (статус наложения updated) закреплены и не пересчитываются.
// Для пересчитанных позиций сохранённая исходная цена наложения обновляется,
// чтобы последующее восстановление вернуло цену, согласованную с уровнем.
func (c *Cart) SetPriceTier(tier PriceTier) error {
	if !tier.Valid() {
		return ErrInvalidPriceTier
	}

	for i := range c.Lines {
		line := &c.Lines[i]
		if line.ManuallyEdited {
			continue
		}
		if c.overlay.applied && c.overlay.status[line.CatalogItemID] == OverlayLineUpdated {
			continue
		}

		resolved := ResolveUnitPrice(line.Item, tier)
		line.UnitPrice = resolved
		c.recomputeLine(line)

		if c.overlay.applied {
			if _, captured := c.overlay.original[line.CatalogItemID]; captured {
				c.overlay.original[line.CatalogItemID] = resolved
			}
		}
	}

	c.PriceTier = tier
	return nil
}

// SetTaxExempt переключает освобождение заказа от налога и пересчитывает
// налог и итог каждой позиции. Цены за единицу не изменяются, поэтому
// повторное включение налога восстанавливает прежние суммы.
func (c *Cart) SetTaxExempt(exempt bool) {
	c.TaxExempt = exempt
	for i := range c.Lines {
		c.recomputeLine(&c.Lines[i])
	}
}

// SetCustomer назначает активного клиента.
// Состояние наложения исторических цен при этом сбрасывается безусловно:
// история цен привязана к клиенту, устаревшие сопоставления не должны
// пережить смену. При автогенерации номер заказа перегенерируется.
func (c *Cart) SetCustomer(id, name string) {
	c.CustomerID = id
	c.CustomerName = name
	c.overlay.reset()

	if c.AutoNumber {
		c.OrderNumber = GenerateOrderNumber(name, time.Now())
	}
}

// ComputeTotals возвращает итоги заказа. Для пустой корзины — нули.
func (c *Cart) ComputeTotals() Totals {
	zero := Money{Currency: c.settings.Currency}
	t := Totals{Subtotal: zero, TotalDiscount: zero, TotalTax: zero, Total: zero}

	for i := range c.Lines {
		t.Subtotal = t.Subtotal.Add(c.Lines[i].Subtotal)
		t.TotalDiscount = t.TotalDiscount.Add(c.Lines[i].DiscountAmount)
		t.TotalTax = t.TotalTax.Add(c.Lines[i].TaxAmount)
	}

	t.Total = t.Subtotal.Sub(t.TotalDiscount).Add(t.TotalTax)
	return t
}

// OrderProfit возвращает оценку прибыли заказа.
// Себестоимость позиции разрешается по приоритету: кешированная закупочная
// цена → себестоимость из снимка товара → 0.
func (c *Cart) OrderProfit() Money {
	profit := Money{Currency: c.settings.Currency}

	for i := range c.Lines {
		line := &c.Lines[i]

		cost := Money{Currency: c.settings.Currency}
		if cached := c.lastCost[line.CatalogItemID]; cached != nil {
			cost = *cached
		} else if snapshot := line.Item.Pricing.SnapshotCost(); snapshot != nil {
			cost = *snapshot
		}

		profit = profit.Add(line.UnitPrice.Sub(cost).Multiply(line.Quantity))
	}

	return profit
}

// KnownCost возвращает кешированную закупочную цену товара.
// Второе значение false, если товар ещё не запрашивался —
// вызывающая сторона должна выполнить загрузку у коллаборатора.
func (c *Cart) KnownCost(itemID string) (*Money, bool) {
	cost, ok := c.lastCost[itemID]
	return cost, ok
}

// Validate проверяет готовность корзины к отправке во внешнее хранилище заказов.
func (c *Cart) Validate() error {
	if len(c.Lines) == 0 {
		return ErrEmptyCart
	}
	for i := range c.Lines {
		if c.Lines[i].Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if c.Lines[i].UnitPrice.Amount < 0 {
			return ErrInvalidPrice
		}
	}
	return nil
}

// Reset возвращает корзину к пустому состоянию нового заказа.
// Позиции, наложение цен и кеш себестоимости отбрасываются;
// настройки сервиса сохраняются.
func (c *Cart) Reset() {
	*c = *NewCart(c.settings)
}

// ReconcileBalance сверяет итог заказа с балансом клиента. Чистая функция:
// чистый баланс = дебиторка - аванс; при отрицательном балансе заказ
// в пользу клиента; общий итог = итог заказа + чистый баланс.
func ReconcileBalance(receivable, advance, total Money) BalanceSummary {
	net := receivable.Sub(advance)
	return BalanceSummary{
		NetBalance: net,
		IsPayable:  net.IsNegative(),
		GrandTotal: total.Add(net),
	}
}

// lineTaxRate возвращает налоговую ставку для товара:
// собственная ставка товара, иначе общая ставка сервиса.
func (c *Cart) lineTaxRate(item CatalogItem) float64 {
	if item.TaxRatePercent != nil {
		return *item.TaxRatePercent
	}
	return c.settings.FlatTaxRatePercent
}

// recomputeLine пересчитывает производные суммы позиции.
// Инвариант: Total == Subtotal - DiscountAmount + TaxAmount.
func (c *Cart) recomputeLine(line *CartLine) {
	line.Subtotal = line.UnitPrice.Multiply(line.Quantity)

	if c.TaxExempt {
		line.TaxAmount = line.Subtotal.Zero()
	} else {
		line.TaxAmount = line.Subtotal.Percent(line.TaxRatePercent)
	}

	line.Total = line.Subtotal.Sub(line.DiscountAmount).Add(line.TaxAmount)
}

// displayName возвращает название позиции для сортировки.
func (l *CartLine) displayName() string {
	if l.Item.DisplayName != "" {
		return l.Item.DisplayName
	}
	return l.Item.Name
}
