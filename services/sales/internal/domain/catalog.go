package domain

// CatalogItem — продаваемая единица каталога: базовый товар или вариант товара.
// Неизменяемый снимок, поставляемый внешним каталогом; движок его не мутирует.
// Позиция корзины хранит копию снимка, чтобы последующие изменения каталога
// (например, остатков) не искажали заказ в работе.
type CatalogItem struct {
	ID            string      // Уникальный идентификатор единицы каталога
	BaseProductID string      // ID базового товара (для вариантов; у базовых совпадает с ID)
	IsVariant     bool        // true, если это вариант товара
	Name          string      // Системное название
	DisplayName   string      // Отображаемое название (для сортировки и UI)
	VariantType   string      // Тип варианта ("цвет", "размер"), пусто для базовых товаров
	VariantValue  string      // Значение варианта ("красный", "XL")
	Currency      string      // Валюта цен товара
	Pricing       TierPricing // Цены по ценовым уровням
	Inventory     Inventory   // Текущее состояние остатков
	TaxRatePercent *float64   // Собственная налоговая ставка товара, nil — используется общая ставка заказа
}

// TierPricing — цены товара по уровням. Любой уровень может отсутствовать,
// разрешение с запасным вариантом выполняет ResolveUnitPrice.
type TierPricing struct {
	Retail        *Money // Розничная цена
	Wholesale     *Money // Оптовая цена
	Distributor   *Money // Дистрибьюторская цена
	Cost          *Money // Себестоимость (последняя известная)
	PurchasePrice *Money // Закупочная цена
	WholesaleCost *Money // Оптовая себестоимость
}

// Inventory — состояние остатков единицы каталога на момент снимка.
type Inventory struct {
	CurrentStock int32 // Текущий остаток
	ReorderPoint int32 // Точка дозаказа
}

// SnapshotCost возвращает себестоимость из снимка по приоритету:
// себестоимость → закупочная цена → оптовая себестоимость. nil, если данных нет.
func (p TierPricing) SnapshotCost() *Money {
	switch {
	case p.Cost != nil:
		return p.Cost
	case p.PurchasePrice != nil:
		return p.PurchasePrice
	case p.WholesaleCost != nil:
		return p.WholesaleCost
	default:
		return nil
	}
}
