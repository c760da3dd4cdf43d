package domain

// PriceTier — ценовой уровень заказа.
// Определяет, какое поле цены товара используется по умолчанию.
type PriceTier string

const (
	// TierRetail — розничный уровень.
	TierRetail PriceTier = "retail"

	// TierWholesale — оптовый уровень.
	TierWholesale PriceTier = "wholesale"

	// TierDistributor — дистрибьюторский уровень.
	TierDistributor PriceTier = "distributor"

	// TierCustom — произвольные цены: уровень даёт лишь начальное предложение
	// (по оптовой цепочке), дальше цену свободно задаёт оператор.
	TierCustom PriceTier = "custom"
)

// Valid проверяет, что уровень известен движку.
func (t PriceTier) Valid() bool {
	switch t {
	case TierRetail, TierWholesale, TierDistributor, TierCustom:
		return true
	}
	return false
}

// ResolveUnitPrice разрешает цену за единицу для товара и ценового уровня.
// Чистая функция без ошибок: при отсутствии всех подходящих уровней
// возвращает ноль в валюте товара.
//
// Цепочки запасных вариантов:
//   - distributor: дистрибьюторская → оптовая → розничная → 0
//   - wholesale:   оптовая → розничная → 0
//   - retail:      розничная → 0
//   - custom:      как wholesale (только начальное предложение)
func ResolveUnitPrice(item CatalogItem, tier PriceTier) Money {
	p := item.Pricing

	switch tier {
	case TierDistributor:
		if p.Distributor != nil {
			return *p.Distributor
		}
		fallthrough
	case TierWholesale, TierCustom:
		if p.Wholesale != nil {
			return *p.Wholesale
		}
		fallthrough
	default:
		if p.Retail != nil {
			return *p.Retail
		}
	}

	return Money{Currency: item.Currency}
}
