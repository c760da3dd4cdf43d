// Package domain содержит движок составления заказа и динамического
// ценообразования консоли продаж: корзину, разрешение цен по ценовым уровням,
// контроль остатков, анализ маржи и наложение исторических цен.
package domain

import "math"

// Money — денежная сумма с валютой.
// Хранит сумму в минимальных единицах (копейки, центы) для избежания проблем с плавающей точкой.
type Money struct {
	Currency string // ISO 4217 код валюты (USD, RUB, EUR)
	Amount   int64  // Сумма в минимальных единицах (копейки/центы)
}

// Multiply умножает сумму на количество.
// Используется для расчёта стоимости позиции (цена * количество).
func (m Money) Multiply(quantity int32) Money {
	return Money{
		Currency: m.Currency,
		Amount:   m.Amount * int64(quantity),
	}
}

// Add складывает две суммы. Валюта берётся из приёмника —
// движок работает в одной валюте (см. конфигурацию Sales).
func (m Money) Add(other Money) Money {
	return Money{
		Currency: m.Currency,
		Amount:   m.Amount + other.Amount,
	}
}

// Sub вычитает сумму other.
func (m Money) Sub(other Money) Money {
	return Money{
		Currency: m.Currency,
		Amount:   m.Amount - other.Amount,
	}
}

// Percent возвращает долю суммы в процентах с округлением
// до ближайшей минимальной единицы. Используется для расчёта налога.
func (m Money) Percent(percent float64) Money {
	if percent == 0 {
		return Money{Currency: m.Currency}
	}
	amount := math.Round(float64(m.Amount) * percent / 100.0)
	// Защита от нечисловых промежуточных значений — вклад считается нулевым.
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{Currency: m.Currency}
	}
	return Money{
		Currency: m.Currency,
		Amount:   int64(amount),
	}
}

// IsNegative возвращает true для отрицательной суммы.
func (m Money) IsNegative() bool {
	return m.Amount < 0
}

// Zero возвращает нулевую сумму в валюте приёмника.
func (m Money) Zero() Money {
	return Money{Currency: m.Currency}
}
