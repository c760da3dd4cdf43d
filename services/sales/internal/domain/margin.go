package domain

// MarginStatus — классификация позиции по отношению цены продажи к себестоимости.
type MarginStatus string

const (
	// MarginNoCostData — себестоимость неизвестна, предупреждения недоступны.
	MarginNoCostData MarginStatus = "NO_COST_DATA"

	// MarginAtOrAboveCost — продажа по себестоимости или выше.
	MarginAtOrAboveCost MarginStatus = "AT_OR_ABOVE_COST"

	// MarginBelowCost — продажа ниже себестоимости, требует подтверждения.
	MarginBelowCost MarginStatus = "BELOW_COST"
)

// MarginReport — результат анализа маржи позиции.
// Поля убытка заполнены только при статусе BELOW_COST.
type MarginReport struct {
	Status      MarginStatus // Классификация позиции
	LossPerUnit Money        // Убыток на единицу (себестоимость - цена продажи)
	LossPercent float64      // Убыток в процентах от себестоимости
}

// EvaluateLine классифицирует позицию по цене продажи и себестоимости.
// Анализатор никогда не блокирует операцию — он только классифицирует;
// барьер подтверждения для BELOW_COST реализует корзина.
func EvaluateLine(salePrice Money, costPrice *Money) MarginReport {
	if costPrice == nil {
		return MarginReport{Status: MarginNoCostData}
	}

	if salePrice.Amount >= costPrice.Amount {
		return MarginReport{Status: MarginAtOrAboveCost}
	}

	loss := costPrice.Sub(salePrice)

	// Здесь costPrice.Amount > salePrice.Amount >= 0, деление безопасно.
	return MarginReport{
		Status:      MarginBelowCost,
		LossPerUnit: loss,
		LossPercent: float64(loss.Amount) / float64(costPrice.Amount) * 100.0,
	}
}
