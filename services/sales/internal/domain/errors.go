package domain

import "errors"

// Доменные ошибки движка корзины.
// Используются для передачи бизнес-ошибок между слоями приложения.
var (
	// ErrInvalidQuantity возвращается, когда количество товара меньше или равно нулю.
	ErrInvalidQuantity = errors.New("количество должно быть больше нуля")

	// ErrInvalidPrice возвращается при отрицательной цене за единицу.
	ErrInvalidPrice = errors.New("цена не может быть отрицательной")

	// ErrInvalidPriceTier возвращается при неизвестном ценовом уровне.
	ErrInvalidPriceTier = errors.New("неизвестный ценовой уровень")

	// ErrLineNotFound возвращается при обращении к позиции по несуществующему индексу.
	ErrLineNotFound = errors.New("позиция корзины не найдена")

	// ErrEmptyCart возвращается для операций, требующих хотя бы одну позицию.
	ErrEmptyCart = errors.New("корзина пуста")

	// ErrNoCustomer возвращается, когда операция требует выбранного клиента.
	ErrNoCustomer = errors.New("клиент не выбран")

	// ErrOutOfStock возвращается, когда товара нет на складе.
	ErrOutOfStock = errors.New("товар отсутствует на складе")

	// ErrExceedsStock возвращается, когда запрошенное количество превышает остаток.
	ErrExceedsStock = errors.New("запрошенное количество превышает остаток на складе")

	// ErrBelowCost — мягкий барьер: продажа ниже закупочной цены требует
	// явного подтверждения вызывающей стороны. Сам по себе продажу не блокирует.
	ErrBelowCost = errors.New("цена продажи ниже закупочной, требуется подтверждение")

	// ErrNoPriorOrder возвращается, когда у клиента нет предыдущего заказа с ценами.
	ErrNoPriorOrder = errors.New("у клиента нет предыдущего заказа")

	// ErrNothingToRestore возвращается при попытке отменить наложение цен,
	// когда сохранённых исходных цен нет.
	ErrNothingToRestore = errors.New("нет сохранённых исходных цен для восстановления")

	// ErrSessionNotFound возвращается, когда сессия корзины не найдена.
	ErrSessionNotFound = errors.New("сессия корзины не найдена")

	// ErrItemNotFound возвращается, когда товар каталога не найден.
	ErrItemNotFound = errors.New("товар не найден в каталоге")

	// ErrCustomerNotFound возвращается, когда клиент не найден.
	ErrCustomerNotFound = errors.New("клиент не найден")

	// ErrOrderNotFound возвращается, когда сохранённый заказ не найден.
	ErrOrderNotFound = errors.New("заказ не найден")

	// ErrDuplicateOrderNumber возвращается при сохранении заказа
	// с уже существующим номером.
	ErrDuplicateOrderNumber = errors.New("заказ с таким номером уже существует")
)
