// Package handler содержит HTTP обработчики REST API Sales Service.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/sales-console/pkg/breaker"
	"example.com/sales-console/pkg/logger"
	"example.com/sales-console/services/sales/internal/domain"
)

// ErrorResponse — стандартный формат ошибки API.
// Error — машиночитаемый код для консоли продаж, Message — текст оператору.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HandleDomainError преобразует доменную ошибку в HTTP ответ.
// Используется всеми handlers для единообразной обработки ошибок.
// ВАЖНО: err не должен быть nil — это баг в вызывающем коде.
func HandleDomainError(c *gin.Context, err error, method string) {
	if err == nil {
		logger.Error().Str("method", method).Msg("HandleDomainError вызван с nil ошибкой — баг в коде")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Внутренняя ошибка сервера",
		})
		return
	}

	log := logger.FromContext(c.Request.Context())

	var httpStatus int
	var errorCode string

	switch {
	// 400 — невалидные данные запроса
	case errors.Is(err, domain.ErrInvalidQuantity):
		httpStatus, errorCode = http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, domain.ErrInvalidPrice):
		httpStatus, errorCode = http.StatusBadRequest, "invalid_price"
	case errors.Is(err, domain.ErrInvalidPriceTier):
		httpStatus, errorCode = http.StatusBadRequest, "invalid_price_tier"

	// 404 — сущность не найдена
	case errors.Is(err, domain.ErrSessionNotFound):
		httpStatus, errorCode = http.StatusNotFound, "session_not_found"
	case errors.Is(err, domain.ErrLineNotFound):
		httpStatus, errorCode = http.StatusNotFound, "line_not_found"
	case errors.Is(err, domain.ErrItemNotFound):
		httpStatus, errorCode = http.StatusNotFound, "item_not_found"
	case errors.Is(err, domain.ErrCustomerNotFound):
		httpStatus, errorCode = http.StatusNotFound, "customer_not_found"
	case errors.Is(err, domain.ErrNoPriorOrder):
		httpStatus, errorCode = http.StatusNotFound, "no_prior_order"
	case errors.Is(err, domain.ErrOrderNotFound):
		httpStatus, errorCode = http.StatusNotFound, "order_not_found"

	// 409 — конфликт с текущим состоянием корзины или склада
	case errors.Is(err, domain.ErrOutOfStock):
		httpStatus, errorCode = http.StatusConflict, "out_of_stock"
	case errors.Is(err, domain.ErrExceedsStock):
		httpStatus, errorCode = http.StatusConflict, "exceeds_stock"
	case errors.Is(err, domain.ErrBelowCost):
		httpStatus, errorCode = http.StatusConflict, "below_cost"
	case errors.Is(err, domain.ErrEmptyCart):
		httpStatus, errorCode = http.StatusConflict, "empty_cart"
	case errors.Is(err, domain.ErrNoCustomer):
		httpStatus, errorCode = http.StatusConflict, "no_customer"
	case errors.Is(err, domain.ErrNothingToRestore):
		httpStatus, errorCode = http.StatusConflict, "nothing_to_restore"
	case errors.Is(err, domain.ErrDuplicateOrderNumber):
		httpStatus, errorCode = http.StatusConflict, "duplicate_order_number"

	// 503 — внешний коллаборатор недоступен (circuit breaker открыт)
	case errors.Is(err, breaker.ErrUnavailable):
		httpStatus, errorCode = http.StatusServiceUnavailable, "service_unavailable"

	default:
		httpStatus, errorCode = http.StatusInternalServerError, "internal_error"
		log.Error().
			Err(err).
			Str("method", method).
			Msg("Внутренняя ошибка")
		c.JSON(httpStatus, ErrorResponse{
			Error:   errorCode,
			Message: "Внутренняя ошибка сервера",
		})
		return
	}

	c.JSON(httpStatus, ErrorResponse{
		Error:   errorCode,
		Message: err.Error(),
	})
}
