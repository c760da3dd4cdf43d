package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"example.com/sales-console/pkg/logger"
	"example.com/sales-console/services/sales/internal/domain"
	"example.com/sales-console/services/sales/internal/service"
)

// CartHandler — обработчик сессий корзины.
type CartHandler struct {
	carts service.CartService
}

// NewCartHandler создаёт новый обработчик корзины.
func NewCartHandler(carts service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// === Request/Response DTOs ===

// MoneyRequest — денежная сумма в запросе.
type MoneyRequest struct {
	Amount   int64  `json:"amount" binding:"min=0"`
	Currency string `json:"currency" binding:"required,len=3"`
}

// MoneyResponse — денежная сумма в ответе.
type MoneyResponse struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateSessionResponse — ответ на открытие сессии.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// AddLineRequest — запрос на добавление позиции.
type AddLineRequest struct {
	ItemID          string        `json:"item_id" binding:"required"`
	Quantity        int32         `json:"quantity" binding:"required,min=1"`
	UnitPrice       *MoneyRequest `json:"unit_price,omitempty"`
	OverrideStock   bool          `json:"override_stock"`
	AcceptBelowCost bool          `json:"accept_below_cost"`
}

// UpdateQuantityRequest — запрос на изменение количества позиции.
type UpdateQuantityRequest struct {
	Quantity      int32 `json:"quantity"`
	OverrideStock bool  `json:"override_stock"`
}

// UpdatePriceRequest — запрос на изменение цены позиции.
type UpdatePriceRequest struct {
	UnitPrice       MoneyRequest `json:"unit_price" binding:"required"`
	AcceptBelowCost bool         `json:"accept_below_cost"`
}

// SetPriceTierRequest — запрос на смену ценового уровня.
type SetPriceTierRequest struct {
	Tier string `json:"tier" binding:"required"`
}

// SetTaxExemptRequest — запрос на освобождение заказа от налога.
type SetTaxExemptRequest struct {
	Exempt bool `json:"exempt"`
}

// SetCustomerRequest — запрос на назначение клиента.
type SetCustomerRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
}

// SetOrderNumberRequest — запрос на ручной номер заказа.
// Пустой номер возвращает автогенерацию.
type SetOrderNumberRequest struct {
	OrderNumber string `json:"order_number"`
}

// SetNotesRequest — запрос на изменение примечаний.
type SetNotesRequest struct {
	Notes string `json:"notes"`
}

// SubmitRequest — запрос на отправку заказа.
type SubmitRequest struct {
	// OrderID существующего заказа: непустой — перезапись вместо создания.
	OrderID       string `json:"order_id"`
	OverrideStock bool   `json:"override_stock"`
}

// MarginResponse — результат анализа маржи в ответе.
type MarginResponse struct {
	Status      string         `json:"status"`
	LossPerUnit *MoneyResponse `json:"loss_per_unit,omitempty"`
	LossPercent float64        `json:"loss_percent,omitempty"`
}

// LineResponse — позиция корзины в ответе.
type LineResponse struct {
	Index          int           `json:"index"`
	ItemID         string        `json:"item_id"`
	Name           string        `json:"name"`
	Quantity       int32         `json:"quantity"`
	UnitPrice      MoneyResponse `json:"unit_price"`
	ManuallyEdited bool          `json:"manually_edited"`
	TaxRatePercent float64       `json:"tax_rate_percent"`
	Subtotal       MoneyResponse `json:"subtotal"`
	Discount       MoneyResponse `json:"discount"`
	Tax            MoneyResponse `json:"tax"`
	Total          MoneyResponse `json:"total"`
}

// TotalsResponse — итоги заказа в ответе.
type TotalsResponse struct {
	Subtotal      MoneyResponse `json:"subtotal"`
	TotalDiscount MoneyResponse `json:"total_discount"`
	TotalTax      MoneyResponse `json:"total_tax"`
	Total         MoneyResponse `json:"total"`
}

// OverlayStatusResponse — состояние наложения исторических цен.
type OverlayStatusResponse struct {
	Applied bool              `json:"applied"`
	Lines   map[string]string `json:"lines"`
}

// OverlayResultResponse — итог применения исторических цен.
type OverlayResultResponse struct {
	Updated     int    `json:"updated"`
	Unchanged   int    `json:"unchanged"`
	NotFound    int    `json:"not_found"`
	OrderNumber string `json:"source_order_number"`
	OrderDate   string `json:"source_order_date"`
}

// CartResponse — снимок корзины в ответе.
type CartResponse struct {
	SessionID    string                `json:"session_id"`
	OrderType    string                `json:"order_type"`
	PriceTier    string                `json:"price_tier"`
	TaxExempt    bool                  `json:"tax_exempt"`
	OrderNumber  string                `json:"order_number"`
	AutoNumber   bool                  `json:"auto_number"`
	CustomerID   string                `json:"customer_id,omitempty"`
	CustomerName string                `json:"customer_name,omitempty"`
	Notes        string                `json:"notes,omitempty"`
	Lines        []LineResponse        `json:"lines"`
	Totals       TotalsResponse        `json:"totals"`
	Overlay      OverlayStatusResponse `json:"overlay"`
}

// AddLineResponse — ответ на добавление или изменение позиции.
type AddLineResponse struct {
	Margin MarginResponse `json:"margin"`
	Cart   CartResponse   `json:"cart"`
}

// BalanceResponse — сверка итога заказа с балансом клиента.
type BalanceResponse struct {
	NetBalance MoneyResponse `json:"net_balance"`
	IsPayable  bool          `json:"is_payable"`
	GrandTotal MoneyResponse `json:"grand_total"`
}

// ProfitResponse — оценка прибыли заказа.
type ProfitResponse struct {
	Profit MoneyResponse `json:"profit"`
}

// SubmitResponse — ответ на отправку заказа.
type SubmitResponse struct {
	OrderID     string         `json:"order_id"`
	OrderNumber string         `json:"order_number"`
	Totals      TotalsResponse `json:"totals"`
}

// CatalogItemResponse — единица каталога в результатах поиска.
type CatalogItemResponse struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	DisplayName      string         `json:"display_name"`
	IsVariant        bool           `json:"is_variant"`
	RetailPrice      *MoneyResponse `json:"retail_price,omitempty"`
	WholesalePrice   *MoneyResponse `json:"wholesale_price,omitempty"`
	DistributorPrice *MoneyResponse `json:"distributor_price,omitempty"`
	CurrentStock     int32          `json:"current_stock"`
	ReorderPoint     int32          `json:"reorder_point"`
	LowStock         bool           `json:"low_stock"`
}

// SearchCatalogResponse — ответ на поиск по каталогу.
type SearchCatalogResponse struct {
	Items []CatalogItemResponse `json:"items"`
}

// === Handlers ===

// CreateSession открывает новую сессию корзины.
// POST /api/v1/cart/sessions
func (h *CartHandler) CreateSession(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, err := h.carts.CreateSession(ctx)
	if err != nil {
		HandleDomainError(c, err, "CreateSession")
		return
	}

	c.JSON(http.StatusCreated, CreateSessionResponse{SessionID: sessionID})
}

// GetCart возвращает снимок корзины.
// GET /api/v1/cart/sessions/:id
func (h *CartHandler) GetCart(c *gin.Context) {
	snap, err := h.carts.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleDomainError(c, err, "GetCart")
		return
	}

	c.JSON(http.StatusOK, cartToResponse(snap))
}

// CloseSession закрывает сессию корзины.
// DELETE /api/v1/cart/sessions/:id
func (h *CartHandler) CloseSession(c *gin.Context) {
	if err := h.carts.CloseSession(c.Request.Context(), c.Param("id")); err != nil {
		HandleDomainError(c, err, "CloseSession")
		return
	}

	c.Status(http.StatusNoContent)
}

// AddLine добавляет позицию в корзину.
// POST /api/v1/cart/sessions/:id/lines
func (h *CartHandler) AddLine(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	var req AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Msg("Невалидный запрос на добавление позиции")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Невалидные данные запроса",
		})
		return
	}

	in := service.AddLineInput{
		ItemID:   req.ItemID,
		Quantity: req.Quantity,
		Options: domain.AddOptions{
			OverrideStock:   req.OverrideStock,
			AcceptBelowCost: req.AcceptBelowCost,
		},
	}
	if req.UnitPrice != nil {
		in.UnitPrice = &domain.Money{
			Currency: req.UnitPrice.Currency,
			Amount:   req.UnitPrice.Amount,
		}
	}

	report, err := h.carts.AddLine(ctx, c.Param("id"), in)
	if err != nil {
		h.handleMarginError(c, report, err, "AddLine")
		return
	}

	snap, err := h.carts.Snapshot(ctx, c.Param("id"))
	if err != nil {
		HandleDomainError(c, err, "AddLine")
		return
	}

	c.JSON(http.StatusCreated, AddLineResponse{
		Margin: marginToResponse(report),
		Cart:   cartToResponse(snap),
	})
}

// UpdateQuantity изменяет количество позиции.
// PATCH /api/v1/cart/sessions/:id/lines/:index/quantity
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	ctx := c.Request.Context()

	index, ok := h.lineIndex(c)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Невалидные данные запроса",
		})
		return
	}

	opts := domain.AddOptions{OverrideStock: req.OverrideStock}
	if err := h.carts.UpdateQuantity(ctx, c.Param("id"), index, req.Quantity, opts); err != nil {
		HandleDomainError(c, err, "UpdateQuantity")
		return
	}

	h.respondWithCart(c, "UpdateQuantity")
}

// UpdateUnitPrice изменяет цену позиции.
// PATCH /api/v1/cart/sessions/:id/lines/:index/price
func (h *CartHandler) UpdateUnitPrice(c *gin.Context) {
	ctx := c.Request.Context()

	index, ok := h.lineIndex(c)
	if !ok {
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Невалидные данные запроса",
		})
		return
	}

	price := domain.Money{Currency: req.UnitPrice.Currency, Amount: req.UnitPrice.Amount}
	opts := domain.AddOptions{AcceptBelowCost: req.AcceptBelowCost}

	report, err := h.carts.UpdateUnitPrice(ctx, c.Param("id"), index, price, opts)
	if err != nil {
		h.handleMarginError(c, report, err, "UpdateUnitPrice")
		return
	}

	snap, err := h.carts.Snapshot(ctx, c.Param("id"))
	if err != nil {
		HandleDomainError(c, err, "UpdateUnitPrice")
		return
	}

	c.JSON(http.StatusOK, AddLineResponse{
		Margin: marginToResponse(report),
		Cart:   cartToResponse(snap),
	})
}

// RemoveLine удаляет позицию по индексу.
// DELETE /api/v1/cart/sessions/:id/lines/:index
func (h *CartHandler) RemoveLine(c *gin.Context) {
	index, ok := h.lineIndex(c)
	if !ok {
		return
	}

	if err := h.carts.RemoveLine(c.Request.Context(), c.Param("id"), index); err != nil {
		HandleDomainError(c, err, "RemoveLine")
		return
	}

	h.respondWithCart(c, "RemoveLine")
}

// SortLines сортирует позиции корзины по названию.
// POST /api/v1/cart/sessions/:id/lines/sort
func (h *CartHandler) SortLines(c *gin.Context) {
	if err := h.carts.SortLines(c.Request.Context(), c.Param("id")); err != nil {
		HandleDomainError(c, err, "SortLines")
		return
	}

	h.respondWithCart(c, "SortLines")
}

// SetPriceTier переключает ценовой уровень заказа.
// PUT /api/v1/cart/sessions/:id/price-tier
func (h *CartHandler) SetPriceTier(c *gin.Context) {
	var req SetPriceTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Невалидные данные запроса",
		})
		return
	}

	tier := domain.PriceTier(req.Tier)
	if err := h.carts.SetPriceTier(c.Request.Context(), c.Param("id"), tier); err != nil {
		HandleDomainError(c, err, "SetPriceTier")
		return
	}

	h.respondWithCart(c, "SetPriceTier")
}

// SetTaxExempt переключает освобождение заказа от налога.
// PUT /api/v1/cart/sessions/:id/tax-exempt
func (h *CartHandler) SetTaxExempt(c *gin.Context) {
	var req SetTaxExemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Невалидные данные запроса",
		})
		return
	}

	if err := h.carts.SetTaxExempt(c.Request.Context(), c.Param("id"), req.Exempt); err != nil {
		HandleDomainError(c, err, "SetTaxExempt")
		return
	}

	h.respondWithCart(c, "SetTaxExempt")
}

// SetCustomer назначает клиента корзины.
// PUT /api/v1/cart/sessions/:id/customer
func (h *CartHandler) SetCustomer(c *gin.Context) {
	var req SetCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "ID клиента обязателен",
		})
		return
	}

	if err := h.carts.SetCustomer(c.Request.Context(), c.Param("id"), req.CustomerID); err != nil {
		HandleDomainError(c, err, "SetCustomer")
		return
	}

	h.respondWithCart(c, "SetCustomer")
}

// SetOrderNumber задаёт номер заказа вручную.
// PUT /api/v1/cart/sessions/:id/order-number
func (h *CartHandler) SetOrderNumber(c *gin.Context) {
	var req SetOrderNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Невалидные данные запроса",
		})
		return
	}

	if err := h.carts.SetOrderNumber(c.Request.Context(), c.Param("id"), req.OrderNumber); err != nil {
		HandleDomainError(c, err, "SetOrderNumber")
		return
	}

	h.respondWithCart(c, "SetOrderNumber")
}

// SetNotes задаёт примечания оператора.
// PUT /api/v1/cart/sessions/:id/notes
func (h *CartHandler) SetNotes(c *gin.Context) {
	var req SetNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Невалидные данные запроса",
		})
		return
	}

	if err := h.carts.SetNotes(c.Request.Context(), c.Param("id"), req.Notes); err != nil {
		HandleDomainError(c, err, "SetNotes")
		return
	}

	h.respondWithCart(c, "SetNotes")
}

// ApplyOverlay накладывает цены последнего заказа клиента.
// POST /api/v1/cart/sessions/:id/overlay
func (h *CartHandler) ApplyOverlay(c *gin.Context) {
	result, err := h.carts.ApplyLastPrices(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleDomainError(c, err, "ApplyOverlay")
		return
	}

	resp := OverlayResultResponse{
		Updated:     result.Updated,
		Unchanged:   result.Unchanged,
		NotFound:    result.NotFound,
		OrderNumber: result.OrderNumber,
	}
	if !result.OrderDate.IsZero() {
		resp.OrderDate = result.OrderDate.Format("2006-01-02")
	}

	c.JSON(http.StatusOK, resp)
}

// RestoreOverlay отменяет наложение исторических цен.
// DELETE /api/v1/cart/sessions/:id/overlay
func (h *CartHandler) RestoreOverlay(c *gin.Context) {
	if err := h.carts.RestoreOriginalPrices(c.Request.Context(), c.Param("id")); err != nil {
		HandleDomainError(c, err, "RestoreOverlay")
		return
	}

	h.respondWithCart(c, "RestoreOverlay")
}

// GetOverlayStatus возвращает состояние наложения цен.
// GET /api/v1/cart/sessions/:id/overlay
func (h *CartHandler) GetOverlayStatus(c *gin.Context) {
	status, err := h.carts.OverlayStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleDomainError(c, err, "GetOverlayStatus")
		return
	}

	c.JSON(http.StatusOK, overlayToResponse(status))
}

// GetTotals возвращает итоги заказа.
// GET /api/v1/cart/sessions/:id/totals
func (h *CartHandler) GetTotals(c *gin.Context) {
	totals, err := h.carts.Totals(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleDomainError(c, err, "GetTotals")
		return
	}

	c.JSON(http.StatusOK, totalsToResponse(totals))
}

// GetProfit возвращает оценку прибыли заказа.
// GET /api/v1/cart/sessions/:id/profit
func (h *CartHandler) GetProfit(c *gin.Context) {
	profit, err := h.carts.Profit(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleDomainError(c, err, "GetProfit")
		return
	}

	c.JSON(http.StatusOK, ProfitResponse{Profit: moneyToResponse(profit)})
}

// GetBalance сверяет итог заказа с балансом клиента.
// GET /api/v1/cart/sessions/:id/balance
func (h *CartHandler) GetBalance(c *gin.Context) {
	summary, err := h.carts.Balance(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleDomainError(c, err, "GetBalance")
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{
		NetBalance: moneyToResponse(summary.NetBalance),
		IsPayable:  summary.IsPayable,
		GrandTotal: moneyToResponse(summary.GrandTotal),
	})
}

// Submit отправляет заказ во внешнее хранилище.
// POST /api/v1/cart/sessions/:id/submit
func (h *CartHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	// Body опционален: пустой запрос — отправка без переопределений
	var req SubmitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "Невалидные данные запроса",
			})
			return
		}
	}

	result, err := h.carts.Submit(ctx, c.Param("id"), service.SubmitInput{
		OrderID:       req.OrderID,
		OverrideStock: req.OverrideStock,
	})
	if err != nil {
		HandleDomainError(c, err, "Submit")
		return
	}

	log.Info().
		Str("order_id", result.OrderID).
		Str("order_number", result.OrderNumber).
		Msg("Заказ отправлен")

	c.JSON(http.StatusCreated, SubmitResponse{
		OrderID:     result.OrderID,
		OrderNumber: result.OrderNumber,
		Totals:      totalsToResponse(result.Totals),
	})
}

// SearchCatalog ищет товары и варианты по подстроке названия.
// GET /api/v1/catalog?q=болт&limit=20
func (h *CartHandler) SearchCatalog(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Параметр q обязателен",
		})
		return
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	items, err := h.carts.SearchCatalog(c.Request.Context(), query, limit)
	if err != nil {
		HandleDomainError(c, err, "SearchCatalog")
		return
	}

	resp := SearchCatalogResponse{Items: make([]CatalogItemResponse, len(items))}
	for i := range items {
		resp.Items[i] = catalogItemToResponse(&items[i])
	}

	c.JSON(http.StatusOK, resp)
}

// === Helper functions ===

// lineIndex извлекает индекс позиции из path-параметра.
func (h *CartHandler) lineIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Невалидный индекс позиции",
		})
		return 0, false
	}
	return index, true
}

// respondWithCart отвечает актуальным снимком корзины.
func (h *CartHandler) respondWithCart(c *gin.Context, method string) {
	snap, err := h.carts.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleDomainError(c, err, method)
		return
	}
	c.JSON(http.StatusOK, cartToResponse(snap))
}

// handleMarginError отвечает на ошибку с отчётом маржи: для below_cost
// оператору возвращаются детали убытка для диалога подтверждения.
func (h *CartHandler) handleMarginError(c *gin.Context, report domain.MarginReport, err error, method string) {
	if errors.Is(err, domain.ErrBelowCost) {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "below_cost",
			"message": err.Error(),
			"margin":  marginToResponse(report),
		})
		return
	}
	HandleDomainError(c, err, method)
}

// moneyToResponse преобразует domain.Money в MoneyResponse.
func moneyToResponse(m domain.Money) MoneyResponse {
	return MoneyResponse{Amount: m.Amount, Currency: m.Currency}
}

// moneyPtrToResponse преобразует *domain.Money в *MoneyResponse.
func moneyPtrToResponse(m *domain.Money) *MoneyResponse {
	if m == nil {
		return nil
	}
	r := moneyToResponse(*m)
	return &r
}

// marginToResponse преобразует отчёт анализа маржи в DTO.
func marginToResponse(r domain.MarginReport) MarginResponse {
	resp := MarginResponse{Status: string(r.Status)}
	if r.Status == domain.MarginBelowCost {
		resp.LossPerUnit = moneyPtrToResponse(&r.LossPerUnit)
		resp.LossPercent = r.LossPercent
	}
	return resp
}

// totalsToResponse преобразует итоги заказа в DTO.
func totalsToResponse(t domain.Totals) TotalsResponse {
	return TotalsResponse{
		Subtotal:      moneyToResponse(t.Subtotal),
		TotalDiscount: moneyToResponse(t.TotalDiscount),
		TotalTax:      moneyToResponse(t.TotalTax),
		Total:         moneyToResponse(t.Total),
	}
}

// overlayToResponse преобразует состояние наложения в DTO.
func overlayToResponse(s domain.OverlayStatus) OverlayStatusResponse {
	lines := make(map[string]string, len(s.Lines))
	for id, st := range s.Lines {
		lines[id] = string(st)
	}
	return OverlayStatusResponse{Applied: s.Applied, Lines: lines}
}

// cartToResponse преобразует снимок корзины в DTO.
func cartToResponse(snap service.CartSnapshot) CartResponse {
	lines := make([]LineResponse, len(snap.Lines))
	for i := range snap.Lines {
		line := &snap.Lines[i]
		lines[i] = LineResponse{
			Index:          i,
			ItemID:         line.CatalogItemID,
			Name:           line.Item.DisplayName,
			Quantity:       line.Quantity,
			UnitPrice:      moneyToResponse(line.UnitPrice),
			ManuallyEdited: line.ManuallyEdited,
			TaxRatePercent: line.TaxRatePercent,
			Subtotal:       moneyToResponse(line.Subtotal),
			Discount:       moneyToResponse(line.DiscountAmount),
			Tax:            moneyToResponse(line.TaxAmount),
			Total:          moneyToResponse(line.Total),
		}
	}

	return CartResponse{
		SessionID:    snap.SessionID,
		OrderType:    snap.OrderType,
		PriceTier:    string(snap.PriceTier),
		TaxExempt:    snap.TaxExempt,
		OrderNumber:  snap.OrderNumber,
		AutoNumber:   snap.AutoNumber,
		CustomerID:   snap.CustomerID,
		CustomerName: snap.CustomerName,
		Notes:        snap.Notes,
		Lines:        lines,
		Totals:       totalsToResponse(snap.Totals),
		Overlay:      overlayToResponse(snap.Overlay),
	}
}

// catalogItemToResponse преобразует единицу каталога в DTO поиска.
func catalogItemToResponse(item *domain.CatalogItem) CatalogItemResponse {
	return CatalogItemResponse{
		ID:               item.ID,
		Name:             item.Name,
		DisplayName:      item.DisplayName,
		IsVariant:        item.IsVariant,
		RetailPrice:      moneyPtrToResponse(item.Pricing.Retail),
		WholesalePrice:   moneyPtrToResponse(item.Pricing.Wholesale),
		DistributorPrice: moneyPtrToResponse(item.Pricing.Distributor),
		CurrentStock:     item.Inventory.CurrentStock,
		ReorderPoint:     item.Inventory.ReorderPoint,
		LowStock:         item.Inventory.CurrentStock <= item.Inventory.ReorderPoint,
	}
}
