package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"example.com/sales-console/pkg/breaker"
	"example.com/sales-console/pkg/kafka"
	"example.com/sales-console/pkg/logger"
	"example.com/sales-console/pkg/metrics"
	"example.com/sales-console/services/sales/internal/domain"
	"example.com/sales-console/services/sales/internal/repository"
)

// EventPublisher отправляет доменные события во внешнюю шину.
// Реализуется kafka.Producer; nil отключает публикацию событий.
type EventPublisher interface {
	Send(ctx context.Context, topic string, key []byte, value []byte) error
}

// AddLineInput — параметры добавления позиции в корзину.
type AddLineInput struct {
	ItemID    string            // ID единицы каталога
	Quantity  int32             // Запрошенное количество
	UnitPrice *domain.Money     // Явная цена; nil — разрешение по уровню
	Options   domain.AddOptions // Переопределения мягких барьеров
}

// CartSnapshot — снимок состояния корзины для отдачи наружу.
type CartSnapshot struct {
	SessionID    string
	OrderType    string
	PriceTier    domain.PriceTier
	TaxExempt    bool
	OrderNumber  string
	AutoNumber   bool
	CustomerID   string
	CustomerName string
	Notes        string
	Lines        []domain.CartLine
	Totals       domain.Totals
	Overlay      domain.OverlayStatus
}

// SubmitInput — параметры отправки заказа.
type SubmitInput struct {
	// OrderID — ID существующего заказа; при непустом значении корзина
	// перезаписывает его вместо создания нового.
	OrderID string

	// OverrideStock подтверждает отправку при нехватке остатков.
	OverrideStock bool
}

// SubmitResult — итог отправки заказа во внешнее хранилище.
type SubmitResult struct {
	OrderID     string
	OrderNumber string
	Totals      domain.Totals
}

// CartService определяет интерфейс движка составления заказов.
type CartService interface {
	// CreateSession открывает новую сессию корзины и возвращает её ID.
	CreateSession(ctx context.Context) (string, error)

	// CloseSession закрывает сессию и отбрасывает её корзину.
	CloseSession(ctx context.Context, sessionID string) error

	// Snapshot возвращает снимок состояния корзины с итогами.
	Snapshot(ctx context.Context, sessionID string) (CartSnapshot, error)

	// SearchCatalog ищет товары и варианты по подстроке названия.
	SearchCatalog(ctx context.Context, query string, limit int) ([]domain.CatalogItem, error)

	// AddLine добавляет позицию: загружает товар из каталога, разрешает
	// закупочную цену и выполняет барьеры остатков и маржи.
	AddLine(ctx context.Context, sessionID string, in AddLineInput) (domain.MarginReport, error)

	// UpdateQuantity изменяет количество позиции; qty <= 0 удаляет её.
	UpdateQuantity(ctx context.Context, sessionID string, index int, qty int32, opts domain.AddOptions) error

	// UpdateUnitPrice изменяет цену позиции с повторным анализом маржи.
	UpdateUnitPrice(ctx context.Context, sessionID string, index int, price domain.Money, opts domain.AddOptions) (domain.MarginReport, error)

	// RemoveLine удаляет позицию по индексу.
	RemoveLine(ctx context.Context, sessionID string, index int) error

	// SortLines устойчиво сортирует позиции по названию.
	SortLines(ctx context.Context, sessionID string) error

	// SetPriceTier переключает ценовой уровень заказа.
	SetPriceTier(ctx context.Context, sessionID string, tier domain.PriceTier) error

	// SetTaxExempt переключает освобождение заказа от налога.
	SetTaxExempt(ctx context.Context, sessionID string, exempt bool) error

	// SetCustomer назначает клиента корзины по ID из справочника.
	SetCustomer(ctx context.Context, sessionID, customerID string) error

	// SetOrderNumber задаёт номер заказа вручную.
	// Пустой номер возвращает заказ к автогенерации.
	SetOrderNumber(ctx context.Context, sessionID, number string) error

	// SetNotes задаёт примечания оператора.
	SetNotes(ctx context.Context, sessionID, notes string) error

	// ApplyLastPrices накладывает цены последнего заказа клиента.
	ApplyLastPrices(ctx context.Context, sessionID string) (domain.OverlayResult, error)

	// RestoreOriginalPrices отменяет наложение исторических цен.
	RestoreOriginalPrices(ctx context.Context, sessionID string) error

	// OverlayStatus возвращает состояние наложения цен.
	OverlayStatus(ctx context.Context, sessionID string) (domain.OverlayStatus, error)

	// Totals возвращает итоги заказа.
	Totals(ctx context.Context, sessionID string) (domain.Totals, error)

	// Profit возвращает оценку прибыли заказа.
	Profit(ctx context.Context, sessionID string) (domain.Money, error)

	// Balance сверяет итог заказа с балансом выбранного клиента.
	Balance(ctx context.Context, sessionID string) (domain.BalanceSummary, error)

	// Submit проверяет корзину, сохраняет заказ и очищает сессию.
	Submit(ctx context.Context, sessionID string, in SubmitInput) (SubmitResult, error)

	// StartJanitor запускает фоновую очистку просроченных сессий.
	StartJanitor(ctx context.Context, interval time.Duration)
}

// Deps — зависимости движка корзины.
type Deps struct {
	Catalog        repository.CatalogRepository
	History        repository.PriceHistoryRepository
	Customers      repository.CustomerRepository
	Orders         repository.SalesOrderRepository
	Costs          *CostCache
	Events         EventPublisher   // nil — публикация событий отключена
	HistoryBreaker *breaker.Breaker // Защищает запросы истории заказов
}

// cartService — реализация CartService поверх реестра сессий в памяти.
type cartService struct {
	deps     Deps
	sessions *sessionRegistry
	settings domain.Settings
}

// NewCartService создаёт движок составления заказов.
func NewCartService(deps Deps, settings domain.Settings, sessionTTL time.Duration) CartService {
	return &cartService{
		deps:     deps,
		sessions: newSessionRegistry(sessionTTL),
		settings: settings,
	}
}

// StartJanitor запускает фоновую очистку просроченных сессий.
func (s *cartService) StartJanitor(ctx context.Context, interval time.Duration) {
	s.sessions.startJanitor(ctx, interval)
}

// orderSubmittedEvent — payload события sales.orders.submitted.
type orderSubmittedEvent struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  string    `json:"customer_id,omitempty"`
	Total       int64     `json:"total"`
	Currency    string    `json:"currency"`
	LineCount   int       `json:"line_count"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// CreateSession открывает новую сессию корзины.
func (s *cartService) CreateSession(ctx context.Context) (string, error) {
	sess := s.sessions.create(s.settings)

	log := logger.FromContext(ctx)
	log.Info().
		Str("session_id", sess.id).
		Msg("Открыта сессия корзины")

	return sess.id, nil
}

// CloseSession закрывает сессию корзины.
func (s *cartService) CloseSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.remove(sessionID); err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("session_id", sessionID).
		Msg("Сессия корзины закрыта")

	return nil
}

// Snapshot возвращает снимок корзины с итогами и состоянием наложения.
func (s *cartService) Snapshot(ctx context.Context, sessionID string) (CartSnapshot, error) {
	var snap CartSnapshot
	err := s.withSession(sessionID, func(cart *domain.Cart) error {
		snap = CartSnapshot{
			SessionID:    sessionID,
			OrderType:    cart.OrderType,
			PriceTier:    cart.PriceTier,
			TaxExempt:    cart.TaxExempt,
			OrderNumber:  cart.OrderNumber,
			AutoNumber:   cart.AutoNumber,
			CustomerID:   cart.CustomerID,
			CustomerName: cart.CustomerName,
			Notes:        cart.Notes,
			Lines:        append([]domain.CartLine(nil), cart.Lines...),
			Totals:       cart.ComputeTotals(),
			Overlay:      cart.GetOverlayStatus(),
		}
		return nil
	})
	return snap, err
}

// SearchCatalog ищет единицы каталога по подстроке названия.
func (s *cartService) SearchCatalog(ctx context.Context, query string, limit int) ([]domain.CatalogItem, error) {
	items, err := s.deps.Catalog.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска по каталогу: %w", err)
	}
	return items, nil
}

// AddLine добавляет позицию в корзину сессии.
func (s *cartService) AddLine(ctx context.Context, sessionID string, in AddLineInput) (domain.MarginReport, error) {
	ctx = logger.WithSessionID(ctx, sessionID)
	log := logger.FromContext(ctx)

	item, err := s.deps.Catalog.GetByID(ctx, in.ItemID)
	if err != nil {
		return domain.MarginReport{}, err
	}

	var report domain.MarginReport
	err = s.withSession(sessionID, func(cart *domain.Cart) error {
		lastPurchase := s.resolveCost(ctx, cart, item)

		r, addErr := cart.AddLine(item, in.Quantity, in.UnitPrice, lastPurchase, in.Options)
		report = r
		if addErr != nil {
			if errors.Is(addErr, domain.ErrBelowCost) {
				metrics.BelowCostWarnings.WithLabelValues("rejected").Inc()
			}
			return addErr
		}

		if r.Status == domain.MarginBelowCost {
			metrics.BelowCostWarnings.WithLabelValues("accepted").Inc()
			log.Warn().
				Str("item_id", item.ID).
				Int64("loss_per_unit", r.LossPerUnit.Amount).
				Float64("loss_percent", r.LossPercent).
				Msg("Позиция добавлена с продажей ниже себестоимости")
		}

		if in.Options.OverrideStock {
			if check := domain.CheckQuantity(item, in.Quantity); !check.OK {
				metrics.StockOverrides.Inc()
				log.Warn().
					Str("item_id", item.ID).
					Str("reason", string(check.Reason)).
					Msg("Отказ проверки остатков переопределён оператором")
			}
		}

		log.Info().
			Str("item_id", item.ID).
			Int32("quantity", in.Quantity).
			Msg("Позиция добавлена в корзину")
		return nil
	})

	return report, err
}

// UpdateQuantity изменяет количество позиции.
func (s *cartService) UpdateQuantity(ctx context.Context, sessionID string, index int, qty int32, opts domain.AddOptions) error {
	return s.withSession(sessionID, func(cart *domain.Cart) error {
		return cart.UpdateQuantity(index, qty, opts)
	})
}

// UpdateUnitPrice изменяет цену позиции.
func (s *cartService) UpdateUnitPrice(ctx context.Context, sessionID string, index int, price domain.Money, opts domain.AddOptions) (domain.MarginReport, error) {
	ctx = logger.WithSessionID(ctx, sessionID)

	var report domain.MarginReport
	err := s.withSession(sessionID, func(cart *domain.Cart) error {
		r, updErr := cart.UpdateUnitPrice(index, price, opts)
		report = r
		if updErr != nil {
			if errors.Is(updErr, domain.ErrBelowCost) {
				metrics.BelowCostWarnings.WithLabelValues("rejected").Inc()
			}
			return updErr
		}
		if r.Status == domain.MarginBelowCost {
			metrics.BelowCostWarnings.WithLabelValues("accepted").Inc()
		}
		return nil
	})
	return report, err
}

// RemoveLine удаляет позицию по индексу.
func (s *cartService) RemoveLine(ctx context.Context, sessionID string, index int) error {
	return s.withSession(sessionID, func(cart *domain.Cart) error {
		return cart.RemoveLine(index)
	})
}

// SortLines сортирует позиции корзины по названию.
func (s *cartService) SortLines(ctx context.Context, sessionID string) error {
	return s.withSession(sessionID, func(cart *domain.Cart) error {
		cart.SortLinesByName()
		return nil
	})
}

// SetPriceTier переключает ценовой уровень заказа.
func (s *cartService) SetPriceTier(ctx context.Context, sessionID string, tier domain.PriceTier) error {
	return s.withSession(sessionID, func(cart *domain.Cart) error {
		return cart.SetPriceTier(tier)
	})
}

// SetTaxExempt переключает освобождение заказа от налога.
func (s *cartService) SetTaxExempt(ctx context.Context, sessionID string, exempt bool) error {
	return s.withSession(sessionID, func(cart *domain.Cart) error {
		cart.SetTaxExempt(exempt)
		return nil
	})
}

// SetCustomer назначает клиента корзины, проверяя его в справочнике.
func (s *cartService) SetCustomer(ctx context.Context, sessionID, customerID string) error {
	ctx = logger.WithSessionID(ctx, sessionID)

	customer, err := s.deps.Customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}

	return s.withSession(sessionID, func(cart *domain.Cart) error {
		cart.SetCustomer(customer.ID, customer.Name)
		log := logger.FromContext(ctx)
		log.Info().
			Str("customer_id", customer.ID).
			Str("order_number", cart.OrderNumber).
			Msg("Назначен клиент корзины")
		return nil
	})
}

// SetOrderNumber задаёт номер заказа вручную;
// пустая строка возвращает автогенерацию.
func (s *cartService) SetOrderNumber(ctx context.Context, sessionID, number string) error {
	return s.withSession(sessionID, func(cart *domain.Cart) error {
		if number == "" {
			cart.AutoNumber = true
			cart.OrderNumber = domain.GenerateOrderNumber(cart.CustomerName, time.Now())
			return nil
		}
		cart.AutoNumber = false
		cart.OrderNumber = number
		return nil
	})
}

// SetNotes задаёт примечания оператора.
func (s *cartService) SetNotes(ctx context.Context, sessionID, notes string) error {
	return s.withSession(sessionID, func(cart *domain.Cart) error {
		cart.Notes = notes
		return nil
	})
}

// ApplyLastPrices загружает цены последнего заказа клиента через circuit
// breaker и накладывает их на корзину. При открытом breaker возвращает
// breaker.ErrUnavailable без обращения к хранилищу.
func (s *cartService) ApplyLastPrices(ctx context.Context, sessionID string) (domain.OverlayResult, error) {
	ctx = logger.WithSessionID(ctx, sessionID)
	log := logger.FromContext(ctx)

	var result domain.OverlayResult
	err := s.withSession(sessionID, func(cart *domain.Cart) error {
		if cart.CustomerID == "" {
			return domain.ErrNoCustomer
		}
		if len(cart.Lines) == 0 {
			return domain.ErrEmptyCart
		}

		history, fetchErr := breaker.Execute(s.deps.HistoryBreaker, func() (domain.LastOrderPrices, error) {
			return s.deps.Orders.LastOrderPrices(ctx, cart.CustomerID)
		})
		if fetchErr != nil {
			if errors.Is(fetchErr, breaker.ErrUnavailable) {
				log.Warn().Msg("История заказов недоступна: circuit breaker открыт")
			}
			return fetchErr
		}

		r, applyErr := cart.ApplyLastPrices(history)
		if applyErr != nil {
			return applyErr
		}
		result = r

		metrics.OverlayApplied.Inc()
		log.Info().
			Int("updated", r.Updated).
			Int("unchanged", r.Unchanged).
			Int("not_found", r.NotFound).
			Str("source_order", r.OrderNumber).
			Msg("Применены цены последнего заказа клиента")
		return nil
	})

	return result, err
}

// RestoreOriginalPrices отменяет наложение исторических цен.
func (s *cartService) RestoreOriginalPrices(ctx context.Context, sessionID string) error {
	return s.withSession(sessionID, func(cart *domain.Cart) error {
		return cart.RestoreOriginalPrices()
	})
}

// OverlayStatus возвращает состояние наложения цен.
func (s *cartService) OverlayStatus(ctx context.Context, sessionID string) (domain.OverlayStatus, error) {
	var status domain.OverlayStatus
	err := s.withSession(sessionID, func(cart *domain.Cart) error {
		status = cart.GetOverlayStatus()
		return nil
	})
	return status, err
}

// Totals возвращает итоги заказа.
func (s *cartService) Totals(ctx context.Context, sessionID string) (domain.Totals, error) {
	var totals domain.Totals
	err := s.withSession(sessionID, func(cart *domain.Cart) error {
		totals = cart.ComputeTotals()
		return nil
	})
	return totals, err
}

// Profit возвращает оценку прибыли заказа.
func (s *cartService) Profit(ctx context.Context, sessionID string) (domain.Money, error) {
	var profit domain.Money
	err := s.withSession(sessionID, func(cart *domain.Cart) error {
		profit = cart.OrderProfit()
		return nil
	})
	return profit, err
}

// Balance сверяет итог заказа с балансом выбранного клиента.
func (s *cartService) Balance(ctx context.Context, sessionID string) (domain.BalanceSummary, error) {
	ctx = logger.WithSessionID(ctx, sessionID)

	var customerID string
	var total domain.Money
	err := s.withSession(sessionID, func(cart *domain.Cart) error {
		if cart.CustomerID == "" {
			return domain.ErrNoCustomer
		}
		customerID = cart.CustomerID
		total = cart.ComputeTotals().Total
		return nil
	})
	if err != nil {
		return domain.BalanceSummary{}, err
	}

	customer, err := s.deps.Customers.GetByID(ctx, customerID)
	if err != nil {
		return domain.BalanceSummary{}, err
	}

	return customer.Reconcile(total), nil
}

// Submit проверяет корзину, заново сверяет остатки с актуальным каталогом,
// сохраняет заказ, публикует событие и очищает корзину. Публикация события
// best-effort: её отказ не откатывает уже сохранённый заказ.
func (s *cartService) Submit(ctx context.Context, sessionID string, in SubmitInput) (SubmitResult, error) {
	ctx = logger.WithSessionID(ctx, sessionID)
	log := logger.FromContext(ctx)

	var result SubmitResult
	err := s.withSession(sessionID, func(cart *domain.Cart) error {
		if err := cart.Validate(); err != nil {
			return err
		}

		// Остатки проверяются против актуального каталога, а не снимков:
		// между добавлением позиции и отправкой склад мог измениться.
		for i := range cart.Lines {
			line := &cart.Lines[i]
			item, err := s.deps.Catalog.GetByID(ctx, line.CatalogItemID)
			if err != nil {
				return err
			}
			if check := domain.CheckQuantity(item, line.Quantity); !check.OK {
				if !in.OverrideStock {
					return check.Err()
				}
				metrics.StockOverrides.Inc()
				log.Warn().
					Str("item_id", line.CatalogItemID).
					Str("reason", string(check.Reason)).
					Msg("Отказ проверки остатков при отправке переопределён оператором")
			}
		}

		totals := cart.ComputeTotals()

		// Непустой OrderID означает перезапись существующего заказа
		orderID := in.OrderID
		if orderID == "" {
			var err error
			orderID, err = s.deps.Orders.Create(ctx, cart, totals)
			if err != nil {
				return err
			}
		} else if err := s.deps.Orders.Update(ctx, orderID, cart, totals); err != nil {
			return err
		}

		result = SubmitResult{
			OrderID:     orderID,
			OrderNumber: cart.OrderNumber,
			Totals:      totals,
		}

		s.publishSubmitted(ctx, orderID, cart, totals)

		metrics.OrdersSubmitted.Inc()
		log.Info().
			Str("order_id", orderID).
			Str("order_number", cart.OrderNumber).
			Int64("total", totals.Total.Amount).
			Msg("Заказ отправлен во внешнее хранилище")

		cart.Reset()
		return nil
	})

	return result, err
}

// publishSubmitted публикует событие о созданном заказе. Best-effort.
func (s *cartService) publishSubmitted(ctx context.Context, orderID string, cart *domain.Cart, totals domain.Totals) {
	if s.deps.Events == nil {
		return
	}

	event := orderSubmittedEvent{
		OrderID:     orderID,
		OrderNumber: cart.OrderNumber,
		CustomerID:  cart.CustomerID,
		Total:       totals.Total.Amount,
		Currency:    totals.Total.Currency,
		LineCount:   len(cart.Lines),
		SubmittedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Ошибка сериализации события заказа")
		return
	}

	if err := s.deps.Events.Send(ctx, kafka.TopicOrderSubmitted, []byte(orderID), payload); err != nil {
		// Заказ уже сохранён, поэтому отказ шины только логируется.
		log := logger.FromContext(ctx)
		log.Error().
			Err(err).
			Str("order_id", orderID).
			Msg("Ошибка публикации события о заказе")
	}
}

// resolveCost разрешает последнюю закупочную цену товара: кеш корзины →
// Redis → история закупок. Ошибка истории деградирует до отсутствия данных,
// анализ маржи при этом даёт NO_COST_DATA.
func (s *cartService) resolveCost(ctx context.Context, cart *domain.Cart, item domain.CatalogItem) *domain.Money {
	if cost, ok := cart.KnownCost(item.ID); ok {
		return cost
	}
	if cost, ok := s.deps.Costs.Get(ctx, item.BaseProductID, s.settings.Currency); ok {
		return cost
	}

	cost, err := s.deps.History.LastPurchasePrice(ctx, item.BaseProductID)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().
			Err(err).
			Str("product_id", item.BaseProductID).
			Msg("История закупок недоступна, себестоимость неизвестна")
		return nil
	}

	s.deps.Costs.Set(ctx, item.BaseProductID, cost)
	return cost
}

// withSession выполняет операцию над корзиной под мьютексом сессии.
func (s *cartService) withSession(sessionID string, fn func(cart *domain.Cart) error) error {
	sess, err := s.sessions.get(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.cart)
}
