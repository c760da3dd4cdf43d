// Package kafka — публикация событий консоли продаж через kafka-go.
// Единственный поток событий — уведомления об отправленных заказах;
// сервис ничего не консьюмит.
package kafka

// TopicOrderSubmitted — событие успешной отправки заказа
// (для учётной системы, аналитики и уведомлений склада).
const TopicOrderSubmitted = "sales.orders.submitted"

// Ключи служебных headers сообщений.
const (
	// HeaderTraceID — идентификатор трассировки запроса-источника.
	HeaderTraceID = "trace_id"

	// HeaderSessionID — идентификатор сессии корзины, породившей событие.
	HeaderSessionID = "session_id"

	// HeaderTimestamp — момент формирования сообщения.
	HeaderTimestamp = "timestamp"
)

// Config — настройки подключения к Kafka.
type Config struct {
	// Brokers — адреса брокеров.
	Brokers []string
}
