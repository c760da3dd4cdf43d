package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// Приватный тип ключей контекста — исключает коллизии с другими пакетами.
type ctxKey string

const (
	// traceIDKey - ключ для хранения trace_id в контексте.
	// Trace ID генерируется на входе в HTTP слой и сопровождает запрос.
	traceIDKey ctxKey = "trace_id"

	// sessionIDKey - ключ для хранения session_id в контексте.
	// Session ID связывает все операции одной сессии корзины.
	sessionIDKey ctxKey = "session_id"

	// loggerKey - ключ для хранения настроенного логгера в контексте.
	loggerKey ctxKey = "logger"
)

// WithTraceID добавляет trace_id в контекст.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext извлекает trace_id из контекста.
// Возвращает пустую строку, если trace_id не установлен.
func TraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithSessionID добавляет session_id сессии корзины в контекст.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionIDFromContext извлекает session_id из контекста.
// Возвращает пустую строку, если session_id не установлен.
func SessionIDFromContext(ctx context.Context) string {
	if sessionID, ok := ctx.Value(sessionIDKey).(string); ok {
		return sessionID
	}
	return ""
}

// WithLogger добавляет логгер в контекст для передачи через слои приложения.
//
// Пример:
//
//	log := logger.With().Str("service", "sales").Logger()
//	ctx = logger.WithLogger(ctx, log)
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext извлекает логгер из контекста и автоматически добавляет
// trace_id и session_id, если они присутствуют.
//
// Если логгер не был явно добавлен в контекст, возвращает глобальный логгер.
// Основной способ получения логгера в обработчиках и сервисах:
//
//	func (s *CartService) AddLine(ctx context.Context, ...) error {
//	    log := logger.FromContext(ctx)
//	    log.Info().Str("item_id", itemID).Msg("Добавление позиции")
//	    // ...
//	}
func FromContext(ctx context.Context) zerolog.Logger {
	var l zerolog.Logger
	if ctxLogger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		l = ctxLogger
	} else {
		l = log
	}

	if traceID := TraceIDFromContext(ctx); traceID != "" {
		l = l.With().Str("trace_id", traceID).Logger()
	}
	if sessionID := SessionIDFromContext(ctx); sessionID != "" {
		l = l.With().Str("session_id", sessionID).Logger()
	}

	return l
}

// Ctx возвращает указатель на логгер из контекста,
// совместимо с zerolog.Ctx().
func Ctx(ctx context.Context) *zerolog.Logger {
	l := FromContext(ctx)
	return &l
}
